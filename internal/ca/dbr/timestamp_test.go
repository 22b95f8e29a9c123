package dbr_test

import (
	"testing"
	"time"

	"github.com/caproto-go/caproto/internal/ca/dbr"
)

func TestFromTimeRoundTrip(t *testing.T) {
	want := time.Date(2024, time.March, 5, 12, 30, 0, 500, time.UTC)
	ts := dbr.FromTime(want)
	got := ts.Time()
	if !got.Equal(want) {
		t.Fatalf("round trip: got %v, want %v", got, want)
	}
}

func TestFromTimeBeforeEpicsEpochSaturates(t *testing.T) {
	before := time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)
	ts := dbr.FromTime(before)
	if ts != (dbr.Timestamp{}) {
		t.Fatalf("expected zero timestamp for pre-epoch time, got %+v", ts)
	}
}
