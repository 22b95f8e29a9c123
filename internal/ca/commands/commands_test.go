package commands_test

import (
	"testing"

	"github.com/caproto-go/caproto/internal/ca/commands"
	"github.com/caproto-go/caproto/internal/ca/dbr"
	"github.com/caproto-go/caproto/internal/caerr"
)

func TestNewVersionRequestRejectsPriorityAboveMax(t *testing.T) {
	if _, err := commands.NewVersionRequest(commands.MaxPriority+1, commands.MinimumProtocolVersion); err == nil {
		t.Fatal("expected an error for priority above MaxPriority")
	}
}

func TestNewVersionRequestRejectsVersionBelowMinimum(t *testing.T) {
	if _, err := commands.NewVersionRequest(0, commands.MinimumProtocolVersion-1); err == nil {
		t.Fatal("expected an error for version below MinimumProtocolVersion")
	}
}

func TestNewVersionRequestAccepted(t *testing.T) {
	req, err := commands.NewVersionRequest(10, commands.MinimumProtocolVersion)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := req.Kind(), commands.KindVersionRequest; got != want {
		t.Fatalf("unexpected kind: got %v, want %v", got, want)
	}
}

func TestNewCreateChanRequestRejectsEmptyName(t *testing.T) {
	if _, err := commands.NewCreateChanRequest(1, ""); err == nil {
		t.Fatal("expected an error for an empty channel name")
	}
}

func TestNewCreateChanRequestRejectsOverlongName(t *testing.T) {
	long := make([]byte, commands.MaxChannelNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := commands.NewCreateChanRequest(1, string(long)); err == nil {
		t.Fatal("expected an error for a channel name over MaxChannelNameLength")
	}
}

func TestNewEventAddRequestRejectsInvalidType(t *testing.T) {
	if _, err := commands.NewEventAddRequest(1, 2, dbr.Type(999), 1, commands.EventMaskValue); err == nil {
		t.Fatal("expected an error for an invalid DBR type")
	}
}

func TestKindDirection(t *testing.T) {
	cases := []struct {
		kind commands.Kind
		want caerr.Direction
	}{
		{commands.KindVersionRequest, caerr.Request},
		{commands.KindVersionResponse, caerr.Response},
		{commands.KindEchoRequest, caerr.Bidirectional},
	}
	for _, c := range cases {
		if got := c.kind.Direction(); got != c.want {
			t.Fatalf("%v: unexpected direction: got %v, want %v", c.kind, got, c.want)
		}
	}
}
