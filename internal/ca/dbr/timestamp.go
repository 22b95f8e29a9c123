package dbr

import "time"

// epicsEpoch is the EPICS timestamp epoch, 1990-01-01T00:00:00Z, per the
// CA specification's (sec_since_1990, nanoseconds) timestamp pair.
var epicsEpoch = time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)

// Timestamp is the TIME-family (sec_since_1990, nanoseconds) pair.
type Timestamp struct {
	Seconds     uint32
	Nanoseconds uint32
}

// FromTime converts a wall-clock time into an EPICS wire timestamp. Times
// before the EPICS epoch saturate to zero.
func FromTime(t time.Time) Timestamp {
	d := t.Sub(epicsEpoch)
	if d < 0 {
		return Timestamp{}
	}
	return Timestamp{
		Seconds:     uint32(d / time.Second),
		Nanoseconds: uint32(d % time.Second),
	}
}

// Time converts an EPICS wire timestamp back into a wall-clock time.
func (ts Timestamp) Time() time.Time {
	return epicsEpoch.Add(time.Duration(ts.Seconds)*time.Second + time.Duration(ts.Nanoseconds))
}
