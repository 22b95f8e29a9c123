// Package caerr defines the Channel Access protocol error taxonomy: the
// Local/Remote split a sans-I/O engine needs so that a host can tell "we
// broke the protocol" apart from "the peer broke the protocol" without
// parsing error strings.
package caerr

import "fmt"

// LocalProtocolError means our own role violated the protocol: we tried to
// send a command illegal for our role or for the circuit's or channel's
// current state. Raised synchronously from Send, AddChannel, and the
// state machines when the offending command originated from us. A command
// referencing an unknown cid, ioid or subscription_id is reported as a
// KeyError instead, with no Local/Remote attribution.
type LocalProtocolError struct {
	Reason string
}

func (e *LocalProtocolError) Error() string { return "caproto: local protocol error: " + e.Reason }

// RemoteProtocolError means the peer violated the protocol: malformed
// wire data, or a command illegal for the peer's role or our current
// state. Raised from Recv. A received command referencing an unknown
// cid, ioid or subscription_id is reported as a KeyError, not as a
// RemoteProtocolError.
type RemoteProtocolError struct {
	Reason string
}

func (e *RemoteProtocolError) Error() string { return "caproto: remote protocol error: " + e.Reason }

// KeyError mirrors caproto's CaprotoKeyError: an identifier (cid, sid,
// ioid, subscription_id) was looked up and not found.
type KeyError struct {
	Reason string
}

func (e *KeyError) Error() string { return "caproto: key error: " + e.Reason }

// ValueError is raised at command-construction time for a field that
// fails a trivially checkable constraint (string too long, priority out
// of range, unrecognized DBR type, and so on).
type ValueError struct {
	Reason string
}

func (e *ValueError) Error() string { return "caproto: value error: " + e.Reason }

// Localf builds a LocalProtocolError with a formatted reason.
func Localf(format string, args ...any) *LocalProtocolError {
	return &LocalProtocolError{Reason: fmt.Sprintf(format, args...)}
}

// Remotef builds a RemoteProtocolError with a formatted reason.
func Remotef(format string, args ...any) *RemoteProtocolError {
	return &RemoteProtocolError{Reason: fmt.Sprintf(format, args...)}
}

// Keyf builds a KeyError with a formatted reason.
func Keyf(format string, args ...any) *KeyError {
	return &KeyError{Reason: fmt.Sprintf(format, args...)}
}

// Valuef builds a ValueError with a formatted reason.
func Valuef(format string, args ...any) *ValueError {
	return &ValueError{Reason: fmt.Sprintf(format, args...)}
}

// Role is which side of a virtual circuit a participant plays.
type Role int

const (
	Client Role = iota
	Server
)

func (r Role) String() string {
	if r == Client {
		return "CLIENT"
	}
	return "SERVER"
}

// Direction is whether a command is a request, a response, or (for Echo)
// both.
type Direction int

const (
	Request Direction = iota
	Response
	Bidirectional
)

// FaultFor implements a single attribution rule (§7): a REQUEST failing
// validation blames the client role, a RESPONSE blames the server, and
// Echo (Bidirectional) blames whichever role actually sent it. If ourRole
// equals the blamed role the error is local; otherwise the peer is at
// fault and the error is remote.
//
// This centralizes the role/fault computation as a single function
// rather than ad hoc classification at each raise site.
func FaultFor(ourRole Role, direction Direction, senderRole Role) error {
	return faultFor(ourRole, direction, senderRole, "")
}

// FaultForReason is FaultFor with an explicit reason string attached to
// the resulting error.
func FaultForReason(ourRole Role, direction Direction, senderRole Role, reason string) error {
	return faultFor(ourRole, direction, senderRole, reason)
}

func faultFor(ourRole Role, direction Direction, senderRole Role, reason string) error {
	var partyAtFault Role
	switch direction {
	case Request:
		partyAtFault = Client
	case Response:
		partyAtFault = Server
	default: // Bidirectional (Echo): whoever sent it is the party that could be at fault.
		partyAtFault = senderRole
	}
	if reason == "" {
		reason = fmt.Sprintf("command illegal for role=%s direction=%v", senderRole, direction)
	}
	if ourRole == partyAtFault {
		return &LocalProtocolError{Reason: reason}
	}
	return &RemoteProtocolError{Reason: reason}
}
