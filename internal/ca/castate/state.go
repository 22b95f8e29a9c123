// Package castate holds the per-role channel and circuit state machines
// described in spec §4.3 and §4.4: flat (role, state, command kind) ->
// state lookup tables, plus the state-triggered coupling rule that moves
// a parked channel forward when its circuit connects.
//
// Expressing the machines as flat maps rather than nested dictionaries
// (as the original Python source does) is the re-architecture spec §9
// calls for: a single lookup is both faster and easier to audit than a
// three-level nested structure, and it makes "no transition defined here"
// a single map-miss check instead of three.
package castate

import "github.com/caproto-go/caproto/internal/caerr"

// State is a node in either the channel or the circuit state machine.
// The two machines share one enumeration (mirroring the original source,
// which reuses names like CONNECTED and ERROR across both) but never
// compare states from different machines against each other.
type State int

const (
	// Channel-only states.
	StateNeedCircuit State = iota
	StateSendCreateChanRequest
	StateAwaitCreateChanResponse
	StateSendCreateChanResponse
	StateMustClose

	// Circuit-only states.
	StateSendVersionRequest
	StateAwaitVersionResponse
	StateSendVersionResponse

	// Shared terminal/steady states.
	StateIdle
	StateConnected
	StateClosed
	StateError
)

var stateNames = map[State]string{
	StateNeedCircuit:             "NEED_CIRCUIT",
	StateSendCreateChanRequest:   "SEND_CREATE_CHAN_REQUEST",
	StateAwaitCreateChanResponse: "AWAIT_CREATE_CHAN_RESPONSE",
	StateSendCreateChanResponse:  "SEND_CREATE_CHAN_RESPONSE",
	StateMustClose:               "MUST_CLOSE",
	StateSendVersionRequest:      "SEND_VERSION_REQUEST",
	StateAwaitVersionResponse:    "AWAIT_VERSION_RESPONSE",
	StateSendVersionResponse:     "SEND_VERSION_RESPONSE",
	StateIdle:                    "IDLE",
	StateConnected:               "CONNECTED",
	StateClosed:                  "CLOSED",
	StateError:                   "ERROR",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// Terminal reports whether s accepts no further commands (spec §4.3: "CLOSED
// and ERROR accept no further commands; submitting one is a local error").
func (s State) Terminal() bool {
	return s == StateClosed || s == StateError
}

// initialChannelState is the first state of a role's channel machine
// once its circuit is usable. circuit.AddChannel does not call it: a new
// client channel starts in NEED_CIRCUIT and reaches this state through
// the state-triggered rule.
func initialChannelState(role caerr.Role) State {
	if role == caerr.Client {
		return StateSendCreateChanRequest
	}
	return StateIdle
}

func initialCircuitState(role caerr.Role) State {
	if role == caerr.Client {
		return StateSendVersionRequest
	}
	return StateIdle
}
