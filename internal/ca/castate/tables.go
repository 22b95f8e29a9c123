package castate

import (
	"github.com/caproto-go/caproto/internal/ca/commands"
	"github.com/caproto-go/caproto/internal/caerr"
)

type transitionKey struct {
	role  caerr.Role
	state State
	kind  commands.Kind
}

// circuitTransitions is the complete command-triggered table from spec
// §4.4, flattened to (role, state, kind) -> new state.
var circuitTransitions = map[transitionKey]State{
	// CLIENT
	{caerr.Client, StateSendVersionRequest, commands.KindEchoRequest}:        StateSendVersionRequest,
	{caerr.Client, StateSendVersionRequest, commands.KindEchoResponse}:       StateSendVersionRequest,
	{caerr.Client, StateSendVersionRequest, commands.KindVersionRequest}:     StateAwaitVersionResponse,
	{caerr.Client, StateSendVersionRequest, commands.KindErrorResponse}:      StateError,
	{caerr.Client, StateAwaitVersionResponse, commands.KindEchoRequest}:      StateAwaitVersionResponse,
	{caerr.Client, StateAwaitVersionResponse, commands.KindEchoResponse}:     StateAwaitVersionResponse,
	{caerr.Client, StateAwaitVersionResponse, commands.KindHostNameRequest}:  StateAwaitVersionResponse,
	{caerr.Client, StateAwaitVersionResponse, commands.KindClientNameRequest}: StateAwaitVersionResponse,
	{caerr.Client, StateAwaitVersionResponse, commands.KindVersionResponse}:  StateConnected,
	{caerr.Client, StateAwaitVersionResponse, commands.KindErrorResponse}:    StateError,
	{caerr.Client, StateConnected, commands.KindEchoRequest}:                StateConnected,
	{caerr.Client, StateConnected, commands.KindEchoResponse}:               StateConnected,
	{caerr.Client, StateConnected, commands.KindHostNameRequest}:            StateConnected,
	{caerr.Client, StateConnected, commands.KindClientNameRequest}:          StateConnected,
	{caerr.Client, StateConnected, commands.KindAccessRightsResponse}:       StateConnected,
	{caerr.Client, StateConnected, commands.KindErrorResponse}:              StateError,

	// SERVER (symmetric, IDLE replaces SEND_VERSION_REQUEST)
	{caerr.Server, StateIdle, commands.KindVersionRequest}:               StateSendVersionResponse,
	{caerr.Server, StateIdle, commands.KindEchoRequest}:                  StateIdle,
	{caerr.Server, StateIdle, commands.KindEchoResponse}:                 StateIdle,
	{caerr.Server, StateIdle, commands.KindErrorResponse}:                StateError,
	{caerr.Server, StateSendVersionResponse, commands.KindVersionResponse}:      StateConnected,
	{caerr.Server, StateSendVersionResponse, commands.KindEchoRequest}:          StateSendVersionResponse,
	{caerr.Server, StateSendVersionResponse, commands.KindEchoResponse}:         StateSendVersionResponse,
	{caerr.Server, StateSendVersionResponse, commands.KindHostNameRequest}:      StateSendVersionResponse,
	{caerr.Server, StateSendVersionResponse, commands.KindClientNameRequest}:    StateSendVersionResponse,
	{caerr.Server, StateSendVersionResponse, commands.KindErrorResponse}:        StateError,
	{caerr.Server, StateConnected, commands.KindHostNameRequest}:         StateConnected,
	{caerr.Server, StateConnected, commands.KindClientNameRequest}:       StateConnected,
	{caerr.Server, StateConnected, commands.KindAccessRightsResponse}:    StateConnected,
	{caerr.Server, StateConnected, commands.KindEchoRequest}:             StateConnected,
	{caerr.Server, StateConnected, commands.KindEchoResponse}:            StateConnected,
	{caerr.Server, StateConnected, commands.KindErrorResponse}:           StateError,
}

// channelConnectedKinds is every command kind that merely holds a channel
// at CONNECTED on both roles -- reads, writes, subscriptions, and their
// acks. Listed once and reused for both roles below rather than repeated
// per role, since the table is identical on both sides here.
var channelConnectedKinds = []commands.Kind{
	commands.KindReadRequest, commands.KindReadResponse,
	commands.KindReadNotifyRequest, commands.KindReadNotifyResponse,
	commands.KindWriteRequest,
	commands.KindWriteNotifyRequest, commands.KindWriteNotifyResponse,
	commands.KindEventAddRequest, commands.KindEventAddResponse,
	commands.KindEventCancelRequest, commands.KindEventCancelResponse,
}

// channelTransitions is the complete command-triggered table from spec
// §4.3, flattened the same way.
var channelTransitions = func() map[transitionKey]State {
	m := map[transitionKey]State{
		{caerr.Client, StateSendCreateChanRequest, commands.KindCreateChanRequest}:    StateAwaitCreateChanResponse,
		{caerr.Client, StateSendCreateChanRequest, commands.KindErrorResponse}:         StateError,
		{caerr.Client, StateAwaitCreateChanResponse, commands.KindCreateChanResponse}:  StateConnected,
		{caerr.Client, StateAwaitCreateChanResponse, commands.KindCreateChFailResponse}: StateClosed,
		{caerr.Client, StateAwaitCreateChanResponse, commands.KindErrorResponse}:        StateError,
		{caerr.Client, StateConnected, commands.KindClearChannelRequest}:   StateMustClose,
		{caerr.Client, StateConnected, commands.KindServerDisconnResponse}: StateClosed,
		{caerr.Client, StateConnected, commands.KindErrorResponse}:        StateError,
		{caerr.Client, StateMustClose, commands.KindClearChannelResponse}:  StateClosed,
		{caerr.Client, StateMustClose, commands.KindServerDisconnResponse}: StateClosed,
		{caerr.Client, StateMustClose, commands.KindErrorResponse}:        StateError,

		{caerr.Server, StateIdle, commands.KindCreateChanRequest}:  StateSendCreateChanResponse,
		{caerr.Server, StateIdle, commands.KindErrorResponse}:      StateError,
		{caerr.Server, StateSendCreateChanResponse, commands.KindCreateChanResponse}:  StateConnected,
		{caerr.Server, StateSendCreateChanResponse, commands.KindCreateChFailResponse}: StateClosed,
		{caerr.Server, StateSendCreateChanResponse, commands.KindErrorResponse}:        StateError,
		{caerr.Server, StateConnected, commands.KindClearChannelRequest}:   StateMustClose,
		{caerr.Server, StateConnected, commands.KindServerDisconnResponse}: StateClosed,
		{caerr.Server, StateConnected, commands.KindErrorResponse}:        StateError,
		{caerr.Server, StateMustClose, commands.KindClearChannelResponse}:  StateClosed,
		{caerr.Server, StateMustClose, commands.KindServerDisconnResponse}: StateClosed,
		{caerr.Server, StateMustClose, commands.KindErrorResponse}:        StateError,
	}
	for _, role := range []caerr.Role{caerr.Client, caerr.Server} {
		for _, kind := range channelConnectedKinds {
			m[transitionKey{role, StateConnected, kind}] = StateConnected
		}
	}
	return m
}()

// stateTriggeredNewState implements spec §4.3 rule (b): a channel parked
// in NEED_CIRCUIT whose circuit has become CONNECTED advances to
// SEND_CREATE_CHAN_REQUEST, regardless of role. This is the one
// state-triggered pair defined today; there are no others.
func stateTriggeredNewState(channelState, circuitState State) (State, bool) {
	if channelState == StateNeedCircuit && circuitState == StateConnected {
		return StateSendCreateChanRequest, true
	}
	return StateNeedCircuit, false
}

// circuitKinds is every command kind that appears anywhere in
// circuitTransitions -- the commands the circuit's own state machine
// cares about (the handshake, identity announcements, and ERROR/Echo).
// Everything else (reads, writes, CreateChan, subscriptions, ...) is
// channel-scoped and passes through the circuit untouched so long as the
// circuit isn't terminal; NextCircuitState reports that as ok=true with
// no state change rather than a table miss, so callers don't have to
// special-case "this command doesn't concern the circuit" themselves.
var circuitKinds = func() map[commands.Kind]bool {
	m := make(map[commands.Kind]bool)
	for k := range circuitTransitions {
		m[k.kind] = true
	}
	return m
}()

// NextCircuitState looks up the circuit-machine table for (role, state,
// kind). For a kind the circuit machine doesn't govern, it reports
// (state, true): an unrelated command leaves the circuit's own state
// untouched. For a kind the circuit machine does govern, ok=false means
// the command is illegal in state (including every terminal state, which
// has no entries at all).
func NextCircuitState(role caerr.Role, state State, kind commands.Kind) (State, bool) {
	if !circuitKinds[kind] {
		if state.Terminal() {
			return state, false
		}
		return state, true
	}
	s, ok := circuitTransitions[transitionKey{role, state, kind}]
	return s, ok
}

// NextChannelState looks up the channel-machine table for (role, state,
// kind), reporting ok=false when no transition is defined.
func NextChannelState(role caerr.Role, state State, kind commands.Kind) (State, bool) {
	s, ok := channelTransitions[transitionKey{role, state, kind}]
	return s, ok
}

// StateTriggered is the exported form of stateTriggeredNewState (spec
// §4.3 rule (b)).
func StateTriggered(channelState, circuitState State) (State, bool) {
	return stateTriggeredNewState(channelState, circuitState)
}
