package castate_test

import (
	"testing"

	"github.com/caproto-go/caproto/internal/ca/castate"
	"github.com/caproto-go/caproto/internal/ca/commands"
	"github.com/caproto-go/caproto/internal/caerr"
)

func TestClientCircuitHandshake(t *testing.T) {
	state := castate.StateSendVersionRequest
	next, ok := castate.NextCircuitState(caerr.Client, state, commands.KindVersionRequest)
	if !ok {
		t.Fatal("expected a transition for VersionRequest from SEND_VERSION_REQUEST")
	}
	state = next
	if got, want := state, castate.StateAwaitVersionResponse; got != want {
		t.Fatalf("unexpected state: got %v, want %v", got, want)
	}

	next, ok = castate.NextCircuitState(caerr.Client, state, commands.KindVersionResponse)
	if !ok {
		t.Fatal("expected a transition for VersionResponse from AWAIT_VERSION_RESPONSE")
	}
	if got, want := next, castate.StateConnected; got != want {
		t.Fatalf("unexpected state: got %v, want %v", got, want)
	}
}

func TestServerCircuitHandshake(t *testing.T) {
	state := castate.StateIdle
	next, ok := castate.NextCircuitState(caerr.Server, state, commands.KindVersionRequest)
	if !ok {
		t.Fatal("expected a transition for VersionRequest from IDLE")
	}
	if got, want := next, castate.StateSendVersionResponse; got != want {
		t.Fatalf("unexpected state: got %v, want %v", got, want)
	}
}

func TestTerminalStatesAcceptNothing(t *testing.T) {
	for _, kind := range []commands.Kind{commands.KindEchoRequest, commands.KindHostNameRequest, commands.KindVersionResponse} {
		if _, ok := castate.NextCircuitState(caerr.Client, castate.StateClosed, kind); ok {
			t.Fatalf("CLOSED circuit should accept no commands, but %v had a transition", kind)
		}
		if _, ok := castate.NextCircuitState(caerr.Client, castate.StateError, kind); ok {
			t.Fatalf("ERROR circuit should accept no commands, but %v had a transition", kind)
		}
	}
}

func TestChannelCreateChanLifecycle(t *testing.T) {
	state := castate.StateSendCreateChanRequest
	next, ok := castate.NextChannelState(caerr.Client, state, commands.KindCreateChanRequest)
	if !ok {
		t.Fatal("expected a transition for CreateChanRequest")
	}
	state = next
	if got, want := state, castate.StateAwaitCreateChanResponse; got != want {
		t.Fatalf("unexpected state: got %v, want %v", got, want)
	}

	next, ok = castate.NextChannelState(caerr.Client, state, commands.KindCreateChanResponse)
	if !ok {
		t.Fatal("expected a transition for CreateChanResponse")
	}
	if got, want := next, castate.StateConnected; got != want {
		t.Fatalf("unexpected state: got %v, want %v", got, want)
	}
}

func TestChannelCreateChanFailure(t *testing.T) {
	next, ok := castate.NextChannelState(caerr.Client, castate.StateAwaitCreateChanResponse, commands.KindCreateChFailResponse)
	if !ok {
		t.Fatal("expected a transition for CreateChFailResponse")
	}
	if got, want := next, castate.StateClosed; got != want {
		t.Fatalf("unexpected state: got %v, want %v", got, want)
	}
}

func TestChannelClearRace(t *testing.T) {
	// A client tearing down a channel (spec §8's "clear race" scenario):
	// CLEAR_CHANNEL_REQUEST parks the channel in MUST_CLOSE, where it can
	// still legally absorb a ServerDisconnResponse racing in from the
	// server, or the expected ClearChannelResponse.
	next, ok := castate.NextChannelState(caerr.Client, castate.StateConnected, commands.KindClearChannelRequest)
	if !ok || next != castate.StateMustClose {
		t.Fatalf("expected ClearChannelRequest to move CONNECTED -> MUST_CLOSE, got %v, ok=%v", next, ok)
	}
	next, ok = castate.NextChannelState(caerr.Client, castate.StateMustClose, commands.KindServerDisconnResponse)
	if !ok || next != castate.StateClosed {
		t.Fatalf("expected ServerDisconnResponse to resolve MUST_CLOSE -> CLOSED, got %v, ok=%v", next, ok)
	}
}

func TestStateTriggeredAdvancesParkedChannel(t *testing.T) {
	next, ok := castate.StateTriggered(castate.StateNeedCircuit, castate.StateConnected)
	if !ok {
		t.Fatal("expected a channel parked in NEED_CIRCUIT to advance once its circuit connects")
	}
	if got, want := next, castate.StateSendCreateChanRequest; got != want {
		t.Fatalf("unexpected state: got %v, want %v", got, want)
	}

	if _, ok := castate.StateTriggered(castate.StateNeedCircuit, castate.StateSendVersionRequest); ok {
		t.Fatal("a channel should not advance while its circuit is still handshaking")
	}
}

func TestStateStringAndTerminal(t *testing.T) {
	if got, want := castate.StateConnected.String(), "CONNECTED"; got != want {
		t.Fatalf("unexpected state string: got %q, want %q", got, want)
	}
	if castate.StateConnected.Terminal() {
		t.Fatal("CONNECTED should not be terminal")
	}
	if !castate.StateClosed.Terminal() || !castate.StateError.Terminal() {
		t.Fatal("CLOSED and ERROR should both be terminal")
	}
}
