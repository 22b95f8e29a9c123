package caerr_test

import (
	"errors"
	"testing"

	"github.com/caproto-go/caproto/internal/caerr"
)

func TestFaultForRequestBlamesClient(t *testing.T) {
	err := caerr.FaultFor(caerr.Client, caerr.Request, caerr.Client)
	var local *caerr.LocalProtocolError
	if !errors.As(err, &local) {
		t.Fatalf("expected a LocalProtocolError when our role matches the request's fault party, got %T", err)
	}

	err = caerr.FaultFor(caerr.Server, caerr.Request, caerr.Client)
	var remote *caerr.RemoteProtocolError
	if !errors.As(err, &remote) {
		t.Fatalf("expected a RemoteProtocolError when a server observes a client's bad request, got %T", err)
	}
}

func TestFaultForResponseBlamesServer(t *testing.T) {
	err := caerr.FaultFor(caerr.Server, caerr.Response, caerr.Server)
	var local *caerr.LocalProtocolError
	if !errors.As(err, &local) {
		t.Fatalf("expected a LocalProtocolError when our role matches the response's fault party, got %T", err)
	}

	err = caerr.FaultFor(caerr.Client, caerr.Response, caerr.Server)
	var remote *caerr.RemoteProtocolError
	if !errors.As(err, &remote) {
		t.Fatalf("expected a RemoteProtocolError when a client observes a server's bad response, got %T", err)
	}
}

func TestFaultForBidirectionalBlamesSender(t *testing.T) {
	err := caerr.FaultFor(caerr.Client, caerr.Bidirectional, caerr.Server)
	var remote *caerr.RemoteProtocolError
	if !errors.As(err, &remote) {
		t.Fatalf("expected the sending role to be blamed for a bidirectional command, got %T", err)
	}
}

func TestRoleString(t *testing.T) {
	if got, want := caerr.Client.String(), "CLIENT"; got != want {
		t.Fatalf("unexpected role string: got %q, want %q", got, want)
	}
	if got, want := caerr.Server.String(), "SERVER"; got != want {
		t.Fatalf("unexpected role string: got %q, want %q", got, want)
	}
}
