package circuit_test

import (
	"testing"

	"github.com/caproto-go/caproto/internal/ca/castate"
	"github.com/caproto-go/caproto/internal/ca/circuit"
	"github.com/caproto-go/caproto/internal/ca/commands"
	"github.com/caproto-go/caproto/internal/ca/dbr"
	"github.com/caproto-go/caproto/internal/caerr"
)

func mustSend(t *testing.T, c *circuit.VirtualCircuit, cmd commands.Command) []byte {
	t.Helper()
	buf, err := c.Send(cmd)
	if err != nil {
		t.Fatalf("sending %v: %v", cmd.Kind(), err)
	}
	return buf
}

func mustRecv(t *testing.T, c *circuit.VirtualCircuit, data []byte) []commands.Command {
	t.Helper()
	cmds, _, err := c.Recv(data)
	if err != nil {
		t.Fatalf("receiving into circuit: %v", err)
	}
	return cmds
}

// handshake drives a freshly-created client/server pair through the
// VersionRequest/Response exchange (spec §8 scenario 1) and returns both
// circuits CONNECTED.
func handshake(t *testing.T) (client, server *circuit.VirtualCircuit) {
	t.Helper()
	client = circuit.New(caerr.Client, "server:5064", 0)
	server = circuit.New(caerr.Server, "client:49152", 0)

	verReq, err := commands.NewVersionRequest(0, commands.MinimumProtocolVersion)
	if err != nil {
		t.Fatal(err)
	}
	wire := mustSend(t, client, verReq)
	mustRecv(t, server, wire)
	if got, want := server.State(), castate.StateSendVersionResponse; got != want {
		t.Fatalf("server state after VersionRequest: got %v, want %v", got, want)
	}

	verResp, err := commands.NewVersionResponse(commands.MinimumProtocolVersion)
	if err != nil {
		t.Fatal(err)
	}
	wire = mustSend(t, server, verResp)
	mustRecv(t, client, wire)

	if got, want := client.State(), castate.StateConnected; got != want {
		t.Fatalf("client state after handshake: got %v, want %v", got, want)
	}
	if got, want := server.State(), castate.StateConnected; got != want {
		t.Fatalf("server state after handshake: got %v, want %v", got, want)
	}
	return client, server
}

func TestClientServerHandshake(t *testing.T) {
	handshake(t)
}

// TestAddChannelBeforeConnectParksInNeedCircuit covers scenario 2: a
// channel added before the circuit finishes its handshake waits in
// NEED_CIRCUIT, then the state-triggered rule fires it forward the
// instant the circuit reaches CONNECTED.
func TestAddChannelBeforeConnectParksInNeedCircuit(t *testing.T) {
	client := circuit.New(caerr.Client, "server:5064", 0)
	ch, err := client.AddChannel("thermostat:setpoint")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := ch.State(), castate.StateNeedCircuit; got != want {
		t.Fatalf("channel state before circuit connects: got %v, want %v", got, want)
	}

	server := circuit.New(caerr.Server, "client:49152", 0)
	verReq, err := commands.NewVersionRequest(0, commands.MinimumProtocolVersion)
	if err != nil {
		t.Fatal(err)
	}
	mustRecv(t, server, mustSend(t, client, verReq))
	verResp, err := commands.NewVersionResponse(commands.MinimumProtocolVersion)
	if err != nil {
		t.Fatal(err)
	}
	mustRecv(t, client, mustSend(t, server, verResp))

	if got, want := ch.State(), castate.StateSendCreateChanRequest; got != want {
		t.Fatalf("channel should advance once circuit connects: got %v, want %v", got, want)
	}
}

// TestChannelCreationLifecycle covers scenario 2 end to end: creating a
// channel on an already-connected circuit.
func TestChannelCreationLifecycle(t *testing.T) {
	client, server := handshake(t)

	ch, err := client.AddChannel("thermostat:setpoint")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := ch.State(), castate.StateSendCreateChanRequest; got != want {
		t.Fatalf("unexpected channel state: got %v, want %v", got, want)
	}

	req, err := commands.NewCreateChanRequest(ch.CID(), ch.Name())
	if err != nil {
		t.Fatal(err)
	}
	mustRecv(t, server, mustSend(t, client, req))

	serverCh, ok := server.Channel(ch.CID())
	if !ok {
		t.Fatal("server should have created a channel record for an unseen cid")
	}
	if got, want := serverCh.State(), castate.StateSendCreateChanResponse; got != want {
		t.Fatalf("server channel state: got %v, want %v", got, want)
	}

	sid := server.NewSID()
	resp, err := commands.NewCreateChanResponse(ch.CID(), sid, dbr.Double, 1)
	if err != nil {
		t.Fatal(err)
	}
	mustRecv(t, client, mustSend(t, server, resp))

	if got, want := ch.State(), castate.StateConnected; got != want {
		t.Fatalf("client channel state: got %v, want %v", got, want)
	}
	gotSid, ok := ch.SID()
	if !ok || gotSid != sid {
		t.Fatalf("client channel sid: got (%d, %v), want (%d, true)", gotSid, ok, sid)
	}
	if got, want := ch.NativeDataType(), dbr.Double; got != want {
		t.Fatalf("native data type: got %v, want %v", got, want)
	}
}

// TestMonitorLifecycle covers scenario 3: subscribing, receiving an
// update, then cancelling.
func TestMonitorLifecycle(t *testing.T) {
	client, server := handshake(t)
	ch, err := client.AddChannel("thermostat:setpoint")
	if err != nil {
		t.Fatal(err)
	}
	req, err := commands.NewCreateChanRequest(ch.CID(), ch.Name())
	if err != nil {
		t.Fatal(err)
	}
	mustRecv(t, server, mustSend(t, client, req))
	serverCh, _ := server.Channel(ch.CID())
	sid := server.NewSID()
	resp, err := commands.NewCreateChanResponse(ch.CID(), sid, dbr.Double, 1)
	if err != nil {
		t.Fatal(err)
	}
	mustRecv(t, client, mustSend(t, server, resp))

	subID := client.NewSubscriptionID()
	addReq, err := commands.NewEventAddRequest(ch.CID(), subID, dbr.Double, 1, commands.EventMaskValue)
	if err != nil {
		t.Fatal(err)
	}
	mustRecv(t, server, mustSend(t, client, addReq))

	sub, ok := server.Subscription(subID)
	if !ok {
		t.Fatal("server should have registered the subscription")
	}
	if sub.Channel != serverCh {
		t.Fatal("subscription should reference the server's channel record")
	}

	addResp, err := commands.NewEventAddResponse(subID, dbr.Double, 1, 0, dbr.Value{Data: []float64{21.5}})
	if err != nil {
		t.Fatal(err)
	}
	got := mustRecv(t, client, mustSend(t, server, addResp))
	if len(got) != 1 {
		t.Fatalf("expected one delivered update, got %d", len(got))
	}

	cancelReq, err := commands.NewEventCancelRequest(ch.CID(), subID, dbr.Double, 1)
	if err != nil {
		t.Fatal(err)
	}
	mustRecv(t, server, mustSend(t, client, cancelReq))
	cancelResp, err := commands.NewEventCancelResponse(subID, dbr.Double, 1)
	if err != nil {
		t.Fatal(err)
	}
	mustRecv(t, client, mustSend(t, server, cancelResp))

	if _, ok := server.Subscription(subID); ok {
		t.Fatal("server should have removed the subscription on cancel")
	}
}

// TestProtocolErrorAttribution checks the client side of scenario 4:
// Send refuses a channel command on a circuit that has not completed its
// handshake. Only the presence of an error is checked, not whether it is
// a LocalProtocolError.
func TestProtocolErrorAttribution(t *testing.T) {
	client := circuit.New(caerr.Client, "server:5064", 0)
	// CLIENT circuit starts in SEND_VERSION_REQUEST and no channel has
	// been added, so cid 1 is unknown and Send rejects the EventAddRequest.
	addReq, err := commands.NewEventAddRequest(1, 1, dbr.Double, 1, commands.EventMaskValue)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Send(addReq); err == nil {
		t.Fatal("expected an error sending a command illegal for the circuit's current state")
	}
}

// TestClearChannelRace covers the clear path of scenario 5: a
// ClearChannelRequest parks both sides' channel in MUST_CLOSE, and the
// ClearChannelResponse resolves the client's channel to CLOSED. The
// ServerDisconnResponse branch of the race is checked against the state
// table in castate's TestChannelClearRace.
func TestClearChannelRace(t *testing.T) {
	client, server := handshake(t)
	ch, err := client.AddChannel("thermostat:setpoint")
	if err != nil {
		t.Fatal(err)
	}
	req, err := commands.NewCreateChanRequest(ch.CID(), ch.Name())
	if err != nil {
		t.Fatal(err)
	}
	mustRecv(t, server, mustSend(t, client, req))
	serverCh, _ := server.Channel(ch.CID())
	sid := server.NewSID()
	resp, err := commands.NewCreateChanResponse(ch.CID(), sid, dbr.Double, 1)
	if err != nil {
		t.Fatal(err)
	}
	mustRecv(t, client, mustSend(t, server, resp))

	clearReq, err := commands.NewClearChannelRequest(ch.CID(), sid)
	if err != nil {
		t.Fatal(err)
	}
	mustRecv(t, server, mustSend(t, client, clearReq))
	if got, want := ch.State(), castate.StateMustClose; got != want {
		t.Fatalf("client channel state: got %v, want %v", got, want)
	}
	if got, want := serverCh.State(), castate.StateMustClose; got != want {
		t.Fatalf("server channel state: got %v, want %v", got, want)
	}

	clearResp, err := commands.NewClearChannelResponse(ch.CID(), sid)
	if err != nil {
		t.Fatal(err)
	}
	mustRecv(t, client, mustSend(t, server, clearResp))
	if got, want := ch.State(), castate.StateClosed; got != want {
		t.Fatalf("client channel state: got %v, want %v", got, want)
	}
}

// TestDisconnectAbandonsInFlightWork covers the Disconnect supplemented
// feature: in-flight requests and live subscriptions are handed back so
// the host can fail their callers, and the circuit itself moves to a
// terminal state that rejects further Send/Recv calls.
func TestDisconnectAbandonsInFlightWork(t *testing.T) {
	client, server := handshake(t)
	ch, err := client.AddChannel("thermostat:setpoint")
	if err != nil {
		t.Fatal(err)
	}
	req, err := commands.NewCreateChanRequest(ch.CID(), ch.Name())
	if err != nil {
		t.Fatal(err)
	}
	mustRecv(t, server, mustSend(t, client, req))
	sid := server.NewSID()
	resp, err := commands.NewCreateChanResponse(ch.CID(), sid, dbr.Double, 1)
	if err != nil {
		t.Fatal(err)
	}
	mustRecv(t, client, mustSend(t, server, resp))

	ioid := client.NewIOID()
	readReq, err := commands.NewReadNotifyRequest(ch.CID(), dbr.Double, 1, ioid)
	if err != nil {
		t.Fatal(err)
	}
	mustSend(t, client, readReq)

	reqs, subs := client.Disconnect()
	if len(reqs) != 1 || reqs[0].IOID != ioid {
		t.Fatalf("expected the in-flight ReadNotify to be returned, got %+v", reqs)
	}
	if len(subs) != 0 {
		t.Fatalf("expected no live subscriptions, got %+v", subs)
	}
	if got, want := ch.State(), castate.StateClosed; got != want {
		t.Fatalf("channel state after Disconnect: got %v, want %v", got, want)
	}
	if _, _, err := client.Recv([]byte{0}); err == nil {
		t.Fatal("expected Recv on a disconnected circuit to fail")
	}
}

// TestIDAllocationSkipsInUse exercises the smallest-unused-value
// allocation rule directly: with cid 0 live, the next channel gets cid 1.
func TestIDAllocationSkipsInUse(t *testing.T) {
	c := circuit.New(caerr.Client, "server:5064", 0)
	ch0, err := c.AddChannel("a")
	if err != nil {
		t.Fatal(err)
	}
	ch1, err := c.AddChannel("b")
	if err != nil {
		t.Fatal(err)
	}
	if ch0.CID() != 0 || ch1.CID() != 1 {
		t.Fatalf("expected cids 0 and 1, got %d and %d", ch0.CID(), ch1.CID())
	}
}

func TestRoleMismatchRejected(t *testing.T) {
	server := circuit.New(caerr.Server, "client:1", 0)
	if _, err := server.AddChannel("x"); err == nil {
		t.Fatal("expected AddChannel to fail on a SERVER circuit")
	}
}
