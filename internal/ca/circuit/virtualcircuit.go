package circuit

import (
	"time"

	"github.com/caproto-go/caproto/internal/ca/castate"
	"github.com/caproto-go/caproto/internal/ca/commands"
	"github.com/caproto-go/caproto/internal/ca/wire"
	"github.com/caproto-go/caproto/internal/caerr"
)

// VirtualCircuit is the sans-I/O engine for one TCP connection between a
// client and a server at a negotiated priority (spec §3). The host feeds
// it bytes via Recv and takes bytes back from Send; nothing here touches
// a socket.
type VirtualCircuit struct {
	role        caerr.Role
	priority    uint16
	peerAddress string

	state   castate.State
	version uint16

	hostName   string
	clientName string

	recvBuf []byte

	channelsByCID map[uint32]*Channel
	channelsBySID map[uint32]*Channel
	subscriptions map[uint32]*SubscriptionInfo
	inFlight      map[uint32]*InFlightRequest

	bound bool

	lastEchoSent     time.Time
	lastEchoReceived time.Time
	lastActivity     time.Time
}

// New creates an unbound VirtualCircuit for role, addressing peerAddress
// at the given priority (spec §3's circuit identity tuple). role is
// caerr.Client or caerr.Server.
func New(role caerr.Role, peerAddress string, priority uint16) *VirtualCircuit {
	return &VirtualCircuit{
		role:          role,
		priority:      priority,
		peerAddress:   peerAddress,
		state:         initialCircuitState(role),
		channelsByCID: make(map[uint32]*Channel),
		channelsBySID: make(map[uint32]*Channel),
		subscriptions: make(map[uint32]*SubscriptionInfo),
		inFlight:      make(map[uint32]*InFlightRequest),
	}
}

// initialCircuitState mirrors castate's unexported helper of the same
// shape; duplicated here (rather than exported from castate) because it
// is circuit construction policy, not state-machine table data.
func initialCircuitState(role caerr.Role) castate.State {
	if role == caerr.Client {
		return castate.StateSendVersionRequest
	}
	return castate.StateIdle
}

// Role reports which side of the circuit this object plays.
func (c *VirtualCircuit) Role() caerr.Role { return c.role }

// Priority is the circuit's negotiated priority.
func (c *VirtualCircuit) Priority() uint16 { return c.priority }

// PeerAddress is the remote endpoint this circuit addresses.
func (c *VirtualCircuit) PeerAddress() string { return c.peerAddress }

// State reports the circuit's own state-machine position.
func (c *VirtualCircuit) State() castate.State { return c.state }

// Version is the negotiated protocol version, valid once State() is
// CONNECTED.
func (c *VirtualCircuit) Version() uint16 { return c.version }

// HostName and ClientName report identity strings announced over the
// circuit via HostNameRequest/ClientNameRequest, if any have arrived yet.
func (c *VirtualCircuit) HostName() string   { return c.hostName }
func (c *VirtualCircuit) ClientName() string { return c.clientName }

// Bind marks the circuit as attached to a transport, enforcing spec §3's
// "a circuit can only be bound to one transport at a time" invariant.
// Unbind releases it. Neither method touches any actual transport; the
// host calls these as a bookkeeping handshake around its own socket
// attach/detach.
func (c *VirtualCircuit) Bind() error {
	if c.bound {
		return caerr.Localf("circuit already bound to a transport")
	}
	c.bound = true
	return nil
}

// Unbind releases the transport-binding invariant. Safe to call whether
// or not the circuit is currently bound.
func (c *VirtualCircuit) Unbind() { c.bound = false }

// Bound reports whether Bind has been called without a matching Unbind.
func (c *VirtualCircuit) Bound() bool { return c.bound }

// Channel looks up a channel by its client-assigned cid.
func (c *VirtualCircuit) Channel(cid uint32) (*Channel, bool) {
	ch, ok := c.channelsByCID[cid]
	return ch, ok
}

// ChannelBySID looks up a channel by its server-assigned sid.
func (c *VirtualCircuit) ChannelBySID(sid uint32) (*Channel, bool) {
	ch, ok := c.channelsBySID[sid]
	return ch, ok
}

// Subscription looks up a live subscription by id.
func (c *VirtualCircuit) Subscription(id uint32) (*SubscriptionInfo, bool) {
	s, ok := c.subscriptions[id]
	return s, ok
}

// InFlight looks up an outstanding ReadNotify/WriteNotify request by ioid.
func (c *VirtualCircuit) InFlight(ioid uint32) (*InFlightRequest, bool) {
	r, ok := c.inFlight[ioid]
	return r, ok
}

// AddChannel registers a new channel by name (CLIENT role only) and
// allocates its cid, per spec §4.5. The channel starts in NEED_CIRCUIT;
// if this circuit is already CONNECTED, the state-triggered rule (spec
// §4.3(b)) fires immediately, advancing it to SEND_CREATE_CHAN_REQUEST
// before AddChannel returns (scenario #2 in spec §8).
func (c *VirtualCircuit) AddChannel(name string) (*Channel, error) {
	if c.role != caerr.Client {
		return nil, caerr.Localf("only a CLIENT circuit may add_channel (got role %s)", c.role)
	}
	if c.state.Terminal() {
		return nil, caerr.Localf("circuit is %s, cannot add a channel", c.state)
	}
	cid := c.allocCID()
	ch := &Channel{
		circuit: c,
		name:    name,
		cid:     cid,
		state:   castate.StateNeedCircuit,
	}
	c.channelsByCID[cid] = ch
	c.fireStateTriggered()
	return ch, nil
}

// RecordEchoSent and RecordEchoReceived are circuit-level echo-keepalive
// bookkeeping: the core itself never schedules a timer, but it remembers
// when an Echo last went each direction so a host's idle-timeout policy
// has something to read.
func (c *VirtualCircuit) RecordEchoSent(t time.Time)     { c.lastEchoSent = t }
func (c *VirtualCircuit) RecordEchoReceived(t time.Time) { c.lastEchoReceived = t }

// LastEchoSent, LastEchoReceived, and LastActivity return the
// most-recently-recorded timestamps. LastActivity is updated by every
// successful Send and Recv call.
func (c *VirtualCircuit) LastEchoSent() time.Time     { return c.lastEchoSent }
func (c *VirtualCircuit) LastEchoReceived() time.Time { return c.lastEchoReceived }
func (c *VirtualCircuit) LastActivity() time.Time     { return c.lastActivity }

// Disconnect is the host-driven teardown for a circuit going away: it
// moves the circuit to ERROR and every non-terminal channel to CLOSED,
// and returns the in-flight requests and subscriptions that were
// abandoned so the host can fail their callers. Idempotent: calling it
// again on an already-terminal circuit returns nothing.
func (c *VirtualCircuit) Disconnect() ([]*InFlightRequest, []*SubscriptionInfo) {
	if c.state.Terminal() {
		return nil, nil
	}
	c.state = castate.StateError
	for _, ch := range c.channelsByCID {
		if !ch.state.Terminal() {
			ch.state = castate.StateClosed
		}
	}

	reqs := make([]*InFlightRequest, 0, len(c.inFlight))
	for _, r := range c.inFlight {
		reqs = append(reqs, r)
	}
	subs := make([]*SubscriptionInfo, 0, len(c.subscriptions))
	for _, s := range c.subscriptions {
		subs = append(subs, s)
	}
	c.inFlight = make(map[uint32]*InFlightRequest)
	c.subscriptions = make(map[uint32]*SubscriptionInfo)
	return reqs, subs
}

func opposite(r caerr.Role) caerr.Role {
	if r == caerr.Client {
		return caerr.Server
	}
	return caerr.Client
}

// Send validates cmd is legal for our role, runs it through the circuit
// and channel state machines as an outgoing event, encodes it, and
// returns the bytes ready for transmission (spec §4.5). The caller is
// responsible for having already assigned any id the command needs (cid
// via AddChannel, ioid/subscription_id via NewIOID/NewSubscriptionID);
// Send treats whatever id fields a command already carries as final and
// never mutates them.
func (c *VirtualCircuit) Send(cmd commands.Command) ([]byte, error) {
	if c.state.Terminal() {
		return nil, caerr.Localf("circuit is %s, cannot send %s", c.state, cmd.Kind())
	}
	dir := cmd.Kind().Direction()
	if dir == caerr.Request && c.role != caerr.Client {
		return nil, caerr.Localf("role %s cannot send request %s", c.role, cmd.Kind())
	}
	if dir == caerr.Response && c.role != caerr.Server {
		return nil, caerr.Localf("role %s cannot send response %s", c.role, cmd.Kind())
	}

	ch, err := c.channelFor(cmd, true)
	if err != nil {
		return nil, err
	}

	if err := c.applyCircuitTransition(cmd, c.role); err != nil {
		return nil, err
	}
	if ch != nil {
		if err := c.applyChannelTransition(ch, cmd, c.role); err != nil {
			return nil, err
		}
	}
	c.fireStateTriggered()

	header, payload, err := wire.EncodeCommand(cmd)
	if err != nil {
		return nil, caerr.Localf("encoding %s: %v", cmd.Kind(), err)
	}

	c.applySideEffects(cmd, ch)
	c.lastActivity = time.Now()

	buf := make([]byte, 0, len(header)+len(payload))
	buf = append(buf, header...)
	buf = append(buf, payload...)
	return buf, nil
}

// Recv appends data to the circuit's receive queue, decodes as many whole
// commands as it can, and runs each through the state machines as an
// incoming event, in wire order (spec §4.5, §8 chunking independence).
// It returns the commands that passed validation, the number of
// unconsumed bytes left buffered, and an error the instant a decode or
// state transition fails -- commands already returned before the failure
// stand. When a decoded command fails a lookup or a transition, its bytes
// are consumed so a retry never replays them; when decoding itself fails,
// the bytes stay buffered and the circuit moves to ERROR.
func (c *VirtualCircuit) Recv(data ...[]byte) ([]commands.Command, int, error) {
	if c.state.Terminal() {
		return nil, len(c.recvBuf), caerr.Localf("circuit is %s, cannot recv", c.state)
	}
	for _, d := range data {
		c.recvBuf = append(c.recvBuf, d...)
	}

	peerRole := opposite(c.role)
	var out []commands.Command
	offset := 0
	for {
		cmd, n, err := wire.DecodeOne(c.recvBuf[offset:], peerRole)
		if err != nil {
			c.state = castate.StateError
			c.recvBuf = c.recvBuf[offset:]
			return out, len(c.recvBuf), err
		}
		if n == 0 {
			break
		}

		ch, err := c.channelFor(cmd, false)
		if err != nil {
			c.recvBuf = c.recvBuf[offset+n:]
			return out, len(c.recvBuf), err
		}
		if err := c.applyCircuitTransition(cmd, peerRole); err != nil {
			c.recvBuf = c.recvBuf[offset+n:]
			return out, len(c.recvBuf), err
		}
		if ch != nil {
			if err := c.applyChannelTransition(ch, cmd, peerRole); err != nil {
				c.recvBuf = c.recvBuf[offset+n:]
				return out, len(c.recvBuf), err
			}
		}
		c.fireStateTriggered()
		c.applySideEffects(cmd, ch)

		out = append(out, cmd)
		offset += n
	}
	c.recvBuf = c.recvBuf[offset:]
	c.lastActivity = time.Now()
	return out, len(c.recvBuf), nil
}
