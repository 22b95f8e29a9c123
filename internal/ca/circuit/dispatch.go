package circuit

import (
	"fmt"

	"github.com/caproto-go/caproto/internal/ca/castate"
	"github.com/caproto-go/caproto/internal/ca/commands"
	"github.com/caproto-go/caproto/internal/caerr"
)

// mustChannel looks up a channel by cid, reporting a KeyError if it's
// unknown -- most per-channel commands reference a cid that AddChannel
// (client side) or a prior CreateChanRequest (server side) must already
// have registered.
func (c *VirtualCircuit) mustChannel(cid uint32) (*Channel, error) {
	ch, ok := c.channelsByCID[cid]
	if !ok {
		return nil, caerr.Keyf("no channel registered for cid %d", cid)
	}
	return ch, nil
}

// optionalChannel is mustChannel without the error: ErrorResponse
// legitimately references a cid that may not resolve (spec §7: the
// circuit itself can fault before any channel exists), so a miss here
// just means "this ErrorResponse isn't about a channel we know."
func (c *VirtualCircuit) optionalChannel(cid uint32) *Channel {
	return c.channelsByCID[cid]
}

func (c *VirtualCircuit) channelForSubscription(id uint32) (*Channel, error) {
	sub, ok := c.subscriptions[id]
	if !ok {
		return nil, caerr.Keyf("no subscription registered for subscription_id %d", id)
	}
	return sub.Channel, nil
}

func (c *VirtualCircuit) channelForIOID(id uint32) (*Channel, error) {
	req, ok := c.inFlight[id]
	if !ok {
		return nil, caerr.Keyf("no in-flight request registered for ioid %d", id)
	}
	return req.Channel, nil
}

// channelFor reports which Channel, if any, cmd concerns. isSend
// distinguishes an outgoing command (whose cid must already be
// registered) from an incoming one, where a CreateChanRequest seen for
// the first time on a SERVER circuit creates the channel record on the
// spot (spec §4.3: the server's channel state machine starts at IDLE
// precisely so its first event can be this one).
func (c *VirtualCircuit) channelFor(cmd commands.Command, isSend bool) (*Channel, error) {
	switch v := cmd.(type) {
	case *commands.VersionRequest, *commands.VersionResponse,
		*commands.ClientNameRequest, *commands.HostNameRequest,
		*commands.EchoRequest, *commands.EchoResponse:
		return nil, nil

	case *commands.EventAddRequest:
		return c.mustChannel(v.Cid)
	case *commands.EventAddResponse:
		return c.channelForSubscription(v.SubscriptionID)
	case *commands.EventCancelRequest:
		return c.mustChannel(v.Cid)
	case *commands.EventCancelResponse:
		return c.channelForSubscription(v.SubscriptionID)

	case *commands.ReadRequest:
		return c.mustChannel(v.Cid)
	case *commands.ReadResponse:
		// Legacy non-notify read: nothing in the wire reply identifies
		// which channel it answers.
		return nil, nil
	case *commands.WriteRequest:
		return c.mustChannel(v.Cid)

	case *commands.ErrorResponse:
		return c.optionalChannel(v.Cid), nil

	case *commands.ClearChannelRequest:
		return c.mustChannel(v.Cid)
	case *commands.ClearChannelResponse:
		return c.mustChannel(v.Cid)

	case *commands.ReadNotifyRequest:
		return c.mustChannel(v.Cid)
	case *commands.ReadNotifyResponse:
		return c.channelForIOID(v.IOID)

	case *commands.CreateChanRequest:
		if ch, ok := c.channelsByCID[v.Cid]; ok {
			return ch, nil
		}
		if isSend {
			return nil, caerr.Localf("no channel registered for cid %d", v.Cid)
		}
		ch := &Channel{circuit: c, name: v.ChannelName, cid: v.Cid, state: castate.StateIdle}
		c.channelsByCID[v.Cid] = ch
		return ch, nil
	case *commands.CreateChanResponse:
		return c.mustChannel(v.Cid)
	case *commands.CreateChFailResponse:
		return c.mustChannel(v.Cid)

	case *commands.WriteNotifyRequest:
		return c.mustChannel(v.Cid)
	case *commands.WriteNotifyResponse:
		return c.channelForIOID(v.IOID)

	case *commands.AccessRightsResponse:
		return c.mustChannel(v.Cid)
	case *commands.ServerDisconnResponse:
		return c.mustChannel(v.Cid)

	default:
		return nil, caerr.Localf("unhandled command type %T", cmd)
	}
}

// applyCircuitTransition looks up the circuit-machine table keyed by our
// own role (spec §9: the table already accounts for whether a kind is a
// request we send or a response we receive), and advances c.state.
// senderRole is used only to attribute a table miss via caerr.FaultFor. A
// transition failure poisons the circuit to ERROR (spec §7: a state
// transition failure leaves the offending machine in ERROR, and
// subsequent operations on it fail fast).
func (c *VirtualCircuit) applyCircuitTransition(cmd commands.Command, senderRole caerr.Role) error {
	kind := cmd.Kind()
	next, ok := castate.NextCircuitState(c.role, c.state, kind)
	if !ok {
		err := caerr.FaultForReason(c.role, kind.Direction(), senderRole,
			fmt.Sprintf("%s illegal for circuit in state %s", kind, c.state))
		c.state = castate.StateError
		return err
	}
	c.state = next
	return nil
}

// applyChannelTransition is applyCircuitTransition's channel-machine
// counterpart; a transition failure poisons the channel to ERROR the
// same way.
func (c *VirtualCircuit) applyChannelTransition(ch *Channel, cmd commands.Command, senderRole caerr.Role) error {
	kind := cmd.Kind()
	next, ok := castate.NextChannelState(c.role, ch.state, kind)
	if !ok {
		err := caerr.FaultForReason(c.role, kind.Direction(), senderRole,
			fmt.Sprintf("%s illegal for channel %q in state %s", kind, ch.name, ch.state))
		ch.state = castate.StateError
		return err
	}
	ch.state = next
	return nil
}

// fireStateTriggered applies spec §4.3 rule (b) to every channel on the
// circuit: one parked in NEED_CIRCUIT whose circuit just reached
// CONNECTED advances to SEND_CREATE_CHAN_REQUEST. Called after every
// circuit-state change and after AddChannel.
func (c *VirtualCircuit) fireStateTriggered() {
	for _, ch := range c.channelsByCID {
		if next, ok := castate.StateTriggered(ch.state, c.state); ok {
			ch.state = next
		}
	}
}

// applySideEffects updates circuit/channel bookkeeping -- identity
// strings, the negotiated version, subscription and in-flight request
// registries, sid assignment -- that falls out of a command but isn't
// part of the state machines themselves. Called for both outgoing
// (Send) and incoming (Recv) commands, after their transitions succeed.
func (c *VirtualCircuit) applySideEffects(cmd commands.Command, ch *Channel) {
	switch v := cmd.(type) {
	case *commands.VersionRequest:
		c.version = v.Version
	case *commands.VersionResponse:
		c.version = v.Version
	case *commands.ClientNameRequest:
		c.clientName = v.ClientName
	case *commands.HostNameRequest:
		c.hostName = v.HostName

	case *commands.EventAddRequest:
		c.subscriptions[v.SubscriptionID] = &SubscriptionInfo{
			SubscriptionID: v.SubscriptionID,
			Channel:        ch,
			RequestedType:  v.DataType,
			RequestedCount: v.DataCount,
			Mask:           v.Mask,
		}
	case *commands.EventCancelResponse:
		delete(c.subscriptions, v.SubscriptionID)

	case *commands.ReadNotifyRequest:
		c.inFlight[v.IOID] = &InFlightRequest{IOID: v.IOID, Channel: ch, Kind: RequestRead}
	case *commands.ReadNotifyResponse:
		delete(c.inFlight, v.IOID)
	case *commands.WriteNotifyRequest:
		c.inFlight[v.IOID] = &InFlightRequest{IOID: v.IOID, Channel: ch, Kind: RequestWrite}
	case *commands.WriteNotifyResponse:
		delete(c.inFlight, v.IOID)

	case *commands.CreateChanResponse:
		if ch != nil {
			ch.sid = v.Sid
			ch.sidSet = true
			ch.nativeDataType = v.NativeDataType
			ch.nativeDataCount = v.NativeDataCount
			c.channelsBySID[v.Sid] = ch
		}

	case *commands.AccessRightsResponse:
		if ch != nil {
			ch.accessRights = v.AccessRightsMask
		}
	}
}
