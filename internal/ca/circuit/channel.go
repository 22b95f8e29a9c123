// Package circuit implements VirtualCircuit, the top-level object a host
// binds to a transport (spec §3, §4.5): it owns the receive buffer,
// channel/subscription/in-flight registries, and drives every incoming or
// outgoing command through the circuit and channel state machines in
// internal/ca/castate before handing bytes to, or accepting bytes from,
// the codec in internal/ca/wire. It fills in the same role as a thin
// stateful wrapper that tracks a message counter and mediates between a
// connection and raw packets, generalized from one outstanding command to
// a full per-circuit registry.
package circuit

import (
	"github.com/caproto-go/caproto/internal/ca/castate"
	"github.com/caproto-go/caproto/internal/ca/dbr"
)

// Channel is a named process variable multiplexed on a VirtualCircuit,
// identified by a client-assigned cid and, once the server acknowledges
// it, a server-assigned sid (spec §3).
type Channel struct {
	circuit *VirtualCircuit // non-owning; the circuit owns the Channel, never the reverse

	name string
	cid  uint32

	sidSet          bool
	sid             uint32
	nativeDataType  dbr.Type
	nativeDataCount uint32
	accessRights    uint32

	state castate.State
}

// Name is the PV name this channel was opened for.
func (ch *Channel) Name() string { return ch.name }

// CID is the client-assigned channel identifier.
func (ch *Channel) CID() uint32 { return ch.cid }

// SID is the server-assigned channel identifier and whether the server
// has assigned one yet (it hasn't until CreateChanResponse; a
// CreateChFailResponse leaves it unset).
func (ch *Channel) SID() (uint32, bool) { return ch.sid, ch.sidSet }

// NativeDataType and NativeDataCount report the PV's native DBR type and
// element count, as announced in CreateChanResponse. Both are zero until
// the channel reaches CONNECTED.
func (ch *Channel) NativeDataType() dbr.Type    { return ch.nativeDataType }
func (ch *Channel) NativeDataCount() uint32     { return ch.nativeDataCount }
func (ch *Channel) AccessRights() uint32        { return ch.accessRights }
func (ch *Channel) State() castate.State        { return ch.state }
func (ch *Channel) Circuit() *VirtualCircuit    { return ch.circuit }

// Disconnect tears down just this channel: it moves to CLOSED and
// returns the in-flight requests and subscriptions that referenced it so
// the host can fail their callers, leaving the rest of the circuit (and
// its other channels) untouched. Idempotent: calling it again on an
// already-terminal channel returns nothing.
func (ch *Channel) Disconnect() ([]*InFlightRequest, []*SubscriptionInfo) {
	if ch.state.Terminal() {
		return nil, nil
	}
	ch.state = castate.StateClosed

	c := ch.circuit
	var reqs []*InFlightRequest
	for id, r := range c.inFlight {
		if r.Channel == ch {
			reqs = append(reqs, r)
			delete(c.inFlight, id)
		}
	}
	var subs []*SubscriptionInfo
	for id, s := range c.subscriptions {
		if s.Channel == ch {
			subs = append(subs, s)
			delete(c.subscriptions, id)
		}
	}
	return reqs, subs
}
