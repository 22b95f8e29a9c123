package circuit

import (
	"github.com/caproto-go/caproto/internal/ca/commands"
	"github.com/caproto-go/caproto/internal/ca/dbr"
)

// RequestKind distinguishes a read from a write InFlightRequest.
type RequestKind int

const (
	RequestRead RequestKind = iota
	RequestWrite
)

// SubscriptionInfo tracks a live monitor: created by EventAddRequest,
// removed on EventCancelResponse (spec §3).
type SubscriptionInfo struct {
	SubscriptionID   uint32
	Channel          *Channel
	RequestedType    dbr.Type
	RequestedCount   uint32
	Mask             commands.EventMask
}

// InFlightRequest tracks an outstanding ReadNotify/WriteNotify request:
// created when the request is sent, removed when the matching response
// arrives or the circuit disconnects (spec §3).
type InFlightRequest struct {
	IOID    uint32
	Channel *Channel
	Kind    RequestKind
}
