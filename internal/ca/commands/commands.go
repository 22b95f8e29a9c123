package commands

import (
	"github.com/caproto-go/caproto/internal/ca/dbr"
	"github.com/caproto-go/caproto/internal/caerr"
)

// --- Version (code 0) --------------------------------------------------

// VersionRequest negotiates the circuit's priority and CA protocol
// version. Sent once by the client at the start of a circuit.
type VersionRequest struct {
	Priority uint16
	Version  uint16
}

func (VersionRequest) Kind() Kind { return KindVersionRequest }

// NewVersionRequest validates priority and version range before
// construction (spec §4.2: trivial field-range checks only).
func NewVersionRequest(priority, version uint16) (*VersionRequest, error) {
	if priority > MaxPriority {
		return nil, caerr.Valuef("priority %d exceeds maximum %d", priority, MaxPriority)
	}
	if version < MinimumProtocolVersion {
		return nil, caerr.Valuef("protocol version %d below minimum supported %d", version, MinimumProtocolVersion)
	}
	return &VersionRequest{Priority: priority, Version: version}, nil
}

// VersionResponse is the server's reply, confirming the negotiated
// version.
type VersionResponse struct {
	Version uint16
}

func (VersionResponse) Kind() Kind { return KindVersionResponse }

func NewVersionResponse(version uint16) (*VersionResponse, error) {
	if version < MinimumProtocolVersion {
		return nil, caerr.Valuef("protocol version %d below minimum supported %d", version, MinimumProtocolVersion)
	}
	return &VersionResponse{Version: version}, nil
}

// --- EventAdd / subscriptions (code 1) ---------------------------------

// EventAddRequest creates a subscription on a channel.
type EventAddRequest struct {
	Cid            uint32
	SubscriptionID uint32
	DataType       dbr.Type
	DataCount      uint32
	Mask           EventMask
}

func (EventAddRequest) Kind() Kind { return KindEventAddRequest }

func NewEventAddRequest(cid, subscriptionID uint32, dataType dbr.Type, dataCount uint32, mask EventMask) (*EventAddRequest, error) {
	if !dataType.Valid() {
		return nil, caerr.Valuef("invalid DBR type %d", uint16(dataType))
	}
	return &EventAddRequest{Cid: cid, SubscriptionID: subscriptionID, DataType: dataType, DataCount: dataCount, Mask: mask}, nil
}

// EventAddResponse delivers one subscription update. A single
// subscription produces many of these over its lifetime.
type EventAddResponse struct {
	SubscriptionID uint32
	DataType       dbr.Type
	DataCount      uint32
	Status         uint32
	Payload        dbr.Value
}

func (EventAddResponse) Kind() Kind { return KindEventAddResponse }

func NewEventAddResponse(subscriptionID uint32, dataType dbr.Type, dataCount, status uint32, payload dbr.Value) (*EventAddResponse, error) {
	if !dataType.Valid() {
		return nil, caerr.Valuef("invalid DBR type %d", uint16(dataType))
	}
	return &EventAddResponse{SubscriptionID: subscriptionID, DataType: dataType, DataCount: dataCount, Status: status, Payload: payload}, nil
}

// --- EventCancel (code 2) ------------------------------------------------

// EventCancelRequest tears down a subscription.
type EventCancelRequest struct {
	Cid            uint32
	SubscriptionID uint32
	DataType       dbr.Type
	DataCount      uint32
}

func (EventCancelRequest) Kind() Kind { return KindEventCancelRequest }

func NewEventCancelRequest(cid, subscriptionID uint32, dataType dbr.Type, dataCount uint32) (*EventCancelRequest, error) {
	if !dataType.Valid() {
		return nil, caerr.Valuef("invalid DBR type %d", uint16(dataType))
	}
	return &EventCancelRequest{Cid: cid, SubscriptionID: subscriptionID, DataType: dataType, DataCount: dataCount}, nil
}

// EventCancelResponse confirms a subscription has been removed.
type EventCancelResponse struct {
	SubscriptionID uint32
	DataType       dbr.Type
	DataCount      uint32
}

func (EventCancelResponse) Kind() Kind { return KindEventCancelResponse }

func NewEventCancelResponse(subscriptionID uint32, dataType dbr.Type, dataCount uint32) (*EventCancelResponse, error) {
	if !dataType.Valid() {
		return nil, caerr.Valuef("invalid DBR type %d", uint16(dataType))
	}
	return &EventCancelResponse{SubscriptionID: subscriptionID, DataType: dataType, DataCount: dataCount}, nil
}

// --- Read, non-notify (code 3) -- supplemented feature -------------------

// ReadRequest is the legacy, non-notify read: positionally matched to its
// ReadResponse rather than carrying an ioid.
type ReadRequest struct {
	Cid       uint32
	DataType  dbr.Type
	DataCount uint32
}

func (ReadRequest) Kind() Kind { return KindReadRequest }

func NewReadRequest(cid uint32, dataType dbr.Type, dataCount uint32) (*ReadRequest, error) {
	if !dataType.Valid() {
		return nil, caerr.Valuef("invalid DBR type %d", uint16(dataType))
	}
	return &ReadRequest{Cid: cid, DataType: dataType, DataCount: dataCount}, nil
}

// ReadResponse answers a ReadRequest.
type ReadResponse struct {
	DataType  dbr.Type
	DataCount uint32
	Payload   dbr.Value
}

func (ReadResponse) Kind() Kind { return KindReadResponse }

func NewReadResponse(dataType dbr.Type, dataCount uint32, payload dbr.Value) (*ReadResponse, error) {
	if !dataType.Valid() {
		return nil, caerr.Valuef("invalid DBR type %d", uint16(dataType))
	}
	return &ReadResponse{DataType: dataType, DataCount: dataCount, Payload: payload}, nil
}

// --- Write, no reply (code 4) --------------------------------------------

// WriteRequest writes a value with no acknowledgement.
type WriteRequest struct {
	Cid       uint32
	DataType  dbr.Type
	DataCount uint32
	Payload   dbr.Value
}

func (WriteRequest) Kind() Kind { return KindWriteRequest }

func NewWriteRequest(cid uint32, dataType dbr.Type, dataCount uint32, payload dbr.Value) (*WriteRequest, error) {
	if !dataType.Valid() {
		return nil, caerr.Valuef("invalid DBR type %d", uint16(dataType))
	}
	return &WriteRequest{Cid: cid, DataType: dataType, DataCount: dataCount, Payload: payload}, nil
}

// --- Error (code 11) ------------------------------------------------------

// ErrorResponse reports that a previously sent command could not be
// honored. OriginalRequestHeader is the full header of the offending
// command.
type ErrorResponse struct {
	Cid                   uint32
	StatusCode            uint32
	OriginalRequestHeader Header
	Message               string
}

func (ErrorResponse) Kind() Kind { return KindErrorResponse }

func NewErrorResponse(cid, statusCode uint32, original Header, message string) (*ErrorResponse, error) {
	return &ErrorResponse{Cid: cid, StatusCode: statusCode, OriginalRequestHeader: original, Message: message}, nil
}

// --- ClearChannel (code 12) ------------------------------------------------

// ClearChannelRequest asks the server to destroy a channel.
type ClearChannelRequest struct {
	Cid uint32
	Sid uint32
}

func (ClearChannelRequest) Kind() Kind { return KindClearChannelRequest }

func NewClearChannelRequest(cid, sid uint32) (*ClearChannelRequest, error) {
	return &ClearChannelRequest{Cid: cid, Sid: sid}, nil
}

// ClearChannelResponse confirms a channel has been destroyed.
type ClearChannelResponse struct {
	Cid uint32
	Sid uint32
}

func (ClearChannelResponse) Kind() Kind { return KindClearChannelResponse }

func NewClearChannelResponse(cid, sid uint32) (*ClearChannelResponse, error) {
	return &ClearChannelResponse{Cid: cid, Sid: sid}, nil
}

// --- ReadNotify (code 15) ---------------------------------------------------

// ReadNotifyRequest reads a channel's value, matched to its response by
// ioid.
type ReadNotifyRequest struct {
	Cid       uint32
	DataType  dbr.Type
	DataCount uint32
	IOID      uint32
}

func (ReadNotifyRequest) Kind() Kind { return KindReadNotifyRequest }

func NewReadNotifyRequest(cid uint32, dataType dbr.Type, dataCount, ioid uint32) (*ReadNotifyRequest, error) {
	if !dataType.Valid() {
		return nil, caerr.Valuef("invalid DBR type %d", uint16(dataType))
	}
	return &ReadNotifyRequest{Cid: cid, DataType: dataType, DataCount: dataCount, IOID: ioid}, nil
}

// ReadNotifyResponse answers a ReadNotifyRequest.
type ReadNotifyResponse struct {
	DataType  dbr.Type
	DataCount uint32
	IOID      uint32
	Status    uint32
	Payload   dbr.Value
}

func (ReadNotifyResponse) Kind() Kind { return KindReadNotifyResponse }

func NewReadNotifyResponse(dataType dbr.Type, dataCount, ioid, status uint32, payload dbr.Value) (*ReadNotifyResponse, error) {
	if !dataType.Valid() {
		return nil, caerr.Valuef("invalid DBR type %d", uint16(dataType))
	}
	return &ReadNotifyResponse{DataType: dataType, DataCount: dataCount, IOID: ioid, Status: status, Payload: payload}, nil
}

// --- CreateChan (code 18) / CreateChFail (code 26) --------------------------

// CreateChanRequest asks the server to open a channel by name.
type CreateChanRequest struct {
	Cid         uint32
	ChannelName string
}

func (CreateChanRequest) Kind() Kind { return KindCreateChanRequest }

func NewCreateChanRequest(cid uint32, name string) (*CreateChanRequest, error) {
	if len(name) == 0 {
		return nil, caerr.Valuef("channel name must not be empty")
	}
	if len(name) > MaxChannelNameLength {
		return nil, caerr.Valuef("channel name %q exceeds maximum length %d", name, MaxChannelNameLength)
	}
	return &CreateChanRequest{Cid: cid, ChannelName: name}, nil
}

// CreateChanResponse confirms a channel now exists, reporting the
// server-assigned sid and the PV's native type and element count.
type CreateChanResponse struct {
	Cid             uint32
	Sid             uint32
	NativeDataType  dbr.Type
	NativeDataCount uint32
}

func (CreateChanResponse) Kind() Kind { return KindCreateChanResponse }

func NewCreateChanResponse(cid, sid uint32, nativeDataType dbr.Type, nativeDataCount uint32) (*CreateChanResponse, error) {
	if !nativeDataType.Valid() {
		return nil, caerr.Valuef("invalid DBR type %d", uint16(nativeDataType))
	}
	return &CreateChanResponse{Cid: cid, Sid: sid, NativeDataType: nativeDataType, NativeDataCount: nativeDataCount}, nil
}

// CreateChFailResponse rejects a CreateChanRequest for an unknown PV.
type CreateChFailResponse struct {
	Cid uint32
}

func (CreateChFailResponse) Kind() Kind { return KindCreateChFailResponse }

func NewCreateChFailResponse(cid uint32) (*CreateChFailResponse, error) {
	return &CreateChFailResponse{Cid: cid}, nil
}

// --- WriteNotify (code 19) ---------------------------------------------------

// WriteNotifyRequest writes a value, matched to its response by ioid.
type WriteNotifyRequest struct {
	Cid       uint32
	DataType  dbr.Type
	DataCount uint32
	IOID      uint32
	Payload   dbr.Value
}

func (WriteNotifyRequest) Kind() Kind { return KindWriteNotifyRequest }

func NewWriteNotifyRequest(cid uint32, dataType dbr.Type, dataCount, ioid uint32, payload dbr.Value) (*WriteNotifyRequest, error) {
	if !dataType.Valid() {
		return nil, caerr.Valuef("invalid DBR type %d", uint16(dataType))
	}
	return &WriteNotifyRequest{Cid: cid, DataType: dataType, DataCount: dataCount, IOID: ioid, Payload: payload}, nil
}

// WriteNotifyResponse acknowledges a WriteNotifyRequest.
type WriteNotifyResponse struct {
	DataType  dbr.Type
	DataCount uint32
	IOID      uint32
	Status    uint32
}

func (WriteNotifyResponse) Kind() Kind { return KindWriteNotifyResponse }

func NewWriteNotifyResponse(dataType dbr.Type, dataCount, ioid, status uint32) (*WriteNotifyResponse, error) {
	if !dataType.Valid() {
		return nil, caerr.Valuef("invalid DBR type %d", uint16(dataType))
	}
	return &WriteNotifyResponse{DataType: dataType, DataCount: dataCount, IOID: ioid, Status: status}, nil
}

// --- Identity (codes 20, 21, 22) ---------------------------------------------

// ClientNameRequest announces the connecting user's name.
type ClientNameRequest struct {
	ClientName string
}

func (ClientNameRequest) Kind() Kind { return KindClientNameRequest }

func NewClientNameRequest(name string) (*ClientNameRequest, error) {
	if len(name) > MaxIdentityLength {
		return nil, caerr.Valuef("client name %q exceeds maximum length %d", name, MaxIdentityLength)
	}
	return &ClientNameRequest{ClientName: name}, nil
}

// HostNameRequest announces the connecting host's name.
type HostNameRequest struct {
	HostName string
}

func (HostNameRequest) Kind() Kind { return KindHostNameRequest }

func NewHostNameRequest(name string) (*HostNameRequest, error) {
	if len(name) > MaxIdentityLength {
		return nil, caerr.Valuef("host name %q exceeds maximum length %d", name, MaxIdentityLength)
	}
	return &HostNameRequest{HostName: name}, nil
}

// AccessRightsResponse tells the client what it may do with a channel.
type AccessRightsResponse struct {
	Cid              uint32
	AccessRightsMask uint32
}

func (AccessRightsResponse) Kind() Kind { return KindAccessRightsResponse }

func NewAccessRightsResponse(cid, mask uint32) (*AccessRightsResponse, error) {
	return &AccessRightsResponse{Cid: cid, AccessRightsMask: mask}, nil
}

// --- Echo (code 23) -----------------------------------------------------------

// EchoRequest is a keepalive probe; either role may send one.
type EchoRequest struct{}

func (EchoRequest) Kind() Kind { return KindEchoRequest }

func NewEchoRequest() (*EchoRequest, error) { return &EchoRequest{}, nil }

// EchoResponse answers an EchoRequest verbatim (empty payload).
type EchoResponse struct{}

func (EchoResponse) Kind() Kind { return KindEchoResponse }

func NewEchoResponse() (*EchoResponse, error) { return &EchoResponse{}, nil }

// --- ServerDisconn (code 27) ---------------------------------------------------

// ServerDisconnResponse tells the client a channel has been torn down
// server-side (e.g. the underlying record was removed).
type ServerDisconnResponse struct {
	Cid uint32
}

func (ServerDisconnResponse) Kind() Kind { return KindServerDisconnResponse }

func NewServerDisconnResponse(cid uint32) (*ServerDisconnResponse, error) {
	return &ServerDisconnResponse{Cid: cid}, nil
}
