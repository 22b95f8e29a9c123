// Package commands defines the tagged Command variants for the Channel
// Access commands this engine understands: one Go struct per variant,
// carrying exactly the fields its wire payload needs, plus a static
// Direction so the circuit can tell requests from responses (and Echo,
// which is both) without inspecting role or state.
//
// Construction here validates only the trivially checkable constraints
// (string lengths, priority range, protocol version floor); whether a
// given command is legal right now is the state machines' job, not this
// package's.
package commands

import "github.com/caproto-go/caproto/internal/caerr"

// Kind discriminates the command variants. Two variants can share a wire
// command code (e.g. VersionRequest and VersionResponse both use code 0);
// Kind disambiguates what code 0 means in a particular message.
type Kind uint8

const (
	KindVersionRequest Kind = iota
	KindVersionResponse
	KindEventAddRequest
	KindEventAddResponse
	KindEventCancelRequest
	KindEventCancelResponse
	KindReadRequest
	KindReadResponse
	KindWriteRequest
	KindErrorResponse
	KindClearChannelRequest
	KindClearChannelResponse
	KindReadNotifyRequest
	KindReadNotifyResponse
	KindCreateChanRequest
	KindCreateChanResponse
	KindCreateChFailResponse
	KindWriteNotifyRequest
	KindWriteNotifyResponse
	KindClientNameRequest
	KindHostNameRequest
	KindAccessRightsResponse
	KindEchoRequest
	KindEchoResponse
	KindServerDisconnResponse
)

var kindNames = map[Kind]string{
	KindVersionRequest:        "VersionRequest",
	KindVersionResponse:       "VersionResponse",
	KindEventAddRequest:       "EventAddRequest",
	KindEventAddResponse:      "EventAddResponse",
	KindEventCancelRequest:    "EventCancelRequest",
	KindEventCancelResponse:   "EventCancelResponse",
	KindReadRequest:           "ReadRequest",
	KindReadResponse:          "ReadResponse",
	KindWriteRequest:          "WriteRequest",
	KindErrorResponse:         "ErrorResponse",
	KindClearChannelRequest:   "ClearChannelRequest",
	KindClearChannelResponse:  "ClearChannelResponse",
	KindReadNotifyRequest:     "ReadNotifyRequest",
	KindReadNotifyResponse:    "ReadNotifyResponse",
	KindCreateChanRequest:     "CreateChanRequest",
	KindCreateChanResponse:    "CreateChanResponse",
	KindCreateChFailResponse:  "CreateChFailResponse",
	KindWriteNotifyRequest:    "WriteNotifyRequest",
	KindWriteNotifyResponse:   "WriteNotifyResponse",
	KindClientNameRequest:     "ClientNameRequest",
	KindHostNameRequest:       "HostNameRequest",
	KindAccessRightsResponse:  "AccessRightsResponse",
	KindEchoRequest:           "EchoRequest",
	KindEchoResponse:          "EchoResponse",
	KindServerDisconnResponse: "ServerDisconnResponse",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UnknownKind"
}

// kindDirection is the static DIRECTION tag required by spec §4.2: REQUEST
// for *Request variants, RESPONSE for *Response variants, Bidirectional
// for the two Echo variants.
var kindDirection = map[Kind]caerr.Direction{
	KindVersionRequest:        caerr.Request,
	KindVersionResponse:       caerr.Response,
	KindEventAddRequest:       caerr.Request,
	KindEventAddResponse:      caerr.Response,
	KindEventCancelRequest:    caerr.Request,
	KindEventCancelResponse:   caerr.Response,
	KindReadRequest:           caerr.Request,
	KindReadResponse:          caerr.Response,
	KindWriteRequest:          caerr.Request,
	KindErrorResponse:         caerr.Response,
	KindClearChannelRequest:   caerr.Request,
	KindClearChannelResponse:  caerr.Response,
	KindReadNotifyRequest:     caerr.Request,
	KindReadNotifyResponse:    caerr.Response,
	KindCreateChanRequest:     caerr.Request,
	KindCreateChanResponse:    caerr.Response,
	KindCreateChFailResponse:  caerr.Response,
	KindWriteNotifyRequest:    caerr.Request,
	KindWriteNotifyResponse:   caerr.Response,
	KindClientNameRequest:     caerr.Request,
	KindHostNameRequest:       caerr.Request,
	KindAccessRightsResponse:  caerr.Response,
	KindEchoRequest:           caerr.Bidirectional,
	KindEchoResponse:          caerr.Bidirectional,
	KindServerDisconnResponse: caerr.Response,
}

// Direction returns k's static DIRECTION tag.
func (k Kind) Direction() caerr.Direction { return kindDirection[k] }

// Command is implemented by every command variant in this package.
type Command interface {
	Kind() Kind
}
