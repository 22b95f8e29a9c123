package wire

import (
	"fmt"

	"github.com/caproto-go/caproto/internal/ca/commands"
	"github.com/caproto-go/caproto/internal/ca/dbr"
)

// Wire command codes, spec §6.
const (
	codeVersion        = 0
	codeEventAdd       = 1
	codeEventCancel    = 2
	codeRead           = 3
	codeWrite          = 4
	codeError          = 11
	codeClearChannel   = 12
	codeReadNotify     = 15
	codeCreateChan     = 18
	codeWriteNotify    = 19
	codeClientName     = 20
	codeHostName       = 21
	codeAccessRights   = 22
	codeEcho           = 23
	codeCreateChFail   = 26
	codeServerDisconn  = 27
)

// EncodeCommand renders cmd as a header and payload ready to be written to
// the wire, in that order. The payload is padded to an 8-byte boundary;
// header.PayloadSize records the true, unpadded length, per spec §4.1.
func EncodeCommand(cmd commands.Command) (header []byte, payload []byte, err error) {
	h, body, err := buildHeaderAndPayload(cmd)
	if err != nil {
		return nil, nil, err
	}
	h.PayloadSize = uint32(len(body))
	padded := make([]byte, align8(uint32(len(body))))
	copy(padded, body)
	return encodeHeader(h), padded, nil
}

func buildHeaderAndPayload(cmd commands.Command) (commands.Header, []byte, error) {
	switch c := cmd.(type) {
	case *commands.VersionRequest:
		return commands.Header{Command: codeVersion, DataType: c.Priority, DataCount: uint32(c.Version)}, nil, nil
	case *commands.VersionResponse:
		return commands.Header{Command: codeVersion, DataCount: uint32(c.Version)}, nil, nil

	case *commands.EventAddRequest:
		h := commands.Header{
			Command:    codeEventAdd,
			DataType:   uint16(c.DataType),
			DataCount:  c.DataCount,
			Parameter1: c.Cid,
			Parameter2: c.SubscriptionID,
		}
		return h, encodeEventAddPayload(c.Mask), nil
	case *commands.EventAddResponse:
		h := commands.Header{
			Command:    codeEventAdd,
			DataType:   uint16(c.DataType),
			DataCount:  c.DataCount,
			Parameter1: c.Status,
			Parameter2: c.SubscriptionID,
		}
		body, err := dbr.Encode(c.DataType, c.Payload)
		if err != nil {
			return commands.Header{}, nil, fmt.Errorf("encoding EventAddResponse payload: %w", err)
		}
		return h, body, nil

	case *commands.EventCancelRequest:
		h := commands.Header{
			Command:    codeEventCancel,
			DataType:   uint16(c.DataType),
			DataCount:  c.DataCount,
			Parameter1: c.Cid,
			Parameter2: c.SubscriptionID,
		}
		return h, nil, nil
	case *commands.EventCancelResponse:
		h := commands.Header{
			Command:    codeEventCancel,
			DataType:   uint16(c.DataType),
			DataCount:  c.DataCount,
			Parameter2: c.SubscriptionID,
		}
		return h, nil, nil

	case *commands.ReadRequest:
		h := commands.Header{Command: codeRead, DataType: uint16(c.DataType), DataCount: c.DataCount, Parameter1: c.Cid}
		return h, nil, nil
	case *commands.ReadResponse:
		h := commands.Header{Command: codeRead, DataType: uint16(c.DataType), DataCount: c.DataCount}
		body, err := dbr.Encode(c.DataType, c.Payload)
		if err != nil {
			return commands.Header{}, nil, fmt.Errorf("encoding ReadResponse payload: %w", err)
		}
		return h, body, nil

	case *commands.WriteRequest:
		h := commands.Header{Command: codeWrite, DataType: uint16(c.DataType), DataCount: c.DataCount, Parameter1: c.Cid}
		body, err := dbr.Encode(c.DataType, c.Payload)
		if err != nil {
			return commands.Header{}, nil, fmt.Errorf("encoding WriteRequest payload: %w", err)
		}
		return h, body, nil

	case *commands.ErrorResponse:
		h := commands.Header{Command: codeError, Parameter1: c.Cid, Parameter2: c.StatusCode}
		body := append(encodeHeaderFixed(c.OriginalRequestHeader), writeCString(c.Message)...)
		return h, body, nil

	case *commands.ClearChannelRequest:
		h := commands.Header{Command: codeClearChannel, Parameter1: c.Cid, Parameter2: c.Sid}
		return h, nil, nil
	case *commands.ClearChannelResponse:
		h := commands.Header{Command: codeClearChannel, Parameter1: c.Cid, Parameter2: c.Sid}
		return h, nil, nil

	case *commands.ReadNotifyRequest:
		h := commands.Header{Command: codeReadNotify, DataType: uint16(c.DataType), DataCount: c.DataCount, Parameter1: c.Cid, Parameter2: c.IOID}
		return h, nil, nil
	case *commands.ReadNotifyResponse:
		h := commands.Header{Command: codeReadNotify, DataType: uint16(c.DataType), DataCount: c.DataCount, Parameter1: c.Status, Parameter2: c.IOID}
		body, err := dbr.Encode(c.DataType, c.Payload)
		if err != nil {
			return commands.Header{}, nil, fmt.Errorf("encoding ReadNotifyResponse payload: %w", err)
		}
		return h, body, nil

	case *commands.CreateChanRequest:
		h := commands.Header{Command: codeCreateChan, Parameter1: c.Cid}
		return h, writeCString(c.ChannelName), nil
	case *commands.CreateChanResponse:
		h := commands.Header{
			Command:    codeCreateChan,
			DataType:   uint16(c.NativeDataType),
			DataCount:  c.NativeDataCount,
			Parameter1: c.Cid,
			Parameter2: c.Sid,
		}
		return h, nil, nil
	case *commands.CreateChFailResponse:
		h := commands.Header{Command: codeCreateChFail, Parameter1: c.Cid}
		return h, nil, nil

	case *commands.WriteNotifyRequest:
		h := commands.Header{Command: codeWriteNotify, DataType: uint16(c.DataType), DataCount: c.DataCount, Parameter1: c.Cid, Parameter2: c.IOID}
		body, err := dbr.Encode(c.DataType, c.Payload)
		if err != nil {
			return commands.Header{}, nil, fmt.Errorf("encoding WriteNotifyRequest payload: %w", err)
		}
		return h, body, nil
	case *commands.WriteNotifyResponse:
		h := commands.Header{Command: codeWriteNotify, DataType: uint16(c.DataType), DataCount: c.DataCount, Parameter1: c.Status, Parameter2: c.IOID}
		return h, nil, nil

	case *commands.ClientNameRequest:
		return commands.Header{Command: codeClientName}, writeCString(c.ClientName), nil
	case *commands.HostNameRequest:
		return commands.Header{Command: codeHostName}, writeCString(c.HostName), nil

	case *commands.AccessRightsResponse:
		h := commands.Header{Command: codeAccessRights, Parameter1: c.Cid, Parameter2: c.AccessRightsMask}
		return h, nil, nil

	case *commands.EchoRequest:
		return commands.Header{Command: codeEcho}, nil, nil
	case *commands.EchoResponse:
		return commands.Header{Command: codeEcho}, nil, nil

	case *commands.ServerDisconnResponse:
		h := commands.Header{Command: codeServerDisconn, Parameter1: c.Cid}
		return h, nil, nil

	default:
		return commands.Header{}, nil, fmt.Errorf("wire: no encoding for command type %T", cmd)
	}
}
