package wire

import (
	"github.com/caproto-go/caproto/internal/ca/commands"
	"github.com/caproto-go/caproto/internal/ca/dbr"
	"github.com/caproto-go/caproto/internal/caerr"
)

// DecodeOne decodes a single command from the front of buf. consumed==0
// with a nil command and nil error means buf doesn't yet hold a complete
// frame; the caller should buffer more bytes and retry, per spec §4.1 ("if
// a header indicates a payload longer than what is buffered, the decoder
// consumes nothing and reports zero commands").
//
// senderRole is the role of whoever put these bytes on the wire. Several
// wire command codes are shared between a REQUEST and a RESPONSE variant
// (VersionRequest/Response both use code 0, and so on); since only a
// CLIENT ever sends requests and only a SERVER ever sends responses (spec
// §4.5), senderRole is what disambiguates which Go type a shared code
// decodes to. Command codes with only one variant ignore senderRole.
func DecodeOne(buf []byte, senderRole caerr.Role) (commands.Command, int, error) {
	h, headerLen, ok := decodeHeader(buf)
	if !ok {
		return nil, 0, nil
	}
	paddedLen := int(align8(h.PayloadSize))
	total := headerLen + paddedLen
	if len(buf) < total {
		return nil, 0, nil
	}
	payload := buf[headerLen : headerLen+int(h.PayloadSize)]

	cmd, err := decodeBody(h, payload, senderRole)
	if err != nil {
		return nil, 0, err
	}
	return cmd, total, nil
}

// Decode decodes every whole command buffered at the front of buf,
// stopping (without error) at the first incomplete frame. It never
// retains bytes: consumed is how much of buf the returned commands
// occupied.
func Decode(buf []byte, senderRole caerr.Role) ([]commands.Command, int, error) {
	var out []commands.Command
	total := 0
	for {
		cmd, n, err := DecodeOne(buf[total:], senderRole)
		if err != nil {
			return out, total, err
		}
		if n == 0 {
			break
		}
		out = append(out, cmd)
		total += n
	}
	return out, total, nil
}

func decodeBody(h commands.Header, payload []byte, senderRole caerr.Role) (commands.Command, error) {
	fromClient := senderRole == caerr.Client

	switch h.Command {
	case codeVersion:
		if fromClient {
			c, err := commands.NewVersionRequest(h.DataType, uint16(h.DataCount))
			return wrap(c, err)
		}
		c, err := commands.NewVersionResponse(uint16(h.DataCount))
		return wrap(c, err)

	case codeEventAdd:
		dt := dbr.Type(h.DataType)
		if fromClient {
			mask := decodeEventAddPayload(payload)
			c, err := commands.NewEventAddRequest(h.Parameter1, h.Parameter2, dt, h.DataCount, mask)
			return wrap(c, err)
		}
		val, err := dbr.Decode(dt, h.DataCount, payload)
		if err != nil {
			return nil, caerr.Remotef("decoding EventAddResponse payload: %v", err)
		}
		c, err := commands.NewEventAddResponse(h.Parameter2, dt, h.DataCount, h.Parameter1, val)
		return wrap(c, err)

	case codeEventCancel:
		dt := dbr.Type(h.DataType)
		if fromClient {
			c, err := commands.NewEventCancelRequest(h.Parameter1, h.Parameter2, dt, h.DataCount)
			return wrap(c, err)
		}
		c, err := commands.NewEventCancelResponse(h.Parameter2, dt, h.DataCount)
		return wrap(c, err)

	case codeRead:
		dt := dbr.Type(h.DataType)
		if fromClient {
			c, err := commands.NewReadRequest(h.Parameter1, dt, h.DataCount)
			return wrap(c, err)
		}
		val, err := dbr.Decode(dt, h.DataCount, payload)
		if err != nil {
			return nil, caerr.Remotef("decoding ReadResponse payload: %v", err)
		}
		c, err := commands.NewReadResponse(dt, h.DataCount, val)
		return wrap(c, err)

	case codeWrite:
		dt := dbr.Type(h.DataType)
		val, err := dbr.Decode(dt, h.DataCount, payload)
		if err != nil {
			return nil, caerr.Remotef("decoding WriteRequest payload: %v", err)
		}
		c, err := commands.NewWriteRequest(h.Parameter1, dt, h.DataCount, val)
		return wrap(c, err)

	case codeError:
		orig, ok := decodeHeaderFixed(payload)
		if !ok {
			return nil, caerr.Remotef("ErrorResponse payload too short for embedded header")
		}
		msg := readCString(payload[fixedHeaderSize:])
		c, err := commands.NewErrorResponse(h.Parameter1, h.Parameter2, orig, msg)
		return wrap(c, err)

	case codeClearChannel:
		if fromClient {
			c, err := commands.NewClearChannelRequest(h.Parameter1, h.Parameter2)
			return wrap(c, err)
		}
		c, err := commands.NewClearChannelResponse(h.Parameter1, h.Parameter2)
		return wrap(c, err)

	case codeReadNotify:
		dt := dbr.Type(h.DataType)
		if fromClient {
			c, err := commands.NewReadNotifyRequest(h.Parameter1, dt, h.DataCount, h.Parameter2)
			return wrap(c, err)
		}
		val, err := dbr.Decode(dt, h.DataCount, payload)
		if err != nil {
			return nil, caerr.Remotef("decoding ReadNotifyResponse payload: %v", err)
		}
		c, err := commands.NewReadNotifyResponse(dt, h.DataCount, h.Parameter2, h.Parameter1, val)
		return wrap(c, err)

	case codeCreateChan:
		if fromClient {
			name := readCString(payload)
			c, err := commands.NewCreateChanRequest(h.Parameter1, name)
			return wrap(c, err)
		}
		c, err := commands.NewCreateChanResponse(h.Parameter1, h.Parameter2, dbr.Type(h.DataType), h.DataCount)
		return wrap(c, err)

	case codeCreateChFail:
		c, err := commands.NewCreateChFailResponse(h.Parameter1)
		return wrap(c, err)

	case codeWriteNotify:
		dt := dbr.Type(h.DataType)
		if fromClient {
			val, err := dbr.Decode(dt, h.DataCount, payload)
			if err != nil {
				return nil, caerr.Remotef("decoding WriteNotifyRequest payload: %v", err)
			}
			c, err := commands.NewWriteNotifyRequest(h.Parameter1, dt, h.DataCount, h.Parameter2, val)
			return wrap(c, err)
		}
		c, err := commands.NewWriteNotifyResponse(dt, h.DataCount, h.Parameter2, h.Parameter1)
		return wrap(c, err)

	case codeClientName:
		c, err := commands.NewClientNameRequest(readCString(payload))
		return wrap(c, err)

	case codeHostName:
		c, err := commands.NewHostNameRequest(readCString(payload))
		return wrap(c, err)

	case codeAccessRights:
		c, err := commands.NewAccessRightsResponse(h.Parameter1, h.Parameter2)
		return wrap(c, err)

	case codeEcho:
		if fromClient {
			c, err := commands.NewEchoRequest()
			return wrap(c, err)
		}
		c, err := commands.NewEchoResponse()
		return wrap(c, err)

	case codeServerDisconn:
		c, err := commands.NewServerDisconnResponse(h.Parameter1)
		return wrap(c, err)

	default:
		return nil, caerr.Remotef("unknown command code %d", h.Command)
	}
}

// wrap normalizes a commands.NewXxx(...) (*T, error) pair into
// (commands.Command, error), reclassifying a construction-time ValueError
// as a RemoteProtocolError: by the time we're decoding wire bytes, a field
// that fails validation is a malformed peer message, not a local mistake.
func wrap[T commands.Command](c *T, err error) (commands.Command, error) {
	if err != nil {
		return nil, caerr.Remotef("%v", err)
	}
	if c == nil {
		return nil, nil
	}
	return any(c).(commands.Command), nil
}
