package wire

import "github.com/caproto-go/caproto/internal/ca/commands"

// eventAddPayloadSize is the fixed layout of an EventAddRequest payload on
// the real CA wire: three IEEE-754 floats (low/high/to filter thresholds,
// unused by this engine since filtering is a server-policy concern) plus
// a uint16 mask and two bytes of padding.
const eventAddPayloadSize = 16

func encodeEventAddPayload(mask commands.EventMask) []byte {
	buf := make([]byte, eventAddPayloadSize)
	order.PutUint16(buf[12:14], uint16(mask))
	return buf
}

func decodeEventAddPayload(buf []byte) commands.EventMask {
	if len(buf) < 14 {
		return 0
	}
	return commands.EventMask(order.Uint16(buf[12:14]))
}
