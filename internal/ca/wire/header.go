// Package wire implements the pure framing/codec layer of the Channel
// Access engine: converting between typed commands (internal/ca/commands)
// and the bytes that travel over a virtual circuit. Nothing here touches
// a socket; it is a pair of pure functions, EncodeCommand and DecodeOne,
// operating entirely on byte slices (spec §4.1).
package wire

import (
	"encoding/binary"

	"github.com/caproto-go/caproto/internal/ca/commands"
)

var order = binary.BigEndian

const (
	fixedHeaderSize    = 16
	extendedHeaderSize = 8 // appended after the fixed header when extended
	sentinel16         = 0xFFFF
)

// align8 rounds n up to the next multiple of 8: payload_size always
// denotes the unpadded length, and the next header begins after padding.
func align8(n uint32) uint32 {
	return (n + 7) / 8 * 8
}

// encodeHeader renders h as either a 16-byte fixed header, or a 16+8 byte
// fixed+extended header when h's payload_size or data_count don't fit in
// 16 bits.
func encodeHeader(h commands.Header) []byte {
	extended := h.PayloadSize >= sentinel16 || h.DataCount >= sentinel16

	buf := make([]byte, fixedHeaderSize, fixedHeaderSize+extendedHeaderSize)
	order.PutUint16(buf[0:2], h.Command)
	if extended {
		order.PutUint16(buf[2:4], sentinel16)
	} else {
		order.PutUint16(buf[2:4], uint16(h.PayloadSize))
	}
	order.PutUint16(buf[4:6], h.DataType)
	if extended {
		order.PutUint16(buf[6:8], sentinel16)
	} else {
		order.PutUint16(buf[6:8], uint16(h.DataCount))
	}
	order.PutUint32(buf[8:12], h.Parameter1)
	order.PutUint32(buf[12:16], h.Parameter2)

	if extended {
		ext := make([]byte, extendedHeaderSize)
		order.PutUint32(ext[0:4], h.PayloadSize)
		order.PutUint32(ext[4:8], h.DataCount)
		buf = append(buf, ext...)
	}
	return buf
}

// encodeHeaderFixed renders h as exactly 16 bytes, truncating
// PayloadSize/DataCount to their 16-bit wire width with no extended-header
// escape. Used only for the header ErrorResponse embeds verbatim (spec's
// supplemented-features note): that embed is a fixed-size diagnostic
// snapshot of the offending request's header, not a frame to be re-parsed
// with the sentinel/extension rule.
func encodeHeaderFixed(h commands.Header) []byte {
	buf := make([]byte, fixedHeaderSize)
	order.PutUint16(buf[0:2], h.Command)
	order.PutUint16(buf[2:4], uint16(h.PayloadSize))
	order.PutUint16(buf[4:6], h.DataType)
	order.PutUint16(buf[6:8], uint16(h.DataCount))
	order.PutUint32(buf[8:12], h.Parameter1)
	order.PutUint32(buf[12:16], h.Parameter2)
	return buf
}

// decodeHeaderFixed reads exactly a 16-byte fixed header, with no
// extended-header escape. Pairs with encodeHeaderFixed.
func decodeHeaderFixed(buf []byte) (commands.Header, bool) {
	if len(buf) < fixedHeaderSize {
		return commands.Header{}, false
	}
	return commands.Header{
		Command:     order.Uint16(buf[0:2]),
		PayloadSize: uint32(order.Uint16(buf[2:4])),
		DataType:    order.Uint16(buf[4:6]),
		DataCount:   uint32(order.Uint16(buf[6:8])),
		Parameter1:  order.Uint32(buf[8:12]),
		Parameter2:  order.Uint32(buf[12:16]),
	}, true
}

// decodeHeader parses a header (fixed, or fixed+extended) from the front
// of buf. ok is false when buf doesn't yet hold a complete header -- the
// caller should wait for more bytes rather than treat this as an error,
// matching spec §4.1's "decoder consumes nothing and reports zero
// commands" rule for partial frames.
func decodeHeader(buf []byte) (h commands.Header, consumed int, ok bool) {
	if len(buf) < fixedHeaderSize {
		return commands.Header{}, 0, false
	}
	h.Command = order.Uint16(buf[0:2])
	payloadSize16 := order.Uint16(buf[2:4])
	h.DataType = order.Uint16(buf[4:6])
	dataCount16 := order.Uint16(buf[6:8])
	h.Parameter1 = order.Uint32(buf[8:12])
	h.Parameter2 = order.Uint32(buf[12:16])

	if payloadSize16 == sentinel16 || dataCount16 == sentinel16 {
		if len(buf) < fixedHeaderSize+extendedHeaderSize {
			return commands.Header{}, 0, false
		}
		h.PayloadSize = order.Uint32(buf[16:20])
		h.DataCount = order.Uint32(buf[20:24])
		return h, fixedHeaderSize + extendedHeaderSize, true
	}
	h.PayloadSize = uint32(payloadSize16)
	h.DataCount = uint32(dataCount16)
	return h, fixedHeaderSize, true
}
