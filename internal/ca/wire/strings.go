package wire

import "bytes"

// writeCString appends s as a NUL-terminated string, the layout
// CreateChanRequest/ClientNameRequest/HostNameRequest/ErrorResponse use
// for their string payloads.
func writeCString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

// readCString reads a NUL-terminated string from buf. If buf carries no
// NUL (e.g. the sender omitted it and relied on payload_size alone), the
// whole buffer is taken as the string.
func readCString(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		return string(buf[:i])
	}
	return string(buf)
}
