package codec

import (
	"http-message/http"
	"http-message/http/body"
	"http-message/http/transfer"
)

// Head is the start line and header section of a message.
type Head struct {
	Version http.Version

	// Requests only.
	Method http.Method
	Target string

	// Responses only.
	Status http.Status

	Headers *http.HeaderSet

	// Size is the length of the head in the input, empty line included.
	Size int

	lines int
}

// Framing tells how the end of a body is found.
type Framing uint8

const (
	// FramingNone means the body is whatever follows the head.
	FramingNone Framing = iota
	// FramingLength means the body is Content-Length bytes long.
	FramingLength
	// FramingChunked means the body ends with the last chunk and its trailers.
	FramingChunked
)

func (f Framing) String() string {
	switch f {
	case FramingLength:
		return "length"
	case FramingChunked:
		return "chunked"
	}
	return "none"
}

// Framing returns how the body of the message is delimited, and its length
// when declared by Content-Length.
// Transfer-Encoding overrides Content-Length.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.3
func (h *Head) Framing() (Framing, int64) {
	if h.Headers.Contains(http.TransferEncoding.Name()) {
		_, transfers := body.Codings(h.Headers)
		if len(transfers) > 0 && transfers[len(transfers)-1] == transfer.CodingChunked {
			return FramingChunked, -1
		}
		return FramingNone, -1
	}

	if n, ok := http.FirstKey(h.Headers, http.ContentLength); ok {
		return FramingLength, int64(n)
	}
	return FramingNone, -1
}
