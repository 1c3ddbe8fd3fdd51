package codec

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrMalformedRequestLine = errors.New("request line is malformed")
	ErrMalformedStatusLine  = errors.New("status line is malformed")
	ErrMalformedFieldLine   = errors.New("field line is malformed")
	ErrStartLineTooLong     = errors.New("start line length exceeds limit")
	ErrFieldLineTooLong     = errors.New("field line length exceeds limit")
	ErrMissingCRBeforeLF    = errors.New("missing CR before LF")
	ErrIncompleteHead       = errors.New("message ended before the empty line")

	ErrVersionMismatch    = errors.New("version does not match the codec")
	ErrUnsupportedVersion = errors.New("no codec for version")
	ErrMethodNotAllowed   = errors.New("method is not defined for the version")
	ErrMissingHost        = errors.New("request has no Host header")
	ErrBodyLengthMismatch = errors.New("body length does not match its framing")
	ErrBodyTooLarge       = errors.New("body exceeds the size limit")
	ErrObsFold            = errors.New("obsolete line folding is not allowed")
)

const maxFragment = 64

// ParseError tells where in the input a message stopped making sense.
type ParseError struct {
	// Line is 1-based. Offset is the byte offset where that line starts.
	Line     int
	Offset   int64
	Fragment string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d (offset %d) %q: %v", e.Line, e.Offset, e.Fragment, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// causedBy keeps both sentinel and cause reachable with errors.Is.
func causedBy(sentinel, cause error) error { return fmt.Errorf("%w: %w", sentinel, cause) }

func fragment(b []byte) string {
	if len(b) > maxFragment {
		b = b[:maxFragment]
	}
	return string(b)
}
