package transfer

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidBlockSize      = errors.New("block size should be at least 1")
	ErrContentLengthMismatch = errors.New("declared chunk length exceeds remaining bytes")
	ErrChunkMismatch         = errors.New("chunk content does not match its length")
	ErrMalformedChunk        = errors.New("malformed chunk")
	ErrUnsupportedCoding     = errors.New("coding is unsupported")

	// ErrDeferred means an encoding step could not run right now.
	// It is not a failure: the caller may retry the same write later.
	ErrDeferred = errors.New("encoding deferred")
)

// ChunkParseError reports a chunk size line or trailer line that could not be parsed.
type ChunkParseError struct {
	Line string
	Err  error
}

func (e *ChunkParseError) Error() string {
	return fmt.Sprintf("parsing chunk line %q: %s", e.Line, e.Err)
}

func (e *ChunkParseError) Unwrap() error { return e.Err }

func parseErr(line []byte, format string, args ...any) error {
	return &ChunkParseError{
		Line: string(line),
		Err:  errors.Wrapf(ErrMalformedChunk, format, args...),
	}
}

// EncodingError is returned when a content or transfer coding fails.
type EncodingError struct {
	Coding Coding
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("coding %q: %s", e.Coding, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }
