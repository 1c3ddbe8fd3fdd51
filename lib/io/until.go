package iolib

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// UntilReader is a reader that can also read up to a delimiter,
// keeping whatever it over-read for the next call.
type UntilReader struct {
	r io.Reader

	pending []byte
	scratch []byte
	offset  int64
}

func NewUntilReader(r io.Reader) *UntilReader {
	return &UntilReader{r: r, scratch: make([]byte, 1024)}
}

// Offset returns how many bytes were handed out so far.
func (ur *UntilReader) Offset() int64 { return ur.offset }

func (ur *UntilReader) Read(p []byte) (n int, err error) {
	if len(ur.pending) > 0 {
		n = copy(p, ur.pending)
		ur.pending = ur.pending[n:]
		ur.offset += int64(n)
		return n, nil
	}

	n, err = ur.r.Read(p)
	ur.offset += int64(n)
	return n, err
}

var (
	ErrZeroLenDelim  = errors.New("delim has zero length")
	ErrLimitExceeded = errors.New("delim not found within limit")
)

// ReadUntil reads until delim. The output includes delim.
// If the underlying reader fails before delim, the bytes read so far are returned with the error.
func (ur *UntilReader) ReadUntil(delim []byte) ([]byte, error) {
	return ur.ReadUntilLimit(delim, 0)
}

// ReadUntilLimit is [UntilReader.ReadUntil] that gives up once limit bytes were scanned
// without finding delim. In that case the first limit bytes are returned with [ErrLimitExceeded].
// Zero limit means no limit.
func (ur *UntilReader) ReadUntilLimit(delim []byte, limit int) ([]byte, error) {
	if len(delim) == 0 {
		return nil, ErrZeroLenDelim
	}

	seek := 0
	for {
		if idx := bytes.Index(ur.pending[seek:], delim); idx >= 0 {
			end := seek + idx + len(delim)
			if limit > 0 && end > limit {
				return ur.take(limit), ErrLimitExceeded
			}
			return ur.take(end), nil
		}

		if limit > 0 && len(ur.pending) >= limit {
			return ur.take(limit), ErrLimitExceeded
		}

		// Delim might be split between two reads.
		seek = max(0, len(ur.pending)-len(delim)+1)

		n, err := ur.r.Read(ur.scratch)
		ur.pending = append(ur.pending, ur.scratch[:n]...)

		if err != nil {
			if idx := bytes.Index(ur.pending[seek:], delim); idx >= 0 {
				// Delim arrived together with the error; retry the scan.
				continue
			}
			// Underlying reader returned error before delim.
			return ur.take(len(ur.pending)), err
		}
	}
}

func (ur *UntilReader) take(n int) []byte {
	b := bytes.Clone(ur.pending[:n])
	ur.pending = ur.pending[n:]
	ur.offset += int64(n)
	return b
}
