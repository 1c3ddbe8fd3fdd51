package iolib

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// MiddlewareReader pulls bytes from src and pushes them through a writer middleware
// (e.g. a compressor), exposing the middleware output as a reader.
type MiddlewareReader struct {
	src     io.Reader
	buf     *bytes.Buffer
	bufw    io.WriteCloser
	scratch []byte
	done    bool
}

func NewMiddlewareReader(
	src io.Reader, middleware func(io.WriteCloser) io.WriteCloser,
) *MiddlewareReader {
	mr := &MiddlewareReader{
		src:     src,
		buf:     bytes.NewBuffer(nil),
		scratch: make([]byte, 4096),
	}
	mr.bufw = middleware(NopWriteCloser(mr.buf))
	return mr
}

// NewMiddlewareReaderErr is like [NewMiddlewareReader] for middlewares whose
// construction can fail.
func NewMiddlewareReaderErr(
	src io.Reader, middleware func(io.WriteCloser) (io.WriteCloser, error),
) (*MiddlewareReader, error) {
	var mwErr error
	mr := NewMiddlewareReader(src, func(wc io.WriteCloser) io.WriteCloser {
		w, err := middleware(wc)
		if err != nil {
			mwErr = err
			return wc
		}
		return w
	})
	if mwErr != nil {
		return nil, mwErr
	}
	return mr, nil
}

func (mr *MiddlewareReader) Read(p []byte) (n int, err error) {
	for mr.buf.Len() == 0 {
		if mr.done {
			return 0, io.EOF
		}
		if err := mr.fill(); err != nil {
			return 0, err
		}
	}

	return mr.buf.Read(p)
}

func (mr *MiddlewareReader) fill() error {
	n, err := mr.src.Read(mr.scratch)
	if err != nil && err != io.EOF {
		return errors.Wrap(err, "reading from source")
	}

	if n > 0 {
		if _, err := WriteFull(mr.bufw, mr.scratch[:n]); err != nil {
			return errors.Wrap(err, "failed to write")
		}
	}

	if err == io.EOF {
		mr.done = true
		if err := mr.bufw.Close(); err != nil {
			return errors.Wrap(err, "failed to close middleware")
		}
	}

	return nil
}
