package iolib

import "io"

type nopWriteCloser struct{ w io.Writer }

// NopWriteCloser returns a WriteCloser with a no-op Close method wrapping w.
func NopWriteCloser(w io.Writer) io.WriteCloser {
	return &nopWriteCloser{w: w}
}

func (nc *nopWriteCloser) Close() error {
	return nil
}

func (nc *nopWriteCloser) Write(p []byte) (n int, err error) {
	return nc.w.Write(p)
}

// WriteFull keeps writing until buf is consumed or w fails.
func WriteFull(w io.Writer, buf []byte) (int64, error) {
	total := int64(0)
	for total < int64(len(buf)) {
		n, err := w.Write(buf[total:])
		total += int64(n)
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}
