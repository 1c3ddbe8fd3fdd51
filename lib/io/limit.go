package iolib

import "io"

// LimitReader creates new [LimitedReader]
func LimitReader(r io.Reader, n int64) io.Reader { return &LimitedReader{r, n} }

// LimitedReader behaves like [io.LimitedReader].
type LimitedReader struct {
	R io.Reader // underlying reader
	N int64     // max bytes remaining
}

func (l *LimitedReader) Read(p []byte) (n int, err error) {
	if l.N <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > l.N {
		p = p[:l.N]
	}
	n, err = l.R.Read(p)
	l.N -= int64(n)
	return
}
