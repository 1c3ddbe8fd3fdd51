package transfer

import (
	"io"

	"http-message/http"
	iolib "http-message/lib/io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Coding is a content or transfer coding name, always lower case.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-8.4.1
type Coding string

const (
	CodingChunked  Coding = "chunked"
	CodingGzip     Coding = "gzip"
	CodingXGzip    Coding = "x-gzip"
	CodingDeflate  Coding = "deflate"
	CodingZstd     Coding = "zstd"
	CodingIdentity Coding = "identity"
)

// Coder builds the decoding reader and encoding writer of a coding.
// Writers returned by NewWriter must close w when closed.
type Coder interface {
	Coding() Coding
	NewReader(r io.Reader) (io.Reader, error)
	NewWriter(w io.WriteCloser) (io.WriteCloser, error)
}

type chunkedCoder struct{ blockSize int }

// NewChunkedCoder returns the chunked transfer coder writing blocks of blockSize bytes.
func NewChunkedCoder(blockSize int) Coder { return chunkedCoder{blockSize: blockSize} }

func (c chunkedCoder) Coding() Coding { return CodingChunked }

func (c chunkedCoder) NewReader(r io.Reader) (io.Reader, error) {
	return NewChunkedReader(r), nil
}

func (c chunkedCoder) NewWriter(w io.WriteCloser) (io.WriteCloser, error) {
	cw, err := NewChunkedWriter(w, c.blockSize)
	if err != nil {
		return nil, err
	}
	return &chunkedWriteCloser{ChunkedWriter: cw, next: w}, nil
}

type chunkedWriteCloser struct {
	*ChunkedWriter
	next io.Closer
}

func (c *chunkedWriteCloser) Close() error {
	if err := c.ChunkedWriter.Close(); err != nil {
		return err
	}
	return c.next.Close()
}

type gzipCoder struct{ coding Coding }

func (c gzipCoder) Coding() Coding { return c.coding }

func (c gzipCoder) NewReader(r io.Reader) (io.Reader, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	return gr, nil
}

func (c gzipCoder) NewWriter(w io.WriteCloser) (io.WriteCloser, error) {
	return chain(gzip.NewWriter(w), w), nil
}

// deflate is the zlib format.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-8.4.1.2
type deflateCoder struct{}

func (deflateCoder) Coding() Coding { return CodingDeflate }

func (deflateCoder) NewReader(r io.Reader) (io.Reader, error) {
	return zlib.NewReader(r)
}

func (deflateCoder) NewWriter(w io.WriteCloser) (io.WriteCloser, error) {
	return chain(zlib.NewWriter(w), w), nil
}

type zstdCoder struct{}

func (zstdCoder) Coding() Coding { return CodingZstd }

func (zstdCoder) NewReader(r io.Reader) (io.Reader, error) {
	// Single concurrency decodes synchronously, without background goroutines.
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return &zstdReader{dec: dec}, nil
}

func (zstdCoder) NewWriter(w io.WriteCloser) (io.WriteCloser, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return chain(enc, w), nil
}

// zstdReader releases the decoder once the stream ends.
type zstdReader struct {
	dec *zstd.Decoder
}

func (zr *zstdReader) Read(p []byte) (int, error) {
	if zr.dec == nil {
		return 0, io.EOF
	}

	n, err := zr.dec.Read(p)
	if err != nil {
		zr.dec.Close()
		zr.dec = nil
	}
	return n, err
}

type identityCoder struct{}

func (identityCoder) Coding() Coding { return CodingIdentity }

func (identityCoder) NewReader(r io.Reader) (io.Reader, error) { return r, nil }

func (identityCoder) NewWriter(w io.WriteCloser) (io.WriteCloser, error) { return w, nil }

type chainCloser struct {
	io.WriteCloser
	next io.Closer
}

// chain closes wc then next.
func chain(wc io.WriteCloser, next io.Closer) io.WriteCloser {
	return &chainCloser{WriteCloser: wc, next: next}
}

func (c *chainCloser) Close() error {
	if err := c.WriteCloser.Close(); err != nil {
		return err
	}
	return c.next.Close()
}

// Pipeline applies a list of codings to a stream.
type Pipeline struct{ coders map[Coding]Coder }

// NewPipeline registers the built-in coders and customs on top of them.
func NewPipeline(blockSize int, customs ...Coder) *Pipeline {
	p := &Pipeline{coders: map[Coding]Coder{}}
	for _, coder := range []Coder{
		NewChunkedCoder(blockSize),
		gzipCoder{coding: CodingGzip},
		gzipCoder{coding: CodingXGzip},
		deflateCoder{},
		zstdCoder{},
		identityCoder{},
	} {
		p.coders[coder.Coding()] = coder
	}

	for _, coder := range customs {
		p.coders[coder.Coding()] = coder
	}

	return p
}

// Supports reports whether every coding is registered.
func (p *Pipeline) Supports(codings ...Coding) bool {
	for _, coding := range codings {
		if _, ok := p.coders[coding]; !ok {
			return false
		}
	}
	return true
}

// Decode undoes codings, which are listed in the order they were applied.
// onTrailer is called with trailer fields of a chunked coding, if any.
func (p *Pipeline) Decode(r io.Reader, codings []Coding, onTrailer func(f []http.Field)) (io.Reader, error) {
	for idx := len(codings) - 1; idx >= 0; idx-- {
		coding := codings[idx]
		coder, ok := p.coders[coding]
		if !ok {
			return nil, &EncodingError{Coding: coding, Err: ErrUnsupportedCoding}
		}

		next, err := coder.NewReader(r)
		if err != nil {
			return nil, &EncodingError{Coding: coding, Err: err}
		}
		r = next

		if cr, ok := r.(interface {
			SetOnTrailerReceived(func(f []http.Field))
		}); ok && onTrailer != nil {
			cr.SetOnTrailerReceived(func(f []http.Field) {
				if len(f) == 0 {
					return
				}
				onTrailer(f)
			})
		}
	}

	return r, nil
}

// Encode applies codings in order. Closing the returned writer flushes every coder and closes w.
func (p *Pipeline) Encode(w io.WriteCloser, codings []Coding, sendTrailers func() []http.Field) (io.WriteCloser, error) {
	for idx := len(codings) - 1; idx >= 0; idx-- {
		coding := codings[idx]
		coder, ok := p.coders[coding]
		if !ok {
			return nil, &EncodingError{Coding: coding, Err: ErrUnsupportedCoding}
		}

		next, err := coder.NewWriter(w)
		if err != nil {
			return nil, &EncodingError{Coding: coding, Err: err}
		}
		w = next

		if cw, ok := w.(interface {
			SetSendTrailers(func() []http.Field)
		}); ok && sendTrailers != nil {
			cw.SetSendTrailers(sendTrailers)
		}
	}

	return w, nil
}

// EncodeReader is [Pipeline.Encode] exposed as a reader of the encoded bytes.
func (p *Pipeline) EncodeReader(r io.Reader, codings []Coding, sendTrailers func() []http.Field) (io.Reader, error) {
	if len(codings) == 0 {
		return r, nil
	}

	mr, err := iolib.NewMiddlewareReaderErr(r, func(wc io.WriteCloser) (io.WriteCloser, error) {
		return p.Encode(wc, codings, sendTrailers)
	})
	if err != nil {
		return nil, err
	}
	return mr, nil
}

// ParseCodings converts header tokens into codings.
func ParseCodings(tokens http.Tokens) []Coding {
	codings := make([]Coding, 0, len(tokens))
	for _, t := range tokens {
		codings = append(codings, Coding(t))
	}
	return codings
}
