package transfer

import (
	"bytes"
	"io"
	"math"

	"http-message/http"
	"http-message/util/rule"

	"github.com/pkg/errors"
)

const DefaultBlockSize = 4096

// Encode frames b as chunks of blockSize bytes, the last one possibly shorter,
// followed by the terminal chunk and an empty trailer section.
func Encode(b []byte, blockSize int) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, len(b)+len(b)/max(blockSize, 1)*8+8))

	cw, err := NewChunkedWriter(buf, blockSize)
	if err != nil {
		return nil, err
	}

	if _, err := cw.Write(b); err != nil {
		return nil, errors.Wrap(err, "writing chunks")
	}
	if err := cw.Close(); err != nil {
		return nil, errors.Wrap(err, "closing chunked writer")
	}

	return buf.Bytes(), nil
}

// EncodeChunks frames chunks as given, keeping their extensions.
// A terminal chunk is only allowed last; when missing one is appended.
func EncodeChunks(chunks []Chunk, trailers ...http.Field) ([]byte, error) {
	buf := bytes.NewBuffer(nil)

	cw, err := NewChunkedWriter(buf, DefaultBlockSize)
	if err != nil {
		return nil, err
	}
	cw.SetSendTrailers(func() []http.Field { return trailers })

	for idx, c := range chunks {
		if c.IsLast() {
			if idx != len(chunks)-1 {
				return nil, errors.Wrapf(ErrChunkMismatch, "terminal chunk at %d of %d", idx, len(chunks))
			}
			cw.SetExtensions(c.Length.Extensions)
			break
		}

		if err := cw.WriteChunk(c); err != nil {
			return nil, errors.Wrapf(err, "writing chunk %d", idx)
		}
	}

	if err := cw.Close(); err != nil {
		return nil, errors.Wrap(err, "closing chunked writer")
	}

	return buf.Bytes(), nil
}

// Decode returns the concatenated content of a chunked body.
func Decode(b []byte) ([]byte, error) {
	chunks, _, _, err := DecodeChunks(b)
	if err != nil {
		return nil, err
	}

	content := make([]byte, 0)
	for _, c := range chunks {
		content = append(content, c.Content...)
	}
	return content, nil
}

// DecodeChunks parses a chunked body. The returned chunks end with the terminal chunk,
// n is the number of bytes the framing took, trailing bytes are left alone.
func DecodeChunks(b []byte) (chunks []Chunk, trailers []http.Field, n int, err error) {
	sc := scanner{b: b, collect: true}
	if err := sc.scan(); err != nil {
		return nil, nil, 0, err
	}
	return sc.chunks, sc.trailers, sc.pos, nil
}

// Scan probes b for a complete chunked body without copying it.
// complete is false with a nil error while more bytes are needed.
func Scan(b []byte) (n int, complete bool, err error) {
	n, _, complete, err = ScanContent(b)
	return n, complete, err
}

// ScanContent is [Scan] that also reports how many content bytes the chunk sizes
// seen so far announce, a chunk whose data is still missing included.
func ScanContent(b []byte) (n int, content uint64, complete bool, err error) {
	sc := scanner{b: b}
	if err := sc.scan(); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, ErrContentLengthMismatch) {
			return 0, sc.content, false, nil
		}
		return 0, sc.content, false, err
	}
	return sc.pos, sc.content, true, nil
}

type scanner struct {
	b       []byte
	pos     int
	collect bool
	// content sums the chunk sizes, saturating at the largest uint64.
	content uint64

	chunks   []Chunk
	trailers []http.Field
}

func (sc *scanner) scan() error {
	for {
		line, err := sc.line()
		if err != nil {
			return errors.Wrap(err, "reading chunk size line")
		}

		length, err := parseLength(line)
		if err != nil {
			return err
		}

		if sc.content > math.MaxUint64-length.Amount {
			sc.content = math.MaxUint64
		} else {
			sc.content += length.Amount
		}

		if length.Amount == 0 {
			if sc.collect {
				sc.chunks = append(sc.chunks, Chunk{Length: length, Content: []byte{}})
			}
			return sc.scanTrailers()
		}

		remain := uint64(len(sc.b) - sc.pos)
		if length.Amount > remain {
			return errors.Wrapf(ErrContentLengthMismatch,
				"chunk declares %d bytes, %d remain", length.Amount, remain)
		}

		end := sc.pos + int(length.Amount)
		if sc.collect {
			sc.chunks = append(sc.chunks, Chunk{Length: length, Content: bytes.Clone(sc.b[sc.pos:end])})
		}
		sc.pos = end

		if len(sc.b)-sc.pos < len(rule.CRLF) {
			return errors.Wrap(io.ErrUnexpectedEOF, "reading chunk delimiter")
		}
		if !bytes.HasPrefix(sc.b[sc.pos:], rule.CRLF) {
			return parseErr(line, "CRLF delimiter not found after chunk data")
		}
		sc.pos += len(rule.CRLF)
	}
}

func (sc *scanner) scanTrailers() error {
	for {
		line, err := sc.line()
		if err != nil {
			return errors.Wrap(err, "reading trailer line")
		}

		if len(line) == 0 {
			return nil
		}

		field, err := http.ParseField(line)
		if err != nil {
			return &ChunkParseError{Line: string(line), Err: err}
		}
		if sc.collect {
			sc.trailers = append(sc.trailers, http.Field{
				Name:  bytes.Clone(field.Name),
				Value: bytes.Clone(field.Value),
			})
		}
	}
}

func (sc *scanner) line() ([]byte, error) {
	idx := bytes.Index(sc.b[sc.pos:], rule.CRLF)
	if idx < 0 {
		if len(sc.b)-sc.pos > maxLineLength {
			return nil, parseErr(sc.b[sc.pos:sc.pos+maxLineLength], "line too long")
		}
		return nil, io.ErrUnexpectedEOF
	}

	line := sc.b[sc.pos : sc.pos+idx]
	sc.pos += idx + len(rule.CRLF)
	return line, nil
}
