package transfer

import (
	"bytes"
	"io"

	"http-message/http"
	iolib "http-message/lib/io"
	"http-message/util/rule"

	"github.com/pkg/errors"
)

// maxLineLength bounds chunk size lines and trailer lines on streams.
const maxLineLength = 8192

type ChunkedReader struct {
	ur     *iolib.UntilReader
	length *Length
	read   uint64 // reset for each chunk
	done   bool

	onTrailerReceived func(f []http.Field)
}

var _ io.Reader = (*ChunkedReader)(nil)

// NewChunkedReader converts a chunked message body into its content stream.
func NewChunkedReader(r io.Reader) *ChunkedReader {
	return &ChunkedReader{ur: iolib.NewUntilReader(r)}
}

// SetOnTrailerReceived registers a callback called once the trailer section is read.
func (cr *ChunkedReader) SetOnTrailerReceived(fn func(f []http.Field)) {
	cr.onTrailerReceived = fn
}

// LastLength returns the size line of the chunk currently being read.
func (cr *ChunkedReader) LastLength() *Length { return cr.length }

func (cr *ChunkedReader) Read(b []byte) (int, error) {
	if cr.done {
		return 0, io.EOF
	}

	if cr.length == nil {
		if err := cr.decodeLength(); err != nil {
			return 0, errors.Wrap(err, "decoding chunk")
		}

		if cr.length.Amount == 0 {
			if err := cr.decodeTrailers(); err != nil {
				return 0, errors.Wrap(err, "decoding trailer")
			}
			cr.done = true
			return 0, io.EOF
		}
	}

	remain := cr.length.Amount - cr.read
	if uint64(len(b)) > remain {
		b = b[:remain]
	}

	n, err := cr.ur.Read(b)
	cr.read += uint64(n)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return n, errors.Wrap(err, "reading chunk data")
	}

	if cr.read == cr.length.Amount {
		crlf := make([]byte, len(rule.CRLF))
		if _, err := io.ReadFull(cr.ur, crlf); err != nil {
			return n, errors.Wrap(err, "reading chunk delimiter")
		}

		if !bytes.Equal(crlf, rule.CRLF) {
			return n, parseErr(crlf, "CRLF delimiter not found after chunk data")
		}

		cr.length = nil
		cr.read = 0
	}

	return n, nil
}

func (cr *ChunkedReader) decodeLength() error {
	line, err := readLine(cr.ur)
	if err != nil {
		return err
	}

	length, err := parseLength(line)
	if err != nil {
		return err
	}

	cr.length = &length
	return nil
}

func (cr *ChunkedReader) decodeTrailers() error {
	fields := make([]http.Field, 0)
	for {
		line, err := readLine(cr.ur)
		if err != nil {
			return errors.Wrap(err, "reading line")
		}

		if len(line) == 0 {
			// Last field.
			break
		}

		field, err := http.ParseField(line)
		if err != nil {
			return &ChunkParseError{Line: string(line), Err: err}
		}

		fields = append(fields, field)
	}

	if cr.onTrailerReceived != nil {
		cr.onTrailerReceived(fields)
	}

	return nil
}

type ChunkedWriter struct {
	w      io.Writer
	blocks *BlockWriter

	extensions   []Extension
	sendTrailers func() []http.Field
	closed       bool
}

var _ io.WriteCloser = (*ChunkedWriter)(nil)

// NewChunkedWriter frames every write as chunks of at most blockSize bytes.
// Closing it writes the last chunk and trailers, not closing w.
func NewChunkedWriter(w io.Writer, blockSize int) (*ChunkedWriter, error) {
	cw := &ChunkedWriter{w: w}

	blocks, err := NewBlockWriter(writerFunc(cw.writeChunk), blockSize)
	if err != nil {
		return nil, err
	}
	cw.blocks = blocks

	return cw, nil
}

// SetExtensions sets extensions of the next chunk written.
// extensions live until [ChunkedWriter.Write] or [ChunkedWriter.Close].
func (cw *ChunkedWriter) SetExtensions(extensions []Extension) {
	cw.extensions = extensions
}

// SetSendTrailers registers a callback providing trailer fields on Close.
func (cw *ChunkedWriter) SetSendTrailers(fn func() []http.Field) {
	cw.sendTrailers = fn
}

func (cw *ChunkedWriter) Write(p []byte) (n int, err error) {
	if cw.closed {
		return 0, errors.New("write on closed chunked writer")
	}
	return cw.blocks.Write(p)
}

// WriteChunk writes c as a single chunk, keeping its extensions.
func (cw *ChunkedWriter) WriteChunk(c Chunk) error {
	if c.IsLast() {
		return errors.New("terminal chunk is written by Close")
	}
	if uint64(len(c.Content)) != c.Length.Amount {
		return errors.Wrapf(ErrChunkMismatch,
			"declared %d bytes, got %d", c.Length.Amount, len(c.Content))
	}

	cw.extensions = c.Length.Extensions
	_, err := cw.writeChunk(c.Content)
	return err
}

func (cw *ChunkedWriter) Close() error {
	if cw.closed {
		return nil
	}
	cw.closed = true

	if err := writeLine(cw.w, Length{Extensions: cw.extensions}.Text()); err != nil {
		return errors.Wrap(err, "writing last chunk")
	}
	cw.extensions = nil

	if err := cw.encodeTrailers(); err != nil {
		return errors.Wrap(err, "encoding trailers")
	}

	return nil
}

func (cw *ChunkedWriter) writeChunk(p []byte) (int, error) {
	if len(p) == 0 {
		// We should ignore 0 length chunks since it means EOF.
		return 0, nil
	}

	length := Length{Amount: uint64(len(p)), Extensions: cw.extensions}
	cw.extensions = nil

	if err := writeLine(cw.w, length.Text()); err != nil {
		return 0, errors.Wrap(err, "writing chunk header")
	}

	n, err := iolib.WriteFull(cw.w, p)
	if err != nil {
		return int(n), errors.Wrap(err, "writing data")
	}

	if _, err := iolib.WriteFull(cw.w, rule.CRLF); err != nil {
		return int(n), errors.Wrap(err, "writing chunk delimiter")
	}

	return int(n), nil
}

func (cw *ChunkedWriter) encodeTrailers() error {
	if cw.sendTrailers != nil {
		for _, field := range cw.sendTrailers() {
			if err := writeLine(cw.w, field.Text()); err != nil {
				return errors.Wrap(err, "writing trailer")
			}
		}
	}

	if err := writeLine(cw.w, nil); err != nil {
		return errors.Wrap(err, "writing last trailer line")
	}

	return nil
}

// BlockWriter splits every write into writes of at most size bytes.
type BlockWriter struct {
	w    io.Writer
	size int
}

func NewBlockWriter(w io.Writer, size int) (*BlockWriter, error) {
	if size < 1 {
		return nil, errors.Wrapf(ErrInvalidBlockSize, "got %d", size)
	}
	return &BlockWriter{w: w, size: size}, nil
}

func (bw *BlockWriter) Write(p []byte) (n int, err error) {
	for len(p) > 0 {
		block := p[:min(len(p), bw.size)]

		written, err := bw.w.Write(block)
		n += written
		if err != nil {
			return n, err
		}
		if written < len(block) {
			return n, io.ErrShortWrite
		}

		p = p[len(block):]
	}
	return n, nil
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// readLine reads until CRLF and cuts it.
func readLine(ur *iolib.UntilReader) ([]byte, error) {
	line, err := ur.ReadUntilLimit(rule.CRLF, maxLineLength)
	if err != nil {
		if errors.Is(err, iolib.ErrLimitExceeded) {
			return nil, parseErr(line, "line too long")
		}
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	return line[:len(line)-len(rule.CRLF)], nil
}

func writeLine(w io.Writer, line []byte) error {
	if _, err := iolib.WriteFull(w, append(line, rule.CRLF...)); err != nil {
		return errors.Wrap(err, "writing line")
	}
	return nil
}
