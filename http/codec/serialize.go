package codec

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"http-message/http"
	"http-message/http/body"
	"http-message/http/message"
	"http-message/util/rule"

	"github.com/pkg/errors"
)

// SerializeRequest is [Codec.WriteRequest] into a new byte slice.
func (c *Codec) SerializeRequest(r *message.Request) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := c.WriteRequest(buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeResponse is [Codec.WriteResponse] into a new byte slice.
func (c *Codec) SerializeResponse(r *message.Response) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := c.WriteResponse(buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteRequest writes r to w.
// The body is encoded before anything is written, so an error wrapping
// [transfer.ErrDeferred] leaves w untouched.
func (c *Codec) WriteRequest(w io.Writer, r *message.Request) error {
	if !c.Allows(r.Method()) {
		return errors.Wrapf(ErrMethodNotAllowed, "%s on %s", r.Method(), c.version)
	}

	line := bytes.NewBuffer(nil)
	line.WriteString(r.Method().String())
	line.WriteByte(rule.SP)
	line.WriteString(r.Target())
	line.WriteByte(rule.SP)
	line.Write(c.version.Text())

	return c.write(w, line.Bytes(), r, http.TargetRequest)
}

// WriteResponse writes r to w. See [Codec.WriteRequest].
func (c *Codec) WriteResponse(w io.Writer, r *message.Response) error {
	line := bytes.NewBuffer(nil)
	line.Write(c.version.Text())
	line.WriteByte(rule.SP)
	line.WriteString(strconv.FormatUint(uint64(r.Status().Code), 10))
	line.WriteByte(rule.SP)
	line.WriteString(r.Status().ReasonPhrase)

	return c.write(w, line.Bytes(), r, http.TargetResponse)
}

func (c *Codec) write(w io.Writer, startLine []byte, m message.Message, direction http.Target) error {
	if m.Version() != c.version {
		return errors.Wrapf(ErrVersionMismatch, "got %s, want %s", m.Version(), c.version)
	}

	headers := m.Headers()

	content := bytes.NewBuffer(nil)
	if err := m.Body().Write(headers, content); err != nil {
		return errors.Wrap(err, "encoding body")
	}

	hs := headers.Mutable()
	if _, transfers := body.Codings(headers); len(transfers) == 0 &&
		content.Len() > 0 && hs.Contains(http.ContentLength.Name()) {
		hs.Put(http.ContentLength.Header(http.Length(content.Len())))
	}

	enc := encoder{bw: bufio.NewWriter(w), opts: c.opts.Encode}

	if err := enc.writeLine(startLine); err != nil {
		return errors.Wrap(err, "writing start line")
	}
	if err := enc.writeHeaders(c.grammar, hs, direction); err != nil {
		return errors.Wrap(err, "writing headers")
	}
	if _, err := enc.bw.Write(content.Bytes()); err != nil {
		return errors.Wrap(err, "writing body")
	}

	if err := enc.bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing")
	}
	return nil
}

type encoder struct {
	bw   *bufio.Writer
	opts EncodeOptions
}

func (e *encoder) writeLine(line []byte) error {
	if _, err := e.bw.Write(line); err != nil {
		return errors.Wrap(err, "writing line")
	}

	term := rule.CRLF
	if e.opts.UseSoleLF {
		term = term[1:]
	}

	if _, err := e.bw.Write(term); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}

func (e *encoder) writeHeaders(g Grammar, hs *http.HeaderSet, direction http.Target) error {
	for h := range hs.All() {
		if !h.Key.Target().Allows(direction) {
			continue
		}
		if err := e.writeLine(g.Serialize(h)); err != nil {
			return errors.Wrap(err, "writing field")
		}
	}

	// Write a empty line as all the headers are written.
	if err := e.writeLine(nil); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}
