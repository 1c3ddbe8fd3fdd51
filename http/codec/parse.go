package codec

import (
	"bytes"
	"slices"
	"strconv"

	"http-message/http"
	"http-message/http/body"
	"http-message/http/message"
	"http-message/http/transfer"
	iolib "http-message/lib/io"
	"http-message/util/rule"

	"github.com/pkg/errors"
)

// ParseRequest parses b as a whole request: head and body.
func (c *Codec) ParseRequest(b []byte) (*message.Request, error) {
	head, err := c.ParseHead(b, http.TargetRequest)
	if err != nil {
		return nil, err
	}

	content, err := c.parseBody(head, b[head.Size:])
	if err != nil {
		return nil, err
	}

	return message.NewRequest(head.Version, head.Method, head.Target, head.Headers, content), nil
}

// ParseResponse parses b as a whole response: head and body.
func (c *Codec) ParseResponse(b []byte) (*message.Response, error) {
	head, err := c.ParseHead(b, http.TargetResponse)
	if err != nil {
		return nil, err
	}

	content, err := c.parseBody(head, b[head.Size:])
	if err != nil {
		return nil, err
	}

	return message.NewResponse(head.Version, head.Status, head.Headers, content), nil
}

// ParseHead parses the start line and the header section at the beginning of b.
// Headers not applicable to direction are dropped.
func (c *Codec) ParseHead(b []byte, direction http.Target) (*Head, error) {
	lr := newLineReader(b, c.opts.Decode)

	head, err := c.readStartLine(lr, direction)
	if err != nil {
		return nil, err
	}

	fields, err := c.readFieldLines(lr)
	if err != nil {
		return nil, err
	}

	head.Headers = http.NewHeaderSet()
	for _, l := range fields {
		h, err := c.grammar.Parse(l.text)
		if err != nil {
			return nil, l.fail(causedBy(ErrMalformedFieldLine, err))
		}
		if !h.Key.Target().Allows(direction) {
			continue
		}
		head.Headers.Add(h)
	}

	head.Size = int(lr.offset())
	head.lines = lr.num

	if direction == http.TargetRequest && c.version == http.Version11 &&
		c.opts.Decode.RequireHost && !head.Headers.Contains(http.Host.Name()) {
		return nil, &ParseError{Line: head.lines, Offset: lr.offset(), Err: ErrMissingHost}
	}

	return head, nil
}

func (c *Codec) readStartLine(lr *lineReader, direction http.Target) (*Head, error) {
	var l line
	for {
		var err error
		l, err = lr.next(c.opts.Decode.MaxStartLineLength)
		if err != nil {
			if errors.Is(err, errLineTooLong) {
				err = ErrStartLineTooLong
			}
			return nil, l.fail(err)
		}

		// An empty line can be received before message.
		// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-6
		if len(l.text) > 0 {
			break
		}
	}

	var (
		head *Head
		err  error
	)
	if direction == http.TargetRequest {
		head, err = parseRequestLine(l.text)
		if err != nil {
			return nil, l.fail(causedBy(ErrMalformedRequestLine, err))
		}
	} else {
		head, err = parseStatusLine(l.text)
		if err != nil {
			return nil, l.fail(causedBy(ErrMalformedStatusLine, err))
		}
	}

	if head.Version != c.version {
		return nil, l.fail(errors.Wrapf(ErrVersionMismatch, "got %s, want %s", head.Version, c.version))
	}
	if direction == http.TargetRequest && !c.Allows(head.Method) {
		return nil, l.fail(errors.Wrapf(ErrMethodNotAllowed, "%s on %s", head.Method, c.version))
	}

	return head, nil
}

// readFieldLines reads up to the empty line, unfolding continuation lines.
func (c *Codec) readFieldLines(lr *lineReader) ([]line, error) {
	fields := make([]line, 0)
	for {
		l, err := lr.next(c.opts.Decode.MaxFieldLineLength)
		if err != nil {
			if errors.Is(err, errLineTooLong) {
				err = ErrFieldLineTooLong
			}
			return nil, l.fail(err)
		}

		if l.folded {
			if len(fields) == 0 {
				return nil, l.fail(errors.Wrap(ErrMalformedFieldLine, "continuation line without a field"))
			}

			last := &fields[len(fields)-1]
			joined, err := c.grammar.Unfold(last.text, l.text)
			if err != nil {
				return nil, l.fail(causedBy(ErrMalformedFieldLine, err))
			}
			last.text = joined
			continue
		}

		if len(l.text) == 0 {
			// An empty line. This means that there are no more headers.
			return fields, nil
		}

		fields = append(fields, l)
	}
}

func parseRequestLine(text []byte) (*Head, error) {
	parts := bytes.Split(text, []byte{rule.SP})
	if len(parts) != 3 {
		return nil, errors.New("request line should have 3 parts")
	}

	method := string(parts[0])
	if !rule.IsValidToken(method) {
		return nil, errors.New("method is not a valid token")
	}

	target := string(parts[1])
	if len(target) == 0 {
		return nil, errors.New("request target should not be empty")
	}

	ver, err := http.ParseVersion(parts[2])
	if err != nil {
		return nil, errors.Wrap(err, "parsing version")
	}

	return &Head{Version: ver, Method: http.Method(method), Target: target}, nil
}

func parseStatusLine(text []byte) (*Head, error) {
	parts := bytes.SplitN(text, []byte{rule.SP}, 3)
	if len(parts) < 2 {
		return nil, errors.New("status line should have a version and a code")
	}

	ver, err := http.ParseVersion(parts[0])
	if err != nil {
		return nil, errors.Wrap(err, "parsing version")
	}

	statusCodeStr := string(parts[1])
	statusCode, err := strconv.ParseUint(statusCodeStr, 10, 64)
	if err != nil || len(statusCodeStr) != 3 {
		return nil, errors.Errorf("status code is malformed: %q", statusCodeStr)
	}

	// reason-phrase is optional.
	var reasonPhrase string
	if len(parts) == 3 {
		reasonPhrase = string(parts[2])
	}

	return &Head{Version: ver, Status: http.Status{Code: uint(statusCode), ReasonPhrase: reasonPhrase}}, nil
}

// parseBody builds the body that follows head: transfer codings are undone first,
// then content codings.
func (c *Codec) parseBody(head *Head, b []byte) (*body.Body, error) {
	content, err := c.buildBody(head, b)
	if err == nil {
		if limit := c.opts.Decode.MaxBodySize; limit > 0 && content.Len() > limit {
			_ = content.Close()
			err = errors.Wrapf(ErrBodyTooLarge, "limit is %d", limit)
		}
	}
	if err != nil {
		return nil, &ParseError{
			Line:     head.lines + 1,
			Offset:   int64(head.Size),
			Fragment: fragment(b),
			Err:      err,
		}
	}
	return content, nil
}

func (c *Codec) buildBody(head *Head, b []byte) (*body.Body, error) {
	contentCodings, transferCodings := body.Codings(head.Headers)
	codings := slices.Concat(contentCodings, transferCodings)

	framing, n := head.Framing()
	switch framing {
	case FramingChunked:
		chunks, trailers, read, err := transfer.DecodeChunks(b)
		if err != nil {
			return nil, errors.Wrap(err, "decoding chunks")
		}
		if read != len(b) {
			return nil, errors.Wrapf(ErrBodyLengthMismatch, "%d bytes after the last chunk", len(b)-read)
		}

		var size int64
		for _, chunk := range chunks {
			size += int64(len(chunk.Content))
		}
		if err := c.checkBodySize(size); err != nil {
			return nil, err
		}

		codings = codings[:len(codings)-1]
		if len(codings) == 0 {
			return body.FromChunks(c.version, chunks, c.opts.Body, trailers...)
		}

		joined := make([]byte, 0, size)
		for _, chunk := range chunks {
			joined = append(joined, chunk.Content...)
		}
		return c.decodeBody(joined, codings, trailers)

	case FramingLength:
		if int64(len(b)) > n {
			return nil, errors.Wrapf(ErrBodyLengthMismatch, "%d bytes beyond Content-Length %d", int64(len(b))-n, n)
		}
		// An empty body is allowed, e.g. for a response to HEAD.
		if len(b) > 0 && int64(len(b)) < n {
			return nil, errors.Wrapf(ErrBodyLengthMismatch, "got %d bytes of Content-Length %d", len(b), n)
		}
	}

	if err := c.checkBodySize(int64(len(b))); err != nil {
		return nil, err
	}
	return c.decodeBody(b, codings, nil)
}

// checkBodySize bounds the body as transferred, before content codings are undone.
func (c *Codec) checkBodySize(size int64) error {
	if limit := c.opts.Decode.MaxBodySize; limit > 0 && size > limit {
		return errors.Wrapf(ErrBodyTooLarge, "%d bytes transferred, limit is %d", size, limit)
	}
	return nil
}

func (c *Codec) decodeBody(b []byte, codings []transfer.Coding, trailers []http.Field) (*body.Body, error) {
	if len(b) == 0 {
		return body.New(c.version, nil, c.opts.Body)
	}

	r, err := c.opts.Body.Pipeline.Decode(bytes.NewReader(b), codings, nil)
	if err != nil {
		return nil, err
	}
	if limit := c.opts.Decode.MaxBodySize; limit > 0 {
		// One byte past the limit is enough to tell.
		r = iolib.LimitReader(r, limit+1)
	}

	content, err := body.FromReader(c.version, r, c.opts.Body, trailers...)
	if err != nil {
		return nil, errors.Wrap(err, "reading body")
	}
	return content, nil
}
