package codec

import (
	"bytes"
	"io"

	iolib "http-message/lib/io"
	"http-message/util/rule"

	"github.com/pkg/errors"
)

var errLineTooLong = errors.New("line length exceeds limit")

// line is a received line with its position in the input.
type line struct {
	text []byte
	// content is the line as received, without its terminator.
	content []byte
	// folded marks an obs-fold continuation of the previous field line.
	folded bool

	num    int
	offset int64
	raw    []byte
}

func (l line) fail(err error) *ParseError {
	return &ParseError{
		Line:     l.num,
		Offset:   l.offset,
		Fragment: fragment(bytes.TrimRight(l.raw, "\r\n")),
		Err:      err,
	}
}

type lineReader struct {
	ur   *iolib.UntilReader
	opts DecodeOptions
	num  int
}

func newLineReader(b []byte, opts DecodeOptions) *lineReader {
	return &lineReader{ur: iolib.NewUntilReader(bytes.NewReader(b)), opts: opts}
}

// next reads a line and strips its terminator.
// limit counts the line without its terminator, zero means no limit.
func (lr *lineReader) next(limit uint) (line, error) {
	lr.num++
	l := line{num: lr.num, offset: lr.ur.Offset()}

	var (
		b   []byte
		err error
	)
	if limit > 0 {
		b, err = lr.ur.ReadUntilLimit([]byte{rule.LF}, int(limit)+len(rule.CRLF))
	} else {
		b, err = lr.ur.ReadUntil([]byte{rule.LF})
	}
	l.raw = b

	if err != nil {
		switch {
		case errors.Is(err, iolib.ErrLimitExceeded):
			return l, errLineTooLong
		case errors.Is(err, io.EOF):
			return l, ErrIncompleteHead
		}
		return l, errors.Wrap(err, "reading line")
	}

	b = b[:len(b)-1] // Remove LF.

	if len(b) > 0 && b[len(b)-1] == rule.CR {
		b = b[:len(b)-1] // Remove CR.
	} else if !lr.opts.AllowSoleLF {
		return l, ErrMissingCRBeforeLF
	}

	if limit > 0 && uint(len(b)) > limit {
		return l, errLineTooLong
	}

	l.content = b
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.2
	l.folded = isContinuation(b)

	if lr.opts.LenientWhitespace {
		for _, c := range rule.Whitespaces {
			b = bytes.ReplaceAll(b, []byte{c}, []byte{rule.SP})
		}
		l.text = bytes.Trim(b, string([]byte{rule.SP}))
		return l, nil
	}

	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-4
	l.text = bytes.ReplaceAll(b, []byte{rule.CR}, []byte{rule.SP})
	return l, nil
}

// offset is the number of bytes consumed so far.
func (lr *lineReader) offset() int64 { return lr.ur.Offset() }

// headLength finds the end of the empty line closing the head,
// skipping empty lines that precede the start line.
// Lines may end with LF alone; strictness is left to parsing.
func headLength(b []byte) (int, bool) {
	started := false
	for pos := 0; pos < len(b); {
		idx := bytes.IndexByte(b[pos:], rule.LF)
		if idx < 0 {
			return 0, false
		}

		text := bytes.TrimSuffix(b[pos:pos+idx], []byte{rule.CR})
		pos += idx + 1

		if len(text) > 0 {
			started = true
		} else if started {
			return pos, true
		}
	}
	return 0, false
}
