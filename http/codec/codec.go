// Package codec reads and writes HTTP/1.0 and HTTP/1.1 messages.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc1945
//
// - https://datatracker.ietf.org/doc/html/rfc9112
package codec

import (
	"bytes"
	"slices"

	"http-message/http"
	"http-message/util/rule"

	"github.com/pkg/errors"
)

// Codec parses and serializes messages of a single protocol version.
type Codec struct {
	version http.Version
	grammar Grammar
	// methods allowed on requests, nil means any token.
	methods []http.Method
	opts    Options
}

// Methods defined by HTTP/1.0.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc1945#section-8
var methods10 = []http.Method{
	http.MethodGet, http.MethodHead, http.MethodPost,
	http.MethodPut, http.MethodDelete, http.MethodLink, http.MethodUnlink,
}

func NewHTTP10(opts Options) *Codec {
	return &Codec{
		version: http.Version10,
		grammar: Grammar10,
		methods: methods10,
		opts:    opts.withDefaults(),
	}
}

func NewHTTP11(opts Options) *Codec {
	return &Codec{
		version: http.Version11,
		grammar: Grammar11,
		opts:    opts.withDefaults(),
	}
}

// New returns the codec of v.
func New(v http.Version, opts Options) (*Codec, error) {
	switch v {
	case http.Version10:
		return NewHTTP10(opts), nil
	case http.Version11:
		return NewHTTP11(opts), nil
	}
	return nil, errors.Wrap(ErrUnsupportedVersion, v.String())
}

func (c *Codec) Version() http.Version { return c.version }
func (c *Codec) Grammar() Grammar      { return c.grammar }
func (c *Codec) Options() Options      { return c.opts }

// Allows reports whether method may be sent with this version.
func (c *Codec) Allows(method http.Method) bool {
	if c.methods == nil {
		return rule.IsValidToken(string(method))
	}
	return slices.Contains(c.methods, method)
}

// HeadLength returns the length of the head in b, empty line included,
// once b holds all of it.
func (c *Codec) HeadLength(b []byte) (int, bool) { return headLength(b) }

// ValidateRequest reports whether b starts like a request of this version.
// Only the head is looked at, and it may be incomplete.
func (c *Codec) ValidateRequest(b []byte) bool { return c.validate(b, http.TargetRequest) }

// ValidateResponse is [Codec.ValidateRequest] for responses.
func (c *Codec) ValidateResponse(b []byte) bool { return c.validate(b, http.TargetResponse) }

func (c *Codec) validate(b []byte, direction http.Target) bool {
	if n, ok := headLength(b); ok {
		b = b[:n]
	} else {
		b = slices.Concat(bytes.TrimRight(b, "\r\n"), rule.EmptyLine)
	}

	lr := newLineReader(b, c.opts.Decode)
	if _, err := c.readStartLine(lr, direction); err != nil {
		return false
	}

	for {
		l, err := lr.next(c.opts.Decode.MaxFieldLineLength)
		if err != nil {
			return false
		}
		if len(l.content) == 0 {
			return true
		}
		if !c.grammar.Validate(l.content) {
			return false
		}
	}
}

// Set is an ordered list of codecs.
type Set []*Codec

// Registered holds a codec per supported version, newest first.
var Registered = Set{NewHTTP11(DefaultOptions), NewHTTP10(DefaultOptions)}

// Select picks the first codec that accepts b as a request or a response.
func (s Set) Select(b []byte) (*Codec, bool) {
	for _, c := range s {
		if c.ValidateRequest(b) || c.ValidateResponse(b) {
			return c, true
		}
	}
	return nil, false
}

// Select is [Set.Select] over [Registered].
func Select(b []byte) (*Codec, bool) { return Registered.Select(b) }
