// Package message defines parsed requests and responses.
// Values are immutable once built; only the body's decoded cache changes.
package message

import (
	"bytes"
	"net/url"
	"strings"

	"http-message/http"
	"http-message/http/body"

	"github.com/pkg/errors"
)

// Message is the part shared by requests and responses.
type Message interface {
	Version() http.Version
	Headers() http.View
	Body() *body.Body
}

type common struct {
	version http.Version
	headers http.View
	body    *body.Body
}

func (c common) Version() http.Version { return c.version }
func (c common) Headers() http.View    { return c.headers }
func (c common) Body() *body.Body      { return c.body }

func newCommon(v http.Version, headers *http.HeaderSet, b *body.Body) common {
	if b == nil {
		b = body.Empty(v)
	}
	return common{version: v, headers: headers.View(), body: b}
}

type Request struct {
	common

	method    http.Method
	target    string
	authority string
}

var _ Message = (*Request)(nil)

// NewRequest freezes headers; later changes to the set are not seen by the request.
// A nil body is an empty one.
func NewRequest(v http.Version, method http.Method, target string, headers *http.HeaderSet, b *body.Body) *Request {
	r := &Request{
		common: newCommon(v, headers, b),
		method: method,
		target: target,
	}
	r.authority = authorityOf(method, target, r.headers)
	return r
}

func (r *Request) Method() http.Method { return r.method }
func (r *Request) Target() string      { return r.target }

// Authority is the host (and port) the request is for: taken from an absolute
// or authority form target, otherwise from the Host header.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3.2
func (r *Request) Authority() string { return r.authority }

func authorityOf(method http.Method, target string, headers http.Reader) string {
	if method == http.MethodConnect {
		return target
	}

	if !strings.HasPrefix(target, "/") && target != "*" {
		if u, err := url.Parse(target); err == nil && u.Host != "" {
			return u.Host
		}
	}

	if host, ok := http.FirstKey(headers, http.Host); ok {
		return string(host)
	}
	return ""
}

type Response struct {
	common

	status http.Status
}

var _ Message = (*Response)(nil)

func NewResponse(v http.Version, status http.Status, headers *http.HeaderSet, b *body.Body) *Response {
	return &Response{
		common: newCommon(v, headers, b),
		status: status,
	}
}

func (r *Response) Status() http.Status { return r.status }

// Equal reports whether a and b are structurally the same message:
// same start line, same headers in the same order and same raw body bytes.
func Equal(a, b Message) (bool, error) {
	switch a := a.(type) {
	case *Request:
		b, ok := b.(*Request)
		if !ok || a.method != b.method || a.target != b.target || a.authority != b.authority {
			return false, nil
		}
	case *Response:
		b, ok := b.(*Response)
		if !ok || a.status != b.status {
			return false, nil
		}
	default:
		return false, errors.Errorf("unknown message type %T", a)
	}

	if a.Version() != b.Version() || !equalFields(a.Headers().Fields(), b.Headers().Fields()) {
		return false, nil
	}

	return equalBodies(a.Body(), b.Body())
}

func equalFields(a, b []http.Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.EqualFold(a[i].Name, b[i].Name) || !bytes.Equal(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

func equalBodies(a, b *body.Body) (bool, error) {
	if a.Len() != b.Len() || !equalFields(a.Trailers(), b.Trailers()) {
		return false, nil
	}

	sumA, err := a.Fingerprint()
	if err != nil {
		return false, errors.Wrap(err, "fingerprinting body")
	}
	sumB, err := b.Fingerprint()
	if err != nil {
		return false, errors.Wrap(err, "fingerprinting body")
	}

	return sumA == sumB, nil
}
