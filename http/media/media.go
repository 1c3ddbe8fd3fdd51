// Package media binds media types to the parsers turning message content into values.
package media

import (
	"fmt"
	"io"

	"http-message/http"
)

// Parser converts between raw content and a decoded value of type T.
// params are the media type parameters of the content, e.g. charset.
type Parser[T any] interface {
	Deserialize(v http.Version, r io.Reader, params []http.Param) (T, error)
	Serialize(v http.Version, value T, params []http.Param) (io.Reader, error)
}

// Type is a media type together with the parser of its decoded form.
type Type[T any] struct {
	MediaType http.MediaType
	Parser    Parser[T]
}

func NewType[T any](mt http.MediaType, p Parser[T]) Type[T] {
	return Type[T]{MediaType: mt, Parser: p}
}

// With returns a copy of t carrying params instead of its own.
func (t Type[T]) With(params ...http.Param) Type[T] {
	t.MediaType = http.NewMediaType(t.MediaType.Type, t.MediaType.Subtype, params...)
	return t
}

// Key identifies the type in caches: essence and parameters, normalized.
func (t Type[T]) Key() string { return t.MediaType.Key() }

func (t Type[T]) String() string { return t.MediaType.String() }

// ParseError is returned when a parser fails to decode or encode content.
type ParseError struct {
	MediaType string
	Op        string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("media %s: %s: %s", e.MediaType, e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

const (
	OpDeserialize = "deserialize"
	OpSerialize   = "serialize"
)
