package http

import (
	"fmt"
	"strings"

	"http-message/util/rule"

	"github.com/pkg/errors"
)

// Target tells which message direction a header applies to.
type Target uint8

const (
	TargetRequest Target = 1 << iota
	TargetResponse

	TargetBoth = TargetRequest | TargetResponse
)

func (t Target) Allows(direction Target) bool { return t&direction != 0 }

func (t Target) String() string {
	switch t {
	case TargetRequest:
		return "request"
	case TargetResponse:
		return "response"
	case TargetBoth:
		return "both"
	}
	return "none"
}

type valueKind uint8

const (
	kindString valueKind = iota
	kindLength
	kindTokens
	kindMediaType
	kindDate
	kindCacheControl
)

var valueParsers = [...]func(raw string) (Value, error){
	kindString:       func(raw string) (Value, error) { return ParseString(raw) },
	kindLength:       func(raw string) (Value, error) { return ParseLength(raw) },
	kindTokens:       func(raw string) (Value, error) { return ParseTokens(raw) },
	kindMediaType:    func(raw string) (Value, error) { return ParseMediaType(raw) },
	kindDate:         func(raw string) (Value, error) { return ParseDate(raw) },
	kindCacheControl: func(raw string) (Value, error) { return ParseCacheControl(raw) },
}

// Key describes a header field name: its canonical spelling,
// the direction it applies to and how its value is typed.
type Key struct {
	name   string
	target Target
	kind   valueKind
}

// RawKey returns a key whose value stays an untyped [String].
func RawKey(name string) Key {
	return Key{name: CanonicalName(name), target: TargetBoth, kind: kindString}
}

func (k Key) Name() string        { return k.name }
func (k Key) Target() Target      { return k.target }
func (k Key) Is(name string) bool { return strings.EqualFold(k.name, name) }

// Parse types a raw field value according to the key.
func (k Key) Parse(raw string) (Value, error) {
	v, err := valueParsers[k.kind](raw)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", k.name)
	}
	return v, nil
}

// TypedKey is a [Key] whose values are known to be of type T.
type TypedKey[T Value] struct{ Key }

func newTypedKey[T Value](name string, target Target, kind valueKind) TypedKey[T] {
	return TypedKey[T]{Key{name: CanonicalName(name), target: target, kind: kind}}
}

// Header builds a header of this key.
func (k TypedKey[T]) Header(v T) Header { return Header{Key: k.Key, Value: v} }

// Header is a single typed header.
type Header struct {
	Key   Key
	Value Value
}

func (h Header) Name() string { return h.Key.name }

// Field converts the header back into a raw field line.
func (h Header) Field() Field {
	return Field{Name: []byte(h.Key.name), Value: []byte(h.Value.String())}
}

// NewHeader parses raw into a header, typing the value when the name is registered.
func NewHeader(name, raw string) (Header, error) {
	if !rule.IsValidToken(name) {
		return Header{}, errors.Errorf("field name is not a valid token: %q", name)
	}

	key := LookupKey(name)
	v, err := key.Parse(raw)
	if err != nil {
		return Header{}, err
	}

	return Header{Key: key, Value: v}, nil
}

// HeaderFromField is [NewHeader] over a raw field line.
func HeaderFromField(f Field) (Header, error) {
	return NewHeader(string(f.Name), string(f.Value))
}

func castValue[T Value](h Header) T {
	v, ok := h.Value.(T)
	if !ok {
		var zero T
		panic(fmt.Sprintf("http: header %q holds %T, not %T", h.Name(), h.Value, zero))
	}
	return v
}

// This only works for valid token.
func CanonicalName(s string) string {
	if !rule.IsValidToken(s) {
		return s
	}

	const capitalDiff = 'a' - 'A'
	b := []byte(s)
	upper := true
	for i, c := range b {
		if upper && 'a' <= c && c <= 'z' {
			c -= capitalDiff
		} else if !upper && 'A' <= c && c <= 'Z' {
			c += capitalDiff
		}
		b[i] = c
		upper = c == '-'
	}
	return string(b)
}
