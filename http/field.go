package http

import (
	"bytes"

	"http-message/util/rule"

	"github.com/pkg/errors"
)

// Field is a raw field line, before any value typing.
type Field struct{ Name, Value []byte }

func ParseField(fieldLine []byte) (Field, error) {
	name, value, found := bytes.Cut(fieldLine, []byte{':'})
	if !found {
		return Field{}, errors.Errorf("colon seperator not found on header: %q", string(fieldLine))
	}

	// No whitespace is allowed between field name and colon.
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.1-2
	if !rule.IsValidToken(string(name)) {
		return Field{}, errors.Errorf("field name is not a valid token: %q", string(name))
	}

	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.1-3
	value = bytes.TrimFunc(value, rule.IsOWS)
	if !rule.IsValidFieldValue(value) {
		return Field{}, errors.Errorf("field value has invalid characters: %q", string(value))
	}

	return Field{Name: name, Value: value}, nil
}

func (f *Field) Text() []byte {
	buf := bytes.NewBuffer(nil)
	buf.Write(f.Name)
	buf.Write([]byte(": "))
	buf.Write(f.Value)
	return buf.Bytes()
}
