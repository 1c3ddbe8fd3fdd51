package http

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"time"

	"http-message/util/rule"

	"github.com/pkg/errors"
)

// Value is a typed header value. String returns its field-value form.
type Value interface {
	String() string
}

// String is an untyped field value.
type String string

func (s String) String() string { return string(s) }

func ParseString(raw string) (String, error) { return String(raw), nil }

// Length is a Content-Length value.
type Length uint64

func (l Length) String() string { return strconv.FormatUint(uint64(l), 10) }

// ParseLength parses a Content-Length value.
// A list of identical values is accepted and collapsed.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-8.6
func ParseLength(raw string) (Length, error) {
	var length Length
	for idx, part := range strings.Split(raw, ",") {
		part = strings.TrimFunc(part, rule.IsOWS)
		for _, c := range part {
			if !rule.IsDigit(c) {
				return 0, errors.Errorf("content length is not a number: %q", raw)
			}
		}

		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "content length is not a number: %q", raw)
		}
		if n > math.MaxInt64 {
			return 0, errors.Errorf("content length is too large: %q", raw)
		}

		if idx > 0 && Length(n) != length {
			return 0, errors.Errorf("content length has conflicting values: %q", raw)
		}
		length = Length(n)
	}

	return length, nil
}

// Tokens is a comma separated list of tokens, e.g. Transfer-Encoding or Connection.
// Tokens are compared case-insensitively and stored in lower case.
type Tokens []string

func (t Tokens) String() string { return strings.Join(t, ", ") }

// Has reports whether token is in the list.
func (t Tokens) Has(token string) bool {
	for _, v := range t {
		if strings.EqualFold(v, token) {
			return true
		}
	}
	return false
}

// Last returns the last token or an empty string.
func (t Tokens) Last() string {
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.1
func ParseTokens(raw string) (Tokens, error) {
	tokens := make(Tokens, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimFunc(part, rule.IsOWS)
		if part == "" {
			// Empty list elements are ignored.
			continue
		}

		// Codings may carry parameters (e.g. "gzip;q=1"), keep only the token.
		token, _, _ := strings.Cut(part, ";")
		token = strings.TrimFunc(token, rule.IsOWS)
		if !rule.IsValidToken(token) {
			return nil, errors.Errorf("list element is not a token: %q", part)
		}

		tokens = append(tokens, strings.ToLower(token))
	}

	return tokens, nil
}

type Param struct{ Key, Value string }

// MediaType is a Content-Type value.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-8.3.1
type MediaType struct {
	Type, Subtype string
	Params        []Param
}

func NewMediaType(typ, subtype string, params ...Param) MediaType {
	return MediaType{Type: strings.ToLower(typ), Subtype: strings.ToLower(subtype), Params: params}
}

func (mt MediaType) Essence() string { return mt.Type + "/" + mt.Subtype }

// Param returns the value of the parameter named key.
func (mt MediaType) Param(key string) (string, bool) {
	for _, p := range mt.Params {
		if strings.EqualFold(p.Key, key) {
			return p.Value, true
		}
	}
	return "", false
}

// Key returns a normalized form suitable as a map key.
func (mt MediaType) Key() string {
	buf := bytes.NewBufferString(strings.ToLower(mt.Essence()))
	for _, p := range mt.Params {
		buf.WriteByte(';')
		buf.WriteString(strings.ToLower(p.Key))
		buf.WriteByte('=')
		buf.WriteString(p.Value)
	}
	return buf.String()
}

func (mt MediaType) String() string {
	buf := bytes.NewBufferString(mt.Essence())
	for _, p := range mt.Params {
		buf.WriteString("; ")
		buf.WriteString(p.Key)
		buf.WriteByte('=')
		buf.WriteString(rule.Quote(p.Value))
	}
	return buf.String()
}

func ParseMediaType(raw string) (MediaType, error) {
	parts := strings.Split(raw, ";")

	typ, subtype, found := strings.Cut(strings.TrimFunc(parts[0], rule.IsOWS), "/")
	if !found || !rule.IsValidToken(typ) || !rule.IsValidToken(subtype) {
		return MediaType{}, errors.Errorf("media type is malformed: %q", raw)
	}

	mt := NewMediaType(typ, subtype)
	for _, part := range parts[1:] {
		part = strings.TrimFunc(part, rule.IsOWS)
		if part == "" {
			continue
		}

		k, v, found := strings.Cut(part, "=")
		if !found || !rule.IsValidToken(k) {
			return MediaType{}, errors.Errorf("media type parameter is malformed: %q", part)
		}
		mt.Params = append(mt.Params, Param{Key: k, Value: string(rule.Unquote([]byte(v)))})
	}

	return mt, nil
}

const (
	// Preferred format: IMF-fixdate
	imfFixDateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"
	// Obsolete RFC 850 format
	rfc850DateFormat = time.RFC850
	// Obsolete asctime format
	asctimeDateFormat = time.ANSIC
)

// Timestamp is an HTTP-date value.
type Timestamp struct{ time.Time }

func (d Timestamp) String() string { return d.UTC().Format(imfFixDateFormat) }

// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.7
func ParseDate(raw string) (Timestamp, error) {
	layouts := []string{imfFixDateFormat, rfc850DateFormat, asctimeDateFormat}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Timestamp{t}, nil
		}
	}

	return Timestamp{}, errors.Errorf("invalid time format: %q", raw)
}
