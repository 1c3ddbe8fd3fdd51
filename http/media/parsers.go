package media

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"http-message/http"

	"github.com/pkg/errors"
)

var (
	ErrUnsupportedCharset = errors.New("charset is unsupported")
	ErrInvalidText        = errors.New("content is not valid in its charset")
)

var (
	OctetStream = NewType[[]byte](http.NewMediaType("application", "octet-stream"), BytesParser{})
	TextPlain   = NewType[string](http.NewMediaType("text", "plain"), TextParser{})
)

// BytesParser keeps content as raw bytes.
type BytesParser struct{}

func (BytesParser) Deserialize(_ http.Version, r io.Reader, _ []http.Param) ([]byte, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading content")
	}
	return b, nil
}

func (BytesParser) Serialize(_ http.Version, value []byte, _ []http.Param) (io.Reader, error) {
	return bytes.NewReader(value), nil
}

// TextParser decodes text honoring the charset parameter.
// Only utf-8, us-ascii and iso-8859-1 are known; no charset means utf-8.
type TextParser struct{}

func (TextParser) Deserialize(_ http.Version, r io.Reader, params []http.Param) (string, error) {
	charset, err := charsetOf(params)
	if err != nil {
		return "", &ParseError{MediaType: "text/plain", Op: OpDeserialize, Err: err}
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "reading content")
	}

	switch charset {
	case "iso-8859-1":
		// Every latin-1 octet is the code point of the same value.
		runes := make([]rune, len(b))
		for i, c := range b {
			runes[i] = rune(c)
		}
		return string(runes), nil
	case "us-ascii":
		for _, c := range b {
			if c >= utf8.RuneSelf {
				return "", &ParseError{MediaType: "text/plain", Op: OpDeserialize,
					Err: errors.Wrapf(ErrInvalidText, "non ascii octet 0x%02x", c)}
			}
		}
	default:
		if !utf8.Valid(b) {
			return "", &ParseError{MediaType: "text/plain", Op: OpDeserialize,
				Err: errors.Wrap(ErrInvalidText, "invalid utf-8")}
		}
	}

	return string(b), nil
}

func (TextParser) Serialize(_ http.Version, value string, params []http.Param) (io.Reader, error) {
	charset, err := charsetOf(params)
	if err != nil {
		return nil, &ParseError{MediaType: "text/plain", Op: OpSerialize, Err: err}
	}

	switch charset {
	case "iso-8859-1", "us-ascii":
		limit := rune(0xFF)
		if charset == "us-ascii" {
			limit = utf8.RuneSelf - 1
		}

		b := make([]byte, 0, len(value))
		for _, r := range value {
			if r > limit {
				return nil, &ParseError{MediaType: "text/plain", Op: OpSerialize,
					Err: errors.Wrapf(ErrInvalidText, "%q is not representable in %s", r, charset)}
			}
			b = append(b, byte(r))
		}
		return bytes.NewReader(b), nil
	}

	return strings.NewReader(value), nil
}

func charsetOf(params []http.Param) (string, error) {
	for _, p := range params {
		if !strings.EqualFold(p.Key, "charset") {
			continue
		}

		switch charset := strings.ToLower(p.Value); charset {
		case "utf-8", "utf8":
			return "utf-8", nil
		case "us-ascii", "ascii":
			return "us-ascii", nil
		case "iso-8859-1", "latin1":
			return "iso-8859-1", nil
		default:
			return "", errors.Wrapf(ErrUnsupportedCharset, "%q", p.Value)
		}
	}
	return "utf-8", nil
}
