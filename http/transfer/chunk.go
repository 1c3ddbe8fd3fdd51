package transfer

import (
	"bytes"
	"strconv"

	"http-message/util/rule"

	"github.com/pkg/errors"
)

// Extension is a chunk extension. Value is nil when the extension has no value.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-7.1.1
type Extension struct {
	Key   string
	Value *string
}

// Ext is a helper building an extension with a value.
func Ext(key, value string) Extension { return Extension{Key: key, Value: &value} }

// Length is the chunk size line: the amount of content and its extensions.
type Length struct {
	Amount     uint64
	Extensions []Extension
}

// Text formats the size line without the line terminator.
func (l Length) Text() []byte {
	buf := bytes.NewBuffer(nil)
	buf.WriteString(strconv.FormatUint(l.Amount, 16))
	for _, ext := range l.Extensions {
		buf.WriteByte(';')
		buf.WriteString(ext.Key)
		if ext.Value != nil {
			buf.WriteByte('=')
			buf.WriteString(rule.Quote(*ext.Value))
		}
	}
	return buf.Bytes()
}

type Chunk struct {
	Length  Length
	Content []byte
}

// NewChunk builds a chunk, checking that content matches the declared amount.
func NewChunk(length Length, content []byte) (Chunk, error) {
	if uint64(len(content)) != length.Amount {
		return Chunk{}, errors.Wrapf(ErrChunkMismatch,
			"declared %d bytes, got %d", length.Amount, len(content))
	}
	return Chunk{Length: length, Content: content}, nil
}

// IsLast reports whether the chunk is the terminal zero-length chunk.
func (c Chunk) IsLast() bool { return c.Length.Amount == 0 }

// maxSizeDigits keeps chunk sizes within 64 bits.
const maxSizeDigits = 16

// parseLength parses a chunk size line (without CRLF).
func parseLength(line []byte) (Length, error) {
	parts := rule.SplitUnquoted(line, ';')

	sizeRaw := bytes.TrimFunc(parts[0], rule.IsOWS)
	if len(sizeRaw) == 0 {
		return Length{}, parseErr(line, "empty chunk size")
	}
	if len(sizeRaw) > maxSizeDigits {
		return Length{}, parseErr(line, "chunk size larger than 64bit")
	}
	for _, c := range sizeRaw {
		if !rule.IsHexDigit(rune(c)) {
			return Length{}, parseErr(line, "chunk size is not hex: %q", sizeRaw)
		}
	}

	amount, err := strconv.ParseUint(string(sizeRaw), 16, 64)
	if err != nil {
		return Length{}, parseErr(line, "decoding chunk size: %s", err)
	}

	length := Length{Amount: amount}
	for _, part := range parts[1:] {
		k, v, hasValue := bytes.Cut(part, []byte{'='})
		// Trim BWS.
		k = bytes.TrimFunc(k, rule.IsOWS)
		if !rule.IsValidToken(string(k)) {
			return Length{}, parseErr(line, "extension name is not a token: %q", k)
		}

		ext := Extension{Key: string(k)}
		if hasValue {
			v = bytes.TrimFunc(v, rule.IsOWS)
			value := string(rule.Unquote(v))
			ext.Value = &value
		}
		length.Extensions = append(length.Extensions, ext)
	}

	return length, nil
}
