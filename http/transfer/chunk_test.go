package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLength(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected Length
		wantErr  bool
	}{
		{
			desc:     "plain hex",
			input:    "FF",
			expected: Length{Amount: 0xFF},
		},
		{
			desc:     "extension",
			input:    "5;ext=foo",
			expected: Length{Amount: 5, Extensions: []Extension{Ext("ext", "foo")}},
		},
		{
			desc:     "BWS inside chunk",
			input:    "5 ; ext = foo",
			expected: Length{Amount: 5, Extensions: []Extension{Ext("ext", "foo")}},
		},
		{
			desc:  "extension without value",
			input: "a;flag;k=v",
			expected: Length{Amount: 10, Extensions: []Extension{
				{Key: "flag"},
				Ext("k", "v"),
			}},
		},
		{
			desc:     "quoted value with separator",
			input:    `3;name="a;b \"c\""`,
			expected: Length{Amount: 3, Extensions: []Extension{Ext("name", `a;b "c"`)}},
		},
		{
			desc:     "64 bit",
			input:    "ffffffffffffffff",
			expected: Length{Amount: 1<<64 - 1},
		},
		{desc: "empty", input: "", wantErr: true},
		{desc: "not hex", input: "haha this aint hex", wantErr: true},
		{desc: "signed", input: "+5", wantErr: true},
		{desc: "hex too long", input: "FFFFFFFFFFFFFFFFF", wantErr: true},
		{desc: "bad extension name", input: "5;e x=1", wantErr: true},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			length, err := parseLength([]byte(tc.input))
			if tc.wantErr {
				var perr *ChunkParseError
				assert.ErrorAs(t, err, &perr)
				assert.Equal(t, tc.input, perr.Line)
				assert.ErrorIs(t, err, ErrMalformedChunk)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, length)
		})
	}
}

func TestLengthText(t *testing.T) {
	testcases := []struct {
		desc     string
		input    Length
		expected string
	}{
		{desc: "hex amount", input: Length{Amount: 0xF}, expected: "f"},
		{desc: "zero", input: Length{}, expected: "0"},
		{
			desc:     "extensions",
			input:    Length{Amount: 5, Extensions: []Extension{Ext("foo", "bar"), {Key: "flag"}}},
			expected: "5;foo=bar;flag",
		},
		{
			desc:     "quoted extension value",
			input:    Length{Amount: 1, Extensions: []Extension{Ext("name", "a b")}},
			expected: `1;name="a b"`,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			text := tc.input.Text()
			assert.Equal(t, tc.expected, string(text))

			parsed, err := parseLength(text)
			assert.NoError(t, err)
			assert.Equal(t, tc.input, parsed)
		})
	}
}

func TestNewChunk(t *testing.T) {
	c, err := NewChunk(Length{Amount: 3}, []byte("abc"))
	assert.NoError(t, err)
	assert.False(t, c.IsLast())

	_, err = NewChunk(Length{Amount: 4}, []byte("abc"))
	assert.ErrorIs(t, err, ErrChunkMismatch)

	_, err = NewChunk(Length{Amount: 2}, []byte("abc"))
	assert.ErrorIs(t, err, ErrChunkMismatch)

	last, err := NewChunk(Length{}, nil)
	assert.NoError(t, err)
	assert.True(t, last.IsLast())
}
