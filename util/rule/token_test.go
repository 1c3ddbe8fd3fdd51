package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidToken(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected bool
	}{
		{
			desc:     "valid token with alphabets",
			input:    "Token",
			expected: true,
		},
		{
			desc:     "valid token with digits",
			input:    "Token123",
			expected: true,
		},
		{
			desc:     "valid token with special characters",
			input:    "Token-._~",
			expected: true,
		},
		{
			desc:     "invalid token with space",
			input:    "Token 123",
			expected: false,
		},
		{
			desc:     "invalid token with special characters",
			input:    "Token@123",
			expected: false,
		},
		{
			desc:     "empty token",
			input:    "",
			expected: false,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			result := IsValidToken(tc.input)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestIsValidFieldValue(t *testing.T) {
	assert.True(t, IsValidFieldValue([]byte("text/html; charset=utf-8")))
	assert.True(t, IsValidFieldValue([]byte("a\tb")))
	assert.True(t, IsValidFieldValue(nil))
	assert.False(t, IsValidFieldValue([]byte("a\rb")))
	assert.False(t, IsValidFieldValue([]byte{'a', DEL}))
}

func TestUnquote(t *testing.T) {
	testcases := []struct {
		desc     string
		input    []byte
		expected []byte
	}{
		{
			desc:     "not quoted",
			input:    []byte("Token"),
			expected: []byte("Token"),
		},
		{
			desc:     "quoted",
			input:    []byte("\"Token\""),
			expected: []byte("Token"),
		},
		{
			desc:     "half-quoted",
			input:    []byte("\"Token"),
			expected: []byte("\"Token"),
		},
		{
			desc:     "unescape",
			input:    []byte("\"Tok\\\"en\""),
			expected: []byte("Tok\"en"),
		},
		{
			desc:     "escaped backslash",
			input:    []byte(`"a\\b"`),
			expected: []byte(`a\b`),
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			result := Unquote(tc.input)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "token", Quote("token"))
	assert.Equal(t, `"hello world"`, Quote("hello world"))
	assert.Equal(t, `"a\"b"`, Quote(`a"b`))
	assert.Equal(t, []byte(`a"b`), Unquote([]byte(Quote(`a"b`))))
}

func TestSplitUnquoted(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected []string
	}{
		{desc: "plain", input: "a,b,c", expected: []string{"a", "b", "c"}},
		{desc: "quoted separator", input: `a="x,y",b`, expected: []string{`a="x,y"`, "b"}},
		{desc: "escaped quote", input: `a="x\",y",b`, expected: []string{`a="x\",y"`, "b"}},
		{desc: "no separator", input: "abc", expected: []string{"abc"}},
		{desc: "trailing separator", input: "a,", expected: []string{"a", ""}},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			parts := make([]string, 0)
			for _, p := range SplitUnquoted([]byte(tc.input), ',') {
				parts = append(parts, string(p))
			}
			assert.Equal(t, tc.expected, parts)
		})
	}
}
