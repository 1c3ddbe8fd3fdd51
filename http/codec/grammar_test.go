package codec

import (
	"testing"

	"http-message/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrammarParse(t *testing.T) {
	h, err := Grammar11.Parse([]byte("content-length:  42 "))
	require.NoError(t, err)

	assert.Equal(t, "Content-Length", h.Name())
	assert.Equal(t, http.Length(42), h.Value)
	assert.Equal(t, "Content-Length: 42", string(Grammar11.Serialize(h)))

	_, err = Grammar11.Parse([]byte("Content-Length: many"))
	assert.Error(t, err)

	_, err = Grammar11.Parse([]byte("Bad Name: x"))
	assert.Error(t, err)
}

func TestGrammarValidate(t *testing.T) {
	testcases := []struct {
		desc       string
		line       string
		expected10 bool
		expected11 bool
	}{
		{desc: "field line", line: "Host: example.com", expected10: true, expected11: true},
		{desc: "unknown field", line: "X-Custom: yes", expected10: true, expected11: true},
		{desc: "continuation", line: "  folded value", expected10: true, expected11: false},
		{desc: "tab continuation", line: "\tfolded value", expected10: true, expected11: false},
		{desc: "no colon", line: "Host example.com", expected10: false, expected11: false},
		{desc: "bad typed value", line: "Content-Length: -1", expected10: false, expected11: false},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected10, Grammar10.Validate([]byte(tc.line)))
			assert.Equal(t, tc.expected11, Grammar11.Validate([]byte(tc.line)))
		})
	}
}

func TestGrammarUnfold(t *testing.T) {
	joined, err := Grammar10.Unfold([]byte("X-Long: first"), []byte("   second  "))
	require.NoError(t, err)
	assert.Equal(t, "X-Long: first second", string(joined))

	joined, err = Grammar10.Unfold([]byte("X-Long: first"), []byte(" \t "))
	require.NoError(t, err)
	assert.Equal(t, "X-Long: first", string(joined))

	_, err = Grammar11.Unfold([]byte("X-Long: first"), []byte(" second"))
	assert.ErrorIs(t, err, ErrObsFold)
}
