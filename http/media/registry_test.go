package media

import (
	"strings"
	"testing"

	"http-message/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	assert.Equal(t, []string{"application/octet-stream", "text/plain"}, Default.Essences())

	entry, ok := Default.Lookup(http.NewMediaType("Text", "Plain", http.Param{Key: "charset", Value: "utf-8"}))
	require.True(t, ok)

	v, err := entry.Decode(http.Version11, strings.NewReader("hi"), nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", v)

	_, ok = Default.Lookup(http.NewMediaType("application", "json"))
	assert.False(t, ok)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	assert.True(t, Register(r, TextPlain))
	assert.False(t, Register(r, TextPlain.With(http.Param{Key: "charset", Value: "latin1"})))
	assert.True(t, Register(r, NewType[[]byte](http.NewMediaType("application", "json"), BytesParser{})))

	assert.Equal(t, []string{"application/json", "text/plain"}, r.Essences())

	assert.True(t, r.Remove("Application/JSON"))
	assert.False(t, r.Remove("application/json"))
	assert.Equal(t, []string{"text/plain"}, r.Essences())
}
