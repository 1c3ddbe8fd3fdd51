package message

import (
	"testing"

	"http-message/http"
	"http-message/http/body"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headers(t *testing.T, fields ...string) *http.HeaderSet {
	hs := http.NewHeaderSet()
	for i := 0; i < len(fields); i += 2 {
		require.NoError(t, hs.AddRaw(fields[i], fields[i+1]))
	}
	return hs
}

func TestRequestAuthority(t *testing.T) {
	testcases := []struct {
		desc     string
		method   http.Method
		target   string
		headers  []string
		expected string
	}{
		{desc: "origin form uses Host", method: http.MethodGet, target: "/index.html", headers: []string{"Host", "example.com"}, expected: "example.com"},
		{desc: "absolute form", method: http.MethodGet, target: "http://example.org:8080/a", headers: []string{"Host", "ignored"}, expected: "example.org:8080"},
		{desc: "authority form", method: http.MethodConnect, target: "example.com:443", expected: "example.com:443"},
		{desc: "asterisk form", method: http.MethodOptions, target: "*", headers: []string{"Host", "example.com"}, expected: "example.com"},
		{desc: "no host", method: http.MethodGet, target: "/", expected: ""},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			r := NewRequest(http.Version11, tc.method, tc.target, headers(t, tc.headers...), nil)
			assert.Equal(t, tc.expected, r.Authority())
		})
	}
}

func TestRequestIsImmutable(t *testing.T) {
	hs := headers(t, "Host", "example.com")
	r := NewRequest(http.Version11, http.MethodGet, "/", hs, nil)

	hs.Remove("Host")
	hs.Put(http.Server.Header("late"))

	assert.True(t, r.Headers().Contains("Host"))
	assert.False(t, r.Headers().Contains("Server"))
	assert.Equal(t, int64(0), r.Body().Len())
}

func TestEqual(t *testing.T) {
	newBody := func(s string) *body.Body {
		b, err := body.New(http.Version11, []byte(s), body.DefaultOptions)
		require.NoError(t, err)
		return b
	}

	base := NewRequest(http.Version11, http.MethodPost, "/a", headers(t, "Host", "x", "Content-Length", "2"), newBody("hi"))

	testcases := []struct {
		desc     string
		other    Message
		expected bool
	}{
		{
			desc:     "same",
			other:    NewRequest(http.Version11, http.MethodPost, "/a", headers(t, "host", "x", "content-length", "2"), newBody("hi")),
			expected: true,
		},
		{
			desc:  "different body",
			other: NewRequest(http.Version11, http.MethodPost, "/a", headers(t, "Host", "x", "Content-Length", "2"), newBody("ho")),
		},
		{
			desc:  "different header order",
			other: NewRequest(http.Version11, http.MethodPost, "/a", headers(t, "Content-Length", "2", "Host", "x"), newBody("hi")),
		},
		{
			desc:  "different version",
			other: NewRequest(http.Version10, http.MethodPost, "/a", headers(t, "Host", "x", "Content-Length", "2"), newBody("hi")),
		},
		{
			desc:  "response",
			other: NewResponse(http.Version11, http.StatusOK, headers(t, "Host", "x", "Content-Length", "2"), newBody("hi")),
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			eq, err := Equal(base, tc.other)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, eq)
		})
	}
}

func TestEqualResponse(t *testing.T) {
	a := NewResponse(http.Version11, http.StatusOK, headers(t), nil)
	b := NewResponse(http.Version11, http.StatusOK, headers(t), body.Empty(http.Version11))
	c := NewResponse(http.Version11, http.StatusNotFound, headers(t), nil)

	eq, err := Equal(a, b)
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = Equal(a, c)
	require.NoError(t, err)
	assert.False(t, eq)
}
