package http

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type HeaderSetTestSuite struct {
	suite.Suite

	hs *HeaderSet
}

func TestHeaderSetTestSuite(t *testing.T) {
	suite.Run(t, new(HeaderSetTestSuite))
}

func (s *HeaderSetTestSuite) SetupTest() {
	s.hs = NewHeaderSet()
	s.Require().NoError(s.hs.AddRaw("Host", "example.com"))
	s.Require().NoError(s.hs.AddRaw("Set-Cookie", "a=1"))
	s.Require().NoError(s.hs.AddRaw("Accept", "*/*"))
	s.Require().NoError(s.hs.AddRaw("set-cookie", "b=2"))
}

func (s *HeaderSetTestSuite) names() []string {
	names := make([]string, 0)
	for h := range s.hs.All() {
		names = append(names, h.Name()+"="+h.Value.String())
	}
	return names
}

func (s *HeaderSetTestSuite) TestCaseInsensitiveLookup() {
	s.Equal(2, s.hs.Count("SET-COOKIE"))
	s.True(s.hs.Contains("host"))
	s.False(s.hs.Contains("Server"))

	first, ok := s.hs.First("set-cookie")
	s.True(ok)
	s.Equal("a=1", first.Value.String())

	last, ok := s.hs.Last("Set-Cookie")
	s.True(ok)
	s.Equal("b=2", last.Value.String())

	s.Len(s.hs.Get("set-Cookie"), 2)
	s.Empty(s.hs.Get("Server"))
}

func (s *HeaderSetTestSuite) TestPutReplacesAtFirstPosition() {
	s.hs.Put(SetCookie.Header("c=3"))

	s.Equal([]string{"Host=example.com", "Set-Cookie=c=3", "Accept=*/*"}, s.names())
}

func (s *HeaderSetTestSuite) TestPutAppendsNew() {
	s.hs.Put(Server.Header("test"))

	s.Equal(5, s.hs.Len())
	last := slices.Collect(s.hs.All())[4]
	s.Equal("Server", last.Name())
}

func (s *HeaderSetTestSuite) TestRemove() {
	s.True(s.hs.Remove("SET-COOKIE"))
	s.False(s.hs.Remove("Set-Cookie"))
	s.Equal([]string{"Host=example.com", "Accept=*/*"}, s.names())

	s.True(s.hs.RemoveKey(Host.Key))
	s.Equal(1, s.hs.Len())
}

func (s *HeaderSetTestSuite) TestAddRawTypesRegisteredKeys() {
	s.Require().NoError(s.hs.AddRaw("content-length", "5"))
	s.Require().NoError(s.hs.AddRaw("Transfer-Encoding", "gzip, Chunked"))

	length, ok := FirstKey(s.hs, ContentLength)
	s.True(ok)
	s.Equal(Length(5), length)

	te, ok := LastKey(s.hs, TransferEncoding)
	s.True(ok)
	s.Equal(Tokens{"gzip", "chunked"}, te)

	_, ok = FirstKey(s.hs, ContentType)
	s.False(ok)
}

func (s *HeaderSetTestSuite) TestAddRawInvalid() {
	s.Error(s.hs.AddRaw("Content-Length", "five"))
	s.Error(s.hs.AddRaw("Bad Name", "x"))
	s.Equal(4, s.hs.Len())
}

func (s *HeaderSetTestSuite) TestGetKey() {
	cookies := GetKey(s.hs, SetCookie)
	s.Equal([]String{"a=1", "b=2"}, cookies)
}

func (s *HeaderSetTestSuite) TestCastMismatchPanics() {
	// Content-Length built as a raw string header.
	s.hs.Add(Header{Key: ContentLength.Key, Value: String("5")})

	s.Panics(func() { FirstKey(s.hs, ContentLength) })
}

func (s *HeaderSetTestSuite) TestViewIsDetached() {
	view := s.hs.View()
	s.hs.Remove("Host")

	s.True(view.Contains("Host"))
	s.Equal(4, view.Len())

	mutable := view.Mutable()
	mutable.Remove("Accept")
	s.True(view.Contains("Accept"))
}

func (s *HeaderSetTestSuite) TestNilSafety() {
	var hs *HeaderSet
	s.Equal(0, hs.Len())
	s.False(hs.Contains("Host"))
	s.Empty(slices.Collect(hs.All()))
	s.Equal(0, hs.Clone().Len())

	var view View
	s.Equal(0, view.Len())
	s.Empty(view.Fields())
}

func (s *HeaderSetTestSuite) TestFields() {
	fields := s.hs.Fields()
	s.Len(fields, 4)
	s.Equal("Host: example.com", string(fields[0].Text()))
	s.Equal("Set-Cookie: b=2", string(fields[3].Text()))
}

func TestCanonicalName(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected string
	}{
		{desc: "lower", input: "content-length", expected: "Content-Length"},
		{desc: "upper", input: "CONTENT-TYPE", expected: "Content-Type"},
		{desc: "not a token", input: "bad name", expected: "bad name"},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, CanonicalName(tc.input))
		})
	}
}
