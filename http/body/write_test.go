package body

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"http-message/http"
	"http-message/http/transfer"

	"github.com/stretchr/testify/suite"
)

type WriteTestSuite struct {
	suite.Suite

	opts Options
}

func TestWriteTestSuite(t *testing.T) {
	suite.Run(t, new(WriteTestSuite))
}

func (s *WriteTestSuite) SetupTest() {
	s.opts = Options{Threshold: 64, BlockSize: 4, TempDir: s.T().TempDir()}
}

func headers(fields ...string) *http.HeaderSet {
	hs := http.NewHeaderSet()
	for i := 0; i < len(fields); i += 2 {
		if err := hs.AddRaw(fields[i], fields[i+1]); err != nil {
			panic(err)
		}
	}
	return hs
}

func (s *WriteTestSuite) write(b *Body, hs http.Reader) string {
	buf := bytes.NewBuffer(nil)
	s.Require().NoError(b.Write(hs, buf))
	return buf.String()
}

func (s *WriteTestSuite) TestIdentity() {
	b, err := New(http.Version11, []byte("HELLOWORLD"), s.opts)
	s.Require().NoError(err)

	s.Equal("HELLOWORLD", s.write(b, headers()))
}

func (s *WriteTestSuite) TestChunked() {
	b, err := New(http.Version11, []byte("HELLOWORLD"), s.opts)
	s.Require().NoError(err)

	out := s.write(b, headers("Transfer-Encoding", "chunked"))
	s.Equal("4\r\nHELL\r\n4\r\nOWOR\r\n2\r\nLD\r\n0\r\n\r\n", out)
}

func (s *WriteTestSuite) TestChunkListKeepsChunks() {
	chunks := []transfer.Chunk{
		{Length: transfer.Length{Amount: 5, Extensions: []transfer.Extension{transfer.Ext("n", "1")}}, Content: []byte("HELLO")},
		{Length: transfer.Length{Amount: 5}, Content: []byte("WORLD")},
	}
	trailer := http.Field{Name: []byte("X-Sum"), Value: []byte("1")}

	b, err := FromChunks(http.Version11, chunks, s.opts, trailer)
	s.Require().NoError(err)

	out := s.write(b, headers("Transfer-Encoding", "chunked"))
	s.Equal("5;n=1\r\nHELLO\r\n5\r\nWORLD\r\n0\r\nX-Sum: 1\r\n\r\n", out)

	// Without a transfer coding the content is written as is.
	s.Equal("HELLOWORLD", s.write(b, headers()))
}

func (s *WriteTestSuite) TestContentThenTransferCoding() {
	data := strings.Repeat("compress me ", 40)
	b, err := New(http.Version11, []byte(data), s.opts)
	s.Require().NoError(err)

	hs := headers("Content-Encoding", "gzip", "Transfer-Encoding", "chunked")
	out := s.write(b, hs)

	r, err := transfer.NewPipeline(s.opts.BlockSize).Decode(
		strings.NewReader(out), []transfer.Coding{transfer.CodingGzip, transfer.CodingChunked}, nil)
	s.Require().NoError(err)

	decoded, err := io.ReadAll(r)
	s.Require().NoError(err)
	s.Equal(data, string(decoded))
}

func (s *WriteTestSuite) TestUnsupportedCoding() {
	b, err := New(http.Version11, []byte("x"), s.opts)
	s.Require().NoError(err)

	err = b.Write(headers("Content-Encoding", "br"), io.Discard)
	s.ErrorIs(err, transfer.ErrUnsupportedCoding)
}

func (s *WriteTestSuite) TestDeferredWithoutWorkspace() {
	ws, err := transfer.NewWorkspaces(1, 8)
	s.Require().NoError(err)
	defer ws.Close()

	opts := s.opts
	opts.Workspaces = ws

	b, err := New(http.Version11, []byte("HELLOWORLD"), opts)
	s.Require().NoError(err)

	held, err := ws.Acquire()
	s.Require().NoError(err)

	buf := bytes.NewBuffer(nil)
	err = b.Write(headers(), buf)
	s.ErrorIs(err, transfer.ErrDeferred)
	s.Zero(buf.Len())

	held.Release()
	s.Require().NoError(b.Write(headers(), buf))
	s.Equal("HELLOWORLD", buf.String())
	s.Equal(int32(1), ws.Idle())
}

func (s *WriteTestSuite) TestCodings() {
	content, transfers := Codings(headers(
		"Content-Encoding", "gzip",
		"Transfer-Encoding", "gzip, chunked",
	))
	s.Equal([]transfer.Coding{transfer.CodingGzip}, content)
	s.Equal([]transfer.Coding{transfer.CodingGzip, transfer.CodingChunked}, transfers)

	content, transfers = Codings(headers())
	s.Empty(content)
	s.Empty(transfers)
}
