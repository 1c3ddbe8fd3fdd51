package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type LineReaderTestSuite struct {
	suite.Suite
}

func TestLineReaderTestSuite(t *testing.T) {
	suite.Run(t, new(LineReaderTestSuite))
}

func (s *LineReaderTestSuite) TestNext() {
	testcases := []struct {
		desc     string
		opts     DecodeOptions
		limit    uint
		input    string
		expected string
		folded   bool
		wantErr  error
	}{
		{
			desc:     "simple line with CRLF",
			input:    "Hello\r\n",
			expected: "Hello",
		},
		{
			desc:    "line exceeding limit",
			input:   "Hey\r\n",
			limit:   1,
			wantErr: errLineTooLong,
		},
		{
			desc:     "line at limit",
			input:    "Hey\r\n",
			limit:    3,
			expected: "Hey",
		},
		{
			desc:    "sole LF (fail)",
			input:   "Hello\n",
			wantErr: ErrMissingCRBeforeLF,
		},
		{
			desc:     "sole LF (success)",
			opts:     DecodeOptions{AllowSoleLF: true},
			input:    "Hello\n",
			expected: "Hello",
		},
		{
			desc:     "bare CR becomes SP",
			input:    "Hello \r World!\r\n",
			expected: "Hello   World!",
		},
		{
			desc:     "lenient whitespace",
			opts:     DecodeOptions{LenientWhitespace: true},
			input:    " \tHello\x0bWorld!\x0c \r\n",
			expected: "Hello World!",
			folded:   true,
		},
		{
			desc:     "continuation line",
			input:    "  more\r\n",
			expected: "  more",
			folded:   true,
		},
		{
			desc:    "no terminator",
			input:   "Hello",
			wantErr: ErrIncompleteHead,
		},
	}
	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			lr := newLineReader([]byte(tc.input), tc.opts)

			l, err := lr.next(tc.limit)
			if tc.wantErr != nil {
				s.ErrorIs(err, tc.wantErr)
				return
			}

			s.Require().NoError(err)
			s.Equal(tc.expected, string(l.text))
			s.Equal(tc.folded, l.folded)
			s.Equal(1, l.num)
		})
	}
}

func (s *LineReaderTestSuite) TestPositions() {
	lr := newLineReader([]byte("first\r\nsecond\r\n"), DecodeOptions{})

	_, err := lr.next(0)
	s.Require().NoError(err)

	l, err := lr.next(0)
	s.Require().NoError(err)
	s.Equal(2, l.num)
	s.Equal(int64(7), l.offset)
	s.Equal(int64(15), lr.offset())

	perr := l.fail(ErrMalformedFieldLine)
	s.Equal("second", perr.Fragment)
	s.ErrorIs(perr, ErrMalformedFieldLine)
}

func TestHeadLength(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected int
		found    bool
	}{
		{desc: "complete", input: "GET / HTTP/1.1\r\n\r\nbody", expected: 18, found: true},
		{desc: "with headers", input: "GET / HTTP/1.1\r\nHost: a\r\n\r\n", expected: 27, found: true},
		{desc: "sole LF", input: "GET / HTTP/1.1\nHost: a\n\n", expected: 24, found: true},
		{desc: "leading empty lines", input: "\r\n\r\nGET / HTTP/1.1\r\n\r\n", expected: 22, found: true},
		{desc: "partial", input: "GET / HTTP/1.1\r\nHost: a\r\n"},
		{desc: "only empty lines", input: "\r\n\r\n"},
		{desc: "empty", input: ""},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			n, found := headLength([]byte(tc.input))
			assert.Equal(t, tc.found, found)
			assert.Equal(t, tc.expected, n)
		})
	}
}
