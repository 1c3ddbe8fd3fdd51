package assembler

import (
	"io"
	"sync"

	"http-message/http/codec"
	"http-message/http/message"

	"github.com/pkg/errors"
)

var ErrSessionClosed = errors.New("session is closed")

// Session assembles the consecutive messages of one connection.
// Bytes past the end of a message start the next one.
type Session[M message.Message] struct {
	mu sync.Mutex

	next    func() *Assembler[M]
	handler func(M, error)
	current *Assembler[M]
	// fed is set once current received bytes and reports to handler.
	fed    bool
	closed bool
}

// NewRequestSession delivers every request read with c to handler.
// handler runs on the goroutine that fed the last bytes of the message,
// or on the clock's goroutine on timeout, and must not call Feed.
// A message that never received a byte is not reported.
func NewRequestSession(c *codec.Codec, opts Options, handler func(*message.Request, error)) *Session[*message.Request] {
	return newSession(func() *Assembler[*message.Request] { return NewRequest(c, opts) }, handler)
}

// NewResponseSession is [NewRequestSession] for responses.
func NewResponseSession(c *codec.Codec, opts Options, handler func(*message.Response, error)) *Session[*message.Response] {
	return newSession(func() *Assembler[*message.Response] { return NewResponse(c, opts) }, handler)
}

func newSession[M message.Message](next func() *Assembler[M], handler func(M, error)) *Session[M] {
	return &Session[M]{next: next, handler: handler, current: next()}
}

// Feed hands b to the current assembler, starting new ones for the bytes that follow
// each complete message. After a failed or cancelled message the session is closed.
func (s *Session[M]) Feed(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if s.closed {
			return ErrSessionClosed
		}

		if !s.fed {
			s.current.Result().OnComplete(s.handler)
			s.fed = true
		}

		if err := s.current.Feed(b); err != nil {
			if errors.Is(err, ErrResolved) {
				// Cancelled or timed out in between.
				s.closed = true
				return ErrSessionClosed
			}
			return err
		}

		switch s.current.Phase() {
		case Complete:
			b = s.current.Remainder()
			s.current, s.fed = s.next(), false
			if len(b) == 0 {
				return nil
			}
		case Failed, Cancelled:
			s.closed = true
			return nil
		default:
			return nil
		}
	}
}

const readSize = 4096

// ReadFrom feeds the session from r until r ends or the session closes.
// The end of r closes the session, cancelling a partially read message.
func (s *Session[M]) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	buf := make([]byte, readSize)
	for {
		n, err := r.Read(buf)
		total += int64(n)
		if n > 0 {
			if ferr := s.Feed(buf[:n]); ferr != nil {
				if errors.Is(ferr, ErrSessionClosed) {
					return total, nil
				}
				return total, ferr
			}
		}

		if err != nil {
			s.Close()
			if err == io.EOF {
				return total, nil
			}
			return total, errors.Wrap(err, "reading stream")
		}
	}
}

// Current returns the assembler of the message being read.
func (s *Session[M]) Current() *Assembler[M] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Close cancels the message being read.
func (s *Session[M]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.current.Cancel()
}
