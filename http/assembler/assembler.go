// Package assembler buffers the bytes of a message as they arrive and
// parses it once it is whole.
package assembler

import (
	"bytes"
	"log/slog"
	"math"
	"sync"
	"time"

	"http-message/http"
	"http-message/http/codec"
	"http-message/http/message"
	"http-message/http/transfer"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

var (
	ErrResolved     = errors.New("assembly is already resolved")
	ErrCancelled    = errors.New("assembly is cancelled")
	ErrHeadTooLarge = errors.New("head exceeds the length limit")
)

// Assembler turns a stream of byte slices into a single message of type M.
// Its outcome is reported through [Assembler.Result] only.
type Assembler[M message.Message] struct {
	mu sync.Mutex

	codec     *codec.Codec
	direction http.Target
	parse     func(b []byte) (M, error)
	opts      Options
	logger    *slog.Logger

	phase     Phase
	buf       []byte
	head      *codec.Head
	want      int
	remainder []byte

	result  *Result[M]
	timer   *clock.Timer
	started time.Time
}

// NewRequest assembles a request with c.
func NewRequest(c *codec.Codec, opts Options) *Assembler[*message.Request] {
	return newAssembler(c, http.TargetRequest, c.ParseRequest, opts)
}

// NewResponse assembles a response with c.
func NewResponse(c *codec.Codec, opts Options) *Assembler[*message.Response] {
	return newAssembler(c, http.TargetResponse, c.ParseResponse, opts)
}

func newAssembler[M message.Message](
	c *codec.Codec,
	direction http.Target,
	parse func(b []byte) (M, error),
	opts Options,
) *Assembler[M] {
	opts = opts.withDefaults()

	a := &Assembler[M]{
		codec:     c,
		direction: direction,
		parse:     parse,
		opts:      opts,
		logger:    opts.Logger.With("direction", direction.String(), "version", c.Version().String()),
		phase:     AwaitingHeaders,
		result:    newResult[M](),
		started:   opts.Clock.Now(),
	}

	if opts.Timeout > 0 {
		a.timer = opts.Clock.AfterFunc(opts.Timeout, a.expire)
	}

	return a
}

func (a *Assembler[M]) Result() *Result[M] { return a.result }

func (a *Assembler[M]) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// Remainder returns the bytes fed after the end of the message.
// It is empty until the assembly completes.
func (a *Assembler[M]) Remainder() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return bytes.Clone(a.remainder)
}

// Feed appends b to the buffered bytes and advances the assembly.
// A parse failure is not returned here but delivered to the result.
func (a *Assembler[M]) Feed(b []byte) error {
	a.mu.Lock()
	if a.phase.Resolved() {
		a.mu.Unlock()
		return ErrResolved
	}

	a.buf = append(a.buf, b...)
	resolve := a.advance()
	a.mu.Unlock()

	if resolve != nil {
		resolve()
	}
	return nil
}

// Cancel resolves the assembly with [ErrCancelled] unless it is already resolved.
func (a *Assembler[M]) Cancel() {
	a.stop(ErrCancelled, "cancelled", "assembly cancelled")
}

func (a *Assembler[M]) expire() {
	a.stop(errors.Wrap(ErrCancelled, "timeout exceeded"), "timeout", "assembly timed out")
}

func (a *Assembler[M]) stop(err error, outcome, msg string) {
	a.mu.Lock()
	if a.phase.Resolved() {
		a.mu.Unlock()
		return
	}
	buffered := len(a.buf)
	var zero M
	resolve := a.finish(Cancelled, outcome, zero, err)
	a.mu.Unlock()

	a.logger.Info(msg, "buffered", buffered)
	resolve()
}

// advance moves through as many phases as the buffer allows.
// It returns the resolution to run once the lock is released, if any.
func (a *Assembler[M]) advance() func() {
	for {
		switch a.phase {
		case AwaitingHeaders:
			n, ok := a.codec.HeadLength(a.buf)
			if !ok {
				if a.opts.MaxHeadLength > 0 && len(a.buf) > a.opts.MaxHeadLength {
					return a.fail(errors.Wrapf(ErrHeadTooLarge, "%d bytes buffered", len(a.buf)))
				}
				return nil
			}

			head, err := a.codec.ParseHead(a.buf[:n], a.direction)
			if err != nil {
				return a.fail(err)
			}
			a.head = head

			framing, length := head.Framing()
			switch framing {
			case codec.FramingLength:
				if limit := a.codec.Options().Decode.MaxBodySize; limit > 0 && length > limit {
					return a.fail(errors.Wrapf(codec.ErrBodyTooLarge, "Content-Length %d, limit is %d", length, limit))
				}
				if length > int64(math.MaxInt-n) {
					return a.fail(errors.Wrapf(codec.ErrBodyTooLarge, "Content-Length %d cannot be buffered", length))
				}
				a.want = n + int(length)
				a.transition(AwaitingBody)
			case codec.FramingChunked:
				a.transition(AwaitingChunks)
			default:
				a.want = n
				return a.complete()
			}

		case AwaitingBody:
			if len(a.buf) < a.want {
				return nil
			}
			return a.complete()

		case AwaitingChunks:
			n, content, complete, err := transfer.ScanContent(a.buf[a.head.Size:])
			if err != nil {
				return a.fail(err)
			}
			if limit := a.codec.Options().Decode.MaxBodySize; limit > 0 && content > uint64(limit) {
				return a.fail(errors.Wrapf(codec.ErrBodyTooLarge, "chunks announce %d bytes, limit is %d", content, limit))
			}
			if !complete {
				return nil
			}
			a.want = a.head.Size + n
			return a.complete()

		default:
			return nil
		}
	}
}

func (a *Assembler[M]) transition(phase Phase) {
	a.logger.Debug("phase transition", "from", a.phase.String(), "to", phase.String())
	a.phase = phase
}

func (a *Assembler[M]) complete() func() {
	a.remainder = bytes.Clone(a.buf[a.want:])

	msg, err := a.parse(a.buf[:a.want])
	if err != nil {
		return a.fail(err)
	}
	return a.finish(Complete, "complete", msg, nil)
}

func (a *Assembler[M]) fail(err error) func() {
	a.remainder = nil
	a.logger.Debug("assembly failed", "error", err)
	var zero M
	return a.finish(Failed, "failed", zero, err)
}

// finish resolves the assembly. The caller holds the lock.
func (a *Assembler[M]) finish(phase Phase, outcome string, msg M, err error) func() {
	if a.timer != nil {
		a.timer.Stop()
	}

	size := a.want
	if phase != Complete {
		size = len(a.buf)
	}
	a.opts.Metrics.observe(outcome, a.opts.Clock.Since(a.started), size)

	a.transition(phase)
	a.buf = nil
	a.head = nil

	return func() { a.result.resolve(msg, err) }
}
