package assembler

import (
	"context"
	"sync"
)

// Result is the eventual outcome of an assembly.
type Result[M any] struct {
	mu sync.Mutex

	done      chan struct{}
	resolved  bool
	msg       M
	err       error
	callbacks []func(M, error)
}

func newResult[M any]() *Result[M] {
	return &Result[M]{done: make(chan struct{})}
}

// OnComplete registers fn to be called once with the outcome.
// Callbacks run in registration order; fn runs right away if the result is already known.
func (r *Result[M]) OnComplete(fn func(M, error)) {
	r.mu.Lock()
	if !r.resolved {
		r.callbacks = append(r.callbacks, fn)
		r.mu.Unlock()
		return
	}
	msg, err := r.msg, r.err
	r.mu.Unlock()

	fn(msg, err)
}

// Done is closed once the outcome is known.
func (r *Result[M]) Done() <-chan struct{} { return r.done }

// Wait blocks until the outcome is known or ctx is done.
func (r *Result[M]) Wait(ctx context.Context) (M, error) {
	select {
	case <-r.done:
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.msg, r.err
	case <-ctx.Done():
		var zero M
		return zero, ctx.Err()
	}
}

func (r *Result[M]) resolve(msg M, err error) {
	r.mu.Lock()
	if r.resolved {
		r.mu.Unlock()
		return
	}
	r.resolved = true
	r.msg, r.err = msg, err
	callbacks := r.callbacks
	r.callbacks = nil
	close(r.done)
	r.mu.Unlock()

	for _, fn := range callbacks {
		fn(msg, err)
	}
}
