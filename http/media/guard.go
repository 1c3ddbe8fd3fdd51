package media

import (
	"io"
	"time"

	"http-message/http"

	"github.com/sony/gobreaker/v2"
)

// BreakerSettings configures the circuit breaker of a guarded parser.
type BreakerSettings struct {
	// Requests allowed while half-open.
	MaxRequests uint32
	// Cyclic period of the closed state to clear counts. Zero never clears.
	Interval time.Duration
	// Period of the open state.
	Timeout time.Duration
	// Consecutive failures that open the breaker.
	ConsecutiveFailures uint32
}

var DefaultBreakerSettings = BreakerSettings{
	MaxRequests:         1,
	Interval:            time.Minute,
	Timeout:             30 * time.Second,
	ConsecutiveFailures: 5,
}

// Guard wraps the parser of t in circuit breakers, one per direction.
// Once a breaker opens, calls fail fast with a [*ParseError] wrapping [gobreaker.ErrOpenState].
func Guard[T any](t Type[T], settings BreakerSettings) Type[T] {
	name := t.MediaType.Essence()

	t.Parser = &guardedParser[T]{
		name:         name,
		inner:        t.Parser,
		deserializer: gobreaker.NewCircuitBreaker[T](settings.settingsFor(name + "/" + OpDeserialize)),
		serializer:   gobreaker.NewCircuitBreaker[io.Reader](settings.settingsFor(name + "/" + OpSerialize)),
	}
	return t
}

func (settings BreakerSettings) settingsFor(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
	}
}

// BreakerState returns the state of the breaker guarding op on t,
// either [OpDeserialize] or [OpSerialize].
func BreakerState[T any](t Type[T], op string) (gobreaker.State, bool) {
	gp, ok := t.Parser.(*guardedParser[T])
	if !ok {
		return gobreaker.StateClosed, false
	}

	switch op {
	case OpDeserialize:
		return gp.deserializer.State(), true
	case OpSerialize:
		return gp.serializer.State(), true
	}
	return gobreaker.StateClosed, false
}

type guardedParser[T any] struct {
	name  string
	inner Parser[T]

	deserializer *gobreaker.CircuitBreaker[T]
	serializer   *gobreaker.CircuitBreaker[io.Reader]
}

func (gp *guardedParser[T]) Deserialize(v http.Version, r io.Reader, params []http.Param) (T, error) {
	value, err := gp.deserializer.Execute(func() (T, error) {
		return gp.inner.Deserialize(v, r, params)
	})
	if err != nil {
		var zero T
		return zero, gp.wrap(OpDeserialize, err)
	}
	return value, nil
}

func (gp *guardedParser[T]) Serialize(v http.Version, value T, params []http.Param) (io.Reader, error) {
	rd, err := gp.serializer.Execute(func() (io.Reader, error) {
		return gp.inner.Serialize(v, value, params)
	})
	if err != nil {
		return nil, gp.wrap(OpSerialize, err)
	}
	return rd, nil
}

func (gp *guardedParser[T]) wrap(op string, err error) error {
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return &ParseError{MediaType: gp.name, Op: op, Err: err}
	}
	return err
}
