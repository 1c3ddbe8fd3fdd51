package assembler

import (
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
)

type Options struct {
	// Timeout cancels an assembly that did not resolve in time. Zero means no timeout.
	Timeout time.Duration
	// MaxHeadLength fails an assembly whose head is still incomplete after
	// that many bytes. Zero means no limit.
	MaxHeadLength int

	Clock   clock.Clock
	Logger  *slog.Logger
	Metrics *Metrics
}

var DefaultOptions = Options{
	Timeout:       0,
	MaxHeadLength: 0,
}

func (opts Options) withDefaults() Options {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return opts
}
