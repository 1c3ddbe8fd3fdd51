package codec

import (
	"http-message/http/body"
	"http-message/http/transfer"
)

type DecodeOptions struct {
	// AllowSoleLF specifies wheter a single LF character should be recognized as a valid line terminator.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-3
	AllowSoleLF bool

	// LenientWhitespace replaces all whitespaces of a line into SP,
	// and trims preceding and trailing whitespace.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3-3
	LenientWhitespace bool

	// MaxFieldLineLength sets the limit of a field line, terminator excluded.
	// Zero means no limit.
	MaxFieldLineLength uint

	// MaxStartLineLength sets the limit of the request or status line.
	// Recommended: >= 8000
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3-5
	MaxStartLineLength uint

	// MaxBodySize bounds the body, both as transferred and once content codings are undone.
	// Zero means no limit.
	MaxBodySize int64

	// RequireHost rejects HTTP/1.1 requests without a Host header.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3.2-6
	RequireHost bool
}

var DefaultDecodeOptions = DecodeOptions{
	AllowSoleLF:        false,
	LenientWhitespace:  false,
	MaxFieldLineLength: 0,
	MaxStartLineLength: 0,
	MaxBodySize:        0,
	RequireHost:        true,
}

type EncodeOptions struct {
	// UseSoleLF specifies wheter a single LF character should be used as a line terminator.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-3
	UseSoleLF bool
}

var DefaultEncodeOptions = EncodeOptions{
	UseSoleLF: false,
}

type Options struct {
	Decode DecodeOptions
	Encode EncodeOptions
	// Body configures the bodies built by parsing.
	Body body.Options
}

var DefaultOptions = Options{
	Decode: DefaultDecodeOptions,
	Encode: DefaultEncodeOptions,
	Body:   body.DefaultOptions,
}

func (opts Options) withDefaults() Options {
	if opts.Body.BlockSize < 1 {
		opts.Body.BlockSize = transfer.DefaultBlockSize
	}
	if opts.Body.Pipeline == nil {
		opts.Body.Pipeline = transfer.NewPipeline(opts.Body.BlockSize)
	}
	return opts
}
