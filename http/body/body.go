// Package body holds message bodies and their decoded representations.
package body

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"http-message/http"
	"http-message/http/media"
	"http-message/http/transfer"

	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
)

const DefaultThreshold = 2048

type Options struct {
	// Bodies of Threshold bytes or more are staged in a temporary file.
	Threshold int64
	// Directory of staged bodies. Empty means the system default.
	TempDir string
	// Block size of chunked encoding.
	BlockSize int
	// Pipeline used by Write. Nil means built-in codings only.
	Pipeline *transfer.Pipeline
	// Scratch buffers of Write. Nil allocates a buffer per write.
	Workspaces *transfer.Workspaces
}

var DefaultOptions = Options{
	Threshold: DefaultThreshold,
	BlockSize: transfer.DefaultBlockSize,
}

func (opts Options) withDefaults() Options {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.BlockSize < 1 {
		opts.BlockSize = transfer.DefaultBlockSize
	}
	if opts.Pipeline == nil {
		opts.Pipeline = transfer.NewPipeline(opts.BlockSize)
	}
	return opts
}

// Body is the raw content of a message plus a cache of its decoded representations,
// one per media type.
type Body struct {
	mu sync.RWMutex

	version  http.Version
	opts     Options
	storage  storage
	trailers []http.Field

	// generation is bumped whenever the raw bytes are replaced.
	generation uint64
	cache      map[string]cached
}

type cached interface {
	anyValue() any
}

func newBody(v http.Version, s storage, opts Options) *Body {
	return &Body{
		version: v,
		opts:    opts,
		storage: s,
		cache:   map[string]cached{},
	}
}

// New wraps data, staging it to disk when it reaches the threshold.
func New(v http.Version, data []byte, opts Options) (*Body, error) {
	return FromReader(v, bytes.NewReader(data), opts)
}

// FromReader reads r to the end. The read is not bounded in time.
// trailers are the fields that followed a chunked encoding of r, if any.
func FromReader(v http.Version, r io.Reader, opts Options, trailers ...http.Field) (*Body, error) {
	opts = opts.withDefaults()

	s, err := stage(r, opts.Threshold, opts.TempDir)
	if err != nil {
		return nil, err
	}

	b := newBody(v, s, opts)
	b.trailers = trailers
	return b, nil
}

// FromChunks keeps chunks as they are so that they can be written back with
// their extensions. A terminal chunk is only allowed last.
func FromChunks(v http.Version, chunks []transfer.Chunk, opts Options, trailers ...http.Field) (*Body, error) {
	s, err := newChunkStorage(chunks)
	if err != nil {
		return nil, err
	}

	b := newBody(v, s, opts.withDefaults())
	b.trailers = trailers
	return b, nil
}

// Empty returns a body without content.
func Empty(v http.Version) *Body {
	return newBody(v, &memoryStorage{b: []byte{}}, DefaultOptions.withDefaults())
}

// Create serializes value with t and wraps the result.
// The value is cached, so reading it back with t does not parse.
func Create[T any](v http.Version, t media.Type[T], value T, opts Options) (*Body, error) {
	r, err := t.Parser.Serialize(v, value, t.MediaType.Params)
	if err != nil {
		return nil, errors.Wrap(err, "serializing content")
	}

	b, err := FromReader(v, r, opts)
	if err != nil {
		return nil, err
	}

	c := &Content[T]{body: b, typ: t, key: t.Key(), value: value}
	b.cache[c.key] = c
	return b, nil
}

func (b *Body) Version() http.Version { return b.version }

func (b *Body) Kind() Kind {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.storage.kind()
}

// Len returns the size of the raw bytes, before any coding.
func (b *Body) Len() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.storage.size()
}

// Trailers returns the trailer fields received with a chunked body.
func (b *Body) Trailers() []http.Field {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.trailers
}

// Chunks returns the chunk list of a body kept as chunks.
func (b *Body) Chunks() ([]transfer.Chunk, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s, ok := b.storage.(*chunkStorage)
	if !ok {
		return nil, false
	}
	return s.chunks, true
}

// Open returns a stream over the raw bytes.
func (b *Body) Open() (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.storage.open()
}

func (b *Body) Bytes() ([]byte, error) {
	r, err := b.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading body")
	}
	return data, nil
}

// Fingerprint hashes the raw bytes with xxh3.
func (b *Body) Fingerprint() (uint64, error) {
	r, err := b.Open()
	if err != nil {
		return 0, err
	}
	defer r.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, r); err != nil {
		return 0, errors.Wrap(err, "hashing body")
	}
	return h.Sum64(), nil
}

// ETag returns a strong entity tag derived from [Body.Fingerprint].
func (b *Body) ETag() (string, error) {
	sum, err := b.Fingerprint()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`"%016x"`, sum), nil
}

// Close removes staged files. The body must not be used afterwards.
func (b *Body) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	clear(b.cache)
	return b.storage.release()
}

// replace swaps the raw bytes, keeping only the cache entry under keep.
// It must be called with b.mu held.
func (b *Body) replace(s storage, keep string) error {
	old := b.storage
	b.storage = s
	b.generation++

	for key := range b.cache {
		if key != keep {
			delete(b.cache, key)
		}
	}

	// Trailers belonged to the previous chunks.
	b.trailers = nil

	return old.release()
}

// Decode decodes the body with the parser reg holds for mt.
// The result shares the cache with [GetContent].
func (b *Body) Decode(mt http.MediaType, reg *media.Registry) (any, error) {
	key := mt.Key()

	b.mu.RLock()
	entry, ok := b.cache[key]
	b.mu.RUnlock()
	if ok {
		return entry.anyValue(), nil
	}

	parser, ok := reg.Lookup(mt)
	if !ok {
		return nil, &media.ParseError{MediaType: mt.Essence(), Op: media.OpDeserialize,
			Err: errors.New("no parser registered")}
	}

	for {
		b.mu.RLock()
		generation := b.generation
		b.mu.RUnlock()

		r, err := b.Open()
		if err != nil {
			return nil, err
		}
		value, err := parser.Decode(b.version, r, mt.Params)
		r.Close()
		if err != nil {
			return nil, err
		}

		b.mu.Lock()
		if b.generation != generation {
			b.mu.Unlock()
			continue
		}
		if existing, ok := b.cache[key]; ok {
			b.mu.Unlock()
			return existing.anyValue(), nil
		}
		b.cache[key] = decoded{value: value}
		b.mu.Unlock()

		return value, nil
	}
}

type decoded struct{ value any }

func (d decoded) anyValue() any { return d.value }
