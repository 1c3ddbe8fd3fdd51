package body

import (
	"http-message/http"
	"http-message/http/media"

	"github.com/pkg/errors"
)

// Content is a decoded representation of a body under one media type.
type Content[T any] struct {
	body *Body
	typ  media.Type[T]
	key  string

	// Guarded by body.mu.
	value      T
	generation uint64
}

func (c *Content[T]) anyValue() any { return c.value }

// GetContent returns the representation of b as t, parsing the raw bytes
// only when no valid representation is cached.
func GetContent[T any](b *Body, v http.Version, t media.Type[T]) (*Content[T], error) {
	key := t.Key()

	for {
		b.mu.RLock()
		generation := b.generation
		if c, ok := b.cache[key].(*Content[T]); ok {
			b.mu.RUnlock()
			return c, nil
		}
		b.mu.RUnlock()

		r, err := b.Open()
		if err != nil {
			return nil, err
		}
		value, err := t.Parser.Deserialize(v, r, t.MediaType.Params)
		r.Close()
		if err != nil {
			return nil, err
		}

		b.mu.Lock()
		if b.generation != generation {
			// Raw bytes were replaced while parsing.
			b.mu.Unlock()
			continue
		}
		if c, ok := b.cache[key].(*Content[T]); ok {
			b.mu.Unlock()
			return c, nil
		}

		c := &Content[T]{body: b, typ: t, key: key, value: value, generation: generation}
		b.cache[key] = c
		b.mu.Unlock()

		return c, nil
	}
}

func (c *Content[T]) Type() media.Type[T] { return c.typ }

func (c *Content[T]) Value() T {
	c.body.mu.RLock()
	defer c.body.mu.RUnlock()
	return c.value
}

// Valid reports whether the raw bytes still back this representation.
// It turns false once another representation of the body flushed.
func (c *Content[T]) Valid() bool {
	c.body.mu.RLock()
	defer c.body.mu.RUnlock()
	return c.generation == c.body.generation
}

// SetData replaces the value. With autoFlush the raw bytes are regenerated
// right away, see [Content.Flush].
func (c *Content[T]) SetData(value T, autoFlush bool) error {
	c.body.mu.Lock()
	defer c.body.mu.Unlock()

	c.value = value
	if !autoFlush {
		return nil
	}
	return c.flush()
}

// Flush serializes the value into the body's raw bytes.
// Every other cached representation of the body is dropped.
func (c *Content[T]) Flush() error {
	c.body.mu.Lock()
	defer c.body.mu.Unlock()
	return c.flush()
}

func (c *Content[T]) flush() error {
	if c.generation != c.body.generation {
		return errors.New("flushing a stale representation")
	}

	b := c.body
	r, err := c.typ.Parser.Serialize(b.version, c.value, c.typ.MediaType.Params)
	if err != nil {
		return errors.Wrap(err, "serializing content")
	}

	s, err := stage(r, b.opts.Threshold, b.opts.TempDir)
	if err != nil {
		return err
	}

	err = b.replace(s, c.key)
	b.cache[c.key] = c
	c.generation = b.generation

	return err
}
