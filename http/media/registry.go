package media

import (
	"io"
	"slices"
	"strings"
	"sync"

	"http-message/http"
)

// Entry is a registered media type whose parser output is untyped.
type Entry struct {
	MediaType http.MediaType

	decode func(v http.Version, r io.Reader, params []http.Param) (any, error)
}

// Decode runs the registered parser.
func (e Entry) Decode(v http.Version, r io.Reader, params []http.Param) (any, error) {
	return e.decode(v, r, params)
}

// Registry maps media type essences (e.g. "text/plain") to parsers.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]Entry{}}
}

// Default holds the built-in media types, registered at init.
var Default = NewRegistry()

func init() {
	Register(Default, OctetStream)
	Register(Default, TextPlain)
}

// Register adds t to r. It reports false if the essence is already registered.
func Register[T any](r *Registry, t Type[T]) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	essence := t.MediaType.Essence()
	if _, ok := r.entries[essence]; ok {
		return false
	}

	r.entries[essence] = Entry{
		MediaType: t.MediaType,
		decode: func(v http.Version, rd io.Reader, params []http.Param) (any, error) {
			return t.Parser.Deserialize(v, rd, params)
		},
	}
	return true
}

func (r *Registry) Lookup(mt http.MediaType) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[strings.ToLower(mt.Essence())]
	return e, ok
}

func (r *Registry) Remove(essence string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	essence = strings.ToLower(essence)
	_, ok := r.entries[essence]
	delete(r.entries, essence)
	return ok
}

// Essences lists registered essences in sorted order.
func (r *Registry) Essences() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	essences := make([]string, 0, len(r.entries))
	for essence := range r.entries {
		essences = append(essences, essence)
	}
	slices.Sort(essences)
	return essences
}
