package http

import (
	"iter"
	"strings"

	"github.com/pkg/errors"
)

// Reader is the read side of a header collection.
// Name matching is case-insensitive everywhere.
type Reader interface {
	Get(name string) []Header
	First(name string) (Header, bool)
	Last(name string) (Header, bool)
	Count(name string) int
	Contains(name string) bool
	Len() int
	All() iter.Seq[Header]
}

// HeaderSet is an ordered multimap of headers.
// Duplicated names are kept, and insertion order is preserved.
// The zero value is an empty set ready to use.
type HeaderSet struct{ headers []Header }

var _ Reader = (*HeaderSet)(nil)

func NewHeaderSet(headers ...Header) *HeaderSet {
	hs := &HeaderSet{headers: make([]Header, 0, len(headers))}
	hs.headers = append(hs.headers, headers...)
	return hs
}

// Put replaces every header named like h with h.
// h takes the position of the first replaced header, or goes last if there was none.
func (hs *HeaderSet) Put(h Header) {
	at := -1
	kept := hs.headers[:0]
	for _, existing := range hs.headers {
		if strings.EqualFold(existing.Name(), h.Name()) {
			if at < 0 {
				at = len(kept)
				kept = append(kept, h)
			}
			continue
		}
		kept = append(kept, existing)
	}
	clear(hs.headers[len(kept):])
	hs.headers = kept

	if at < 0 {
		hs.headers = append(hs.headers, h)
	}
}

func (hs *HeaderSet) Add(h Header) {
	hs.headers = append(hs.headers, h)
}

// AddRaw parses value according to the key registered for name and appends it.
func (hs *HeaderSet) AddRaw(name, value string) error {
	h, err := NewHeader(name, value)
	if err != nil {
		return errors.Wrap(err, "creating header")
	}
	hs.Add(h)
	return nil
}

// Remove deletes every header with the name, reporting whether any was removed.
func (hs *HeaderSet) Remove(name string) bool {
	kept := hs.headers[:0]
	for _, h := range hs.headers {
		if !strings.EqualFold(h.Name(), name) {
			kept = append(kept, h)
		}
	}
	removed := len(kept) != len(hs.headers)
	clear(hs.headers[len(kept):])
	hs.headers = kept
	return removed
}

func (hs *HeaderSet) RemoveKey(key Key) bool { return hs.Remove(key.Name()) }

func (hs *HeaderSet) Get(name string) []Header {
	if hs == nil {
		return nil
	}

	found := make([]Header, 0)
	for _, h := range hs.headers {
		if strings.EqualFold(h.Name(), name) {
			found = append(found, h)
		}
	}
	return found
}

func (hs *HeaderSet) First(name string) (Header, bool) {
	if hs == nil {
		return Header{}, false
	}

	for _, h := range hs.headers {
		if strings.EqualFold(h.Name(), name) {
			return h, true
		}
	}
	return Header{}, false
}

func (hs *HeaderSet) Last(name string) (Header, bool) {
	if hs == nil {
		return Header{}, false
	}

	for idx := len(hs.headers) - 1; idx >= 0; idx-- {
		if strings.EqualFold(hs.headers[idx].Name(), name) {
			return hs.headers[idx], true
		}
	}
	return Header{}, false
}

func (hs *HeaderSet) Count(name string) int {
	if hs == nil {
		return 0
	}

	n := 0
	for _, h := range hs.headers {
		if strings.EqualFold(h.Name(), name) {
			n++
		}
	}
	return n
}

func (hs *HeaderSet) Contains(name string) bool {
	_, ok := hs.First(name)
	return ok
}

func (hs *HeaderSet) Len() int {
	if hs == nil {
		return 0
	}
	return len(hs.headers)
}

// All yields every header in insertion order.
func (hs *HeaderSet) All() iter.Seq[Header] {
	return func(yield func(Header) bool) {
		if hs == nil {
			return
		}
		for _, h := range hs.headers {
			if !yield(h) {
				return
			}
		}
	}
}

func (hs *HeaderSet) Clone() *HeaderSet {
	if hs == nil {
		return NewHeaderSet()
	}
	return NewHeaderSet(hs.headers...)
}

// View freezes a copy of the set. Later changes to hs are not visible through it.
func (hs *HeaderSet) View() View { return View{set: hs.Clone()} }

// Fields converts headers into raw field lines, keeping order.
func (hs *HeaderSet) Fields() []Field {
	fields := make([]Field, 0, hs.Len())
	for h := range hs.All() {
		fields = append(fields, h.Field())
	}
	return fields
}

// View is an immutable header collection handed out with messages.
// The zero value is empty.
type View struct{ set *HeaderSet }

var _ Reader = View{}

func (v View) Get(name string) []Header         { return v.set.Get(name) }
func (v View) First(name string) (Header, bool) { return v.set.First(name) }
func (v View) Last(name string) (Header, bool)  { return v.set.Last(name) }
func (v View) Count(name string) int            { return v.set.Count(name) }
func (v View) Contains(name string) bool        { return v.set.Contains(name) }
func (v View) Len() int                         { return v.set.Len() }
func (v View) All() iter.Seq[Header]            { return v.set.All() }
func (v View) Fields() []Field                  { return v.set.Fields() }

// Mutable returns an editable copy of the view.
func (v View) Mutable() *HeaderSet { return v.set.Clone() }

// FirstKey returns the value of the first header of key.
// It panics if the stored value is not a T, which means the header was built with a mismatching key.
func FirstKey[T Value](r Reader, key TypedKey[T]) (T, bool) {
	h, ok := r.First(key.Name())
	if !ok {
		var zero T
		return zero, false
	}
	return castValue[T](h), true
}

// LastKey is [FirstKey] for the last header of key.
func LastKey[T Value](r Reader, key TypedKey[T]) (T, bool) {
	h, ok := r.Last(key.Name())
	if !ok {
		var zero T
		return zero, false
	}
	return castValue[T](h), true
}

// GetKey returns every value of key in order, with the same checked cast as [FirstKey].
func GetKey[T Value](r Reader, key TypedKey[T]) []T {
	headers := r.Get(key.Name())
	values := make([]T, 0, len(headers))
	for _, h := range headers {
		values = append(values, castValue[T](h))
	}
	return values
}
