package http

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"http-message/util/rule"

	"github.com/pkg/errors"
)

// CacheDirective is a registered Cache-Control directive.
// Valued directives carry a delta-seconds argument, the others are flags.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9111#section-5.2
type CacheDirective struct {
	name   string
	target Target
	valued bool
}

func (d CacheDirective) Name() string   { return d.name }
func (d CacheDirective) Target() Target { return d.target }
func (d CacheDirective) Valued() bool   { return d.valued }

var (
	MaxAge               = CacheDirective{"max-age", TargetBoth, true}
	MaxStale             = CacheDirective{"max-stale", TargetRequest, true}
	MinFresh             = CacheDirective{"min-fresh", TargetRequest, true}
	SMaxAge              = CacheDirective{"s-maxage", TargetResponse, true}
	StaleWhileRevalidate = CacheDirective{"stale-while-revalidate", TargetResponse, true}
	StaleIfError         = CacheDirective{"stale-if-error", TargetBoth, true}

	NoCache         = CacheDirective{"no-cache", TargetBoth, false}
	NoStore         = CacheDirective{"no-store", TargetBoth, false}
	NoTransform     = CacheDirective{"no-transform", TargetBoth, false}
	OnlyIfCached    = CacheDirective{"only-if-cached", TargetRequest, false}
	MustRevalidate  = CacheDirective{"must-revalidate", TargetResponse, false}
	ProxyRevalidate = CacheDirective{"proxy-revalidate", TargetResponse, false}
	MustUnderstand  = CacheDirective{"must-understand", TargetResponse, false}
	Private         = CacheDirective{"private", TargetResponse, false}
	Public          = CacheDirective{"public", TargetResponse, false}
	Immutable       = CacheDirective{"immutable", TargetResponse, false}
)

// maxDeltaSeconds replaces delta-seconds that do not fit.
const maxDeltaSeconds = 1 << 31

var cacheDirectives = map[string]CacheDirective{}

func init() {
	for _, d := range []CacheDirective{
		MaxAge, MaxStale, MinFresh, SMaxAge, StaleWhileRevalidate, StaleIfError,
		NoCache, NoStore, NoTransform, OnlyIfCached, MustRevalidate, ProxyRevalidate,
		MustUnderstand, Private, Public, Immutable,
	} {
		cacheDirectives[d.name] = d
	}
}

// LookupCacheDirective returns the registered directive named name, case-insensitively.
func LookupCacheDirective(name string) (CacheDirective, bool) {
	d, ok := cacheDirectives[strings.ToLower(name)]
	return d, ok
}

// CacheEntry is one directive of a Cache-Control value.
// Unregistered directives are kept with their name and raw argument.
type CacheEntry struct {
	Directive CacheDirective
	Seconds   uint64

	// Raw is the argument of flags and extensions.
	Raw      string
	HasValue bool
}

func (e CacheEntry) registered() bool {
	_, ok := cacheDirectives[e.Directive.name]
	return ok
}

// CacheControl is a Cache-Control value: an ordered list of directives.
type CacheControl []CacheEntry

// Has reports whether d is present.
func (cc CacheControl) Has(d CacheDirective) bool {
	_, ok := cc.index(d.name)
	return ok
}

// Duration returns the argument of the valued directive d.
func (cc CacheControl) Duration(d CacheDirective) (time.Duration, bool) {
	idx, ok := cc.index(d.name)
	if !ok || !d.valued {
		return 0, false
	}
	return time.Duration(min(cc[idx].Seconds, maxDeltaSeconds)) * time.Second, true
}

// With returns a copy of cc where d is set, replacing a previous occurrence.
// seconds is ignored for flags.
func (cc CacheControl) With(d CacheDirective, seconds uint64) CacheControl {
	entry := CacheEntry{Directive: d}
	if d.valued {
		entry.Seconds = seconds
	}

	out := make(CacheControl, len(cc), len(cc)+1)
	copy(out, cc)
	if idx, ok := out.index(d.name); ok {
		out[idx] = entry
		return out
	}
	return append(out, entry)
}

// For keeps the directives that apply to direction. Extensions are kept.
func (cc CacheControl) For(direction Target) CacheControl {
	out := make(CacheControl, 0, len(cc))
	for _, e := range cc {
		if e.registered() && !e.Directive.target.Allows(direction) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (cc CacheControl) index(name string) (int, bool) {
	for idx, e := range cc {
		if strings.EqualFold(e.Directive.name, name) {
			return idx, true
		}
	}
	return -1, false
}

func (cc CacheControl) String() string {
	buf := bytes.NewBuffer(nil)
	for idx, e := range cc {
		if idx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(e.Directive.name)

		switch {
		case e.registered() && e.Directive.valued:
			buf.WriteByte('=')
			buf.WriteString(strconv.FormatUint(e.Seconds, 10))
		case e.HasValue:
			buf.WriteByte('=')
			buf.WriteString(rule.Quote(e.Raw))
		}
	}
	return buf.String()
}

// ParseCacheControl parses a Cache-Control value.
// Registered directives are checked against their kind, others are kept as extensions.
func ParseCacheControl(raw string) (CacheControl, error) {
	cc := make(CacheControl, 0)
	for _, part := range rule.SplitUnquoted([]byte(raw), ',') {
		part = bytes.TrimFunc(part, rule.IsOWS)
		if len(part) == 0 {
			continue
		}

		k, v, hasValue := bytes.Cut(part, []byte{'='})
		name := strings.ToLower(string(bytes.TrimFunc(k, rule.IsOWS)))
		if !rule.IsValidToken(name) {
			return nil, errors.Errorf("cache directive is not a token: %q", part)
		}
		value := string(rule.Unquote(bytes.TrimFunc(v, rule.IsOWS)))

		d, ok := cacheDirectives[name]
		if !ok {
			cc = append(cc, CacheEntry{Directive: CacheDirective{name: name, target: TargetBoth}, Raw: value, HasValue: hasValue})
			continue
		}

		if !d.valued {
			// Qualified forms such as no-cache="Set-Cookie" keep their argument.
			cc = append(cc, CacheEntry{Directive: d, Raw: value, HasValue: hasValue})
			continue
		}

		if !hasValue || value == "" {
			return nil, errors.Errorf("cache directive %s requires delta-seconds", name)
		}
		for _, c := range value {
			if !rule.IsDigit(c) {
				return nil, errors.Errorf("cache directive %s has invalid delta-seconds: %q", name, value)
			}
		}
		seconds, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			// Reference: https://datatracker.ietf.org/doc/html/rfc9111#section-1.2.2
			seconds = maxDeltaSeconds
		}
		cc = append(cc, CacheEntry{Directive: d, Seconds: seconds})
	}

	return cc, nil
}
