package ui

import (
	"strings"
	"sync"
)

// Matcher selects the elements belonging to a region.
type Matcher func(*Element) bool

// Surface is the set of elements currently mounted.
type Surface struct {
	mu       sync.RWMutex
	elements []*Element
}

// NewSurface creates an empty surface.
func NewSurface() *Surface {
	return &Surface{}
}

// Mount adds elements to the surface.
func (s *Surface) Mount(els ...*Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements = append(s.elements, els...)
}

// Query returns the mounted elements matching m, in mount order.
func (s *Surface) Query(m Matcher) []*Element {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Element
	for _, el := range s.elements {
		if m(el) {
			out = append(out, el)
		}
	}
	return out
}

// Get looks up an element by id.
func (s *Surface) Get(id string) (*Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, el := range s.elements {
		if el.id == id {
			return el, true
		}
	}
	return nil, false
}

func MatchID(id string) Matcher {
	return func(el *Element) bool { return el.id == id }
}

func MatchTag(tag string) Matcher {
	return func(el *Element) bool { return el.tag == tag }
}

func MatchClass(class string) Matcher {
	return func(el *Element) bool { return el.HasClass(class) }
}

func MatchAttr(key, value string) Matcher {
	return func(el *Element) bool {
		v, ok := el.Attr(key)
		return ok && v == value
	}
}

// MatchAny matches when any of the given matchers does.
func MatchAny(ms ...Matcher) Matcher {
	return func(el *Element) bool {
		for _, m := range ms {
			if m(el) {
				return true
			}
		}
		return false
	}
}

// ParseSelector builds a matcher from a small selector syntax:
// "#id", ".class", "[key=value]" or a bare tag. Comma separates
// alternatives.
func ParseSelector(selector string) Matcher {
	parts := strings.Split(selector, ",")
	ms := make([]Matcher, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		switch {
		case p == "":
			continue
		case strings.HasPrefix(p, "#"):
			ms = append(ms, MatchID(p[1:]))
		case strings.HasPrefix(p, "."):
			ms = append(ms, MatchClass(p[1:]))
		case strings.HasPrefix(p, "[") && strings.HasSuffix(p, "]"):
			key, value, _ := strings.Cut(p[1:len(p)-1], "=")
			ms = append(ms, MatchAttr(strings.TrimSpace(key), strings.Trim(strings.TrimSpace(value), `"'`)))
		default:
			ms = append(ms, MatchTag(p))
		}
	}
	return MatchAny(ms...)
}
