package collections

import (
	"slices"
	"strings"
)

// Set is a generic set backed by a map with zero-size values
type Set[T comparable] map[T]struct{}

// NewSet creates a Set holding vs
func NewSet[T comparable](vs ...T) Set[T] {
	s := make(Set[T], len(vs))
	s.Add(vs...)
	return s
}

// Add adds values to the set
func (s Set[T]) Add(vs ...T) {
	for _, v := range vs {
		s[v] = struct{}{}
	}
}

// Has reports whether v is in the set
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// FoldedStrings builds a set of lower-cased strings, for case-insensitive lookups
// with HasFolded
func FoldedStrings(vs ...string) Set[string] {
	s := make(Set[string], len(vs))
	for _, v := range vs {
		s[strings.ToLower(v)] = struct{}{}
	}
	return s
}

// HasFolded reports whether the lower-cased v is in a set built by FoldedStrings
func HasFolded(s Set[string], v string) bool {
	return s.Has(strings.ToLower(v))
}

// Sorted returns the members of a string set in ascending order
func Sorted(s Set[string]) []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
