package lockfile

import (
	"maps"
	"slices"
)

// ReqSet is a set of package requirement strings.
type ReqSet map[string]struct{}

// NewReqSet returns a set holding reqs.
func NewReqSet(reqs ...string) ReqSet {
	s := make(ReqSet, len(reqs))
	s.Add(reqs...)
	return s
}

// Add inserts reqs into the set.
func (s ReqSet) Add(reqs ...string) {
	for _, req := range reqs {
		s[req] = struct{}{}
	}
}

// Has reports whether req is in the set.
func (s ReqSet) Has(req string) bool {
	_, ok := s[req]
	return ok
}

// Sorted returns the members in lexical order. It never returns nil.
func (s ReqSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for req := range s {
		out = append(out, req)
	}
	slices.Sort(out)
	return out
}

// Clone returns a copy of the set. Cloning a nil set yields an empty one.
func (s ReqSet) Clone() ReqSet {
	out := make(ReqSet, len(s))
	maps.Copy(out, s)
	return out
}

// Equal reports whether both sets hold the same requirements. A nil set
// equals an empty one.
func (s ReqSet) Equal(other ReqSet) bool {
	return maps.Equal(s, other)
}

// Difference returns the requirements in s that are not in other.
func (s ReqSet) Difference(other ReqSet) ReqSet {
	out := make(ReqSet)
	for req := range s {
		if !other.Has(req) {
			out[req] = struct{}{}
		}
	}
	return out
}
