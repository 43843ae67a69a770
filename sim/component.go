package sim

import (
	"sort"
	"strings"
)

// ComponentID identifies a raw component, e.g. "A" or "2".
type ComponentID string

// ComponentSet is an immutable, sorted set of component identifiers.
// The zero value is the empty set.
type ComponentSet struct {
	ids []ComponentID
}

// NewComponentSet builds a set from ids, ignoring duplicates.
func NewComponentSet(ids ...ComponentID) ComponentSet {
	if len(ids) == 0 {
		return ComponentSet{}
	}
	sorted := make([]ComponentID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := sorted[:1]
	for _, id := range sorted[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return ComponentSet{ids: out}
}

// Len returns the number of ids in the set.
func (s ComponentSet) Len() int { return len(s.ids) }

// IsEmpty reports whether the set has no ids.
func (s ComponentSet) IsEmpty() bool { return len(s.ids) == 0 }

// Has reports whether id is a member of the set.
func (s ComponentSet) Has(id ComponentID) bool {
	i := sort.Search(len(s.ids), func(i int) bool { return s.ids[i] >= id })
	return i < len(s.ids) && s.ids[i] == id
}

// IDs returns a copy of the members in sorted order.
func (s ComponentSet) IDs() []ComponentID {
	out := make([]ComponentID, len(s.ids))
	copy(out, s.ids)
	return out
}

// Strings returns the members as plain strings, sorted.
func (s ComponentSet) Strings() []string {
	out := make([]string, len(s.ids))
	for i, id := range s.ids {
		out[i] = string(id)
	}
	return out
}

// Union returns s ∪ o.
func (s ComponentSet) Union(o ComponentSet) ComponentSet {
	all := make([]ComponentID, 0, len(s.ids)+len(o.ids))
	all = append(all, s.ids...)
	all = append(all, o.ids...)
	return NewComponentSet(all...)
}

// Difference returns s − o.
func (s ComponentSet) Difference(o ComponentSet) ComponentSet {
	var out []ComponentID
	for _, id := range s.ids {
		if !o.Has(id) {
			out = append(out, id)
		}
	}
	return ComponentSet{ids: out}
}

// Intersects reports whether s and o share at least one id.
func (s ComponentSet) Intersects(o ComponentSet) bool {
	for _, id := range s.ids {
		if o.Has(id) {
			return true
		}
	}
	return false
}

// SubsetOf reports whether every id of s is in o.
func (s ComponentSet) SubsetOf(o ComponentSet) bool {
	for _, id := range s.ids {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold the same ids.
func (s ComponentSet) Equal(o ComponentSet) bool {
	if len(s.ids) != len(o.ids) {
		return false
	}
	for i := range s.ids {
		if s.ids[i] != o.ids[i] {
			return false
		}
	}
	return true
}

// String renders the set as "A+B+C".
func (s ComponentSet) String() string {
	return strings.Join(s.Strings(), "+")
}
