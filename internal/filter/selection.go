// Package filter implements the airport and airline multi-select filters.
//
// Each dimension holds either the All sentinel or an explicit, non-empty key
// list. Picking All together with explicit keys collapses the selection back
// to All.
package filter

import "sort"

// All is the sentinel option meaning "every key in the domain".
const All = "all"

// Selection is the effective choice for one filter dimension.
type Selection struct {
	all  bool
	keys []string

	// MaxSelections is how many options the widget may show as picked at
	// once: 1 while All is active, the full option count otherwise.
	MaxSelections int
}

// AllSelection returns the All selection for a domain.
func AllSelection() Selection {
	return Selection{all: true, MaxSelections: 1}
}

// IsAll reports whether the selection is the All sentinel.
func (s Selection) IsAll() bool {
	return s.all || len(s.keys) == 0
}

// Keys returns the explicit keys in pick order, or nil for All.
func (s Selection) Keys() []string {
	if s.IsAll() {
		return nil
	}
	return append([]string(nil), s.keys...)
}

// Raw returns the selection as the widget shows it: [All] or the explicit keys.
func (s Selection) Raw() []string {
	if s.IsAll() {
		return []string{All}
	}
	return s.Keys()
}

// Equal reports whether two selections match the same keys. Key order is ignored.
func (s Selection) Equal(o Selection) bool {
	if s.IsAll() || o.IsAll() {
		return s.IsAll() == o.IsAll()
	}
	if len(s.keys) != len(o.keys) {
		return false
	}
	a, b := sortedCopy(s.keys), sortedCopy(o.keys)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Update applies a freshly picked raw selection. A raw list that is empty or
// contains All yields All with the cap lowered to 1. Anything else is taken as
// given (order kept, duplicates and the sentinel dropped) with the cap raised
// to the full option count, domain plus the All entry. Keys outside domain are
// accepted; they match nothing once resolved. The bool reports whether the
// effective selection differs from prev.
func Update(domain []string, prev Selection, raw []string) (Selection, bool) {
	if len(raw) == 0 || contains(raw, All) {
		next := AllSelection()
		return next, !prev.Equal(next)
	}

	seen := make(map[string]struct{}, len(raw))
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	next := Selection{keys: keys, MaxSelections: len(domain) + 1}
	return next, !prev.Equal(next)
}

func (s Selection) withDomain(domain []string) Selection {
	if s.IsAll() {
		return AllSelection()
	}
	next, _ := Update(domain, s, s.Raw())
	return next
}

// Resolve returns the keys a selection matches: the whole domain for All,
// else the explicit keys.
func Resolve(sel Selection, domain []string) KeySet {
	if sel.IsAll() {
		return NewKeySet(domain...)
	}
	return NewKeySet(sel.keys...)
}

// KeySet is an unordered set of filter keys.
type KeySet map[string]struct{}

// NewKeySet builds a set from keys.
func NewKeySet(keys ...string) KeySet {
	ks := make(KeySet, len(keys))
	for _, k := range keys {
		ks[k] = struct{}{}
	}
	return ks
}

// Contains reports whether k is in the set.
func (ks KeySet) Contains(k string) bool {
	_, ok := ks[k]
	return ok
}

// Sorted returns the members in ascending order.
func (ks KeySet) Sorted() []string {
	out := make([]string, 0, len(ks))
	for k := range ks {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func contains(keys []string, want string) bool {
	for _, k := range keys {
		if k == want {
			return true
		}
	}
	return false
}

func sortedCopy(keys []string) []string {
	out := append([]string(nil), keys...)
	sort.Strings(out)
	return out
}
