package ival

import (
	"cmp"
	"sort"
)

// entry is one (interval, value) slot of a Map.
type entry[K cmp.Ordered, V any] struct {
	iv  Interval[K]
	val V
}

// Map is a sorted, pairwise-disjoint (touching allowed) sequence of
// (Interval[K], V) pairs. Unlike Set, overlapping inserts do not simply
// widen the key span — the caller's unify callback decides how values
// combine over the overlapping region, and the map splits entries as needed
// to keep each surviving slot's value accurate.
type Map[K cmp.Ordered, V any] struct {
	entries []entry[K, V]
}

// NewMap builds an empty interval map.
func NewMap[K cmp.Ordered, V any]() *Map[K, V] {
	return &Map[K, V]{}
}

// Unify combines the value already present at an intersecting slot with the
// value being inserted. It must be total: it is never called with a
// situation it cannot resolve, and it may not signal failure.
type Unify[V any] func(existing, inserted V) V

// MapEntry is a read-only view of one (Interval, V) slot.
type MapEntry[K cmp.Ordered, V any] struct {
	Interval Interval[K]
	Value    V
}

// Entries returns the sorted entries currently held, as a copy.
func (m *Map[K, V]) Entries() []MapEntry[K, V] {
	out := make([]MapEntry[K, V], len(m.entries))
	for i, e := range m.entries {
		out[i] = MapEntry[K, V]{Interval: e.iv, Value: e.val}
	}
	return out
}

// Len reports the number of disjoint slots currently stored.
func (m *Map[K, V]) Len() int { return len(m.entries) }

// Get returns the value of the slot containing key, if any.
func (m *Map[K, V]) Get(key K) (V, bool) {
	n := len(m.entries)
	idx := sort.Search(n, func(i int) bool {
		upper := m.entries[i].iv.Upper
		v, ok := upper.Value()
		if !ok {
			return true
		}
		return key < v || (key == v && upper.kind == kindIncluded)
	})
	if idx >= n {
		var zero V
		return zero, false
	}
	if m.entries[idx].iv.Contains(key) {
		return m.entries[idx].val, true
	}
	var zero V
	return zero, false
}

// intersectingIndexRange finds the contiguous range [lo, hi) of entries that
// genuinely intersect (share at least one value with, not merely touch) iv.
func (m *Map[K, V]) intersectingIndexRange(iv Interval[K]) (int, int) {
	n := len(m.entries)
	lo := sort.Search(n, func(i int) bool {
		existing := m.entries[i].iv
		return !existing.IsBefore(iv)
	})
	hi := lo
	for hi < n {
		existing := m.entries[hi].iv
		if iv.IsBefore(existing) {
			break
		}
		hi++
	}
	return lo, hi
}

// InsertAndUnify inserts (key, value) into the map. Where key does not
// intersect any existing slot, it is inserted as a new disjoint (touching
// allowed) slot. Where it intersects one or more existing slots, the
// overlapping sub-ranges are unified via the unify callback and the
// non-overlapping remainders of existing slots are preserved unchanged,
// splitting entries as needed. The portion of key not covered by any
// existing slot becomes a new slot carrying value alone (no unify, since
// there is nothing to unify with).
func (m *Map[K, V]) InsertAndUnify(key Interval[K], value V, unify Unify[V]) {
	if key.IsEmpty() {
		return
	}

	if len(m.entries) == 0 {
		m.entries = append(m.entries, entry[K, V]{iv: key, val: value})
		return
	}

	lo, hi := m.intersectingIndexRange(key)

	if lo == hi {
		m.insertAt(lo, entry[K, V]{iv: key, val: value})
		return
	}

	repl := m.splitRange(lo, hi, key, value, unify)
	m.replaceRange(lo, hi, repl)
}

func (m *Map[K, V]) insertAt(idx int, e entry[K, V]) {
	m.entries = append(m.entries, entry[K, V]{})
	copy(m.entries[idx+1:], m.entries[idx:])
	m.entries[idx] = e
}

// replaceRange replaces m.entries[lo:hi] with repl.
func (m *Map[K, V]) replaceRange(lo, hi int, repl []entry[K, V]) {
	tail := append([]entry[K, V]{}, m.entries[hi:]...)
	m.entries = append(m.entries[:lo], repl...)
	m.entries = append(m.entries, tail...)
}

// touchingUpperAt returns the upper bound touching lower, i.e. the tightest
// upper bound of a piece ending exactly where lower begins.
func touchingUpperAt[K cmp.Ordered](lower Lower[K]) Upper[K] {
	u, ok := lower.Touching()
	if !ok {
		return UnboundedUpper[K]()
	}
	return u
}

// touchingLowerAt returns the lower bound touching upper.
func touchingLowerAt[K cmp.Ordered](upper Upper[K]) Lower[K] {
	l, ok := upper.Touching()
	if !ok {
		return UnboundedLower[K]()
	}
	return l
}

// splitRange handles one or more intersecting existing entries m.entries[lo:hi]
// against the inserted (key, value) pair, sweeping left to right: peeling
// off the left disjoint remainder of the leftmost entry, unifying each
// overlapping piece in turn, and propagating the right disjoint remainder of
// the rightmost entry (which may itself extend beyond every existing
// entry, in which case it is attributed to key alone).
func (m *Map[K, V]) splitRange(lo, hi int, key Interval[K], value V, unify Unify[V]) []entry[K, V] {
	var out []entry[K, V]
	cursor := key.Lower

	for i := lo; i < hi; i++ {
		existing := m.entries[i]

		// Left disjoint remainder of this existing slot, not covered by key.
		if existing.iv.Lower.Compare(cursor) == Less {
			out = append(out, entry[K, V]{
				iv:  Interval[K]{Lower: existing.iv.Lower, Upper: touchingUpperAt(cursor)},
				val: existing.val,
			})
		} else if cursor.Compare(existing.iv.Lower) == Less {
			// key extends left of this (and, since entries are sorted and
			// disjoint, of every remaining) existing slot: that prefix of
			// key is new territory.
			out = append(out, entry[K, V]{
				iv:  Interval[K]{Lower: cursor, Upper: touchingUpperAt(existing.iv.Lower)},
				val: value,
			})
		}

		// Overlapping piece.
		overlapUpper := existing.iv.Upper
		if key.Upper.Compare(overlapUpper) == Less {
			overlapUpper = key.Upper
		}
		overlapLower := existing.iv.Lower
		if cursor.Compare(overlapLower) == Greater {
			overlapLower = cursor
		}
		out = append(out, entry[K, V]{
			iv:  Interval[K]{Lower: overlapLower, Upper: overlapUpper},
			val: unify(existing.val, value),
		})

		cursor = touchingLowerAt(overlapUpper)

		// Right disjoint remainder of this existing slot, if key ends
		// before the slot does — only possible on the last iteration since
		// entries are disjoint and sorted.
		if existing.iv.Upper.Compare(key.Upper) == Greater {
			out = append(out, entry[K, V]{
				iv:  Interval[K]{Lower: cursor, Upper: existing.iv.Upper},
				val: existing.val,
			})
			cursor = touchingLowerAt(existing.iv.Upper)
		}
	}

	// Any remaining suffix of key beyond the last existing entry.
	remainder := Interval[K]{Lower: cursor, Upper: key.Upper}
	if !remainder.IsEmpty() {
		out = append(out, entry[K, V]{iv: remainder, val: value})
	}

	return coalesceEmpty(out)
}

func coalesceEmpty[K cmp.Ordered, V any](entries []entry[K, V]) []entry[K, V] {
	out := entries[:0]
	for _, e := range entries {
		if e.iv.IsEmpty() {
			continue
		}
		out = append(out, e)
	}
	return out
}
