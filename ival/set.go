package ival

import (
	"cmp"
	"sort"
)

// Set is a sorted collection of disjoint, non-touching intervals. Inserting
// an interval that overlaps or touches existing entries widens and collapses
// them into a single run, exactly as a set union would.
type Set[T cmp.Ordered] struct {
	intervals []Interval[T]
}

// NewSet builds an empty interval set.
func NewSet[T cmp.Ordered]() *Set[T] {
	return &Set[T]{}
}

// Intervals returns the sorted, disjoint intervals currently held, in
// ascending order. The returned slice is a copy; mutating it does not affect
// the set.
func (s *Set[T]) Intervals() []Interval[T] {
	out := make([]Interval[T], len(s.intervals))
	copy(out, s.intervals)
	return out
}

// Len returns the number of disjoint runs currently stored.
func (s *Set[T]) Len() int { return len(s.intervals) }

// touchingIndexRange finds the contiguous range [lo, hi) of entries that
// touch or overlap iv. Because entries are sorted and mutually
// non-touching, this range is found by binary-searching for the first entry
// whose upper bound is not strictly before iv's lower bound, then scanning
// forward while entries keep touching or overlapping.
func (s *Set[T]) touchingIndexRange(iv Interval[T]) (int, int) {
	n := len(s.intervals)
	lo := sort.Search(n, func(i int) bool {
		existing := s.intervals[i]
		if existing.IsTouching(iv) {
			return true
		}
		return !existing.IsBefore(iv)
	})

	hi := lo
	for hi < n {
		existing := s.intervals[hi]
		if existing.IsDisjoint(iv) && !existing.IsTouching(iv) {
			break
		}
		if iv.IsBefore(existing) && !iv.IsTouching(existing) {
			break
		}
		hi++
	}
	return lo, hi
}

// Insert adds value to the set, merging with any existing runs it touches
// or overlaps.
func (s *Set[T]) Insert(value Interval[T]) {
	if value.IsEmpty() {
		return
	}

	if len(s.intervals) == 0 {
		s.intervals = append(s.intervals, value)
		return
	}

	lo, hi := s.touchingIndexRange(value)

	switch hi - lo {
	case 0:
		s.intervals = append(s.intervals, Interval[T]{})
		copy(s.intervals[lo+1:], s.intervals[lo:])
		s.intervals[lo] = value
	default:
		merged := value
		for i := lo; i < hi; i++ {
			merged = widen(merged, s.intervals[i])
		}
		tail := append([]Interval[T]{}, s.intervals[hi:]...)
		s.intervals = append(s.intervals[:lo], merged)
		s.intervals = append(s.intervals, tail...)
	}
}

// widen returns the smallest interval spanning both a and b: the lesser of
// their lower bounds through the greater of their upper bounds.
func widen[T cmp.Ordered](a, b Interval[T]) Interval[T] {
	lower := a.Lower
	if b.Lower.Compare(a.Lower) == Less {
		lower = b.Lower
	}
	upper := a.Upper
	if b.Upper.Compare(a.Upper) == Greater {
		upper = b.Upper
	}
	return Interval[T]{Lower: lower, Upper: upper}
}

// Contains reports whether any run in the set contains element.
func (s *Set[T]) Contains(element T) bool {
	n := len(s.intervals)
	idx := sort.Search(n, func(i int) bool {
		v, ok := s.intervals[i].Upper.Value()
		if !ok {
			return true
		}
		return element <= v
	})
	if idx >= n {
		return false
	}
	return s.intervals[idx].Contains(element)
}
