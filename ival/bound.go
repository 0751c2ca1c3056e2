// Package ival implements the interval algebra that the rest of this module
// is built on: total-ordered endpoint bounds, closed-form intervals over
// them, and the two disjoint-interval containers (IntervalSet,
// IntervalMap) used by the automaton and lexer packages.
package ival

import "cmp"

type boundKind int

const (
	kindUnbounded boundKind = iota
	kindIncluded
	kindExcluded
)

// Ordering is a three-way comparison result. Cross-role bound comparisons
// may additionally be Incomparable, which is not a value of this type — see
// Lower.CompareUpper.
type Ordering int

const (
	Less Ordering = iota - 1
	Equal
	Greater
)

// Lower is the lower endpoint of an interval: Unbounded, Excluded(value), or
// Included(value).
type Lower[T cmp.Ordered] struct {
	kind  boundKind
	value T
}

// Upper is the upper endpoint of an interval.
type Upper[T cmp.Ordered] struct {
	kind  boundKind
	value T
}

// UnboundedLower returns the least possible lower bound.
func UnboundedLower[T cmp.Ordered]() Lower[T] { return Lower[T]{kind: kindUnbounded} }

// IncludedLower returns a lower bound that includes v.
func IncludedLower[T cmp.Ordered](v T) Lower[T] { return Lower[T]{kind: kindIncluded, value: v} }

// ExcludedLower returns a lower bound that excludes v.
func ExcludedLower[T cmp.Ordered](v T) Lower[T] { return Lower[T]{kind: kindExcluded, value: v} }

// UnboundedUpper returns the greatest possible upper bound.
func UnboundedUpper[T cmp.Ordered]() Upper[T] { return Upper[T]{kind: kindUnbounded} }

// IncludedUpper returns an upper bound that includes v.
func IncludedUpper[T cmp.Ordered](v T) Upper[T] { return Upper[T]{kind: kindIncluded, value: v} }

// ExcludedUpper returns an upper bound that excludes v.
func ExcludedUpper[T cmp.Ordered](v T) Upper[T] { return Upper[T]{kind: kindExcluded, value: v} }

func (b Lower[T]) IsUnbounded() bool { return b.kind == kindUnbounded }
func (b Upper[T]) IsUnbounded() bool { return b.kind == kindUnbounded }

// Value returns the finite endpoint value and whether the bound is finite.
func (b Lower[T]) Value() (T, bool) { return b.value, b.kind != kindUnbounded }
func (b Upper[T]) Value() (T, bool) { return b.value, b.kind != kindUnbounded }

func orderValues[T cmp.Ordered](a, b T) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

// Compare gives the total order on lower bounds: Unbounded is least; among
// finite values, Included(x) sorts before Excluded(x) at equal x.
func (b Lower[T]) Compare(other Lower[T]) Ordering {
	switch {
	case b.kind == kindUnbounded && other.kind == kindUnbounded:
		return Equal
	case b.kind == kindUnbounded:
		return Less
	case other.kind == kindUnbounded:
		return Greater
	}

	switch o := orderValues(b.value, other.value); {
	case o != Equal:
		return o
	case b.kind == other.kind:
		return Equal
	case b.kind == kindIncluded: // other is Excluded at same value
		return Less
	default: // b is Excluded, other is Included
		return Greater
	}
}

// Compare gives the total order on upper bounds: Unbounded is greatest;
// among finite values, Included(x) sorts after Excluded(x) at equal x.
func (b Upper[T]) Compare(other Upper[T]) Ordering {
	switch {
	case b.kind == kindUnbounded && other.kind == kindUnbounded:
		return Equal
	case b.kind == kindUnbounded:
		return Greater
	case other.kind == kindUnbounded:
		return Less
	}

	switch o := orderValues(b.value, other.value); {
	case o != Equal:
		return o
	case b.kind == other.kind:
		return Equal
	case b.kind == kindIncluded: // other is Excluded at same value
		return Greater
	default:
		return Less
	}
}

// CompareUpper orders a lower bound against an upper bound. The second
// return is false only for the Included/Included case at an equal value,
// which is incomparable: the interval is nonempty at exactly that point.
func (b Lower[T]) CompareUpper(u Upper[T]) (Ordering, bool) {
	if b.kind == kindUnbounded || u.kind == kindUnbounded {
		return Less, true
	}

	o := orderValues(b.value, u.value)
	if b.kind == kindIncluded && u.kind == kindIncluded {
		if o == Equal {
			return Equal, false
		}
		return o, true
	}
	// Excluded/Excluded, Excluded/Included, Included/Excluded: touching or
	// crossing at equal value always yields Greater (empty).
	if o == Equal {
		return Greater, true
	}
	return o, true
}

// CompareLower orders an upper bound against a lower bound; the mirror of
// Lower.CompareUpper.
func (u Upper[T]) CompareLower(l Lower[T]) (Ordering, bool) {
	o, ok := l.CompareUpper(u)
	if !ok {
		return Equal, false
	}
	switch o {
	case Less:
		return Greater, true
	case Greater:
		return Less, true
	default:
		return Equal, true
	}
}

// IsTouching reports whether lower and upper share the same finite value
// with exactly one of them excluded.
func (b Lower[T]) IsTouching(u Upper[T]) bool {
	if b.kind == kindUnbounded || u.kind == kindUnbounded {
		return false
	}
	if b.kind == u.kind {
		return false
	}
	return b.value == u.value
}

// IsTouching is the upper-bound mirror of Lower.IsTouching.
func (u Upper[T]) IsTouching(l Lower[T]) bool { return l.IsTouching(u) }

// Touching returns the complementary upper bound at the same value with
// flipped openness: Included flips to Excluded and vice versa. Unbounded has
// no touching complement.
func (b Lower[T]) Touching() (Upper[T], bool) {
	switch b.kind {
	case kindIncluded:
		return Upper[T]{kind: kindExcluded, value: b.value}, true
	case kindExcluded:
		return Upper[T]{kind: kindIncluded, value: b.value}, true
	default:
		return Upper[T]{}, false
	}
}

// Touching is the upper-bound mirror of Lower.Touching.
func (u Upper[T]) Touching() (Lower[T], bool) {
	switch u.kind {
	case kindIncluded:
		return Lower[T]{kind: kindExcluded, value: u.value}, true
	case kindExcluded:
		return Lower[T]{kind: kindIncluded, value: u.value}, true
	default:
		return Lower[T]{}, false
	}
}

func (b Lower[T]) String() string {
	switch b.kind {
	case kindUnbounded:
		return "(-inf"
	case kindIncluded:
		return "["
	default:
		return "("
	}
}

func (u Upper[T]) String() string {
	switch u.kind {
	case kindUnbounded:
		return "+inf)"
	case kindIncluded:
		return "]"
	default:
		return ")"
	}
}
