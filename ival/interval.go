package ival

import (
	"cmp"
	"fmt"
)

// Interval is a (possibly unbounded on either side) span over an ordered
// type, expressed as a Lower/Upper bound pair.
type Interval[T cmp.Ordered] struct {
	Lower Lower[T]
	Upper Upper[T]
}

// New builds the interval with the given lower and upper bounds.
func New[T cmp.Ordered](lower Lower[T], upper Upper[T]) Interval[T] {
	return Interval[T]{Lower: lower, Upper: upper}
}

// Closed builds the interval [from, to].
func Closed[T cmp.Ordered](from, to T) Interval[T] {
	return Interval[T]{Lower: IncludedLower(from), Upper: IncludedUpper(to)}
}

// HalfOpen builds the interval [from, to).
func HalfOpen[T cmp.Ordered](from, to T) Interval[T] {
	return Interval[T]{Lower: IncludedLower(from), Upper: ExcludedUpper(to)}
}

// Open builds the interval (from, to).
func Open[T cmp.Ordered](from, to T) Interval[T] {
	return Interval[T]{Lower: ExcludedLower(from), Upper: ExcludedUpper(to)}
}

// Unbounded builds the interval spanning every value of T.
func Unbounded[T cmp.Ordered]() Interval[T] {
	return Interval[T]{Lower: UnboundedLower[T](), Upper: UnboundedUpper[T]()}
}

// IsEmpty reports whether the interval contains no values. Per the general
// cross-role bound rule, an interval is empty exactly when its lower bound
// is not strictly less than its upper bound (Included/Included at an equal
// value is the sole exception: that interval contains exactly one value).
func (iv Interval[T]) IsEmpty() bool {
	o, ok := iv.Lower.CompareUpper(iv.Upper)
	if !ok {
		// Included(x)/Included(x): single-point interval, not empty.
		return false
	}
	return o != Less
}

// Contains reports whether element falls within the interval.
func (iv Interval[T]) Contains(element T) bool {
	lowOK := iv.Lower.IsUnbounded()
	if !lowOK {
		v, _ := iv.Lower.Value()
		switch {
		case element < v:
			lowOK = false
		case element > v:
			lowOK = true
		default:
			lowOK = iv.lowerIncludesEqual()
		}
	}
	if !lowOK {
		return false
	}

	upOK := iv.Upper.IsUnbounded()
	if !upOK {
		v, _ := iv.Upper.Value()
		switch {
		case element < v:
			upOK = true
		case element > v:
			upOK = false
		default:
			upOK = iv.upperIncludesEqual()
		}
	}
	return upOK
}

func (iv Interval[T]) lowerIncludesEqual() bool { return iv.Lower.kind == kindIncluded }
func (iv Interval[T]) upperIncludesEqual() bool { return iv.Upper.kind == kindIncluded }

// IsBefore reports whether iv ends before other begins, sharing no value
// with it. Touching intervals such as [1,3) and [3,5) count as before.
func (iv Interval[T]) IsBefore(other Interval[T]) bool {
	o, ok := iv.Upper.CompareLower(other.Lower)
	if !ok {
		return false
	}
	return o == Less
}

// IsDisjoint reports whether iv and other share no values. Touching
// intervals count as disjoint; see IsTouching to tell them apart.
func (iv Interval[T]) IsDisjoint(other Interval[T]) bool {
	return iv.IsBefore(other) || other.IsBefore(iv)
}

// IsTouching reports whether iv and other are disjoint but share an
// endpoint, e.g. [1,3) and [3,5).
func (iv Interval[T]) IsTouching(other Interval[T]) bool {
	return iv.Upper.IsTouching(other.Lower) || other.Upper.IsTouching(iv.Lower)
}

// Relation classifies how iv relates to other. See IntervalRelation.
func (iv Interval[T]) Relation(other Interval[T]) IntervalRelation[T] {
	return relate(iv, other)
}

func (iv Interval[T]) String() string {
	return fmt.Sprintf("%s%v, %v%s", iv.Lower, lowerVal(iv.Lower), upperVal(iv.Upper), iv.Upper)
}

func lowerVal[T cmp.Ordered](b Lower[T]) any {
	if v, ok := b.Value(); ok {
		return v
	}
	return "-inf"
}

func upperVal[T cmp.Ordered](b Upper[T]) any {
	if v, ok := b.Value(); ok {
		return v
	}
	return "+inf"
}

// RelationKind names the seven ways two intervals can relate to each other.
type RelationKind int

const (
	Disjoint RelationKind = iota
	Touching
	Starting
	Finishing
	Containing
	Overlapping
	Equivalent
)

// IntervalRelation is the result of comparing two intervals: which of the
// seven RelationKinds holds, plus the sub-intervals that the comparison
// decomposes the pair into (whichever of these are non-empty for the given
// kind).
type IntervalRelation[T cmp.Ordered] struct {
	Kind RelationKind

	// First and Second are populated for Disjoint and Touching: the
	// receiver and the argument of Relation, in that original (not
	// swapped) order.
	First, Second Interval[T]

	// FirstOnly and SecondOnly are the non-overlapping remainders for
	// Overlapping, Containing, Starting, and Finishing; Overlap is the
	// shared middle. Starting sets only Overlap and SecondOnly, and
	// Finishing sets only FirstOnly and Overlap; the field a kind does not
	// set is left as the zero Interval.
	FirstOnly, Overlap, SecondOnly Interval[T]

	// Whole is populated for Equivalent.
	Whole Interval[T]
}

// relate implements Interval.relates from the interval algebra: it always
// normalizes so that a.Lower <= b.Lower before branching, then classifies.
func relate[T cmp.Ordered](x, y Interval[T]) IntervalRelation[T] {
	a, b := x, y
	swapped := false
	if a.Lower.Compare(b.Lower) == Greater {
		a, b = b, a
		swapped = true
	}

	order := func(first, second Interval[T]) (Interval[T], Interval[T]) {
		if swapped {
			return second, first
		}
		return first, second
	}

	if a.Upper.IsTouching(b.Lower) {
		f, s := order(a, b)
		return IntervalRelation[T]{Kind: Touching, First: f, Second: s}
	}

	if cmpO, ok := a.Upper.CompareLower(b.Lower); ok && cmpO == Less {
		f, s := order(a, b)
		return IntervalRelation[T]{Kind: Disjoint, First: f, Second: s}
	}

	if a.Lower.Compare(b.Lower) == Equal && a.Upper.Compare(b.Upper) == Equal {
		return IntervalRelation[T]{Kind: Equivalent, Whole: a}
	}

	if a.Lower.Compare(b.Lower) == Equal {
		// Starting: shared prefix lower bound, one contained in the other
		// from the same start. The shorter of the two ends first.
		inner, outer := a, b
		if b.Upper.Compare(a.Upper) == Less {
			inner, outer = b, a
		}
		remUpper, hasRem := inner.Upper.Touching()
		overlap := Interval[T]{Lower: outer.Lower, Upper: inner.Upper}
		var rem Interval[T]
		if hasRem {
			rem = Interval[T]{Lower: remUpper, Upper: outer.Upper}
		}
		return IntervalRelation[T]{Kind: Starting, Overlap: overlap, SecondOnly: rem}
	}

	if a.Upper.Compare(b.Upper) == Equal {
		remLower, hasRem := b.Lower.Touching()
		overlap := Interval[T]{Lower: b.Lower, Upper: a.Upper}
		var rem Interval[T]
		if hasRem {
			rem = Interval[T]{Lower: a.Lower, Upper: remLower}
		}
		return IntervalRelation[T]{Kind: Finishing, FirstOnly: rem, Overlap: overlap}
	}

	if a.Upper.Compare(b.Upper) == Greater {
		firstRemLower, _ := b.Upper.Touching()
		lastRemUpper, _ := b.Lower.Touching()
		first := Interval[T]{Lower: a.Lower, Upper: lastRemUpper}
		overlap := Interval[T]{Lower: b.Lower, Upper: b.Upper}
		last := Interval[T]{Lower: firstRemLower, Upper: a.Upper}
		return IntervalRelation[T]{Kind: Containing, FirstOnly: first, Overlap: overlap, SecondOnly: last}
	}

	// Overlapping: a starts first and ends before b ends, with genuine
	// overlap in the middle.
	firstRemUpper, _ := b.Lower.Touching()
	secondRemLower, _ := a.Upper.Touching()
	firstOnly := Interval[T]{Lower: a.Lower, Upper: firstRemUpper}
	overlap := Interval[T]{Lower: b.Lower, Upper: a.Upper}
	secondOnly := Interval[T]{Lower: secondRemLower, Upper: b.Upper}
	return IntervalRelation[T]{Kind: Overlapping, FirstOnly: firstOnly, Overlap: overlap, SecondOnly: secondOnly}
}
