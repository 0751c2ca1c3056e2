// Package parse implements a packrat parsing engine with support for direct
// and indirect left recursion (the Warth/Douglass seed-growing algorithm),
// built on a ParseResult algebra that tracks furthest look-ahead so that
// failed branches still contribute to the best available diagnostic.
package parse

import (
	"fmt"
	"sort"

	"github.com/dekarrin/fathom/internal/util"
)

// ErrElement is one rule's contribution to a parse error: the set of things
// it expected to see instead of what was actually found.
type ErrElement struct {
	Rule     string
	Expected map[string]bool
}

func mergeErrElement(a, b ErrElement) ErrElement {
	out := ErrElement{Rule: a.Rule, Expected: make(map[string]bool, len(a.Expected)+len(b.Expected))}
	for k := range a.Expected {
		out.Expected[k] = true
	}
	for k := range b.Expected {
		out.Expected[k] = true
	}
	return out
}

// Err is a structured parse failure: how far into the input the parse got
// before failing, what was actually found there, and per-rule expected-sets
// contributed by every alternative that was tried.
type Err struct {
	FurthestLook int
	FoundElement string
	Elements     map[string]ErrElement
}

// NewErr builds a single-rule parse error.
func NewErr(furthestLook int, found, rule string, expected ...string) Err {
	e := ErrElement{Rule: rule, Expected: make(map[string]bool, len(expected))}
	for _, x := range expected {
		e.Expected[x] = true
	}
	return Err{
		FurthestLook: furthestLook,
		FoundElement: found,
		Elements:     map[string]ErrElement{rule: e},
	}
}

// Error renders a human-readable message: "unexpected X, expected A, B,
// and C", or just "unexpected X" when no rule recorded an expectation.
func (e Err) Error() string {
	var rules []string
	for r := range e.Elements {
		rules = append(rules, r)
	}
	sort.Strings(rules)

	var expected []string
	seen := make(map[string]bool)
	for _, r := range rules {
		for x := range e.Elements[r].Expected {
			if !seen[x] {
				seen[x] = true
				expected = append(expected, x)
			}
		}
	}
	sort.Strings(expected)

	if len(expected) == 0 {
		return fmt.Sprintf("unexpected %s", e.FoundElement)
	}
	return fmt.Sprintf("unexpected %s, expected %s", e.FoundElement, util.MakeTextList(expected))
}

// unifyErrors merges two parse errors: the one that got further into the
// input wins outright; on a tie, both must agree on what was actually found,
// and their per-rule expected-sets are unioned.
func unifyErrors(a, b Err) Err {
	if a.FurthestLook > b.FurthestLook {
		return a
	}
	if b.FurthestLook > a.FurthestLook {
		return b
	}

	merged := Err{FurthestLook: a.FurthestLook, FoundElement: a.FoundElement, Elements: make(map[string]ErrElement)}
	for rule, e := range a.Elements {
		merged.Elements[rule] = e
	}
	for rule, e := range b.Elements {
		if existing, ok := merged.Elements[rule]; ok {
			merged.Elements[rule] = mergeErrElement(existing, e)
		} else {
			merged.Elements[rule] = e
		}
	}
	return merged
}

// Ok is a successful parse: how far into the input it consumed, the value
// produced, and the furthest error encountered along the way even though it
// didn't end up mattering (carried so that a later failure downstream can
// still report the deepest diagnostic).
type Ok[T any] struct {
	FurthestLook  int
	FurthestError *Err
	Value         T
}

// Result is the outcome of attempting to parse a rule: exactly one of Ok or
// Err is meaningful, selected by IsOk.
type Result[T any] struct {
	ok    Ok[T]
	err   Err
	isOk  bool
}

// MakeOk wraps a successful parse.
func MakeOk[T any](furthestLook int, value T) Result[T] {
	return Result[T]{ok: Ok[T]{FurthestLook: furthestLook, Value: value}, isOk: true}
}

// MakeErr wraps a parse failure.
func MakeErr[T any](err Err) Result[T] {
	return Result[T]{err: err, isOk: false}
}

// IsOk reports whether the result is a success.
func (r Result[T]) IsOk() bool { return r.isOk }

// OkValue returns the success payload; valid only when IsOk is true.
func (r Result[T]) OkValue() Ok[T] { return r.ok }

// ErrValue returns the failure payload; valid only when IsOk is false.
func (r Result[T]) ErrValue() Err { return r.err }

// attachError merges err into ok's carried furthest error, unifying with any
// error already carried.
func attachError[T any](ok Ok[T], err Err) Ok[T] {
	if ok.FurthestError == nil {
		ok.FurthestError = &err
		return ok
	}
	merged := unifyErrors(*ok.FurthestError, err)
	ok.FurthestError = &merged
	return ok
}

// UnifyAlternatives combines the results of trying two alternatives of the
// same rule at the same position: both Ok picks the one that looked
// furthest ahead (ties favor a, the first alternative tried); one Ok and one
// Err keeps the Ok, folding the Err into its carried error only if the Err
// looked further than the Ok (a failure no deeper carries no useful
// diagnostic once something has already succeeded further in); both Err
// unifies the two errors.
func UnifyAlternatives[T any](a, b Result[T]) Result[T] {
	switch {
	case a.isOk && b.isOk:
		if b.ok.FurthestLook > a.ok.FurthestLook {
			return b
		}
		return a

	case a.isOk && !b.isOk:
		if b.err.FurthestLook > a.ok.FurthestLook {
			a.ok = attachError(a.ok, b.err)
		}
		return a

	case !a.isOk && b.isOk:
		if a.err.FurthestLook > b.ok.FurthestLook {
			b.ok = attachError(b.ok, a.err)
		}
		return b

	default:
		return MakeErr[T](unifyErrors(a.err, b.err))
	}
}

// Pair is the value produced by UnifySequence: the two values captured by a
// two-element sequence.
type Pair[A, B any] struct {
	First  A
	Second B
}

// UnifySequence combines a successful parse of the first element of a
// sequence with the result of parsing the second element starting where the
// first left off. If the second element also succeeds, the pair's
// furthest_look is the second's (sequences only move forward) and its
// carried error is the unification of whichever of the two elements carried
// one. If the second element fails, the whole sequence fails, carrying the
// deeper of the first element's carried error and the second's own error.
func UnifySequence[A, B any](a Ok[A], b Result[B]) Result[Pair[A, B]] {
	if b.isOk {
		merged := Ok[Pair[A, B]]{
			FurthestLook: b.ok.FurthestLook,
			Value:        Pair[A, B]{First: a.Value, Second: b.ok.Value},
		}
		switch {
		case a.FurthestError != nil && b.ok.FurthestError != nil:
			u := unifyErrors(*a.FurthestError, *b.ok.FurthestError)
			merged.FurthestError = &u
		case a.FurthestError != nil:
			merged.FurthestError = a.FurthestError
		case b.ok.FurthestError != nil:
			merged.FurthestError = b.ok.FurthestError
		}
		return Result[Pair[A, B]]{ok: merged, isOk: true}
	}

	errVal := b.err
	if a.FurthestError != nil {
		errVal = unifyErrors(*a.FurthestError, b.err)
	}
	return MakeErr[Pair[A, B]](errVal)
}
