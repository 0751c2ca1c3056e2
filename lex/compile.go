// Package lex implements a maximal-munch, DFA-driven scanner and an
// incremental token store built on top of it, along with the grammar
// compiler that turns a set of token definitions into a runnable DFA.
package lex

import (
	"fmt"

	"github.com/dekarrin/fathom/automaton"
	"github.com/dekarrin/fathom/ival"
	"github.com/dekarrin/fathom/rx"
)

// AcceptingState is the per-DFA-state payload attached wherever a token
// definition's pattern can terminate: which kind it produces, at what
// precedence, and whether it should be scanned-but-not-emitted.
type AcceptingState[K comparable] struct {
	Kind       K
	Precedence int
	Ignore     bool
}

// Definition is one token rule in a grammar declaration.
type Definition[K comparable] struct {
	Kind       K
	Pattern    rx.Node
	Precedence int
	Ignore     bool
}

// Token builds a Definition matching the literal string exactly, at the
// "exact literal" precedence (1).
func Token[K comparable](kind K, literal string) Definition[K] {
	return Definition[K]{Kind: kind, Pattern: rx.LiteralString(literal), Precedence: 1}
}

// Regex builds a Definition matching pattern, at the default precedence (0).
// It panics if pattern fails to parse; grammar declarations are expected to
// be fixed at compile time, not derived from untrusted input.
func Regex[K comparable](kind K, pattern string) Definition[K] {
	node, err := rx.Parse(pattern)
	if err != nil {
		panic(fmt.Sprintf("lex: grammar build error: %s", err))
	}
	return Definition[K]{Kind: kind, Pattern: node, Precedence: 0}
}

// CIdent builds a Definition matching the `c_ident` shorthand:
// [A-Za-z_][A-Za-z0-9_]*, at the default precedence (0).
func CIdent[K comparable](kind K) Definition[K] {
	return Definition[K]{Kind: kind, Pattern: rx.CIdent(), Precedence: 0}
}

// Ignore marks a Definition as scanned-but-not-emitted.
func Ignore[K comparable](d Definition[K]) Definition[K] {
	d.Ignore = true
	return d
}

// GrammarBuildError is returned when a token-grammar declaration is
// malformed: a conflicting equal-priority accepting state, or a reference
// to something that could not be resolved at build time.
type GrammarBuildError struct {
	Msg string
}

func (e *GrammarBuildError) Error() string { return "lex: grammar build error: " + e.Msg }

// CompileDFA builds the NFA for every definition via Thompson construction,
// joins them into one automaton, and determinizes it into a DFA whose
// accepting payload at each state is resolved by precedence: the
// highest-precedence definition reachable at that state wins, and two
// reachable definitions of equal precedence are a fatal grammar-build
// conflict.
func CompileDFA[K comparable](defs []Definition[K]) (*automaton.DFA[rune, AcceptingState[K]], error) {
	nfa := automaton.New[rune, AcceptingState[K]]()

	for _, def := range defs {
		start, accept := compileToNFA(nfa, def.Pattern)
		nfa.AddEpsilonTransition(nfa.Start(), start)
		nfa.SetAccepting(accept, AcceptingState[K]{Kind: def.Kind, Precedence: def.Precedence, Ignore: def.Ignore})
	}

	var buildErr error
	reduce := func(a, b AcceptingState[K]) AcceptingState[K] {
		if buildErr != nil {
			return a
		}
		switch {
		case a.Precedence > b.Precedence:
			return a
		case b.Precedence > a.Precedence:
			return b
		default:
			buildErr = &GrammarBuildError{Msg: fmt.Sprintf("conflicting equal-precedence token definitions: %v and %v", a.Kind, b.Kind)}
			return a
		}
	}

	dfa := automaton.Determinize(nfa, reduce)
	if buildErr != nil {
		return nil, buildErr
	}
	return dfa, nil
}

// compileToNFA implements Thompson construction over an rx.Node, returning
// the fresh start and accept states of the fragment it builds inside nfa.
func compileToNFA[K comparable](nfa *automaton.NFA[rune, AcceptingState[K]], node rx.Node) (start, accept automaton.State) {
	switch n := node.(type) {
	case rx.Literal:
		start = nfa.UniqueState()
		accept = nfa.UniqueState()
		nfa.AddTransition(start, ival.Closed(n.Value, n.Value), accept)
		return start, accept

	case rx.Grouping:
		start = nfa.UniqueState()
		accept = nfa.UniqueState()
		for _, iv := range groupingIntervals(n) {
			nfa.AddTransition(start, iv, accept)
		}
		return start, accept

	case rx.Sequence:
		s1, a1 := compileToNFA(nfa, n.First)
		s2, a2 := compileToNFA(nfa, n.Second)
		nfa.AddEpsilonTransition(a1, s2)
		return s1, a2

	case rx.Alternative:
		s1, a1 := compileToNFA(nfa, n.First)
		s2, a2 := compileToNFA(nfa, n.Second)
		start = nfa.UniqueState()
		accept = nfa.UniqueState()
		nfa.AddEpsilonTransition(start, s1)
		nfa.AddEpsilonTransition(start, s2)
		nfa.AddEpsilonTransition(a1, accept)
		nfa.AddEpsilonTransition(a2, accept)
		return start, accept

	case rx.Quantified:
		return compileQuantified(nfa, n)

	default:
		panic(fmt.Sprintf("lex: unhandled regex node %T", node))
	}
}

func compileQuantified[K comparable](nfa *automaton.NFA[rune, AcceptingState[K]], n rx.Quantified) (start, accept automaton.State) {
	min, max := n.Quantifier.Min, n.Quantifier.Max
	unbounded := n.Quantifier.Kind == rx.AtLeast

	start = nfa.UniqueState()
	accept = nfa.UniqueState()
	cursor := start

	// Mandatory copies: min repetitions that must all match.
	for i := 0; i < min; i++ {
		s, a := compileToNFA(nfa, n.Sub)
		nfa.AddEpsilonTransition(cursor, s)
		cursor = a
	}

	if unbounded {
		// A single optional-and-repeatable copy, looped back on itself.
		s, a := compileToNFA(nfa, n.Sub)
		nfa.AddEpsilonTransition(cursor, s)
		nfa.AddEpsilonTransition(a, s)
		nfa.AddEpsilonTransition(a, accept)
		nfa.AddEpsilonTransition(cursor, accept)
		return start, accept
	}

	// Between(min, max): (max - min) optional copies, each independently
	// skippable straight to the end.
	for i := min; i < max; i++ {
		s, a := compileToNFA(nfa, n.Sub)
		nfa.AddEpsilonTransition(cursor, s)
		nfa.AddEpsilonTransition(cursor, accept)
		cursor = a
	}
	nfa.AddEpsilonTransition(cursor, accept)
	return start, accept
}

// groupingIntervals converts a character class into the set of rune
// intervals it matches. A negated class is the complement within the full
// rune range, computed via an interval set over the class's own members and
// then subtracting from [0, utf8 max].
func groupingIntervals(n rx.Grouping) []ival.Interval[rune] {
	var positive []ival.Interval[rune]
	for _, e := range n.Elements {
		if e.IsRange {
			positive = append(positive, ival.Closed(e.RangeFrom, e.RangeTo))
		} else {
			positive = append(positive, ival.Closed(e.Literal, e.Literal))
		}
	}
	if !n.Negated {
		return positive
	}

	set := ival.NewSet[rune]()
	for _, iv := range positive {
		set.Insert(iv)
	}
	return complement(set, 0x10FFFF)
}

// complement returns the intervals covering [0, max] not covered by set.
func complement(set *ival.Set[rune], max rune) []ival.Interval[rune] {
	var out []ival.Interval[rune]
	cursor := rune(0)
	haveCursor := true
	for _, iv := range set.Intervals() {
		v, ok := iv.Lower.Value()
		if !ok {
			v = 0
		}
		if haveCursor && cursor < v {
			out = append(out, ival.Closed(cursor, v-1))
		}
		upperVal, ok := iv.Upper.Value()
		if !ok {
			return out
		}
		if iv.Upper == (ival.IncludedUpper(upperVal)) {
			cursor = upperVal + 1
		} else {
			cursor = upperVal
		}
		haveCursor = true
	}
	if haveCursor && cursor <= max {
		out = append(out, ival.Closed(cursor, max))
	}
	return out
}
