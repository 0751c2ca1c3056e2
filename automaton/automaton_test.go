package automaton

import (
	"testing"

	"github.com/dekarrin/fathom/internal/util"
	"github.com/dekarrin/fathom/ival"
	"github.com/stretchr/testify/assert"
)

func TestNFA_EpsilonClosure(t *testing.T) {
	nfa := New[rune, string]()
	a := nfa.UniqueState()
	b := nfa.UniqueState()
	c := nfa.UniqueState()
	nfa.AddEpsilonTransition(nfa.Start(), a)
	nfa.AddEpsilonTransition(a, b)
	nfa.AddEpsilonTransition(b, c)

	closure := nfa.EpsilonClosure(util.KeySetOf([]State{nfa.Start()}))
	assert.True(t, closure.Has(nfa.Start()))
	assert.True(t, closure.Has(a))
	assert.True(t, closure.Has(b))
	assert.True(t, closure.Has(c))
	assert.Equal(t, 4, closure.Len())
}

func TestNFA_TransitionUnion(t *testing.T) {
	nfa := New[rune, string]()
	s := nfa.UniqueState()
	d1 := nfa.UniqueState()
	d2 := nfa.UniqueState()
	nfa.AddTransition(s, ival.Closed('a', 'z'), d1)
	nfa.AddTransition(s, ival.Closed('m', 'm'), d2)

	entries := nfa.TransitionsFrom(s)
	var total int
	for _, e := range entries {
		total += e.Value.Len()
	}
	assert.Equal(t, 4, total) // [a,m) -> d1 (1); [m,m] -> d1,d2 (2); (m,z] -> d1 (1)
}

func TestNFA_SetAccepting(t *testing.T) {
	nfa := New[rune, string]()
	s := nfa.UniqueState()
	assert.False(t, nfa.IsAccepting(s))
	nfa.SetAccepting(s, "kind")
	assert.True(t, nfa.IsAccepting(s))
	payload, ok := nfa.Payload(s)
	assert.True(t, ok)
	assert.Equal(t, "kind", payload)
}

// buildAbPlus constructs an NFA for the pattern "ab+": a single 'a' followed
// by one or more 'b'.
func buildAbPlus() *NFA[rune, string] {
	nfa := New[rune, string]()
	s1 := nfa.UniqueState()
	a1 := nfa.UniqueState()
	nfa.AddEpsilonTransition(nfa.Start(), s1)
	nfa.AddTransition(s1, ival.Closed('a', 'a'), a1)

	s2 := nfa.UniqueState()
	a2 := nfa.UniqueState()
	nfa.AddEpsilonTransition(a1, s2)
	nfa.AddTransition(s2, ival.Closed('b', 'b'), a2)
	nfa.AddEpsilonTransition(a2, s2)
	nfa.SetAccepting(a2, "AB_PLUS")

	return nfa
}

func TestDeterminize_AcceptsExpectedLanguage(t *testing.T) {
	nfa := buildAbPlus()
	reduce := func(a, b string) string { panic("no conflicts expected: " + a + " " + b) }
	dfa := Determinize[rune, string](nfa, reduce)

	run := func(s string) (bool, string) {
		state := dfa.Start()
		for _, r := range s {
			next, ok := dfa.Step(state, r)
			if !ok {
				return false, ""
			}
			state = next
		}
		payload, ok := dfa.Payload(state)
		return ok, payload
	}

	ok, payload := run("ab")
	assert.True(t, ok)
	assert.Equal(t, "AB_PLUS", payload)

	ok, payload = run("abbbb")
	assert.True(t, ok)
	assert.Equal(t, "AB_PLUS", payload)

	ok, _ = run("a")
	assert.False(t, ok)

	ok, _ = run("ac")
	assert.False(t, ok)
}

func TestDeterminize_ReducerResolvesOverlap(t *testing.T) {
	nfa := New[rune, int]()
	a1 := nfa.UniqueState()
	a2 := nfa.UniqueState()
	nfa.AddTransition(nfa.Start(), ival.Closed('0', '9'), a1)
	nfa.AddTransition(nfa.Start(), ival.Closed('5', '5'), a2)
	nfa.SetAccepting(a1, 1)
	nfa.SetAccepting(a2, 2)

	reduce := func(a, b int) int {
		if a > b {
			return a
		}
		return b
	}
	dfa := Determinize[rune, int](nfa, reduce)

	state, ok := dfa.Step(dfa.Start(), '5')
	assert.True(t, ok)
	payload, ok := dfa.Payload(state)
	assert.True(t, ok)
	assert.Equal(t, 2, payload)

	state, ok = dfa.Step(dfa.Start(), '3')
	assert.True(t, ok)
	payload, ok = dfa.Payload(state)
	assert.True(t, ok)
	assert.Equal(t, 1, payload)
}
