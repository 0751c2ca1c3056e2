// Package automaton implements interval-labeled finite automata: a
// Thompson-style NFA with epsilon transitions and per-state accepting
// payloads, and a DFA obtained from it by subset construction over a
// caller-supplied priority reducer.
package automaton

import (
	"cmp"
	"fmt"
	"sort"

	"github.com/dekarrin/fathom/internal/util"
	"github.com/dekarrin/fathom/ival"
)

// State is an opaque state identifier. Identity, not structure, is what
// matters: callers never compare states by anything but equality.
type State int

// NFA is a nondeterministic automaton over alphabet T, with interval-labeled
// transitions to sets of destination states, epsilon transitions, and an
// optional accepting payload of type A attached to any state that is
// accepting.
type NFA[T cmp.Ordered, A any] struct {
	stateCounter State
	start        State
	accepting    util.KeySet[State]
	payload      map[State]A
	transitions  map[State]*ival.Map[T, util.KeySet[State]]
	epsilon      map[State]util.KeySet[State]
}

// New builds an NFA with a single start state and no transitions.
func New[T cmp.Ordered, A any]() *NFA[T, A] {
	n := &NFA[T, A]{
		accepting:   util.NewKeySet[State](),
		payload:     make(map[State]A),
		transitions: make(map[State]*ival.Map[T, util.KeySet[State]]),
		epsilon:     make(map[State]util.KeySet[State]),
	}
	n.start = n.UniqueState()
	return n
}

// Start returns the NFA's single start state.
func (n *NFA[T, A]) Start() State { return n.start }

// UniqueState allocates and returns a new state, disconnected from the rest
// of the automaton until transitions are added to or from it.
func (n *NFA[T, A]) UniqueState() State {
	s := n.stateCounter
	n.stateCounter++
	return s
}

// IsAccepting reports whether s is marked accepting.
func (n *NFA[T, A]) IsAccepting(s State) bool { return n.accepting.Has(s) }

// Accepting returns the sorted set of all accepting states.
func (n *NFA[T, A]) Accepting() []State {
	states := make([]State, 0, n.accepting.Len())
	for s := range n.accepting {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
	return states
}

// SetAccepting marks s as accepting with the given payload.
func (n *NFA[T, A]) SetAccepting(s State, payload A) {
	n.accepting.Add(s)
	n.payload[s] = payload
}

// Payload returns the accepting payload of s, if any.
func (n *NFA[T, A]) Payload(s State) (A, bool) {
	p, ok := n.payload[s]
	return p, ok
}

// AddEpsilonTransition adds an unlabeled transition from one state directly
// to another.
func (n *NFA[T, A]) AddEpsilonTransition(from, to State) {
	set, ok := n.epsilon[from]
	if !ok {
		set = util.NewKeySet[State]()
		n.epsilon[from] = set
	}
	set.Add(to)
}

// unionStates is the IntervalMap unify callback used by AddTransition: on
// overlap, the destination sets of the two transitions are unioned.
func unionStates(existing, inserted util.KeySet[State]) util.KeySet[State] {
	out := existing.Copy()
	for s := range inserted {
		out.Add(s)
	}
	return out
}

// AddTransition adds a transition from `from` to `to` on every symbol in on.
// If from already has a transition whose interval overlaps on, the
// destination state sets are unioned over the overlap rather than
// overwritten, per IntervalMap's unify contract.
func (n *NFA[T, A]) AddTransition(from State, on ival.Interval[T], to State) {
	m, ok := n.transitions[from]
	if !ok {
		m = ival.NewMap[T, util.KeySet[State]]()
		n.transitions[from] = m
	}
	dest := util.NewKeySet[State]()
	dest.Add(to)
	m.InsertAndUnify(on, dest, unionStates)
}

// TransitionsFrom returns the interval-labeled transitions leaving s, or nil
// if s has none.
func (n *NFA[T, A]) TransitionsFrom(s State) []ival.MapEntry[T, util.KeySet[State]] {
	m, ok := n.transitions[s]
	if !ok {
		return nil
	}
	return m.Entries()
}

// EpsilonClosure returns the reflexive-transitive closure of states under
// epsilon transitions, starting from every state in from.
func (n *NFA[T, A]) EpsilonClosure(from util.KeySet[State]) util.KeySet[State] {
	closure := util.NewKeySet[State]()
	var stack []State
	for s := range from {
		closure.Add(s)
		stack = append(stack, s)
	}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range n.epsilon[s] {
			if !closure.Has(next) {
				closure.Add(next)
				stack = append(stack, next)
			}
		}
	}
	return closure
}

// Join splices other into n, renumbering its states to avoid collisions, and
// returns a function mapping other's original states to their new
// identities in n. other's transitions, epsilon transitions and accepting
// marks (with their payloads) are copied under the new identities; other's
// start state is not connected to anything in n.
func (n *NFA[T, A]) Join(other *NFA[T, A]) func(State) State {
	remap := make(map[State]State, int(other.stateCounter))
	translate := func(s State) State {
		if mapped, ok := remap[s]; ok {
			return mapped
		}
		mapped := n.UniqueState()
		remap[s] = mapped
		return mapped
	}

	for s := State(0); s < other.stateCounter; s++ {
		translate(s)
	}

	for from, set := range other.epsilon {
		for to := range set {
			n.AddEpsilonTransition(translate(from), translate(to))
		}
	}
	for from, m := range other.transitions {
		for _, e := range m.Entries() {
			for to := range e.Value {
				n.AddTransition(translate(from), e.Interval, translate(to))
			}
		}
	}
	for s := range other.accepting {
		n.SetAccepting(translate(s), other.payload[s])
	}

	return translate
}

func (n *NFA[T, A]) String() string {
	return fmt.Sprintf("NFA{states: %d, start: %v, accepting: %v}", n.stateCounter, n.start, n.Accepting())
}
