package automaton

import (
	"cmp"
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/fathom/internal/util"
	"github.com/dekarrin/fathom/ival"
)

// Reducer resolves a conflict between two accepting payloads that would
// otherwise both apply to the same determinized state: it must be total
// (defined for every pair the automaton can produce) and deterministic
// (symmetric: Reducer(a,b) and Reducer(b,a) must pick the same logical
// winner). DFA construction never detects or recovers from a tie itself:
// the reducer must return a payload for every call, and any handling of an
// unresolvable tie (a panic, or recording an error as lex.CompileDFA does)
// is the reducer's own.
type Reducer[A any] func(a, b A) A

// DFA is a deterministic automaton: each state has at most one transition
// per input value, and at most one accepting payload.
type DFA[T cmp.Ordered, A any] struct {
	stateCounter State
	start        State
	accepting    util.KeySet[State]
	payload      map[State]A
	transitions  map[State]*ival.Map[T, State]
}

func newDFA[T cmp.Ordered, A any]() *DFA[T, A] {
	return &DFA[T, A]{
		accepting:   util.NewKeySet[State](),
		payload:     make(map[State]A),
		transitions: make(map[State]*ival.Map[T, State]),
	}
}

// Start returns the DFA's start state.
func (d *DFA[T, A]) Start() State { return d.start }

// IsAccepting reports whether s is accepting.
func (d *DFA[T, A]) IsAccepting(s State) bool { return d.accepting.Has(s) }

// Payload returns the accepting payload of s, if any.
func (d *DFA[T, A]) Payload(s State) (A, bool) {
	p, ok := d.payload[s]
	return p, ok
}

// Step follows the single transition from s on value, returning the
// destination state and whether one exists. A missing transition means the
// automaton has no defined move here — callers treat this as scan failure,
// not as an implicit trap state.
func (d *DFA[T, A]) Step(s State, value T) (State, bool) {
	m, ok := d.transitions[s]
	if !ok {
		return 0, false
	}
	return m.Get(value)
}

// TransitionsFrom returns the interval-labeled transitions leaving s.
func (d *DFA[T, A]) TransitionsFrom(s State) []ival.MapEntry[T, State] {
	m, ok := d.transitions[s]
	if !ok {
		return nil
	}
	return m.Entries()
}

func (d *DFA[T, A]) String() string {
	return fmt.Sprintf("DFA{states: %d, start: %v}", d.stateCounter, d.start)
}

func (d *DFA[T, A]) uniqueState() State {
	s := d.stateCounter
	d.stateCounter++
	return s
}

// subsetKey canonicalizes a KeySet of NFA states into a stable string so it
// can be used as a map key during subset construction.
func subsetKey(states util.KeySet[State]) string {
	ids := make([]int, 0, states.Len())
	for s := range states {
		ids = append(ids, int(s))
	}
	sort.Ints(ids)
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", id)
	}
	return sb.String()
}

// Determinize builds a DFA from nfa via subset construction: each DFA state
// corresponds to an epsilon-closed set of NFA states, and transitions are
// computed by refining the DFA state's outgoing intervals into a disjoint
// alphabet before following each NFA sub-transition. Where a determinized
// state corresponds to more than one NFA accepting state, reduce picks the
// surviving payload; reduce must be total and deterministic (see Reducer).
func Determinize[T cmp.Ordered, A any](nfa *NFA[T, A], reduce Reducer[A]) *DFA[T, A] {
	dfa := newDFA[T, A]()

	startSet := nfa.EpsilonClosure(util.KeySetOf([]State{nfa.Start()}))
	startKey := subsetKey(startSet)

	dfa.start = dfa.uniqueState()
	subsetOf := map[string]State{startKey: dfa.start}
	nfaSetOf := map[State]util.KeySet[State]{dfa.start: startSet}

	worklist := []State{dfa.start}
	for len(worklist) > 0 {
		cur := worklist[0]
		worklist = worklist[1:]

		nfaStates := nfaSetOf[cur]
		assignAccepting(dfa, nfa, cur, nfaStates, reduce)

		for _, piece := range outgoingPieces(nfa, nfaStates) {
			closure := nfa.EpsilonClosure(piece.dest)
			key := subsetKey(closure)

			dest, known := subsetOf[key]
			if !known {
				dest = dfa.uniqueState()
				subsetOf[key] = dest
				nfaSetOf[dest] = closure
				worklist = append(worklist, dest)
			}

			m, ok := dfa.transitions[cur]
			if !ok {
				m = ival.NewMap[T, State]()
				dfa.transitions[cur] = m
			}
			m.InsertAndUnify(piece.iv, dest, func(existing, _ State) State {
				// outgoingPieces already refines the alphabet so that
				// distinct destinations never share an interval for a
				// single source state; a collision here means the same
				// destination is being recorded twice for adjacent pieces,
				// so keeping the existing slot is a no-op merge.
				return existing
			})
		}
	}

	return dfa
}

func assignAccepting[T cmp.Ordered, A any](dfa *DFA[T, A], nfa *NFA[T, A], state State, nfaStates util.KeySet[State], reduce Reducer[A]) {
	var merged A
	found := false
	for s := range nfaStates {
		p, ok := nfa.Payload(s)
		if !ok {
			continue
		}
		if !found {
			merged = p
			found = true
			continue
		}
		merged = reduce(merged, p)
	}
	if found {
		dfa.accepting.Add(state)
		dfa.payload[state] = merged
	}
}

type outgoingPiece[T cmp.Ordered] struct {
	iv   ival.Interval[T]
	dest util.KeySet[State]
}

// outgoingPieces computes, for the union of transitions leaving every state
// in nfaStates, a disjoint refinement of the alphabet: each returned piece
// covers an interval over which exactly one set of NFA destination states is
// reachable in one step. Endpoints of every source transition are collected
// into a sorted boundary list and walked pairwise to produce disjoint
// sub-intervals; each sub-interval's destination set is the union of every
// source transition's destinations that cover it.
func outgoingPieces[T cmp.Ordered, A any](nfa *NFA[T, A], nfaStates util.KeySet[State]) []outgoingPiece[T] {
	type labeled struct {
		iv   ival.Interval[T]
		dest util.KeySet[State]
	}
	var sources []labeled
	for s := range nfaStates {
		for _, e := range nfa.TransitionsFrom(s) {
			sources = append(sources, labeled{iv: e.Interval, dest: e.Value})
		}
	}
	if len(sources) == 0 {
		return nil
	}

	var lowers []ival.Lower[T]
	for _, l := range sources {
		lowers = append(lowers, l.iv.Lower)
		if up, ok := l.iv.Upper.Touching(); ok {
			lowers = append(lowers, up)
		}
	}
	sort.Slice(lowers, func(i, j int) bool { return lowers[i].Compare(lowers[j]) == ival.Less })

	var uniqueLowers []ival.Lower[T]
	for i, l := range lowers {
		if i == 0 || l.Compare(lowers[i-1]) != ival.Equal {
			uniqueLowers = append(uniqueLowers, l)
		}
	}

	var pieces []outgoingPiece[T]
	for i, lower := range uniqueLowers {
		var upper ival.Upper[T]
		if i+1 < len(uniqueLowers) {
			u, ok := uniqueLowers[i+1].Touching()
			if !ok {
				continue
			}
			upper = u
		} else {
			upper = ival.UnboundedUpper[T]()
		}

		piece := ival.Interval[T]{Lower: lower, Upper: upper}
		if piece.IsEmpty() {
			continue
		}

		dest := util.NewKeySet[State]()
		for _, l := range sources {
			if coversPiece(l.iv, piece) {
				for s := range l.dest {
					dest.Add(s)
				}
			}
		}
		if dest.Len() == 0 {
			continue
		}
		pieces = append(pieces, outgoingPiece[T]{iv: piece, dest: dest})
	}
	return pieces
}

// coversPiece reports whether iv fully contains piece; used to decide which
// original source transitions contribute to a refined alphabet piece.
func coversPiece[T cmp.Ordered](iv, piece ival.Interval[T]) bool {
	loOK := iv.Lower.Compare(piece.Lower) != ival.Greater
	upOK := iv.Upper.Compare(piece.Upper) != ival.Less
	return loOK && upOK
}
