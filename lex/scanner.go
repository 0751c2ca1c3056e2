package lex

import (
	"github.com/dekarrin/fathom/automaton"
	"github.com/dekarrin/fathom/token"
)

// State is the scanner's resumable position: the byte index into source it
// has committed through, the line/column at that index, and the last rune
// consumed (0 if none yet, used for CR/LF-aware newline counting across
// resume boundaries).
type State struct {
	ByteIndex int
	Position  token.Position
	LastRune  rune
}

// Grammar pairs a compiled DFA with the error/end kinds a scanner using it
// must be able to produce, per the token-grammar declaration's mandatory
// `error` and `end` variants.
type Grammar[K comparable] struct {
	DFA   *automaton.DFA[rune, AcceptingState[K]]
	Error K
	End   K
}

// NewGrammar compiles defs and pairs the result with the mandatory error and
// end kinds.
func NewGrammar[K comparable](errorKind, endKind K, defs []Definition[K]) (*Grammar[K], error) {
	dfa, err := CompileDFA(defs)
	if err != nil {
		return nil, err
	}
	return &Grammar[K]{DFA: dfa, Error: errorKind, End: endKind}, nil
}

// runeAt decodes the rune starting at byte index i in source, returning the
// rune, its width in bytes, and whether one was available (false at end of
// string).
func runeAt(source string, i int) (rune, int, bool) {
	if i >= len(source) {
		return 0, 0, false
	}
	for _, r := range source[i:] {
		return r, len(string(r)), true
	}
	return 0, 0, false
}

// Next scans a single token starting at state, using maximal munch: it walks
// source one rune at a time, following g's DFA, and commits to the longest
// prefix that lands on an accepting state. It returns the new resumable
// state and the produced token; once state is at the end of source, that
// token is of g's End kind. The third result is true on every return.
func (g *Grammar[K]) Next(source string, state State) (State, token.Token[K], bool) {
	if state.ByteIndex >= len(source) {
		return state, token.Token[K]{Kind: g.End, Start: state.ByteIndex, Position: state.Position}, true
	}

	dfaState := g.DFA.Start()
	cur := state
	start := state

	type snapshot struct {
		state   State
		payload AcceptingState[K]
	}
	var lastAccepting *snapshot
	consumedAny := false

	for {
		r, width, ok := runeAt(source, cur.ByteIndex)
		if !ok {
			break
		}
		next, hasTransition := g.DFA.Step(dfaState, r)
		if !hasTransition {
			break
		}

		dfaState = next
		pos := cur.Position
		pos.Advance(cur.LastRune, r)
		cur = State{ByteIndex: cur.ByteIndex + width, Position: pos, LastRune: r}
		consumedAny = true

		if payload, ok := g.DFA.Payload(dfaState); ok {
			lastAccepting = &snapshot{state: cur, payload: payload}
		}
	}

	if lastAccepting != nil {
		text := source[start.ByteIndex:lastAccepting.state.ByteIndex]
		lookahead := cur.ByteIndex - lastAccepting.state.ByteIndex
		tok := token.Token[K]{
			Kind:      lastAccepting.payload.Kind,
			Text:      text,
			Start:     start.ByteIndex,
			Position:  start.Position,
			Lookahead: lookahead,
		}
		return lastAccepting.state, tok, true
	}

	if consumedAny {
		r, width, ok := runeAt(source, start.ByteIndex)
		errWidth := 0
		if ok {
			errWidth = width
		}
		errState := State{ByteIndex: start.ByteIndex + errWidth, Position: start.Position, LastRune: r}
		if ok {
			errState.Position.Advance(start.LastRune, r)
		}
		tok := token.Token[K]{
			Kind:     g.Error,
			Text:     source[start.ByteIndex:errState.ByteIndex],
			Start:    start.ByteIndex,
			Position: start.Position,
		}
		return errState, tok, true
	}

	// Nothing consumed and no transition at all from the very first rune:
	// still an error token covering exactly that one rune.
	r, width, ok := runeAt(source, start.ByteIndex)
	if !ok {
		return start, token.Token[K]{Kind: g.End, Start: start.ByteIndex, Position: start.Position}, true
	}
	pos := start.Position
	pos.Advance(start.LastRune, r)
	errState := State{ByteIndex: start.ByteIndex + width, Position: pos, LastRune: r}
	tok := token.Token[K]{
		Kind:     g.Error,
		Text:     source[start.ByteIndex:errState.ByteIndex],
		Start:    start.ByteIndex,
		Position: start.Position,
	}
	return errState, tok, true
}

// ScanAll scans source to completion from the initial state, skipping
// `ignore`-flagged kinds, and returns the emitted tokens (the final `end`
// token included).
func (g *Grammar[K]) ScanAll(source string) []token.Token[K] {
	var out []token.Token[K]
	state := State{}
	for {
		next, tok, _ := g.Next(source, state)
		if tok.Kind == g.End {
			out = append(out, tok)
			return out
		}
		if !g.isIgnored(tok) {
			out = append(out, tok)
		}
		state = next
	}
}

func (g *Grammar[K]) isIgnored(tok token.Token[K]) bool {
	// Re-derive ignore status by walking the DFA once more over the token's
	// own text; the scanner doesn't carry the Ignore flag on Token itself
	// since that would leak a compile-time detail into every consumer.
	dfaState := g.DFA.Start()
	var payload AcceptingState[K]
	found := false
	for _, r := range tok.Text {
		next, ok := g.DFA.Step(dfaState, r)
		if !ok {
			return false
		}
		dfaState = next
		if p, ok := g.DFA.Payload(dfaState); ok {
			payload = p
			found = true
		}
	}
	return found && payload.Ignore
}
