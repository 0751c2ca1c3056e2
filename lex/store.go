package lex

import (
	"github.com/dekarrin/fathom/token"
)

// Store maintains a source buffer and the token stream derived from it,
// supporting incremental re-lexing after an edit instead of a full rescan.
type Store[K comparable] struct {
	grammar *Grammar[K]
	source  string
	tokens  []token.Token[K]
}

// NewStore builds a Store by scanning source in full.
func NewStore[K comparable](grammar *Grammar[K], source string) *Store[K] {
	s := &Store[K]{grammar: grammar, source: source}
	s.tokens = grammar.ScanAll(source)
	return s
}

// Source returns the current source buffer.
func (s *Store[K]) Source() string { return s.source }

// Tokens returns the current token stream.
func (s *Store[K]) Tokens() []token.Token[K] { return s.tokens }

// Modification describes the result of splicing an edit into a token
// stream: the half-open index range of prior tokens that the edit
// invalidated, the tokens that replace them, and the byte offset by which
// every surviving token after the erased range must be shifted.
type Modification[K comparable] struct {
	ErasedTokenRange [2]int
	InsertedTokens   []token.Token[K]
	ByteOffset       int
}

// Modify applies an edit — replacing the bytes in [erasedStart, erasedEnd)
// with inserted — to the store's source and token stream, re-lexing only as
// much as necessary, and returns the Modification describing the splice.
func (s *Store[K]) Modify(erasedStart, erasedEnd int, inserted string) Modification[K] {
	m := Modify(s.grammar, s.source, s.tokens, erasedStart, erasedEnd, inserted)

	newSource := s.source[:erasedStart] + inserted + s.source[erasedEnd:]
	var next []token.Token[K]
	next = append(next, s.tokens[:m.ErasedTokenRange[0]]...)
	next = append(next, m.InsertedTokens...)
	for _, t := range s.tokens[m.ErasedTokenRange[1]:] {
		t.Start += m.ByteOffset
		next = append(next, t)
	}

	s.source = newSource
	s.tokens = next
	return m
}

// maxLookahead returns the greatest Lookahead among tokens, used to widen
// the search for first_affected: a token that ended before the edit may
// still have inspected bytes at or after the edit start while confirming
// maximal munch.
func maxLookahead[K comparable](tokens []token.Token[K]) int {
	max := 0
	for _, t := range tokens {
		if t.Lookahead > max {
			max = t.Lookahead
		}
	}
	return max
}

// firstAffected finds the index of the earliest token whose range overlaps
// or ends at/after erasedStart, once every predecessor's possible look-ahead
// into the edited region is accounted for.
func firstAffected[K comparable](tokens []token.Token[K], erasedStart int) int {
	margin := maxLookahead(tokens)
	threshold := erasedStart - margin
	if threshold < 0 {
		threshold = 0
	}
	for i, t := range tokens {
		if t.End() >= threshold {
			return i
		}
	}
	return len(tokens)
}

// Modify is the free-function form of Store.Modify: given the prior source,
// prior tokens, and an edit, it computes the Modification without requiring
// a Store. It re-lexes starting from the scanner state at first_affected,
// stopping as soon as a freshly produced token matches an existing
// later token at the same shifted position (resynchronization); if no
// resynchronization point is found, the entire tail is replaced.
func Modify[K comparable](grammar *Grammar[K], priorSource string, priorTokens []token.Token[K], erasedStart, erasedEnd int, inserted string) Modification[K] {
	byteOffset := len(inserted) - (erasedEnd - erasedStart)
	newSource := priorSource[:erasedStart] + inserted + priorSource[erasedEnd:]

	faIdx := firstAffected(priorTokens, erasedStart)

	var scanFrom State
	if faIdx > 0 {
		prev := priorTokens[faIdx-1]
		precedingRune := lastRune(priorSource[:prev.Start])
		pos, last := advancedPosition(prev, precedingRune)
		scanFrom = State{ByteIndex: prev.End(), Position: pos, LastRune: last}
	}

	var produced []token.Token[K]
	state := scanFrom
	for {
		next, tok, _ := grammar.Next(newSource, state)
		if tok.Kind == grammar.End {
			produced = append(produced, tok)
			return Modification[K]{
				ErasedTokenRange: [2]int{faIdx, len(priorTokens)},
				InsertedTokens:   produced,
				ByteOffset:       byteOffset,
			}
		}

		if grammar.isIgnored(tok) {
			state = next
			continue
		}

		shiftedStart := tok.Start
		resyncIdx := findResync(priorTokens, faIdx, shiftedStart, tok, byteOffset)
		if resyncIdx >= 0 {
			return Modification[K]{
				ErasedTokenRange: [2]int{faIdx, resyncIdx},
				InsertedTokens:   produced,
				ByteOffset:       byteOffset,
			}
		}

		produced = append(produced, tok)
		state = next
	}
}

// findResync reports whether tok, freshly produced at shiftedStart, matches
// an existing token at index >= faIdx once that existing token's own start
// is shifted by byteOffset — i.e. whether re-lexing has caught back up with
// the original stream. Matching requires identical kind, text, and
// look-ahead at the aligned position.
func findResync[K comparable](priorTokens []token.Token[K], faIdx, shiftedStart int, tok token.Token[K], byteOffset int) int {
	for i := faIdx; i < len(priorTokens); i++ {
		candidate := priorTokens[i]
		if candidate.Start+byteOffset != shiftedStart {
			if candidate.Start+byteOffset > shiftedStart {
				return -1
			}
			continue
		}
		if candidate.Kind == tok.Kind && candidate.Text == tok.Text && candidate.Lookahead == tok.Lookahead {
			return i
		}
		return -1
	}
	return -1
}

// advancedPosition returns the position and last-consumed rune immediately
// after t, i.e. the resumable state a scanner would be in having just
// finished t — the same state a from-scratch scan would reach at this point.
// precedingRune is the rune immediately before t.Text (0 if t is the first
// token of the source), needed so a '\r' ending the token before t is
// correctly charged against the newline it represents rather than against
// the first rune of t itself.
func advancedPosition[K comparable](t token.Token[K], precedingRune rune) (token.Position, rune) {
	pos := t.Position
	prev := precedingRune
	var last rune
	for _, r := range t.Text {
		pos.Advance(prev, r)
		prev = r
		last = r
	}
	return pos, last
}

// lastRune returns the final rune of s, or 0 if s is empty.
func lastRune(s string) rune {
	var r rune
	for _, rr := range s {
		r = rr
	}
	return r
}
