package parse

import "fmt"

// memoKey identifies one (rule, input position) memoization slot.
type memoKey struct {
	rule string
	pos  int
}

// directState is the three-state machine driving direct left recursion.
type directState int

const (
	directBase directState = iota
	directStub
	directRecurse
)

type directEntry struct {
	state  directState
	result Result[any]
}

// leftRecFrame is one active left-recursive call on the engine's call
// stack: which rule it is evaluating, the seed result grown so far, and the
// recursion head it has joined (nil until a recursive call back into the
// cycle is detected).
type leftRecFrame struct {
	rule string
	seed Result[any]
	head *recursionHead
}

// recursionHead is shared by every frame on the call stack that belongs to
// the same left-recursive cycle: the rule name that "owns" the head,
// every rule name involved in the cycle, and the subset of those still
// pending re-evaluation during the current growth iteration.
type recursionHead struct {
	name     string
	involved map[string]bool
	eval     map[string]bool
}

// indirectEntry is one memo slot for an indirectly-recursive rule: either a
// finalized result, or a still-active left-recursive frame.
type indirectEntry struct {
	frame  *leftRecFrame
	result Result[any]
}

// Engine evaluates a Grammar over a slice of input items, memoizing per
// (rule, position) and implementing the Warth/Douglass seed-growing
// algorithm for direct and indirect left recursion. Go has no equivalent of
// the source's Box<dyn Any> seed erasure: results are simply stored as
// Result[any] and the typed Parse entry point below type-asserts the
// top-level value back to the caller's expected type.
type Engine[I any] struct {
	grammar *Grammar
	match   Matcher[I]
	input   []I

	plainMemo  map[memoKey]Result[any]
	directMemo map[memoKey]*directEntry

	indirectMemo map[memoKey]*indirectEntry
	heads        map[int]*recursionHead
	callStack    []*leftRecFrame
}

// NewEngine builds an Engine over input, using match to test terminal
// literals against input items.
func NewEngine[I any](grammar *Grammar, match Matcher[I], input []I) *Engine[I] {
	return &Engine[I]{
		grammar:      grammar,
		match:        match,
		input:        input,
		plainMemo:    make(map[memoKey]Result[any]),
		directMemo:   make(map[memoKey]*directEntry),
		indirectMemo: make(map[memoKey]*indirectEntry),
		heads:        make(map[int]*recursionHead),
	}
}

// Parse runs the grammar's start rule from position 0 and type-asserts the
// resulting value to T. It panics if the parse succeeds with a value of an
// unexpected type, which indicates a mismatched Action in the grammar
// declaration rather than a parse failure.
func Parse[I, T any](grammar *Grammar, match Matcher[I], input []I) (T, Err, bool) {
	e := NewEngine(grammar, match, input)
	result := e.Eval(grammar.Start, 0)
	var zero T
	if !result.IsOk() {
		return zero, result.ErrValue(), false
	}
	value, ok := result.OkValue().Value.(T)
	if !ok {
		panic("parse: start rule action produced a value of an unexpected type")
	}
	return value, Err{}, true
}

// Eval evaluates rule at pos, dispatching to the strategy matching the
// rule's statically-classified left-recursion shape.
func (e *Engine[I]) Eval(rule string, pos int) Result[any] {
	switch e.grammar.recursion[rule] {
	case DirectlyRecursive:
		return e.evalDirect(rule, pos)
	case IndirectlyRecursive:
		return e.evalIndirect(rule, pos)
	default:
		return e.evalPlain(rule, pos)
	}
}

func (e *Engine[I]) evalPlain(rule string, pos int) Result[any] {
	key := memoKey{rule, pos}
	if cached, ok := e.plainMemo[key]; ok {
		return cached
	}
	result := e.evalBody(rule, pos)
	e.plainMemo[key] = result
	return result
}

func (e *Engine[I]) evalDirect(rule string, pos int) Result[any] {
	key := memoKey{rule, pos}

	if entry, ok := e.directMemo[key]; ok {
		switch entry.state {
		case directBase:
			// This call is itself the recursive reference: signal it and
			// let the outer call begin seed growing.
			entry.state = directRecurse
			return entry.result
		case directStub, directRecurse:
			return entry.result
		}
	}

	sentinel := &directEntry{state: directBase, result: MakeErr[any](NewErr(pos, "left recursion", rule))}
	e.directMemo[key] = sentinel

	result := e.evalBody(rule, pos)
	current := e.directMemo[key]

	if current.state == directBase {
		current.state = directStub
		current.result = result
		return result
	}

	// current.state == directRecurse: a nested call detected recursion.
	// Begin seed growing.
	seed := result
	for {
		e.directMemo[key] = &directEntry{state: directRecurse, result: seed}
		next := e.evalBody(rule, pos)
		if next.IsOk() && (!seed.IsOk() || next.OkValue().FurthestLook > seed.OkValue().FurthestLook) {
			seed = next
			continue
		}
		final := UnifyAlternatives[any](seed, next)
		e.directMemo[key] = &directEntry{state: directStub, result: final}
		return final
	}
}

type recallAction int

const (
	recallMiss recallAction = iota
	recallHit
	recallReevaluate
)

func (e *Engine[I]) evalIndirect(rule string, pos int) Result[any] {
	key := memoKey{rule, pos}

	action, result := e.recall(rule, pos)
	switch action {
	case recallHit:
		return result
	case recallReevaluate:
		fresh := e.evalBody(rule, pos)
		e.indirectMemo[key] = &indirectEntry{result: fresh}
		return fresh
	}

	frame := &leftRecFrame{rule: rule, seed: MakeErr[any](NewErr(pos, "left recursion", rule))}
	e.callStack = append(e.callStack, frame)
	e.indirectMemo[key] = &indirectEntry{frame: frame}

	bodyResult := e.evalBody(rule, pos)
	e.callStack = e.callStack[:len(e.callStack)-1]

	if frame.head == nil {
		e.indirectMemo[key] = &indirectEntry{result: bodyResult}
		return bodyResult
	}

	frame.seed = bodyResult
	return e.lrAnswer(rule, pos, frame)
}

// recall implements the indirect-recursion lookup protocol: miss, prune,
// re-evaluate, or return a cached answer (finalizing a call-stack hit via
// lrHit along the way).
func (e *Engine[I]) recall(rule string, pos int) (recallAction, Result[any]) {
	entry, hasMemo := e.indirectMemo[memoKey{rule, pos}]
	head, hasHead := e.heads[pos]

	if !hasHead && !hasMemo {
		return recallMiss, Result[any]{}
	}

	if hasHead {
		if head.name != rule && !head.involved[rule] {
			return recallHit, MakeErr[any](NewErr(pos, "pruned by active recursion head", rule))
		}
		if head.eval[rule] {
			delete(head.eval, rule)
			return recallReevaluate, Result[any]{}
		}
	}

	if entry == nil {
		return recallMiss, Result[any]{}
	}
	if entry.frame != nil {
		return e.lrHit(rule, pos, entry.frame)
	}
	return recallHit, entry.result
}

// lrHit implements call-stack step 3: a hit on an active LeftRecursive
// frame means this call IS the recursive reference. Every frame from the
// top of the call stack down to (and including) the matching frame joins
// its recursion head.
func (e *Engine[I]) lrHit(rule string, pos int, frame *leftRecFrame) (recallAction, Result[any]) {
	if frame.head == nil {
		frame.head = &recursionHead{name: rule, involved: make(map[string]bool), eval: make(map[string]bool)}
	}
	for i := len(e.callStack) - 1; i >= 0; i-- {
		f := e.callStack[i]
		f.head = frame.head
		frame.head.involved[f.rule] = true
		if f == frame {
			break
		}
	}
	e.heads[pos] = frame.head
	return recallHit, frame.seed
}

// lrAnswer implements step 2's post-body handling once a frame's head has
// been set: if this rule is not the head's owner, it just returns the
// current seed (the owner will do the growing). If it IS the owner, it
// grows the seed by repeatedly re-evaluating the body with every involved
// rule's memo entry marked for re-evaluation, until no member of the cycle
// makes further progress.
func (e *Engine[I]) lrAnswer(rule string, pos int, frame *leftRecFrame) Result[any] {
	if frame.head.name != rule {
		return frame.seed
	}

	key := memoKey{rule, pos}
	e.indirectMemo[key] = &indirectEntry{result: frame.seed}

	if !frame.seed.IsOk() {
		delete(e.heads, pos)
		return frame.seed
	}

	for {
		frame.head.eval = make(map[string]bool, len(frame.head.involved))
		for name := range frame.head.involved {
			frame.head.eval[name] = true
		}
		e.heads[pos] = frame.head

		next := e.evalBody(rule, pos)
		if next.IsOk() && next.OkValue().FurthestLook > frame.seed.OkValue().FurthestLook {
			frame.seed = next
			e.indirectMemo[key] = &indirectEntry{result: frame.seed}
			continue
		}
		break
	}

	delete(e.heads, pos)
	e.indirectMemo[key] = &indirectEntry{result: frame.seed}
	return frame.seed
}

// evalBody tries every alternative of rule at pos in order and unifies
// their results, favoring whichever alternative (or carried error) looked
// furthest into the input.
func (e *Engine[I]) evalBody(rule string, pos int) Result[any] {
	r := e.grammar.Rules[rule]
	var best Result[any]
	haveBest := false

	for _, alt := range r.Alternatives {
		attempt := e.matchAlternative(alt, pos)
		if !haveBest {
			best = attempt
			haveBest = true
			continue
		}
		best = UnifyAlternatives[any](best, attempt)
	}

	if !haveBest {
		return MakeErr[any](NewErr(pos, "input", rule, "nothing (rule has no alternatives)"))
	}
	return best
}

// matchAlternative evaluates one alternative's literals in sequence,
// capturing each literal's value for the alternative's Action.
func (e *Engine[I]) matchAlternative(alt Alternative, pos int) Result[any] {
	if len(alt.Literals) == 0 {
		return MakeOk[any](pos, e.reduce(alt, nil))
	}

	first := e.matchLiteral(alt.Literals[0], pos)
	if !first.IsOk() {
		return MakeErr[any](first.ErrValue())
	}

	acc := first.OkValue()
	captures := []any{acc.Value}

	for _, lit := range alt.Literals[1:] {
		next := e.matchLiteral(lit, acc.FurthestLook)
		seq := UnifySequence[any, any](acc, next)
		if !seq.IsOk() {
			return MakeErr[any](seq.ErrValue())
		}
		pair := seq.OkValue()
		captures = append(captures, pair.Value.Second)
		acc = Ok[any]{FurthestLook: pair.FurthestLook, FurthestError: pair.FurthestError, Value: pair.Value.Second}
	}

	value := e.reduce(alt, captures)
	return Result[any]{ok: Ok[any]{FurthestLook: acc.FurthestLook, FurthestError: acc.FurthestError, Value: value}, isOk: true}
}

func (e *Engine[I]) reduce(alt Alternative, captures []any) any {
	if alt.Action != nil {
		return alt.Action(captures)
	}
	if len(captures) > 0 {
		return captures[0]
	}
	return nil
}

func (e *Engine[I]) matchLiteral(lit Literal, pos int) Result[any] {
	if lit.isRule {
		return e.Eval(lit.RuleRef, pos)
	}
	return e.matchTerminal(lit.Pattern, pos)
}

func (e *Engine[I]) matchTerminal(pattern any, pos int) Result[any] {
	if pos >= len(e.input) {
		// A grammar's token stream is expected to always carry an explicit
		// `end` token as its final element, so the parser should never
		// actually need to consume past the end of input; this is a
		// defensive fallback for a malformed or empty stream.
		return MakeErr[any](NewErr(pos, "end of input", "", renderPattern(pattern)))
	}

	item := e.input[pos]
	if e.match(item, pattern) {
		return MakeOk[any](pos+1, item)
	}
	return MakeErr[any](NewErr(pos, renderPattern(item), "", renderPattern(pattern)))
}

func renderPattern(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case EndOfInput:
		return "end of input"
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}
