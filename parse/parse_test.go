package parse

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

// tok is the test input item: a token kind tag plus its literal text, so
// actions can recover digits for int literals.
type tok struct {
	kind string
	text string
}

func matchTok(item tok, pattern any) bool {
	switch p := pattern.(type) {
	case string:
		return item.kind == p
	case EndOfInput:
		return item.kind == "end"
	default:
		return false
	}
}

// arithmeticGrammar builds expr/add_expr/mul_expr/atom over int literals and
// +, -, *, (, ) — direct left recursion for left-associative + and *.
func arithmeticGrammar() *Grammar {
	expr := &Rule{Name: "expr", Alternatives: []Alternative{{
		Literals: []Literal{RuleLiteral("add_expr"), PatternLiteral(EndOfInput{})},
		Action:   func(c []any) any { return c[0] },
	}}}

	addExpr := &Rule{Name: "add_expr", Alternatives: []Alternative{
		{
			Literals: []Literal{RuleLiteral("add_expr"), PatternLiteral("+"), RuleLiteral("mul_expr")},
			Action:   func(c []any) any { return c[0].(float64) + c[2].(float64) },
		},
		{
			Literals: []Literal{RuleLiteral("add_expr"), PatternLiteral("-"), RuleLiteral("mul_expr")},
			Action:   func(c []any) any { return c[0].(float64) - c[2].(float64) },
		},
		{
			Literals: []Literal{RuleLiteral("mul_expr")},
			Action:   func(c []any) any { return c[0] },
		},
	}}

	mulExpr := &Rule{Name: "mul_expr", Alternatives: []Alternative{
		{
			Literals: []Literal{RuleLiteral("mul_expr"), PatternLiteral("*"), RuleLiteral("atom")},
			Action:   func(c []any) any { return c[0].(float64) * c[2].(float64) },
		},
		{
			Literals: []Literal{RuleLiteral("mul_expr"), PatternLiteral("/"), RuleLiteral("atom")},
			Action:   func(c []any) any { return c[0].(float64) / c[2].(float64) },
		},
		{
			Literals: []Literal{RuleLiteral("atom")},
			Action:   func(c []any) any { return c[0] },
		},
	}}

	atom := &Rule{Name: "atom", Alternatives: []Alternative{
		{
			Literals: []Literal{PatternLiteral("int")},
			Action: func(c []any) any {
				n, _ := strconv.ParseFloat(c[0].(tok).text, 64)
				return n
			},
		},
		{
			Literals: []Literal{PatternLiteral("("), RuleLiteral("add_expr"), PatternLiteral(")")},
			Action:   func(c []any) any { return c[1] },
		},
	}}

	g, err := NewGrammar("expr", expr, addExpr, mulExpr, atom)
	if err != nil {
		panic(err)
	}
	return g
}

func toks(s string) []tok {
	var out []tok
	for _, r := range s {
		switch r {
		case '+', '-', '*', '/', '(', ')':
			out = append(out, tok{kind: string(r), text: string(r)})
		case ' ':
			continue
		default:
			if r >= '0' && r <= '9' {
				out = append(out, tok{kind: "int", text: string(r)})
			}
		}
	}
	out = append(out, tok{kind: "end"})
	return out
}

func TestArithmeticGrammar_Evaluates(t *testing.T) {
	g := arithmeticGrammar()

	cases := []struct {
		src  string
		want float64
	}{
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"8-4-2", 2}, // left-associative: (8-4)-2
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			value, _, ok := Parse[tok, float64](g, matchTok, toks(c.src))
			assert.True(t, ok)
			assert.Equal(t, c.want, value)
		})
	}
}

func TestArithmeticGrammar_ParseError(t *testing.T) {
	g := arithmeticGrammar()
	_, err, ok := Parse[tok, float64](g, matchTok, toks("1+"))
	assert.False(t, ok)
	assert.NotEmpty(t, err.Error())
}

// expGrammar is a separate grammar with right-associative exponentiation
// via right recursion. None of its rules is left-recursive, so it runs on
// the plain memoized strategy alone.
func expGrammar() *Grammar {
	expr := &Rule{Name: "expr", Alternatives: []Alternative{{
		Literals: []Literal{RuleLiteral("exp_expr"), PatternLiteral(EndOfInput{})},
		Action:   func(c []any) any { return c[0] },
	}}}
	expExpr := &Rule{Name: "exp_expr", Alternatives: []Alternative{
		{
			Literals: []Literal{PatternLiteral("int"), PatternLiteral("^"), RuleLiteral("exp_expr")},
			Action: func(c []any) any {
				base, _ := strconv.ParseFloat(c[0].(tok).text, 64)
				exp := c[2].(float64)
				return math.Pow(base, exp)
			},
		},
		{
			Literals: []Literal{PatternLiteral("int")},
			Action: func(c []any) any {
				n, _ := strconv.ParseFloat(c[0].(tok).text, 64)
				return n
			},
		},
	}}
	g, err := NewGrammar("expr", expr, expExpr)
	if err != nil {
		panic(err)
	}
	return g
}

func expToks(s string) []tok {
	var out []tok
	for _, r := range s {
		if r == '^' {
			out = append(out, tok{kind: "^", text: "^"})
			continue
		}
		out = append(out, tok{kind: "int", text: string(r)})
	}
	out = append(out, tok{kind: "end"})
	return out
}

func TestExpGrammar_RightAssociative(t *testing.T) {
	g := expGrammar()
	value, _, ok := Parse[tok, float64](g, matchTok, expToks("2^3^2"))
	assert.True(t, ok)
	assert.Equal(t, math.Pow(2, math.Pow(3, 2)), value) // 2^(3^2) = 512
}

// Direct left recursion: E ::= E "-" N | N, checked independently of the
// arithmetic grammar above.
func TestDirectLeftRecursion(t *testing.T) {
	e := &Rule{Name: "e", Alternatives: []Alternative{
		{
			Literals: []Literal{RuleLiteral("e"), PatternLiteral("-"), RuleLiteral("n")},
			Action:   func(c []any) any { return c[0].(float64) - c[2].(float64) },
		},
		{Literals: []Literal{RuleLiteral("n")}, Action: func(c []any) any { return c[0] }},
	}}
	n := &Rule{Name: "n", Alternatives: []Alternative{{
		Literals: []Literal{PatternLiteral("int")},
		Action: func(c []any) any {
			v, _ := strconv.ParseFloat(c[0].(tok).text, 64)
			return v
		},
	}}}
	g, err := NewGrammar("e", e, n)
	assert.NoError(t, err)

	input := []tok{{kind: "int", text: "9"}, {kind: "-"}, {kind: "int", text: "3"}, {kind: "-"}, {kind: "int", text: "2"}, {kind: "end"}}
	value, _, ok := Parse[tok, float64](g, matchTok, input)
	assert.True(t, ok)
	assert.Equal(t, float64(4), value) // (9-3)-2
}

// Indirect left recursion: A ::= B "a" | "a"; B ::= A "b".
func TestIndirectLeftRecursion(t *testing.T) {
	a := &Rule{Name: "A", Alternatives: []Alternative{
		{
			Literals: []Literal{RuleLiteral("B"), PatternLiteral("a")},
			Action:   func(c []any) any { return c[0].(string) + "a" },
		},
		{
			Literals: []Literal{PatternLiteral("a")},
			Action:   func(c []any) any { return "a" },
		},
	}}
	b := &Rule{Name: "B", Alternatives: []Alternative{{
		Literals: []Literal{RuleLiteral("A"), PatternLiteral("b")},
		Action:   func(c []any) any { return c[0].(string) + "b" },
	}}}
	g, err := NewGrammar("A", a, b)
	assert.NoError(t, err)

	input := func(s string) []tok {
		var out []tok
		for _, r := range s {
			out = append(out, tok{kind: string(r)})
		}
		return append(out, tok{kind: "end"})
	}

	value, _, ok := Parse[tok, string](g, matchTok, input("a"))
	assert.True(t, ok)
	assert.Equal(t, "a", value)

	value, _, ok = Parse[tok, string](g, matchTok, input("aba"))
	assert.True(t, ok)
	assert.Equal(t, "aba", value)

	value, _, ok = Parse[tok, string](g, matchTok, input("ababa"))
	assert.True(t, ok)
	assert.Equal(t, "ababa", value)
}

func TestUnifyAlternatives_PrefersFurthestOk(t *testing.T) {
	a := MakeOk[int](3, 1)
	b := MakeOk[int](5, 2)
	r := UnifyAlternatives(a, b)
	assert.True(t, r.IsOk())
	assert.Equal(t, 2, r.OkValue().Value)
}

func TestUnifySequence_CarriesFurthestError(t *testing.T) {
	a := Ok[int]{FurthestLook: 2, Value: 1}
	bErr := NewErr(5, "x", "rule", "y")
	b := MakeErr[int](bErr)
	r := UnifySequence[int, int](a, b)
	assert.False(t, r.IsOk())
	assert.Equal(t, 5, r.ErrValue().FurthestLook)
}
