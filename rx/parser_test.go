package rx

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParse_Literal(t *testing.T) {
	node, err := Parse("a")
	assert.NoError(t, err)
	if diff := cmp.Diff(Node(Literal{Value: 'a'}), node); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Sequence(t *testing.T) {
	node, err := Parse("ab")
	assert.NoError(t, err)
	want := Node(Sequence{First: Literal{Value: 'a'}, Second: Literal{Value: 'b'}})
	if diff := cmp.Diff(want, node); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Alternative(t *testing.T) {
	node, err := Parse("a|b")
	assert.NoError(t, err)
	want := Node(Alternative{First: Literal{Value: 'a'}, Second: Literal{Value: 'b'}})
	if diff := cmp.Diff(want, node); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Quantifiers(t *testing.T) {
	cases := []struct {
		pattern string
		want    Node
	}{
		{"a?", Quantified{Sub: Literal{Value: 'a'}, Quantifier: Quantifier{Kind: Between, Min: 0, Max: 1}}},
		{"a*", Quantified{Sub: Literal{Value: 'a'}, Quantifier: Quantifier{Kind: AtLeast, Min: 0}}},
		{"a+", Quantified{Sub: Literal{Value: 'a'}, Quantifier: Quantifier{Kind: AtLeast, Min: 1}}},
		{"a{3}", Quantified{Sub: Literal{Value: 'a'}, Quantifier: Quantifier{Kind: Between, Min: 3, Max: 3}}},
		{"a{2,5}", Quantified{Sub: Literal{Value: 'a'}, Quantifier: Quantifier{Kind: Between, Min: 2, Max: 5}}},
	}
	for _, c := range cases {
		t.Run(c.pattern, func(t *testing.T) {
			node, err := Parse(c.pattern)
			assert.NoError(t, err)
			if diff := cmp.Diff(c.want, node); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_CharacterClass(t *testing.T) {
	node, err := Parse("[a-z_]")
	assert.NoError(t, err)
	want := Node(Grouping{Elements: []GroupingElement{
		{IsRange: true, RangeFrom: 'a', RangeTo: 'z'},
		{Literal: '_'},
	}})
	if diff := cmp.Diff(want, node); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_NegatedCharacterClass(t *testing.T) {
	node, err := Parse("[^a-z]")
	assert.NoError(t, err)
	want := Node(Grouping{Negated: true, Elements: []GroupingElement{
		{IsRange: true, RangeFrom: 'a', RangeTo: 'z'},
	}})
	if diff := cmp.Diff(want, node); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Escape(t *testing.T) {
	node, err := Parse(`\+`)
	assert.NoError(t, err)
	assert.Equal(t, Node(Literal{Value: '+'}), node)
}

func TestParse_Errors(t *testing.T) {
	cases := []string{"(a", "a)", "[a", "[]", "a{5,2}", "*a", ""}
	for _, pattern := range cases {
		t.Run(pattern, func(t *testing.T) {
			_, err := Parse(pattern)
			assert.Error(t, err)
		})
	}
}

func TestCIdent_MatchesExpectedShape(t *testing.T) {
	node := CIdent()
	seq, ok := node.(Sequence)
	assert.True(t, ok)
	head, ok := seq.First.(Grouping)
	assert.True(t, ok)
	assert.False(t, head.Negated)
	tailQuant, ok := seq.Second.(Quantified)
	assert.True(t, ok)
	assert.Equal(t, AtLeast, tailQuant.Quantifier.Kind)
	assert.Equal(t, 0, tailQuant.Quantifier.Min)
}

func TestLiteralString(t *testing.T) {
	node := LiteralString("if")
	want := Node(Sequence{First: Literal{Value: 'i'}, Second: Literal{Value: 'f'}})
	if diff := cmp.Diff(want, node); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `a\+b`, Escape("a+b"))
	assert.Equal(t, `a`, Escape("a"))
}
