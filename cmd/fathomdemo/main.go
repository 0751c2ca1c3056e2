// Command fathomdemo replays a sequence of source edits against both a
// from-scratch lex+parse pipeline and an incrementally-maintained one,
// printing both results side by side so they can be compared by eye.
package main

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/dekarrin/fathom/lex"
	"github.com/dekarrin/fathom/parse"
)

// Config is the demo's optional settings file, read via --config. Absent a
// file, the zero value (quiet, no trace) applies.
type Config struct {
	Verbose bool `toml:"verbose"`
	Trace   bool `toml:"trace"`
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	_, err := toml.DecodeFile(path, &cfg)
	return cfg, err
}

// TokKind is the terminal alphabet of the demo arithmetic grammar.
type TokKind int

const (
	KindError TokKind = iota
	KindEnd
	KindWhitespace
	KindIntLit
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindPow
	KindLeftParen
	KindRightParen
)

func (k TokKind) String() string {
	switch k {
	case KindError:
		return "Error"
	case KindEnd:
		return "End"
	case KindWhitespace:
		return "Ws"
	case KindIntLit:
		return "IntLit"
	case KindAdd:
		return "+"
	case KindSub:
		return "-"
	case KindMul:
		return "*"
	case KindDiv:
		return "/"
	case KindPow:
		return "^"
	case KindLeftParen:
		return "("
	case KindRightParen:
		return ")"
	default:
		return "?"
	}
}

func buildGrammar() *lex.Grammar[TokKind] {
	defs := []lex.Definition[TokKind]{
		lex.Ignore(lex.Regex(KindWhitespace, "[ \r\n\t]+")),
		lex.Regex(KindIntLit, `[0-9]+`),
		lex.Token(KindAdd, "+"),
		lex.Token(KindSub, "-"),
		lex.Token(KindMul, "*"),
		lex.Token(KindDiv, "/"),
		lex.Token(KindPow, "^"),
		lex.Token(KindLeftParen, "("),
		lex.Token(KindRightParen, ")"),
	}
	g, err := lex.NewGrammar(KindError, KindEnd, defs)
	if err != nil {
		panic(err)
	}
	return g
}

// buildSyntax implements the grammar from the arithmetic-expression example:
//
//	expr     ::= add_expr $end                         {$0}
//	add_expr ::= add_expr "+" mul_expr                  {$0+$2}
//	           | add_expr "-" mul_expr                  {$0-$2}
//	           | mul_expr
//	mul_expr ::= mul_expr "*" exp_expr                  {$0*$2}
//	           | mul_expr "/" exp_expr                  {$0/$2}
//	           | exp_expr
//	exp_expr ::= atom "^" exp_expr                      {pow($0,$2)}
//	           | atom
//	atom     ::= IntLit                                 {atoi($0)}
//	           | "(" expr ")"                           {$1}
func buildSyntax() *parse.Grammar {
	intLit := TokKind(KindIntLit)

	expr := &parse.Rule{Name: "expr", Alternatives: []parse.Alternative{{
		Name:     "expr",
		Literals: []parse.Literal{parse.RuleLiteral("add_expr"), parse.PatternLiteral(parse.EndOfInput{})},
		Action:   func(c []any) any { return c[0] },
	}}}

	addExpr := &parse.Rule{Name: "add_expr", Alternatives: []parse.Alternative{
		{
			Literals: []parse.Literal{parse.RuleLiteral("add_expr"), parse.PatternLiteral(KindAdd), parse.RuleLiteral("mul_expr")},
			Action:   func(c []any) any { return c[0].(float64) + c[2].(float64) },
		},
		{
			Literals: []parse.Literal{parse.RuleLiteral("add_expr"), parse.PatternLiteral(KindSub), parse.RuleLiteral("mul_expr")},
			Action:   func(c []any) any { return c[0].(float64) - c[2].(float64) },
		},
		{
			Literals: []parse.Literal{parse.RuleLiteral("mul_expr")},
			Action:   func(c []any) any { return c[0] },
		},
	}}

	mulExpr := &parse.Rule{Name: "mul_expr", Alternatives: []parse.Alternative{
		{
			Literals: []parse.Literal{parse.RuleLiteral("mul_expr"), parse.PatternLiteral(KindMul), parse.RuleLiteral("exp_expr")},
			Action:   func(c []any) any { return c[0].(float64) * c[2].(float64) },
		},
		{
			Literals: []parse.Literal{parse.RuleLiteral("mul_expr"), parse.PatternLiteral(KindDiv), parse.RuleLiteral("exp_expr")},
			Action:   func(c []any) any { return c[0].(float64) / c[2].(float64) },
		},
		{
			Literals: []parse.Literal{parse.RuleLiteral("exp_expr")},
			Action:   func(c []any) any { return c[0] },
		},
	}}

	expExpr := &parse.Rule{Name: "exp_expr", Alternatives: []parse.Alternative{
		{
			Literals: []parse.Literal{parse.RuleLiteral("atom"), parse.PatternLiteral(KindPow), parse.RuleLiteral("exp_expr")},
			Action:   func(c []any) any { return math.Pow(c[0].(float64), c[2].(float64)) },
		},
		{
			Literals: []parse.Literal{parse.RuleLiteral("atom")},
			Action:   func(c []any) any { return c[0] },
		},
	}}

	atom := &parse.Rule{Name: "atom", Alternatives: []parse.Alternative{
		{
			Literals: []parse.Literal{parse.PatternLiteral(intLit)},
			Action: func(c []any) any {
				tok := c[0].(tokenItem)
				n, _ := strconv.ParseFloat(tok.text, 64)
				return n
			},
		},
		{
			Literals: []parse.Literal{parse.PatternLiteral(KindLeftParen), parse.RuleLiteral("expr"), parse.PatternLiteral(KindRightParen)},
			Action:   func(c []any) any { return c[1] },
		},
	}}

	g, err := parse.NewGrammar("expr", expr, addExpr, mulExpr, expExpr, atom)
	if err != nil {
		panic(err)
	}
	return g
}

// tokenItem is the parser's input item: a token kind plus its text, needed
// so the atom rule can recover the literal digits of an IntLit.
type tokenItem struct {
	kind TokKind
	text string
}

func matchToken(item tokenItem, pattern any) bool {
	switch p := pattern.(type) {
	case TokKind:
		return item.kind == p
	case parse.EndOfInput:
		return item.kind == KindEnd
	default:
		return false
	}
}

func parseTokens(toks []tokenItem) string {
	value, perr, ok := parse.Parse[tokenItem, float64](buildSyntax(), matchToken, toks)
	if !ok {
		return fmt.Sprintf("error: %s", perr.Error())
	}
	return strconv.FormatFloat(value, 'g', -1, 64)
}

// evaluateFromScratch re-lexes and re-parses source with no reuse of prior
// state, the baseline the incremental path is checked against.
func evaluateFromScratch(source string) string {
	g := buildGrammar()
	toks := g.ScanAll(source)
	items := make([]tokenItem, len(toks))
	for i, t := range toks {
		items[i] = tokenItem{kind: t.Kind, text: t.Text}
	}
	return parseTokens(items)
}

// evaluateIncremental parses whatever token stream store currently holds,
// which was produced by splicing the last edit into the prior stream rather
// than rescanning from the start.
func evaluateIncremental(store *lex.Store[TokKind]) string {
	toks := store.Tokens()
	items := make([]tokenItem, len(toks))
	for i, t := range toks {
		items[i] = tokenItem{kind: t.Kind, text: t.Text}
	}
	return parseTokens(items)
}

// replayLine applies one `offset;removed;inserted;text` edit instruction to
// store and prints the non-incremental and incremental parse results
// separated by " == ", so a human (or a fuzz harness) can see at a glance
// whether the incremental token store stayed faithful to a from-scratch
// lex+parse of the same edit.
func replayLine(store *lex.Store[TokKind], line string) (string, error) {
	parts := strings.SplitN(line, ";", 4)
	if len(parts) != 4 {
		return "", fmt.Errorf("malformed line %q: expected offset;removed;inserted;text", line)
	}
	offset, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", fmt.Errorf("bad offset: %w", err)
	}
	removed, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", fmt.Errorf("bad removed count: %w", err)
	}
	inserted := parts[2]

	store.Modify(offset, offset+removed, inserted)

	nonIncremental := evaluateFromScratch(store.Source())
	incremental := evaluateIncremental(store)
	return fmt.Sprintf("%s == %s", nonIncremental, incremental), nil
}

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "fathomdemo",
		Short: "Replay source edits through the incremental lexer and packrat parser",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			g := buildGrammar()
			store := lex.NewStore(g, "")

			scanner := bufio.NewScanner(os.Stdin)
			lineNum := 0
			for scanner.Scan() {
				lineNum++
				line := scanner.Text()
				if strings.TrimSpace(line) == "" {
					continue
				}
				if cfg.Trace {
					fmt.Fprintf(cmd.ErrOrStderr(), "line %d: %q (%d tokens before edit)\n", lineNum, line, len(store.Tokens()))
				}
				out, err := replayLine(store, line)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					continue
				}
				if cfg.Verbose {
					fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s\n", lineNum, out)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), out)
				}
			}
			return scanner.Err()
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to a TOML config file (verbose, trace)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
