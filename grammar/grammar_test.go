package grammar

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/nihei9/lltable/error"
	"github.com/nihei9/lltable/spec"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestNewGrammar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lltable.grammar")
	defer teardown()

	prod := func(parent string, rules ...Rule) *Production {
		return NewProduction(Symbol(parent), rules...)
	}

	tests := []struct {
		caption      string
		terminals    []Symbol
		nonTerminals []Symbol
		start        Symbol
		prods        []*Production
		errs         []*SemanticError
	}{
		{
			caption:      "a valid grammar",
			terminals:    symbols("a b"),
			nonTerminals: symbols("S"),
			start:        "S",
			prods: []*Production{
				prod("S", NewRule("a", "S", "b"), NewRule("EPSILON")),
			},
		},
		{
			caption:      "an empty rule is an epsilon rule",
			terminals:    symbols("a"),
			nonTerminals: symbols("S"),
			start:        "S",
			prods: []*Production{
				prod("S", NewRule("a"), NewRule()),
			},
		},
		{
			caption:      "terminals must not be duplicated",
			terminals:    symbols("a a"),
			nonTerminals: symbols("S"),
			start:        "S",
			prods: []*Production{
				prod("S", NewRule("a")),
			},
			errs: []*SemanticError{semErrDuplicateTerminal},
		},
		{
			caption:      "non-terminals must not be duplicated",
			terminals:    symbols("a"),
			nonTerminals: symbols("S S"),
			start:        "S",
			prods: []*Production{
				prod("S", NewRule("a")),
			},
			errs: []*SemanticError{semErrDuplicateNonTerminal},
		},
		{
			caption:      "a symbol cannot be both a terminal and a non-terminal",
			terminals:    symbols("a S"),
			nonTerminals: symbols("S"),
			start:        "S",
			prods: []*Production{
				prod("S", NewRule("a")),
			},
			errs: []*SemanticError{semErrDuplicateName},
		},
		{
			caption:      "reserved symbols cannot be declared",
			terminals:    symbols("a $"),
			nonTerminals: symbols("S EPSILON"),
			start:        "S",
			prods: []*Production{
				prod("S", NewRule("a")),
			},
			errs: []*SemanticError{semErrReservedSymbol},
		},
		{
			caption:      "a start symbol is required",
			terminals:    symbols("a"),
			nonTerminals: symbols("S"),
			prods: []*Production{
				prod("S", NewRule("a")),
			},
			errs: []*SemanticError{semErrNoStartSymbol},
		},
		{
			caption:      "a start symbol must be a non-terminal",
			terminals:    symbols("a"),
			nonTerminals: symbols("S"),
			start:        "a",
			prods: []*Production{
				prod("S", NewRule("a")),
			},
			errs: []*SemanticError{semErrStartNotNonTerminal},
		},
		{
			caption:      "a parent must be a declared non-terminal",
			terminals:    symbols("a"),
			nonTerminals: symbols("S"),
			start:        "S",
			prods: []*Production{
				prod("S", NewRule("a")),
				prod("T", NewRule("a")),
			},
			errs: []*SemanticError{semErrUndefinedNonTerminal},
		},
		{
			caption:      "a non-terminal has only one production",
			terminals:    symbols("a b"),
			nonTerminals: symbols("S"),
			start:        "S",
			prods: []*Production{
				prod("S", NewRule("a")),
				prod("S", NewRule("b")),
			},
			errs: []*SemanticError{semErrDuplicateProduction},
		},
		{
			caption:      "a rule must consist of declared symbols",
			terminals:    symbols("a"),
			nonTerminals: symbols("S"),
			start:        "S",
			prods: []*Production{
				prod("S", NewRule("a", "b")),
			},
			errs: []*SemanticError{semErrUndefinedSym},
		},
		{
			caption:      "EPSILON must be the only symbol of a rule",
			terminals:    symbols("a"),
			nonTerminals: symbols("S"),
			start:        "S",
			prods: []*Production{
				prod("S", NewRule("a", "EPSILON")),
			},
			errs: []*SemanticError{semErrMisplacedEpsilon},
		},
		{
			caption:      "every non-terminal needs a production",
			terminals:    symbols("a"),
			nonTerminals: symbols("S T"),
			start:        "S",
			prods: []*Production{
				prod("S", NewRule("a")),
			},
			errs: []*SemanticError{semErrNoRule},
		},
		{
			caption:      "all the violations are reported together",
			terminals:    symbols("a a"),
			nonTerminals: symbols("S"),
			start:        "a",
			prods: []*Production{
				prod("S", NewRule("x")),
			},
			errs: []*SemanticError{semErrDuplicateTerminal, semErrStartNotNonTerminal, semErrUndefinedSym},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			gram, err := NewGrammar(tt.terminals, tt.nonTerminals, tt.start, tt.prods)
			if len(tt.errs) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if gram == nil {
					t.Fatal("a grammar must be non-nil")
				}
				return
			}
			if err == nil {
				t.Fatal("an error is expected")
			}
			for _, e := range tt.errs {
				if !errors.Is(err, e) {
					t.Fatalf("unexpected error; want: %v, got: %v", e, err)
				}
			}
		})
	}
}

func TestGrammar_Accessors(t *testing.T) {
	gram := newTestGrammar(t, "+ id", "E T", "E",
		"E : T + E | T",
		"T : id",
	)

	testSymbols(t, gram.Terminals(), symbols("+ id"))
	testSymbols(t, gram.NonTerminals(), symbols("E T"))
	if gram.Start() != "E" {
		t.Fatalf("unexpected start symbol; want: E, got: %v", gram.Start())
	}
	if !gram.IsTerminal("id") || !gram.IsTerminal(EndMarker) || gram.IsTerminal("E") {
		t.Fatal("IsTerminal returns an unexpected result")
	}
	if !gram.IsNonTerminal("T") || gram.IsNonTerminal("+") || gram.IsNonTerminal(Epsilon) {
		t.Fatal("IsNonTerminal returns an unexpected result")
	}

	prod, idx, ok := gram.ProductionOf("T")
	if !ok || idx != 1 || prod.Parent != "T" {
		t.Fatalf("unexpected production; want: T (#1), got: %v (#%v)", prod, idx)
	}
	_, r, err := gram.Rule(0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Equal(NewRule("T")) {
		t.Fatalf("unexpected rule; want: T, got: %v", r)
	}
	if _, _, err := gram.Rule(0, 2); !errors.Is(err, semErrIndexOutOfRange) {
		t.Fatalf("unexpected error; want: %v, got: %v", semErrIndexOutOfRange, err)
	}
	if _, err := gram.Production(2); !errors.Is(err, semErrIndexOutOfRange) {
		t.Fatalf("unexpected error; want: %v, got: %v", semErrIndexOutOfRange, err)
	}

	expected := "E -> T + E | T\nT -> id\n"
	if gram.String() != expected {
		t.Fatalf("unexpected string; want: %q, got: %q", expected, gram.String())
	}
}

func TestRule(t *testing.T) {
	tests := []struct {
		caption string
		rule    Rule
		epsilon bool
		str     string
	}{
		{
			caption: "an empty rule derives the empty string",
			rule:    NewRule(),
			epsilon: true,
			str:     "EPSILON",
		},
		{
			caption: "a rule consisting of only EPSILON derives the empty string",
			rule:    NewRule("EPSILON"),
			epsilon: true,
			str:     "EPSILON",
		},
		{
			caption: "a rule having symbols",
			rule:    NewRule("a", "S", "b"),
			str:     "a S b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			if tt.rule.IsEpsilon() != tt.epsilon {
				t.Fatalf("unexpected IsEpsilon; want: %v, got: %v", tt.epsilon, tt.rule.IsEpsilon())
			}
			if tt.rule.String() != tt.str {
				t.Fatalf("unexpected string; want: %v, got: %v", tt.str, tt.rule.String())
			}
			if tt.epsilon && len(tt.rule.Symbols()) != 0 {
				t.Fatalf("an epsilon rule has no symbols; got: %v", tt.rule.Symbols())
			}
		})
	}

	if !NewRule().Equal(NewRule("EPSILON")) {
		t.Fatal("an empty rule and an EPSILON rule must be equal")
	}
	if !NewRule("a", "b").HasPrefix(NewRule("a")) || NewRule("a").HasPrefix(NewRule("a", "b")) {
		t.Fatal("HasPrefix returns an unexpected result")
	}
}

func TestGrammarBuilder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lltable.grammar")
	defer teardown()

	tests := []struct {
		caption string
		src     string
		errs    []*SemanticError
		rows    []int
		prods   string
	}{
		{
			caption: "rules with the same LHS are merged in order of appearance",
			src: `%terminals
( )
%end
%non_terminals
S
%end
%start
S
%end
%rules
S : ( S ) S
S : EPSILON
%end
`,
			prods: "S -> ( S ) S | EPSILON\n",
		},
		{
			caption: "productions are ordered by the first appearance of their LHS",
			src: `%terminals
+ id
%end
%non_terminals
E T
%end
%start
E
%end
%rules
T : id
E : T + E
E : T
%end
`,
			prods: "T -> id\nE -> T + E | T\n",
		},
		{
			caption: "errors are reported with their rows",
			src: `%terminals
a a
%end
%non_terminals
S T U
%end
%start
S
%end
%rules
S : a b
V : a
T : a EPSILON
S : a
T : a
%end
`,
			errs: []*SemanticError{
				semErrDuplicateTerminal,
				semErrNoRule,
				semErrUndefinedSym,
				semErrUndefinedNonTerminal,
				semErrMisplacedEpsilon,
			},
			rows: []int{2, 5, 11, 12, 13},
		},
		{
			caption: "a start symbol is required",
			src: `%terminals
a
%end
%non_terminals
S
%end
%rules
S : a
%end
`,
			errs: []*SemanticError{semErrNoStartSymbol},
			rows: []int{0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			ast, err := spec.Parse(strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			b := GrammarBuilder{
				AST: ast,
			}
			gram, err := b.Build()
			if len(tt.errs) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if gram.String() != tt.prods {
					t.Fatalf("unexpected productions; want: %q, got: %q", tt.prods, gram.String())
				}
				return
			}
			specErrs, ok := err.(verr.SpecErrors)
			if !ok {
				t.Fatalf("unexpected error type; want: verr.SpecErrors, got: %T (%v)", err, err)
			}
			if len(specErrs) != len(tt.errs) {
				t.Fatalf("unexpected error count; want: %v, got: %v (%v)", len(tt.errs), len(specErrs), specErrs)
			}
			for i, e := range specErrs {
				if !errors.Is(e, tt.errs[i]) {
					t.Fatalf("unexpected error; want: %v, got: %v", tt.errs[i], e)
				}
				if e.Row != tt.rows[i] {
					t.Fatalf("unexpected row of %v; want: %v, got: %v", e, tt.rows[i], e.Row)
				}
			}
		})
	}
}
