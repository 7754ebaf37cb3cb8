package grammar

import (
	"strings"
	"testing"

	"github.com/nihei9/lltable/spec"
)

func buildTestGrammar(t *testing.T, src string) *Grammar {
	t.Helper()

	ast, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("failed to parse a grammar: %v", err)
	}
	b := GrammarBuilder{
		AST: ast,
	}
	gram, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build a grammar: %v", err)
	}
	return gram
}

// newTestGrammar makes a grammar from a compact notation. Each line of rules is `A : x y | z`.
func newTestGrammar(t *testing.T, terminals, nonTerminals, start string, rules ...string) *Grammar {
	t.Helper()

	var prods []*Production
	for _, line := range rules {
		lhsRHS := strings.SplitN(line, ":", 2)
		if len(lhsRHS) != 2 {
			t.Fatalf("invalid rule: %v", line)
		}
		prod := NewProduction(Symbol(strings.TrimSpace(lhsRHS[0])))
		for _, alt := range strings.Split(lhsRHS[1], "|") {
			prod.Rules = append(prod.Rules, NewRule(strings.Fields(alt)...))
		}
		prods = append(prods, prod)
	}
	gram, err := NewGrammar(symbols(terminals), symbols(nonTerminals), Symbol(start), prods)
	if err != nil {
		t.Fatalf("failed to make a grammar: %v", err)
	}
	return gram
}

func symbols(text string) []Symbol {
	var syms []Symbol
	for _, f := range strings.Fields(text) {
		syms = append(syms, Symbol(f))
	}
	return syms
}

func testSymbols(t *testing.T, syms, expected []Symbol) {
	t.Helper()
	if len(syms) != len(expected) {
		t.Fatalf("unexpected symbols; want: %v, got: %v", expected, syms)
	}
	for i, sym := range syms {
		if sym != expected[i] {
			t.Fatalf("unexpected symbols; want: %v, got: %v", expected, syms)
		}
	}
}
