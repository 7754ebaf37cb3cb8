package grammar

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestGenFollowSet(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lltable.grammar")
	defer teardown()

	tests := []struct {
		caption string
		gram    func(t *testing.T) *Grammar
		follow  map[Symbol][]Symbol
	}{
		{
			caption: "FOLLOW of the expression grammar",
			gram:    newExprGrammar,
			follow: map[Symbol][]Symbol{
				"E":  symbols("$ )"),
				"E'": symbols("$ )"),
				"T":  symbols("$ ) +"),
				"T'": symbols("$ ) +"),
				"F":  symbols("$ ) * +"),
			},
		},
		{
			caption: "FOLLOW of the balanced parentheses grammar",
			gram: func(t *testing.T) *Grammar {
				return newTestGrammar(t, "a b", "S", "S",
					"S : a S b | EPSILON",
				)
			},
			follow: map[Symbol][]Symbol{
				"S": symbols("$ b"),
			},
		},
		{
			caption: "FOLLOW of the parent flows through nullable suffixes",
			gram: func(t *testing.T) *Grammar {
				return newTestGrammar(t, "a b c", "S A B", "S",
					"S : A B | c S",
					"A : a",
					"B : b | EPSILON",
				)
			},
			follow: map[Symbol][]Symbol{
				"S": symbols("$"),
				"A": symbols("$ b"),
				"B": symbols("$"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			gram := tt.gram(t)
			fst, err := GenFirstSet(gram)
			if err != nil {
				t.Fatal(err)
			}
			flw, err := GenFollowSet(gram, fst)
			if err != nil {
				t.Fatal(err)
			}
			for _, nt := range gram.NonTerminals() {
				e, err := flw.FollowOf(nt)
				if err != nil {
					t.Fatal(err)
				}
				testSymbols(t, e.Symbols(), tt.follow[nt])
			}
			entries := flw.Entries()
			if len(entries) != len(gram.NonTerminals()) {
				t.Fatalf("unexpected entry count; want: %v, got: %v", len(gram.NonTerminals()), len(entries))
			}
		})
	}
}

func TestNewFollowSet(t *testing.T) {
	gram := newTestGrammar(t, "a b", "S", "S",
		"S : a S b | EPSILON",
	)

	flw, err := NewFollowSet(gram, map[Symbol][]Symbol{
		"S": symbols("$ b"),
	})
	if err != nil {
		t.Fatal(err)
	}
	e, err := flw.FollowOf("S")
	if err != nil {
		t.Fatal(err)
	}
	testSymbols(t, e.Symbols(), symbols("$ b"))

	_, err = NewFollowSet(gram, map[Symbol][]Symbol{
		"S": symbols("$ EPSILON"),
	})
	if err == nil {
		t.Fatal("FOLLOW containing EPSILON must be rejected")
	}
	if _, err := flw.FollowOf("T"); err == nil {
		t.Fatal("FOLLOW of an unknown symbol must be an error")
	}
}
