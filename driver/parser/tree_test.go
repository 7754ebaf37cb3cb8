package parser

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nihei9/lltable/grammar"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func parseTree(t *testing.T, cg *grammar.CompiledGrammar, input string) *Node {
	t.Helper()

	p := newTestParser(t, cg, input)
	err := p.Run()
	if err != nil {
		t.Fatal(err)
	}
	if !p.Accepted() {
		t.Fatalf("%q must be accepted; errors: %v", input, p.Errors())
	}
	tree, err := p.BuildTree(cg.Grammar)
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

func TestBuildTree(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lltable.parser")
	defer teardown()

	cg := compileTestGrammar(t, parenGrammar)
	tree := parseTree(t, cg, "( ( ) )")

	var b strings.Builder
	PrintTree(&b, tree)
	expected := `S
├─ (
├─ S
│  ├─ (
│  ├─ S
│  │  └─ EPSILON
│  ├─ )
│  └─ S
│     └─ EPSILON
├─ )
└─ S
   └─ EPSILON
`
	if b.String() != expected {
		t.Fatalf("unexpected tree; want:\n%v\ngot:\n%v", expected, b.String())
	}

	if tree.Children[1].Key() != "S" || tree.Children[3].Key() != "S_1" {
		t.Fatalf("repeated symbols must be distinguished; got: %v, %v", tree.Children[1].Key(), tree.Children[3].Key())
	}
	if !tree.Children[0].Terminal || !tree.Children[0].IsLeaf() {
		t.Fatalf("a terminal must be a leaf")
	}
}

func TestNode_MarshalJSON(t *testing.T) {
	cg := compileTestGrammar(t, parenGrammar)

	tests := []struct {
		input    string
		expected string
	}{
		{
			input:    "",
			expected: `{"S":{"EPSILON":{}}}`,
		},
		{
			input:    "( ( ) )",
			expected: `{"S":{"(":null,"S":{"(":null,"S":{"EPSILON":{}},")":null,"S_1":{"EPSILON":{}}},")":null,"S_1":{"EPSILON":{}}}}`,
		},
	}
	for _, tt := range tests {
		tree := parseTree(t, cg, tt.input)
		b, err := json.Marshal(tree)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != tt.expected {
			t.Fatalf("unexpected JSON; want: %v, got: %v", tt.expected, string(b))
		}
	}
}

func TestToDisplayTree(t *testing.T) {
	cg := compileTestGrammar(t, parenGrammar)
	tree := parseTree(t, cg, "( )")

	b, err := json.Marshal(ToDisplayTree(tree))
	if err != nil {
		t.Fatal(err)
	}
	expected := `{"text":{"name":"S"},"children":[` +
		`{"text":{"name":"("}},` +
		`{"text":{"name":"S"},"children":[{"text":{"name":"EPSILON"}}]},` +
		`{"text":{"name":")"}},` +
		`{"text":{"name":"S_1"},"children":[{"text":{"name":"EPSILON"}}]}]}`
	if string(b) != expected {
		t.Fatalf("unexpected display tree; want: %v, got: %v", expected, string(b))
	}
}

func TestBuildTree_InvalidHistory(t *testing.T) {
	cg := compileTestGrammar(t, parenGrammar)

	tests := []struct {
		caption string
		history []Derivation
	}{
		{
			caption: "an incomplete derivation",
			history: []Derivation{
				{Production: 0, Rule: 0},
				{Production: 0, Rule: 1},
			},
		},
		{
			caption: "a derivation beyond the tree",
			history: []Derivation{
				{Production: 0, Rule: 1},
				{Production: 0, Rule: 1},
			},
		},
		{
			caption: "a rule out of range",
			history: []Derivation{
				{Production: 0, Rule: 5},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := BuildTree(cg.Grammar, tt.history)
			if err == nil {
				t.Fatal("an error must occur")
			}
		})
	}
}

func TestBuildTree_TransformedGrammar(t *testing.T) {
	cg := compileTestGrammar(t, exprGrammar, grammar.EliminatingLeftRecursion())
	tree := parseTree(t, cg, "id + id")

	b, err := json.Marshal(tree)
	if err != nil {
		t.Fatal(err)
	}
	expected := `{"E":{"T":{"F":{"id":null},"T'":{"EPSILON":{}}},"E'":{"+":null,"T":{"F":{"id":null},"T'":{"EPSILON":{}}},"E'":{"EPSILON":{}}}}}`
	if string(b) != expected {
		t.Fatalf("unexpected JSON; want: %v, got: %v", expected, string(b))
	}
}
