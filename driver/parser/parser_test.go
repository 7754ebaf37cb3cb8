package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/nihei9/lltable/grammar"
	"github.com/nihei9/lltable/spec"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

const parenGrammar = `
%terminals
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
`

const exprGrammar = `
%terminals
+ * ( ) id
%end
%non_terminals
E T F
%end
%start
E
%end
%rules
E : E + T
E : T
T : T * F
T : F
F : ( E )
F : id
%end
`

func compileTestGrammar(t *testing.T, src string, opts ...grammar.CompileOption) *grammar.CompiledGrammar {
	t.Helper()

	ast, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	b := grammar.GrammarBuilder{
		AST: ast,
	}
	gram, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	cg, err := grammar.Compile(gram, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return cg
}

func newTestParser(t *testing.T, cg *grammar.CompiledGrammar, input string, opts ...ParserOption) *Parser {
	t.Helper()

	p, err := NewParser(NewGrammar(cg.Table), NewSymbolStream(strings.Fields(input)...), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestParser_Run(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lltable.parser")
	defer teardown()

	cg := compileTestGrammar(t, parenGrammar)
	p := newTestParser(t, cg, "( ( ) )")
	err := p.Run()
	if err != nil {
		t.Fatal(err)
	}
	if !p.Accepted() {
		t.Fatalf("the input must be accepted; errors: %v", p.Errors())
	}
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}

	expectedHistory := []Derivation{
		{Production: 0, Rule: 0},
		{Production: 0, Rule: 0},
		{Production: 0, Rule: 1},
		{Production: 0, Rule: 1},
		{Production: 0, Rule: 1},
	}
	history := p.History()
	if len(history) != len(expectedHistory) {
		t.Fatalf("unexpected history; want: %v, got: %v", expectedHistory, history)
	}
	for i, d := range history {
		if d != expectedHistory[i] {
			t.Fatalf("unexpected derivation #%v; want: %v, got: %v", i, expectedHistory[i], d)
		}
	}

	expectedTrace := []struct {
		stack  string
		input  grammar.Symbol
		action string
	}{
		{stack: "$ S", input: "(", action: "S -> ( S ) S"},
		{stack: "$ S ) S (", input: "(", action: "match"},
		{stack: "$ S ) S", input: "(", action: "S -> ( S ) S"},
		{stack: "$ S ) S ) S (", input: "(", action: "match"},
		{stack: "$ S ) S ) S", input: ")", action: "S -> EPSILON"},
		{stack: "$ S ) S )", input: ")", action: "match"},
		{stack: "$ S ) S", input: ")", action: "S -> EPSILON"},
		{stack: "$ S )", input: ")", action: "match"},
		{stack: "$ S", input: "$", action: "S -> EPSILON"},
		{stack: "$", input: "$", action: "accept"},
	}
	trace := p.Trace()
	if len(trace) != len(expectedTrace) {
		t.Fatalf("unexpected trace length; want: %v, got: %v", len(expectedTrace), len(trace))
	}
	for i, r := range trace {
		e := expectedTrace[i]
		if joinSymbols(r.Stack) != e.stack || r.Input != e.input || r.Action != e.action {
			t.Fatalf("unexpected trace record #%v; want: [%v] %v %v, got: [%v] %v %v", i, e.stack, e.input, e.action, joinSymbols(r.Stack), r.Input, r.Action)
		}
		if r.StackTop != r.Stack[len(r.Stack)-1] {
			t.Fatalf("the stack top must be the last symbol of the stack; got: %v, %v", r.StackTop, r.Stack)
		}
	}
	if joinSymbols(p.Stack()) != "$" {
		t.Fatalf("unexpected stack; want: [$], got: %v", p.Stack())
	}
}

func joinSymbols(syms []grammar.Symbol) string {
	var b strings.Builder
	for i, sym := range syms {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(sym.String())
	}
	return b.String()
}

func TestParser_Recovery(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lltable.parser")
	defer teardown()

	parenCG := compileTestGrammar(t, parenGrammar)
	exprCG := compileTestGrammar(t, exprGrammar, grammar.EliminatingLeftRecursion())

	tests := []struct {
		caption   string
		cg        *grammar.CompiledGrammar
		input     string
		errKinds  []ParseErrorKind
		exhausted bool
	}{
		{
			caption:   "a missing terminal",
			cg:        parenCG,
			input:     "( ( )",
			errKinds:  []ParseErrorKind{ParseErrorTerminalMismatch},
			exhausted: true,
		},
		{
			caption:  "an extra terminal",
			cg:       parenCG,
			input:    "( ) )",
			errKinds: []ParseErrorKind{ParseErrorTerminalMismatch},
		},
		{
			caption:  "a missing operand is given up by a synch entry",
			cg:       exprCG,
			input:    "id + )",
			errKinds: []ParseErrorKind{ParseErrorSynch, ParseErrorTerminalMismatch},
		},
		{
			caption:  "a lookahead without any rule is discarded",
			cg:       exprCG,
			input:    "+ id",
			errKinds: []ParseErrorKind{ParseErrorNoRule},
		},
		{
			caption:  "an unknown terminal is discarded",
			cg:       exprCG,
			input:    "id ? + id",
			errKinds: []ParseErrorKind{ParseErrorNoRule},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			p := newTestParser(t, tt.cg, tt.input)
			err := p.Run()
			if err != nil {
				t.Fatal(err)
			}
			if !p.IsComplete() {
				t.Fatal("the parser must complete")
			}
			if p.Accepted() {
				t.Fatal("the input must not be accepted")
			}
			errs := p.Errors()
			if len(errs) != len(tt.errKinds) {
				t.Fatalf("unexpected errors; want: %v, got: %v", tt.errKinds, errs)
			}
			for i, e := range errs {
				if e.Kind != tt.errKinds[i] {
					t.Fatalf("unexpected error #%v; want: %v, got: %v", i, tt.errKinds[i], e.Kind)
				}
			}
			if tt.exhausted {
				if p.Lookahead() != nil {
					t.Fatalf("the input must be exhausted")
				}
				if p.Trace()[len(p.Trace())-1].Action != "reject" {
					t.Fatalf("the last action must be reject")
				}
			} else if joinSymbols(p.Stack()) != "$" {
				t.Fatalf("the stack must be [$]; got: %v", p.Stack())
			}
			if p.Steps() > 2*(p.Pushes()+p.InputLength()) {
				t.Fatalf("too many steps; steps: %v, pushes: %v, input: %v", p.Steps(), p.Pushes(), p.InputLength())
			}
			if _, err := p.BuildTree(tt.cg.Grammar); !errors.Is(err, ErrTreeBuildSkipped) {
				t.Fatalf("unexpected error; want: %v, got: %v", ErrTreeBuildSkipped, err)
			}
		})
	}
}

func TestParser_RecoveryHalt(t *testing.T) {
	cg := compileTestGrammar(t, parenGrammar)
	p := newTestParser(t, cg, ") ) ( (", RecoveryPolicy(RecoveryHalt))
	err := p.Run()
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsComplete() || p.Accepted() {
		t.Fatal("the parser must halt without accepting the input")
	}
	if len(p.Errors()) != 1 {
		t.Fatalf("the parser must halt at the first error; got: %v", p.Errors())
	}
	if p.Lookahead().Terminal() != ")" {
		t.Fatalf("the lookahead must stay at the error; got: %v", p.Lookahead().Terminal())
	}
}

func TestParser_MaxSteps(t *testing.T) {
	cg := compileTestGrammar(t, parenGrammar)
	p := newTestParser(t, cg, "( ( ) )", MaxSteps(3))
	err := p.Run()
	if !errors.Is(err, ErrStepLimit) {
		t.Fatalf("unexpected error; want: %v, got: %v", ErrStepLimit, err)
	}

	if p.Steps() != 3 {
		t.Fatalf("the parser must stop at the limit; want: 3 steps, got: %v", p.Steps())
	}

	// "( ( ) )" is accepted in exactly 10 steps.
	p = newTestParser(t, cg, "( ( ) )", MaxSteps(10))
	err = p.Run()
	if err != nil {
		t.Fatalf("a parse completing at the limit must succeed; got: %v", err)
	}
	if !p.Accepted() {
		t.Fatal("the input must be accepted")
	}

	p = newTestParser(t, cg, "( ( ) )", MaxSteps(9))
	err = p.Run()
	if !errors.Is(err, ErrStepLimit) {
		t.Fatalf("unexpected error; want: %v, got: %v", ErrStepLimit, err)
	}
	if p.Steps() != 9 {
		t.Fatalf("the parser must not take more steps than the limit; want: 9, got: %v", p.Steps())
	}

	if _, err := NewParser(NewGrammar(cg.Table), NewSymbolStream(), MaxSteps(-1)); err == nil {
		t.Fatal("a negative step limit must be rejected")
	}
}

func TestNewParser_ReservedTerminal(t *testing.T) {
	cg := compileTestGrammar(t, parenGrammar)

	tests := []struct {
		caption string
		input   []string
	}{
		{
			caption: "an end-marker in the middle of an input is rejected",
			input:   []string{"(", ")", "$", "(", "(", "("},
		},
		{
			caption: "a trailing end-marker is rejected because the end-marker is implicit",
			input:   []string{"(", ")", "$"},
		},
		{
			caption: "EPSILON is not an input token",
			input:   []string{"(", "EPSILON", ")"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := NewParser(NewGrammar(cg.Table), NewSymbolStream(tt.input...))
			if !errors.Is(err, ErrReservedTerminal) {
				t.Fatalf("unexpected error; want: %v, got: %v", ErrReservedTerminal, err)
			}
		})
	}

	p, err := NewParser(NewGrammar(cg.Table), NewSymbolStream("(", ")"))
	if err != nil {
		t.Fatal(err)
	}
	if p.InputLength() != 3 {
		t.Fatalf("unexpected input length; want: 3, got: %v", p.InputLength())
	}
}

func TestParser_StepAndRunAreEquivalent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lltable.parser")
	defer teardown()

	cg := compileTestGrammar(t, exprGrammar, grammar.EliminatingLeftRecursion())
	inputs := []string{
		"id + id * id",
		"( id + id ) * id",
		"id + * id",
		") id ( + id",
		"id id",
		"",
	}
	for _, input := range inputs {
		run := newTestParser(t, cg, input)
		err := run.Run()
		if err != nil {
			t.Fatal(err)
		}

		step := newTestParser(t, cg, input)
		for !step.IsComplete() {
			err := step.Step()
			if err != nil {
				t.Fatal(err)
			}
		}
		err = step.Step()
		if err != nil {
			t.Fatal(err)
		}

		if run.Accepted() != step.Accepted() {
			t.Fatalf("%q: unexpected result; run: %v, step: %v", input, run.Accepted(), step.Accepted())
		}
		if len(run.Errors()) != len(step.Errors()) || len(run.History()) != len(step.History()) || len(run.Trace()) != len(step.Trace()) {
			t.Fatalf("%q: the results differ", input)
		}
		for i, r := range run.Trace() {
			s := step.Trace()[i]
			if r.Action != s.Action || r.Input != s.Input || joinSymbols(r.Stack) != joinSymbols(s.Stack) {
				t.Fatalf("%q: trace record #%v differs; run: %v, step: %v", input, i, r, s)
			}
		}

		step.Reset()
		err = step.Run()
		if err != nil {
			t.Fatal(err)
		}
		if len(run.Trace()) != len(step.Trace()) {
			t.Fatalf("%q: a reset parser must run the same way", input)
		}
	}
}

func TestParser_LanguagePreservation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lltable.parser")
	defer teardown()

	cg := compileTestGrammar(t, exprGrammar, grammar.EliminatingLeftRecursion(), grammar.FactoringLeft(false))
	if !cg.Table.IsLL1() {
		t.Fatalf("the transformed grammar must be LL(1); conflicts: %v", cg.Table.Conflicts())
	}

	tests := []struct {
		input    string
		accepted bool
	}{
		{input: "id", accepted: true},
		{input: "id + id", accepted: true},
		{input: "id * id + id", accepted: true},
		{input: "( id + id ) * id", accepted: true},
		{input: "( ( id ) )", accepted: true},
		{input: "id + id + id * id * id", accepted: true},
		{input: "", accepted: false},
		{input: "id +", accepted: false},
		{input: "( id", accepted: false},
		{input: "id id", accepted: false},
		{input: "* id", accepted: false},
	}
	for _, tt := range tests {
		p := newTestParser(t, cg, tt.input)
		err := p.Run()
		if err != nil {
			t.Fatal(err)
		}
		if p.Accepted() != tt.accepted {
			t.Fatalf("%q: unexpected result; want: %v, got: %v (errors: %v)", tt.input, tt.accepted, p.Accepted(), p.Errors())
		}
	}
}

func TestParseError_Error(t *testing.T) {
	cg := compileTestGrammar(t, parenGrammar)
	p := newTestParser(t, cg, "( ( )")
	err := p.Run()
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Errors()) != 1 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	expected := "parser error: at symbol: $: terminal mismatch; stack top: ); expected: [)]"
	if p.Errors()[0].Error() != expected {
		t.Fatalf("unexpected message; want: %v, got: %v", expected, p.Errors()[0].Error())
	}
}
