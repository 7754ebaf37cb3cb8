package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/nihei9/lltable/grammar"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lltable.parser'.
func tracer() tracing.Trace {
	return tracing.Select("lltable.parser")
}

type ParseErrorKind string

const (
	// ParseErrorTerminalMismatch means that a terminal on the stack top differs from the lookahead.
	ParseErrorTerminalMismatch = ParseErrorKind("terminal mismatch")

	// ParseErrorNoRule means that the parsing table has no entry for a non-terminal and the lookahead.
	ParseErrorNoRule = ParseErrorKind("no production rule")

	// ParseErrorSynch means that the parser gave up a non-terminal because the lookahead can follow it.
	ParseErrorSynch = ParseErrorKind("synch")
)

type ParseError struct {
	Kind              ParseErrorKind
	StackTop          grammar.Symbol
	Token             VToken
	Row               int
	Col               int
	ExpectedTerminals []grammar.Symbol
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parser error: at symbol: %v", e.Token.Terminal())
	if e.Row > 0 {
		fmt.Fprintf(&b, " (%v:%v)", e.Row, e.Col)
	}
	fmt.Fprintf(&b, ": %v; stack top: %v", e.Kind, e.StackTop)
	if len(e.ExpectedTerminals) > 0 {
		fmt.Fprintf(&b, "; expected: %v", e.ExpectedTerminals)
	}
	return b.String()
}

// Derivation is a step of a leftmost derivation: the rule `Rule` of the production `Production` was applied.
type Derivation struct {
	Production int
	Rule       int
}

const (
	actionMatch            = "match"
	actionTerminalMismatch = "error: terminal mismatch"
	actionNoRule           = "error: no production rule"
	actionSynch            = "sync: skipping non-terminal"
	actionAccept           = "accept"
	actionReject           = "reject"
)

// TraceRecord is a snapshot of the parser taken before each transition. Stack lists the symbols from the bottom.
type TraceRecord struct {
	StackTop grammar.Symbol
	Stack    []grammar.Symbol
	Input    grammar.Symbol
	Action   string
}

type Recovery int

const (
	// RecoverySkip records an error and goes on by discarding the lookahead or the stack top.
	RecoverySkip Recovery = iota

	// RecoveryHalt stops parsing at the first error.
	RecoveryHalt
)

var ErrStepLimit = errors.New("the parser exceeded the step limit")

// ErrReservedTerminal means an input contains a token standing for `$` or EPSILON. The end-marker is always
// implicit.
var ErrReservedTerminal = errors.New("an input token must not be a reserved symbol")

type ParserOption func(p *Parser) error

func RecoveryPolicy(r Recovery) ParserOption {
	return func(p *Parser) error {
		if r != RecoverySkip && r != RecoveryHalt {
			return fmt.Errorf("invalid recovery policy: %v", r)
		}
		p.recovery = r
		return nil
	}
}

// MaxSteps makes Run fail when parsing takes more than n transitions. 0 means no limit.
func MaxSteps(n int) ParserOption {
	return func(p *Parser) error {
		if n < 0 {
			return fmt.Errorf("the step limit must be 0 or more: %v", n)
		}
		p.maxSteps = n
		return nil
	}
}

// Parser is an LL(1) parser driven by a parsing table. A parser holds the state of one parse and must not be
// shared among goroutines.
type Parser struct {
	gram     Grammar
	input    []VToken
	recovery Recovery
	maxSteps int

	stack    *arraystack.Stack
	cursor   int
	halted   bool
	accepted bool
	errs     []*ParseError
	history  []Derivation
	trace    []*TraceRecord
	steps    int
	pushes   int
}

// NewParser reads all the tokens of ts, appends the end-marker, and returns a parser ready to start.
func NewParser(gram Grammar, ts TokenStream, opts ...ParserOption) (*Parser, error) {
	var input []VToken
	for {
		tok, err := ts.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			input = append(input, tok)
			break
		}
		if term := tok.Terminal(); term.IsEndMarker() || term.IsEpsilon() {
			return nil, fmt.Errorf("%w: token #%v: %v", ErrReservedTerminal, len(input), term)
		}
		input = append(input, tok)
	}

	p := &Parser{
		gram:  gram,
		input: input,
	}
	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}
	p.Reset()

	return p, nil
}

// Reset brings the parser back to the initial state: the stack is [$, start] and the cursor is on the first token.
func (p *Parser) Reset() {
	p.stack = arraystack.New()
	p.stack.Push(grammar.EndMarker)
	p.stack.Push(p.gram.Start())
	p.pushes = 2
	p.cursor = 0
	p.halted = false
	p.accepted = false
	p.errs = nil
	p.history = nil
	p.trace = nil
	p.steps = 0
}

// IsComplete reports whether the parser reached a final state. The parser completes when the end-marker on the
// stack meets the end of the input, when the input is exhausted, or when it halts on an error.
func (p *Parser) IsComplete() bool {
	return p.halted || p.accepted
}

// Step performs one transition. Lookahead tokens having no way to continue are discarded, each with an error,
// before the transition; the number of discarded tokens is bounded by the rest of the input. Calling Step on a
// complete parser does nothing.
func (p *Parser) Step() error {
	for {
		if p.halted || p.accepted {
			return nil
		}
		if p.cursor >= len(p.input) {
			p.record(actionReject)
			p.halted = true
			tracer().Infof("rejected; %v errors", len(p.errs))
			return nil
		}

		top := p.top()
		tok := p.lookahead()
		term := tok.Terminal()

		if top == grammar.EndMarker && tok.EOF() {
			p.record(actionAccept)
			p.accepted = true
			if len(p.errs) > 0 {
				tracer().Infof("completed with %v errors", len(p.errs))
			}
			return nil
		}

		if p.gram.IsTerminal(top) {
			if top == term {
				p.record(actionMatch)
				p.pop()
				p.cursor++
				return nil
			}
			p.record(actionTerminalMismatch)
			p.addError(ParseErrorTerminalMismatch, top, tok, []grammar.Symbol{top})
			if p.recovery == RecoveryHalt {
				p.halted = true
				return nil
			}
			p.cursor++
			continue
		}

		e := p.gram.Lookup(top, term)
		switch {
		case e.IsDerive():
			prod, r, err := p.gram.Rule(e)
			if err != nil {
				return err
			}
			p.record(fmt.Sprintf("%v -> %v", prod.Parent, r))
			p.pop()
			syms := r.Symbols()
			for i := len(syms) - 1; i >= 0; i-- {
				p.push(syms[i])
			}
			p.history = append(p.history, Derivation{
				Production: e.Production,
				Rule:       e.Rule,
			})
			return nil
		case e.IsSynch():
			p.record(actionSynch)
			p.addError(ParseErrorSynch, top, tok, p.gram.ExpectedTerminals(top))
			if p.recovery == RecoveryHalt {
				p.halted = true
				return nil
			}
			p.pop()
			return nil
		default:
			p.record(actionNoRule)
			p.addError(ParseErrorNoRule, top, tok, p.gram.ExpectedTerminals(top))
			if p.recovery == RecoveryHalt {
				p.halted = true
				return nil
			}
			p.cursor++
		}
	}
}

// Run steps until the parser completes. It behaves exactly like calling Step until IsComplete returns true.
func (p *Parser) Run() error {
	for !p.IsComplete() {
		err := p.Step()
		if err != nil {
			return err
		}
		if p.maxSteps == 0 {
			continue
		}
		if p.steps > p.maxSteps || (p.steps == p.maxSteps && !p.IsComplete()) {
			return fmt.Errorf("%w: %v", ErrStepLimit, p.maxSteps)
		}
	}
	return nil
}

// Accepted reports whether the parser consumed the whole input without any error.
func (p *Parser) Accepted() bool {
	return p.accepted && len(p.errs) == 0 && p.stack.Size() == 1
}

func (p *Parser) Errors() []*ParseError {
	return p.errs
}

// History returns the derivation steps in the order they were taken.
func (p *Parser) History() []Derivation {
	return p.history
}

func (p *Parser) Trace() []*TraceRecord {
	return p.trace
}

// Stack returns the symbols on the stack from the bottom.
func (p *Parser) Stack() []grammar.Symbol {
	vals := p.stack.Values()
	syms := make([]grammar.Symbol, len(vals))
	for i, v := range vals {
		syms[len(vals)-1-i] = v.(grammar.Symbol)
	}
	return syms
}

// Lookahead returns the current token. It returns nil when the input is exhausted.
func (p *Parser) Lookahead() VToken {
	if p.cursor >= len(p.input) {
		return nil
	}
	return p.input[p.cursor]
}

// Steps returns the number of transitions taken so far, each discarded token included.
func (p *Parser) Steps() int {
	return p.steps
}

// Pushes returns the number of symbols ever pushed onto the stack, the initial two included.
func (p *Parser) Pushes() int {
	return p.pushes
}

// InputLength returns the number of tokens including the end-marker.
func (p *Parser) InputLength() int {
	return len(p.input)
}

func (p *Parser) lookahead() VToken {
	if p.cursor >= len(p.input) {
		return p.input[len(p.input)-1]
	}
	return p.input[p.cursor]
}

func (p *Parser) top() grammar.Symbol {
	v, ok := p.stack.Peek()
	if !ok {
		return ""
	}
	return v.(grammar.Symbol)
}

func (p *Parser) push(sym grammar.Symbol) {
	p.stack.Push(sym)
	p.pushes++
}

func (p *Parser) pop() {
	p.stack.Pop()
}

func (p *Parser) record(action string) {
	p.steps++
	input := grammar.EndMarker
	if p.cursor < len(p.input) {
		input = p.input[p.cursor].Terminal()
	}
	p.trace = append(p.trace, &TraceRecord{
		StackTop: p.top(),
		Stack:    p.Stack(),
		Input:    input,
		Action:   action,
	})
	tracer().Debugf("%v | %v | %v", p.Stack(), input, action)
}

func (p *Parser) addError(kind ParseErrorKind, top grammar.Symbol, tok VToken, expected []grammar.Symbol) {
	row, col := tok.Position()
	p.errs = append(p.errs, &ParseError{
		Kind:              kind,
		StackTop:          top,
		Token:             tok,
		Row:               row,
		Col:               col,
		ExpectedTerminals: expected,
	})
}
