package grammar

import (
	"fmt"

	"github.com/nihei9/lltable/driver/lexer"
	"github.com/nihei9/lltable/driver/parser"
	"github.com/nihei9/lltable/grammar"
	"go.uber.org/multierr"
)

// Token is the interchange form of a token. Line is 1-based.
type Token struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Line  int    `json:"line"`
	Error bool   `json:"error"`
}

func NewTokens(toks []*lexer.Token) []*Token {
	var ts []*Token
	for _, tok := range toks {
		if tok.EOF {
			continue
		}
		ts = append(ts, &Token{
			Type:  tok.Terminal,
			Value: tok.Text,
			Line:  tok.Row,
			Error: tok.Invalid,
		})
	}
	return ts
}

// LexerTokens converts interchange tokens into the tokens the parser reads. The type of a token becomes its
// terminal.
func LexerTokens(ts []*Token) []*lexer.Token {
	toks := make([]*lexer.Token, len(ts))
	for i, t := range ts {
		toks[i] = &lexer.Token{
			Kind:     t.Type,
			Terminal: t.Type,
			Text:     t.Value,
			Row:      t.Line,
			Invalid:  t.Error,
		}
	}
	return toks
}

// NewHistory encodes derivation steps with the packed encoding of the parsing table.
func NewHistory(gram *grammar.Grammar, history []parser.Derivation) ([]int, error) {
	var errs error
	h := make([]int, 0, len(history))
	for i, d := range history {
		v, err := packDerivation(gram, d.Production, d.Rule)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("derivation #%v: %w", i, err))
			continue
		}
		h = append(h, v)
	}
	if errs != nil {
		return nil, errs
	}
	return h, nil
}

func DecodeHistory(gram *grammar.Grammar, h []int) ([]parser.Derivation, error) {
	var errs error
	history := make([]parser.Derivation, 0, len(h))
	for i, v := range h {
		prod, rule, err := unpackDerivation(v)
		if err == nil {
			_, _, err = gram.Rule(prod, rule)
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("derivation #%v: %w", i, err))
			continue
		}
		history = append(history, parser.Derivation{
			Production: prod,
			Rule:       rule,
		})
	}
	if errs != nil {
		return nil, errs
	}
	return history, nil
}

type TraceRecord struct {
	StackTop  string   `json:"stack_top"`
	FullStack []string `json:"full_stack"`
	Input     string   `json:"input"`
	Action    string   `json:"action"`
}

func NewTrace(trace []*parser.TraceRecord) []*TraceRecord {
	recs := make([]*TraceRecord, len(trace))
	for i, r := range trace {
		recs[i] = &TraceRecord{
			StackTop:  r.StackTop.String(),
			FullStack: symbolsToStrings(r.Stack),
			Input:     r.Input.String(),
			Action:    r.Action,
		}
	}
	return recs
}

type Conflict struct {
	NonTerminal string `json:"non_terminal"`
	Terminal    string `json:"terminal"`
	Existing    string `json:"existing"`
	Incoming    string `json:"incoming"`
}

func NewConflicts(tab *grammar.ParsingTable) []*Conflict {
	var cs []*Conflict
	for _, c := range tab.Conflicts() {
		cs = append(cs, &Conflict{
			NonTerminal: c.NonTerminal.String(),
			Terminal:    c.Terminal.String(),
			Existing:    c.Existing.String(),
			Incoming:    c.Incoming.String(),
		})
	}
	return cs
}

type ParseError struct {
	Kind     string   `json:"kind"`
	StackTop string   `json:"stack_top"`
	Input    string   `json:"input"`
	Text     string   `json:"text,omitempty"`
	Row      int      `json:"row,omitempty"`
	Col      int      `json:"col,omitempty"`
	Expected []string `json:"expected,omitempty"`
}

// Report is the result of a parse: the input, what the parser did, and the tree when the parse succeeded.
type Report struct {
	Tokens   []*Token       `json:"tokens,omitempty"`
	Accepted bool           `json:"accepted"`
	Errors   []*ParseError  `json:"errors,omitempty"`
	History  []int          `json:"history"`
	Trace    []*TraceRecord `json:"trace"`
	Tree     *parser.Node   `json:"tree,omitempty"`
}

// NewReport summarizes a complete parser. The tree is built only when the parse had no errors.
func NewReport(gram *grammar.Grammar, p *parser.Parser) (*Report, error) {
	h, err := NewHistory(gram, p.History())
	if err != nil {
		return nil, err
	}
	r := &Report{
		Accepted: p.Accepted(),
		History:  h,
		Trace:    NewTrace(p.Trace()),
	}
	for _, e := range p.Errors() {
		r.Errors = append(r.Errors, &ParseError{
			Kind:     string(e.Kind),
			StackTop: e.StackTop.String(),
			Input:    e.Token.Terminal().String(),
			Text:     e.Token.Text(),
			Row:      e.Row,
			Col:      e.Col,
			Expected: symbolsToStrings(e.ExpectedTerminals),
		})
	}
	if r.Accepted {
		tree, err := p.BuildTree(gram)
		if err != nil {
			return nil, err
		}
		r.Tree = tree
	}
	return r, nil
}
