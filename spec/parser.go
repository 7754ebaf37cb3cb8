package spec

import (
	"io"
	"strings"

	verr "github.com/nihei9/lltable/error"
)

const (
	sectionTerminals    = "%terminals"
	sectionNonTerminals = "%non_terminals"
	sectionStart        = "%start"
	sectionRules        = "%rules"
	sectionEnd          = "%end"

	epsilon = "EPSILON"
)

type RootNode struct {
	Terminals    []*SymbolNode
	NonTerminals []*SymbolNode
	Start        *SymbolNode
	Rules        []*RuleNode
}

type SymbolNode struct {
	Name string
	Pos  Position
}

type RuleNode struct {
	LHS *SymbolNode
	RHS []*SymbolNode
	Pos Position
}

func raiseSyntaxError(cause *SyntaxError, tok *token) {
	err := &verr.SpecError{
		Cause: cause,
	}
	if tok != nil {
		err.Detail = tok.text
		err.Row = tok.pos.Row
		err.Col = tok.pos.Col
	}
	panic(err)
}

// Parse reads a grammar description made of sections:
//
//	%terminals
//	a b
//	%end
//	%non_terminals
//	S
//	%end
//	%start
//	S
//	%end
//	%rules
//	S : a S b
//	S : EPSILON
//	%end
//
// Blank lines and lines beginning with # are ignored.
func Parse(src io.Reader) (*RootNode, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	return root, nil
}

type section int

const (
	sectionNone section = iota
	sectionKindTerminals
	sectionKindNonTerminals
	sectionKindStart
	sectionKindRules
)

type parser struct {
	lex        *lexer
	section    section
	sectionTok *token
}

func newParser(src io.Reader) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse() (root *RootNode, retErr error) {
	defer func() {
		err := recover()
		if err != nil {
			e, ok := err.(error)
			if !ok {
				panic(err)
			}
			retErr = e
			return
		}
	}()
	return p.parseRoot(), nil
}

func (p *parser) parseRoot() *RootNode {
	root := &RootNode{}
	for {
		line, err := p.lex.nextLine()
		if err != nil {
			panic(err)
		}
		if len(line) == 0 {
			break
		}
		p.parseLine(root, line)
	}
	if p.section != sectionNone {
		raiseSyntaxError(synErrUnclosedSection, p.sectionTok)
	}
	return root
}

func (p *parser) parseLine(root *RootNode, line []*token) {
	head := line[0]
	if strings.HasPrefix(head.text, "#") {
		return
	}
	if head.kind == tokenKindSectionMarker {
		p.parseSectionMarker(line)
		return
	}

	switch p.section {
	case sectionKindTerminals:
		root.Terminals = append(root.Terminals, p.parseSymbols(line)...)
	case sectionKindNonTerminals:
		root.NonTerminals = append(root.NonTerminals, p.parseSymbols(line)...)
	case sectionKindStart:
		for _, sym := range p.parseSymbols(line) {
			if root.Start != nil {
				raiseSyntaxError(synErrAmbiguousStartSymbol, &token{text: sym.Name, pos: sym.Pos})
			}
			root.Start = sym
		}
	case sectionKindRules:
		root.Rules = append(root.Rules, p.parseRule(line))
	default:
		raiseSyntaxError(synErrTokenOutsideSection, head)
	}
}

func (p *parser) parseSectionMarker(line []*token) {
	marker := line[0]
	if len(line) > 1 {
		raiseSyntaxError(synErrTokenAfterMarker, line[1])
	}
	switch marker.text {
	case sectionEnd:
		p.section = sectionNone
	case sectionTerminals:
		p.section = sectionKindTerminals
	case sectionNonTerminals:
		p.section = sectionKindNonTerminals
	case sectionStart:
		p.section = sectionKindStart
	case sectionRules:
		p.section = sectionKindRules
	default:
		raiseSyntaxError(synErrInvalidSectionMarker, marker)
	}
	p.sectionTok = marker
}

func (p *parser) parseSymbols(line []*token) []*SymbolNode {
	syms := make([]*SymbolNode, 0, len(line))
	for _, tok := range line {
		if tok.text == epsilon {
			raiseSyntaxError(synErrEpsilonReserved, tok)
		}
		syms = append(syms, &SymbolNode{
			Name: tok.text,
			Pos:  tok.pos,
		})
	}
	return syms
}

func (p *parser) parseRule(line []*token) *RuleNode {
	lhs := line[0]
	if lhs.text == epsilon {
		raiseSyntaxError(synErrRuleStartsWithEps, lhs)
	}
	if len(line) < 2 || line[1].kind != tokenKindColon {
		if len(line) < 2 {
			raiseSyntaxError(synErrNoColon, lhs)
		}
		raiseSyntaxError(synErrNoColon, line[1])
	}
	if len(line) < 3 {
		raiseSyntaxError(synErrNoRuleSymbols, lhs)
	}

	rhs := make([]*SymbolNode, 0, len(line)-2)
	for _, tok := range line[2:] {
		rhs = append(rhs, &SymbolNode{
			Name: tok.text,
			Pos:  tok.pos,
		})
	}
	return &RuleNode{
		LHS: &SymbolNode{
			Name: lhs.text,
			Pos:  lhs.pos,
		},
		RHS: rhs,
		Pos: lhs.pos,
	}
}
