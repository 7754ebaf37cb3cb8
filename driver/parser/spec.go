package parser

import "github.com/nihei9/lltable/grammar"

// Grammar is what the parser needs to know about a grammar and its parsing table.
type Grammar interface {
	// Start returns the start symbol.
	Start() grammar.Symbol

	// IsTerminal reports whether a symbol is a terminal, including the end-marker.
	IsTerminal(sym grammar.Symbol) bool

	// Lookup returns the entry of a cell of the parsing table.
	Lookup(nonTerminal, terminal grammar.Symbol) grammar.Entry

	// Rule returns the rule a derive entry refers to.
	Rule(e grammar.Entry) (*grammar.Production, grammar.Rule, error)

	// ExpectedTerminals returns the terminals a non-terminal can be derived by.
	ExpectedTerminals(nonTerminal grammar.Symbol) []grammar.Symbol
}

type grammarImpl struct {
	tab *grammar.ParsingTable
}

func NewGrammar(tab *grammar.ParsingTable) *grammarImpl {
	return &grammarImpl{
		tab: tab,
	}
}

func (g *grammarImpl) Start() grammar.Symbol {
	return g.tab.Grammar().Start()
}

func (g *grammarImpl) IsTerminal(sym grammar.Symbol) bool {
	return g.tab.Grammar().IsTerminal(sym)
}

func (g *grammarImpl) Lookup(nonTerminal, terminal grammar.Symbol) grammar.Entry {
	return g.tab.Lookup(nonTerminal, terminal)
}

func (g *grammarImpl) Rule(e grammar.Entry) (*grammar.Production, grammar.Rule, error) {
	return g.tab.Rule(e)
}

func (g *grammarImpl) ExpectedTerminals(nonTerminal grammar.Symbol) []grammar.Symbol {
	return g.tab.ExpectedTerminals(nonTerminal)
}
