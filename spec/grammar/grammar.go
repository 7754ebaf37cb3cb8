package grammar

import (
	"fmt"
	"strconv"

	"github.com/nihei9/lltable/grammar"
	"go.uber.org/multierr"
)

// Grammar is the interchange form of a grammar. An epsilon rule is written as ["EPSILON"].
type Grammar struct {
	Terminals    []string      `json:"terminals"`
	NonTerminals []string      `json:"non_terminals"`
	StartSymbol  string        `json:"start_symbol"`
	Productions  []*Production `json:"productions"`
}

type Production struct {
	Parent string     `json:"parent"`
	Rules  [][]string `json:"rules"`
}

func NewGrammar(gram *grammar.Grammar) *Grammar {
	g := &Grammar{
		Terminals:    symbolsToStrings(gram.Terminals()),
		NonTerminals: symbolsToStrings(gram.NonTerminals()),
		StartSymbol:  gram.Start().String(),
	}
	for _, prod := range gram.Productions() {
		p := &Production{
			Parent: prod.Parent.String(),
		}
		for _, r := range prod.Rules {
			if r.IsEpsilon() {
				p.Rules = append(p.Rules, []string{grammar.Epsilon.String()})
				continue
			}
			p.Rules = append(p.Rules, symbolsToStrings(r))
		}
		g.Productions = append(g.Productions, p)
	}
	return g
}

// Build converts the interchange form into a grammar. Each production becomes a production of the grammar as
// it is, so two productions having the same parent are reported as duplicates.
func (g *Grammar) Build() (*grammar.Grammar, error) {
	prods := make([]*grammar.Production, 0, len(g.Productions))
	for _, p := range g.Productions {
		prod := grammar.NewProduction(grammar.Symbol(p.Parent))
		for _, r := range p.Rules {
			prod.Rules = append(prod.Rules, grammar.NewRule(r...))
		}
		prods = append(prods, prod)
	}
	return grammar.NewGrammar(stringsToSymbols(g.Terminals), stringsToSymbols(g.NonTerminals), grammar.Symbol(g.StartSymbol), prods)
}

// FirstFollow is the interchange form of FIRST and FOLLOW sets of non-terminals.
type FirstFollow struct {
	First  map[string][]string `json:"first"`
	Follow map[string][]string `json:"follow"`
}

func NewFirstFollow(first *grammar.FirstSet, follow *grammar.FollowSet) *FirstFollow {
	return &FirstFollow{
		First:  entriesToStrings(first.Entries()),
		Follow: entriesToStrings(follow.Entries()),
	}
}

// Build converts the interchange form into FIRST and FOLLOW sets of gram. Both sets are checked and the
// errors of both are returned together.
func (ff *FirstFollow) Build(gram *grammar.Grammar) (*grammar.FirstSet, *grammar.FollowSet, error) {
	first, ferr := grammar.NewFirstSet(gram, stringsToEntries(ff.First))
	follow, lerr := grammar.NewFollowSet(gram, stringsToEntries(ff.Follow))
	err := multierr.Combine(ferr, lerr)
	if err != nil {
		return nil, nil, err
	}
	return first, follow, nil
}

const (
	tableEntryError = "error"
	tableEntrySynch = "synch"

	// maxRuleCount is the number of rules a production can have in the packed encoding.
	maxRuleCount = 100
)

// Table is the interchange form of a parsing table: `{NT: {Terminal: "error" | "synch" | "<p*100+r>"}}`.
type Table map[string]map[string]string

// NewTable encodes a parsing table. It fails when a derive entry refers to a production having 100 or more
// rules because the packed encoding cannot represent them.
func NewTable(tab *grammar.ParsingTable) (Table, error) {
	var errs error
	t := Table{}
	for _, nt := range tab.NonTerminals() {
		row := map[string]string{}
		for _, term := range tab.Terminals() {
			v, err := EncodeEntry(tab.Grammar(), tab.Lookup(nt, term))
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("(%v, %v): %w", nt, term, err))
				continue
			}
			row[term.String()] = v
		}
		t[nt.String()] = row
	}
	if errs != nil {
		return nil, errs
	}
	return t, nil
}

// Build decodes a parsing table of gram. Every undecodable cell is reported.
func (t Table) Build(gram *grammar.Grammar) (*grammar.ParsingTable, error) {
	var errs error
	cells := map[grammar.Symbol]map[grammar.Symbol]grammar.Entry{}
	for nt, row := range t {
		r := map[grammar.Symbol]grammar.Entry{}
		for term, v := range row {
			e, err := DecodeEntry(v)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("(%v, %v): %w", nt, term, err))
				continue
			}
			r[grammar.Symbol(term)] = e
		}
		cells[grammar.Symbol(nt)] = r
	}
	if errs != nil {
		return nil, errs
	}
	return grammar.NewParsingTable(gram, cells)
}

func EncodeEntry(gram *grammar.Grammar, e grammar.Entry) (string, error) {
	switch {
	case e.IsSynch():
		return tableEntrySynch, nil
	case e.IsDerive():
		v, err := packDerivation(gram, e.Production, e.Rule)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(v), nil
	default:
		return tableEntryError, nil
	}
}

func DecodeEntry(v string) (grammar.Entry, error) {
	switch v {
	case tableEntryError:
		return grammar.NewErrorEntry(), nil
	case tableEntrySynch:
		return grammar.NewSynchEntry(), nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return grammar.Entry{}, fmt.Errorf("invalid table entry: %v", v)
	}
	prod, rule, err := unpackDerivation(n)
	if err != nil {
		return grammar.Entry{}, err
	}
	return grammar.NewDeriveEntry(prod, rule), nil
}

func packDerivation(gram *grammar.Grammar, prod, rule int) (int, error) {
	p, _, err := gram.Rule(prod, rule)
	if err != nil {
		return 0, err
	}
	if len(p.Rules) >= maxRuleCount {
		return 0, fmt.Errorf("%v has %v rules; the packed encoding supports less than %v", p.Parent, len(p.Rules), maxRuleCount)
	}
	return prod*maxRuleCount + rule, nil
}

func unpackDerivation(n int) (int, int, error) {
	if n < 0 {
		return 0, 0, fmt.Errorf("a packed derivation must be 0 or more: %v", n)
	}
	return n / maxRuleCount, n % maxRuleCount, nil
}

func symbolsToStrings(syms []grammar.Symbol) []string {
	strs := make([]string, len(syms))
	for i, sym := range syms {
		strs[i] = sym.String()
	}
	return strs
}

func stringsToSymbols(strs []string) []grammar.Symbol {
	syms := make([]grammar.Symbol, len(strs))
	for i, s := range strs {
		syms[i] = grammar.Symbol(s)
	}
	return syms
}

func entriesToStrings(entries map[grammar.Symbol][]grammar.Symbol) map[string][]string {
	m := make(map[string][]string, len(entries))
	for sym, syms := range entries {
		m[sym.String()] = symbolsToStrings(syms)
	}
	return m
}

func stringsToEntries(m map[string][]string) map[grammar.Symbol][]grammar.Symbol {
	entries := make(map[grammar.Symbol][]grammar.Symbol, len(m))
	for sym, strs := range m {
		entries[grammar.Symbol(sym)] = stringsToSymbols(strs)
	}
	return entries
}
