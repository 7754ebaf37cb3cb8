package grammar

import (
	"fmt"
)

// Conflict means that two rules claim the same cell. The incoming rule overwrites the existing one.
type Conflict struct {
	NonTerminal Symbol
	Terminal    Symbol
	Existing    Entry
	Incoming    Entry
}

func (c *Conflict) String() string {
	return fmt.Sprintf("conflict at (%v, %v): %v and %v", c.NonTerminal, c.Terminal, c.Existing, c.Incoming)
}

// TableOption configures BuildParsingTable.
type TableOption func(b *llTableBuilderConfig)

type llTableBuilderConfig struct {
	lookaheadSequence bool
}

// LookaheadSequence makes the builder select a rule by FIRST of the whole rule, and by FOLLOW of the parent
// when the rule is nullable. By default only FIRST of the first symbol of a rule is used.
func LookaheadSequence() TableOption {
	return func(c *llTableBuilderConfig) {
		c.lookaheadSequence = true
	}
}

type llTableBuilder struct {
	gram   *Grammar
	first  *FirstSet
	follow *FollowSet
	config *llTableBuilderConfig

	conflicts []*Conflict
}

// BuildParsingTable builds an LL(1) parsing table. A grammar that is not LL(1) still gets a table; the cells
// claimed by more than one rule hold the last rule written, and the table reports the conflicts.
func BuildParsingTable(gram *Grammar, first *FirstSet, follow *FollowSet, opts ...TableOption) (*ParsingTable, error) {
	config := &llTableBuilderConfig{}
	for _, opt := range opts {
		opt(config)
	}
	b := &llTableBuilder{
		gram:   gram,
		first:  first,
		follow: follow,
		config: config,
	}
	return b.build()
}

func (b *llTableBuilder) build() (*ParsingTable, error) {
	tab := newParsingTable(b.gram)

	for _, nt := range tab.nonTerms {
		flw, err := b.follow.FollowOf(nt)
		if err != nil {
			return nil, err
		}
		for _, t := range flw.Symbols() {
			if tab.Lookup(nt, t).IsError() {
				tab.write(nt, t, synchEntry)
			}
		}
	}

	for prodIdx, prod := range b.gram.Productions() {
		for ruleIdx, r := range prod.Rules {
			lookahead, err := b.lookahead(prod.Parent, r)
			if err != nil {
				return nil, err
			}
			for _, t := range lookahead.Symbols() {
				if t == Epsilon {
					continue
				}
				b.writeDeriveEntry(tab, prod.Parent, t, NewDeriveEntry(prodIdx, ruleIdx))
			}
		}
	}

	tab.conflicts = b.conflicts
	if len(b.conflicts) > 0 {
		tracer().Errorf("the grammar is not LL(1): %v conflicts", len(b.conflicts))
	}
	return tab, nil
}

func (b *llTableBuilder) lookahead(parent Symbol, r Rule) (*SymbolSet, error) {
	if r.IsEpsilon() {
		return b.follow.FollowOf(parent)
	}
	if !b.config.lookaheadSequence {
		return b.first.FirstOf(r[0])
	}

	fst, err := b.first.FirstOfSequence(r)
	if err != nil {
		return nil, err
	}
	if !fst.Contains(Epsilon) {
		return fst, nil
	}
	flw, err := b.follow.FollowOf(parent)
	if err != nil {
		return nil, err
	}
	acc := NewSymbolSet()
	acc.mergeExceptEpsilon(fst)
	acc.mergeExceptEpsilon(flw)
	return acc, nil
}

// writeDeriveEntry writes a derive entry to the parsing table. When the cell already has another derive
// entry, the conflict is recorded and the new entry wins.
func (b *llTableBuilder) writeDeriveEntry(tab *ParsingTable, nt, t Symbol, e Entry) {
	existing := tab.Lookup(nt, t)
	if existing.IsDerive() && existing != e {
		c := &Conflict{
			NonTerminal: nt,
			Terminal:    t,
			Existing:    existing,
			Incoming:    e,
		}
		tracer().Debugf("%v", c)
		b.conflicts = append(b.conflicts, c)
	}
	tab.write(nt, t, e)
}
