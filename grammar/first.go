package grammar

import (
	"fmt"
)

// FirstSet holds FIRST(A) for every non-terminal A. EPSILON belongs to FIRST(A) when A is nullable.
type FirstSet struct {
	gram *Grammar
	set  map[Symbol]*SymbolSet
}

func newFirstSet(gram *Grammar) *FirstSet {
	fst := &FirstSet{
		gram: gram,
		set:  map[Symbol]*SymbolSet{},
	}
	for _, prod := range gram.Productions() {
		fst.set[prod.Parent] = NewSymbolSet()
	}
	return fst
}

// GenFirstSet computes FIRST sets of all the non-terminals of a grammar.
func GenFirstSet(gram *Grammar) (*FirstSet, error) {
	fst := newFirstSet(gram)
	for {
		more := false
		for _, prod := range gram.Productions() {
			acc := fst.set[prod.Parent]
			for _, r := range prod.Rules {
				changed, err := genRuleFirstEntry(fst, acc, r)
				if err != nil {
					return nil, err
				}
				if changed {
					more = true
				}
			}
		}
		if !more {
			break
		}
	}
	return fst, nil
}

func genRuleFirstEntry(fst *FirstSet, acc *SymbolSet, r Rule) (bool, error) {
	if r.IsEpsilon() {
		return acc.add(Epsilon), nil
	}

	changed := false
	for _, sym := range r {
		if fst.gram.IsTerminal(sym) {
			if acc.add(sym) {
				changed = true
			}
			return changed, nil
		}

		e, ok := fst.set[sym]
		if !ok {
			return false, fmt.Errorf("an entry of FIRST was not found; symbol: %v", sym)
		}
		if acc.mergeExceptEpsilon(e) {
			changed = true
		}
		if !e.Contains(Epsilon) {
			return changed, nil
		}
	}
	if acc.add(Epsilon) {
		changed = true
	}
	return changed, nil
}

// NewFirstSet makes a FIRST set from precomputed entries. Every non-terminal of the grammar must have an entry
// and the entries may contain only terminals, the end-marker and EPSILON.
func NewFirstSet(gram *Grammar, entries map[Symbol][]Symbol) (*FirstSet, error) {
	fst := newFirstSet(gram)
	for nt, syms := range entries {
		e, ok := fst.set[nt]
		if !ok {
			return nil, fmt.Errorf("FIRST has an entry for an unknown non-terminal; symbol: %v", nt)
		}
		for _, sym := range syms {
			if sym != Epsilon && !gram.IsTerminal(sym) {
				return nil, fmt.Errorf("FIRST(%v) contains a symbol that is not a terminal; symbol: %v", nt, sym)
			}
			e.add(sym)
		}
	}
	for _, nt := range gram.NonTerminals() {
		if _, ok := entries[nt]; !ok {
			return nil, fmt.Errorf("an entry of FIRST was not found; symbol: %v", nt)
		}
	}
	return fst, nil
}

// FirstOf returns FIRST(sym). For a terminal it is the terminal itself and for EPSILON it is {EPSILON}.
func (fst *FirstSet) FirstOf(sym Symbol) (*SymbolSet, error) {
	if sym == Epsilon || fst.gram.IsTerminal(sym) {
		return NewSymbolSet(sym), nil
	}
	e, ok := fst.set[sym]
	if !ok {
		return nil, fmt.Errorf("an entry of FIRST was not found; symbol: %v", sym)
	}
	return e, nil
}

// FirstOfSequence returns FIRST of a sequence of symbols. EPSILON belongs to the result when every symbol of
// the sequence is nullable, including when the sequence is empty.
func (fst *FirstSet) FirstOfSequence(seq []Symbol) (*SymbolSet, error) {
	acc := NewSymbolSet()
	for _, sym := range Rule(seq).Symbols() {
		e, err := fst.FirstOf(sym)
		if err != nil {
			return nil, err
		}
		acc.mergeExceptEpsilon(e)
		if !e.Contains(Epsilon) {
			return acc, nil
		}
	}
	acc.add(Epsilon)
	return acc, nil
}

// Nullable reports whether a symbol can derive the empty string.
func (fst *FirstSet) Nullable(sym Symbol) bool {
	e, err := fst.FirstOf(sym)
	if err != nil {
		return false
	}
	return e.Contains(Epsilon)
}

// Entries returns FIRST of every non-terminal.
func (fst *FirstSet) Entries() map[Symbol][]Symbol {
	m := make(map[Symbol][]Symbol, len(fst.set))
	for sym, e := range fst.set {
		m[sym] = e.Symbols()
	}
	return m
}
