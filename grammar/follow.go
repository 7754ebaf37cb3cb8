package grammar

import (
	"fmt"
)

// FollowSet holds FOLLOW(A) for every non-terminal A. FOLLOW of the start symbol contains the end-marker.
type FollowSet struct {
	gram *Grammar
	set  map[Symbol]*SymbolSet
}

func newFollowSet(gram *Grammar) *FollowSet {
	flw := &FollowSet{
		gram: gram,
		set:  map[Symbol]*SymbolSet{},
	}
	for _, prod := range gram.Productions() {
		flw.set[prod.Parent] = NewSymbolSet()
	}
	return flw
}

// GenFollowSet computes FOLLOW sets of all the non-terminals of a grammar.
func GenFollowSet(gram *Grammar, first *FirstSet) (*FollowSet, error) {
	flw := newFollowSet(gram)
	for {
		more := false
		for _, nt := range gram.NonTerminals() {
			e, err := flw.find(nt)
			if err != nil {
				return nil, err
			}
			changed, err := genFollowEntry(flw, first, e, nt)
			if err != nil {
				return nil, err
			}
			if changed {
				more = true
			}
		}
		if !more {
			break
		}
	}
	return flw, nil
}

func genFollowEntry(flw *FollowSet, first *FirstSet, acc *SymbolSet, ntsym Symbol) (bool, error) {
	changed := false

	if ntsym == flw.gram.Start() {
		if acc.add(EndMarker) {
			changed = true
		}
	}
	for _, prod := range flw.gram.Productions() {
		for _, r := range prod.Rules {
			syms := r.Symbols()
			for i, sym := range syms {
				if sym != ntsym {
					continue
				}
				fst, err := first.FirstOfSequence(syms[i+1:])
				if err != nil {
					return false, err
				}
				if acc.mergeExceptEpsilon(fst) {
					changed = true
				}
				if fst.Contains(Epsilon) {
					e, err := flw.find(prod.Parent)
					if err != nil {
						return false, err
					}
					if acc.mergeExceptEpsilon(e) {
						changed = true
					}
				}
			}
		}
	}

	return changed, nil
}

// NewFollowSet makes a FOLLOW set from precomputed entries. Every non-terminal of the grammar must have an
// entry and the entries may contain only terminals and the end-marker.
func NewFollowSet(gram *Grammar, entries map[Symbol][]Symbol) (*FollowSet, error) {
	flw := newFollowSet(gram)
	for nt, syms := range entries {
		e, ok := flw.set[nt]
		if !ok {
			return nil, fmt.Errorf("FOLLOW has an entry for an unknown non-terminal; symbol: %v", nt)
		}
		for _, sym := range syms {
			if !gram.IsTerminal(sym) {
				return nil, fmt.Errorf("FOLLOW(%v) contains a symbol that is not a terminal; symbol: %v", nt, sym)
			}
			e.add(sym)
		}
	}
	for _, nt := range gram.NonTerminals() {
		if _, ok := entries[nt]; !ok {
			return nil, fmt.Errorf("an entry of FOLLOW was not found; symbol: %v", nt)
		}
	}
	return flw, nil
}

func (flw *FollowSet) find(sym Symbol) (*SymbolSet, error) {
	e, ok := flw.set[sym]
	if !ok {
		return nil, fmt.Errorf("an entry of FOLLOW was not found; symbol: %v", sym)
	}
	return e, nil
}

// FollowOf returns FOLLOW of a non-terminal.
func (flw *FollowSet) FollowOf(sym Symbol) (*SymbolSet, error) {
	return flw.find(sym)
}

func (flw *FollowSet) Entries() map[Symbol][]Symbol {
	m := make(map[Symbol][]Symbol, len(flw.set))
	for sym, e := range flw.set {
		m[sym] = e.Symbols()
	}
	return m
}
