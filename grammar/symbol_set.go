package grammar

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// SymbolSet is a set of symbols iterated in lexical order, so that everything derived from it is stable.
type SymbolSet struct {
	set *treeset.Set
}

func NewSymbolSet(syms ...Symbol) *SymbolSet {
	s := &SymbolSet{
		set: treeset.NewWith(symbolComparator),
	}
	for _, sym := range syms {
		s.add(sym)
	}
	return s
}

func symbolComparator(a, b interface{}) int {
	return utils.StringComparator(string(a.(Symbol)), string(b.(Symbol)))
}

func (s *SymbolSet) add(sym Symbol) bool {
	if s.set.Contains(sym) {
		return false
	}
	s.set.Add(sym)
	return true
}

// merge adds all the symbols of t except EPSILON and reports whether s has changed.
func (s *SymbolSet) mergeExceptEpsilon(t *SymbolSet) bool {
	if t == nil {
		return false
	}
	changed := false
	it := t.set.Iterator()
	for it.Next() {
		sym := it.Value().(Symbol)
		if sym == Epsilon {
			continue
		}
		if s.add(sym) {
			changed = true
		}
	}
	return changed
}

func (s *SymbolSet) Contains(sym Symbol) bool {
	return s.set.Contains(sym)
}

func (s *SymbolSet) Len() int {
	return s.set.Size()
}

func (s *SymbolSet) Symbols() []Symbol {
	syms := make([]Symbol, 0, s.set.Size())
	it := s.set.Iterator()
	for it.Next() {
		syms = append(syms, it.Value().(Symbol))
	}
	return syms
}

func (s *SymbolSet) String() string {
	return s.set.String()
}
