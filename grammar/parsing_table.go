package grammar

import (
	"fmt"
)

type EntryKind string

const (
	EntryKindError  = EntryKind("error")
	EntryKindSynch  = EntryKind("synch")
	EntryKindDerive = EntryKind("derive")
)

func (k EntryKind) String() string {
	return string(k)
}

// Entry is a cell of a parsing table. A derive entry refers to a rule by the index of its production in the
// grammar and the index of the rule in the production.
type Entry struct {
	Kind       EntryKind
	Production int
	Rule       int
}

var (
	errorEntry = Entry{Kind: EntryKindError}
	synchEntry = Entry{Kind: EntryKindSynch}
)

func NewErrorEntry() Entry {
	return errorEntry
}

func NewSynchEntry() Entry {
	return synchEntry
}

func NewDeriveEntry(prod, rule int) Entry {
	return Entry{
		Kind:       EntryKindDerive,
		Production: prod,
		Rule:       rule,
	}
}

func (e Entry) IsError() bool {
	return e.Kind == EntryKindError || e.Kind == ""
}

func (e Entry) IsSynch() bool {
	return e.Kind == EntryKindSynch
}

func (e Entry) IsDerive() bool {
	return e.Kind == EntryKindDerive
}

func (e Entry) String() string {
	if e.IsDerive() {
		return fmt.Sprintf("derive(%v, %v)", e.Production, e.Rule)
	}
	if e.IsError() {
		return EntryKindError.String()
	}
	return e.Kind.String()
}

// ParsingTable is an LL(1) parsing table. Rows are the non-terminals and columns are the terminals and the
// end-marker, both in declaration order.
type ParsingTable struct {
	gram        *Grammar
	entries     []Entry
	nonTerms    []Symbol
	terms       []Symbol
	nonTerm2Row map[Symbol]int
	term2Col    map[Symbol]int
	conflicts   []*Conflict
}

func newParsingTable(gram *Grammar) *ParsingTable {
	nonTerms := gram.NonTerminals()
	terms := append(gram.Terminals(), EndMarker)
	tab := &ParsingTable{
		gram:        gram,
		entries:     make([]Entry, len(nonTerms)*len(terms)),
		nonTerms:    nonTerms,
		terms:       terms,
		nonTerm2Row: make(map[Symbol]int, len(nonTerms)),
		term2Col:    make(map[Symbol]int, len(terms)),
	}
	for i, sym := range nonTerms {
		tab.nonTerm2Row[sym] = i
	}
	for i, sym := range terms {
		tab.term2Col[sym] = i
	}
	for i := range tab.entries {
		tab.entries[i] = errorEntry
	}
	return tab
}

// NewParsingTable makes a parsing table from given cells. Missing cells are error entries. Every derive entry
// must refer to an existing rule of the production of its row.
func NewParsingTable(gram *Grammar, cells map[Symbol]map[Symbol]Entry) (*ParsingTable, error) {
	tab := newParsingTable(gram)
	for nt, row := range cells {
		prod, prodIdx, ok := gram.ProductionOf(nt)
		if !ok {
			return nil, fmt.Errorf("a row of the parsing table is not a non-terminal; symbol: %v", nt)
		}
		for t, e := range row {
			if _, ok := tab.term2Col[t]; !ok {
				return nil, fmt.Errorf("a column of the parsing table is not a terminal; symbol: %v", t)
			}
			if e.IsDerive() {
				if e.Production != prodIdx {
					return nil, fmt.Errorf("an entry (%v, %v) derives a rule of another production: %v", nt, t, e)
				}
				if e.Rule < 0 || e.Rule >= len(prod.Rules) {
					return nil, fmt.Errorf("an entry (%v, %v) refers to a missing rule: %v", nt, t, e)
				}
			}
			tab.write(nt, t, e)
		}
	}
	return tab, nil
}

func (t *ParsingTable) pos(nt, term Symbol) (int, bool) {
	row, ok := t.nonTerm2Row[nt]
	if !ok {
		return 0, false
	}
	col, ok := t.term2Col[term]
	if !ok {
		return 0, false
	}
	return row*len(t.terms) + col, true
}

func (t *ParsingTable) write(nt, term Symbol, e Entry) {
	if pos, ok := t.pos(nt, term); ok {
		t.entries[pos] = e
	}
}

// Lookup returns the entry of a cell. It returns an error entry when either symbol is not part of the table.
func (t *ParsingTable) Lookup(nt, term Symbol) Entry {
	pos, ok := t.pos(nt, term)
	if !ok {
		return errorEntry
	}
	return t.entries[pos]
}

func (t *ParsingTable) Grammar() *Grammar {
	return t.gram
}

// Terminals returns the columns of the table. The last one is the end-marker.
func (t *ParsingTable) Terminals() []Symbol {
	syms := make([]Symbol, len(t.terms))
	copy(syms, t.terms)
	return syms
}

func (t *ParsingTable) NonTerminals() []Symbol {
	syms := make([]Symbol, len(t.nonTerms))
	copy(syms, t.nonTerms)
	return syms
}

// Conflicts returns the conflicts found while building the table in the order they were found.
func (t *ParsingTable) Conflicts() []*Conflict {
	return t.conflicts
}

// IsLL1 reports whether the table was built without any conflict.
func (t *ParsingTable) IsLL1() bool {
	return len(t.conflicts) == 0
}

// ExpectedTerminals returns the terminals having a derive entry in the row of a non-terminal.
func (t *ParsingTable) ExpectedTerminals(nt Symbol) []Symbol {
	var syms []Symbol
	for _, term := range t.terms {
		if t.Lookup(nt, term).IsDerive() {
			syms = append(syms, term)
		}
	}
	return syms
}

// Rule returns the rule a derive entry refers to.
func (t *ParsingTable) Rule(e Entry) (*Production, Rule, error) {
	if !e.IsDerive() {
		return nil, nil, fmt.Errorf("not a derive entry: %v", e)
	}
	return t.gram.Rule(e.Production, e.Rule)
}
