package grammar

import (
	"fmt"
	"strings"
)

// Symbol is a grammar symbol. Whether a symbol is a terminal or a non-terminal is decided by the grammar
// declaring it, not by its name.
type Symbol string

const (
	// Epsilon stands for the empty string. It may appear only as the sole symbol of a rule.
	Epsilon = Symbol("EPSILON")

	// EndMarker marks the end of an input. It is treated as a terminal symbol.
	EndMarker = Symbol("$")
)

func (s Symbol) String() string {
	return string(s)
}

func (s Symbol) IsEpsilon() bool {
	return s == Epsilon
}

func (s Symbol) IsEndMarker() bool {
	return s == EndMarker
}

func (s Symbol) isReserved() bool {
	return s == Epsilon || s == EndMarker
}

type symbolKind string

const (
	symbolKindNonTerminal = symbolKind("non-terminal")
	symbolKindTerminal    = symbolKind("terminal")
	symbolKindEpsilon     = symbolKind("epsilon")
	symbolKindEndMarker   = symbolKind("end-marker")
)

// symbolTable keeps the declaration order of terminals and non-terminals and classifies symbols.
type symbolTable struct {
	kinds    map[Symbol]symbolKind
	terms    []Symbol
	nonTerms []Symbol
}

func newSymbolTable() *symbolTable {
	return &symbolTable{
		kinds: map[Symbol]symbolKind{
			Epsilon:   symbolKindEpsilon,
			EndMarker: symbolKindEndMarker,
		},
	}
}

func (t *symbolTable) registerTerminal(sym Symbol) error {
	return t.register(sym, symbolKindTerminal)
}

func (t *symbolTable) registerNonTerminal(sym Symbol) error {
	return t.register(sym, symbolKindNonTerminal)
}

func (t *symbolTable) register(sym Symbol, kind symbolKind) error {
	if sym.isReserved() {
		return fmt.Errorf("%w: %v", semErrReservedSymbol, sym)
	}
	if sym == "" {
		return semErrEmptySymbol
	}
	if k, ok := t.kinds[sym]; ok {
		if k == kind {
			switch kind {
			case symbolKindTerminal:
				return fmt.Errorf("%w: %v", semErrDuplicateTerminal, sym)
			default:
				return fmt.Errorf("%w: %v", semErrDuplicateNonTerminal, sym)
			}
		}
		return fmt.Errorf("%w: %v", semErrDuplicateName, sym)
	}
	t.kinds[sym] = kind
	switch kind {
	case symbolKindTerminal:
		t.terms = append(t.terms, sym)
	case symbolKindNonTerminal:
		t.nonTerms = append(t.nonTerms, sym)
	}
	return nil
}

func (t *symbolTable) kind(sym Symbol) symbolKind {
	return t.kinds[sym]
}

// Rule is one alternative of a production. An empty rule and a rule consisting of only EPSILON both derive
// the empty string and are treated identically.
type Rule []Symbol

func NewRule(syms ...string) Rule {
	r := make(Rule, len(syms))
	for i, s := range syms {
		r[i] = Symbol(s)
	}
	return r
}

func (r Rule) IsEpsilon() bool {
	return len(r) == 0 || (len(r) == 1 && r[0] == Epsilon)
}

// Symbols returns the symbols of the rule without EPSILON.
func (r Rule) Symbols() []Symbol {
	if r.IsEpsilon() {
		return nil
	}
	return r
}

// HasPrefix reports whether the rule begins with all the symbols of prefix.
func (r Rule) HasPrefix(prefix Rule) bool {
	if len(prefix) > len(r) {
		return false
	}
	for i, sym := range prefix {
		if r[i] != sym {
			return false
		}
	}
	return true
}

func (r Rule) Equal(o Rule) bool {
	if r.IsEpsilon() || o.IsEpsilon() {
		return r.IsEpsilon() && o.IsEpsilon()
	}
	return len(r) == len(o) && r.HasPrefix(o)
}

func (r Rule) clone() Rule {
	if r == nil {
		return nil
	}
	c := make(Rule, len(r))
	copy(c, r)
	return c
}

func (r Rule) String() string {
	if r.IsEpsilon() {
		return Epsilon.String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%v", r[0])
	for _, sym := range r[1:] {
		fmt.Fprintf(&b, " %v", sym)
	}
	return b.String()
}
