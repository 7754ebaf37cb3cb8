package grammar

import (
	"fmt"
	"strings"

	verr "github.com/nihei9/lltable/error"
	"github.com/nihei9/lltable/spec"
	"go.uber.org/multierr"
)

// Grammar is an immutable context-free grammar. Transformations return new grammars and never modify their
// inputs, so a grammar can be shared freely once it has been built.
type Grammar struct {
	symbolTable   *symbolTable
	productionSet *productionSet
	start         Symbol
}

// NewGrammar validates the given declarations and productions and returns a grammar. All the violations found
// are reported together.
func NewGrammar(terminals, nonTerminals []Symbol, start Symbol, prods []*Production) (*Grammar, error) {
	var errs error

	symTab := newSymbolTable()
	for _, sym := range terminals {
		errs = multierr.Append(errs, symTab.registerTerminal(sym))
	}
	for _, sym := range nonTerminals {
		errs = multierr.Append(errs, symTab.registerNonTerminal(sym))
	}

	switch {
	case start == "":
		errs = multierr.Append(errs, semErrNoStartSymbol)
	case symTab.kind(start) != symbolKindNonTerminal:
		errs = multierr.Append(errs, fmt.Errorf("%w: %v", semErrStartNotNonTerminal, start))
	}

	if len(prods) == 0 {
		errs = multierr.Append(errs, semErrNoProduction)
	}
	prodSet := newProductionSet()
	for _, prod := range prods {
		if symTab.kind(prod.Parent) != symbolKindNonTerminal {
			errs = multierr.Append(errs, fmt.Errorf("%w: %v", semErrUndefinedNonTerminal, prod.Parent))
			continue
		}
		if len(prod.Rules) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("%w: %v", semErrNoRule, prod.Parent))
		}
		for _, r := range prod.Rules {
			errs = multierr.Append(errs, validateRule(symTab, prod.Parent, r))
		}
		errs = multierr.Append(errs, prodSet.append(prod.clone()))
	}
	if errs != nil {
		return nil, errs
	}

	for _, sym := range symTab.nonTerms {
		if _, _, ok := prodSet.findByParent(sym); !ok {
			return nil, fmt.Errorf("%w: %v", semErrNoRule, sym)
		}
	}

	return &Grammar{
		symbolTable:   symTab,
		productionSet: prodSet,
		start:         start,
	}, nil
}

func validateRule(symTab *symbolTable, parent Symbol, r Rule) error {
	var errs error
	for _, sym := range r {
		switch symTab.kind(sym) {
		case symbolKindTerminal, symbolKindNonTerminal:
		case symbolKindEpsilon:
			if len(r) != 1 {
				errs = multierr.Append(errs, fmt.Errorf("%w: %v -> %v", semErrMisplacedEpsilon, parent, r))
			}
		default:
			errs = multierr.Append(errs, fmt.Errorf("%w: %v (in %v -> %v)", semErrUndefinedSym, sym, parent, r))
		}
	}
	return errs
}

func (g *Grammar) Start() Symbol {
	return g.start
}

// Terminals returns the declared terminals in declaration order. The end-marker is not included.
func (g *Grammar) Terminals() []Symbol {
	syms := make([]Symbol, len(g.symbolTable.terms))
	copy(syms, g.symbolTable.terms)
	return syms
}

func (g *Grammar) NonTerminals() []Symbol {
	syms := make([]Symbol, len(g.symbolTable.nonTerms))
	copy(syms, g.symbolTable.nonTerms)
	return syms
}

// Productions returns the productions in order. Callers must not modify them.
func (g *Grammar) Productions() []*Production {
	return g.productionSet.getAllProductions()
}

func (g *Grammar) Production(prod int) (*Production, error) {
	prods := g.productionSet.getAllProductions()
	if prod < 0 || prod >= len(prods) {
		return nil, fmt.Errorf("%w: production %v", semErrIndexOutOfRange, prod)
	}
	return prods[prod], nil
}

func (g *Grammar) Rule(prod, rule int) (*Production, Rule, error) {
	p, err := g.Production(prod)
	if err != nil {
		return nil, nil, err
	}
	if rule < 0 || rule >= len(p.Rules) {
		return nil, nil, fmt.Errorf("%w: rule %v of production %v", semErrIndexOutOfRange, rule, prod)
	}
	return p, p.Rules[rule], nil
}

// ProductionOf returns the production of a non-terminal and its index.
func (g *Grammar) ProductionOf(sym Symbol) (*Production, int, bool) {
	return g.productionSet.findByParent(sym)
}

// IsTerminal reports whether a symbol is a declared terminal or the end-marker.
func (g *Grammar) IsTerminal(sym Symbol) bool {
	k := g.symbolTable.kind(sym)
	return k == symbolKindTerminal || k == symbolKindEndMarker
}

func (g *Grammar) IsNonTerminal(sym Symbol) bool {
	return g.symbolTable.kind(sym) == symbolKindNonTerminal
}

func (g *Grammar) String() string {
	var b strings.Builder
	for _, prod := range g.productionSet.getAllProductions() {
		fmt.Fprintf(&b, "%v\n", prod)
	}
	return b.String()
}

// derive makes a grammar having the same terminals and start symbol as g but the given non-terminals and
// productions.
func (g *Grammar) derive(nonTerms []Symbol, prods []*Production) (*Grammar, error) {
	return NewGrammar(g.symbolTable.terms, nonTerms, g.start, prods)
}

// GrammarBuilder makes a grammar from the AST of a textual grammar description, reporting the errors with
// their positions in the description.
type GrammarBuilder struct {
	AST *spec.RootNode

	errs verr.SpecErrors
}

func (b *GrammarBuilder) Build() (*Grammar, error) {
	symTab := newSymbolTable()
	for _, sym := range b.AST.Terminals {
		err := symTab.registerTerminal(Symbol(sym.Name))
		if err != nil {
			b.addError(err, sym.Pos)
		}
	}
	for _, sym := range b.AST.NonTerminals {
		err := symTab.registerNonTerminal(Symbol(sym.Name))
		if err != nil {
			b.addError(err, sym.Pos)
		}
	}

	var start Symbol
	if b.AST.Start == nil {
		b.errs = append(b.errs, &verr.SpecError{
			Cause: semErrNoStartSymbol,
		})
	} else {
		start = Symbol(b.AST.Start.Name)
		if symTab.kind(start) != symbolKindNonTerminal {
			b.addError(fmt.Errorf("%w: %v", semErrStartNotNonTerminal, start), b.AST.Start.Pos)
		}
	}

	var prods []*Production
	parent2Prod := map[Symbol]*Production{}
	for _, rule := range b.AST.Rules {
		parent := Symbol(rule.LHS.Name)
		if symTab.kind(parent) != symbolKindNonTerminal {
			b.addError(fmt.Errorf("%w: %v", semErrUndefinedNonTerminal, parent), rule.LHS.Pos)
			continue
		}
		rhs := make(Rule, len(rule.RHS))
		ok := true
		for i, sym := range rule.RHS {
			rhs[i] = Symbol(sym.Name)
			switch symTab.kind(rhs[i]) {
			case symbolKindTerminal, symbolKindNonTerminal:
			case symbolKindEpsilon:
				if len(rule.RHS) != 1 {
					b.addError(semErrMisplacedEpsilon, sym.Pos)
					ok = false
				}
			default:
				b.addError(fmt.Errorf("%w: %v", semErrUndefinedSym, sym.Name), sym.Pos)
				ok = false
			}
		}
		if !ok {
			continue
		}
		prod, found := parent2Prod[parent]
		if !found {
			prod = NewProduction(parent)
			parent2Prod[parent] = prod
			prods = append(prods, prod)
		}
		prod.Rules = append(prod.Rules, rhs)
	}
	for _, sym := range b.AST.NonTerminals {
		if _, ok := parent2Prod[Symbol(sym.Name)]; !ok && symTab.kind(Symbol(sym.Name)) == symbolKindNonTerminal {
			b.addError(fmt.Errorf("%w: %v", semErrNoRule, sym.Name), sym.Pos)
		}
	}

	if len(b.errs) > 0 {
		b.errs.Sort()
		return nil, b.errs
	}

	return NewGrammar(symTab.terms, symTab.nonTerms, start, prods)
}

func (b *GrammarBuilder) addError(err error, pos spec.Position) {
	b.errs = append(b.errs, &verr.SpecError{
		Cause: err,
		Row:   pos.Row,
		Col:   pos.Col,
	})
}
