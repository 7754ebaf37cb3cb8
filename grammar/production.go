package grammar

import (
	"fmt"
	"strings"
)

// Production is a non-terminal together with all its alternatives. The order of the rules is significant
// because parsing tables address a rule by its index.
type Production struct {
	Parent Symbol
	Rules  []Rule
}

func NewProduction(parent Symbol, rules ...Rule) *Production {
	return &Production{
		Parent: parent,
		Rules:  rules,
	}
}

func (p *Production) clone() *Production {
	rules := make([]Rule, len(p.Rules))
	for i, r := range p.Rules {
		rules[i] = r.clone()
	}
	return &Production{
		Parent: p.Parent,
		Rules:  rules,
	}
}

func (p *Production) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v ->", p.Parent)
	for i, r := range p.Rules {
		if i > 0 {
			fmt.Fprintf(&b, " |")
		}
		fmt.Fprintf(&b, " %v", r)
	}
	return b.String()
}

// productionSet keeps productions in declaration order and indexes them by their parents.
type productionSet struct {
	prods      []*Production
	parent2Idx map[Symbol]int
}

func newProductionSet() *productionSet {
	return &productionSet{
		parent2Idx: map[Symbol]int{},
	}
}

func (ps *productionSet) append(prod *Production) error {
	if _, ok := ps.parent2Idx[prod.Parent]; ok {
		return fmt.Errorf("%w: %v", semErrDuplicateProduction, prod.Parent)
	}
	ps.parent2Idx[prod.Parent] = len(ps.prods)
	ps.prods = append(ps.prods, prod)
	return nil
}

func (ps *productionSet) findByParent(parent Symbol) (*Production, int, bool) {
	i, ok := ps.parent2Idx[parent]
	if !ok {
		return nil, -1, false
	}
	return ps.prods[i], i, true
}

func (ps *productionSet) getAllProductions() []*Production {
	return ps.prods
}
