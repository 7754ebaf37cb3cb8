package grammar

import (
	"fmt"
)

// NameGenerator makes fresh non-terminal names that collide with none of the names it has seen.
type NameGenerator struct {
	used map[Symbol]struct{}
}

func NewNameGenerator(existing ...[]Symbol) *NameGenerator {
	g := &NameGenerator{
		used: map[Symbol]struct{}{
			Epsilon:   {},
			EndMarker: {},
		},
	}
	for _, syms := range existing {
		for _, sym := range syms {
			g.used[sym] = struct{}{}
		}
	}
	return g
}

func newNameGeneratorFor(gram *Grammar) *NameGenerator {
	return NewNameGenerator(gram.Terminals(), gram.NonTerminals())
}

// Fresh returns base when it is unused, otherwise the first unused name of base_1, base_2, and so on.
// The returned name is marked as used.
func (g *NameGenerator) Fresh(base string) Symbol {
	name := Symbol(base)
	for n := 1; ; n++ {
		if _, ok := g.used[name]; !ok {
			break
		}
		name = Symbol(fmt.Sprintf("%v_%v", base, n))
	}
	g.used[name] = struct{}{}
	return name
}

func primeName(parent Symbol) string {
	return parent.String() + "'"
}

func factoredName(parent Symbol) string {
	return parent.String() + "_fact"
}

// concat joins two symbol sequences. The result is an epsilon rule when both are empty.
func concat(a, b []Symbol) Rule {
	r := make(Rule, 0, len(a)+len(b))
	r = append(r, Rule(a).Symbols()...)
	r = append(r, Rule(b).Symbols()...)
	if len(r) == 0 {
		return Rule{Epsilon}
	}
	return r
}

// EliminateImmediateLeftRecursion rewrites `A -> A a1 | ... | A am | b1 | ... | bn` into
// `A -> b1 A' | ... | bn A'` and `A' -> a1 A' | ... | am A' | EPSILON`. It returns the production itself when
// it is not left-recursive, otherwise the productions of A and A' in this order. A rule `A -> A` derives
// nothing new and is dropped.
func EliminateImmediateLeftRecursion(prod *Production, names *NameGenerator) []*Production {
	var recursive []Rule
	var nonRecursive []Rule
	for _, r := range prod.Rules {
		syms := r.Symbols()
		if len(syms) > 0 && syms[0] == prod.Parent {
			if len(syms) == 1 {
				tracer().Debugf("dropping a cyclic rule %v -> %v", prod.Parent, r)
				continue
			}
			recursive = append(recursive, syms[1:])
			continue
		}
		nonRecursive = append(nonRecursive, r)
	}
	if len(recursive) == 0 {
		if len(nonRecursive) == len(prod.Rules) {
			return []*Production{prod.clone()}
		}
		return []*Production{NewProduction(prod.Parent, nonRecursive...)}
	}

	prime := names.Fresh(primeName(prod.Parent))
	tracer().Debugf("eliminating left recursion of %v with %v", prod.Parent, prime)

	parentRules := make([]Rule, 0, len(nonRecursive))
	for _, beta := range nonRecursive {
		parentRules = append(parentRules, concat(beta, []Symbol{prime}))
	}
	if len(parentRules) == 0 {
		parentRules = append(parentRules, Rule{prime})
	}

	primeRules := make([]Rule, 0, len(recursive)+1)
	for _, alpha := range recursive {
		primeRules = append(primeRules, concat(alpha, []Symbol{prime}))
	}
	primeRules = append(primeRules, Rule{Epsilon})

	return []*Production{
		NewProduction(prod.Parent, parentRules...),
		NewProduction(prime, primeRules...),
	}
}

// EliminateLeftRecursion removes both immediate and indirect left recursion. Non-terminals are ordered as
// A1, ..., An by the order of the productions. For each Ai, every rule `Ai -> Aj g` with j < i is replaced by
// `Ai -> d g` for each rule `Aj -> d`, and then the immediate left recursion of Ai is eliminated. A new
// production Ai' is inserted right after Ai and takes part in the following iterations.
//
// The grammar must not have cycles of nullable non-terminals.
func EliminateLeftRecursion(gram *Grammar) (*Grammar, error) {
	names := newNameGeneratorFor(gram)
	nonTerms := gram.NonTerminals()

	prods := make([]*Production, 0, len(gram.Productions()))
	for _, prod := range gram.Productions() {
		prods = append(prods, prod.clone())
	}

	for i := 0; i < len(prods); i++ {
		for j := 0; j < i; j++ {
			prods[i] = substituteLeading(prods[i], prods[j])
		}

		transformed := EliminateImmediateLeftRecursion(prods[i], names)
		prods[i] = transformed[0]
		if len(transformed) > 1 {
			prods = append(prods[:i+1], append([]*Production{transformed[1]}, prods[i+1:]...)...)
			nonTerms = append(nonTerms, transformed[1].Parent)
		}
	}

	return gram.derive(nonTerms, prods)
}

// substituteLeading replaces every rule of prod beginning with the parent of sub with the rules obtained by
// expanding the leading symbol with each rule of sub.
func substituteLeading(prod *Production, sub *Production) *Production {
	var rules []Rule
	replaced := false
	for _, r := range prod.Rules {
		syms := r.Symbols()
		if len(syms) == 0 || syms[0] != sub.Parent {
			rules = append(rules, r)
			continue
		}
		replaced = true
		for _, subRule := range sub.Rules {
			rules = append(rules, concat(subRule, syms[1:]))
		}
	}
	if !replaced {
		return prod
	}
	return NewProduction(prod.Parent, rules...)
}

// LeftFactoringOption changes how rules are grouped by ApplyLeftFactoring.
type LeftFactoringOption func(c *leftFactoringConfig)

type leftFactoringConfig struct {
	byLeadingSymbol bool
}

// GroupByLeadingSymbol groups every pair of rules beginning with the same symbol. By default a rule joins a
// group only when the rule opening the group begins with all of its symbols.
func GroupByLeadingSymbol() LeftFactoringOption {
	return func(c *leftFactoringConfig) {
		c.byLeadingSymbol = true
	}
}

// ApplyLeftFactoring factors out common prefixes of rules. Each group of two or more rules sharing a prefix is
// replaced with a rule `prefix F` where F is a new non-terminal whose rules are the rest of each member. A
// member equal to the prefix gives F an epsilon rule. Each new production is inserted right after its parent.
// Factoring is a single pass. Rules of the new non-terminals are not factored again.
func ApplyLeftFactoring(gram *Grammar, opts ...LeftFactoringOption) (*Grammar, error) {
	config := &leftFactoringConfig{}
	for _, opt := range opts {
		opt(config)
	}

	names := newNameGeneratorFor(gram)
	nonTerms := gram.NonTerminals()
	var prods []*Production
	for _, prod := range gram.Productions() {
		factored, added := factorProduction(prod, names, config)
		prods = append(prods, factored...)
		nonTerms = append(nonTerms, added...)
	}

	return gram.derive(nonTerms, prods)
}

func factorProduction(prod *Production, names *NameGenerator, config *leftFactoringConfig) ([]*Production, []Symbol) {
	grouped := make([]bool, len(prod.Rules))
	var rules []Rule
	var facts []*Production
	var added []Symbol
	for i, r := range prod.Rules {
		if grouped[i] {
			continue
		}
		grouped[i] = true
		if r.IsEpsilon() {
			rules = append(rules, r)
			continue
		}

		group := []Rule{r}
		for j := i + 1; j < len(prod.Rules); j++ {
			if grouped[j] || prod.Rules[j].IsEpsilon() {
				continue
			}
			var joins bool
			if config.byLeadingSymbol {
				joins = prod.Rules[j][0] == r[0]
			} else {
				joins = r.HasPrefix(prod.Rules[j])
			}
			if joins {
				group = append(group, prod.Rules[j])
				grouped[j] = true
			}
		}

		prefix := longestCommonPrefix(group)
		if len(group) == 1 || len(prefix) == 0 {
			rules = append(rules, group...)
			continue
		}

		fact := names.Fresh(factoredName(prod.Parent))
		tracer().Debugf("factoring %v out of %v into %v", prefix, prod.Parent, fact)
		rules = append(rules, concat(prefix, []Symbol{fact}))
		factRules := make([]Rule, 0, len(group))
		for _, member := range group {
			factRules = append(factRules, concat(nil, member[len(prefix):]))
		}
		facts = append(facts, NewProduction(fact, factRules...))
		added = append(added, fact)
	}

	if len(facts) == 0 {
		return []*Production{prod.clone()}, nil
	}
	return append([]*Production{NewProduction(prod.Parent, rules...)}, facts...), added
}

// longestCommonPrefix compares the rules position by position up to the length of the shortest one and stops
// at the first mismatch.
func longestCommonPrefix(rules []Rule) Rule {
	if len(rules) == 0 {
		return nil
	}
	minLen := len(rules[0])
	for _, r := range rules[1:] {
		if len(r) < minLen {
			minLen = len(r)
		}
	}
	var prefix Rule
	for i := 0; i < minLen; i++ {
		sym := rules[0][i]
		for _, r := range rules[1:] {
			if r[i] != sym {
				return prefix
			}
		}
		prefix = append(prefix, sym)
	}
	return prefix
}
