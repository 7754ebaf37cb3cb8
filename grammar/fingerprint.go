package grammar

import (
	"github.com/cnf/structhash"
)

type fingerprintProduction struct {
	Parent string
	Rules  [][]string
}

type fingerprintSource struct {
	Terminals    []string
	NonTerminals []string
	Start        string
	Productions  []fingerprintProduction
}

// Fingerprint returns a hash of the content of a grammar. Grammars with the same declarations and the same
// productions in the same order have the same fingerprint. An empty rule and an EPSILON rule are not
// distinguished.
func Fingerprint(gram *Grammar) (string, error) {
	src := fingerprintSource{
		Start: gram.Start().String(),
	}
	for _, sym := range gram.Terminals() {
		src.Terminals = append(src.Terminals, sym.String())
	}
	for _, sym := range gram.NonTerminals() {
		src.NonTerminals = append(src.NonTerminals, sym.String())
	}
	for _, prod := range gram.Productions() {
		fp := fingerprintProduction{
			Parent: prod.Parent.String(),
		}
		for _, r := range prod.Rules {
			syms := []string{Epsilon.String()}
			if !r.IsEpsilon() {
				syms = make([]string, len(r))
				for i, sym := range r {
					syms[i] = sym.String()
				}
			}
			fp.Rules = append(fp.Rules, syms)
		}
		src.Productions = append(src.Productions, fp)
	}
	return structhash.Hash(src, 1)
}
