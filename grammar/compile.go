package grammar

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

type compileConfig struct {
	eliminateLeftRecursion bool
	leftFactoring          bool
	factorByLeadingSymbol  bool
	lookaheadSequence      bool
}

func (c *compileConfig) String() string {
	return fmt.Sprintf("lr=%v,lf=%v,lead=%v,seq=%v",
		c.eliminateLeftRecursion, c.leftFactoring, c.factorByLeadingSymbol, c.lookaheadSequence)
}

type CompileOption func(config *compileConfig)

func EliminatingLeftRecursion() CompileOption {
	return func(config *compileConfig) {
		config.eliminateLeftRecursion = true
	}
}

// FactoringLeft enables left factoring. When byLeadingSymbol is true, rules beginning with the same symbol
// are grouped.
func FactoringLeft(byLeadingSymbol bool) CompileOption {
	return func(config *compileConfig) {
		config.leftFactoring = true
		config.factorByLeadingSymbol = byLeadingSymbol
	}
}

func SelectingBySequence() CompileOption {
	return func(config *compileConfig) {
		config.lookaheadSequence = true
	}
}

// CompiledGrammar bundles a grammar ready for LL(1) parsing with everything computed from it. Original is the
// grammar before the transformations.
type CompiledGrammar struct {
	Original *Grammar
	Grammar  *Grammar
	First    *FirstSet
	Follow   *FollowSet
	Table    *ParsingTable
}

// Compile applies the enabled transformations (left recursion elimination first, then left factoring),
// computes FIRST and FOLLOW sets, and builds the parsing table.
func Compile(gram *Grammar, opts ...CompileOption) (*CompiledGrammar, error) {
	config := &compileConfig{}
	for _, opt := range opts {
		opt(config)
	}
	return compile(gram, config)
}

func compile(gram *Grammar, config *compileConfig) (*CompiledGrammar, error) {
	g := gram
	if config.eliminateLeftRecursion {
		var err error
		g, err = EliminateLeftRecursion(g)
		if err != nil {
			return nil, fmt.Errorf("failed to eliminate left recursion: %w", err)
		}
	}
	if config.leftFactoring {
		var lfOpts []LeftFactoringOption
		if config.factorByLeadingSymbol {
			lfOpts = append(lfOpts, GroupByLeadingSymbol())
		}
		var err error
		g, err = ApplyLeftFactoring(g, lfOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to apply left factoring: %w", err)
		}
	}

	first, err := GenFirstSet(g)
	if err != nil {
		return nil, err
	}
	follow, err := GenFollowSet(g, first)
	if err != nil {
		return nil, err
	}

	var tabOpts []TableOption
	if config.lookaheadSequence {
		tabOpts = append(tabOpts, LookaheadSequence())
	}
	tab, err := BuildParsingTable(g, first, follow, tabOpts...)
	if err != nil {
		return nil, err
	}
	tracer().Infof("compiled a grammar: %v productions, %v terminals, %v conflicts",
		len(g.Productions()), len(g.Terminals()), len(tab.Conflicts()))

	return &CompiledGrammar{
		Original: gram,
		Grammar:  g,
		First:    first,
		Follow:   follow,
		Table:    tab,
	}, nil
}

// CompileAll compiles independent grammars in parallel. The results are in the order of the inputs. The first
// error cancels the compilations not started yet.
func CompileAll(ctx context.Context, grams []*Grammar, opts ...CompileOption) ([]*CompiledGrammar, error) {
	cgs := make([]*CompiledGrammar, len(grams))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, gram := range grams {
		i, gram := i, gram
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cg, err := Compile(gram, opts...)
			if err != nil {
				return fmt.Errorf("grammar #%v: %w", i, err)
			}
			cgs[i] = cg
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return cgs, nil
}
