package main

import (
	"errors"
	"fmt"

	"github.com/nihei9/lltable/grammar"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "check <grammar file path>...",
		Short:   "Report whether grammars are LL(1) after the transformations",
		Example: `  lltable check *.grammar`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    runCheck,
	}
	rootCmd.AddCommand(cmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	grams := make([]*grammar.Grammar, len(args))
	for i, path := range args {
		gram, err := readGrammar(cmd.Context(), path)
		if err != nil {
			return err
		}
		grams[i] = gram
	}

	cgs, err := grammar.CompileAll(cmd.Context(), grams, conf.CompileOptions()...)
	if err != nil {
		return err
	}

	notLL1 := false
	for i, cg := range cgs {
		cs := cg.Table.Conflicts()
		if len(cs) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%v: LL(1)\n", args[i])
			continue
		}
		notLL1 = true
		fmt.Fprintf(cmd.OutOrStdout(), "%v: %v conflicts\n", args[i], len(cs))
		for _, c := range cs {
			fmt.Fprintf(cmd.OutOrStdout(), "    %v\n", c)
		}
	}
	if notLL1 {
		return errors.New("Some grammars are not LL(1)")
	}
	return nil
}
