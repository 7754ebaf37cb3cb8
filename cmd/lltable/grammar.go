package main

import (
	"fmt"

	gspec "github.com/nihei9/lltable/spec/grammar"
	"github.com/spf13/cobra"
)

var grammarFlags = struct {
	output   *string
	original *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "grammar <grammar file path>",
		Short:   "Transform a grammar into an LL(1) form and print it in the interchange format",
		Example: `  lltable grammar expr.grammar -o expr.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runGrammar,
	}
	grammarFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	grammarFlags.original = cmd.Flags().Bool("original", false, "print the grammar before the transformations")
	rootCmd.AddCommand(cmd)
}

func runGrammar(cmd *cobra.Command, args []string) error {
	cg, err := compileGrammar(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	gram := cg.Grammar
	if *grammarFlags.original {
		gram = cg.Original
	}
	err = writeJSON(cmd, *grammarFlags.output, gspec.NewGrammar(gram))
	if err != nil {
		return fmt.Errorf("Cannot write the grammar: %w", err)
	}
	return nil
}
