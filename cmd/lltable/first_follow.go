package main

import (
	"fmt"

	gspec "github.com/nihei9/lltable/spec/grammar"
	"github.com/spf13/cobra"
)

var firstFollowFlags = struct {
	output *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "first-follow <grammar file path>",
		Short:   "Print FIRST and FOLLOW sets of the non-terminals of a transformed grammar",
		Example: `  lltable first-follow expr.grammar`,
		Args:    cobra.ExactArgs(1),
		RunE:    runFirstFollow,
	}
	firstFollowFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	rootCmd.AddCommand(cmd)
}

func runFirstFollow(cmd *cobra.Command, args []string) error {
	cg, err := compileGrammar(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	err = writeJSON(cmd, *firstFollowFlags.output, gspec.NewFirstFollow(cg.First, cg.Follow))
	if err != nil {
		return fmt.Errorf("Cannot write FIRST and FOLLOW sets: %w", err)
	}
	return nil
}
