package main

import (
	"fmt"

	gspec "github.com/nihei9/lltable/spec/grammar"
	"github.com/spf13/cobra"
)

var tableFlags = struct {
	output    *string
	conflicts *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "table <grammar file path>",
		Short:   "Build a parsing table from a grammar",
		Example: `  lltable table expr.grammar -o expr-table.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runTable,
	}
	tableFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	tableFlags.conflicts = cmd.Flags().String("conflicts", "", "file path to write the conflicts to")
	rootCmd.AddCommand(cmd)
}

func runTable(cmd *cobra.Command, args []string) error {
	cg, err := compileGrammar(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	tab, err := gspec.NewTable(cg.Table)
	if err != nil {
		return fmt.Errorf("Cannot encode the parsing table: %w", err)
	}
	err = writeJSON(cmd, *tableFlags.output, tab)
	if err != nil {
		return fmt.Errorf("Cannot write the parsing table: %w", err)
	}

	if *tableFlags.conflicts != "" {
		err := writeJSON(cmd, *tableFlags.conflicts, gspec.NewConflicts(cg.Table))
		if err != nil {
			return fmt.Errorf("Cannot write the conflicts: %w", err)
		}
	}
	if n := len(cg.Table.Conflicts()); n > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%v conflicts\n", n)
	}
	return nil
}
