package main

import (
	"errors"
	"fmt"

	"github.com/nihei9/lltable/tester"
	"github.com/spf13/cobra"
)

var testFlags = struct {
	concurrency *int
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "test <grammar file path> <test file path>|<test directory path>",
		Short:   "Test a grammar",
		Example: `  lltable test expr.grammar test`,
		Args:    cobra.ExactArgs(2),
		RunE:    runTest,
	}
	testFlags.concurrency = cmd.Flags().IntP("concurrency", "j", 0, "the number of test cases run at once (0 means no limit)")
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	cg, err := compileGrammar(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a grammar: %w", err)
	}

	var cs []*tester.TestCaseWithMetadata
	{
		cs = tester.ListTestCases(appFs, args[1])
		errOccurred := false
		for _, c := range cs {
			if c.Error != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to read a test case or a directory: %v\n%v\n", c.FilePath, c.Error)
				errOccurred = true
			}
		}
		if errOccurred {
			return errors.New("Cannot run test")
		}
	}

	t := &tester.Tester{
		Grammar:     cg,
		Cases:       cs,
		Tokenizer:   newTokenizer(),
		Concurrency: *testFlags.concurrency,
	}
	rs, err := t.Run(cmd.Context())
	if err != nil {
		return err
	}
	testFailed := false
	for _, r := range rs {
		fmt.Fprintln(cmd.OutOrStdout(), r)
		if r.Error != nil {
			testFailed = true
		}
	}
	if testFailed {
		return errors.New("Test failed")
	}
	return nil
}
