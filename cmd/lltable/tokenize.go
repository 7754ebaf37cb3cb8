package main

import (
	"errors"
	"fmt"

	gspec "github.com/nihei9/lltable/spec/grammar"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var tokenizeFlags = struct {
	output *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "tokenize [source file path]",
		Short:   "Split a source text into tokens",
		Example: `  cat src | lltable tokenize --tokenizer toy --remap identifier=id`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runTokenize,
	}
	tokenizeFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	rootCmd.AddCommand(cmd)
}

func runTokenize(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	src, err := openSource(cmd, path)
	if err != nil {
		return err
	}
	defer src.Close()

	toks, tokErr := newTokenizer()(src)
	if toks == nil && tokErr != nil {
		return tokErr
	}
	err = writeJSON(cmd, *tokenizeFlags.output, gspec.NewTokens(toks))
	if err != nil {
		return fmt.Errorf("Cannot write the tokens: %w", err)
	}
	if tokErr != nil {
		for _, err := range multierr.Errors(tokErr) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
		}
		return errors.New("The source text contains invalid tokens")
	}
	return nil
}
