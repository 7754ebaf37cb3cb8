package main

import (
	"context"
	"fmt"
	"io"

	"github.com/nihei9/lltable/driver/lexer"
	"github.com/nihei9/lltable/driver/parser"
	"github.com/nihei9/lltable/grammar"
	gspec "github.com/nihei9/lltable/spec/grammar"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const (
	parseFormatJSON = "json"
	parseFormatTree = "tree"
)

var parseFlags = struct {
	source *string
	tokens *string
	table  *string
	output *string
	format *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "parse <grammar file path>",
		Short: "Parse a text stream",
		Example: `  cat src | lltable parse expr.grammar
  lltable parse expr.grammar --tokens tokens.json --table expr-table.json`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.tokens = cmd.Flags().String("tokens", "", "tokens file path in the interchange format; the source is not read when this is given")
	parseFlags.table = cmd.Flags().String("table", "", "parsing table file path in the interchange format (default a table built from the grammar)")
	parseFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	parseFlags.format = cmd.Flags().String("format", parseFormatJSON, "output format [json|tree]")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	if *parseFlags.format != parseFormatJSON && *parseFlags.format != parseFormatTree {
		return fmt.Errorf("Invalid format: %v", *parseFlags.format)
	}

	cg, tab, err := readParsingTable(cmd.Context(), args[0], *parseFlags.table)
	if err != nil {
		return err
	}
	toks, err := readTokens(cmd, *parseFlags.source, *parseFlags.tokens)
	if err != nil {
		return err
	}

	p, err := parser.NewParser(parser.NewGrammar(tab), parser.NewLexerTokenStream(toks), conf.ParserOptions()...)
	if err != nil {
		return err
	}
	err = p.Run()
	if err != nil {
		return err
	}
	for _, e := range p.Errors() {
		fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", e)
	}

	switch *parseFlags.format {
	case parseFormatTree:
		if !p.Accepted() {
			break
		}
		tree, err := p.BuildTree(cg.Grammar)
		if err != nil {
			return err
		}
		var w io.Writer = cmd.OutOrStdout()
		if *parseFlags.output != "" {
			f, err := appFs.Create(*parseFlags.output)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		parser.PrintTree(w, tree)
	default:
		r, err := gspec.NewReport(cg.Grammar, p)
		if err != nil {
			return err
		}
		r.Tokens = gspec.NewTokens(toks)
		err = writeJSON(cmd, *parseFlags.output, r)
		if err != nil {
			return fmt.Errorf("Cannot write the report: %w", err)
		}
	}

	if !p.Accepted() {
		return fmt.Errorf("%v syntax errors occurred", len(p.Errors()))
	}
	return nil
}

// readParsingTable compiles a grammar. When tablePath is given, the table is read from the file instead of the
// one built from the grammar; the table must be one of the transformed grammar.
func readParsingTable(ctx context.Context, grammarPath, tablePath string) (*grammar.CompiledGrammar, *grammar.ParsingTable, error) {
	cg, err := compileGrammar(ctx, grammarPath)
	if err != nil {
		return nil, nil, err
	}
	if tablePath == "" {
		return cg, cg.Table, nil
	}
	src, err := afero.ReadFile(appFs, tablePath)
	if err != nil {
		return nil, nil, fmt.Errorf("Cannot open the parsing table %s: %w", tablePath, err)
	}
	tab, err := gspec.LoadTable(ctx, cg.Grammar, src)
	if err != nil {
		return nil, nil, fmt.Errorf("Cannot read the parsing table %s: %w", tablePath, err)
	}
	return cg, tab, nil
}

// readTokens reads tokens in the interchange format, or tokenizes a source text. Invalid tokens are errors.
func readTokens(cmd *cobra.Command, sourcePath, tokensPath string) ([]*lexer.Token, error) {
	if tokensPath != "" {
		src, err := afero.ReadFile(appFs, tokensPath)
		if err != nil {
			return nil, fmt.Errorf("Cannot open the tokens file %s: %w", tokensPath, err)
		}
		ts, err := gspec.LoadTokens(cmd.Context(), src)
		if err != nil {
			return nil, err
		}
		toks := gspec.LexerTokens(ts)
		for _, tok := range toks {
			if tok.Invalid {
				return nil, fmt.Errorf("%v: an invalid token: %v", tokensPath, tok.Text)
			}
		}
		return toks, nil
	}

	src, err := openSource(cmd, sourcePath)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	toks, err := newTokenizer()(src)
	if err != nil {
		return nil, fmt.Errorf("Cannot tokenize the source text: %w", err)
	}
	return toks, nil
}
