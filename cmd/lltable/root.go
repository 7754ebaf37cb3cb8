package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nihei9/lltable/config"
	"github.com/nihei9/lltable/driver/lexer"
	verr "github.com/nihei9/lltable/error"
	"github.com/nihei9/lltable/grammar"
	"github.com/nihei9/lltable/spec"
	gspec "github.com/nihei9/lltable/spec/grammar"
	"github.com/nihei9/lltable/tester"
	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// tracer traces with key 'lltable.cli'.
func tracer() tracing.Trace {
	return tracing.Select("lltable.cli")
}

var traceKeys = []string{
	"lltable.cli",
	"lltable.grammar",
	"lltable.parser",
	"lltable.lexer",
	"lltable.tester",
}

const defaultConfigPath = "lltable.toml"

var rootFlags = struct {
	config                 *string
	trace                  *string
	eliminateLeftRecursion *bool
	leftFactoring          *bool
	factorByLeadingSymbol  *bool
	lookahead              *string
	recovery               *string
	maxSteps               *int
	tokenizer              *string
	remap                  *string
}{}

var (
	appFs        afero.Fs = afero.NewOsFs()
	conf                  = config.NewConfig()
	compileCache *grammar.Cache
)

var rootCmd = &cobra.Command{
	Use:   "lltable",
	Short: "Build LL(1) parsing tables and parse with them",
	Long: `lltable provides the following features:
- Transforms a grammar into an LL(1) form by eliminating left recursion and factoring rules.
- Computes FIRST and FOLLOW sets and builds a parsing table with synch entries.
- Parses token streams with the table, recovering from errors, and prints traces and parse trees.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setUp,
}

func init() {
	pf := rootCmd.PersistentFlags()
	rootFlags.config = pf.String("config", "", "config file path (default ./"+defaultConfigPath+" if it exists)")
	rootFlags.trace = pf.String("trace", "", "trace level [Debug|Info|Error]")
	rootFlags.eliminateLeftRecursion = pf.Bool("eliminate-left-recursion", true, "eliminate left recursion")
	rootFlags.leftFactoring = pf.Bool("left-factoring", true, "factor rules having a common prefix")
	rootFlags.factorByLeadingSymbol = pf.Bool("factor-by-leading-symbol", false, "group rules by their first symbol when factoring")
	rootFlags.lookahead = pf.String("lookahead", config.LookaheadFirstSymbol, "how a table selects rules [first-symbol|sequence]")
	rootFlags.recovery = pf.String("recovery", config.RecoverySkip, "error recovery of the parser [skip|halt]")
	rootFlags.maxSteps = pf.Int("max-steps", 0, "the maximum number of parser steps (0 means no limit)")
	rootFlags.tokenizer = pf.String("tokenizer", config.TokenizerWords, "how a source text is split into tokens [words|toy]")
	rootFlags.remap = pf.String("remap", "", "terminal renaming such as `identifier=id,integer constant=num`")
}

func Execute() error {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}

// setUp reads the config file and applies the flags given explicitly on top of it.
func setUp(cmd *cobra.Command, args []string) error {
	c := config.NewConfig()
	confPath := *rootFlags.config
	if confPath == "" {
		if ok, _ := afero.Exists(appFs, defaultConfigPath); ok {
			confPath = defaultConfigPath
		}
	}
	if confPath != "" {
		err := c.Load(appFs, confPath)
		if err != nil {
			return fmt.Errorf("Cannot read the config file: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("trace") {
		c.Log.Level = *rootFlags.trace
	}
	if flags.Changed("eliminate-left-recursion") {
		c.Transform.EliminateLeftRecursion = *rootFlags.eliminateLeftRecursion
	}
	if flags.Changed("left-factoring") {
		c.Transform.LeftFactoring = *rootFlags.leftFactoring
	}
	if flags.Changed("factor-by-leading-symbol") {
		c.Transform.GroupByLeadingSymbol = *rootFlags.factorByLeadingSymbol
	}
	if flags.Changed("lookahead") {
		c.Table.Lookahead = *rootFlags.lookahead
	}
	if flags.Changed("recovery") {
		c.Parser.Recovery = *rootFlags.recovery
	}
	if flags.Changed("max-steps") {
		c.Parser.MaxSteps = *rootFlags.maxSteps
	}
	if flags.Changed("tokenizer") {
		c.Lexer.Tokenizer = *rootFlags.tokenizer
	}
	if flags.Changed("remap") {
		m, err := lexer.ParseRemap(*rootFlags.remap)
		if err != nil {
			return err
		}
		for from, to := range m {
			c.Lexer.Remap[from] = to
		}
	}
	err := c.Valid()
	if err != nil {
		return err
	}

	level := tracing.TraceLevelFromString(c.Log.Level)
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}

	ttl, err := c.Cache.Duration()
	if err != nil {
		return err
	}
	compileCache = grammar.NewCache(ttl, c.Cache.Capacity)
	conf = c

	tracer().Debugf("config: %+v", *conf)
	return nil
}

// readGrammar reads a grammar written in the textual format, or in the interchange format when the file
// name ends with .json.
func readGrammar(ctx context.Context, path string) (gram *grammar.Grammar, retErr error) {
	defer func() {
		if retErr == nil {
			return
		}
		var specErrs verr.SpecErrors
		if errors.As(retErr, &specErrs) {
			for _, err := range specErrs {
				err.FilePath = path
				err.SourceName = path
				err.FS = appFs
			}
		}
		var specErr *verr.SpecError
		if errors.As(retErr, &specErr) {
			specErr.FilePath = path
			specErr.SourceName = path
			specErr.FS = appFs
		}
	}()

	src, err := afero.ReadFile(appFs, path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the grammar file %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return gspec.LoadGrammar(ctx, src)
	}

	ast, err := spec.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	b := grammar.GrammarBuilder{
		AST: ast,
	}
	return b.Build()
}

func compileGrammar(ctx context.Context, path string) (*grammar.CompiledGrammar, error) {
	gram, err := readGrammar(ctx, path)
	if err != nil {
		return nil, err
	}
	cg, err := compileCache.Compile(gram, conf.CompileOptions()...)
	if err != nil {
		return nil, err
	}
	if n := len(cg.Table.Conflicts()); n > 0 {
		tracer().Errorf("%v: %v conflicts", path, n)
	}
	return cg, nil
}

// openSource opens a source file. An empty path means stdin.
func openSource(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := appFs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the source file %s: %w", path, err)
	}
	return f, nil
}

func newTokenizer() tester.Tokenizer {
	opts := conf.LexerOptions()
	return func(src io.Reader) ([]*lexer.Token, error) {
		var s *lexer.LexSpec
		var err error
		if conf.Lexer.Tokenizer == config.TokenizerToy {
			s, err = lexer.ToyLanguageSpec()
		} else {
			s, err = lexer.WordSpec()
		}
		if err != nil {
			return nil, err
		}
		l, err := lexer.NewLexer(s, src, opts...)
		if err != nil {
			return nil, err
		}
		return lexer.ReadAll(l)
	}
}

// writeJSON writes v to a file, or to the standard output of cmd when path is empty.
func writeJSON(cmd *cobra.Command, path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if path == "" {
		_, err := cmd.OutOrStdout().Write(b)
		return err
	}
	return afero.WriteFile(appFs, path, b, 0644)
}
