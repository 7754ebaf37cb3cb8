package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/nihei9/lltable/driver/lexer"
	"github.com/nihei9/lltable/driver/parser"
	"github.com/nihei9/lltable/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var stepFlags = struct {
	source *string
	tokens *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "step <grammar file path>",
		Short: "Parse a text stream step by step interactively",
		Long: `step starts an interactive session. Commands:
  s, step     perform one step (an empty line does the same)
  r, run      run to the end
  stack       print the stack
  tree        print the parse tree of an accepted input
  reset       start over
  reload      read the grammar again and start over
  q, quit     quit`,
		Example: `  lltable step expr.grammar --source src`,
		Args:    cobra.ExactArgs(1),
		RunE:    runStep,
	}
	stepFlags.source = cmd.Flags().StringP("source", "s", "", "source file path")
	stepFlags.tokens = cmd.Flags().String("tokens", "", "tokens file path in the interchange format")
	rootCmd.AddCommand(cmd)
}

func runStep(cmd *cobra.Command, args []string) error {
	if *stepFlags.source == "" && *stepFlags.tokens == "" {
		return fmt.Errorf("Either --source or --tokens is required because stdin is used for commands")
	}
	toks, err := readTokens(cmd, *stepFlags.source, *stepFlags.tokens)
	if err != nil {
		return err
	}
	s := &stepper{
		grammarPath: args[0],
		toks:        toks,
	}
	err = s.reload(cmd.Context())
	if err != nil {
		return err
	}

	repl, err := readline.New("lltable> ")
	if err != nil {
		return err
	}
	defer repl.Close()

	pterm.Info.Println(fmt.Sprintf("%v tokens; quit with q or <ctrl>D", len(toks)))
	for {
		line, err := repl.Readline()
		if err != nil {
			break
		}
		quit, err := s.exec(cmd.Context(), strings.TrimSpace(line), repl.Stdout())
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	return nil
}

// stepper drives a parser by commands of the step session.
type stepper struct {
	grammarPath string
	toks        []*lexer.Token
	cg          *grammar.CompiledGrammar
	p           *parser.Parser
	printed     int
}

func (s *stepper) reload(ctx context.Context) error {
	cg, err := compileGrammar(ctx, s.grammarPath)
	if err != nil {
		return err
	}
	p, err := parser.NewParser(parser.NewGrammar(cg.Table), parser.NewLexerTokenStream(s.toks), conf.ParserOptions()...)
	if err != nil {
		return err
	}
	s.cg = cg
	s.p = p
	s.printed = 0
	return nil
}

func (s *stepper) exec(ctx context.Context, line string, w io.Writer) (bool, error) {
	switch line {
	case "", "s", "step":
		if s.p.IsComplete() {
			s.printResult(w)
			return false, nil
		}
		err := s.p.Step()
		if err != nil {
			return false, err
		}
		s.printTrace(w)
		if s.p.IsComplete() {
			s.printResult(w)
		}
	case "r", "run":
		err := s.p.Run()
		if err != nil {
			return false, err
		}
		s.printTrace(w)
		s.printResult(w)
	case "stack":
		fmt.Fprintf(w, "%v\n", s.p.Stack())
	case "tree":
		if !s.p.Accepted() {
			return false, fmt.Errorf("no tree; the input has not been accepted")
		}
		tree, err := s.p.BuildTree(s.cg.Grammar)
		if err != nil {
			return false, err
		}
		parser.PrintTree(w, tree)
	case "reset":
		s.p.Reset()
		s.printed = 0
	case "reload":
		err := s.reload(ctx)
		if err != nil {
			return false, err
		}
	case "q", "quit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command: %v", line)
	}
	return false, nil
}

// printTrace prints the trace records not printed yet. A step may record more than one because of
// discarded tokens.
func (s *stepper) printTrace(w io.Writer) {
	trace := s.p.Trace()
	for _, r := range trace[s.printed:] {
		fmt.Fprintf(w, "%v | %v | %v\n", r.Stack, r.Input, r.Action)
	}
	s.printed = len(trace)
}

func (s *stepper) printResult(w io.Writer) {
	if s.p.Accepted() {
		fmt.Fprintf(w, "accepted in %v steps\n", s.p.Steps())
		return
	}
	fmt.Fprintf(w, "rejected with %v errors\n", len(s.p.Errors()))
	for _, e := range s.p.Errors() {
		fmt.Fprintf(w, "    %v\n", e)
	}
}
