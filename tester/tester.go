package tester

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nihei9/lltable/driver/lexer"
	"github.com/nihei9/lltable/driver/parser"
	"github.com/nihei9/lltable/grammar"
	tspec "github.com/nihei9/lltable/spec/test"
	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// tracer traces with key 'lltable.tester'.
func tracer() tracing.Trace {
	return tracing.Select("lltable.tester")
}

type TestResult struct {
	TestCasePath string
	Error        error
	Diffs        []*tspec.TreeDiff
}

func (r *TestResult) String() string {
	if r.Error != nil {
		const indent1 = "    "
		const indent2 = indent1 + indent1

		msgLines := strings.Split(r.Error.Error(), "\n")
		msg := fmt.Sprintf("Failed %v:\n%v%v", r.TestCasePath, indent1, strings.Join(msgLines, "\n"+indent1))
		if len(r.Diffs) == 0 {
			return msg
		}
		var diffLines []string
		for _, diff := range r.Diffs {
			diffLines = append(diffLines, diff.Message)
			diffLines = append(diffLines, fmt.Sprintf("%vexpected path: %v", indent1, diff.ExpectedPath))
			diffLines = append(diffLines, fmt.Sprintf("%vactual path:   %v", indent1, diff.ActualPath))
		}
		return fmt.Sprintf("%v\n%v%v", msg, indent2, strings.Join(diffLines, "\n"+indent2))
	}
	return fmt.Sprintf("Passed %v", r.TestCasePath)
}

type TestCaseWithMetadata struct {
	TestCase *tspec.TestCase
	FilePath string
	Error    error
}

// ListTestCases reads a test case file, or every test case file under a directory recursively. A file that
// cannot be read or parsed is listed with its error.
func ListTestCases(fs afero.Fs, testPath string) []*TestCaseWithMetadata {
	fi, err := fs.Stat(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	if !fi.IsDir() {
		c, err := parseTestCase(fs, testPath)
		return []*TestCaseWithMetadata{
			{
				TestCase: c,
				FilePath: testPath,
				Error:    err,
			},
		}
	}

	es, err := afero.ReadDir(fs, testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	var cases []*TestCaseWithMetadata
	for _, e := range es {
		cs := ListTestCases(fs, filepath.Join(testPath, e.Name()))
		cases = append(cases, cs...)
	}
	return cases
}

func parseTestCase(fs afero.Fs, testCasePath string) (*tspec.TestCase, error) {
	f, err := fs.Open(testCasePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tspec.ParseTestCase(f)
}

// Tokenizer splits the source part of a test case into tokens.
type Tokenizer func(src io.Reader) ([]*lexer.Token, error)

type Tester struct {
	Grammar *grammar.CompiledGrammar
	Cases   []*TestCaseWithMetadata

	// Tokenizer defaults to lexer.Words.
	Tokenizer Tokenizer

	// Concurrency limits the number of test cases running at once. 0 means no limit.
	Concurrency int
}

// Run runs the test cases in parallel. The results are in the same order as the cases. Run stops early only
// when ctx is cancelled.
func (t *Tester) Run(ctx context.Context) ([]*TestResult, error) {
	tokenize := t.Tokenizer
	if tokenize == nil {
		tokenize = lexer.Words
	}

	rs := make([]*TestResult, len(t.Cases))
	eg, ctx := errgroup.WithContext(ctx)
	if t.Concurrency > 0 {
		eg.SetLimit(t.Concurrency)
	}
	for i, c := range t.Cases {
		i, c := i, c
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rs[i] = runTest(t.Grammar, tokenize, c)
			return nil
		})
	}
	err := eg.Wait()
	if err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range rs {
		if r.Error != nil {
			failed++
		}
	}
	tracer().Infof("%v passed, %v failed", len(rs)-failed, failed)

	return rs, nil
}

func runTest(cg *grammar.CompiledGrammar, tokenize Tokenizer, c *TestCaseWithMetadata) *TestResult {
	if c.Error != nil {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        c.Error,
		}
	}

	toks, err := tokenize(bytes.NewReader(c.TestCase.Source))
	if err != nil {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        err,
		}
	}
	p, err := parser.NewParser(parser.NewGrammar(cg.Table), parser.NewLexerTokenStream(toks))
	if err != nil {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        err,
		}
	}
	err = p.Run()
	if err != nil {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        err,
		}
	}

	if errs := p.Errors(); len(errs) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "parse tree was not generated: %v syntax errors occurred", len(errs))
		for _, e := range errs {
			fmt.Fprintf(&b, "\n%v", e)
		}
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        fmt.Errorf("%v", b.String()),
		}
	}
	node, err := p.BuildTree(cg.Grammar)
	if err != nil {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        err,
		}
	}

	diffs := tspec.DiffTree(c.TestCase.Output, tspec.NewTreeFromNode(node))
	if len(diffs) > 0 {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        fmt.Errorf("output mismatch"),
			Diffs:        diffs,
		}
	}
	return &TestResult{
		TestCasePath: c.FilePath,
	}
}
