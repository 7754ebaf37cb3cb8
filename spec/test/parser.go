package test

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/nihei9/lltable/driver/lexer"
	"github.com/nihei9/lltable/driver/parser"
	"github.com/nihei9/lltable/grammar"
)

type TreeDiff struct {
	ExpectedPath string
	ActualPath   string
	Message      string
}

func newTreeDiff(expected, actual *Tree, message string) *TreeDiff {
	return &TreeDiff{
		ExpectedPath: expected.path(),
		ActualPath:   actual.path(),
		Message:      message,
	}
}

// Tree is a parse tree written as an S-expression such as `(S (a) (S) (b))`. A leaf is either a terminal or a
// non-terminal derived by an epsilon rule.
type Tree struct {
	Parent   *Tree
	Offset   int
	Kind     string
	Children []*Tree
}

func NewTree(kind string, children ...*Tree) *Tree {
	return &Tree{
		Kind:     kind,
		Children: children,
	}
}

// NewTreeFromNode converts a parse tree the parser built. EPSILON nodes are dropped.
func NewTreeFromNode(n *parser.Node) *Tree {
	var children []*Tree
	for _, c := range n.Children {
		if c.Symbol == grammar.Epsilon {
			continue
		}
		children = append(children, NewTreeFromNode(c))
	}
	return NewTree(n.Symbol.String(), children...).Fill()
}

func (t *Tree) Fill() *Tree {
	for i, c := range t.Children {
		c.Parent = t
		c.Offset = i
		c.Fill()
	}
	return t
}

func (t *Tree) path() string {
	if t.Parent == nil {
		return t.Kind
	}
	return fmt.Sprintf("%v.[%v]%v", t.Parent.path(), t.Offset, t.Kind)
}

func (t *Tree) Format() []byte {
	var b bytes.Buffer
	t.format(&b, 0)
	return b.Bytes()
}

func (t *Tree) format(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("    ")
	}
	buf.WriteString("(")
	buf.WriteString(t.Kind)
	if len(t.Children) > 0 {
		buf.WriteString("\n")
		for i, c := range t.Children {
			c.format(buf, depth+1)
			if i < len(t.Children)-1 {
				buf.WriteString("\n")
			}
		}
	}
	buf.WriteString(")")
}

// DiffTree compares trees node by node and reports the first difference of each subtree. A node of the
// expected tree labeled `_` matches any symbol, but its children are still compared.
func DiffTree(expected, actual *Tree) []*TreeDiff {
	if expected == nil && actual == nil {
		return nil
	}
	if expected.Kind != "_" && actual.Kind != expected.Kind {
		msg := fmt.Sprintf("unexpected symbol: expected '%v' but got '%v'", expected.Kind, actual.Kind)
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if len(actual.Children) != len(expected.Children) {
		msg := fmt.Sprintf("unexpected node count: expected %v but got %v", len(expected.Children), len(actual.Children))
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	var diffs []*TreeDiff
	for i, exp := range expected.Children {
		if ds := DiffTree(exp, actual.Children[i]); len(ds) > 0 {
			diffs = append(diffs, ds...)
		}
	}
	return diffs
}

type TestCase struct {
	Description string
	Source      []byte
	Output      *Tree
}

// ParseTestCase reads a test case made of three parts separated by lines of three or more hyphens: a
// description, a source text, and the expected tree.
func ParseTestCase(r io.Reader) (*TestCase, error) {
	parts, err := splitIntoParts(r)
	if err != nil {
		return nil, err
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("too many or too few part delimiters: a test case consists of just three parts: %v parts found", len(parts))
	}

	tp := &treeParser{
		lineOffset: parts[0].lineCount + parts[1].lineCount + 2,
	}
	tree, err := tp.parseTree(bytes.NewReader(parts[2].buf))
	if err != nil {
		return nil, err
	}

	return &TestCase{
		Description: string(parts[0].buf),
		Source:      parts[1].buf,
		Output:      tree,
	}, nil
}

type testCasePart struct {
	buf       []byte
	lineCount int
}

func splitIntoParts(r io.Reader) ([]*testCasePart, error) {
	var parts []*testCasePart
	s := bufio.NewScanner(r)
	for {
		buf, lineCount, err := readPart(s)
		if err != nil {
			return nil, err
		}
		if buf == nil {
			break
		}
		parts = append(parts, &testCasePart{
			buf:       buf,
			lineCount: lineCount,
		})
	}
	return parts, nil
}

var reDelim = regexp.MustCompile(`^\s*---+\s*$`)

// readPart returns nil at the end of the input and an empty slice for an empty part.
func readPart(s *bufio.Scanner) ([]byte, int, error) {
	if !s.Scan() {
		return nil, 0, s.Err()
	}
	line := s.Bytes()
	if reDelim.Match(line) {
		return []byte{}, 0, nil
	}
	lines := []string{string(line)}
	for s.Scan() {
		line := s.Bytes()
		if reDelim.Match(line) {
			return []byte(strings.Join(lines, "\n")), len(lines), nil
		}
		lines = append(lines, string(line))
	}
	if err := s.Err(); err != nil {
		return nil, 0, err
	}
	return []byte(strings.Join(lines, "\n")), len(lines), nil
}

const (
	symTree     = grammar.Symbol("tree")
	symChildren = grammar.Symbol("children")
	symLParen   = grammar.Symbol("(")
	symRParen   = grammar.Symbol(")")
	symName     = grammar.Symbol("symbol")
)

var (
	treeGrammarOnce sync.Once
	treeGrammar     *grammar.CompiledGrammar
	treeLexSpec     *lexer.LexSpec
	treeGrammarErr  error
)

// loadTreeGrammar compiles the grammar of S-expression trees:
//
//	tree     : ( symbol children )
//	children : tree children | EPSILON
func loadTreeGrammar() (*grammar.CompiledGrammar, *lexer.LexSpec, error) {
	treeGrammarOnce.Do(func() {
		gram, err := grammar.NewGrammar(
			[]grammar.Symbol{symLParen, symRParen, symName},
			[]grammar.Symbol{symTree, symChildren},
			symTree,
			[]*grammar.Production{
				grammar.NewProduction(symTree, grammar.Rule{symLParen, symName, symChildren, symRParen}),
				grammar.NewProduction(symChildren, grammar.Rule{symTree, symChildren}, grammar.Rule{grammar.Epsilon}),
			},
		)
		if err != nil {
			treeGrammarErr = err
			return
		}
		treeGrammar, err = grammar.Compile(gram)
		if err != nil {
			treeGrammarErr = err
			return
		}
		if !treeGrammar.Table.IsLL1() {
			treeGrammarErr = fmt.Errorf("the tree grammar has conflicts: %v", treeGrammar.Table.Conflicts())
			return
		}
		treeLexSpec, treeGrammarErr = lexer.CompileLexSpec("test_tree", []*lexer.KindEntry{
			{Kind: "white_space", Pattern: "[\\u{0009}\\u{000A}\\u{000D}\\u{0020}]+", Skip: true},
			{Kind: "l_paren", Pattern: "(", Literal: true, Terminal: symLParen.String()},
			{Kind: "r_paren", Pattern: ")", Literal: true, Terminal: symRParen.String()},
			{Kind: "symbol", Pattern: "[^\\u{0009}\\u{000A}\\u{000D}\\u{0020}()]+", Terminal: symName.String()},
		})
	})
	return treeGrammar, treeLexSpec, treeGrammarErr
}

type treeParser struct {
	lineOffset int
}

func (tp *treeParser) parseTree(src io.Reader) (*Tree, error) {
	cg, lexSpec, err := loadTreeGrammar()
	if err != nil {
		return nil, err
	}
	l, err := lexer.NewLexer(lexSpec, src)
	if err != nil {
		return nil, err
	}
	toks, err := lexer.ReadAll(l)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", tp.lineOffset, err)
	}
	p, err := parser.NewParser(parser.NewGrammar(cg.Table), parser.NewLexerTokenStream(toks), parser.RecoveryPolicy(parser.RecoveryHalt))
	if err != nil {
		return nil, err
	}
	err = p.Run()
	if err != nil {
		return nil, err
	}
	if errs := p.Errors(); len(errs) > 0 {
		return nil, errors.New(tp.formatParseError(errs[0]))
	}
	if !p.Accepted() {
		return nil, errors.New("an expected tree is incomplete")
	}
	node, err := p.BuildTree(cg.Grammar)
	if err != nil {
		return nil, err
	}
	tc := &tokenCursor{
		toks: toks,
	}
	return tp.genTree(node, tc).Fill(), nil
}

func (tp *treeParser) formatParseError(e *parser.ParseError) string {
	var b strings.Builder
	if e.Row > 0 {
		fmt.Fprintf(&b, "%v:%v: ", tp.lineOffset+e.Row, e.Col)
	}
	b.WriteString("syntax error: ")
	if e.Token.EOF() {
		b.WriteString("<eof>")
	} else {
		fmt.Fprintf(&b, "'%v'", e.Token.Text())
	}
	if len(e.ExpectedTerminals) > 0 {
		fmt.Fprintf(&b, ": expected: %v", e.ExpectedTerminals[0])
		for _, t := range e.ExpectedTerminals[1:] {
			fmt.Fprintf(&b, ", %v", t)
		}
	}
	return b.String()
}

// tokenCursor hands out the tokens in the order the leaves of a parse tree appear.
type tokenCursor struct {
	toks []*lexer.Token
	pos  int
}

func (c *tokenCursor) next() *lexer.Token {
	tok := c.toks[c.pos]
	c.pos++
	return tok
}

// genTree converts a parse tree of the tree grammar into a Tree. A `tree` node always has the children
// `( symbol children )`, and a `children` node has either `tree children` or EPSILON.
func (tp *treeParser) genTree(node *parser.Node, tc *tokenCursor) *Tree {
	tc.next()
	t := NewTree(tc.next().Text)
	for cs := node.Children[2]; len(cs.Children) == 2; cs = cs.Children[1] {
		t.Children = append(t.Children, tp.genTree(cs.Children[0], tc))
	}
	tc.next()
	return t
}
