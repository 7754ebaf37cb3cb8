package lexer

import (
	"fmt"
	"strings"
	"sync"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mlspec "github.com/nihei9/maleeni/spec"
)

// KindEntry defines a lexical kind. Tokens of the kind are reported as Terminal, or as their own text when
// TextAsTerminal is set. A literal pattern matches the text as it is. Tokens of a skipped kind are never returned
// by a lexer.
type KindEntry struct {
	Kind           string
	Pattern        string
	Literal        bool
	Terminal       string
	TextAsTerminal bool
	Skip           bool
}

// LexSpec is a compiled lexical specification.
type LexSpec struct {
	spec           *mlspec.CompiledLexSpec
	kindToTerminal []string
	textAsTerminal []bool
	skip           []bool
}

// CompileLexSpec compiles kind entries into a lexical spec named `name`. The name and the kinds must be
// snake_case identifiers. When two patterns match the same longest text, the entry appearing first wins.
func CompileLexSpec(name string, entries []*KindEntry) (*LexSpec, error) {
	lexEntries := make([]*mlspec.LexEntry, 0, len(entries))
	kind2Entry := map[string]*KindEntry{}
	for _, e := range entries {
		if _, ok := kind2Entry[e.Kind]; ok {
			return nil, fmt.Errorf("duplicate kind: %v", e.Kind)
		}
		kind2Entry[e.Kind] = e

		pattern := e.Pattern
		if e.Literal {
			pattern = mlspec.EscapePattern(pattern)
		}
		lexEntries = append(lexEntries, &mlspec.LexEntry{
			Kind:    mlspec.LexKindName(e.Kind),
			Pattern: mlspec.LexPattern(pattern),
		})
	}

	clspec, err, cErrs := mlcompiler.Compile(&mlspec.LexSpec{
		Name:    name,
		Entries: lexEntries,
	}, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			for i, cerr := range cErrs {
				if i > 0 {
					fmt.Fprintf(&b, "\n")
				}
				fmt.Fprintf(&b, "%v: %v", cerr.Kind, cerr.Cause)
				if cerr.Detail != "" {
					fmt.Fprintf(&b, ": %v", cerr.Detail)
				}
			}
			return nil, fmt.Errorf("failed to compile a lexical specification: %v", b.String())
		}
		return nil, err
	}

	kindToTerminal := make([]string, len(clspec.KindNames))
	textAsTerminal := make([]bool, len(clspec.KindNames))
	skip := make([]bool, len(clspec.KindNames))
	for i, k := range clspec.KindNames {
		if k == mlspec.LexKindNameNil {
			continue
		}
		e := kind2Entry[k.String()]
		kindToTerminal[i] = e.Terminal
		if kindToTerminal[i] == "" {
			kindToTerminal[i] = e.Kind
		}
		textAsTerminal[i] = e.TextAsTerminal
		skip[i] = e.Skip
	}

	return &LexSpec{
		spec:           clspec,
		kindToTerminal: kindToTerminal,
		textAsTerminal: textAsTerminal,
		skip:           skip,
	}, nil
}

func literal(kind, text string) *KindEntry {
	return &KindEntry{
		Kind:     kind,
		Pattern:  text,
		Literal:  true,
		Terminal: text,
	}
}

// toyLanguageEntries defines a small C-like language. Keywords precede the identifier so that they win ties.
var toyLanguageEntries = []*KindEntry{
	{Kind: "white_space", Pattern: "[\\u{0009}\\u{000A}\\u{000D}\\u{0020}]+", Skip: true},
	{Kind: "line_comment", Pattern: "//[^\\u{000A}]*", Skip: true},
	{Kind: "block_comment", Pattern: "/\\*([^*]|\\*+[^*/])*\\*+/", Skip: true},
	literal("kw_int", "int"),
	literal("kw_float", "float"),
	literal("kw_void", "void"),
	literal("kw_if", "if"),
	literal("kw_else", "else"),
	literal("kw_main", "main"),
	literal("kw_cout", "cout"),
	literal("kw_cin", "cin"),
	{Kind: "identifier", Pattern: "[A-Za-z_][0-9A-Za-z_]*", Terminal: "identifier"},
	{Kind: "float_constant", Pattern: "[0-9]*\\.[0-9]+|[0-9]+\\.", Terminal: "float constant"},
	{Kind: "integer_constant", Pattern: "[0-9]+", Terminal: "integer constant"},
	{Kind: "string_literal", Pattern: "\"([^\"\\\\\\u{000A}]|\\\\[^\\u{000A}])*\"", Terminal: "string literal"},
	literal("left_shift", "<<"),
	literal("right_shift", ">>"),
	literal("less_than_or_equals", "<="),
	literal("greater_than_or_equals", ">="),
	literal("equal_to", "=="),
	literal("not_equal_to", "!="),
	literal("plus", "+"),
	literal("minus", "-"),
	literal("multiply", "*"),
	literal("divide", "/"),
	literal("modulus", "%"),
	literal("assignment", "="),
	literal("less_than", "<"),
	literal("greater_than", ">"),
	literal("not", "!"),
	literal("semicolon", ";"),
	literal("paren_open", "("),
	literal("paren_close", ")"),
	literal("curly_open", "{"),
	literal("curly_close", "}"),
}

// wordEntries splits an input into whitespace-separated words, each of which is a terminal name.
var wordEntries = []*KindEntry{
	{Kind: "white_space", Pattern: "[\\u{0009}\\u{000A}\\u{000D}\\u{0020}]+", Skip: true},
	{Kind: "word", Pattern: "[^\\u{0009}\\u{000A}\\u{000D}\\u{0020}]+", TextAsTerminal: true},
}

var (
	toyLanguageOnce sync.Once
	toyLanguageSpec *LexSpec
	toyLanguageErr  error

	wordOnce sync.Once
	wordSpec *LexSpec
	wordErr  error
)

// ToyLanguageSpec returns the lexical specification of the C-like language. Its terminals are int, float, void,
// if, else, main, cout, cin, identifier, integer constant, float constant, string literal and the operators.
func ToyLanguageSpec() (*LexSpec, error) {
	toyLanguageOnce.Do(func() {
		toyLanguageSpec, toyLanguageErr = CompileLexSpec("toy_language", toyLanguageEntries)
	})
	return toyLanguageSpec, toyLanguageErr
}

func WordSpec() (*LexSpec, error) {
	wordOnce.Do(func() {
		wordSpec, wordErr = CompileLexSpec("words", wordEntries)
	})
	return wordSpec, wordErr
}

// Terminals returns the terminal names a lexical spec produces, in the order of the kinds.
func (s *LexSpec) Terminals() []string {
	var terms []string
	for i, t := range s.kindToTerminal {
		if t == "" || s.skip[i] || s.textAsTerminal[i] {
			continue
		}
		terms = append(terms, t)
	}
	return terms
}
