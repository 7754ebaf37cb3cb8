package lexer

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/nihei9/lltable/error"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestTokenize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lltable.lexer")
	defer teardown()

	tests := []struct {
		caption string
		src     string
		opts    []LexerOption
		terms   []string
		texts   []string
	}{
		{
			caption: "the lexer can recognize keywords and operators",
			src:     `int main() { cout << "hi\n"; cin >> x; }`,
			terms: []string{
				"int", "main", "(", ")", "{",
				"cout", "<<", "string literal", ";",
				"cin", ">>", "identifier", ";",
				"}",
			},
		},
		{
			caption: "the lexer can recognize constants",
			src:     `x = 3.14 + .5 * 2 % 7.;`,
			terms: []string{
				"identifier", "=", "float constant", "+", "float constant", "*", "integer constant", "%", "float constant", ";",
			},
			texts: []string{
				"x", "=", "3.14", "+", ".5", "*", "2", "%", "7.", ";",
			},
		},
		{
			caption: "the longest operator wins",
			src:     `a<=b>=c==d!=e<f>g=!h-i/j`,
			terms: []string{
				"identifier", "<=", "identifier", ">=", "identifier", "==", "identifier", "!=",
				"identifier", "<", "identifier", ">", "identifier", "=", "!", "identifier", "-", "identifier", "/", "identifier",
			},
		},
		{
			caption: "keywords need to be whole words",
			src:     `if iff else elsewhere void float float_1`,
			terms: []string{
				"if", "identifier", "else", "identifier", "void", "float", "identifier",
			},
		},
		{
			caption: "comments and white spaces are skipped",
			src: `// line comment
int /* block
comment */ x ;`,
			terms: []string{
				"int", "identifier", ";",
			},
		},
		{
			caption: "remapped terminals",
			src:     `x = 1 + y;`,
			opts: []LexerOption{
				Remap(map[string]string{
					"identifier":       "id",
					"integer constant": "id",
				}),
			},
			terms: []string{
				"id", "=", "id", "+", "id", ";",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			toks, err := Tokenize(strings.NewReader(tt.src), tt.opts...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			terms := Terminals(toks)
			if len(terms) != len(tt.terms) {
				t.Fatalf("unexpected terminals; want: %v, got: %v", tt.terms, terms)
			}
			for i, term := range terms {
				if term != tt.terms[i] {
					t.Fatalf("unexpected terminal #%v; want: %v, got: %v", i, tt.terms[i], term)
				}
				if tt.texts != nil && toks[i].Text != tt.texts[i] {
					t.Fatalf("unexpected text #%v; want: %v, got: %v", i, tt.texts[i], toks[i].Text)
				}
			}
		})
	}
}

func TestTokenize_Position(t *testing.T) {
	toks, err := Tokenize(strings.NewReader("int a;\n  a = 1;"))
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 7 {
		t.Fatalf("unexpected token count; want: 7, got: %v", len(toks))
	}
	a := toks[3]
	if a.Text != "a" || a.Row != 2 || a.Col != 3 {
		t.Fatalf("unexpected token; want: a (2:3), got: %v", a)
	}
	if toks[0].Row != 1 || toks[0].Col != 1 {
		t.Fatalf("unexpected position; want: 1:1, got: %v:%v", toks[0].Row, toks[0].Col)
	}
}

func TestTokenize_InvalidToken(t *testing.T) {
	toks, err := Tokenize(strings.NewReader("a @@ b\n#"))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("unexpected error; want: %v, got: %v", ErrInvalidToken, err)
	}
	if len(toks) != 4 {
		t.Fatalf("unexpected token count; want: 4, got: %v", len(toks))
	}
	if !toks[1].Invalid || toks[1].Text != "@@" {
		t.Fatalf("consecutive invalid characters must be merged; got: %v", toks[1])
	}
	if toks[2].Invalid || toks[2].Text != "b" {
		t.Fatalf("unexpected token; want: b, got: %v", toks[2])
	}

	var specErr *verr.SpecError
	if !errors.As(err, &specErr) {
		t.Fatalf("an error must contain a SpecError; got: %T", err)
	}
	if specErr.Row != 1 || specErr.Col != 3 || specErr.Detail != "@@" {
		t.Fatalf("unexpected error: %v", specErr)
	}
}

func TestWords(t *testing.T) {
	toks, err := Words(strings.NewReader("( ( )\n\t) id+id $"))
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{"(", "(", ")", ")", "id+id", "$"}
	terms := Terminals(toks)
	if len(terms) != len(expected) {
		t.Fatalf("unexpected words; want: %v, got: %v", expected, terms)
	}
	for i, term := range terms {
		if term != expected[i] {
			t.Fatalf("unexpected word #%v; want: %v, got: %v", i, expected[i], term)
		}
	}
}

func TestParseRemap(t *testing.T) {
	m, err := ParseRemap("identifier=id, integer constant = id")
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 2 || m["identifier"] != "id" || m["integer constant"] != "id" {
		t.Fatalf("unexpected remap: %v", m)
	}
	if _, err := ParseRemap("identifier"); err == nil {
		t.Fatal("an entry without `=` must be rejected")
	}
	if _, err := Tokenize(strings.NewReader("x"), Remap(map[string]string{"identifier": ""})); err == nil {
		t.Fatal("an empty remap entry must be rejected")
	}
}

func TestCompileLexSpec(t *testing.T) {
	entries := []*KindEntry{
		{Kind: "white_space", Pattern: "[\\u{0020}]+", Skip: true},
		{Kind: "kw_let", Pattern: "let", Literal: true, Terminal: "let"},
		{Kind: "name", Pattern: "[a-z]+"},
		{Kind: "op", Pattern: "+", Literal: true, TextAsTerminal: true},
	}

	tests := []struct {
		caption string
		name    string
		entries []*KindEntry
		terms   []string
		errOK   bool
	}{
		{
			caption: "a named spec can be compiled and drives a lexer",
			name:    "let_lang",
			entries: entries,
			terms:   []string{"let", "name", "+", "name"},
		},
		{
			caption: "a spec without a name is rejected",
			name:    "",
			entries: entries,
			errOK:   true,
		},
		{
			caption: "a spec name must be a snake_case identifier",
			name:    "Let-Lang",
			entries: entries,
			errOK:   true,
		},
		{
			caption: "duplicate kinds are rejected",
			name:    "dup",
			entries: []*KindEntry{
				{Kind: "a", Pattern: "a", Literal: true},
				{Kind: "a", Pattern: "b", Literal: true},
			},
			errOK: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			s, err := CompileLexSpec(tt.name, tt.entries)
			if tt.errOK {
				if err == nil {
					t.Fatal("an error must occur")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			l, err := NewLexer(s, strings.NewReader("let x + y"))
			if err != nil {
				t.Fatal(err)
			}
			toks, err := ReadAll(l)
			if err != nil {
				t.Fatal(err)
			}
			terms := Terminals(toks)
			if len(terms) != len(tt.terms) {
				t.Fatalf("unexpected terminals; want: %v, got: %v", tt.terms, terms)
			}
			for i, term := range terms {
				if term != tt.terms[i] {
					t.Fatalf("unexpected terminal #%v; want: %v, got: %v", i, tt.terms[i], term)
				}
			}
		})
	}
}

func TestBuiltinSpecs(t *testing.T) {
	for _, load := range []func() (*LexSpec, error){ToyLanguageSpec, WordSpec} {
		s, err := load()
		if err != nil {
			t.Fatal(err)
		}
		if s == nil {
			t.Fatal("a spec must be returned")
		}
	}
}
