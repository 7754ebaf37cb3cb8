package parser

import (
	"github.com/nihei9/lltable/driver/lexer"
	"github.com/nihei9/lltable/grammar"
)

// VToken is a token the parser consumes.
type VToken interface {
	// Terminal returns the terminal symbol the token stands for.
	Terminal() grammar.Symbol

	// Text returns the lexeme.
	Text() string

	// EOF returns true when a token represents the end of an input.
	EOF() bool

	// Position returns a 1-based row and column. Both are 0 when the position is unknown.
	Position() (int, int)
}

type TokenStream interface {
	// Next returns the next token. After the end of an input, it keeps returning an EOF token.
	Next() (VToken, error)
}

type vToken struct {
	tok *lexer.Token
}

func (t *vToken) Terminal() grammar.Symbol {
	if t.tok.EOF {
		return grammar.EndMarker
	}
	return grammar.Symbol(t.tok.Terminal)
}

func (t *vToken) Text() string {
	return t.tok.Text
}

func (t *vToken) EOF() bool {
	return t.tok.EOF
}

func (t *vToken) Position() (int, int) {
	return t.tok.Row, t.tok.Col
}

type tokenStream struct {
	lex *lexer.Lexer
}

// NewTokenStream makes a token stream from a lexer.
func NewTokenStream(lex *lexer.Lexer) TokenStream {
	return &tokenStream{
		lex: lex,
	}
}

func (s *tokenStream) Next() (VToken, error) {
	tok, err := s.lex.Next()
	if err != nil {
		return nil, err
	}
	return &vToken{
		tok: tok,
	}, nil
}

type symbolToken struct {
	sym grammar.Symbol
	eof bool
}

func (t *symbolToken) Terminal() grammar.Symbol {
	return t.sym
}

func (t *symbolToken) Text() string {
	return t.sym.String()
}

func (t *symbolToken) EOF() bool {
	return t.eof
}

func (t *symbolToken) Position() (int, int) {
	return 0, 0
}

type sliceTokenStream struct {
	toks []VToken
	pos  int
}

// NewSymbolStream makes a token stream of terminal names. A trailing end-marker is implicit; a `$` among the
// names is an ordinary token, which NewParser rejects.
func NewSymbolStream(terms ...string) TokenStream {
	toks := make([]VToken, len(terms))
	for i, term := range terms {
		toks[i] = &symbolToken{
			sym: grammar.Symbol(term),
		}
	}
	return NewSliceTokenStream(toks)
}

// NewLexerTokenStream makes a token stream of tokens read by a lexer beforehand.
func NewLexerTokenStream(toks []*lexer.Token) TokenStream {
	vtoks := make([]VToken, len(toks))
	for i, tok := range toks {
		vtoks[i] = &vToken{
			tok: tok,
		}
	}
	return NewSliceTokenStream(vtoks)
}

func NewSliceTokenStream(toks []VToken) TokenStream {
	return &sliceTokenStream{
		toks: toks,
	}
}

func (s *sliceTokenStream) Next() (VToken, error) {
	if s.pos >= len(s.toks) {
		return &symbolToken{
			sym: grammar.EndMarker,
			eof: true,
		}, nil
	}
	tok := s.toks[s.pos]
	s.pos++
	return tok, nil
}
