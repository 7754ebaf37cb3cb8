package lexer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	verr "github.com/nihei9/lltable/error"
	mldriver "github.com/nihei9/maleeni/driver"
	"github.com/npillmayer/schuko/tracing"
	"go.uber.org/multierr"
)

// tracer traces with key 'lltable.lexer'.
func tracer() tracing.Trace {
	return tracing.Select("lltable.lexer")
}

var ErrInvalidToken = errors.New("unknown character")

// Token represents a token.
type Token struct {
	// Kind is the name of the lexical kind. It is `error` when the token is invalid.
	Kind string

	// Terminal is the name of the grammar terminal the token stands for.
	Terminal string

	// Text is the lexeme.
	Text string

	// Row and Col are 1-based. Col is counted in code points.
	Row int
	Col int

	// When this field is true, it means the token is the EOF token.
	EOF bool

	// When this field is true, it means the token is an error token.
	Invalid bool
}

func (t *Token) String() string {
	if t.EOF {
		return "<eof>"
	}
	return fmt.Sprintf("%v %q (%v:%v)", t.Terminal, t.Text, t.Row, t.Col)
}

type LexerOption func(l *Lexer) error

// Remap renames terminals. A terminal name without an entry is kept as it is.
func Remap(m map[string]string) LexerOption {
	return func(l *Lexer) error {
		for from, to := range m {
			if from == "" || to == "" {
				return fmt.Errorf("a remap entry must not be empty: %q -> %q", from, to)
			}
		}
		l.remap = m
		return nil
	}
}

type Lexer struct {
	spec   *LexSpec
	d      *mldriver.Lexer
	remap  map[string]string
	tokBuf []*Token
}

// NewLexer returns a new lexer.
func NewLexer(spec *LexSpec, src io.Reader, opts ...LexerOption) (*Lexer, error) {
	d, err := mldriver.NewLexer(mldriver.NewLexSpec(spec.spec), src)
	if err != nil {
		return nil, err
	}
	l := &Lexer{
		spec: spec,
		d:    d,
	}
	for _, opt := range opts {
		err := opt(l)
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Next returns a next token. Consecutive invalid characters are merged into one invalid token.
func (l *Lexer) Next() (*Token, error) {
	if len(l.tokBuf) > 0 {
		tok := l.tokBuf[0]
		l.tokBuf = l.tokBuf[1:]
		return tok, nil
	}

	tok, err := l.next()
	if err != nil {
		return nil, err
	}
	if !tok.Invalid {
		return tok, nil
	}
	errTok := tok
	for {
		tok, err = l.next()
		if err != nil {
			return nil, err
		}
		if !tok.Invalid {
			break
		}
		errTok.Text += tok.Text
	}
	l.tokBuf = append(l.tokBuf, tok)

	return errTok, nil
}

func (l *Lexer) next() (*Token, error) {
	for {
		tok, err := l.d.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			return &Token{
				EOF: true,
				Row: tok.Row + 1,
				Col: tok.Col + 1,
			}, nil
		}
		if tok.Invalid {
			return &Token{
				Kind:     "error",
				Terminal: "error",
				Text:     string(tok.Lexeme),
				Row:      tok.Row + 1,
				Col:      tok.Col + 1,
				Invalid:  true,
			}, nil
		}
		if l.spec.skip[tok.KindID] {
			continue
		}

		text := string(tok.Lexeme)
		term := l.spec.kindToTerminal[tok.KindID]
		if l.spec.textAsTerminal[tok.KindID] {
			term = text
		}
		if to, ok := l.remap[term]; ok {
			term = to
		}
		return &Token{
			Kind:     l.spec.spec.KindNames[tok.KindID].String(),
			Terminal: term,
			Text:     text,
			Row:      tok.Row + 1,
			Col:      tok.Col + 1,
		}, nil
	}
}

// ReadAll reads tokens up to the end of the input. The EOF token is not included. Invalid tokens are kept in
// the result, and each of them is also reported in the returned error, so a caller can go on with the valid ones.
func ReadAll(l *Lexer) ([]*Token, error) {
	var toks []*Token
	var errs error
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			break
		}
		if tok.Invalid {
			tracer().Infof("invalid token at %v:%v: %q", tok.Row, tok.Col, tok.Text)
			errs = multierr.Append(errs, &verr.SpecError{
				Cause:  ErrInvalidToken,
				Detail: tok.Text,
				Row:    tok.Row,
				Col:    tok.Col,
			})
		}
		toks = append(toks, tok)
	}
	return toks, errs
}

// Words splits src into whitespace-separated terminal names.
func Words(src io.Reader) ([]*Token, error) {
	s, err := WordSpec()
	if err != nil {
		return nil, err
	}
	l, err := NewLexer(s, src)
	if err != nil {
		return nil, err
	}
	return ReadAll(l)
}

// Tokenize reads all the tokens of a source text of the C-like language.
func Tokenize(src io.Reader, opts ...LexerOption) ([]*Token, error) {
	s, err := ToyLanguageSpec()
	if err != nil {
		return nil, err
	}
	l, err := NewLexer(s, src, opts...)
	if err != nil {
		return nil, err
	}
	return ReadAll(l)
}

// Terminals returns the terminal names of tokens.
func Terminals(toks []*Token) []string {
	terms := make([]string, len(toks))
	for i, tok := range toks {
		terms[i] = tok.Terminal
	}
	return terms
}

// ParseRemap reads remap entries written as `from=to`, separated by commas.
func ParseRemap(s string) (map[string]string, error) {
	m := map[string]string{}
	if strings.TrimSpace(s) == "" {
		return m, nil
	}
	for _, e := range strings.Split(s, ",") {
		fromTo := strings.SplitN(e, "=", 2)
		if len(fromTo) != 2 {
			return nil, fmt.Errorf("a remap entry must be `from=to`: %q", e)
		}
		m[strings.TrimSpace(fromTo[0])] = strings.TrimSpace(fromTo[1])
	}
	return m, nil
}
