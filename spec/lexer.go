package spec

import (
	"fmt"
	"io"

	verr "github.com/nihei9/lltable/error"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

type tokenKind string

const (
	tokenKindSectionMarker = tokenKind("section marker")
	tokenKindColon         = tokenKind(":")
	tokenKindWord          = tokenKind("word")
	tokenKindNewline       = tokenKind("newline")
	tokenKindEOF           = tokenKind("eof")
)

var tokenKinds = []tokenKind{
	tokenKindSectionMarker,
	tokenKindColon,
	tokenKindWord,
	tokenKindNewline,
}

type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func newEOFToken(pos Position) *token {
	return &token{
		kind: tokenKindEOF,
		pos:  pos,
	}
}

var lexDFA *lexmachine.Lexer

func init() {
	lex := lexmachine.NewLexer()
	// Patterns matching the same length are prioritized in the order they are added.
	lex.Add([]byte("%[^ \t\r\n]*"), makeToken(tokenKindSectionMarker))
	lex.Add([]byte(":"), makeToken(tokenKindColon))
	lex.Add([]byte("[^ \t\r\n]+"), makeToken(tokenKindWord))
	lex.Add([]byte("\r?\n"), makeToken(tokenKindNewline))
	lex.Add([]byte("[ \t]+"), skip)
	if err := lex.Compile(); err != nil {
		panic(fmt.Errorf("failed to compile the lexer of the grammar description: %w", err))
	}
	lexDFA = lex
}

func tokenKindID(kind tokenKind) int {
	for i, k := range tokenKinds {
		if k == kind {
			return i
		}
	}
	return -1
}

func makeToken(kind tokenKind) lexmachine.Action {
	id := tokenKindID(kind)
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

type lexer struct {
	s       *lexmachine.Scanner
	lastPos Position
}

func newLexer(src io.Reader) (*lexer, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	s, err := lexDFA.Scanner(b)
	if err != nil {
		return nil, err
	}
	return &lexer{
		s:       s,
		lastPos: newPosition(1, 1),
	}, nil
}

func (l *lexer) next() (*token, error) {
	tok, err, eof := l.s.Next()
	if err != nil {
		if ui, ok := err.(*machines.UnconsumedInput); ok {
			return nil, &verr.SpecError{
				Cause: synErrInvalidToken,
				Row:   ui.FailLine,
				Col:   ui.FailColumn,
			}
		}
		return nil, err
	}
	if eof {
		return newEOFToken(l.lastPos), nil
	}
	t := tok.(*lexmachine.Token)
	pos := newPosition(t.StartLine, t.StartColumn)
	l.lastPos = pos
	return &token{
		kind: tokenKinds[t.Type],
		text: string(t.Lexeme),
		pos:  pos,
	}, nil
}

// nextLine returns the tokens of the next non-empty line. It returns nil at the end of the input.
func (l *lexer) nextLine() ([]*token, error) {
	var line []*token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenKindEOF:
			return line, nil
		case tokenKindNewline:
			if len(line) > 0 {
				return line, nil
			}
			continue
		}
		line = append(line, tok)
	}
}
