package spec

import "fmt"

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.message)
}

var (
	// lexical errors
	synErrInvalidToken = newSyntaxError("invalid token")

	// syntax errors
	synErrInvalidSectionMarker = newSyntaxError("invalid section marker")
	synErrTokenAfterMarker     = newSyntaxError("a section marker must be followed by a newline")
	synErrTokenOutsideSection  = newSyntaxError("token outside section")
	synErrEpsilonReserved      = newSyntaxError("EPSILON is reserved")
	synErrAmbiguousStartSymbol = newSyntaxError("ambiguous start symbol")
	synErrRuleStartsWithEps    = newSyntaxError("production cannot start with EPSILON")
	synErrNoColon              = newSyntaxError("':' expected")
	synErrNoRuleSymbols        = newSyntaxError("a rule needs at least one symbol; use EPSILON for an empty rule")
	synErrUnclosedSection      = newSyntaxError("unclosed section; %end is missing")
)
