package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrNoProduction         = newSemanticError("a grammar needs at least one production")
	semErrNoStartSymbol        = newSemanticError("a start symbol is not declared")
	semErrStartNotNonTerminal  = newSemanticError("a start symbol must be a declared non-terminal")
	semErrReservedSymbol       = newSemanticError("a reserved symbol cannot be declared")
	semErrEmptySymbol          = newSemanticError("a symbol name cannot be empty")
	semErrDuplicateTerminal    = newSemanticError("duplicate terminals")
	semErrDuplicateNonTerminal = newSemanticError("duplicate non-terminals")
	semErrDuplicateName        = newSemanticError("a symbol cannot be both terminal and non-terminal")
	semErrDuplicateProduction  = newSemanticError("duplicate production")
	semErrUndefinedNonTerminal = newSemanticError("undefined non-terminal")
	semErrUndefinedSym         = newSemanticError("undefined symbol")
	semErrMisplacedEpsilon     = newSemanticError("EPSILON must be the only symbol of a rule")
	semErrNoRule               = newSemanticError("a non-terminal has no rules")
	semErrIndexOutOfRange      = newSemanticError("index out of range")
)
