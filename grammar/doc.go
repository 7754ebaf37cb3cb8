/*
Package grammar holds the context-free grammar model and everything computed
from it ahead of parsing: FIRST and FOLLOW sets, the rewrites that make a
grammar suitable for LL(1) parsing (left recursion elimination and left
factoring), and the LL(1) parsing table.

Productions and rules are addressed by their indexes. A parsing table refers
to a rule as a pair of a production index and a rule index, so a table is
only meaningful together with the grammar it was built from.
*/
package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lltable.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("lltable.grammar")
}
