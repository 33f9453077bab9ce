package query

import "errors"

// ErrEmptyQuery is returned for a query that is empty or all whitespace.
// It is its own sentinel, distinct from ErrQuerySyntax, because the API
// layer maps it to a 400 while every other parse fault maps to a 500
// (§7 Policy).
var ErrEmptyQuery = errors.New("query: empty query")

// ErrQuerySyntax covers every other case the Parser rejects outright,
// such as a boolean query with an unterminated quote.
var ErrQuerySyntax = errors.New("query: syntax error")
