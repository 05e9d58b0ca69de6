package models

import "errors"

var (
	// ErrDateNotFound is returned when a rebalance date is absent from the returns index.
	ErrDateNotFound = errors.New("date not found in returns table")
	// ErrResultNotFound is returned when no precomputed document exists for N.
	ErrResultNotFound = errors.New("precomputed result not found")
	// ErrDataLoad wraps startup read/parse failures of the tables.
	ErrDataLoad = errors.New("data load failed")
	// ErrInvalidParameter is returned when a parameter is not a positive integer.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ErrUnknownSymbol is returned when a required column is absent from a table.
var ErrUnknownSymbol = errors.New("symbol not found in table")
