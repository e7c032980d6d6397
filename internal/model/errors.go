package model

import "fmt"

// MissingFileError reports an absent input export or rules file.
type MissingFileError struct {
	Path string
	Err  error
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("missing file %s: %v", e.Path, e.Err)
}

func (e *MissingFileError) Unwrap() error { return e.Err }

// MalformedRowError reports a record that lacks a field or whose value
// cannot be normalized. Row is 1-based with the header on row 1.
type MalformedRowError struct {
	Row   int
	Field string
	Err   error
}

func (e *MalformedRowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d: field %q: %v", e.Row, e.Field, e.Err)
}

func (e *MalformedRowError) Unwrap() error { return e.Err }

// UnknownTransactionTypeError reports a type discriminator the institution
// does not know.
type UnknownTransactionTypeError struct {
	Row   int
	Field string
	Value string
}

func (e *UnknownTransactionTypeError) Error() string {
	return fmt.Sprintf("row %d: unknown transaction type %q in field %q", e.Row, e.Value, e.Field)
}
