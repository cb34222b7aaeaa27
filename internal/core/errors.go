package core

import "fmt"

// SchemaError reports a required column missing from a source file.
// It is fatal to the whole load: partial schemas would silently skew totals.
type SchemaError struct {
	File   string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("source file %q is missing required column %q", e.File, e.Column)
}

// ParseError reports a cell that could not be coerced to its field type.
// The whole batch is rejected rather than dropping the row: a dropped
// financial row corrupts totals undetectably.
type ParseError struct {
	File  string
	Line  int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s line %d: cannot parse %s value %q: %v", e.File, e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// EmptyResultError reports that no rows exist or survived filtering.
// It is informational: callers render an empty state instead of failing.
type EmptyResultError struct {
	Reason string
}

func (e *EmptyResultError) Error() string {
	if e.Reason == "" {
		return "no transactions to report"
	}
	return e.Reason
}

// SourceReadError reports a single raw file that could not be fetched or
// decoded. The loader logs it and continues with the remaining files.
type SourceReadError struct {
	Key string
	Err error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("read source %q: %v", e.Key, e.Err)
}

func (e *SourceReadError) Unwrap() error {
	return e.Err
}
