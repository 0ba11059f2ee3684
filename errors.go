package main

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration reports a schema or option combination that
// cannot be run, for example parallel mode with a table lacking a
// primary key
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrNoFields reports a table in the schema without any fields to
// anonymise
var ErrNoFields = errors.New("table has no fields")

// UnknownProviderError reports a schema reference to a provider that is
// not in the registry
type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider %q", e.Name)
}

// ProviderExecutionError reports a provider failure for one column of
// one row; it aborts the processing of the table
type ProviderExecutionError struct {
	Table  string
	Column string
	Key    any
	Err    error
}

func (e *ProviderExecutionError) Error() string {
	return fmt.Sprintf("provider failed on %s.%s for row %v: %s", e.Table, e.Column, e.Key, e.Err)
}

func (e *ProviderExecutionError) Unwrap() error { return e.Err }

// StagingError reports a failure to create, populate, index or merge the
// staging table of a table. The table's transaction is rolled back.
type StagingError struct {
	Table string
	Step  string
	Err   error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("staging %s for %s: %s", e.Step, e.Table, e.Err)
}

func (e *StagingError) Unwrap() error { return e.Err }

// ConnectionError wraps a failure of the session provider
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %s", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TableError attributes an error to the table whose worker produced it
type TableError struct {
	Table string
	Err   error
}

func (e *TableError) Error() string {
	return fmt.Sprintf("table %s: %s", e.Table, e.Err)
}

func (e *TableError) Unwrap() error { return e.Err }
