package types

import (
	"fmt"
)

// ConnectionError covers unreachable endpoints, rejected credentials and
// protocol/version mismatches. Fatal unless the caller reconnects with fresh
// configuration.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %s", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TypeResolutionError is returned when a table type cannot be resolved: the
// table does not exist and no explicit schema was supplied, or a remote
// column carries a primitive with no engine-side mapping.
type TypeResolutionError struct {
	Table      string
	Column     string
	NativeType string
}

func (e *TypeResolutionError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("cannot resolve type of column %s (native type %q) in table %s", e.Column, e.NativeType, e.Table)
	}
	return fmt.Sprintf("cannot resolve type of table %s: table does not exist and no schema was supplied", e.Table)
}

// SchemaMismatchError is returned when an incoming schema cannot be
// reconciled with an existing table type.
type SchemaMismatchError struct {
	Table  string
	Column string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("schema mismatch on table %s, column %s: %s", e.Table, e.Column, e.Reason)
	}
	return fmt.Sprintf("schema mismatch on table %s: %s", e.Table, e.Reason)
}

// UnsupportedColumnTypeError names a source column whose datatype has no
// remote mapping.
type UnsupportedColumnTypeError struct {
	Column string
	Type   DataType
}

func (e *UnsupportedColumnTypeError) Error() string {
	return fmt.Sprintf("column %s has unsupported type %s", e.Column, e.Type)
}

// UnsupportedPredicateError names a pushdown operator the WHERE renderer
// cannot express.
type UnsupportedPredicateError struct {
	Column   string
	Operator string
}

func (e *UnsupportedPredicateError) Error() string {
	return fmt.Sprintf("unsupported predicate operator %q on column %s", e.Operator, e.Column)
}

// FetchError is a range fetch that kept failing after the configured retry
// budget. It carries the window so the failure is actionable without
// re-running with elevated logging.
type FetchError struct {
	Table  string
	Offset int64
	Count  int64
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch of %d rows at offset %d from table %s failed: %s", e.Count, e.Offset, e.Table, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// CountQueryError is fatal and never retried: a failing or row-less count
// result indicates a protocol-level problem, not a transient one.
type CountQueryError struct {
	Query string
	Err   error
}

func (e *CountQueryError) Error() string {
	return fmt.Sprintf("count query %q failed: %s", e.Query, e.Err)
}

func (e *CountQueryError) Unwrap() error { return e.Err }
