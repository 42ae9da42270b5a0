package types

import "fmt"

// WriteMode is the ingestion behavior toward the target table, resolved once
// at configuration parse time.
type WriteMode string

const (
	// CreateIfAbsent creates the table from the incoming schema when it does
	// not exist, then appends.
	CreateIfAbsent WriteMode = "create_if_absent"
	// TruncateThenWrite clears an existing table before appending, creating
	// it first when absent.
	TruncateThenWrite WriteMode = "truncate_then_write"
	// AppendOnly appends to an existing table and fails when it is absent.
	AppendOnly WriteMode = "append_only"
	// UpsertByKey inserts with update-on-existing-primary-key semantics into
	// an existing table.
	UpsertByKey WriteMode = "upsert_by_key"
)

var writeModes = NewSet(CreateIfAbsent, TruncateThenWrite, AppendOnly, UpsertByKey)

// ParseWriteMode resolves a raw option value into a WriteMode. An empty value
// resolves to AppendOnly.
func ParseWriteMode(raw string) (WriteMode, error) {
	if raw == "" {
		return AppendOnly, nil
	}
	mode := WriteMode(raw)
	if !writeModes.Exists(mode) {
		return "", fmt.Errorf("invalid write mode %q, expected one of [%s]", raw, writeModes.String())
	}
	return mode, nil
}

// CreatesTable reports whether the mode creates the table when absent.
func (m WriteMode) CreatesTable() bool {
	return m == CreateIfAbsent || m == TruncateThenWrite
}

// Truncates reports whether the mode clears existing rows before writing.
func (m WriteMode) Truncates() bool {
	return m == TruncateThenWrite
}

// Upserts reports whether batches are dispatched with
// update-on-existing-primary-key semantics instead of plain inserts.
func (m WriteMode) Upserts() bool {
	return m == UpsertByKey
}
