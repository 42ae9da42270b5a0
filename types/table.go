package types

import (
	"fmt"
	"strings"
)

// TableRef addresses a remote table, optionally inside a collection.
type TableRef struct {
	Collection string `json:"collection,omitempty"`
	Name       string `json:"name"`
}

// ParseTableRef splits a table name into collection and table parts. When
// qualified is set and the name contains a separator, everything before the
// FIRST '.' is the collection; the remainder, separators included, is the
// table name. "a.b.c" therefore resolves to collection "a", table "b.c".
func ParseTableRef(name string, qualified bool) (TableRef, error) {
	if strings.TrimSpace(name) == "" {
		return TableRef{}, fmt.Errorf("table name is required")
	}
	if !qualified {
		return TableRef{Name: name}, nil
	}
	collection, table, found := strings.Cut(name, ".")
	if !found {
		return TableRef{Name: name}, nil
	}
	if collection == "" || table == "" {
		return TableRef{}, fmt.Errorf("invalid qualified table name: %s", name)
	}
	return TableRef{Collection: collection, Name: table}, nil
}

// String returns the fully qualified name.
func (t TableRef) String() string {
	if t.Collection == "" {
		return t.Name
	}
	return fmt.Sprintf("%s.%s", t.Collection, t.Name)
}
