package types

// Column is one entry of a resolved table type. NativeType carries the
// Gridstore-side primitive, Type the engine-side datatype it maps to.
type Column struct {
	Name       string   `json:"name"`
	Type       DataType `json:"type"`
	NativeType string   `json:"native_type,omitempty"`
	Nullable   bool     `json:"nullable"`
	PrimaryKey bool     `json:"primary_key,omitempty"`
}

// TableSchema is an ordered table type. Column order is the order rows are
// produced in on the read path and the order columns are created in on the
// write path.
type TableSchema struct {
	Columns []Column `json:"columns"`
}

func NewTableSchema(columns ...Column) *TableSchema {
	return &TableSchema{Columns: columns}
}

// Column returns the named column, matching case-sensitively.
func (t *TableSchema) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Names returns column names in schema order.
func (t *TableSchema) Names() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// PrimaryKeys returns the names of primary key columns in schema order.
func (t *TableSchema) PrimaryKeys() []string {
	keys := []string{}
	for _, col := range t.Columns {
		if col.PrimaryKey {
			keys = append(keys, col.Name)
		}
	}
	return keys
}

func (t *TableSchema) Len() int {
	return len(t.Columns)
}
