package typeutils

import (
	"github.com/gridstore-io/gridlink/types"
)

// Field accumulates the types observed for one column across records. A nil
// dataType marks conflicting observations; such columns degrade to string.
type Field struct {
	dataType *types.DataType
	nullable bool
}

type Fields map[string]*Field

func NewField(datatype types.DataType) *Field {
	field := &Field{dataType: &datatype}
	if datatype == types.NULL {
		field.nullable = true
	}
	return field
}

func (f *Field) setNullable() {
	f.nullable = true
}

func (f *Field) isNullable() bool {
	return f.nullable
}

// getType resolves the accumulated type; conflicting or null-only columns
// resolve to string.
func (f *Field) getType() types.DataType {
	if f.dataType == nil || *f.dataType == types.NULL {
		return types.STRING
	}
	return *f.dataType
}

// Types lists the admissible types for reformatting, null first when the
// column is nullable.
func (f *Field) Types() []types.DataType {
	if f.nullable {
		return []types.DataType{types.NULL, f.getType()}
	}
	return []types.DataType{f.getType()}
}

func (f *Field) merge(other *Field) {
	if other.nullable {
		f.nullable = true
	}
	if other.dataType == nil {
		f.dataType = nil
		return
	}
	if *other.dataType == types.NULL {
		// null observation carries no type information
		f.nullable = true
		return
	}
	if f.dataType == nil {
		return
	}
	if *f.dataType == types.NULL {
		f.dataType = other.dataType
		return
	}
	if *f.dataType == *other.dataType {
		return
	}

	merged, found := widenTypes(*f.dataType, *other.dataType)
	if !found {
		f.dataType = nil
		return
	}
	f.dataType = &merged
}

// widenTypes finds a common type for two conflicting observations.
func widenTypes(a, b types.DataType) (types.DataType, bool) {
	if (a == types.INT64 && b == types.FLOAT64) || (a == types.FLOAT64 && b == types.INT64) {
		return types.FLOAT64, true
	}
	if a.IsTimestamp() && b.IsTimestamp() {
		precedence := map[types.DataType]int{
			types.TIMESTAMP:       0,
			types.TIMESTAMP_MILLI: 1,
			types.TIMESTAMP_MICRO: 2,
			types.TIMESTAMP_NANO:  3,
		}
		if precedence[a] >= precedence[b] {
			return a, true
		}
		return b, true
	}
	return types.NULL, false
}

// Merge folds the fields of one record into the accumulated set.
func (f Fields) Merge(other Fields) {
	for name, field := range other {
		if existing, found := f[name]; found {
			existing.merge(field)
			continue
		}
		f[name] = field
	}
}
