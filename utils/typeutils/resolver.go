package typeutils

import (
	"fmt"
	"sort"

	"github.com/gridstore-io/gridlink/types"
)

// Resolve infers a table schema from a sample of records. Columns come out in
// lexical order so repeated runs over the same sample produce the same table.
func Resolve(records ...types.Record) (*types.TableSchema, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("cannot resolve schema from zero records")
	}

	allfields := Fields{}

	for _, record := range records {
		fields := Fields{}
		// apply default typecast and define column types
		for key, value := range record {
			fields[key] = NewField(TypeFromValue(value))
		}

		for fieldName, field := range allfields {
			if _, found := record[fieldName]; !found {
				field.setNullable()
			}
		}

		allfields.Merge(fields)
	}

	names := make([]string, 0, len(allfields))
	for name := range allfields {
		names = append(names, name)
	}
	sort.Strings(names)

	schema := &types.TableSchema{}
	for _, name := range names {
		field := allfields[name]
		// Use getType() instead of *dataType because merge() clears dataType
		// when a field has conflicting type occurrences across records
		schema.Columns = append(schema.Columns, types.Column{
			Name:     name,
			Type:     field.getType(),
			Nullable: field.isNullable(),
		})
	}
	return schema, nil
}

// ResolveFields builds the reformatting field set for an already known schema.
func ResolveFields(schema *types.TableSchema) Fields {
	fields := Fields{}
	for _, column := range schema.Columns {
		field := NewField(column.Type)
		if column.Nullable {
			field.setNullable()
		}
		fields[column.Name] = field
	}
	return fields
}
