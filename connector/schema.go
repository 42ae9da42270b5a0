/*
 * Copyright 2025 Gridstore
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package connector

import (
	"fmt"
	"strings"
	"time"

	"github.com/gridstore-io/gridlink/pkg/rowapi"
	"github.com/gridstore-io/gridlink/types"
	"github.com/gridstore-io/gridlink/utils/typeutils"
)

// Mapping of Gridstore native column types to engine data types
var nativeTypeToDataTypes = map[string]types.DataType{
	// Integer types
	"int8":  types.INT64,
	"int16": types.INT64,
	"int":   types.INT64,
	"long":  types.INT64,

	// Floating point types
	"float":   types.FLOAT64,
	"double":  types.FLOAT64,
	"decimal": types.FLOAT64,

	// String types
	"char":   types.STRING,
	"string": types.STRING,
	"bytes":  types.STRING,

	// Boolean type
	"bool": types.BOOL,

	// Date and time types; datetime carries an optional fractional precision
	// suffix, e.g. datetime(3)
	"date":      types.TIMESTAMP,
	"datetime":  types.TIMESTAMP,
	"timestamp": types.TIMESTAMP,

	// time of day has no engine-side counterpart
	"time": types.STRING,
}

// Engine data types to the native column type used when creating tables
var dataTypeToNativeType = map[types.DataType]string{
	types.INT64:           "long",
	types.FLOAT64:         "double",
	types.STRING:          "string",
	types.BOOL:            "bool",
	types.TIMESTAMP:       "datetime",
	types.TIMESTAMP_MILLI: "datetime(3)",
	types.TIMESTAMP_MICRO: "datetime(6)",
	types.TIMESTAMP_NANO:  "datetime(9)",
}

// datetimePrecision refines the engine type for parameterized datetime columns.
func datetimePrecision(nativeType string) types.DataType {
	switch strings.ToLower(strings.TrimSpace(nativeType)) {
	case "datetime(3)", "timestamp(3)":
		return types.TIMESTAMP_MILLI
	case "datetime(6)", "timestamp(6)":
		return types.TIMESTAMP_MICRO
	case "datetime(9)", "timestamp(9)":
		return types.TIMESTAMP_NANO
	default:
		return types.TIMESTAMP
	}
}

// FromNativeColumns maps a remote table description to an engine schema,
// preserving column order. Unmapped native primitives surface as
// TypeResolutionError.
func FromNativeColumns(table string, columns []rowapi.ColumnSpec) (*types.TableSchema, error) {
	schema := &types.TableSchema{Columns: make([]types.Column, 0, len(columns))}
	for _, column := range columns {
		datatype := typeutils.ExtractAndMapColumnType(column.Type, nativeTypeToDataTypes)
		if datatype == "" {
			return nil, &types.TypeResolutionError{Table: table, Column: column.Name, NativeType: column.Type}
		}
		if datatype == types.TIMESTAMP {
			datatype = datetimePrecision(column.Type)
		}
		schema.Columns = append(schema.Columns, types.Column{
			Name:       column.Name,
			Type:       datatype,
			NativeType: column.Type,
			Nullable:   column.Nullable,
			PrimaryKey: column.Key,
		})
	}
	return schema, nil
}

// ToNativeColumns maps an engine schema to the native columns of a create
// request. Object, array, unknown and null typed columns have no native
// counterpart and surface as UnsupportedColumnTypeError.
func ToNativeColumns(schema *types.TableSchema) ([]rowapi.ColumnSpec, error) {
	columns := make([]rowapi.ColumnSpec, 0, schema.Len())
	for _, column := range schema.Columns {
		nativeType, found := dataTypeToNativeType[column.Type]
		if !found {
			return nil, &types.UnsupportedColumnTypeError{Column: column.Name, Type: column.Type}
		}
		columns = append(columns, rowapi.ColumnSpec{
			Name:     column.Name,
			Type:     nativeType,
			Nullable: column.Nullable,
			Key:      column.PrimaryKey,
		})
	}
	return columns, nil
}

// MatchSchemas reconciles an incoming engine schema with the resolved type of
// an existing table. Every incoming column must exist remotely with the same
// engine type; remote-only columns must be nullable for inserts to succeed.
func MatchSchemas(table string, incoming, existing *types.TableSchema) error {
	for _, column := range incoming.Columns {
		remote, found := existing.Column(column.Name)
		if !found {
			return &types.SchemaMismatchError{Table: table, Column: column.Name, Reason: "column not present in table type"}
		}
		if !typesCompatible(column.Type, remote.Type) {
			return &types.SchemaMismatchError{
				Table:  table,
				Column: column.Name,
				Reason: fmt.Sprintf("incoming type %s does not fit native type %s", column.Type, remote.NativeType),
			}
		}
	}

	for _, remote := range existing.Columns {
		if _, found := incoming.Column(remote.Name); !found && !remote.Nullable {
			return &types.SchemaMismatchError{
				Table:  table,
				Column: remote.Name,
				Reason: "non-nullable column missing from incoming schema",
			}
		}
	}
	return nil
}

// typesCompatible tolerates differing timestamp precisions and int-to-float
// widening; everything else must match exactly.
func typesCompatible(incoming, remote types.DataType) bool {
	if incoming == remote {
		return true
	}
	if incoming.IsTimestamp() && remote.IsTimestamp() {
		return true
	}
	return incoming == types.INT64 && remote == types.FLOAT64
}

// Mapper converts record values between the engine representation and the row
// API wire form. It is pure: no handle, no I/O, safe for concurrent use.
type Mapper struct {
	location *time.Location
}

func NewMapper(location *time.Location) *Mapper {
	if location == nil {
		location = time.UTC
	}
	return &Mapper{location: location}
}

func (m *Mapper) convert(column types.Column, value any) (any, error) {
	if value == nil {
		if !column.Nullable {
			return nil, fmt.Errorf("null value for non-nullable column %s", column.Name)
		}
		return nil, nil
	}

	if column.Type.IsTimestamp() {
		t, err := typeutils.ReformatDateInLocation(value, m.location)
		if err != nil {
			return nil, err
		}
		return t.UTC().Format(time.RFC3339Nano), nil
	}
	return typeutils.ReformatValue(column.Type, value)
}

// ToRemoteRow converts one engine record into a positional row following the
// schema's column order. Record keys outside the schema are rejected.
func (m *Mapper) ToRemoteRow(table string, schema *types.TableSchema, record types.Record) ([]any, error) {
	for key := range record {
		if _, found := schema.Column(key); !found {
			return nil, &types.SchemaMismatchError{Table: table, Column: key, Reason: "record key not present in table type"}
		}
	}

	row := make([]any, schema.Len())
	for i, column := range schema.Columns {
		value, err := m.convert(column, record[column.Name])
		if err != nil {
			return nil, &types.SchemaMismatchError{Table: table, Column: column.Name, Reason: err.Error()}
		}
		row[i] = value
	}
	return row, nil
}

// FromRemoteRow converts one positional row into an engine record. The columns
// slice names the projection the row was produced with.
func (m *Mapper) FromRemoteRow(table string, schema *types.TableSchema, columns []string, row []any) (types.Record, error) {
	if len(columns) != len(row) {
		return nil, &types.SchemaMismatchError{
			Table:  table,
			Reason: fmt.Sprintf("row width %d does not match projection width %d", len(row), len(columns)),
		}
	}

	record := make(types.Record, len(columns))
	for i, name := range columns {
		column, found := schema.Column(name)
		if !found {
			return nil, &types.SchemaMismatchError{Table: table, Column: name, Reason: "column not present in table type"}
		}
		value, err := m.convert(*column, row[i])
		if err != nil {
			return nil, &types.SchemaMismatchError{Table: table, Column: name, Reason: err.Error()}
		}
		record[name] = value
	}
	return record, nil
}
