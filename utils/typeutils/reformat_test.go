package typeutils

import (
	"testing"
	"time"

	"github.com/gridstore-io/gridlink/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReformat_GetFirstNotNullType(t *testing.T) {
	tests := []struct {
		name   string
		input  []types.DataType
		output types.DataType
	}{
		{
			name:   "single non-null type",
			input:  []types.DataType{types.STRING},
			output: types.STRING,
		},
		{
			name:   "first non-null type mixed array",
			input:  []types.DataType{types.NULL, types.INT64, types.STRING},
			output: types.INT64,
		},
		{
			name:   "all null types",
			input:  []types.DataType{types.NULL, types.NULL, types.NULL},
			output: types.NULL,
		},
		{
			name:   "empty array",
			input:  []types.DataType{},
			output: types.NULL,
		},
		{
			name:   "null followed by multiple values",
			input:  []types.DataType{types.NULL, types.BOOL, types.INT64, types.FLOAT64},
			output: types.BOOL,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := getFirstNotNullType(tc.input)
			assert.Equal(t, tc.output, result)
		})
	}
}

func TestReformat_ReformatValue(t *testing.T) {
	tests := []struct {
		name         string
		datatype     types.DataType
		value        any
		output       any
		outputErr    bool
		outputErrMsg string
	}{
		{
			name:         "null type returns errors",
			datatype:     types.NULL,
			value:        "any value",
			output:       nil,
			outputErr:    true,
			outputErrMsg: "null value",
		},
		{
			name:      "nil value returns nil",
			datatype:  types.STRING,
			value:     nil,
			output:    nil,
			outputErr: false,
		},
		{
			name:      "bool type from bool",
			datatype:  types.BOOL,
			value:     true,
			output:    true,
			outputErr: false,
		},
		{
			name:      "bool type from int 0",
			datatype:  types.BOOL,
			value:     0,
			output:    false,
			outputErr: false,
		},
		{
			name:      "bool type from int 1",
			datatype:  types.BOOL,
			value:     1,
			output:    true,
			outputErr: false,
		},
		{
			name:      "int64 type from int32",
			datatype:  types.INT64,
			value:     int32(42),
			output:    int64(42),
			outputErr: false,
		},
		{
			name:      "int64 type from string",
			datatype:  types.INT64,
			value:     "42",
			output:    int64(42),
			outputErr: false,
		},
		{
			name:      "int64 type from float64",
			datatype:  types.INT64,
			value:     float64(42.7),
			output:    int64(42),
			outputErr: false,
		},
		{
			name:      "int64 type from bool true",
			datatype:  types.INT64,
			value:     true,
			output:    int64(1),
			outputErr: false,
		},
		{
			name:      "float64 type from float32",
			datatype:  types.FLOAT64,
			value:     float32(3.5),
			output:    float64(3.5),
			outputErr: false,
		},
		{
			name:      "float64 type from string",
			datatype:  types.FLOAT64,
			value:     "3.14",
			output:    float64(3.14),
			outputErr: false,
		},
		{
			name:      "string type from string",
			datatype:  types.STRING,
			value:     "hello",
			output:    "hello",
			outputErr: false,
		},
		{
			name:      "string type from int",
			datatype:  types.STRING,
			value:     42,
			output:    "42",
			outputErr: false,
		},
		{
			name:      "string type from bool",
			datatype:  types.STRING,
			value:     true,
			output:    "true",
			outputErr: false,
		},
		{
			name:      "string type from []byte",
			datatype:  types.STRING,
			value:     []byte("hello"),
			output:    "hello",
			outputErr: false,
		},
		{
			name:      "string type from object",
			datatype:  types.STRING,
			value:     map[string]any{"a": float64(1)},
			output:    `{"a":1}`,
			outputErr: false,
		},
		{
			name:      "timestamp type from time.Time",
			datatype:  types.TIMESTAMP,
			value:     time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC),
			output:    time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC),
			outputErr: false,
		},
		{
			name:      "timestamp type from string",
			datatype:  types.TIMESTAMP,
			value:     "2023-01-01T12:00:00Z",
			output:    time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC),
			outputErr: false,
		},
		{
			name:      "timestamp type from int64 unix",
			datatype:  types.TIMESTAMP,
			value:     int64(1672574400),
			output:    time.Unix(1672574400, 0),
			outputErr: false,
		},
		{
			name:      "array type from []any",
			datatype:  types.ARRAY,
			value:     []any{1, 2, 3},
			output:    []any{1, 2, 3},
			outputErr: false,
		},
		{
			name:      "array type from single value",
			datatype:  types.ARRAY,
			value:     42,
			output:    []any{42},
			outputErr: false,
		},
		{
			name:      "unknown type passes through",
			datatype:  types.UNKNOWN,
			value:     "some value",
			output:    "some value",
			outputErr: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ReformatValue(tc.datatype, tc.value)

			if tc.outputErr {
				assert.Error(t, err)
				if tc.outputErrMsg != "" {
					assert.Contains(t, err.Error(), tc.outputErrMsg)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.output, result)
			}
		})
	}
}

func TestReformat_ReformatValueOnDataTypes(t *testing.T) {
	tests := []struct {
		name      string
		datatypes []types.DataType
		value     any
		output    any
	}{
		{
			name:      "uses first non-null type",
			datatypes: []types.DataType{types.NULL, types.INT64, types.STRING},
			value:     "42",
			output:    int64(42),
		},
		{
			name:      "all null types",
			datatypes: []types.DataType{types.NULL, types.NULL},
			value:     "23",
			output:    nil,
		},
		{
			name:      "single type",
			datatypes: []types.DataType{types.STRING},
			value:     42,
			output:    "42",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ReformatValueOnDataTypes(tc.datatypes, tc.value)
			if tc.output == nil {
				assert.Error(t, err)
				assert.Equal(t, ErrNullValue, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.output, result)
			}
		})
	}
}

func TestReformat_ReformatRecord(t *testing.T) {
	tests := []struct {
		name         string
		fields       Fields
		record       types.Record
		output       types.Record
		outputErr    bool
		outputErrMsg string
	}{
		{
			name: "successful reformat",
			fields: Fields{
				"id":    NewField(types.INT64),
				"name":  NewField(types.STRING),
				"score": NewField(types.FLOAT64),
			},
			record: types.Record{
				"id":    "42",
				"name":  "test",
				"score": "42.33",
			},
			output: types.Record{
				"id":    int64(42),
				"name":  "test",
				"score": float64(42.33),
			},
			outputErr: false,
		},
		{
			name: "missing field error",
			fields: Fields{
				"id": NewField(types.INT64),
			},
			record: types.Record{
				"id":   "42",
				"name": "test",
			},
			outputErr:    true,
			outputErrMsg: "missing field",
		},
		{
			name: "empty record",
			fields: Fields{
				"id": NewField(types.INT64),
			},
			record:    types.Record{},
			output:    types.Record{},
			outputErr: false,
		},
		{
			name: "nullable field keeps null",
			fields: Fields{
				"active": NewField(types.NULL),
			},
			record: types.Record{
				"active": nil,
			},
			output: types.Record{
				"active": nil,
			},
			outputErr: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ReformatRecord(tc.fields, tc.record)
			if tc.outputErr {
				assert.Error(t, err)
				if tc.outputErrMsg != "" {
					assert.Contains(t, err.Error(), tc.outputErrMsg)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.output, tc.record)
			}
		})
	}
}

func TestReformat_ReformatBool(t *testing.T) {
	tests := []struct {
		name        string
		value       any
		expected    any
		expectedErr bool
	}{
		{name: "bool true", value: true, expected: true},
		{name: "bool false", value: false, expected: false},
		{name: "string TRUE", value: "TRUE", expected: true},
		{name: "string False", value: "False", expected: false},
		{name: "string 1", value: "1", expected: true},
		{name: "string 0", value: "0", expected: false},
		{name: "string t", value: "t", expected: true},
		{name: "string f", value: "f", expected: false},
		{name: "string yes", value: "yes", expected: true},
		{name: "string no", value: "no", expected: false},
		{name: "string invalid", value: "maybe", expectedErr: true},
		{name: "int 1", value: 1, expected: true},
		{name: "int 0", value: 0, expected: false},
		{name: "int 2", value: 2, expectedErr: true},
		{name: "float64", value: float64(1.0), expectedErr: true},
		{name: "nil", value: nil, expectedErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ReformatBool(tc.value)
			if tc.expectedErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, result)
			}
		})
	}
}

func TestReformat_ReformatInt64(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		expected  int64
		expectErr bool
	}{
		{name: "int64 value", value: int64(42), expected: 42},
		{name: "int value", value: 42, expected: 42},
		{name: "int8 value", value: int8(42), expected: 42},
		{name: "int16 value", value: int16(42), expected: 42},
		{name: "int32 value", value: int32(42), expected: 42},
		{name: "uint value", value: uint(42), expected: 42},
		{name: "uint64 value", value: uint64(42), expected: 42},
		{name: "float32 value", value: float32(42.3), expected: 42},
		{name: "float64 value", value: float64(42.3), expected: 42},
		{name: "bool true", value: true, expected: 1},
		{name: "bool false", value: false, expected: 0},
		{name: "string positive numbers", value: "42", expected: 42},
		{name: "string with negative numbers", value: "-42", expected: -42},
		{name: "string invalid", value: "no number", expectErr: true},
		{
			name: "pointer to any",
			value: func() *any {
				v := any(42)
				return &v
			}(),
			expected: 42,
		},
		{name: "nil", value: nil, expectErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ReformatInt64(tc.value)
			if tc.expectErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, result)
			}
		})
	}
}

func TestReformat_ReformatFloat64(t *testing.T) {
	testCases := []struct {
		name        string
		value       any
		expected    float64
		expectError bool
	}{
		{name: "float64 value", value: float64(3.14), expected: 3.14},
		{name: "float32 value", value: float32(3.14), expected: 3.14},
		{name: "int value", value: 42, expected: 42},
		{name: "int64 value", value: int64(42), expected: 42},
		{name: "uint32 value", value: uint32(42), expected: 42},
		{name: "bool true", value: true, expected: 1.0},
		{name: "bool false", value: false, expected: 0.0},
		{name: "string positive number", value: "3.14", expected: 3.14},
		{name: "string negative number", value: "-3.14", expected: -3.14},
		{name: "string invalid", value: "not a number", expectError: true},
		{name: "[]uint8 number string", value: []uint8("3.14"), expected: 3.14},
		{name: "[]uint8 invalid", value: []uint8("invalid"), expectError: true},
		{name: "nil", value: nil, expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ReformatFloat64(tc.value)

			if tc.expectError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.InDelta(t, tc.expected, result, 0.0001)
			}
		})
	}
}

func TestReformat_ReformatDate(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		expected  time.Time
		expectErr bool
	}{
		{
			name:     "time.Time value",
			value:    time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC),
			expected: time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "rfc3339 string",
			value:    "2023-06-15T10:30:00Z",
			expected: time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "rfc3339 string with nanos",
			value:    "2023-06-15T10:30:00.123456789Z",
			expected: time.Date(2023, 6, 15, 10, 30, 0, 123456789, time.UTC),
		},
		{
			name:     "space separated datetime",
			value:    "2023-06-15 10:30:00",
			expected: time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "date only",
			value:    "2023-06-15",
			expected: time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "unix epoch int64",
			value:    int64(1686824000),
			expected: time.Unix(1686824000, 0),
		},
		{
			name:      "plain number string",
			value:     "42",
			expectErr: true,
		},
		{
			name:      "arbitrary string",
			value:     "not a date",
			expectErr: true,
		},
		{
			name:      "nil",
			value:     nil,
			expectErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ReformatDate(tc.value)
			if tc.expectErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.True(t, tc.expected.Equal(result), "expected %s got %s", tc.expected, result)
			}
		})
	}
}
