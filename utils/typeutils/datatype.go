package typeutils

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/gridstore-io/gridlink/types"
)

var timeType = reflect.TypeOf(time.Time{})

func TypeFromValue(v interface{}) types.DataType {
	if v == nil {
		return types.NULL
	}

	switch val := v.(type) {
	case bool:
		return types.BOOL
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return types.INT64
	case float32, float64:
		return types.FLOAT64
	case string:
		t, err := parseStringTimestamp(val)
		if err == nil {
			return detectTimestampPrecision(t)
		}
		return types.STRING
	case []byte:
		return types.STRING
	case time.Time:
		return detectTimestampPrecision(val)
	case []any:
		return types.ARRAY
	case map[string]any:
		return types.OBJECT
	case *bool:
		if val == nil {
			return types.NULL
		}
		return types.BOOL
	case *int:
		if val == nil {
			return types.NULL
		}
		return types.INT64
	case *int32:
		if val == nil {
			return types.NULL
		}
		return types.INT64
	case *int64:
		if val == nil {
			return types.NULL
		}
		return types.INT64
	case *float32:
		if val == nil {
			return types.NULL
		}
		return types.FLOAT64
	case *float64:
		if val == nil {
			return types.NULL
		}
		return types.FLOAT64
	case *string:
		if val == nil {
			return types.NULL
		}
		t, err := parseStringTimestamp(*val)
		if err == nil {
			return detectTimestampPrecision(t)
		}
		return types.STRING
	case *time.Time:
		if val == nil {
			return types.NULL
		}
		return detectTimestampPrecision(*val)
	}

	return typeFromValueReflect(v)
}

// typeFromValueReflect handles types that require reflection
func typeFromValueReflect(v interface{}) types.DataType {
	valType := reflect.TypeOf(v)
	if valType == nil {
		return types.NULL
	}
	// Handle pointers
	if valType.Kind() == reflect.Pointer {
		val := reflect.ValueOf(v)
		if val.IsNil() {
			return types.NULL
		}
		return TypeFromValue(val.Elem().Interface())
	}

	// Handle json.Number type (when using json.Decoder with UseNumber())
	// in case of reflect, json.Number is detected as string so we need to handle it for integer and float
	if num, ok := v.(json.Number); ok {
		// If the number is an integer then -> int64
		if _, err := num.Int64(); err == nil {
			return types.INT64
		}
		return types.FLOAT64
	}

	switch valType.Kind() {
	case reflect.Invalid:
		return types.NULL
	case reflect.Bool:
		return types.BOOL
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return types.INT64
	case reflect.Float32, reflect.Float64:
		return types.FLOAT64
	case reflect.String:
		// NOTE: If the string is in correct datetime format, it will be detected as timestamp and returned as timestamp datatype
		t, err := parseStringTimestamp(v.(string))
		if err == nil {
			return detectTimestampPrecision(t)
		}
		return types.STRING
	case reflect.Slice, reflect.Array:
		return types.ARRAY
	case reflect.Map:
		return types.OBJECT
	default:
		// Check if the type is time.Time for timestamp detection
		if valType == timeType {
			return detectTimestampPrecision(v.(time.Time))
		}
		return types.UNKNOWN
	}
}

// Detect timestamp precision depending on time value
func detectTimestampPrecision(t time.Time) types.DataType {
	nanos := t.Nanosecond()
	if nanos == 0 { // if their is no nanosecond
		return types.TIMESTAMP
	}
	switch {
	case nanos%int(time.Millisecond) == 0:
		return types.TIMESTAMP_MILLI // store in milliseconds
	case nanos%int(time.Microsecond) == 0:
		return types.TIMESTAMP_MICRO // store in microseconds
	default:
		return types.TIMESTAMP_NANO // store in nanoseconds
	}
}

func ExtractAndMapColumnType(columnType string, typeMapping map[string]types.DataType) types.DataType {
	// extracts the base type (e.g., varchar(50) -> varchar)
	baseType := strings.ToLower(strings.TrimSpace(strings.Split(columnType, "(")[0]))
	return typeMapping[baseType]
}
