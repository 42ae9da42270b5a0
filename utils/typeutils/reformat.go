package typeutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gridstore-io/gridlink/types"
)

// ErrNullValue is returned when a value needs to be materialized for a column
// whose only observed type is null.
var ErrNullValue = errors.New("null value")

// layouts are tried in order; zoned layouts must come before zoneless ones so
// offsets are not silently dropped.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseStringTimestamp(value string) (time.Time, error) {
	return parseStringTimestampIn(value, time.UTC)
}

func parseStringTimestampIn(value string, location *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp string")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("value %q doesn't match any timestamp layout", value)
}

// ReformatDate converts a value into time.Time. Integer values are treated as
// unix epoch seconds; zoneless strings are read as UTC.
func ReformatDate(v any) (time.Time, error) {
	return ReformatDateInLocation(v, time.UTC)
}

// ReformatDateInLocation converts like ReformatDate but reads zoneless strings
// in the given location. Strings carrying a zone offset keep it.
func ReformatDateInLocation(v any, location *time.Location) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case *time.Time:
		if val == nil {
			return time.Time{}, fmt.Errorf("nil time pointer")
		}
		return *val, nil
	case string:
		return parseStringTimestampIn(val, location)
	case []byte:
		return parseStringTimestampIn(string(val), location)
	case int:
		return time.Unix(int64(val), 0), nil
	case int64:
		return time.Unix(val, 0), nil
	case float64:
		return time.Unix(int64(val), 0), nil
	case json.Number:
		unix, err := val.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to convert %v to unix timestamp: %s", val, err)
		}
		return time.Unix(unix, 0), nil
	default:
		return time.Time{}, fmt.Errorf("cannot convert value %v of type %T to timestamp", v, v)
	}
}

func getFirstNotNullType(datatypes []types.DataType) types.DataType {
	for _, datatype := range datatypes {
		if datatype != types.NULL {
			return datatype
		}
	}
	return types.NULL
}

// ReformatValue coerces a value into the Go representation of the given data
// type. A nil value passes through untouched so nullable columns stay null.
func ReformatValue(datatype types.DataType, v any) (any, error) {
	if datatype == types.NULL {
		return nil, ErrNullValue
	}
	if v == nil {
		return nil, nil
	}

	switch datatype {
	case types.BOOL:
		return ReformatBool(v)
	case types.INT64:
		return ReformatInt64(v)
	case types.FLOAT64:
		return ReformatFloat64(v)
	case types.STRING:
		switch val := v.(type) {
		case string:
			return val, nil
		case []byte:
			return string(val), nil
		case time.Time:
			return val.Format(time.RFC3339Nano), nil
		case map[string]any, []any:
			encoded, err := json.Marshal(val)
			if err != nil {
				return nil, fmt.Errorf("failed to stringify %T value: %s", val, err)
			}
			return string(encoded), nil
		default:
			return fmt.Sprintf("%v", val), nil
		}
	case types.TIMESTAMP, types.TIMESTAMP_MILLI, types.TIMESTAMP_MICRO, types.TIMESTAMP_NANO:
		return ReformatDate(v)
	case types.OBJECT:
		if _, ok := v.(map[string]any); ok {
			return v, nil
		}
		return nil, fmt.Errorf("cannot convert value %v of type %T to object", v, v)
	case types.ARRAY:
		if _, ok := v.([]any); ok {
			return v, nil
		}
		return []any{v}, nil
	case types.UNKNOWN:
		return v, nil
	default:
		return nil, fmt.Errorf("reformat not available for data type %s", datatype)
	}
}

// ReformatValueOnDataTypes reformats against the first non-null type of the set.
func ReformatValueOnDataTypes(datatypes []types.DataType, v any) (any, error) {
	datatype := getFirstNotNullType(datatypes)
	if datatype == types.NULL {
		return nil, ErrNullValue
	}
	return ReformatValue(datatype, v)
}

// ReformatRecord coerces every value of the record in place. Keys not present
// in fields are rejected.
func ReformatRecord(fields Fields, record types.Record) error {
	for key, value := range record {
		field, found := fields[key]
		if !found {
			return fmt.Errorf("missing field %s in resolved fields", key)
		}

		reformatted, err := ReformatValueOnDataTypes(field.Types(), value)
		if err != nil {
			return fmt.Errorf("failed to reformat field %s: %s", key, err)
		}
		record[key] = reformatted
	}
	return nil
}

// deref unwraps pointer values, returning nil for nil pointers.
func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	}
	return v
}

func ReformatBool(v any) (bool, error) {
	switch val := deref(v).(type) {
	case bool:
		return val, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		i, err := ReformatInt64(val)
		if err != nil {
			return false, err
		}
		switch i {
		case 0:
			return false, nil
		case 1:
			return true, nil
		default:
			return false, fmt.Errorf("cannot convert integer %d to bool", i)
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		default:
			return false, fmt.Errorf("cannot convert string %q to bool", val)
		}
	default:
		return false, fmt.Errorf("cannot convert value %v of type %T to bool", v, v)
	}
}

func ReformatInt64(v any) (int64, error) {
	switch val := deref(v).(type) {
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint:
		return int64(val), nil
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint64:
		return int64(val), nil
	case float32:
		return int64(val), nil
	case float64:
		return int64(val), nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return val.Int64()
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert string %q to int64: %s", val, err)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("cannot convert value %v of type %T to int64", v, v)
	}
}

func ReformatFloat64(v any) (float64, error) {
	switch val := deref(v).(type) {
	case float32:
		return float64(val), nil
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case int8:
		return float64(val), nil
	case int16:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint8:
		return float64(val), nil
	case uint16:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return val.Float64()
	case []byte:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert bytes %q to float64: %s", string(val), err)
		}
		return parsed, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert string %q to float64: %s", val, err)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("cannot convert value %v of type %T to float64", v, v)
	}
}
