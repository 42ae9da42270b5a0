package flatten

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gridstore-io/gridlink/types"
)

// Record flattens nested objects into top-level keys joined with '_',
// e.g. {"key1":{"key2":123}} becomes {"key1_key2":123}. Arrays are not
// exploded; they are kept as their JSON encoding so the value still fits a
// string column. Keys are reformatted to lower-case identifier characters.
func Record(record types.Record) (types.Record, error) {
	flattened := make(types.Record)
	for key, value := range record {
		if err := flatten(key, value, flattened); err != nil {
			return nil, err
		}
	}

	if emptyKeyValue, hasEmptyKey := flattened[""]; hasEmptyKey {
		flattened["_unnamed"] = emptyKeyValue
		delete(flattened, "")
	}
	return flattened, nil
}

func flatten(key string, value any, destination types.Record) error {
	key = Reformat(key)
	switch value := value.(type) {
	case map[string]any:
		for k, v := range value {
			newKey := k
			if key != "" {
				newKey = key + "_" + newKey
			}
			if err := flatten(newKey, v, destination); err != nil {
				return err
			}
		}
	case []any:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal array at key %s: %s", key, err)
		}
		destination[key] = string(encoded)
	default:
		if value != nil {
			destination[key] = value
		}
	}

	return nil
}

// Reformat makes all keys to lower case and replaces all special symbols with '_'
func Reformat(key string) string {
	key = strings.ToLower(key)
	var result strings.Builder
	for _, symbol := range key {
		if IsLetterOrNumber(symbol) {
			result.WriteByte(byte(symbol))
		} else {
			result.WriteRune('_')
		}
	}
	return result.String()
}

// IsLetterOrNumber returns true if input symbol is:
//
//	A - Z: 65-90
//	a - z: 97-122
func IsLetterOrNumber(symbol int32) bool {
	return ('a' <= symbol && symbol <= 'z') ||
		('A' <= symbol && symbol <= 'Z') ||
		('0' <= symbol && symbol <= '9')
}
