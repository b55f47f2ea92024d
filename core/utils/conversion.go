package utils

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ToID normalizes a platform object id. Older platform releases return numeric ids,
// newer ones return strings; both map to the same string form.
func ToID(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case []byte:
		return strings.TrimSpace(string(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToString converts various types to string. nil becomes "".
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToSlice returns val as a JSON array, or nil when it is not one.
func ToSlice(val any) []any {
	if s, ok := val.([]any); ok {
		return s
	}
	return nil
}

// ToMap returns val as a JSON object, or nil when it is not one.
func ToMap(val any) map[string]any {
	if m, ok := val.(map[string]any); ok {
		return m
	}
	return nil
}
