package store

import "time"

// Row accessors used by the domain layers. Missing keys and type
// mismatches yield zero values rather than panics.

func StringValue(row Row, key string) string {
	val, ok := row[key]
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func Int64Value(row Row, key string) int64 {
	val, ok := row[key]
	if !ok || val == nil {
		return 0
	}
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func BoolValue(row Row, key string) bool {
	val, ok := row[key]
	if !ok || val == nil {
		return false
	}
	if b, ok := val.(bool); ok {
		return b
	}
	return false
}

// TimeValue parses an RFC 3339 timestamp produced by normalization.
// Returns the zero time when the value is absent or malformed.
func TimeValue(row Row, key string) time.Time {
	str := StringValue(row, key)
	if str == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return time.Time{}
	}
	return t
}

func MapValue(row Row, key string) map[string]any {
	val, ok := row[key]
	if !ok || val == nil {
		return nil
	}
	if m, ok := val.(map[string]any); ok {
		return m
	}
	return nil
}
