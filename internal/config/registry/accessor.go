package registry

import (
	"fmt"
	"math"
)

// TypeError is returned when a resolved value does not have the type a
// typed accessor asked for.
type TypeError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error at %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

func typeError(path, expected string, val any) *TypeError {
	return &TypeError{Path: path, Expected: expected, Actual: fmt.Sprintf("%T", val)}
}

// AsString converts a resolved value to a string. nil converts to "".
func AsString(path string, val any) (string, error) {
	if val == nil {
		return "", nil
	}
	s, ok := val.(string)
	if !ok {
		return "", typeError(path, "string", val)
	}
	return s, nil
}

// AsInt converts a resolved value to an int. Floats are accepted only when
// they hold an integral value.
func AsInt(path string, val any) (int, error) {
	if val == nil {
		return 0, nil
	}

	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case float64:
		if v == math.Trunc(v) {
			return int(v), nil
		}
	}
	return 0, typeError(path, "integer", val)
}

// AsFloat converts a resolved value to a float64.
func AsFloat(path string, val any) (float64, error) {
	if val == nil {
		return 0, nil
	}

	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, typeError(path, "number", val)
	}
}

// AsBool converts a resolved value to a bool. nil converts to false.
func AsBool(path string, val any) (bool, error) {
	if val == nil {
		return false, nil
	}
	b, ok := val.(bool)
	if !ok {
		return false, typeError(path, "boolean", val)
	}
	return b, nil
}

// AsStringSlice converts a resolved array to a []string.
func AsStringSlice(path string, val any) ([]string, error) {
	if val == nil {
		return nil, nil
	}

	switch v := val.(type) {
	case []string:
		return v, nil
	case []any:
		result := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, &TypeError{
					Path:     path,
					Expected: "string array",
					Actual:   fmt.Sprintf("array with %T element", item),
				}
			}
			result[i] = s
		}
		return result, nil
	default:
		return nil, typeError(path, "string array", val)
	}
}

// AsMap converts a resolved object to a map.
func AsMap(path string, val any) (map[string]any, error) {
	if val == nil {
		return nil, nil
	}
	m, ok := val.(map[string]any)
	if !ok {
		return nil, typeError(path, "object", val)
	}
	return m, nil
}
