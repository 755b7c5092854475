package loader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ywtatools/ywta/internal/config/schema"
)

// DefaultEnvPrefix is prepended to derived environment variable names.
const DefaultEnvPrefix = "YWTA"

var truthy = map[string]bool{"true": true, "1": true, "yes": true, "on": true}

// EnvVarName derives the environment variable bound to a dotted key:
// the prefix, an underscore, then the key upper-cased with dots replaced
// by underscores. An empty prefix yields the bare converted key.
func EnvVarName(prefix, key string) string {
	name := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if prefix == "" {
		return name
	}
	return strings.ToUpper(strings.TrimSuffix(prefix, "_")) + "_" + name
}

// LookupEnv returns the value and name of the first set variable in names.
// Empty values count as set.
func LookupEnv(names ...string) (value, name string, ok bool) {
	for _, n := range names {
		if n == "" {
			continue
		}
		if v, found := os.LookupEnv(n); found {
			return v, n, true
		}
	}
	return "", "", false
}

// ParseEnvValue coerces environment text to the declared type.
// Booleans never fail: true, 1, yes and on (any case) are true and
// everything else is false. Arrays and objects are parsed as JSON
// literals of the matching kind. TypeString and TypeAny return raw.
func ParseEnvValue(raw string, t schema.Type) (any, error) {
	switch t {
	case schema.TypeBool:
		return truthy[strings.ToLower(strings.TrimSpace(raw))], nil
	case schema.TypeInt:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("parse %q as int: %w", raw, err)
		}
		return n, nil
	case schema.TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q as float: %w", raw, err)
		}
		return f, nil
	case schema.TypeArray, schema.TypeObject:
		v, err := DecodeValue(raw)
		if err != nil {
			return nil, err
		}
		if got := schema.TypeOf(v); got != t {
			return nil, fmt.Errorf("parse %q: expected %s literal, got %s", raw, t, got)
		}
		return v, nil
	default:
		return raw, nil
	}
}
