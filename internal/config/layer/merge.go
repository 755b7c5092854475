package layer

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/ywtatools/ywta/internal/config/cfgerr"
)

// SplitPath splits a dotted key into its segments. Empty keys and empty
// segments ("a..b", ".a", "a.") are rejected.
func SplitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty key", cfgerr.ErrInvalidPath)
	}
	parts := strings.Split(path, ".")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: %q has an empty segment", cfgerr.ErrInvalidPath, path)
		}
	}
	return parts, nil
}

// DeepMerge recursively merges src into dst and returns dst.
// Values in src override values in dst. Maps are merged recursively; any
// other value, including arrays, is replaced by a copy of the src value.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	if src == nil {
		return dst
	}

	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
			continue
		}
		dst[key] = CloneValue(srcVal)
	}

	return dst
}

// GetByPath retrieves a value from a nested map using a dotted path.
// Missing segments and non-map intermediates report false.
func GetByPath(data map[string]any, path string) (any, bool) {
	if data == nil || path == "" {
		return nil, false
	}

	current := any(data)
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		val, exists := m[part]
		if !exists {
			return nil, false
		}

		current = val
	}

	return current, true
}

// SetByPath sets a value in a nested map using a dotted path.
// Intermediate maps are created as needed; an intermediate that is not a
// map is replaced by one.
func SetByPath(data map[string]any, path string, value any) error {
	if data == nil {
		return fmt.Errorf("%w: nil document", cfgerr.ErrInvalidPath)
	}
	parts, err := SplitPath(path)
	if err != nil {
		return err
	}

	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}

	current[parts[len(parts)-1]] = value
	return nil
}

// DeleteByPath removes the leaf at a dotted path. Sibling keys are left
// untouched. Returns true if the value was found and deleted.
func DeleteByPath(data map[string]any, path string) bool {
	if data == nil || path == "" {
		return false
	}

	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			return false
		}
		current = next
	}

	key := parts[len(parts)-1]
	if _, exists := current[key]; !exists {
		return false
	}
	delete(current, key)
	return true
}

// Leaves returns every leaf of a nested document keyed by dotted path.
// Empty objects have no leaves.
func Leaves(data map[string]any) map[string]any {
	result := make(map[string]any)
	collectLeaves(data, "", result)
	return result
}

func collectLeaves(data map[string]any, prefix string, result map[string]any) {
	for key, val := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := val.(map[string]any); ok && len(nested) > 0 {
			collectLeaves(nested, fullKey, result)
		} else if !ok {
			result[fullKey] = val
		}
	}
}

// LeafKeys returns the dotted paths of every leaf, sorted.
func LeafKeys(data map[string]any) []string {
	leaves := Leaves(data)
	keys := make([]string, 0, len(leaves))
	for k := range leaves {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Change is one differing leaf between two documents.
type Change struct {
	Path string
	Old  any
	New  any
}

// Diff compares the leaves of two documents. Added paths exist only in
// new, removed paths only in old, and modified paths in both with unequal
// values. Each slice is sorted by path.
func Diff(old, new map[string]any) (added, modified, removed []Change) {
	oldLeaves := Leaves(old)
	newLeaves := Leaves(new)

	for _, path := range sortedKeys(newLeaves) {
		newVal := newLeaves[path]
		oldVal, exists := oldLeaves[path]
		switch {
		case !exists:
			added = append(added, Change{Path: path, New: newVal})
		case !ValuesEqual(oldVal, newVal):
			modified = append(modified, Change{Path: path, Old: oldVal, New: newVal})
		}
	}

	for _, path := range sortedKeys(oldLeaves) {
		if _, exists := newLeaves[path]; !exists {
			removed = append(removed, Change{Path: path, Old: oldLeaves[path]})
		}
	}

	return added, modified, removed
}

// ValuesEqual compares two document values. Numbers compare by value across
// Go numeric kinds so a decoded 24 equals a literal 24.0; arrays and objects
// compare element-wise.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if na, ok := numeric(a); ok {
		nb, ok := numeric(b)
		return ok && na.equal(nb)
	}

	switch va := a.(type) {
	case map[string]any:
		vb, ok := b.(map[string]any)
		return ok && mapsEqual(va, vb)
	case []any:
		vb, ok := b.([]any)
		return ok && slicesEqual(va, vb)
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if !ta.Comparable() || !tb.Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

type number struct {
	isInt bool
	i     int64
	f     float64
}

func (n number) equal(o number) bool {
	if n.isInt && o.isInt {
		return n.i == o.i
	}
	return n.f == o.f
}

func numeric(v any) (number, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{isInt: true, i: rv.Int(), f: float64(rv.Int())}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return number{isInt: true, i: int64(rv.Uint()), f: float64(rv.Uint())}, true
	case reflect.Float32, reflect.Float64:
		return number{f: rv.Float()}, true
	default:
		return number{}, false
	}
}

func mapsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !ValuesEqual(va, vb) {
			return false
		}
	}
	return true
}

func slicesEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ValuesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
