// Package registry holds the named settings of a configuration and their
// resolution state.
//
// Each setting is a Value: a dotted key with a static default, a declared
// type tag, an optional rule, an environment binding and a sticky
// resolution cache. A Registry groups values by key and by top-level section.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ywtatools/ywta/internal/config/layer"
)

// ErrAlreadyRegistered is returned when a key already has a Value.
var ErrAlreadyRegistered = errors.New("setting already registered")

// Registry maintains the settings of one configuration.
// It is not safe for concurrent use.
type Registry struct {
	values   map[string]*Value
	sections map[string][]*Value // Values grouped by first key segment
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		values:   make(map[string]*Value),
		sections: make(map[string][]*Value),
	}
}

// Register adds a value. The first registration for a key wins; later ones
// fail with ErrAlreadyRegistered.
func (r *Registry) Register(v *Value) error {
	if _, exists := r.values[v.Key()]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, v.Key())
	}
	if _, err := layer.SplitPath(v.Key()); err != nil {
		return err
	}

	r.values[v.Key()] = v
	section := extractSection(v.Key())
	r.sections[section] = append(r.sections[section], v)
	return nil
}

// Get returns the value for key, or nil.
func (r *Registry) Get(key string) *Value {
	return r.values[key]
}

// Has reports whether key has a value.
func (r *Registry) Has(key string) bool {
	_, exists := r.values[key]
	return exists
}

// Len returns the number of registered values.
func (r *Registry) Len() int {
	return len(r.values)
}

// All returns every value sorted by key.
func (r *Registry) All() []*Value {
	result := make([]*Value, 0, len(r.values))
	for _, v := range r.values {
		result = append(result, v)
	}
	sortValues(result)
	return result
}

// Keys returns every registered key, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Section returns the values whose key starts with the given first segment.
func (r *Registry) Section(name string) []*Value {
	result := append([]*Value(nil), r.sections[name]...)
	sortValues(result)
	return result
}

// Sections returns all section names, sorted.
func (r *Registry) Sections() []string {
	result := make([]string, 0, len(r.sections))
	for section := range r.sections {
		result = append(result, section)
	}
	sort.Strings(result)
	return result
}

// Search finds values whose key or description contains query,
// case-insensitively.
func (r *Registry) Search(query string) []*Value {
	query = strings.ToLower(query)
	var result []*Value
	for _, v := range r.values {
		if strings.Contains(strings.ToLower(v.Key()), query) ||
			strings.Contains(strings.ToLower(v.Description()), query) {
			result = append(result, v)
		}
	}
	sortValues(result)
	return result
}

// ResetAll clears every value's resolution cache.
func (r *Registry) ResetAll() {
	for _, v := range r.values {
		v.Reset()
	}
}

func extractSection(key string) string {
	if i := strings.Index(key, "."); i >= 0 {
		return key[:i]
	}
	return key
}

func sortValues(values []*Value) {
	sort.Slice(values, func(i, j int) bool {
		return values[i].Key() < values[j].Key()
	})
}
