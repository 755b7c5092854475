// Package layer holds the document tiers a setting can resolve from and the
// dotted-path helpers used to read and write nested documents.
//
// Tiers are ordered by priority. Higher priority tiers override lower ones
// when merged.
package layer

// Layer is a single configuration document tier.
type Layer struct {
	// Name identifies the layer ("defaults", "user", ...).
	Name string

	// Priority determines merge order (higher overrides lower).
	Priority int

	// Source indicates which tier the layer represents.
	Source Source

	// Data holds the values as a nested map.
	Data map[string]any

	// ReadOnly prevents modifications through the Manager.
	ReadOnly bool
}

// NewLayer creates an empty layer for source at its standard priority.
func NewLayer(name string, source Source) *Layer {
	return NewLayerWithData(name, source, make(map[string]any))
}

// NewLayerWithData creates a layer for source holding data.
func NewLayerWithData(name string, source Source, data map[string]any) *Layer {
	return &Layer{
		Name:     name,
		Source:   source,
		Priority: source.Priority(),
		Data:     data,
	}
}

// Source identifies the tier a value was resolved from.
type Source uint8

const (
	// SourceNone means the value was not found in any tier.
	SourceNone Source = iota
	// SourceFallback is the fallback supplied by the caller of a read.
	SourceFallback
	// SourceDefault is the bundled default document.
	SourceDefault
	// SourceUser is the user overlay document.
	SourceUser
	// SourceEnv is an environment variable.
	SourceEnv
	// SourceSet is an explicit in-process assignment.
	SourceSet
)

// Standard priority levels. Higher values override lower values.
const (
	PriorityFallback = 0
	PriorityDefault  = 100
	PriorityUser     = 200
	PriorityEnv      = 300
	PrioritySet      = 400
)

// String returns a human-readable name for the source.
func (s Source) String() string {
	switch s {
	case SourceNone:
		return "none"
	case SourceFallback:
		return "fallback"
	case SourceDefault:
		return "default"
	case SourceUser:
		return "user"
	case SourceEnv:
		return "environment"
	case SourceSet:
		return "set"
	default:
		return "unknown"
	}
}

// Priority returns the standard priority for the source.
func (s Source) Priority() int {
	switch s {
	case SourceDefault:
		return PriorityDefault
	case SourceUser:
		return PriorityUser
	case SourceEnv:
		return PriorityEnv
	case SourceSet:
		return PrioritySet
	default:
		return PriorityFallback
	}
}

// Clone creates a deep copy of a document. Nested maps and slices are
// copied; scalar leaves are shared.
func Clone(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	for key, val := range src {
		dst[key] = CloneValue(val)
	}
	return dst
}

// CloneValue creates a deep copy of a document value.
func CloneValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		return Clone(v)
	case []any:
		return cloneSlice(v)
	default:
		return val
	}
}

func cloneSlice(src []any) []any {
	if src == nil {
		return nil
	}

	dst := make([]any, len(src))
	for i, val := range src {
		dst[i] = CloneValue(val)
	}
	return dst
}
