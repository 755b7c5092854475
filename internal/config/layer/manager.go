package layer

import (
	"fmt"
	"sort"
	"sync"
)

// Manager orders layers by priority and answers effective-value queries.
type Manager struct {
	mu     sync.RWMutex
	layers []*Layer       // Sorted by priority (ascending)
	merged map[string]any // Cached merged result
	dirty  bool
}

// NewManager creates a new layer manager.
func NewManager(layers ...*Layer) *Manager {
	m := &Manager{dirty: true}
	for _, l := range layers {
		m.AddLayer(l)
	}
	return m
}

// AddLayer adds a layer, replacing any layer with the same name.
// Layers are kept sorted by priority.
func (m *Manager) AddLayer(layer *Layer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexOf(layer.Name); i >= 0 {
		m.layers[i] = layer
	} else {
		m.layers = append(m.layers, layer)
	}
	m.sortLayers()
	m.dirty = true
}

// Layer returns a layer by name, or nil.
func (m *Manager) Layer(name string) *Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexOf(name); i >= 0 {
		return m.layers[i]
	}
	return nil
}

// LayerBySource returns the first layer with the given source, or nil.
func (m *Manager) LayerBySource(source Source) *Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, layer := range m.layers {
		if layer.Source == source {
			return layer
		}
	}
	return nil
}

// Merge combines all layers into a single document, lowest priority first.
// The result is cached until a layer changes; callers receive a copy.
func (m *Manager) Merge() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dirty || m.merged == nil {
		result := make(map[string]any)
		for _, layer := range m.layers {
			result = DeepMerge(result, layer.Data)
		}
		m.merged = result
		m.dirty = false
	}

	return Clone(m.merged)
}

// Get returns the value for a dotted path from the highest priority layer
// that has it, along with that layer.
func (m *Manager) Get(path string) (any, *Layer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.layers) - 1; i >= 0; i-- {
		layer := m.layers[i]
		if val, ok := GetByPath(layer.Data, path); ok {
			return val, layer, true
		}
	}

	return nil, nil, false
}

// Set sets a value in a named layer.
func (m *Manager) Set(layerName, path string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	layer, err := m.writable(layerName)
	if err != nil {
		return err
	}
	if layer.Data == nil {
		layer.Data = make(map[string]any)
	}
	if err := SetByPath(layer.Data, path, value); err != nil {
		return err
	}
	m.dirty = true
	return nil
}

// Delete removes a value from a named layer.
func (m *Manager) Delete(layerName, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	layer, err := m.writable(layerName)
	if err != nil {
		return err
	}
	if DeleteByPath(layer.Data, path) {
		m.dirty = true
	}
	return nil
}

// UpdateLayer replaces a layer's data with a copy of data.
func (m *Manager) UpdateLayer(name string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	layer, err := m.writable(name)
	if err != nil {
		return err
	}
	layer.Data = Clone(data)
	m.dirty = true
	return nil
}

func (m *Manager) writable(name string) (*Layer, error) {
	i := m.indexOf(name)
	if i < 0 {
		return nil, fmt.Errorf("layer not found: %s", name)
	}
	if m.layers[i].ReadOnly {
		return nil, fmt.Errorf("layer is read-only: %s", name)
	}
	return m.layers[i], nil
}

func (m *Manager) sortLayers() {
	sort.SliceStable(m.layers, func(i, j int) bool {
		return m.layers[i].Priority < m.layers[j].Priority
	})
}

func (m *Manager) indexOf(name string) int {
	for i, layer := range m.layers {
		if layer.Name == name {
			return i
		}
	}
	return -1
}
