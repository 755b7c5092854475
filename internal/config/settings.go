package config

import (
	"github.com/ywtatools/ywta/internal/config/layer"
	"github.com/ywtatools/ywta/internal/config/loader"
	"github.com/ywtatools/ywta/internal/config/notify"
	"github.com/ywtatools/ywta/internal/config/registry"
	"github.com/ywtatools/ywta/internal/log"
)

// Settings is the configuration of the tool suite: a user document layered
// over a read-only default document, with one registered value per leaf of
// the defaults.
type Settings struct {
	*Config

	defaultPath string
}

// Modification is a setting whose current value differs from its default.
type Modification struct {
	Default any
	Current any
}

// NewSettings opens the user document at userPath over the default
// document at defaultPath.
//
// An empty userPath selects DefaultUserPath. An empty defaultPath selects
// the bundled defaults; a defaultPath that does not exist is logged and
// treated as an empty document. A missing user document is created as {}.
func NewSettings(userPath, defaultPath string, opts ...Option) (*Settings, error) {
	o := newOptions(opts)
	if o.schema == nil {
		o.schema = DefaultSchema()
	}

	if userPath == "" {
		p, err := DefaultUserPath()
		if err != nil {
			return nil, err
		}
		userPath = p
	}

	defaults, err := loadDefaults(defaultPath, o)
	if err != nil {
		return nil, err
	}

	if !o.newLoader().Exists(userPath) {
		if err := loader.SaveFile(userPath, map[string]any{}); err != nil {
			return nil, err
		}
	}

	cfg, err := newConfig(userPath, o)
	if err != nil {
		return nil, err
	}
	cfg.attachDefaults(defaults)

	s := &Settings{Config: cfg, defaultPath: defaultPath}
	if err := s.registerDefaults(); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("user", userPath).
		Str("defaults", defaultPath).
		Int("settings", s.values.Len()).
		Msg("Settings initialized")
	return s, nil
}

func loadDefaults(path string, o *options) (map[string]any, error) {
	if path == "" {
		return BundledDefaults()
	}

	l := o.newLoader()
	if !l.Exists(path) {
		logger := log.WithComponent("config")
		if o.logger != nil {
			logger = *o.logger
		}
		logger.Warn().Str("path", path).Msg("Default settings file not found")
		return map[string]any{}, nil
	}
	return l.LoadFrom(path)
}

// registerDefaults registers the legacy keys, then one value per leaf of
// the default document. Keys registered through WithValues are kept.
func (s *Settings) registerDefaults() error {
	opts := []registry.Option{registry.WithLogger(s.logger)}

	for _, k := range compatKeys {
		if s.values.Has(k.Key) {
			continue
		}
		if err := s.AddValue(k.value(s.defaultDoc(), s.envPrefix, opts...)); err != nil {
			return err
		}
	}

	for key, def := range layer.Leaves(s.defaultDoc()) {
		if s.values.Has(key) {
			continue
		}
		v := registry.NewValue(key, def, append(opts, registry.WithEnvPrefix(s.envPrefix))...)
		if err := s.AddValue(v); err != nil {
			return err
		}
	}
	return nil
}

// DefaultPath returns the default document path, empty for the bundled
// defaults.
func (s *Settings) DefaultPath() string {
	return s.defaultPath
}

// Defaults returns a copy of the default document.
func (s *Settings) Defaults() map[string]any {
	return layer.Clone(s.defaultDoc())
}

// DefaultValue returns the default document's value for key.
func (s *Settings) DefaultValue(key string) (any, bool) {
	val, ok := layer.GetByPath(s.defaultDoc(), key)
	if !ok {
		return nil, false
	}
	return layer.CloneValue(val), true
}

// ResetToDefault removes key from the user document, discards its cached
// value and saves. An empty key resets everything.
func (s *Settings) ResetToDefault(key string) error {
	if key == "" {
		return s.ResetAllToDefault()
	}
	if err := s.layers.Delete(userLayer, key); err != nil {
		return err
	}
	if v := s.values.Get(key); v != nil {
		v.Reset()
	}
	return s.SaveConfig("")
}

// ResetAllToDefault clears the user document and every cached value, then
// saves.
func (s *Settings) ResetAllToDefault() error {
	s.ResetAll()
	return s.SaveConfig("")
}

// Effective returns the default document with Snapshot merged on top.
func (s *Settings) Effective() (map[string]any, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return layer.DeepMerge(s.Defaults(), snap), nil
}

// ExportSettings writes the effective settings to path.
func (s *Settings) ExportSettings(path string) error {
	doc, err := s.Effective()
	if err != nil {
		return &ConfigError{Op: "export", Path: path, Err: err}
	}
	if err := loader.SaveFile(path, doc); err != nil {
		return err
	}
	s.logger.Info().Str("path", path).Msg("Exported settings")
	return nil
}

// ImportSettings replaces the user document with the one at path and
// saves it to the settings' own path.
func (s *Settings) ImportSettings(path string) error {
	if err := s.LoadConfig(path); err != nil {
		return err
	}
	if err := s.SaveConfig(""); err != nil {
		return err
	}
	s.logger.Info().Str("path", path).Msg("Imported settings")
	return nil
}

// ModifiedSettings reports every leaf present in both the default document
// and the user document whose values differ. Environment overrides and
// leaves only the user document has are not reported.
func (s *Settings) ModifiedSettings() map[string]Modification {
	_, modified, _ := layer.Diff(s.defaultDoc(), s.overlay())

	result := make(map[string]Modification, len(modified))
	for _, ch := range modified {
		result[ch.Path] = Modification{Default: layer.CloneValue(ch.Old), Current: layer.CloneValue(ch.New)}
	}
	return result
}

// Section returns the settings whose key starts with the given first
// segment, sorted by key.
func (s *Settings) Section(name string) []*registry.Value {
	return s.values.Section(name)
}

// Sections returns the first segments of every registered key, sorted.
func (s *Settings) Sections() []string {
	return s.values.Sections()
}

// Search returns the settings whose key or description contains query,
// ignoring case.
func (s *Settings) Search(query string) []*registry.Value {
	return s.values.Search(query)
}

// BindLogLevel applies logging.level to the logger and keeps it in step
// with later changes.
func (s *Settings) BindLogLevel() (*notify.Subscription, error) {
	level, err := s.GetString("logging.level", "INFO")
	if err != nil {
		return nil, err
	}
	if err := log.SetLevel(level); err != nil {
		return nil, err
	}

	sub := s.AddCallback("logging.level", func(key string, value any) {
		name, ok := value.(string)
		if !ok {
			return
		}
		if err := log.SetLevel(name); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Ignoring log level")
		}
	})
	return sub, nil
}
