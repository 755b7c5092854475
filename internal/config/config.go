package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/sjson"

	"github.com/ywtatools/ywta/internal/config/cfgerr"
	"github.com/ywtatools/ywta/internal/config/layer"
	"github.com/ywtatools/ywta/internal/config/loader"
	"github.com/ywtatools/ywta/internal/config/notify"
	"github.com/ywtatools/ywta/internal/config/registry"
	"github.com/ywtatools/ywta/internal/config/schema"
	"github.com/ywtatools/ywta/internal/log"
)

// Config is a single configuration document together with the settings
// registered against it.
//
// The document on disk is the user overlay. Registered values resolve
// environment first, then the overlay, then their static default. Keys
// that are not registered are read straight from the overlay, then from
// the default document when one is attached, then from the caller's
// fallback.
//
// Config is not safe for concurrent use. Callers that share one across
// goroutines must serialise access themselves.
type Config struct {
	path   string
	layers *layer.Manager // user overlay over an optional read-only default document

	values   *registry.Registry
	schema   *schema.Schema
	notifier *notify.Notifier
	loader   *loader.JSONLoader

	envPrefix string
	logger    zerolog.Logger
}

// Option configures a Config or Settings.
type Option func(*options)

type options struct {
	schema    *schema.Schema
	values    []*registry.Value
	envPrefix string
	fs        loader.FileSystem
	logger    *zerolog.Logger
}

// WithSchema attaches a validation schema. Every registered value is
// bound to it and Set applies its rules to unregistered keys.
func WithSchema(s *schema.Schema) Option {
	return func(o *options) {
		o.schema = s
	}
}

// WithValues registers values at construction.
func WithValues(values ...*registry.Value) Option {
	return func(o *options) {
		o.values = append(o.values, values...)
	}
}

// WithEnvPrefix sets the prefix used when deriving environment variable
// names for settings. The default is "YWTA".
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithFileSystem sets the file system documents are read from, and
// consulted when deciding whether a document exists. Writes always go to
// the OS file system.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

const (
	userLayer     = "user"
	defaultsLayer = "defaults"
)

func (o *options) newLoader() *loader.JSONLoader {
	if o.fs != nil {
		return loader.NewJSONLoaderWithFS(o.fs)
	}
	return loader.NewJSONLoader()
}

func newOptions(opts []Option) *options {
	o := &options{envPrefix: loader.DefaultEnvPrefix}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewConfig creates a configuration bound to path. When the file exists it
// is loaded immediately; a load failure is returned.
func NewConfig(path string, opts ...Option) (*Config, error) {
	return newConfig(path, newOptions(opts))
}

func newConfig(path string, o *options) (*Config, error) {
	c := &Config{
		path:      path,
		layers:    layer.NewManager(layer.NewLayer(userLayer, layer.SourceUser)),
		values:    registry.New(),
		schema:    o.schema,
		envPrefix: o.envPrefix,
	}

	if o.logger != nil {
		c.logger = *o.logger
	} else {
		c.logger = log.WithComponent("config")
	}
	c.notifier = notify.New(notify.WithLogger(c.logger))

	c.loader = o.newLoader()

	for _, v := range o.values {
		if err := c.AddValue(v); err != nil {
			return nil, err
		}
	}

	if path != "" && c.loader.Exists(path) {
		if err := c.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Path returns the document path.
func (c *Config) Path() string {
	return c.path
}

// Schema returns the attached schema, or nil.
func (c *Config) Schema() *schema.Schema {
	return c.schema
}

// Registry returns the registered values.
func (c *Config) Registry() *registry.Registry {
	return c.values
}

// AddValue registers a value and binds it to the schema. The first value
// registered for a key wins.
func (c *Config) AddValue(v *registry.Value) error {
	if err := c.values.Register(v); err != nil {
		return err
	}
	if c.schema != nil {
		v.BindSchema(c.schema)
	}
	return nil
}

// Value returns the registered value for key, or nil.
func (c *Config) Value(key string) *registry.Value {
	return c.values.Get(key)
}

// Keys returns the registered keys, sorted.
func (c *Config) Keys() []string {
	return c.values.Keys()
}

// Get returns the value for key. Registered keys resolve through their
// Value and ignore fallback; the error is non-nil only when such a value
// has nothing valid to offer. Other keys fall through the overlay and the
// default document to fallback.
func (c *Config) Get(key string, fallback any) (any, error) {
	if v := c.values.Get(key); v != nil {
		return v.Get(c.overlay())
	}
	if val, _, ok := c.layers.Get(key); ok {
		return layer.CloneValue(val), nil
	}
	return fallback, nil
}

// Lookup returns the value for key along with the tier that produced it.
// The boolean is false when no tier holds the key.
func (c *Config) Lookup(key string) (any, layer.Source, bool) {
	if v := c.values.Get(key); v != nil {
		val, err := v.Get(c.overlay())
		if err != nil {
			return nil, layer.SourceNone, false
		}
		return val, v.Source(), true
	}
	val, l, ok := c.layers.Get(key)
	if !ok {
		return nil, layer.SourceNone, false
	}
	return layer.CloneValue(val), l.Source, true
}

// overlay returns the live user document. Callers must not modify it.
func (c *Config) overlay() map[string]any {
	return c.layers.Layer(userLayer).Data
}

// attachDefaults stacks a read-only default document under the overlay.
func (c *Config) attachDefaults(doc map[string]any) {
	l := layer.NewLayerWithData(defaultsLayer, layer.SourceDefault, doc)
	l.ReadOnly = true
	c.layers.AddLayer(l)
}

// defaultDoc returns the live default document, or nil.
func (c *Config) defaultDoc() map[string]any {
	if l := c.layers.LayerBySource(layer.SourceDefault); l != nil {
		return l.Data
	}
	return nil
}

// GetString returns key as a string.
func (c *Config) GetString(key, fallback string) (string, error) {
	val, err := c.Get(key, fallback)
	if err != nil {
		return "", err
	}
	return registry.AsString(key, val)
}

// GetInt returns key as an int. Integral floats are accepted.
func (c *Config) GetInt(key string, fallback int) (int, error) {
	val, err := c.Get(key, fallback)
	if err != nil {
		return 0, err
	}
	return registry.AsInt(key, val)
}

// GetFloat returns key as a float64.
func (c *Config) GetFloat(key string, fallback float64) (float64, error) {
	val, err := c.Get(key, fallback)
	if err != nil {
		return 0, err
	}
	return registry.AsFloat(key, val)
}

// GetBool returns key as a bool.
func (c *Config) GetBool(key string, fallback bool) (bool, error) {
	val, err := c.Get(key, fallback)
	if err != nil {
		return false, err
	}
	return registry.AsBool(key, val)
}

// GetMap returns key as a map. The result is a copy.
func (c *Config) GetMap(key string, fallback map[string]any) (map[string]any, error) {
	val, err := c.Get(key, fallback)
	if err != nil {
		return nil, err
	}
	m, err := registry.AsMap(key, val)
	if err != nil {
		return nil, err
	}
	return layer.Clone(m), nil
}

// GetStringSlice returns key as a []string.
func (c *Config) GetStringSlice(key string, fallback []string) ([]string, error) {
	val, err := c.Get(key, fallback)
	if err != nil {
		return nil, err
	}
	return registry.AsStringSlice(key, val)
}

// Set stores value for key in the overlay and notifies the key's
// callbacks. Registered keys are validated by their Value, which also
// caches the new value; other keys are validated against the schema. A
// rejected value changes nothing and fires no callback.
func (c *Config) Set(key string, value any) error {
	v := c.values.Get(key)
	switch {
	case v != nil:
		if err := v.Validate(value); err != nil {
			return err
		}
	case c.schema != nil:
		if err := c.schema.Validate(key, value); err != nil {
			return err
		}
	}

	if err := c.layers.Set(userLayer, key, layer.CloneValue(value)); err != nil {
		return err
	}
	if v != nil {
		// Validated above, cannot fail.
		_ = v.Set(value)
	}

	c.notifier.Notify(key, value)
	return nil
}

// Reset discards the cached value of a registered key so the next Get
// resolves from the environment and the overlay again. An unregistered key
// is removed from the overlay.
func (c *Config) Reset(key string) {
	if v := c.values.Get(key); v != nil {
		v.Reset()
		return
	}
	// The user layer is always writable.
	_ = c.layers.Delete(userLayer, key)
}

// ResetAll clears the overlay and every value cache.
func (c *Config) ResetAll() {
	_ = c.layers.UpdateLayer(userLayer, map[string]any{})
	c.values.ResetAll()
}

// LoadConfig replaces the overlay with the document at path and clears
// every value cache. An empty path means the configuration's own path.
func (c *Config) LoadConfig(path string) error {
	if path == "" {
		path = c.path
	}
	if path == "" {
		return cfgerr.NewConfigError("load", "", ErrNoConfigFile)
	}

	doc, err := c.loader.LoadFrom(path)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("Failed to load configuration")
		return err
	}

	if err := c.layers.UpdateLayer(userLayer, doc); err != nil {
		return err
	}
	c.values.ResetAll()
	c.logger.Info().Str("path", path).Int("keys", len(layer.LeafKeys(doc))).Msg("Loaded configuration")
	return nil
}

// SaveConfig writes Snapshot to path atomically. An empty path means the
// configuration's own path.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		path = c.path
	}
	if path == "" {
		return cfgerr.NewConfigError("save", "", ErrNoConfigFile)
	}

	doc, err := c.Snapshot()
	if err != nil {
		return cfgerr.NewConfigError("save", path, err)
	}
	if err := loader.SaveFile(path, doc); err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("Failed to save configuration")
		return err
	}

	c.logger.Info().Str("path", path).Msg("Saved configuration")
	return nil
}

// Snapshot composes the document SaveConfig writes: every resolved value
// at its dotted path, with the overlay deep-merged on top.
func (c *Config) Snapshot() (map[string]any, error) {
	out := "{}"
	for _, v := range c.values.All() {
		val, ok := v.Resolved()
		if !ok {
			continue
		}
		var err error
		out, err = sjson.Set(out, escapePath(v.Key()), val)
		if err != nil {
			return nil, fmt.Errorf("compose %s: %w", v.Key(), err)
		}
	}

	doc, err := loader.Decode([]byte(out))
	if err != nil {
		return nil, err
	}
	return layer.DeepMerge(doc, c.overlay()), nil
}

// Data returns a copy of the overlay.
func (c *Config) Data() map[string]any {
	return layer.Clone(c.overlay())
}

// AddCallback registers fn to run after every successful Set of key.
// Registering the same function twice runs it twice.
func (c *Config) AddCallback(key string, fn notify.Callback) *notify.Subscription {
	return c.notifier.Subscribe(key, fn)
}

// RemoveCallback unregisters sub from key. It reports false when sub is
// nil, belongs to another key or was already removed.
func (c *Config) RemoveCallback(key string, sub *notify.Subscription) bool {
	if sub == nil || sub.Key() != key {
		return false
	}
	return c.notifier.Unsubscribe(sub)
}

// AllValues resolves every registered value. Values whose default fails
// validation are left out and their errors joined.
func (c *Config) AllValues() (map[string]any, error) {
	result := make(map[string]any, c.values.Len())
	var errs []error
	for _, v := range c.values.All() {
		val, err := v.Get(c.overlay())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		result[v.Key()] = val
	}
	return result, errors.Join(errs...)
}

// ValidateAll resolves every registered value and checks the overlay
// against the schema. All failures are joined.
func (c *Config) ValidateAll() error {
	var errs []error
	for _, v := range c.values.All() {
		if _, err := v.Get(c.overlay()); err != nil {
			errs = append(errs, err)
		}
	}
	if c.schema != nil {
		if err := c.schema.ValidateAll(c.overlay()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// escapePath converts a dotted key to an sjson path. Special characters are
// escaped and all-digit segments are forced to object keys.
func escapePath(key string) string {
	segments := strings.Split(key, ".")
	for i, seg := range segments {
		var b strings.Builder
		if isDigits(seg) {
			b.WriteByte(':')
		}
		for _, r := range seg {
			if strings.ContainsRune(`\*?|#@!:`, r) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
		segments[i] = b.String()
	}
	return strings.Join(segments, ".")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
