package registry

import (
	"github.com/rs/zerolog"

	"github.com/ywtatools/ywta/internal/config/cfgerr"
	"github.com/ywtatools/ywta/internal/config/layer"
	"github.com/ywtatools/ywta/internal/config/loader"
	"github.com/ywtatools/ywta/internal/config/schema"
	"github.com/ywtatools/ywta/internal/log"
)

// Value is a single named setting. It resolves lazily from, in order, an
// environment variable, the overlay document passed to Get, and its static
// default. The first successful resolution is cached until Reset.
//
// Value is not safe for concurrent use.
type Value struct {
	key         string
	def         any
	description string
	typ         schema.Type
	typed       bool
	validator   schema.Rule
	schema      *schema.Schema

	envPrefix   string
	envVar      string
	envExplicit bool
	envAliases  []string

	logger zerolog.Logger

	resolved   any
	isResolved bool
	source     layer.Source
}

// Option configures a Value.
type Option func(*Value)

// WithDescription sets the documentation string.
func WithDescription(desc string) Option {
	return func(v *Value) {
		v.description = desc
	}
}

// WithType declares the value's type tag, used to coerce environment text.
// Without it the tag is taken from the default once, at construction.
func WithType(t schema.Type) Option {
	return func(v *Value) {
		v.typ = t
		v.typed = true
	}
}

// WithValidator sets the value's own rule. It runs before any schema rules
// bound with BindSchema.
func WithValidator(rule schema.Rule) Option {
	return func(v *Value) {
		v.validator = rule
	}
}

// WithPredicate sets the value's own rule from a boolean predicate.
func WithPredicate(pred schema.Predicate, message string) Option {
	return func(v *Value) {
		v.validator = schema.FromPredicate(pred, message)
	}
}

// WithEnvVar binds an explicit environment variable name instead of the
// derived one.
func WithEnvVar(name string) Option {
	return func(v *Value) {
		v.envVar = name
		v.envExplicit = true
	}
}

// WithEnvAliases adds variable names consulted, in order, after the primary
// variable.
func WithEnvAliases(names ...string) Option {
	return func(v *Value) {
		v.envAliases = append(v.envAliases, names...)
	}
}

// WithEnvPrefix changes the prefix of the derived environment variable name.
func WithEnvPrefix(prefix string) Option {
	return func(v *Value) {
		v.envPrefix = prefix
	}
}

// WithLogger sets the logger used to report skipped tiers.
func WithLogger(logger zerolog.Logger) Option {
	return func(v *Value) {
		v.logger = logger
	}
}

// NewValue creates a setting for a dotted key with a static default.
func NewValue(key string, def any, opts ...Option) *Value {
	v := &Value{
		key:       key,
		def:       def,
		envPrefix: loader.DefaultEnvPrefix,
		logger:    log.WithComponent("config"),
	}
	for _, opt := range opts {
		opt(v)
	}

	if !v.typed {
		v.typ = schema.TypeOf(def)
		if v.typ == schema.TypeNull {
			v.typ = schema.TypeString
		}
	}
	if !v.envExplicit {
		v.envVar = loader.EnvVarName(v.envPrefix, key)
	}
	return v
}

// Key returns the dotted key.
func (v *Value) Key() string { return v.key }

// Default returns the static default.
func (v *Value) Default() any { return v.def }

// Description returns the documentation string.
func (v *Value) Description() string { return v.description }

// Type returns the declared type tag.
func (v *Value) Type() schema.Type { return v.typ }

// EnvVar returns the primary environment variable name.
func (v *Value) EnvVar() string { return v.envVar }

// EnvNames returns the primary variable followed by any aliases.
func (v *Value) EnvNames() []string {
	names := make([]string, 0, 1+len(v.envAliases))
	names = append(names, v.envVar)
	for _, a := range v.envAliases {
		if a != v.envVar {
			names = append(names, a)
		}
	}
	return names
}

// BindSchema makes the schema's rules for this key part of the value's
// validation pipeline.
func (v *Value) BindSchema(s *schema.Schema) {
	v.schema = s
}

// Validate runs the value's own rule and then any bound schema rules.
func (v *Value) Validate(value any) error {
	if v.validator != nil {
		if err := v.validator(value); err != nil {
			return cfgerr.AsValidationError(v.key, value, err)
		}
	}
	if v.schema != nil {
		return v.schema.Validate(v.key, value)
	}
	return nil
}

// Get resolves the value. Environment and overlay failures are logged and
// skipped; only a default that fails validation is reported.
func (v *Value) Get(overlay map[string]any) (any, error) {
	if v.isResolved {
		return v.resolved, nil
	}

	if raw, name, ok := loader.LookupEnv(v.EnvNames()...); ok {
		parsed, err := loader.ParseEnvValue(raw, v.typ)
		if err == nil {
			err = v.Validate(parsed)
		}
		if err == nil {
			v.cache(parsed, layer.SourceEnv)
			return parsed, nil
		}
		v.logger.Warn().Err(err).
			Str("key", v.key).
			Str("env", name).
			Msg("Ignoring invalid environment override")
	}

	if len(overlay) > 0 {
		if val, ok := layer.GetByPath(overlay, v.key); ok {
			err := v.Validate(val)
			if err == nil {
				val = layer.CloneValue(val)
				v.cache(val, layer.SourceUser)
				return val, nil
			}
			v.logger.Debug().Err(err).Str("key", v.key).Msg("Skipping invalid overlay value")
		}
	}

	if err := v.Validate(v.def); err != nil {
		return nil, err
	}
	def := layer.CloneValue(v.def)
	v.cache(def, layer.SourceDefault)
	return def, nil
}

// Set validates and caches value. A rejected value leaves the cache as it was.
func (v *Value) Set(value any) error {
	if err := v.Validate(value); err != nil {
		return err
	}
	v.cache(value, layer.SourceSet)
	return nil
}

// Reset clears the cache so the next Get resolves from live sources.
func (v *Value) Reset() {
	v.resolved = nil
	v.isResolved = false
	v.source = layer.SourceNone
}

// Resolved returns the cached value and whether one exists.
func (v *Value) Resolved() (any, bool) {
	return v.resolved, v.isResolved
}

// Source returns the tier that produced the cached value, or
// layer.SourceNone when nothing is cached.
func (v *Value) Source() layer.Source {
	return v.source
}

func (v *Value) cache(value any, source layer.Source) {
	v.resolved = value
	v.isResolved = true
	v.source = source
}
