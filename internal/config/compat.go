package config

import (
	"github.com/ywtatools/ywta/internal/config/layer"
	"github.com/ywtatools/ywta/internal/config/loader"
	"github.com/ywtatools/ywta/internal/config/registry"
	"github.com/ywtatools/ywta/internal/config/schema"
)

// CompatKey describes a setting older tools read under a fixed name and
// environment variable.
type CompatKey struct {
	// Name is the legacy accessor name.
	Name string
	// Key is the dotted setting key.
	Key string
	// EnvVar is the legacy environment variable.
	EnvVar string
	// Type is the declared value type.
	Type schema.Type
	// Default applies when the default document lacks the key.
	Default any
	// Description is shown in settings listings.
	Description string
}

var compatKeys = []CompatKey{
	{
		Name:        "DOCUMENTATION_ROOT",
		Key:         "documentation.root_url",
		EnvVar:      "YWTA_DOCUMENTATION_ROOT",
		Type:        schema.TypeString,
		Default:     "https://chadmv.github.io/cmt/html",
		Description: "Root URL of the tool documentation",
	},
	{
		Name:        "ENABLE_PLUGINS",
		Key:         "plugins.enable_cpp_plugins",
		EnvVar:      "YWTA_ENABLE_PLUGINS",
		Type:        schema.TypeBool,
		Default:     true,
		Description: "Load the compiled plugins",
	},
}

// CompatKeys returns the legacy settings table.
func CompatKeys() []CompatKey {
	return append([]CompatKey(nil), compatKeys...)
}

// value builds the registered value for k. A default present in defaults
// takes precedence over the table default; the derived environment name
// stays usable as an alias.
func (k CompatKey) value(defaults map[string]any, envPrefix string, opts ...registry.Option) *registry.Value {
	def := k.Default
	if v, ok := layer.GetByPath(defaults, k.Key); ok {
		def = v
	}
	opts = append(opts,
		registry.WithType(k.Type),
		registry.WithDescription(k.Description),
		registry.WithEnvPrefix(envPrefix),
		registry.WithEnvVar(k.EnvVar),
		registry.WithEnvAliases(loader.EnvVarName(envPrefix, k.Key)),
	)
	return registry.NewValue(k.Key, def, opts...)
}

// DocumentationRoot returns documentation.root_url.
func (s *Settings) DocumentationRoot() (string, error) {
	return s.GetString("documentation.root_url", "")
}

// SetDocumentationRoot sets documentation.root_url.
func (s *Settings) SetDocumentationRoot(url string) error {
	return s.Set("documentation.root_url", url)
}

// EnablePlugins returns plugins.enable_cpp_plugins.
func (s *Settings) EnablePlugins() (bool, error) {
	return s.GetBool("plugins.enable_cpp_plugins", true)
}

// SetEnablePlugins sets plugins.enable_cpp_plugins.
func (s *Settings) SetEnablePlugins(enabled bool) error {
	return s.Set("plugins.enable_cpp_plugins", enabled)
}
