package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ywtatools/ywta/internal/config/layer"
	"github.com/ywtatools/ywta/internal/config/loader"
	"github.com/ywtatools/ywta/internal/config/notify"
	"github.com/ywtatools/ywta/internal/config/registry"
	"github.com/ywtatools/ywta/internal/config/schema"
)

func newTestConfig(t *testing.T, opts ...Option) (*Config, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	c, err := NewConfig(path, opts...)
	require.NoError(t, err)
	return c, path
}

func writeDoc(t *testing.T, path string, doc map[string]any) {
	t.Helper()
	require.NoError(t, loader.SaveFile(path, doc))
}

func iconSizeValue(opts ...registry.Option) *registry.Value {
	opts = append([]registry.Option{registry.WithLogger(zerolog.Nop())}, opts...)
	return registry.NewValue("ui.icon_size", 24, opts...)
}

func TestNewConfig_MissingFile(t *testing.T) {
	c, path := newTestConfig(t)

	assert.Equal(t, path, c.Path())
	assert.Empty(t, c.Data())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "NewConfig must not create the document")
}

func TestNewConfig_LoadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeDoc(t, path, map[string]any{"ui": map[string]any{"icon_size": 32}})

	c, err := NewConfig(path, WithLogger(zerolog.Nop()), WithValues(iconSizeValue()))
	require.NoError(t, err)

	got, err := c.Get("ui.icon_size", nil)
	require.NoError(t, err)
	assert.Equal(t, 32, got)
}

func TestNewConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewConfig(path, WithLogger(zerolog.Nop()))
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestConfig_GetUnregistered(t *testing.T) {
	c, path := newTestConfig(t)
	writeDoc(t, path, map[string]any{"tools": map[string]any{"mirror": "x"}})
	require.NoError(t, c.LoadConfig(""))

	got, err := c.Get("tools.mirror", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "x", got)

	got, err = c.Get("tools.missing", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)

	got, _ = c.Get("tools", nil)
	got.(map[string]any)["mirror"] = "mutated"
	again, _ := c.Get("tools.mirror", nil)
	assert.Equal(t, "x", again, "mutating a returned map changed the overlay")
}

func TestConfig_RegisteredIgnoresFallback(t *testing.T) {
	c, _ := newTestConfig(t, WithValues(iconSizeValue()))

	got, err := c.Get("ui.icon_size", 99)
	require.NoError(t, err)
	assert.Equal(t, 24, got)
}

func TestConfig_EnvWins(t *testing.T) {
	t.Setenv("YWTA_UI_ICON_SIZE", "48")

	c, path := newTestConfig(t, WithValues(iconSizeValue()))
	writeDoc(t, path, map[string]any{"ui": map[string]any{"icon_size": 32}})
	require.NoError(t, c.LoadConfig(""))

	got, err := c.Get("ui.icon_size", nil)
	require.NoError(t, err)
	assert.Equal(t, 48, got)

	_, source, ok := c.Lookup("ui.icon_size")
	assert.True(t, ok)
	assert.Equal(t, layer.SourceEnv, source)
}

func TestConfig_SetUnregistered(t *testing.T) {
	c, _ := newTestConfig(t)

	require.NoError(t, c.Set("a.b.c", 1))
	assert.Equal(t, map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}}, c.Data())

	require.NoError(t, c.Set("a.b.c.d", 2), "Set through a scalar")
	assert.Equal(t, map[string]any{"a": map[string]any{"b": map[string]any{"c": map[string]any{"d": 2}}}}, c.Data())

	assert.ErrorIs(t, c.Set("a..b", 1), ErrInvalidPath)
}

func TestConfig_SetUnregisteredUsesSchema(t *testing.T) {
	s := schema.New().AddValidator("ui.theme.primary_color", schema.IsHexColor, "must be a hex color")
	c, _ := newTestConfig(t, WithSchema(s))

	assert.True(t, IsValidationError(c.Set("ui.theme.primary_color", "blue")))
	assert.Empty(t, c.Data(), "rejected Set wrote to the overlay")
	assert.NoError(t, c.Set("ui.theme.primary_color", "#fff"))
}

func TestConfig_SetRegisteredWritesOverlay(t *testing.T) {
	c, _ := newTestConfig(t, WithValues(iconSizeValue()))

	require.NoError(t, c.Set("ui.icon_size", 32))
	assert.Equal(t, map[string]any{"ui": map[string]any{"icon_size": 32}}, c.Data())

	val, source, ok := c.Lookup("ui.icon_size")
	assert.True(t, ok)
	assert.Equal(t, 32, val)
	assert.Equal(t, layer.SourceSet, source)

	tags := []any{"a"}
	require.NoError(t, c.Set("ui.tags", tags))
	tags[0] = "mutated"
	got, _ := c.Get("ui.tags", nil)
	assert.Equal(t, []any{"a"}, got, "overlay aliased the caller's slice")
}

func TestConfig_SetReplacesLoadedValueOnSave(t *testing.T) {
	c, path := newTestConfig(t, WithValues(iconSizeValue()))
	writeDoc(t, path, map[string]any{"ui": map[string]any{"icon_size": 32}})
	require.NoError(t, c.LoadConfig(""))

	require.NoError(t, c.Set("ui.icon_size", 10))
	snap, err := c.Snapshot()
	require.NoError(t, err)
	got, _ := layer.GetByPath(snap, "ui.icon_size")
	assert.Equal(t, 10, got)

	require.NoError(t, c.SaveConfig(""))
	reloaded, err := NewConfig(path, WithLogger(zerolog.Nop()), WithValues(iconSizeValue()))
	require.NoError(t, err)
	n, err := reloaded.GetInt("ui.icon_size", 0)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestConfig_SetRejectedKeepsCache(t *testing.T) {
	v := iconSizeValue(registry.WithValidator(schema.Range(schema.Bound(1), schema.Bound(100))))
	c, _ := newTestConfig(t, WithValues(v))

	got, _ := c.Get("ui.icon_size", nil)
	require.Equal(t, 24, got)

	calls := 0
	c.AddCallback("ui.icon_size", func(string, any) { calls++ })

	assert.True(t, IsValidationError(c.Set("ui.icon_size", 500)))
	got, _ = c.Get("ui.icon_size", nil)
	assert.Equal(t, 24, got)
	assert.Empty(t, c.Data(), "rejected Set wrote to the overlay")
	assert.Zero(t, calls, "callback ran for a rejected Set")
}

func TestConfig_Callbacks(t *testing.T) {
	c, _ := newTestConfig(t, WithValues(iconSizeValue()))

	type call struct {
		key   string
		value any
	}
	var calls []call
	record := func(key string, value any) { calls = append(calls, call{key, value}) }

	sub := c.AddCallback("ui.icon_size", record)
	require.NoError(t, c.Set("ui.icon_size", 32))
	require.Equal(t, []call{{"ui.icon_size", 32}}, calls)

	assert.True(t, c.RemoveCallback("ui.icon_size", sub))
	assert.False(t, c.RemoveCallback("ui.icon_size", sub))

	require.NoError(t, c.Set("ui.icon_size", 40))
	assert.Len(t, calls, 1, "removed callback still ran")
}

func TestConfig_CallbackOrderAndPanics(t *testing.T) {
	c, _ := newTestConfig(t)

	var order []string
	c.AddCallback("k", func(string, any) { order = append(order, "first") })
	c.AddCallback("k", func(string, any) { panic("boom") })
	c.AddCallback("k", func(string, any) { order = append(order, "third") })

	require.NoError(t, c.Set("k", 1))
	assert.Equal(t, []string{"first", "third"}, order)
}

func TestConfig_DuplicateCallback(t *testing.T) {
	c, _ := newTestConfig(t)

	calls := 0
	var fn notify.Callback = func(string, any) { calls++ }
	first := c.AddCallback("k", fn)
	c.AddCallback("k", fn)

	require.NoError(t, c.Set("k", true))
	assert.Equal(t, 2, calls)

	assert.False(t, c.RemoveCallback("other", first), "removed with the wrong key")
	c.RemoveCallback("k", first)
	require.NoError(t, c.Set("k", false))
	assert.Equal(t, 3, calls)
}

func TestConfig_SaveLoadRoundTrip(t *testing.T) {
	c, path := newTestConfig(t, WithValues(iconSizeValue()))

	_, err := c.Get("ui.icon_size", nil)
	require.NoError(t, err)
	require.NoError(t, c.Set("ui.theme.primary_color", "#3498db"))
	require.NoError(t, c.Set("tools.recent", []any{"a", "b"}))

	snap, err := c.Snapshot()
	require.NoError(t, err)
	require.NoError(t, c.SaveConfig(""))

	reloaded, err := NewConfig(path, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	assert.Equal(t, snap, reloaded.Data())

	assert.Equal(t, map[string]any{
		"ui": map[string]any{
			"icon_size": 24,
			"theme":     map[string]any{"primary_color": "#3498db"},
		},
		"tools": map[string]any{"recent": []any{"a", "b"}},
	}, snap)
}

func TestConfig_SnapshotOverlayWins(t *testing.T) {
	c, path := newTestConfig(t, WithValues(iconSizeValue()))
	writeDoc(t, path, map[string]any{"ui": map[string]any{"icon_size": 32}})
	require.NoError(t, c.LoadConfig(""))

	// Setting the Value directly bypasses the overlay.
	require.NoError(t, c.Value("ui.icon_size").Set(64))

	snap, err := c.Snapshot()
	require.NoError(t, err)
	got, _ := layer.GetByPath(snap, "ui.icon_size")
	assert.Equal(t, 32, got)
}

func TestConfig_SaveCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.json")
	c, err := NewConfig(path, WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	require.NoError(t, c.Set("a", 1))
	require.NoError(t, c.SaveConfig(""))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestConfig_LoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	arrayPath := filepath.Join(dir, "array.json")
	require.NoError(t, os.WriteFile(arrayPath, []byte("[1, 2]"), 0o644))
	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("a: 1"), 0o644))

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing", filepath.Join(dir, "missing.json"), ErrConfig},
		{"unsupported", yamlPath, ErrUnsupportedFormat},
		{"array", arrayPath, ErrInvalidDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestConfig(t)
			require.NoError(t, c.Set("keep", "me"))

			err := c.LoadConfig(tt.path)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrConfig)

			got, _ := c.Get("keep", nil)
			assert.Equal(t, "me", got, "failed load replaced the overlay")
		})
	}
}

func TestConfig_NoPath(t *testing.T) {
	c, err := NewConfig("", WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	assert.ErrorIs(t, c.LoadConfig(""), ErrNoConfigFile)
	assert.ErrorIs(t, c.SaveConfig(""), ErrNoConfigFile)
}

func TestConfig_LoadResetsCaches(t *testing.T) {
	c, path := newTestConfig(t, WithValues(iconSizeValue()))

	got, _ := c.Get("ui.icon_size", nil)
	require.Equal(t, 24, got)

	writeDoc(t, path, map[string]any{"ui": map[string]any{"icon_size": 32}})
	got, _ = c.Get("ui.icon_size", nil)
	assert.Equal(t, 24, got, "cached until reload")

	require.NoError(t, c.LoadConfig(""))
	got, _ = c.Get("ui.icon_size", nil)
	assert.Equal(t, 32, got)
}

func TestConfig_Reset(t *testing.T) {
	c, _ := newTestConfig(t, WithValues(iconSizeValue()))

	require.NoError(t, c.Set("ui.icon_size", 40))
	require.NoError(t, c.Set("tools.mirror", "x"))

	c.Reset("ui.icon_size")
	c.Reset("tools.mirror")

	_, ok := c.Value("ui.icon_size").Resolved()
	assert.False(t, ok, "Reset kept the cached value")

	val, source, ok := c.Lookup("ui.icon_size")
	assert.True(t, ok)
	assert.Equal(t, 40, val, "re-resolved from the overlay")
	assert.Equal(t, layer.SourceUser, source)

	got, _ := c.Get("tools.mirror", "gone")
	assert.Equal(t, "gone", got)

	require.NoError(t, c.Set("tools.mirror", "x"))
	c.ResetAll()
	assert.Empty(t, c.Data())
	_, ok = c.Value("ui.icon_size").Resolved()
	assert.False(t, ok, "ResetAll kept a cached value")

	got, _ = c.Get("ui.icon_size", nil)
	assert.Equal(t, 24, got)
}

func TestConfig_TypedGetters(t *testing.T) {
	c, _ := newTestConfig(t, WithValues(iconSizeValue()))
	require.NoError(t, c.Set("ui.label", "Rig"))
	require.NoError(t, c.Set("ui.scale", 1.5))
	require.NoError(t, c.Set("ui.tags", []any{"a", "b"}))
	require.NoError(t, c.Set("ui.enabled", true))
	require.NoError(t, c.Set("ui.theme.primary_color", "#fff"))

	n, err := c.GetInt("ui.icon_size", 0)
	require.NoError(t, err)
	assert.Equal(t, 24, n)

	s, err := c.GetString("ui.label", "")
	require.NoError(t, err)
	assert.Equal(t, "Rig", s)

	f, err := c.GetFloat("ui.scale", 0)
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	b, err := c.GetBool("ui.enabled", false)
	require.NoError(t, err)
	assert.True(t, b)

	tags, err := c.GetStringSlice("ui.tags", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tags)

	theme, err := c.GetMap("ui.theme", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"primary_color": "#fff"}, theme)
	theme["primary_color"] = "#000"
	color, _ := c.GetString("ui.theme.primary_color", "")
	assert.Equal(t, "#fff", color, "GetMap returned the live overlay")

	fallback, err := c.GetMap("ui.missing", map[string]any{"k": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": 1}, fallback)

	s, err = c.GetString("ui.missing", "dflt")
	require.NoError(t, err)
	assert.Equal(t, "dflt", s)

	_, err = c.GetInt("ui.label", 0)
	assert.True(t, IsTypeError(err))
	_, err = c.GetMap("ui.label", nil)
	assert.True(t, IsTypeError(err))
}

func TestConfig_AllValuesAndValidateAll(t *testing.T) {
	s := schema.New().AddRangeConstraint("ui.icon_size", schema.Bound(1), schema.Bound(100))
	c, path := newTestConfig(t, WithSchema(s), WithValues(
		iconSizeValue(),
		registry.NewValue("logging.level", "INFO", registry.WithLogger(zerolog.Nop())),
	))

	all, err := c.AllValues()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ui.icon_size": 24, "logging.level": "INFO"}, all)
	assert.NoError(t, c.ValidateAll())

	writeDoc(t, path, map[string]any{"ui": map[string]any{"icon_size": 500}})
	require.NoError(t, c.LoadConfig(""))
	assert.True(t, IsValidationError(c.ValidateAll()))

	got, _ := c.Get("ui.icon_size", nil)
	assert.Equal(t, 24, got, "invalid overlay value used")
}

func TestConfig_AddValueDuplicate(t *testing.T) {
	c, _ := newTestConfig(t, WithValues(iconSizeValue()))

	err := c.AddValue(registry.NewValue("ui.icon_size", 48))
	assert.ErrorIs(t, err, registry.ErrAlreadyRegistered)

	got, _ := c.Get("ui.icon_size", nil)
	assert.Equal(t, 24, got, "first registration replaced")
	assert.Equal(t, []string{"ui.icon_size"}, c.Keys())
}

func TestEscapePath(t *testing.T) {
	tests := map[string]string{
		"ui.icon_size":  "ui.icon_size",
		"levels.1.name": "levels.:1.name",
		"a.b*c":         `a.b\*c`,
		"a.b?c":         `a.b\?c`,
		"a.x#y":         `a.x\#y`,
	}
	for key, want := range tests {
		assert.Equal(t, want, escapePath(key), key)
	}
}
