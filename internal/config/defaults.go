package config

import (
	_ "embed"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/ywtatools/ywta/internal/config/cfgerr"
	"github.com/ywtatools/ywta/internal/config/loader"
	"github.com/ywtatools/ywta/internal/config/schema"
)

// AppDirName is the directory holding the user document under the
// platform configuration home.
const AppDirName = "ywta_tools"

// UserFileName is the name of the user document.
const UserFileName = "config.json"

//go:embed defaults.json
var bundledDefaults []byte

// BundledDefaults returns the default document shipped with the tools.
func BundledDefaults() (map[string]any, error) {
	doc, err := loader.Decode(bundledDefaults)
	if err != nil {
		return nil, cfgerr.NewConfigError("load", "defaults.json", err)
	}
	return doc, nil
}

// DefaultUserPath returns $XDG_CONFIG_HOME/ywta_tools/config.json (or the
// platform equivalent), creating the directory when needed.
func DefaultUserPath() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join(AppDirName, UserFileName))
	if err != nil {
		return "", cfgerr.NewConfigError("locate", UserFileName, err)
	}
	return path, nil
}

// DefaultSchema returns the rules applied to the bundled settings.
func DefaultSchema() *schema.Schema {
	return schema.New().
		AddValidator("ui.icon_size", schema.IsPositive, "icon size must be positive").
		AddValidator("logging.level", schema.IsLogLevel, "unknown log level").
		AddValidator("ui.theme.primary_color", schema.IsHexColor, "must be a hex color").
		AddValidator("documentation.root_url", func(v any) bool {
			return v == "" || schema.IsURL(v)
		}, "must be an http or https URL").
		AddRangeConstraint("rig.default_control_color", schema.Bound(0), schema.Bound(31))
}
