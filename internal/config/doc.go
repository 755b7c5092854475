// Package config provides layered settings for the ywta tool suite.
//
// A setting is identified by a dotted key such as "ui.theme.primary_color"
// and resolves through four tiers, highest first:
//
//	┌─────────────────────────────┐
//	│  4. Environment Variables   │  ← YWTA_UI_ICON_SIZE, legacy names
//	├─────────────────────────────┤
//	│  3. User Document           │  ← $XDG_CONFIG_HOME/ywta_tools/config.json
//	├─────────────────────────────┤
//	│  2. Default Document        │  ← bundled defaults.json or a given file
//	├─────────────────────────────┤
//	│  1. Caller Fallback         │  ← Lowest priority
//	└─────────────────────────────┘
//
// A resolved value is cached until it is reset or the user document is
// reloaded, so later environment changes are not observed.
//
// # Sub-packages
//
//   - cfgerr: error taxonomy shared by every package
//   - schema: declarative per-key validation rules
//   - layer: dotted-path document helpers and tier stacking
//   - loader: JSON documents, atomic saves and environment coercion
//   - registry: settings with defaults, env bindings and resolution caches
//   - notify: per-key change callbacks
//   - watcher: opt-in reload of the user document
//
// # Basic Usage
//
//	s, err := config.NewSettings("", "")
//	if err != nil {
//	    return err
//	}
//	size, err := s.GetInt("ui.icon_size", 24)
//
// Changing and persisting a setting:
//
//	if err := s.Set("ui.icon_size", 32); err != nil {
//	    return err
//	}
//	if err := s.SaveConfig(""); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// Config and Settings are not safe for concurrent use. Watch hands reloads
// to a caller supplied dispatcher for that reason. Only the process-wide
// accessor Default is guarded by a mutex.
package config
