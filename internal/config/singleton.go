package config

import (
	"sync"

	"github.com/ywtatools/ywta/internal/config/notify"
)

var (
	defaultMu       sync.Mutex
	defaultSettings *Settings
)

// Default returns the process-wide settings, creating them from the
// platform user path and the bundled defaults on first use. A failed
// construction is not cached.
func Default() (*Settings, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultSettings == nil {
		s, err := NewSettings("", "")
		if err != nil {
			return nil, err
		}
		defaultSettings = s
	}
	return defaultSettings, nil
}

// SetDefault installs s as the process-wide settings. Nil clears them so
// the next Default call constructs afresh.
func SetDefault(s *Settings) {
	defaultMu.Lock()
	defaultSettings = s
	defaultMu.Unlock()
}

// GetSetting returns key from the process-wide settings.
func GetSetting(key string, fallback any) (any, error) {
	s, err := Default()
	if err != nil {
		return nil, err
	}
	return s.Get(key, fallback)
}

// SetSetting sets key on the process-wide settings. It does not save.
func SetSetting(key string, value any) error {
	s, err := Default()
	if err != nil {
		return err
	}
	return s.Set(key, value)
}

// ResetSetting resets key on the process-wide settings to its default and
// saves. An empty key resets everything.
func ResetSetting(key string) error {
	s, err := Default()
	if err != nil {
		return err
	}
	return s.ResetToDefault(key)
}

// SaveSettings saves the process-wide settings to their user document.
func SaveSettings() error {
	s, err := Default()
	if err != nil {
		return err
	}
	return s.SaveConfig("")
}

// ExportSettings writes the effective process-wide settings to path.
func ExportSettings(path string) error {
	s, err := Default()
	if err != nil {
		return err
	}
	return s.ExportSettings(path)
}

// ImportSettings replaces the process-wide user document with the one at
// path.
func ImportSettings(path string) error {
	s, err := Default()
	if err != nil {
		return err
	}
	return s.ImportSettings(path)
}

// AddCallback registers fn on the process-wide settings.
func AddCallback(key string, fn notify.Callback) (*notify.Subscription, error) {
	s, err := Default()
	if err != nil {
		return nil, err
	}
	return s.AddCallback(key, fn), nil
}

// RemoveCallback unregisters sub from the process-wide settings.
func RemoveCallback(key string, sub *notify.Subscription) (bool, error) {
	s, err := Default()
	if err != nil {
		return false, err
	}
	return s.RemoveCallback(key, sub), nil
}
