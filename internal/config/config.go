// Package config manages user settings for flowprompt.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const configFile = "config.yaml"

// Settings holds the user-tunable knobs. The clipboard delays are timing
// policy, not correctness-critical values: the capture delay must outlast
// the OS copy round-trip, the paste delay must exceed the time the
// foreground app needs to read the pasted value.
type Settings struct {
	LibraryPath     string `yaml:"library_path,omitempty"`
	CaptureDelayMS  int    `yaml:"capture_delay_ms"`
	PasteDelayMS    int    `yaml:"paste_delay_ms"`
	LauncherHotkey  string `yaml:"launcher_hotkey"`
	QuickSaveHotkey string `yaml:"quick_save_hotkey"`
	Theme           string `yaml:"theme,omitempty"`
}

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() Settings {
	return Settings{
		CaptureDelayMS:  150,
		PasteDelayMS:    500,
		LauncherHotkey:  "ctrl+cmd+p",
		QuickSaveHotkey: "ctrl+cmd+s",
	}
}

// CaptureDelay returns the capture wait as a duration.
func (s Settings) CaptureDelay() time.Duration {
	return time.Duration(s.CaptureDelayMS) * time.Millisecond
}

// PasteDelay returns the clipboard restore delay as a duration.
func (s Settings) PasteDelay() time.Duration {
	return time.Duration(s.PasteDelayMS) * time.Millisecond
}

// Config manages loading and saving settings under a base directory.
type Config struct {
	Settings Settings
	path     string
}

// Load reads settings from baseDir, falling back to defaults when the
// file does not exist. Unset delay fields are backfilled with defaults
// so an older config file never zeroes the timing policy.
func Load(baseDir string) (*Config, error) {
	path := filepath.Join(baseDir, configFile)

	cfg := &Config{
		Settings: DefaultSettings(),
		path:     path,
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(raw, &cfg.Settings); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Settings.CaptureDelayMS <= 0 {
		cfg.Settings.CaptureDelayMS = DefaultSettings().CaptureDelayMS
	}
	if cfg.Settings.PasteDelayMS <= 0 {
		cfg.Settings.PasteDelayMS = DefaultSettings().PasteDelayMS
	}

	return cfg, nil
}

// Save writes the settings back to disk.
func (c *Config) Save() error {
	raw, err := yaml.Marshal(c.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(c.path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
