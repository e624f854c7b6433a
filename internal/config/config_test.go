package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Settings.CaptureDelay() != 150*time.Millisecond {
		t.Errorf("expected default capture delay 150ms, got %v", cfg.Settings.CaptureDelay())
	}
	if cfg.Settings.PasteDelay() != 500*time.Millisecond {
		t.Errorf("expected default paste delay 500ms, got %v", cfg.Settings.PasteDelay())
	}
	if cfg.Settings.LauncherHotkey == "" {
		t.Error("expected a default launcher hotkey")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg.Settings.PasteDelayMS = 750
	cfg.Settings.Theme = "dark"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Settings.PasteDelayMS != 750 {
		t.Errorf("expected paste delay 750, got %d", loaded.Settings.PasteDelayMS)
	}
	if loaded.Settings.Theme != "dark" {
		t.Errorf("expected theme dark, got %q", loaded.Settings.Theme)
	}
}

func TestLoadBackfillsZeroDelays(t *testing.T) {
	tmpDir := t.TempDir()

	raw := []byte("launcher_hotkey: ctrl+space\n")
	if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), raw, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Settings.LauncherHotkey != "ctrl+space" {
		t.Errorf("expected hotkey from file, got %q", cfg.Settings.LauncherHotkey)
	}
	if cfg.Settings.CaptureDelayMS != 150 || cfg.Settings.PasteDelayMS != 500 {
		t.Errorf("zero delays should be backfilled, got %d/%d",
			cfg.Settings.CaptureDelayMS, cfg.Settings.PasteDelayMS)
	}
}
