package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(s), nil
}

func (m memFS) Stat(path string) (fs.FileInfo, error) {
	return nil, fs.ErrNotExist
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Logging.Level != "info" || cfg.Logging.Color != "auto" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Playback.PollInterval != 10*time.Millisecond || cfg.Playback.ScrollMultiplier != 10 {
		t.Errorf("playback = %+v", cfg.Playback)
	}
	if cfg.Playback.NormalizeCoordinates || !cfg.Playback.ReleaseButtons {
		t.Errorf("playback flags = %+v", cfg.Playback)
	}
	if cfg.Display.WatchInterval != time.Second {
		t.Errorf("display = %+v", cfg.Display)
	}
	if cfg.Device.Backend != "auto" || cfg.Device.CaptureCommand != "xinput test-xi2 --root" || cfg.Device.InjectCommand != "xdotool" {
		t.Errorf("device = %+v", cfg.Device)
	}
	if cfg.Hotkeys.Record != "f9" || cfg.Hotkeys.Playback != "f10" {
		t.Errorf("hotkeys = %+v", cfg.Hotkeys)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	fsys := memFS{"/etc/macrokit.toml": `
[logging]
level = "warn"

[playback]
pollInterval = 5
scrollMultiplier = 3
normalizeCoordinates = true

[display]
watchInterval = "250ms"

[hotkeys]
record = "F7"
`}
	cfg, err := Load(Options{
		Path: "/etc/macrokit.toml",
		FS:   fsys,
		Env:  []string{"MACROKIT_LOG_LEVEL=debug", "MACROKIT_PLAYBACK_RELEASE_BUTTONS=false"},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != "/etc/macrokit.toml" {
		t.Errorf("Source = %q", cfg.Source)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("env did not override file: level = %q", cfg.Logging.Level)
	}
	if cfg.Playback.PollInterval != 5*time.Millisecond {
		t.Errorf("pollInterval = %v", cfg.Playback.PollInterval)
	}
	if cfg.Playback.ScrollMultiplier != 3 || !cfg.Playback.NormalizeCoordinates || cfg.Playback.ReleaseButtons {
		t.Errorf("playback = %+v", cfg.Playback)
	}
	if cfg.Display.WatchInterval != 250*time.Millisecond {
		t.Errorf("watchInterval = %v", cfg.Display.WatchInterval)
	}
	if cfg.Hotkeys.Record != "F7" || cfg.Hotkeys.Playback != "f10" {
		t.Errorf("hotkeys = %+v", cfg.Hotkeys)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(Options{Path: "/missing.toml", FS: memFS{}, NoEnv: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != "" {
		t.Errorf("Source = %q, want empty", cfg.Source)
	}
	want := Default()
	if cfg.Playback != want.Playback || cfg.Device != want.Device {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadRealFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[device]\nbackend = \"dryrun\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(Options{Path: path, NoEnv: true})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Device.Backend != "dryrun" {
		t.Errorf("backend = %q", cfg.Device.Backend)
	}
}

func TestResolveValidation(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		path string
	}{
		{"bad level", map[string]any{"logging": map[string]any{"level": "loud"}}, "logging.level"},
		{"bad color", map[string]any{"logging": map[string]any{"color": "rainbow"}}, "logging.color"},
		{"zero poll", map[string]any{"playback": map[string]any{"pollInterval": "0s"}}, "playback.pollInterval"},
		{"bad duration", map[string]any{"playback": map[string]any{"pollInterval": "soon"}}, "playback.pollInterval"},
		{"scroll range", map[string]any{"playback": map[string]any{"scrollMultiplier": int64(0)}}, "playback.scrollMultiplier"},
		{"scroll type", map[string]any{"playback": map[string]any{"scrollMultiplier": true}}, "playback.scrollMultiplier"},
		{"bool type", map[string]any{"playback": map[string]any{"releaseButtons": "maybe"}}, "playback.releaseButtons"},
		{"backend", map[string]any{"device": map[string]any{"backend": "x11"}}, "device.backend"},
		{"unknown hotkey", map[string]any{"hotkeys": map[string]any{"record": "hyper"}}, "hotkeys.record"},
		{"same hotkeys", map[string]any{"hotkeys": map[string]any{"record": "F10"}}, "hotkeys.playback"},
		{"section type", map[string]any{"device": map[string]any{"backend": []any{"a"}}}, "device.backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.raw)
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("err = %v, want validation failure", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Path != tt.path {
				t.Errorf("err = %v, want failure at %s", err, tt.path)
			}
		})
	}
}

func TestResolvePaths(t *testing.T) {
	t.Setenv("MACROKIT_TEST_ROOT", "/data")
	cfg, err := Resolve(map[string]any{
		"paths": map[string]any{"macroDir": "$MACROKIT_TEST_ROOT/macros"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Paths.MacroDir != "/data/macros" {
		t.Errorf("macroDir = %q", cfg.Paths.MacroDir)
	}
	if cfg.Paths.SettingsDir != Default().Paths.SettingsDir {
		t.Errorf("settingsDir = %q", cfg.Paths.SettingsDir)
	}
}
