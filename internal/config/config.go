package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/macrokit/internal/config/loader"
	"github.com/dshills/macrokit/internal/device"
	"github.com/dshills/macrokit/internal/input/key"
	"github.com/dshills/macrokit/internal/input/macro"
	"github.com/dshills/macrokit/internal/screen"
)

// AppName names the per-user config directory.
const AppName = "macrokit"

// Config is the resolved configuration.
type Config struct {
	Logging  LoggingConfig
	Playback PlaybackConfig
	Display  DisplayConfig
	Device   DeviceConfig
	Hotkeys  HotkeyConfig
	Paths    PathsConfig

	// Source is the config file that was read, or "" if none existed.
	Source string
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string // debug, info, warn, error
	Color string // auto, always, never
}

// PlaybackConfig configures the player and looper.
type PlaybackConfig struct {
	PollInterval         time.Duration
	ScrollMultiplier     int
	NormalizeCoordinates bool
	ReleaseButtons       bool
}

// DisplayConfig configures display-geometry tracking.
type DisplayConfig struct {
	WatchInterval time.Duration
}

// DeviceConfig selects the input capture and injection backend.
type DeviceConfig struct {
	Backend        string
	CaptureCommand string
	InjectCommand  string
}

// HotkeyConfig names the console hotkeys as key tokens.
type HotkeyConfig struct {
	Record   string
	Playback string
}

// PathsConfig locates on-disk state.
type PathsConfig struct {
	SettingsDir string
	MacroDir    string
}

// Default returns the built-in configuration.
func Default() Config {
	base := defaultBaseDir()
	return Config{
		Logging: LoggingConfig{Level: "info", Color: "auto"},
		Playback: PlaybackConfig{
			PollInterval:     macro.DefaultPollInterval,
			ScrollMultiplier: macro.DefaultScrollMultiplier,
			ReleaseButtons:   true,
		},
		Display: DisplayConfig{WatchInterval: screen.DefaultWatchInterval},
		Device: DeviceConfig{
			Backend:        device.BackendAuto,
			CaptureCommand: device.DefaultCaptureCommand,
			InjectCommand:  device.DefaultInjectCommand,
		},
		Hotkeys: HotkeyConfig{Record: "f9", Playback: "f10"},
		Paths: PathsConfig{
			SettingsDir: filepath.Join(base, "settings"),
			MacroDir:    filepath.Join(base, "macros"),
		},
	}
}

func defaultBaseDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName)
	}
	return "." + AppName
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(defaultBaseDir(), "config.toml")
}

// Options controls Load.
type Options struct {
	// Path is the TOML file to read. Empty means DefaultPath. A missing
	// file is not an error.
	Path string

	// FS overrides the file system. Nil means the OS.
	FS loader.FileSystem

	// Env overrides the environment. Nil means os.Environ.
	Env []string

	// NoEnv disables environment overrides.
	NoEnv bool
}

// Load reads the config file and environment overrides and resolves them
// onto Default.
func Load(opts Options) (Config, error) {
	path := opts.Path
	if path == "" {
		path = DefaultPath()
	}
	fsys := opts.FS
	if fsys == nil {
		fsys = loader.DefaultFS()
	}

	raw := make(map[string]any)
	fileCfg, err := loader.NewTOMLLoaderWithFS(fsys, path).Load()
	if err != nil {
		return Config{}, err
	}
	raw = loader.DeepMerge(raw, fileCfg)

	if !opts.NoEnv {
		env := loader.NewEnvLoader(loader.DefaultEnvPrefix)
		if opts.Env != nil {
			env = loader.NewEnvLoaderFrom(loader.DefaultEnvPrefix, opts.Env)
		}
		envCfg, err := env.Load()
		if err != nil {
			return Config{}, fmt.Errorf("loading environment: %w", err)
		}
		raw = loader.DeepMerge(raw, envCfg)
	}

	cfg, err := Resolve(raw)
	if err != nil {
		return Config{}, err
	}
	if fileCfg != nil {
		cfg.Source = path
	}
	return cfg, nil
}

// Resolve applies raw settings onto Default and validates the result.
func Resolve(raw map[string]any) (Config, error) {
	cfg := Default()
	r := resolver{raw: raw}

	r.str("logging.level", &cfg.Logging.Level)
	r.str("logging.color", &cfg.Logging.Color)
	r.duration("playback.pollInterval", &cfg.Playback.PollInterval)
	r.integer("playback.scrollMultiplier", &cfg.Playback.ScrollMultiplier)
	r.boolean("playback.normalizeCoordinates", &cfg.Playback.NormalizeCoordinates)
	r.boolean("playback.releaseButtons", &cfg.Playback.ReleaseButtons)
	r.duration("display.watchInterval", &cfg.Display.WatchInterval)
	r.str("device.backend", &cfg.Device.Backend)
	r.str("device.captureCommand", &cfg.Device.CaptureCommand)
	r.str("device.injectCommand", &cfg.Device.InjectCommand)
	r.str("hotkeys.record", &cfg.Hotkeys.Record)
	r.str("hotkeys.playback", &cfg.Hotkeys.Playback)
	r.path("paths.settingsDir", &cfg.Paths.SettingsDir)
	r.path("paths.macroDir", &cfg.Paths.MacroDir)

	errs := append(r.errs, cfg.validate()...)
	if len(errs) > 0 {
		return Config{}, errs
	}
	return cfg, nil
}

var (
	logLevels  = []string{"debug", "info", "warn", "warning", "error"}
	colorModes = []string{"auto", "always", "never"}
	backends   = []string{device.BackendAuto, device.BackendXDoTool, device.BackendWindows, device.BackendDryRun}
)

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if errs := c.validate(); len(errs) > 0 {
		return errs
	}
	return nil
}

func (c Config) validate() ValidationErrors {
	var errs ValidationErrors
	fail := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Logging.Level)) {
		fail("logging.level", "must be one of "+strings.Join(logLevels, ", "), c.Logging.Level)
	}
	if !slices.Contains(colorModes, strings.ToLower(c.Logging.Color)) {
		fail("logging.color", "must be one of "+strings.Join(colorModes, ", "), c.Logging.Color)
	}
	if c.Playback.PollInterval <= 0 || c.Playback.PollInterval > time.Second {
		fail("playback.pollInterval", "must be between 1ns and 1s", c.Playback.PollInterval)
	}
	if c.Playback.ScrollMultiplier < 1 || c.Playback.ScrollMultiplier > 1000 {
		fail("playback.scrollMultiplier", "must be between 1 and 1000", c.Playback.ScrollMultiplier)
	}
	if c.Display.WatchInterval < 0 {
		fail("display.watchInterval", "must not be negative", c.Display.WatchInterval)
	}
	if !slices.Contains(backends, strings.ToLower(c.Device.Backend)) {
		fail("device.backend", "must be one of "+strings.Join(backends, ", "), c.Device.Backend)
	}
	for _, hk := range []struct{ path, token string }{
		{"hotkeys.record", c.Hotkeys.Record},
		{"hotkeys.playback", c.Hotkeys.Playback},
	} {
		if _, ok := key.Lookup(hk.token); !ok {
			fail(hk.path, "unknown key", hk.token)
		}
	}
	if strings.EqualFold(c.Hotkeys.Record, c.Hotkeys.Playback) {
		fail("hotkeys.playback", "must differ from hotkeys.record", c.Hotkeys.Playback)
	}
	return errs
}

// resolver copies raw values into typed fields, collecting type errors.
type resolver struct {
	raw  map[string]any
	errs ValidationErrors
}

func (r *resolver) lookup(path string) (any, bool) {
	return loader.Lookup(r.raw, path)
}

func (r *resolver) mismatch(path, want string, v any) {
	r.errs = append(r.errs, &ValidationError{
		Path:    path,
		Message: fmt.Sprintf("expected %s, got %T", want, v),
		Value:   v,
	})
}

func (r *resolver) str(path string, dst *string) {
	v, ok := r.lookup(path)
	if !ok {
		return
	}
	switch x := v.(type) {
	case string:
		*dst = x
	case int64, float64, bool:
		*dst = fmt.Sprint(x)
	default:
		r.mismatch(path, "string", v)
	}
}

func (r *resolver) path(path string, dst *string) {
	var s string
	r.str(path, &s)
	if s == "" {
		return
	}
	s = os.ExpandEnv(s)
	if rest, ok := strings.CutPrefix(s, "~"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			s = filepath.Join(home, rest)
		}
	}
	*dst = s
}

func (r *resolver) boolean(path string, dst *bool) {
	v, ok := r.lookup(path)
	if !ok {
		return
	}
	switch x := v.(type) {
	case bool:
		*dst = x
	case int64:
		*dst = x != 0
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			r.mismatch(path, "bool", v)
			return
		}
		*dst = b
	default:
		r.mismatch(path, "bool", v)
	}
}

func (r *resolver) integer(path string, dst *int) {
	v, ok := r.lookup(path)
	if !ok {
		return
	}
	switch x := v.(type) {
	case int64:
		*dst = int(x)
	case float64:
		if x != float64(int(x)) {
			r.mismatch(path, "integer", v)
			return
		}
		*dst = int(x)
	case string:
		i, err := strconv.Atoi(x)
		if err != nil {
			r.mismatch(path, "integer", v)
			return
		}
		*dst = i
	default:
		r.mismatch(path, "integer", v)
	}
}

// duration accepts duration strings, time.Duration values from the
// environment loader and integer milliseconds.
func (r *resolver) duration(path string, dst *time.Duration) {
	v, ok := r.lookup(path)
	if !ok {
		return
	}
	switch x := v.(type) {
	case time.Duration:
		*dst = x
	case int64:
		*dst = time.Duration(x) * time.Millisecond
	case float64:
		*dst = time.Duration(x * float64(time.Millisecond))
	case string:
		d, err := time.ParseDuration(x)
		if err != nil {
			r.mismatch(path, "duration", v)
			return
		}
		*dst = d
	default:
		r.mismatch(path, "duration", v)
	}
}
