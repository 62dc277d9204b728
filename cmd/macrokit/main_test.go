package main

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/macrokit/internal/input/macro"
	"github.com/dshills/macrokit/internal/input/mouse"
	"github.com/dshills/macrokit/internal/screen"
	"github.com/dshills/macrokit/internal/settings"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// testConfig writes a config file that keeps all state under dir.
func testConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	data := "[paths]\n" +
		"settingsDir = '" + filepath.Join(dir, "settings") + "'\n" +
		"macroDir = '" + filepath.Join(dir, "macros") + "'\n" +
		"[device]\nbackend = 'dryrun'\n" +
		"[display]\nwatchInterval = '0s'\n" +
		"[playback]\npollInterval = '1ms'\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func invoke(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	prev := displayProvider
	displayProvider = screen.StaticProvider{image.Rect(0, 0, 800, 600), image.Rect(800, 0, 1600, 600)}
	defer func() { displayProvider = prev }()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestVersion(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	r := invoke(t, "", "-config", cfg, "version")
	if r.code != 0 || !strings.Contains(r.stdout, "macrokit dev") {
		t.Errorf("version = %+v", r)
	}
}

func TestUsageErrors(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", []string{"-config", cfg}, "Usage: macrokit"},
		{"unknown command", []string{"-config", cfg, "jump"}, `unknown command "jump"`},
		{"bad log level", []string{"-config", cfg, "-log-level", "loud", "version"}, "logging.level"},
		{"play without macro", []string{"-config", cfg, "play"}, "exactly one macro"},
		{"negative loops", []string{"-config", cfg, "play", "-loops", "-1", "x"}, "must not be negative"},
		{"profiles without subcommand", []string{"-config", cfg, "profiles"}, "missing profiles subcommand"},
		{"unknown profiles subcommand", []string{"-config", cfg, "profiles", "rename"}, "unknown profiles subcommand"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := invoke(t, "", tt.args...)
			if r.code != 2 {
				t.Errorf("exit code = %d, want 2 (stderr %q)", r.code, r.stderr)
			}
			if !strings.Contains(r.stderr, tt.want) {
				t.Errorf("stderr missing %q:\n%s", tt.want, r.stderr)
			}
		})
	}
}

func TestDisplays(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	r := invoke(t, "", "-config", cfg, "displays")
	if r.code != 0 {
		t.Fatalf("displays = %+v", r)
	}
	for _, want := range []string{
		"Display 0: 800x600+0+0",
		"Display 1: 800x600+800+0",
		"Virtual desktop: 1600x600+0+0",
	} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, r.stdout)
		}
	}
}

func TestProfilesCommands(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	store := settings.NewStore(filepath.Join(dir, "settings"))

	if r := invoke(t, "", "-config", cfg, "profiles", "create", "work", "continuous_playback=true"); r.code != 0 {
		t.Fatalf("create = %+v", r)
	}
	if r := invoke(t, "", "-config", cfg, "profiles", "create", "work"); r.code != 1 || !strings.Contains(r.stderr, "already exists") {
		t.Errorf("duplicate create = %+v", r)
	}
	if r := invoke(t, "", "-config", cfg, "profiles", "set", "work", "saveOnChange", "yes"); r.code != 2 {
		t.Errorf("non-bool set = %+v", r)
	}
	if r := invoke(t, "", "-config", cfg, "profiles", "set", "work", "saveOnChange", "true"); r.code != 0 {
		t.Fatalf("set = %+v", r)
	}

	r := invoke(t, "", "-config", cfg, "profiles", "show", "work")
	if r.code != 0 || !strings.Contains(r.stdout, "continuous_playback") {
		t.Fatalf("show = %+v", r)
	}
	opts, err := store.Load("work")
	if err != nil || !opts.ContinuousPlayback || !opts.SaveOnChange {
		t.Errorf("stored options = %+v, %v", opts, err)
	}

	if r := invoke(t, "", "-config", cfg, "profiles", "use", "work"); r.code != 0 {
		t.Fatalf("use = %+v", r)
	}
	exported := filepath.Join(dir, "work.json")
	if r := invoke(t, "", "-config", cfg, "profiles", "export", "work", exported); r.code != 0 {
		t.Fatalf("export = %+v", r)
	}
	r = invoke(t, "", "-config", cfg, "profiles", "import", exported)
	if r.code != 0 || !strings.Contains(r.stdout, "work_1") {
		t.Fatalf("import = %+v", r)
	}

	r = invoke(t, "", "-config", cfg, "profiles", "list")
	if r.code != 0 || r.stdout != "* work\n  work_1\n" {
		t.Errorf("list = %q", r.stdout)
	}

	if r := invoke(t, "", "-config", cfg, "profiles", "delete", "work_1"); r.code != 0 {
		t.Errorf("delete = %+v", r)
	}
	if r := invoke(t, "", "-config", cfg, "profiles", "delete", "work_1"); r.code != 1 {
		t.Errorf("second delete = %+v", r)
	}
}

func TestPlayDryRun(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	path := filepath.Join(dir, "clicks.json")
	f := macro.NewFile(macro.Events{
		macro.Move{Position: mouse.Position{X: 10, Y: 10}},
		macro.Click{Position: mouse.Position{X: 10, Y: 10}, Button: "left", Pressed: true},
		macro.Click{Position: mouse.Position{X: 10, Y: 10}, Button: "left"},
	}, screen.Bounds{Width: 1600, Height: 600})
	if err := f.Save(path); err != nil {
		t.Fatal(err)
	}

	r := invoke(t, "", "-config", cfg, "play", "-dry-run", "-loops", "2", path)
	if r.code != 0 {
		t.Fatalf("play = %+v", r)
	}
	if !strings.Contains(r.stdout, "Played 2 loops") {
		t.Errorf("stdout = %q", r.stdout)
	}

	r = invoke(t, "", "-config", cfg, "play", "missing")
	if r.code != 1 || !strings.Contains(r.stderr, "missing") {
		t.Errorf("missing macro = %+v", r)
	}
}

func TestRecordNothing(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	r := invoke(t, "\n", "-config", cfg, "record", "-o", "empty")
	if r.code != 1 || !strings.Contains(r.stderr, "no events recorded") {
		t.Errorf("record = %+v", r)
	}
	r = invoke(t, "", "-config", cfg, "record", "-duration", "5ms", "-o", "empty")
	if r.code != 1 || !strings.Contains(r.stderr, "no events recorded") {
		t.Errorf("timed record = %+v", r)
	}
}
