package macro

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/macrokit/internal/screen"
)

func TestFileSaveLoad(t *testing.T) {
	bounds := screen.Bounds{MinX: -1920, Width: 3840, Height: 1080}
	f := NewFile(Events{
		Move{Position: pos(1, 2)},
		KeyPress{Key: "a", Time: 250 * time.Millisecond},
	}, bounds)

	if _, err := uuid.Parse(f.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", f.ID, err)
	}

	path := filepath.Join(t.TempDir(), "sub", "m.json")
	if err := f.Save(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "\n  \"version\": \"1\"") {
		t.Errorf("unexpected layout:\n%s", raw)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != f.ID || got.Bounds != bounds || !got.CreatedAt.Equal(f.CreatedAt) {
		t.Errorf("header mismatch: %+v", got)
	}
	if len(got.Events) != 2 || got.Duration() != 250*time.Millisecond {
		t.Errorf("events = %v", got.Events)
	}
}

func TestParseVersions(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"no version", `{"events":[]}`, nil},
		{"current", `{"version":"1","events":[]}`, nil},
		{"newer", `{"version":"2","events":[]}`, ErrUnsupportedVersion},
		{"garbage", `{"version":"one"}`, ErrUnsupportedVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if _, err := Parse([]byte("{")); err == nil {
		t.Error("truncated JSON should fail")
	}
}

func TestLibrary(t *testing.T) {
	lib := NewLibrary(filepath.Join(t.TempDir(), "macros"))

	names, err := lib.List()
	if err != nil || len(names) != 0 {
		t.Fatalf("List on missing dir = %v, %v", names, err)
	}

	f := NewFile(Events{KeyPress{Key: "a"}}, screen.DefaultBounds)
	for _, n := range []string{"farm", "login.json", "a_b-c"} {
		if err := lib.Save(n, f); err != nil {
			t.Fatalf("Save(%q): %v", n, err)
		}
	}
	names, _ = lib.List()
	if strings.Join(names, ",") != "a_b-c,farm,login" {
		t.Errorf("List = %v", names)
	}

	got, err := lib.Load("farm")
	if err != nil || got.ID != f.ID {
		t.Errorf("Load = %v, %v", got, err)
	}
	if _, err := lib.Load("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) = %v", err)
	}
	if err := lib.Delete("farm"); err != nil {
		t.Error(err)
	}
	if err := lib.Delete("farm"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v", err)
	}
	for _, bad := range []string{"", "../x", ".hidden", "a/b", "sp ace"} {
		if err := lib.Save(bad, f); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Save(%q) = %v, want ErrInvalidName", bad, err)
		}
	}
}

func TestLibraryResolve(t *testing.T) {
	dir := t.TempDir()
	lib := NewLibrary(dir)

	abs := filepath.Join(dir, "elsewhere.json")
	if got, _ := lib.Resolve(abs); got != abs {
		t.Errorf("Resolve(path) = %q", got)
	}
	if got, _ := lib.Resolve("farm"); got != filepath.Join(dir, "farm.json") {
		t.Errorf("Resolve(name) = %q", got)
	}
}
