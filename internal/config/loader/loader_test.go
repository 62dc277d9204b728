package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/config.toml", `
[playback]
pollInterval = "5ms"
scrollMultiplier = 3
normalizeCoordinates = true

[device]
backend = "xdotool"
`)

	cfg, err := NewTOMLLoaderWithFS(memfs, "/config.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"playback.pollInterval", "5ms"},
		{"playback.scrollMultiplier", int64(3)},
		{"playback.normalizeCoordinates", true},
		{"device.backend", "xdotool"},
	}
	for _, tt := range tests {
		got, ok := Lookup(cfg, tt.path)
		if !ok || got != tt.want {
			t.Errorf("%s = %v (%T), want %v", tt.path, got, got, tt.want)
		}
	}
}

func TestTOMLLoader_MissingFile(t *testing.T) {
	cfg, err := NewTOMLLoaderWithFS(NewMemFS(), "/nope.toml").Load()
	if err != nil || cfg != nil {
		t.Errorf("Load = %v, %v; want nil, nil", cfg, err)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[playback]\npollInterval = \n")

	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if perr.Path != "/bad.toml" || perr.Line != 2 {
		t.Errorf("ParseError = %+v, want line 2 of /bad.toml", perr)
	}
	if !strings.Contains(perr.Error(), "line 2") {
		t.Errorf("Error() = %q", perr.Error())
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	cfg, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[logging]\nlevel = \"warn\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := Lookup(cfg, "logging.level"); v != "warn" {
		t.Errorf("logging.level = %v", v)
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"playback": map[string]any{"pollInterval": "10ms", "scrollMultiplier": int64(10)},
		"logging":  map[string]any{"level": "info"},
	}
	src := map[string]any{
		"playback": map[string]any{"scrollMultiplier": int64(2)},
		"device":   map[string]any{"backend": "dryrun"},
	}
	got := DeepMerge(dst, src)

	checks := map[string]any{
		"playback.pollInterval":     "10ms",
		"playback.scrollMultiplier": int64(2),
		"logging.level":             "info",
		"device.backend":            "dryrun",
	}
	for path, want := range checks {
		if v, ok := Lookup(got, path); !ok || v != want {
			t.Errorf("%s = %v, want %v", path, v, want)
		}
	}

	if DeepMerge(nil, nil) == nil {
		t.Error("DeepMerge(nil, nil) returned nil")
	}
}

func TestLookupSet(t *testing.T) {
	m := map[string]any{}
	Set(m, "a.b.c", 1)
	Set(m, "a.d", "x")
	if v, ok := Lookup(m, "a.b.c"); !ok || v != 1 {
		t.Errorf("a.b.c = %v, %v", v, ok)
	}
	if _, ok := Lookup(m, "a.b.c.d"); ok {
		t.Error("lookup through a leaf succeeded")
	}
	if _, ok := Lookup(m, "a.x"); ok {
		t.Error("lookup of missing key succeeded")
	}
	// Replacing a leaf with a section.
	Set(m, "a.d.e", true)
	if v, _ := Lookup(m, "a.d.e"); v != true {
		t.Errorf("a.d.e = %v", v)
	}
}
