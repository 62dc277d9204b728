package settings

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestManagerSetMarksDirty(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Save("p", Options{}); err != nil {
		t.Fatal(err)
	}
	m := NewManager(s)
	if err := m.Switch("p"); err != nil {
		t.Fatalf("Switch: %v", err)
	}
	if err := m.Set(OptContinuousPlayback, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !m.Dirty() {
		t.Error("expected dirty after Set without saveOnChange")
	}
	onDisk, _ := s.Load("p")
	if onDisk.ContinuousPlayback {
		t.Error("change written without saveOnChange")
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	onDisk, _ = s.Load("p")
	if !onDisk.ContinuousPlayback || m.Dirty() {
		t.Errorf("after Save: disk=%+v dirty=%v", onDisk, m.Dirty())
	}
}

func TestManagerSaveOnChange(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Save("p", Options{SaveOnChange: true}); err != nil {
		t.Fatal(err)
	}
	m := NewManager(s)
	if err := m.Switch("p"); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(OptMinimizeToTray, true); err != nil {
		t.Fatal(err)
	}
	onDisk, _ := s.Load("p")
	if !onDisk.MinimizeToTray {
		t.Error("saveOnChange did not write the change")
	}
	if m.Dirty() {
		t.Error("dirty after immediate save")
	}
}

func TestManagerSwitchSavesDirty(t *testing.T) {
	s := NewStore(t.TempDir())
	s.Save("a", Options{})
	s.Save("b", Options{MinimalisticMode: true})

	m := NewManager(s)
	if err := m.Switch("a"); err != nil {
		t.Fatal(err)
	}
	m.Set(OptContinuousPlayback, true)
	if err := m.Switch("b"); err != nil {
		t.Fatal(err)
	}
	if m.Current() != "b" || !m.Options().MinimalisticMode {
		t.Errorf("current = %q options = %+v", m.Current(), m.Options())
	}
	a, _ := s.Load("a")
	if !a.ContinuousPlayback {
		t.Error("dirty profile not saved before switch")
	}
	last, _ := s.LastUsed()
	if last != "b" {
		t.Errorf("last used = %q, want b", last)
	}
}

func TestManagerSwitchMissingKeepsSelection(t *testing.T) {
	s := NewStore(t.TempDir())
	s.Save("a", Options{ContinuousPlayback: true})
	m := NewManager(s)
	m.Switch("a")
	if err := m.Switch("missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("err = %v, want ErrProfileNotFound", err)
	}
	if m.Current() != "a" || !m.Options().ContinuousPlayback {
		t.Errorf("selection changed: %q %+v", m.Current(), m.Options())
	}
}

func TestManagerSwitchMalformedUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "bad.json"), []byte("not json"), 0o644)
	m := NewManager(NewStore(dir))
	m.Set(OptContinuousPlayback, true)
	err := m.Switch("bad")
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
	if m.Current() != "bad" || m.Options() != (Options{}) {
		t.Errorf("current = %q options = %+v", m.Current(), m.Options())
	}
}

func TestManagerLoadLastUsed(t *testing.T) {
	s := NewStore(t.TempDir())
	m := NewManager(s)
	ok, err := m.LoadLastUsed()
	if ok || err != nil {
		t.Fatalf("empty store: %v, %v", ok, err)
	}

	s.Save("home", Options{MinimizeToTray: true})
	s.WriteLastUsed("home")
	ok, err = m.LoadLastUsed()
	if !ok || err != nil {
		t.Fatalf("LoadLastUsed = %v, %v", ok, err)
	}
	if m.Current() != "home" || !m.Options().MinimizeToTray {
		t.Errorf("current = %q options = %+v", m.Current(), m.Options())
	}

	s.WriteLastUsed("gone")
	m2 := NewManager(s)
	ok, err = m2.LoadLastUsed()
	if ok || err != nil || m2.Current() != "" {
		t.Errorf("stale last used: %v, %v, %q", ok, err, m2.Current())
	}
}

func TestManagerSaveWithoutProfile(t *testing.T) {
	m := NewManager(NewStore(t.TempDir()))
	if err := m.Save(); !errors.Is(err, ErrNoProfile) {
		t.Errorf("Save err = %v, want ErrNoProfile", err)
	}
	if err := m.Export(filepath.Join(t.TempDir(), "x.json")); !errors.Is(err, ErrNoProfile) {
		t.Errorf("Export err = %v, want ErrNoProfile", err)
	}
}

func TestManagerCreateImportDelete(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "settings"))
	m := NewManager(s)
	m.Set(OptMinimalisticMode, true)
	if err := m.Create("work", false); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.Current() != "work" || m.Dirty() {
		t.Errorf("after Create: %q dirty=%v", m.Current(), m.Dirty())
	}
	if err := m.Create("work", false); !errors.Is(err, ErrProfileExists) {
		t.Errorf("duplicate Create err = %v", err)
	}

	exported := filepath.Join(dir, "work.json")
	if err := m.Export(exported); err != nil {
		t.Fatalf("Export: %v", err)
	}
	name, err := m.Import(exported)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if name != "work_1" || m.Current() != "work_1" || !m.Options().MinimalisticMode {
		t.Errorf("Import = %q current=%q options=%+v", name, m.Current(), m.Options())
	}

	if err := m.Delete("work_1"); err != nil {
		t.Fatal(err)
	}
	if m.Current() != "" {
		t.Errorf("current = %q after deleting it", m.Current())
	}
	names, _ := s.List()
	if !slices.Equal(names, []string{"work"}) {
		t.Errorf("List = %v", names)
	}
}

func TestManagerToggleAndOnChange(t *testing.T) {
	m := NewManager(NewStore(t.TempDir()))
	var seen []Options
	m.OnChange(func(o Options) { seen = append(seen, o) })

	v, err := m.Toggle(OptContinuousPlayback)
	if err != nil || !v {
		t.Fatalf("Toggle = %v, %v", v, err)
	}
	v, _ = m.Toggle(OptContinuousPlayback)
	if v {
		t.Error("second Toggle should turn the option off")
	}
	if len(seen) != 2 || !seen[0].ContinuousPlayback || seen[1].ContinuousPlayback {
		t.Errorf("OnChange saw %+v", seen)
	}
	if _, err := m.Toggle("bogus"); !errors.Is(err, ErrUnknownOption) {
		t.Errorf("err = %v, want ErrUnknownOption", err)
	}
}

func TestWatcherReportsProfiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "settings")
	s := NewStore(dir)
	w, err := NewWatcher(s, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := s.Save("first", Options{}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, w, []string{"first"})

	if err := s.Delete("first"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, w, nil)
}

func TestWatcherCloseIdempotent(t *testing.T) {
	w, err := NewWatcher(NewStore(t.TempDir()), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, ok := <-w.Updates(); ok {
		t.Error("Updates not closed")
	}
}

func waitFor(t *testing.T, w *Watcher, want []string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-w.Updates():
			if slices.Equal(got, want) {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for profiles %v", want)
		}
	}
}
