package macro

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

const macroExt = ".json"

// IsValidName reports whether name can be used for a macro file: one to
// 64 letters, digits, '-', '_' or '.', not starting with '.'.
func IsValidName(name string) bool {
	if name == "" || len(name) > 64 || strings.HasPrefix(name, ".") {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' && r != '.' {
			return false
		}
	}
	return true
}

// NormalizeName trims whitespace and a trailing ".json" from name.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	return strings.TrimSuffix(name, macroExt)
}

// Library stores named macro files in a directory.
type Library struct {
	dir string
}

// NewLibrary returns a library rooted at dir. The directory is created on
// the first save.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Dir returns the library directory.
func (l *Library) Dir() string {
	return l.dir
}

// Path returns the file path for name.
func (l *Library) Path(name string) (string, error) {
	name = NormalizeName(name)
	if !IsValidName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(l.dir, name+macroExt), nil
}

// Save writes f under name, replacing any existing macro.
func (l *Library) Save(name string, f *File) error {
	path, err := l.Path(name)
	if err != nil {
		return err
	}
	return f.Save(path)
}

// Load reads the macro called name.
func (l *Library) Load(name string) (*File, error) {
	path, err := l.Path(name)
	if err != nil {
		return nil, err
	}
	f, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, NormalizeName(name))
	}
	return f, err
}

// Delete removes the macro called name.
func (l *Library) Delete(name string) error {
	path, err := l.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, NormalizeName(name))
		}
		return err
	}
	return nil
}

// List returns the sorted names of all saved macros. A missing directory
// is an empty library.
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), macroExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), macroExt))
	}
	sort.Strings(names)
	return names, nil
}

// Resolve returns the path for ref, which is either a path to an existing
// file or the name of a macro in the library.
func (l *Library) Resolve(ref string) (string, error) {
	if strings.ContainsRune(ref, filepath.Separator) || strings.ContainsRune(ref, '/') {
		return ref, nil
	}
	if _, err := os.Stat(ref); err == nil {
		return ref, nil
	}
	return l.Path(ref)
}
