package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

const (
	profileExt   = ".json"
	lastUsedFile = "last_used.txt"
)

// Store reads and writes profile files in a directory.
type Store struct {
	dir string
}

// NewStore returns a store for dir. The directory is created on first
// write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the settings directory.
func (s *Store) Dir() string {
	return s.dir
}

// ProfileName strips whitespace and a ".json" extension.
func ProfileName(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), profileExt)
}

// Path returns the file path of the named profile.
func (s *Store) Path(name string) (string, error) {
	name = ProfileName(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name+profileExt), nil
}

// Exists reports whether the named profile exists.
func (s *Store) Exists(name string) bool {
	path, err := s.Path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// List returns the sorted names of all profiles.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), profileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), profileExt))
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) read(name string) ([]byte, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, ProfileName(name))
		}
		return nil, err
	}
	return data, nil
}

// Load reads the named profile. A malformed file yields default options
// along with an error wrapping ErrMalformed.
func (s *Store) Load(name string) (Options, error) {
	data, err := s.read(name)
	if err != nil {
		return Options{}, err
	}
	opts, err := decodeOptions(data)
	if err != nil {
		return Options{}, fmt.Errorf("loading %s: %w", ProfileName(name), err)
	}
	return opts, nil
}

// Save writes opts to the named profile, keeping keys it does not manage.
func (s *Store) Save(name string, opts Options) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	existing, _ := os.ReadFile(path)
	data, err := encodeOptions(existing, opts)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// Create writes a new profile. It fails with ErrProfileExists when the
// profile exists and overwrite is false.
func (s *Store) Create(name string, opts Options, overwrite bool) error {
	if !overwrite && s.Exists(name) {
		return fmt.Errorf("%w: %s", ErrProfileExists, ProfileName(name))
	}
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	data, err := encodeOptions(nil, opts)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// Import copies the JSON file at src into the store under its base name,
// adding a _1, _2, ... suffix if that name is taken. It returns the name
// of the new profile.
func (s *Store) Import(src string) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("importing %s: %w", filepath.Base(src), ErrMalformed)
	}

	base := ProfileName(strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)))
	name := base
	for n := 1; s.Exists(name); n++ {
		name = base + "_" + strconv.Itoa(n)
	}
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}
	if err := writeFile(path, pretty.PrettyOptions(data, prettyOptions)); err != nil {
		return "", err
	}
	return name, nil
}

// Export writes the named profile to dest.
func (s *Store) Export(name, dest string) error {
	data, err := s.read(name)
	if err != nil {
		return err
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("exporting %s: %w", ProfileName(name), ErrMalformed)
	}
	return writeFile(dest, pretty.PrettyOptions(data, prettyOptions))
}

// Delete removes the named profile.
func (s *Store) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrProfileNotFound, ProfileName(name))
		}
		return err
	}
	return nil
}

// WriteLastUsed records name as the profile to load on startup.
func (s *Store) WriteLastUsed(name string) error {
	return writeFile(filepath.Join(s.dir, lastUsedFile), []byte(ProfileName(name)+profileExt))
}

// LastUsed returns the profile recorded by WriteLastUsed, or "" if none.
func (s *Store) LastUsed() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, lastUsedFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return ProfileName(string(data)), nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
