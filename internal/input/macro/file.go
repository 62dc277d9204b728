package macro

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/macrokit/internal/screen"
)

// FormatVersion is the macro file format written by this package.
const FormatVersion = 1

// File is a saved recording.
type File struct {
	Version   string        `json:"version"`
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Bounds    screen.Bounds `json:"bounds"`
	Events    Events        `json:"events"`
}

// NewFile wraps events recorded on the given display layout.
func NewFile(events Events, bounds screen.Bounds) *File {
	return &File{
		Version:   strconv.Itoa(FormatVersion),
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Bounds:    bounds,
		Events:    events,
	}
}

// Duration returns the offset of the last event.
func (f *File) Duration() time.Duration {
	return f.Events.Duration()
}

// Marshal encodes f as indented JSON.
func (f *File) Marshal() ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}

// Save writes f to path. The file is written to a temporary name and
// renamed into place.
func (f *File) Save(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal macro: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Parse decodes a macro file. A missing version is treated as version 1.
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal macro: %w", err)
	}
	if f.Version == "" {
		f.Version = strconv.Itoa(FormatVersion)
	}
	v, err := strconv.Atoi(f.Version)
	if err != nil || v > FormatVersion {
		return nil, fmt.Errorf("%w: %q (max supported: %d)", ErrUnsupportedVersion, f.Version, FormatVersion)
	}
	return &f, nil
}

// Load reads a macro file from path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read macro file: %w", err)
	}
	return Parse(data)
}
