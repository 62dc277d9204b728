package macro

import "errors"

var (
	// ErrAlreadyPlaying is returned when playback is requested while a
	// playback is running.
	ErrAlreadyPlaying = errors.New("already playing")

	// ErrEmptyLog is returned when saving a recording with no events.
	ErrEmptyLog = errors.New("no events recorded")

	// ErrUnsupportedVersion is returned when a macro file was written by a
	// newer format version.
	ErrUnsupportedVersion = errors.New("unsupported macro file version")

	// ErrInvalidName is returned for macro names that cannot be used as
	// file names.
	ErrInvalidName = errors.New("invalid macro name")

	// ErrNotFound is returned when a named macro does not exist.
	ErrNotFound = errors.New("macro not found")
)
