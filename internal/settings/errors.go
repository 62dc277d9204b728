package settings

import "errors"

var (
	// ErrProfileNotFound is returned when a named profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrProfileExists is returned when creating a profile that exists and
	// overwrite was not requested.
	ErrProfileExists = errors.New("profile already exists")

	// ErrInvalidName is returned for profile names that are empty or
	// contain path separators.
	ErrInvalidName = errors.New("invalid profile name")

	// ErrMalformed is returned when a profile is not a JSON object.
	ErrMalformed = errors.New("malformed profile")

	// ErrUnknownOption is returned for option names that are not part of a
	// profile.
	ErrUnknownOption = errors.New("unknown option")

	// ErrNoProfile is returned by operations that need a selected profile.
	ErrNoProfile = errors.New("no profile selected")
)
