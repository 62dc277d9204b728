// Package config resolves macrokit's configuration.
//
// Configuration comes from three layers, lowest priority first:
//
//  1. Built-in defaults (Default)
//  2. The TOML config file, normally <user config dir>/macrokit/config.toml
//  3. MACROKIT_* environment variables
//
// A config file looks like:
//
//	[logging]
//	level = "debug"
//
//	[playback]
//	pollInterval = "10ms"
//	scrollMultiplier = 10
//	normalizeCoordinates = true
//
//	[device]
//	backend = "xdotool"
//
// Durations may be written as Go duration strings or as integer
// milliseconds. The resolved Config is validated before it is returned.
package config
