// Package settings manages named settings profiles.
//
// A profile is a small JSON file in the settings directory holding boolean
// options:
//
//	{
//	  "continuous_playback": true,
//	  "minimize_to_tray": false,
//	  "minimalistic_mode": false,
//	  "saveOnChange": true
//	}
//
// Missing options read as false and unknown keys are preserved when a
// profile is rewritten. The file last_used.txt next to the profiles names
// the profile to load on startup.
//
// Store is the file-level API. Manager tracks the selected profile and its
// unsaved changes. Watcher reports when profiles appear or disappear.
package settings
