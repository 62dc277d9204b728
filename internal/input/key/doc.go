// Package key provides canonical keyboard key tokens for recording and replay.
//
// Capture backends report keys in whatever shape their platform library
// produces: quoted characters ("'a'"), namespaced names ("Key.shift"),
// X keysym names ("Shift_L") or virtual-key numbers. This package reduces
// them to a bare lowercase token and resolves tokens to a Key that injection
// backends know how to press.
//
//   - Canonical: strips decoration and folds case ("Key.shift" -> "shift")
//   - Lookup: resolves a token to an Event (special key or single rune)
//   - KeyFromName: resolves a name used in configuration ("F9")
//
// Tokens that Lookup does not recognize are reported as not found; callers
// decide whether that is fatal. The player logs and skips them.
package key
