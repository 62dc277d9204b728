// Package device connects macro recording and playback to the operating
// system's input stack.
//
// A Source observes global mouse and keyboard input and reports it to a
// Listener. A Sink injects synthetic input. Backends:
//
//	xdotool   capture via "xinput test-xi2 --root", injection via xdotool (X11)
//	windows   low-level hooks for capture, SendInput for injection
//	dryrun    no capture; injected actions are only logged
//
// Open picks a backend by name; "auto" chooses the platform default and
// falls back to dryrun when no injection tool is available.
package device
