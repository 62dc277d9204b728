// Package macro records global mouse and keyboard input as a timed event
// log and replays it with the original timing.
//
// # Events
//
// An Event is one of Move, Click, Scroll, KeyPress, KeyRelease or Unknown.
// Every event carries its offset from the start of recording. Offsets are
// non-decreasing in log order.
//
// # Recording
//
// A Recorder implements device.Listener. While recording it appends each
// callback to its EventLog, stamped with the elapsed time since Start:
//
//	rec := macro.NewRecorder(source)
//	rec.Start()
//	// ... user input ...
//	events := rec.Stop()
//
// Starting again clears the log and restarts the clock.
//
// # Playback
//
// A Player walks a snapshot of the log, sleeping until each event's offset
// and then injecting it through a device.Sink. Events that cannot be
// injected (unknown keys, unsupported buttons, sink errors) are logged and
// skipped; playback continues. Stop takes effect within one poll interval
// (10ms by default) or before the next injected event, whichever is first.
//
// A Looper repeats playback while a continuous predicate holds, releasing
// held mouse buttons between iterations.
//
// # Persistence
//
// Recordings are saved as JSON macro files that carry the display layout
// they were recorded on, so positions can be remapped on a different
// layout. A Library manages named macro files in a directory.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use.
package macro
