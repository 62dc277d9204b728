package macro

import (
	"fmt"
	"sync"
	"time"

	"github.com/dshills/macrokit/internal/device"
	"github.com/dshills/macrokit/internal/input/key"
	"github.com/dshills/macrokit/internal/input/mouse"
	"github.com/dshills/macrokit/internal/logging"
)

// Recorder captures input from a device.Source into an EventLog.
type Recorder struct {
	// ctl serializes Start and Stop. It is never held by listener
	// callbacks, so stopping a source that is mid-callback cannot deadlock.
	ctl sync.Mutex

	mu        sync.Mutex
	recording bool
	start     time.Time
	stopped   time.Duration
	last      *mouse.Position

	source device.Source
	log    *EventLog
	logger *logging.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRecorderLogger sets the recorder's logger.
func WithRecorderLogger(l *logging.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logging.OrNop(l).WithComponent("recorder")
	}
}

// WithEventLog records into log instead of a fresh one.
func WithEventLog(log *EventLog) RecorderOption {
	return func(r *Recorder) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRecorder creates an idle recorder reading from source.
func NewRecorder(source device.Source, opts ...RecorderOption) *Recorder {
	if source == nil {
		source = device.NopSource{}
	}
	r := &Recorder{
		source: source,
		log:    NewEventLog(),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Log returns the live event log.
func (r *Recorder) Log() *EventLog {
	return r.log
}

// Start clears the log and begins recording. Calling Start while
// recording restarts from an empty log.
func (r *Recorder) Start() error {
	r.ctl.Lock()
	defer r.ctl.Unlock()

	r.mu.Lock()
	restart := r.recording
	r.recording = false
	r.mu.Unlock()
	if restart {
		if err := r.source.Stop(); err != nil {
			r.logger.Warn("stopping capture for restart: %v", err)
		}
	}

	r.mu.Lock()
	r.log.Reset()
	r.last = nil
	r.stopped = 0
	r.start = time.Now()
	r.recording = true
	r.mu.Unlock()

	if err := r.source.Start(r); err != nil {
		r.mu.Lock()
		r.recording = false
		r.mu.Unlock()
		return fmt.Errorf("starting capture: %w", err)
	}
	r.logger.Info("recording started")
	return nil
}

// Stop ends recording and returns the recorded events. Callbacks arriving
// after Stop are dropped. Stopping an idle recorder returns the current
// log.
func (r *Recorder) Stop() Events {
	r.ctl.Lock()
	defer r.ctl.Unlock()

	r.mu.Lock()
	was := r.recording
	if was {
		r.recording = false
		r.stopped = time.Since(r.start)
	}
	r.mu.Unlock()

	if was {
		if err := r.source.Stop(); err != nil {
			r.logger.Warn("stopping capture: %v", err)
		}
		r.logger.Info("recording stopped: %d events", r.log.Len())
	}
	return r.log.Snapshot()
}

// IsRecording reports whether the recorder is capturing.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Elapsed returns the time since recording started, or the length of the
// last recording when idle.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return time.Since(r.start)
	}
	return r.stopped
}

// add appends the event built by fn if recording and reports whether it
// did. fn receives the offset and runs under the recorder lock.
func (r *Recorder) add(fn func(offset time.Duration) Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return false
	}
	r.log.Append(fn(time.Since(r.start)))
	return true
}

// OnMove implements device.Listener.
func (r *Recorder) OnMove(x, y int) {
	r.add(func(offset time.Duration) Event {
		pos := mouse.Position{X: x, Y: y}
		ev := Move{Position: pos, Time: offset}
		if r.last != nil {
			prev := *r.last
			ev.Delta = pos.Sub(prev)
			ev.Previous = &prev
		}
		r.last = &pos
		return ev
	})
}

// OnClick implements device.Listener.
func (r *Recorder) OnClick(x, y int, button string, pressed bool) {
	token := mouse.Canonical(button)
	added := r.add(func(offset time.Duration) Event {
		return Click{Position: mouse.Position{X: x, Y: y}, Button: token, Pressed: pressed, Time: offset}
	})
	if added {
		action := "released"
		if pressed {
			action = "pressed"
		}
		r.logger.Info("Mouse %s at %d,%d with %s", action, x, y, token)
	}
}

// OnScroll implements device.Listener.
func (r *Recorder) OnScroll(x, y, dx, dy int) {
	r.add(func(offset time.Duration) Event {
		return Scroll{Position: mouse.Position{X: x, Y: y}, Delta: mouse.Position{X: dx, Y: dy}, Time: offset}
	})
}

// OnKeyPress implements device.Listener.
func (r *Recorder) OnKeyPress(token string) {
	k := key.Canonical(token)
	r.add(func(offset time.Duration) Event {
		return KeyPress{Key: k, Time: offset}
	})
}

// OnKeyRelease implements device.Listener.
func (r *Recorder) OnKeyRelease(token string) {
	k := key.Canonical(token)
	r.add(func(offset time.Duration) Event {
		return KeyRelease{Key: k, Time: offset}
	})
}

var _ device.Listener = (*Recorder)(nil)
