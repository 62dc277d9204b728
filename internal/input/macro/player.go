package macro

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dshills/macrokit/internal/device"
	"github.com/dshills/macrokit/internal/input/key"
	"github.com/dshills/macrokit/internal/input/mouse"
	"github.com/dshills/macrokit/internal/logging"
)

// Playback defaults.
const (
	DefaultPollInterval     = 10 * time.Millisecond
	DefaultScrollMultiplier = 10
)

// Stats summarizes one playback pass.
type Stats struct {
	// Events is the number of events in the played snapshot.
	Events int
	// Dispatched counts events injected successfully.
	Dispatched int
	// Skipped counts events that were logged and skipped.
	Skipped int
	// Interrupted is set when Stop or context cancellation ended the pass
	// early.
	Interrupted bool
	Elapsed     time.Duration
}

// Player replays an EventLog through a device.Sink.
type Player struct {
	log    *EventLog
	sink   device.Sink
	logger *logging.Logger

	poll      time.Duration
	scrollMul int
	remap     atomic.Pointer[RemapFunc]

	playing atomic.Bool
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithPollInterval bounds how long Stop may take to interrupt a wait.
func WithPollInterval(d time.Duration) PlayerOption {
	return func(p *Player) {
		if d > 0 {
			p.poll = d
		}
	}
}

// WithScrollMultiplier scales recorded wheel steps before injection.
func WithScrollMultiplier(n int) PlayerOption {
	return func(p *Player) {
		if n > 0 {
			p.scrollMul = n
		}
	}
}

// RemapFunc transforms a recorded position into the one to inject.
type RemapFunc func(mouse.Position) mouse.Position

// WithRemap transforms every position before it is injected.
func WithRemap(fn RemapFunc) PlayerOption {
	return func(p *Player) {
		p.SetRemap(fn)
	}
}

// WithPlayerLogger sets the player's logger.
func WithPlayerLogger(l *logging.Logger) PlayerOption {
	return func(p *Player) {
		p.logger = logging.OrNop(l).WithComponent("player")
	}
}

// NewPlayer creates a player for log.
func NewPlayer(log *EventLog, sink device.Sink, opts ...PlayerOption) *Player {
	p := &Player{
		log:       log,
		sink:      sink,
		logger:    logging.Nop(),
		poll:      DefaultPollInterval,
		scrollMul: DefaultScrollMultiplier,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Log returns the log the player reads.
func (p *Player) Log() *EventLog {
	return p.log
}

// SetRemap replaces the position transform. A nil fn disables remapping.
// A pass already running sees the new transform from its next event.
func (p *Player) SetRemap(fn RemapFunc) {
	if fn == nil {
		p.remap.Store(nil)
		return
	}
	p.remap.Store(&fn)
}

// Play replays a snapshot of the log once, blocking until it finishes or
// is interrupted. An empty log is a no-op. Stop ends playback with a nil
// error; context cancellation returns the context's error.
func (p *Player) Play(ctx context.Context) (Stats, error) {
	events := p.log.Snapshot()
	if len(events) == 0 {
		p.logger.Info("no events to play back")
		return Stats{}, nil
	}
	if !p.playing.CompareAndSwap(false, true) {
		return Stats{}, ErrAlreadyPlaying
	}
	defer p.playing.Store(false)

	stats := p.playEvents(ctx, events)
	p.logger.Debug("playback pass done: %d dispatched, %d skipped, interrupted=%v",
		stats.Dispatched, stats.Skipped, stats.Interrupted)
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

// Stop requests the running playback to end. It takes effect within one
// poll interval, or before the next event is injected.
func (p *Player) Stop() {
	p.playing.Store(false)
}

// IsPlaying reports whether a playback pass is running.
func (p *Player) IsPlaying() bool {
	return p.playing.Load()
}

func (p *Player) active(ctx context.Context) bool {
	return p.playing.Load() && ctx.Err() == nil
}

func (p *Player) playEvents(ctx context.Context, events Events) Stats {
	stats := Stats{Events: len(events)}
	start := time.Now()

	for _, ev := range events {
		if !p.active(ctx) {
			stats.Interrupted = true
			break
		}
		if wait := ev.Offset() - time.Since(start); wait > 0 {
			if !p.sleep(ctx, wait) {
				stats.Interrupted = true
				break
			}
		}
		if !p.active(ctx) {
			stats.Interrupted = true
			break
		}
		if p.dispatch(ev) {
			stats.Dispatched++
		} else {
			stats.Skipped++
		}
	}
	stats.Elapsed = time.Since(start)
	return stats
}

// sleep waits for d in steps of at most the poll interval, returning false
// as soon as playback is stopped or ctx is done.
func (p *Player) sleep(ctx context.Context, d time.Duration) bool {
	deadline := time.Now().Add(d)
	timer := time.NewTimer(0)
	<-timer.C
	defer timer.Stop()

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return true
		}
		timer.Reset(min(p.poll, remaining))
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
		}
		if !p.playing.Load() {
			return false
		}
	}
}

func (p *Player) position(pos mouse.Position) mouse.Position {
	if fn := p.remap.Load(); fn != nil {
		return (*fn)(pos)
	}
	return pos
}

func (p *Player) moveTo(pos mouse.Position) bool {
	pos = p.position(pos)
	if err := p.sink.MoveTo(pos.X, pos.Y); err != nil {
		p.logger.Warn("could not move to %d,%d: %v", pos.X, pos.Y, err)
		return false
	}
	return true
}

// dispatch injects one event and reports whether it succeeded.
func (p *Player) dispatch(ev Event) bool {
	switch e := ev.(type) {
	case Move:
		return p.moveTo(e.Position)

	case Click:
		if !p.moveTo(e.Position) {
			return false
		}
		b := mouse.Classify(e.Button)
		if b != mouse.ButtonLeft && b != mouse.ButtonRight {
			p.logger.Warn("unknown button %q, skipping", e.Button)
			return false
		}
		var err error
		if e.Pressed {
			err = p.sink.ButtonDown(b)
		} else {
			err = p.sink.ButtonUp(b)
		}
		if err != nil {
			p.logger.Warn("could not %s: %v", Describe(e), err)
			return false
		}
		return true

	case Scroll:
		if !p.moveTo(e.Position) {
			return false
		}
		if err := p.sink.Scroll(e.Delta.Y * p.scrollMul); err != nil {
			p.logger.Warn("could not scroll: %v", err)
			return false
		}
		return true

	case KeyPress:
		k, ok := key.Lookup(e.Key)
		if !ok {
			p.logger.Warn("could not press key %q", e.Key)
			return false
		}
		if err := p.sink.KeyDown(k); err != nil {
			p.logger.Warn("could not press key %q: %v", e.Key, err)
			return false
		}
		return true

	case KeyRelease:
		k, ok := key.Lookup(e.Key)
		if !ok {
			p.logger.Warn("could not release key %q", e.Key)
			return false
		}
		if err := p.sink.KeyUp(k); err != nil {
			p.logger.Warn("could not release key %q: %v", e.Key, err)
			return false
		}
		return true

	case Unknown:
		p.logger.Warn("skipping unknown event type %q", e.Type)
		return false

	default:
		p.logger.Warn("skipping unsupported event %T", ev)
		return false
	}
}
