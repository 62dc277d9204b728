package macro

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dshills/macrokit/internal/device"
	"github.com/dshills/macrokit/internal/input/mouse"
	"github.com/dshills/macrokit/internal/logging"
)

// Looper repeats playback passes. It owns a stop flag separate from the
// player's, so a Stop issued between two passes is never lost.
type Looper struct {
	player  *Player
	sink    device.Sink
	logger  *logging.Logger
	release bool
	onLoop  func(n int)

	loops   atomic.Int64
	running atomic.Bool
	stop    atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
}

// LooperOption configures a Looper.
type LooperOption func(*Looper)

// WithReleaseButtons controls whether the left and right buttons are
// released after every pass. The default is true.
func WithReleaseButtons(release bool) LooperOption {
	return func(l *Looper) {
		l.release = release
	}
}

// OnLoop registers a callback invoked with the loop count after each pass.
func OnLoop(fn func(n int)) LooperOption {
	return func(l *Looper) {
		l.onLoop = fn
	}
}

// WithLooperLogger sets the looper's logger.
func WithLooperLogger(lg *logging.Logger) LooperOption {
	return func(l *Looper) {
		l.logger = logging.OrNop(lg).WithComponent("looper")
	}
}

// NewLooper creates a looper driving player. sink is used to release
// buttons between passes.
func NewLooper(player *Player, sink device.Sink, opts ...LooperOption) *Looper {
	l := &Looper{
		player:  player,
		sink:    sink,
		logger:  logging.Nop(),
		release: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Result is the outcome of an asynchronous Run.
type Result struct {
	Loops int
	Err   error
}

// Run plays at least one pass and keeps going while continuous reports
// true and Stop has not been called. It returns the number of passes
// played. Stop ends Run with a nil error.
func (l *Looper) Run(ctx context.Context, continuous func() bool) (int, error) {
	runCtx, err := l.begin(ctx)
	if err != nil {
		return l.Loops(), err
	}
	defer l.end()
	return l.loop(ctx, runCtx, continuous)
}

// Start is Run on a new goroutine. The looper is marked running before
// Start returns, so an immediate Stop is honoured. The result is delivered
// on the returned channel, which is then closed.
func (l *Looper) Start(ctx context.Context, continuous func() bool) (<-chan Result, error) {
	runCtx, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	done := make(chan Result, 1)
	go func() {
		defer close(done)
		n, err := l.loop(ctx, runCtx, continuous)
		l.end()
		done <- Result{Loops: n, Err: err}
	}()
	return done, nil
}

func (l *Looper) begin(ctx context.Context) (context.Context, error) {
	if !l.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyPlaying
	}
	runCtx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	l.cancel = cancel
	l.stop.Store(false)
	l.mu.Unlock()

	l.loops.Store(0)
	return runCtx, nil
}

func (l *Looper) end() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.mu.Unlock()
	l.running.Store(false)
}

func (l *Looper) loop(parent, ctx context.Context, continuous func() bool) (int, error) {
	for {
		stats, err := l.player.Play(ctx)
		if errors.Is(err, ErrAlreadyPlaying) {
			return l.Loops(), err
		}
		if stats.Events == 0 {
			return l.Loops(), nil
		}

		if l.release {
			l.releaseButtons()
		}
		n := int(l.loops.Add(1))
		if l.onLoop != nil {
			l.onLoop(n)
		}

		if err != nil {
			if l.stop.Load() && parent.Err() == nil {
				return n, nil
			}
			return n, err
		}
		if l.stop.Load() || stats.Interrupted {
			return n, nil
		}
		if continuous == nil || !continuous() {
			return n, nil
		}
		l.logger.Debug("starting loop %d", n+1)
	}
}

// Stop ends the current pass and prevents further passes.
func (l *Looper) Stop() {
	l.mu.Lock()
	l.stop.Store(true)
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	l.player.Stop()
}

// Loops returns the number of passes completed in the current or last Run.
func (l *Looper) Loops() int {
	return int(l.loops.Load())
}

// IsRunning reports whether Run is active.
func (l *Looper) IsRunning() bool {
	return l.running.Load()
}

func (l *Looper) releaseButtons() {
	for _, b := range []mouse.Button{mouse.ButtonLeft, mouse.ButtonRight} {
		if err := l.sink.ButtonUp(b); err != nil {
			l.logger.Warn("could not release %s button: %v", b, err)
		}
	}
}
