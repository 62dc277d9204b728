package screen

import (
	"context"
	"sync"
	"time"

	"github.com/dshills/macrokit/internal/logging"
)

// DefaultWatchInterval is how often a started Normalizer re-reads the
// display layout.
const DefaultWatchInterval = time.Second

// ChangeHandler is called after the bounds change.
type ChangeHandler func(old, new Bounds)

// Normalizer converts between pixel and normalized coordinates against the
// current virtual desktop.
type Normalizer struct {
	mu       sync.RWMutex
	bounds   Bounds
	provider Provider
	logger   *logging.Logger
	interval time.Duration
	handlers []ChangeHandler

	runMu   sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithInterval sets the display polling interval.
func WithInterval(d time.Duration) Option {
	return func(n *Normalizer) {
		if d > 0 {
			n.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logging.OrNop(l).WithComponent("screen")
	}
}

// OnChange registers a handler invoked when the layout changes.
func OnChange(h ChangeHandler) Option {
	return func(n *Normalizer) {
		if h != nil {
			n.handlers = append(n.handlers, h)
		}
	}
}

// New creates a Normalizer and reads the display layout once.
func New(p Provider, opts ...Option) *Normalizer {
	n := &Normalizer{
		bounds:   DefaultBounds,
		provider: p,
		logger:   logging.Nop(),
		interval: DefaultWatchInterval,
	}
	for _, opt := range opts {
		opt(n)
	}
	if err := n.refresh(false); err != nil {
		n.logger.Warn("reading display layout: %v", err)
	}
	return n
}

// Refresh re-reads the display layout and calls the change handlers if it
// differs. On failure the previous bounds are kept and the error is
// returned.
func (n *Normalizer) Refresh() error {
	return n.refresh(true)
}

// refresh reads the layout. The initial read in New passes notify=false so
// handlers only see real changes.
func (n *Normalizer) refresh(notify bool) error {
	if n.provider == nil {
		return ErrNoDisplays
	}
	rects, err := n.provider.Displays()
	if err != nil {
		return err
	}
	b, err := BoundsOf(rects)
	if err != nil {
		return err
	}

	n.mu.Lock()
	old := n.bounds
	n.bounds = b
	handlers := n.handlers
	n.mu.Unlock()

	if notify && old != b {
		n.logger.Info("display layout changed: %s -> %s", old, b)
		for _, h := range handlers {
			h(old, b)
		}
	}
	return nil
}

// Bounds returns the current virtual desktop bounds.
func (n *Normalizer) Bounds() Bounds {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.bounds
}

// Normalize maps an absolute pixel to normalized coordinates.
func (n *Normalizer) Normalize(x, y int) (float64, float64) {
	return n.Bounds().Normalize(x, y)
}

// Denormalize maps normalized coordinates to an absolute pixel.
func (n *Normalizer) Denormalize(nx, ny float64) (int, int) {
	return n.Bounds().Denormalize(nx, ny)
}

// Remap converts a pixel recorded under the layout from into the current
// layout. A zero from returns the point unchanged.
func (n *Normalizer) Remap(from Bounds, x, y int) (int, int) {
	if from.IsZero() {
		return x, y
	}
	cur := n.Bounds()
	if from == cur {
		return x, y
	}
	nx, ny := from.Normalize(x, y)
	return cur.Denormalize(nx, ny)
}

// Start polls the display layout until ctx is done or Stop is called.
// Calling Start on a running Normalizer does nothing.
func (n *Normalizer) Start(ctx context.Context) {
	n.runMu.Lock()
	defer n.runMu.Unlock()
	if n.running {
		return
	}
	ctx, n.cancel = context.WithCancel(ctx)
	n.running = true

	n.wg.Add(1)
	go n.pollLoop(ctx)
}

// Stop ends polling and waits for the watcher goroutine to exit.
func (n *Normalizer) Stop() {
	n.runMu.Lock()
	if !n.running {
		n.runMu.Unlock()
		return
	}
	n.cancel()
	n.running = false
	n.runMu.Unlock()

	n.wg.Wait()
}

func (n *Normalizer) pollLoop(ctx context.Context) {
	defer n.wg.Done()

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := n.Refresh(); err != nil {
				n.logger.Debug("display refresh failed: %v", err)
			}
		}
	}
}
