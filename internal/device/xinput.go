package device

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/kballard/go-shellquote"

	"github.com/dshills/macrokit/internal/logging"
)

// DefaultCaptureCommand reports every pointer and keyboard event on the
// root window.
const DefaultCaptureCommand = "xinput test-xi2 --root"

// XInputSource captures X11 input by running an XI2 event dumper and
// parsing its output.
type XInputSource struct {
	command string
	keymap  Keymap
	logger  *logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewXInputSource creates a source running command. A nil keymap uses the
// built-in US layout.
func NewXInputSource(command string, keymap Keymap, logger *logging.Logger) *XInputSource {
	if keymap == nil {
		keymap = DefaultKeymap()
	}
	return &XInputSource{
		command: command,
		keymap:  keymap,
		logger:  logging.OrNop(logger).WithField("source", "xinput"),
	}
}

// Start launches the capture command.
func (s *XInputSource) Start(l Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadyStarted
	}

	argv, err := shellquote.Split(s.command)
	if err != nil {
		return fmt.Errorf("parsing capture command: %w", err)
	}
	if len(argv) == 0 {
		return fmt.Errorf("%w: empty capture command", ErrUnsupported)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("capture pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("starting %s: %w", argv[0], err)
	}

	gated := &gatedListener{next: l}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := ParseXI2(stdout, s.keymap, gated); err != nil && ctx.Err() == nil {
			s.logger.Warn("reading capture output: %v", err)
		}
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			s.logger.Warn("capture command exited: %v", err)
		}
	}()

	s.cancel = func() {
		gated.close()
		cancel()
	}
	s.done = done
	s.logger.Debug("capture started: %s", s.command)
	return nil
}

// Stop kills the capture command and waits for the reader to finish.
func (s *XInputSource) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	s.logger.Debug("capture stopped")
	return nil
}

// gatedListener drops callbacks once closed.
type gatedListener struct {
	mu     sync.RWMutex
	next   Listener
	closed bool
}

func (g *gatedListener) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

func (g *gatedListener) with(fn func(Listener)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.closed {
		fn(g.next)
	}
}

func (g *gatedListener) OnMove(x, y int) {
	g.with(func(l Listener) { l.OnMove(x, y) })
}

func (g *gatedListener) OnClick(x, y int, button string, pressed bool) {
	g.with(func(l Listener) { l.OnClick(x, y, button, pressed) })
}

func (g *gatedListener) OnScroll(x, y, dx, dy int) {
	g.with(func(l Listener) { l.OnScroll(x, y, dx, dy) })
}

func (g *gatedListener) OnKeyPress(token string) {
	g.with(func(l Listener) { l.OnKeyPress(token) })
}

func (g *gatedListener) OnKeyRelease(token string) {
	g.with(func(l Listener) { l.OnKeyRelease(token) })
}
