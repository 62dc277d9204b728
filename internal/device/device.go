package device

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/dshills/macrokit/internal/input/key"
	"github.com/dshills/macrokit/internal/input/mouse"
	"github.com/dshills/macrokit/internal/logging"
)

var (
	// ErrUnsupported is returned when a backend is not available on this
	// platform or its helper tools are missing.
	ErrUnsupported = errors.New("device backend unsupported")

	// ErrAlreadyStarted is returned when a running Source is started again.
	ErrAlreadyStarted = errors.New("source already started")

	// ErrUnknownButton is returned when a sink cannot press a button.
	ErrUnknownButton = errors.New("unknown button")

	// ErrUnknownKey is returned when a sink has no mapping for a key.
	ErrUnknownKey = errors.New("unknown key")
)

// Listener receives captured input. Methods may be called from any
// goroutine.
type Listener interface {
	OnMove(x, y int)
	OnClick(x, y int, button string, pressed bool)
	OnScroll(x, y, dx, dy int)
	OnKeyPress(token string)
	OnKeyRelease(token string)
}

// Source captures global input.
type Source interface {
	// Start begins delivering input to l. It returns once capture is
	// running.
	Start(l Listener) error

	// Stop ends capture. No callbacks are made after Stop returns.
	Stop() error
}

// Sink injects synthetic input.
type Sink interface {
	MoveTo(x, y int) error
	ButtonDown(b mouse.Button) error
	ButtonUp(b mouse.Button) error
	Scroll(dy int) error
	KeyDown(ev key.Event) error
	KeyUp(ev key.Event) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendAuto    = "auto"
	BackendXDoTool = "xdotool"
	BackendWindows = "windows"
	BackendDryRun  = "dryrun"
)

// Config selects and configures a backend.
type Config struct {
	// Backend is one of the Backend constants.
	Backend string

	// CaptureCommand is the command line used by the xdotool backend to
	// capture input.
	CaptureCommand string

	// InjectCommand is the xdotool command line prefix.
	InjectCommand string

	Logger *logging.Logger
}

// Open returns the Source and Sink for cfg.Backend.
func Open(cfg Config) (Source, Sink, error) {
	logger := logging.OrNop(cfg.Logger).WithComponent("device")

	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendAuto
	}

	switch backend {
	case BackendDryRun:
		return NopSource{}, NewDryRunSink(logger), nil
	case BackendXDoTool:
		return openXDoTool(cfg, logger)
	case BackendWindows:
		return openWindows(logger)
	case BackendAuto:
		var (
			src  Source
			sink Sink
			err  error
		)
		if runtime.GOOS == "windows" {
			src, sink, err = openWindows(logger)
		} else {
			src, sink, err = openXDoTool(cfg, logger)
		}
		if err == nil {
			return src, sink, nil
		}
		logger.Warn("no input backend available, falling back to dry run: %v", err)
		return NopSource{}, NewDryRunSink(logger), nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupported, cfg.Backend)
	}
}

func openXDoTool(cfg Config, logger *logging.Logger) (Source, Sink, error) {
	capture := cfg.CaptureCommand
	if capture == "" {
		capture = DefaultCaptureCommand
	}
	inject := cfg.InjectCommand
	if inject == "" {
		inject = DefaultInjectCommand
	}
	for _, line := range []string{capture, inject} {
		if err := lookCommand(line); err != nil {
			return nil, nil, err
		}
	}

	sink, err := NewXDoToolSink(inject, logger)
	if err != nil {
		return nil, nil, err
	}
	keymap, err := LoadKeymap()
	if err != nil {
		logger.Debug("xmodmap unavailable, using built-in keymap: %v", err)
	}
	return NewXInputSource(capture, keymap, logger), sink, nil
}

// lookCommand checks that the program named by a command line exists.
func lookCommand(line string) error {
	argv, err := shellquote.Split(line)
	if err != nil {
		return fmt.Errorf("parsing command %q: %w", line, err)
	}
	if len(argv) == 0 {
		return fmt.Errorf("%w: empty command", ErrUnsupported)
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return fmt.Errorf("%w: %s not found", ErrUnsupported, argv[0])
	}
	return nil
}

// NopSource captures nothing.
type NopSource struct{}

// Start does nothing.
func (NopSource) Start(Listener) error { return nil }

// Stop does nothing.
func (NopSource) Stop() error { return nil }
