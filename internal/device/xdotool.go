package device

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/kballard/go-shellquote"

	"github.com/dshills/macrokit/internal/input/key"
	"github.com/dshills/macrokit/internal/input/mouse"
	"github.com/dshills/macrokit/internal/logging"
)

// DefaultInjectCommand is the xdotool binary.
const DefaultInjectCommand = "xdotool"

// Runner executes a command line. It exists so tests can observe the
// arguments passed to xdotool.
type Runner func(ctx context.Context, argv []string) error

func execRunner(ctx context.Context, argv []string) error {
	out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("%s: %w: %s", argv[0], err, out)
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}

// XDoToolSink injects input through xdotool, one process per action.
type XDoToolSink struct {
	prefix []string
	run    Runner
	logger *logging.Logger
}

// NewXDoToolSink creates a sink for the given command prefix, for example
// "xdotool" or "xdotool --sync".
func NewXDoToolSink(command string, logger *logging.Logger) (*XDoToolSink, error) {
	prefix, err := shellquote.Split(command)
	if err != nil {
		return nil, fmt.Errorf("parsing inject command: %w", err)
	}
	if len(prefix) == 0 {
		return nil, fmt.Errorf("%w: empty inject command", ErrUnsupported)
	}
	return &XDoToolSink{
		prefix: prefix,
		run:    execRunner,
		logger: logging.OrNop(logger).WithField("sink", "xdotool"),
	}, nil
}

// WithRunner replaces the command runner.
func (s *XDoToolSink) WithRunner(r Runner) *XDoToolSink {
	s.run = r
	return s
}

func (s *XDoToolSink) exec(args ...string) error {
	argv := make([]string, 0, len(s.prefix)+len(args))
	argv = append(argv, s.prefix...)
	argv = append(argv, args...)
	s.logger.Debug("%s", shellquote.Join(argv...))
	return s.run(context.Background(), argv)
}

func (s *XDoToolSink) MoveTo(x, y int) error {
	return s.exec("mousemove", "--", strconv.Itoa(x), strconv.Itoa(y))
}

func (s *XDoToolSink) ButtonDown(b mouse.Button) error {
	n, err := xButton(b)
	if err != nil {
		return err
	}
	return s.exec("mousedown", n)
}

func (s *XDoToolSink) ButtonUp(b mouse.Button) error {
	n, err := xButton(b)
	if err != nil {
		return err
	}
	return s.exec("mouseup", n)
}

// Scroll clicks the wheel |dy| times, up for positive dy.
func (s *XDoToolSink) Scroll(dy int) error {
	if dy == 0 {
		return nil
	}
	button := "4"
	if dy < 0 {
		button = "5"
		dy = -dy
	}
	return s.exec("click", "--repeat", strconv.Itoa(dy), "--delay", "1", button)
}

func (s *XDoToolSink) KeyDown(ev key.Event) error {
	sym, ok := Keysym(ev)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, ev)
	}
	return s.exec("keydown", sym)
}

func (s *XDoToolSink) KeyUp(ev key.Event) error {
	sym, ok := Keysym(ev)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, ev)
	}
	return s.exec("keyup", sym)
}

func (s *XDoToolSink) Close() error { return nil }

func xButton(b mouse.Button) (string, error) {
	switch b {
	case mouse.ButtonLeft:
		return "1", nil
	case mouse.ButtonMiddle:
		return "2", nil
	case mouse.ButtonRight:
		return "3", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownButton, b)
	}
}
