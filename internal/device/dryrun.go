package device

import (
	"github.com/dshills/macrokit/internal/input/key"
	"github.com/dshills/macrokit/internal/input/mouse"
	"github.com/dshills/macrokit/internal/logging"
)

// DryRunSink logs every action instead of injecting it.
type DryRunSink struct {
	logger *logging.Logger
}

// NewDryRunSink creates a DryRunSink.
func NewDryRunSink(logger *logging.Logger) *DryRunSink {
	return &DryRunSink{logger: logging.OrNop(logger).WithField("sink", "dryrun")}
}

func (s *DryRunSink) MoveTo(x, y int) error {
	s.logger.Info("move to %d,%d", x, y)
	return nil
}

func (s *DryRunSink) ButtonDown(b mouse.Button) error {
	s.logger.Info("press %s", b)
	return nil
}

func (s *DryRunSink) ButtonUp(b mouse.Button) error {
	s.logger.Info("release %s", b)
	return nil
}

func (s *DryRunSink) Scroll(dy int) error {
	s.logger.Info("scroll %d", dy)
	return nil
}

func (s *DryRunSink) KeyDown(ev key.Event) error {
	s.logger.Info("key down %s", ev)
	return nil
}

func (s *DryRunSink) KeyUp(ev key.Event) error {
	s.logger.Info("key up %s", ev)
	return nil
}

func (s *DryRunSink) Close() error { return nil }
