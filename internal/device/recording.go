package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/dshills/macrokit/internal/input/key"
	"github.com/dshills/macrokit/internal/input/mouse"
)

// ActionKind identifies a recorded sink call.
type ActionKind uint8

const (
	ActionMove ActionKind = iota
	ActionButtonDown
	ActionButtonUp
	ActionScroll
	ActionKeyDown
	ActionKeyUp
)

var actionNames = [...]string{
	ActionMove:       "move",
	ActionButtonDown: "button_down",
	ActionButtonUp:   "button_up",
	ActionScroll:     "scroll",
	ActionKeyDown:    "key_down",
	ActionKeyUp:      "key_up",
}

func (k ActionKind) String() string {
	if int(k) < len(actionNames) {
		return actionNames[k]
	}
	return fmt.Sprintf("ActionKind(%d)", k)
}

// Action is one call made on a RecordingSink.
type Action struct {
	Kind   ActionKind
	X, Y   int
	Button mouse.Button
	Delta  int
	Key    key.Event

	// At is the time since the sink was created or last reset.
	At time.Duration
}

func (a Action) String() string {
	switch a.Kind {
	case ActionMove:
		return fmt.Sprintf("move %d,%d", a.X, a.Y)
	case ActionButtonDown, ActionButtonUp:
		return fmt.Sprintf("%s %s", a.Kind, a.Button)
	case ActionScroll:
		return fmt.Sprintf("scroll %d", a.Delta)
	default:
		return fmt.Sprintf("%s %s", a.Kind, a.Key)
	}
}

// RecordingSink stores every action in memory with its timestamp. It is
// used to verify playback without touching the real input stack.
type RecordingSink struct {
	mu      sync.Mutex
	start   time.Time
	actions []Action

	// Fail, when set, is consulted before recording an action; a non-nil
	// result is returned to the caller and the action is not recorded.
	Fail func(Action) error
}

// NewRecordingSink creates an empty RecordingSink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{start: time.Now()}
}

func (s *RecordingSink) record(a Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.At = time.Since(s.start)
	if s.Fail != nil {
		if err := s.Fail(a); err != nil {
			return err
		}
	}
	s.actions = append(s.actions, a)
	return nil
}

// Actions returns a copy of the recorded actions.
func (s *RecordingSink) Actions() []Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Action, len(s.actions))
	copy(out, s.actions)
	return out
}

// Reset clears recorded actions and restarts the clock.
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = nil
	s.start = time.Now()
}

func (s *RecordingSink) MoveTo(x, y int) error {
	return s.record(Action{Kind: ActionMove, X: x, Y: y})
}

func (s *RecordingSink) ButtonDown(b mouse.Button) error {
	return s.record(Action{Kind: ActionButtonDown, Button: b})
}

func (s *RecordingSink) ButtonUp(b mouse.Button) error {
	return s.record(Action{Kind: ActionButtonUp, Button: b})
}

func (s *RecordingSink) Scroll(dy int) error {
	return s.record(Action{Kind: ActionScroll, Delta: dy})
}

func (s *RecordingSink) KeyDown(ev key.Event) error {
	return s.record(Action{Kind: ActionKeyDown, Key: ev})
}

func (s *RecordingSink) KeyUp(ev key.Event) error {
	return s.record(Action{Kind: ActionKeyUp, Key: ev})
}

func (s *RecordingSink) Close() error { return nil }
