package macro

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/dshills/macrokit/internal/input/mouse"
)

// Event kinds as written to macro files.
const (
	KindMove       = "move"
	KindClick      = "click"
	KindScroll     = "scroll"
	KindKeyPress   = "key_press"
	KindKeyRelease = "key_release"
)

// Event is a single recorded input action.
type Event interface {
	// Offset is the time since recording started.
	Offset() time.Duration

	// Kind returns the event type name.
	Kind() string

	event()
}

// Move is a pointer motion to an absolute position.
type Move struct {
	Position mouse.Position
	// Delta is Position minus the previously recorded move position, or
	// zero for the first move of a recording.
	Delta mouse.Position
	// Previous is the previously recorded position, nil for the first move.
	Previous *mouse.Position
	Time     time.Duration
}

// Click is a mouse button press or release.
type Click struct {
	Position mouse.Position
	// Button is the canonical button token, such as "left".
	Button  string
	Pressed bool
	Time    time.Duration
}

// Scroll is a wheel movement at a position.
type Scroll struct {
	Position mouse.Position
	Delta    mouse.Position
	Time     time.Duration
}

// KeyPress is a key going down. Key is the canonical key token.
type KeyPress struct {
	Key  string
	Time time.Duration
}

// KeyRelease is a key going up.
type KeyRelease struct {
	Key  string
	Time time.Duration
}

// Unknown is an event of a type this version does not understand. It is
// kept so files written by newer versions still load; playback skips it.
type Unknown struct {
	Type string
	Time time.Duration
}

func (e Move) Offset() time.Duration       { return e.Time }
func (e Click) Offset() time.Duration      { return e.Time }
func (e Scroll) Offset() time.Duration     { return e.Time }
func (e KeyPress) Offset() time.Duration   { return e.Time }
func (e KeyRelease) Offset() time.Duration { return e.Time }
func (e Unknown) Offset() time.Duration    { return e.Time }

func (Move) Kind() string       { return KindMove }
func (Click) Kind() string      { return KindClick }
func (Scroll) Kind() string     { return KindScroll }
func (KeyPress) Kind() string   { return KindKeyPress }
func (KeyRelease) Kind() string { return KindKeyRelease }
func (e Unknown) Kind() string  { return e.Type }

func (Move) event()       {}
func (Click) event()      {}
func (Scroll) event()     {}
func (KeyPress) event()   {}
func (KeyRelease) event() {}
func (Unknown) event()    {}

// Describe returns a short human-readable form of ev for logs.
func Describe(ev Event) string {
	switch e := ev.(type) {
	case Move:
		return fmt.Sprintf("move to %d,%d", e.Position.X, e.Position.Y)
	case Click:
		state := "released"
		if e.Pressed {
			state = "pressed"
		}
		return fmt.Sprintf("%s %s at %d,%d", e.Button, state, e.Position.X, e.Position.Y)
	case Scroll:
		return fmt.Sprintf("scroll %d,%d at %d,%d", e.Delta.X, e.Delta.Y, e.Position.X, e.Position.Y)
	case KeyPress:
		return fmt.Sprintf("key %s down", e.Key)
	case KeyRelease:
		return fmt.Sprintf("key %s up", e.Key)
	case Unknown:
		return fmt.Sprintf("unknown %q", e.Type)
	default:
		return fmt.Sprintf("%T", ev)
	}
}

// wireEvent is the JSON form of every event kind. Time is in seconds.
type wireEvent struct {
	Type         string  `json:"type"`
	Position     *[2]int `json:"position,omitempty"`
	Delta        *[2]int `json:"delta,omitempty"`
	LastPosition *[2]int `json:"last_position,omitempty"`
	Button       string  `json:"button,omitempty"`
	Pressed      *bool   `json:"pressed,omitempty"`
	Key          string  `json:"key,omitempty"`
	Time         float64 `json:"time"`
}

// moveWire keeps last_position as an explicit null for the first move.
type moveWire struct {
	Type         string  `json:"type"`
	Position     [2]int  `json:"position"`
	Delta        [2]int  `json:"delta"`
	LastPosition *[2]int `json:"last_position"`
	Time         float64 `json:"time"`
}

func pair(p mouse.Position) [2]int { return [2]int{p.X, p.Y} }

func position(v *[2]int) mouse.Position {
	if v == nil {
		return mouse.Position{}
	}
	return mouse.Position{X: v[0], Y: v[1]}
}

func seconds(d time.Duration) float64 { return d.Seconds() }

func duration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

func encodeEvent(ev Event) (any, error) {
	switch e := ev.(type) {
	case Move:
		w := moveWire{Type: KindMove, Position: pair(e.Position), Delta: pair(e.Delta), Time: seconds(e.Time)}
		if e.Previous != nil {
			prev := pair(*e.Previous)
			w.LastPosition = &prev
		}
		return w, nil
	case Click:
		pos := pair(e.Position)
		pressed := e.Pressed
		return wireEvent{Type: KindClick, Position: &pos, Button: e.Button, Pressed: &pressed, Time: seconds(e.Time)}, nil
	case Scroll:
		pos, delta := pair(e.Position), pair(e.Delta)
		return wireEvent{Type: KindScroll, Position: &pos, Delta: &delta, Time: seconds(e.Time)}, nil
	case KeyPress:
		return wireEvent{Type: KindKeyPress, Key: e.Key, Time: seconds(e.Time)}, nil
	case KeyRelease:
		return wireEvent{Type: KindKeyRelease, Key: e.Key, Time: seconds(e.Time)}, nil
	case Unknown:
		return wireEvent{Type: e.Type, Time: seconds(e.Time)}, nil
	default:
		return nil, fmt.Errorf("cannot encode event %T", ev)
	}
}

func decodeEvent(w wireEvent) Event {
	t := duration(w.Time)
	switch w.Type {
	case KindMove:
		ev := Move{Position: position(w.Position), Delta: position(w.Delta), Time: t}
		if w.LastPosition != nil {
			prev := position(w.LastPosition)
			ev.Previous = &prev
		}
		return ev
	case KindClick:
		return Click{Position: position(w.Position), Button: mouse.Canonical(w.Button), Pressed: w.Pressed != nil && *w.Pressed, Time: t}
	case KindScroll:
		return Scroll{Position: position(w.Position), Delta: position(w.Delta), Time: t}
	case KindKeyPress:
		return KeyPress{Key: w.Key, Time: t}
	case KindKeyRelease:
		return KeyRelease{Key: w.Key, Time: t}
	default:
		return Unknown{Type: w.Type, Time: t}
	}
}

// Events is an ordered event list with a JSON encoding.
type Events []Event

// Duration returns the offset of the last event, or zero for an empty list.
func (es Events) Duration() time.Duration {
	if len(es) == 0 {
		return 0
	}
	return es[len(es)-1].Offset()
}

// MarshalJSON encodes the events as an array of typed objects.
func (es Events) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(es))
	for i, ev := range es {
		w, err := encodeEvent(ev)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		out = append(out, w)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an array of typed objects. Unrecognised types
// decode as Unknown.
func (es *Events) UnmarshalJSON(data []byte) error {
	var raw []wireEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Events, 0, len(raw))
	for _, w := range raw {
		out = append(out, decodeEvent(w))
	}
	*es = out
	return nil
}
