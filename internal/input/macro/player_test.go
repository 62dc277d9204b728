package macro

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dshills/macrokit/internal/device"
	"github.com/dshills/macrokit/internal/input/mouse"
)

func pos(x, y int) mouse.Position { return mouse.Position{X: x, Y: y} }

func kinds(actions []device.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.String()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPlayOrderAndTiming(t *testing.T) {
	log := NewEventLog(
		Move{Position: pos(10, 10), Time: 0},
		Click{Position: pos(10, 10), Button: "left", Pressed: true, Time: 100 * time.Millisecond},
		Click{Position: pos(10, 10), Button: "left", Pressed: false, Time: 200 * time.Millisecond},
	)
	sink := device.NewRecordingSink()
	p := NewPlayer(log, sink)

	sink.Reset()
	stats, err := p.Play(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Dispatched != 3 || stats.Skipped != 0 || stats.Interrupted {
		t.Errorf("stats = %+v", stats)
	}

	actions := sink.Actions()
	want := []string{"move 10,10", "move 10,10", "button_down left", "move 10,10", "button_up left"}
	if got := kinds(actions); !equalStrings(got, want) {
		t.Fatalf("actions = %q, want %q", got, want)
	}

	expect := []time.Duration{0, 100, 100, 200, 200}
	for i, a := range actions {
		at := expect[i] * time.Millisecond
		if a.At < at-20*time.Millisecond || a.At > at+20*time.Millisecond {
			t.Errorf("action %d (%s) at %v, want about %v", i, a, a.At, at)
		}
	}
	if p.IsPlaying() {
		t.Error("IsPlaying after Play returned")
	}
}

func TestPlayEmptyLog(t *testing.T) {
	sink := device.NewRecordingSink()
	p := NewPlayer(NewEventLog(), sink)
	stats, err := p.Play(context.Background())
	if err != nil || stats != (Stats{}) {
		t.Errorf("Play on empty log = %+v, %v", stats, err)
	}
	if len(sink.Actions()) != 0 {
		t.Error("empty log produced actions")
	}
}

func TestPlayUnmappedKeyContinues(t *testing.T) {
	log := NewEventLog(
		KeyPress{Key: "<96>"},
		KeyPress{Key: "a"},
		KeyRelease{Key: "no-such-key"},
		KeyRelease{Key: "a"},
		Unknown{Type: "gesture"},
		KeyPress{Key: "enter"},
	)
	sink := device.NewRecordingSink()
	stats, err := NewPlayer(log, sink).Play(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Dispatched != 3 || stats.Skipped != 3 {
		t.Errorf("stats = %+v", stats)
	}
	want := []string{"key_down a", "key_up a", "key_down enter"}
	if got := kinds(sink.Actions()); !equalStrings(got, want) {
		t.Errorf("actions = %q, want %q", got, want)
	}
}

func TestPlayButtonsAndScroll(t *testing.T) {
	log := NewEventLog(
		Click{Position: pos(1, 1), Button: "middle", Pressed: true},
		Click{Position: pos(2, 2), Button: "right", Pressed: true},
		Scroll{Position: pos(3, 3), Delta: pos(4, -2)},
	)
	sink := device.NewRecordingSink()
	stats, _ := NewPlayer(log, sink, WithScrollMultiplier(10)).Play(context.Background())

	if stats.Skipped != 1 {
		t.Errorf("middle click should be skipped: %+v", stats)
	}
	want := []string{"move 1,1", "move 2,2", "button_down right", "move 3,3", "scroll -20"}
	if got := kinds(sink.Actions()); !equalStrings(got, want) {
		t.Errorf("actions = %q, want %q", got, want)
	}
}

func TestPlaySinkErrorsSkipped(t *testing.T) {
	log := NewEventLog(
		KeyPress{Key: "a"},
		Move{Position: pos(5, 5)},
	)
	sink := device.NewRecordingSink()
	sink.Fail = func(a device.Action) error {
		if a.Kind == device.ActionKeyDown {
			return errors.New("injection refused")
		}
		return nil
	}
	stats, err := NewPlayer(log, sink).Play(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Dispatched != 1 || stats.Skipped != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestPlayRemap(t *testing.T) {
	log := NewEventLog(Move{Position: pos(100, 50)})
	sink := device.NewRecordingSink()
	double := func(p mouse.Position) mouse.Position { return pos(p.X*2, p.Y*2) }
	_, _ = NewPlayer(log, sink, WithRemap(double)).Play(context.Background())

	if got := kinds(sink.Actions()); !equalStrings(got, []string{"move 200,100"}) {
		t.Errorf("actions = %q", got)
	}
}

func TestSetRemapDuringPlay(t *testing.T) {
	var events Events
	for i := 0; i < 20; i++ {
		events = append(events, Move{Position: pos(i, i), Time: time.Duration(i) * time.Millisecond})
	}
	sink := device.NewRecordingSink()
	p := NewPlayer(NewEventLog(events...), sink, WithPollInterval(time.Millisecond))

	stop := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for {
			select {
			case <-stop:
				return
			default:
			}
			p.SetRemap(func(q mouse.Position) mouse.Position { return q })
			p.SetRemap(nil)
		}
	}()
	stats, err := p.Play(context.Background())
	close(stop)
	<-finished

	if err != nil || stats.Dispatched != len(events) {
		t.Errorf("Play = %+v, %v", stats, err)
	}
	for i, got := range moves(sink.Actions()) {
		if got != pos(i, i) {
			t.Errorf("move %d = %v, want identity", i, got)
		}
	}
}

func moves(actions []device.Action) []mouse.Position {
	var out []mouse.Position
	for _, a := range actions {
		if a.Kind == device.ActionMove {
			out = append(out, pos(a.X, a.Y))
		}
	}
	return out
}

func TestStopLatency(t *testing.T) {
	log := NewEventLog(
		Move{Position: pos(0, 0)},
		Move{Position: pos(1, 1), Time: 5 * time.Second},
	)
	sink := device.NewRecordingSink()
	p := NewPlayer(log, sink)

	type result struct {
		stats Stats
		err   error
	}
	done := make(chan result, 1)
	go func() {
		stats, err := p.Play(context.Background())
		done <- result{stats, err}
	}()

	time.Sleep(50 * time.Millisecond)
	if !p.IsPlaying() {
		t.Fatal("expected playback in progress")
	}
	stopped := time.Now()
	p.Stop()

	select {
	case r := <-done:
		if lag := time.Since(stopped); lag > 15*time.Millisecond {
			t.Errorf("stop took %v", lag)
		}
		if r.err != nil {
			t.Errorf("err = %v", r.err)
		}
		if !r.stats.Interrupted || r.stats.Dispatched != 1 {
			t.Errorf("stats = %+v", r.stats)
		}
	case <-time.After(time.Second):
		t.Fatal("Stop did not end playback")
	}
	if n := len(sink.Actions()); n != 1 {
		t.Errorf("%d actions after stop, want 1", n)
	}
}

func TestPlayContextCancel(t *testing.T) {
	log := NewEventLog(Move{Time: time.Minute})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	stats, err := NewPlayer(log, device.NewRecordingSink()).Play(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
	if !stats.Interrupted || stats.Dispatched != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestPlayAlreadyPlaying(t *testing.T) {
	log := NewEventLog(Move{Time: time.Minute})
	p := NewPlayer(log, device.NewRecordingSink())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Play(context.Background())
	}()
	deadline := time.Now().Add(time.Second)
	for !p.IsPlaying() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if _, err := p.Play(context.Background()); !errors.Is(err, ErrAlreadyPlaying) {
		t.Errorf("second Play = %v, want ErrAlreadyPlaying", err)
	}
	p.Stop()
	<-done
}

func TestPlaySnapshotIsolation(t *testing.T) {
	log := NewEventLog(
		KeyPress{Key: "a"},
		KeyRelease{Key: "a", Time: 30 * time.Millisecond},
	)
	sink := device.NewRecordingSink()
	p := NewPlayer(log, sink)

	go func() {
		time.Sleep(10 * time.Millisecond)
		log.Append(KeyPress{Key: "b", Time: 40 * time.Millisecond})
	}()
	stats, _ := p.Play(context.Background())
	if stats.Events != 2 || len(sink.Actions()) != 2 {
		t.Errorf("playback saw appended event: %+v", stats)
	}

}
