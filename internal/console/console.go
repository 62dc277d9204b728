// Package console is a full-screen terminal front end for a macro
// session. It shows the session status and maps hotkeys to the record
// and playback operations.
package console

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/macrokit/internal/app"
	"github.com/dshills/macrokit/internal/input/key"
	"github.com/dshills/macrokit/internal/input/macro"
	"github.com/dshills/macrokit/internal/logging"
	"github.com/dshills/macrokit/internal/screen"
	"github.com/dshills/macrokit/internal/settings"
)

// Session is the part of the application the console drives.
type Session interface {
	StartRecording() error
	StopRecording() (macro.Events, error)
	StartPlayback() error
	StopPlayback() error
	State() app.State
	Elapsed() time.Duration
	Loops() int
	Events() *macro.EventLog
	Settings() *settings.Manager
	Displays() *screen.Normalizer
	SaveMacro(name string) (string, error)
	ToggleContinuous() (bool, error)
	OnStateChange(fn func(app.State))
	OnNotice(fn func(app.Notice))
}

var _ Session = (*app.Application)(nil)

// DefaultRefresh is how often the timer line is redrawn.
const DefaultRefresh = 250 * time.Millisecond

// Console renders the session status on a tcell screen.
type Console struct {
	session Session
	screen  tcell.Screen
	logger  *logging.Logger

	recordKey   key.Event
	playKey     key.Event
	recordLabel string
	playLabel   string
	saveName    func() string
	refresh     time.Duration

	mu     sync.Mutex
	notice app.Notice
}

// Option configures a Console.
type Option func(*Console)

// WithScreen uses s instead of the terminal.
func WithScreen(s tcell.Screen) Option {
	return func(c *Console) {
		c.screen = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Console) {
		c.logger = logging.OrNop(l).WithComponent("console")
	}
}

// WithSaveName sets the macro name used by the save key. The default is
// a timestamp.
func WithSaveName(name string) Option {
	return func(c *Console) {
		if name != "" {
			c.saveName = func() string { return name }
		}
	}
}

// WithRefresh sets the redraw interval.
func WithRefresh(d time.Duration) Option {
	return func(c *Console) {
		if d > 0 {
			c.refresh = d
		}
	}
}

// New creates a console. recordKey and playKey are key tokens such as
// "f9".
func New(session Session, recordKey, playKey string, opts ...Option) (*Console, error) {
	rk, ok := key.Lookup(recordKey)
	if !ok {
		return nil, fmt.Errorf("unknown record hotkey %q", recordKey)
	}
	pk, ok := key.Lookup(playKey)
	if !ok {
		return nil, fmt.Errorf("unknown playback hotkey %q", playKey)
	}

	c := &Console{
		session:     session,
		logger:      logging.Nop(),
		recordKey:   rk,
		playKey:     pk,
		recordLabel: label(rk),
		playLabel:   label(pk),
		saveName: func() string {
			return "macro-" + time.Now().Format("20060102-150405")
		},
		refresh: DefaultRefresh,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, err
		}
		c.screen = s
	}
	return c, nil
}

// Run takes over the terminal until the user quits or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	if err := c.screen.Init(); err != nil {
		return err
	}
	defer c.screen.Fini()

	wake := func() {
		_ = c.screen.PostEvent(tcell.NewEventInterrupt(nil)) // best-effort; queue may be full
	}
	c.session.OnStateChange(func(app.State) { wake() })
	c.session.OnNotice(func(n app.Notice) {
		c.mu.Lock()
		c.notice = n
		c.mu.Unlock()
		wake()
	})

	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(c.refresh)
	defer ticker.Stop()

	c.draw()
	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return nil
		case <-ticker.C:
		case ev := <-events:
			if quit := c.handle(ev); quit {
				c.shutdown()
				return nil
			}
		}
		c.draw()
	}
}

// shutdown stops whatever session is active so no input is injected
// after the console exits.
func (c *Console) shutdown() {
	switch c.session.State() {
	case app.StateRecording:
		c.session.StopRecording()
	case app.StatePlaying:
		c.session.StopPlayback()
	}
}

// handle applies one terminal event and reports whether to quit.
func (c *Console) handle(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return c.handleKey(e)
	case *tcell.EventResize:
		c.screen.Sync()
	}
	return false
}

func (c *Console) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return true
	}
	k, ok := keyOf(ev)
	if !ok {
		return false
	}

	switch {
	case k == c.recordKey:
		c.toggleRecording()
	case k == c.playKey:
		c.togglePlayback()
	case k.IsRune() && (k.Rune == 'q' || k.Rune == 'Q'):
		return true
	case k.IsRune() && (k.Rune == 'c' || k.Rune == 'C'):
		if _, err := c.session.ToggleContinuous(); err != nil {
			c.logger.Warn("toggle continuous: %v", err)
		}
	case k.IsRune() && (k.Rune == 's' || k.Rune == 'S'):
		if _, err := c.session.SaveMacro(c.saveName()); err != nil {
			c.setNotice(app.NoticeError, err.Error())
		}
	}
	return false
}

func (c *Console) toggleRecording() {
	var err error
	if c.session.State() == app.StateRecording {
		_, err = c.session.StopRecording()
	} else {
		err = c.session.StartRecording()
	}
	if err != nil {
		c.setNotice(app.NoticeWarn, err.Error())
	}
}

func (c *Console) togglePlayback() {
	var err error
	if c.session.State() == app.StatePlaying {
		err = c.session.StopPlayback()
	} else {
		err = c.session.StartPlayback()
	}
	if err != nil {
		c.setNotice(app.NoticeWarn, err.Error())
	}
}

func (c *Console) setNotice(level app.NoticeLevel, msg string) {
	c.mu.Lock()
	c.notice = app.Notice{Level: level, Message: msg, Time: time.Now()}
	c.mu.Unlock()
}

// keyOf converts a terminal key to the key model used for hotkeys.
func keyOf(ev *tcell.EventKey) (key.Event, bool) {
	if ev.Key() == tcell.KeyRune {
		return key.Lookup(string(ev.Rune()))
	}
	if ev.Key() >= tcell.KeyF1 && ev.Key() <= tcell.KeyF24 {
		return key.Lookup(fmt.Sprintf("f%d", int(ev.Key()-tcell.KeyF1)+1))
	}
	if name, ok := tcellKeyNames[ev.Key()]; ok {
		return key.Lookup(name)
	}
	return key.Event{}, false
}

var tcellKeyNames = map[tcell.Key]string{
	tcell.KeyEnter:     "enter",
	tcell.KeyEscape:    "esc",
	tcell.KeyTab:       "tab",
	tcell.KeyBackspace: "backspace",
	tcell.KeyDelete:    "delete",
	tcell.KeyInsert:    "insert",
	tcell.KeyHome:      "home",
	tcell.KeyEnd:       "end",
	tcell.KeyPgUp:      "page_up",
	tcell.KeyPgDn:      "page_down",
	tcell.KeyUp:        "up",
	tcell.KeyDown:      "down",
	tcell.KeyLeft:      "left",
	tcell.KeyRight:     "right",
	tcell.KeyPause:     "pause",
}

func label(k key.Event) string {
	if k.IsRune() {
		return string(k.Rune)
	}
	s := k.String()
	if len(s) > 1 && (s[0] == 'f' || s[0] == 'F') {
		return "F" + s[1:]
	}
	return s
}
