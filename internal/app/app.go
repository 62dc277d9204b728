// Package app coordinates a macrokit session. It wires the display
// normalizer, input devices, recorder, player, looper, settings profiles
// and macro library together and exposes the record and playback
// operations a console or CLI drives.
package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/macrokit/internal/config"
	"github.com/dshills/macrokit/internal/device"
	"github.com/dshills/macrokit/internal/input/macro"
	"github.com/dshills/macrokit/internal/input/mouse"
	"github.com/dshills/macrokit/internal/logging"
	"github.com/dshills/macrokit/internal/screen"
	"github.com/dshills/macrokit/internal/settings"
)

// Options configures the application.
type Options struct {
	// Config is the resolved configuration. The zero value is replaced
	// by config.Default().
	Config config.Config

	// Logger receives all component logs. Nil discards them.
	Logger *logging.Logger

	// Displays supplies the monitor layout. Nil uses the screenshot
	// provider.
	Displays screen.Provider

	// Source and Sink override the devices selected by Config.Device.
	// Both must be set to take effect.
	Source device.Source
	Sink   device.Sink

	// WatchProfiles starts a file watcher on the settings directory.
	WatchProfiles bool
}

// Application is the central coordinator for a macro session.
type Application struct {
	mu sync.Mutex
	// playMu serializes StartPlayback so the busy check, remap and looper
	// start happen together.
	playMu sync.Mutex

	cfg    config.Config
	logger *logging.Logger

	normalizer *screen.Normalizer
	source     device.Source
	sink       device.Sink

	log      *macro.EventLog
	recorder *macro.Recorder
	player   *macro.Player
	looper   *macro.Looper

	settings *settings.Manager
	library  *macro.Library
	watcher  *settings.Watcher

	// bounds is the display layout the current log was recorded on.
	bounds    screen.Bounds
	loopLimit int

	playStart  time.Time
	playDone   chan struct{}
	lastResult macro.Result

	running        atomic.Bool
	closed         atomic.Bool
	watchProfiles  bool
	ctx            context.Context
	cancel         context.CancelFunc
	forwarders     sync.WaitGroup
	stateHandlers  []func(State)
	noticeHandlers []func(Notice)
	profileHandler []func([]string)
}

// New creates an Application and initializes every component in
// dependency order.
func New(opts Options) (*Application, error) {
	cfg := opts.Config
	if cfg.Device.Backend == "" {
		cfg = config.Default()
	}
	a := &Application{
		cfg:           cfg,
		logger:        logging.OrNop(opts.Logger),
		watchProfiles: opts.WatchProfiles,
	}
	if err := a.bootstrap(opts); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Application) bootstrap(opts Options) error {
	// 1. Displays
	displays := opts.Displays
	if displays == nil {
		displays = screen.ScreenshotProvider{}
	}
	a.normalizer = screen.New(displays,
		screen.WithInterval(a.cfg.Display.WatchInterval),
		screen.WithLogger(a.logger),
		screen.OnChange(a.displaysChanged),
	)

	// 2. Devices
	if opts.Source != nil && opts.Sink != nil {
		a.source, a.sink = opts.Source, opts.Sink
	} else {
		src, sink, err := device.Open(device.Config{
			Backend:        a.cfg.Device.Backend,
			CaptureCommand: a.cfg.Device.CaptureCommand,
			InjectCommand:  a.cfg.Device.InjectCommand,
			Logger:         a.logger,
		})
		if err != nil {
			return &InitError{Component: "device", Err: err}
		}
		a.source, a.sink = src, sink
	}

	// 3. Recording and playback share one log.
	a.log = macro.NewEventLog()
	a.recorder = macro.NewRecorder(a.source,
		macro.WithEventLog(a.log),
		macro.WithRecorderLogger(a.logger),
	)
	a.player = macro.NewPlayer(a.log, a.sink,
		macro.WithPollInterval(a.cfg.Playback.PollInterval),
		macro.WithScrollMultiplier(a.cfg.Playback.ScrollMultiplier),
		macro.WithPlayerLogger(a.logger),
	)
	a.looper = macro.NewLooper(a.player, a.sink,
		macro.WithReleaseButtons(a.cfg.Playback.ReleaseButtons),
		macro.OnLoop(a.loopDone),
		macro.WithLooperLogger(a.logger),
	)

	// 4. Persistence
	a.settings = settings.NewManager(
		settings.NewStore(a.cfg.Paths.SettingsDir),
		settings.WithLogger(a.logger),
	)
	a.library = macro.NewLibrary(a.cfg.Paths.MacroDir)
	return nil
}

// Start loads the last used settings profile and starts the background
// watchers. They run until ctx is done or Shutdown is called.
func (a *Application) Start(ctx context.Context) error {
	if a.closed.Load() {
		return ErrNotRunning
	}
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.ctx, a.cancel = ctx, cancel
	a.mu.Unlock()

	if a.cfg.Display.WatchInterval > 0 {
		a.normalizer.Start(ctx)
	}

	if _, err := a.settings.LoadLastUsed(); err != nil {
		a.notify(NoticeWarn, "Could not load settings: %v", err)
	}

	if a.watchProfiles {
		w, err := settings.NewWatcher(a.settings.Store(), a.logger)
		if err != nil {
			a.logger.Warn("profile watcher disabled: %v", err)
		} else {
			a.mu.Lock()
			a.watcher = w
			a.mu.Unlock()
			a.forwarders.Add(1)
			go a.forwardProfiles(w)
		}
	}
	a.logger.Info("session started on display %s", a.normalizer.Bounds())
	return nil
}

func (a *Application) forwardProfiles(w *settings.Watcher) {
	defer a.forwarders.Done()
	for names := range w.Updates() {
		a.mu.Lock()
		handlers := a.profileHandler
		a.mu.Unlock()
		for _, h := range handlers {
			h(names)
		}
	}
}

// Shutdown stops any session, saves unsaved settings and releases the
// devices. It is safe to call more than once, with or without Start.
func (a *Application) Shutdown() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}
	a.running.Store(false)
	var errs ErrorList

	if a.recorder.IsRecording() {
		a.recorder.Stop()
	}
	if a.looper.IsRunning() {
		a.looper.Stop()
		a.WaitPlayback(context.Background())
	}

	a.mu.Lock()
	cancel, w := a.cancel, a.watcher
	a.cancel, a.watcher = nil, nil
	a.mu.Unlock()

	a.normalizer.Stop()
	if w != nil {
		errs.Add(w.Close())
		a.forwarders.Wait()
	}
	if cancel != nil {
		cancel()
	}

	if a.settings.Dirty() && a.settings.Current() != "" {
		errs.Add(a.settings.Save())
	}
	errs.Add(a.sink.Close())
	a.logger.Info("session ended")
	return errs.AsError()
}

// IsRunning reports whether Start has been called without Shutdown.
func (a *Application) IsRunning() bool {
	return a.running.Load()
}

// StartRecording clears the log and starts capturing input. Recording is
// refused while playback runs.
func (a *Application) StartRecording() error {
	if a.looper.IsRunning() {
		return NewOperationError("record", "", ErrBusy).WithContext("playback running")
	}
	if err := a.recorder.Start(); err != nil {
		a.notify(NoticeError, "Recording failed: %v", err)
		return NewOperationError("record", "", err)
	}

	a.mu.Lock()
	a.bounds = a.normalizer.Bounds()
	a.mu.Unlock()

	a.changed()
	return nil
}

// StopRecording stops capturing and returns what was recorded.
func (a *Application) StopRecording() (macro.Events, error) {
	if !a.recorder.IsRecording() {
		return nil, ErrNotRecording
	}
	events := a.recorder.Stop()
	a.notify(NoticeInfo, "Recorded %d events in %s", len(events), FormatDuration(events.Duration()))
	a.changed()
	return events, nil
}

// StartPlayback replays the log on a background goroutine, looping as
// the loop limit or the continuous_playback option decide. An active
// recording is stopped first.
func (a *Application) StartPlayback() error {
	a.playMu.Lock()
	defer a.playMu.Unlock()

	if a.looper.IsRunning() {
		return NewOperationError("play", "", ErrBusy)
	}
	if a.recorder.IsRecording() {
		if _, err := a.StopRecording(); err != nil {
			return err
		}
	}

	a.mu.Lock()
	if a.cfg.Playback.NormalizeCoordinates && !a.bounds.IsZero() {
		from := a.bounds
		a.player.SetRemap(func(p mouse.Position) mouse.Position {
			x, y := a.normalizer.Remap(from, p.X, p.Y)
			return mouse.Position{X: x, Y: y}
		})
	} else {
		a.player.SetRemap(nil)
	}
	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	a.mu.Unlock()

	results, err := a.looper.Start(ctx, a.continuePlayback)
	if err != nil {
		return NewOperationError("play", "", ErrBusy)
	}

	done := make(chan struct{})
	a.mu.Lock()
	a.playStart = time.Now()
	a.playDone = done
	a.mu.Unlock()
	a.changed()

	go func() {
		res := <-results
		a.mu.Lock()
		a.lastResult = res
		a.mu.Unlock()
		close(done)

		if res.Err != nil && !errors.Is(res.Err, context.Canceled) {
			a.notify(NoticeError, "Playback failed: %v", res.Err)
		} else {
			a.notify(NoticeInfo, "Playback finished after %d loops", res.Loops)
		}
		a.changed()
	}()
	return nil
}

// StopPlayback asks the running playback to end. It returns without
// waiting; use WaitPlayback to wait.
func (a *Application) StopPlayback() error {
	if !a.looper.IsRunning() {
		return ErrNotPlaying
	}
	a.looper.Stop()
	return nil
}

// WaitPlayback blocks until the current playback ends or ctx is done and
// returns the playback result.
func (a *Application) WaitPlayback(ctx context.Context) (macro.Result, error) {
	a.mu.Lock()
	done := a.playDone
	a.mu.Unlock()
	if done == nil {
		return macro.Result{}, ErrNotPlaying
	}
	select {
	case <-done:
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.lastResult, nil
	case <-ctx.Done():
		return macro.Result{}, ctx.Err()
	}
}

// SetLoopLimit fixes how many passes StartPlayback plays. n > 0 plays
// exactly n passes, n < 0 loops until stopped, and 0 defers to the
// continuous_playback option.
func (a *Application) SetLoopLimit(n int) {
	a.mu.Lock()
	a.loopLimit = n
	a.mu.Unlock()
}

func (a *Application) continuePlayback() bool {
	a.mu.Lock()
	limit := a.loopLimit
	a.mu.Unlock()
	switch {
	case limit > 0:
		return a.looper.Loops() < limit
	case limit < 0:
		return true
	}
	return a.settings.Options().ContinuousPlayback
}

func (a *Application) loopDone(n int) {
	a.logger.Debug("loop %d done", n)
	a.changed()
}

func (a *Application) displaysChanged(old, cur screen.Bounds) {
	a.notify(NoticeInfo, "Display layout changed from %s to %s", old, cur)
	a.changed()
}

// Events returns the live event log shared by recorder and player.
func (a *Application) Events() *macro.EventLog {
	return a.log
}

// IsRecording reports whether input is being captured.
func (a *Application) IsRecording() bool {
	return a.recorder.IsRecording()
}

// IsPlaying reports whether playback is running.
func (a *Application) IsPlaying() bool {
	return a.looper.IsRunning()
}

// Loops returns the passes completed by the current or last playback.
func (a *Application) Loops() int {
	return a.looper.Loops()
}

// State returns the current session state.
func (a *Application) State() State {
	switch {
	case a.IsRecording():
		return StateRecording
	case a.IsPlaying():
		return StatePlaying
	}
	return StateIdle
}

// Elapsed returns how long the current recording or playback has run,
// or zero when idle.
func (a *Application) Elapsed() time.Duration {
	switch a.State() {
	case StateRecording:
		return a.recorder.Elapsed()
	case StatePlaying:
		a.mu.Lock()
		defer a.mu.Unlock()
		return time.Since(a.playStart)
	}
	return 0
}

// RecordedBounds returns the display layout the log was recorded on.
func (a *Application) RecordedBounds() screen.Bounds {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bounds
}

// Config returns the configuration the application was built with.
func (a *Application) Config() config.Config {
	return a.cfg
}

// Logger returns the application logger.
func (a *Application) Logger() *logging.Logger {
	return a.logger
}

// Displays returns the coordinate normalizer.
func (a *Application) Displays() *screen.Normalizer {
	return a.normalizer
}

// Settings returns the settings profile manager.
func (a *Application) Settings() *settings.Manager {
	return a.settings
}

// Library returns the macro library.
func (a *Application) Library() *macro.Library {
	return a.library
}
