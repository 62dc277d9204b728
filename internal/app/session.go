package app

import (
	"fmt"
	"time"

	"github.com/dshills/macrokit/internal/input/macro"
	"github.com/dshills/macrokit/internal/settings"
)

// State is the coarse session state shown to the user.
type State uint8

const (
	StateIdle State = iota
	StateRecording
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// NoticeLevel grades a Notice.
type NoticeLevel uint8

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarn
	NoticeError
)

// Notice is a user-facing message about something that happened in the
// background, such as a failed settings load.
type Notice struct {
	Level   NoticeLevel
	Message string
	Time    time.Time
}

// OnStateChange registers fn to be called after any change a status
// display should reflect: state transitions, completed loops and display
// layout changes.
func (a *Application) OnStateChange(fn func(State)) {
	a.mu.Lock()
	a.stateHandlers = append(a.stateHandlers, fn)
	a.mu.Unlock()
}

// OnNotice registers fn to receive notices.
func (a *Application) OnNotice(fn func(Notice)) {
	a.mu.Lock()
	a.noticeHandlers = append(a.noticeHandlers, fn)
	a.mu.Unlock()
}

// OnProfilesChange registers fn to receive the profile list whenever the
// settings directory changes. It requires Options.WatchProfiles.
func (a *Application) OnProfilesChange(fn func([]string)) {
	a.mu.Lock()
	a.profileHandler = append(a.profileHandler, fn)
	a.mu.Unlock()
}

func (a *Application) changed() {
	a.mu.Lock()
	handlers := a.stateHandlers
	a.mu.Unlock()

	state := a.State()
	for _, h := range handlers {
		h(state)
	}
}

func (a *Application) notify(level NoticeLevel, format string, args ...any) {
	n := Notice{Level: level, Message: fmt.Sprintf(format, args...), Time: time.Now()}
	switch level {
	case NoticeError:
		a.logger.Error("%s", n.Message)
	case NoticeWarn:
		a.logger.Warn("%s", n.Message)
	default:
		a.logger.Info("%s", n.Message)
	}

	a.mu.Lock()
	handlers := a.noticeHandlers
	a.mu.Unlock()
	for _, h := range handlers {
		h(n)
	}
}

// SaveMacro writes the current log to the library under name and returns
// the file path.
func (a *Application) SaveMacro(name string) (string, error) {
	if a.IsRecording() {
		return "", NewOperationError("save", name, ErrBusy).WithContext("recording")
	}
	events := a.log.Snapshot()
	if len(events) == 0 {
		return "", NewOperationError("save", name, macro.ErrEmptyLog)
	}
	path, err := a.library.Path(name)
	if err != nil {
		return "", NewOperationError("save", name, err)
	}
	if err := a.library.Save(name, macro.NewFile(events, a.RecordedBounds())); err != nil {
		a.notify(NoticeError, "Saving %s failed: %v", name, err)
		return "", NewOperationError("save", name, err)
	}
	a.notify(NoticeInfo, "Saved %d events to %s", len(events), path)
	return path, nil
}

// LoadMacro replaces the log with a saved macro. ref is a library name or
// a file path.
func (a *Application) LoadMacro(ref string) (*macro.File, error) {
	if a.State() != StateIdle {
		return nil, NewOperationError("load", ref, ErrBusy)
	}
	path, err := a.library.Resolve(ref)
	if err != nil {
		return nil, NewOperationError("load", ref, err)
	}
	f, err := macro.Load(path)
	if err != nil {
		return nil, NewOperationError("load", ref, err)
	}

	a.log.Replace(f.Events)
	a.mu.Lock()
	a.bounds = f.Bounds
	a.mu.Unlock()

	a.notify(NoticeInfo, "Loaded %d events from %s", len(f.Events), path)
	a.changed()
	return f, nil
}

// SwitchProfile selects a settings profile. A malformed profile is still
// selected with default options; the error is reported as a notice.
func (a *Application) SwitchProfile(name string) error {
	err := a.settings.Switch(name)
	if err != nil {
		a.notify(NoticeWarn, "Could not load settings %s: %v", name, err)
		return NewOperationError("switch-profile", name, err)
	}
	a.notify(NoticeInfo, "Settings loaded: %s", settings.ProfileName(name))
	a.changed()
	return nil
}

// ToggleContinuous flips the continuous_playback option of the current
// profile and returns the new value.
func (a *Application) ToggleContinuous() (bool, error) {
	v, err := a.settings.Toggle(settings.OptContinuousPlayback)
	if err != nil {
		a.notify(NoticeError, "Saving settings failed: %v", err)
		return v, NewOperationError("set", settings.OptContinuousPlayback, err)
	}
	a.changed()
	return v, nil
}

// FormatDuration renders d as hh:mm:ss, the format of the session timer.
func FormatDuration(d time.Duration) string {
	s := int(d.Truncate(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s/60)%60, s%60)
}
