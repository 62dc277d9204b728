package settings

import (
	"errors"
	"sync"

	"github.com/dshills/macrokit/internal/logging"
)

// Manager tracks the selected profile and its in-memory options. Changes
// are written through immediately when the profile's saveOnChange option
// is on; otherwise the profile is marked dirty and saved on the next
// Switch or Save.
type Manager struct {
	mu      sync.Mutex
	store   *Store
	logger  *logging.Logger
	current string
	opts    Options
	dirty   bool

	handlers []func(Options)
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l *logging.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logging.OrNop(l).WithComponent("settings")
	}
}

// NewManager creates a manager with no profile selected.
func NewManager(store *Store, opts ...ManagerOption) *Manager {
	m := &Manager{store: store, logger: logging.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the underlying store.
func (m *Manager) Store() *Store {
	return m.store
}

// OnChange registers fn to be called with the new options after every
// change or profile switch.
func (m *Manager) OnChange(fn func(Options)) {
	m.mu.Lock()
	m.handlers = append(m.handlers, fn)
	m.mu.Unlock()
}

// Current returns the selected profile name, or "".
func (m *Manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Options returns the current option values.
func (m *Manager) Options() Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts
}

// Dirty reports whether the selected profile has unsaved changes.
func (m *Manager) Dirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty
}

// Get returns the named option.
func (m *Manager) Get(name string) (bool, error) {
	return m.Options().Get(name)
}

// Set changes an option.
func (m *Manager) Set(name string, value bool) error {
	m.mu.Lock()
	if err := m.opts.Set(name, value); err != nil {
		m.mu.Unlock()
		return err
	}
	m.logger.Debug("%s changed -> %v", name, value)

	var err error
	if m.current != "" && m.opts.SaveOnChange {
		err = m.saveLocked()
	} else {
		m.dirty = true
	}
	opts := m.opts
	handlers := m.handlers
	m.mu.Unlock()

	notify(handlers, opts)
	return err
}

// Toggle flips an option and returns its new value.
func (m *Manager) Toggle(name string) (bool, error) {
	v, err := m.Get(name)
	if err != nil {
		return false, err
	}
	return !v, m.Set(name, !v)
}

// Save writes the current options to the selected profile and records it
// as last used.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == "" {
		return ErrNoProfile
	}
	if err := m.saveLocked(); err != nil {
		return err
	}
	return m.store.WriteLastUsed(m.current)
}

func (m *Manager) saveLocked() error {
	if err := m.store.Save(m.current, m.opts); err != nil {
		m.logger.Error("failed to save settings %s: %v", m.current, err)
		return err
	}
	m.dirty = false
	m.logger.Info("saved settings: %s", m.current)
	return nil
}

// Switch saves unsaved changes to the current profile, then loads name.
// If loading fails the current selection is kept. A malformed profile is
// still selected with default options and the error is returned.
func (m *Manager) Switch(name string) error {
	m.mu.Lock()
	if m.dirty && m.current != "" {
		if err := m.saveLocked(); err != nil {
			m.logger.Warn("could not save %s before switching: %v", m.current, err)
		}
	}

	opts, err := m.store.Load(name)
	if err != nil && !errors.Is(err, ErrMalformed) {
		m.mu.Unlock()
		m.logger.Error("failed to load settings: %v", err)
		return err
	}
	loadErr := err

	m.current = ProfileName(name)
	m.opts = opts
	m.dirty = false
	if err := m.store.WriteLastUsed(m.current); err != nil {
		m.logger.Error("failed writing last used file: %v", err)
	}
	handlers := m.handlers
	m.mu.Unlock()

	if loadErr != nil {
		m.logger.Warn("settings %s are malformed, using defaults: %v", name, loadErr)
	} else {
		m.logger.Info("settings loaded: %s", ProfileName(name))
	}
	notify(handlers, opts)
	return loadErr
}

// LoadLastUsed switches to the profile recorded in last_used.txt. It
// reports whether a profile was loaded; a missing record or a record
// naming a deleted profile is not an error.
func (m *Manager) LoadLastUsed() (bool, error) {
	name, err := m.store.LastUsed()
	if err != nil {
		return false, err
	}
	if name == "" {
		m.logger.Info("no last-used profile found")
		return false, nil
	}
	if !m.store.Exists(name) {
		m.logger.Warn("last-used profile does not exist: %s", name)
		return false, nil
	}
	if err := m.Switch(name); err != nil {
		return !errors.Is(err, ErrProfileNotFound), err
	}
	return true, nil
}

// Create saves the current options as a new profile and selects it.
func (m *Manager) Create(name string, overwrite bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Create(name, m.opts, overwrite); err != nil {
		return err
	}
	m.current = ProfileName(name)
	m.dirty = false
	m.logger.Info("new settings saved as %s", m.current)
	return m.store.WriteLastUsed(m.current)
}

// Import copies a profile file into the store and switches to it.
func (m *Manager) Import(path string) (string, error) {
	name, err := m.store.Import(path)
	if err != nil {
		return "", err
	}
	m.logger.Info("settings imported as %s", name)
	return name, m.Switch(name)
}

// Export writes the selected profile to dest.
func (m *Manager) Export(dest string) error {
	current := m.Current()
	if current == "" {
		return ErrNoProfile
	}
	return m.store.Export(current, dest)
}

// Delete removes a profile. Deleting the selected profile clears the
// selection but keeps the in-memory options.
func (m *Manager) Delete(name string) error {
	if err := m.store.Delete(name); err != nil {
		return err
	}
	m.mu.Lock()
	if m.current == ProfileName(name) {
		m.current = ""
		m.dirty = false
	}
	m.mu.Unlock()
	return nil
}

func notify(handlers []func(Options), opts Options) {
	for _, h := range handlers {
		h(opts)
	}
}
