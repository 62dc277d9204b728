package settings

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/macrokit/internal/logging"
)

// Watcher reports the profile list whenever a profile is created,
// removed or renamed in the settings directory.
type Watcher struct {
	store   *Store
	logger  *logging.Logger
	fsw     *fsnotify.Watcher
	updates chan []string

	mu      sync.Mutex
	last    []string
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// NewWatcher starts watching the store's directory, creating it if
// needed.
func NewWatcher(store *Store, logger *logging.Logger) (*Watcher, error) {
	if err := os.MkdirAll(store.Dir(), 0o755); err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(store.Dir()); err != nil {
		fsw.Close()
		return nil, err
	}

	last, _ := store.List()
	w := &Watcher{
		store:   store,
		logger:  logging.OrNop(logger).WithComponent("settings-watcher"),
		fsw:     fsw,
		updates: make(chan []string, 1),
		last:    last,
		closeCh: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Updates delivers the new profile list after each change. Only the most
// recent list is kept if the receiver falls behind.
func (w *Watcher) Updates() <-chan []string {
	return w.updates
}

// Close stops watching and closes the Updates channel.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.wg.Wait()
	close(w.updates)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if relevant(ev) {
				w.refresh()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error: %v", err)
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if !strings.HasSuffix(filepath.Base(ev.Name), profileExt) {
		return false
	}
	return ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename)
}

func (w *Watcher) refresh() {
	names, err := w.store.List()
	if err != nil {
		w.logger.Warn("listing profiles: %v", err)
		return
	}
	w.mu.Lock()
	same := slices.Equal(names, w.last)
	w.last = names
	w.mu.Unlock()
	if same {
		return
	}

	// Replace a pending list the receiver has not taken yet.
	select {
	case <-w.updates:
	default:
	}
	select {
	case w.updates <- names:
	default:
	}
}
