package macro

import (
	"sync"
	"time"
)

// EventLog is an append-only list of events shared between the recorder,
// the player and any progress display.
type EventLog struct {
	mu     sync.RWMutex
	events []Event
}

// NewEventLog creates a log holding events.
func NewEventLog(events ...Event) *EventLog {
	l := &EventLog{}
	l.events = append(l.events, events...)
	return l
}

// Append adds ev to the end of the log.
func (l *EventLog) Append(ev Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

// Len returns the number of events.
func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// At returns the i'th event.
func (l *EventLog) At(i int) Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.events[i]
}

// Snapshot returns a copy of the events.
func (l *EventLog) Snapshot() Events {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(Events, len(l.events))
	copy(out, l.events)
	return out
}

// Reset removes all events.
func (l *EventLog) Reset() {
	l.mu.Lock()
	l.events = nil
	l.mu.Unlock()
}

// Replace swaps the contents for events, as when loading a macro file.
func (l *EventLog) Replace(events Events) {
	l.mu.Lock()
	l.events = append([]Event(nil), events...)
	l.mu.Unlock()
}

// Duration returns the offset of the last event.
func (l *EventLog) Duration() time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Events(l.events).Duration()
}
