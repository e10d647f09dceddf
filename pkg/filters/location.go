package filters

import (
	"slices"
	"strings"
	"sync"
)

// Location is the navigable address of a page view, reduced to its query
// string. Push adds a history entry, Replace rewrites the current one.
// Listeners are only told about navigation the page did not perform itself:
// back, forward and deep links.
type Location interface {
	Query() string
	Push(query string)
	Replace(query string)
	Listen(fn func(query string)) (stop func())
}

// MemoryLocation is an in-memory history stack that behaves like a browser
// location: pushState and replaceState are silent, popstate is not.
type MemoryLocation struct {
	mu        sync.Mutex
	entries   []string
	index     int
	listeners map[int]func(string)
	nextId    int
}

func NewMemoryLocation(query string) *MemoryLocation {
	return &MemoryLocation{
		entries:   []string{trimQuery(query)},
		listeners: make(map[int]func(string)),
	}
}

func trimQuery(query string) string {
	return strings.TrimPrefix(query, "?")
}

func (l *MemoryLocation) Query() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[l.index]
}

func (l *MemoryLocation) Push(query string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries[:l.index+1], trimQuery(query))
	l.index++
}

func (l *MemoryLocation) Replace(query string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[l.index] = trimQuery(query)
}

// History returns a copy of all entries and the current position.
func (l *MemoryLocation) History() ([]string, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := make([]string, len(l.entries))
	copy(entries, l.entries)
	return entries, l.index
}

func (l *MemoryLocation) Listen(fn func(query string)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextId
	l.nextId++
	l.listeners[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.listeners, id)
	}
}

// Back moves one entry back and notifies listeners. It returns false at the
// start of the history.
func (l *MemoryLocation) Back() bool {
	return l.move(-1)
}

func (l *MemoryLocation) Forward() bool {
	return l.move(1)
}

// Navigate opens a deep link: a new entry that listeners are told about.
func (l *MemoryLocation) Navigate(query string) {
	l.Push(query)
	l.emit()
}

// Emit replays the current entry to listeners, like a router that fires on
// every change including its own writes.
func (l *MemoryLocation) Emit() {
	l.emit()
}

func (l *MemoryLocation) move(delta int) bool {
	l.mu.Lock()
	next := l.index + delta
	if next < 0 || next >= len(l.entries) {
		l.mu.Unlock()
		return false
	}
	l.index = next
	l.mu.Unlock()
	l.emit()
	return true
}

func (l *MemoryLocation) emit() {
	l.mu.Lock()
	query := l.entries[l.index]
	// listeners are called in registration order
	ids := make([]int, 0, len(l.listeners))
	for id := range l.listeners {
		ids = append(ids, id)
	}
	fns := make([]func(string), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, l.listeners[id])
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(query)
	}
}
