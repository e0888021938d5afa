// Package events is a small synchronous event bus. Subscribing returns a
// Handle; releasing the handle removes the listener. Handles may be released
// in any order and releasing twice is a no-op.
package events

import (
	"sync"
)

// Type names an event.
type Type string

const (
	// EverythingChanged fires when the column set or structure is replaced.
	EverythingChanged Type = "columnEverythingChanged"
	// ColumnsReady fires once, the first time the column model is populated.
	ColumnsReady Type = "newColumnsLoaded"
	// ColumnMoved fires when a column changes position in the grid.
	ColumnMoved Type = "columnMoved"
	// ColumnVisible fires when column visibility changes.
	ColumnVisible Type = "columnVisible"
	// PivotModeChanged fires when pivot mode is toggled.
	PivotModeChanged Type = "columnPivotModeChanged"
	// RowGroupChanged fires when the set of row-group columns changes.
	RowGroupChanged Type = "columnRowGroupChanged"
	// ValueChanged fires when the set of value (aggregation) columns changes.
	ValueChanged Type = "columnValueChanged"
	// PivotChanged fires when the set of pivot columns changes.
	PivotChanged Type = "columnPivotChanged"
	// GroupsExpanded is produced by the columns panel after expansion changes.
	GroupsExpanded Type = "groupsExpanded"
	// SelectionChanged is produced by the columns panel when the aggregate
	// checkbox state may have changed.
	SelectionChanged Type = "selectionChanged"
)

// Event is delivered to listeners. Payload is event specific.
type Event struct {
	Type    Type
	Source  string
	Payload any
}

// Listener receives events.
type Listener func(Event)

// Handle releases a subscription.
type Handle interface {
	Release()
}

type subscription struct {
	id   uint64
	typ  Type
	fn   Listener
	bus  *Bus
	once sync.Once
}

func (s *subscription) Release() {
	s.once.Do(func() {
		s.bus.remove(s.typ, s.id)
	})
}

// Bus dispatches events synchronously to subscribed listeners.
type Bus struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[Type][]*subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[Type][]*subscription)}
}

// Subscribe registers fn for events of type t.
func (b *Bus) Subscribe(t Type, fn Listener) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &subscription{id: b.nextID, typ: t, fn: fn, bus: b}
	b.listeners[t] = append(b.listeners[t], sub)
	return sub
}

// Dispatch delivers ev to every listener subscribed to ev.Type at the time of
// the call, in subscription order.
func (b *Bus) Dispatch(ev Event) {
	b.mu.RLock()
	subs := append([]*subscription(nil), b.listeners[ev.Type]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}

// ListenerCount returns the number of live listeners for t.
func (b *Bus) ListenerCount(t Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[t])
}

// TotalListeners returns the number of live listeners across all types.
func (b *Bus) TotalListeners() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, subs := range b.listeners {
		n += len(subs)
	}
	return n
}

func (b *Bus) remove(t Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.listeners[t]
	for i, sub := range subs {
		if sub.id == id {
			b.listeners[t] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.listeners[t]) == 0 {
		delete(b.listeners, t)
	}
}

// HandleSet collects handles so they can be released together.
type HandleSet struct {
	handles []Handle
}

// Add stores h.
func (s *HandleSet) Add(h Handle) {
	if h != nil {
		s.handles = append(s.handles, h)
	}
}

// Len returns the number of held handles.
func (s *HandleSet) Len() int { return len(s.handles) }

// ReleaseAll releases every held handle and forgets them.
func (s *HandleSet) ReleaseAll() {
	for _, h := range s.handles {
		h.Release()
	}
	s.handles = nil
}
