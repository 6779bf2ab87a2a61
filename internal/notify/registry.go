package notify

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
)

// ErrDuplicateID is returned when a notification id is registered twice.
var ErrDuplicateID = errors.New("notification id already registered")

// Registry is the process-wide table of notifications, keyed by id.
type Registry struct {
	mu            sync.RWMutex
	notifications map[string]Notification

	listenersMu sync.RWMutex
	listeners   []EmptinessListener
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{notifications: make(map[string]Notification)}
}

// Register adds n to the table. Registering an id twice is a wiring error.
func (r *Registry) Register(n Notification) error {
	r.mu.Lock()
	if _, exists := r.notifications[n.ID()]; exists {
		r.mu.Unlock()
		return fmt.Errorf("register %q: %w", n.ID(), ErrDuplicateID)
	}
	r.notifications[n.ID()] = n
	r.mu.Unlock()

	if o, ok := n.(observable); ok {
		o.observe(r.broadcast)
	}
	return nil
}

// MustRegister is Register for startup wiring; it panics on error.
func (r *Registry) MustRegister(notifications ...Notification) {
	for _, n := range notifications {
		if err := r.Register(n); err != nil {
			panic(err)
		}
	}
}

// Find looks up a notification. Unknown or malformed ids are not an error.
func (r *Registry) Find(id string) (Notification, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notifications[id]
	return n, ok
}

// Dismiss dismisses the notification with the given id if it exists and is
// dismissable. Every other case is silently ignored so callers cannot test
// for registered ids.
func (r *Registry) Dismiss(id string) {
	n, ok := r.Find(id)
	if !ok || !n.IsDismissable() {
		return
	}
	n.Dismiss()
}

// Active returns the non-empty notifications, most recently updated first.
func (r *Registry) Active() []Notification {
	r.mu.RLock()
	active := make([]Notification, 0, len(r.notifications))
	for _, n := range r.notifications {
		if !n.IsEmpty() {
			active = append(active, n)
		}
	}
	r.mu.RUnlock()

	sort.Slice(active, func(i, j int) bool {
		ti, tj := active[i].LastUpdated(), active[j].LastUpdated()
		if ti.Equal(tj) {
			return active[i].ID() < active[j].ID()
		}
		return ti.After(tj)
	})
	return active
}

// OnEmptinessChange subscribes listener to emptiness transitions of every
// registered notification. Listeners run on the goroutine that caused the
// transition and must not block.
func (r *Registry) OnEmptinessChange(listener EmptinessListener) {
	r.listenersMu.Lock()
	r.listeners = append(r.listeners, listener)
	r.listenersMu.Unlock()
}

func (r *Registry) broadcast(id string, empty bool) {
	r.listenersMu.RLock()
	listeners := make([]EmptinessListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.listenersMu.RUnlock()

	for _, listener := range listeners {
		listener(id, empty)
	}
}

// LogTransitions is an EmptinessListener that writes transitions to the log.
func LogTransitions(id string, empty bool) {
	if empty {
		log.Printf("notify: %s is now empty", id)
		return
	}
	log.Printf("notify: %s is now active", id)
}
