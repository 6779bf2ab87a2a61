package notify

import (
	"sync"
	"time"
)

// Static is a notification without subjects. It is active between Show and
// Dismiss.
type Static struct {
	id          string
	dismissable bool

	mu          sync.RWMutex
	shown       bool
	lastUpdated time.Time
	listener    EmptinessListener
}

func NewStatic(id string, dismissable bool) *Static {
	return &Static{id: id, dismissable: dismissable, lastUpdated: time.Now()}
}

func (s *Static) ID() string { return s.id }
func (s *Static) IsDismissable() bool { return s.dismissable }
func (s *Static) ElementIDs() []string { return nil }

func (s *Static) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.shown
}

func (s *Static) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// Show activates the notification.
func (s *Static) Show() {
	s.set(true)
}

// Hide deactivates the notification regardless of the dismissable flag.
// Used by timers owned by the process, never by users.
func (s *Static) Hide() {
	s.set(false)
}

func (s *Static) Dismiss() bool {
	if !s.dismissable {
		return false
	}
	s.set(false)
	return true
}

func (s *Static) set(shown bool) {
	s.mu.Lock()
	changed := s.shown != shown
	s.shown = shown
	s.lastUpdated = time.Now()
	listener := s.listener
	s.mu.Unlock()

	if changed && listener != nil {
		listener(s.id, !shown)
	}
}

func (s *Static) observe(listener EmptinessListener) {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
}
