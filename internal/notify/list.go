package notify

import (
	"sync"
	"time"
)

// ListNotification is a notification over an ordered, de-duplicated list of
// subjects. Subjects are identified by the key function given to NewList.
type ListNotification[T any] struct {
	id          string
	key         func(T) string
	dismissable bool

	mu          sync.RWMutex
	elements    []T
	index       map[string]struct{}
	lastUpdated time.Time
	listener    EmptinessListener
}

// NewList creates an empty list notification.
func NewList[T any](id string, key func(T) string, dismissable bool) *ListNotification[T] {
	if key == nil {
		panic("notify: key function must not be nil")
	}
	return &ListNotification[T]{
		id:          id,
		key:         key,
		dismissable: dismissable,
		index:       make(map[string]struct{}),
		lastUpdated: time.Now(),
	}
}

func (n *ListNotification[T]) ID() string { return n.id }
func (n *ListNotification[T]) IsDismissable() bool { return n.dismissable }

func (n *ListNotification[T]) IsEmpty() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.elements) == 0
}

func (n *ListNotification[T]) LastUpdated() time.Time {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.lastUpdated
}

// Elements returns a copy of the subject list.
func (n *ListNotification[T]) Elements() []T {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]T, len(n.elements))
	copy(out, n.elements)
	return out
}

func (n *ListNotification[T]) ElementIDs() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	ids := make([]string, 0, len(n.elements))
	for _, element := range n.elements {
		ids = append(ids, n.key(element))
	}
	return ids
}

// Add appends element unless a subject with the same key is present.
func (n *ListNotification[T]) Add(element T) {
	k := n.key(element)

	n.mu.Lock()
	if _, ok := n.index[k]; ok {
		n.mu.Unlock()
		return
	}
	wasEmpty := len(n.elements) == 0
	n.elements = append(n.elements, element)
	n.index[k] = struct{}{}
	n.lastUpdated = time.Now()
	listener := n.listener
	n.mu.Unlock()

	if wasEmpty && listener != nil {
		listener(n.id, false)
	}
}

// Remove drops the subject with element's key, if present.
func (n *ListNotification[T]) Remove(element T) {
	k := n.key(element)

	n.mu.Lock()
	if _, ok := n.index[k]; !ok {
		n.mu.Unlock()
		return
	}
	delete(n.index, k)
	for i, e := range n.elements {
		if n.key(e) == k {
			n.elements = append(n.elements[:i], n.elements[i+1:]...)
			break
		}
	}
	nowEmpty := len(n.elements) == 0
	n.lastUpdated = time.Now()
	listener := n.listener
	n.mu.Unlock()

	if nowEmpty && listener != nil {
		listener(n.id, true)
	}
}

// Dismiss clears the list. It does nothing for non-dismissable notifications.
func (n *ListNotification[T]) Dismiss() bool {
	if !n.dismissable {
		return false
	}

	n.mu.Lock()
	hadElements := len(n.elements) > 0
	n.elements = nil
	n.index = make(map[string]struct{})
	n.lastUpdated = time.Now()
	listener := n.listener
	n.mu.Unlock()

	if hadElements && listener != nil {
		listener(n.id, true)
	}
	return true
}

func (n *ListNotification[T]) observe(listener EmptinessListener) {
	n.mu.Lock()
	n.listener = listener
	n.mu.Unlock()
}
