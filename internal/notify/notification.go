// Package notify holds the notifications shown to the user and the registry
// that owns them. A notification is backed by a list of subjects; an empty
// notification is inactive but stays registered so it can be filled again.
package notify

import "time"

// Notification is the common view of every registered notification.
type Notification interface {
	ID() string
	IsDismissable() bool
	IsEmpty() bool
	// Dismiss clears the notification if it is dismissable and reports
	// whether it did.
	Dismiss() bool
	LastUpdated() time.Time
	// ElementIDs returns the keys of the subjects in display order.
	ElementIDs() []string
}

// EmptinessListener is told when a notification becomes empty or non-empty.
type EmptinessListener func(id string, empty bool)

// observable is implemented by the notifications in this package so the
// registry can attach itself when they are registered.
type observable interface {
	observe(EmptinessListener)
}
