// Package events maps domain events (discovery, lock changes, posts marked
// known) onto notification updates.
package events

import (
	"fmt"

	"github.com/anonto42/sone/backend/internal/models"
)

// Kind identifies a domain event.
type Kind int

const (
	NewSoneFound Kind = iota + 1
	SoneMarkedKnown
	SoneRemoved
	SoneLockedOnStartup
	SoneLocked
	SoneUnlocked
	NewPostFound
	PostMarkedKnown
	PostRemoved
)

var kindNames = map[Kind]string{
	NewSoneFound:        "new-sone-found",
	SoneMarkedKnown:     "sone-marked-known",
	SoneRemoved:         "sone-removed",
	SoneLockedOnStartup: "sone-locked-on-startup",
	SoneLocked:          "sone-locked",
	SoneUnlocked:        "sone-unlocked",
	NewPostFound:        "new-post-found",
	PostMarkedKnown:     "post-marked-known",
	PostRemoved:         "post-removed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is a tagged union: Sone is set for Sone events, Post for post
// events. For post events Sone is the post's author when it is known.
type Event struct {
	Kind Kind
	Sone *models.Sone
	Post *models.Post
}
