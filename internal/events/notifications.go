package events

import (
	"github.com/anonto42/sone/backend/internal/models"
	"github.com/anonto42/sone/backend/internal/notify"
)

// Notification ids.
const (
	NewSoneID         = "new-sone-notification"
	NewPostID         = "new-post-notification"
	LocalPostID       = "local-post-notification"
	LockedSonesID     = "sones-locked-notification"
	LockedOnStartupID = "sone-locked-on-startup"
)

// Notifications are the list notifications the dispatcher writes to.
type Notifications struct {
	NewSones        *notify.ListNotification[*models.Sone]
	NewPosts        *notify.ListNotification[*models.Post]
	LocalPosts      *notify.ListNotification[*models.Post]
	LockedSones     *notify.ListNotification[*models.Sone]
	LockedOnStartup *notify.ListNotification[*models.Sone]
}

func soneKey(s *models.Sone) string { return s.ID() }
func postKey(p *models.Post) string { return p.ID }

// NewNotifications creates the notifications and registers them with r.
func NewNotifications(r *notify.Registry) Notifications {
	n := Notifications{
		NewSones:        notify.NewList(NewSoneID, soneKey, false),
		NewPosts:        notify.NewList(NewPostID, postKey, false),
		LocalPosts:      notify.NewList(LocalPostID, postKey, false),
		LockedSones:     notify.NewList(LockedSonesID, soneKey, true),
		LockedOnStartup: notify.NewList(LockedOnStartupID, soneKey, true),
	}
	r.MustRegister(n.NewSones, n.NewPosts, n.LocalPosts, n.LockedSones, n.LockedOnStartup)
	return n
}
