package events

import (
	"log"
	"sync"
	"time"

	"github.com/anonto42/sone/backend/internal/models"
)

// PostMarker performs the mark-known side effect for a post.
type PostMarker interface {
	MarkPostKnown(post *models.Post)
}

// KnownChecker reports whether a post was already marked known.
type KnownChecker interface {
	IsKnown(postID string) bool
}

// Delayer runs a task later and returns a cancel function.
type Delayer interface {
	After(delay time.Duration, task func()) (cancel func() bool)
}

// Options tune the dispatcher.
type Options struct {
	// LockedDelay is how long a Sone has to stay locked before it shows up
	// in the locked notification. Zero adds it immediately.
	LockedDelay time.Duration
	// FirstStart reports whether the process is in its first start; new
	// posts are then marked known instead of being announced.
	FirstStart func() bool
}

// Dispatcher applies the notification policy for every event kind.
type Dispatcher struct {
	notifications Notifications
	marker        PostMarker
	known         KnownChecker
	delayer       Delayer
	opts          Options

	mu           sync.Mutex
	pendingLocks map[string]*pendingLock
}

type pendingLock struct {
	cancel func() bool
}

// NewDispatcher wires a dispatcher. marker is typically the core, which
// itself dispatches PostMarkedKnown after marking.
func NewDispatcher(n Notifications, marker PostMarker, known KnownChecker, delayer Delayer, opts Options) *Dispatcher {
	if opts.FirstStart == nil {
		opts.FirstStart = func() bool { return false }
	}
	return &Dispatcher{
		notifications: n,
		marker:        marker,
		known:         known,
		delayer:       delayer,
		opts:          opts,
		pendingLocks:  make(map[string]*pendingLock),
	}
}

// Dispatch handles one event. Events missing their subject are dropped.
func (d *Dispatcher) Dispatch(ev Event) {
	switch ev.Kind {
	case NewSoneFound:
		if ev.Sone != nil {
			d.notifications.NewSones.Add(ev.Sone)
		}
	case SoneMarkedKnown, SoneRemoved:
		if ev.Sone != nil {
			d.notifications.NewSones.Remove(ev.Sone)
		}
	case SoneLockedOnStartup:
		if ev.Sone != nil {
			d.notifications.LockedOnStartup.Add(ev.Sone)
		}
	case SoneLocked:
		if ev.Sone != nil {
			d.soneLocked(ev.Sone)
		}
	case SoneUnlocked:
		if ev.Sone != nil {
			d.soneUnlocked(ev.Sone)
		}
	case NewPostFound:
		if ev.Post != nil {
			d.newPostFound(ev.Post, ev.Sone)
		}
	case PostMarkedKnown, PostRemoved:
		if ev.Post != nil {
			d.notifications.NewPosts.Remove(ev.Post)
			d.notifications.LocalPosts.Remove(ev.Post)
		}
	default:
		log.Printf("events: ignoring unknown event %v", ev.Kind)
	}
}

func (d *Dispatcher) newPostFound(post *models.Post, author *models.Sone) {
	if d.opts.FirstStart() {
		d.marker.MarkPostKnown(post)
		return
	}
	if d.known.IsKnown(post.ID) {
		return
	}
	if author != nil && author.IsLocal() {
		d.notifications.LocalPosts.Add(post)
		return
	}
	d.notifications.NewPosts.Add(post)
}

func (d *Dispatcher) soneLocked(sone *models.Sone) {
	if d.opts.LockedDelay <= 0 {
		d.notifications.LockedSones.Add(sone)
		return
	}

	p := &pendingLock{}
	d.mu.Lock()
	if _, pending := d.pendingLocks[sone.ID()]; pending {
		d.mu.Unlock()
		return
	}
	d.pendingLocks[sone.ID()] = p
	d.mu.Unlock()

	cancel := d.delayer.After(d.opts.LockedDelay, func() {
		d.mu.Lock()
		if d.pendingLocks[sone.ID()] != p {
			// unlocked in the meantime
			d.mu.Unlock()
			return
		}
		delete(d.pendingLocks, sone.ID())
		d.mu.Unlock()
		d.notifications.LockedSones.Add(sone)
	})

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pendingLocks[sone.ID()] != p {
		cancel()
		return
	}
	p.cancel = cancel
}

func (d *Dispatcher) soneUnlocked(sone *models.Sone) {
	d.mu.Lock()
	if p, ok := d.pendingLocks[sone.ID()]; ok {
		if p.cancel != nil {
			p.cancel()
		}
		delete(d.pendingLocks, sone.ID())
	}
	d.mu.Unlock()
	d.notifications.LockedSones.Remove(sone)
}

// PendingLocks returns how many locked Sones are waiting for their delay.
func (d *Dispatcher) PendingLocks() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pendingLocks)
}
