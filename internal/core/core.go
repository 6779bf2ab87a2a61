// Package core wires the notification registry, the social graph, the album
// index and the event dispatcher into one context that request handlers and
// background jobs share.
package core

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anonto42/sone/backend/internal/albums"
	"github.com/anonto42/sone/backend/internal/events"
	"github.com/anonto42/sone/backend/internal/models"
	"github.com/anonto42/sone/backend/internal/notify"
	"github.com/anonto42/sone/backend/internal/social"
)

// Static notification ids.
const (
	StartupID    = "startup-notification"
	FirstStartID = "first-start-notification"
)

const persistTimeout = 5 * time.Second

// KnownPostStore persists post ids once they are marked known.
type KnownPostStore interface {
	MarkKnown(ctx context.Context, postID string) error
}

// KnownSoneStore persists that a remote Sone has been shown to the user.
type KnownSoneStore interface {
	MarkSoneKnown(ctx context.Context, soneID string) error
}

// Deps are the collaborators the core does not own.
type Deps struct {
	Toucher    social.ConfigurationToucher
	KnownStore KnownPostStore
	// KnownSones is optional; without it known Sones are only tracked in
	// memory.
	KnownSones KnownSoneStore
	Delayer    events.Delayer
	// KnownPosts seeds the known-post set from storage.
	KnownPosts []string
}

// Options mirror the timing settings of the configuration.
type Options struct {
	FirstStart              bool
	LockedNotificationDelay time.Duration
	StartupTimeout          time.Duration
}

// Core is the shared application context.
type Core struct {
	Directory     *social.Directory
	Known         *social.KnownPosts
	Registry      *notify.Registry
	Notifications events.Notifications
	Startup       *notify.Static
	FirstStart    *notify.Static
	Graph         *social.Graph
	Albums        *albums.Service

	dispatcher *events.Dispatcher
	toucher    social.ConfigurationToucher
	knownStore KnownPostStore
	knownSones KnownSoneStore
	delayer    events.Delayer
	opts       Options
	firstStart atomic.Bool

	// sone id -> *sync.Mutex, held across a lock change and its dispatch
	lockChanges sync.Map
}

// New builds the core. It panics when a dependency is missing or a
// notification id is registered twice.
func New(deps Deps, opts Options) *Core {
	if deps.Toucher == nil || deps.KnownStore == nil || deps.Delayer == nil {
		panic("core: dependencies must not be nil")
	}

	dir := social.NewDirectory()
	registry := notify.NewRegistry()
	registry.OnEmptinessChange(notify.LogTransitions)

	c := &Core{
		Directory:  dir,
		Known:      social.NewKnownPosts(deps.KnownPosts...),
		Registry:   registry,
		Startup:    notify.NewStatic(StartupID, true),
		FirstStart: notify.NewStatic(FirstStartID, true),
		Graph:      social.NewGraph(dir, dir, dir, deps.Toucher),
		Albums:     albums.NewService(deps.Toucher),
		toucher:    deps.Toucher,
		knownStore: deps.KnownStore,
		knownSones: deps.KnownSones,
		delayer:    deps.Delayer,
		opts:       opts,
	}
	c.firstStart.Store(opts.FirstStart)

	c.Notifications = events.NewNotifications(registry)
	registry.MustRegister(c.Startup, c.FirstStart)

	c.dispatcher = events.NewDispatcher(c.Notifications, c, c.Known, deps.Delayer, events.Options{
		LockedDelay: opts.LockedNotificationDelay,
		FirstStart:  c.firstStart.Load,
	})
	return c
}

// Start shows the startup notifications. The startup notification hides
// itself after the startup timeout, which also ends the first-start phase.
func (c *Core) Start() {
	c.Startup.Show()
	if c.firstStart.Load() {
		c.FirstStart.Show()
	}
	c.delayer.After(c.opts.StartupTimeout, func() {
		c.Startup.Hide()
		if c.firstStart.Swap(false) {
			log.Println("core: first start finished")
		}
	})
	log.Printf("core: started (first start: %v)", c.firstStart.Load())
}

// IsFirstStart reports whether new posts are still being marked known
// silently.
func (c *Core) IsFirstStart() bool {
	return c.firstStart.Load()
}

// Dispatch forwards ev to the notification policy.
func (c *Core) Dispatch(ev events.Event) {
	c.dispatcher.Dispatch(ev)
}

// PendingLocks returns how many lock notifications are still delayed.
func (c *Core) PendingLocks() int {
	return c.dispatcher.PendingLocks()
}

// SoneDiscovered adds sone to the directory. A Sone seen for the first time
// is announced unless it is local or already known. During the first start
// it is marked known instead.
func (c *Core) SoneDiscovered(sone *models.Sone, known bool) {
	if !c.Directory.AddSone(sone) {
		return
	}
	if sone.IsLocal() || known {
		return
	}
	if c.firstStart.Load() {
		c.persistSoneKnown(sone.ID())
		return
	}
	c.Dispatch(events.Event{Kind: events.NewSoneFound, Sone: sone})
}

// SoneStarted is called once per local Sone while loading. A Sone that is
// already locked shows up in the locked-on-startup notification.
func (c *Core) SoneStarted(sone *models.Sone) {
	if sone.IsLocal() && sone.IsLocked() {
		c.Dispatch(events.Event{Kind: events.SoneLockedOnStartup, Sone: sone})
	}
}

// RemoveSone drops a Sone from the directory and from every notification.
func (c *Core) RemoveSone(id string) {
	sone, ok := c.Directory.RemoveSone(id)
	if !ok {
		return
	}
	c.Dispatch(events.Event{Kind: events.SoneRemoved, Sone: sone})
}

// MarkSoneKnown removes a Sone from the new-sone notification.
func (c *Core) MarkSoneKnown(id string) error {
	sone, ok := c.Directory.GetSone(id)
	if !ok {
		return fmt.Errorf("mark sone %q known: %w", id, social.ErrUnknownTarget)
	}
	c.persistSoneKnown(id)
	c.Dispatch(events.Event{Kind: events.SoneMarkedKnown, Sone: sone})
	return nil
}

func (c *Core) persistSoneKnown(id string) {
	if c.knownSones == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := c.knownSones.MarkSoneKnown(ctx, id); err != nil {
		log.Printf("core: persisting known sone %s: %v", id, err)
	}
}

// PostDiscovered stores post and announces it if it is new.
func (c *Core) PostDiscovered(post *models.Post) {
	if !c.Directory.AddPost(post) {
		return
	}
	author, _ := c.Directory.GetSone(post.SoneID)
	c.Dispatch(events.Event{Kind: events.NewPostFound, Post: post, Sone: author})
}

// ReplyDiscovered stores reply so it can be liked.
func (c *Core) ReplyDiscovered(reply *models.Reply) {
	c.Directory.AddReply(reply)
}

// RemovePost drops a post from the directory and the post notifications.
func (c *Core) RemovePost(id string) {
	post, ok := c.Directory.RemovePost(id)
	if !ok {
		return
	}
	c.Dispatch(events.Event{Kind: events.PostRemoved, Post: post})
}

// MarkPostKnown marks post known. Only the first call per post persists
// the id and clears it from the post notifications.
func (c *Core) MarkPostKnown(post *models.Post) {
	if !c.Known.Mark(post.ID) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := c.knownStore.MarkKnown(ctx, post.ID); err != nil {
		log.Printf("core: persisting known post %s: %v", post.ID, err)
	}
	c.Dispatch(events.Event{Kind: events.PostMarkedKnown, Post: post})
}

// MarkPostsKnown marks every resolvable id known and skips the rest.
func (c *Core) MarkPostsKnown(ids []string) {
	for _, id := range ids {
		if post, ok := c.Directory.GetPost(id); ok {
			c.MarkPostKnown(post)
		}
	}
}

// LockSone locks a local Sone against inserts.
func (c *Core) LockSone(id string) error {
	return c.setLocked(id, true)
}

// UnlockSone unlocks a local Sone.
func (c *Core) UnlockSone(id string) error {
	return c.setLocked(id, false)
}

func (c *Core) setLocked(id string, locked bool) error {
	sone, ok := c.Directory.GetLocalSone(id)
	if !ok {
		return fmt.Errorf("lock %q: %w", id, social.ErrUnknownTarget)
	}

	mu, _ := c.lockChanges.LoadOrStore(id, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	changed := sone.SetLocked(locked)
	if changed {
		kind := events.SoneUnlocked
		if locked {
			kind = events.SoneLocked
		}
		c.Dispatch(events.Event{Kind: kind, Sone: sone})
	}
	mu.(*sync.Mutex).Unlock()

	if changed {
		c.toucher.TouchConfiguration()
	}
	return nil
}
