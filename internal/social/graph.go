package social

import (
	"errors"
	"fmt"
	"log"

	"github.com/anonto42/sone/backend/internal/models"
)

var (
	// ErrUnknownTarget means the id given for a follow or like does not
	// resolve to anything this process knows about.
	ErrUnknownTarget = errors.New("unknown target")
	// ErrCannotFollowSelf is returned when a Sone tries to follow itself.
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)

// ContentKind selects the liked-id set a like or unlike applies to.
type ContentKind int

const (
	KindPost ContentKind = iota + 1
	KindReply
)

// ParseContentKind maps the request values "post" and "reply".
func ParseContentKind(s string) (ContentKind, bool) {
	switch s {
	case "post":
		return KindPost, true
	case "reply":
		return KindReply, true
	}
	return 0, false
}

func (k ContentKind) String() string {
	switch k {
	case KindPost:
		return "post"
	case KindReply:
		return "reply"
	}
	return fmt.Sprintf("ContentKind(%d)", int(k))
}

// ConfigurationToucher is told after every committed mutation so the
// configuration store can persist it.
type ConfigurationToucher interface {
	TouchConfiguration()
}

// Graph applies follow, block and like mutations. Each mutation only locks the
// acting Sone.
type Graph struct {
	sones   SoneProvider
	posts   PostProvider
	replies ReplyProvider
	toucher ConfigurationToucher
}

// NewGraph returns a Graph resolving targets through the given providers.
func NewGraph(sones SoneProvider, posts PostProvider, replies ReplyProvider, toucher ConfigurationToucher) *Graph {
	if sones == nil || posts == nil || replies == nil || toucher == nil {
		panic("social: graph dependencies must not be nil")
	}
	return &Graph{sones: sones, posts: posts, replies: replies, toucher: toucher}
}

// Follow adds targetID to actor's follow-set. The target must currently
// resolve; following an already followed Sone succeeds without change.
func (g *Graph) Follow(actor *models.Sone, targetID string) error {
	if targetID == actor.ID() {
		return ErrCannotFollowSelf
	}
	if _, ok := g.sones.GetSone(targetID); !ok {
		return fmt.Errorf("follow %q: %w", targetID, ErrUnknownTarget)
	}
	if actor.Follow(targetID) {
		log.Printf("social: %s now follows %s", actor.ID(), targetID)
	}
	g.toucher.TouchConfiguration()
	return nil
}

// Unfollow removes targetID from actor's follow-set. The target does not
// have to resolve: a vanished Sone must stay removable.
func (g *Graph) Unfollow(actor *models.Sone, targetID string) {
	if actor.Unfollow(targetID) {
		log.Printf("social: %s unfollowed %s", actor.ID(), targetID)
	}
	g.toucher.TouchConfiguration()
}

// UnfollowAll unfollows every id. It cannot partially fail.
func (g *Graph) UnfollowAll(actor *models.Sone, targetIDs []string) {
	for _, id := range targetIDs {
		g.Unfollow(actor, id)
	}
}

// Block adds targetID to actor's blocked-id set. Like Unblock it never
// fails; a blocked id does not have to resolve.
func (g *Graph) Block(actor *models.Sone, targetID string) {
	if actor.Block(targetID) {
		log.Printf("social: %s blocked %s", actor.ID(), targetID)
	}
	g.toucher.TouchConfiguration()
}

// Unblock removes targetID from actor's blocked-id set.
func (g *Graph) Unblock(actor *models.Sone, targetID string) {
	if actor.Unblock(targetID) {
		log.Printf("social: %s unblocked %s", actor.ID(), targetID)
	}
	g.toucher.TouchConfiguration()
}

// Like adds id to the liked set for kind. The post or reply must resolve.
func (g *Graph) Like(actor *models.Sone, kind ContentKind, id string) error {
	switch kind {
	case KindPost:
		if _, ok := g.posts.GetPost(id); !ok {
			return fmt.Errorf("like post %q: %w", id, ErrUnknownTarget)
		}
		actor.LikePost(id)
	case KindReply:
		if _, ok := g.replies.GetReply(id); !ok {
			return fmt.Errorf("like reply %q: %w", id, ErrUnknownTarget)
		}
		actor.LikeReply(id)
	default:
		panic(fmt.Sprintf("social: unknown content kind %v", kind))
	}
	g.toucher.TouchConfiguration()
	return nil
}

// Unlike removes id from the liked set for kind. Content that no longer
// resolves can still be unliked.
func (g *Graph) Unlike(actor *models.Sone, kind ContentKind, id string) {
	switch kind {
	case KindPost:
		actor.UnlikePost(id)
	case KindReply:
		actor.UnlikeReply(id)
	default:
		panic(fmt.Sprintf("social: unknown content kind %v", kind))
	}
	g.toucher.TouchConfiguration()
}
