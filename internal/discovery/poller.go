// Package discovery periodically reads remote Sones, posts and replies from
// storage and feeds what changed into the core.
package discovery

import (
	"context"
	"fmt"
	"log"

	"github.com/anonto42/sone/backend/internal/core"
	"github.com/anonto42/sone/backend/internal/models"
)

const defaultPageSize = 200

// SoneSource lists the remote Sones currently stored.
type SoneSource interface {
	GetRemoteSones() ([]models.SoneRecord, error)
}

// PostSource pages through every stored post and reply.
type PostSource interface {
	GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	GetAllReplies(ctx context.Context, skip, limit int64) ([]models.Reply, error)
}

// Poller compares storage with the core's directory on every Poll.
type Poller struct {
	core     *core.Core
	sones    SoneSource
	posts    PostSource
	pageSize int64
}

// NewPoller creates a poller feeding c.
func NewPoller(c *core.Core, sones SoneSource, posts PostSource) *Poller {
	if c == nil || sones == nil || posts == nil {
		panic("discovery: dependencies must not be nil")
	}
	return &Poller{core: c, sones: sones, posts: posts, pageSize: defaultPageSize}
}

// Poll announces new remote Sones, posts and replies, and drops remote Sones
// and posts that are gone from storage. Sones go first so new posts resolve
// their author.
func (p *Poller) Poll(ctx context.Context) error {
	if err := p.pollSones(); err != nil {
		return err
	}
	if err := p.pollPosts(ctx); err != nil {
		return err
	}
	return p.pollReplies(ctx)
}

func (p *Poller) pollSones() error {
	records, err := p.sones.GetRemoteSones()
	if err != nil {
		return fmt.Errorf("load remote sones: %w", err)
	}

	seen := make(map[string]struct{}, len(records))
	added := 0
	for _, rec := range records {
		if rec.Local {
			continue
		}
		seen[rec.ID] = struct{}{}
		if _, ok := p.core.Directory.GetSone(rec.ID); ok {
			continue
		}
		p.core.SoneDiscovered(models.NewSone(rec.ID, rec.Name, false), rec.Known)
		added++
	}

	removed := 0
	for _, id := range p.core.Directory.RemoteSoneIDs() {
		if _, ok := seen[id]; !ok {
			p.core.RemoveSone(id)
			removed++
		}
	}
	if added > 0 || removed > 0 {
		log.Printf("discovery: %d sones added, %d removed", added, removed)
	}
	return nil
}

func (p *Poller) pollPosts(ctx context.Context) error {
	seen := make(map[string]struct{})
	for skip := int64(0); ; skip += p.pageSize {
		posts, err := p.posts.GetAllPosts(ctx, skip, p.pageSize)
		if err != nil {
			return fmt.Errorf("load posts: %w", err)
		}
		for i := range posts {
			post := posts[i]
			seen[post.ID] = struct{}{}
			if _, ok := p.core.Directory.GetPost(post.ID); !ok {
				p.core.PostDiscovered(&post)
			}
		}
		if int64(len(posts)) < p.pageSize {
			break
		}
	}

	for _, id := range p.core.Directory.PostIDs() {
		if _, ok := seen[id]; !ok {
			p.core.RemovePost(id)
		}
	}
	return nil
}

func (p *Poller) pollReplies(ctx context.Context) error {
	for skip := int64(0); ; skip += p.pageSize {
		replies, err := p.posts.GetAllReplies(ctx, skip, p.pageSize)
		if err != nil {
			return fmt.Errorf("load replies: %w", err)
		}
		for i := range replies {
			reply := replies[i]
			p.core.ReplyDiscovered(&reply)
		}
		if int64(len(replies)) < p.pageSize {
			return nil
		}
	}
}
