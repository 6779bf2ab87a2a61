// Package social resolves Sones, posts and replies by id and applies
// follow/like mutations to a Sone's social graph.
package social

import (
	"sort"
	"sync"

	"github.com/anonto42/sone/backend/internal/models"
)

// SoneProvider resolves Sones by id.
type SoneProvider interface {
	GetSone(id string) (*models.Sone, bool)
}

// PostProvider resolves posts by id.
type PostProvider interface {
	GetPost(id string) (*models.Post, bool)
}

// ReplyProvider resolves replies by id.
type ReplyProvider interface {
	GetReply(id string) (*models.Reply, bool)
}

// Directory is the in-memory table of every Sone, post and reply currently
// known to the process.
type Directory struct {
	mu      sync.RWMutex
	sones   map[string]*models.Sone
	posts   map[string]*models.Post
	replies map[string]*models.Reply
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{
		sones:   make(map[string]*models.Sone),
		posts:   make(map[string]*models.Post),
		replies: make(map[string]*models.Reply),
	}
}

// AddSone stores sone and reports whether it was not known before.
func (d *Directory) AddSone(sone *models.Sone) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.sones[sone.ID()]; ok {
		return false
	}
	d.sones[sone.ID()] = sone
	return true
}

// RemoveSone forgets the Sone with the given id and returns it.
func (d *Directory) RemoveSone(id string) (*models.Sone, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sone, ok := d.sones[id]
	delete(d.sones, id)
	return sone, ok
}

func (d *Directory) GetSone(id string) (*models.Sone, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	sone, ok := d.sones[id]
	return sone, ok
}

// GetLocalSone resolves id to a Sone owned by this process.
func (d *Directory) GetLocalSone(id string) (*models.Sone, bool) {
	sone, ok := d.GetSone(id)
	if !ok || !sone.IsLocal() {
		return nil, false
	}
	return sone, true
}

// LocalSones returns the local Sones ordered by id.
func (d *Directory) LocalSones() []*models.Sone {
	d.mu.RLock()
	local := make([]*models.Sone, 0)
	for _, sone := range d.sones {
		if sone.IsLocal() {
			local = append(local, sone)
		}
	}
	d.mu.RUnlock()

	sort.Slice(local, func(i, j int) bool { return local[i].ID() < local[j].ID() })
	return local
}

// RemoteSoneIDs returns the ids of every Sone not owned by this process.
func (d *Directory) RemoteSoneIDs() []string {
	d.mu.RLock()
	ids := make([]string, 0, len(d.sones))
	for id, sone := range d.sones {
		if !sone.IsLocal() {
			ids = append(ids, id)
		}
	}
	d.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// AddPost stores post and reports whether it was not known before.
func (d *Directory) AddPost(post *models.Post) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.posts[post.ID]; ok {
		return false
	}
	d.posts[post.ID] = post
	return true
}

func (d *Directory) RemovePost(id string) (*models.Post, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	post, ok := d.posts[id]
	delete(d.posts, id)
	return post, ok
}

// PostIDs returns the ids of every stored post.
func (d *Directory) PostIDs() []string {
	d.mu.RLock()
	ids := make([]string, 0, len(d.posts))
	for id := range d.posts {
		ids = append(ids, id)
	}
	d.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

func (d *Directory) GetPost(id string) (*models.Post, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	post, ok := d.posts[id]
	return post, ok
}

func (d *Directory) AddReply(reply *models.Reply) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.replies[reply.ID]; ok {
		return false
	}
	d.replies[reply.ID] = reply
	return true
}

func (d *Directory) GetReply(id string) (*models.Reply, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	reply, ok := d.replies[id]
	return reply, ok
}
