package models

import (
	"sort"
	"sync"
)

// Sone is a social actor. Its follow-set, blocked-id set and liked-id sets
// are private and only change through its methods, each of which holds the
// Sone's own lock.
type Sone struct {
	id    string
	name  string
	local bool

	mu           sync.RWMutex
	locked       bool
	following    map[string]struct{}
	blocked      map[string]struct{}
	likedPosts   map[string]struct{}
	likedReplies map[string]struct{}
}

// SoneSnapshot is a consistent copy of a Sone's mutable state
type SoneSnapshot struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Local        bool     `json:"local"`
	Locked       bool     `json:"locked"`
	Following    []string `json:"following"`
	Blocked      []string `json:"blocked"`
	LikedPosts   []string `json:"liked_posts"`
	LikedReplies []string `json:"liked_replies"`
}

// NewSone creates a Sone with empty sets
func NewSone(id, name string, local bool) *Sone {
	return &Sone{
		id:           id,
		name:         name,
		local:        local,
		following:    make(map[string]struct{}),
		blocked:      make(map[string]struct{}),
		likedPosts:   make(map[string]struct{}),
		likedReplies: make(map[string]struct{}),
	}
}

// RestoreSone rebuilds a Sone from a stored snapshot.
func RestoreSone(s SoneSnapshot) *Sone {
	sone := NewSone(s.ID, s.Name, s.Local)
	sone.locked = s.Locked
	for _, id := range s.Following {
		if id != s.ID {
			sone.following[id] = struct{}{}
		}
	}
	for _, id := range s.Blocked {
		if id != s.ID {
			sone.blocked[id] = struct{}{}
		}
	}
	for _, id := range s.LikedPosts {
		sone.likedPosts[id] = struct{}{}
	}
	for _, id := range s.LikedReplies {
		sone.likedReplies[id] = struct{}{}
	}
	return sone
}

func (s *Sone) ID() string { return s.id }
func (s *Sone) Name() string { return s.name }
func (s *Sone) IsLocal() bool { return s.local }

// IsLocked reports whether the Sone is currently locked against inserts.
func (s *Sone) IsLocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locked
}

// SetLocked changes the lock state and reports whether it actually changed.
func (s *Sone) SetLocked(locked bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked == locked {
		return false
	}
	s.locked = locked
	return true
}

// Follow adds id to the follow-set. Following oneself is ignored.
func (s *Sone) Follow(id string) bool {
	if id == s.id {
		return false
	}
	return addTo(&s.mu, s.following, id)
}

// Unfollow removes id from the follow-set.
func (s *Sone) Unfollow(id string) bool {
	return removeFrom(&s.mu, s.following, id)
}

func (s *Sone) IsFollowing(id string) bool {
	return contains(&s.mu, s.following, id)
}

// FollowedIDs returns the sorted follow-set.
func (s *Sone) FollowedIDs() []string {
	return sortedKeys(&s.mu, s.following)
}

// Block adds id to the blocked-id set. Blocking oneself is ignored.
func (s *Sone) Block(id string) bool {
	if id == s.id {
		return false
	}
	return addTo(&s.mu, s.blocked, id)
}

func (s *Sone) Unblock(id string) bool { return removeFrom(&s.mu, s.blocked, id) }
func (s *Sone) IsBlocked(id string) bool { return contains(&s.mu, s.blocked, id) }
func (s *Sone) BlockedIDs() []string { return sortedKeys(&s.mu, s.blocked) }

func (s *Sone) LikePost(id string) bool { return addTo(&s.mu, s.likedPosts, id) }
func (s *Sone) UnlikePost(id string) bool { return removeFrom(&s.mu, s.likedPosts, id) }
func (s *Sone) IsLikedPost(id string) bool { return contains(&s.mu, s.likedPosts, id) }
func (s *Sone) LikedPostIDs() []string { return sortedKeys(&s.mu, s.likedPosts) }
func (s *Sone) LikeReply(id string) bool { return addTo(&s.mu, s.likedReplies, id) }
func (s *Sone) UnlikeReply(id string) bool { return removeFrom(&s.mu, s.likedReplies, id) }
func (s *Sone) IsLikedReply(id string) bool { return contains(&s.mu, s.likedReplies, id) }
func (s *Sone) LikedReplyIDs() []string { return sortedKeys(&s.mu, s.likedReplies) }

// Snapshot copies every set under a single read lock.
func (s *Sone) Snapshot() SoneSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SoneSnapshot{
		ID:           s.id,
		Name:         s.name,
		Local:        s.local,
		Locked:       s.locked,
		Following:    keys(s.following),
		Blocked:      keys(s.blocked),
		LikedPosts:   keys(s.likedPosts),
		LikedReplies: keys(s.likedReplies),
	}
}

func addTo(mu *sync.RWMutex, set map[string]struct{}, id string) bool {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := set[id]; ok {
		return false
	}
	set[id] = struct{}{}
	return true
}

func removeFrom(mu *sync.RWMutex, set map[string]struct{}, id string) bool {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := set[id]; !ok {
		return false
	}
	delete(set, id)
	return true
}

func contains(mu *sync.RWMutex, set map[string]struct{}, id string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := set[id]
	return ok
}

func sortedKeys(mu *sync.RWMutex, set map[string]struct{}) []string {
	mu.RLock()
	defer mu.RUnlock()
	return keys(set)
}

// keys must be called with the owning lock held.
func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
