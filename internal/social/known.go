package social

import "sync"

// KnownPosts is the set of post ids the user has already seen.
type KnownPosts struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewKnownPosts returns a set seeded with ids loaded from storage.
func NewKnownPosts(ids ...string) *KnownPosts {
	k := &KnownPosts{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		k.ids[id] = struct{}{}
	}
	return k
}

// Mark adds id and returns true only for the first call with that id.
func (k *KnownPosts) Mark(id string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.ids[id]; ok {
		return false
	}
	k.ids[id] = struct{}{}
	return true
}

func (k *KnownPosts) IsKnown(id string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	_, ok := k.ids[id]
	return ok
}
