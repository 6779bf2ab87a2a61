package models

import (
	"errors"
	"strings"
	"sync"
)

// ErrAlbumTitleMustNotBeEmpty is returned by Album.Modify for a blank title.
var ErrAlbumTitleMustNotBeEmpty = errors.New("album title must not be empty")

// Album is a node in a Sone's album tree. Children are ordered by position.
type Album struct {
	id     string
	soneID string
	parent *Album

	mu          sync.RWMutex
	title       string
	description string
	albums      []*Album
}

// AlbumDocument is the stored form of an album (MongoDB)
type AlbumDocument struct {
	ID          string `json:"id" bson:"_id"`
	SoneID      string `json:"sone_id" bson:"sone_id"`
	ParentID    string `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	Position    int    `json:"position" bson:"position"`
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
}

// NewRootAlbum creates the invisible root album of a Sone.
func NewRootAlbum(id, soneID string) *Album {
	return &Album{id: id, soneID: soneID}
}

// NewAlbum creates an album and appends it to parent's children.
func NewAlbum(id string, parent *Album, title, description string) *Album {
	album := &Album{
		id:          id,
		soneID:      parent.soneID,
		parent:      parent,
		title:       title,
		description: description,
	}
	parent.mu.Lock()
	parent.albums = append(parent.albums, album)
	parent.mu.Unlock()
	return album
}

func (a *Album) ID() string { return a.id }
func (a *Album) SoneID() string { return a.soneID }
func (a *Album) Parent() *Album { return a.parent }

func (a *Album) Title() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.title
}

func (a *Album) Description() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.description
}

// Albums returns a copy of the ordered children.
func (a *Album) Albums() []*Album {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*Album, len(a.albums))
	copy(out, a.albums)
	return out
}

// MoveAlbumUp swaps child with its preceding sibling. Moving the first
// child, or an album that is not a child, changes nothing.
func (a *Album) MoveAlbumUp(child *Album) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.indexOf(child)
	if i <= 0 {
		return false
	}
	a.albums[i-1], a.albums[i] = a.albums[i], a.albums[i-1]
	return true
}

// MoveAlbumDown swaps child with its following sibling.
func (a *Album) MoveAlbumDown(child *Album) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.indexOf(child)
	if i < 0 || i == len(a.albums)-1 {
		return false
	}
	a.albums[i], a.albums[i+1] = a.albums[i+1], a.albums[i]
	return true
}

// ValidateAlbumTitle rejects blank titles.
func ValidateAlbumTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrAlbumTitleMustNotBeEmpty
	}
	return nil
}

// Modify replaces title and description. The title must not be blank.
func (a *Album) Modify(title, description string) error {
	if err := ValidateAlbumTitle(title); err != nil {
		return err
	}
	a.mu.Lock()
	a.title = title
	a.description = description
	a.mu.Unlock()
	return nil
}

// Documents flattens the subtree below a into storable documents,
// parents before children.
func (a *Album) Documents() []AlbumDocument {
	var docs []AlbumDocument
	for i, child := range a.Albums() {
		parentID := ""
		if a.parent != nil {
			parentID = a.id
		}
		docs = append(docs, AlbumDocument{
			ID:          child.id,
			SoneID:      child.soneID,
			ParentID:    parentID,
			Position:    i,
			Title:       child.Title(),
			Description: child.Description(),
		})
		docs = append(docs, child.Documents()...)
	}
	return docs
}

// caller holds a.mu
func (a *Album) indexOf(child *Album) int {
	for i, album := range a.albums {
		if album == child {
			return i
		}
	}
	return -1
}
