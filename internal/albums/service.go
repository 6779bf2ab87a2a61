// Package albums keeps every Sone's album tree and applies the reorder and
// edit operations of the image browser.
package albums

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/anonto42/sone/backend/internal/models"
	"github.com/anonto42/sone/backend/internal/social"
	"github.com/google/uuid"
)

var (
	// ErrInvalidAlbum means the album id does not resolve.
	ErrInvalidAlbum = errors.New("invalid album")
	// ErrPermissionDenied means the acting Sone may not change the album.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrAlbumTitleMustNotBeEmpty is returned by Edit and Create for a blank title.
	ErrAlbumTitleMustNotBeEmpty = models.ErrAlbumTitleMustNotBeEmpty
)

// Service indexes albums by id. Root albums are kept per Sone and are never
// addressable by id from outside.
type Service struct {
	toucher social.ConfigurationToucher

	mu     sync.RWMutex
	roots  map[string]*models.Album
	albums map[string]*models.Album
}

// NewService returns an empty album index.
func NewService(toucher social.ConfigurationToucher) *Service {
	if toucher == nil {
		panic("albums: toucher must not be nil")
	}
	return &Service{
		toucher: toucher,
		roots:   make(map[string]*models.Album),
		albums:  make(map[string]*models.Album),
	}
}

// Root returns the root album of soneID, creating it on first use.
func (s *Service) Root(soneID string) *models.Album {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rootLocked(soneID)
}

func (s *Service) rootLocked(soneID string) *models.Album {
	root, ok := s.roots[soneID]
	if !ok {
		root = models.NewRootAlbum(soneID+"-root", soneID)
		s.roots[soneID] = root
	}
	return root
}

// Get resolves a non-root album.
func (s *Service) Get(id string) (*models.Album, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	album, ok := s.albums[id]
	return album, ok
}

// Create adds a new album below parentID, or below the actor's root album
// when parentID is empty.
func (s *Service) Create(actor *models.Sone, parentID, title, description string) (*models.Album, error) {
	if !actor.IsLocal() {
		return nil, ErrPermissionDenied
	}
	if err := models.ValidateAlbumTitle(title); err != nil {
		return nil, err
	}

	s.mu.Lock()
	parent := s.rootLocked(actor.ID())
	if parentID != "" {
		p, ok := s.albums[parentID]
		if !ok {
			s.mu.Unlock()
			return nil, fmt.Errorf("create below %q: %w", parentID, ErrInvalidAlbum)
		}
		if p.SoneID() != actor.ID() {
			s.mu.Unlock()
			return nil, ErrPermissionDenied
		}
		parent = p
	}
	album := models.NewAlbum(uuid.NewString(), parent, title, description)
	s.albums[album.ID()] = album
	s.mu.Unlock()

	s.toucher.TouchConfiguration()
	return album, nil
}

// Restore rebuilds a Sone's tree from stored documents in any order.
// Siblings are ordered by Position; documents whose parent is missing are
// skipped. It returns the number of albums restored.
func (s *Service) Restore(soneID string, docs []models.AlbumDocument) int {
	children := make(map[string][]models.AlbumDocument)
	for _, doc := range docs {
		children[doc.ParentID] = append(children[doc.ParentID], doc)
	}
	for _, siblings := range children {
		sort.SliceStable(siblings, func(i, j int) bool { return siblings[i].Position < siblings[j].Position })
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	restored := 0
	var attach func(parent *models.Album, parentID string)
	attach = func(parent *models.Album, parentID string) {
		for _, doc := range children[parentID] {
			album := models.NewAlbum(doc.ID, parent, doc.Title, doc.Description)
			s.albums[album.ID()] = album
			restored++
			attach(album, doc.ID)
		}
	}
	attach(s.rootLocked(soneID), "")
	return restored
}

// Documents returns the storable form of soneID's tree.
func (s *Service) Documents(soneID string) []models.AlbumDocument {
	s.mu.RLock()
	root, ok := s.roots[soneID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	return root.Documents()
}

// SoneIDs returns every Sone that has an album tree.
func (s *Service) SoneIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.roots))
	for id := range s.roots {
		ids = append(ids, id)
	}
	return ids
}

// MoveUp swaps the album with its preceding sibling and returns the parent
// id. Moving the first album changes nothing but still succeeds.
func (s *Service) MoveUp(actor *models.Sone, albumID string) (string, error) {
	album, err := s.editable(actor, albumID)
	if err != nil {
		return "", err
	}
	album.Parent().MoveAlbumUp(album)
	s.toucher.TouchConfiguration()
	return album.Parent().ID(), nil
}

// MoveDown swaps the album with its following sibling and returns the
// parent id.
func (s *Service) MoveDown(actor *models.Sone, albumID string) (string, error) {
	album, err := s.editable(actor, albumID)
	if err != nil {
		return "", err
	}
	album.Parent().MoveAlbumDown(album)
	s.toucher.TouchConfiguration()
	return album.Parent().ID(), nil
}

// Edit changes title and description.
func (s *Service) Edit(actor *models.Sone, albumID, title, description string) error {
	album, err := s.editable(actor, albumID)
	if err != nil {
		return err
	}
	if err := album.Modify(title, description); err != nil {
		return err
	}
	s.toucher.TouchConfiguration()
	return nil
}

func (s *Service) editable(actor *models.Sone, albumID string) (*models.Album, error) {
	album, ok := s.Get(albumID)
	if !ok {
		return nil, fmt.Errorf("album %q: %w", albumID, ErrInvalidAlbum)
	}
	if actor == nil || !actor.IsLocal() || album.SoneID() != actor.ID() {
		return nil, ErrPermissionDenied
	}
	return album, nil
}
