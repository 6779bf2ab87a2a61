package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/anonto42/sone/backend/internal/models"
)

// LocalSoneSource lists the Sones whose state is persisted.
type LocalSoneSource interface {
	LocalSones() []*models.Sone
}

// AlbumSource yields the storable album tree of a Sone.
type AlbumSource interface {
	Documents(soneID string) []models.AlbumDocument
}

// ConfigurationSaver persists local Sones and their albums after mutations.
// TouchConfiguration only marks the state dirty; Flush writes it.
type ConfigurationSaver struct {
	sones  SoneRepository
	albums AlbumRepository
	dirty  atomic.Bool

	mu          sync.Mutex
	localSones  LocalSoneSource
	albumSource AlbumSource
}

// NewConfigurationSaver creates a saver writing through the given repositories
func NewConfigurationSaver(sones SoneRepository, albums AlbumRepository) *ConfigurationSaver {
	return &ConfigurationSaver{sones: sones, albums: albums}
}

// Watch sets where the saver reads state from. It is called once the core
// exists, since the core itself needs the saver.
func (s *ConfigurationSaver) Watch(localSones LocalSoneSource, albums AlbumSource) {
	s.mu.Lock()
	s.localSones = localSones
	s.albumSource = albums
	s.mu.Unlock()
}

func (s *ConfigurationSaver) TouchConfiguration() {
	s.dirty.Store(true)
}

func (s *ConfigurationSaver) IsDirty() bool {
	return s.dirty.Load()
}

// Flush writes every local Sone if anything was touched since the last
// flush. On failure the state stays dirty so the next flush retries.
// Touches made before Watch stay pending until there is a source to read.
func (s *ConfigurationSaver) Flush(ctx context.Context) error {
	s.mu.Lock()
	localSones, albumSource := s.localSones, s.albumSource
	s.mu.Unlock()
	if localSones == nil {
		return nil
	}
	if !s.dirty.Swap(false) {
		return nil
	}

	var errs []error
	saved := 0
	for _, sone := range localSones.LocalSones() {
		if err := s.sones.SaveSone(sone.Snapshot()); err != nil {
			errs = append(errs, fmt.Errorf("save sone %s: %w", sone.ID(), err))
			continue
		}
		if albumSource != nil {
			if err := s.albums.SaveAlbums(ctx, sone.ID(), albumSource.Documents(sone.ID())); err != nil {
				errs = append(errs, fmt.Errorf("save albums of %s: %w", sone.ID(), err))
				continue
			}
		}
		saved++
	}

	if len(errs) > 0 {
		s.dirty.Store(true)
		return errors.Join(errs...)
	}
	log.Printf("configuration: saved %d local sones", saved)
	return nil
}
