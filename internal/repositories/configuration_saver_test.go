package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/sone/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSoneRepository struct {
	saved []models.SoneSnapshot
	err   error
}

func (f *fakeSoneRepository) LoadLocalSones() ([]models.SoneSnapshot, error) { return f.saved, nil }

func (f *fakeSoneRepository) SaveSone(snapshot models.SoneSnapshot) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, snapshot)
	return nil
}

func (f *fakeSoneRepository) GetSoneIDByFirebaseUID(string) (string, error) { return "", nil }

type fakeAlbumRepository struct {
	saved map[string][]models.AlbumDocument
}

func (f *fakeAlbumRepository) SaveAlbums(_ context.Context, soneID string, docs []models.AlbumDocument) error {
	if f.saved == nil {
		f.saved = make(map[string][]models.AlbumDocument)
	}
	f.saved[soneID] = docs
	return nil
}

func (f *fakeAlbumRepository) LoadAlbums(_ context.Context, soneID string) ([]models.AlbumDocument, error) {
	return f.saved[soneID], nil
}

type staticSones []*models.Sone

func (s staticSones) LocalSones() []*models.Sone { return s }

type staticAlbums map[string][]models.AlbumDocument

func (s staticAlbums) Documents(soneID string) []models.AlbumDocument { return s[soneID] }

func TestConfigurationSaver_Flush(t *testing.T) {
	alice := models.NewSone("alice", "Alice", true)
	alice.Follow("bob")
	docs := []models.AlbumDocument{{ID: "a1", SoneID: "alice", Title: "A"}}

	t.Run("clean state writes nothing", func(t *testing.T) {
		sones, albums := &fakeSoneRepository{}, &fakeAlbumRepository{}
		saver := NewConfigurationSaver(sones, albums)
		saver.Watch(staticSones{alice}, staticAlbums{"alice": docs})

		require.NoError(t, saver.Flush(context.Background()))
		assert.Empty(t, sones.saved)
	})

	t.Run("touched state is written once", func(t *testing.T) {
		sones, albums := &fakeSoneRepository{}, &fakeAlbumRepository{}
		saver := NewConfigurationSaver(sones, albums)
		saver.Watch(staticSones{alice}, staticAlbums{"alice": docs})

		saver.TouchConfiguration()
		saver.TouchConfiguration()
		assert.True(t, saver.IsDirty())

		require.NoError(t, saver.Flush(context.Background()))
		require.NoError(t, saver.Flush(context.Background()))
		require.Len(t, sones.saved, 1)
		assert.Equal(t, []string{"bob"}, sones.saved[0].Following)
		assert.Equal(t, docs, albums.saved["alice"])
		assert.False(t, saver.IsDirty())
	})

	t.Run("failure keeps state dirty", func(t *testing.T) {
		sones := &fakeSoneRepository{err: errors.New("db down")}
		saver := NewConfigurationSaver(sones, &fakeAlbumRepository{})
		saver.Watch(staticSones{alice}, nil)

		saver.TouchConfiguration()
		err := saver.Flush(context.Background())
		assert.ErrorContains(t, err, "db down")
		assert.True(t, saver.IsDirty())
	})

	t.Run("touch before watch is kept", func(t *testing.T) {
		sones := &fakeSoneRepository{}
		saver := NewConfigurationSaver(sones, &fakeAlbumRepository{})

		saver.TouchConfiguration()
		require.NoError(t, saver.Flush(context.Background()))
		assert.True(t, saver.IsDirty())
		assert.Empty(t, sones.saved)

		saver.Watch(staticSones{alice}, nil)
		require.NoError(t, saver.Flush(context.Background()))
		assert.Len(t, sones.saved, 1)
		assert.False(t, saver.IsDirty())
	})
}
