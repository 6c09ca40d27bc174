package services

import (
	"context"
	"sync"
	"testing"

	"photo-vault-backend/internal/models"
	"photo-vault-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memAlbumStore struct {
	mu     sync.Mutex
	albums map[string]*models.Album
}

func newMemAlbumStore() *memAlbumStore {
	return &memAlbumStore{albums: make(map[string]*models.Album)}
}

func (s *memAlbumStore) Create(_ context.Context, album *models.Album) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *album
	copied.Photos = append([]string(nil), album.Photos...)
	s.albums[album.ID] = &copied
	return nil
}

func (s *memAlbumStore) GetByName(_ context.Context, owner, name string) (*models.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, album := range s.albums {
		if album.CreatedBy == owner && album.Name == name {
			copied := *album
			copied.Photos = append([]string(nil), album.Photos...)
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memAlbumStore) UpdatePhotos(_ context.Context, albumID string, filenames []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	album, ok := s.albums[albumID]
	if !ok {
		return repository.ErrNotFound
	}
	album.Photos = append([]string(nil), filenames...)
	return nil
}

func (s *memAlbumStore) ListByOwner(_ context.Context, owner string) ([]*models.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Album
	for _, album := range s.albums {
		if album.CreatedBy == owner {
			copied := *album
			copied.Photos = append([]string(nil), album.Photos...)
			out = append(out, &copied)
		}
	}
	return out, nil
}

func TestAlbumAddCreatesWhenAbsent(t *testing.T) {
	store := newMemAlbumStore()
	svc := NewAlbumService(store)

	album, err := svc.Add(context.Background(), owner, "Holiday", []string{"a.jpg", "b.jpg", "a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "Holiday", album.Name)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, album.Photos)
	assert.Equal(t, owner.ID, album.CreatedBy)
}

func TestAlbumAddUnionsIntoExisting(t *testing.T) {
	store := newMemAlbumStore()
	svc := NewAlbumService(store)

	_, err := svc.Add(context.Background(), owner, "Holiday", []string{"a.jpg"})
	require.NoError(t, err)

	album, err := svc.Add(context.Background(), owner, "Holiday", []string{"a.jpg", "c.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "c.jpg"}, album.Photos)

	// Re-adding existing photos leaves the album unchanged.
	album, err = svc.Add(context.Background(), owner, "Holiday", []string{"c.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "c.jpg"}, album.Photos)
}

func TestAlbumsArePerOwner(t *testing.T) {
	store := newMemAlbumStore()
	svc := NewAlbumService(store)

	_, err := svc.Add(context.Background(), owner, "Holiday", []string{"a.jpg"})
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), recipient, "Holiday", []string{"z.jpg"})
	require.NoError(t, err)

	mine, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, []string{"a.jpg"}, mine[0].Photos)
	require.NotNil(t, mine[0].Cover)
	assert.Equal(t, "a.jpg", *mine[0].Cover)

	theirs, err := svc.List(context.Background(), recipient)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, []string{"z.jpg"}, theirs[0].Photos)
}
