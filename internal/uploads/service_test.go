package uploads

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossworks/glossworks/internal/platform/httpx"
	"github.com/glossworks/glossworks/internal/shared"
)

type memRepo struct {
	media map[string]*Media
}

func newMemRepo() *memRepo {
	return &memRepo{media: make(map[string]*Media)}
}

func (m *memRepo) Create(ctx context.Context, media Media) (*Media, error) {
	m.media[media.ID] = &media
	cp := media
	return &cp, nil
}

func (m *memRepo) Get(ctx context.Context, orgID int64, id string) (*Media, error) {
	media, ok := m.media[id]
	if !ok || media.OrgID != orgID {
		return nil, shared.ErrNotFound
	}
	cp := *media
	return &cp, nil
}

func (m *memRepo) ListByAssessment(ctx context.Context, orgID, assessmentID int64) ([]Media, error) {
	var list []Media
	for _, media := range m.media {
		if media.OrgID == orgID && media.AssessmentID == assessmentID {
			list = append(list, *media)
		}
	}
	return list, nil
}

func (m *memRepo) Delete(ctx context.Context, orgID int64, id string) error {
	if _, ok := m.media[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.media, id)
	return nil
}

type fakeStore struct {
	objects map[string][]byte
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStore) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	if _, ok := f.objects[key]; !ok {
		return "", errors.New("no such key")
	}
	return "https://media.example.com/" + key + "?signed=1", nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func TestUploadKeysUnderAssessment(t *testing.T) {
	repo := newMemRepo()
	store := newFakeStore()
	svc := NewService(repo, store, "")

	media, err := svc.Upload(context.Background(), 1, 42, "hood.jpg", "image/jpeg", 11, bytes.NewReader([]byte("fake pixels")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(media.Key, "assessments/42/"), media.Key)
	assert.Equal(t, "hood.jpg", media.FileName)
	assert.Contains(t, store.objects, media.Key)
	assert.Equal(t, []byte("fake pixels"), store.objects[media.Key])
}

func TestUploadStoreFailureLeavesNoRecord(t *testing.T) {
	repo := newMemRepo()
	store := newFakeStore()
	store.putErr = errors.New("bucket unreachable")
	svc := NewService(repo, store, "")

	_, err := svc.Upload(context.Background(), 1, 42, "hood.jpg", "image/jpeg", 3, strings.NewReader("abc"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrExternalProvider))
	assert.Empty(t, repo.media)
}

func TestUploadCarriesPublicURL(t *testing.T) {
	repo := newMemRepo()
	store := newFakeStore()
	svc := NewService(repo, store, "https://cdn.example.com/")

	media, err := svc.Upload(context.Background(), 1, 42, "hood.jpg", "image/jpeg", 3, strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+media.Key, media.PublicURL)

	list, err := svc.List(context.Background(), 1, 42)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, media.PublicURL, list[0].PublicURL)
}

func TestDownloadLink(t *testing.T) {
	repo := newMemRepo()
	store := newFakeStore()
	svc := NewService(repo, store, "")

	media, err := svc.Upload(context.Background(), 1, 42, "hood.jpg", "image/jpeg", 3, strings.NewReader("abc"))
	require.NoError(t, err)

	url, err := svc.DownloadLink(context.Background(), 1, media.ID)
	require.NoError(t, err)
	assert.Contains(t, url, media.Key)

	_, err = svc.DownloadLink(context.Background(), 1, "missing")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestDeleteRemovesObjectAndRecord(t *testing.T) {
	repo := newMemRepo()
	store := newFakeStore()
	svc := NewService(repo, store, "")

	media, err := svc.Upload(context.Background(), 1, 42, "hood.jpg", "image/jpeg", 3, strings.NewReader("abc"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 1, media.ID))
	assert.NotContains(t, store.objects, media.Key)
	assert.Empty(t, repo.media)
}
