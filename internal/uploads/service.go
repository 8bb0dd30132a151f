package uploads

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glossworks/glossworks/internal/platform/httpx"
)

// DownloadLinkTTL is how long presigned media links stay valid.
const DownloadLinkTTL = 15 * time.Minute

// Service uploads assessment media to the object store and keeps the
// database record in step.
type Service struct {
	repo          Repository
	store         ObjectStore
	publicBaseURL string
}

// NewService constructs a Service. publicBaseURL, when set, is the CDN
// or bucket website base the stored objects are reachable under;
// media records then carry a durable public URL alongside the
// presigned download link.
func NewService(repo Repository, store ObjectStore, publicBaseURL string) *Service {
	return &Service{repo: repo, store: store, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (s *Service) withPublicURL(m *Media) *Media {
	if m != nil && s.publicBaseURL != "" {
		m.PublicURL = s.publicBaseURL + "/" + m.Key
	}
	return m
}

// Upload stores the media under assessments/<assessmentID>/<uuid> and
// records it. Store failures surface as upstream provider errors.
func (s *Service) Upload(ctx context.Context, orgID, assessmentID int64, fileName, contentType string, size int64, body io.Reader) (*Media, error) {
	if fileName == "" {
		return nil, fmt.Errorf("%w: file name required", httpx.ErrValidation)
	}
	if s.store == nil {
		return nil, fmt.Errorf("%w: object store not configured", httpx.ErrExternalProvider)
	}
	id := uuid.NewString()
	key := fmt.Sprintf("assessments/%d/%s", assessmentID, id)
	if err := s.store.Put(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrExternalProvider, err)
	}
	media, err := s.repo.Create(ctx, Media{
		ID:           id,
		OrgID:        orgID,
		AssessmentID: assessmentID,
		Key:          key,
		FileName:     fileName,
		ContentType:  contentType,
		SizeBytes:    size,
	})
	if err != nil {
		return nil, err
	}
	return s.withPublicURL(media), nil
}

// List returns media records for an assessment.
func (s *Service) List(ctx context.Context, orgID, assessmentID int64) ([]Media, error) {
	list, err := s.repo.ListByAssessment(ctx, orgID, assessmentID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		s.withPublicURL(&list[i])
	}
	return list, nil
}

// DownloadLink returns a short-lived presigned URL for the media.
func (s *Service) DownloadLink(ctx context.Context, orgID int64, id string) (string, error) {
	media, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return "", err
	}
	url, err := s.store.PresignGet(ctx, media.Key, DownloadLinkTTL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", httpx.ErrExternalProvider, err)
	}
	return url, nil
}

// Delete removes the object and its record.
func (s *Service) Delete(ctx context.Context, orgID int64, id string) error {
	media, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, media.Key); err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrExternalProvider, err)
	}
	return s.repo.Delete(ctx, orgID, id)
}
