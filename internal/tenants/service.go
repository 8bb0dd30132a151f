package tenants

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/glossworks/glossworks/internal/platform/httpx"
	"github.com/glossworks/glossworks/internal/rbac"
)

// Store defines persistence operations used by the service.
type Store interface {
	GetByOrg(ctx context.Context, orgID int64) (*Tenant, error)
	Upsert(ctx context.Context, t Tenant) (*Tenant, error)
}

// Service manages public intake tenants.
type Service struct {
	store      Store
	authorizer *rbac.Service
	baseURL    string
}

// NewService constructs a Service. baseURL is the externally reachable
// address embedded in intake links.
func NewService(store Store, authorizer *rbac.Service, baseURL string) *Service {
	return &Service{store: store, authorizer: authorizer, baseURL: strings.TrimRight(baseURL, "/")}
}

// EnsureTenant idempotently creates or refreshes the tenant for the
// organization, regenerating the intake URL and QR code. Calling it for
// an organization that already has a tenant updates the name in place.
func (s *Service) EnsureTenant(ctx context.Context, userID, orgID int64, name string) (*Tenant, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleAdmin); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: tenant name required", httpx.ErrValidation)
	}

	intakeURL := s.IntakeURL(orgID)
	qrDataURL, err := qrDataURL(intakeURL)
	if err != nil {
		return nil, fmt.Errorf("tenants: generate qr code: %w", err)
	}

	return s.store.Upsert(ctx, Tenant{
		OrgID:     orgID,
		Name:      name,
		IntakeURL: intakeURL,
		QRCodeURL: qrDataURL,
	})
}

// Get returns the tenant for an organization.
func (s *Service) Get(ctx context.Context, userID, orgID int64) (*Tenant, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, err
	}
	return s.store.GetByOrg(ctx, orgID)
}

// IntakeURL builds the public assessment address for an organization.
func (s *Service) IntakeURL(orgID int64) string {
	return fmt.Sprintf("%s/assess/%d", s.baseURL, orgID)
}

// qrDataURL renders the URL as a PNG data URL suitable for direct
// embedding in an <img> tag.
func qrDataURL(url string) (string, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
