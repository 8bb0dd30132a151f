package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/glossworks/glossworks/internal/platform/httpx"
)

// ErrNoMembership indicates the user has no role within the organization.
var ErrNoMembership = errors.New("rbac: no membership")

// MembershipStore resolves a user's role within an organization.
type MembershipStore interface {
	GetMembership(ctx context.Context, userID, orgID int64) (*Membership, error)
}

// Service is the single capability-check entry point. Every handler and
// service that touches organization data goes through Authorize; failures
// are authorization errors, never partial results.
type Service struct {
	store MembershipStore
}

// NewService constructs a Service.
func NewService(store MembershipStore) *Service {
	return &Service{store: store}
}

// Authorize verifies the user holds at least the required role in the
// organization. Missing membership fails closed.
func (s *Service) Authorize(ctx context.Context, userID, orgID int64, required Role) error {
	if userID == 0 {
		return fmt.Errorf("%w: not signed in", httpx.ErrUnauthorized)
	}
	m, err := s.store.GetMembership(ctx, userID, orgID)
	if err != nil {
		if errors.Is(err, ErrNoMembership) {
			return fmt.Errorf("%w: no membership in organization", httpx.ErrForbidden)
		}
		return fmt.Errorf("rbac: resolve membership: %w", err)
	}
	if !m.Role.AtLeast(required) {
		return fmt.Errorf("%w: role %q below required %q", httpx.ErrForbidden, m.Role, required)
	}
	return nil
}

// RoleOf returns the user's role in the organization, or ErrNoMembership.
func (s *Service) RoleOf(ctx context.Context, userID, orgID int64) (Role, error) {
	m, err := s.store.GetMembership(ctx, userID, orgID)
	if err != nil {
		return "", err
	}
	return m.Role, nil
}
