package clients

import (
	"context"
	"strings"

	"github.com/glossworks/glossworks/internal/rbac"
	"github.com/glossworks/glossworks/internal/shared"
)

// Service orchestrates client operations. Staff level is required for
// every write; listing is open to any member so technicians can look up
// who they are working for.
type Service struct {
	repo       Repository
	authorizer *rbac.Service
}

// NewService constructs a Service.
func NewService(repo Repository, authorizer *rbac.Service) *Service {
	return &Service{repo: repo, authorizer: authorizer}
}

// List returns clients for the organization with pagination metadata.
func (s *Service) List(ctx context.Context, userID, orgID int64, page, perPage int) ([]Client, shared.Pagination, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleTechnician); err != nil {
		return nil, shared.Pagination{}, err
	}
	list, total, err := s.repo.List(ctx, orgID, page, perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(page, perPage, total), nil
}

// Get fetches a single client.
func (s *Service) Get(ctx context.Context, userID, orgID, id int64) (*Client, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleTechnician); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, id)
}

// Create inserts a new client with a zeroed invoice counter.
func (s *Service) Create(ctx context.Context, userID, orgID int64, input CreateInput) (*Client, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, Client{
		OrgID: orgID,
		Name:  strings.TrimSpace(input.Name),
		Email: strings.ToLower(strings.TrimSpace(input.Email)),
		Phone: strings.TrimSpace(input.Phone),
	})
}

// Update patches the provided fields.
func (s *Service) Update(ctx context.Context, userID, orgID, id int64, input UpdateInput) (*Client, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, err
	}
	updates := make(map[string]interface{})
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}
	if err := s.repo.Update(ctx, orgID, id, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, id)
}

// Delete removes a client.
func (s *Service) Delete(ctx context.Context, userID, orgID, id int64) error {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return err
	}
	return s.repo.Delete(ctx, orgID, id)
}
