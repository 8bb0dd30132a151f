package audit

import (
	"context"
	"fmt"

	"github.com/glossworks/glossworks/internal/rbac"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// Repository fetches audit trail rows for one organization. The query
// fetches limit+1 rows so the service can detect a next page.
type Repository interface {
	Timeline(ctx context.Context, orgID int64, filters TimelineFilters, limit, offset int) ([]Entry, error)
}

// Service coordinates audit trail reads. The trail is staff-only.
type Service struct {
	repo       Repository
	authorizer *rbac.Service
}

// NewService constructs the audit trail service.
func NewService(repo Repository, authorizer *rbac.Service) *Service {
	return &Service{repo: repo, authorizer: authorizer}
}

// Timeline returns one page of the organization's audit trail.
func (s *Service) Timeline(ctx context.Context, userID, orgID int64, filters TimelineFilters) (Result, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return Result{}, err
	}
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := s.repo.Timeline(ctx, orgID, filters, pageSize+1, offset)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	return Result{
		Rows:   rows,
		Paging: PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext},
	}, nil
}
