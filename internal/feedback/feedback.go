package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glossworks/glossworks/internal/platform/httpx"
	"github.com/glossworks/glossworks/internal/rbac"
	"github.com/glossworks/glossworks/internal/shared"
)

// Feedback is a customer satisfaction rating, 1 through 5.
type Feedback struct {
	ID        int64     `json:"id"`
	OrgID     int64     `json:"org_id"`
	ClientID  *int64    `json:"client_id,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateInput is the feedback submission payload.
type CreateInput struct {
	ClientID *int64 `json:"client_id"`
	Rating   int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment  string `json:"comment"`
}

// Repository persists feedback rows.
type Repository interface {
	Create(ctx context.Context, f Feedback) (*Feedback, error)
	List(ctx context.Context, orgID int64, page, perPage int) ([]Feedback, int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const feedbackColumns = `id, org_id, client_id, rating, comment, created_at`

func (r *repository) Create(ctx context.Context, f Feedback) (*Feedback, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO feedback (org_id, client_id, rating, comment, created_at)
VALUES ($1, $2, $3, $4, NOW()) RETURNING `+feedbackColumns,
		f.OrgID, f.ClientID, f.Rating, f.Comment)
	var out Feedback
	if err := row.Scan(&out.ID, &out.OrgID, &out.ClientID, &out.Rating, &out.Comment, &out.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *repository) List(ctx context.Context, orgID int64, page, perPage int) ([]Feedback, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM feedback WHERE org_id=$1`, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}
	p := shared.NewPagination(page, perPage, total)
	offset := (p.Page - 1) * p.PerPage
	rows, err := r.pool.Query(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE org_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, orgID, p.PerPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.OrgID, &f.ClientID, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Service gates feedback operations.
type Service struct {
	repo       Repository
	authorizer *rbac.Service
}

// NewService constructs a Service.
func NewService(repo Repository, authorizer *rbac.Service) *Service {
	return &Service{repo: repo, authorizer: authorizer}
}

// Create records a rating. Any member of the organization may submit.
func (s *Service) Create(ctx context.Context, userID, orgID int64, input CreateInput) (*Feedback, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleClient); err != nil {
		return nil, err
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, Feedback{
		OrgID:    orgID,
		ClientID: input.ClientID,
		Rating:   input.Rating,
		Comment:  input.Comment,
	})
}

// List returns feedback for the organization. Staff only.
func (s *Service) List(ctx context.Context, userID, orgID int64, page, perPage int) ([]Feedback, shared.Pagination, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, shared.Pagination{}, err
	}
	list, total, err := s.repo.List(ctx, orgID, page, perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(page, perPage, total), nil
}
