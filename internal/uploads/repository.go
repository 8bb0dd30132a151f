package uploads

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glossworks/glossworks/internal/shared"
)

// Repository persists media records.
type Repository interface {
	Create(ctx context.Context, m Media) (*Media, error)
	Get(ctx context.Context, orgID int64, id string) (*Media, error)
	ListByAssessment(ctx context.Context, orgID, assessmentID int64) ([]Media, error)
	Delete(ctx context.Context, orgID int64, id string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const mediaColumns = `id, org_id, assessment_id, key, file_name, content_type, size_bytes, created_at`

func scanMedia(row pgx.Row) (*Media, error) {
	var m Media
	err := row.Scan(&m.ID, &m.OrgID, &m.AssessmentID, &m.Key, &m.FileName, &m.ContentType, &m.SizeBytes, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *repository) Create(ctx context.Context, m Media) (*Media, error) {
	return scanMedia(r.pool.QueryRow(ctx, `INSERT INTO assessment_media (id, org_id, assessment_id, key, file_name, content_type, size_bytes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING `+mediaColumns,
		m.ID, m.OrgID, m.AssessmentID, m.Key, m.FileName, m.ContentType, m.SizeBytes))
}

func (r *repository) Get(ctx context.Context, orgID int64, id string) (*Media, error) {
	return scanMedia(r.pool.QueryRow(ctx, `SELECT `+mediaColumns+` FROM assessment_media WHERE org_id=$1 AND id=$2`, orgID, id))
}

func (r *repository) ListByAssessment(ctx context.Context, orgID, assessmentID int64) ([]Media, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+mediaColumns+` FROM assessment_media WHERE org_id=$1 AND assessment_id=$2 ORDER BY created_at`, orgID, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Media
	for rows.Next() {
		var m Media
		if err := rows.Scan(&m.ID, &m.OrgID, &m.AssessmentID, &m.Key, &m.FileName, &m.ContentType, &m.SizeBytes, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *repository) Delete(ctx context.Context, orgID int64, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assessment_media WHERE org_id=$1 AND id=$2`, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
