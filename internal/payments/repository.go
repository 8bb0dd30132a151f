package payments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glossworks/glossworks/internal/shared"
)

// Repository persists payment records.
type Repository interface {
	Create(ctx context.Context, p Payment) (*Payment, error)
	Get(ctx context.Context, orgID, id int64) (*Payment, error)
	ListByAssessment(ctx context.Context, orgID, assessmentID int64) ([]Payment, error)
	UpdateStatusByIntent(ctx context.Context, intentID string, status Status) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const paymentColumns = `id, org_id, assessment_id, amount, status, stripe_payment_intent_id, created_at, updated_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.OrgID, &p.AssessmentID, &p.Amount, &p.Status, &p.StripePaymentIntentID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p Payment) (*Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx, `INSERT INTO payments (org_id, assessment_id, amount, status, stripe_payment_intent_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING `+paymentColumns,
		p.OrgID, p.AssessmentID, p.Amount, p.Status, p.StripePaymentIntentID))
}

func (r *repository) Get(ctx context.Context, orgID, id int64) (*Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE org_id=$1 AND id=$2`, orgID, id))
}

func (r *repository) ListByAssessment(ctx context.Context, orgID, assessmentID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE org_id=$1 AND assessment_id=$2 ORDER BY created_at DESC`, orgID, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.OrgID, &p.AssessmentID, &p.Amount, &p.Status, &p.StripePaymentIntentID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *repository) UpdateStatusByIntent(ctx context.Context, intentID string, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE payments SET status=$1, updated_at=NOW() WHERE stripe_payment_intent_id=$2`, status, intentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
