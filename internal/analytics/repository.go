package analytics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads the raw rows the aggregator works on. Every query
// filters by organization.
type Repository interface {
	ListClients(ctx context.Context, orgID int64) ([]ClientRow, error)
	ListInvoices(ctx context.Context, orgID int64, since time.Time) ([]InvoiceRow, error)
	ListJobs(ctx context.Context, orgID int64, since time.Time) ([]JobRow, error)
	ListFeedback(ctx context.Context, orgID int64, since time.Time) ([]FeedbackRow, error)
	SaveSnapshot(ctx context.Context, orgID int64, tr TimeRange, payload []byte) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListClients(ctx context.Context, orgID int64) ([]ClientRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, active, created_at FROM clients WHERE org_id=$1`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []ClientRow
	for rows.Next() {
		var c ClientRow
		if err := rows.Scan(&c.ID, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *repository) ListInvoices(ctx context.Context, orgID int64, since time.Time) ([]InvoiceRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT amount, status, created_at FROM invoices WHERE org_id=$1 AND created_at >= $2`, orgID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []InvoiceRow
	for rows.Next() {
		var inv InvoiceRow
		if err := rows.Scan(&inv.Amount, &inv.Status, &inv.Date); err != nil {
			return nil, err
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func (r *repository) ListJobs(ctx context.Context, orgID int64, since time.Time) ([]JobRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT service_name, amount, date FROM jobs WHERE org_id=$1 AND date >= $2`, orgID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []JobRow
	for rows.Next() {
		var job JobRow
		if err := rows.Scan(&job.ServiceName, &job.Amount, &job.Date); err != nil {
			return nil, err
		}
		list = append(list, job)
	}
	return list, rows.Err()
}

func (r *repository) ListFeedback(ctx context.Context, orgID int64, since time.Time) ([]FeedbackRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT rating, created_at FROM feedback WHERE org_id=$1 AND created_at >= $2`, orgID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []FeedbackRow
	for rows.Next() {
		var f FeedbackRow
		if err := rows.Scan(&f.Rating, &f.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

func (r *repository) SaveSnapshot(ctx context.Context, orgID int64, tr TimeRange, payload []byte) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO analytics_snapshots (org_id, time_range, payload, created_at) VALUES ($1, $2, $3, NOW())`,
		orgID, tr, payload)
	return err
}
