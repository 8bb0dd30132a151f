package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glossworks/glossworks/internal/platform/db"
	"github.com/glossworks/glossworks/internal/shared"
)

// Repository defines persistence operations for clients.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, orgID, id int64) (*Client, error)
	List(ctx context.Context, orgID int64, page, perPage int) ([]Client, int, error)
	Create(ctx context.Context, c Client) (*Client, error)
	Update(ctx context.Context, orgID, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, orgID, id int64) error
	IncrementTotalInvoiced(ctx context.Context, orgID, id int64, amount float64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const clientColumns = `id, org_id, name, email, phone, active, total_invoiced, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.OrgID, &c.Name, &c.Email, &c.Phone, &c.Active, &c.TotalInvoiced, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Get(ctx context.Context, orgID, id int64) (*Client, error) {
	return scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE org_id=$1 AND id=$2`, orgID, id))
}

func (r *repository) List(ctx context.Context, orgID int64, page, perPage int) ([]Client, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clients WHERE org_id=$1`, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}
	p := shared.NewPagination(page, perPage, total)
	offset := (p.Page - 1) * p.PerPage
	rows, err := r.db.Query(ctx, `SELECT `+clientColumns+` FROM clients WHERE org_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, orgID, p.PerPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.OrgID, &c.Name, &c.Email, &c.Phone, &c.Active, &c.TotalInvoiced, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *repository) Create(ctx context.Context, c Client) (*Client, error) {
	return scanClient(r.db.QueryRow(ctx, `INSERT INTO clients (org_id, name, email, phone, active, total_invoiced, created_at, updated_at)
VALUES ($1, $2, $3, $4, TRUE, 0, NOW(), NOW()) RETURNING `+clientColumns, c.OrgID, c.Name, c.Email, c.Phone))
}

func (r *repository) Update(ctx context.Context, orgID, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	setClause := ""
	args := []interface{}{}
	argPos := 1
	for _, col := range []string{"name", "email", "phone", "active"} {
		val, ok := updates[col]
		if !ok {
			continue
		}
		if setClause != "" {
			setClause += ", "
		}
		setClause += fmt.Sprintf("%s = $%d", col, argPos)
		args = append(args, val)
		argPos++
	}
	if setClause == "" {
		return nil
	}
	setClause += ", updated_at = NOW()"
	args = append(args, orgID, id)
	query := fmt.Sprintf("UPDATE clients SET %s WHERE org_id = $%d AND id = $%d", setClause, argPos, argPos+1)
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, orgID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE org_id=$1 AND id=$2`, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) IncrementTotalInvoiced(ctx context.Context, orgID, id int64, amount float64) error {
	tag, err := r.db.Exec(ctx, `UPDATE clients SET total_invoiced = total_invoiced + $1, updated_at = NOW() WHERE org_id=$2 AND id=$3`, amount, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
