package invoices

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

// Repository defines persistence operations for invoices. WithTx hands
// back a Repository bound to a repeatable-read transaction so invoice
// creation and the client counter update land atomically.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, orgID, id int64) (*Invoice, error)
	List(ctx context.Context, orgID int64, page, perPage int) ([]Invoice, int, error)
	Create(ctx context.Context, inv Invoice) (*Invoice, error)
	Update(ctx context.Context, orgID, id int64, updates map[string]interface{}) error
	IncrementClientTotal(ctx context.Context, orgID, clientID int64, amount float64) error
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

const invoiceColumns = `id, org_id, client_id, amount, status, due_date, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.OrgID, &inv.ClientID, &inv.Amount, &inv.Status, &inv.DueDate, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *repository) Get(ctx context.Context, orgID, id int64) (*Invoice, error) {
	return scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE org_id=$1 AND id=$2`, orgID, id))
}

func (r *repository) List(ctx context.Context, orgID int64, page, perPage int) ([]Invoice, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM invoices WHERE org_id=$1`, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}
	p := shared.NewPagination(page, perPage, total)
	offset := (p.Page - 1) * p.PerPage
	rows, err := r.db.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE org_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, orgID, p.PerPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.OrgID, &inv.ClientID, &inv.Amount, &inv.Status, &inv.DueDate, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *repository) Create(ctx context.Context, inv Invoice) (*Invoice, error) {
	return scanInvoice(r.db.QueryRow(ctx, `INSERT INTO invoices (org_id, client_id, amount, status, due_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING `+invoiceColumns,
		inv.OrgID, inv.ClientID, inv.Amount, inv.Status, inv.DueDate))
}

func (r *repository) Update(ctx context.Context, orgID, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	setClause := ""
	args := []interface{}{}
	argPos := 1
	for _, col := range []string{"amount", "status", "due_date"} {
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
	query := fmt.Sprintf("UPDATE invoices SET %s WHERE org_id = $%d AND id = $%d", setClause, argPos, argPos+1)
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) IncrementClientTotal(ctx context.Context, orgID, clientID int64, amount float64) error {
	tag, err := r.db.Exec(ctx, `UPDATE clients SET total_invoiced = total_invoiced + $1, updated_at = NOW() WHERE org_id=$2 AND id=$3`, amount, orgID, clientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
