package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glossworks/glossworks/internal/shared"
)

// Repository defines persistence operations for the service catalog.
type Repository interface {
	Get(ctx context.Context, orgID, id int64) (*Service, error)
	List(ctx context.Context, orgID int64) ([]Service, error)
	ListByIDs(ctx context.Context, orgID int64, ids []int64) ([]Service, error)
	Create(ctx context.Context, svc Service) (*Service, error)
	Update(ctx context.Context, orgID, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, orgID, id int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const serviceColumns = `id, org_id, name, description, base_price, price_type, duration_mins, active, custom_fields, created_at, updated_at`

func scanService(row pgx.Row) (*Service, error) {
	var svc Service
	var fieldsJSON []byte
	err := row.Scan(&svc.ID, &svc.OrgID, &svc.Name, &svc.Description, &svc.BasePrice, &svc.PriceType, &svc.DurationMins, &svc.Active, &fieldsJSON, &svc.CreatedAt, &svc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if len(fieldsJSON) > 0 {
		if err := json.Unmarshal(fieldsJSON, &svc.CustomFields); err != nil {
			return nil, fmt.Errorf("catalog: decode custom fields: %w", err)
		}
	}
	return &svc, nil
}

func (r *repository) Get(ctx context.Context, orgID, id int64) (*Service, error) {
	return scanService(r.db.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE org_id=$1 AND id=$2`, orgID, id))
}

func (r *repository) List(ctx context.Context, orgID int64) ([]Service, error) {
	rows, err := r.db.Query(ctx, `SELECT `+serviceColumns+` FROM services WHERE org_id=$1 ORDER BY name`, orgID)
	if err != nil {
		return nil, err
	}
	return collectServices(rows)
}

func (r *repository) ListByIDs(ctx context.Context, orgID int64, ids []int64) ([]Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+serviceColumns+` FROM services WHERE org_id=$1 AND id = ANY($2)`, orgID, ids)
	if err != nil {
		return nil, err
	}
	return collectServices(rows)
}

func collectServices(rows pgx.Rows) ([]Service, error) {
	defer rows.Close()
	var list []Service
	for rows.Next() {
		var svc Service
		var fieldsJSON []byte
		if err := rows.Scan(&svc.ID, &svc.OrgID, &svc.Name, &svc.Description, &svc.BasePrice, &svc.PriceType, &svc.DurationMins, &svc.Active, &fieldsJSON, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
			return nil, err
		}
		if len(fieldsJSON) > 0 {
			if err := json.Unmarshal(fieldsJSON, &svc.CustomFields); err != nil {
				return nil, fmt.Errorf("catalog: decode custom fields: %w", err)
			}
		}
		list = append(list, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) Create(ctx context.Context, svc Service) (*Service, error) {
	fieldsJSON, err := json.Marshal(svc.CustomFields)
	if err != nil {
		return nil, fmt.Errorf("catalog: encode custom fields: %w", err)
	}
	return scanService(r.db.QueryRow(ctx, `INSERT INTO services (org_id, name, description, base_price, price_type, duration_mins, active, custom_fields, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, NOW(), NOW()) RETURNING `+serviceColumns,
		svc.OrgID, svc.Name, svc.Description, svc.BasePrice, svc.PriceType, svc.DurationMins, fieldsJSON))
}

func (r *repository) Update(ctx context.Context, orgID, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	setClause := ""
	args := []interface{}{}
	argPos := 1
	for _, col := range []string{"name", "description", "base_price", "price_type", "duration_mins", "active", "custom_fields"} {
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
	query := fmt.Sprintf("UPDATE services SET %s WHERE org_id = $%d AND id = $%d", setClause, argPos, argPos+1)
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
	tag, err := r.db.Exec(ctx, `DELETE FROM services WHERE org_id=$1 AND id=$2`, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
