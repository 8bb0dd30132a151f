package tenants

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glossworks/glossworks/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByOrg fetches the tenant for an organization.
func (r *Repository) GetByOrg(ctx context.Context, orgID int64) (*Tenant, error) {
	var t Tenant
	err := r.pool.QueryRow(ctx, `SELECT id, org_id, name, intake_url, qr_code_url, created_at, updated_at FROM tenants WHERE org_id=$1`, orgID).
		Scan(&t.ID, &t.OrgID, &t.Name, &t.IntakeURL, &t.QRCodeURL, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Upsert creates or refreshes the tenant row keyed by organization id.
func (r *Repository) Upsert(ctx context.Context, t Tenant) (*Tenant, error) {
	var out Tenant
	err := r.pool.QueryRow(ctx, `INSERT INTO tenants (org_id, name, intake_url, qr_code_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
ON CONFLICT (org_id) DO UPDATE SET name=EXCLUDED.name, intake_url=EXCLUDED.intake_url, qr_code_url=EXCLUDED.qr_code_url, updated_at=NOW()
RETURNING id, org_id, name, intake_url, qr_code_url, created_at, updated_at`,
		t.OrgID, t.Name, t.IntakeURL, t.QRCodeURL).
		Scan(&out.ID, &out.OrgID, &out.Name, &out.IntakeURL, &out.QRCodeURL, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
