package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for memberships.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetMembership fetches the membership for a user within an organization.
func (r *Repository) GetMembership(ctx context.Context, userID, orgID int64) (*Membership, error) {
	var m Membership
	err := r.pool.QueryRow(ctx, `SELECT user_id, org_id, role, created_at, updated_at FROM org_memberships WHERE user_id=$1 AND org_id=$2`, userID, orgID).
		Scan(&m.UserID, &m.OrgID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoMembership
		}
		return nil, err
	}
	return &m, nil
}

// UpsertMembership creates or updates a membership role.
func (r *Repository) UpsertMembership(ctx context.Context, m Membership) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO org_memberships (user_id, org_id, role, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW())
ON CONFLICT (user_id, org_id) DO UPDATE SET role=EXCLUDED.role, updated_at=NOW()`, m.UserID, m.OrgID, m.Role)
	return err
}

// ListMembers returns all memberships for an organization.
func (r *Repository) ListMembers(ctx context.Context, orgID int64) ([]Membership, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, org_id, role, created_at, updated_at FROM org_memberships WHERE org_id=$1 ORDER BY created_at`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var members []Membership
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.UserID, &m.OrgID, &m.Role, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}
