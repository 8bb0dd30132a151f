package orgs

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

// GetOrganization fetches an organization by id.
func (r *Repository) GetOrganization(ctx context.Context, id int64) (*Organization, error) {
	var org Organization
	err := r.pool.QueryRow(ctx, `SELECT id, name, owner_id, created_at, updated_at FROM organizations WHERE id=$1`, id).
		Scan(&org.ID, &org.Name, &org.OwnerID, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

// CreateOrganization inserts a new organization.
func (r *Repository) CreateOrganization(ctx context.Context, name string, ownerID int64) (*Organization, error) {
	var org Organization
	err := r.pool.QueryRow(ctx, `INSERT INTO organizations (name, owner_id, created_at, updated_at)
VALUES ($1, $2, NOW(), NOW()) RETURNING id, name, owner_id, created_at, updated_at`, name, ownerID).
		Scan(&org.ID, &org.Name, &org.OwnerID, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// ListOrganizationIDs returns every organization id (used by the cache
// warmup job).
func (r *Repository) ListOrganizationIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM organizations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetSettings returns the settings row for an organization.
func (r *Repository) GetSettings(ctx context.Context, orgID int64) (*Settings, error) {
	var s Settings
	err := r.pool.QueryRow(ctx, `SELECT org_id, company_name, company_address, company_phone, enable_ai_recommendations,
default_service_time, price_calculation_method, notify_new_assessments, notify_assessment_updates, notify_daily_summary,
stripe_connected, google_calendar_connected, quickbooks_connected FROM org_settings WHERE org_id=$1`, orgID).
		Scan(&s.OrgID, &s.CompanyName, &s.CompanyAddress, &s.CompanyPhone, &s.EnableAIRecommendations,
			&s.DefaultServiceTime, &s.PriceCalculationMethod, &s.NotifyNewAssessments, &s.NotifyAssessmentUpdates, &s.NotifyDailySummary,
			&s.StripeConnected, &s.GoogleCalendarConnected, &s.QuickBooksConnected)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// UpsertSettings writes the full settings row for an organization.
func (r *Repository) UpsertSettings(ctx context.Context, s Settings) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO org_settings (org_id, company_name, company_address, company_phone, enable_ai_recommendations,
default_service_time, price_calculation_method, notify_new_assessments, notify_assessment_updates, notify_daily_summary,
stripe_connected, google_calendar_connected, quickbooks_connected)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (org_id) DO UPDATE SET
company_name=EXCLUDED.company_name,
company_address=EXCLUDED.company_address,
company_phone=EXCLUDED.company_phone,
enable_ai_recommendations=EXCLUDED.enable_ai_recommendations,
default_service_time=EXCLUDED.default_service_time,
price_calculation_method=EXCLUDED.price_calculation_method,
notify_new_assessments=EXCLUDED.notify_new_assessments,
notify_assessment_updates=EXCLUDED.notify_assessment_updates,
notify_daily_summary=EXCLUDED.notify_daily_summary,
stripe_connected=EXCLUDED.stripe_connected,
google_calendar_connected=EXCLUDED.google_calendar_connected,
quickbooks_connected=EXCLUDED.quickbooks_connected`,
		s.OrgID, s.CompanyName, s.CompanyAddress, s.CompanyPhone, s.EnableAIRecommendations,
		s.DefaultServiceTime, s.PriceCalculationMethod, s.NotifyNewAssessments, s.NotifyAssessmentUpdates, s.NotifyDailySummary,
		s.StripeConnected, s.GoogleCalendarConnected, s.QuickBooksConnected)
	return err
}
