package orgs

import "time"

// Organization is the tenant boundary. Every business record hangs off
// an organization id and queries always filter by it.
type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PriceMethod selects how the organization prices work by default.
type PriceMethod string

const (
	PriceMethodFixed    PriceMethod = "fixed"
	PriceMethodHourly   PriceMethod = "hourly"
	PriceMethodVariable PriceMethod = "variable"
)

// Settings holds per-organization preferences. Reads fall back to
// DefaultSettings when no row exists yet.
type Settings struct {
	OrgID                   int64       `json:"org_id"`
	CompanyName             string      `json:"company_name"`
	CompanyAddress          string      `json:"company_address"`
	CompanyPhone            string      `json:"company_phone"`
	EnableAIRecommendations bool        `json:"enable_ai_recommendations"`
	DefaultServiceTime      int         `json:"default_service_time"`
	PriceCalculationMethod  PriceMethod `json:"price_calculation_method"`
	NotifyNewAssessments    bool        `json:"notify_new_assessments"`
	NotifyAssessmentUpdates bool        `json:"notify_assessment_updates"`
	NotifyDailySummary      bool        `json:"notify_daily_summary"`
	StripeConnected         bool        `json:"stripe_connected"`
	GoogleCalendarConnected bool        `json:"google_calendar_connected"`
	QuickBooksConnected     bool        `json:"quickbooks_connected"`
}

// DefaultSettings returns the values served before any update happened.
func DefaultSettings(orgID int64) Settings {
	return Settings{
		OrgID:                   orgID,
		EnableAIRecommendations: true,
		DefaultServiceTime:      60,
		PriceCalculationMethod:  PriceMethodFixed,
		NotifyNewAssessments:    true,
		NotifyAssessmentUpdates: true,
	}
}

// SettingsUpdate carries the optional fields of an upsert. Nil means
// leave untouched.
type SettingsUpdate struct {
	CompanyName             *string      `json:"company_name"`
	CompanyAddress          *string      `json:"company_address"`
	CompanyPhone            *string      `json:"company_phone"`
	EnableAIRecommendations *bool        `json:"enable_ai_recommendations"`
	DefaultServiceTime      *int         `json:"default_service_time"`
	PriceCalculationMethod  *PriceMethod `json:"price_calculation_method"`
	NotifyNewAssessments    *bool        `json:"notify_new_assessments"`
	NotifyAssessmentUpdates *bool        `json:"notify_assessment_updates"`
	NotifyDailySummary      *bool        `json:"notify_daily_summary"`
	StripeConnected         *bool        `json:"stripe_connected"`
	GoogleCalendarConnected *bool        `json:"google_calendar_connected"`
	QuickBooksConnected     *bool        `json:"quickbooks_connected"`
}
