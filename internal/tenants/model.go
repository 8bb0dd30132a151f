package tenants

import "time"

// Tenant is the public intake identity of an organization. Exactly one
// tenant exists per organization; its QR code points customers at the
// self-service assessment page.
type Tenant struct {
	ID        int64     `json:"id"`
	OrgID     int64     `json:"org_id"`
	Name      string    `json:"name"`
	IntakeURL string    `json:"intake_url"`
	QRCodeURL string    `json:"qr_code_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
