package payments

import "time"

// Status enumerates payment lifecycle states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Valid reports whether the status is known.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSucceeded, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// Payment records a deposit collected against an assessment.
type Payment struct {
	ID                    int64     `json:"id"`
	OrgID                 int64     `json:"org_id"`
	AssessmentID          int64     `json:"assessment_id"`
	Amount                float64   `json:"amount"`
	Status                Status    `json:"status"`
	StripePaymentIntentID string    `json:"stripe_payment_intent_id"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// IntentResult is what a new deposit intent hands back to the caller.
// ClientSecret is never persisted; the frontend needs it once to
// confirm the payment.
type IntentResult struct {
	PaymentID    int64   `json:"payment_id"`
	ClientSecret string  `json:"client_secret"`
	Amount       float64 `json:"amount"`
}
