package assessments

import (
	"time"

	"github.com/glossworks/glossworks/internal/ai"
	"github.com/glossworks/glossworks/internal/pricing"
)

// Status enumerates assessment moderation states.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// DepositRate is the share of the estimate collected up front.
const DepositRate = 0.10

// VehicleDetails describes the vehicle being assessed.
type VehicleDetails struct {
	Make      string `json:"make" validate:"required"`
	Model     string `json:"model" validate:"required"`
	Year      int    `json:"year" validate:"required,gte=1900,lte=2100"`
	Condition string `json:"condition"`
}

// Hotspot marks a problem area on the vehicle. Part names act as keys:
// a later hotspot for the same part replaces the earlier one.
type Hotspot struct {
	Part     string `json:"part" validate:"required"`
	Issue    string `json:"issue" validate:"required"`
	Severity string `json:"severity,omitempty"`
}

// QAPair records an intake question and the customer's answer.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Assessment is a customer intake submission.
type Assessment struct {
	ID             int64               `json:"id"`
	OrgID          int64               `json:"org_id"`
	ClientName     string              `json:"client_name"`
	ClientEmail    string              `json:"client_email"`
	Vehicle        VehicleDetails      `json:"vehicle"`
	Hotspots       []Hotspot           `json:"hotspots"`
	Selections     []pricing.Selection `json:"selections"`
	Answers        []QAPair            `json:"answers"`
	EstimateAmount float64             `json:"estimate_amount"`
	AIQuestions    []ai.Question       `json:"ai_questions,omitempty"`
	AIEstimate     float64             `json:"ai_estimate,omitempty"`
	Status         Status              `json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// SubmitInput is the public intake payload.
type SubmitInput struct {
	ClientName  string              `json:"client_name" validate:"required"`
	ClientEmail string              `json:"client_email" validate:"required,email"`
	Vehicle     VehicleDetails      `json:"vehicle" validate:"required"`
	Hotspots    []Hotspot           `json:"hotspots" validate:"dive"`
	Selections  []pricing.Selection `json:"selections"`
	Answers     []QAPair            `json:"answers"`
	WithDeposit bool                `json:"with_deposit"`
}

// MergeHotspots folds incoming hotspots into existing ones. A hotspot
// replaces any earlier entry for the same part; order of first
// appearance is preserved.
func MergeHotspots(existing, incoming []Hotspot) []Hotspot {
	merged := make([]Hotspot, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing))
	for _, h := range existing {
		if i, ok := index[h.Part]; ok {
			merged[i] = h
			continue
		}
		index[h.Part] = len(merged)
		merged = append(merged, h)
	}
	for _, h := range incoming {
		if i, ok := index[h.Part]; ok {
			merged[i] = h
			continue
		}
		index[h.Part] = len(merged)
		merged = append(merged, h)
	}
	return merged
}
