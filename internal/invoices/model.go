package invoices

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Status enumerates invoice lifecycle states.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
	StatusVoid    Status = "void"
)

// Valid reports whether the status is known.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue, StatusVoid:
		return true
	}
	return false
}

// Invoice bills a client for completed work.
type Invoice struct {
	ID        int64     `json:"id"`
	OrgID     int64     `json:"org_id"`
	ClientID  int64     `json:"client_id"`
	Amount    float64   `json:"amount"`
	Display   string    `json:"amount_display,omitempty"`
	Status    Status    `json:"status"`
	DueDate   time.Time `json:"due_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateInput carries the fields of a new invoice.
type CreateInput struct {
	ClientID int64     `json:"client_id" validate:"required"`
	Amount   float64   `json:"amount" validate:"gt=0"`
	DueDate  time.Time `json:"due_date" validate:"required"`
}

// UpdateInput carries optional fields of an invoice update.
type UpdateInput struct {
	Amount  *float64   `json:"amount"`
	Status  *Status    `json:"status"`
	DueDate *time.Time `json:"due_date"`
}

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatAmount renders the amount as a grouped dollar string.
func FormatAmount(amount float64) string {
	return usd.Sprintf("$%.2f", amount)
}
