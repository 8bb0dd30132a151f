package bookings

import "time"

// Status enumerates booking lifecycle states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Valid reports whether the status is known.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// CancellationWindow is how long before the appointment start a
// customer may still cancel.
const CancellationWindow = 24 * time.Hour

// Booking ties a user to an appointment slot and a service.
type Booking struct {
	ID            int64     `json:"id"`
	OrgID         int64     `json:"org_id"`
	UserID        int64     `json:"user_id"`
	AppointmentID int64     `json:"appointment_id"`
	ServiceID     *int64    `json:"service_id,omitempty"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AppointmentInfo is the slice of the appointment a booking decision
// needs: when it starts and what state it is in.
type AppointmentInfo struct {
	ID        int64
	OrgID     int64
	StartTime time.Time
	Status    string
}
