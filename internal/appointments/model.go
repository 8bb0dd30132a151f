package appointments

import "time"

// Status enumerates appointment states. Slots start out available;
// booking moves them to scheduled; work ends in completed or cancelled.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusScheduled   Status = "scheduled"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusUnavailable Status = "unavailable"
)

// transitions is the full state machine. Anything not listed is
// rejected.
var transitions = map[Status][]Status{
	StatusAvailable:   {StatusScheduled, StatusCancelled, StatusUnavailable},
	StatusScheduled:   {StatusCompleted, StatusCancelled, StatusAvailable},
	StatusUnavailable: {StatusAvailable},
	StatusCompleted:   {},
	StatusCancelled:   {StatusAvailable},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Appointment is a time slot on an organization's calendar.
type Appointment struct {
	ID           int64     `json:"id"`
	OrgID        int64     `json:"org_id"`
	ClientID     *int64    `json:"client_id,omitempty"`
	ServiceID    *int64    `json:"service_id,omitempty"`
	ServiceName  string    `json:"service_name,omitempty"`
	TechnicianID *int64    `json:"technician_id,omitempty"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Notes        string    `json:"notes,omitempty"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SlotInput is one open slot in a batch creation request.
type SlotInput struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

// ScheduleInput carries the fields of a staff-created appointment.
type ScheduleInput struct {
	ClientID     int64     `json:"client_id" validate:"required"`
	ServiceID    int64     `json:"service_id" validate:"required"`
	ServiceName  string    `json:"service_name"`
	TechnicianID *int64    `json:"technician_id"`
	StartTime    time.Time `json:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" validate:"required"`
	Notes        string    `json:"notes"`
}

// UpdateInput carries optional fields of an appointment update.
type UpdateInput struct {
	ServiceName  *string    `json:"service_name"`
	TechnicianID *int64     `json:"technician_id"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	Notes        *string    `json:"notes"`
	Status       *Status    `json:"status"`
}

// JobRecord is the ledger row written when an appointment completes.
// Analytics reads these for revenue-by-service and job counts.
type JobRecord struct {
	ID            int64     `json:"id"`
	OrgID         int64     `json:"org_id"`
	AppointmentID int64     `json:"appointment_id"`
	ServiceName   string    `json:"service_name"`
	Amount        float64   `json:"amount"`
	Date          time.Time `json:"date"`
}
