package appointments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/glossworks/glossworks/internal/platform/httpx"
	"github.com/glossworks/glossworks/internal/rbac"
	"github.com/glossworks/glossworks/internal/shared"
)

// Service orchestrates appointment operations.
type Service struct {
	repo       Repository
	authorizer *rbac.Service
	audit      *shared.AuditLogger
	now        func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, authorizer *rbac.Service, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, authorizer: authorizer, audit: audit, now: time.Now}
}

// List returns appointments for the organization, optionally filtered by
// a start-time window. Technician level and up.
func (s *Service) List(ctx context.Context, userID, orgID int64, from, to *time.Time, page, perPage int) ([]Appointment, shared.Pagination, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleTechnician); err != nil {
		return nil, shared.Pagination{}, err
	}
	list, total, err := s.repo.List(ctx, orgID, from, to, page, perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(page, perPage, total), nil
}

// Get fetches a single appointment. Technician level and up.
func (s *Service) Get(ctx context.Context, userID, orgID, id int64) (*Appointment, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleTechnician); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, id)
}

// CreateSlots inserts a batch of open slots. Every slot is checked for
// overlap against existing non-cancelled appointments inside one
// transaction, so a batch either lands whole or not at all. Staff only.
func (s *Service) CreateSlots(ctx context.Context, userID, orgID int64, slots []SlotInput) ([]Appointment, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: at least one slot required", httpx.ErrValidation)
	}
	for _, slot := range slots {
		if !slot.EndTime.After(slot.StartTime) {
			return nil, fmt.Errorf("%w: slot end must be after start", httpx.ErrValidation)
		}
	}

	var created []Appointment
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		for _, slot := range slots {
			count, err := tx.CountOverlapping(ctx, orgID, slot.StartTime, slot.EndTime)
			if err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("%w: slot starting %s", httpx.ErrOverlap, slot.StartTime.Format(time.RFC3339))
			}
			appt, err := tx.Create(ctx, Appointment{
				OrgID:     orgID,
				StartTime: slot.StartTime,
				EndTime:   slot.EndTime,
				Status:    StatusAvailable,
			})
			if err != nil {
				return err
			}
			created = append(created, *appt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		ids := make([]string, len(created))
		for i, a := range created {
			ids[i] = strconv.FormatInt(a.ID, 10)
		}
		_ = s.audit.Record(ctx, shared.AuditLog{
			OrgID:    orgID,
			ActorID:  userID,
			Action:   "slots.created",
			Entity:   "appointment",
			EntityID: strings.Join(ids, ","),
			Meta:     map[string]any{"count": len(created)},
		})
	}
	return created, nil
}

// Schedule creates a scheduled appointment directly. Staff only.
func (s *Service) Schedule(ctx context.Context, userID, orgID int64, input ScheduleInput) (*Appointment, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, err
	}
	if !input.EndTime.After(input.StartTime) {
		return nil, fmt.Errorf("%w: end must be after start", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, Appointment{
		OrgID:        orgID,
		ClientID:     &input.ClientID,
		ServiceID:    &input.ServiceID,
		ServiceName:  input.ServiceName,
		TechnicianID: input.TechnicianID,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		Notes:        input.Notes,
		Status:       StatusScheduled,
	})
}

// Update patches appointment fields. Staff, admins, and the assigned
// technician may update; clients are always denied. Status changes go
// through the state machine.
func (s *Service) Update(ctx context.Context, userID, orgID, id int64, input UpdateInput) (*Appointment, error) {
	appt, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := s.gateMutation(ctx, userID, orgID, appt); err != nil {
		return nil, err
	}
	updates := make(map[string]interface{})
	if input.ServiceName != nil {
		updates["service_name"] = *input.ServiceName
	}
	if input.TechnicianID != nil {
		updates["technician_id"] = *input.TechnicianID
	}
	if input.StartTime != nil {
		updates["start_time"] = *input.StartTime
	}
	if input.EndTime != nil {
		updates["end_time"] = *input.EndTime
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.Status != nil {
		if !CanTransition(appt.Status, *input.Status) {
			return nil, fmt.Errorf("%w: cannot move appointment from %q to %q", httpx.ErrValidation, appt.Status, *input.Status)
		}
		updates["status"] = *input.Status
	}
	if err := s.repo.Update(ctx, orgID, id, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, id)
}

// Cancel moves the appointment to cancelled. Same gate as Update.
func (s *Service) Cancel(ctx context.Context, userID, orgID, id int64) (*Appointment, error) {
	cancelled := StatusCancelled
	return s.Update(ctx, userID, orgID, id, UpdateInput{Status: &cancelled})
}

// Complete transitions a scheduled appointment to completed and writes
// the job ledger row in the same transaction. Amount is the billed
// value recorded for analytics.
func (s *Service) Complete(ctx context.Context, userID, orgID, id int64, amount float64) (*Appointment, error) {
	appt, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := s.gateMutation(ctx, userID, orgID, appt); err != nil {
		return nil, err
	}
	if !CanTransition(appt.Status, StatusCompleted) {
		return nil, fmt.Errorf("%w: cannot complete appointment in status %q", httpx.ErrValidation, appt.Status)
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", httpx.ErrValidation)
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		if err := tx.Update(ctx, orgID, id, map[string]interface{}{"status": StatusCompleted}); err != nil {
			return err
		}
		return tx.InsertJob(ctx, JobRecord{
			OrgID:         orgID,
			AppointmentID: id,
			ServiceName:   appt.ServiceName,
			Amount:        amount,
			Date:          appt.StartTime,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, id)
}

// gateMutation enforces the appointment write rule: staff or admin of
// the organization, or the technician assigned to this appointment.
func (s *Service) gateMutation(ctx context.Context, userID, orgID int64, appt *Appointment) error {
	role, err := s.authorizer.RoleOf(ctx, userID, orgID)
	if err != nil {
		if errors.Is(err, rbac.ErrNoMembership) {
			return fmt.Errorf("%w: no membership in organization", httpx.ErrForbidden)
		}
		return err
	}
	if role.AtLeast(rbac.RoleStaff) {
		return nil
	}
	if role == rbac.RoleTechnician && appt.TechnicianID != nil && *appt.TechnicianID == userID {
		return nil
	}
	return fmt.Errorf("%w: appointment updates require staff or the assigned technician", httpx.ErrForbidden)
}
