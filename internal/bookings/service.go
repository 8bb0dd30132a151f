package bookings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/glossworks/glossworks/internal/appointments"
	"github.com/glossworks/glossworks/internal/platform/httpx"
	"github.com/glossworks/glossworks/internal/rbac"
	"github.com/glossworks/glossworks/internal/shared"
)

// Service orchestrates booking operations.
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

// Book reserves an available slot for the caller. The appointment
// flips to scheduled and the booking lands as pending in one
// transaction; a slot already taken fails the whole call. Any member
// of the organization may book.
func (s *Service) Book(ctx context.Context, userID, orgID, appointmentID int64, serviceID *int64) (*Booking, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleClient); err != nil {
		return nil, err
	}

	var booking *Booking
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		appt, err := tx.GetAppointment(ctx, orgID, appointmentID)
		if err != nil {
			return err
		}
		if appt.Status != string(appointments.StatusAvailable) {
			return fmt.Errorf("%w: slot is not available", httpx.ErrValidation)
		}
		if err := tx.UpdateAppointmentStatus(ctx, orgID, appointmentID, string(appointments.StatusScheduled)); err != nil {
			return err
		}
		booking, err = tx.Create(ctx, Booking{
			OrgID:         orgID,
			UserID:        userID,
			AppointmentID: appointmentID,
			ServiceID:     serviceID,
			Status:        StatusPending,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			OrgID:    orgID,
			ActorID:  userID,
			Action:   "booking.created",
			Entity:   "booking",
			EntityID: strconv.FormatInt(booking.ID, 10),
		})
	}
	return booking, nil
}

// List returns bookings for the organization. Staff see every booking;
// clients and technicians see only their own.
func (s *Service) List(ctx context.Context, userID, orgID int64, page, perPage int) ([]Booking, shared.Pagination, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleClient); err != nil {
		return nil, shared.Pagination{}, err
	}
	role, err := s.authorizer.RoleOf(ctx, userID, orgID)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	var filter *int64
	if !role.AtLeast(rbac.RoleStaff) {
		filter = &userID
	}
	list, total, err := s.repo.List(ctx, orgID, filter, page, perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(page, perPage, total), nil
}

// Get fetches a booking. The owner or staff and up.
func (s *Service) Get(ctx context.Context, userID, orgID, id int64) (*Booking, error) {
	booking, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := s.gateRead(ctx, userID, orgID, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// Cancel cancels a booking and releases its slot back to available in
// the same transaction. The owner may cancel until 24 hours before the
// appointment starts; past the deadline the call fails. Staff are held
// to the same window.
func (s *Service) Cancel(ctx context.Context, userID, orgID, id int64) (*Booking, error) {
	booking, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := s.gateRead(ctx, userID, orgID, booking); err != nil {
		return nil, err
	}
	if booking.Status == StatusCancelled || booking.Status == StatusCompleted {
		return nil, fmt.Errorf("%w: booking is already %s", httpx.ErrValidation, booking.Status)
	}

	appt, err := s.repo.GetAppointment(ctx, orgID, booking.AppointmentID)
	if err != nil {
		return nil, err
	}
	deadline := appt.StartTime.Add(-CancellationWindow)
	if s.now().After(deadline) {
		return nil, fmt.Errorf("%w: bookings close for cancellation 24 hours before start", httpx.ErrCancellationWindow)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		if err := tx.UpdateStatus(ctx, orgID, id, StatusCancelled); err != nil {
			return err
		}
		return tx.UpdateAppointmentStatus(ctx, orgID, booking.AppointmentID, string(appointments.StatusAvailable))
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			OrgID:    orgID,
			ActorID:  userID,
			Action:   "booking.cancelled",
			Entity:   "booking",
			EntityID: strconv.FormatInt(id, 10),
		})
	}
	return s.repo.Get(ctx, orgID, id)
}

// UpdateStatus moves a booking between lifecycle states. Staff only.
// Cancelling here also releases the slot, in the same transaction.
func (s *Service) UpdateStatus(ctx context.Context, userID, orgID, id int64, status Status) (*Booking, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown booking status %q", httpx.ErrValidation, status)
	}
	booking, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		if err := tx.UpdateStatus(ctx, orgID, id, status); err != nil {
			return err
		}
		if status == StatusCancelled && booking.Status != StatusCancelled {
			return tx.UpdateAppointmentStatus(ctx, orgID, booking.AppointmentID, string(appointments.StatusAvailable))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			OrgID:    orgID,
			ActorID:  userID,
			Action:   "booking.status_updated",
			Entity:   "booking",
			EntityID: strconv.FormatInt(id, 10),
			Meta:     map[string]any{"status": string(status)},
		})
	}
	return s.repo.Get(ctx, orgID, id)
}

// gateRead allows the booking owner or staff and up.
func (s *Service) gateRead(ctx context.Context, userID, orgID int64, booking *Booking) error {
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
	if booking.UserID == userID {
		return nil
	}
	return fmt.Errorf("%w: booking belongs to another user", httpx.ErrForbidden)
}
