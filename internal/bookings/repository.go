package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glossworks/glossworks/internal/platform/db"
	"github.com/glossworks/glossworks/internal/shared"
)

// Repository defines persistence operations for bookings. Status
// changes that must move the underlying appointment in lockstep run
// through WithTx.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, orgID, id int64) (*Booking, error)
	List(ctx context.Context, orgID int64, userID *int64, page, perPage int) ([]Booking, int, error)
	Create(ctx context.Context, b Booking) (*Booking, error)
	UpdateStatus(ctx context.Context, orgID, id int64, status Status) error
	GetAppointment(ctx context.Context, orgID, appointmentID int64) (*AppointmentInfo, error)
	UpdateAppointmentStatus(ctx context.Context, orgID, appointmentID int64, status string) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const bookingColumns = `id, org_id, user_id, appointment_id, service_id, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.OrgID, &b.UserID, &b.AppointmentID, &b.ServiceID, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) Get(ctx context.Context, orgID, id int64) (*Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE org_id=$1 AND id=$2`, orgID, id))
}

func (r *repository) List(ctx context.Context, orgID int64, userID *int64, page, perPage int) ([]Booking, int, error) {
	conditions := "org_id = $1"
	args := []interface{}{orgID}
	if userID != nil {
		conditions += " AND user_id = $2"
		args = append(args, *userID)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE `+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	p := shared.NewPagination(page, perPage, total)
	offset := (p.Page - 1) * p.PerPage
	limitPos := len(args) + 1
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, bookingColumns, conditions, limitPos, limitPos+1)
	args = append(args, p.PerPage, offset)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.OrgID, &b.UserID, &b.AppointmentID, &b.ServiceID, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *repository) Create(ctx context.Context, b Booking) (*Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `INSERT INTO bookings (org_id, user_id, appointment_id, service_id, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING `+bookingColumns,
		b.OrgID, b.UserID, b.AppointmentID, b.ServiceID, b.Status))
}

func (r *repository) UpdateStatus(ctx context.Context, orgID, id int64, status Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE bookings SET status=$1, updated_at=NOW() WHERE org_id=$2 AND id=$3`, status, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) GetAppointment(ctx context.Context, orgID, appointmentID int64) (*AppointmentInfo, error) {
	var a AppointmentInfo
	err := r.db.QueryRow(ctx, `SELECT id, org_id, start_time, status FROM appointments WHERE org_id=$1 AND id=$2`, orgID, appointmentID).
		Scan(&a.ID, &a.OrgID, &a.StartTime, &a.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) UpdateAppointmentStatus(ctx context.Context, orgID, appointmentID int64, status string) error {
	tag, err := r.db.Exec(ctx, `UPDATE appointments SET status=$1, updated_at=NOW() WHERE org_id=$2 AND id=$3`, status, orgID, appointmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
