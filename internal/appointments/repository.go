package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glossworks/glossworks/internal/platform/db"
	"github.com/glossworks/glossworks/internal/shared"
)

// Repository defines persistence operations for appointments.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, orgID, id int64) (*Appointment, error)
	List(ctx context.Context, orgID int64, from, to *time.Time, page, perPage int) ([]Appointment, int, error)
	Create(ctx context.Context, a Appointment) (*Appointment, error)
	Update(ctx context.Context, orgID, id int64, updates map[string]interface{}) error
	CountOverlapping(ctx context.Context, orgID int64, start, end time.Time) (int, error)
	InsertJob(ctx context.Context, job JobRecord) error
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

const apptColumns = `id, org_id, client_id, service_id, service_name, technician_id, start_time, end_time, notes, status, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.OrgID, &a.ClientID, &a.ServiceID, &a.ServiceName, &a.TechnicianID, &a.StartTime, &a.EndTime, &a.Notes, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) Get(ctx context.Context, orgID, id int64) (*Appointment, error) {
	return scanAppointment(r.db.QueryRow(ctx, `SELECT `+apptColumns+` FROM appointments WHERE org_id=$1 AND id=$2`, orgID, id))
}

func (r *repository) List(ctx context.Context, orgID int64, from, to *time.Time, page, perPage int) ([]Appointment, int, error) {
	conditions := "org_id = $1"
	args := []interface{}{orgID}
	argPos := 2
	if from != nil {
		conditions += fmt.Sprintf(" AND start_time >= $%d", argPos)
		args = append(args, *from)
		argPos++
	}
	if to != nil {
		conditions += fmt.Sprintf(" AND start_time < $%d", argPos)
		args = append(args, *to)
		argPos++
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE `+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	p := shared.NewPagination(page, perPage, total)
	offset := (p.Page - 1) * p.PerPage
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE %s ORDER BY start_time DESC LIMIT $%d OFFSET $%d`, apptColumns, conditions, argPos, argPos+1)
	args = append(args, p.PerPage, offset)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.OrgID, &a.ClientID, &a.ServiceID, &a.ServiceName, &a.TechnicianID, &a.StartTime, &a.EndTime, &a.Notes, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *repository) Create(ctx context.Context, a Appointment) (*Appointment, error) {
	return scanAppointment(r.db.QueryRow(ctx, `INSERT INTO appointments (org_id, client_id, service_id, service_name, technician_id, start_time, end_time, notes, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()) RETURNING `+apptColumns,
		a.OrgID, a.ClientID, a.ServiceID, a.ServiceName, a.TechnicianID, a.StartTime, a.EndTime, a.Notes, a.Status))
}

func (r *repository) Update(ctx context.Context, orgID, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	setClause := ""
	args := []interface{}{}
	argPos := 1
	for _, col := range []string{"client_id", "service_id", "service_name", "technician_id", "start_time", "end_time", "notes", "status"} {
		val, ok := updates[col]
		if !ok {
			continue
		}
		if setClause != "" {
			setClause += ", "
		}
		setClause += fmt.Sprintf("%s = $%d", col, argPos)
		args = append(args, val)
		argPos++
	}
	if setClause == "" {
		return nil
	}
	setClause += ", updated_at = NOW()"
	args = append(args, orgID, id)
	query := fmt.Sprintf("UPDATE appointments SET %s WHERE org_id = $%d AND id = $%d", setClause, argPos, argPos+1)
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountOverlapping counts slots whose time range intersects [start, end).
// Cancelled slots do not block new ones.
func (r *repository) CountOverlapping(ctx context.Context, orgID int64, start, end time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE org_id=$1 AND status <> 'cancelled' AND start_time < $3 AND end_time > $2`, orgID, start, end).Scan(&count)
	return count, err
}

func (r *repository) InsertJob(ctx context.Context, job JobRecord) error {
	_, err := r.db.Exec(ctx, `INSERT INTO jobs (org_id, appointment_id, service_name, amount, date) VALUES ($1, $2, $3, $4, $5)`,
		job.OrgID, job.AppointmentID, job.ServiceName, job.Amount, job.Date)
	return err
}
