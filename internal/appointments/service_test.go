package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossworks/glossworks/internal/platform/httpx"
	"github.com/glossworks/glossworks/internal/rbac"
	"github.com/glossworks/glossworks/internal/shared"
)

type memRepo struct {
	appts   map[int64]*Appointment
	jobs    []JobRecord
	nextID  int64
	txDepth int
}

func newMemRepo() *memRepo {
	return &memRepo{appts: make(map[int64]*Appointment), nextID: 1}
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	m.txDepth++
	defer func() { m.txDepth-- }()
	backup := make(map[int64]*Appointment, len(m.appts))
	for k, v := range m.appts {
		cp := *v
		backup[k] = &cp
	}
	jobsBackup := append([]JobRecord(nil), m.jobs...)
	if err := fn(ctx, m); err != nil {
		m.appts = backup
		m.jobs = jobsBackup
		return err
	}
	return nil
}

func (m *memRepo) Get(ctx context.Context, orgID, id int64) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok || a.OrgID != orgID {
		return nil, shared.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memRepo) List(ctx context.Context, orgID int64, from, to *time.Time, page, perPage int) ([]Appointment, int, error) {
	var list []Appointment
	for _, a := range m.appts {
		if a.OrgID != orgID {
			continue
		}
		if from != nil && a.StartTime.Before(*from) {
			continue
		}
		if to != nil && !a.StartTime.Before(*to) {
			continue
		}
		list = append(list, *a)
	}
	return list, len(list), nil
}

func (m *memRepo) Create(ctx context.Context, a Appointment) (*Appointment, error) {
	a.ID = m.nextID
	m.nextID++
	m.appts[a.ID] = &a
	cp := a
	return &cp, nil
}

func (m *memRepo) Update(ctx context.Context, orgID, id int64, updates map[string]interface{}) error {
	a, ok := m.appts[id]
	if !ok || a.OrgID != orgID {
		return shared.ErrNotFound
	}
	if v, ok := updates["status"]; ok {
		a.Status = v.(Status)
	}
	if v, ok := updates["notes"]; ok {
		a.Notes = v.(string)
	}
	if v, ok := updates["service_name"]; ok {
		a.ServiceName = v.(string)
	}
	return nil
}

func (m *memRepo) CountOverlapping(ctx context.Context, orgID int64, start, end time.Time) (int, error) {
	count := 0
	for _, a := range m.appts {
		if a.OrgID != orgID || a.Status == StatusCancelled {
			continue
		}
		if a.StartTime.Before(end) && a.EndTime.After(start) {
			count++
		}
	}
	return count, nil
}

func (m *memRepo) InsertJob(ctx context.Context, job JobRecord) error {
	if m.txDepth == 0 {
		return errors.New("job insert outside transaction")
	}
	m.jobs = append(m.jobs, job)
	return nil
}

type roleStore map[int64]rbac.Role

func (s roleStore) GetMembership(ctx context.Context, userID, orgID int64) (*rbac.Membership, error) {
	role, ok := s[userID]
	if !ok {
		return nil, rbac.ErrNoMembership
	}
	return &rbac.Membership{UserID: userID, OrgID: orgID, Role: role}, nil
}

func testService(repo Repository, roles roleStore) *Service {
	return NewService(repo, rbac.NewService(roles), nil)
}

func seedScheduled(repo *memRepo, technicianID *int64) *Appointment {
	appt, _ := repo.Create(context.Background(), Appointment{
		OrgID:        1,
		ServiceName:  "Ceramic Coating",
		TechnicianID: technicianID,
		StartTime:    time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		EndTime:      time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
		Status:       StatusScheduled,
	})
	return appt
}

func TestClientRoleCannotUpdateAppointments(t *testing.T) {
	repo := newMemRepo()
	appt := seedScheduled(repo, nil)
	svc := testService(repo, roleStore{7: rbac.RoleClient})

	notes := "please wax too"
	_, err := svc.Update(context.Background(), 7, 1, appt.ID, UpdateInput{Notes: &notes})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrForbidden))
}

func TestAssignedTechnicianCanUpdate(t *testing.T) {
	repo := newMemRepo()
	tech := int64(9)
	appt := seedScheduled(repo, &tech)
	svc := testService(repo, roleStore{9: rbac.RoleTechnician, 8: rbac.RoleTechnician})

	notes := "swirl marks on hood"
	updated, err := svc.Update(context.Background(), 9, 1, appt.ID, UpdateInput{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)

	// A technician who is not assigned is denied.
	_, err = svc.Update(context.Background(), 8, 1, appt.ID, UpdateInput{Notes: &notes})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrForbidden))
}

func TestInvalidTransitionRejected(t *testing.T) {
	repo := newMemRepo()
	slot, _ := repo.Create(context.Background(), Appointment{
		OrgID:     1,
		StartTime: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		Status:    StatusAvailable,
	})
	svc := testService(repo, roleStore{1: rbac.RoleAdmin})

	completed := StatusCompleted
	_, err := svc.Update(context.Background(), 1, 1, slot.ID, UpdateInput{Status: &completed})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestCancelOpenSlot(t *testing.T) {
	repo := newMemRepo()
	slot, _ := repo.Create(context.Background(), Appointment{
		OrgID:     1,
		StartTime: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		Status:    StatusAvailable,
	})
	svc := testService(repo, roleStore{1: rbac.RoleStaff})

	cancelled, err := svc.Cancel(context.Background(), 1, 1, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
}

func TestCreateSlotsRejectsOverlapAtomically(t *testing.T) {
	repo := newMemRepo()
	svc := testService(repo, roleStore{1: rbac.RoleStaff})
	ctx := context.Background()
	base := time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)

	created, err := svc.CreateSlots(ctx, 1, 1, []SlotInput{
		{StartTime: base, EndTime: base.Add(time.Hour)},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	// Second batch: first slot fine, second overlaps the existing one.
	// Nothing from the batch may survive.
	_, err = svc.CreateSlots(ctx, 1, 1, []SlotInput{
		{StartTime: base.Add(2 * time.Hour), EndTime: base.Add(3 * time.Hour)},
		{StartTime: base.Add(30 * time.Minute), EndTime: base.Add(90 * time.Minute)},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrOverlap))
	assert.Len(t, repo.appts, 1, "failed batch must roll back entirely")
}

func TestCompleteWritesJobLedgerRow(t *testing.T) {
	repo := newMemRepo()
	appt := seedScheduled(repo, nil)
	svc := testService(repo, roleStore{1: rbac.RoleStaff})

	done, err := svc.Complete(context.Background(), 1, 1, appt.ID, 420)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	require.Len(t, repo.jobs, 1)
	assert.Equal(t, "Ceramic Coating", repo.jobs[0].ServiceName)
	assert.Equal(t, 420.0, repo.jobs[0].Amount)
	assert.Equal(t, appt.StartTime, repo.jobs[0].Date)

	// Completed is terminal.
	_, err = svc.Complete(context.Background(), 1, 1, appt.ID, 420)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestStateMachine(t *testing.T) {
	assert.True(t, CanTransition(StatusAvailable, StatusScheduled))
	assert.True(t, CanTransition(StatusAvailable, StatusCancelled))
	assert.True(t, CanTransition(StatusScheduled, StatusAvailable))
	assert.True(t, CanTransition(StatusScheduled, StatusCancelled))
	assert.True(t, CanTransition(StatusCancelled, StatusAvailable))
	assert.False(t, CanTransition(StatusCompleted, StatusScheduled))
	assert.False(t, CanTransition(StatusAvailable, StatusCompleted))
	assert.False(t, CanTransition(StatusUnavailable, StatusScheduled))
}
