package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossworks/glossworks/internal/appointments"
	"github.com/glossworks/glossworks/internal/platform/httpx"
	"github.com/glossworks/glossworks/internal/rbac"
	"github.com/glossworks/glossworks/internal/shared"
)

type memRepo struct {
	bookings map[int64]*Booking
	appts    map[int64]*AppointmentInfo
	nextID   int64
	txDepth  int
}

func newMemRepo() *memRepo {
	return &memRepo{
		bookings: make(map[int64]*Booking),
		appts:    make(map[int64]*AppointmentInfo),
		nextID:   1,
	}
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	m.txDepth++
	defer func() { m.txDepth-- }()
	bBackup := make(map[int64]*Booking, len(m.bookings))
	for k, v := range m.bookings {
		cp := *v
		bBackup[k] = &cp
	}
	aBackup := make(map[int64]*AppointmentInfo, len(m.appts))
	for k, v := range m.appts {
		cp := *v
		aBackup[k] = &cp
	}
	if err := fn(ctx, m); err != nil {
		m.bookings = bBackup
		m.appts = aBackup
		return err
	}
	return nil
}

func (m *memRepo) Get(ctx context.Context, orgID, id int64) (*Booking, error) {
	b, ok := m.bookings[id]
	if !ok || b.OrgID != orgID {
		return nil, shared.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memRepo) List(ctx context.Context, orgID int64, userID *int64, page, perPage int) ([]Booking, int, error) {
	var list []Booking
	for _, b := range m.bookings {
		if b.OrgID != orgID {
			continue
		}
		if userID != nil && b.UserID != *userID {
			continue
		}
		list = append(list, *b)
	}
	return list, len(list), nil
}

func (m *memRepo) Create(ctx context.Context, b Booking) (*Booking, error) {
	b.ID = m.nextID
	m.nextID++
	m.bookings[b.ID] = &b
	cp := b
	return &cp, nil
}

func (m *memRepo) UpdateStatus(ctx context.Context, orgID, id int64, status Status) error {
	b, ok := m.bookings[id]
	if !ok || b.OrgID != orgID {
		return shared.ErrNotFound
	}
	b.Status = status
	return nil
}

func (m *memRepo) GetAppointment(ctx context.Context, orgID, appointmentID int64) (*AppointmentInfo, error) {
	a, ok := m.appts[appointmentID]
	if !ok || a.OrgID != orgID {
		return nil, shared.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memRepo) UpdateAppointmentStatus(ctx context.Context, orgID, appointmentID int64, status string) error {
	if m.txDepth == 0 {
		return errors.New("appointment update outside transaction")
	}
	a, ok := m.appts[appointmentID]
	if !ok || a.OrgID != orgID {
		return shared.ErrNotFound
	}
	a.Status = status
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

func testService(repo Repository, roles roleStore, now time.Time) *Service {
	svc := NewService(repo, rbac.NewService(roles), nil)
	svc.now = func() time.Time { return now }
	return svc
}

func seedBooked(repo *memRepo, userID int64, start time.Time) *Booking {
	apptID := repo.nextID
	repo.nextID++
	repo.appts[apptID] = &AppointmentInfo{
		ID:        apptID,
		OrgID:     1,
		StartTime: start,
		Status:    string(appointments.StatusScheduled),
	}
	booking, _ := repo.Create(context.Background(), Booking{
		OrgID:         1,
		UserID:        userID,
		AppointmentID: apptID,
		Status:        StatusConfirmed,
	})
	return booking
}

func TestBookTakesAvailableSlot(t *testing.T) {
	repo := newMemRepo()
	repo.appts[100] = &AppointmentInfo{
		ID:        100,
		OrgID:     1,
		StartTime: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		Status:    string(appointments.StatusAvailable),
	}
	svc := testService(repo, roleStore{5: rbac.RoleClient}, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	booking, err := svc.Book(context.Background(), 5, 1, 100, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, booking.Status)
	assert.Equal(t, string(appointments.StatusScheduled), repo.appts[100].Status)

	// The slot is now taken.
	_, err = svc.Book(context.Background(), 5, 1, 100, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestCancelBeforeWindowSucceeds(t *testing.T) {
	repo := newMemRepo()
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	booking := seedBooked(repo, 5, start)
	svc := testService(repo, roleStore{5: rbac.RoleClient}, start.Add(-25*time.Hour))

	cancelled, err := svc.Cancel(context.Background(), 5, 1, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, string(appointments.StatusAvailable), repo.appts[booking.AppointmentID].Status,
		"cancelling must release the slot")
}

func TestCancelInsideWindowFails(t *testing.T) {
	repo := newMemRepo()
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	booking := seedBooked(repo, 5, start)
	svc := testService(repo, roleStore{5: rbac.RoleClient}, start.Add(-23*time.Hour))

	_, err := svc.Cancel(context.Background(), 5, 1, booking.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrCancellationWindow))

	// Nothing changed.
	current, err := repo.Get(context.Background(), 1, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, current.Status)
	assert.Equal(t, string(appointments.StatusScheduled), repo.appts[booking.AppointmentID].Status)
}

func TestCancelOwnerOnly(t *testing.T) {
	repo := newMemRepo()
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	booking := seedBooked(repo, 5, start)
	now := start.Add(-48 * time.Hour)

	// Another client may not cancel someone else's booking.
	svc := testService(repo, roleStore{5: rbac.RoleClient, 6: rbac.RoleClient}, now)
	_, err := svc.Cancel(context.Background(), 6, 1, booking.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrForbidden))

	// Staff can.
	svc = testService(repo, roleStore{9: rbac.RoleStaff}, now)
	cancelled, err := svc.Cancel(context.Background(), 9, 1, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
}

func TestUpdateStatusStaffOnly(t *testing.T) {
	repo := newMemRepo()
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	booking := seedBooked(repo, 5, start)
	svc := testService(repo, roleStore{5: rbac.RoleClient, 9: rbac.RoleStaff}, start.Add(-48*time.Hour))

	_, err := svc.UpdateStatus(context.Background(), 5, 1, booking.ID, StatusCompleted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrForbidden))

	updated, err := svc.UpdateStatus(context.Background(), 9, 1, booking.ID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)
}

func TestUpdateStatusCancelledReleasesSlot(t *testing.T) {
	repo := newMemRepo()
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	booking := seedBooked(repo, 5, start)
	svc := testService(repo, roleStore{9: rbac.RoleStaff}, start.Add(-1*time.Hour))

	// Staff status updates are not bound by the cancellation window.
	updated, err := svc.UpdateStatus(context.Background(), 9, 1, booking.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, updated.Status)
	assert.Equal(t, string(appointments.StatusAvailable), repo.appts[booking.AppointmentID].Status)
}

func TestListFiltersToOwnerForClients(t *testing.T) {
	repo := newMemRepo()
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	seedBooked(repo, 5, start)
	seedBooked(repo, 6, start.Add(2*time.Hour))
	svc := testService(repo, roleStore{5: rbac.RoleClient, 9: rbac.RoleStaff}, start.Add(-48*time.Hour))

	mine, _, err := svc.List(context.Background(), 5, 1, 1, 20)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(5), mine[0].UserID)

	all, _, err := svc.List(context.Background(), 9, 1, 1, 20)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
