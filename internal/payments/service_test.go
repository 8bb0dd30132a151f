package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossworks/glossworks/internal/platform/httpx"
	"github.com/glossworks/glossworks/internal/shared"
)

type memRepo struct {
	payments map[int64]*Payment
	nextID   int64
}

func newMemRepo() *memRepo {
	return &memRepo{payments: make(map[int64]*Payment), nextID: 1}
}

func (m *memRepo) Create(ctx context.Context, p Payment) (*Payment, error) {
	p.ID = m.nextID
	m.nextID++
	m.payments[p.ID] = &p
	cp := p
	return &cp, nil
}

func (m *memRepo) Get(ctx context.Context, orgID, id int64) (*Payment, error) {
	p, ok := m.payments[id]
	if !ok || p.OrgID != orgID {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) ListByAssessment(ctx context.Context, orgID, assessmentID int64) ([]Payment, error) {
	var list []Payment
	for _, p := range m.payments {
		if p.OrgID == orgID && p.AssessmentID == assessmentID {
			list = append(list, *p)
		}
	}
	return list, nil
}

func (m *memRepo) UpdateStatusByIntent(ctx context.Context, intentID string, status Status) error {
	for _, p := range m.payments {
		if p.StripePaymentIntentID == intentID {
			p.Status = status
			return nil
		}
	}
	return shared.ErrNotFound
}

type fakeProvider struct {
	lastCents    int64
	lastCurrency string
	lastMetadata map[string]string
	err          error
}

func (f *fakeProvider) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastCents = amountCents
	f.lastCurrency = currency
	f.lastMetadata = metadata
	return &Intent{ID: "pi_test_123", ClientSecret: "pi_test_123_secret"}, nil
}

func TestCreateDepositIntentConvertsToMinorUnits(t *testing.T) {
	repo := newMemRepo()
	provider := &fakeProvider{}
	svc := NewService(repo, provider, nil)

	result, err := svc.CreateDepositIntent(context.Background(), 1, 42, 49.995)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), provider.lastCents)
	assert.Equal(t, "usd", provider.lastCurrency)
	assert.Equal(t, "42", provider.lastMetadata["assessment_id"])
	assert.Equal(t, "pi_test_123_secret", result.ClientSecret)

	stored, err := repo.Get(context.Background(), 1, result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Equal(t, "pi_test_123", stored.StripePaymentIntentID)
	assert.Equal(t, 49.995, stored.Amount)
}

func TestCreateDepositIntentProviderFailure(t *testing.T) {
	repo := newMemRepo()
	provider := &fakeProvider{err: errors.New("card network unreachable")}
	svc := NewService(repo, provider, nil)

	_, err := svc.CreateDepositIntent(context.Background(), 1, 42, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrExternalProvider))
	assert.Empty(t, repo.payments, "no record without an intent")
}

func TestCreateDepositIntentRejectsNonPositive(t *testing.T) {
	svc := NewService(newMemRepo(), &fakeProvider{}, nil)

	_, err := svc.CreateDepositIntent(context.Background(), 1, 42, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestMarkIntentStatus(t *testing.T) {
	repo := newMemRepo()
	provider := &fakeProvider{}
	svc := NewService(repo, provider, nil)

	result, err := svc.CreateDepositIntent(context.Background(), 1, 42, 100)
	require.NoError(t, err)

	require.NoError(t, svc.MarkIntentStatus(context.Background(), "pi_test_123", StatusSucceeded))
	stored, _ := repo.Get(context.Background(), 1, result.PaymentID)
	assert.Equal(t, StatusSucceeded, stored.Status)

	err = svc.MarkIntentStatus(context.Background(), "pi_test_123", Status("weird"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}
