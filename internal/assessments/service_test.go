package assessments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossworks/glossworks/internal/ai"
	"github.com/glossworks/glossworks/internal/catalog"
	"github.com/glossworks/glossworks/internal/payments"
	"github.com/glossworks/glossworks/internal/platform/httpx"
	"github.com/glossworks/glossworks/internal/pricing"
	"github.com/glossworks/glossworks/internal/rbac"
	"github.com/glossworks/glossworks/internal/shared"
)

type memRepo struct {
	assessments map[int64]*Assessment
	nextID      int64
}

func newMemRepo() *memRepo {
	return &memRepo{assessments: make(map[int64]*Assessment), nextID: 1}
}

func (m *memRepo) Create(ctx context.Context, a Assessment) (*Assessment, error) {
	a.ID = m.nextID
	m.nextID++
	m.assessments[a.ID] = &a
	cp := a
	return &cp, nil
}

func (m *memRepo) Get(ctx context.Context, orgID, id int64) (*Assessment, error) {
	a, ok := m.assessments[id]
	if !ok || a.OrgID != orgID {
		return nil, shared.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memRepo) List(ctx context.Context, orgID int64, status *Status, page, perPage int) ([]Assessment, int, error) {
	var list []Assessment
	for _, a := range m.assessments {
		if a.OrgID != orgID {
			continue
		}
		if status != nil && a.Status != *status {
			continue
		}
		list = append(list, *a)
	}
	return list, len(list), nil
}

func (m *memRepo) UpdateStatus(ctx context.Context, orgID, id int64, status Status) error {
	a, ok := m.assessments[id]
	if !ok || a.OrgID != orgID {
		return shared.ErrNotFound
	}
	a.Status = status
	return nil
}

func (m *memRepo) UpdateHotspots(ctx context.Context, orgID, id int64, hotspots []Hotspot) error {
	a, ok := m.assessments[id]
	if !ok || a.OrgID != orgID {
		return shared.ErrNotFound
	}
	a.Hotspots = hotspots
	return nil
}

func (m *memRepo) SetAIResults(ctx context.Context, orgID, id int64, questions []ai.Question, estimate float64) error {
	a, ok := m.assessments[id]
	if !ok || a.OrgID != orgID {
		return shared.ErrNotFound
	}
	a.AIQuestions = questions
	a.AIEstimate = estimate
	return nil
}

type stubCatalog struct {
	services []catalog.Service
}

func (s *stubCatalog) List(ctx context.Context, orgID int64) ([]catalog.Service, error) {
	return s.services, nil
}

func (s *stubCatalog) ListByIDs(ctx context.Context, orgID int64, ids []int64) ([]catalog.Service, error) {
	var out []catalog.Service
	for _, svc := range s.services {
		for _, id := range ids {
			if svc.ID == id {
				out = append(out, svc)
			}
		}
	}
	return out, nil
}

type stubInsight struct {
	questions []ai.Question
	estimate  float64
	err       error
}

func (s *stubInsight) GenerateQuestions(ctx context.Context, vehicle ai.VehicleInfo) ([]ai.Question, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.questions, nil
}

func (s *stubInsight) GenerateEstimate(ctx context.Context, vehicle ai.VehicleInfo, answers []ai.AssessmentAnswer) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.estimate, nil
}

type stubDeposits struct {
	lastAmount float64
	err        error
}

func (s *stubDeposits) CreateDepositIntent(ctx context.Context, orgID, assessmentID int64, amount float64) (*payments.IntentResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastAmount = amount
	return &payments.IntentResult{PaymentID: 1, ClientSecret: "pi_secret", Amount: amount}, nil
}

type roleStore map[int64]rbac.Role

func (s roleStore) GetMembership(ctx context.Context, userID, orgID int64) (*rbac.Membership, error) {
	role, ok := s[userID]
	if !ok {
		return nil, rbac.ErrNoMembership
	}
	return &rbac.Membership{UserID: userID, OrgID: orgID, Role: role}, nil
}

func fixtureCatalog() *stubCatalog {
	return &stubCatalog{services: []catalog.Service{
		{ID: 1, OrgID: 1, Name: "Exterior Wash", BasePrice: 40},
		{ID: 2, OrgID: 1, Name: "Interior Deep Clean", BasePrice: 120},
	}}
}

func newTestService(repo Repository, insight InsightProvider, deposits DepositCreator, roles roleStore) *Service {
	return NewService(repo, fixtureCatalog(), insight, deposits, rbac.NewService(roles), nil, nil)
}

func validInput() SubmitInput {
	return SubmitInput{
		ClientName:  "Dana Fields",
		ClientEmail: "Dana@Example.com",
		Vehicle:     VehicleDetails{Make: "Audi", Model: "A4", Year: 2021, Condition: "good"},
		Selections: []pricing.Selection{
			{ServiceID: 1, Quantity: 2},
			{ServiceID: 2, Quantity: 1},
		},
	}
}

func TestSubmitComputesEstimateAndPends(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil, nil, roleStore{})

	result, err := svc.Submit(context.Background(), 1, validInput())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, result.Assessment.Status)
	assert.Equal(t, 200.0, result.Assessment.EstimateAmount, "2x wash + 1x deep clean")
	assert.Equal(t, "dana@example.com", result.Assessment.ClientEmail)
	assert.Nil(t, result.DepositIntent)
}

func TestSubmitWithDepositTakesTenPercent(t *testing.T) {
	repo := newMemRepo()
	deposits := &stubDeposits{}
	svc := newTestService(repo, nil, deposits, roleStore{})

	input := validInput()
	input.WithDeposit = true
	result, err := svc.Submit(context.Background(), 1, input)
	require.NoError(t, err)
	require.NotNil(t, result.DepositIntent)
	assert.Equal(t, 20.0, deposits.lastAmount)
	assert.Equal(t, "pi_secret", result.DepositIntent.ClientSecret)
}

func TestSubmitDepositFailureKeepsAssessment(t *testing.T) {
	repo := newMemRepo()
	deposits := &stubDeposits{err: httpx.ErrExternalProvider}
	svc := newTestService(repo, nil, deposits, roleStore{})

	input := validInput()
	input.WithDeposit = true
	result, err := svc.Submit(context.Background(), 1, input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrExternalProvider))
	require.NotNil(t, result)
	require.NotNil(t, result.Assessment)
	_, getErr := repo.Get(context.Background(), 1, result.Assessment.ID)
	assert.NoError(t, getErr, "assessment survives a payment provider outage")
}

func TestSubmitRejectsBlankIdentity(t *testing.T) {
	svc := newTestService(newMemRepo(), nil, nil, roleStore{})

	input := validInput()
	input.ClientName = "   "
	_, err := svc.Submit(context.Background(), 1, input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestIntakeMediaTargetAcceptsOnlyPending(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil, nil, roleStore{9: rbac.RoleStaff})

	result, err := svc.Submit(context.Background(), 1, validInput())
	require.NoError(t, err)
	id := result.Assessment.ID

	// A fresh submission accepts media without any session.
	target, err := svc.IntakeMediaTarget(context.Background(), 1, id)
	require.NoError(t, err)
	assert.Equal(t, id, target.ID)

	// Wrong org never sees the record.
	_, err = svc.IntakeMediaTarget(context.Background(), 2, id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))

	// Once moderated, the record is closed to anonymous uploads.
	_, err = svc.SetStatus(context.Background(), 9, 1, id, StatusApproved)
	require.NoError(t, err)
	_, err = svc.IntakeMediaTarget(context.Background(), 1, id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestMergeHotspotsReplacesByPart(t *testing.T) {
	existing := []Hotspot{
		{Part: "hood", Issue: "swirl marks", Severity: "low"},
		{Part: "rear bumper", Issue: "scratch", Severity: "medium"},
	}
	incoming := []Hotspot{
		{Part: "hood", Issue: "deep scratch", Severity: "high"},
		{Part: "roof", Issue: "oxidation", Severity: "medium"},
	}

	merged := MergeHotspots(existing, incoming)
	require.Len(t, merged, 3)
	assert.Equal(t, "deep scratch", merged[0].Issue, "hood entry replaced in place")
	assert.Equal(t, "rear bumper", merged[1].Part)
	assert.Equal(t, "roof", merged[2].Part)
}

func TestGenerateInsightDegradesOnProviderFailure(t *testing.T) {
	repo := newMemRepo()
	insight := &stubInsight{err: errors.New("provider down")}
	svc := newTestService(repo, insight, nil, roleStore{9: rbac.RoleStaff})

	result, err := svc.Submit(context.Background(), 1, validInput())
	require.NoError(t, err)

	assessment, err := svc.GenerateInsight(context.Background(), 9, 1, result.Assessment.ID)
	require.NoError(t, err, "provider failure must not escalate")
	assert.Empty(t, assessment.AIQuestions)
	assert.Zero(t, assessment.AIEstimate)
}

func TestGenerateInsightStoresResults(t *testing.T) {
	repo := newMemRepo()
	insight := &stubInsight{
		questions: []ai.Question{{ID: "q1", Question: "Any paint chips?", Type: "text"}},
		estimate:  350,
	}
	svc := newTestService(repo, insight, nil, roleStore{9: rbac.RoleStaff})

	result, err := svc.Submit(context.Background(), 1, validInput())
	require.NoError(t, err)

	assessment, err := svc.GenerateInsight(context.Background(), 9, 1, result.Assessment.ID)
	require.NoError(t, err)
	require.Len(t, assessment.AIQuestions, 1)
	assert.Equal(t, 350.0, assessment.AIEstimate)
}

func TestModerationStaffOnly(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil, nil, roleStore{5: rbac.RoleClient, 9: rbac.RoleStaff})

	result, err := svc.Submit(context.Background(), 1, validInput())
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), 5, 1, result.Assessment.ID, StatusApproved)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrForbidden))

	approved, err := svc.SetStatus(context.Background(), 9, 1, result.Assessment.ID, StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)

	_, err = svc.SetStatus(context.Background(), 9, 1, result.Assessment.ID, StatusPending)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}
