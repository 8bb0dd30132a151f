package assessments

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/glossworks/glossworks/internal/ai"
	"github.com/glossworks/glossworks/internal/catalog"
	"github.com/glossworks/glossworks/internal/payments"
	"github.com/glossworks/glossworks/internal/platform/httpx"
	"github.com/glossworks/glossworks/internal/pricing"
	"github.com/glossworks/glossworks/internal/rbac"
	"github.com/glossworks/glossworks/internal/shared"
)

// ServiceCatalog is the slice of the catalog the intake flow needs.
type ServiceCatalog interface {
	List(ctx context.Context, orgID int64) ([]catalog.Service, error)
	ListByIDs(ctx context.Context, orgID int64, ids []int64) ([]catalog.Service, error)
}

// InsightProvider generates AI questions and estimates.
type InsightProvider interface {
	GenerateQuestions(ctx context.Context, vehicle ai.VehicleInfo) ([]ai.Question, error)
	GenerateEstimate(ctx context.Context, vehicle ai.VehicleInfo, answers []ai.AssessmentAnswer) (float64, error)
}

// DepositCreator opens payment intents for assessment deposits.
type DepositCreator interface {
	CreateDepositIntent(ctx context.Context, orgID, assessmentID int64, amount float64) (*payments.IntentResult, error)
}

// Service runs the public intake workflow and staff moderation.
type Service struct {
	repo       Repository
	services   ServiceCatalog
	insight    InsightProvider
	deposits   DepositCreator
	authorizer *rbac.Service
	audit      *shared.AuditLogger
	logger     *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, services ServiceCatalog, insight InsightProvider, deposits DepositCreator, authorizer *rbac.Service, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		services:   services,
		insight:    insight,
		deposits:   deposits,
		authorizer: authorizer,
		audit:      audit,
		logger:     logger,
	}
}

// SubmitResult is the intake response. DepositIntent is set only when
// the submission asked for a deposit and the estimate is positive.
type SubmitResult struct {
	Assessment    *Assessment            `json:"assessment"`
	DepositIntent *payments.IntentResult `json:"deposit_intent,omitempty"`
}

// Submit accepts a public intake submission. The estimate comes from
// the service catalog and the custom field answers; the assessment
// lands as pending. The optional deposit takes 10% of the estimate.
// A payment provider failure leaves the persisted assessment intact.
func (s *Service) Submit(ctx context.Context, orgID int64, input SubmitInput) (*SubmitResult, error) {
	if strings.TrimSpace(input.ClientName) == "" || strings.TrimSpace(input.ClientEmail) == "" {
		return nil, fmt.Errorf("%w: client name and email are required", httpx.ErrValidation)
	}

	estimate, err := s.estimate(ctx, orgID, input.Selections)
	if err != nil {
		return nil, err
	}

	assessment, err := s.repo.Create(ctx, Assessment{
		OrgID:          orgID,
		ClientName:     strings.TrimSpace(input.ClientName),
		ClientEmail:    strings.ToLower(strings.TrimSpace(input.ClientEmail)),
		Vehicle:        input.Vehicle,
		Hotspots:       MergeHotspots(nil, input.Hotspots),
		Selections:     input.Selections,
		Answers:        input.Answers,
		EstimateAmount: estimate,
		Status:         StatusPending,
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			OrgID:    orgID,
			Action:   "assessment.submitted",
			Entity:   "assessment",
			EntityID: strconv.FormatInt(assessment.ID, 10),
			Meta:     map[string]any{"estimate": estimate},
		})
	}

	result := &SubmitResult{Assessment: assessment}
	if input.WithDeposit && estimate > 0 {
		if s.deposits == nil {
			return result, fmt.Errorf("%w: payment provider not configured", httpx.ErrExternalProvider)
		}
		intent, err := s.deposits.CreateDepositIntent(ctx, orgID, assessment.ID, estimate*DepositRate)
		if err != nil {
			return result, err
		}
		result.DepositIntent = intent
	}
	return result, nil
}

func (s *Service) estimate(ctx context.Context, orgID int64, selections []pricing.Selection) (float64, error) {
	if len(selections) == 0 {
		return 0, nil
	}
	ids := make([]int64, 0, len(selections))
	for _, sel := range selections {
		ids = append(ids, sel.ServiceID)
	}
	services, err := s.services.ListByIDs(ctx, orgID, ids)
	if err != nil {
		return 0, err
	}
	est, err := pricing.Calculate(services, selections)
	if err != nil {
		return 0, err
	}
	return est.Total, nil
}

// IntakeServices returns the catalog for the public intake form.
func (s *Service) IntakeServices(ctx context.Context, orgID int64) ([]catalog.Service, error) {
	return s.services.List(ctx, orgID)
}

// IntakeMediaTarget returns the assessment a public submitter may
// still attach media to. Only pending assessments accept intake media;
// once moderation has run the record is closed to anonymous uploads.
func (s *Service) IntakeMediaTarget(ctx context.Context, orgID, id int64) (*Assessment, error) {
	assessment, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if assessment.Status != StatusPending {
		return nil, fmt.Errorf("%w: assessment is no longer accepting media", httpx.ErrValidation)
	}
	return assessment, nil
}

// IntakeQuestions asks the AI provider for questions tailored to the
// vehicle. Failures surface as upstream provider errors.
func (s *Service) IntakeQuestions(ctx context.Context, vehicle ai.VehicleInfo) ([]ai.Question, error) {
	if s.insight == nil {
		return nil, fmt.Errorf("%w: AI provider not configured", httpx.ErrExternalProvider)
	}
	return s.insight.GenerateQuestions(ctx, vehicle)
}

// GenerateInsight refreshes AI questions and estimate for a stored
// assessment. Best-effort: a provider failure logs and leaves the
// assessment unchanged without surfacing an error. Staff only.
func (s *Service) GenerateInsight(ctx context.Context, userID, orgID, id int64) (*Assessment, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, err
	}
	assessment, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if s.insight == nil {
		return assessment, nil
	}

	vehicle := ai.VehicleInfo{
		Make:  assessment.Vehicle.Make,
		Model: assessment.Vehicle.Model,
		Year:  strconv.Itoa(assessment.Vehicle.Year),
	}
	questions, qErr := s.insight.GenerateQuestions(ctx, vehicle)
	answers := make([]ai.AssessmentAnswer, 0, len(assessment.Answers))
	for _, qa := range assessment.Answers {
		answers = append(answers, ai.AssessmentAnswer{Question: qa.Question, Answer: qa.Answer})
	}
	aiEstimate, eErr := s.insight.GenerateEstimate(ctx, vehicle, answers)
	if qErr != nil && eErr != nil {
		if s.logger != nil {
			s.logger.Warn("insight generation failed", slog.Int64("assessment_id", id), slog.Any("error", qErr))
		}
		return assessment, nil
	}
	if qErr != nil {
		questions = assessment.AIQuestions
	}
	if eErr != nil {
		aiEstimate = assessment.AIEstimate
	}
	if err := s.repo.SetAIResults(ctx, orgID, id, questions, aiEstimate); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, id)
}

// List returns assessments for moderation, optionally by status. Staff only.
func (s *Service) List(ctx context.Context, userID, orgID int64, status *Status, page, perPage int) ([]Assessment, shared.Pagination, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, shared.Pagination{}, err
	}
	list, total, err := s.repo.List(ctx, orgID, status, page, perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(page, perPage, total), nil
}

// Get fetches an assessment. Staff only.
func (s *Service) Get(ctx context.Context, userID, orgID, id int64) (*Assessment, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, id)
}

// SetStatus approves or rejects an assessment. Staff only.
func (s *Service) SetStatus(ctx context.Context, userID, orgID, id int64, status Status) (*Assessment, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, err
	}
	if status != StatusApproved && status != StatusRejected {
		return nil, fmt.Errorf("%w: status must be approved or rejected", httpx.ErrValidation)
	}
	if err := s.repo.UpdateStatus(ctx, orgID, id, status); err != nil {
		return nil, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			OrgID:    orgID,
			ActorID:  userID,
			Action:   "assessment." + string(status),
			Entity:   "assessment",
			EntityID: strconv.FormatInt(id, 10),
		})
	}
	return s.repo.Get(ctx, orgID, id)
}

// UpdateHotspots merges incoming hotspots into the stored list,
// replacing entries for parts that reappear. Staff only.
func (s *Service) UpdateHotspots(ctx context.Context, userID, orgID, id int64, incoming []Hotspot) (*Assessment, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, err
	}
	assessment, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	merged := MergeHotspots(assessment.Hotspots, incoming)
	if err := s.repo.UpdateHotspots(ctx, orgID, id, merged); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, id)
}
