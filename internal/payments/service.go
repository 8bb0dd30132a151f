package payments

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/glossworks/glossworks/internal/platform/httpx"
)

// Service creates deposit intents and keeps payment records in step
// with the processor.
type Service struct {
	repo     Repository
	provider IntentProvider
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, provider IntentProvider, logger *slog.Logger) *Service {
	return &Service{repo: repo, provider: provider, logger: logger}
}

// CreateDepositIntent opens a payment intent for the amount in USD and
// records it as pending. The processor wants minor units, so the
// amount is rounded to cents.
func (s *Service) CreateDepositIntent(ctx context.Context, orgID, assessmentID int64, amount float64) (*IntentResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: deposit amount must be positive", httpx.ErrValidation)
	}
	if s.provider == nil {
		return nil, fmt.Errorf("%w: payment provider not configured", httpx.ErrExternalProvider)
	}
	cents := int64(math.Round(amount * 100))
	intent, err := s.provider.CreateIntent(ctx, cents, "usd", map[string]string{
		"assessment_id": strconv.FormatInt(assessmentID, 10),
		"org_id":        strconv.FormatInt(orgID, 10),
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Error("payment intent failed", slog.Int64("assessment_id", assessmentID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%w: %v", httpx.ErrExternalProvider, err)
	}
	payment, err := s.repo.Create(ctx, Payment{
		OrgID:                 orgID,
		AssessmentID:          assessmentID,
		Amount:                amount,
		Status:                StatusPending,
		StripePaymentIntentID: intent.ID,
	})
	if err != nil {
		return nil, err
	}
	return &IntentResult{
		PaymentID:    payment.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
	}, nil
}

// ListByAssessment returns payment records for an assessment.
func (s *Service) ListByAssessment(ctx context.Context, orgID, assessmentID int64) ([]Payment, error) {
	return s.repo.ListByAssessment(ctx, orgID, assessmentID)
}

// MarkIntentStatus records a processor status change, keyed by the
// intent ID the processor echoes back.
func (s *Service) MarkIntentStatus(ctx context.Context, intentID string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown payment status %q", httpx.ErrValidation, status)
	}
	return s.repo.UpdateStatusByIntent(ctx, intentID, status)
}
