package orgs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glossworks/glossworks/internal/platform/httpx"
	"github.com/glossworks/glossworks/internal/rbac"
	"github.com/glossworks/glossworks/internal/shared"
)

// Store defines persistence operations used by the service.
type Store interface {
	GetOrganization(ctx context.Context, id int64) (*Organization, error)
	CreateOrganization(ctx context.Context, name string, ownerID int64) (*Organization, error)
	GetSettings(ctx context.Context, orgID int64) (*Settings, error)
	UpsertSettings(ctx context.Context, s Settings) error
}

// MembershipWriter grants the creator their admin membership.
type MembershipWriter interface {
	UpsertMembership(ctx context.Context, m rbac.Membership) error
}

// Service orchestrates organization operations.
type Service struct {
	store       Store
	authorizer  *rbac.Service
	memberships MembershipWriter
}

// NewService constructs a Service.
func NewService(store Store, authorizer *rbac.Service, memberships MembershipWriter) *Service {
	return &Service{store: store, authorizer: authorizer, memberships: memberships}
}

// Get returns the organization after a membership check.
func (s *Service) Get(ctx context.Context, userID, orgID int64) (*Organization, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleClient); err != nil {
		return nil, err
	}
	return s.store.GetOrganization(ctx, orgID)
}

// Create inserts an organization and makes the creator its admin.
func (s *Service) Create(ctx context.Context, userID int64, name string) (*Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: organization name required", httpx.ErrValidation)
	}
	org, err := s.store.CreateOrganization(ctx, name, userID)
	if err != nil {
		return nil, err
	}
	if err := s.memberships.UpsertMembership(ctx, rbac.Membership{UserID: userID, OrgID: org.ID, Role: rbac.RoleAdmin}); err != nil {
		return nil, fmt.Errorf("orgs: grant admin membership: %w", err)
	}
	return org, nil
}

// GetSettings returns stored settings, or the defaults when none exist.
func (s *Service) GetSettings(ctx context.Context, userID, orgID int64) (Settings, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleClient); err != nil {
		return Settings{}, err
	}
	stored, err := s.store.GetSettings(ctx, orgID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return DefaultSettings(orgID), nil
		}
		return Settings{}, err
	}
	return *stored, nil
}

// UpdateSettings upserts the provided fields over the current (or
// default) values. Admin only.
func (s *Service) UpdateSettings(ctx context.Context, userID, orgID int64, update SettingsUpdate) (Settings, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleAdmin); err != nil {
		return Settings{}, err
	}
	current, err := s.store.GetSettings(ctx, orgID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return Settings{}, err
		}
		defaults := DefaultSettings(orgID)
		current = &defaults
	}
	applySettingsUpdate(current, update)
	if !current.PriceCalculationMethod.valid() {
		return Settings{}, fmt.Errorf("%w: unknown price calculation method %q", httpx.ErrValidation, current.PriceCalculationMethod)
	}
	if err := s.store.UpsertSettings(ctx, *current); err != nil {
		return Settings{}, err
	}
	return *current, nil
}

func (m PriceMethod) valid() bool {
	switch m {
	case PriceMethodFixed, PriceMethodHourly, PriceMethodVariable:
		return true
	}
	return false
}

func applySettingsUpdate(s *Settings, u SettingsUpdate) {
	if u.CompanyName != nil {
		s.CompanyName = *u.CompanyName
	}
	if u.CompanyAddress != nil {
		s.CompanyAddress = *u.CompanyAddress
	}
	if u.CompanyPhone != nil {
		s.CompanyPhone = *u.CompanyPhone
	}
	if u.EnableAIRecommendations != nil {
		s.EnableAIRecommendations = *u.EnableAIRecommendations
	}
	if u.DefaultServiceTime != nil {
		s.DefaultServiceTime = *u.DefaultServiceTime
	}
	if u.PriceCalculationMethod != nil {
		s.PriceCalculationMethod = *u.PriceCalculationMethod
	}
	if u.NotifyNewAssessments != nil {
		s.NotifyNewAssessments = *u.NotifyNewAssessments
	}
	if u.NotifyAssessmentUpdates != nil {
		s.NotifyAssessmentUpdates = *u.NotifyAssessmentUpdates
	}
	if u.NotifyDailySummary != nil {
		s.NotifyDailySummary = *u.NotifyDailySummary
	}
	if u.StripeConnected != nil {
		s.StripeConnected = *u.StripeConnected
	}
	if u.GoogleCalendarConnected != nil {
		s.GoogleCalendarConnected = *u.GoogleCalendarConnected
	}
	if u.QuickBooksConnected != nil {
		s.QuickBooksConnected = *u.QuickBooksConnected
	}
}
