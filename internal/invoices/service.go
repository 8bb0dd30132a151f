package invoices

import (
	"context"
	"fmt"

	"github.com/glossworks/glossworks/internal/platform/httpx"
	"github.com/glossworks/glossworks/internal/rbac"
	"github.com/glossworks/glossworks/internal/shared"
)

// Service orchestrates invoice operations.
type Service struct {
	repo       Repository
	authorizer *rbac.Service
	audit      *shared.AuditLogger
}

// NewService constructs a Service.
func NewService(repo Repository, authorizer *rbac.Service, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, authorizer: authorizer, audit: audit}
}

// Create inserts a pending invoice and bumps the client's running
// total in the same transaction. The two writes either both land or
// neither does.
func (s *Service) Create(ctx context.Context, userID, orgID int64, input CreateInput) (*Invoice, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, err
	}
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", httpx.ErrValidation)
	}
	var created *Invoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		inv, err := tx.Create(ctx, Invoice{
			OrgID:    orgID,
			ClientID: input.ClientID,
			Amount:   input.Amount,
			Status:   StatusPending,
			DueDate:  input.DueDate,
		})
		if err != nil {
			return err
		}
		if err := tx.IncrementClientTotal(ctx, orgID, input.ClientID, input.Amount); err != nil {
			return fmt.Errorf("invoices: increment client total: %w", err)
		}
		created = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			OrgID:    orgID,
			ActorID:  userID,
			Action:   "invoice.created",
			Entity:   "invoice",
			EntityID: fmt.Sprintf("%d", created.ID),
			Meta:     map[string]any{"amount": created.Amount, "client_id": created.ClientID},
		})
	}
	return created, nil
}

// List returns invoices for the organization.
func (s *Service) List(ctx context.Context, userID, orgID int64, page, perPage int) ([]Invoice, shared.Pagination, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, shared.Pagination{}, err
	}
	list, total, err := s.repo.List(ctx, orgID, page, perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	for i := range list {
		list[i].Display = FormatAmount(list[i].Amount)
	}
	return list, shared.NewPagination(page, perPage, total), nil
}

// Get fetches a single invoice.
func (s *Service) Get(ctx context.Context, userID, orgID, id int64) (*Invoice, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, err
	}
	inv, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	inv.Display = FormatAmount(inv.Amount)
	return inv, nil
}

// Update patches amount, status or due date. An amount change adjusts
// the client's running total by the delta inside the same transaction.
func (s *Service) Update(ctx context.Context, userID, orgID, id int64, input UpdateInput) (*Invoice, error) {
	if err := s.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, err
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown invoice status %q", httpx.ErrValidation, *input.Status)
	}
	if input.Amount != nil && *input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", httpx.ErrValidation)
	}
	var updated *Invoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		current, err := tx.Get(ctx, orgID, id)
		if err != nil {
			return err
		}
		updates := make(map[string]interface{})
		if input.Amount != nil {
			updates["amount"] = *input.Amount
			if delta := *input.Amount - current.Amount; delta != 0 {
				if err := tx.IncrementClientTotal(ctx, orgID, current.ClientID, delta); err != nil {
					return fmt.Errorf("invoices: adjust client total: %w", err)
				}
			}
		}
		if input.Status != nil {
			updates["status"] = *input.Status
		}
		if input.DueDate != nil {
			updates["due_date"] = *input.DueDate
		}
		if err := tx.Update(ctx, orgID, id, updates); err != nil {
			return err
		}
		updated, err = tx.Get(ctx, orgID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	updated.Display = FormatAmount(updated.Amount)
	return updated, nil
}
