package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/glossworks/glossworks/internal/platform/httpx"
	"github.com/glossworks/glossworks/internal/rbac"
)

// Manager orchestrates catalog operations.
type Manager struct {
	repo       Repository
	authorizer *rbac.Service
}

// NewManager constructs a Manager.
func NewManager(repo Repository, authorizer *rbac.Service) *Manager {
	return &Manager{repo: repo, authorizer: authorizer}
}

// List returns all catalog services for the organization. Any member can
// browse the catalog; the public intake page reads it through the
// assessments module instead.
func (m *Manager) List(ctx context.Context, userID, orgID int64) ([]Service, error) {
	if err := m.authorizer.Authorize(ctx, userID, orgID, rbac.RoleClient); err != nil {
		return nil, err
	}
	return m.repo.List(ctx, orgID)
}

// Get fetches a single catalog service.
func (m *Manager) Get(ctx context.Context, userID, orgID, id int64) (*Service, error) {
	if err := m.authorizer.Authorize(ctx, userID, orgID, rbac.RoleClient); err != nil {
		return nil, err
	}
	return m.repo.Get(ctx, orgID, id)
}

// Create inserts a new catalog service. Staff only.
func (m *Manager) Create(ctx context.Context, userID, orgID int64, input CreateInput) (*Service, error) {
	if err := m.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, err
	}
	if err := validateCustomFields(input.CustomFields); err != nil {
		return nil, err
	}
	return m.repo.Create(ctx, Service{
		OrgID:        orgID,
		Name:         strings.TrimSpace(input.Name),
		Description:  strings.TrimSpace(input.Description),
		BasePrice:    input.BasePrice,
		PriceType:    input.PriceType,
		DurationMins: input.DurationMins,
		CustomFields: input.CustomFields,
	})
}

// Update patches the provided fields. Staff only.
func (m *Manager) Update(ctx context.Context, userID, orgID, id int64, input UpdateInput) (*Service, error) {
	if err := m.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return nil, err
	}
	updates := make(map[string]interface{})
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.BasePrice != nil {
		if *input.BasePrice < 0 {
			return nil, fmt.Errorf("%w: base price must not be negative", httpx.ErrValidation)
		}
		updates["base_price"] = *input.BasePrice
	}
	if input.PriceType != nil {
		switch *input.PriceType {
		case PriceFixed, PriceHourly, PriceVariable:
		default:
			return nil, fmt.Errorf("%w: unknown price type %q", httpx.ErrValidation, *input.PriceType)
		}
		updates["price_type"] = *input.PriceType
	}
	if input.DurationMins != nil {
		updates["duration_mins"] = *input.DurationMins
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}
	if input.CustomFields != nil {
		if err := validateCustomFields(*input.CustomFields); err != nil {
			return nil, err
		}
		fieldsJSON, err := json.Marshal(*input.CustomFields)
		if err != nil {
			return nil, fmt.Errorf("catalog: encode custom fields: %w", err)
		}
		updates["custom_fields"] = fieldsJSON
	}
	if err := m.repo.Update(ctx, orgID, id, updates); err != nil {
		return nil, err
	}
	return m.repo.Get(ctx, orgID, id)
}

// Delete removes a catalog service. Staff only.
func (m *Manager) Delete(ctx context.Context, userID, orgID, id int64) error {
	if err := m.authorizer.Authorize(ctx, userID, orgID, rbac.RoleStaff); err != nil {
		return err
	}
	return m.repo.Delete(ctx, orgID, id)
}

func validateCustomFields(fields []CustomField) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return fmt.Errorf("%w: custom field name required", httpx.ErrValidation)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate custom field %q", httpx.ErrValidation, name)
		}
		seen[name] = struct{}{}
		switch f.Type {
		case FieldText, FieldNumber, FieldSelect, FieldMultiSelect:
		default:
			return fmt.Errorf("%w: unknown field type %q", httpx.ErrValidation, f.Type)
		}
		if (f.Type == FieldSelect || f.Type == FieldMultiSelect) && len(f.Options) == 0 {
			return fmt.Errorf("%w: field %q needs options", httpx.ErrValidation, name)
		}
	}
	return nil
}
