package catalog

import "time"

// PriceType selects how a service's base price is interpreted.
type PriceType string

const (
	PriceFixed    PriceType = "fixed"
	PriceHourly   PriceType = "hourly"
	PriceVariable PriceType = "variable"
)

// FieldType enumerates custom field kinds.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldNumber      FieldType = "number"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multiselect"
)

// CustomField is a per-service intake question. Fields marked
// AffectsPrice feed the pricing engine through PriceModifier.
type CustomField struct {
	Name          string    `json:"name"`
	Type          FieldType `json:"type"`
	Options       []string  `json:"options,omitempty"`
	Required      bool      `json:"required"`
	AffectsPrice  bool      `json:"affects_price"`
	PriceModifier float64   `json:"price_modifier"`
}

// Service is a catalog entry an organization offers.
type Service struct {
	ID           int64         `json:"id"`
	OrgID        int64         `json:"org_id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	BasePrice    float64       `json:"base_price"`
	PriceType    PriceType     `json:"price_type"`
	DurationMins int           `json:"duration_mins"`
	Active       bool          `json:"active"`
	CustomFields []CustomField `json:"custom_fields"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// CreateInput carries the fields of a new catalog service.
type CreateInput struct {
	Name         string        `json:"name" validate:"required,min=2"`
	Description  string        `json:"description"`
	BasePrice    float64       `json:"base_price" validate:"gte=0"`
	PriceType    PriceType     `json:"price_type" validate:"required,oneof=fixed hourly variable"`
	DurationMins int           `json:"duration_mins" validate:"gte=0"`
	CustomFields []CustomField `json:"custom_fields"`
}

// UpdateInput carries optional fields of a catalog update.
type UpdateInput struct {
	Name         *string        `json:"name"`
	Description  *string        `json:"description"`
	BasePrice    *float64       `json:"base_price"`
	PriceType    *PriceType     `json:"price_type"`
	DurationMins *int           `json:"duration_mins"`
	Active       *bool          `json:"active"`
	CustomFields *[]CustomField `json:"custom_fields"`
}
