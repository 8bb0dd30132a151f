// Package pricing computes assessment estimates from catalog services
// and the customer's selections. It is pure: no storage, no clock.
package pricing

import (
	"fmt"

	"github.com/glossworks/glossworks/internal/catalog"
	"github.com/glossworks/glossworks/internal/platform/httpx"
)

// Answer is a custom-field value supplied by the customer. Number holds
// numeric answers; Option holds the chosen option for select fields.
type Answer struct {
	Field  string   `json:"field"`
	Number *float64 `json:"number,omitempty"`
	Option string   `json:"option,omitempty"`
}

// Selection is one chosen service with its quantity and field answers.
type Selection struct {
	ServiceID int64    `json:"service_id"`
	Quantity  int      `json:"quantity"`
	Answers   []Answer `json:"answers,omitempty"`
}

// Line is the per-service contribution inside an estimate.
type Line struct {
	ServiceID   int64   `json:"service_id"`
	ServiceName string  `json:"service_name"`
	Quantity    int     `json:"quantity"`
	Base        float64 `json:"base"`
	Adjustments float64 `json:"adjustments"`
	Subtotal    float64 `json:"subtotal"`
}

// Estimate is the computed price for a set of selections.
type Estimate struct {
	Total float64 `json:"total"`
	Lines []Line  `json:"lines"`
}

// Calculate prices the selections against the given catalog services.
// A selection referencing a service outside the list is a validation
// error; the caller is expected to pass the organization's catalog so
// foreign service ids can never be priced.
func Calculate(services []catalog.Service, selections []Selection) (Estimate, error) {
	byID := make(map[int64]catalog.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	est := Estimate{Lines: make([]Line, 0, len(selections))}
	for _, sel := range selections {
		svc, ok := byID[sel.ServiceID]
		if !ok {
			return Estimate{}, fmt.Errorf("%w: unknown service %d", httpx.ErrValidation, sel.ServiceID)
		}
		qty := sel.Quantity
		if qty < 1 {
			qty = 1
		}
		base := svc.BasePrice * float64(qty)
		adjustments := fieldAdjustments(svc.CustomFields, sel.Answers)
		line := Line{
			ServiceID:   svc.ID,
			ServiceName: svc.Name,
			Quantity:    qty,
			Base:        base,
			Adjustments: adjustments,
			Subtotal:    base + adjustments,
		}
		est.Lines = append(est.Lines, line)
		est.Total += line.Subtotal
	}
	if est.Total < 0 {
		est.Total = 0
	}
	return est, nil
}

// fieldAdjustments sums the price contributions of answered custom
// fields. Numeric answers contribute value x modifier; option answers
// contribute option-index x modifier. Answers naming unknown fields or
// unknown options contribute 0.
func fieldAdjustments(fields []catalog.CustomField, answers []Answer) float64 {
	if len(fields) == 0 || len(answers) == 0 {
		return 0
	}
	byName := make(map[string]catalog.CustomField, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	var sum float64
	for _, a := range answers {
		field, ok := byName[a.Field]
		if !ok || !field.AffectsPrice {
			continue
		}
		switch {
		case a.Number != nil:
			sum += *a.Number * field.PriceModifier
		case a.Option != "":
			if idx := optionIndex(field.Options, a.Option); idx >= 0 {
				sum += float64(idx) * field.PriceModifier
			}
		}
	}
	return sum
}

func optionIndex(options []string, value string) int {
	for i, opt := range options {
		if opt == value {
			return i
		}
	}
	return -1
}
