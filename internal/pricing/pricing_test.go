package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossworks/glossworks/internal/catalog"
	"github.com/glossworks/glossworks/internal/platform/httpx"
)

func fixtureServices() []catalog.Service {
	return []catalog.Service{
		{
			ID:        1,
			Name:      "Exterior Wash",
			BasePrice: 40,
			PriceType: catalog.PriceFixed,
		},
		{
			ID:        2,
			Name:      "Paint Correction",
			BasePrice: 150,
			PriceType: catalog.PriceVariable,
			CustomFields: []catalog.CustomField{
				{Name: "panels", Type: catalog.FieldNumber, AffectsPrice: true, PriceModifier: 25},
				{Name: "finish", Type: catalog.FieldSelect, Options: []string{"standard", "premium", "show car"}, AffectsPrice: true, PriceModifier: 50},
				{Name: "notes", Type: catalog.FieldText},
			},
		},
	}
}

func TestCalculateBaseTimesQuantity(t *testing.T) {
	est, err := Calculate(fixtureServices(), []Selection{{ServiceID: 1, Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, 120.0, est.Total)
	require.Len(t, est.Lines, 1)
	assert.Equal(t, 120.0, est.Lines[0].Base)
	assert.Equal(t, 0.0, est.Lines[0].Adjustments)
}

func TestCalculateZeroQuantityCountsAsOne(t *testing.T) {
	est, err := Calculate(fixtureServices(), []Selection{{ServiceID: 1, Quantity: 0}})
	require.NoError(t, err)
	assert.Equal(t, 40.0, est.Total)
}

func TestCalculateNumericFieldContribution(t *testing.T) {
	panels := 4.0
	est, err := Calculate(fixtureServices(), []Selection{{
		ServiceID: 2,
		Quantity:  1,
		Answers:   []Answer{{Field: "panels", Number: &panels}},
	}})
	require.NoError(t, err)
	// 150 base + 4 panels x 25 modifier
	assert.Equal(t, 250.0, est.Total)
}

func TestCalculateOptionIndexContribution(t *testing.T) {
	cases := []struct {
		option string
		want   float64
	}{
		{"standard", 150},  // index 0 contributes nothing
		{"premium", 200},   // index 1 x 50
		{"show car", 250},  // index 2 x 50
		{"gold leaf", 150}, // unknown option contributes 0
	}
	for _, tc := range cases {
		t.Run(tc.option, func(t *testing.T) {
			est, err := Calculate(fixtureServices(), []Selection{{
				ServiceID: 2,
				Quantity:  1,
				Answers:   []Answer{{Field: "finish", Option: tc.option}},
			}})
			require.NoError(t, err)
			assert.Equal(t, tc.want, est.Total)
		})
	}
}

func TestCalculateIgnoresNonPricingFields(t *testing.T) {
	est, err := Calculate(fixtureServices(), []Selection{{
		ServiceID: 2,
		Quantity:  1,
		Answers:   []Answer{{Field: "notes", Option: "be careful"}, {Field: "nonexistent", Option: "x"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, 150.0, est.Total)
}

func TestCalculateUnknownServiceFails(t *testing.T) {
	_, err := Calculate(fixtureServices(), []Selection{{ServiceID: 999, Quantity: 1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestCalculateMultipleSelectionsSum(t *testing.T) {
	panels := 2.0
	est, err := Calculate(fixtureServices(), []Selection{
		{ServiceID: 1, Quantity: 2},
		{ServiceID: 2, Quantity: 1, Answers: []Answer{{Field: "panels", Number: &panels}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 80.0+200.0, est.Total)
	assert.Len(t, est.Lines, 2)
}

func TestCalculateTotalNeverNegative(t *testing.T) {
	discount := -100.0
	services := []catalog.Service{{
		ID:        5,
		Name:      "Promo",
		BasePrice: 10,
		CustomFields: []catalog.CustomField{
			{Name: "discount", Type: catalog.FieldNumber, AffectsPrice: true, PriceModifier: 1},
		},
	}}
	est, err := Calculate(services, []Selection{{
		ServiceID: 5,
		Quantity:  1,
		Answers:   []Answer{{Field: "discount", Number: &discount}},
	}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, est.Total)
}
