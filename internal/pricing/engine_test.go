package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skeeper75/widget.creator-sub002/pkg/db/models"
	"github.com/skeeper75/widget.creator-sub002/pkg/enums"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

var businessCardTable = []models.PrintCostEntry{
	{PlateType: "90x50", PrintMode: "단면칼라", QtyMin: 100, QtyMax: 499, UnitPrice: decimal.NewFromInt(350)},
	{PlateType: "90x50", PrintMode: "단면칼라", QtyMin: 500, QtyMax: 999, UnitPrice: decimal.NewFromInt(280)},
	{PlateType: "90x50", PrintMode: "양면칼라", QtyMin: 100, QtyMax: 499, UnitPrice: decimal.NewFromInt(500)},
}

func TestLookupCost(t *testing.T) {
	cases := []struct {
		name      string
		plateType string
		printMode string
		qty       int
		want      decimal.Decimal
	}{
		{"mid tier", "90x50", "단면칼라", 200, decimal.NewFromInt(350)},
		{"tier boundary", "90x50", "단면칼라", 500, decimal.NewFromInt(280)},
		{"lower boundary", "90x50", "단면칼라", 100, decimal.NewFromInt(350)},
		{"upper boundary", "90x50", "단면칼라", 999, decimal.NewFromInt(280)},
		{"qty outside all tiers", "90x50", "단면칼라", 5000, decimal.Zero},
		{"unknown plate", "94x54", "단면칼라", 200, decimal.Zero},
		{"unknown mode", "90x50", "흑백", 200, decimal.Zero},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LookupCost(businessCardTable, tc.plateType, tc.printMode, tc.qty)
			assert.True(t, tc.want.Equal(got), "want %s got %s", tc.want, got)
		})
	}
}

func TestAreaCost(t *testing.T) {
	got := AreaCost(AreaParams{
		WidthMM:         decimal.NewFromInt(500),
		HeightMM:        decimal.NewFromInt(400),
		UnitPricePerSqm: decimal.NewFromInt(5000),
	})
	assert.True(t, decimal.NewFromInt(1000).Equal(got), "got %s", got)

	// Below the minimum billable area the floor price applies.
	floored := AreaCost(AreaParams{
		WidthMM:         decimal.NewFromInt(100),
		HeightMM:        decimal.NewFromInt(100),
		UnitPricePerSqm: decimal.NewFromInt(5000),
	})
	assert.True(t, decimal.NewFromInt(500).Equal(floored), "0.1 sqm floor * 5000, got %s", floored)
}

func TestAreaCostNonDecreasing(t *testing.T) {
	unit := decimal.NewFromInt(5000)
	previous := decimal.Zero
	for _, width := range []int64{50, 200, 500, 1000, 2000} {
		cost := AreaCost(AreaParams{
			WidthMM:         decimal.NewFromInt(width),
			HeightMM:        decimal.NewFromInt(400),
			UnitPricePerSqm: unit,
		})
		assert.True(t, cost.GreaterThanOrEqual(previous), "area cost decreased at width %d", width)
		previous = cost
	}
}

func TestPageCost(t *testing.T) {
	got := PageCost(PageParams{
		InnerPages:  8,
		Imposition:  4,
		UnitPrice:   decimal.NewFromInt(500),
		CoverPrice:  decimal.NewFromInt(1000),
		BindingCost: decimal.NewFromInt(200),
	})
	assert.True(t, decimal.NewFromInt(2200).Equal(got), "got %s", got)

	// Partial sheets round up.
	odd := PageCost(PageParams{
		InnerPages: 9,
		Imposition: 4,
		UnitPrice:  decimal.NewFromInt(500),
	})
	assert.True(t, decimal.NewFromInt(1500).Equal(odd), "3 sheets expected, got %s", odd)
}

func TestCompositeCost(t *testing.T) {
	got := CompositeCost(CompositeParams{
		BaseCost:     decimal.NewFromInt(1000),
		ProcessCosts: []decimal.Decimal{decimal.NewFromInt(500), decimal.NewFromInt(300)},
	})
	assert.True(t, decimal.NewFromInt(1800).Equal(got), "got %s", got)
}

func TestPostprocessCostPriceTypes(t *testing.T) {
	entries := []models.PostprocessCostEntry{
		{ProcessCode: "coating", QtyMin: 1, QtyMax: 10000, UnitPrice: decimal.NewFromInt(500), PriceType: enums.PriceTypeFixed},
		{ProcessCode: "foil", QtyMin: 1, QtyMax: 10000, UnitPrice: dec("0.5"), PriceType: enums.PriceTypePerUnit},
		{ProcessCode: "laminate", QtyMin: 1, QtyMax: 10000, UnitPrice: decimal.NewFromInt(2000), PriceType: enums.PriceTypePerSqm},
	}
	area := dec("0.25")

	got := PostprocessCost(entries, []string{"coating", "foil", "laminate"}, 200, area)
	// 500 fixed + 0.5*200 + 2000*0.25 = 1100
	assert.True(t, decimal.NewFromInt(1100).Equal(got), "got %s", got)

	// Unconfigured codes contribute zero rather than failing.
	tolerant := PostprocessCost(entries, []string{"coating", "hologram"}, 200, area)
	assert.True(t, decimal.NewFromInt(500).Equal(tolerant), "got %s", tolerant)
}

func standardTiers() []models.QuantityDiscountTier {
	return []models.QuantityDiscountTier{
		{QtyMin: 1, QtyMax: 99, DiscountRate: decimal.Zero, Label: "기본"},
		{QtyMin: 100, QtyMax: 299, DiscountRate: dec("0.03"), Label: "3% 할인"},
		{QtyMin: 300, QtyMax: 100000, DiscountRate: dec("0.07"), Label: "7% 할인"},
	}
}

func TestMatchDiscountTier(t *testing.T) {
	tiers := standardTiers()

	applied := MatchDiscountTier(tiers, 300)
	require.NotNil(t, applied)
	assert.True(t, dec("0.07").Equal(applied.Rate), "got %s", applied.Rate)

	// A matched 0% tier is still reported with its label.
	zero := MatchDiscountTier(tiers, 50)
	require.NotNil(t, zero)
	assert.Equal(t, "기본", zero.Label)
	assert.True(t, zero.Rate.IsZero())

	assert.Nil(t, MatchDiscountTier(tiers, 200000), "gap resolves to no discount")
}

func TestValidateTiers(t *testing.T) {
	require.NoError(t, ValidateTiers(standardTiers()))

	overlapping := []models.QuantityDiscountTier{
		{QtyMin: 1, QtyMax: 150, DiscountRate: decimal.Zero, Label: "a"},
		{QtyMin: 100, QtyMax: 299, DiscountRate: dec("0.03"), Label: "b"},
	}
	require.Error(t, ValidateTiers(overlapping))

	inverted := []models.QuantityDiscountTier{
		{QtyMin: 100, QtyMax: 50, DiscountRate: decimal.Zero, Label: "a"},
	}
	require.Error(t, ValidateTiers(inverted))

	badRate := []models.QuantityDiscountTier{
		{QtyMin: 1, QtyMax: 99, DiscountRate: decimal.NewFromInt(1), Label: "a"},
	}
	require.Error(t, ValidateTiers(badRate))

	gapped := []models.QuantityDiscountTier{
		{QtyMin: 1, QtyMax: 99, DiscountRate: decimal.Zero, Label: "a"},
		{QtyMin: 500, QtyMax: 999, DiscountRate: dec("0.03"), Label: "b"},
	}
	require.NoError(t, ValidateTiers(gapped), "gaps are allowed")
}

func TestCalculateFinalFormula(t *testing.T) {
	quote := Calculate(Input{
		Mode:     enums.PriceModeComposite,
		Quantity: 100,
		Composite: CompositeParams{
			BaseCost: decimal.NewFromInt(1000),
		},
		PostprocessCosts: []models.PostprocessCostEntry{
			{ProcessCode: "coating", QtyMin: 1, QtyMax: 10000, UnitPrice: decimal.NewFromInt(500), PriceType: enums.PriceTypeFixed},
		},
		SelectedProcessCodes: []string{"coating"},
		DiscountTiers: []models.QuantityDiscountTier{
			{QtyMin: 1, QtyMax: 10000, DiscountRate: dec("0.1"), Label: "10%"},
		},
	})

	b := quote.Breakdown
	assert.True(t, decimal.NewFromInt(1500).Equal(b.Subtotal), "subtotal %s", b.Subtotal)
	assert.True(t, decimal.NewFromInt(150).Equal(b.DiscountAmount), "discount %s", b.DiscountAmount)
	assert.True(t, decimal.NewFromInt(1350).Equal(b.TotalPrice), "total %s", b.TotalPrice)
	assert.True(t, dec("13.5").Equal(b.PricePerUnit), "per unit %s", b.PricePerUnit)
	require.NotNil(t, quote.AppliedDiscount)

	// Exact round-trip at two decimal places.
	assert.True(t, b.TotalPrice.Equal(b.Subtotal.Sub(b.DiscountAmount)))
}

func TestCalculateLookupModeZeroQuantity(t *testing.T) {
	quote := Calculate(Input{
		Mode:       enums.PriceModeLookup,
		Quantity:   0,
		PrintCosts: businessCardTable,
		Lookup:     LookupParams{PlateType: "90x50", PrintMode: "단면칼라"},
	})
	assert.True(t, quote.Breakdown.TotalPrice.IsZero())
	assert.True(t, quote.Breakdown.PricePerUnit.IsZero())
}

func TestDiscountAmountBounded(t *testing.T) {
	for _, qty := range []int{1, 99, 100, 299, 300, 100000} {
		quote := Calculate(Input{
			Mode:          enums.PriceModeComposite,
			Quantity:      qty,
			Composite:     CompositeParams{BaseCost: decimal.NewFromInt(10000)},
			DiscountTiers: standardTiers(),
		})
		b := quote.Breakdown
		assert.True(t, b.DiscountAmount.Sign() >= 0, "qty %d negative discount", qty)
		assert.True(t, b.DiscountAmount.LessThanOrEqual(b.Subtotal), "qty %d discount exceeds subtotal", qty)
	}
}
