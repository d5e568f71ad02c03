package pricing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/skeeper75/widget.creator-sub002/pkg/db/models"
	"github.com/skeeper75/widget.creator-sub002/pkg/enums"
)

var (
	mmPerSqm         = decimal.NewFromInt(1_000_000)
	defaultMinAreaSqm = decimal.RequireFromString("0.1")
)

// LookupParams selects the LOOKUP cost-table row.
type LookupParams struct {
	PlateType string
	PrintMode string
}

// AreaParams feeds the AREA mode. Dimensions are millimeters.
type AreaParams struct {
	WidthMM         decimal.Decimal
	HeightMM        decimal.Decimal
	UnitPricePerSqm decimal.Decimal
	MinAreaSqm      decimal.Decimal
}

// PageParams feeds the PAGE mode.
type PageParams struct {
	InnerPages  int
	Imposition  int
	UnitPrice   decimal.Decimal
	CoverPrice  decimal.Decimal
	BindingCost decimal.Decimal
}

// CompositeParams feeds the COMPOSITE mode.
type CompositeParams struct {
	BaseCost     decimal.Decimal
	ProcessCosts []decimal.Decimal
}

// Input bundles everything one pricing pass needs. Only the params matching
// Mode are consulted for the print cost; the post-process table, discount
// tiers, and final combinator apply uniformly across modes.
type Input struct {
	Mode                 enums.PriceMode
	Quantity             int
	Lookup               LookupParams
	Area                 AreaParams
	Page                 PageParams
	Composite            CompositeParams
	PrintCosts           []models.PrintCostEntry
	PostprocessCosts     []models.PostprocessCostEntry
	DiscountTiers        []models.QuantityDiscountTier
	SelectedProcessCodes []string
	ProductAreaSqm       decimal.Decimal
}

// Breakdown is the monetary result. Every field is rounded to two decimal
// places at the point it is computed, never accumulated unrounded.
type Breakdown struct {
	PrintCost      decimal.Decimal `json:"print_cost"`
	ProcessCost    decimal.Decimal `json:"process_cost"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountRate   decimal.Decimal `json:"discount_rate"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	PricePerUnit   decimal.Decimal `json:"price_per_unit"`
}

// AppliedDiscount reports which tier matched, if any. A matched 0% tier is
// still reported so callers can show its label.
type AppliedDiscount struct {
	Label  string          `json:"label"`
	Rate   decimal.Decimal `json:"rate"`
	QtyMin int             `json:"qty_min"`
	QtyMax int             `json:"qty_max"`
}

// Quote is the full pricing output for one computation.
type Quote struct {
	Mode            enums.PriceMode  `json:"price_mode"`
	Breakdown       Breakdown        `json:"breakdown"`
	AppliedDiscount *AppliedDiscount `json:"applied_discount,omitempty"`
}

// Calculate runs one pricing pass: mode-specific print cost, post-process
// cost, tier discount, and the single final combinator.
func Calculate(in Input) Quote {
	var printCost decimal.Decimal
	switch in.Mode {
	case enums.PriceModeArea:
		printCost = AreaCost(in.Area)
	case enums.PriceModePage:
		printCost = PageCost(in.Page)
	case enums.PriceModeComposite:
		printCost = CompositeCost(in.Composite)
	default:
		printCost = LookupCost(in.PrintCosts, in.Lookup.PlateType, in.Lookup.PrintMode, in.Quantity)
	}

	processCost := PostprocessCost(in.PostprocessCosts, in.SelectedProcessCodes, in.Quantity, in.ProductAreaSqm)
	applied := MatchDiscountTier(in.DiscountTiers, in.Quantity)

	rate := decimal.Zero
	if applied != nil {
		rate = applied.Rate
	}

	return Quote{
		Mode:            in.Mode,
		Breakdown:       combine(printCost, processCost, rate, in.Quantity),
		AppliedDiscount: applied,
	}
}

// LookupCost returns the unit price of the table row whose plate type and
// print mode match exactly and whose inclusive quantity range contains qty.
// The row price *is* the line cost; quantity only selects the row. A miss is
// a zero contribution, never an error.
func LookupCost(entries []models.PrintCostEntry, plateType, printMode string, qty int) decimal.Decimal {
	for _, entry := range entries {
		if entry.PlateType != plateType || entry.PrintMode != printMode {
			continue
		}
		if qty >= entry.QtyMin && qty <= entry.QtyMax {
			return round2(entry.UnitPrice)
		}
	}
	return decimal.Zero
}

// AreaCost prices by chargeable area: width*height in mm converted to square
// meters, floored at the minimum billable area.
func AreaCost(params AreaParams) decimal.Decimal {
	minArea := params.MinAreaSqm
	if minArea.Sign() <= 0 {
		minArea = defaultMinAreaSqm
	}
	area := params.WidthMM.Mul(params.HeightMM).Div(mmPerSqm)
	chargeable := area
	if chargeable.LessThan(minArea) {
		chargeable = minArea
	}
	return round2(chargeable.Mul(params.UnitPricePerSqm))
}

// PageCost prices bound products: sheets = ceil(innerPages/imposition), plus
// cover and binding.
func PageCost(params PageParams) decimal.Decimal {
	imposition := params.Imposition
	if imposition < 1 {
		imposition = 1
	}
	sheets := (params.InnerPages + imposition - 1) / imposition
	cost := decimal.NewFromInt(int64(sheets)).Mul(params.UnitPrice).
		Add(params.CoverPrice).
		Add(params.BindingCost)
	return round2(cost)
}

// CompositeCost sums a base cost with its component process costs.
func CompositeCost(params CompositeParams) decimal.Decimal {
	cost := params.BaseCost
	for _, part := range params.ProcessCosts {
		cost = cost.Add(part)
	}
	return round2(cost)
}

// PostprocessCost sums the cost of each selected finishing process. A code
// with no matching row contributes zero: selecting an unconfigured process is
// tolerated here, rejection is the rule layer's job.
func PostprocessCost(entries []models.PostprocessCostEntry, selectedCodes []string, qty int, productAreaSqm decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, code := range selectedCodes {
		entry, ok := matchPostprocess(entries, code, qty)
		if !ok {
			continue
		}
		switch entry.PriceType {
		case enums.PriceTypePerUnit:
			total = total.Add(round2(entry.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))))
		case enums.PriceTypePerSqm:
			total = total.Add(round2(entry.UnitPrice.Mul(productAreaSqm)))
		default:
			total = total.Add(round2(entry.UnitPrice))
		}
	}
	return round2(total)
}

func matchPostprocess(entries []models.PostprocessCostEntry, code string, qty int) (models.PostprocessCostEntry, bool) {
	for _, entry := range entries {
		if entry.ProcessCode != code {
			continue
		}
		if qty >= entry.QtyMin && qty <= entry.QtyMax {
			return entry, true
		}
	}
	return models.PostprocessCostEntry{}, false
}

// MatchDiscountTier returns the tier whose inclusive range contains qty, or
// nil when no tier matches (no discount).
func MatchDiscountTier(tiers []models.QuantityDiscountTier, qty int) *AppliedDiscount {
	for _, tier := range tiers {
		if qty >= tier.QtyMin && qty <= tier.QtyMax {
			return &AppliedDiscount{
				Label:  tier.Label,
				Rate:   tier.DiscountRate,
				QtyMin: tier.QtyMin,
				QtyMax: tier.QtyMax,
			}
		}
	}
	return nil
}

// ValidateTiers rejects overlapping tiers and out-of-range rates at load
// time. Gaps are allowed and resolve to "no discount".
func ValidateTiers(tiers []models.QuantityDiscountTier) error {
	ordered := make([]models.QuantityDiscountTier, len(tiers))
	copy(ordered, tiers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].QtyMin < ordered[j].QtyMin
	})
	for i, tier := range ordered {
		if tier.QtyMax < tier.QtyMin {
			return fmt.Errorf("discount tier %q has inverted range [%d,%d]", tier.Label, tier.QtyMin, tier.QtyMax)
		}
		if tier.DiscountRate.Sign() < 0 || tier.DiscountRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("discount tier %q rate must be in [0,1)", tier.Label)
		}
		if i > 0 && tier.QtyMin <= ordered[i-1].QtyMax {
			return fmt.Errorf("discount tiers %q and %q overlap", ordered[i-1].Label, tier.Label)
		}
	}
	return nil
}

// combine is the single final formula every mode funnels through:
//
//	subtotal       = printCost + processCost
//	discountAmount = round(subtotal * discountRate, 2)
//	totalPrice     = round(subtotal - discountAmount, 2)
//	pricePerUnit   = quantity > 0 ? round(totalPrice / quantity, 2) : 0
func combine(printCost, processCost, discountRate decimal.Decimal, qty int) Breakdown {
	subtotal := round2(printCost.Add(processCost))
	discountAmount := round2(subtotal.Mul(discountRate))
	totalPrice := round2(subtotal.Sub(discountAmount))

	pricePerUnit := decimal.Zero
	if qty > 0 {
		pricePerUnit = totalPrice.DivRound(decimal.NewFromInt(int64(qty)), 2)
	}

	return Breakdown{
		PrintCost:      printCost,
		ProcessCost:    processCost,
		Subtotal:       subtotal,
		DiscountRate:   discountRate,
		DiscountAmount: discountAmount,
		TotalPrice:     totalPrice,
		PricePerUnit:   pricePerUnit,
	}
}

func round2(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}
