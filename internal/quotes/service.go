package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/skeeper75/widget.creator-sub002/internal/catalog"
	"github.com/skeeper75/widget.creator-sub002/internal/pricing"
	"github.com/skeeper75/widget.creator-sub002/internal/rules"
	"github.com/skeeper75/widget.creator-sub002/pkg/db/models"
	"github.com/skeeper75/widget.creator-sub002/pkg/enums"
	pkgerrors "github.com/skeeper75/widget.creator-sub002/pkg/errors"
	"github.com/skeeper75/widget.creator-sub002/pkg/logger"
	"github.com/skeeper75/widget.creator-sub002/pkg/metrics"
	"github.com/skeeper75/widget.creator-sub002/pkg/types"
)

// Well-known selection keys the pricing pass reads. Everything else in the
// selection map only matters to constraint rules.
const (
	SelectionQuantity   = "quantity"
	SelectionPlateType  = "plate_type"
	SelectionPrintMode  = "print_mode"
	SelectionWidth      = "width"
	SelectionHeight     = "height"
	SelectionInnerPages = "inner_pages"
	SelectionProcesses  = "processes"
)

// QuoteInput is the request for one quote computation.
type QuoteInput struct {
	ProductID  int64
	Selections types.Selections
}

// AddonLine is an auto-added addon enriched with catalog data. An addon whose
// catalog row has vanished keeps its ids with an empty name and zero price.
type AddonLine struct {
	AddonGroupID   int64           `json:"addon_group_id"`
	AddonItemID    int64           `json:"addon_item_id"`
	Name           string          `json:"name"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	ConstraintName string          `json:"constraint_name"`
}

// QuoteResult is the client-facing outcome of one quote.
type QuoteResult struct {
	IsValid    bool              `json:"is_valid"`
	UIActions  []rules.UIAction  `json:"ui_actions"`
	Violations []rules.Violation `json:"violations"`
	Addons     []AddonLine       `json:"addons"`
	Pricing    pricing.Quote     `json:"pricing"`
}

// Computation is the full server-side outcome, including the catalog rows
// the quote was computed against. The order finalizer snapshots these.
type Computation struct {
	Result             QuoteResult
	Product            *models.Product
	Recipe             *models.Recipe
	AppliedConstraints []string
}

type quoteLogStore interface {
	Append(ctx context.Context, row *models.QuoteLog) error
	ListRecent(ctx context.Context, productID int64, limit int) ([]models.QuoteLog, error)
}

// RecentQuote is one quote log row served back to callers, newest first.
type RecentQuote struct {
	ProductID  int64            `json:"product_id"`
	Selections types.Selections `json:"selections"`
	Result     json.RawMessage  `json:"result"`
	IsValid    bool             `json:"is_valid"`
	TotalPrice decimal.Decimal  `json:"total_price"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Service computes quotes. The same computation backs the interactive quote
// endpoint and order confirmation; it has no side effects besides the
// fire-and-forget quote log.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error)
	Compute(ctx context.Context, input QuoteInput) (*Computation, error)
	Recent(ctx context.Context, productID int64, limit int) ([]RecentQuote, error)
}

type service struct {
	repo     catalog.Repository
	quoteLog quoteLogStore
	logg     *logger.Logger
	metrics  *metrics.QuoteMetrics
}

// NewService builds the quote orchestrator.
func NewService(repo catalog.Repository, quoteLog quoteLogStore, logg *logger.Logger, m *metrics.QuoteMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if quoteLog == nil {
		return nil, fmt.Errorf("quote log store required")
	}
	return &service{repo: repo, quoteLog: quoteLog, logg: logg, metrics: m}, nil
}

// Quote computes a quote and appends it to the quote log without blocking on
// or failing with the log write.
func (s *service) Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error) {
	computation, err := s.Compute(ctx, input)
	if err != nil {
		return nil, err
	}

	s.logQuoteAsync(ctx, input, computation)

	return &computation.Result, nil
}

// Compute runs the full pipeline: validate, load catalog rows (recipe and
// price config concurrently), evaluate rules, price, assemble.
func (s *service) Compute(ctx context.Context, input QuoteInput) (*Computation, error) {
	if input.ProductID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be a positive integer")
	}
	if input.Selections == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "selections are required")
	}

	product, err := s.repo.FindActiveProduct(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	// Recipe and price config are independent reads; fetch them together.
	var (
		recipe *models.Recipe
		config *models.PriceConfig
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		row, err := s.repo.FindDefaultRecipe(groupCtx, product.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product has no active recipe")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe")
		}
		recipe = row
		return nil
	})
	group.Go(func() error {
		row, err := s.repo.FindActivePriceConfig(groupCtx, product.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// No price config is not terminal: quote under the LOOKUP
				// default with empty tables.
				config = &models.PriceConfig{ProductID: product.ID, Mode: enums.PriceModeLookup}
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load price config")
		}
		config = row
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if err := pricing.ValidateTiers(config.DiscountTiers); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "discount tier configuration")
	}

	constraintRows, err := s.repo.FindActiveConstraints(ctx, recipe.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load constraint rules")
	}
	ruleSet := make([]rules.Rule, 0, len(constraintRows))
	for _, row := range constraintRows {
		rule, err := rules.FromModel(row)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode constraint rule")
		}
		ruleSet = append(ruleSet, rule)
	}

	// Rule evaluation and pricing share no state; both are pure.
	evaluated := rules.Evaluate(ruleSet, input.Selections)
	priced := pricing.Calculate(buildPricingInput(config, input.Selections))

	addons := s.resolveAddons(ctx, evaluated.Addons)

	result := QuoteResult{
		IsValid:    len(evaluated.Violations) == 0,
		UIActions:  evaluated.UIActions,
		Violations: evaluated.Violations,
		Addons:     addons,
		Pricing:    priced,
	}

	if s.metrics != nil {
		s.metrics.ObserveQuote(result.IsValid)
	}

	return &Computation{
		Result:             result,
		Product:            product,
		Recipe:             recipe,
		AppliedConstraints: evaluated.AppliedConstraintNames(),
	}, nil
}

func buildPricingInput(config *models.PriceConfig, selections types.Selections) pricing.Input {
	quantity, _ := selections.Int(SelectionQuantity)
	plateType, _ := selections.Scalar(SelectionPlateType)
	printMode, _ := selections.Scalar(SelectionPrintMode)
	width, _ := selections.Float(SelectionWidth)
	height, _ := selections.Float(SelectionHeight)
	innerPages, _ := selections.Int(SelectionInnerPages)
	processes, _ := selections.Strings(SelectionProcesses)

	productArea := decimal.Zero
	if config.ProductAreaSqm != nil {
		productArea = *config.ProductAreaSqm
	}

	return pricing.Input{
		Mode:     config.Mode,
		Quantity: quantity,
		Lookup: pricing.LookupParams{
			PlateType: plateType,
			PrintMode: printMode,
		},
		Area: pricing.AreaParams{
			WidthMM:         decimal.NewFromFloat(width),
			HeightMM:        decimal.NewFromFloat(height),
			UnitPricePerSqm: config.UnitPricePerSqm,
			MinAreaSqm:      config.MinAreaSqm,
		},
		Page: pricing.PageParams{
			InnerPages:  innerPages,
			Imposition:  config.PageImposition,
			UnitPrice:   config.PageUnitPrice,
			CoverPrice:  config.PageCoverPrice,
			BindingCost: config.PageBindingCost,
		},
		Composite: pricing.CompositeParams{
			BaseCost: config.CompositeBaseCost,
		},
		PrintCosts:           config.PrintCosts,
		PostprocessCosts:     config.PostprocessCosts,
		DiscountTiers:        config.DiscountTiers,
		SelectedProcessCodes: processes,
		ProductAreaSqm:       productArea,
	}
}

func (s *service) resolveAddons(ctx context.Context, refs []rules.AddonRef) []AddonLine {
	lines := make([]AddonLine, 0, len(refs))
	for _, ref := range refs {
		line := AddonLine{
			AddonGroupID:   ref.AddonGroupID,
			AddonItemID:    ref.AddonItemID,
			Quantity:       ref.Quantity,
			UnitPrice:      decimal.Zero,
			ConstraintName: ref.ConstraintName,
		}
		item, err := s.repo.FindAddonItem(ctx, ref.AddonGroupID, ref.AddonItemID)
		if err == nil {
			line.Name = item.Name
			line.UnitPrice = item.UnitPrice
		} else if s.logg != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Warn(s.logg.WithField(ctx, "addon_item_id", ref.AddonItemID), "addon lookup failed")
		}
		lines = append(lines, line)
	}
	return lines
}

// Recent returns the latest logged quotes for a product, newest first.
func (s *service) Recent(ctx context.Context, productID int64, limit int) ([]RecentQuote, error) {
	if productID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be a positive integer")
	}
	rows, err := s.quoteLog.ListRecent(ctx, productID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent quotes")
	}
	recent := make([]RecentQuote, 0, len(rows))
	for _, row := range rows {
		recent = append(recent, RecentQuote{
			ProductID:  row.ProductID,
			Selections: row.Selections,
			Result:     row.Result,
			IsValid:    row.IsValid,
			TotalPrice: row.TotalPrice,
			CreatedAt:  row.CreatedAt,
		})
	}
	return recent, nil
}

// logQuoteAsync appends the quote to the append-only log on a detached
// goroutine. The write is a bulkhead: its failure is logged and never
// affects the response.
func (s *service) logQuoteAsync(ctx context.Context, input QuoteInput, computation *Computation) {
	detached := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil && s.logg != nil {
				s.logg.Error(detached, "quote log panic", fmt.Errorf("panic: %v", r))
			}
		}()

		payload, err := json.Marshal(computation.Result)
		if err != nil {
			if s.logg != nil {
				s.logg.Error(detached, "marshal quote log", err)
			}
			return
		}
		row := &models.QuoteLog{
			ProductID:  input.ProductID,
			Selections: input.Selections,
			Result:     payload,
			IsValid:    computation.Result.IsValid,
			TotalPrice: computation.Result.Pricing.Breakdown.TotalPrice,
		}
		if err := s.quoteLog.Append(detached, row); err != nil && s.logg != nil {
			s.logg.Error(detached, "append quote log", err)
		}
	}()
}
