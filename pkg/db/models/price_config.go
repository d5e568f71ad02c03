package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/skeeper75/widget.creator-sub002/pkg/enums"
)

// PriceConfig holds the per-product pricing strategy and its mode parameters.
// Exactly one active config is expected per product; a product without one is
// quoted under the LOOKUP default.
type PriceConfig struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID int64           `gorm:"column:product_id;not null;index"`
	Mode      enums.PriceMode `gorm:"column:mode;type:text;not null;default:'LOOKUP'"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true"`

	// AREA mode.
	UnitPricePerSqm decimal.Decimal  `gorm:"column:unit_price_per_sqm;type:numeric(12,2);not null;default:0"`
	MinAreaSqm      decimal.Decimal  `gorm:"column:min_area_sqm;type:numeric(8,4);not null;default:0.1"`
	ProductAreaSqm  *decimal.Decimal `gorm:"column:product_area_sqm;type:numeric(8,4)"`

	// PAGE mode.
	PageImposition  int             `gorm:"column:page_imposition;not null;default:1"`
	PageUnitPrice   decimal.Decimal `gorm:"column:page_unit_price;type:numeric(12,2);not null;default:0"`
	PageCoverPrice  decimal.Decimal `gorm:"column:page_cover_price;type:numeric(12,2);not null;default:0"`
	PageBindingCost decimal.Decimal `gorm:"column:page_binding_cost;type:numeric(12,2);not null;default:0"`

	// COMPOSITE mode.
	CompositeBaseCost decimal.Decimal `gorm:"column:composite_base_cost;type:numeric(12,2);not null;default:0"`

	PrintCosts       []PrintCostEntry       `gorm:"foreignKey:PriceConfigID;constraint:OnDelete:CASCADE"`
	PostprocessCosts []PostprocessCostEntry `gorm:"foreignKey:PriceConfigID;constraint:OnDelete:CASCADE"`
	DiscountTiers    []QuantityDiscountTier `gorm:"foreignKey:PriceConfigID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// PrintCostEntry is one row of the LOOKUP cost table. The quantity range is
// inclusive on both ends.
type PrintCostEntry struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement"`
	PriceConfigID int64           `gorm:"column:price_config_id;not null;index"`
	PlateType     string          `gorm:"column:plate_type;not null"`
	PrintMode     string          `gorm:"column:print_mode;not null"`
	QtyMin        int             `gorm:"column:qty_min;not null"`
	QtyMax        int             `gorm:"column:qty_max;not null"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// PostprocessCostEntry prices one finishing process over an inclusive
// quantity range.
type PostprocessCostEntry struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement"`
	PriceConfigID int64           `gorm:"column:price_config_id;not null;index"`
	ProcessCode   string          `gorm:"column:process_code;not null"`
	QtyMin        int             `gorm:"column:qty_min;not null"`
	QtyMax        int             `gorm:"column:qty_max;not null"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	PriceType     enums.PriceType `gorm:"column:price_type;type:text;not null;default:'fixed'"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// QuantityDiscountTier maps an inclusive quantity range to a discount rate in
// [0,1) applied to the pre-discount subtotal.
type QuantityDiscountTier struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement"`
	PriceConfigID int64           `gorm:"column:price_config_id;not null;index"`
	QtyMin        int             `gorm:"column:qty_min;not null"`
	QtyMax        int             `gorm:"column:qty_max;not null"`
	DiscountRate  decimal.Decimal `gorm:"column:discount_rate;type:numeric(5,4);not null"`
	Label         string          `gorm:"column:label;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}
