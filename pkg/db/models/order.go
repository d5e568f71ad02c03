package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skeeper75/widget.creator-sub002/pkg/enums"
	"github.com/skeeper75/widget.creator-sub002/pkg/types"
)

// Order is the immutable snapshot created at confirmation time. It is never
// mutated by later quote recomputation; only status fields advance.
type Order struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderCode          string               `gorm:"column:order_code;not null;uniqueIndex:ux_orders_order_code"`
	ProductID          int64                `gorm:"column:product_id;not null;index"`
	RecipeID           int64                `gorm:"column:recipe_id;not null"`
	RecipeVersion      int                  `gorm:"column:recipe_version;not null"`
	Selections         types.Selections     `gorm:"column:selections;type:jsonb;serializer:json;not null"`
	PriceBreakdown     json.RawMessage      `gorm:"column:price_breakdown;type:jsonb;not null"`
	AppliedConstraints []string             `gorm:"column:applied_constraints;type:jsonb;serializer:json"`
	AddonItems         json.RawMessage      `gorm:"column:addon_items;type:jsonb"`
	Status             enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'confirmed'"`
	DispatchStatus     enums.DispatchStatus `gorm:"column:dispatch_status;type:text;not null;default:'skipped'"`
	TotalPrice         decimal.Decimal      `gorm:"column:total_price;type:numeric(12,2);not null"`
	ClientTotal        *decimal.Decimal     `gorm:"column:client_total;type:numeric(12,2)"`
	PriceMatched       *bool                `gorm:"column:price_matched"`
	CustomerName       *string              `gorm:"column:customer_name"`
	CustomerPhone      *string              `gorm:"column:customer_phone"`
	CustomerEmail      *string              `gorm:"column:customer_email"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// QuoteLog is the append-only record of interactive quote computations. Its
// write path is fire-and-forget; a failed insert never fails a quote.
type QuoteLog struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  int64            `gorm:"column:product_id;not null;index"`
	Selections types.Selections `gorm:"column:selections;type:jsonb;serializer:json;not null"`
	Result     json.RawMessage  `gorm:"column:result;type:jsonb;not null"`
	IsValid    bool             `gorm:"column:is_valid;not null"`
	TotalPrice decimal.Decimal  `gorm:"column:total_price;type:numeric(12,2);not null"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
}
