package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skeeper75/widget.creator-sub002/pkg/db/models"
	"github.com/skeeper75/widget.creator-sub002/pkg/enums"
	"github.com/skeeper75/widget.creator-sub002/pkg/types"
)

// CustomerInfo is the optional contact block captured at confirmation.
type CustomerInfo struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

// ConfirmOrderInput carries everything the finalizer needs for one order.
type ConfirmOrderInput struct {
	ProductID   int64            `json:"product_id" validate:"required,gt=0"`
	Selections  types.Selections `json:"selections" validate:"required"`
	ClientTotal *decimal.Decimal `json:"client_total,omitempty"`
	Customer    *CustomerInfo    `json:"customer,omitempty"`
}

// OrderResponse is the client-facing order representation.
type OrderResponse struct {
	OrderCode          string               `json:"order_code"`
	Status             enums.OrderStatus    `json:"status"`
	DispatchStatus     enums.DispatchStatus `json:"dispatch_status"`
	ProductID          int64                `json:"product_id"`
	RecipeVersion      int                  `json:"recipe_version"`
	Selections         types.Selections     `json:"selections"`
	PriceBreakdown     json.RawMessage      `json:"price_breakdown"`
	AppliedConstraints []string             `json:"applied_constraints"`
	AddonItems         json.RawMessage      `json:"addon_items,omitempty"`
	TotalPrice         decimal.Decimal      `json:"total_price"`
	PriceMatched       *bool                `json:"price_matched,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
}

// ListOrdersParams filters the order listing.
type ListOrdersParams struct {
	Status *enums.OrderStatus
	Limit  int
	Offset int
}

// ListOrdersResult is one page of orders plus the total match count.
type ListOrdersResult struct {
	Items []OrderResponse `json:"items"`
	Total int64           `json:"total"`
}

func toResponse(order *models.Order) OrderResponse {
	return OrderResponse{
		OrderCode:          order.OrderCode,
		Status:             order.Status,
		DispatchStatus:     order.DispatchStatus,
		ProductID:          order.ProductID,
		RecipeVersion:      order.RecipeVersion,
		Selections:         order.Selections,
		PriceBreakdown:     order.PriceBreakdown,
		AppliedConstraints: order.AppliedConstraints,
		AddonItems:         order.AddonItems,
		TotalPrice:         order.TotalPrice,
		PriceMatched:       order.PriceMatched,
		CreatedAt:          order.CreatedAt,
	}
}
