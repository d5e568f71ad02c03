package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/shopspring/decimal"

	"github.com/skeeper75/widget.creator-sub002/pkg/db/models"
	"github.com/skeeper75/widget.creator-sub002/pkg/logger"
	"github.com/skeeper75/widget.creator-sub002/pkg/metrics"
	"github.com/skeeper75/widget.creator-sub002/pkg/types"
)

const publishTimeout = 15 * time.Second

type publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

// ProductionOrder is the message handed to the production system for one
// confirmed order.
type ProductionOrder struct {
	OrderCode              string           `json:"order_code"`
	ExternalProductionCode string           `json:"external_production_code"`
	ProductID              int64            `json:"product_id"`
	RecipeVersion          int              `json:"recipe_version"`
	Selections             types.Selections `json:"selections"`
	AddonItems             json.RawMessage  `json:"addon_items,omitempty"`
	TotalPrice             decimal.Decimal  `json:"total_price"`
	ConfirmedAt            time.Time        `json:"confirmed_at"`
}

// Dispatcher publishes confirmed orders to the production topic.
type Dispatcher struct {
	pub     publisher
	logg    *logger.Logger
	metrics *metrics.DispatchMetrics
}

// NewDispatcher wraps a production topic publisher.
func NewDispatcher(pub *gcppubsub.Publisher, logg *logger.Logger, m *metrics.DispatchMetrics) (*Dispatcher, error) {
	if pub == nil {
		return nil, fmt.Errorf("production publisher required")
	}
	return &Dispatcher{pub: &gcpPublisher{Publisher: pub}, logg: logg, metrics: m}, nil
}

func newDispatcherWithPublisher(pub publisher, logg *logger.Logger, m *metrics.DispatchMetrics) *Dispatcher {
	return &Dispatcher{pub: pub, logg: logg, metrics: m}
}

// Dispatch publishes the order and waits for broker acknowledgement.
func (d *Dispatcher) Dispatch(ctx context.Context, order *models.Order, externalProductionCode string) error {
	if order == nil {
		return errors.New("order required")
	}

	payload, err := json.Marshal(ProductionOrder{
		OrderCode:              order.OrderCode,
		ExternalProductionCode: externalProductionCode,
		ProductID:              order.ProductID,
		RecipeVersion:          order.RecipeVersion,
		Selections:             order.Selections,
		AddonItems:             order.AddonItems,
		TotalPrice:             order.TotalPrice,
		ConfirmedAt:            order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode production order: %w", err)
	}

	msg := &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"order_code":               order.OrderCode,
			"external_production_code": externalProductionCode,
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	result := d.pub.Publish(publishCtx, msg)
	if result == nil {
		d.observe("failed")
		return errors.New("production publisher returned nil result")
	}
	if _, err := result.Get(publishCtx); err != nil {
		d.observe("failed")
		return fmt.Errorf("publish production order: %w", err)
	}

	d.observe("sent")
	if d.logg != nil {
		d.logg.Info(d.logg.WithOrderCode(ctx, order.OrderCode), "order dispatched to production")
	}
	return nil
}

func (d *Dispatcher) observe(status string) {
	if d.metrics != nil {
		d.metrics.IncDispatch(status)
	}
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return p.Publisher.Publish(ctx, msg)
}
