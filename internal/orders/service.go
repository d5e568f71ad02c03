package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skeeper75/widget.creator-sub002/internal/quotes"
	dbpkg "github.com/skeeper75/widget.creator-sub002/pkg/db"
	"github.com/skeeper75/widget.creator-sub002/pkg/db/models"
	"github.com/skeeper75/widget.creator-sub002/pkg/enums"
	pkgerrors "github.com/skeeper75/widget.creator-sub002/pkg/errors"
	"github.com/skeeper75/widget.creator-sub002/pkg/logger"
	"github.com/skeeper75/widget.creator-sub002/pkg/metrics"
	"github.com/skeeper75/widget.creator-sub002/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Dispatcher hands a confirmed order to the production system. Implementations
// must be safe to call from a detached goroutine.
type Dispatcher interface {
	Dispatch(ctx context.Context, order *models.Order, externalProductionCode string) error
}

// Service confirms orders from live quotes and reads back order snapshots.
type Service interface {
	Confirm(ctx context.Context, input ConfirmOrderInput) (*OrderResponse, error)
	Get(ctx context.Context, orderCode string) (*OrderResponse, error)
	List(ctx context.Context, params ListOrdersParams) (*ListOrdersResult, error)
}

// ServiceParams collects the finalizer's dependencies.
type ServiceParams struct {
	Repo                Repository
	Quotes              quotes.Service
	Tx                  txRunner
	Outbox              outboxPublisher
	Dispatcher          Dispatcher
	Logger              *logger.Logger
	Metrics             *metrics.OrderMetrics
	PriceMatchTolerance float64
	OrderCodeRetries    int
	Now                 func() time.Time
}

type service struct {
	repo       Repository
	quotes     quotes.Service
	tx         txRunner
	outbox     outboxPublisher
	dispatcher Dispatcher
	logg       *logger.Logger
	metrics    *metrics.OrderMetrics
	tolerance  decimal.Decimal
	retries    int
	now        func() time.Time
}

// OrderCreatedEvent is emitted when an order snapshot is persisted.
type OrderCreatedEvent struct {
	OrderID        uuid.UUID            `json:"order_id"`
	OrderCode      string               `json:"order_code"`
	ProductID      int64                `json:"product_id"`
	RecipeVersion  int                  `json:"recipe_version"`
	TotalPrice     decimal.Decimal      `json:"total_price"`
	DispatchStatus enums.DispatchStatus `json:"dispatch_status"`
}

// DispatchResultEvent is emitted after a production dispatch attempt.
type DispatchResultEvent struct {
	OrderID   uuid.UUID `json:"order_id"`
	OrderCode string    `json:"order_code"`
	Error     string    `json:"error,omitempty"`
}

// NewService builds the order finalizer.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Quotes == nil {
		return nil, fmt.Errorf("quote service required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	retries := params.OrderCodeRetries
	if retries <= 0 {
		retries = 3
	}
	tolerance := params.PriceMatchTolerance
	if tolerance <= 0 {
		tolerance = 1
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:       params.Repo,
		quotes:     params.Quotes,
		tx:         params.Tx,
		outbox:     params.Outbox,
		dispatcher: params.Dispatcher,
		logg:       params.Logger,
		metrics:    params.Metrics,
		tolerance:  decimal.NewFromFloat(tolerance),
		retries:    retries,
		now:        now,
	}, nil
}

// Confirm recomputes the quote server-side and persists the order snapshot.
// The client never supplies a price; its total is only compared against the
// recomputed one.
func (s *service) Confirm(ctx context.Context, input ConfirmOrderInput) (*OrderResponse, error) {
	computation, err := s.quotes.Compute(ctx, quotes.QuoteInput{
		ProductID:  input.ProductID,
		Selections: input.Selections,
	})
	if err != nil {
		return nil, err
	}

	if len(computation.Result.Violations) > 0 {
		if s.metrics != nil {
			s.metrics.IncRejected()
		}
		return nil, pkgerrors.New(pkgerrors.CodeConstraintViolation, "selection violates product constraints").
			WithDetails(computation.Result.Violations)
	}

	total := computation.Result.Pricing.Breakdown.TotalPrice
	priceMatched := s.checkClientTotal(ctx, input.ClientTotal, total)

	breakdown, err := json.Marshal(computation.Result.Pricing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode price breakdown")
	}
	var addonItems json.RawMessage
	if len(computation.Result.Addons) > 0 {
		addonItems, err = json.Marshal(computation.Result.Addons)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode addon items")
		}
	}

	dispatchStatus := enums.DispatchStatusSkipped
	if computation.Product.ExternalProductionCode != nil && *computation.Product.ExternalProductionCode != "" {
		dispatchStatus = enums.DispatchStatusPending
	}

	order := &models.Order{
		ProductID:          computation.Product.ID,
		RecipeID:           computation.Recipe.ID,
		RecipeVersion:      computation.Recipe.Version,
		Selections:         input.Selections,
		PriceBreakdown:     breakdown,
		AppliedConstraints: computation.AppliedConstraints,
		AddonItems:         addonItems,
		Status:             enums.OrderStatusConfirmed,
		DispatchStatus:     dispatchStatus,
		TotalPrice:         total,
		ClientTotal:        input.ClientTotal,
		PriceMatched:       priceMatched,
	}
	if input.Customer != nil {
		order.CustomerName = input.Customer.Name
		order.CustomerPhone = input.Customer.Phone
		order.CustomerEmail = input.Customer.Email
	}

	if err := s.persistWithCode(ctx, order); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncConfirmed()
	}

	if dispatchStatus == enums.DispatchStatusPending {
		s.dispatchAsync(ctx, order, *computation.Product.ExternalProductionCode)
	}

	response := toResponse(order)
	return &response, nil
}

// checkClientTotal compares the client-displayed total against the recomputed
// one. A mismatch beyond tolerance only warns; it never blocks the order.
func (s *service) checkClientTotal(ctx context.Context, clientTotal *decimal.Decimal, serverTotal decimal.Decimal) *bool {
	if clientTotal == nil {
		return nil
	}
	matched := serverTotal.Sub(*clientTotal).Abs().LessThan(s.tolerance)
	if !matched && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"client_total": clientTotal.String(),
			"server_total": serverTotal.String(),
		})
		s.logg.Warn(logCtx, "client total does not match recomputed quote")
	}
	if s.metrics != nil {
		s.metrics.ObservePriceMatch(matched)
	}
	return &matched
}

// persistWithCode assigns the next daily order code and inserts the snapshot,
// retrying on code collisions. The unique index on order_code is the real
// arbiter under concurrency.
func (s *service) persistWithCode(ctx context.Context, order *models.Order) error {
	day := s.now().UTC()
	prefix := dayPrefix(day)

	var lastErr error
	for attempt := 0; attempt < s.retries; attempt++ {
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			lastCode, err := repo.LastCodeWithPrefix(ctx, prefix)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read last order code")
			}
			order.ID = uuid.Nil
			order.OrderCode = codeForDate(day, sequenceFromCode(lastCode)+1)

			if err := repo.Create(ctx, order); err != nil {
				return err
			}

			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderCreated,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Version:       1,
				Source:        "api",
				Data: OrderCreatedEvent{
					OrderID:        order.ID,
					OrderCode:      order.OrderCode,
					ProductID:      order.ProductID,
					RecipeVersion:  order.RecipeVersion,
					TotalPrice:     order.TotalPrice,
					DispatchStatus: order.DispatchStatus,
				},
			})
		})
		if err == nil {
			return nil
		}
		if !dbpkg.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}
		lastErr = err
	}
	return pkgerrors.Wrap(pkgerrors.CodeConflict, lastErr, "order code allocation kept colliding")
}

// dispatchAsync hands the order to production on a detached goroutine. The
// outcome only updates dispatch_status; it never affects the response.
func (s *service) dispatchAsync(ctx context.Context, order *models.Order, externalCode string) {
	if s.dispatcher == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	snapshot := *order
	go func() {
		defer func() {
			if r := recover(); r != nil && s.logg != nil {
				s.logg.Error(detached, "production dispatch panic", fmt.Errorf("panic: %v", r))
			}
		}()

		err := s.dispatcher.Dispatch(detached, &snapshot, externalCode)
		status := enums.DispatchStatusSent
		eventType := enums.EventOrderDispatched
		if err != nil {
			status = enums.DispatchStatusFailed
			eventType = enums.EventDispatchFailed
			if s.logg != nil {
				s.logg.Error(s.logg.WithOrderCode(detached, snapshot.OrderCode), "production dispatch failed", err)
			}
		}

		txErr := s.tx.WithTx(detached, func(tx *gorm.DB) error {
			if err := s.repo.WithTx(tx).UpdateDispatchStatus(detached, snapshot.ID, status); err != nil {
				return err
			}
			event := DispatchResultEvent{OrderID: snapshot.ID, OrderCode: snapshot.OrderCode}
			if err != nil {
				event.Error = err.Error()
			}
			return s.outbox.Emit(detached, tx, outbox.DomainEvent{
				EventType:     eventType,
				AggregateType: enums.AggregateDispatch,
				AggregateID:   snapshot.ID,
				Version:       1,
				Source:        "dispatch",
				Data:          event,
			})
		})
		if txErr != nil && s.logg != nil {
			s.logg.Error(detached, "record dispatch result", txErr)
		}
	}()
}

func (s *service) Get(ctx context.Context, orderCode string) (*OrderResponse, error) {
	if orderCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order code required")
	}
	order, err := s.repo.FindByCode(ctx, orderCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	response := toResponse(order)
	return &response, nil
}

func (s *service) List(ctx context.Context, params ListOrdersParams) (*ListOrdersResult, error) {
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status filter")
	}
	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	items := make([]OrderResponse, 0, len(rows))
	for i := range rows {
		items = append(items, toResponse(&rows[i]))
	}
	return &ListOrdersResult{Items: items, Total: total}, nil
}
