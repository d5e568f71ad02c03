package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skeeper75/widget.creator-sub002/pkg/db/models"
	"github.com/skeeper75/widget.creator-sub002/pkg/enums"
)

// Repository persists and reads order snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByCode(ctx context.Context, orderCode string) (*models.Order, error)
	LastCodeWithPrefix(ctx context.Context, prefix string) (string, error)
	List(ctx context.Context, params ListOrdersParams) ([]models.Order, int64, error)
	UpdateDispatchStatus(ctx context.Context, id uuid.UUID, status enums.DispatchStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an order repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByCode(ctx context.Context, orderCode string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("order_code = ?", orderCode).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// LastCodeWithPrefix returns the highest order code issued with the given
// prefix, or empty when none exists. The numeric suffix widens past four
// digits, so codes sort by length before lexical order ("…-10000" beats
// "…-9999").
func (r *repository) LastCodeWithPrefix(ctx context.Context, prefix string) (string, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Select("order_code").
		Where("order_code LIKE ?", prefix+"%").
		Order("length(order_code) DESC").
		Order("order_code DESC").
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return order.OrderCode, nil
}

func (r *repository) List(ctx context.Context, params ListOrdersParams) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	var rows []models.Order
	err := query.
		Order("created_at DESC").
		Order("order_code DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) UpdateDispatchStatus(ctx context.Context, id uuid.UUID, status enums.DispatchStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("dispatch_status", status).Error
}
