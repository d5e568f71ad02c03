package quotes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skeeper75/widget.creator-sub002/internal/repo"
	"github.com/skeeper75/widget.creator-sub002/pkg/db/models"
)

// LogRepository persists the append-only quote log.
type LogRepository interface {
	Append(ctx context.Context, row *models.QuoteLog) error
	ListRecent(ctx context.Context, productID int64, limit int) ([]models.QuoteLog, error)
}

type logRepository struct {
	repo.Base
}

// NewLogRepository builds a LogRepository backed by the provided connection.
func NewLogRepository(db *gorm.DB) LogRepository {
	return &logRepository{Base: repo.NewBase(db)}
}

func (r *logRepository) Append(ctx context.Context, row *models.QuoteLog) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.DB(ctx).Create(row).Error
}

func (r *logRepository) ListRecent(ctx context.Context, productID int64, limit int) ([]models.QuoteLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.QuoteLog
	err := r.DB(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
