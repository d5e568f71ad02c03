package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/skeeper75/widget.creator-sub002/pkg/db/models"
)

// Repository exposes the read-only catalog lookups the quote pipeline
// consumes. All methods return gorm.ErrRecordNotFound untranslated; the
// service layer decides which misses are terminal.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActiveProduct(ctx context.Context, id int64) (*models.Product, error)
	FindDefaultRecipe(ctx context.Context, productID int64) (*models.Recipe, error)
	FindActivePriceConfig(ctx context.Context, productID int64) (*models.PriceConfig, error)
	FindActiveConstraints(ctx context.Context, recipeID int64) ([]models.ConstraintRule, error)
	FindAddonItem(ctx context.Context, groupID, itemID int64) (*models.AddonItem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindActiveProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ? AND archived_at IS NULL", id, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindDefaultRecipe(ctx context.Context, productID int64) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_default = ? AND archived_at IS NULL", productID, true).
		Order("version DESC").
		First(&recipe).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *repository) FindActivePriceConfig(ctx context.Context, productID int64) (*models.PriceConfig, error) {
	var config models.PriceConfig
	err := r.db.WithContext(ctx).
		Preload("PrintCosts").
		Preload("PostprocessCosts").
		Preload("DiscountTiers").
		Where("product_id = ? AND is_active = ?", productID, true).
		First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *repository) FindActiveConstraints(ctx context.Context, recipeID int64) ([]models.ConstraintRule, error) {
	var rules []models.ConstraintRule
	err := r.db.WithContext(ctx).
		Where("recipe_id = ? AND is_active = ?", recipeID, true).
		Order("priority DESC, id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repository) FindAddonItem(ctx context.Context, groupID, itemID int64) (*models.AddonItem, error) {
	var item models.AddonItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND group_id = ? AND is_active = ?", itemID, groupID, true).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}
