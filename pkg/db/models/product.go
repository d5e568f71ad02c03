package models

import (
	"time"
)

// Product is the catalog entry customers configure and order.
type Product struct {
	ID                     int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Code                   string     `gorm:"column:code;not null"`
	Name                   string     `gorm:"column:name;not null"`
	Description            *string    `gorm:"column:description"`
	IsActive               bool       `gorm:"column:is_active;not null;default:true"`
	ExternalProductionCode *string    `gorm:"column:external_production_code"`
	Recipes                []Recipe   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt              time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	ArchivedAt             *time.Time `gorm:"column:archived_at"`
}

// Recipe pins the option layout and constraint set a product is quoted
// against. Orders record the recipe id and version they were computed with so
// later catalog edits never alter historical orders.
type Recipe struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID  int64      `gorm:"column:product_id;not null;index"`
	Name       string     `gorm:"column:name;not null"`
	Version    int        `gorm:"column:version;not null;default:1"`
	IsDefault  bool       `gorm:"column:is_default;not null;default:false"`
	ArchivedAt *time.Time `gorm:"column:archived_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
