package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddonGroup clusters optional extras a rule can surface or auto-add.
type AddonGroup struct {
	ID        int64       `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string      `gorm:"column:name;not null"`
	Items     []AddonItem `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
}

// AddonItem is one purchasable extra within a group.
type AddonItem struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	GroupID   int64           `gorm:"column:group_id;not null;index"`
	Name      string          `gorm:"column:name;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null;default:0"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
