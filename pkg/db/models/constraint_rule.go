package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"github.com/skeeper75/widget.creator-sub002/pkg/enums"
)

// ConstraintRule is one IF/THEN directive attached to a recipe. Actions are
// stored as a jsonb array and decoded through the rules package's sum-type
// decoder; unknown action types survive storage and are ignored at
// evaluation time.
type ConstraintRule struct {
	ID               int64                 `gorm:"column:id;primaryKey;autoIncrement"`
	RecipeID         int64                 `gorm:"column:recipe_id;not null;index"`
	Name             string                `gorm:"column:name;not null"`
	TriggerOptionKey string                `gorm:"column:trigger_option_key;not null"`
	TriggerOperator  enums.TriggerOperator `gorm:"column:trigger_operator;type:text;not null"`
	TriggerValues    pq.StringArray        `gorm:"column:trigger_values;type:text[];not null"`
	Actions          json.RawMessage       `gorm:"column:actions;type:jsonb;not null"`
	Priority         int                   `gorm:"column:priority;not null;default:0"`
	IsActive         bool                  `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
