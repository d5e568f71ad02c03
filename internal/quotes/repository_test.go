package quotes

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skeeper75/widget.creator-sub002/pkg/db/models"
	"github.com/skeeper75/widget.creator-sub002/pkg/types"
)

func setupQuoteLogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS quote_logs (
  id TEXT PRIMARY KEY,
  product_id INTEGER NOT NULL,
  selections TEXT NOT NULL,
  result TEXT NOT NULL,
  is_valid INTEGER NOT NULL,
  total_price NUMERIC NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)

	return db
}

func TestQuoteLogAppendAndListRecent(t *testing.T) {
	db := setupQuoteLogTestDB(t)
	repo := NewLogRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		row := &models.QuoteLog{
			ProductID:  12,
			Selections: types.Selections{"quantity": types.Number(200)},
			Result:     json.RawMessage(`{"is_valid":true}`),
			IsValid:    true,
			TotalPrice: decimal.NewFromInt(350),
		}
		require.NoError(t, repo.Append(ctx, row))
		assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", row.ID.String())
	}
	require.NoError(t, repo.Append(ctx, &models.QuoteLog{
		ProductID:  99,
		Selections: types.Selections{"quantity": types.Number(50)},
		Result:     json.RawMessage(`{"is_valid":false}`),
		TotalPrice: decimal.Zero,
	}))

	rows, err := repo.ListRecent(ctx, 12, 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, int64(12), row.ProductID)
		qty, ok := row.Selections.Int("quantity")
		require.True(t, ok)
		assert.Equal(t, 200, qty)
	}
}

func TestQuoteLogListRecentHonorsLimit(t *testing.T) {
	db := setupQuoteLogTestDB(t)
	repo := NewLogRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, &models.QuoteLog{
			ProductID:  7,
			Selections: types.Selections{"quantity": types.Number(100)},
			Result:     json.RawMessage(`{}`),
			IsValid:    true,
			TotalPrice: decimal.NewFromInt(100),
		}))
	}

	rows, err := repo.ListRecent(ctx, 7, 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
