package setting

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/tillpos/internal/database"
	"github.com/Additional-Code/tillpos/internal/entity"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.NewCreateTable().Model((*entity.ShopSetting)(nil)).Exec(context.Background())
	require.NoError(t, err)

	return NewRepository(&database.Connections{Writer: db, Reader: db})
}

func TestInsertOnlyOnce(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	defaults := entity.DefaultShopSetting(now)
	created, err := repo.Insert(ctx, &defaults)
	require.NoError(t, err)
	assert.True(t, created)

	again := entity.DefaultShopSetting(now)
	again.ShopName = "Second Writer"
	created, err = repo.Insert(ctx, &again)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "My POS Shop", got.ShopName)
}

func TestUpsertLastWriterWins(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	first := entity.DefaultShopSetting(now)
	first.ShopName = "Cafe Colombo"
	require.NoError(t, repo.Upsert(ctx, &first))

	second := entity.DefaultShopSetting(now.Add(time.Hour))
	second.ShopName = "Cafe Kandy"
	second.TaxRate = decimal.RequireFromString("8")
	require.NoError(t, repo.Upsert(ctx, &second))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Cafe Kandy", got.ShopName)
	assert.True(t, decimal.NewFromInt(8).Equal(got.TaxRate))
}
