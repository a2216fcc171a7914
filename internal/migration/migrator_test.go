package migration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/tillpos/internal/config"
	"github.com/Additional-Code/tillpos/internal/database"
	"github.com/Additional-Code/tillpos/internal/entity"
)

func newSQLiteMigrator(t *testing.T) (*Migrator, *database.Connections) {
	t.Helper()
	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	var cfg config.Config
	cfg.Database.Driver = "sqlite"
	conns := &database.Connections{Writer: db, Reader: db}

	m, err := New(cfg, conns, zap.NewNop())
	require.NoError(t, err)
	return m, conns
}

func TestMigrator_UpMatchesModels(t *testing.T) {
	ctx := context.Background()
	m, conns := newSQLiteMigrator(t)

	require.NoError(t, m.Up(ctx))
	version, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// second run is a no-op
	require.NoError(t, m.Up(ctx))

	order := &entity.Order{
		InvoiceNo:     "INV-123456",
		SubTotal:      decimal.RequireFromString("100"),
		GrandTotal:    decimal.RequireFromString("100"),
		PaymentMethod: entity.PaymentCard,
		Staff:         "Kamal",
		SettledAt:     time.Now().UTC(),
	}
	_, err = conns.Writer.NewInsert().Model(order).Exec(ctx)
	require.NoError(t, err)

	item := &entity.OrderItem{OrderID: order.ID, LineNo: 1, Name: "Tea", UnitPrice: decimal.RequireFromString("100"), Qty: 1}
	_, err = conns.Writer.NewInsert().Model(item).Exec(ctx)
	require.NoError(t, err)

	setting := entity.DefaultShopSetting(time.Now().UTC())
	_, err = conns.Writer.NewInsert().Model(&setting).Exec(ctx)
	require.NoError(t, err)

	member := &entity.LoyaltyMember{Name: "Nimal", Phone: "0771234567", JoinedAt: time.Now().UTC()}
	_, err = conns.Writer.NewInsert().Model(member).Exec(ctx)
	require.NoError(t, err)

	dup := &entity.Order{InvoiceNo: "INV-123456", PaymentMethod: entity.PaymentCard, Staff: "Kamal", SettledAt: time.Now().UTC()}
	_, err = conns.Writer.NewInsert().Model(dup).Exec(ctx)
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestMigrator_DownAll(t *testing.T) {
	ctx := context.Background()
	m, _ := newSQLiteMigrator(t)

	require.NoError(t, m.Up(ctx))
	require.NoError(t, m.Down(ctx, 0, true))

	version, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
}

func TestGooseDialect(t *testing.T) {
	for driver, want := range map[string]string{"postgres": "postgres", "pg": "postgres", "mysql": "mysql", "sqlite": "sqlite3"} {
		got, err := gooseDialect(driver)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := gooseDialect("oracle")
	require.Error(t, err)
	assert.Equal(t, "sqlite", migrationsSubdir("sqlite3"))
}
