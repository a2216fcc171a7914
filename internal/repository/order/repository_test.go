package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/Additional-Code/tillpos/internal/config"
	"github.com/Additional-Code/tillpos/internal/database"
	"github.com/Additional-Code/tillpos/internal/entity"
)

func newTestRepository(t *testing.T, loc *time.Location) (*Repository, *bun.DB) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for _, model := range []any{(*entity.Order)(nil), (*entity.OrderItem)(nil), (*entity.LoyaltyMember)(nil)} {
		_, err := db.NewCreateTable().Model(model).Exec(ctx)
		require.NoError(t, err)
	}

	cfg := config.Config{Sales: config.Sales{Location: loc, InvoicePrefix: "INV-", InvoiceAttempts: 3}}
	return NewRepository(&database.Connections{Writer: db, Reader: db}, cfg), db
}

func sequence(values ...int) func() int {
	i := 0
	return func() int {
		v := values[i%len(values)]
		i++
		return v
	}
}

func newOrder(settledAt time.Time, items ...entity.OrderItem) *entity.Order {
	sub := decimal.Zero
	for _, it := range items {
		sub = sub.Add(it.LineTotal())
	}
	return &entity.Order{
		SubTotal:      sub,
		GrandTotal:    sub,
		PaymentMethod: entity.PaymentCard,
		Staff:         "Kasun",
		SettledAt:     settledAt.UTC(),
		Items:         items,
	}
}

func item(name, price string, qty int) entity.OrderItem {
	return entity.OrderItem{Name: name, UnitPrice: decimal.RequireFromString(price), Qty: qty}
}

func TestCreate_PersistsOrderAndItemsInCartOrder(t *testing.T) {
	repo, _ := newTestRepository(t, time.UTC)
	repo.digits = sequence(482913)
	ctx := context.Background()

	o := newOrder(time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC),
		item("Rice & Curry", "100", 2),
		item("Iced Coffee", "50", 1),
	)
	require.NoError(t, repo.Create(ctx, o))
	assert.NotZero(t, o.ID)
	assert.Equal(t, "INV-482913", o.InvoiceNo)

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Rice & Curry", got.Items[0].Name)
	assert.Equal(t, "Iced Coffee", got.Items[1].Name)
	assert.True(t, decimal.NewFromInt(250).Equal(got.SubTotal))
	assert.False(t, got.Tendered.Valid)
	_, linked := got.CustomerRef()
	assert.False(t, linked)
}

func TestCreate_RegeneratesTakenInvoiceNumber(t *testing.T) {
	repo, _ := newTestRepository(t, time.UTC)
	ctx := context.Background()
	at := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

	repo.digits = sequence(111111)
	first := newOrder(at, item("Tea", "20", 1))
	require.NoError(t, repo.Create(ctx, first))

	repo.digits = sequence(111111, 111111, 222222)
	second := newOrder(at, item("Tea", "20", 1))
	require.NoError(t, repo.Create(ctx, second))
	assert.Equal(t, "INV-222222", second.InvoiceNo)
}

func TestCreate_GivesUpAfterConfiguredAttempts(t *testing.T) {
	repo, db := newTestRepository(t, time.UTC)
	ctx := context.Background()
	at := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

	repo.digits = sequence(333333)
	require.NoError(t, repo.Create(ctx, newOrder(at, item("Tea", "20", 1))))

	err := repo.Create(ctx, newOrder(at, item("Tea", "20", 1)))
	assert.ErrorIs(t, err, ErrInvoiceExhausted)

	count, err := db.NewSelect().Model((*entity.Order)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestList_EndDateCoversWholeDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Colombo")
	require.NoError(t, err)
	repo, _ := newTestRepository(t, loc)
	repo.digits = sequence(100001, 100002, 100003, 100004)
	ctx := context.Background()

	times := []time.Time{
		time.Date(2024, 3, 9, 23, 59, 59, 0, loc),
		time.Date(2024, 3, 10, 0, 0, 0, 0, loc),
		time.Date(2024, 3, 10, 23, 59, 59, 0, loc),
		time.Date(2024, 3, 11, 0, 0, 0, 0, loc),
	}
	for _, at := range times {
		require.NoError(t, repo.Create(ctx, newOrder(at, item("Tea", "20", 1))))
	}

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)
	orders, err := repo.List(ctx, Range{From: &day, To: &day})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.True(t, times[2].Equal(orders[0].SettledAt), "newest first")
	assert.True(t, times[1].Equal(orders[1].SettledAt))

	all, err := repo.List(ctx, Range{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	upTo, err := repo.List(ctx, Range{To: &day})
	require.NoError(t, err)
	assert.Len(t, upTo, 3)
}

func TestList_ResolvesCustomerOnRead(t *testing.T) {
	repo, db := newTestRepository(t, time.UTC)
	repo.digits = sequence(700001, 700002)
	ctx := context.Background()

	member := &entity.LoyaltyMember{Name: "Nimal", Phone: "0771234567", JoinedAt: time.Now().UTC()}
	_, err := db.NewInsert().Model(member).Exec(ctx)
	require.NoError(t, err)

	linked := newOrder(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), item("Tea", "20", 1))
	linked.CustomerID = &member.ID
	require.NoError(t, repo.Create(ctx, linked))

	gone := int64(999)
	orphan := newOrder(time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC), item("Tea", "20", 1))
	orphan.CustomerID = &gone
	require.NoError(t, repo.Create(ctx, orphan))

	orders, err := repo.List(ctx, Range{})
	require.NoError(t, err)
	require.Len(t, orders, 2)

	ref, ok := orders[0].CustomerRef()
	require.True(t, ok)
	summary, resolved := ref.Resolved()
	require.True(t, resolved)
	assert.Equal(t, "Nimal", summary.Name)

	ref, ok = orders[1].CustomerRef()
	require.True(t, ok)
	_, resolved = ref.Resolved()
	assert.False(t, resolved)
	assert.Equal(t, int64(999), ref.ID())
}

func TestDelete(t *testing.T) {
	repo, db := newTestRepository(t, time.UTC)
	repo.digits = sequence(555555)
	ctx := context.Background()

	o := newOrder(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), item("Tea", "20", 2))
	require.NoError(t, repo.Create(ctx, o))

	require.NoError(t, repo.Delete(ctx, o.ID))

	_, err := repo.GetByID(ctx, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	items, err := db.NewSelect().Model((*entity.OrderItem)(nil)).Where("order_id = ?", o.ID).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, items)

	assert.ErrorIs(t, repo.Delete(ctx, o.ID), ErrNotFound)
}
