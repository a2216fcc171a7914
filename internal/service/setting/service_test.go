package setting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/tillpos/internal/cache"
	"github.com/Additional-Code/tillpos/internal/config"
	"github.com/Additional-Code/tillpos/internal/entity"
	repo "github.com/Additional-Code/tillpos/internal/repository/setting"
	"github.com/Additional-Code/tillpos/pkg/errorbank"
)

type rowStore struct {
	row     *entity.ShopSetting
	inserts int
	getErr  error
}

func (r *rowStore) Get(context.Context) (*entity.ShopSetting, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.row == nil {
		return nil, repo.ErrNotFound
	}
	cp := *r.row
	return &cp, nil
}

func (r *rowStore) Insert(_ context.Context, s *entity.ShopSetting) (bool, error) {
	if r.row != nil {
		return false, nil
	}
	r.inserts++
	cp := *s
	r.row = &cp
	return true, nil
}

func (r *rowStore) Upsert(_ context.Context, s *entity.ShopSetting) error {
	cp := *s
	r.row = &cp
	return nil
}

func newTestService(store Store) *Service {
	svc := NewService(store, cache.Noop(), config.Config{}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestCurrent_CreatesDefaultsOnce(t *testing.T) {
	store := &rowStore{}
	svc := newTestService(store)
	ctx := context.Background()

	first, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "My POS Shop", first.ShopName)
	assert.Equal(t, "No 123, City, Country", first.Address)
	assert.Equal(t, "011-0000000", first.Phone)
	assert.Equal(t, "contact@shop.com", first.Email)
	assert.Equal(t, "Rs.", first.Currency)
	assert.True(t, first.TaxRate.IsZero())
	assert.Equal(t, "Thank you come again!", first.FooterMessage)

	_, err = svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.inserts)
}

func TestCurrent_StoreFailure(t *testing.T) {
	svc := newTestService(&rowStore{getErr: errors.New("disk I/O error")})

	_, err := svc.Current(context.Background())
	require.Error(t, err)
	assert.Equal(t, errorbank.KindPersistence, errorbank.From(err).Kind())
	assert.NotContains(t, errorbank.From(err).Message(), "disk")
}

func TestUpdate(t *testing.T) {
	store := &rowStore{}
	svc := newTestService(store)
	ctx := context.Background()

	got, err := svc.Update(ctx, Input{ShopName: " Cafe Kandy ", Currency: "LKR", TaxRate: decimal.NewFromInt(8)})
	require.NoError(t, err)
	assert.Equal(t, "Cafe Kandy", got.ShopName)

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Cafe Kandy", current.ShopName)
	assert.Zero(t, store.inserts)

	_, err = svc.Update(ctx, Input{ShopName: "x", Currency: "LKR", TaxRate: decimal.NewFromInt(101)})
	assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))

	_, err = svc.Update(ctx, Input{Currency: "LKR"})
	assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))
}
