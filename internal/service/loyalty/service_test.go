package loyalty

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/tillpos/internal/cache"
	"github.com/Additional-Code/tillpos/internal/config"
	"github.com/Additional-Code/tillpos/internal/entity"
	repo "github.com/Additional-Code/tillpos/internal/repository/loyalty"
	"github.com/Additional-Code/tillpos/pkg/errorbank"
)

type memStore struct {
	members map[int64]*entity.LoyaltyMember
	nextID  int64
}

func newMemStore() *memStore {
	return &memStore{members: map[int64]*entity.LoyaltyMember{}}
}

func (m *memStore) phoneTaken(phone string, except int64) bool {
	for id, existing := range m.members {
		if id != except && existing.Phone == phone {
			return true
		}
	}
	return false
}

func (m *memStore) Create(_ context.Context, member *entity.LoyaltyMember) error {
	if m.phoneTaken(member.Phone, 0) {
		return repo.ErrDuplicatePhone
	}
	m.nextID++
	member.ID = m.nextID
	cp := *member
	m.members[member.ID] = &cp
	return nil
}

func (m *memStore) FindByPhone(_ context.Context, phone string) (*entity.LoyaltyMember, error) {
	for _, member := range m.members {
		if member.Phone == phone {
			cp := *member
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memStore) GetByID(_ context.Context, id int64) (*entity.LoyaltyMember, error) {
	member, ok := m.members[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *member
	return &cp, nil
}

func (m *memStore) List(context.Context) ([]entity.LoyaltyMember, error) {
	out := make([]entity.LoyaltyMember, 0, len(m.members))
	for _, member := range m.members {
		out = append(out, *member)
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, member *entity.LoyaltyMember) error {
	if _, ok := m.members[member.ID]; !ok {
		return repo.ErrNotFound
	}
	if m.phoneTaken(member.Phone, member.ID) {
		return repo.ErrDuplicatePhone
	}
	cp := *member
	m.members[member.ID] = &cp
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.members[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.members, id)
	return nil
}

type mapCache map[string][]byte

func (c mapCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (c mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c[key] = value
	return nil
}

func (c mapCache) Delete(_ context.Context, key string) error {
	delete(c, key)
	return nil
}

func newTestService() (*Service, *memStore, mapCache) {
	store := newMemStore()
	c := mapCache{}
	svc := NewService(store, c, config.Config{}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc, store, c
}

func TestRegisterAndCheck(t *testing.T) {
	svc, _, c := newTestService()
	ctx := context.Background()

	member, err := svc.Register(ctx, Input{Name: " Nimal ", Phone: "077 123 4567", Email: "nimal@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Nimal", member.Name)
	assert.Equal(t, "0771234567", member.Phone)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), member.JoinedAt)

	found, ok, err := svc.Check(ctx, "0771234567")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, member.ID, found.ID)
	assert.Contains(t, c, "loyalty:phone:0771234567")

	_, ok, err = svc.Check(ctx, "0700000000")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = svc.Check(ctx, "  ")
	assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))
}

func TestRegister_DuplicatePhoneConflicts(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, Input{Name: "A", Phone: "0711111111"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, Input{Name: "B", Phone: "0711111111"})
	assert.True(t, errorbank.IsKind(err, errorbank.KindConflict))

	_, err = svc.Register(ctx, Input{Phone: "0722222222"})
	assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))
}

func TestUpdateEvictsCachedPhone(t *testing.T) {
	svc, _, c := newTestService()
	ctx := context.Background()

	member, err := svc.Register(ctx, Input{Name: "A", Phone: "0711111111"})
	require.NoError(t, err)
	_, _, err = svc.Check(ctx, "0711111111")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, member.ID, Input{Name: "A", Phone: "0799999999"})
	require.NoError(t, err)
	assert.Equal(t, "0799999999", updated.Phone)
	assert.NotContains(t, c, "loyalty:phone:0711111111")

	_, ok, err := svc.Check(ctx, "0711111111")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Update(ctx, 404, Input{Name: "x", Phone: "1"})
	assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
}

func TestDelete(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	member, err := svc.Register(ctx, Input{Name: "A", Phone: "0711111111"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, member.ID))
	assert.Empty(t, store.members)
	assert.True(t, errorbank.IsKind(svc.Delete(ctx, member.ID), errorbank.KindNotFound))
}
