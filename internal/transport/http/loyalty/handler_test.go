package loyalty

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/tillpos/internal/auth"
	"github.com/Additional-Code/tillpos/internal/dto"
	"github.com/Additional-Code/tillpos/internal/entity"
	service "github.com/Additional-Code/tillpos/internal/service/loyalty"
	"github.com/Additional-Code/tillpos/internal/transport/http/transporttest"
	"github.com/Additional-Code/tillpos/pkg/errorbank"
)

type memService struct {
	members map[int64]*entity.LoyaltyMember
	nextID  int64
}

func newMemService() *memService {
	return &memService{members: map[int64]*entity.LoyaltyMember{}, nextID: 1}
}

func (m *memService) Check(_ context.Context, phone string) (*entity.LoyaltyMember, bool, error) {
	for _, member := range m.members {
		if member.Phone == phone {
			return member, true, nil
		}
	}
	return nil, false, nil
}

func (m *memService) Register(_ context.Context, in service.Input) (*entity.LoyaltyMember, error) {
	if _, found, _ := m.Check(context.Background(), in.Phone); found {
		return nil, errorbank.Conflict("member with this phone already exists")
	}
	member := &entity.LoyaltyMember{
		ID: m.nextID, Name: in.Name, Phone: in.Phone, Email: in.Email,
		JoinedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	m.members[member.ID] = member
	m.nextID++
	return member, nil
}

func (m *memService) List(context.Context) ([]entity.LoyaltyMember, error) {
	out := make([]entity.LoyaltyMember, 0, len(m.members))
	for _, member := range m.members {
		out = append(out, *member)
	}
	return out, nil
}

func (m *memService) Update(_ context.Context, id int64, in service.Input) (*entity.LoyaltyMember, error) {
	member, ok := m.members[id]
	if !ok {
		return nil, errorbank.NotFound("loyalty member not found")
	}
	member.Name, member.Phone, member.Email = in.Name, in.Phone, in.Email
	return member, nil
}

func (m *memService) Delete(_ context.Context, id int64) error {
	if _, ok := m.members[id]; !ok {
		return errorbank.NotFound("loyalty member not found")
	}
	delete(m.members, id)
	return nil
}

func setup(t *testing.T) (*transporttest.Harness, *memService) {
	t.Helper()
	h := transporttest.New(t)
	svc := newMemService()
	Register(h.API, NewHandler(svc))
	return h, svc
}

func TestRegisterThenCheck(t *testing.T) {
	h, _ := setup(t)

	rec := h.Do(http.MethodPost, "/api/loyalty", dto.MemberRequest{Name: "Nimal", Phone: "0771234567"}, auth.RoleUser)
	transporttest.StatusIs(t, http.StatusCreated, rec)

	var member dto.MemberResponse
	transporttest.Decode(t, rec, &member)
	assert.Equal(t, int64(1), member.ID)

	rec = h.Do(http.MethodPost, "/api/loyalty/check", dto.CheckMemberRequest{Phone: "0771234567"}, auth.RoleUser)
	transporttest.StatusIs(t, http.StatusOK, rec)
	var check dto.CheckMemberResponse
	transporttest.Decode(t, rec, &check)
	assert.True(t, check.Found)
	require.NotNil(t, check.Member)
	assert.Equal(t, "Nimal", check.Member.Name)

	rec = h.Do(http.MethodPost, "/api/loyalty/check", dto.CheckMemberRequest{Phone: "0700000000"}, auth.RoleUser)
	transporttest.StatusIs(t, http.StatusOK, rec)
	check = dto.CheckMemberResponse{}
	transporttest.Decode(t, rec, &check)
	assert.False(t, check.Found)
	assert.Nil(t, check.Member)
}

func TestRegister_DuplicateAndInvalid(t *testing.T) {
	h, _ := setup(t)

	body := dto.MemberRequest{Name: "Nimal", Phone: "0771234567"}
	transporttest.StatusIs(t, http.StatusCreated, h.Do(http.MethodPost, "/api/loyalty", body, auth.RoleUser))

	rec := h.Do(http.MethodPost, "/api/loyalty", body, auth.RoleUser)
	transporttest.StatusIs(t, http.StatusConflict, rec)
	assert.Equal(t, "conflict", transporttest.Decode(t, rec, nil).Error.Kind)

	rec = h.Do(http.MethodPost, "/api/loyalty", dto.MemberRequest{Name: "Sunil", Phone: "0712345678", Email: "nope"}, auth.RoleUser)
	transporttest.StatusIs(t, http.StatusBadRequest, rec)
	assert.Equal(t, "email", transporttest.Decode(t, rec, nil).Error.Details["email"])
}

func TestUpdateListDelete(t *testing.T) {
	h, svc := setup(t)
	_, err := svc.Register(context.Background(), service.Input{Name: "Nimal", Phone: "0771234567"})
	require.NoError(t, err)

	rec := h.Do(http.MethodPut, "/api/loyalty/1", dto.MemberRequest{Name: "Nimal Perera", Phone: "0771234567"}, auth.RoleUser)
	transporttest.StatusIs(t, http.StatusOK, rec)
	assert.Equal(t, "Nimal Perera", svc.members[1].Name)

	rec = h.Do(http.MethodPut, "/api/loyalty/9", dto.MemberRequest{Name: "Ghost", Phone: "1"}, auth.RoleUser)
	transporttest.StatusIs(t, http.StatusNotFound, rec)

	rec = h.Do(http.MethodGet, "/api/loyalty", nil, auth.RoleUser)
	transporttest.StatusIs(t, http.StatusOK, rec)
	var members []dto.MemberResponse
	env := transporttest.Decode(t, rec, &members)
	assert.Len(t, members, 1)
	assert.JSONEq(t, "1", string(env.Meta["count"]))

	transporttest.StatusIs(t, http.StatusForbidden, h.Do(http.MethodDelete, "/api/loyalty/1", nil, auth.RoleUser))
	transporttest.StatusIs(t, http.StatusOK, h.Do(http.MethodDelete, "/api/loyalty/1", nil, auth.RoleAdmin))
	transporttest.StatusIs(t, http.StatusNotFound, h.Do(http.MethodDelete, "/api/loyalty/1", nil, auth.RoleAdmin))
}
