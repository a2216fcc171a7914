package dto

import (
	"time"

	"github.com/Additional-Code/tillpos/internal/entity"
)

// MemberRequest registers or updates a loyalty member.
type MemberRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

// CheckMemberRequest looks a member up by phone.
type CheckMemberRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// MemberResponse represents a loyalty member.
type MemberResponse struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joinedAt"`
}

// CheckMemberResponse reports whether a phone belongs to a member.
type CheckMemberResponse struct {
	Found  bool            `json:"found"`
	Member *MemberResponse `json:"member,omitempty"`
}

func NewMemberResponse(m *entity.LoyaltyMember) MemberResponse {
	return MemberResponse{
		ID:       m.ID,
		Name:     m.Name,
		Phone:    m.Phone,
		Email:    m.Email,
		JoinedAt: m.JoinedAt.UTC(),
	}
}

func NewMemberListResponse(members []entity.LoyaltyMember) []MemberResponse {
	out := make([]MemberResponse, 0, len(members))
	for i := range members {
		out = append(out, NewMemberResponse(&members[i]))
	}
	return out
}
