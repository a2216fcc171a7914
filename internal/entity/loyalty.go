package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// LoyaltyMember is a registered customer; phone is the lookup key.
type LoyaltyMember struct {
	bun.BaseModel `bun:"table:loyalty_members,alias:lm"`

	ID       int64     `bun:",pk,autoincrement" json:"id"`
	Name     string    `bun:"name,notnull" json:"name"`
	Phone    string    `bun:"phone,notnull,unique" json:"phone"`
	Email    string    `bun:"email" json:"email"`
	JoinedAt time.Time `bun:"joined_at,notnull" json:"joined_at"`
}
