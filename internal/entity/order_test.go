package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderCustomerRef(t *testing.T) {
	id := int64(7)

	_, ok := (&Order{}).CustomerRef()
	assert.False(t, ok, "walk-in sale has no customer")

	ref, ok := (&Order{CustomerID: &id}).CustomerRef()
	assert.True(t, ok)
	assert.Equal(t, int64(7), ref.ID())
	_, resolved := ref.Resolved()
	assert.False(t, resolved)

	ref, ok = (&Order{CustomerID: &id, Customer: &LoyaltyMember{ID: 7, Name: "Nimal"}}).CustomerRef()
	assert.True(t, ok)
	summary, resolved := ref.Resolved()
	assert.True(t, resolved)
	assert.Equal(t, MemberSummary{ID: 7, Name: "Nimal"}, summary)

	// joined row for a deleted member comes back zeroed
	ref, _ = (&Order{CustomerID: &id, Customer: &LoyaltyMember{}}).CustomerRef()
	_, resolved = ref.Resolved()
	assert.False(t, resolved)
}

func TestLineTotal(t *testing.T) {
	item := OrderItem{Name: "Kottu", UnitPrice: decimal.RequireFromString("12.50"), Qty: 3}
	assert.True(t, decimal.RequireFromString("37.5").Equal(item.LineTotal()))
}

func TestPaymentMethodValid(t *testing.T) {
	assert.True(t, PaymentCash.Valid())
	assert.True(t, PaymentCard.Valid())
	assert.False(t, PaymentMethod("Voucher").Valid())
	assert.False(t, PaymentMethod("").Valid())
}
