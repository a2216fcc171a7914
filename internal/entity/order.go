package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// PaymentMethod identifies how a sale was settled.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "Cash"
	PaymentCard PaymentMethod = "Card"
)

// Valid reports whether the method is one the till accepts.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard
}

// Order is a settled sale. Rows are inserted once and only ever deleted.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID              int64               `bun:",pk,autoincrement" json:"id"`
	InvoiceNo       string              `bun:"invoice_no,notnull,unique" json:"invoice_no"`
	SubTotal        decimal.Decimal     `bun:"sub_total,type:decimal(12,2),notnull" json:"sub_total"`
	LoyaltyDiscount decimal.Decimal     `bun:"loyalty_discount,type:decimal(12,2),notnull" json:"loyalty_discount"`
	ManagerPercent  decimal.Decimal     `bun:"manager_percent,type:decimal(5,2),notnull" json:"manager_percent"`
	ManagerDiscount decimal.Decimal     `bun:"manager_discount,type:decimal(12,2),notnull" json:"manager_discount"`
	Discount        decimal.Decimal     `bun:"discount,type:decimal(12,2),notnull" json:"discount"`
	GrandTotal      decimal.Decimal     `bun:"grand_total,type:decimal(12,2),notnull" json:"grand_total"`
	PaymentMethod   PaymentMethod       `bun:"payment_method,notnull" json:"payment_method"`
	Tendered        decimal.NullDecimal `bun:"tendered,type:decimal(12,2)" json:"tendered"`
	ChangeDue       decimal.NullDecimal `bun:"change_due,type:decimal(12,2)" json:"change_due"`
	CustomerID      *int64              `bun:"customer_id" json:"customer_id,omitempty"`
	Customer        *LoyaltyMember      `bun:"rel:belongs-to,join:customer_id=id" json:"customer,omitempty"`
	Staff           string              `bun:"staff,notnull" json:"staff"`
	SettledAt       time.Time           `bun:"settled_at,notnull" json:"settled_at"`
	Items           []OrderItem         `bun:"rel:has-many,join:id=order_id" json:"items"`
}

// OrderItem is one cart line, kept in the order it was rung up.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID        int64           `bun:",pk,autoincrement" json:"-"`
	OrderID   int64           `bun:"order_id,notnull" json:"-"`
	LineNo    int             `bun:"line_no,notnull" json:"-"`
	Name      string          `bun:"name,notnull" json:"name"`
	UnitPrice decimal.Decimal `bun:"unit_price,type:decimal(12,2),notnull" json:"unit_price"`
	Qty       int             `bun:"qty,notnull" json:"qty"`
}

// LineTotal is unit price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// CustomerRef resolves the order's customer link. The second value is false
// when the sale was not linked to a member.
func (o *Order) CustomerRef() (CustomerRef, bool) {
	if o == nil || o.CustomerID == nil {
		return CustomerRef{}, false
	}
	if o.Customer != nil && o.Customer.ID == *o.CustomerID {
		return ResolvedCustomer(MemberSummary{ID: o.Customer.ID, Name: o.Customer.Name}), true
	}
	// weak reference: the member may have been deleted since
	return UnresolvedCustomer(*o.CustomerID), true
}
