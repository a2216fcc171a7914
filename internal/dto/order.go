package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/tillpos/internal/entity"
	"github.com/Additional-Code/tillpos/internal/pricing"
)

func init() {
	// Money goes over the wire as JSON numbers, e.g. 1100.5 not "1100.5".
	decimal.MarshalJSONWithoutQuotes = true
}

// LineRequest is one cart entry.
type LineRequest struct {
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price"`
	Qty   int             `json:"qty" validate:"min=1"`
}

// OverrideRequest asks for a manager discount.
type OverrideRequest struct {
	Percent decimal.NullDecimal `json:"percent"`
	Key     string              `json:"key" validate:"required"`
}

// CartRequest is the body of a quote.
type CartRequest struct {
	Items      []LineRequest    `json:"items" validate:"required,min=1,dive"`
	CustomerID *int64           `json:"customerId" validate:"omitempty,min=1"`
	Override   *OverrideRequest `json:"override" validate:"omitempty"`
}

// SettleRequest is the body of an order settlement.
type SettleRequest struct {
	CartRequest
	PaymentMethod string              `json:"paymentMethod" validate:"required,oneof=Cash Card"`
	Tendered      decimal.NullDecimal `json:"tendered"`
}

// ListOrdersQuery filters the order list by calendar date.
type ListOrdersQuery struct {
	StartDate string `query:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `query:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// OrderItemResponse is one stored line.
type OrderItemResponse struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Qty   int             `json:"qty"`
}

// CustomerResponse identifies the loyalty member linked to an order. Name is
// omitted when the member no longer exists.
type CustomerResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID              int64               `json:"id"`
	InvoiceNo       string              `json:"invoiceNo"`
	Items           []OrderItemResponse `json:"items"`
	SubTotal        decimal.Decimal     `json:"subTotal"`
	LoyaltyDiscount decimal.Decimal     `json:"loyaltyDiscount"`
	ManagerPercent  decimal.Decimal     `json:"managerPercent"`
	ManagerDiscount decimal.Decimal     `json:"managerDiscount"`
	Discount        decimal.Decimal     `json:"discount"`
	GrandTotal      decimal.Decimal     `json:"grandTotal"`
	PaymentMethod   string              `json:"paymentMethod"`
	Tendered        *decimal.Decimal    `json:"tendered"`
	Change          *decimal.Decimal    `json:"change"`
	Customer        *CustomerResponse   `json:"customer"`
	Staff           string              `json:"staff"`
	Date            time.Time           `json:"date"`
}

// QuoteResponse is the priced cart.
type QuoteResponse struct {
	SubTotal        decimal.Decimal   `json:"subTotal"`
	LoyaltyDiscount decimal.Decimal   `json:"loyaltyDiscount"`
	ManagerPercent  decimal.Decimal   `json:"managerPercent"`
	ManagerDiscount decimal.Decimal   `json:"managerDiscount"`
	Discount        decimal.Decimal   `json:"discount"`
	GrandTotal      decimal.Decimal   `json:"grandTotal"`
	Customer        *CustomerResponse `json:"customer"`
}

// NewOrderResponse maps a stored order.
func NewOrderResponse(o *entity.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{Name: it.Name, Price: it.UnitPrice, Qty: it.Qty})
	}

	resp := OrderResponse{
		ID:              o.ID,
		InvoiceNo:       o.InvoiceNo,
		Items:           items,
		SubTotal:        o.SubTotal,
		LoyaltyDiscount: o.LoyaltyDiscount,
		ManagerPercent:  o.ManagerPercent,
		ManagerDiscount: o.ManagerDiscount,
		Discount:        o.Discount,
		GrandTotal:      o.GrandTotal,
		PaymentMethod:   string(o.PaymentMethod),
		Tendered:        nullable(o.Tendered),
		Change:          nullable(o.ChangeDue),
		Staff:           o.Staff,
		Date:            o.SettledAt.UTC(),
	}
	if ref, ok := o.CustomerRef(); ok {
		resp.Customer = &CustomerResponse{ID: ref.ID()}
		if summary, resolved := ref.Resolved(); resolved {
			resp.Customer.Name = summary.Name
		}
	}
	return resp
}

// NewOrderListResponse maps orders keeping their order.
func NewOrderListResponse(orders []entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}

// NewQuoteResponse maps a priced breakdown.
func NewQuoteResponse(b pricing.Breakdown, member *entity.LoyaltyMember) QuoteResponse {
	resp := QuoteResponse{
		SubTotal:        b.SubTotal,
		LoyaltyDiscount: b.LoyaltyDiscount,
		ManagerPercent:  b.ManagerPercent,
		ManagerDiscount: b.ManagerDiscount,
		Discount:        b.Discount(),
		GrandTotal:      b.GrandTotal(),
	}
	if member != nil {
		resp.Customer = &CustomerResponse{ID: member.ID, Name: member.Name}
	}
	return resp
}

func nullable(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d := v.Decimal
	return &d
}
