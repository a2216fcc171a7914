package order

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/Additional-Code/tillpos/internal/auth"
	"github.com/Additional-Code/tillpos/internal/entity"
	"github.com/Additional-Code/tillpos/internal/pricing"
	loyaltyrepo "github.com/Additional-Code/tillpos/internal/repository/loyalty"
	"github.com/Additional-Code/tillpos/pkg/errorbank"
)

// Line is one cart entry as priced by the catalog.
type Line struct {
	Name      string
	UnitPrice decimal.Decimal
	Qty       int
}

// Cart is what the terminal submits for pricing.
type Cart struct {
	Items      []Line
	CustomerID *int64
	Override   *pricing.Override
}

// SettleRequest is a cart plus payment.
type SettleRequest struct {
	Cart
	PaymentMethod entity.PaymentMethod
	Tendered      decimal.NullDecimal
}

// Quote is the priced cart before payment.
type Quote struct {
	Breakdown pricing.Breakdown
	Customer  *entity.LoyaltyMember
}

// Quote prices a cart without taking payment or persisting anything.
func (s *Service) Quote(ctx context.Context, cart Cart) (Quote, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Quote")
	defer span.End()

	items, err := validateItems(cart.Items)
	if err != nil {
		return Quote{}, err
	}
	return s.price(ctx, cart, items)
}

// Settle prices the cart, checks payment and persists the order. Exactly one
// order is stored per successful call; a failed call stores nothing.
func (s *Service) Settle(ctx context.Context, req SettleRequest, op auth.Operator) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Settle")
	defer span.End()

	order, err := s.settle(ctx, req, op)
	if err != nil {
		s.metrics.recordRejected(ctx, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(errorbank.From(err).Kind()))
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("order.id", order.ID),
		attribute.String("order.invoice_no", order.InvoiceNo),
	)
	s.storeInCache(ctx, order)
	s.publish(ctx, order.ID, EventOrderSettled, settledEvent(order))
	s.metrics.recordSettled(ctx, order)

	s.logger.Info("order settled",
		zap.Int64("id", order.ID),
		zap.String("invoice_no", order.InvoiceNo),
		zap.String("grand_total", order.GrandTotal.StringFixed(2)),
		zap.String("payment_method", string(order.PaymentMethod)),
		zap.String("staff", order.Staff),
	)
	return order, nil
}

func (s *Service) settle(ctx context.Context, req SettleRequest, op auth.Operator) (*entity.Order, error) {
	items, err := validateItems(req.Items)
	if err != nil {
		return nil, err
	}
	if !req.PaymentMethod.Valid() {
		return nil, errorbank.Validation("payment method must be Cash or Card",
			errorbank.WithDetail("payment_method", string(req.PaymentMethod)))
	}

	quote, err := s.price(ctx, req.Cart, items)
	if err != nil {
		return nil, err
	}
	b := quote.Breakdown
	grand := b.GrandTotal()

	order := &entity.Order{
		SubTotal:        b.SubTotal,
		LoyaltyDiscount: b.LoyaltyDiscount,
		ManagerPercent:  b.ManagerPercent,
		ManagerDiscount: b.ManagerDiscount,
		Discount:        b.Discount(),
		GrandTotal:      grand,
		PaymentMethod:   req.PaymentMethod,
		Staff:           op.Name,
		SettledAt:       s.now().UTC(),
		Items:           items,
	}
	if quote.Customer != nil {
		order.CustomerID = &quote.Customer.ID
		order.Customer = quote.Customer
	}

	if req.PaymentMethod == entity.PaymentCash {
		if !req.Tendered.Valid {
			return nil, errorbank.Validation("tendered amount is required for cash payments")
		}
		tendered := req.Tendered.Decimal
		if tendered.LessThan(grand) {
			return nil, errorbank.InsufficientPayment("tendered amount is less than the grand total",
				errorbank.WithDetail("grand_total", grand.StringFixed(2)),
				errorbank.WithDetail("tendered", tendered.StringFixed(2)),
			)
		}
		order.Tendered = decimal.NewNullDecimal(tendered)
		order.ChangeDue = decimal.NewNullDecimal(tendered.Sub(grand))
	}

	if err := s.store.Create(ctx, order); err != nil {
		return nil, errorbank.Persistence("failed to save order", errorbank.WithCause(err))
	}
	return order, nil
}

func (s *Service) price(ctx context.Context, cart Cart, items []entity.OrderItem) (Quote, error) {
	var member *entity.LoyaltyMember
	if cart.CustomerID != nil {
		m, err := s.members.GetByID(ctx, *cart.CustomerID)
		if err != nil {
			if errors.Is(err, loyaltyrepo.ErrNotFound) {
				return Quote{}, errorbank.NotFound("loyalty member not found",
					errorbank.WithDetail("customer_id", *cart.CustomerID))
			}
			return Quote{}, errorbank.Persistence("failed to load loyalty member", errorbank.WithCause(err))
		}
		member = m
	}

	b := s.pricer.Loyalty(pricing.SubTotal(items), member != nil)
	if cart.Override != nil {
		var err error
		b, err = s.pricer.ApplyOverride(ctx, b, *cart.Override)
		if err != nil {
			return Quote{}, err
		}
	}
	return Quote{Breakdown: b, Customer: member}, nil
}

func validateItems(lines []Line) ([]entity.OrderItem, error) {
	if len(lines) == 0 {
		return nil, errorbank.Validation("cart is empty")
	}
	items := make([]entity.OrderItem, 0, len(lines))
	for i, l := range lines {
		name := strings.TrimSpace(l.Name)
		switch {
		case name == "":
			return nil, errorbank.Validation("item name is required", errorbank.WithDetail("line", i+1))
		case l.UnitPrice.IsNegative():
			return nil, errorbank.Validation("item price must not be negative", errorbank.WithDetail("line", i+1))
		case l.Qty < 1:
			return nil, errorbank.Validation("item quantity must be at least 1", errorbank.WithDetail("line", i+1))
		}
		items = append(items, entity.OrderItem{Name: name, UnitPrice: l.UnitPrice, Qty: l.Qty})
	}
	return items, nil
}
