package pricing

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"

	"github.com/Additional-Code/tillpos/internal/entity"
	"github.com/Additional-Code/tillpos/pkg/errorbank"
)

var tracer = otel.Tracer("github.com/Additional-Code/tillpos/pricing")

// Module provides the discount engine to Fx.
var Module = fx.Provide(NewEngine)

// moneyPlaces is the precision every amount is rounded to.
const moneyPlaces = 2

var (
	loyaltyRate = decimal.New(10, -2)
	hundred     = decimal.NewFromInt(100)
)

// Authorizer verifies a manager key server side.
type Authorizer interface {
	Authorize(ctx context.Context, key string) error
}

// Breakdown is the discount stack for one cart.
type Breakdown struct {
	SubTotal        decimal.Decimal
	LoyaltyDiscount decimal.Decimal
	ManagerPercent  decimal.Decimal
	ManagerDiscount decimal.Decimal
}

// Discount is the sum of every applied layer.
func (b Breakdown) Discount() decimal.Decimal {
	return b.LoyaltyDiscount.Add(b.ManagerDiscount)
}

// GrandTotal is what the customer owes.
func (b Breakdown) GrandTotal() decimal.Decimal {
	return b.SubTotal.Sub(b.Discount())
}

// Override is a manager-approved percentage discount request.
type Override struct {
	Percent decimal.NullDecimal
	Key     string
}

// Engine stacks loyalty and manager discounts on a cart subtotal.
type Engine struct {
	authorizer Authorizer
}

// NewEngine constructs an Engine that checks overrides with authorizer.
func NewEngine(authorizer Authorizer) *Engine {
	return &Engine{authorizer: authorizer}
}

// SubTotal sums unit price times quantity over items.
func SubTotal(items []entity.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Loyalty applies the member discount, if any, to subTotal.
func (e *Engine) Loyalty(subTotal decimal.Decimal, isMember bool) Breakdown {
	b := Breakdown{SubTotal: subTotal}
	if isMember {
		b.LoyaltyDiscount = subTotal.Mul(loyaltyRate).Round(moneyPlaces)
	}
	return b
}

// ApplyOverride layers a manager discount on the post-loyalty remainder.
// On error the input breakdown is returned unchanged.
func (e *Engine) ApplyOverride(ctx context.Context, b Breakdown, o Override) (Breakdown, error) {
	_, span := tracer.Start(ctx, "DiscountEngine.ApplyOverride")
	defer span.End()

	if e.authorizer == nil {
		return b, errorbank.Forbidden("manager authorization failed")
	}
	if err := e.authorizer.Authorize(ctx, o.Key); err != nil {
		span.SetAttributes(attribute.Bool("override.authorized", false))
		return b, errorbank.Forbidden("manager authorization failed", errorbank.WithCause(err))
	}

	if !o.Percent.Valid {
		return b, errorbank.Validation("discount percent is required")
	}
	percent := o.Percent.Decimal
	if !percent.IsPositive() || percent.GreaterThan(hundred) {
		return b, errorbank.Validation("discount percent must be greater than 0 and at most 100",
			errorbank.WithDetail("percent", percent.String()))
	}

	span.SetAttributes(
		attribute.Bool("override.authorized", true),
		attribute.String("override.percent", percent.String()),
	)

	base := b.SubTotal.Sub(b.LoyaltyDiscount)
	out := b
	out.ManagerPercent = percent
	out.ManagerDiscount = base.Mul(percent).Div(hundred).Round(moneyPlaces)
	return out, nil
}
