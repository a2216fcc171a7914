package order

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Additional-Code/tillpos/internal/entity"
	"github.com/Additional-Code/tillpos/internal/messaging"
)

const (
	EventOrderSettled = "order.settled"
	EventOrderDeleted = "order.deleted"
)

// OrderSettledEvent is emitted after a sale is persisted.
type OrderSettledEvent struct {
	OrderID       int64                `json:"order_id"`
	InvoiceNo     string               `json:"invoice_no"`
	GrandTotal    decimal.Decimal      `json:"grand_total"`
	Discount      decimal.Decimal      `json:"discount"`
	PaymentMethod entity.PaymentMethod `json:"payment_method"`
	Staff         string               `json:"staff"`
	ItemCount     int                  `json:"item_count"`
	SettledAt     time.Time            `json:"settled_at"`
}

// OrderDeletedEvent is emitted after an order is removed.
type OrderDeletedEvent struct {
	OrderID int64 `json:"order_id"`
}

func settledEvent(o *entity.Order) OrderSettledEvent {
	count := 0
	for _, it := range o.Items {
		count += it.Qty
	}
	return OrderSettledEvent{
		OrderID:       o.ID,
		InvoiceNo:     o.InvoiceNo,
		GrandTotal:    o.GrandTotal,
		Discount:      o.Discount,
		PaymentMethod: o.PaymentMethod,
		Staff:         o.Staff,
		ItemCount:     count,
		SettledAt:     o.SettledAt,
	}
}

// publish is best effort; a sale is never rolled back over a lost event.
func (s *Service) publish(ctx context.Context, orderID int64, eventType string, payload any) {
	if s.publisher == nil {
		return
	}
	evt, err := messaging.NewEvent(eventType, s.now(), payload)
	if err != nil {
		s.logger.Error("build event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := messaging.PublishEvent(ctx, s.publisher, "order-"+strconv.FormatInt(orderID, 10), evt); err != nil {
		s.logger.Error("publish event", zap.String("type", eventType), zap.Int64("order_id", orderID), zap.Error(err))
	}
}
