package order

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/tillpos/internal/messaging"
	ordersvc "github.com/Additional-Code/tillpos/internal/service/order"
	"github.com/Additional-Code/tillpos/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/tillpos/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewOrderSettledHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
		fx.Annotate(
			NewOrderDeletedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderSettledHandler writes each settled sale to the audit log.
func NewOrderSettledHandler(logger *zap.Logger) worker.HandlerRegistration {
	log := logger.Named("sales_audit")
	handler := func(ctx context.Context, evt messaging.Event) error {
		_, span := startSpan(ctx, evt)
		defer span.End()

		var payload ordersvc.OrderSettledEvent
		if err := decode(evt, &payload, span); err != nil {
			return err
		}
		span.SetAttributes(attribute.Int64("order.id", payload.OrderID))

		log.Info("order settled",
			zap.String("event_id", evt.ID),
			zap.Int64("order_id", payload.OrderID),
			zap.String("invoice_no", payload.InvoiceNo),
			zap.String("grand_total", payload.GrandTotal.StringFixed(2)),
			zap.String("discount", payload.Discount.StringFixed(2)),
			zap.String("payment_method", string(payload.PaymentMethod)),
			zap.String("staff", payload.Staff),
			zap.Int("items", payload.ItemCount),
			zap.Time("settled_at", payload.SettledAt),
		)
		return nil
	}

	return worker.HandlerRegistration{
		EventType: ordersvc.EventOrderSettled,
		Handler:   handler,
	}
}

// NewOrderDeletedHandler records order removals in the audit log.
func NewOrderDeletedHandler(logger *zap.Logger) worker.HandlerRegistration {
	log := logger.Named("sales_audit")
	handler := func(ctx context.Context, evt messaging.Event) error {
		_, span := startSpan(ctx, evt)
		defer span.End()

		var payload ordersvc.OrderDeletedEvent
		if err := decode(evt, &payload, span); err != nil {
			return err
		}

		log.Warn("order deleted",
			zap.String("event_id", evt.ID),
			zap.Int64("order_id", payload.OrderID),
			zap.Time("occurred_at", evt.OccurredAt),
		)
		return nil
	}

	return worker.HandlerRegistration{
		EventType: ordersvc.EventOrderDeleted,
		Handler:   handler,
	}
}

func startSpan(ctx context.Context, evt messaging.Event) (context.Context, trace.Span) {
	return workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
		attribute.String("event.type", evt.Type),
		attribute.String("event.id", evt.ID),
	))
}

func decode(evt messaging.Event, dst any, span trace.Span) error {
	if err := json.Unmarshal(evt.Payload, dst); err != nil {
		err = fmt.Errorf("decode %s payload: %w", evt.Type, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode error")
		return err
	}
	return nil
}
