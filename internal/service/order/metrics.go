package order

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/Additional-Code/tillpos/internal/entity"
	"github.com/Additional-Code/tillpos/pkg/errorbank"
)

// BasketMetric is the histogram of order grand totals.
const BasketMetric = "tillpos.orders.basket"

type metrics struct {
	settled    metric.Int64Counter
	revenue    metric.Float64Counter
	basket     metric.Float64Histogram
	rejections metric.Int64Counter
}

func newMetrics(logger *zap.Logger) *metrics {
	meter := otel.Meter("github.com/Additional-Code/tillpos/service/order")
	fallback := noop.NewMeterProvider().Meter("")

	settled, err := meter.Int64Counter("tillpos.orders.settled", metric.WithDescription("Settled orders"))
	if err != nil {
		logger.Warn("create settled counter", zap.Error(err))
		settled, _ = fallback.Int64Counter("tillpos.orders.settled")
	}
	revenue, err := meter.Float64Counter("tillpos.orders.revenue", metric.WithDescription("Grand total of settled orders"))
	if err != nil {
		logger.Warn("create revenue counter", zap.Error(err))
		revenue, _ = fallback.Float64Counter("tillpos.orders.revenue")
	}
	basket, err := meter.Float64Histogram(BasketMetric, metric.WithDescription("Grand total per settled order"))
	if err != nil {
		logger.Warn("create basket histogram", zap.Error(err))
		basket, _ = fallback.Float64Histogram(BasketMetric)
	}
	rejections, err := meter.Int64Counter("tillpos.settlement.rejections", metric.WithDescription("Settlements refused, by error kind"))
	if err != nil {
		logger.Warn("create rejection counter", zap.Error(err))
		rejections, _ = fallback.Int64Counter("tillpos.settlement.rejections")
	}

	return &metrics{settled: settled, revenue: revenue, basket: basket, rejections: rejections}
}

func (m *metrics) recordSettled(ctx context.Context, o *entity.Order) {
	attrs := metric.WithAttributes(attribute.String("payment_method", string(o.PaymentMethod)))
	m.settled.Add(ctx, 1, attrs)
	m.revenue.Add(ctx, o.GrandTotal.InexactFloat64(), attrs)
	m.basket.Record(ctx, o.GrandTotal.InexactFloat64(), attrs)
}

func (m *metrics) recordRejected(ctx context.Context, err error) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(errorbank.From(err).Kind()))))
}
