package analytics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"

	"github.com/Additional-Code/tillpos/internal/analytics"
	"github.com/Additional-Code/tillpos/internal/config"
	"github.com/Additional-Code/tillpos/internal/entity"
	"github.com/Additional-Code/tillpos/internal/insight"
	repo "github.com/Additional-Code/tillpos/internal/repository/order"
	"github.com/Additional-Code/tillpos/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/tillpos/service/analytics")

// Orders reads settled orders.
type Orders interface {
	List(ctx context.Context, rng repo.Range) ([]entity.Order, error)
}

// Module provides the analytics service to Fx.
var Module = fx.Provide(
	NewService,
	func(r *repo.Repository) Orders { return r },
)

// Summary is a report with its generated insight.
type Summary struct {
	analytics.Report
	Insight string
}

// Service computes sales reports on demand.
type Service struct {
	orders Orders
	loc    *time.Location
	now    func() time.Time
}

// NewService wires a new Service instance.
func NewService(orders Orders, cfg config.Config) *Service {
	loc := cfg.Sales.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{orders: orders, loc: loc, now: time.Now}
}

// Summary recomputes the report over every stored order.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	ctx, span := serviceTracer.Start(ctx, "AnalyticsService.Summary")
	defer span.End()

	orders, err := s.orders.List(ctx, repo.Range{})
	if err != nil {
		span.RecordError(err)
		return Summary{}, errorbank.Persistence("failed to load orders", errorbank.WithCause(err))
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))

	report := analytics.Aggregate(orders, s.now(), s.loc)
	return Summary{Report: report, Insight: insight.Generate(report)}, nil
}
