package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/tillpos/internal/cache"
	"github.com/Additional-Code/tillpos/internal/config"
	"github.com/Additional-Code/tillpos/internal/entity"
	"github.com/Additional-Code/tillpos/internal/messaging"
	"github.com/Additional-Code/tillpos/internal/pricing"
	loyaltyrepo "github.com/Additional-Code/tillpos/internal/repository/loyalty"
	repo "github.com/Additional-Code/tillpos/internal/repository/order"
	"github.com/Additional-Code/tillpos/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/tillpos/service/order")

// Store is the persistence the service needs.
type Store interface {
	Create(ctx context.Context, order *entity.Order) error
	List(ctx context.Context, rng repo.Range) ([]entity.Order, error)
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	Delete(ctx context.Context, id int64) error
}

// Members looks loyalty members up by id.
type Members interface {
	GetByID(ctx context.Context, id int64) (*entity.LoyaltyMember, error)
}

// Module provides the order service to Fx.
var Module = fx.Provide(
	NewService,
	func(r *repo.Repository) Store { return r },
	func(r *loyaltyrepo.Repository) Members { return r },
)

// Service encapsulates settlement and order lookups.
type Service struct {
	store     Store
	members   Members
	pricer    *pricing.Engine
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	metrics   *metrics
	now       func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store     Store
	Members   Members
	Pricer    *pricing.Engine
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     p.Store,
		members:   p.Members,
		pricer:    p.Pricer,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    logger,
		publisher: p.Publisher,
		metrics:   newMetrics(logger),
		now:       time.Now,
	}
}

// Get retrieves an order by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	var cached entity.Order
	err := cache.GetJSON(ctx, s.cache, s.cacheKey(id), &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.Int64("id", id), zap.Error(err))
	}

	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Persistence("failed to load order", errorbank.WithCause(err))
	}

	s.storeInCache(ctx, order)
	return order, nil
}

// List returns orders in rng, newest first.
func (s *Service) List(ctx context.Context, rng repo.Range) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	if rng.From != nil && rng.To != nil && rng.To.Before(*rng.From) {
		return nil, errorbank.Validation("endDate must not be before startDate")
	}

	orders, err := s.store.List(ctx, rng)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Persistence("failed to load orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// Delete removes a settled order.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Persistence("failed to delete order", errorbank.WithCause(err))
	}

	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		s.logger.Warn("orders cache evict failed", zap.Int64("id", id), zap.Error(err))
	}
	s.publish(ctx, id, EventOrderDeleted, OrderDeletedEvent{OrderID: id})
	return nil
}

func (s *Service) cacheKey(id int64) string {
	return fmt.Sprintf("orders:%d", id)
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) {
	if err := cache.SetJSON(ctx, s.cache, s.cacheKey(order.ID), order, s.cacheTTL); err != nil {
		s.logger.Warn("orders cache write failed", zap.Int64("id", order.ID), zap.Error(err))
	}
}
