package setting

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/tillpos/internal/cache"
	"github.com/Additional-Code/tillpos/internal/config"
	"github.com/Additional-Code/tillpos/internal/entity"
	repo "github.com/Additional-Code/tillpos/internal/repository/setting"
	"github.com/Additional-Code/tillpos/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/tillpos/service/setting")

const cacheKey = "settings:shop"

var maxTaxRate = decimal.NewFromInt(100)

// Provider is the single way consumers obtain shop configuration.
type Provider interface {
	Current(ctx context.Context) (entity.ShopSetting, error)
}

// Store persists the settings row.
type Store interface {
	Get(ctx context.Context) (*entity.ShopSetting, error)
	Insert(ctx context.Context, s *entity.ShopSetting) (bool, error)
	Upsert(ctx context.Context, s *entity.ShopSetting) error
}

// Module provides the settings service and the Provider contract.
var Module = fx.Provide(
	NewService,
	func(s *Service) Provider { return s },
	func(r *repo.Repository) Store { return r },
)

// Input is a full replacement of the editable settings.
type Input struct {
	ShopName      string
	Address       string
	Phone         string
	Email         string
	Currency      string
	TaxRate       decimal.Decimal
	FooterMessage string
}

// Service reads and updates shop settings.
type Service struct {
	store    Store
	cache    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new Service instance.
func NewService(store Store, c cache.Store, cfg config.Config, logger *zap.Logger) *Service {
	return &Service{store: store, cache: c, cacheTTL: cfg.Cache.DefaultTTL, logger: logger, now: time.Now}
}

// Current returns the shop settings, creating the defaults on first use.
func (s *Service) Current(ctx context.Context) (entity.ShopSetting, error) {
	ctx, span := serviceTracer.Start(ctx, "SettingService.Current")
	defer span.End()

	var cached entity.ShopSetting
	err := cache.GetJSON(ctx, s.cache, cacheKey, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("settings cache read failed", zap.Error(err))
	}

	current, err := s.store.Get(ctx)
	if errors.Is(err, repo.ErrNotFound) {
		defaults := entity.DefaultShopSetting(s.now().UTC())
		created, insertErr := s.store.Insert(ctx, &defaults)
		if insertErr != nil {
			return entity.ShopSetting{}, errorbank.Persistence("failed to create shop settings", errorbank.WithCause(insertErr))
		}
		if created {
			s.logger.Info("shop settings initialised with defaults")
		}
		current, err = s.store.Get(ctx)
	}
	if err != nil {
		return entity.ShopSetting{}, errorbank.Persistence("failed to load shop settings", errorbank.WithCause(err))
	}

	if err := cache.SetJSON(ctx, s.cache, cacheKey, current, s.cacheTTL); err != nil {
		s.logger.Warn("settings cache write failed", zap.Error(err))
	}
	return *current, nil
}

// Update replaces the settings. Concurrent writers race; the last one wins.
func (s *Service) Update(ctx context.Context, in Input) (entity.ShopSetting, error) {
	ctx, span := serviceTracer.Start(ctx, "SettingService.Update")
	defer span.End()

	next := entity.ShopSetting{
		ID:            entity.ShopSettingID,
		ShopName:      strings.TrimSpace(in.ShopName),
		Address:       strings.TrimSpace(in.Address),
		Phone:         strings.TrimSpace(in.Phone),
		Email:         strings.TrimSpace(in.Email),
		Currency:      strings.TrimSpace(in.Currency),
		TaxRate:       in.TaxRate,
		FooterMessage: strings.TrimSpace(in.FooterMessage),
		UpdatedAt:     s.now().UTC(),
	}
	if next.ShopName == "" {
		return entity.ShopSetting{}, errorbank.Validation("shop name is required")
	}
	if next.Currency == "" {
		return entity.ShopSetting{}, errorbank.Validation("currency is required")
	}
	if next.TaxRate.IsNegative() || next.TaxRate.GreaterThan(maxTaxRate) {
		return entity.ShopSetting{}, errorbank.Validation("tax rate must be between 0 and 100")
	}

	if err := s.store.Upsert(ctx, &next); err != nil {
		return entity.ShopSetting{}, errorbank.Persistence("failed to save shop settings", errorbank.WithCause(err))
	}
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		s.logger.Warn("settings cache evict failed", zap.Error(err))
	}
	return next, nil
}
