package loyalty

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/tillpos/internal/cache"
	"github.com/Additional-Code/tillpos/internal/config"
	"github.com/Additional-Code/tillpos/internal/entity"
	repo "github.com/Additional-Code/tillpos/internal/repository/loyalty"
	"github.com/Additional-Code/tillpos/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/tillpos/service/loyalty")

// Store is the member persistence the service needs.
type Store interface {
	Create(ctx context.Context, member *entity.LoyaltyMember) error
	FindByPhone(ctx context.Context, phone string) (*entity.LoyaltyMember, error)
	GetByID(ctx context.Context, id int64) (*entity.LoyaltyMember, error)
	List(ctx context.Context) ([]entity.LoyaltyMember, error)
	Update(ctx context.Context, member *entity.LoyaltyMember) error
	Delete(ctx context.Context, id int64) error
}

// Module provides the loyalty service to Fx.
var Module = fx.Provide(
	NewService,
	func(r *repo.Repository) Store { return r },
)

// Input carries the editable member fields.
type Input struct {
	Name  string
	Phone string
	Email string
}

// Service manages loyalty members and phone lookups.
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

// Check looks a member up by phone. A miss is not an error.
func (s *Service) Check(ctx context.Context, phone string) (*entity.LoyaltyMember, bool, error) {
	ctx, span := serviceTracer.Start(ctx, "LoyaltyService.Check")
	defer span.End()

	phone = normalizePhone(phone)
	if phone == "" {
		return nil, false, errorbank.Validation("phone is required")
	}

	var cached entity.LoyaltyMember
	err := cache.GetJSON(ctx, s.cache, phoneKey(phone), &cached)
	if err == nil {
		return &cached, true, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("loyalty cache read failed", zap.Error(err))
	}

	member, err := s.store.FindByPhone(ctx, phone)
	if errors.Is(err, repo.ErrNotFound) {
		span.SetAttributes(attribute.Bool("member.found", false))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errorbank.Persistence("failed to look up member", errorbank.WithCause(err))
	}

	span.SetAttributes(attribute.Bool("member.found", true))
	if err := cache.SetJSON(ctx, s.cache, phoneKey(phone), member, s.cacheTTL); err != nil {
		s.logger.Warn("loyalty cache write failed", zap.Error(err))
	}
	return member, true, nil
}

// Register creates a member. A phone already on file is a conflict.
func (s *Service) Register(ctx context.Context, in Input) (*entity.LoyaltyMember, error) {
	ctx, span := serviceTracer.Start(ctx, "LoyaltyService.Register")
	defer span.End()

	in, err := validate(in)
	if err != nil {
		return nil, err
	}

	member := &entity.LoyaltyMember{
		Name:     in.Name,
		Phone:    in.Phone,
		Email:    in.Email,
		JoinedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, member); err != nil {
		if errors.Is(err, repo.ErrDuplicatePhone) {
			return nil, errorbank.Conflict("member with this phone already exists")
		}
		return nil, errorbank.Persistence("failed to register member", errorbank.WithCause(err))
	}

	s.logger.Info("loyalty member registered", zap.Int64("id", member.ID))
	return member, nil
}

// List returns all members, newest first.
func (s *Service) List(ctx context.Context) ([]entity.LoyaltyMember, error) {
	ctx, span := serviceTracer.Start(ctx, "LoyaltyService.List")
	defer span.End()

	members, err := s.store.List(ctx)
	if err != nil {
		return nil, errorbank.Persistence("failed to load members", errorbank.WithCause(err))
	}
	return members, nil
}

// Update edits a member's name, phone and email.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*entity.LoyaltyMember, error) {
	ctx, span := serviceTracer.Start(ctx, "LoyaltyService.Update", trace.WithAttributes(attribute.Int64("member.id", id)))
	defer span.End()

	in, err := validate(in)
	if err != nil {
		return nil, err
	}

	member, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	oldPhone := member.Phone

	member.Name, member.Phone, member.Email = in.Name, in.Phone, in.Email
	if err := s.store.Update(ctx, member); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicatePhone):
			return nil, errorbank.Conflict("member with this phone already exists")
		case errors.Is(err, repo.ErrNotFound):
			return nil, errorbank.NotFound("loyalty member not found")
		}
		return nil, errorbank.Persistence("failed to update member", errorbank.WithCause(err))
	}

	s.evict(ctx, oldPhone, member.Phone)
	return member, nil
}

// Delete removes a member. Past orders keep their reference.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "LoyaltyService.Delete", trace.WithAttributes(attribute.Int64("member.id", id)))
	defer span.End()

	member, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFound("loyalty member not found")
		}
		return errorbank.Persistence("failed to delete member", errorbank.WithCause(err))
	}

	s.evict(ctx, member.Phone)
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*entity.LoyaltyMember, error) {
	member, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errorbank.NotFound("loyalty member not found")
	}
	if err != nil {
		return nil, errorbank.Persistence("failed to load member", errorbank.WithCause(err))
	}
	return member, nil
}

func (s *Service) evict(ctx context.Context, phones ...string) {
	for _, phone := range phones {
		if err := s.cache.Delete(ctx, phoneKey(phone)); err != nil {
			s.logger.Warn("loyalty cache evict failed", zap.Error(err))
		}
	}
}

func validate(in Input) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = normalizePhone(in.Phone)
	in.Email = strings.TrimSpace(in.Email)

	if in.Name == "" {
		return in, errorbank.Validation("name is required")
	}
	if in.Phone == "" {
		return in, errorbank.Validation("phone is required")
	}
	return in, nil
}

func normalizePhone(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}

func phoneKey(phone string) string {
	return "loyalty:phone:" + phone
}
