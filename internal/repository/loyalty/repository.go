package loyalty

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/Additional-Code/tillpos/internal/database"
	"github.com/Additional-Code/tillpos/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/tillpos/repository/loyalty")

// Module provides the loyalty member repository to Fx.
var Module = fx.Provide(NewRepository)

var (
	// ErrNotFound is returned when a member is missing.
	ErrNotFound = errors.New("loyalty member not found")
	// ErrDuplicatePhone is returned when another member already owns the phone.
	ErrDuplicatePhone = errors.New("phone already registered")
)

// Repository stores loyalty members.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

// Create registers a new member.
func (r *Repository) Create(ctx context.Context, member *entity.LoyaltyMember) error {
	ctx, span := repoTracer.Start(ctx, "LoyaltyRepository.Create")
	defer span.End()

	if _, err := r.writer.NewInsert().Model(member).Exec(ctx); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicatePhone
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

// FindByPhone looks a member up by phone number.
func (r *Repository) FindByPhone(ctx context.Context, phone string) (*entity.LoyaltyMember, error) {
	ctx, span := repoTracer.Start(ctx, "LoyaltyRepository.FindByPhone")
	defer span.End()

	member := new(entity.LoyaltyMember)
	err := r.reader.NewSelect().Model(member).Where("phone = ?", phone).Limit(1).Scan(ctx)
	return r.one(span, member, err)
}

// GetByID fetches a member by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.LoyaltyMember, error) {
	ctx, span := repoTracer.Start(ctx, "LoyaltyRepository.GetByID", trace.WithAttributes(attribute.Int64("member.id", id)))
	defer span.End()

	member := new(entity.LoyaltyMember)
	err := r.reader.NewSelect().Model(member).Where("id = ?", id).Scan(ctx)
	return r.one(span, member, err)
}

// List returns every member, most recently joined first.
func (r *Repository) List(ctx context.Context) ([]entity.LoyaltyMember, error) {
	ctx, span := repoTracer.Start(ctx, "LoyaltyRepository.List")
	defer span.End()

	var members []entity.LoyaltyMember
	if err := r.reader.NewSelect().Model(&members).Order("joined_at DESC", "id DESC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return members, nil
}

// Update overwrites name, phone and email.
func (r *Repository) Update(ctx context.Context, member *entity.LoyaltyMember) error {
	ctx, span := repoTracer.Start(ctx, "LoyaltyRepository.Update", trace.WithAttributes(attribute.Int64("member.id", member.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(member).Column("name", "phone", "email").WherePK().Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicatePhone
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	return affectedOne(res)
}

// Delete removes a member. Orders keep their dangling customer id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "LoyaltyRepository.Delete", trace.WithAttributes(attribute.Int64("member.id", id)))
	defer span.End()

	res, err := r.writer.NewDelete().Model((*entity.LoyaltyMember)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}
	return affectedOne(res)
}

func (r *Repository) one(span trace.Span, member *entity.LoyaltyMember, err error) (*entity.LoyaltyMember, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return member, nil
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
