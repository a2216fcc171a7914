package setting

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"

	"github.com/Additional-Code/tillpos/internal/database"
	"github.com/Additional-Code/tillpos/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/tillpos/repository/setting")

// Module provides the shop settings repository to Fx.
var Module = fx.Provide(NewRepository)

// ErrNotFound is returned before the settings row has been created.
var ErrNotFound = errors.New("shop settings not found")

// Repository reads and writes the single shop settings row.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

// Get loads the settings row.
func (r *Repository) Get(ctx context.Context) (*entity.ShopSetting, error) {
	ctx, span := repoTracer.Start(ctx, "SettingRepository.Get")
	defer span.End()

	s := new(entity.ShopSetting)
	err := r.reader.NewSelect().Model(s).Where("id = ?", entity.ShopSettingID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return s, nil
}

// Insert creates the settings row unless one already exists. It reports
// whether a row was written.
func (r *Repository) Insert(ctx context.Context, s *entity.ShopSetting) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "SettingRepository.Insert")
	defer span.End()

	s.ID = entity.ShopSettingID
	if _, err := r.writer.NewInsert().Model(s).Exec(ctx); err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return false, err
	}
	return true, nil
}

// Upsert writes s over the settings row, creating it if needed. The last
// writer wins.
func (r *Repository) Upsert(ctx context.Context, s *entity.ShopSetting) error {
	ctx, span := repoTracer.Start(ctx, "SettingRepository.Upsert")
	defer span.End()

	s.ID = entity.ShopSettingID
	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*entity.ShopSetting)(nil)).Where("id = ?", s.ID).Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			_, err = tx.NewUpdate().Model(s).WherePK().Exec(ctx)
		} else {
			_, err = tx.NewInsert().Model(s).Exec(ctx)
		}
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
	}
	return err
}
