package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/Additional-Code/tillpos/internal/config"
	"github.com/Additional-Code/tillpos/internal/database"
	"github.com/Additional-Code/tillpos/internal/entity"
)

// Module provides the order repository to Fx.
var Module = fx.Provide(NewRepository)

var repoTracer = otel.Tracer("github.com/Additional-Code/tillpos/repository/order")

var (
	// ErrNotFound is returned when an order is missing.
	ErrNotFound = errors.New("order not found")
	// ErrInvoiceExhausted is returned when no free invoice number was found.
	ErrInvoiceExhausted = errors.New("could not allocate a unique invoice number")

	errInvoiceTaken = errors.New("invoice number taken")
)

// Range bounds a listing by calendar day. Either side may be nil.
type Range struct {
	From *time.Time
	To   *time.Time
}

// Repository encapsulates read/write access for orders.
type Repository struct {
	writer   *bun.DB
	reader   *bun.DB
	loc      *time.Location
	prefix   string
	attempts int
	digits   func() int
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections, cfg config.Config) *Repository {
	loc := cfg.Sales.Location
	if loc == nil {
		loc = time.UTC
	}
	attempts := cfg.Sales.InvoiceAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return &Repository{
		writer:   conns.Writer,
		reader:   conns.Reader,
		loc:      loc,
		prefix:   cfg.Sales.InvoicePrefix,
		attempts: attempts,
		digits:   func() int { return 100000 + rand.IntN(900000) },
	}
}

// Create persists order and its items in one transaction, assigning a
// unique invoice number. A taken number is regenerated up to the configured
// attempt limit.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.Int("order.items", len(order.Items))))
	defer span.End()

	for attempt := 1; attempt <= r.attempts; attempt++ {
		invoiceNo := fmt.Sprintf("%s%06d", r.prefix, r.digits())

		err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			taken, err := tx.NewSelect().Model((*entity.Order)(nil)).Where("invoice_no = ?", invoiceNo).Exists(ctx)
			if err != nil {
				return err
			}
			if taken {
				return errInvoiceTaken
			}

			order.InvoiceNo = invoiceNo
			if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
				return err
			}
			if len(order.Items) == 0 {
				return nil
			}
			for i := range order.Items {
				order.Items[i].OrderID = order.ID
				order.Items[i].LineNo = i + 1
			}
			_, err = tx.NewInsert().Model(&order.Items).Exec(ctx)
			return err
		})
		if err == nil {
			span.SetAttributes(attribute.String("order.invoice_no", order.InvoiceNo), attribute.Int("invoice.attempts", attempt))
			return nil
		}

		order.ID = 0
		order.InvoiceNo = ""
		if errors.Is(err, errInvoiceTaken) || database.IsUniqueViolation(err) {
			span.AddEvent("invoice collision", trace.WithAttributes(attribute.String("invoice_no", invoiceNo)))
			continue
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}

	span.SetStatus(codes.Error, "invoice numbers exhausted")
	return ErrInvoiceExhausted
}

// List returns orders within rng, newest first. The To bound covers the
// whole calendar day through 23:59:59.999 in the sales timezone.
func (r *Repository) List(ctx context.Context, rng Range) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	var orders []entity.Order
	q := r.selectOrders(&orders)
	if rng.From != nil {
		from := startOfDay(*rng.From, r.loc)
		q = q.Where("o.settled_at >= ?", from.UTC())
		span.SetAttributes(attribute.String("range.from", from.Format(time.RFC3339)))
	}
	if rng.To != nil {
		to := endOfDay(*rng.To, r.loc)
		q = q.Where("o.settled_at <= ?", to.UTC())
		span.SetAttributes(attribute.String("range.to", to.Format(time.RFC3339Nano)))
	}

	if err := q.Order("o.settled_at DESC", "o.id DESC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	return orders, nil
}

// GetByID fetches an order by primary key using the read replica when available.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.selectOrders(order).Where("o.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// Delete removes an order and its items.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model((*entity.Order)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		_, err = tx.NewDelete().Model((*entity.OrderItem)(nil)).Where("order_id = ?", id).Exec(ctx)
		return err
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
	}
	return err
}

func (r *Repository) selectOrders(model any) *bun.SelectQuery {
	return r.reader.NewSelect().
		Model(model).
		Relation("Customer").
		Relation("Items", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("oi.line_no ASC")
		})
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
}
