package order

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Additional-Code/tillpos/internal/auth"
	"github.com/Additional-Code/tillpos/internal/config"
	"github.com/Additional-Code/tillpos/internal/dto"
	"github.com/Additional-Code/tillpos/internal/entity"
	"github.com/Additional-Code/tillpos/internal/presentation/http/middleware"
	"github.com/Additional-Code/tillpos/internal/presentation/http/request"
	"github.com/Additional-Code/tillpos/internal/presentation/http/response"
	"github.com/Additional-Code/tillpos/internal/pricing"
	repo "github.com/Additional-Code/tillpos/internal/repository/order"
	service "github.com/Additional-Code/tillpos/internal/service/order"
	"github.com/Additional-Code/tillpos/internal/service/setting"
	"github.com/Additional-Code/tillpos/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/tillpos/transport/http/order")

const dateLayout = "2006-01-02"

// Service is the order use-case surface the handler needs.
type Service interface {
	Quote(ctx context.Context, cart service.Cart) (service.Quote, error)
	Settle(ctx context.Context, req service.SettleRequest, op auth.Operator) (*entity.Order, error)
	List(ctx context.Context, rng repo.Range) ([]entity.Order, error)
	Get(ctx context.Context, id int64) (*entity.Order, error)
	Delete(ctx context.Context, id int64) error
}

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc      Service
	settings setting.Provider
	loc      *time.Location
	logger   *zap.Logger
}

// NewHandler constructs an order Handler.
func NewHandler(svc Service, settings setting.Provider, cfg config.Config, logger *zap.Logger) *Handler {
	loc := cfg.Sales.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{svc: svc, settings: settings, loc: loc, logger: logger}
}

// Register routes with the authenticated API group.
func Register(api *echo.Group, h *Handler) {
	g := api.Group("/orders")
	g.POST("/quote", h.quote)
	g.POST("", h.settle)
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.DELETE("/:id", h.delete, middleware.RequireRole(auth.RoleAdmin))
}

func (h *Handler) quote(c echo.Context) error {
	b := response.New(c)

	var payload dto.CartRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.quote")
	defer span.End()

	q, err := h.svc.Quote(ctx, toCart(payload))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewQuoteResponse(q.Breakdown, q.Customer)).Build()
}

func (h *Handler) settle(c echo.Context) error {
	b := response.New(c)

	var payload dto.SettleRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	op, ok := auth.OperatorFrom(c.Request().Context())
	if !ok {
		return b.WithError(errorbank.Unauthorized("not authenticated")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.settle")
	span.SetAttributes(
		attribute.String("order.payment_method", payload.PaymentMethod),
		attribute.Int("order.lines", len(payload.Items)),
	)
	defer span.End()

	order, err := h.svc.Settle(ctx, service.SettleRequest{
		Cart:          toCart(payload.CartRequest),
		PaymentMethod: entity.PaymentMethod(payload.PaymentMethod),
		Tendered:      payload.Tendered,
	}, op)
	if err != nil {
		return b.WithError(err).Build()
	}

	b = b.WithStatus(http.StatusCreated).WithData(dto.NewOrderResponse(order))

	// the sale is already stored, so a settings failure only drops the receipt header
	shop, err := h.settings.Current(ctx)
	if err != nil {
		h.logger.Warn("receipt settings unavailable", zap.Int64("order_id", order.ID), zap.Error(err))
	} else {
		b = b.WithMeta("shop", dto.NewSettingResponse(shop))
	}
	return b.Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	var query dto.ListOrdersQuery
	if err := request.Bind(c, &query); err != nil {
		return b.WithError(err).Build()
	}

	var rng repo.Range
	var err error
	if rng.From, err = h.parseDate(query.StartDate); err != nil {
		return b.WithError(errorbank.Validation("invalid startDate", errorbank.WithCause(err))).Build()
	}
	if rng.To, err = h.parseDate(query.EndDate); err != nil {
		return b.WithError(errorbank.Validation("invalid endDate", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	orders, err := h.svc.List(ctx, rng)
	if err != nil {
		return b.WithError(err).Build()
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))

	return b.WithData(dto.NewOrderListResponse(orders)).WithMeta("count", len(orders)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewOrderResponse(order)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]int64{"id": id}).Build()
}

func (h *Handler) parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, h.loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errorbank.Validation("invalid id", errorbank.WithCause(err))
	}
	return id, nil
}

func toCart(p dto.CartRequest) service.Cart {
	lines := make([]service.Line, 0, len(p.Items))
	for _, it := range p.Items {
		lines = append(lines, service.Line{Name: it.Name, UnitPrice: it.Price, Qty: it.Qty})
	}

	cart := service.Cart{Items: lines, CustomerID: p.CustomerID}
	if p.Override != nil {
		cart.Override = &pricing.Override{Percent: p.Override.Percent, Key: p.Override.Key}
	}
	return cart
}
