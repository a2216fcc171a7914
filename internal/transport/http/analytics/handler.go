package analytics

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/Additional-Code/tillpos/internal/auth"
	"github.com/Additional-Code/tillpos/internal/dto"
	"github.com/Additional-Code/tillpos/internal/presentation/http/middleware"
	"github.com/Additional-Code/tillpos/internal/presentation/http/response"
	service "github.com/Additional-Code/tillpos/internal/service/analytics"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/tillpos/transport/http/analytics")

// Service produces the sales summary.
type Service interface {
	Summary(ctx context.Context) (service.Summary, error)
}

// Handler exposes the dashboard report.
type Handler struct {
	svc Service
}

// NewHandler constructs an analytics Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the authenticated API group.
func Register(api *echo.Group, h *Handler) {
	api.GET("/orders/analytics", h.summary, middleware.RequireRole(auth.RoleAdmin))
}

func (h *Handler) summary(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.analytics")
	defer span.End()

	summary, err := h.svc.Summary(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewAnalyticsResponse(summary.Report, summary.Insight)).Build()
}
