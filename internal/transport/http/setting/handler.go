package setting

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/Additional-Code/tillpos/internal/auth"
	"github.com/Additional-Code/tillpos/internal/dto"
	"github.com/Additional-Code/tillpos/internal/entity"
	"github.com/Additional-Code/tillpos/internal/presentation/http/middleware"
	"github.com/Additional-Code/tillpos/internal/presentation/http/request"
	"github.com/Additional-Code/tillpos/internal/presentation/http/response"
	service "github.com/Additional-Code/tillpos/internal/service/setting"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/tillpos/transport/http/setting")

// Service reads and replaces the shop configuration.
type Service interface {
	service.Provider
	Update(ctx context.Context, in service.Input) (entity.ShopSetting, error)
}

// Handler exposes shop settings over HTTP.
type Handler struct {
	svc Service
}

// NewHandler constructs a settings Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the authenticated API group.
func Register(api *echo.Group, h *Handler) {
	api.GET("/settings", h.get)
	api.PUT("/settings", h.update, middleware.RequireRole(auth.RoleAdmin))
}

func (h *Handler) get(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "settings.get")
	defer span.End()

	current, err := h.svc.Current(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewSettingResponse(current)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	var payload dto.SettingRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "settings.update")
	defer span.End()

	updated, err := h.svc.Update(ctx, service.Input{
		ShopName:      payload.ShopName,
		Address:       payload.Address,
		Phone:         payload.Phone,
		Email:         payload.Email,
		Currency:      payload.Currency,
		TaxRate:       payload.TaxRate,
		FooterMessage: payload.FooterMessage,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewSettingResponse(updated)).Build()
}
