package loyalty

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/tillpos/internal/auth"
	"github.com/Additional-Code/tillpos/internal/dto"
	"github.com/Additional-Code/tillpos/internal/entity"
	"github.com/Additional-Code/tillpos/internal/presentation/http/middleware"
	"github.com/Additional-Code/tillpos/internal/presentation/http/request"
	"github.com/Additional-Code/tillpos/internal/presentation/http/response"
	service "github.com/Additional-Code/tillpos/internal/service/loyalty"
	"github.com/Additional-Code/tillpos/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/tillpos/transport/http/loyalty")

// Service is the loyalty use-case surface the handler needs.
type Service interface {
	Check(ctx context.Context, phone string) (*entity.LoyaltyMember, bool, error)
	Register(ctx context.Context, in service.Input) (*entity.LoyaltyMember, error)
	List(ctx context.Context) ([]entity.LoyaltyMember, error)
	Update(ctx context.Context, id int64, in service.Input) (*entity.LoyaltyMember, error)
	Delete(ctx context.Context, id int64) error
}

// Handler exposes loyalty member endpoints over HTTP.
type Handler struct {
	svc Service
}

// NewHandler constructs a loyalty Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the authenticated API group.
func Register(api *echo.Group, h *Handler) {
	g := api.Group("/loyalty")
	g.POST("/check", h.check)
	g.POST("", h.register)
	g.GET("", h.list)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete, middleware.RequireRole(auth.RoleAdmin))
}

func (h *Handler) check(c echo.Context) error {
	b := response.New(c)

	var payload dto.CheckMemberRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "loyalty.check")
	defer span.End()

	member, found, err := h.svc.Check(ctx, payload.Phone)
	if err != nil {
		return b.WithError(err).Build()
	}

	resp := dto.CheckMemberResponse{Found: found}
	if found {
		m := dto.NewMemberResponse(member)
		resp.Member = &m
	}
	return b.WithData(resp).Build()
}

func (h *Handler) register(c echo.Context) error {
	b := response.New(c)

	var payload dto.MemberRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "loyalty.register")
	defer span.End()

	member, err := h.svc.Register(ctx, toInput(payload))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.NewMemberResponse(member)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "loyalty.list")
	defer span.End()

	members, err := h.svc.List(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewMemberListResponse(members)).WithMeta("count", len(members)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.MemberRequest
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "loyalty.update", trace.WithAttributes(attribute.Int64("member.id", id)))
	defer span.End()

	member, err := h.svc.Update(ctx, id, toInput(payload))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewMemberResponse(member)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "loyalty.delete", trace.WithAttributes(attribute.Int64("member.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]int64{"id": id}).Build()
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errorbank.Validation("invalid id", errorbank.WithCause(err))
	}
	return id, nil
}

func toInput(p dto.MemberRequest) service.Input {
	return service.Input{Name: p.Name, Phone: p.Phone, Email: p.Email}
}
