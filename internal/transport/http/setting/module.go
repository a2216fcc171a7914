package setting

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	service "github.com/Additional-Code/tillpos/internal/service/setting"
)

// Module wires HTTP settings handlers.
var Module = fx.Options(
	fx.Provide(
		NewHandler,
		func(s *service.Service) Service { return s },
	),
	fx.Invoke(func(api *echo.Group, h *Handler) {
		Register(api, h)
	}),
)
