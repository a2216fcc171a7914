package order

import (
	"go.uber.org/fx"

	service "github.com/Additional-Code/tillpos/internal/service/order"
)

// Module wires HTTP order handlers.
var Module = fx.Options(
	fx.Provide(
		NewHandler,
		func(s *service.Service) Service { return s },
	),
	fx.Invoke(Register),
)
