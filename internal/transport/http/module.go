package http

import (
	"go.uber.org/fx"

	analyticstransport "github.com/Additional-Code/tillpos/internal/transport/http/analytics"
	loyaltytransport "github.com/Additional-Code/tillpos/internal/transport/http/loyalty"
	ordertransport "github.com/Additional-Code/tillpos/internal/transport/http/order"
	settingtransport "github.com/Additional-Code/tillpos/internal/transport/http/setting"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	ordertransport.Module,
	analyticstransport.Module,
	loyaltytransport.Module,
	settingtransport.Module,
)
