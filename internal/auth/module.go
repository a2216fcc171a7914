package auth

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/tillpos/internal/pricing"
)

// Module provides token handling and the manager override authorizer.
var Module = fx.Provide(
	NewTokenManager,
	fx.Annotate(NewManagerAuthorizer, fx.As(new(pricing.Authorizer))),
)
