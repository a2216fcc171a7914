package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/tillpos/internal/auth"
	"github.com/Additional-Code/tillpos/internal/presentation/http/response"
	"github.com/Additional-Code/tillpos/pkg/errorbank"
)

const bearerPrefix = "Bearer "

// Guard authenticates staff bearer tokens.
type Guard struct {
	tokens *auth.TokenManager
}

// NewGuard constructs a Guard.
func NewGuard(tokens *auth.TokenManager) *Guard {
	return &Guard{tokens: tokens}
}

// Authenticate rejects requests without a valid staff token and stores the
// operator on the request context.
func (g *Guard) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return response.Fail(c, errorbank.Unauthorized("missing bearer token"))
			}

			op, err := g.tokens.Parse(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
			if err != nil {
				return response.Fail(c, errorbank.Unauthorized("invalid token", errorbank.WithCause(err)))
			}

			req := c.Request()
			c.SetRequest(req.WithContext(auth.WithOperator(req.Context(), op)))
			return next(c)
		}
	}
}

// RequireRole allows only operators holding one of roles. It must run after
// Authenticate.
func RequireRole(roles ...auth.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			op, ok := auth.OperatorFrom(c.Request().Context())
			if !ok {
				return response.Fail(c, errorbank.Unauthorized("not authenticated"))
			}
			for _, role := range roles {
				if op.Role == role {
					return next(c)
				}
			}
			return response.Fail(c, errorbank.Forbidden("insufficient role"))
		}
	}
}
