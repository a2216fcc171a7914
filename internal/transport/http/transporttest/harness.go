// Package transporttest runs HTTP handlers behind the production router,
// error handler and auth guard for handler tests.
package transporttest

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/tillpos/internal/auth"
	"github.com/Additional-Code/tillpos/internal/config"
	"github.com/Additional-Code/tillpos/internal/presentation/http/middleware"
	"github.com/Additional-Code/tillpos/internal/presentation/http/response"
	httpserver "github.com/Additional-Code/tillpos/internal/server/http"
)

// Harness is an echo instance with an authenticated /api group.
type Harness struct {
	t      *testing.T
	Echo   *echo.Echo
	API    *echo.Group
	Config config.Config
	tokens *auth.TokenManager
}

// Config returns the configuration the harness runs with.
func Config() config.Config {
	var cfg config.Config
	cfg.Observability.ServiceName = "tillpos"
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.Issuer = "tillpos"
	cfg.Auth.TokenTTL = time.Hour
	cfg.Sales.Timezone = "UTC"
	cfg.Sales.Location = time.UTC
	return cfg
}

// New builds a Harness.
func New(t *testing.T) *Harness {
	t.Helper()
	cfg := Config()
	tokens := auth.NewTokenManager(cfg)
	e := httpserver.NewEcho(cfg, nil, zap.NewNop())
	return &Harness{
		t:      t,
		Echo:   e,
		API:    httpserver.NewAPIGroup(e, middleware.NewGuard(tokens)),
		Config: cfg,
		tokens: tokens,
	}
}

// Do sends a request as an operator with role. An empty role sends no token.
func (h *Harness) Do(method, path string, body any, role auth.Role) *httptest.ResponseRecorder {
	h.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if role != "" {
		token, err := h.tokens.Issue(auth.Operator{StaffID: "42", Name: "Kamal", Role: role})
		require.NoError(h.t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.Echo.ServeHTTP(rec, req)
	return rec
}

// Envelope mirrors the response builder's JSON shape.
type Envelope struct {
	Success bool                       `json:"success"`
	Data    json.RawMessage            `json:"data"`
	Error   response.ErrorBody         `json:"error"`
	Meta    map[string]json.RawMessage `json:"meta"`
}

// Decode parses rec's envelope and, when dst is non-nil, its data payload.
func Decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if dst != nil {
		require.NoError(t, json.Unmarshal(env.Data, dst))
	}
	return env
}

// StatusIs fails the test with the body when the status differs.
func StatusIs(t *testing.T, want int, rec *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, want, rec.Code, rec.Body.String())
}
