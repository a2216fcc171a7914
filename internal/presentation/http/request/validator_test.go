package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/tillpos/internal/dto"
	"github.com/Additional-Code/tillpos/pkg/errorbank"
)

func newContext(body string) echo.Context {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestBind_Valid(t *testing.T) {
	var payload dto.MemberRequest
	err := Bind(newContext(`{"name":"Nimal","phone":"0771234567","email":"nimal@example.com"}`), &payload)
	require.NoError(t, err)
	assert.Equal(t, "Nimal", payload.Name)
}

func TestBind_FieldErrorsUseJSONNames(t *testing.T) {
	var payload dto.MemberRequest
	err := Bind(newContext(`{"name":"","phone":"0771234567","email":"not-an-email"}`), &payload)
	require.Error(t, err)

	appErr := errorbank.From(err)
	assert.Equal(t, errorbank.KindValidation, appErr.Kind())
	assert.Equal(t, "required", appErr.Details()["name"])
	assert.Equal(t, "email", appErr.Details()["email"])
}

func TestBind_NestedCartLines(t *testing.T) {
	var payload dto.CartRequest
	err := Bind(newContext(`{"items":[{"name":"Tea","price":10,"qty":0}]}`), &payload)
	require.Error(t, err)
	assert.Equal(t, "min", errorbank.From(err).Details()["items[0].qty"])
}

func TestBind_EmptyCart(t *testing.T) {
	var payload dto.CartRequest
	err := Bind(newContext(`{"items":[]}`), &payload)
	require.Error(t, err)
	assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))
}

func TestBind_MalformedJSON(t *testing.T) {
	var payload dto.MemberRequest
	err := Bind(newContext(`{"name":`), &payload)
	require.Error(t, err)
	assert.Equal(t, "invalid payload", errorbank.From(err).Message())
}
