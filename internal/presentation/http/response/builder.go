package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/tillpos/pkg/errorbank"
)

// errorKey is where the rendered error is kept for the request logger.
const errorKey = "response.error"

// Envelope is the body of every API response.
type Envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *ErrorBody     `json:"error,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// ErrorBody describes a failed request. The cause of an error never appears here.
type ErrorBody struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorFrom returns the error rendered for the request, if any.
func ErrorFrom(c echo.Context) error {
	err, _ := c.Get(errorKey).(error)
	return err
}

// Fail renders err as an error envelope.
func Fail(c echo.Context, err error) error {
	return New(c).WithError(err).Build()
}

// Builder accumulates a response before it is written.
type Builder struct {
	ctx    echo.Context
	status int
	data   any
	err    error
	meta   map[string]any
}

func New(ctx echo.Context) *Builder {
	return &Builder{ctx: ctx, status: http.StatusOK}
}

// WithStatus overrides the success status code. Error statuses come from the error kind
// unless an explicit 4xx/5xx is set.
func (b *Builder) WithStatus(status int) *Builder {
	if status > 0 {
		b.status = status
	}
	return b
}

func (b *Builder) WithData(data any) *Builder {
	b.data = data
	return b
}

func (b *Builder) WithError(err error) *Builder {
	b.err = err
	return b
}

func (b *Builder) WithMeta(key string, value any) *Builder {
	if key == "" {
		return b
	}
	if b.meta == nil {
		b.meta = make(map[string]any)
	}
	b.meta[key] = value
	return b
}

// Build writes the envelope.
func (b *Builder) Build() error {
	env := Envelope{Success: b.err == nil, Meta: b.meta}
	status := b.status

	if b.err != nil {
		appErr := errorbank.From(b.err)
		b.ctx.Set(errorKey, b.err)
		if status < http.StatusBadRequest {
			status = appErr.StatusCode()
		}
		env.Error = &ErrorBody{
			Kind:    string(appErr.Kind()),
			Message: appErr.Message(),
			Details: appErr.Details(),
		}
	} else {
		env.Data = b.data
	}

	return b.ctx.JSON(status, env)
}
