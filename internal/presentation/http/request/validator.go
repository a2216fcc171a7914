package request

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/tillpos/pkg/errorbank"
)

// Validator adapts go-playground/validator to echo.Validator. Failures come
// back as validation AppErrors keyed by JSON field name.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds a Validator that reports json/query tag names.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return &Validator{v: v}
}

// Validate implements echo.Validator.
func (r *Validator) Validate(i any) error {
	err := r.v.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errorbank.Validation("invalid request", errorbank.WithCause(err))
	}

	opts := []errorbank.Option{errorbank.WithCause(err)}
	for _, fe := range fieldErrs {
		opts = append(opts, errorbank.WithDetail(fieldPath(fe.Namespace()), fe.Tag()))
	}
	return errorbank.Validation("invalid request", opts...)
}

// Bind decodes the request into dst and validates it.
func Bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errorbank.Validation("invalid payload", errorbank.WithCause(err))
	}
	if err := c.Validate(dst); err != nil {
		return errorbank.From(err)
	}
	return nil
}

// fieldPath drops the root struct name, e.g. "SettleRequest.items[0].qty"
// becomes "items[0].qty".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
