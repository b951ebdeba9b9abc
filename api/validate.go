package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/warp/payroll-engine/generic"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		c, err := generic.ParseClockTime(fl.Field().String())
		return err == nil && c.Valid()
	})
	return v
}

// decode reads a JSON body into dst and validates it.
func (h *Handler) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fieldError("body", "invalid JSON: "+err.Error())
	}
	return h.check(dst)
}

// check runs struct validation and maps failures to generic.ValidationErrors.
func (h *Handler) check(v any) error {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate request: %w", err)
	}
	var out generic.ValidationErrors
	for _, fe := range verrs {
		out.Add(fe.Field(), reason(fe))
	}
	return out
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "datetime":
		return "must be YYYY-MM-DD"
	case "clock":
		return "must be HH:MM"
	case "oneof":
		return "must be one of " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "excludesall":
		return "must not contain any of " + fe.Param()
	}
	return "invalid (" + fe.Tag() + ")"
}

func fieldError(field, reason string) error {
	return generic.ValidationErrors{{Field: field, Reason: reason}}
}
