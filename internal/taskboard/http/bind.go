package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
	"github.com/aussiebroadwan/taskboard/internal/taskboard/service"
	"github.com/aussiebroadwan/taskboard/pkg/tasksdk"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return service.PasswordAcceptable(fl.Field().String())
	})
	_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return domain.TaskStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return domain.TaskPriority(fl.Field().String()).Valid()
	})
	return v
}

// bind decodes a JSON body into dst and validates it. The returned error
// is ready to be written.
func bind(r *http.Request, dst any) *tasksdk.APIError {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return tasksdk.NewAPIError(http.StatusBadRequest, tasksdk.ErrorCodeInvalidRequest, "request body must be valid JSON")
	}

	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return tasksdk.ErrInvalidRequest
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return tasksdk.ValidationError(fields)
}

// readTokenBody accepts a token sent as the raw body, as a JSON string, or
// as the named field of a JSON object.
func readTokenBody(r *http.Request, field string) string {
	body, err := io.ReadAll(io.LimitReader(r.Body, 16<<10))
	if err != nil {
		return ""
	}
	text := strings.TrimSpace(string(body))

	switch {
	case strings.HasPrefix(text, "{"):
		var obj map[string]any
		if json.Unmarshal([]byte(text), &obj) != nil {
			return ""
		}
		s, _ := obj[field].(string)
		return strings.TrimSpace(s)
	case strings.HasPrefix(text, `"`):
		var s string
		if json.Unmarshal([]byte(text), &s) != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	return text
}
