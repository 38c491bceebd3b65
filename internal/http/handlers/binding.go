package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/you/fintrack/domain"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

// jsonFieldName makes validator report fields by their JSON names
func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

// bindingError turns the first failed binding rule into a ValidationError
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError("", "invalid request body: %v", err)
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_without":
		return domain.NewValidationError(field, "is required")
	case "email":
		return domain.NewValidationError(field, "is not a valid email address")
	case "min":
		return domain.NewValidationError(field, "must be at least %s characters", fe.Param())
	case "max":
		return domain.NewValidationError(field, "must be at most %s characters", fe.Param())
	case "len":
		return domain.NewValidationError(field, "must be exactly %s characters", fe.Param())
	case "number", "numeric":
		return domain.NewValidationError(field, "must contain only digits")
	case "oneof":
		return domain.NewValidationError(field, "must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return domain.NewValidationError(field, "is invalid")
	}
}
