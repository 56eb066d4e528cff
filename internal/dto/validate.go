package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("app_type", func(fl validator.FieldLevel) bool {
		return models.ValidAppType(fl.Field().String())
	})
	_ = v.RegisterValidation("framework", func(fl validator.FieldLevel) bool {
		return models.ValidFramework(fl.Field().String())
	})
	return v
}

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Fields, "; ")
}

// Validate checks req's validate tags. For full writes it also requires
// every field named by req's Missing method, if it has one.
func Validate(req interface{}, full bool) error {
	var fields []string

	if full {
		if m, ok := req.(interface{ Missing() []string }); ok {
			for _, name := range m.Missing() {
				fields = append(fields, name+": this field is required")
			}
		}
	}

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields = append(fields, describe(fe))
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + ": this field is required"
	case "email":
		return fe.Field() + ": enter a valid email address"
	case "url":
		return fe.Field() + ": enter a valid URL"
	case "min", "max":
		return fmt.Sprintf("%s: length must be %s %s", fe.Field(), map[string]string{"min": "at least", "max": "at most"}[fe.Tag()], fe.Param())
	case "app_type":
		return fmt.Sprintf("%s: must be %q or %q", fe.Field(), models.AppTypeWeb, models.AppTypeMobile)
	case "framework":
		return fmt.Sprintf("%s: must be %q or %q", fe.Field(), models.FrameworkDjango, models.FrameworkReactNative)
	case "numeric":
		return fe.Field() + ": must be a decimal number"
	default:
		return fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag())
	}
}
