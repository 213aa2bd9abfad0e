package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()-]{7,20}$`)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// FormatValidationErrors maps each failing field, keyed by its JSON path
// without the root struct, to a message.
func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errs
	}

	for _, e := range validationErrors {
		field := e.Namespace()
		if idx := strings.Index(field, "."); idx >= 0 {
			field = field[idx+1:]
		}
		switch e.Tag() {
		case "required", "required_if":
			errs[field] = field + " is required"
		case "email":
			errs[field] = field + " must be a valid email address"
		case "phone":
			errs[field] = field + " must be a valid phone number"
		case "oneof":
			errs[field] = field + " must be one of: " + e.Param()
		case "datetime":
			errs[field] = field + " must match format " + e.Param()
		case "min":
			errs[field] = field + " must be at least " + e.Param()
		case "max":
			errs[field] = field + " must be at most " + e.Param()
		case "gte":
			errs[field] = field + " must be greater than or equal to " + e.Param()
		case "lte":
			errs[field] = field + " must be less than or equal to " + e.Param()
		default:
			errs[field] = field + " is invalid"
		}
	}

	return errs
}
