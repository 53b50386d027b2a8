package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
)

// Validation errors.
var (
	// ErrValidation indicates a validation failure occurred.
	ErrValidation = errors.New("validation failed")

	// ErrBinding indicates JSON or query binding failed.
	ErrBinding = errors.New("binding failed")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the singleton validator instance.
// It initializes the validator with custom validations on first call.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their JSON names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}

			return name
		})

		_ = validate.RegisterValidation("notempty", validateNotEmpty)
		_ = validate.RegisterValidation("quotestatus", validateQuoteStatus)
		_ = validate.RegisterValidation("statusfilter", validateStatusFilter)
	})

	return validate
}

// Validate validates a struct using the validator instance.
func Validate(v any) error {
	err := Validator().Struct(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// Validatable is implemented by requests with rules beyond struct tags.
type Validatable interface {
	Validate() error
}

// ValidateAll validates struct tags and calls custom Validate() if implemented.
func ValidateAll(v any) error {
	if err := Validate(v); err != nil {
		return err
	}

	if validatable, ok := v.(Validatable); ok {
		if err := validatable.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}

	return nil
}

// BindAndValidate binds the JSON body to v and validates it.
func BindAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return ValidateAll(v)
}

// BindQueryAndValidate binds query parameters to v and validates it.
func BindQueryAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindQuery(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return ValidateAll(v)
}

// HandleBindError writes the response for an error returned by
// BindAndValidate or BindQueryAndValidate.
func HandleBindError(c *gin.Context, err error) {
	switch {
	case IsValidationError(err):
		HandleValidationErrors(c, ValidationErrors(err))
	case domain.IsValidation(err):
		HandleError(c, err)
	default:
		HandleErrorCode(c, ErrorCodeBadRequest, "malformed request: "+unwrapBinding(err))
	}
}

func unwrapBinding(err error) string {
	msg := err.Error()
	if after, ok := strings.CutPrefix(msg, ErrBinding.Error()+": "); ok {
		return after
	}

	return msg
}

// ValidationErrors extracts field-level error messages from a validator error.
func ValidationErrors(err error) map[string]string {
	fieldErrors := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			fieldErrors[fieldPath(fieldErr)] = validationMessage(fieldErr)
		}
	}

	return fieldErrors
}

// fieldPath names a nested field as "partsLines[0].quantity" without the
// top-level struct name.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}

	return fe.Field()
}

// IsValidationError checks if the error is a validator error.
func IsValidationError(err error) bool {
	var validationErrs validator.ValidationErrors
	return errors.As(err, &validationErrs)
}

// validationMessages maps validation tags to message templates.
// Use {param} as placeholder for the validation parameter.
var validationMessages = map[string]string{
	"required":     "this field is required",
	"notempty":     "must not be empty",
	"quotestatus":  "must be one of: " + statusList(),
	"statusfilter": "must be all or one of: " + statusList(),
	"gte":          "must be greater than or equal to {param}",
	"lte":          "must be less than or equal to {param}",
	"gt":           "must be greater than {param}",
	"lt":           "must be less than {param}",
	"oneof":        "must be one of: {param}",
}

func statusList() string {
	names := make([]string, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		names = append(names, string(s))
	}

	return strings.Join(names, ", ")
}

// validationMessage returns a human-readable message for a validation error.
func validationMessage(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	if tag == "min" || tag == "max" {
		return minMaxMessage(tag, param, fe.Kind())
	}

	if msg, ok := validationMessages[tag]; ok {
		return strings.ReplaceAll(msg, "{param}", param)
	}

	return "failed validation: " + tag
}

// minMaxMessage returns the appropriate message for min/max validation.
func minMaxMessage(tag, param string, kind reflect.Kind) string {
	suffix := ""

	switch kind {
	case reflect.String:
		suffix = " characters"
	case reflect.Slice:
		suffix = " items"
	default:
	}

	if tag == "min" {
		return "must be at least " + param + suffix
	}

	return "must be at most " + param + suffix
}

// validateNotEmpty validates that a string is not empty after trimming whitespace.
func validateNotEmpty(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateQuoteStatus(fl validator.FieldLevel) bool {
	return domain.Status(fl.Field().String()).Valid()
}

// validateStatusFilter accepts a status or "all". Empty is left to
// omitempty/required.
func validateStatusFilter(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == domain.StatusAll || domain.Status(value).Valid()
}
