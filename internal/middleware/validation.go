package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s+\-()]{8,20}$`)
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report JSON field names so messages match the request payload
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("trimmed_min", validateTrimmedMin)
	_ = validate.RegisterValidation("simple_email", validateSimpleEmail)
	_ = validate.RegisterValidation("phone", validatePhone)
}

// trimmed_min=N: at least N characters after trimming surrounding space
func validateTrimmedMin(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= limit
}

func validateSimpleEmail(fl validator.FieldLevel) bool {
	return emailPattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

// phone is checked with all whitespace removed
func validatePhone(fl validator.FieldLevel) bool {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, fl.Field().String())
	return phonePattern.MatchString(stripped)
}

// ValidateRequest validates a struct against its validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// DecodeAndValidate decodes JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return ValidateRequest(v)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator errors to a readable format.
// Every failing field is reported, in struct order.
func FormatValidationErrors(err error) []ValidationError {
	var errs []ValidationError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			errs = append(errs, ValidationError{
				Field:   e.Field(),
				Message: getErrorMessage(e),
			})
		}
	}

	return errs
}

// fieldMessages are shown to shoppers at checkout
var fieldMessages = map[string]string{
	"nombre":       "El nombre debe tener al menos 2 caracteres",
	"apellidos":    "Los apellidos deben tener al menos 2 caracteres",
	"email":        "El correo electrónico no es válido",
	"telefono":     "El teléfono debe tener entre 8 y 20 dígitos",
	"direccion":    "La dirección debe tener al menos 5 caracteres",
	"distrito":     "El distrito es obligatorio",
	"ciudad":       "La ciudad es obligatoria",
	"departamento": "El departamento/región es obligatorio",
	"codigoPostal": "El código postal no es válido",
	"notas":        "Las notas no son válidas",
}

// FieldMessage is the shopper-facing message for a checkout field
func FieldMessage(field string) string {
	if msg, ok := fieldMessages[field]; ok {
		return msg
	}
	return "El campo " + field + " no es válido"
}

func getErrorMessage(e validator.FieldError) string {
	if msg, ok := fieldMessages[e.Field()]; ok {
		return msg
	}

	switch e.Tag() {
	case "required":
		return "This field is required"
	case "simple_email":
		return "Invalid email format"
	case "phone":
		return "Invalid phone number"
	case "trimmed_min", "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	default:
		return "Invalid value"
	}
}
