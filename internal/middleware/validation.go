package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// maxBodyBytes bounds request bodies decoded by DecodeAndValidate
const maxBodyBytes = 1 << 20

// ErrEmptyBody is returned when a request carries no JSON document
var ErrEmptyBody = errors.New("request body is empty")

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names rather than Go field names
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// Numeric tags (gte, lte) compare a decimal by its float value
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// ValidateRequest validates the request body against a struct with validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// DecodeError reports a request body that is not a well-formed JSON document
// of the expected shape
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "invalid request body: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeAndValidate decodes the JSON request body and validates it. Unknown
// fields are rejected.
func DecodeAndValidate(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &DecodeError{Err: ErrEmptyBody}
		}
		return &DecodeError{Err: err}
	}
	if decoder.More() {
		return &DecodeError{Err: errors.New("unexpected data after JSON document")}
	}

	return ValidateRequest(v)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator errors to a readable format
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

// RespondWithRequestError renders the outcome of DecodeAndValidate as a 400
func RespondWithRequestError(w http.ResponseWriter, err error) {
	if validationErrors := FormatValidationErrors(err); len(validationErrors) > 0 {
		RespondWithValidationErrors(w, validationErrors)
		return
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		RespondWithError(w, http.StatusBadRequest, decodeErr.Error())
		return
	}

	RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	case "lt":
		return "Value must be less than " + e.Param()
	case "notblank":
		return "Value must not be blank"
	default:
		return fmt.Sprintf("Invalid value (%s)", e.Tag())
	}
}
