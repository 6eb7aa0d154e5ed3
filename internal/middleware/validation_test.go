package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test struct with validation tags
type testProductRequest struct {
	Name          string           `json:"name" validate:"required,notblank,max=255"`
	Price         *decimal.Decimal `json:"price" validate:"required,gte=0"`
	StockQuantity *int             `json:"stockQuantity,omitempty" validate:"omitempty,gte=0"`
}

func newJSONRequest(t *testing.T, body interface{}) *http.Request {
	t.Helper()
	reqBody, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeName bool, includePrice bool, includeStock bool) bool {
			reqMap := make(map[string]interface{})

			if includeName {
				reqMap["name"] = "Laptop"
			}
			if includePrice {
				reqMap["price"] = 999.99
			}
			if includeStock {
				reqMap["stockQuantity"] = 10
			}

			var testReq testProductRequest
			err := DecodeAndValidate(newJSONRequest(t, reqMap), &testReq)

			if includeName && includePrice {
				return err == nil
			}
			return err != nil && len(FormatValidationErrors(err)) > 0
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Price accepts zero and positive values and rejects negative ones
func TestProperty_PriceRangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("negative prices are rejected", prop.ForAll(
		func(cents int64) bool {
			price := decimal.New(cents, -2)
			reqMap := map[string]interface{}{
				"name":  "Laptop",
				"price": price,
			}

			var testReq testProductRequest
			err := DecodeAndValidate(newJSONRequest(t, reqMap), &testReq)

			if cents >= 0 {
				return err == nil && testReq.Price.Equal(price)
			}
			return err != nil
		},
		gen.Int64Range(-100000, 100000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ValidationErrorsAreFormatted(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("validation errors include field information", prop.ForAll(
		func(stock int) bool {
			reqMap := map[string]interface{}{
				"name":          "Laptop",
				"price":         "-1.00",
				"stockQuantity": stock,
			}

			var testReq testProductRequest
			err := DecodeAndValidate(newJSONRequest(t, reqMap), &testReq)
			if err == nil {
				return false
			}

			validationErrors := FormatValidationErrors(err)
			if len(validationErrors) == 0 {
				return false
			}

			for _, ve := range validationErrors {
				if ve.Field == "" || ve.Message == "" {
					return false
				}
			}

			return validationErrors[0].Field == "price"
		},
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestDecodeAndValidate_RejectsUnknownFields(t *testing.T) {
	var testReq testProductRequest
	err := DecodeAndValidate(newJSONRequest(t, map[string]interface{}{
		"name":     "Laptop",
		"price":    "10.00",
		"discount": 5,
	}), &testReq)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Contains(t, err.Error(), "discount")
}

func TestDecodeAndValidate_RejectsMalformedBodies(t *testing.T) {
	for _, body := range []string{"", "{", `{"name": "a", "price": "ten"}`, `{"name":"a","price":"1"} {}`} {
		req := httptest.NewRequest("POST", "/test", strings.NewReader(body))

		var testReq testProductRequest
		err := DecodeAndValidate(req, &testReq)

		var decodeErr *DecodeError
		assert.True(t, errors.As(err, &decodeErr), body)
	}
}

func TestDecodeAndValidate_RejectsBlankName(t *testing.T) {
	var testReq testProductRequest
	err := DecodeAndValidate(newJSONRequest(t, map[string]interface{}{
		"name":  "   ",
		"price": "1.00",
	}), &testReq)

	validationErrors := FormatValidationErrors(err)
	require.Len(t, validationErrors, 1)
	assert.Equal(t, "name", validationErrors[0].Field)
	assert.Equal(t, "Value must not be blank", validationErrors[0].Message)
}

func TestRespondWithRequestError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithRequestError(w, &DecodeError{Err: ErrEmptyBody})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "request body is empty")

	var testReq testProductRequest
	err := DecodeAndValidate(newJSONRequest(t, map[string]interface{}{"price": "1"}), &testReq)
	w = httptest.NewRecorder()
	RespondWithRequestError(w, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_errors")
}
