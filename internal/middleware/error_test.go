package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shop-inventory/internal/apperr"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errorStatuses = []int{
	http.StatusBadRequest,
	http.StatusUnauthorized,
	http.StatusForbidden,
	http.StatusNotFound,
	http.StatusConflict,
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusServiceUnavailable,
}

// Every error response carries the same envelope regardless of status
func TestProperty_ErrorEnvelope(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("status, code, message and RFC3339 timestamp are consistent", prop.ForAll(
		func(i int, message string) bool {
			status := errorStatuses[i]

			w := httptest.NewRecorder()
			RespondWithError(w, status, message)

			if w.Code != status || w.Header().Get("Content-Type") != "application/json" {
				return false
			}

			var response ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}
			if response.Error.Code != http.StatusText(status) || response.Error.Message != message {
				return false
			}
			if response.Error.Details != nil {
				return false
			}
			_, err := time.Parse(time.RFC3339, response.Error.Timestamp)
			return err == nil
		},
		gen.IntRange(0, len(errorStatuses)-1),
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Client-facing kinds keep their message; the status follows the kind
func TestProperty_AppErrorsKeepTheirMessage(t *testing.T) {
	kinds := []apperr.Kind{
		apperr.KindValidation,
		apperr.KindNotFound,
		apperr.KindConflict,
		apperr.KindUnauthorized,
		apperr.KindForbidden,
	}

	properties := gopter.NewProperties(nil)

	properties.Property("rendered status and message match the error", prop.ForAll(
		func(i int, id int64) bool {
			appErr := apperr.New(kinds[i], fmt.Sprintf("Catalog with ID %d not found", id)).WithOp("GetCatalog")

			w := httptest.NewRecorder()
			RespondWithAppError(w, zap.NewNop(), fmt.Errorf("handler: %w", appErr))

			var response ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}
			return w.Code == appErr.HTTPStatus() && response.Error.Message == appErr.Message
		},
		gen.IntRange(0, len(kinds)-1),
		gen.Int64Range(1, 1<<40),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRespondWithValidationErrors(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithValidationErrors(w, []ValidationError{{Field: "price", Message: "This field is required"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, "validation failed", detail.Message)

	fields, ok := detail.Details["validation_errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, fields, 1)
	assert.Equal(t, "price", fields[0].(map[string]interface{})["field"])
}

func TestRespondWithJSON_AndEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithJSON(w, http.StatusCreated, map[string]string{"name": "Books"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"name":"Books"}`, w.Body.String())

	w = httptest.NewRecorder()
	RespondEmpty(w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response.Error
}

func TestRespondWithAppError_MapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperr.Validation("catalog ID must be positive"), http.StatusBadRequest},
		{apperr.NotFound("catalog with ID %d not found", 3), http.StatusNotFound},
		{apperr.Conflict("catalog with name %q already exists", "Books"), http.StatusConflict},
		{apperr.Unauthorized("invalid token"), http.StatusUnauthorized},
		{apperr.Forbidden("insufficient permissions"), http.StatusForbidden},
		{fmt.Errorf("wrapped: %w", apperr.NotFound("product with ID %d not found", 9)), http.StatusNotFound},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		RespondWithAppError(w, zap.NewNop(), tc.err)

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		var appErr *apperr.Error
		require.True(t, errors.As(tc.err, &appErr))
		assert.Equal(t, appErr.Message, decodeError(t, w).Message)
	}
}

func TestRespondWithAppError_HidesInternalDetails(t *testing.T) {
	for _, err := range []error{
		apperr.Internal("failed to list catalogs", errors.New("pq: connection refused")),
		errors.New("dial tcp 10.0.0.1:5432: i/o timeout"),
	} {
		w := httptest.NewRecorder()
		RespondWithAppError(w, zap.NewNop(), err)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		detail := decodeError(t, w)
		assert.Equal(t, "internal server error", detail.Message)
		assert.NotContains(t, w.Body.String(), "connection refused")
		assert.NotContains(t, w.Body.String(), "10.0.0.1")
	}
}

func TestErrorHandlingMiddleware_RecoversPanics(t *testing.T) {
	handler := ErrorHandlingMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/catalogs", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", decodeError(t, w).Code)
}
