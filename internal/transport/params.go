package transport

import (
	"net/http"
	"strconv"

	"shop-inventory/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// parseIDParam reads a positive integer path parameter. On failure it writes
// a 400 response and returns false.
func parseIDParam(w http.ResponseWriter, r *http.Request, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+label+" ID")
		return 0, false
	}
	return id, true
}
