package errors

import (
	"MenuHub/internal/lib/api/cont"
	"MenuHub/internal/lib/api/response"
	"net/http"

	"github.com/go-chi/render"
)

// CompanyAllowed writes 403 and returns false when the caller's key does not
// cover companyID.
func CompanyAllowed(w http.ResponseWriter, r *http.Request, companyID string) bool {
	if cont.CanAccessCompany(r.Context(), companyID) {
		return true
	}
	render.Status(r, http.StatusForbidden)
	render.JSON(w, r, response.Error("Forbidden"))
	return false
}
