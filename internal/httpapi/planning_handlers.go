package httpapi

import (
	"net/http"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/domain"
)

// handlePlanning serves /api/planning/check-availability and /api/planning/calculate-time.
func (a *API) handlePlanning(w http.ResponseWriter, r *http.Request, rest []string) {
	if len(rest) != 1 || (rest[0] != "check-availability" && rest[0] != "calculate-time") {
		writeError(w, r, notFound(r))
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, r, methodNotSupported(r))
		return
	}
	productID, quantity, err := planningQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rest[0] == "check-availability" {
		res, err := a.planning.CheckAvailability(r.Context(), productID, quantity)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}
	res, err := a.planning.CalculateTime(r.Context(), productID, quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func planningQuery(r *http.Request) (int64, int, error) {
	productID, err := queryInt(r, "productId")
	if err != nil {
		return 0, 0, err
	}
	quantity, err := queryInt(r, "quantity")
	if err != nil {
		return 0, 0, err
	}
	if quantity > domain.MaxCount {
		return 0, 0, apperr.Validationf("quantity: must not exceed %d", domain.MaxCount)
	}
	return productID, int(quantity), nil
}
