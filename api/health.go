package api

import (
	"net/http"

	"hn402/ledger"
)

type HealthHandler struct {
	ledger *ledger.Ledger
}

func NewHealthHandler(l *ledger.Ledger) *HealthHandler {
	return &HealthHandler{ledger: l}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	totals, err := h.ledger.Totals(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{
		"status":      "ok",
		"settlements": totals.Settlements,
		"revenue":     totals.Revenue,
	}
	writeJSON(w, r, resp)
}
