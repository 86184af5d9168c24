package httpapi

import (
	"net/http"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

type quoteResponse struct {
	domain.Quote
	HasChanges bool `json:"hasChanges"`
}

func (h *handler) quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.checkout.Quote(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{Quote: q, HasChanges: q.HasChanges()})
}

func (h *handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var details domain.Details
	if err := decodeBody(r, &details); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	receipt, err := h.checkout.PlaceOrder(r.Context(), bearerToken(r), details)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if receipt.Warning != "" {
		w.Header().Set(persistedHeader, "false")
	}
	writeJSON(w, http.StatusCreated, receipt)
}
