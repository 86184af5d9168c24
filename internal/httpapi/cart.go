package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

const persistedHeader = "X-Cart-Persisted"

type cartResponse struct {
	Items     []cartdomain.CartLine `json:"items"`
	Count     int                   `json:"count"`
	Total     decimal.Decimal       `json:"total"`
	Persisted bool                  `json:"persisted"`
	Warning   string                `json:"warning,omitempty"`
}

func newCartResponse(s cartapp.Snapshot) cartResponse {
	items := s.Lines
	if items == nil {
		items = []cartdomain.CartLine{}
	}
	count := 0
	for _, l := range items {
		count += l.Quantity
	}
	return cartResponse{Items: items, Count: count, Total: s.Total, Persisted: s.Persisted}
}

// writeCart answers a cart operation. A persistence warning still returns the
// new cart with 200.
func (h *handler) writeCart(w http.ResponseWriter, r *http.Request, snap cartapp.Snapshot, err error) {
	if err != nil && !cartapp.IsPersistenceWarning(err) {
		writeError(w, r, h.log, err)
		return
	}

	resp := newCartResponse(snap)
	if err != nil {
		resp.Warning = "cart saved in memory only, retry with POST /api/cart/flush"
		resp.Persisted = false
	}
	w.Header().Set(persistedHeader, fmt.Sprint(resp.Persisted))
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) getCart(w http.ResponseWriter, r *http.Request) {
	snap, err := cartapp.FromContext(r.Context()).Snapshot()
	h.writeCart(w, r, snap, err)
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

func (h *handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if qty < 1 {
		writeError(w, r, h.log, fmt.Errorf("%w: quantity must be at least 1, got %d", cartapp.ErrInvalidArgument, qty))
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	snap, err := cartapp.FromContext(r.Context()).AddToCart(r.Context(), cartdomain.Product{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Image: p.Image,
	}, qty)
	h.writeCart(w, r, snap, err)
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if req.Quantity == nil {
		writeError(w, r, h.log, fmt.Errorf("%w: quantity is required", errBadRequest))
		return
	}

	snap, err := cartapp.FromContext(r.Context()).UpdateQuantity(r.Context(), mux.Vars(r)["productId"], *req.Quantity)
	h.writeCart(w, r, snap, err)
}

func (h *handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	snap, err := cartapp.FromContext(r.Context()).RemoveFromCart(r.Context(), mux.Vars(r)["productId"])
	h.writeCart(w, r, snap, err)
}

func (h *handler) clearCart(w http.ResponseWriter, r *http.Request) {
	snap, err := cartapp.FromContext(r.Context()).ClearCart(r.Context())
	h.writeCart(w, r, snap, err)
}

func (h *handler) flushCart(w http.ResponseWriter, r *http.Request) {
	snap, err := cartapp.FromContext(r.Context()).Flush(r.Context())
	h.writeCart(w, r, snap, err)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed json body: %v", errBadRequest, err)
	}
	return nil
}
