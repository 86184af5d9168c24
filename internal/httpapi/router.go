package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	accountapp "github.com/dwikikusuma/storefront/internal/account/app"
	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

const (
	DefaultSessionCookie = "shop_session-id"
	defaultCookieMaxAge  = 30 * 24 * time.Hour
)

type Deps struct {
	Service  string
	Sessions *cartapp.Sessions
	Catalog  *catalogapp.Service
	Orders   *orderapp.Service
	Accounts *accountapp.Service
	Checkout *checkoutapp.Service
	Log      *slog.Logger

	SessionCookie string
	CookieMaxAge  time.Duration
}

type handler struct {
	catalog  *catalogapp.Service
	orders   *orderapp.Service
	accounts *accountapp.Service
	checkout *checkoutapp.Service
	ping     func(ctx context.Context) bool
	log      *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Service == "" {
		d.Service = "storefront"
	}
	if d.SessionCookie == "" {
		d.SessionCookie = DefaultSessionCookie
	}
	if d.CookieMaxAge <= 0 {
		d.CookieMaxAge = defaultCookieMaxAge
	}

	h := &handler{
		catalog:  d.Catalog,
		orders:   d.Orders,
		accounts: d.Accounts,
		checkout: d.Checkout,
		ping:     d.Sessions.Ping,
		log:      d.Log,
	}

	r := mux.NewRouter()
	r.Use(otelmux.Middleware(d.Service))
	r.Use(logMiddleware(d.Log))

	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.readyz).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.getProduct).Methods(http.MethodGet)
	api.HandleFunc("/orders", h.listOrders).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", h.getOrder).Methods(http.MethodGet)
	api.HandleFunc("/profile", h.profile).Methods(http.MethodGet)
	api.HandleFunc("/profile", h.updateProfile).Methods(http.MethodPut)
	api.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", h.register).Methods(http.MethodPost)

	withSession := sessionMiddleware(d.Sessions, d.SessionCookie, d.CookieMaxAge, d.Log)

	cart := api.PathPrefix("/cart").Subrouter()
	cart.Use(withSession)
	cart.HandleFunc("", h.getCart).Methods(http.MethodGet)
	cart.HandleFunc("", h.addToCart).Methods(http.MethodPost)
	cart.HandleFunc("", h.clearCart).Methods(http.MethodDelete)
	cart.HandleFunc("/flush", h.flushCart).Methods(http.MethodPost)
	cart.HandleFunc("/{productId}", h.updateQuantity).Methods(http.MethodPatch)
	cart.HandleFunc("/{productId}", h.removeFromCart).Methods(http.MethodDelete)

	checkout := api.PathPrefix("/checkout").Subrouter()
	checkout.Use(withSession)
	checkout.HandleFunc("/quote", h.quote).Methods(http.MethodGet)
	checkout.HandleFunc("", h.placeOrder).Methods(http.MethodPost)

	return r
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) readyz(w http.ResponseWriter, r *http.Request) {
	if !h.ping(r.Context()) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "cart store unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
