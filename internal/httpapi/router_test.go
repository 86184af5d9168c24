package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"

	accountapp "github.com/dwikikusuma/storefront/internal/account/app"
	accountdomain "github.com/dwikikusuma/storefront/internal/account/domain"
	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/infra/memory"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducts map[string]catalogdomain.Product

func (f fakeProducts) List(ctx context.Context) ([]catalogdomain.Product, error) {
	out := make([]catalogdomain.Product, 0, len(f))
	for _, id := range []string{"A", "B", "C"} {
		if p, ok := f[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakeProducts) Get(ctx context.Context, id string) (catalogdomain.Product, error) {
	p, ok := f[id]
	if !ok {
		return catalogdomain.Product{}, catalogapp.ErrNotFound
	}
	return p, nil
}

type fakeOrders struct {
	mu     sync.Mutex
	orders []orderdomain.Order
}

func (f *fakeOrders) Create(ctx context.Context, token string, o orderdomain.Order) (orderdomain.Order, error) {
	if token != "good" {
		return orderdomain.Order{}, orderapp.ErrUnauthenticated
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = "order-1"
	f.orders = append(f.orders, o)
	return o, nil
}

func (f *fakeOrders) List(ctx context.Context, token string) ([]orderdomain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders, nil
}

func (f *fakeOrders) Get(ctx context.Context, token, id string) (orderdomain.Order, error) {
	return orderdomain.Order{}, orderapp.ErrNotFound
}

type fakeUsers struct{}

func (fakeUsers) Me(ctx context.Context, token string) (accountdomain.User, error) {
	if token != "good" {
		return accountdomain.User{}, accountapp.ErrUnauthenticated
	}
	return accountdomain.User{ID: "u1", Name: "Ann"}, nil
}

func (fakeUsers) UpdateMe(ctx context.Context, token string, upd accountdomain.ProfileUpdate) (accountdomain.User, error) {
	if token != "good" {
		return accountdomain.User{}, accountapp.ErrUnauthenticated
	}
	return accountdomain.User{ID: "u1", Name: upd.Name, Email: upd.Email, Address: upd.Address, Phone: upd.Phone}, nil
}

func (fakeUsers) Login(ctx context.Context, creds accountdomain.Credentials) (accountdomain.Session, error) {
	if creds.Password != "secret" {
		return accountdomain.Session{}, accountapp.ErrUnauthenticated
	}
	return accountdomain.Session{Token: "good", User: accountdomain.User{ID: "u1", Email: creds.Email}}, nil
}

func (fakeUsers) Register(ctx context.Context, creds accountdomain.Credentials) (accountdomain.Session, error) {
	return accountdomain.Session{Token: "fresh", User: accountdomain.User{ID: "u2", Name: creds.Name, Email: creds.Email}}, nil
}

// failingSnapshots rejects writes while fail is set.
type failingSnapshots struct {
	*memory.SnapshotStore
	mu   sync.Mutex
	fail bool
}

func (f *failingSnapshots) Write(ctx context.Context, id string, data []byte) error {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return errors.New("redis down")
	}
	return f.SnapshotStore.Write(ctx, id, data)
}

func (f *failingSnapshots) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

type testEnv struct {
	srv       *httptest.Server
	client    *http.Client
	snapshots *failingSnapshots
	orders    *fakeOrders
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Discard()

	snapshots := &failingSnapshots{SnapshotStore: memory.NewSnapshotStore()}
	sessions, err := cartapp.NewSessions(snapshots, 16, log)
	require.NoError(t, err)

	catalog := catalogapp.NewService(fakeProducts{
		"A": {ID: "A", Name: "Lamp", Price: decimal.NewFromInt(10), Category: "Home", CountInStock: 10},
		"B": {ID: "B", Name: "Mug", Price: decimal.NewFromInt(5), Category: "Kitchen", CountInStock: 10},
	})
	gw := &fakeOrders{}
	orders := orderapp.NewService(gw)
	checkout := checkoutapp.NewService(
		adapter.NewSessionCartReader(),
		adapter.NewCatalogServiceReader(catalog),
		adapter.NewOrderServiceWriter(orders),
		4, log)

	router := NewRouter(Deps{
		Sessions: sessions,
		Catalog:  catalog,
		Orders:   orders,
		Accounts: accountapp.NewService(fakeUsers{}),
		Checkout: checkout,
		Log:      log,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{srv: srv, client: &http.Client{Jar: jar}, snapshots: snapshots, orders: gw}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func itemsOf(body map[string]any) []map[string]any {
	raw, _ := body["items"].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		out = append(out, it.(map[string]any))
	}
	return out
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/cart", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, itemsOf(body))
	assert.Equal(t, "0", body["total"])

	env.do(t, http.MethodPost, "/api/cart", "", map[string]any{"productId": "A"})
	env.do(t, http.MethodPost, "/api/cart", "", map[string]any{"productId": "A"})
	resp, body = env.do(t, http.MethodPost, "/api/cart", "", map[string]any{"productId": "B", "quantity": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get(persistedHeader))

	items := itemsOf(body)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0]["productId"])
	assert.EqualValues(t, 2, items[0]["quantity"])
	assert.Equal(t, "Lamp", items[0]["name"])
	assert.Equal(t, "25", body["total"])
	assert.EqualValues(t, 3, body["count"])

	_, body = env.do(t, http.MethodPatch, "/api/cart/A", "", map[string]any{"quantity": 0})
	assert.Equal(t, "25", body["total"])

	_, body = env.do(t, http.MethodDelete, "/api/cart/A", "", nil)
	assert.Equal(t, "5", body["total"])
	require.Len(t, itemsOf(body), 1)

	_, body = env.do(t, http.MethodDelete, "/api/cart", "", nil)
	assert.Empty(t, itemsOf(body))
	assert.Equal(t, "0", body["total"])
}

func TestCartIsPerSession(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/cart", "", map[string]any{"productId": "A", "quantity": 3})

	// A client without the session cookie sees a fresh cart.
	resp, err := http.Get(env.srv.URL + "/api/cart")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, itemsOf(body))

	var issued bool
	for _, c := range resp.Cookies() {
		if c.Name == DefaultSessionCookie {
			issued = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, issued, "new session cookie is issued")
}

func TestAddToCartErrors(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/cart", "", map[string]any{"productId": "A", "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ARGUMENT", body["error"].(map[string]any)["code"])

	resp, _ = env.do(t, http.MethodPost, "/api/cart", "", map[string]any{"productId": "missing"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/cart", "", map[string]any{"productId": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPatch, "/api/cart/A", "", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPersistenceWarningAndFlush(t *testing.T) {
	env := newTestEnv(t)
	env.snapshots.setFail(true)

	resp, body := env.do(t, http.MethodPost, "/api/cart", "", map[string]any{"productId": "A"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "false", resp.Header.Get(persistedHeader))
	assert.NotEmpty(t, body["warning"])
	assert.Equal(t, false, body["persisted"])
	assert.Len(t, itemsOf(body), 1)

	env.snapshots.setFail(false)
	resp, body = env.do(t, http.MethodPost, "/api/cart/flush", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get(persistedHeader))
	assert.Equal(t, true, body["persisted"])
	assert.Nil(t, body["warning"])
}

func TestCatalogRoutes(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/api/products?category=kitchen", nil)
	require.NoError(t, err)
	resp, err := env.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var products []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	require.Len(t, products, 1)
	assert.Equal(t, "B", products[0]["id"])

	resp2, body := env.do(t, http.MethodGet, "/api/products/A", "", nil)
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Equal(t, "Lamp", body["name"])

	resp2, _ = env.do(t, http.MethodGet, "/api/products/Z", "", nil)
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t)
	details := map[string]any{
		"shippingAddress": map[string]any{"address": "1 Main", "city": "Town", "postalCode": "1", "country": "US"},
		"paymentMethod":   "PayPal",
	}

	resp, _ := env.do(t, http.MethodGet, "/api/checkout/quote", "", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	env.do(t, http.MethodPost, "/api/cart", "", map[string]any{"productId": "A", "quantity": 2})

	resp, body := env.do(t, http.MethodGet, "/api/checkout/quote", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "20", body["total"])
	assert.Equal(t, false, body["hasChanges"])

	resp, _ = env.do(t, http.MethodPost, "/api/checkout", "", details)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_, body = env.do(t, http.MethodGet, "/api/cart", "", nil)
	assert.Len(t, itemsOf(body), 1, "rejected checkout keeps the cart")

	resp, body = env.do(t, http.MethodPost, "/api/checkout", "good", details)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "order-1", body["orderId"])
	assert.Equal(t, "20", body["totalPrice"])

	_, body = env.do(t, http.MethodGet, "/api/cart", "", nil)
	assert.Empty(t, itemsOf(body), "cart cleared after order")
	require.Len(t, env.orders.orders, 1)
}

func TestAccountRoutes(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/api/profile", "good", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "u1", body["id"])

	resp, _ = env.do(t, http.MethodGet, "/api/orders/x", "good", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	upd := map[string]string{"name": "Ann B", "email": "annb@example.com", "address": "1 Main St"}
	resp, _ = env.do(t, http.MethodPut, "/api/profile", "", upd)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = env.do(t, http.MethodPut, "/api/profile", "good", upd)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ann B", body["name"])
	assert.Equal(t, "1 Main St", body["address"])

	resp, body = env.do(t, http.MethodPut, "/api/profile", "good", map[string]string{"name": "Ann", "email": "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ARGUMENT", body["error"].(map[string]any)["code"])
}

func TestAuthRoutes(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": "secret"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "good", body["token"])

	resp, _ = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Bo", "email": "bo@example.com", "password": "pw"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "fresh", body["token"])
	assert.Equal(t, "Bo", body["user"].(map[string]any)["name"])
}

func TestProductSearch(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.client.Get(env.srv.URL + "/api/products?search=MUG")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var products []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	require.Len(t, products, 1)
	assert.Equal(t, "B", products[0]["id"])
}

func TestHealthRoutes(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
