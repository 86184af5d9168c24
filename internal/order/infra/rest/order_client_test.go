package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dwikikusuma/storefront/internal/backend"
	"github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderClient_Create(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"o1","user":"u1","orderItems":[{"product":"A","name":"Lamp","price":10,"quantity":2}],"totalPrice":20,"status":"pending","createdAt":"2024-05-01T10:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewOrderClient(backend.NewClient(srv.URL + "/api"))
	order, err := c.Create(context.Background(), "tok", domain.Order{
		Items:         []domain.OrderItem{{ProductID: "A", Name: "Lamp", Price: decimal.NewFromInt(10), Quantity: 2}},
		PaymentMethod: "Card",
		TotalPrice:    decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	items := got["orderItems"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].(map[string]any)["product"])
	assert.Equal(t, "20", got["totalPrice"])
	assert.Equal(t, "Card", got["paymentMethod"])

	assert.Equal(t, "o1", order.ID)
	assert.Equal(t, "u1", order.UserID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "A", order.Items[0].ProductID)
	assert.Equal(t, 2024, order.CreatedAt.Year())
}

func TestOrderClient_ListPopulatedProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"_id":"o1","user":{"_id":"u1","name":"Ann"},"orderItems":[{"product":{"_id":"A","name":"Lamp","image":"/l.jpg","price":9.5},"quantity":3}],"totalPrice":28.5,"status":"shipped","isPaid":true}]`))
	}))
	defer srv.Close()

	orders, err := NewOrderClient(backend.NewClient(srv.URL)).List(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, "u1", o.UserID)
	assert.Equal(t, domain.StatusShipped, o.Status)
	assert.True(t, o.IsPaid)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "A", o.Items[0].ProductID)
	assert.Equal(t, "Lamp", o.Items[0].Name)
	assert.Equal(t, "/l.jpg", o.Items[0].Image)
	assert.Equal(t, "28.5", o.Items[0].LineTotal().String())
}

func TestOrderClient_ErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewOrderClient(backend.NewClient(srv.URL))

	_, err := c.List(context.Background(), "")
	assert.ErrorIs(t, err, app.ErrUnauthenticated)

	_, err = c.Get(context.Background(), "tok", "missing")
	assert.ErrorIs(t, err, app.ErrNotFound)
}
