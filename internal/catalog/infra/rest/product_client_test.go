package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dwikikusuma/storefront/internal/backend"
	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogBackend(t *testing.T) *ProductClient {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"_id":"p1","name":"Lamp","price":19.99,"image":"/lamp.jpg","category":"Home","countInStock":3,"rating":4.5,"numReviews":12},
			{"id":"p2","name":"Chair","price":"45.00","category":"Home"},
			{"name":"orphan","price":1}
		]`))
	})
	mux.HandleFunc("/api/products/p1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"_id":"p1","name":"Lamp","price":19.99,"countInStock":0}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewProductClient(backend.NewClient(srv.URL + "/api"))
}

func TestProductClient_List(t *testing.T) {
	got, err := newCatalogBackend(t).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "19.99", got[0].Price.String())
	assert.Equal(t, 3, got[0].CountInStock)
	assert.Equal(t, 12, got[0].NumReviews)
	assert.Equal(t, "p2", got[1].ID)
	assert.Equal(t, "45", got[1].Price.String())
}

func TestProductClient_Get(t *testing.T) {
	c := newCatalogBackend(t)

	p, err := c.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Lamp", p.Name)
	assert.False(t, p.InStock())

	_, err = c.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, app.ErrNotFound)
}
