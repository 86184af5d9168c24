package rest

import (
	"context"
	"net/url"

	"github.com/dwikikusuma/storefront/internal/backend"
	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// productDTO is the backend's product document. Older payloads carry "id"
// instead of "_id".
type productDTO struct {
	MongoID      string          `json:"_id"`
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image"`
	Category     string          `json:"category"`
	CountInStock int             `json:"countInStock"`
	Rating       float64         `json:"rating"`
	NumReviews   int             `json:"numReviews"`
}

func (d productDTO) toDomain() domain.Product {
	id := d.MongoID
	if id == "" {
		id = d.ID
	}
	return domain.Product{
		ID:           id,
		Name:         d.Name,
		Description:  d.Description,
		Price:        d.Price,
		Image:        d.Image,
		Category:     d.Category,
		CountInStock: d.CountInStock,
		Rating:       d.Rating,
		NumReviews:   d.NumReviews,
	}
}

type ProductClient struct {
	api *backend.Client
}

func NewProductClient(api *backend.Client) *ProductClient {
	return &ProductClient{api: api}
}

func (c *ProductClient) List(ctx context.Context) ([]domain.Product, error) {
	var rows []productDTO
	if err := c.api.Get(ctx, "/products", "", &rows); err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p := row.toDomain()
		if p.ID == "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *ProductClient) Get(ctx context.Context, id string) (domain.Product, error) {
	var row productDTO
	err := c.api.Get(ctx, "/products/"+url.PathEscape(id), "", &row)
	if errors.Is(err, backend.ErrNotFound) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, errors.Wrapf(err, "get product %s", id)
	}

	p := row.toDomain()
	if p.ID == "" {
		p.ID = id
	}
	return p, nil
}
