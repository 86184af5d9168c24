package rest

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/dwikikusuma/storefront/internal/backend"
	"github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type createItemDTO struct {
	Product  string          `json:"product"`
	Name     string          `json:"name"`
	Image    string          `json:"image"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type createOrderDTO struct {
	OrderItems      []createItemDTO        `json:"orderItems"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	TotalPrice      decimal.Decimal        `json:"totalPrice"`
}

type productRefDTO struct {
	ID    string          `json:"_id"`
	Name  string          `json:"name"`
	Image string          `json:"image"`
	Price decimal.Decimal `json:"price"`
}

// orderItemDTO accepts "product" either as a bare id or as a populated
// product document.
type orderItemDTO struct {
	Product  json.RawMessage `json:"product"`
	Name     string          `json:"name"`
	Image    string          `json:"image"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func (d orderItemDTO) toDomain() domain.OrderItem {
	item := domain.OrderItem{Name: d.Name, Image: d.Image, Price: d.Price, Quantity: d.Quantity}

	var id string
	if json.Unmarshal(d.Product, &id) == nil {
		item.ProductID = id
		return item
	}
	var ref productRefDTO
	if json.Unmarshal(d.Product, &ref) == nil {
		item.ProductID = ref.ID
		if item.Name == "" {
			item.Name = ref.Name
		}
		if item.Image == "" {
			item.Image = ref.Image
		}
		if item.Price.IsZero() {
			item.Price = ref.Price
		}
	}
	return item
}

type userRefDTO struct {
	ID string `json:"_id"`
}

type orderDTO struct {
	ID              string                 `json:"_id"`
	User            json.RawMessage        `json:"user"`
	OrderItems      []orderItemDTO         `json:"orderItems"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	TotalPrice      decimal.Decimal        `json:"totalPrice"`
	IsPaid          bool                   `json:"isPaid"`
	PaidAt          *time.Time             `json:"paidAt"`
	IsDelivered     bool                   `json:"isDelivered"`
	DeliveredAt     *time.Time             `json:"deliveredAt"`
	Status          string                 `json:"status"`
	CreatedAt       time.Time              `json:"createdAt"`
}

func (d orderDTO) toDomain() domain.Order {
	o := domain.Order{
		ID:              d.ID,
		ShippingAddress: d.ShippingAddress,
		PaymentMethod:   d.PaymentMethod,
		TotalPrice:      d.TotalPrice,
		IsPaid:          d.IsPaid,
		PaidAt:          d.PaidAt,
		IsDelivered:     d.IsDelivered,
		DeliveredAt:     d.DeliveredAt,
		Status:          d.Status,
		CreatedAt:       d.CreatedAt,
		Items:           make([]domain.OrderItem, 0, len(d.OrderItems)),
	}
	for _, it := range d.OrderItems {
		o.Items = append(o.Items, it.toDomain())
	}

	var userID string
	if json.Unmarshal(d.User, &userID) == nil {
		o.UserID = userID
	} else {
		var ref userRefDTO
		if json.Unmarshal(d.User, &ref) == nil {
			o.UserID = ref.ID
		}
	}
	return o
}

type OrderClient struct {
	api *backend.Client
}

func NewOrderClient(api *backend.Client) *OrderClient {
	return &OrderClient{api: api}
}

func (c *OrderClient) Create(ctx context.Context, token string, order domain.Order) (domain.Order, error) {
	in := createOrderDTO{
		OrderItems:      make([]createItemDTO, 0, len(order.Items)),
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		TotalPrice:      order.TotalPrice,
	}
	for _, it := range order.Items {
		in.OrderItems = append(in.OrderItems, createItemDTO{
			Product:  it.ProductID,
			Name:     it.Name,
			Image:    it.Image,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}

	var out orderDTO
	if err := c.api.Post(ctx, "/orders", token, in, &out); err != nil {
		return domain.Order{}, mapError(err, "create order")
	}
	return out.toDomain(), nil
}

func (c *OrderClient) List(ctx context.Context, token string) ([]domain.Order, error) {
	var rows []orderDTO
	if err := c.api.Get(ctx, "/orders", token, &rows); err != nil {
		return nil, mapError(err, "list orders")
	}
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (c *OrderClient) Get(ctx context.Context, token, id string) (domain.Order, error) {
	var row orderDTO
	if err := c.api.Get(ctx, "/orders/"+url.PathEscape(id), token, &row); err != nil {
		return domain.Order{}, mapError(err, "get order "+id)
	}
	return row.toDomain(), nil
}

func mapError(err error, op string) error {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return app.ErrUnauthenticated
	case errors.Is(err, backend.ErrNotFound):
		return app.ErrNotFound
	default:
		return errors.Wrap(err, op)
	}
}
