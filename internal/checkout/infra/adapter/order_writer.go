package adapter

import (
	"context"

	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
)

type OrderServiceWriter struct {
	svc *orderapp.Service
}

func NewOrderServiceWriter(svc *orderapp.Service) *OrderServiceWriter {
	return &OrderServiceWriter{svc: svc}
}

func (w *OrderServiceWriter) PlaceOrder(ctx context.Context, token string, items []checkoutapp.CartItem, details domain.Details) (checkoutapp.PlacedOrder, error) {
	req := orderdomain.CreateOrderRequest{
		Items: make([]orderdomain.OrderItem, 0, len(items)),
		ShippingAddress: orderdomain.ShippingAddress{
			Address:    details.ShippingAddress.Address,
			City:       details.ShippingAddress.City,
			PostalCode: details.ShippingAddress.PostalCode,
			Country:    details.ShippingAddress.Country,
		},
		PaymentMethod: details.PaymentMethod,
	}
	for _, it := range items {
		req.Items = append(req.Items, orderdomain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Price:     it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}

	o, err := w.svc.CreateOrder(ctx, token, req)
	if err != nil {
		return checkoutapp.PlacedOrder{}, err
	}
	return checkoutapp.PlacedOrder{ID: o.ID, Status: o.Status, TotalPrice: o.TotalPrice}, nil
}
