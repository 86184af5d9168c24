package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("order not found")
	ErrUnauthenticated = errors.New("authentication required")
)

type Service struct {
	gateway OrderGateway
}

func NewService(gateway OrderGateway) *Service {
	return &Service{gateway: gateway}
}

func (s *Service) CreateOrder(ctx context.Context, token string, req domain.CreateOrderRequest) (domain.Order, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Order{}, ErrUnauthenticated
	}
	if len(req.Items) == 0 {
		return domain.Order{}, fmt.Errorf("%w: order has no items", ErrInvalidInput)
	}
	if err := validateAddress(req.ShippingAddress); err != nil {
		return domain.Order{}, err
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return domain.Order{}, fmt.Errorf("%w: payment method is required", ErrInvalidInput)
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	total := decimal.Zero

	for i, item := range req.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return domain.Order{}, fmt.Errorf("%w: item %d: product id is required", ErrInvalidInput, i)
		}
		if item.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("%w: item %d: quantity must be positive, got %d", ErrInvalidInput, i, item.Quantity)
		}
		if item.Price.IsNegative() {
			return domain.Order{}, fmt.Errorf("%w: item %d: price cannot be negative, got %s", ErrInvalidInput, i, item.Price)
		}

		items = append(items, item)
		total = total.Add(item.LineTotal())
	}

	order := domain.Order{
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   strings.TrimSpace(req.PaymentMethod),
		TotalPrice:      total,
		Status:          domain.StatusPending,
	}

	created, err := s.gateway.Create(ctx, token, order)
	if err != nil {
		return domain.Order{}, err
	}
	if created.Status == "" {
		created.Status = domain.StatusPending
	}
	return created, nil
}

func (s *Service) ListOrders(ctx context.Context, token string) ([]domain.Order, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrUnauthenticated
	}
	return s.gateway.List(ctx, token)
}

func (s *Service) GetOrder(ctx context.Context, token, id string) (domain.Order, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Order{}, ErrUnauthenticated
	}
	if strings.TrimSpace(id) == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrInvalidInput)
	}
	return s.gateway.Get(ctx, token, id)
}

func validateAddress(a domain.ShippingAddress) error {
	fields := []struct{ name, value string }{
		{"address", a.Address},
		{"city", a.City},
		{"postal code", a.PostalCode},
		{"country", a.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: shipping %s is required", ErrInvalidInput, f.name)
		}
	}
	return nil
}
