package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/order/domain"
)

// OrderGateway submits and reads orders on behalf of the bearer of token.
type OrderGateway interface {
	Create(ctx context.Context, token string, order domain.Order) (domain.Order, error)
	List(ctx context.Context, token string) ([]domain.Order, error)
	Get(ctx context.Context, token, id string) (domain.Order, error)
}
