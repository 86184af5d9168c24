package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
)

// SessionCartReader reads the cart store injected into the request context.
type SessionCartReader struct{}

func NewSessionCartReader() SessionCartReader {
	return SessionCartReader{}
}

func (SessionCartReader) GetCart(ctx context.Context) ([]checkoutapp.CartItem, error) {
	lines, err := cartapp.FromContext(ctx).Lines()
	if err != nil {
		return nil, err
	}

	items := make([]checkoutapp.CartItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, checkoutapp.CartItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Image:     l.Image,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	return items, nil
}

func (SessionCartReader) RemoveItems(ctx context.Context, productIDs []string) error {
	_, err := cartapp.FromContext(ctx).RemoveProducts(ctx, productIDs...)
	return err
}
