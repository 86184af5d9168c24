package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// CartReader exposes the cart of the session carried by ctx.
type CartReader interface {
	GetCart(ctx context.Context) ([]CartItem, error)
	RemoveItems(ctx context.Context, productIDs []string) error
}

type CartItem struct {
	ProductID string
	Name      string
	Image     string
	UnitPrice decimal.Decimal
	Quantity  int
}

type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (Product, error)
}

type Product struct {
	ID           string
	Name         string
	Price        decimal.Decimal
	CountInStock int
}

type OrderWriter interface {
	PlaceOrder(ctx context.Context, token string, items []CartItem, details domain.Details) (PlacedOrder, error)
}

type PlacedOrder struct {
	ID         string
	Status     string
	TotalPrice decimal.Decimal
}

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrProductNotFound = errors.New("product no longer in catalog")
)

type Service struct {
	Cart    CartReader
	Catalog CatalogReader
	Orders  OrderWriter

	maxConcurrent int
	log           *slog.Logger
}

func NewService(cart CartReader, catalog CatalogReader, orders OrderWriter, maxConcurrent int, log *slog.Logger) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		Cart:          cart,
		Catalog:       catalog,
		Orders:        orders,
		maxConcurrent: maxConcurrent,
		log:           log,
	}
}

// Quote re-prices every cart line against the catalog. Lines whose product
// disappeared or ran out of stock are flagged Unavailable and left out of
// Total.
func (s *Service) Quote(ctx context.Context) (domain.Quote, error) {
	items, err := s.Cart.GetCart(ctx)
	if err != nil {
		return domain.Quote{}, err
	}

	if len(items) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}

	lines := make([]domain.QuoteLine, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		idx := idx
		g.Go(func() error {
			it := items[idx]
			if it.Quantity <= 0 {
				return fmt.Errorf("quantity must be greater than zero: %d", it.Quantity)
			}

			line := domain.QuoteLine{
				ProductID: it.ProductID,
				Name:      it.Name,
				Quantity:  it.Quantity,
				CartPrice: it.UnitPrice,
				UnitPrice: it.UnitPrice,
			}

			product, err := s.Catalog.GetProduct(ctx, it.ProductID)
			switch {
			case errors.Is(err, ErrProductNotFound):
				line.Unavailable = true
				lines[idx] = line
				return nil
			case err != nil:
				return fmt.Errorf("failed to get product %s: %w", it.ProductID, err)
			}

			line.Name = product.Name
			line.UnitPrice = product.Price
			line.PriceChanged = !product.Price.Equal(it.UnitPrice)
			line.Unavailable = product.CountInStock < it.Quantity
			line.LineTotal = product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			lines[idx] = line
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Quote{}, err
	}

	quote := domain.Quote{Lines: lines, CartTotal: decimal.Zero, Total: decimal.Zero}
	for i, line := range lines {
		quote.CartTotal = quote.CartTotal.Add(items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity))))
		if !line.Unavailable {
			quote.Total = quote.Total.Add(line.LineTotal)
		}
	}

	return quote, nil
}

// PlaceOrder submits a snapshot of the cart as an order and, once the order
// is accepted, removes the ordered products from the cart. Lines added after
// the snapshot stay. A failed removal does not undo the order; it is reported
// in Receipt.Warning.
func (s *Service) PlaceOrder(ctx context.Context, token string, details domain.Details) (domain.Receipt, error) {
	items, err := s.Cart.GetCart(ctx)
	if err != nil {
		return domain.Receipt{}, err
	}
	if len(items) == 0 {
		return domain.Receipt{}, ErrEmptyCart
	}

	placed, err := s.Orders.PlaceOrder(ctx, token, items, details)
	if err != nil {
		return domain.Receipt{}, err
	}

	receipt := domain.Receipt{
		OrderID:    placed.ID,
		Status:     placed.Status,
		TotalPrice: placed.TotalPrice,
	}

	ordered := make([]string, 0, len(items))
	for _, it := range items {
		ordered = append(ordered, it.ProductID)
	}
	if err := s.Cart.RemoveItems(ctx, ordered); err != nil {
		s.log.Warn("order placed but cart not cleared",
			slog.String("order_id", placed.ID), slog.Any("err", err))
		receipt.Warning = err.Error()
	}

	s.log.Info("order placed", slog.String("order_id", placed.ID), slog.Int("lines", len(items)))
	return receipt, nil
}
