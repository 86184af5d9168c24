package app

import (
	"context"
	"errors"
	"strings"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	source ProductSource
}

func NewService(source ProductSource) *Service {
	return &Service{
		source: source,
	}
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, ErrInvalidInput
	}
	p, err := s.source.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if p.Price.IsNegative() {
		return domain.Product{}, ErrInvalidInput
	}
	return p, nil
}

// ProductFilter narrows a listing. Empty fields match everything.
type ProductFilter struct {
	Category string
	// Search is a case-insensitive substring of the name or description.
	Search string
}

func (f ProductFilter) matches(p domain.Product, search string) bool {
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), search) ||
		strings.Contains(strings.ToLower(p.Description), search)
}

// ListProducts returns the catalog narrowed by f. Products with a negative
// price are dropped.
func (s *Service) ListProducts(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	all, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}

	f.Category = strings.TrimSpace(f.Category)
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if p.Price.IsNegative() || !f.matches(p, search) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
