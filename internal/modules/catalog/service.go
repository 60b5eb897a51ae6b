package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when a product id matches nothing.
var ErrNotFound = errors.New("product not found")

// SortBy selects the ordering of a product listing.
type SortBy string

const (
	SortByName   SortBy = "name"
	SortByPrice  SortBy = "price"
	SortByPurity SortBy = "purity"
)

// ListQuery filters and orders the storefront menu.
type ListQuery struct {
	Search string `json:"q"`
	Sort   SortBy `json:"sort"`
}

// Service defines catalog read operations.
type Service interface {
	// ListProducts returns available products matching the search text
	// (name or description, case-insensitive) in the requested order.
	ListProducts(ctx context.Context, q ListQuery) ([]*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	// ListPaymentMethods returns the active payment accounts; the first one
	// is the checkout default.
	ListPaymentMethods(ctx context.Context) ([]*PaymentMethod, error)
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) ListProducts(ctx context.Context, q ListQuery) ([]*Product, error) {
	products, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(q.Search))
	filtered := products[:0:0]
	for _, p := range products {
		if needle == "" ||
			strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			filtered = append(filtered, p)
		}
	}

	switch q.Sort {
	case SortByPrice:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].BasePrice < filtered[j].BasePrice })
	case SortByPurity:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].PurityPercentage > filtered[j].PurityPercentage })
	case SortByName, "":
		sort.SliceStable(filtered, func(i, j int) bool {
			return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
		})
	default:
		return nil, fmt.Errorf("invalid sort: %s (allowed: name, price, purity)", q.Sort)
	}
	return filtered, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	if id == "" {
		return nil, fmt.Errorf("product id is required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListPaymentMethods(ctx context.Context) ([]*PaymentMethod, error) {
	return s.repo.ListPaymentMethods(ctx, true)
}
