package product

import (
	"context"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the whole catalog.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(products), nil
}

// Search matches query case-insensitively against name, category and brand.
// A blank query lists everything.
func (s *Service) Search(ctx context.Context, query string) ([]Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}
	products, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return nonNil(products), nil
}

// GetByID returns ErrProductNotFound for unknown ids.
func (s *Service) GetByID(ctx context.Context, id int64) (*Product, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	return s.repo.FindByID(ctx, id)
}

func nonNil(products []Product) []Product {
	if products == nil {
		return []Product{}
	}
	return products
}
