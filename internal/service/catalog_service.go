package service

import (
	"context"
	"errors"

	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/store"
)

// CatalogService lists the services customers can order.
type CatalogService struct {
	prices store.PriceStore
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(prices store.PriceStore) (*CatalogService, error) {
	if prices == nil {
		return nil, errors.New("price store cannot be nil")
	}
	return &CatalogService{prices: prices}, nil
}

// ListServices returns the active prices.
func (s *CatalogService) ListServices(ctx context.Context) ([]domain.ServicePrice, error) {
	prices, err := s.prices.ListActive(ctx)
	if err != nil {
		return nil, NewServiceError("list_services", "failed to load prices", err)
	}
	return prices, nil
}
