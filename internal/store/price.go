package store

import (
	"context"

	"github.com/magicspin/laundry-api/internal/domain"
)

// PriceStore reads the service price catalog.
type PriceStore interface {
	// GetActive returns the active price for a service type.
	// Returns ErrPriceNotFound if the service has no active price.
	GetActive(ctx context.Context, serviceType domain.ServiceType) (*domain.ServicePrice, error)

	// ListActive returns every active price.
	ListActive(ctx context.Context) ([]domain.ServicePrice, error)
}
