package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/platform/logger"
	"github.com/magicspin/laundry-api/internal/store"
)

// PostgresPriceStore reads the service_prices catalog.
type PostgresPriceStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPriceStore creates a PostgresPriceStore. It panics on a nil db.
func NewPostgresPriceStore(db store.DBTX, logger *slog.Logger) *PostgresPriceStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPriceStore{
		db:     db,
		logger: logger.With(slog.String("component", "price_store")),
	}
}

var _ store.PriceStore = (*PostgresPriceStore)(nil)

// GetActive implements store.PriceStore.GetActive
func (s *PostgresPriceStore) GetActive(ctx context.Context, serviceType domain.ServiceType) (*domain.ServicePrice, error) {
	var price domain.ServicePrice
	var st string
	var unit int64

	err := s.db.QueryRowContext(ctx, `
		SELECT service_type, price_per_unit, is_active
		FROM service_prices
		WHERE service_type = $1 AND is_active`, string(serviceType)).Scan(&st, &unit, &price.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPriceNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get service price",
			slog.String("error", err.Error()),
			slog.String("service_type", string(serviceType)))
		return nil, store.NewStoreError("service_price", "get", "query failed", MapError(err))
	}

	price.ServiceType = domain.ServiceType(st)
	price.PricePerUnit = domain.Money(unit)
	return &price, nil
}

// ListActive implements store.PriceStore.ListActive
func (s *PostgresPriceStore) ListActive(ctx context.Context) ([]domain.ServicePrice, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT service_type, price_per_unit, is_active
		FROM service_prices
		WHERE is_active
		ORDER BY service_type`)
	if err != nil {
		log.Error("failed to list service prices", slog.String("error", err.Error()))
		return nil, store.NewStoreError("service_price", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	prices := []domain.ServicePrice{}
	for rows.Next() {
		var st string
		var unit int64
		var p domain.ServicePrice
		if err := rows.Scan(&st, &unit, &p.IsActive); err != nil {
			return nil, store.NewStoreError("service_price", "list", "scan failed", err)
		}
		p.ServiceType = domain.ServiceType(st)
		p.PricePerUnit = domain.Money(unit)
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("service_price", "list", "iteration failed", err)
	}
	return prices, nil
}
