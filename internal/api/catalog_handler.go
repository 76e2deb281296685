package api

import (
	"log/slog"
	"net/http"

	"github.com/magicspin/laundry-api/internal/api/shared"
)

// CatalogHandler lists the services customers can order.
type CatalogHandler struct {
	catalog CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog CatalogService, logger *slog.Logger) *CatalogHandler {
	if catalog == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("catalog service cannot be nil for CatalogHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogHandler{catalog: catalog, logger: logger.With(slog.String("component", "catalog_handler"))}
}

// ListServices handles GET /services.
func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.catalog.ListServices(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	out := make([]ServicePriceResponse, 0, len(prices))
	for _, p := range prices {
		out = append(out, ServicePriceResponse{ServiceType: p.ServiceType, PricePerUnit: p.PricePerUnit})
	}
	shared.RespondWithData(w, r, http.StatusOK, "", out)
}
