// item360-backend/internal/repository/purchase_repository.go
package repository

import (
	"context"
	"time"

	"github.com/erpmco/item360-backend/internal/domain"
)

type PurchaseRepository interface {
	GetPurchaseOrder(ctx context.Context, poName string) (*domain.PurchaseOrder, error)
	GetOpenPOLines(ctx context.Context, scope domain.WarehouseScope, itemCode, excludePO string, limit int) ([]domain.OpenPOLine, error)

	// GetPurchaseHistory falls back invoice -> receipt -> order; the first
	// source with rows wins.
	GetPurchaseHistory(ctx context.Context, scope domain.WarehouseScope, itemCode, supplier string, limit int) ([]domain.PurchaseHistoryEntry, error)

	// GetNormalizedRates returns invoice rates per stock UOM since fromDate,
	// for trend folding.
	GetNormalizedRates(ctx context.Context, scope domain.WarehouseScope, itemCode, supplier string, fromDate time.Time) ([]float64, error)

	GetSupplierLastRates(ctx context.Context, scope domain.WarehouseScope, itemCode string, limit int) ([]domain.SupplierLastRate, error)
	GetSupplierQuotations(ctx context.Context, scope domain.WarehouseScope, itemCode string, limit int) ([]domain.SupplierQuotation, error)
	GetLeadTimeSamples(ctx context.Context, scope domain.WarehouseScope, itemCode string, limit int) ([]domain.LeadTimeSample, error)

	// Bulk variants for the exception scan.
	GetLastRateMap(ctx context.Context, scope domain.WarehouseScope, itemCodes []string) (map[string]float64, error)
	GetOpenPOQtyMap(ctx context.Context, scope domain.WarehouseScope, itemCodes []string, excludePO string) (map[string]float64, error)
}
