// item360-backend/internal/repository/item_repository.go
package repository

import (
	"context"
	"time"

	"github.com/erpmco/item360-backend/internal/domain"
)

type ItemRepository interface {
	GetItem(ctx context.Context, itemCode string) (*domain.Item, error)
	GetBranchWarehouses(ctx context.Context, company, branch string) ([]string, error)
	GetStockByWarehouse(ctx context.Context, scope domain.WarehouseScope, itemCode string) ([]domain.WarehouseStock, error)
	GetTotalOutQty(ctx context.Context, scope domain.WarehouseScope, itemCode string, from, to time.Time) (float64, error)
	GetReorderSettings(ctx context.Context, scope domain.WarehouseScope, itemCode string) ([]domain.ReorderSetting, error)

	// Bulk variants for the exception scan: one query per concern.
	GetStockTotals(ctx context.Context, scope domain.WarehouseScope, itemCodes []string) (map[string]float64, error)
	GetOutQtyTotals(ctx context.Context, scope domain.WarehouseScope, itemCodes []string, from, to time.Time) (map[string]float64, error)
}
