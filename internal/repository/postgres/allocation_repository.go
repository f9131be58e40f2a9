// item360-backend/internal/repository/postgres/allocation_repository.go
package postgres

import (
	"context"

	"github.com/erpmco/item360-backend/internal/repository"
)

type allocationRepository struct {
	db *DB
}

func NewAllocationRepository(db *DB) repository.AllocationRepository {
	return &allocationRepository{db: db}
}

func (r *allocationRepository) GetBinQty(ctx context.Context, itemCode, warehouse string) (float64, error) {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	query := `
		SELECT COALESCE(SUM(actual_qty), 0)
		FROM bins
		WHERE item_code = $1 AND warehouse = $2
	`
	var qty float64
	if err := r.db.GetContext(ctx, &qty, query, itemCode, warehouse); err != nil {
		return 0, wrapErr("get bin qty", err)
	}
	return qty, nil
}

func (r *allocationRepository) GetAllocatedQty(ctx context.Context, itemCode, warehouse string) (float64, error) {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	// Open reservations only: quantity still reserved and not yet delivered.
	query := `
		SELECT COALESCE(SUM(reserved_qty - delivered_qty), 0)
		FROM stock_reservations
		WHERE item_code = $1
		  AND warehouse = $2
		  AND status NOT IN ('Delivered', 'Cancelled')
	`
	var qty float64
	if err := r.db.GetContext(ctx, &qty, query, itemCode, warehouse); err != nil {
		return 0, wrapErr("get allocated qty", err)
	}
	return qty, nil
}
