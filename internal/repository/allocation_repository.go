// item360-backend/internal/repository/allocation_repository.go
package repository

import "context"

// AllocationRepository reads the external reservation ledger. This service
// never writes reservations.
type AllocationRepository interface {
	GetBinQty(ctx context.Context, itemCode, warehouse string) (float64, error)
	GetAllocatedQty(ctx context.Context, itemCode, warehouse string) (float64, error)
}
