// item360-backend/internal/service/allocation_service.go
package service

import (
	"context"
	"fmt"

	"github.com/erpmco/item360-backend/internal/domain"
	"github.com/erpmco/item360-backend/internal/repository"
)

type AllocationService struct {
	items       repository.ItemRepository
	allocations repository.AllocationRepository
}

func NewAllocationService(items repository.ItemRepository, allocations repository.AllocationRepository) *AllocationService {
	return &AllocationService{items: items, allocations: allocations}
}

// GetItemTotals reads the stock position of one item/warehouse against the
// reservation ledger. Remaining may go negative when reservations exceed
// stock; the ledger owns correcting over-allocation, not this read model.
func (s *AllocationService) GetItemTotals(ctx context.Context, itemCode, warehouse string) (*domain.ItemTotals, error) {
	if itemCode == "" || warehouse == "" {
		return nil, fmt.Errorf("item_code and warehouse are required: %w", domain.ErrInvalidArgument)
	}

	if _, err := s.items.GetItem(ctx, itemCode); err != nil {
		return nil, err
	}

	totalStock, err := s.allocations.GetBinQty(ctx, itemCode, warehouse)
	if err != nil {
		return nil, err
	}
	allocated, err := s.allocations.GetAllocatedQty(ctx, itemCode, warehouse)
	if err != nil {
		return nil, err
	}

	return &domain.ItemTotals{
		TotalStock:     totalStock,
		TotalAllocated: allocated,
		Remaining:      totalStock - allocated,
	}, nil
}
