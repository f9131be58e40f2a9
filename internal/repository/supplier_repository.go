// item360-backend/internal/repository/supplier_repository.go
package repository

import (
	"context"

	"github.com/erpmco/item360-backend/internal/domain"
)

type SupplierRepository interface {
	GetSupplierInfo(ctx context.Context, supplier string) (*domain.SupplierInfo, error)
}
