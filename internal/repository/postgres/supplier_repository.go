// item360-backend/internal/repository/postgres/supplier_repository.go
package postgres

import (
	"context"

	"github.com/erpmco/item360-backend/internal/domain"
	"github.com/erpmco/item360-backend/internal/repository"
)

type supplierRepository struct {
	db *DB
}

func NewSupplierRepository(db *DB) repository.SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) GetSupplierInfo(ctx context.Context, supplier string) (*domain.SupplierInfo, error) {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var info domain.SupplierInfo
	query := `
		SELECT
		  name AS supplier,
		  COALESCE(supplier_name, '') AS supplier_name,
		  disabled,
		  on_hold,
		  COALESCE(tax_category, '') AS tax_category,
		  COALESCE(payment_terms, '') AS payment_terms
		FROM suppliers
		WHERE name = $1
	`
	if err := r.db.GetContext(ctx, &info, query, supplier); err != nil {
		return nil, wrapErr("get supplier info", err)
	}
	return &info, nil
}
