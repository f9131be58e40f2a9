// item360-backend/internal/repository/postgres/item_repository.go
package postgres

import (
	"context"
	"time"

	"github.com/erpmco/item360-backend/internal/domain"
	"github.com/erpmco/item360-backend/internal/repository"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type itemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) GetItem(ctx context.Context, itemCode string) (*domain.Item, error) {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var item domain.Item
	query := `
		SELECT item_code, item_name, stock_uom, disabled
		FROM items
		WHERE item_code = $1
	`
	if err := r.db.GetContext(ctx, &item, query, itemCode); err != nil {
		return nil, wrapErr("get item", err)
	}
	return &item, nil
}

func (r *itemRepository) GetBranchWarehouses(ctx context.Context, company, branch string) ([]string, error) {
	if branch == "" {
		return nil, nil
	}

	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var warehouses []string
	query := `
		SELECT name
		FROM warehouses
		WHERE company = $1
		  AND branch = $2
		  AND NOT disabled
		ORDER BY name
	`
	if err := r.db.SelectContext(ctx, &warehouses, query, company, branch); err != nil {
		return nil, wrapErr("get branch warehouses", err)
	}

	log.Debug().Str("branch", branch).Int("warehouses", len(warehouses)).Msg("item360: resolved branch scope")
	return warehouses, nil
}

func (r *itemRepository) GetStockByWarehouse(ctx context.Context, scope domain.WarehouseScope, itemCode string) ([]domain.WarehouseStock, error) {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	args := []interface{}{itemCode}
	whCond, args, _ := warehouseCondition("b", scope, args, 2)

	query := `
		SELECT
		  b.warehouse,
		  SUM(b.actual_qty) AS qty,
		  MAX(b.valuation_rate) AS valuation_rate
		FROM bins b
		WHERE b.item_code = $1` + whCond + `
		GROUP BY b.warehouse
		ORDER BY b.warehouse
	`

	var rows []domain.WarehouseStock
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr("get stock by warehouse", err)
	}
	return rows, nil
}

func (r *itemRepository) GetTotalOutQty(ctx context.Context, scope domain.WarehouseScope, itemCode string, from, to time.Time) (float64, error) {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	args := []interface{}{scope.Company, itemCode, from, to}
	whCond, args, _ := warehouseCondition("sle", scope, args, 5)

	query := `
		SELECT COALESCE(SUM(CASE WHEN sle.actual_qty < 0 THEN -sle.actual_qty ELSE 0 END), 0)
		FROM stock_ledger_entries sle
		WHERE NOT sle.is_cancelled
		  AND sle.company = $1
		  AND sle.item_code = $2
		  AND sle.posting_date BETWEEN $3 AND $4` + whCond

	var total float64
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, wrapErr("get total out qty", err)
	}
	return total, nil
}

func (r *itemRepository) GetReorderSettings(ctx context.Context, scope domain.WarehouseScope, itemCode string) ([]domain.ReorderSetting, error) {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	args := []interface{}{itemCode}
	whCond, args, _ := warehouseCondition("ir", scope, args, 2)

	query := `
		SELECT ir.warehouse, ir.reorder_level, ir.reorder_qty, ir.request_type
		FROM item_reorder ir
		WHERE ir.parent = $1` + whCond + `
		ORDER BY ir.warehouse
	`

	var rows []domain.ReorderSetting
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr("get reorder settings", err)
	}
	return rows, nil
}

type itemQtyRow struct {
	ItemCode string  `db:"item_code"`
	Qty      float64 `db:"qty"`
}

func (r *itemRepository) GetStockTotals(ctx context.Context, scope domain.WarehouseScope, itemCodes []string) (map[string]float64, error) {
	if len(itemCodes) == 0 {
		return map[string]float64{}, nil
	}

	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	args := []interface{}{pq.Array(itemCodes)}
	whCond, args, _ := warehouseCondition("b", scope, args, 2)

	query := `
		SELECT b.item_code, SUM(b.actual_qty) AS qty
		FROM bins b
		WHERE b.item_code = ANY($1)` + whCond + `
		GROUP BY b.item_code
	`

	var rows []itemQtyRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr("get stock totals", err)
	}

	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.ItemCode] = row.Qty
	}
	return out, nil
}

func (r *itemRepository) GetOutQtyTotals(ctx context.Context, scope domain.WarehouseScope, itemCodes []string, from, to time.Time) (map[string]float64, error) {
	if len(itemCodes) == 0 {
		return map[string]float64{}, nil
	}

	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	args := []interface{}{scope.Company, pq.Array(itemCodes), from, to}
	whCond, args, _ := warehouseCondition("sle", scope, args, 5)

	query := `
		SELECT
		  sle.item_code,
		  SUM(CASE WHEN sle.actual_qty < 0 THEN -sle.actual_qty ELSE 0 END) AS qty
		FROM stock_ledger_entries sle
		WHERE NOT sle.is_cancelled
		  AND sle.company = $1
		  AND sle.item_code = ANY($2)
		  AND sle.posting_date BETWEEN $3 AND $4` + whCond + `
		GROUP BY sle.item_code
	`

	var rows []itemQtyRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr("get out qty totals", err)
	}

	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.ItemCode] = row.Qty
	}
	return out, nil
}
