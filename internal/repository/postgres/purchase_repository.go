// item360-backend/internal/repository/postgres/purchase_repository.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/erpmco/item360-backend/internal/domain"
	"github.com/erpmco/item360-backend/internal/repository"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type purchaseRepository struct {
	db *DB
}

func NewPurchaseRepository(db *DB) repository.PurchaseRepository {
	return &purchaseRepository{db: db}
}

// purchaseSource describes one of the document stores purchase rates can be
// read from, in fallback order.
type purchaseSource struct {
	doctype string
	header  string
	items   string
	dateCol string
}

var purchaseSources = []purchaseSource{
	{doctype: "Purchase Invoice", header: "purchase_invoices", items: "purchase_invoice_items", dateCol: "posting_date"},
	{doctype: "Purchase Receipt", header: "purchase_receipts", items: "purchase_receipt_items", dateCol: "posting_date"},
	{doctype: "Purchase Order", header: "purchase_orders", items: "purchase_order_items", dateCol: "transaction_date"},
}

func (r *purchaseRepository) GetPurchaseOrder(ctx context.Context, poName string) (*domain.PurchaseOrder, error) {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var po domain.PurchaseOrder
	headerQuery := `
		SELECT name, company, COALESCE(supplier, '') AS supplier,
		       COALESCE(branch, '') AS branch, COALESCE(set_warehouse, '') AS set_warehouse,
		       transaction_date
		FROM purchase_orders
		WHERE name = $1 AND docstatus = 1
	`
	if err := r.db.GetContext(ctx, &po, headerQuery, poName); err != nil {
		return nil, wrapErr("get purchase order", err)
	}

	linesQuery := `
		SELECT name, item_code, COALESCE(item_name, '') AS item_name,
		       COALESCE(warehouse, '') AS warehouse, qty, COALESCE(received_qty, 0) AS received_qty,
		       COALESCE(uom, '') AS uom, COALESCE(conversion_factor, 1) AS conversion_factor,
		       COALESCE(base_rate, 0) AS base_rate
		FROM purchase_order_items
		WHERE parent = $1
		ORDER BY idx
	`
	if err := r.db.SelectContext(ctx, &po.Lines, linesQuery, poName); err != nil {
		return nil, wrapErr("get purchase order lines", err)
	}

	return &po, nil
}

func (r *purchaseRepository) GetOpenPOLines(ctx context.Context, scope domain.WarehouseScope, itemCode, excludePO string, limit int) ([]domain.OpenPOLine, error) {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	args := []interface{}{scope.Company, itemCode}
	whCond, args, argPos := warehouseCondition("poi", scope, args, 3)

	exclCond := ""
	if excludePO != "" {
		exclCond = fmt.Sprintf(" AND po.name <> $%d", argPos)
		args = append(args, excludePO)
		argPos++
	}

	query := fmt.Sprintf(`
		SELECT
		  po.name AS po,
		  po.transaction_date,
		  COALESCE(po.supplier, '') AS supplier,
		  poi.schedule_date,
		  COALESCE(poi.warehouse, '') AS warehouse,
		  COALESCE(poi.uom, '') AS uom,
		  COALESCE(poi.conversion_factor, 1) AS conversion_factor,
		  poi.qty,
		  COALESCE(poi.received_qty, 0) AS received_qty,
		  GREATEST(poi.qty - COALESCE(poi.received_qty, 0), 0) AS open_qty,
		  COALESCE(poi.base_rate, 0) AS base_rate,
		  COALESCE(poi.base_amount, 0) AS base_amount
		FROM purchase_orders po
		JOIN purchase_order_items poi ON poi.parent = po.name
		WHERE po.docstatus = 1
		  AND po.company = $1
		  AND poi.item_code = $2
		  AND poi.qty - COALESCE(poi.received_qty, 0) > 0%s%s
		ORDER BY po.transaction_date DESC, po.modified DESC
		LIMIT $%d
	`, whCond, exclCond, argPos)
	args = append(args, limit)

	var rows []domain.OpenPOLine
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr("get open po lines", err)
	}
	return rows, nil
}

func (r *purchaseRepository) GetPurchaseHistory(ctx context.Context, scope domain.WarehouseScope, itemCode, supplier string, limit int) ([]domain.PurchaseHistoryEntry, error) {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	for _, src := range purchaseSources {
		rows, err := r.historyFromSource(ctx, src, scope, itemCode, supplier, limit)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			return rows, nil
		}
	}
	return []domain.PurchaseHistoryEntry{}, nil
}

func (r *purchaseRepository) historyFromSource(ctx context.Context, src purchaseSource, scope domain.WarehouseScope, itemCode, supplier string, limit int) ([]domain.PurchaseHistoryEntry, error) {
	args := []interface{}{scope.Company, itemCode}
	argPos := 3

	supplierCond := ""
	if supplier != "" {
		supplierCond = fmt.Sprintf(" AND p.supplier = $%d", argPos)
		args = append(args, supplier)
		argPos++
	}
	whCond, args, argPos := warehouseCondition("i", scope, args, argPos)

	query := fmt.Sprintf(`
		SELECT
		  p.%s AS date,
		  COALESCE(p.supplier, '') AS supplier,
		  COALESCE(i.warehouse, '') AS warehouse,
		  i.qty,
		  COALESCE(i.uom, '') AS uom,
		  COALESCE(i.conversion_factor, 1) AS conversion_factor,
		  COALESCE(i.base_rate, 0) AS base_rate,
		  i.base_rate / NULLIF(i.conversion_factor, 0) AS base_rate_per_stock_uom,
		  p.name AS ref,
		  '%s' AS ref_doctype
		FROM %s p
		JOIN %s i ON i.parent = p.name
		WHERE p.docstatus = 1
		  AND p.company = $1
		  AND i.item_code = $2%s%s
		ORDER BY p.%s DESC, p.modified DESC
		LIMIT $%d
	`, src.dateCol, src.doctype, src.header, src.items, supplierCond, whCond, src.dateCol, argPos)
	args = append(args, limit)

	var rows []domain.PurchaseHistoryEntry
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr("get purchase history ("+src.doctype+")", err)
	}
	return rows, nil
}

func (r *purchaseRepository) GetNormalizedRates(ctx context.Context, scope domain.WarehouseScope, itemCode, supplier string, fromDate time.Time) ([]float64, error) {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	args := []interface{}{scope.Company, itemCode, fromDate}
	argPos := 4

	supplierCond := ""
	if supplier != "" {
		supplierCond = fmt.Sprintf(" AND p.supplier = $%d", argPos)
		args = append(args, supplier)
		argPos++
	}
	whCond, args, _ := warehouseCondition("pii", scope, args, argPos)

	query := fmt.Sprintf(`
		SELECT pii.base_rate / pii.conversion_factor
		FROM purchase_invoices p
		JOIN purchase_invoice_items pii ON pii.parent = p.name
		WHERE p.docstatus = 1
		  AND p.company = $1
		  AND pii.item_code = $2
		  AND p.posting_date >= $3
		  AND pii.conversion_factor <> 0%s%s
	`, supplierCond, whCond)

	var rates []float64
	if err := r.db.SelectContext(ctx, &rates, query, args...); err != nil {
		return nil, wrapErr("get normalized rates", err)
	}
	return rates, nil
}

func (r *purchaseRepository) GetSupplierLastRates(ctx context.Context, scope domain.WarehouseScope, itemCode string, limit int) ([]domain.SupplierLastRate, error) {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	args := []interface{}{scope.Company, itemCode}
	whCond, args, argPos := warehouseCondition("pii", scope, args, 3)

	query := fmt.Sprintf(`
		SELECT t.supplier, t.date, t.base_rate_per_stock_uom, t.ref, t.ref_doctype
		FROM (
		  SELECT DISTINCT ON (p.supplier)
		    p.supplier,
		    p.posting_date AS date,
		    pii.base_rate / NULLIF(pii.conversion_factor, 0) AS base_rate_per_stock_uom,
		    p.name AS ref,
		    'Purchase Invoice' AS ref_doctype
		  FROM purchase_invoices p
		  JOIN purchase_invoice_items pii ON pii.parent = p.name
		  WHERE p.docstatus = 1
		    AND p.company = $1
		    AND pii.item_code = $2%s
		  ORDER BY p.supplier, p.posting_date DESC, p.modified DESC
		) t
		ORDER BY t.date DESC
		LIMIT $%d
	`, whCond, argPos)
	args = append(args, limit)

	var rows []domain.SupplierLastRate
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr("get supplier last rates", err)
	}
	return rows, nil
}

func (r *purchaseRepository) GetSupplierQuotations(ctx context.Context, scope domain.WarehouseScope, itemCode string, limit int) ([]domain.SupplierQuotation, error) {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	args := []interface{}{scope.Company, itemCode}
	whCond, args, argPos := warehouseCondition("sqi", scope, args, 3)

	query := fmt.Sprintf(`
		SELECT
		  sq.name AS quotation,
		  COALESCE(sq.supplier, '') AS supplier,
		  sqi.qty,
		  COALESCE(sqi.uom, '') AS uom,
		  COALESCE(sqi.conversion_factor, 1) AS conversion_factor,
		  COALESCE(sqi.rate, 0) AS rate,
		  COALESCE(sqi.base_rate, 0) AS base_rate,
		  sq.valid_till,
		  sq.transaction_date,
		  COALESCE(sq.status, '') AS status
		FROM supplier_quotations sq
		JOIN supplier_quotation_items sqi ON sqi.parent = sq.name
		WHERE sq.docstatus = 1
		  AND sq.company = $1
		  AND sqi.item_code = $2%s
		ORDER BY sq.transaction_date DESC, sq.modified DESC
		LIMIT $%d
	`, whCond, argPos)
	args = append(args, limit)

	var rows []domain.SupplierQuotation
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr("get supplier quotations", err)
	}
	return rows, nil
}

func (r *purchaseRepository) GetLeadTimeSamples(ctx context.Context, scope domain.WarehouseScope, itemCode string, limit int) ([]domain.LeadTimeSample, error) {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	args := []interface{}{scope.Company, itemCode}
	whCond, args, argPos := warehouseCondition("pri", scope, args, 3)

	// Only receipts explicitly linked to their order count; unlinked
	// receipts cannot be attributed to a lead time.
	query := fmt.Sprintf(`
		SELECT
		  pri.purchase_order AS po,
		  po.transaction_date AS po_date,
		  pr.name AS pr,
		  pr.posting_date AS pr_date,
		  pr.posting_date - po.transaction_date AS lead_days
		FROM purchase_receipts pr
		JOIN purchase_receipt_items pri ON pri.parent = pr.name
		JOIN purchase_orders po ON po.name = pri.purchase_order
		WHERE pr.docstatus = 1
		  AND pr.company = $1
		  AND pri.item_code = $2
		  AND pri.purchase_order IS NOT NULL%s
		ORDER BY pr.posting_date DESC, pr.modified DESC
		LIMIT $%d
	`, whCond, argPos)
	args = append(args, limit)

	var rows []domain.LeadTimeSample
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr("get lead time samples", err)
	}
	return rows, nil
}

type itemRateRow struct {
	ItemCode string  `db:"item_code"`
	Rate     float64 `db:"rate"`
}

func (r *purchaseRepository) GetLastRateMap(ctx context.Context, scope domain.WarehouseScope, itemCodes []string) (map[string]float64, error) {
	if len(itemCodes) == 0 {
		return map[string]float64{}, nil
	}

	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	out := make(map[string]float64, len(itemCodes))
	missing := itemCodes

	for _, src := range purchaseSources {
		if len(missing) == 0 {
			break
		}

		args := []interface{}{scope.Company, pq.Array(missing)}
		whCond, args, _ := warehouseCondition("i", scope, args, 3)

		query := fmt.Sprintf(`
			SELECT DISTINCT ON (i.item_code)
			  i.item_code,
			  i.base_rate / i.conversion_factor AS rate
			FROM %s p
			JOIN %s i ON i.parent = p.name
			WHERE p.docstatus = 1
			  AND p.company = $1
			  AND i.item_code = ANY($2)
			  AND i.conversion_factor <> 0%s
			ORDER BY i.item_code, p.%s DESC, p.modified DESC
		`, src.header, src.items, whCond, src.dateCol)

		var rows []itemRateRow
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, wrapErr("get last rate map ("+src.doctype+")", err)
		}
		for _, row := range rows {
			out[row.ItemCode] = row.Rate
		}

		var still []string
		for _, code := range missing {
			if _, ok := out[code]; !ok {
				still = append(still, code)
			}
		}
		missing = still
	}

	log.Debug().Int("items", len(itemCodes)).Int("unresolved", len(missing)).Msg("item360: last rate map built")

	// Items with no purchase history at all resolve to zero.
	for _, code := range missing {
		out[code] = 0
	}
	return out, nil
}

func (r *purchaseRepository) GetOpenPOQtyMap(ctx context.Context, scope domain.WarehouseScope, itemCodes []string, excludePO string) (map[string]float64, error) {
	if len(itemCodes) == 0 {
		return map[string]float64{}, nil
	}

	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	args := []interface{}{scope.Company, pq.Array(itemCodes), excludePO}
	whCond, args, _ := warehouseCondition("poi", scope, args, 4)

	query := `
		SELECT
		  poi.item_code,
		  SUM(poi.qty - COALESCE(poi.received_qty, 0)) AS qty
		FROM purchase_orders po
		JOIN purchase_order_items poi ON poi.parent = po.name
		WHERE po.docstatus = 1
		  AND po.company = $1
		  AND poi.item_code = ANY($2)
		  AND po.name <> $3
		  AND poi.qty - COALESCE(poi.received_qty, 0) > 0` + whCond + `
		GROUP BY poi.item_code
	`

	var rows []itemQtyRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr("get open po qty map", err)
	}

	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.ItemCode] = row.Qty
	}
	return out, nil
}
