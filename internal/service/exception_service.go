// item360-backend/internal/service/exception_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erpmco/item360-backend/internal/config"
	"github.com/erpmco/item360-backend/internal/domain"
	"github.com/erpmco/item360-backend/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type ExceptionScanService struct {
	items     repository.ItemRepository
	purchases repository.PurchaseRepository
	suppliers repository.SupplierRepository
	defaults  config.ThresholdConfig
	now       func() time.Time
}

func NewExceptionScanService(
	items repository.ItemRepository,
	purchases repository.PurchaseRepository,
	suppliers repository.SupplierRepository,
	defaults config.ThresholdConfig,
) *ExceptionScanService {
	return &ExceptionScanService{
		items:     items,
		purchases: purchases,
		suppliers: suppliers,
		defaults:  defaults,
		now:       time.Now,
	}
}

// ScanPOExceptions evaluates every line of a purchase order against the
// current thresholds. The inputs are fetched as bulk maps, one query per
// concern; output carries one row per line in input order, each flagged
// independently. Cancellation is honored between lines and discards the
// partial result.
func (s *ExceptionScanService) ScanPOExceptions(ctx context.Context, query domain.ScanQuery) ([]domain.ExceptionRow, error) {
	if query.POName == "" {
		return nil, fmt.Errorf("po_name is required: %w", domain.ErrInvalidArgument)
	}
	if query.ConsumptionDays == 0 {
		query.ConsumptionDays = s.defaults.ConsumptionDays
	}
	if query.ConsumptionDays <= 0 {
		return nil, fmt.Errorf("consumption_days must be positive: %w", domain.ErrInvalidArgument)
	}
	if query.PriceVarThreshPct == 0 {
		query.PriceVarThreshPct = s.defaults.PriceVarPct
	}
	if query.CoverOverstockDays == 0 {
		query.CoverOverstockDays = s.defaults.CoverOverstockDays
	}

	po, err := s.purchases.GetPurchaseOrder(ctx, query.POName)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.POLine, 0, len(po.Lines))
	for _, line := range po.Lines {
		if line.ItemCode == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return []domain.ExceptionRow{}, nil
	}

	branchWhs, err := s.items.GetBranchWarehouses(ctx, po.Company, po.Branch)
	if err != nil {
		return nil, err
	}
	scope := domain.WarehouseScope{Company: po.Company, Warehouses: branchWhs}

	var supplierInfo *domain.SupplierInfo
	if po.Supplier != "" {
		supplierInfo, err = s.suppliers.GetSupplierInfo(ctx, po.Supplier)
		if errors.Is(err, domain.ErrNotFound) {
			// A PO may reference a supplier missing from the master; scan
			// without the supplier flags rather than failing outright.
			log.Warn().Str("po", po.Name).Str("supplier", po.Supplier).Msg("po scan: supplier not in master")
			supplierInfo = nil
		} else if err != nil {
			return nil, err
		}
	}

	from, to := domain.ConsumptionWindow(s.now(), query.ConsumptionDays)

	itemCodes := uniqueItemCodes(lines)

	var (
		lastRateMap map[string]float64
		stockMap    map[string]float64
		outQtyMap   map[string]float64
		openPOMap   map[string]float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lastRateMap, err = s.purchases.GetLastRateMap(gctx, scope, itemCodes)
		return err
	})
	g.Go(func() error {
		var err error
		stockMap, err = s.items.GetStockTotals(gctx, scope, itemCodes)
		return err
	})
	g.Go(func() error {
		var err error
		outQtyMap, err = s.items.GetOutQtyTotals(gctx, scope, itemCodes, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		openPOMap, err = s.purchases.GetOpenPOQtyMap(gctx, scope, itemCodes, po.Name)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]domain.ExceptionRow, 0, len(lines))
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		code := line.ItemCode
		totalStock := stockMap[code]
		avgPerDay := domain.AvgPerDay(outQtyMap[code], query.ConsumptionDays)
		openPOQty := openPOMap[code]
		coverPost := domain.CoverPostDays(totalStock, openPOQty, avgPerDay)

		flags := domain.BuildExceptionFlags(domain.FlagInput{
			POBaseRate:         &line.BaseRate,
			POConversionFactor: &line.ConversionFactor,
			LastRate:           lastRateMap[code],
			CoverPostDays:      coverPost,
			Supplier:           supplierInfo,
			PriceVarThreshPct:  query.PriceVarThreshPct,
			CoverOverstockDays: query.CoverOverstockDays,
		})

		warehouse := line.Warehouse
		if warehouse == "" {
			warehouse = po.SetWarehouse
		}

		rows = append(rows, domain.ExceptionRow{
			PODetail:  line.Name,
			ItemCode:  code,
			ItemName:  line.ItemName,
			Warehouse: warehouse,
			Qty:       line.Qty,
			UOM:       line.UOM,

			TotalStock:    totalStock,
			AvgPerDay:     avgPerDay,
			OpenPOQty:     openPOQty,
			CoverPostDays: coverPost,

			LastRatePerStockUOM: lastRateMap[code],
			PORatePerStockUOM:   domain.NormalizeRate(line.BaseRate, line.ConversionFactor),
			PriceVariancePct:    flags.PriceVariancePct,

			PriceException:    flags.PriceException,
			CoverException:    flags.CoverException,
			SupplierException: flags.SupplierException,
			SupplierDisabled:  flags.SupplierDisabled,
			SupplierOnHold:    flags.SupplierOnHold,
		})
	}

	return rows, nil
}

func uniqueItemCodes(lines []domain.POLine) []string {
	seen := make(map[string]struct{}, len(lines))
	codes := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ItemCode]; ok {
			continue
		}
		seen[line.ItemCode] = struct{}{}
		codes = append(codes, line.ItemCode)
	}
	return codes
}
