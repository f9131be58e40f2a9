// item360-backend/internal/service/overview_service.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/erpmco/item360-backend/internal/cache"
	"github.com/erpmco/item360-backend/internal/config"
	"github.com/erpmco/item360-backend/internal/domain"
	"github.com/erpmco/item360-backend/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	openPOLimit       = 10
	supplierRateLimit = 10
	quotationLimit    = 5
)

// trendWindows are the rolling windows rate trends are folded over.
var trendWindows = map[string]int{"m3": 3, "m6": 6, "m12": 12}

type ItemOverviewService struct {
	items     repository.ItemRepository
	purchases repository.PurchaseRepository
	suppliers repository.SupplierRepository
	cache     cache.OverviewCache
	defaults  config.ThresholdConfig
	now       func() time.Time
}

func NewItemOverviewService(
	items repository.ItemRepository,
	purchases repository.PurchaseRepository,
	suppliers repository.SupplierRepository,
	cacheImpl cache.OverviewCache,
	defaults config.ThresholdConfig,
) *ItemOverviewService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopOverviewCache()
	}
	return &ItemOverviewService{
		items:     items,
		purchases: purchases,
		suppliers: suppliers,
		cache:     cacheImpl,
		defaults:  defaults,
		now:       time.Now,
	}
}

// ComputeItemOverview aggregates the full purchasing/stock snapshot for one
// item. Every leg is an independent read, so they fan out concurrently; the
// derived ratios degrade to nil when a denominator is zero.
func (s *ItemOverviewService) ComputeItemOverview(ctx context.Context, query domain.OverviewQuery) (*domain.ItemOverview, error) {
	query, err := s.normalizeQuery(query)
	if err != nil {
		return nil, err
	}

	if overview, ok, err := s.cache.Get(ctx, query); err == nil && ok {
		return overview, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("item overview: cache get failed")
	}

	if _, err := s.items.GetItem(ctx, query.ItemCode); err != nil {
		return nil, err
	}

	branchWhs, err := s.items.GetBranchWarehouses(ctx, query.Company, query.Branch)
	if err != nil {
		return nil, err
	}

	scope := domain.WarehouseScope{
		Company:    query.Company,
		Warehouses: branchWhs,
		Warehouse:  query.Warehouse,
	}

	today := s.now()
	from, to := domain.ConsumptionWindow(today, query.ConsumptionDays)

	var (
		stockRows    []domain.WarehouseStock
		openPOs      []domain.OpenPOLine
		totalOutQty  float64
		history      []domain.PurchaseHistoryEntry
		trends       = make(map[string]domain.RateTrend, len(trendWindows))
		lastRates    []domain.SupplierLastRate
		quotations   []domain.SupplierQuotation
		reorder      []domain.ReorderSetting
		leadSamples  []domain.LeadTimeSample
		supplierInfo *domain.SupplierInfo
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		stockRows, err = s.items.GetStockByWarehouse(gctx, scope, query.ItemCode)
		return err
	})
	g.Go(func() error {
		var err error
		openPOs, err = s.purchases.GetOpenPOLines(gctx, scope, query.ItemCode, query.POName, openPOLimit)
		return err
	})
	g.Go(func() error {
		var err error
		totalOutQty, err = s.items.GetTotalOutQty(gctx, scope, query.ItemCode, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.purchases.GetPurchaseHistory(gctx, scope, query.ItemCode, query.Supplier, query.HistoryLimit)
		return err
	})
	var trendMu sync.Mutex
	for key, months := range trendWindows {
		key, months := key, months
		g.Go(func() error {
			trendFrom := today.AddDate(0, -months, 0)
			rates, err := s.purchases.GetNormalizedRates(gctx, scope, query.ItemCode, query.Supplier, trendFrom)
			if err != nil {
				return err
			}
			trendMu.Lock()
			trends[key] = domain.TrendOverRates(trendFrom, months, rates)
			trendMu.Unlock()
			return nil
		})
	}
	g.Go(func() error {
		var err error
		lastRates, err = s.purchases.GetSupplierLastRates(gctx, scope, query.ItemCode, supplierRateLimit)
		return err
	})
	g.Go(func() error {
		var err error
		quotations, err = s.purchases.GetSupplierQuotations(gctx, scope, query.ItemCode, quotationLimit)
		return err
	})
	g.Go(func() error {
		var err error
		reorder, err = s.items.GetReorderSettings(gctx, scope, query.ItemCode)
		return err
	})
	g.Go(func() error {
		var err error
		leadSamples, err = s.purchases.GetLeadTimeSamples(gctx, scope, query.ItemCode, query.LeadTimeReceipts)
		return err
	})
	if query.Supplier != "" {
		g.Go(func() error {
			var err error
			supplierInfo, err = s.suppliers.GetSupplierInfo(gctx, query.Supplier)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	totalStock := 0.0
	for _, row := range stockRows {
		totalStock += row.Qty
	}
	openPOQty := domain.SumOpenQty(openPOs)
	avgPerDay := domain.AvgPerDay(totalOutQty, query.ConsumptionDays)

	var lastPurchase *domain.PurchaseHistoryEntry
	var lastRate float64
	if len(history) > 0 {
		lastPurchase = &history[0]
		if lastPurchase.BaseRatePerStockUOM != nil {
			lastRate = *lastPurchase.BaseRatePerStockUOM
		}
	}

	coverPost := domain.CoverPostDays(totalStock, openPOQty, avgPerDay)
	flags := domain.BuildExceptionFlags(domain.FlagInput{
		POBaseRate:         query.POBaseRate,
		POConversionFactor: query.POConversionFactor,
		LastRate:           lastRate,
		CoverPostDays:      coverPost,
		Supplier:           supplierInfo,
		PriceVarThreshPct:  query.PriceVarThreshPct,
		CoverOverstockDays: query.CoverOverstockDays,
	})

	overview := &domain.ItemOverview{
		Scope: domain.OverviewScope{
			Company:          query.Company,
			Branch:           query.Branch,
			Warehouse:        query.Warehouse,
			BranchWarehouses: branchWhs,
		},
		KPIs: domain.KPISnapshot{
			TotalStock:       totalStock,
			StockByWarehouse: emptyIfNil(stockRows),
			OpenPOQty:        openPOQty,
			OpenPOs:          emptyIfNil(openPOs),
			ConsumptionFrom:  from.Format("2006-01-02"),
			ConsumptionTo:    to.Format("2006-01-02"),
			ConsumptionDays:  query.ConsumptionDays,
			TotalOutQty:      totalOutQty,
			AvgPerDay:        avgPerDay,
			CoverCurrentDays: domain.CoverDays(totalStock, avgPerDay),
			CoverPostDays:    coverPost,
			LastPurchase:     lastPurchase,
			LeadTime:         domain.LeadTimeFromSamples(leadSamples),
			SupplierInfo:     supplierInfo,
		},
		Purchases: domain.PurchaseSummary{
			History:           emptyIfNil(history),
			Trends:            trends,
			SupplierLastRates: emptyIfNil(lastRates),
			Quotations:        emptyIfNil(quotations),
		},
		Replenishment: domain.Replenishment{
			Reorder: emptyIfNil(reorder),
		},
		Flags: flags,
	}

	if err := s.cache.Set(ctx, query, overview); err != nil {
		log.Warn().Err(err).Msg("item overview: cache set failed")
	}

	return overview, nil
}

// normalizeQuery applies configured defaults and validates the rest. The
// normalized form is also the cache identity, so defaulted and explicit
// queries share an entry.
func (s *ItemOverviewService) normalizeQuery(query domain.OverviewQuery) (domain.OverviewQuery, error) {
	if query.Company == "" || query.ItemCode == "" {
		return query, fmt.Errorf("company and item_code are required: %w", domain.ErrInvalidArgument)
	}

	if query.ConsumptionDays == 0 {
		query.ConsumptionDays = s.defaults.ConsumptionDays
	}
	if query.HistoryLimit == 0 {
		query.HistoryLimit = s.defaults.HistoryLimit
	}
	if query.LeadTimeReceipts == 0 {
		query.LeadTimeReceipts = s.defaults.LeadTimeReceipts
	}
	if query.PriceVarThreshPct == 0 {
		query.PriceVarThreshPct = s.defaults.PriceVarPct
	}
	if query.CoverOverstockDays == 0 {
		query.CoverOverstockDays = s.defaults.CoverOverstockDays
	}

	if query.ConsumptionDays <= 0 {
		return query, fmt.Errorf("consumption_days must be positive: %w", domain.ErrInvalidArgument)
	}
	if query.HistoryLimit <= 0 || query.LeadTimeReceipts <= 0 {
		return query, fmt.Errorf("history_limit and lead_time_receipts must be positive: %w", domain.ErrInvalidArgument)
	}

	return query, nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
