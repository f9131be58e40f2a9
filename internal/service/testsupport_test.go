package service

import (
	"context"
	"fmt"
	"time"

	"github.com/erpmco/item360-backend/internal/domain"
)

// In-memory repository fakes used across the service tests.

type fakeItemRepo struct {
	items     map[string]domain.Item
	branchWhs map[string][]string
	stockByWh map[string][]domain.WarehouseStock
	outQty    map[string]float64
	reorder   map[string][]domain.ReorderSetting
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{
		items:     map[string]domain.Item{},
		branchWhs: map[string][]string{},
		stockByWh: map[string][]domain.WarehouseStock{},
		outQty:    map[string]float64{},
		reorder:   map[string][]domain.ReorderSetting{},
	}
}

func (f *fakeItemRepo) GetItem(ctx context.Context, itemCode string) (*domain.Item, error) {
	item, ok := f.items[itemCode]
	if !ok {
		return nil, fmt.Errorf("get item: %w", domain.ErrNotFound)
	}
	return &item, nil
}

func (f *fakeItemRepo) GetBranchWarehouses(ctx context.Context, company, branch string) ([]string, error) {
	return f.branchWhs[branch], nil
}

func (f *fakeItemRepo) GetStockByWarehouse(ctx context.Context, scope domain.WarehouseScope, itemCode string) ([]domain.WarehouseStock, error) {
	return f.stockByWh[itemCode], nil
}

func (f *fakeItemRepo) GetTotalOutQty(ctx context.Context, scope domain.WarehouseScope, itemCode string, from, to time.Time) (float64, error) {
	return f.outQty[itemCode], nil
}

func (f *fakeItemRepo) GetReorderSettings(ctx context.Context, scope domain.WarehouseScope, itemCode string) ([]domain.ReorderSetting, error) {
	return f.reorder[itemCode], nil
}

func (f *fakeItemRepo) GetStockTotals(ctx context.Context, scope domain.WarehouseScope, itemCodes []string) (map[string]float64, error) {
	out := map[string]float64{}
	for _, code := range itemCodes {
		for _, row := range f.stockByWh[code] {
			out[code] += row.Qty
		}
	}
	return out, nil
}

func (f *fakeItemRepo) GetOutQtyTotals(ctx context.Context, scope domain.WarehouseScope, itemCodes []string, from, to time.Time) (map[string]float64, error) {
	out := map[string]float64{}
	for _, code := range itemCodes {
		if qty, ok := f.outQty[code]; ok {
			out[code] = qty
		}
	}
	return out, nil
}

type fakePurchaseRepo struct {
	orders      map[string]domain.PurchaseOrder
	openLines   map[string][]domain.OpenPOLine
	history     map[string][]domain.PurchaseHistoryEntry
	rates       map[string][]float64
	lastRates   []domain.SupplierLastRate
	quotations  []domain.SupplierQuotation
	leadSamples []domain.LeadTimeSample
	lastRateMap map[string]float64
	openQtyMap  map[string]float64

	gotExcludePO string
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{
		orders:      map[string]domain.PurchaseOrder{},
		openLines:   map[string][]domain.OpenPOLine{},
		history:     map[string][]domain.PurchaseHistoryEntry{},
		rates:       map[string][]float64{},
		lastRateMap: map[string]float64{},
		openQtyMap:  map[string]float64{},
	}
}

func (f *fakePurchaseRepo) GetPurchaseOrder(ctx context.Context, poName string) (*domain.PurchaseOrder, error) {
	po, ok := f.orders[poName]
	if !ok {
		return nil, fmt.Errorf("get purchase order: %w", domain.ErrNotFound)
	}
	return &po, nil
}

func (f *fakePurchaseRepo) GetOpenPOLines(ctx context.Context, scope domain.WarehouseScope, itemCode, excludePO string, limit int) ([]domain.OpenPOLine, error) {
	f.gotExcludePO = excludePO
	return f.openLines[itemCode], nil
}

func (f *fakePurchaseRepo) GetPurchaseHistory(ctx context.Context, scope domain.WarehouseScope, itemCode, supplier string, limit int) ([]domain.PurchaseHistoryEntry, error) {
	entries := f.history[itemCode]
	if supplier == "" {
		return entries, nil
	}
	var filtered []domain.PurchaseHistoryEntry
	for _, e := range entries {
		if e.Supplier == supplier {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (f *fakePurchaseRepo) GetNormalizedRates(ctx context.Context, scope domain.WarehouseScope, itemCode, supplier string, fromDate time.Time) ([]float64, error) {
	return f.rates[itemCode], nil
}

func (f *fakePurchaseRepo) GetSupplierLastRates(ctx context.Context, scope domain.WarehouseScope, itemCode string, limit int) ([]domain.SupplierLastRate, error) {
	return f.lastRates, nil
}

func (f *fakePurchaseRepo) GetSupplierQuotations(ctx context.Context, scope domain.WarehouseScope, itemCode string, limit int) ([]domain.SupplierQuotation, error) {
	return f.quotations, nil
}

func (f *fakePurchaseRepo) GetLeadTimeSamples(ctx context.Context, scope domain.WarehouseScope, itemCode string, limit int) ([]domain.LeadTimeSample, error) {
	return f.leadSamples, nil
}

func (f *fakePurchaseRepo) GetLastRateMap(ctx context.Context, scope domain.WarehouseScope, itemCodes []string) (map[string]float64, error) {
	out := map[string]float64{}
	for _, code := range itemCodes {
		out[code] = f.lastRateMap[code]
	}
	return out, nil
}

func (f *fakePurchaseRepo) GetOpenPOQtyMap(ctx context.Context, scope domain.WarehouseScope, itemCodes []string, excludePO string) (map[string]float64, error) {
	f.gotExcludePO = excludePO
	out := map[string]float64{}
	for _, code := range itemCodes {
		if qty, ok := f.openQtyMap[code]; ok {
			out[code] = qty
		}
	}
	return out, nil
}

type fakeSupplierRepo struct {
	suppliers map[string]domain.SupplierInfo
}

func newFakeSupplierRepo() *fakeSupplierRepo {
	return &fakeSupplierRepo{suppliers: map[string]domain.SupplierInfo{}}
}

func (f *fakeSupplierRepo) GetSupplierInfo(ctx context.Context, supplier string) (*domain.SupplierInfo, error) {
	info, ok := f.suppliers[supplier]
	if !ok {
		return nil, fmt.Errorf("get supplier info: %w", domain.ErrNotFound)
	}
	return &info, nil
}

// memOverviewCache records hits and sets so cache-aside behavior can be
// asserted without redis.
type memOverviewCache struct {
	entries map[string]*domain.ItemOverview
	sets    int
	hits    int
}

func newMemOverviewCache() *memOverviewCache {
	return &memOverviewCache{entries: map[string]*domain.ItemOverview{}}
}

func (c *memOverviewCache) key(query domain.OverviewQuery) string {
	return fmt.Sprintf("%+v", query)
}

func (c *memOverviewCache) Get(ctx context.Context, query domain.OverviewQuery) (*domain.ItemOverview, bool, error) {
	overview, ok := c.entries[c.key(query)]
	if ok {
		c.hits++
	}
	return overview, ok, nil
}

func (c *memOverviewCache) Set(ctx context.Context, query domain.OverviewQuery, overview *domain.ItemOverview) error {
	c.entries[c.key(query)] = overview
	c.sets++
	return nil
}

func (c *memOverviewCache) Invalidate(ctx context.Context, query domain.OverviewQuery) error {
	delete(c.entries, c.key(query))
	return nil
}

func (c *memOverviewCache) InvalidateAll(ctx context.Context) error {
	c.entries = map[string]*domain.ItemOverview{}
	return nil
}
