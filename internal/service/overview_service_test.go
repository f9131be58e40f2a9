package service

import (
	"context"
	"testing"
	"time"

	"github.com/erpmco/item360-backend/internal/cache"
	"github.com/erpmco/item360-backend/internal/config"
	"github.com/erpmco/item360-backend/internal/domain"
	"github.com/stretchr/testify/require"
)

var testDefaults = config.ThresholdConfig{
	PriceVarPct:        10,
	CoverOverstockDays: 90,
	ConsumptionDays:    180,
	HistoryLimit:       5,
	LeadTimeReceipts:   5,
}

func ptr(v float64) *float64 { return &v }

func newOverviewFixture() (*ItemOverviewService, *fakeItemRepo, *fakePurchaseRepo, *fakeSupplierRepo) {
	items := newFakeItemRepo()
	purchases := newFakePurchaseRepo()
	suppliers := newFakeSupplierRepo()

	svc := NewItemOverviewService(items, purchases, suppliers, cache.NewNoopOverviewCache(), testDefaults)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	}
	return svc, items, purchases, suppliers
}

func seedOverviewData(items *fakeItemRepo, purchases *fakePurchaseRepo) {
	items.items["ITM-001"] = domain.Item{ItemCode: "ITM-001", ItemName: "Widget", StockUOM: "Nos"}
	items.stockByWh["ITM-001"] = []domain.WarehouseStock{
		{Warehouse: "WH-A", Qty: 40, ValuationRate: 9.5},
		{Warehouse: "WH-B", Qty: 60, ValuationRate: 10.1},
	}
	items.outQty["ITM-001"] = 450

	purchases.openLines["ITM-001"] = []domain.OpenPOLine{
		{PO: "PO-010", Qty: 10, ReceivedQty: 4, OpenQty: 6},
		{PO: "PO-011", Qty: 5, ReceivedQty: 0, OpenQty: 5},
		{PO: "PO-012", Qty: 8, ReceivedQty: 7, OpenQty: 1},
	}
	purchases.history["ITM-001"] = []domain.PurchaseHistoryEntry{
		{Supplier: "SUP-001", BaseRate: 200, ConversionFactor: 2, BaseRatePerStockUOM: ptr(100), Ref: "PINV-005"},
		{Supplier: "SUP-002", BaseRate: 95, ConversionFactor: 1, BaseRatePerStockUOM: ptr(95), Ref: "PINV-004"},
	}
	purchases.rates["ITM-001"] = []float64{100, 95, 105}
	purchases.leadSamples = []domain.LeadTimeSample{
		{PO: "PO-001", PR: "PR-001", LeadDays: 3},
		{PO: "PO-002", PR: "PR-002", LeadDays: 5},
		{PO: "PO-003", PR: "PR-003", LeadDays: 7},
	}
}

func TestComputeItemOverviewAggregates(t *testing.T) {
	svc, items, purchases, _ := newOverviewFixture()
	seedOverviewData(items, purchases)

	overview, err := svc.ComputeItemOverview(context.Background(), domain.OverviewQuery{
		Company:  "ACME",
		ItemCode: "ITM-001",
	})
	require.NoError(t, err)

	kpis := overview.KPIs
	require.Equal(t, 100.0, kpis.TotalStock)
	require.Equal(t, 12.0, kpis.OpenPOQty)
	require.Len(t, kpis.OpenPOs, 3)

	// Defaults applied: 180-day window ending "today".
	require.Equal(t, 180, kpis.ConsumptionDays)
	require.Equal(t, "2026-08-01", kpis.ConsumptionTo)
	require.Equal(t, "2026-02-03", kpis.ConsumptionFrom)
	require.Equal(t, 450.0, kpis.TotalOutQty)
	require.Equal(t, 2.5, kpis.AvgPerDay)

	require.NotNil(t, kpis.CoverCurrentDays)
	require.Equal(t, 40.0, *kpis.CoverCurrentDays)
	require.NotNil(t, kpis.CoverPostDays)
	require.InDelta(t, 44.8, *kpis.CoverPostDays, 1e-9)

	require.NotNil(t, kpis.LastPurchase)
	require.Equal(t, "PINV-005", kpis.LastPurchase.Ref)

	require.Equal(t, 3, kpis.LeadTime.N)
	require.NotNil(t, kpis.LeadTime.AvgDays)
	require.Equal(t, 5.0, *kpis.LeadTime.AvgDays)

	trend, ok := overview.Purchases.Trends["m3"]
	require.True(t, ok)
	require.Equal(t, 3, trend.N)
	require.Equal(t, 95.0, *trend.MinRate)
	require.Equal(t, 100.0, *trend.AvgRate)
	require.Equal(t, 105.0, *trend.MaxRate)
	require.Contains(t, overview.Purchases.Trends, "m6")
	require.Contains(t, overview.Purchases.Trends, "m12")
}

func TestComputeItemOverviewPriceException(t *testing.T) {
	svc, items, purchases, _ := newOverviewFixture()
	seedOverviewData(items, purchases)

	overview, err := svc.ComputeItemOverview(context.Background(), domain.OverviewQuery{
		Company:            "ACME",
		ItemCode:           "ITM-001",
		POName:             "PO-100",
		POBaseRate:         ptr(115),
		POConversionFactor: ptr(1),
	})
	require.NoError(t, err)

	// Current PO is excluded from the open-PO aggregation.
	require.Equal(t, "PO-100", purchases.gotExcludePO)

	flags := overview.Flags
	require.NotNil(t, flags.PriceVariancePct)
	require.Equal(t, 15.0, *flags.PriceVariancePct)
	require.True(t, flags.PriceException)
	require.False(t, flags.CoverException)
}

func TestComputeItemOverviewSupplierScoped(t *testing.T) {
	svc, items, purchases, suppliers := newOverviewFixture()
	seedOverviewData(items, purchases)
	suppliers.suppliers["SUP-002"] = domain.SupplierInfo{Supplier: "SUP-002", OnHold: true}

	overview, err := svc.ComputeItemOverview(context.Background(), domain.OverviewQuery{
		Company:            "ACME",
		ItemCode:           "ITM-001",
		Supplier:           "SUP-002",
		POBaseRate:         ptr(115),
		POConversionFactor: ptr(1),
	})
	require.NoError(t, err)

	// With a supplier filter, "last rate" is the last rate for that
	// supplier (95), not the overall last (100).
	require.NotNil(t, overview.Flags.PriceVariancePct)
	require.InDelta(t, 21.0526, *overview.Flags.PriceVariancePct, 1e-3)
	require.True(t, overview.Flags.PriceException)

	require.True(t, overview.Flags.SupplierOnHold)
	require.True(t, overview.Flags.SupplierException)
	require.NotNil(t, overview.KPIs.SupplierInfo)
}

func TestComputeItemOverviewZeroConsumption(t *testing.T) {
	svc, items, _, _ := newOverviewFixture()
	items.items["ITM-002"] = domain.Item{ItemCode: "ITM-002"}

	overview, err := svc.ComputeItemOverview(context.Background(), domain.OverviewQuery{
		Company:  "ACME",
		ItemCode: "ITM-002",
	})
	require.NoError(t, err)

	require.Equal(t, 0.0, overview.KPIs.AvgPerDay)
	require.Nil(t, overview.KPIs.CoverCurrentDays)
	require.Nil(t, overview.KPIs.CoverPostDays)
	require.Nil(t, overview.KPIs.LastPurchase)
	require.Nil(t, overview.Flags.PriceVariancePct)
	require.Equal(t, 0, overview.KPIs.LeadTime.N)

	// Payload collections are empty, never null.
	require.NotNil(t, overview.KPIs.OpenPOs)
	require.NotNil(t, overview.Purchases.History)
	require.NotNil(t, overview.Purchases.Quotations)
}

func TestComputeItemOverviewUnknownItem(t *testing.T) {
	svc, _, _, _ := newOverviewFixture()

	_, err := svc.ComputeItemOverview(context.Background(), domain.OverviewQuery{
		Company:  "ACME",
		ItemCode: "MISSING",
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestComputeItemOverviewInvalidArguments(t *testing.T) {
	svc, items, _, _ := newOverviewFixture()
	items.items["ITM-001"] = domain.Item{ItemCode: "ITM-001"}

	_, err := svc.ComputeItemOverview(context.Background(), domain.OverviewQuery{
		ItemCode: "ITM-001",
	})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.ComputeItemOverview(context.Background(), domain.OverviewQuery{
		Company:         "ACME",
		ItemCode:        "ITM-001",
		ConsumptionDays: -30,
	})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestComputeItemOverviewBranchScope(t *testing.T) {
	svc, items, purchases, _ := newOverviewFixture()
	seedOverviewData(items, purchases)
	items.branchWhs["BR-01"] = []string{"WH-A", "WH-B"}

	overview, err := svc.ComputeItemOverview(context.Background(), domain.OverviewQuery{
		Company:  "ACME",
		Branch:   "BR-01",
		ItemCode: "ITM-001",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"WH-A", "WH-B"}, overview.Scope.BranchWarehouses)
}

func TestComputeItemOverviewCacheAside(t *testing.T) {
	items := newFakeItemRepo()
	purchases := newFakePurchaseRepo()
	seedOverviewData(items, purchases)

	memCache := newMemOverviewCache()
	svc := NewItemOverviewService(items, purchases, newFakeSupplierRepo(), memCache, testDefaults)
	svc.now = func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) }

	query := domain.OverviewQuery{Company: "ACME", ItemCode: "ITM-001"}

	first, err := svc.ComputeItemOverview(context.Background(), query)
	require.NoError(t, err)
	require.Equal(t, 1, memCache.sets)
	require.Equal(t, 0, memCache.hits)

	// Mutate the backing store; the cached snapshot must win.
	items.outQty["ITM-001"] = 0

	second, err := svc.ComputeItemOverview(context.Background(), query)
	require.NoError(t, err)
	require.Equal(t, 1, memCache.sets)
	require.Equal(t, 1, memCache.hits)
	require.Equal(t, first.KPIs.AvgPerDay, second.KPIs.AvgPerDay)
}
