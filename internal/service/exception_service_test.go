package service

import (
	"context"
	"testing"
	"time"

	"github.com/erpmco/item360-backend/internal/domain"
	"github.com/stretchr/testify/require"
)

func newScanFixture() (*ExceptionScanService, *fakeItemRepo, *fakePurchaseRepo, *fakeSupplierRepo) {
	items := newFakeItemRepo()
	purchases := newFakePurchaseRepo()
	suppliers := newFakeSupplierRepo()

	svc := NewExceptionScanService(items, purchases, suppliers, testDefaults)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	}
	return svc, items, purchases, suppliers
}

func seedScanPO(purchases *fakePurchaseRepo, suppliers *fakeSupplierRepo) {
	purchases.orders["PO-100"] = domain.PurchaseOrder{
		Name:         "PO-100",
		Company:      "ACME",
		Supplier:     "SUP-001",
		SetWarehouse: "WH-MAIN",
		Lines: []domain.POLine{
			{Name: "POD-1", ItemCode: "ITM-001", ItemName: "Widget", Warehouse: "WH-A", Qty: 10, UOM: "Box", ConversionFactor: 2, BaseRate: 230},
			{Name: "POD-2", ItemCode: "ITM-002", ItemName: "Gadget", Qty: 5, UOM: "Nos", ConversionFactor: 1, BaseRate: 50},
			{Name: "POD-3", ItemCode: "ITM-003", ItemName: "Gizmo", Warehouse: "WH-C", Qty: 3, UOM: "Nos", ConversionFactor: 1, BaseRate: 20},
		},
	}
	suppliers.suppliers["SUP-001"] = domain.SupplierInfo{Supplier: "SUP-001"}
}

func TestScanPOExceptionsRowPerLine(t *testing.T) {
	svc, items, purchases, suppliers := newScanFixture()
	seedScanPO(purchases, suppliers)

	// ITM-001: last rate 100, PO rate 230 over cf 2 = 115 per stock unit.
	purchases.lastRateMap["ITM-001"] = 100
	// ITM-002: no consumption and heavy stock, cover blows past 90 days.
	purchases.lastRateMap["ITM-002"] = 50
	items.stockByWh["ITM-002"] = []domain.WarehouseStock{{Warehouse: "WH-MAIN", Qty: 500}}
	items.outQty["ITM-002"] = 180
	// ITM-003: matches its last rate exactly, nothing to flag.
	purchases.lastRateMap["ITM-003"] = 20

	rows, err := svc.ScanPOExceptions(context.Background(), domain.ScanQuery{POName: "PO-100"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "PO-100", purchases.gotExcludePO)

	// Input order is preserved.
	require.Equal(t, []string{"POD-1", "POD-2", "POD-3"}, []string{rows[0].PODetail, rows[1].PODetail, rows[2].PODetail})

	first := rows[0]
	require.Equal(t, "ITM-001", first.ItemCode)
	require.Equal(t, "WH-A", first.Warehouse)
	require.NotNil(t, first.PORatePerStockUOM)
	require.Equal(t, 115.0, *first.PORatePerStockUOM)
	require.NotNil(t, first.PriceVariancePct)
	require.Equal(t, 15.0, *first.PriceVariancePct)
	require.True(t, first.PriceException)
	require.False(t, first.CoverException)

	second := rows[1]
	// Blank line warehouse falls back to the order-level warehouse.
	require.Equal(t, "WH-MAIN", second.Warehouse)
	require.Equal(t, 500.0, second.TotalStock)
	require.Equal(t, 1.0, second.AvgPerDay)
	require.NotNil(t, second.CoverPostDays)
	require.Equal(t, 500.0, *second.CoverPostDays)
	require.True(t, second.CoverException)
	require.False(t, second.PriceException)

	third := rows[2]
	require.NotNil(t, third.PriceVariancePct)
	require.Equal(t, 0.0, *third.PriceVariancePct)
	require.False(t, third.PriceException)
	require.False(t, third.CoverException)
	require.False(t, third.SupplierException)
}

func TestScanPOExceptionsSkipsBlankLines(t *testing.T) {
	svc, _, purchases, suppliers := newScanFixture()
	seedScanPO(purchases, suppliers)

	po := purchases.orders["PO-100"]
	po.Lines = append(po.Lines, domain.POLine{Name: "POD-4"})
	purchases.orders["PO-100"] = po

	rows, err := svc.ScanPOExceptions(context.Background(), domain.ScanQuery{POName: "PO-100"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestScanPOExceptionsSupplierOnHoldFlagsAllRows(t *testing.T) {
	svc, _, purchases, suppliers := newScanFixture()
	seedScanPO(purchases, suppliers)
	suppliers.suppliers["SUP-001"] = domain.SupplierInfo{Supplier: "SUP-001", OnHold: true}

	rows, err := svc.ScanPOExceptions(context.Background(), domain.ScanQuery{POName: "PO-100"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		require.True(t, row.SupplierOnHold)
		require.True(t, row.SupplierException)
	}
}

func TestScanPOExceptionsSupplierMissingFromMaster(t *testing.T) {
	svc, _, purchases, suppliers := newScanFixture()
	seedScanPO(purchases, suppliers)
	delete(suppliers.suppliers, "SUP-001")

	rows, err := svc.ScanPOExceptions(context.Background(), domain.ScanQuery{POName: "PO-100"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		require.False(t, row.SupplierException)
	}
}

func TestScanPOExceptionsUnknownPO(t *testing.T) {
	svc, _, _, _ := newScanFixture()

	_, err := svc.ScanPOExceptions(context.Background(), domain.ScanQuery{POName: "PO-404"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScanPOExceptionsInvalidArguments(t *testing.T) {
	svc, _, _, _ := newScanFixture()

	_, err := svc.ScanPOExceptions(context.Background(), domain.ScanQuery{})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.ScanPOExceptions(context.Background(), domain.ScanQuery{POName: "PO-100", ConsumptionDays: -1})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestScanPOExceptionsCanceledContext(t *testing.T) {
	svc, _, purchases, suppliers := newScanFixture()
	seedScanPO(purchases, suppliers)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ScanPOExceptions(ctx, domain.ScanQuery{POName: "PO-100"})
	require.ErrorIs(t, err, context.Canceled)
}
