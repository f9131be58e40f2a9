// item360-backend/internal/domain/models.go
package domain

import "time"

// Item represents a row from the item master.
type Item struct {
	ItemCode string `json:"item_code" db:"item_code"`
	ItemName string `json:"item_name" db:"item_name"`
	StockUOM string `json:"stock_uom" db:"stock_uom"`
	Disabled bool   `json:"disabled" db:"disabled"`
}

// WarehouseScope is the resolved warehouse filter applied to every aggregate.
// Priority: branch warehouses, then the explicit warehouse, else unscoped.
type WarehouseScope struct {
	Company    string
	Warehouses []string
	Warehouse  string
}

// OverviewScope echoes the scope the snapshot was computed under.
type OverviewScope struct {
	Company          string   `json:"company"`
	Branch           string   `json:"branch,omitempty"`
	Warehouse        string   `json:"warehouse,omitempty"`
	BranchWarehouses []string `json:"branch_warehouses,omitempty"`
}

// WarehouseStock is on-hand quantity and valuation for a single warehouse.
type WarehouseStock struct {
	Warehouse     string  `json:"warehouse" db:"warehouse"`
	Qty           float64 `json:"qty" db:"qty"`
	ValuationRate float64 `json:"valuation_rate" db:"valuation_rate"`
}

// OpenPOLine is a submitted purchase order line with quantity still pending.
type OpenPOLine struct {
	PO               string     `json:"po" db:"po"`
	TransactionDate  time.Time  `json:"transaction_date" db:"transaction_date"`
	Supplier         string     `json:"supplier" db:"supplier"`
	ScheduleDate     *time.Time `json:"schedule_date,omitempty" db:"schedule_date"`
	Warehouse        string     `json:"warehouse" db:"warehouse"`
	UOM              string     `json:"uom" db:"uom"`
	ConversionFactor float64    `json:"conversion_factor" db:"conversion_factor"`
	Qty              float64    `json:"qty" db:"qty"`
	ReceivedQty      float64    `json:"received_qty" db:"received_qty"`
	OpenQty          float64    `json:"open_qty" db:"open_qty"`
	BaseRate         float64    `json:"base_rate" db:"base_rate"`
	BaseAmount       float64    `json:"base_amount" db:"base_amount"`
}

// PurchaseHistoryEntry is one completed purchase transaction, normalized to
// the stock UOM. BaseRatePerStockUOM is nil when the conversion factor is
// zero; trend and variance math only ever reads the normalized field.
type PurchaseHistoryEntry struct {
	Date                time.Time `json:"date" db:"date"`
	Supplier            string    `json:"supplier" db:"supplier"`
	Warehouse           string    `json:"warehouse" db:"warehouse"`
	Qty                 float64   `json:"qty" db:"qty"`
	UOM                 string    `json:"uom" db:"uom"`
	ConversionFactor    float64   `json:"conversion_factor" db:"conversion_factor"`
	BaseRate            float64   `json:"base_rate" db:"base_rate"`
	BaseRatePerStockUOM *float64  `json:"base_rate_per_stock_uom" db:"base_rate_per_stock_uom"`
	Ref                 string    `json:"ref" db:"ref"`
	RefDoctype          string    `json:"ref_doctype" db:"ref_doctype"`
}

// RateTrend summarizes normalized rates over one rolling window.
type RateTrend struct {
	FromDate string   `json:"from_date"`
	Months   int      `json:"months"`
	MinRate  *float64 `json:"min_rate"`
	AvgRate  *float64 `json:"avg_rate"`
	MaxRate  *float64 `json:"max_rate"`
	N        int      `json:"n"`
}

// SupplierLastRate is the most recent normalized rate per supplier.
type SupplierLastRate struct {
	Supplier            string    `json:"supplier" db:"supplier"`
	Date                time.Time `json:"date" db:"date"`
	BaseRatePerStockUOM *float64  `json:"base_rate_per_stock_uom" db:"base_rate_per_stock_uom"`
	Ref                 string    `json:"ref" db:"ref"`
	RefDoctype          string    `json:"ref_doctype" db:"ref_doctype"`
}

// SupplierQuotation is a submitted quotation line for the item.
type SupplierQuotation struct {
	Quotation        string     `json:"quotation" db:"quotation"`
	Supplier         string     `json:"supplier" db:"supplier"`
	Qty              float64    `json:"qty" db:"qty"`
	UOM              string     `json:"uom" db:"uom"`
	ConversionFactor float64    `json:"conversion_factor" db:"conversion_factor"`
	Rate             float64    `json:"rate" db:"rate"`
	BaseRate         float64    `json:"base_rate" db:"base_rate"`
	ValidTill        *time.Time `json:"valid_till,omitempty" db:"valid_till"`
	TransactionDate  time.Time  `json:"transaction_date" db:"transaction_date"`
	Status           string     `json:"status" db:"status"`
}

// ReorderSetting is the warehouse-specific replenishment rule for an item.
type ReorderSetting struct {
	Warehouse    string  `json:"warehouse" db:"warehouse"`
	ReorderLevel float64 `json:"reorder_level" db:"reorder_level"`
	ReorderQty   float64 `json:"reorder_qty" db:"reorder_qty"`
	RequestType  string  `json:"request_type" db:"request_type"`
}

// LeadTimeSample is one receipt explicitly linked to its originating order.
type LeadTimeSample struct {
	PO       string    `json:"po" db:"po"`
	PODate   time.Time `json:"po_date" db:"po_date"`
	PR       string    `json:"pr" db:"pr"`
	PRDate   time.Time `json:"pr_date" db:"pr_date"`
	LeadDays float64   `json:"lead_days" db:"lead_days"`
}

// LeadTimeStat is the order-to-receipt latency averaged over linked receipts.
// AvgDays is nil when no linked receipt exists.
type LeadTimeStat struct {
	AvgDays *float64         `json:"avg_days"`
	N       int              `json:"n"`
	Samples []LeadTimeSample `json:"samples"`
}

// SupplierInfo carries the supplier master flags relevant to exceptions.
type SupplierInfo struct {
	Supplier     string `json:"supplier" db:"supplier"`
	SupplierName string `json:"supplier_name" db:"supplier_name"`
	Disabled     bool   `json:"disabled" db:"disabled"`
	OnHold       bool   `json:"on_hold" db:"on_hold"`
	TaxCategory  string `json:"tax_category" db:"tax_category"`
	PaymentTerms string `json:"payment_terms" db:"payment_terms"`
}

// ExceptionFlags are derived per query from current thresholds, never stored.
type ExceptionFlags struct {
	PriceVariancePct  *float64 `json:"price_variance_pct"`
	PriceException    bool     `json:"price_exception"`
	CoverException    bool     `json:"cover_exception"`
	SupplierException bool     `json:"supplier_exception"`
	SupplierDisabled  bool     `json:"supplier_disabled"`
	SupplierOnHold    bool     `json:"supplier_on_hold"`
	Notes             []string `json:"notes"`
}

// KPISnapshot is the stock/consumption/cover core of the overview payload.
type KPISnapshot struct {
	TotalStock       float64          `json:"total_stock"`
	StockByWarehouse []WarehouseStock `json:"stock_by_warehouse"`

	OpenPOQty float64      `json:"open_po_qty"`
	OpenPOs   []OpenPOLine `json:"open_pos"`

	ConsumptionFrom string  `json:"consumption_from"`
	ConsumptionTo   string  `json:"consumption_to"`
	ConsumptionDays int     `json:"consumption_days"`
	TotalOutQty     float64 `json:"total_out_qty"`
	AvgPerDay       float64 `json:"avg_per_day"`

	CoverCurrentDays *float64 `json:"cover_current_days"`
	CoverPostDays    *float64 `json:"cover_post_days"`

	LastPurchase *PurchaseHistoryEntry `json:"last_purchase"`
	LeadTime     LeadTimeStat          `json:"lead_time"`

	SupplierInfo *SupplierInfo `json:"supplier_info,omitempty"`
}

// PurchaseSummary groups the price-history side of the overview.
type PurchaseSummary struct {
	History           []PurchaseHistoryEntry `json:"history"`
	Trends            map[string]RateTrend   `json:"trends"`
	SupplierLastRates []SupplierLastRate     `json:"supplier_last_rates"`
	Quotations        []SupplierQuotation    `json:"quotations"`
}

// Replenishment groups reorder configuration.
type Replenishment struct {
	Reorder []ReorderSetting `json:"reorder"`
}

// ItemOverview is the full aggregated snapshot for one item.
type ItemOverview struct {
	Scope         OverviewScope   `json:"scope"`
	KPIs          KPISnapshot     `json:"kpis"`
	Purchases     PurchaseSummary `json:"purchases"`
	Replenishment Replenishment   `json:"replenishment"`
	Flags         ExceptionFlags  `json:"flags"`
}

// POLine is one line of a loaded purchase order, as the scan reads it.
type POLine struct {
	Name             string  `json:"name" db:"name"`
	ItemCode         string  `json:"item_code" db:"item_code"`
	ItemName         string  `json:"item_name" db:"item_name"`
	Warehouse        string  `json:"warehouse" db:"warehouse"`
	Qty              float64 `json:"qty" db:"qty"`
	ReceivedQty      float64 `json:"received_qty" db:"received_qty"`
	UOM              string  `json:"uom" db:"uom"`
	ConversionFactor float64 `json:"conversion_factor" db:"conversion_factor"`
	BaseRate         float64 `json:"base_rate" db:"base_rate"`
}

// PurchaseOrder is a submitted purchase order header with its lines.
type PurchaseOrder struct {
	Name            string    `json:"name" db:"name"`
	Company         string    `json:"company" db:"company"`
	Supplier        string    `json:"supplier" db:"supplier"`
	Branch          string    `json:"branch" db:"branch"`
	SetWarehouse    string    `json:"set_warehouse" db:"set_warehouse"`
	TransactionDate time.Time `json:"transaction_date" db:"transaction_date"`
	Lines           []POLine  `json:"lines"`
}

// ExceptionRow is the per-line result of a PO exception scan. One row is
// emitted per PO line, in input order, whether or not it is flagged.
type ExceptionRow struct {
	PODetail  string  `json:"po_detail"`
	ItemCode  string  `json:"item_code"`
	ItemName  string  `json:"item_name"`
	Warehouse string  `json:"warehouse"`
	Qty       float64 `json:"qty"`
	UOM       string  `json:"uom"`

	TotalStock    float64  `json:"total_stock"`
	AvgPerDay     float64  `json:"avg_per_day"`
	OpenPOQty     float64  `json:"open_po_qty"`
	CoverPostDays *float64 `json:"cover_post_days"`

	LastRatePerStockUOM float64  `json:"last_purchase_base_per_stock"`
	PORatePerStockUOM   *float64 `json:"po_base_per_stock"`
	PriceVariancePct    *float64 `json:"price_variance_pct"`

	PriceException    bool `json:"price_exception"`
	CoverException    bool `json:"cover_exception"`
	SupplierException bool `json:"supplier_exception"`
	SupplierDisabled  bool `json:"supplier_disabled"`
	SupplierOnHold    bool `json:"supplier_on_hold"`
}

// ItemTotals is the stock position against the reservation ledger.
type ItemTotals struct {
	TotalStock     float64 `json:"total_stock"`
	TotalAllocated float64 `json:"total_allocated"`
	Remaining      float64 `json:"remaining"`
}

// OverviewQuery is the full input of an item overview computation.
type OverviewQuery struct {
	Company          string `json:"company"`
	Branch           string `json:"branch"`
	ItemCode         string `json:"item_code"`
	Supplier         string `json:"supplier"`
	Warehouse        string `json:"warehouse"`
	ConsumptionDays  int    `json:"consumption_days"`
	HistoryLimit     int    `json:"history_limit"`
	LeadTimeReceipts int    `json:"lead_time_receipts"`

	// Pending PO line context for price variance detection.
	POName             string   `json:"po_name"`
	POBaseRate         *float64 `json:"po_base_rate"`
	POUOM              string   `json:"po_uom"`
	POConversionFactor *float64 `json:"po_conversion_factor"`

	// Zero values fall back to configured defaults.
	PriceVarThreshPct  float64 `json:"price_var_thresh_pct"`
	CoverOverstockDays float64 `json:"cover_overstock_days"`
}

// ScanQuery is the input of a PO exception scan.
type ScanQuery struct {
	POName             string  `json:"po_name"`
	ConsumptionDays    int     `json:"consumption_days"`
	PriceVarThreshPct  float64 `json:"price_var_thresh_pct"`
	CoverOverstockDays float64 `json:"cover_overstock_days"`
}
