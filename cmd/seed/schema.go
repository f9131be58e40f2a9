// item360-backend/cmd/seed/schema.go
package main

// schemaStatements create the purchasing tables the aggregator reads.
// Submitted documents carry docstatus = 1; drafts and cancellations are
// never picked up by the queries.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS items (
		item_code TEXT PRIMARY KEY,
		item_name TEXT,
		stock_uom TEXT,
		disabled BOOLEAN NOT NULL DEFAULT FALSE
	)`,

	`CREATE TABLE IF NOT EXISTS warehouses (
		name TEXT PRIMARY KEY,
		company TEXT NOT NULL,
		branch TEXT,
		disabled BOOLEAN NOT NULL DEFAULT FALSE
	)`,

	`CREATE TABLE IF NOT EXISTS suppliers (
		name TEXT PRIMARY KEY,
		supplier_name TEXT,
		disabled BOOLEAN NOT NULL DEFAULT FALSE,
		on_hold BOOLEAN NOT NULL DEFAULT FALSE,
		tax_category TEXT,
		payment_terms TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS bins (
		item_code TEXT NOT NULL REFERENCES items(item_code),
		warehouse TEXT NOT NULL REFERENCES warehouses(name),
		actual_qty NUMERIC NOT NULL DEFAULT 0,
		valuation_rate NUMERIC NOT NULL DEFAULT 0,
		PRIMARY KEY (item_code, warehouse)
	)`,

	`CREATE TABLE IF NOT EXISTS stock_ledger_entries (
		name TEXT PRIMARY KEY,
		company TEXT NOT NULL,
		item_code TEXT NOT NULL REFERENCES items(item_code),
		warehouse TEXT NOT NULL,
		posting_date DATE NOT NULL,
		actual_qty NUMERIC NOT NULL,
		is_cancelled BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sle_item_date
		ON stock_ledger_entries (item_code, posting_date)`,

	`CREATE TABLE IF NOT EXISTS item_reorder (
		parent TEXT NOT NULL REFERENCES items(item_code),
		warehouse TEXT NOT NULL,
		reorder_level NUMERIC NOT NULL DEFAULT 0,
		reorder_qty NUMERIC NOT NULL DEFAULT 0,
		request_type TEXT,
		PRIMARY KEY (parent, warehouse)
	)`,

	`CREATE TABLE IF NOT EXISTS purchase_orders (
		name TEXT PRIMARY KEY,
		company TEXT NOT NULL,
		supplier TEXT,
		branch TEXT,
		set_warehouse TEXT,
		transaction_date DATE NOT NULL,
		docstatus SMALLINT NOT NULL DEFAULT 0,
		modified TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS purchase_order_items (
		name TEXT PRIMARY KEY,
		parent TEXT NOT NULL REFERENCES purchase_orders(name),
		idx INT NOT NULL DEFAULT 0,
		item_code TEXT,
		item_name TEXT,
		warehouse TEXT,
		schedule_date DATE,
		qty NUMERIC NOT NULL DEFAULT 0,
		received_qty NUMERIC DEFAULT 0,
		uom TEXT,
		conversion_factor NUMERIC DEFAULT 1,
		base_rate NUMERIC DEFAULT 0,
		base_amount NUMERIC DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_poi_item
		ON purchase_order_items (item_code)`,

	`CREATE TABLE IF NOT EXISTS purchase_receipts (
		name TEXT PRIMARY KEY,
		company TEXT NOT NULL,
		supplier TEXT,
		posting_date DATE NOT NULL,
		docstatus SMALLINT NOT NULL DEFAULT 0,
		modified TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS purchase_receipt_items (
		name TEXT PRIMARY KEY,
		parent TEXT NOT NULL REFERENCES purchase_receipts(name),
		item_code TEXT,
		warehouse TEXT,
		qty NUMERIC NOT NULL DEFAULT 0,
		uom TEXT,
		conversion_factor NUMERIC DEFAULT 1,
		base_rate NUMERIC DEFAULT 0,
		purchase_order TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pri_item
		ON purchase_receipt_items (item_code)`,

	`CREATE TABLE IF NOT EXISTS purchase_invoices (
		name TEXT PRIMARY KEY,
		company TEXT NOT NULL,
		supplier TEXT,
		posting_date DATE NOT NULL,
		docstatus SMALLINT NOT NULL DEFAULT 0,
		modified TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS purchase_invoice_items (
		name TEXT PRIMARY KEY,
		parent TEXT NOT NULL REFERENCES purchase_invoices(name),
		item_code TEXT,
		warehouse TEXT,
		qty NUMERIC NOT NULL DEFAULT 0,
		uom TEXT,
		conversion_factor NUMERIC DEFAULT 1,
		base_rate NUMERIC DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pii_item
		ON purchase_invoice_items (item_code)`,

	`CREATE TABLE IF NOT EXISTS supplier_quotations (
		name TEXT PRIMARY KEY,
		company TEXT NOT NULL,
		supplier TEXT,
		transaction_date DATE NOT NULL,
		valid_till DATE,
		status TEXT,
		docstatus SMALLINT NOT NULL DEFAULT 0,
		modified TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS supplier_quotation_items (
		name TEXT PRIMARY KEY,
		parent TEXT NOT NULL REFERENCES supplier_quotations(name),
		item_code TEXT,
		warehouse TEXT,
		qty NUMERIC NOT NULL DEFAULT 0,
		uom TEXT,
		conversion_factor NUMERIC DEFAULT 1,
		rate NUMERIC DEFAULT 0,
		base_rate NUMERIC DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS stock_reservations (
		name TEXT PRIMARY KEY,
		item_code TEXT NOT NULL REFERENCES items(item_code),
		warehouse TEXT NOT NULL,
		reserved_qty NUMERIC NOT NULL DEFAULT 0,
		delivered_qty NUMERIC NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'Reserved'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_res_item_wh
		ON stock_reservations (item_code, warehouse)`,
}
