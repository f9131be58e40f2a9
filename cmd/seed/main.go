// item360-backend/cmd/seed/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Initialize and seed the purchasing database",
		Commands: []*cli.Command{
			{
				Name:   "init-db",
				Usage:  "Create the purchasing schema",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: runInitDB,
			},
			{
				Name:  "load",
				Usage: "Load purchasing data from CSV files",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing seed CSV files, one per table",
						Value:   "./data/seeds",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Action: runLoad,
			},
			{
				Name:  "all",
				Usage: "Create the schema, then load data",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing seed CSV files, one per table",
						Value:   "./data/seeds",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Action: func(c *cli.Context) error {
					if err := runInitDB(c); err != nil {
						return err
					}
					return runLoad(c)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runInitDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(c.Context); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Creating purchasing schema...")
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(c.Context, stmt); err != nil {
			return fmt.Errorf("failed to run schema statement: %w", err)
		}
	}
	log.Println("Schema created successfully!")
	return nil
}

// seedTarget binds a table to its CSV file and upsert key.
type seedTarget struct {
	table    string
	columns  []string
	conflict string
}

var seedTargets = []seedTarget{
	{"items", []string{"item_code", "item_name", "stock_uom", "disabled"}, "item_code"},
	{"warehouses", []string{"name", "company", "branch", "disabled"}, "name"},
	{"suppliers", []string{"name", "supplier_name", "disabled", "on_hold", "tax_category", "payment_terms"}, "name"},
	{"bins", []string{"item_code", "warehouse", "actual_qty", "valuation_rate"}, "item_code, warehouse"},
	{"stock_ledger_entries", []string{"name", "company", "item_code", "warehouse", "posting_date", "actual_qty", "is_cancelled"}, "name"},
	{"item_reorder", []string{"parent", "warehouse", "reorder_level", "reorder_qty", "request_type"}, "parent, warehouse"},
	{"purchase_orders", []string{"name", "company", "supplier", "branch", "set_warehouse", "transaction_date", "docstatus", "modified"}, "name"},
	{"purchase_order_items", []string{"name", "parent", "idx", "item_code", "item_name", "warehouse", "schedule_date", "qty", "received_qty", "uom", "conversion_factor", "base_rate", "base_amount"}, "name"},
	{"purchase_receipts", []string{"name", "company", "supplier", "posting_date", "docstatus", "modified"}, "name"},
	{"purchase_receipt_items", []string{"name", "parent", "item_code", "warehouse", "qty", "uom", "conversion_factor", "base_rate", "purchase_order"}, "name"},
	{"purchase_invoices", []string{"name", "company", "supplier", "posting_date", "docstatus", "modified"}, "name"},
	{"purchase_invoice_items", []string{"name", "parent", "item_code", "warehouse", "qty", "uom", "conversion_factor", "base_rate"}, "name"},
	{"supplier_quotations", []string{"name", "company", "supplier", "transaction_date", "valid_till", "status", "docstatus", "modified"}, "name"},
	{"supplier_quotation_items", []string{"name", "parent", "item_code", "warehouse", "qty", "uom", "conversion_factor", "rate", "base_rate"}, "name"},
	{"stock_reservations", []string{"name", "item_code", "warehouse", "reserved_qty", "delivered_qty", "status"}, "name"},
}

func runLoad(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx := c.Context
	dataDir := c.String("data-dir")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	log.Println("Starting database seeding...")

	for _, target := range seedTargets {
		path := filepath.Join(dataDir, target.table+".csv")
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			log.Printf("Skipping %s: no file at %s\n", target.table, path)
			continue
		}
		if err := seedTable(ctx, tx, target, path); err != nil {
			return fmt.Errorf("failed to seed %s: %w", target.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

func seedTable(ctx context.Context, tx *sql.Tx, target seedTarget, filePath string) error {
	log.Printf("Seeding %s from %s\n", target.table, filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	placeholders := make([]string, len(target.columns))
	for i := range target.columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		target.table,
		strings.Join(target.columns, ", "),
		strings.Join(placeholders, ", "),
		target.conflict,
		buildUpdateClause(target.columns, target.conflict),
	)

	count := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		args := make([]interface{}, len(target.columns))
		for i, col := range target.columns {
			idx := getColumnIndex(header, col)
			if idx < 0 || idx >= len(record) {
				return fmt.Errorf("column '%s' missing from %s", col, filePath)
			}
			args[i] = nullIfEmpty(record[idx])
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
		count++
	}

	log.Printf("Successfully seeded %s (%d rows)\n", target.table, count)
	return nil
}

// nullIfEmpty returns NULL if the string is empty, otherwise returns the string
func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func getColumnIndex(header []string, column string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), column) {
			return i
		}
	}
	return -1
}

func buildUpdateClause(columns []string, conflict string) string {
	keys := make(map[string]bool)
	for _, k := range strings.Split(conflict, ",") {
		keys[strings.TrimSpace(k)] = true
	}

	var parts []string
	for _, col := range columns {
		if keys[col] {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	return strings.Join(parts, ", ")
}
