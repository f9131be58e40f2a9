// item360-backend/cmd/exporter/main.go
package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/erpmco/item360-backend/internal/config"
	"github.com/erpmco/item360-backend/internal/domain"
	"github.com/erpmco/item360-backend/internal/export"
	"github.com/erpmco/item360-backend/internal/repository/postgres"
	"github.com/erpmco/item360-backend/internal/service"
	"github.com/erpmco/item360-backend/internal/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "exporter",
		Usage: "Scan a purchase order and export the exception report",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db-url",
				Usage:    "Database connection string",
				Required: true,
				EnvVars:  []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:     "po",
				Usage:    "Purchase order name to scan",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "days",
				Usage: "Consumption window in days (0 uses the configured default)",
			},
			&cli.StringFlag{
				Name:  "out-dir",
				Usage: "Directory for the CSV report",
				Value: "./data/output",
			},
			&cli.BoolFlag{
				Name:  "upload",
				Usage: "Upload the report to object storage after writing it",
			},
		},
		Action: runExport,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runExport(c *cli.Context) error {
	cfg := config.Load()

	db, err := postgres.Open("pgx", c.String("db-url"))
	if err != nil {
		return err
	}
	defer db.Close()

	itemRepo := postgres.NewItemRepository(db)
	purchaseRepo := postgres.NewPurchaseRepository(db)
	supplierRepo := postgres.NewSupplierRepository(db)

	scanner := service.NewExceptionScanService(itemRepo, purchaseRepo, supplierRepo, cfg.Thresholds)

	poName := c.String("po")
	rows, err := scanner.ScanPOExceptions(c.Context, domain.ScanQuery{
		POName:          poName,
		ConsumptionDays: c.Int("days"),
	})
	if err != nil {
		return fmt.Errorf("scan failed for %s: %w", poName, err)
	}

	outDir := c.String("out-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure output dir %s: %w", outDir, err)
	}

	fileName := fmt.Sprintf("exceptions_%s_%s.csv", poName, time.Now().Format("20060102"))
	outPath := filepath.Join(outDir, fileName)
	if err := export.SaveExceptionCSV(outPath, rows); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	log.Printf("Wrote %d rows to %s", len(rows), outPath)

	if !c.Bool("upload") {
		return nil
	}

	client, err := storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.WriteExceptionCSV(&buf, rows); err != nil {
		return err
	}

	key := filepath.ToSlash(filepath.Join("reports", fileName))
	if err := client.UploadObject(c.Context, key, buf.Bytes()); err != nil {
		return err
	}
	log.Printf("Uploaded report to %s", key)
	return nil
}
