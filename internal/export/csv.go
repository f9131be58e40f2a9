// item360-backend/internal/export/csv.go
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/erpmco/item360-backend/internal/domain"
)

var exceptionHeader = []string{
	"PO Detail", "Item Code", "Item Name", "Warehouse", "Qty", "UOM",
	"Total Stock", "Avg/Day", "Open PO Qty", "Cover Post Days",
	"Last Rate/Stock UOM", "PO Rate/Stock UOM", "Price Variance %",
	"Price Exception", "Cover Exception", "Supplier Exception",
}

// WriteExceptionCSV renders scan rows as CSV, one output row per input row.
// Nil ratios render as empty cells rather than zeroes.
func WriteExceptionCSV(w io.Writer, rows []domain.ExceptionRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(exceptionHeader); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.PODetail,
			row.ItemCode,
			row.ItemName,
			row.Warehouse,
			fmt.Sprintf("%.2f", row.Qty),
			row.UOM,
			fmt.Sprintf("%.2f", row.TotalStock),
			fmt.Sprintf("%.2f", row.AvgPerDay),
			fmt.Sprintf("%.2f", row.OpenPOQty),
			formatOptional(row.CoverPostDays, 1),
			fmt.Sprintf("%.2f", row.LastRatePerStockUOM),
			formatOptional(row.PORatePerStockUOM, 2),
			formatOptional(row.PriceVariancePct, 2),
			strconv.FormatBool(row.PriceException),
			strconv.FormatBool(row.CoverException),
			strconv.FormatBool(row.SupplierException),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveExceptionCSV writes the scan result to a local file.
func SaveExceptionCSV(path string, rows []domain.ExceptionRow) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteExceptionCSV(file, rows)
}

func formatOptional(v *float64, decimals int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', decimals, 64)
}
