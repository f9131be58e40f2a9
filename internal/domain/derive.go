// item360-backend/internal/domain/derive.go
package domain

import (
	"fmt"
	"math"
	"time"
)

// ConsumptionWindow returns the inclusive [from, to] interval ending today.
// days must already be validated positive; the window spans exactly days
// calendar days, so from = today - (days - 1).
func ConsumptionWindow(today time.Time, days int) (time.Time, time.Time) {
	back := days - 1
	if back < 0 {
		back = 0
	}
	return today.AddDate(0, 0, -back), today
}

// AvgPerDay divides total outbound quantity over the window length.
func AvgPerDay(totalOutQty float64, days int) float64 {
	if days <= 0 {
		return 0
	}
	return totalOutQty / float64(days)
}

// CoverDays returns stock / avgPerDay, or nil when consumption is zero.
func CoverDays(totalStock, avgPerDay float64) *float64 {
	if avgPerDay == 0 {
		return nil
	}
	v := totalStock / avgPerDay
	return &v
}

// CoverPostDays returns (stock + open PO qty) / avgPerDay under the same
// zero-consumption guard as CoverDays.
func CoverPostDays(totalStock, openPOQty, avgPerDay float64) *float64 {
	return CoverDays(totalStock+openPOQty, avgPerDay)
}

// NormalizeRate restates a purchase rate per unit of the stock UOM.
// Returns nil when the conversion factor is zero.
func NormalizeRate(baseRate, conversionFactor float64) *float64 {
	if conversionFactor == 0 {
		return nil
	}
	v := baseRate / conversionFactor
	return &v
}

// OpenQty is the unreceived part of an order line, clamped at zero.
func OpenQty(qty, receivedQty float64) float64 {
	open := qty - receivedQty
	if open < 0 {
		return 0
	}
	return open
}

// SumOpenQty totals open quantity over a set of PO lines.
func SumOpenQty(lines []OpenPOLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.OpenQty
	}
	return total
}

// PriceVariancePct compares a rate against a reference rate, in percent.
// Returns nil when either rate is zero.
func PriceVariancePct(current, last float64) *float64 {
	if current == 0 || last == 0 {
		return nil
	}
	v := (current - last) / last * 100
	return &v
}

// TrendOverRates folds a set of normalized rates into one window summary.
// An empty window yields nil min/avg/max with n = 0.
func TrendOverRates(fromDate time.Time, months int, rates []float64) RateTrend {
	trend := RateTrend{
		FromDate: fromDate.Format("2006-01-02"),
		Months:   months,
		N:        len(rates),
	}
	if len(rates) == 0 {
		return trend
	}

	min, max, sum := rates[0], rates[0], 0.0
	for _, r := range rates {
		min = math.Min(min, r)
		max = math.Max(max, r)
		sum += r
	}
	avg := sum / float64(len(rates))
	trend.MinRate = &min
	trend.AvgRate = &avg
	trend.MaxRate = &max
	return trend
}

// LeadTimeFromSamples averages lead days over linked receipts. AvgDays is
// nil when there are no samples.
func LeadTimeFromSamples(samples []LeadTimeSample) LeadTimeStat {
	stat := LeadTimeStat{N: len(samples), Samples: samples}
	if stat.Samples == nil {
		stat.Samples = []LeadTimeSample{}
	}
	if len(samples) == 0 {
		return stat
	}

	var sum float64
	for _, s := range samples {
		sum += s.LeadDays
	}
	avg := sum / float64(len(samples))
	stat.AvgDays = &avg
	return stat
}

// FlagInput collects everything exception derivation needs. LastRate is the
// normalized rate of the most recent purchase transaction within the query's
// supplier filter, zero when no history exists.
type FlagInput struct {
	POBaseRate         *float64
	POConversionFactor *float64
	LastRate           float64
	CoverPostDays      *float64
	Supplier           *SupplierInfo
	PriceVarThreshPct  float64
	CoverOverstockDays float64
}

// BuildExceptionFlags derives the price/cover/supplier exception flags.
// Threshold comparisons are exclusive: a value equal to its threshold does
// not trip the flag.
func BuildExceptionFlags(in FlagInput) ExceptionFlags {
	flags := ExceptionFlags{Notes: []string{}}

	var poRate float64
	if in.POBaseRate != nil && in.POConversionFactor != nil {
		if norm := NormalizeRate(*in.POBaseRate, *in.POConversionFactor); norm != nil {
			poRate = *norm
		}
	}
	if variance := PriceVariancePct(poRate, in.LastRate); variance != nil {
		flags.PriceVariancePct = variance
		flags.PriceException = math.Abs(*variance) > in.PriceVarThreshPct
		if flags.PriceException {
			flags.Notes = append(flags.Notes,
				fmt.Sprintf("Price variance %.2f%% exceeds %.0f%% threshold.", *variance, in.PriceVarThreshPct))
		}
	}

	if in.CoverPostDays != nil && *in.CoverPostDays > in.CoverOverstockDays {
		flags.CoverException = true
		flags.Notes = append(flags.Notes,
			fmt.Sprintf("Post-supply cover %.1f days exceeds %.0f days.", *in.CoverPostDays, in.CoverOverstockDays))
	}

	if in.Supplier != nil {
		flags.SupplierDisabled = in.Supplier.Disabled
		flags.SupplierOnHold = in.Supplier.OnHold
	}
	if flags.SupplierDisabled || flags.SupplierOnHold {
		flags.SupplierException = true
		if flags.SupplierDisabled {
			flags.Notes = append(flags.Notes, "Supplier is disabled.")
		}
		if flags.SupplierOnHold {
			flags.Notes = append(flags.Notes, "Supplier is on hold.")
		}
	}

	return flags
}
