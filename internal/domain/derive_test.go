package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConsumptionWindowExactDays(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	from, to := ConsumptionWindow(today, 90)
	require.Equal(t, today, to)
	require.Equal(t, time.Date(2025, 12, 11, 0, 0, 0, 0, time.UTC), from)
	// Inclusive interval spans exactly the requested number of days.
	require.Equal(t, 89, int(to.Sub(from).Hours()/24))

	from, to = ConsumptionWindow(today, 1)
	require.Equal(t, today, from)
	require.Equal(t, today, to)
}

func TestAvgPerDay(t *testing.T) {
	require.Equal(t, 2.5, AvgPerDay(450, 180))
	require.Equal(t, 0.0, AvgPerDay(0, 180))
}

func TestCoverDaysUndefinedWithoutConsumption(t *testing.T) {
	require.Nil(t, CoverDays(100, 0))
	require.Nil(t, CoverPostDays(100, 50, 0))

	cover := CoverDays(100, 2)
	require.NotNil(t, cover)
	require.Equal(t, 50.0, *cover)

	post := CoverPostDays(100, 40, 2)
	require.NotNil(t, post)
	require.Equal(t, 70.0, *post)
}

func TestNormalizeRate(t *testing.T) {
	rate := NormalizeRate(120, 12)
	require.NotNil(t, rate)
	require.Equal(t, 10.0, *rate)

	require.Nil(t, NormalizeRate(120, 0))
}

func TestOpenQtyClampsAtZero(t *testing.T) {
	require.Equal(t, 4.0, OpenQty(10, 6))
	require.Equal(t, 0.0, OpenQty(10, 12))
}

func TestSumOpenQtyMatchesLines(t *testing.T) {
	lines := []OpenPOLine{
		{PO: "PO-001", Qty: 10, ReceivedQty: 4, OpenQty: 6},
		{PO: "PO-002", Qty: 5, ReceivedQty: 0, OpenQty: 5},
		{PO: "PO-003", Qty: 8, ReceivedQty: 7, OpenQty: 1},
	}
	require.Equal(t, 12.0, SumOpenQty(lines))
	require.Equal(t, 0.0, SumOpenQty(nil))
}

func TestTrendOverSingleRate(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	trend := TrendOverRates(from, 3, []float64{42.5})
	require.Equal(t, 1, trend.N)
	require.Equal(t, "2026-01-01", trend.FromDate)
	require.Equal(t, 42.5, *trend.MinRate)
	require.Equal(t, 42.5, *trend.AvgRate)
	require.Equal(t, 42.5, *trend.MaxRate)
}

func TestTrendOverRates(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	trend := TrendOverRates(from, 6, []float64{10, 30, 20})
	require.Equal(t, 3, trend.N)
	require.Equal(t, 10.0, *trend.MinRate)
	require.Equal(t, 20.0, *trend.AvgRate)
	require.Equal(t, 30.0, *trend.MaxRate)

	empty := TrendOverRates(from, 12, nil)
	require.Equal(t, 0, empty.N)
	require.Nil(t, empty.MinRate)
	require.Nil(t, empty.AvgRate)
	require.Nil(t, empty.MaxRate)
}

func TestLeadTimeFromSamples(t *testing.T) {
	samples := []LeadTimeSample{
		{PO: "PO-001", PR: "PR-001", LeadDays: 3},
		{PO: "PO-002", PR: "PR-002", LeadDays: 5},
		{PO: "PO-003", PR: "PR-003", LeadDays: 7},
	}

	stat := LeadTimeFromSamples(samples)
	require.Equal(t, 3, stat.N)
	require.NotNil(t, stat.AvgDays)
	require.Equal(t, 5.0, *stat.AvgDays)

	empty := LeadTimeFromSamples(nil)
	require.Equal(t, 0, empty.N)
	require.Nil(t, empty.AvgDays)
	require.NotNil(t, empty.Samples)
}

func TestPriceVariancePct(t *testing.T) {
	v := PriceVariancePct(115, 100)
	require.NotNil(t, v)
	require.Equal(t, 15.0, *v)

	require.Nil(t, PriceVariancePct(0, 100))
	require.Nil(t, PriceVariancePct(115, 0))
}

func TestBuildExceptionFlagsPriceVariance(t *testing.T) {
	rate := 115.0
	cf := 1.0

	flags := BuildExceptionFlags(FlagInput{
		POBaseRate:         &rate,
		POConversionFactor: &cf,
		LastRate:           100,
		PriceVarThreshPct:  10,
		CoverOverstockDays: 90,
	})
	require.NotNil(t, flags.PriceVariancePct)
	require.Equal(t, 15.0, *flags.PriceVariancePct)
	require.True(t, flags.PriceException)
	require.Len(t, flags.Notes, 1)

	// Negative variance trips the flag on magnitude.
	drop := 85.0
	flags = BuildExceptionFlags(FlagInput{
		POBaseRate:         &drop,
		POConversionFactor: &cf,
		LastRate:           100,
		PriceVarThreshPct:  10,
		CoverOverstockDays: 90,
	})
	require.True(t, flags.PriceException)

	// Within threshold.
	ok := 105.0
	flags = BuildExceptionFlags(FlagInput{
		POBaseRate:         &ok,
		POConversionFactor: &cf,
		LastRate:           100,
		PriceVarThreshPct:  10,
		CoverOverstockDays: 90,
	})
	require.False(t, flags.PriceException)
	require.NotNil(t, flags.PriceVariancePct)
}

func TestBuildExceptionFlagsCoverThresholdExclusive(t *testing.T) {
	over := 95.0
	flags := BuildExceptionFlags(FlagInput{
		CoverPostDays:      &over,
		PriceVarThreshPct:  10,
		CoverOverstockDays: 90,
	})
	require.True(t, flags.CoverException)

	exact := 90.0
	flags = BuildExceptionFlags(FlagInput{
		CoverPostDays:      &exact,
		PriceVarThreshPct:  10,
		CoverOverstockDays: 90,
	})
	require.False(t, flags.CoverException)

	flags = BuildExceptionFlags(FlagInput{
		PriceVarThreshPct:  10,
		CoverOverstockDays: 90,
	})
	require.False(t, flags.CoverException)
}

func TestBuildExceptionFlagsSupplier(t *testing.T) {
	flags := BuildExceptionFlags(FlagInput{
		Supplier:           &SupplierInfo{Supplier: "SUP-001", OnHold: true},
		PriceVarThreshPct:  10,
		CoverOverstockDays: 90,
	})
	require.True(t, flags.SupplierException)
	require.True(t, flags.SupplierOnHold)
	require.False(t, flags.SupplierDisabled)
	require.Contains(t, flags.Notes, "Supplier is on hold.")

	flags = BuildExceptionFlags(FlagInput{
		Supplier:           &SupplierInfo{Supplier: "SUP-002"},
		PriceVarThreshPct:  10,
		CoverOverstockDays: 90,
	})
	require.False(t, flags.SupplierException)
}

func TestBuildExceptionFlagsNoHistory(t *testing.T) {
	rate := 115.0
	cf := 1.0

	// No purchase history: variance undefined, no price exception.
	flags := BuildExceptionFlags(FlagInput{
		POBaseRate:         &rate,
		POConversionFactor: &cf,
		LastRate:           0,
		PriceVarThreshPct:  10,
		CoverOverstockDays: 90,
	})
	require.Nil(t, flags.PriceVariancePct)
	require.False(t, flags.PriceException)
}
