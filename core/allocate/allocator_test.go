package allocate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tariffkey/core/timeline"
	"tariffkey/core/types"
	"tariffkey/internal/errors"
)

func at(hour int) time.Time {
	return time.Date(2024, 1, 1, hour, 0, 0, 0, time.UTC)
}

func interval(from, to time.Time, kind types.RateKind, rate string) timeline.ResolvedInterval {
	return timeline.ResolvedInterval{
		From: from,
		To:   to,
		Record: types.RateRecord{
			ValidFrom:   from,
			ValidTo:     to,
			RatePercent: decimal.RequireFromString(rate),
			Kind:        kind,
			Label:       kind.String() + " " + rate,
			Source:      kind.String(),
		},
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s got %s", want, got)
}

func TestAllocateSingleSegmentFullWindow(t *testing.T) {
	// 12h window, one default at 5%, 100 units at 2.00
	resolved := []timeline.ResolvedInterval{
		interval(at(0), at(12), types.KindDefault, "5"),
	}

	q, err := Allocate(resolved, 100, decimal.RequireFromString("2.00"), at(0), at(12))
	require.NoError(t, err)
	require.Len(t, q.Segments, 1)

	assertDecimal(t, "100", q.Segments[0].QuantityPortion)
	assertDecimal(t, "200.00", q.Segments[0].ItemPrice)
	assertDecimal(t, "10.00", q.Segments[0].TariffAmount)

	assertDecimal(t, "200.00", q.ItemPrice)
	assertDecimal(t, "10.00", q.TariffAmount)
	assertDecimal(t, "5", q.TariffRatePercent)
	assertDecimal(t, "210.00", q.TotalPrice)
}

func TestAllocateSplitWindow(t *testing.T) {
	// Override 8% for the first 6h, default 5% for the rest
	resolved := []timeline.ResolvedInterval{
		interval(at(0), at(6), types.KindOverride, "8"),
		interval(at(6), at(12), types.KindDefault, "5"),
	}

	q, err := Allocate(resolved, 100, decimal.RequireFromString("2.00"), at(0), at(12))
	require.NoError(t, err)
	require.Len(t, q.Segments, 2)

	assertDecimal(t, "50", q.Segments[0].QuantityPortion)
	assertDecimal(t, "100.00", q.Segments[0].ItemPrice)
	assertDecimal(t, "8.00", q.Segments[0].TariffAmount)

	assertDecimal(t, "100.00", q.Segments[1].ItemPrice)
	assertDecimal(t, "5.00", q.Segments[1].TariffAmount)

	assertDecimal(t, "200.00", q.ItemPrice)
	assertDecimal(t, "13.00", q.TariffAmount)
	assertDecimal(t, "6.5", q.TariffRatePercent)
	assertDecimal(t, "213.00", q.TotalPrice)
}

func TestAllocateGapReducesTotals(t *testing.T) {
	// Nothing covers [06:00, 09:00): only 9 of 12 hours are priced
	resolved := []timeline.ResolvedInterval{
		interval(at(0), at(6), types.KindDefault, "4"),
		interval(at(9), at(12), types.KindDefault, "4"),
	}

	q, err := Allocate(resolved, 100, decimal.RequireFromString("2.00"), at(0), at(12))
	require.NoError(t, err)
	require.Len(t, q.Segments, 2)

	var covered time.Duration
	for _, s := range q.Segments {
		covered += s.Duration()
	}
	assert.Equal(t, 9*time.Hour, covered)

	// 0.5 + 0.25 of the quantity is priced, the gap contributes nothing
	assertDecimal(t, "150.00", q.ItemPrice)
	assertDecimal(t, "6.00", q.TariffAmount)
}

func TestAllocateNoCoverage(t *testing.T) {
	q, err := Allocate(nil, 100, decimal.RequireFromString("2.00"), at(0), at(12))
	require.NoError(t, err)

	assert.Empty(t, q.Segments)
	assert.False(t, q.Covered())
	assertDecimal(t, "0", q.ItemPrice)
	assertDecimal(t, "0", q.TariffAmount)
	assertDecimal(t, "0", q.TariffRatePercent)
	assertDecimal(t, "0", q.TotalPrice)
}

func TestAllocateEmptyWindow(t *testing.T) {
	_, err := Allocate(nil, 100, decimal.RequireFromString("2.00"), at(6), at(6))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestAllocateLinearInQuantity(t *testing.T) {
	resolved := []timeline.ResolvedInterval{
		interval(at(0), at(5), types.KindOverride, "8"),
		interval(at(5), at(12), types.KindDefault, "2.5"),
	}
	price := decimal.RequireFromString("3.17")

	base, err := Allocate(resolved, 7, price, at(0), at(12))
	require.NoError(t, err)
	scaled, err := Allocate(resolved, 7*13, price, at(0), at(12))
	require.NoError(t, err)

	k := decimal.NewFromInt(13)
	for i := range base.Segments {
		assert.True(t, base.Segments[i].QuantityPortion.Mul(k).Equal(scaled.Segments[i].QuantityPortion))
		assert.True(t, base.Segments[i].ItemPrice.Mul(k).Equal(scaled.Segments[i].ItemPrice))
		assert.True(t, base.Segments[i].TariffAmount.Mul(k).Equal(scaled.Segments[i].TariffAmount))
	}
	assert.True(t, base.ItemPrice.Mul(k).Equal(scaled.ItemPrice))
	assert.True(t, base.TariffAmount.Mul(k).Equal(scaled.TariffAmount))
	assert.True(t, base.TotalPrice.Mul(k).Equal(scaled.TotalPrice))
}

func TestAllocateSumsMatchSegmentTotals(t *testing.T) {
	resolved := []timeline.ResolvedInterval{
		interval(at(0), at(1), types.KindOverride, "8"),
		interval(at(1), at(4), types.KindDefault, "5"),
		interval(at(7), at(12), types.KindDefault, "2"),
	}

	q, err := Allocate(resolved, 250, decimal.RequireFromString("1.99"), at(0), at(12))
	require.NoError(t, err)

	itemSum := decimal.Zero
	tariffSum := decimal.Zero
	for _, s := range q.Segments {
		itemSum = itemSum.Add(s.ItemPrice)
		tariffSum = tariffSum.Add(s.TariffAmount)
	}
	assert.True(t, itemSum.Equal(q.ItemPrice))
	assert.True(t, tariffSum.Equal(q.TariffAmount))
}
