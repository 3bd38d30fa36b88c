package types

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour int) time.Time {
	return time.Date(2024, 1, 1, hour, 0, 0, 0, time.UTC)
}

func TestOpenEndSentinel(t *testing.T) {
	// 9999-12-31T23:59:59Z, matching the stored open-ended sentinel
	assert.Equal(t, int64(253402300799), OpenEnd.Unix())
	assert.True(t, OpenEnd.After(time.Now().AddDate(1000, 0, 0)))
}

func TestRateRecordCovers(t *testing.T) {
	r := RateRecord{ValidFrom: at(2), ValidTo: at(8)}

	assert.True(t, r.Covers(at(2), at(8)))
	assert.True(t, r.Covers(at(3), at(5)))
	assert.False(t, r.Covers(at(1), at(5)), "starts before validity")
	assert.False(t, r.Covers(at(3), at(9)), "ends after validity")

	open := RateRecord{ValidFrom: at(2), ValidTo: OpenEnd}
	assert.True(t, open.Covers(at(2), at(23).AddDate(100, 0, 0)))
}

func TestRateRecordClip(t *testing.T) {
	r := RateRecord{ValidFrom: at(2), ValidTo: at(8)}

	from, to, ok := r.Clip(at(0), at(12))
	require.True(t, ok)
	assert.True(t, from.Equal(at(2)))
	assert.True(t, to.Equal(at(8)))

	from, to, ok = r.Clip(at(4), at(6))
	require.True(t, ok)
	assert.True(t, from.Equal(at(4)))
	assert.True(t, to.Equal(at(6)))

	_, _, ok = r.Clip(at(8), at(12))
	assert.False(t, ok, "record ending at window start has an empty clip")
}

func TestQuoteAddFee(t *testing.T) {
	q := &Quote{
		ItemPrice:    decimal.RequireFromString("200.00"),
		TariffAmount: decimal.RequireFromString("13.00"),
		TotalPrice:   decimal.RequireFromString("213.00"),
	}

	q.AddFee("handling", decimal.RequireFromString("7.00"))
	q.AddFee("inspection", decimal.RequireFromString("3.00"))

	assert.True(t, q.FeeTotal().Equal(decimal.RequireFromString("10.00")))
	assert.True(t, q.TotalPrice.Equal(decimal.RequireFromString("223.00")))
}
