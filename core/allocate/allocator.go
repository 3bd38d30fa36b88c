// Package allocate converts a resolved rate timeline into priced segments
// and aggregate totals. All arithmetic is decimal; portions are computed
// at decimal division precision so rounding never drifts across segments.
package allocate

import (
	"time"

	"github.com/shopspring/decimal"

	"tariffkey/core/timeline"
	"tariffkey/core/types"
	"tariffkey/internal/errors"
)

var hundred = decimal.NewFromInt(100)

// Allocate distributes quantity and price across the resolved intervals in
// proportion to duration and aggregates the totals. An empty resolved list
// is a valid outcome: the quote comes back with zero totals and no
// segments, which is how "no tariff data for this window" is represented.
func Allocate(resolved []timeline.ResolvedInterval, quantity int64, unitBasePrice decimal.Decimal, windowFrom, windowTo time.Time) (*types.Quote, error) {
	totalSeconds := int64(windowTo.Sub(windowFrom) / time.Second)
	if totalSeconds <= 0 {
		return nil, errors.EmptyWindow()
	}

	quote := &types.Quote{
		ItemPrice:         decimal.Zero,
		TariffRatePercent: decimal.Zero,
		TariffAmount:      decimal.Zero,
		TotalPrice:        decimal.Zero,
		Segments:          make([]types.Segment, 0, len(resolved)),
	}

	qty := decimal.NewFromInt(quantity)
	total := decimal.NewFromInt(totalSeconds)

	for _, iv := range resolved {
		segSeconds := iv.Seconds()
		if segSeconds <= 0 {
			continue
		}

		portion := decimal.NewFromInt(segSeconds).Div(total)
		qtyPortion := qty.Mul(portion)
		itemPrice := qtyPortion.Mul(unitBasePrice)
		tariffAmount := itemPrice.Mul(iv.Record.RatePercent).Div(hundred)

		quote.Segments = append(quote.Segments, types.Segment{
			From:            iv.From,
			To:              iv.To,
			RatePercent:     iv.Record.RatePercent,
			QuantityPortion: qtyPortion,
			ItemPrice:       itemPrice,
			TariffAmount:    tariffAmount,
			Label:           iv.Record.Label,
			Source:          iv.Record.Source,
		})

		quote.ItemPrice = quote.ItemPrice.Add(itemPrice)
		quote.TariffAmount = quote.TariffAmount.Add(tariffAmount)
	}

	if quote.ItemPrice.IsPositive() {
		quote.TariffRatePercent = hundred.Mul(quote.TariffAmount).Div(quote.ItemPrice)
	}
	quote.TotalPrice = quote.ItemPrice.Add(quote.TariffAmount)
	return quote, nil
}
