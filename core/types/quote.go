// Package types - Quote aggregate types
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Segment is one slice of the requested window with a single effective rate.
// Segments are produced in ascending, non-overlapping order; sub-intervals
// with no covering record are omitted rather than emitted at rate zero.
type Segment struct {
	// From is the inclusive segment start
	From time.Time `json:"from"`

	// To is the exclusive segment end
	To time.Time `json:"to"`

	// RatePercent is the effective rate for this slice
	RatePercent decimal.Decimal `json:"rate_percent"`

	// QuantityPortion is the quantity allocated to this slice
	QuantityPortion decimal.Decimal `json:"quantity_portion"`

	// ItemPrice is QuantityPortion * unit base price
	ItemPrice decimal.Decimal `json:"item_price"`

	// TariffAmount is ItemPrice * RatePercent / 100
	TariffAmount decimal.Decimal `json:"tariff_amount"`

	// Label is copied from the chosen rate record
	Label string `json:"label,omitempty"`

	// Source is copied from the chosen rate record
	Source string `json:"source,omitempty"`
}

// Duration returns the segment length
func (s Segment) Duration() time.Duration {
	return s.To.Sub(s.From)
}

// Quote is the aggregate quoting result.
// Invariants: ItemPrice and TariffAmount equal the sums over Segments, and
// TariffRatePercent is 100 * TariffAmount / ItemPrice (zero when ItemPrice
// is zero).
type Quote struct {
	// ID uniquely identifies this quote
	ID string `json:"id"`

	// Route is the quoted shipment lane
	Route Route `json:"route"`

	// ItemPrice is the total allocated item price
	ItemPrice decimal.Decimal `json:"item_price"`

	// TariffRatePercent is the duration-weighted average rate
	TariffRatePercent decimal.Decimal `json:"tariff_rate_percent"`

	// TariffAmount is the total tariff across segments
	TariffAmount decimal.Decimal `json:"tariff_amount"`

	// Fees maps fee code to flat amount
	Fees map[string]decimal.Decimal `json:"fees,omitempty"`

	// TotalPrice is ItemPrice + TariffAmount + sum of Fees
	TotalPrice decimal.Decimal `json:"total_price"`

	// Segments is the per-slice breakdown, ascending by time
	Segments []Segment `json:"segments"`

	// GeneratedAt is when the quote was computed
	GeneratedAt time.Time `json:"generated_at"`
}

// AddFee records a flat fee and folds it into the total
func (q *Quote) AddFee(code string, amount decimal.Decimal) {
	if q.Fees == nil {
		q.Fees = make(map[string]decimal.Decimal)
	}
	q.Fees[code] = amount
	q.TotalPrice = q.TotalPrice.Add(amount)
}

// FeeTotal returns the sum of all flat fees
func (q *Quote) FeeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range q.Fees {
		total = total.Add(amount)
	}
	return total
}

// Covered reports whether any rate was in force during the window
func (q *Quote) Covered() bool {
	return len(q.Segments) > 0
}
