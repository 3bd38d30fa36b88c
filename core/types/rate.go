// Package types defines the rate record and quote value types.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateKind classifies where a rate record came from
type RateKind int

const (
	// KindDefault is a product-wide fallback rate
	KindDefault RateKind = iota

	// KindOverride is a route-specific rate that outranks any default
	KindOverride
)

// String returns the string representation
func (k RateKind) String() string {
	switch k {
	case KindOverride:
		return "override"
	case KindDefault:
		return "default"
	default:
		return "unknown"
	}
}

// OpenEnd is the far-future sentinel for records with no known end
// (9999-12-31T23:59:59Z). Open-ended rows carry this instead of a nil
// end so interval comparisons never branch on null.
var OpenEnd = time.Unix(253402300799, 0).UTC()

// Route identifies a shipment lane
type Route struct {
	// Product is the product code (e.g., HS6)
	Product string `json:"product"`

	// Origin is the origin country code
	Origin string `json:"origin"`

	// Destination is the destination country code
	Destination string `json:"destination"`
}

// String returns a string representation for logging/lookup
func (r Route) String() string {
	return r.Origin + "->" + r.Destination + " (" + r.Product + ")"
}

// RateRecord is one historical rate entry, either a route override or a
// product default. Records are constructed per request from store query
// results and never mutated.
type RateRecord struct {
	// ValidFrom is the inclusive start instant
	ValidFrom time.Time `json:"valid_from"`

	// ValidTo is the exclusive end instant; OpenEnd when unbounded
	ValidTo time.Time `json:"valid_to"`

	// RatePercent is the rate on a 0-100 scale
	RatePercent decimal.Decimal `json:"rate_percent"`

	// Kind is the record precedence class
	Kind RateKind `json:"kind"`

	// Label is a human-readable description, display only
	Label string `json:"label,omitempty"`

	// Source names where the record came from, display only
	Source string `json:"source,omitempty"`
}

// Covers reports whether the record is in force for every instant of [from, to)
func (r RateRecord) Covers(from, to time.Time) bool {
	return !r.ValidFrom.After(from) && !r.ValidTo.Before(to)
}

// Clip bounds the record's validity to [windowFrom, windowTo).
// ok is false when the clipped interval is empty.
func (r RateRecord) Clip(windowFrom, windowTo time.Time) (from, to time.Time, ok bool) {
	from = r.ValidFrom
	if from.Before(windowFrom) {
		from = windowFrom
	}
	to = r.ValidTo
	if to.After(windowTo) {
		to = windowTo
	}
	return from, to, from.Before(to)
}
