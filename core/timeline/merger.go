// Package timeline builds the effective-rate timeline for a calculation
// window. The merger collects cut points from overlapping rate records and
// the resolver selects the record in force for each cut-delimited slice.
package timeline

import (
	"sort"
	"time"

	"tariffkey/core/types"
	"tariffkey/internal/errors"
)

// CutPoints returns the ascending, deduplicated instants that delimit the
// candidate slices of [windowFrom, windowTo): the window bounds plus every
// record boundary clipped to the window. Records whose clipped interval is
// empty contribute nothing.
func CutPoints(records []types.RateRecord, windowFrom, windowTo time.Time) ([]time.Time, error) {
	if !windowFrom.Before(windowTo) {
		return nil, errors.Input("window", "windowFrom must be before windowTo")
	}

	cuts := make([]time.Time, 0, 2+2*len(records))
	cuts = append(cuts, windowFrom, windowTo)
	for _, r := range records {
		from, to, ok := r.Clip(windowFrom, windowTo)
		if !ok {
			continue
		}
		cuts = append(cuts, from, to)
	}

	sort.Slice(cuts, func(i, j int) bool { return cuts[i].Before(cuts[j]) })

	// Dedupe with Equal, not ==, so wall-clock identical instants from
	// different locations collapse.
	deduped := cuts[:1]
	for _, t := range cuts[1:] {
		if !t.Equal(deduped[len(deduped)-1]) {
			deduped = append(deduped, t)
		}
	}
	return deduped, nil
}
