// Package timeline - Precedence resolution
package timeline

import (
	"time"

	"tariffkey/core/types"
)

// ResolvedInterval pairs one slice of the window with the record in force
type ResolvedInterval struct {
	From   time.Time
	To     time.Time
	Record types.RateRecord
}

// Seconds returns the slice duration in whole seconds
func (iv ResolvedInterval) Seconds() int64 {
	return int64(iv.To.Sub(iv.From) / time.Second)
}

// Resolve walks consecutive cut-point pairs and selects the record in
// force for each. Overrides are consulted first, then defaults; within a
// kind the latest ValidFrom wins, which keeps resolution deterministic
// when several records of the same kind cover a slice. Slices no record
// fully covers are dropped, not emitted at rate zero.
func Resolve(records []types.RateRecord, cuts []time.Time) []ResolvedInterval {
	resolved := make([]ResolvedInterval, 0, len(cuts))
	for i := 0; i+1 < len(cuts); i++ {
		a, b := cuts[i], cuts[i+1]

		chosen, ok := covering(records, a, b, types.KindOverride)
		if !ok {
			chosen, ok = covering(records, a, b, types.KindDefault)
		}
		if !ok {
			// No rate in force for this slice
			continue
		}

		resolved = append(resolved, ResolvedInterval{From: a, To: b, Record: chosen})
	}
	return resolved
}

// Build merges and resolves in one step
func Build(records []types.RateRecord, windowFrom, windowTo time.Time) ([]ResolvedInterval, error) {
	cuts, err := CutPoints(records, windowFrom, windowTo)
	if err != nil {
		return nil, err
	}
	return Resolve(records, cuts), nil
}

// covering picks the record of the wanted kind that fully covers [a, b),
// preferring the latest ValidFrom when more than one qualifies.
func covering(records []types.RateRecord, a, b time.Time, kind types.RateKind) (types.RateRecord, bool) {
	var best types.RateRecord
	found := false
	for _, r := range records {
		if r.Kind != kind || !r.Covers(a, b) {
			continue
		}
		if !found || r.ValidFrom.After(best.ValidFrom) {
			best = r
			found = true
		}
	}
	return best, found
}
