// Package history reports how the effective rate for a route evolved over
// a date range. It reuses the timeline pipeline, so the points reflect the
// same override/default precedence the quoting engine applies.
package history

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tariffkey/core/quote"
	"tariffkey/core/timeline"
	"tariffkey/core/types"
	"tariffkey/internal/errors"
	"tariffkey/internal/logging"
)

const (
	defaultLimit = 250
	minLimit     = 10
	maxLimit     = 1000

	// Summary rates are rounded to 4 decimal places
	summaryScale = 4
)

// Request selects the route and range to report on. Zero Start/End are
// defaulted (End to now, Start to five years before End); an inverted
// range is swapped rather than rejected.
type Request struct {
	Route types.Route
	Start time.Time
	End   time.Time
	Limit int
}

// Point is one stretch of the range with a single effective rate
type Point struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	RatePercent decimal.Decimal `json:"rate_percent"`
	Kind        string          `json:"kind"`
	Label       string          `json:"label,omitempty"`
	Source      string          `json:"source,omitempty"`
}

// Summary aggregates the reported points
type Summary struct {
	TotalRecords int             `json:"total_records"`
	AverageRate  decimal.Decimal `json:"average_rate"`
	MinRate      decimal.Decimal `json:"min_rate"`
	MaxRate      decimal.Decimal `json:"max_rate"`
	StartRate    decimal.Decimal `json:"start_rate"`
	EndRate      decimal.Decimal `json:"end_rate"`
	DeltaRate    decimal.Decimal `json:"delta_rate"`
}

// Response is the full history report
type Response struct {
	Points  []Point `json:"data"`
	Summary Summary `json:"summary"`
}

// Service builds rate history reports from a rate store
type Service struct {
	rates quote.RateStore
	log   *zap.Logger
}

// NewService creates a history service over the given store
func NewService(rates quote.RateStore) *Service {
	return &Service{rates: rates, log: logging.Logger}
}

// History resolves the effective-rate timeline for the requested range and
// returns one point per stretch where a single rate was in force, plus a
// summary. Points land at the exact change instants rather than on a fixed
// sampling grid.
func (s *Service) History(ctx context.Context, req Request) (*Response, error) {
	end := req.End
	if end.IsZero() {
		end = time.Now().UTC()
	}
	start := req.Start
	if start.IsZero() {
		start = end.AddDate(-5, 0, 0)
	}
	if start.After(end) {
		start, end = end, start
	}
	if start.Equal(end) {
		return nil, errors.Input("range", "start and end must differ")
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit < minLimit {
		limit = minLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	records, err := s.rates.FindOverlapping(ctx, req.Route, start, end)
	if err != nil {
		return nil, errors.Store("rate store query failed", err).WithContext("route", req.Route.String())
	}

	resolved, err := timeline.Build(records, start, end)
	if err != nil {
		return nil, err
	}
	if len(resolved) > limit {
		resolved = resolved[:limit]
	}

	points := make([]Point, 0, len(resolved))
	for _, iv := range resolved {
		points = append(points, Point{
			From:        iv.From,
			To:          iv.To,
			RatePercent: iv.Record.RatePercent,
			Kind:        iv.Record.Kind.String(),
			Label:       iv.Record.Label,
			Source:      iv.Record.Source,
		})
	}

	s.log.Debug("history resolved",
		zap.String("route", req.Route.String()),
		zap.Int("points", len(points)))

	return &Response{Points: points, Summary: summarize(points)}, nil
}

func summarize(points []Point) Summary {
	if len(points) == 0 {
		return Summary{}
	}

	sum := decimal.Zero
	min := points[0].RatePercent
	max := points[0].RatePercent
	for _, p := range points {
		sum = sum.Add(p.RatePercent)
		if p.RatePercent.LessThan(min) {
			min = p.RatePercent
		}
		if p.RatePercent.GreaterThan(max) {
			max = p.RatePercent
		}
	}

	start := points[0].RatePercent
	end := points[len(points)-1].RatePercent

	return Summary{
		TotalRecords: len(points),
		AverageRate:  sum.Div(decimal.NewFromInt(int64(len(points)))).Round(summaryScale),
		MinRate:      min,
		MaxRate:      max,
		StartRate:    start,
		EndRate:      end,
		DeltaRate:    end.Sub(start),
	}
}
