// Package quote provides the public quoting entry point and the
// collaborator interfaces it consumes. The engine itself is a pure,
// synchronous computation; only the two collaborators may block.
package quote

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tariffkey/core/allocate"
	"tariffkey/core/timeline"
	"tariffkey/core/types"
	"tariffkey/internal/errors"
	"tariffkey/internal/logging"
)

// RateStore supplies the rate records for a route that overlap a window.
// Implementations must return records of both kinds whose
// [ValidFrom, ValidTo) intersects the window; the engine performs no
// further querying.
type RateStore interface {
	FindOverlapping(ctx context.Context, route types.Route, windowFrom, windowTo time.Time) ([]types.RateRecord, error)
}

// FeeTable supplies flat fee amounts by code. found is false when the
// schedule has no entry for the code; an error means the lookup itself
// failed and is fatal for the request.
type FeeTable interface {
	AmountFor(ctx context.Context, feeCode string) (amount decimal.Decimal, found bool, err error)
}

// Request carries the arguments of one quote
type Request struct {
	// Route is the shipment lane being quoted
	Route types.Route

	// Quantity is the number of units shipped
	Quantity int64

	// UnitBasePrice is the price of one unit
	UnitBasePrice decimal.Decimal

	// WindowFrom is the inclusive start of the calculation window
	WindowFrom time.Time

	// WindowTo is the exclusive end of the calculation window
	WindowTo time.Time

	// FeeCodes lists the flat fees to add to the quote
	FeeCodes []string
}

// Validate checks the request arguments, naming the offending field
func (r Request) Validate() error {
	if strings.TrimSpace(r.Route.Product) == "" {
		return errors.Input("product", "product code is required")
	}
	if strings.TrimSpace(r.Route.Origin) == "" {
		return errors.Input("origin", "origin country code is required")
	}
	if strings.TrimSpace(r.Route.Destination) == "" {
		return errors.Input("destination", "destination country code is required")
	}
	if r.Quantity <= 0 {
		return errors.Input("quantity", "must be greater than zero")
	}
	if !r.UnitBasePrice.IsPositive() {
		return errors.Input("unitBasePrice", "must be greater than zero")
	}
	if !r.WindowFrom.Before(r.WindowTo) {
		return errors.Input("window", "windowFrom must be before windowTo")
	}
	return nil
}

// Service orchestrates one quote: validate, fetch overlapping records, run
// the merge/resolve/allocate pipeline, then add flat fees.
type Service struct {
	rates RateStore
	fees  FeeTable
	log   *zap.Logger
}

// NewService creates a quoting service over the given collaborators
func NewService(rates RateStore, fees FeeTable) *Service {
	return &Service{
		rates: rates,
		fees:  fees,
		log:   logging.Logger,
	}
}

// Quote resolves the effective rates for the request window, allocates
// quantity and price across them, and returns the aggregate quote. A
// window with no covering records yields a valid zero-segment quote, not
// an error.
func (s *Service) Quote(ctx context.Context, req Request) (*types.Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	records, err := s.rates.FindOverlapping(ctx, req.Route, req.WindowFrom, req.WindowTo)
	if err != nil {
		return nil, errors.Store("rate store query failed", err).WithContext("route", req.Route.String())
	}

	resolved, err := timeline.Build(records, req.WindowFrom, req.WindowTo)
	if err != nil {
		return nil, err
	}

	q, err := allocate.Allocate(resolved, req.Quantity, req.UnitBasePrice, req.WindowFrom, req.WindowTo)
	if err != nil {
		return nil, err
	}

	q.ID = uuid.NewString()
	q.Route = req.Route
	q.GeneratedAt = time.Now().UTC()

	for _, code := range req.FeeCodes {
		if _, dup := q.Fees[code]; dup {
			continue
		}
		amount, found, err := s.fees.AmountFor(ctx, code)
		if err != nil {
			return nil, errors.Store("fee lookup failed", err).WithContext("fee", code)
		}
		if !found {
			// A missing schedule entry must not block pricing
			amount = decimal.Zero
		}
		q.AddFee(code, amount)
	}

	if !q.Covered() {
		s.log.Info("no rate coverage for window",
			zap.String("route", req.Route.String()),
			zap.Time("window_from", req.WindowFrom),
			zap.Time("window_to", req.WindowTo),
			zap.Int("records", len(records)))
	} else {
		s.log.Debug("quote computed",
			zap.String("quote_id", q.ID),
			zap.String("route", req.Route.String()),
			zap.Int("segments", len(q.Segments)),
			zap.String("total", q.TotalPrice.String()))
	}

	return q, nil
}
