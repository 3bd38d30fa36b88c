// Package postgres provides a Postgres-backed rate store and fee table
// over the tariff history tables (route_tariff_override_hist,
// product_tariff_default_hist, fee_schedule). Open-ended rows carry a
// NULL valid_to in the database and come back with the far-future
// sentinel, so interval math upstream never sees a null.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"tariffkey/core/quote"
	"tariffkey/core/types"
	domainerrors "tariffkey/internal/errors"
)

const (
	overrideQuery = `
SELECT valid_from, valid_to, rate_percent::text
FROM route_tariff_override_hist
WHERE product_code = $1 AND origin_country = $2 AND dest_country = $3
  AND tstzrange(valid_from, valid_to, '[)') && tstzrange($4, $5, '[)')
ORDER BY valid_from`

	defaultQuery = `
SELECT valid_from, valid_to, rate_percent::text
FROM product_tariff_default_hist
WHERE product_code = $1
  AND tstzrange(valid_from, valid_to, '[)') && tstzrange($2, $3, '[)')
ORDER BY valid_from`

	// fee is a Postgres enum; the comparison is done as text so a code
	// outside the enum's labels falls through to no rows instead of
	// raising an invalid-input error.
	feeQuery = `SELECT amount::text FROM fee_schedule WHERE fee::text = $1`

	listFeesQuery = `SELECT fee::text, amount::text FROM fee_schedule ORDER BY fee`
)

// Store implements quote.RateStore and quote.FeeTable over a pgx pool
type Store struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

var (
	_ quote.RateStore = (*Store)(nil)
	_ quote.FeeTable  = (*Store)(nil)
)

// NewStore wraps an existing pool. timeout bounds each query; zero means
// no bound beyond the caller's context.
func NewStore(pool *pgxpool.Pool, timeout time.Duration) *Store {
	return &Store{pool: pool, timeout: timeout}
}

// Connect opens a pool for the given connection string
func Connect(ctx context.Context, url string, timeout time.Duration) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, domainerrors.Store("cannot open database pool", err)
	}
	return NewStore(pool, timeout), nil
}

// Close releases the underlying pool
func (s *Store) Close() {
	s.pool.Close()
}

// FindOverlapping returns the route's overrides and the product's defaults
// whose validity range intersects [windowFrom, windowTo)
func (s *Store) FindOverlapping(ctx context.Context, route types.Route, windowFrom, windowTo time.Time) ([]types.RateRecord, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	overrides, err := s.queryRecords(ctx, overrideQuery, types.KindOverride,
		"Route override "+route.String(),
		route.Product, route.Origin, route.Destination, windowFrom, windowTo)
	if err != nil {
		return nil, err
	}

	defaults, err := s.queryRecords(ctx, defaultQuery, types.KindDefault,
		"Default rate ("+route.Product+")",
		route.Product, windowFrom, windowTo)
	if err != nil {
		return nil, err
	}

	return append(overrides, defaults...), nil
}

// AmountFor returns the flat fee amount for a code; a missing row is
// reported as not found, not as an error
func (s *Store) AmountFor(ctx context.Context, feeCode string) (decimal.Decimal, bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var text string
	err := s.pool.QueryRow(ctx, feeQuery, feeCode).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, domainerrors.Store("fee schedule query failed", err).WithContext("fee", feeCode)
	}

	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false, domainerrors.Internal("fee schedule returned a non-numeric amount", err)
	}
	return amount, true, nil
}

// Fees returns the full fee schedule keyed by code
func (s *Store) Fees(ctx context.Context) (map[string]decimal.Decimal, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, listFeesQuery)
	if err != nil {
		return nil, domainerrors.Store("fee schedule query failed", err)
	}
	defer rows.Close()

	fees := make(map[string]decimal.Decimal)
	for rows.Next() {
		var code, text string
		if err := rows.Scan(&code, &text); err != nil {
			return nil, domainerrors.Store("cannot scan fee schedule row", err)
		}
		amount, err := decimal.NewFromString(text)
		if err != nil {
			return nil, domainerrors.Internal("fee schedule returned a non-numeric amount", err)
		}
		fees[code] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Store("fee schedule query failed", err)
	}
	return fees, nil
}

func (s *Store) queryRecords(ctx context.Context, query string, kind types.RateKind, label string, args ...any) ([]types.RateRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domainerrors.Store("rate history query failed", err)
	}
	defer rows.Close()

	var records []types.RateRecord
	for rows.Next() {
		var (
			validFrom time.Time
			validTo   *time.Time
			rateText  string
		)
		if err := rows.Scan(&validFrom, &validTo, &rateText); err != nil {
			return nil, domainerrors.Store("cannot scan rate history row", err)
		}

		rate, err := decimal.NewFromString(rateText)
		if err != nil {
			return nil, domainerrors.Internal("rate history returned a non-numeric rate", err)
		}

		end := types.OpenEnd
		if validTo != nil {
			end = validTo.UTC()
		}

		records = append(records, types.RateRecord{
			ValidFrom:   validFrom.UTC(),
			ValidTo:     end,
			RatePercent: rate,
			Kind:        kind,
			Label:       label,
			Source:      kind.String(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Store("rate history query failed", err)
	}
	return records, nil
}

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
