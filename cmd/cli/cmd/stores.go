// Package cmd - store selection
package cmd

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"tariffkey/adapters/postgres"
	"tariffkey/adapters/ratefile"
	"tariffkey/core/quote"
	"tariffkey/internal/config"
)

// Stores bundles the collaborators a command needs: rate record
// lookups, fee lookups, and listing the full fee schedule.
type Stores interface {
	quote.RateStore
	quote.FeeTable
	Fees(ctx context.Context) (map[string]decimal.Decimal, error)
}

// openStores picks the backing store for a command: Postgres when a
// database URL is configured, the HCL schedule file otherwise. The
// returned closer releases the store once the command is done.
func openStores(ctx context.Context) (Stores, func(), error) {
	if url := databaseURL(); url != "" {
		timeout := time.Duration(config.Get().Database.QueryTimeoutSeconds) * time.Second
		store, err := postgres.Connect(ctx, url, timeout)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}

	store, err := ratefile.Load(schedulePath())
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}

// databaseURL resolves the database location from flag or config
func databaseURL() string {
	if databaseFlag != "" {
		return databaseFlag
	}
	return config.Get().Database.URL
}
