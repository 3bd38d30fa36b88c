// Package cmd - history command
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tariffkey/core/history"
	"tariffkey/core/types"
)

var (
	historyProduct     string
	historyOrigin      string
	historyDestination string
	historyStart       string
	historyEnd         string
	historyLimit       int
	historyFormat      string
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show how the effective rate for a route changed over time",
	Long: `Resolve the effective-rate timeline for a route over a date range and
print one line per stretch where a single rate was in force, plus a
summary. The range defaults to the last five years.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyProduct, "product", "", "product code (e.g., HS6)")
	historyCmd.Flags().StringVar(&historyOrigin, "origin", "", "origin country code")
	historyCmd.Flags().StringVar(&historyDestination, "destination", "", "destination country code")
	historyCmd.Flags().StringVar(&historyStart, "start", "", "range start (RFC 3339, default end minus five years)")
	historyCmd.Flags().StringVar(&historyEnd, "end", "", "range end (RFC 3339, default now)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "maximum points to return (10-1000)")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "", "output format (text, json)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store, closeStore, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	req := history.Request{
		Route: types.Route{
			Product:     historyProduct,
			Origin:      historyOrigin,
			Destination: historyDestination,
		},
		Limit: historyLimit,
	}
	if historyStart != "" {
		if req.Start, err = parseInstant(historyStart, "--start"); err != nil {
			return err
		}
	}
	if historyEnd != "" {
		if req.End, err = parseInstant(historyEnd, "--end"); err != nil {
			return err
		}
	}

	service := history.NewService(store)
	result, err := service.History(ctx, req)
	if err != nil {
		return err
	}

	if outputFormat(historyFormat) == "json" {
		return printJSON(result)
	}

	if len(result.Points) == 0 {
		fmt.Println("No rate records in the requested range.")
		return nil
	}

	for _, p := range result.Points {
		fmt.Printf("  %s - %s  %s%%  %-8s  %s\n",
			p.From.Format(time.RFC3339),
			p.To.Format(time.RFC3339),
			p.RatePercent.String(),
			p.Kind,
			p.Label)
	}

	s := result.Summary
	fmt.Printf("\n  %d points  avg %s%%  min %s%%  max %s%%  delta %s%%\n",
		s.TotalRecords,
		s.AverageRate.String(),
		s.MinRate.String(),
		s.MaxRate.String(),
		s.DeltaRate.String())
	return nil
}
