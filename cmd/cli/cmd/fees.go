// Package cmd - fees command
package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// feesCmd lists the flat fees known to the fee schedule
var feesCmd = &cobra.Command{
	Use:   "fees",
	Short: "List the flat fees in the fee schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store, closeStore, err := openStores(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		fees, err := store.Fees(ctx)
		if err != nil {
			return err
		}
		if len(fees) == 0 {
			fmt.Println("No fees defined in the schedule.")
			return nil
		}

		codes := make([]string, 0, len(fees))
		for code := range fees {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		for _, code := range codes {
			fmt.Printf("  %-16s %s\n", code, fees[code].StringFixed(2))
		}
		return nil
	},
}
