// Package cmd - quote command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"tariffkey/core/quote"
	"tariffkey/core/types"
	"tariffkey/internal/config"
)

var (
	quoteProduct     string
	quoteOrigin      string
	quoteDestination string
	quoteQuantity    int64
	quoteUnitPrice   string
	quoteFrom        string
	quoteTo          string
	quoteFees        []string
	quoteFormat      string
)

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Quote the import duty for a shipment window",
	Long: `Resolve the tariff rates in force during the calculation window and
allocate quantity and price proportionally across them.

Examples:
  tariffkey quote --rates rates.hcl --product 847130 --origin SGP --destination USA \
    --quantity 100 --unit-price 2.00 --from 2024-01-01T00:00:00Z --to 2024-01-01T12:00:00Z
  tariffkey quote --format json --fees handling --fees inspection ...`,
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVar(&quoteProduct, "product", "", "product code (e.g., HS6)")
	quoteCmd.Flags().StringVar(&quoteOrigin, "origin", "", "origin country code")
	quoteCmd.Flags().StringVar(&quoteDestination, "destination", "", "destination country code")
	quoteCmd.Flags().Int64Var(&quoteQuantity, "quantity", 0, "number of units shipped")
	quoteCmd.Flags().StringVar(&quoteUnitPrice, "unit-price", "", "price of one unit")
	quoteCmd.Flags().StringVar(&quoteFrom, "from", "", "window start (RFC 3339)")
	quoteCmd.Flags().StringVar(&quoteTo, "to", "", "window end (RFC 3339, exclusive)")
	quoteCmd.Flags().StringSliceVar(&quoteFees, "fees", nil, "flat fee codes to add")
	quoteCmd.Flags().StringVarP(&quoteFormat, "format", "f", "", "output format (text, json)")
}

func runQuote(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store, closeStore, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	unitPrice, err := decimal.NewFromString(quoteUnitPrice)
	if err != nil {
		return fmt.Errorf("invalid --unit-price: %w", err)
	}
	windowFrom, err := parseInstant(quoteFrom, "--from")
	if err != nil {
		return err
	}
	windowTo, err := parseInstant(quoteTo, "--to")
	if err != nil {
		return err
	}

	feeCodes := quoteFees
	if len(feeCodes) == 0 {
		feeCodes = config.Get().Rates.DefaultFeeCodes
	}

	service := quote.NewService(store, store)
	result, err := service.Quote(ctx, quote.Request{
		Route: types.Route{
			Product:     quoteProduct,
			Origin:      quoteOrigin,
			Destination: quoteDestination,
		},
		Quantity:      quoteQuantity,
		UnitBasePrice: unitPrice,
		WindowFrom:    windowFrom,
		WindowTo:      windowTo,
		FeeCodes:      feeCodes,
	})
	if err != nil {
		return err
	}

	switch outputFormat(quoteFormat) {
	case "json":
		return printJSON(result)
	default:
		printQuote(result)
		return nil
	}
}

func parseInstant(value, flag string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", flag, err)
	}
	return t, nil
}

func outputFormat(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return config.Get().Output.DefaultFormat
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printQuote(q *types.Quote) {
	fmt.Printf("Quote %s for %s\n\n", q.ID, q.Route.String())

	if !q.Covered() {
		fmt.Println("No tariff data covers the requested window; item price and tariff are zero.")
	} else if config.Get().Output.ShowSegments {
		for _, s := range q.Segments {
			fmt.Printf("  %s - %s  rate %s%%  qty %s  item %s  tariff %s  [%s]\n",
				s.From.Format(time.RFC3339),
				s.To.Format(time.RFC3339),
				s.RatePercent.String(),
				s.QuantityPortion.StringFixed(4),
				s.ItemPrice.StringFixed(2),
				s.TariffAmount.StringFixed(2),
				s.Label)
		}
		fmt.Println()
	}

	fmt.Printf("  %-24s %s\n", "Item price:", q.ItemPrice.StringFixed(2))
	fmt.Printf("  %-24s %s%%\n", "Weighted rate:", q.TariffRatePercent.StringFixed(4))
	fmt.Printf("  %-24s %s\n", "Tariff amount:", q.TariffAmount.StringFixed(2))
	for code, amount := range q.Fees {
		fmt.Printf("  %-24s %s\n", "Fee ("+code+"):", amount.StringFixed(2))
	}
	fmt.Printf("  %-24s %s\n", "TOTAL:", q.TotalPrice.StringFixed(2))
}
