// Package ratefile provides an HCL-backed rate store and fee table.
// A schedule file declares product defaults, route overrides, and flat
// fees; it is the rate source the CLI runs the engine against.
//
//	default "847130" {
//	  rate       = 5.0
//	  valid_from = "2023-01-01T00:00:00Z"
//	  valid_to   = "2024-07-01T00:00:00Z" # omitted = open-ended
//	}
//
//	override "847130" {
//	  origin      = "SGP"
//	  destination = "USA"
//	  rate        = 8.0
//	  valid_from  = "2024-01-01T00:00:00Z"
//	}
//
//	fee "handling" {
//	  amount = 12.50
//	}
package ratefile

import (
	"context"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"

	"tariffkey/core/quote"
	"tariffkey/core/types"
	"tariffkey/internal/errors"
)

// Store holds a parsed rate schedule. It is immutable after loading and
// safe for concurrent use.
type Store struct {
	defaults  map[string][]types.RateRecord
	overrides map[types.Route][]types.RateRecord
	fees      map[string]decimal.Decimal
}

var (
	_ quote.RateStore = (*Store)(nil)
	_ quote.FeeTable  = (*Store)(nil)
)

// Load reads and parses a schedule file
func Load(path string) (*Store, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "cannot read rate schedule", err).WithContext("path", path)
	}
	return Parse(src, path)
}

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "default", LabelNames: []string{"product"}},
		{Type: "override", LabelNames: []string{"product"}},
		{Type: "fee", LabelNames: []string{"code"}},
	},
}

// Parse parses schedule source; filename is used in diagnostics
func Parse(src []byte, filename string) (*Store, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Parsing("invalid rate schedule syntax", diags)
	}

	content, diags := file.Body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, errors.Parsing("invalid rate schedule structure", diags)
	}

	store := &Store{
		defaults:  make(map[string][]types.RateRecord),
		overrides: make(map[types.Route][]types.RateRecord),
		fees:      make(map[string]decimal.Decimal),
	}

	for _, block := range content.Blocks {
		switch block.Type {
		case "default":
			product := block.Labels[0]
			record, err := decodeRecord(block, types.KindDefault)
			if err != nil {
				return nil, err
			}
			if record.Label == "" {
				record.Label = "Default rate (" + product + ")"
			}
			store.defaults[product] = append(store.defaults[product], record)

		case "override":
			product := block.Labels[0]
			record, route, err := decodeOverride(block, product)
			if err != nil {
				return nil, err
			}
			store.overrides[route] = append(store.overrides[route], record)

		case "fee":
			code := block.Labels[0]
			amount, err := decodeFee(block)
			if err != nil {
				return nil, err
			}
			store.fees[code] = amount
		}
	}

	return store, nil
}

// FindOverlapping returns the route's overrides and the product's defaults
// whose validity intersects [windowFrom, windowTo)
func (s *Store) FindOverlapping(ctx context.Context, route types.Route, windowFrom, windowTo time.Time) ([]types.RateRecord, error) {
	var out []types.RateRecord
	for _, r := range s.overrides[route] {
		if _, _, ok := r.Clip(windowFrom, windowTo); ok {
			out = append(out, r)
		}
	}
	for _, r := range s.defaults[route.Product] {
		if _, _, ok := r.Clip(windowFrom, windowTo); ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// AmountFor returns the flat fee amount for a code
func (s *Store) AmountFor(ctx context.Context, feeCode string) (decimal.Decimal, bool, error) {
	amount, ok := s.fees[feeCode]
	if !ok {
		return decimal.Zero, false, nil
	}
	return amount, true, nil
}

// FeeCodes lists the schedule's known fee codes
func (s *Store) FeeCodes() []string {
	codes := make([]string, 0, len(s.fees))
	for code := range s.fees {
		codes = append(codes, code)
	}
	return codes
}

// Fees returns a copy of the schedule's flat fees keyed by code
func (s *Store) Fees(ctx context.Context) (map[string]decimal.Decimal, error) {
	fees := make(map[string]decimal.Decimal, len(s.fees))
	for code, amount := range s.fees {
		fees[code] = amount
	}
	return fees, nil
}

var recordSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "rate", Required: true},
		{Name: "valid_from", Required: true},
		{Name: "valid_to"},
		{Name: "label"},
		{Name: "origin"},
		{Name: "destination"},
	},
}

func decodeRecord(block *hcl.Block, kind types.RateKind) (types.RateRecord, error) {
	attrs, diags := block.Body.Content(recordSchema)
	if diags.HasErrors() {
		return types.RateRecord{}, errors.Parsing("invalid "+block.Type+" block", diags)
	}

	rate, err := decimalAttr(attrs, "rate", block)
	if err != nil {
		return types.RateRecord{}, err
	}
	if rate.IsNegative() {
		return types.RateRecord{}, blockErr(block, "rate must not be negative")
	}

	validFrom, err := timeAttr(attrs, "valid_from", block)
	if err != nil {
		return types.RateRecord{}, err
	}

	validTo := types.OpenEnd
	if _, present := attrs.Attributes["valid_to"]; present {
		validTo, err = timeAttr(attrs, "valid_to", block)
		if err != nil {
			return types.RateRecord{}, err
		}
	}
	if !validFrom.Before(validTo) {
		return types.RateRecord{}, blockErr(block, "valid_from must be before valid_to")
	}

	label, err := optionalStringAttr(attrs, "label", block)
	if err != nil {
		return types.RateRecord{}, err
	}

	return types.RateRecord{
		ValidFrom:   validFrom,
		ValidTo:     validTo,
		RatePercent: rate,
		Kind:        kind,
		Label:       label,
		Source:      kind.String(),
	}, nil
}

func decodeOverride(block *hcl.Block, product string) (types.RateRecord, types.Route, error) {
	record, err := decodeRecord(block, types.KindOverride)
	if err != nil {
		return types.RateRecord{}, types.Route{}, err
	}

	attrs, _ := block.Body.Content(recordSchema)
	origin, err := requiredStringAttr(attrs, "origin", block)
	if err != nil {
		return types.RateRecord{}, types.Route{}, err
	}
	destination, err := requiredStringAttr(attrs, "destination", block)
	if err != nil {
		return types.RateRecord{}, types.Route{}, err
	}

	route := types.Route{Product: product, Origin: origin, Destination: destination}
	if record.Label == "" {
		record.Label = "Route override " + route.String()
	}
	return record, route, nil
}

var feeSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "amount", Required: true},
	},
}

func decodeFee(block *hcl.Block) (decimal.Decimal, error) {
	attrs, diags := block.Body.Content(feeSchema)
	if diags.HasErrors() {
		return decimal.Zero, errors.Parsing("invalid fee block", diags)
	}
	amount, err := decimalAttr(attrs, "amount", block)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsNegative() {
		return decimal.Zero, blockErr(block, "amount must not be negative")
	}
	return amount, nil
}

func attrValue(attrs *hcl.BodyContent, name string, block *hcl.Block) (cty.Value, error) {
	attr, ok := attrs.Attributes[name]
	if !ok {
		return cty.NilVal, blockErr(block, name+" is required")
	}
	value, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, errors.Parsing("cannot evaluate "+name, diags)
	}
	return value, nil
}

// decimalAttr accepts numbers and strings; strings avoid any float
// round-trip for rates that must be carried exactly.
func decimalAttr(attrs *hcl.BodyContent, name string, block *hcl.Block) (decimal.Decimal, error) {
	value, err := attrValue(attrs, name, block)
	if err != nil {
		return decimal.Zero, err
	}

	var text string
	switch value.Type() {
	case cty.String:
		text = value.AsString()
	case cty.Number:
		text = value.AsBigFloat().Text('f', -1)
	default:
		return decimal.Zero, blockErr(block, name+" must be a number or string")
	}

	d, perr := decimal.NewFromString(text)
	if perr != nil {
		return decimal.Zero, errors.Parsing("invalid "+name, perr)
	}
	return d, nil
}

func timeAttr(attrs *hcl.BodyContent, name string, block *hcl.Block) (time.Time, error) {
	text, err := requiredStringAttr(attrs, name, block)
	if err != nil {
		return time.Time{}, err
	}
	t, perr := time.Parse(time.RFC3339, text)
	if perr != nil {
		return time.Time{}, errors.Parsing(name+" must be RFC 3339", perr)
	}
	return t.UTC(), nil
}

func requiredStringAttr(attrs *hcl.BodyContent, name string, block *hcl.Block) (string, error) {
	value, err := attrValue(attrs, name, block)
	if err != nil {
		return "", err
	}
	if value.Type() != cty.String {
		return "", blockErr(block, name+" must be a string")
	}
	return value.AsString(), nil
}

func optionalStringAttr(attrs *hcl.BodyContent, name string, block *hcl.Block) (string, error) {
	if _, ok := attrs.Attributes[name]; !ok {
		return "", nil
	}
	return requiredStringAttr(attrs, name, block)
}

func blockErr(block *hcl.Block, message string) *errors.Error {
	return errors.Newf(errors.TypeParsing, "%s block at %s: %s", block.Type, block.DefRange.String(), message)
}
