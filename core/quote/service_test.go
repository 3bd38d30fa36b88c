package quote

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tariffkey/core/types"
	"tariffkey/internal/errors"
)

func at(hour int) time.Time {
	return time.Date(2024, 1, 1, hour, 0, 0, 0, time.UTC)
}

type stubRateStore struct {
	records []types.RateRecord
	err     error
	calls   int
}

func (s *stubRateStore) FindOverlapping(ctx context.Context, route types.Route, windowFrom, windowTo time.Time) ([]types.RateRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

type stubFeeTable struct {
	fees map[string]string
	err  error
}

func (s *stubFeeTable) AmountFor(ctx context.Context, feeCode string) (decimal.Decimal, bool, error) {
	if s.err != nil {
		return decimal.Zero, false, s.err
	}
	text, ok := s.fees[feeCode]
	if !ok {
		return decimal.Zero, false, nil
	}
	return decimal.RequireFromString(text), true, nil
}

func record(kind types.RateKind, from, to time.Time, rate string) types.RateRecord {
	return types.RateRecord{
		ValidFrom:   from,
		ValidTo:     to,
		RatePercent: decimal.RequireFromString(rate),
		Kind:        kind,
		Source:      kind.String(),
	}
}

func validRequest() Request {
	return Request{
		Route:         types.Route{Product: "847130", Origin: "SGP", Destination: "USA"},
		Quantity:      100,
		UnitBasePrice: decimal.RequireFromString("2.00"),
		WindowFrom:    at(0),
		WindowTo:      at(12),
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s got %s", want, got)
}

func TestRequestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{"missing product", func(r *Request) { r.Route.Product = " " }, "product"},
		{"missing origin", func(r *Request) { r.Route.Origin = "" }, "origin"},
		{"missing destination", func(r *Request) { r.Route.Destination = "" }, "destination"},
		{"zero quantity", func(r *Request) { r.Quantity = 0 }, "quantity"},
		{"negative quantity", func(r *Request) { r.Quantity = -5 }, "quantity"},
		{"zero price", func(r *Request) { r.UnitBasePrice = decimal.Zero }, "unitBasePrice"},
		{"negative price", func(r *Request) { r.UnitBasePrice = decimal.NewFromInt(-1) }, "unitBasePrice"},
		{"inverted window", func(r *Request) { r.WindowFrom, r.WindowTo = r.WindowTo, r.WindowFrom }, "window"},
		{"empty window", func(r *Request) { r.WindowTo = r.WindowFrom }, "window"},
	}

	store := &stubRateStore{}
	service := NewService(store, &stubFeeTable{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			_, err := service.Quote(context.Background(), req)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeInput), "got %v", err)

			var domainErr *errors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.field, domainErr.Context["field"])
		})
	}
	assert.Zero(t, store.calls, "invalid requests must not reach the rate store")
}

func TestQuoteSingleDefault(t *testing.T) {
	store := &stubRateStore{records: []types.RateRecord{
		record(types.KindDefault, at(0), types.OpenEnd, "5"),
	}}
	service := NewService(store, &stubFeeTable{})

	q, err := service.Quote(context.Background(), validRequest())
	require.NoError(t, err)

	require.Len(t, q.Segments, 1)
	assertDecimal(t, "200.00", q.ItemPrice)
	assertDecimal(t, "10.00", q.TariffAmount)
	assertDecimal(t, "5", q.TariffRatePercent)
	assertDecimal(t, "210.00", q.TotalPrice)

	assert.NotEmpty(t, q.ID)
	assert.Equal(t, "847130", q.Route.Product)
	assert.False(t, q.GeneratedAt.IsZero())
}

func TestQuoteOverrideSplitsWindowWithFees(t *testing.T) {
	store := &stubRateStore{records: []types.RateRecord{
		record(types.KindDefault, at(0), at(12), "5"),
		record(types.KindOverride, at(0), at(6), "8"),
	}}
	fees := &stubFeeTable{fees: map[string]string{
		"handling":   "7.00",
		"inspection": "3.00",
	}}
	service := NewService(store, fees)

	req := validRequest()
	req.FeeCodes = []string{"handling", "inspection"}

	q, err := service.Quote(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, q.Segments, 2)
	assertDecimal(t, "8.00", q.Segments[0].TariffAmount)
	assertDecimal(t, "5.00", q.Segments[1].TariffAmount)
	assertDecimal(t, "6.5", q.TariffRatePercent)
	assertDecimal(t, "10.00", q.FeeTotal())
	// 200 item + 13 tariff + 10 fees
	assertDecimal(t, "223.00", q.TotalPrice)
}

func TestQuoteUnknownFeeResolvesToZero(t *testing.T) {
	store := &stubRateStore{records: []types.RateRecord{
		record(types.KindDefault, at(0), types.OpenEnd, "5"),
	}}
	service := NewService(store, &stubFeeTable{fees: map[string]string{}})

	req := validRequest()
	req.FeeCodes = []string{"handling"}

	q, err := service.Quote(context.Background(), req)
	require.NoError(t, err)

	amount, ok := q.Fees["handling"]
	require.True(t, ok, "unknown fee must still appear in the quote")
	assertDecimal(t, "0", amount)
	assertDecimal(t, "210.00", q.TotalPrice)
}

func TestQuoteDuplicateFeeCodesCountOnce(t *testing.T) {
	store := &stubRateStore{records: []types.RateRecord{
		record(types.KindDefault, at(0), types.OpenEnd, "5"),
	}}
	service := NewService(store, &stubFeeTable{fees: map[string]string{"handling": "7.00"}})

	req := validRequest()
	req.FeeCodes = []string{"handling", "handling"}

	q, err := service.Quote(context.Background(), req)
	require.NoError(t, err)
	assertDecimal(t, "7.00", q.FeeTotal())
	assertDecimal(t, "217.00", q.TotalPrice)
}

func TestQuoteNoCoverageIsNotAnError(t *testing.T) {
	service := NewService(&stubRateStore{}, &stubFeeTable{fees: map[string]string{"handling": "7.00"}})

	req := validRequest()
	req.FeeCodes = []string{"handling"}

	q, err := service.Quote(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, q.Covered())
	assert.Empty(t, q.Segments)
	assertDecimal(t, "0", q.ItemPrice)
	assertDecimal(t, "0", q.TariffAmount)
	// Fees still apply even when no tariff was in force
	assertDecimal(t, "7.00", q.TotalPrice)
}

func TestQuoteRateStoreFailureIsFatal(t *testing.T) {
	store := &stubRateStore{err: fmt.Errorf("connection refused")}
	service := NewService(store, &stubFeeTable{})

	_, err := service.Quote(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeStore), "got %v", err)
}

func TestQuoteFeeLookupFailureIsFatal(t *testing.T) {
	store := &stubRateStore{records: []types.RateRecord{
		record(types.KindDefault, at(0), types.OpenEnd, "5"),
	}}
	service := NewService(store, &stubFeeTable{err: fmt.Errorf("fee table unavailable")})

	req := validRequest()
	req.FeeCodes = []string{"handling"}

	_, err := service.Quote(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeStore), "got %v", err)
}
