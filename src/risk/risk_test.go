package risk

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"signalexecutor/src/model"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func instrument(qtyPrecision, pricePrecision int32, minQty string) model.ResolvedInstrument {
	return model.ResolvedInstrument{
		VenueID:           "ETH_USDT",
		ContractType:      model.ContractTypeSwap,
		BaseAsset:         "ETH",
		QuoteAsset:        "USDT",
		QuantityPrecision: qtyPrecision,
		PricePrecision:    pricePrecision,
		MinQuantity:       decimal.RequireFromString(minQty),
	}
}

// TestComputeQuantityScenario: balance 100, risk 1.0, leverage 25, price
// 3000 sizes to (100*1*25)/3000 ~ 0.8333 at 4 decimal places.
func TestComputeQuantityScenario(t *testing.T) {
	qty, err := ComputeQuantity(
		mustDecimal(t, "100"),
		mustDecimal(t, "1.0"),
		25,
		mustDecimal(t, "3000"),
		instrument(4, 2, "0.0001"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qty.String() != "0.8333" {
		t.Fatalf("expected 0.8333, got %s", qty.String())
	}
}

// TestComputeQuantityFloorInvariant: the rounded quantity never exceeds the
// unrounded (B*R*L)/P value.
func TestComputeQuantityFloorInvariant(t *testing.T) {
	cases := []struct {
		balance, ratio, price string
		leverage              int
		precision             int32
	}{
		{"100", "1.0", "3000", 25, 4},
		{"57.31", "0.5", "61234.99", 10, 3},
		{"1000", "0.25", "0.0731", 5, 0},
		{"3.33", "1.0", "7.77", 3, 2},
	}

	for _, tc := range cases {
		balance := mustDecimal(t, tc.balance)
		ratio := mustDecimal(t, tc.ratio)
		price := mustDecimal(t, tc.price)

		qty, err := ComputeQuantity(balance, ratio, tc.leverage, price, instrument(tc.precision, 2, "0"))
		if err != nil {
			t.Fatalf("%+v: unexpected error: %v", tc, err)
		}

		raw := balance.Mul(ratio).Mul(decimal.NewFromInt(int64(tc.leverage))).Div(price)
		if qty.GreaterThan(raw) {
			t.Fatalf("%+v: floored quantity %s exceeds raw %s", tc, qty.String(), raw.String())
		}
	}
}

func TestComputeQuantityErrors(t *testing.T) {
	in := instrument(3, 2, "0.001")

	cases := []struct {
		name     string
		balance  string
		ratio    string
		leverage int
		price    string
	}{
		{name: "zero balance", balance: "0", ratio: "1", leverage: 25, price: "3000"},
		{name: "zero ratio", balance: "100", ratio: "0", leverage: 25, price: "3000"},
		{name: "zero leverage", balance: "100", ratio: "1", leverage: 0, price: "3000"},
		{name: "zero price", balance: "100", ratio: "1", leverage: 25, price: "0"},
		{name: "rounds to zero", balance: "0.000001", ratio: "1", leverage: 1, price: "60000"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeQuantity(
				mustDecimal(t, tc.balance),
				mustDecimal(t, tc.ratio),
				tc.leverage,
				mustDecimal(t, tc.price),
				in,
			)
			var sizing *model.SizingError
			if !errors.As(err, &sizing) {
				t.Fatalf("expected SizingError, got %v", err)
			}
		})
	}
}

// TestComputeQuantityBelowVenueMinimum rejects a quantity under the
// venue-declared minimum order size.
func TestComputeQuantityBelowVenueMinimum(t *testing.T) {
	_, err := ComputeQuantity(
		mustDecimal(t, "1"),
		mustDecimal(t, "0.01"),
		1,
		mustDecimal(t, "3000"),
		instrument(6, 2, "0.01"),
	)
	var sizing *model.SizingError
	if !errors.As(err, &sizing) {
		t.Fatalf("expected SizingError for sub-minimum quantity, got %v", err)
	}
}

// TestTakeProfitPrice: long exits above entry, short exits below, both
// rounded to the instrument price precision. 3000 long -> 3012.
func TestTakeProfitPrice(t *testing.T) {
	in := instrument(4, 2, "0")

	long := TakeProfitPrice(mustDecimal(t, "3000"), model.DirectionLong, in)
	if long.String() != "3012" {
		t.Fatalf("expected long TP 3012, got %s", long.String())
	}

	short := TakeProfitPrice(mustDecimal(t, "3000"), model.DirectionShort, in)
	if short.String() != "2988" {
		t.Fatalf("expected short TP 2988, got %s", short.String())
	}

	rounded := TakeProfitPrice(mustDecimal(t, "1234.5678"), model.DirectionLong, in)
	if rounded.Exponent() < -2 {
		t.Fatalf("TP price not rounded to precision: %s", rounded.String())
	}
}
