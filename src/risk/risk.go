package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"signalexecutor/src/model"
)

// TakeProfitEdge is the fixed fractional profit target for the exit order:
// entry * (1 + edge) for longs, entry * (1 - edge) for shorts.
var TakeProfitEdge = decimal.NewFromFloat(0.004)

// ComputeQuantity converts collateral into an order quantity:
//
//	quantity = (balance * riskRatio * leverage) / referencePrice
//
// floored to the instrument's quantity precision. Flooring (never ceiling)
// keeps the sized position from exceeding available margin through rounding.
func ComputeQuantity(
	balance decimal.Decimal,
	riskRatio decimal.Decimal,
	leverage int,
	referencePrice decimal.Decimal,
	instrument model.ResolvedInstrument,
) (decimal.Decimal, error) {

	if referencePrice.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, &model.SizingError{Reason: "reference price must be > 0"}
	}
	if leverage <= 0 {
		return decimal.Zero, &model.SizingError{Reason: fmt.Sprintf("leverage must be > 0, got %d", leverage)}
	}

	raw := balance.
		Mul(riskRatio).
		Mul(decimal.NewFromInt(int64(leverage))).
		Div(referencePrice)
	if raw.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, &model.SizingError{Reason: "computed quantity is zero or negative"}
	}

	qty := raw.RoundFloor(instrument.QuantityPrecision)
	if qty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, &model.SizingError{
			Reason: fmt.Sprintf("quantity %s rounds to zero at precision %d", raw.String(), instrument.QuantityPrecision),
		}
	}
	if instrument.MinQuantity.IsPositive() && qty.LessThan(instrument.MinQuantity) {
		return decimal.Zero, &model.SizingError{
			Reason: fmt.Sprintf("quantity %s below venue minimum %s", qty.String(), instrument.MinQuantity.String()),
		}
	}

	return qty, nil
}

// TakeProfitPrice derives the exit limit price from the entry reference
// price, rounded to the instrument's price precision.
func TakeProfitPrice(entryPrice decimal.Decimal, direction model.Direction, instrument model.ResolvedInstrument) decimal.Decimal {
	var target decimal.Decimal
	if direction == model.DirectionLong {
		target = entryPrice.Mul(decimal.NewFromInt(1).Add(TakeProfitEdge))
	} else {
		target = entryPrice.Mul(decimal.NewFromInt(1).Sub(TakeProfitEdge))
	}
	return target.Round(instrument.PricePrecision)
}
