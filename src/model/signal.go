package model

import (
	"github.com/shopspring/decimal"
)

// Direction of a trade signal.
type Direction string

const (
	DirectionLong  Direction = "Long"
	DirectionShort Direction = "Short"
)

// TradeSignal is one inbound alert, already validated and price-parsed.
// It lives for a single orchestration run and is never persisted.
type TradeSignal struct {
	RawSymbol      string
	Direction      Direction
	ReferencePrice decimal.Decimal
}

// Opposite returns the exit direction for a given entry direction.
func (d Direction) Opposite() Direction {
	if d == DirectionLong {
		return DirectionShort
	}
	return DirectionLong
}
