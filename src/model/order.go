package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// OrderKind selects the venue order type.
type OrderKind string

const (
	OrderKindMarket OrderKind = "market"
	OrderKindLimit  OrderKind = "limit"
)

// MarginMode selects collateral allocation for a leveraged position.
type MarginMode string

const (
	MarginModeIsolated MarginMode = "isolated"
	MarginModeCross    MarginMode = "cross"
)

// OrderIntent is what the orchestrator asks the venue client to execute.
// The client mints the per-attempt fields (clientOrderId, timestamp,
// signature) itself, so a retried attempt never reuses a signed payload.
type OrderIntent struct {
	Instrument ResolvedInstrument
	Direction  Direction
	Kind       OrderKind
	Quantity   decimal.Decimal
	LimitPrice decimal.Decimal // ignored for market orders
	Leverage   int
	MarginMode MarginMode
	ReduceOnly bool // exit orders may only close, never open or flip
}

// OrderResult is the venue's answer for one order, kept only long enough
// to build the webhook response.
type OrderResult struct {
	Success      bool            `json:"success"`
	VenueOrderID string          `json:"venue_order_id,omitempty"`
	RawResponse  json.RawMessage `json:"raw_response,omitempty"`
	ErrorDetail  string          `json:"error_detail,omitempty"`
}

// ExecutionReport aggregates the whole signal outcome, partial failures
// included. TakeProfit is nil when the exit order could not be placed.
type ExecutionReport struct {
	MarketID   string
	Quantity   decimal.Decimal
	Entry      *OrderResult
	TakeProfit *OrderResult
	// ExitError carries a non-fatal take-profit failure alongside the
	// successful entry instead of failing the request.
	ExitError error
}
