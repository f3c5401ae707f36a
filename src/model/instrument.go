package model

import "github.com/shopspring/decimal"

// ContractType distinguishes leveraged swap contracts from plain spot markets.
type ContractType string

const (
	ContractTypeSwap ContractType = "swap"
	ContractTypeSpot ContractType = "spot"
)

// ResolvedInstrument is a catalog entry matched to an inbound symbol.
// Immutable once resolved; precision fields drive all rounding before signing.
type ResolvedInstrument struct {
	UnifiedID         string       // e.g. "ETH/USDT:USDT"
	VenueID           string       // e.g. "ETH_USDT", the id the venue API expects
	ContractType      ContractType // swap or spot
	BaseAsset         string
	QuoteAsset        string
	QuantityPrecision int32 // decimal places allowed on order quantity
	PricePrecision    int32 // decimal places allowed on order price
	MinQuantity       decimal.Decimal
}

// AccountBalance is the available collateral view for one asset.
// Always fetched fresh per signal, never cached.
type AccountBalance struct {
	Asset     string
	Available decimal.Decimal
}
