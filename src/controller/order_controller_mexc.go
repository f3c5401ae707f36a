package controller

import (
	"context"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"signalexecutor/src/config"
	"signalexecutor/src/model"
	"signalexecutor/src/risk"
)

// Venue is the authenticated exchange surface the orchestrator drives.
type Venue interface {
	GetAvailableBalance(ctx context.Context, asset string) (model.AccountBalance, error)
	SetLeverage(ctx context.Context, instrument model.ResolvedInstrument, direction model.Direction, leverage int, mode model.MarginMode) error
	SubmitOrder(ctx context.Context, intent model.OrderIntent) (*model.OrderResult, error)
}

// Resolver maps raw inbound symbols to catalog-confirmed instruments.
type Resolver interface {
	Resolve(ctx context.Context, rawSymbol string) (model.ResolvedInstrument, error)
}

// OrderController sequences one signal through the linear pipeline:
// resolve -> balance -> size -> set leverage (best effort) -> entry order ->
// take-profit order. Entry failure is fatal; take-profit failure is attached
// to the report instead, since the position is already open and there is no
// compensating close.
type OrderController struct {
	venue    Venue
	resolver Resolver

	riskRatio  decimal.Decimal
	leverage   int
	marginMode model.MarginMode
}

func NewOrderController(cfg *config.Config, venue Venue, resolver Resolver) *OrderController {
	mode := model.MarginModeIsolated
	if model.MarginMode(cfg.MarginMode) == model.MarginModeCross {
		mode = model.MarginModeCross
	}

	return &OrderController{
		venue:      venue,
		resolver:   resolver,
		riskRatio:  decimal.NewFromFloat(cfg.RiskRatio),
		leverage:   cfg.DefaultLeverage,
		marginMode: mode,
	}
}

// ExecuteSignal runs the full flow for one validated trade signal.
func (oc *OrderController) ExecuteSignal(ctx context.Context, signal model.TradeSignal) (*model.ExecutionReport, error) {
	log := logger.WithFields(map[string]interface{}{
		"symbol": signal.RawSymbol,
		"side":   signal.Direction,
		"price":  signal.ReferencePrice.String(),
	})
	log.Info("executing trade signal")

	instrument, err := oc.resolver.Resolve(ctx, signal.RawSymbol)
	if err != nil {
		log.WithError(err).Warn("symbol resolution failed")
		return nil, err
	}

	if instrument.ContractType != model.ContractTypeSwap {
		// Spot markets take no leverage; submitting a leveraged-intent
		// order against one would silently open an unleveraged position.
		log.WithField("market_id", instrument.VenueID).Warn("only a spot market matched, rejecting leveraged signal")
		return nil, &model.ResolutionError{
			Kind:   model.ResolutionNotFound,
			Symbol: signal.RawSymbol,
			Reason: "no swap contract exists, only a spot market; refusing leveraged execution",
		}
	}

	balance, err := oc.venue.GetAvailableBalance(ctx, instrument.QuoteAsset)
	if err != nil {
		log.WithError(err).Error("balance read failed")
		return nil, err
	}
	if balance.Available.LessThanOrEqual(decimal.Zero) {
		log.WithField("available", balance.Available.String()).Warn("insufficient balance")
		return nil, &model.SizingError{Reason: "insufficient balance: " + balance.Available.String()}
	}

	quantity, err := risk.ComputeQuantity(balance.Available, oc.riskRatio, oc.leverage, signal.ReferencePrice, instrument)
	if err != nil {
		log.WithError(err).Warn("position sizing failed")
		return nil, err
	}
	log = log.WithFields(map[string]interface{}{
		"market_id": instrument.VenueID,
		"qty":       quantity.String(),
	})

	// Leverage must be in place before the entry order, but a failed change
	// is best effort: the order proceeds on whatever leverage is active.
	if err := oc.venue.SetLeverage(ctx, instrument, signal.Direction, oc.leverage, oc.marginMode); err != nil {
		log.WithError(err).Warn("failed to set leverage, proceeding with account default")
	}

	entry, err := oc.venue.SubmitOrder(ctx, model.OrderIntent{
		Instrument: instrument,
		Direction:  signal.Direction,
		Kind:       model.OrderKindMarket,
		Quantity:   quantity,
		Leverage:   oc.leverage,
		MarginMode: oc.marginMode,
	})
	if err != nil {
		log.WithError(err).Error("entry order failed, aborting signal")
		return nil, err
	}
	log.Info("entry order placed")

	report := &model.ExecutionReport{
		MarketID: instrument.VenueID,
		Quantity: quantity,
		Entry:    entry,
	}

	tpPrice := risk.TakeProfitPrice(signal.ReferencePrice, signal.Direction, instrument)
	tp, err := oc.venue.SubmitOrder(ctx, model.OrderIntent{
		Instrument: instrument,
		Direction:  signal.Direction.Opposite(),
		Kind:       model.OrderKindLimit,
		Quantity:   quantity,
		LimitPrice: tpPrice,
		Leverage:   oc.leverage,
		MarginMode: oc.marginMode,
		ReduceOnly: true,
	})
	if err != nil {
		// The entry position is already open; surface the exit failure in
		// the report rather than failing the whole signal.
		log.WithError(err).WithField("tp_price", tpPrice.String()).Error("take-profit order failed")
		report.ExitError = err
		return report, nil
	}

	report.TakeProfit = tp
	log.WithField("tp_price", tpPrice.String()).Info("signal completed with entry and take-profit")
	return report, nil
}
