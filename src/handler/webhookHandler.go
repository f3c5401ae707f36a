package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"signalexecutor/src/executors"
	"signalexecutor/src/model"
)

type signalExecutor interface {
	ExecuteSignal(ctx context.Context, signal model.TradeSignal) (*model.ExecutionReport, error)
}

type signalDispatcher interface {
	Enqueue(signal model.TradeSignal) (*executors.Task, error)
}

// webhookRequest is the raw alert body. entry_price arrives either as a
// JSON number or as a numeric string depending on the alerting source.
type webhookRequest struct {
	Symbol     string          `json:"symbol"`
	Side       string          `json:"side"`
	EntryPrice json.RawMessage `json:"entry_price"`
}

type webhookResponse struct {
	Status   string             `json:"status"`
	MarketID string             `json:"market_id,omitempty"`
	Qty      string             `json:"qty,omitempty"`
	Open     *model.OrderResult `json:"open_order,omitempty"`
	TP       *model.OrderResult `json:"tp_order"`
	TPError  string             `json:"tp_error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Trace string `json:"trace,omitempty"`
}

// WebhookHandler returns the POST /webhook handler. In sync mode the order
// flow runs within the request and the response carries the order results.
// In async mode the signal is queued and acknowledged immediately with no
// order result; the mode is a process-wide configuration choice.
func WebhookHandler(executor signalExecutor, dispatcher signalDispatcher, async bool, includeTrace bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		signal, err := parseSignal(r)
		if err != nil {
			logger.WithError(err).Warn("webhook validation failed")
			writeError(w, http.StatusBadRequest, err, includeTrace)
			return
		}

		logger.WithFields(map[string]interface{}{
			"symbol": signal.RawSymbol,
			"side":   signal.Direction,
			"price":  signal.ReferencePrice.String(),
		}).Info("webhook signal received")

		if async {
			if _, err := dispatcher.Enqueue(signal); err != nil {
				writeError(w, http.StatusServiceUnavailable, err, includeTrace)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
			return
		}

		report, err := executor.ExecuteSignal(r.Context(), signal)
		if err != nil {
			writeError(w, statusForError(err), err, includeTrace)
			return
		}

		resp := webhookResponse{
			Status:   "success",
			MarketID: report.MarketID,
			Qty:      report.Quantity.String(),
			Open:     report.Entry,
			TP:       report.TakeProfit,
		}
		if report.ExitError != nil {
			resp.TPError = report.ExitError.Error()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func parseSignal(r *http.Request) (model.TradeSignal, error) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return model.TradeSignal{}, &model.ValidationError{Field: "body", Reason: "malformed JSON"}
	}

	if req.Symbol == "" {
		return model.TradeSignal{}, &model.ValidationError{Field: "symbol", Reason: "required"}
	}
	if req.Side == "" {
		return model.TradeSignal{}, &model.ValidationError{Field: "side", Reason: "required"}
	}
	if len(req.EntryPrice) == 0 {
		return model.TradeSignal{}, &model.ValidationError{Field: "entry_price", Reason: "required"}
	}

	var direction model.Direction
	switch strings.ToLower(strings.TrimSpace(req.Side)) {
	case "long":
		direction = model.DirectionLong
	case "short":
		direction = model.DirectionShort
	default:
		return model.TradeSignal{}, &model.ValidationError{Field: "side", Reason: "must be Long or Short"}
	}

	price, err := parsePrice(req.EntryPrice)
	if err != nil {
		return model.TradeSignal{}, &model.ValidationError{Field: "entry_price", Reason: "not a valid number"}
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return model.TradeSignal{}, &model.ValidationError{Field: "entry_price", Reason: "must be > 0"}
	}

	return model.TradeSignal{
		RawSymbol:      req.Symbol,
		Direction:      direction,
		ReferencePrice: price,
	}, nil
}

// parsePrice accepts both "3000.5" (quoted) and 3000.5 (bare number).
func parsePrice(raw json.RawMessage) (decimal.Decimal, error) {
	s := string(raw)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	return decimal.NewFromString(strings.TrimSpace(s))
}

// rejectedAsClientError lists venue rejection codes caused by the request
// itself (bad parameters, insufficient funds) rather than venue failure.
var rejectedAsClientError = map[int]bool{
	600:  true, // parameter error
	1004: true, // amount error
	2002: true, // order side error
	2005: true, // order amount error
	2007: true, // order price error
	2008: true, // insufficient balance
	2011: true, // order qty too small
	2015: true, // price over limit
	2024: true, // leverage error
	2034: true, // precision error
}

// statusForError maps the pipeline error taxonomy onto HTTP classes.
func statusForError(err error) int {
	var validation *model.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest
	}

	var resolution *model.ResolutionError
	if errors.As(err, &resolution) {
		if resolution.Kind == model.ResolutionCatalogUnavailable {
			return http.StatusInternalServerError
		}
		return http.StatusBadRequest
	}

	var sizing *model.SizingError
	if errors.As(err, &sizing) {
		return http.StatusBadRequest
	}

	var rejected *model.OrderRejectedError
	if errors.As(err, &rejected) {
		if rejectedAsClientError[rejected.Code] {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	}

	// StateReadError, TransportError and anything unexpected.
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithError(err).Error("failed to encode webhook response")
	}
}

func writeError(w http.ResponseWriter, status int, err error, includeTrace bool) {
	resp := errorResponse{Error: err.Error()}
	if includeTrace && status >= http.StatusInternalServerError {
		// Diagnostic detail for sandbox runs only; never in live posture.
		resp.Trace = strings.TrimSpace(strings.Join(errChain(err), " <- "))
	}
	writeJSON(w, status, resp)
}

func errChain(err error) []string {
	var chain []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		chain = append(chain, e.Error())
	}
	return chain
}
