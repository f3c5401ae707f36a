// REST API CLIENT FOR MEXC USDT-M CONTRACTS
// RESTY + EXPLICIT PER-ATTEMPT SIGNING AND RETRY
package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"signalexecutor/src/config"
	"signalexecutor/src/model"
)

const (
	pathPing         = "/api/v1/contract/ping"
	pathContractList = "/api/v1/contract/detail"
	pathAccountAsset = "/api/v1/private/account/asset"
	pathChangeLever  = "/api/v1/private/position/change_leverage"
	pathOrderSubmit  = "/api/v1/private/order/submit"
	recvWindowMs     = "5000"
	apiKeyHeader     = "X-MEXC-APIKEY"
)

// APIResponse is the venue's envelope for contract endpoints. Code is a
// pointer so a body carrying no code at all is distinguishable from an
// explicit code 0.
type APIResponse struct {
	Success bool            `json:"success"`
	Code    *int            `json:"code"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// OK reports affirmative venue success: the success flag set, or a code the
// venue explicitly returned as 0. An HTTP 200 body carrying neither is a
// refusal, not a success.
func (r *APIResponse) OK() bool {
	return r.Success || (r.Code != nil && *r.Code == 0)
}

// ErrorCode returns the refusal code, or 0 when the body carried none.
func (r *APIResponse) ErrorCode() int {
	if r.Code == nil {
		return 0
	}
	return *r.Code
}

func (r *APIResponse) errorDetail() string {
	if r.Code != nil {
		return GetErrorMsg(*r.Code)
	}
	if r.Message != "" {
		return r.Message
	}
	return "venue response missing success flag"
}

// Client is the authenticated REST client. One instance per process,
// safe for concurrent use.
type Client struct {
	apiKey    string
	apiSecret string
	http      *resty.Client
	spotHTTP  *resty.Client

	readTimeout  time.Duration
	orderTimeout time.Duration
	retry        RetryPolicy

	// local-to-server clock offset in ms, applied to signing timestamps
	clockOffsetMs int64
}

func NewClient(cfg *config.Config) *Client {
	retry := DefaultRetryPolicy()
	if cfg.RetryAttempts > 0 {
		retry.MaxAttempts = cfg.RetryAttempts
	}
	if cfg.RetryBaseDelay > 0 {
		retry.BaseDelay = cfg.RetryBaseDelay
	}

	c := &Client{
		apiKey:       cfg.APIKey,
		apiSecret:    cfg.APISecret,
		http:         resty.New().SetBaseURL(cfg.ContractBaseURL()),
		spotHTTP:     resty.New().SetBaseURL(cfg.SpotBaseURL()),
		readTimeout:  cfg.ReadTimeout,
		orderTimeout: cfg.OrderTimeout,
		retry:        retry,
	}

	logger.WithFields(map[string]interface{}{
		"base_url": cfg.ContractBaseURL(),
		"testnet":  cfg.UseTestnet,
	}).Info("MEXC contract client initialized")

	return c
}

// SyncClock fetches the venue server time and stores the local clock offset
// used when signing time-sensitive requests. Best effort: a failure leaves
// the previous offset in place.
func (c *Client) SyncClock(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	before := time.Now().UnixMilli()
	resp, err := c.http.R().SetContext(ctx).Get(pathPing)
	after := time.Now().UnixMilli()
	if err != nil {
		return fmt.Errorf("ping request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("ping http status %d: %s", resp.StatusCode(), resp.String())
	}

	var apiResp APIResponse
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		return fmt.Errorf("unmarshal ping response: %w", err)
	}

	var serverMs int64
	if err := json.Unmarshal(apiResp.Data, &serverMs); err != nil || serverMs <= 0 {
		return fmt.Errorf("ping response has no server time: %s", string(apiResp.Data))
	}

	local := (before + after) / 2
	offset := serverMs - local
	atomic.StoreInt64(&c.clockOffsetMs, offset)

	logger.WithField("offset_ms", offset).Info("server clock offset applied")
	return nil
}

func (c *Client) timestampMs() string {
	offset := atomic.LoadInt64(&c.clockOffsetMs)
	return strconv.FormatInt(time.Now().UnixMilli()+offset, 10)
}

// signedParams copies the call parameters, stamps them with a fresh
// timestamp and recvWindow, and attaches the signature. Must be called
// once per attempt: a stale signature from a prior attempt is invalid.
func (c *Client) signedParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params)+3)
	for k, v := range params {
		out[k] = v
	}
	out["timestamp"] = c.timestampMs()
	out["recvWindow"] = recvWindowMs
	out["sign"] = SignParams(c.apiSecret, out)
	return out
}

// ---------------------------------------------------------------------
// ORDER SUBMISSION
// ---------------------------------------------------------------------

// Venue enum codes for /private/order/submit.
const (
	sideOpenLong   = 1
	sideCloseShort = 2
	sideOpenShort  = 3
	sideCloseLong  = 4

	openTypeIsolated = 1
	openTypeCross    = 2

	positionTypeLong  = 1
	positionTypeShort = 2

	orderTypeLimit  = 1
	orderTypeMarket = 5
)

// sideCode maps order direction plus reduce-only intent to the venue side
// enum. A reduce-only order uses the close codes, so it can only shrink the
// opposite position, never open or flip one.
func sideCode(d model.Direction, reduceOnly bool) int {
	switch {
	case d == model.DirectionLong && !reduceOnly:
		return sideOpenLong
	case d == model.DirectionShort && !reduceOnly:
		return sideOpenShort
	case d == model.DirectionShort && reduceOnly:
		return sideCloseLong
	default:
		return sideCloseShort
	}
}

func positionTypeCode(d model.Direction, reduceOnly bool) int {
	// The affected position is opposite the order direction when closing.
	if (d == model.DirectionLong) != reduceOnly {
		return positionTypeLong
	}
	return positionTypeShort
}

func openTypeCode(m model.MarginMode) int {
	if m == model.MarginModeCross {
		return openTypeCross
	}
	return openTypeIsolated
}

// SubmitOrder submits one order with bounded retry. Transport failures and
// non-2xx statuses consume retry attempts; an HTTP 2xx whose body lacks the
// venue success flag is a terminal OrderRejectedError and is never retried.
// Every attempt is rebuilt and re-signed with a fresh externalOid and
// timestamp.
func (c *Client) SubmitOrder(ctx context.Context, intent model.OrderIntent) (*model.OrderResult, error) {
	orderType := orderTypeMarket
	price := ""
	if intent.Kind == model.OrderKindLimit {
		orderType = orderTypeLimit
		price = intent.LimitPrice.String()
	}

	base := map[string]string{
		"symbol":       intent.Instrument.VenueID,
		"price":        price,
		"vol":          intent.Quantity.String(),
		"side":         strconv.Itoa(sideCode(intent.Direction, intent.ReduceOnly)),
		"openType":     strconv.Itoa(openTypeCode(intent.MarginMode)),
		"positionType": strconv.Itoa(positionTypeCode(intent.Direction, intent.ReduceOnly)),
		"leverage":     strconv.Itoa(intent.Leverage),
		"type":         strconv.Itoa(orderType),
	}

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		params := map[string]string{"externalOid": uuid.NewString()}
		for k, v := range base {
			params[k] = v
		}
		signed := c.signedParams(params)

		logger.WithFields(map[string]interface{}{
			"symbol":  intent.Instrument.VenueID,
			"side":    signed["side"],
			"vol":     signed["vol"],
			"type":    signed["type"],
			"attempt": attempt,
		}).Info("submitting order")

		reqCtx, cancel := context.WithTimeout(ctx, c.orderTimeout)
		resp, err := c.http.R().
			SetContext(reqCtx).
			SetHeader("Content-Type", "application/json").
			SetHeader(apiKeyHeader, c.apiKey).
			SetBody(signed).
			Post(pathOrderSubmit)
		cancel()

		if err != nil {
			lastErr = err
			logger.WithError(err).WithFields(map[string]interface{}{
				"symbol":  intent.Instrument.VenueID,
				"attempt": attempt,
			}).Warn("order submit transport failure")
			if attempt < c.retry.MaxAttempts {
				c.retry.Wait(attempt)
			}
			continue
		}

		if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
			lastErr = fmt.Errorf("http status %d: %s", resp.StatusCode(), resp.String())
			logger.WithFields(map[string]interface{}{
				"symbol":  intent.Instrument.VenueID,
				"status":  resp.StatusCode(),
				"attempt": attempt,
			}).Warn("order submit non-2xx response")
			if attempt < c.retry.MaxAttempts {
				c.retry.Wait(attempt)
			}
			continue
		}

		var apiResp APIResponse
		if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
			lastErr = fmt.Errorf("unmarshal order response: %w", err)
			if attempt < c.retry.MaxAttempts {
				c.retry.Wait(attempt)
			}
			continue
		}

		if !apiResp.OK() {
			// The venue received and refused the request, or answered
			// 200 with no affirmative success flag. Terminal either way;
			// does not consume the transport retry budget.
			logger.WithFields(map[string]interface{}{
				"symbol": intent.Instrument.VenueID,
				"code":   apiResp.ErrorCode(),
				"reason": apiResp.errorDetail(),
			}).Error("order rejected by venue")
			return &model.OrderResult{
					Success:     false,
					RawResponse: resp.Body(),
					ErrorDetail: apiResp.errorDetail(),
				}, &model.OrderRejectedError{
					Code:    apiResp.ErrorCode(),
					Message: apiResp.Message,
				}
		}

		result := &model.OrderResult{
			Success:      true,
			VenueOrderID: extractOrderID(apiResp.Data),
			RawResponse:  resp.Body(),
		}
		logger.WithFields(map[string]interface{}{
			"symbol":   intent.Instrument.VenueID,
			"order_id": result.VenueOrderID,
		}).Info("order accepted by venue")
		return result, nil
	}

	return nil, &model.TransportError{Attempts: c.retry.MaxAttempts, Err: lastErr}
}

// extractOrderID pulls the venue order id out of the submit response data.
// The venue returns either a bare id or an object wrapping one.
func extractOrderID(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}

	var id json.Number
	if err := json.Unmarshal(data, &id); err == nil {
		return id.String()
	}

	var wrapped struct {
		OrderID json.Number `json:"orderId"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		return wrapped.OrderID.String()
	}
	return ""
}

// ---------------------------------------------------------------------
// LEVERAGE
// ---------------------------------------------------------------------

// SetLeverage changes leverage and margin mode for the position side the
// signal is about to open. Called before the entry order; the orchestrator
// treats failure as best-effort.
func (c *Client) SetLeverage(ctx context.Context, instrument model.ResolvedInstrument, direction model.Direction, leverage int, mode model.MarginMode) error {
	params := map[string]string{
		"symbol":       instrument.VenueID,
		"leverage":     strconv.Itoa(leverage),
		"openType":     strconv.Itoa(openTypeCode(mode)),
		"positionType": strconv.Itoa(positionTypeCode(direction, false)),
	}
	signed := c.signedParams(params)

	reqCtx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(reqCtx).
		SetHeader("Content-Type", "application/json").
		SetHeader(apiKeyHeader, c.apiKey).
		SetBody(signed).
		Post(pathChangeLever)
	if err != nil {
		return &model.LeverageError{Symbol: instrument.VenueID, Err: err}
	}

	if resp.StatusCode() != 200 {
		return &model.LeverageError{
			Symbol: instrument.VenueID,
			Err:    fmt.Errorf("http status %d: %s", resp.StatusCode(), resp.String()),
		}
	}

	var apiResp APIResponse
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		return &model.LeverageError{Symbol: instrument.VenueID, Err: err}
	}
	if !apiResp.OK() {
		return &model.LeverageError{
			Symbol: instrument.VenueID,
			Err:    fmt.Errorf("venue code=%d (%s)", apiResp.ErrorCode(), apiResp.errorDetail()),
		}
	}

	logger.WithFields(map[string]interface{}{
		"symbol":   instrument.VenueID,
		"leverage": leverage,
		"mode":     mode,
	}).Info("leverage set")
	return nil
}
