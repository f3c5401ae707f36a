package connectors

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"signalexecutor/src/model"
)

// The venue has shipped the asset payload in more than one shape across API
// versions: a single asset object, or a list of per-currency entries where
// the available amount sits in availableBalance or availableCash. Each known
// shape is decoded explicitly; an unrecognized shape is an API-drift error,
// observably distinct from a zero balance and from a transport failure.

type assetEntry struct {
	Currency         string       `json:"currency"`
	AvailableBalance *json.Number `json:"availableBalance"`
	AvailableCash    *json.Number `json:"availableCash"`
}

func (e assetEntry) available() (decimal.Decimal, bool) {
	for _, n := range []*json.Number{e.AvailableBalance, e.AvailableCash} {
		if n == nil {
			continue
		}
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}

// decodeAvailable extracts the available balance for asset from the response
// data, trying the object shape first and the list shape second.
func decodeAvailable(data json.RawMessage, asset string) (decimal.Decimal, error) {
	var single assetEntry
	if err := json.Unmarshal(data, &single); err == nil && single.Currency == asset {
		if d, ok := single.available(); ok {
			return d, nil
		}
		return decimal.Zero, fmt.Errorf("asset payload for %s has no available field: %s", asset, string(data))
	}

	var list []assetEntry
	if err := json.Unmarshal(data, &list); err == nil {
		for _, e := range list {
			if e.Currency != asset {
				continue
			}
			if d, ok := e.available(); ok {
				return d, nil
			}
			return decimal.Zero, fmt.Errorf("asset payload for %s has no available field: %s", asset, string(data))
		}
		return decimal.Zero, fmt.Errorf("asset %s not present in payload: %s", asset, string(data))
	}

	return decimal.Zero, fmt.Errorf("unrecognized asset payload shape: %s", string(data))
}

// GetAvailableBalance fetches the derivatives wallet view for one asset.
// Balances change too fast to cache; this is called fresh on every signal.
func (c *Client) GetAvailableBalance(ctx context.Context, asset string) (model.AccountBalance, error) {
	params := map[string]string{"currency": asset}
	signed := c.signedParams(params)

	reqCtx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(reqCtx).
		SetHeader(apiKeyHeader, c.apiKey).
		SetQueryParams(signed).
		Get(pathAccountAsset + "/" + asset)
	if err != nil {
		return model.AccountBalance{}, &model.StateReadError{What: "account balance", Err: err}
	}
	if resp.StatusCode() != 200 {
		return model.AccountBalance{}, &model.StateReadError{
			What: "account balance",
			Err:  fmt.Errorf("http status %d: %s", resp.StatusCode(), resp.String()),
		}
	}

	var apiResp APIResponse
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		return model.AccountBalance{}, &model.StateReadError{What: "account balance", Err: err}
	}
	if !apiResp.OK() {
		return model.AccountBalance{}, &model.StateReadError{
			What: "account balance",
			Err:  fmt.Errorf("venue code=%d (%s)", apiResp.ErrorCode(), apiResp.errorDetail()),
		}
	}

	available, err := decodeAvailable(apiResp.Data, asset)
	if err != nil {
		return model.AccountBalance{}, &model.StateReadError{What: "account balance", Err: err}
	}

	logger.WithFields(map[string]interface{}{
		"asset":     asset,
		"available": available.String(),
	}).Info("available balance fetched")

	return model.AccountBalance{Asset: asset, Available: available}, nil
}
