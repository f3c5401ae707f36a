package connectors

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"signalexecutor/src/model"
)

// ContractInfo mirrors the fields of /api/v1/contract/detail the catalog
// needs. All contract-detail entries are perpetual swaps.
type ContractInfo struct {
	Symbol     string          `json:"symbol"` // e.g. "ETH_USDT"
	BaseCoin   string          `json:"baseCoin"`
	QuoteCoin  string          `json:"quoteCoin"`
	PriceScale int32           `json:"priceScale"`
	VolScale   int32           `json:"volScale"`
	MinVol     decimal.Decimal `json:"minVol"`
	APIAllowed bool            `json:"apiAllowed"`
}

type spotSymbolInfo struct {
	Symbol             string `json:"symbol"` // e.g. "ETHUSDT"
	BaseAsset          string `json:"baseAsset"`
	QuoteAsset         string `json:"quoteAsset"`
	BaseAssetPrecision int32  `json:"baseAssetPrecision"`
	QuotePrecision     int32  `json:"quotePrecision"`
}

// FetchInstruments loads the full tradable instrument set: every perpetual
// contract, plus spot markets as degraded-mode fallbacks. A spot fetch
// failure only narrows the catalog to swaps; a contract fetch failure fails
// the whole load.
func (c *Client) FetchInstruments(ctx context.Context) ([]model.ResolvedInstrument, error) {
	contracts, err := c.fetchContracts(ctx)
	if err != nil {
		return nil, err
	}

	instruments := make([]model.ResolvedInstrument, 0, len(contracts))
	for _, ct := range contracts {
		if !ct.APIAllowed {
			continue
		}
		instruments = append(instruments, model.ResolvedInstrument{
			UnifiedID:         ct.BaseCoin + "/" + ct.QuoteCoin + ":" + ct.QuoteCoin,
			VenueID:           ct.Symbol,
			ContractType:      model.ContractTypeSwap,
			BaseAsset:         ct.BaseCoin,
			QuoteAsset:        ct.QuoteCoin,
			QuantityPrecision: ct.VolScale,
			PricePrecision:    ct.PriceScale,
			MinQuantity:       ct.MinVol,
		})
	}

	spots, err := c.fetchSpotSymbols(ctx)
	if err != nil {
		logger.WithError(err).Warn("spot symbol fetch failed, catalog limited to swap contracts")
	}
	for _, sp := range spots {
		instruments = append(instruments, model.ResolvedInstrument{
			UnifiedID:         sp.BaseAsset + "/" + sp.QuoteAsset,
			VenueID:           sp.Symbol,
			ContractType:      model.ContractTypeSpot,
			BaseAsset:         sp.BaseAsset,
			QuoteAsset:        sp.QuoteAsset,
			QuantityPrecision: sp.BaseAssetPrecision,
			PricePrecision:    sp.QuotePrecision,
			MinQuantity:       decimal.Zero,
		})
	}

	logger.WithField("count", len(instruments)).Info("instrument catalog fetched")
	return instruments, nil
}

func (c *Client) fetchContracts(ctx context.Context) ([]ContractInfo, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	resp, err := c.http.R().SetContext(reqCtx).Get(pathContractList)
	if err != nil {
		return nil, &model.StateReadError{What: "contract catalog", Err: err}
	}
	if resp.StatusCode() != 200 {
		return nil, &model.StateReadError{
			What: "contract catalog",
			Err:  fmt.Errorf("http status %d: %s", resp.StatusCode(), resp.String()),
		}
	}

	var apiResp APIResponse
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		return nil, &model.StateReadError{What: "contract catalog", Err: err}
	}
	if !apiResp.OK() {
		return nil, &model.StateReadError{
			What: "contract catalog",
			Err:  fmt.Errorf("venue code=%d (%s)", apiResp.ErrorCode(), apiResp.errorDetail()),
		}
	}

	var contracts []ContractInfo
	if err := json.Unmarshal(apiResp.Data, &contracts); err != nil {
		return nil, &model.StateReadError{What: "contract catalog", Err: err}
	}
	return contracts, nil
}

func (c *Client) fetchSpotSymbols(ctx context.Context) ([]spotSymbolInfo, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	resp, err := c.spotHTTP.R().SetContext(reqCtx).Get("/api/v3/exchangeInfo")
	if err != nil {
		return nil, fmt.Errorf("spot exchange info: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("spot exchange info http status %d", resp.StatusCode())
	}

	var payload struct {
		Symbols []spotSymbolInfo `json:"symbols"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal spot exchange info: %w", err)
	}
	return payload.Symbols, nil
}
