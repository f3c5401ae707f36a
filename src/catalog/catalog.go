package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	logger "github.com/sirupsen/logrus"

	"signalexecutor/src/model"
)

// knownQuotes are the quote assets an inbound symbol may end in, checked in
// order. USDT is the primary settlement asset.
var knownQuotes = []string{"USDT", "USDC"}

// InstrumentSource fetches the full instrument set from the venue.
type InstrumentSource interface {
	FetchInstruments(ctx context.Context) ([]model.ResolvedInstrument, error)
}

// Catalog caches the tradable instrument set and resolves loose tickers to
// exact venue instruments. Reads are concurrent; a refresh swaps the whole
// map copy-on-write, never mutating one in place. A failed startup load
// leaves the catalog empty and degraded: every resolution fails with
// CatalogUnavailable until a lazy refresh succeeds.
type Catalog struct {
	source InstrumentSource

	mu     sync.RWMutex
	byPair map[string][]model.ResolvedInstrument // key: BASE/QUOTE
	loaded bool
}

func NewCatalog(source InstrumentSource) *Catalog {
	return &Catalog{
		source: source,
		byPair: map[string][]model.ResolvedInstrument{},
	}
}

// Refresh fetches the instrument set and atomically replaces the cache.
func (c *Catalog) Refresh(ctx context.Context) error {
	instruments, err := c.source.FetchInstruments(ctx)
	if err != nil {
		logger.WithError(err).Error("catalog refresh failed")
		return err
	}

	next := make(map[string][]model.ResolvedInstrument, len(instruments))
	for _, in := range instruments {
		key := in.BaseAsset + "/" + in.QuoteAsset
		next[key] = append(next[key], in)
	}
	// Deterministic candidate order: swaps before spot, then venue id
	// alphabetically. Resolution picks the first entry.
	for _, candidates := range next {
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].ContractType != candidates[j].ContractType {
				return candidates[i].ContractType == model.ContractTypeSwap
			}
			return candidates[i].VenueID < candidates[j].VenueID
		})
	}

	c.mu.Lock()
	c.byPair = next
	c.loaded = true
	c.mu.Unlock()

	logger.WithField("pairs", len(next)).Info("instrument catalog refreshed")
	return nil
}

// Loaded reports whether at least one refresh has succeeded.
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Resolve maps a raw inbound symbol ("ethusdt.P") to a catalog-confirmed
// instrument. Swap contracts are preferred; a spot-only match is returned
// with its ContractType set so the caller can treat it as degraded. When the
// catalog has never loaded, Resolve attempts one lazy refresh before
// failing with CatalogUnavailable.
func (c *Catalog) Resolve(ctx context.Context, rawSymbol string) (model.ResolvedInstrument, error) {
	base, quote, err := SplitSymbol(rawSymbol)
	if err != nil {
		return model.ResolvedInstrument{}, err
	}

	if !c.Loaded() {
		logger.WithField("symbol", rawSymbol).Warn("catalog empty, attempting lazy refresh")
		if err := c.Refresh(ctx); err != nil {
			return model.ResolvedInstrument{}, &model.ResolutionError{
				Kind:   model.ResolutionCatalogUnavailable,
				Symbol: rawSymbol,
				Reason: "instrument catalog has not loaded",
			}
		}
	}

	c.mu.RLock()
	candidates := c.byPair[base+"/"+quote]
	c.mu.RUnlock()

	if len(candidates) == 0 {
		return model.ResolvedInstrument{}, &model.ResolutionError{
			Kind:   model.ResolutionNotFound,
			Symbol: rawSymbol,
			Reason: "no market for " + base + "/" + quote,
		}
	}

	resolved := candidates[0]
	logger.WithFields(map[string]interface{}{
		"symbol":     rawSymbol,
		"market_id":  resolved.VenueID,
		"type":       resolved.ContractType,
		"candidates": len(candidates),
	}).Info("symbol resolved")
	return resolved, nil
}

// SplitSymbol normalizes a loose ticker and splits it into base and quote:
// uppercase, strip any suffix after the first "." (e.g. the ".P" annotation),
// then require a known quote asset suffix.
func SplitSymbol(rawSymbol string) (base, quote string, err error) {
	s := strings.ToUpper(strings.TrimSpace(rawSymbol))
	if i := strings.Index(s, "."); i >= 0 {
		s = s[:i]
	}

	for _, q := range knownQuotes {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return strings.TrimSuffix(s, q), q, nil
		}
	}

	return "", "", &model.ResolutionError{
		Kind:   model.ResolutionSymbolFormat,
		Symbol: rawSymbol,
		Reason: "symbol does not end in a known quote asset",
	}
}
