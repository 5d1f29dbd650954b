// Package pricer orchestrates parsing, market data and implied market
// aggregation into one operation.
package pricer

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	apperrors "idb-pricer/internal/errors"
	"idb-pricer/internal/logging"
	"idb-pricer/internal/marketdata"
	"idb-pricer/internal/models"
	"idb-pricer/internal/parse"
	"idb-pricer/internal/pricing"
)

// Engine prices parsed orders against a market-data source. Rate and
// Yield feed the theoretical fallback for legs the source cannot quote.
type Engine struct {
	source marketdata.Source
	parser *parse.Parser
	rate   float64
	yield  float64
	logger zerolog.Logger
}

// NewEngine creates a pricing engine.
func NewEngine(source marketdata.Source, parser *parse.Parser, rate, yield float64, logger zerolog.Logger) *Engine {
	if parser == nil {
		parser = parse.New()
	}
	return &Engine{
		source: source,
		parser: parser,
		rate:   rate,
		yield:  yield,
		logger: logger,
	}
}

// Parse parses one shorthand message without pricing it.
func (e *Engine) Parse(text string, ref time.Time) (*models.ParsedOrder, error) {
	return e.parser.Parse(text, ref)
}

// ParseAndPrice parses one shorthand message and prices the result.
// Parse failures abort; quote failures degrade (see PriceOrder).
func (e *Engine) ParseAndPrice(ctx context.Context, text string, ref time.Time) (*models.ParsedOrder, *models.StructureMarketData, error) {
	order, err := e.parser.Parse(text, ref)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.WithTicker(e.logger, order.Ticker)
	logging.LogParse(logger, string(order.Structure.Type), order.RawText, len(order.Structure.Legs))

	data, err := e.PriceOrder(ctx, order, ref)
	if err != nil {
		return order, nil, err
	}
	return order, data, nil
}

// PriceOrder fetches per-leg quotes and aggregates the implied
// structure market. A leg the source cannot quote does not fail the
// order: if the leg carries a known vol it is priced theoretically and
// contributes to the mid at zero size, otherwise the structure is
// simply marked incomplete. Any other source failure aborts.
func (e *Engine) PriceOrder(ctx context.Context, order *models.ParsedOrder, ref time.Time) (*models.StructureMarketData, error) {
	start := time.Now()
	logger := logging.WithTicker(e.logger, order.Ticker)
	spot, err := e.source.Spot(ctx, order.Ticker)
	if err != nil && !apperrors.Is(err, apperrors.ErrDataUnavailable) {
		return nil, apperrors.Wrapf(err, "fetching spot for %s", order.Ticker)
	}

	legs := order.Structure.Legs
	data := make([]models.LegMarketData, len(legs))
	for i, leg := range legs {
		d, err := e.source.Fetch(ctx, leg, ref)
		if err != nil {
			if !apperrors.Is(err, apperrors.ErrDataUnavailable) {
				return nil, apperrors.Wrapf(err, "fetching quote for %s %g %s", leg.Underlying, leg.Strike, leg.Type)
			}
			data[i] = e.theoFallback(leg, spot, ref)
			continue
		}
		data[i] = d
		logging.LogQuote(logger, leg.Strike, string(leg.Type), d.Bid, d.Ask)
	}
	logging.LogFetch(logger, time.Since(start), nil)

	agg := pricing.Aggregate(legs, data, spot)
	logging.LogPrice(logger, agg.ImpliedBid, agg.ImpliedOffer, agg.ImpliedMid, agg.Incomplete)
	return &agg, nil
}

// NetGreeks returns the direction-signed structure Greeks for a priced
// order.
func (e *Engine) NetGreeks(order *models.ParsedOrder, data *models.StructureMarketData) models.Greeks {
	return pricing.NetGreeks(order.Structure.Legs, data.Legs)
}

// theoFallback prices an unquoted leg from its known vol. Without a
// vol or a spot the leg stays empty and the structure degrades to
// incomplete.
func (e *Engine) theoFallback(leg models.OptionLeg, spot float64, ref time.Time) models.LegMarketData {
	if leg.Vol <= 0 || spot <= 0 {
		return models.LegMarketData{}
	}

	t := leg.Expiry.Sub(ref).Hours() / 24 / 365
	res, err := pricing.Price(pricing.Input{
		Spot:         spot,
		Strike:       leg.Strike,
		TimeToExpiry: t,
		Vol:          leg.Vol,
		Rate:         e.rate,
		Yield:        e.yield,
		Type:         leg.Type,
	})
	if err != nil {
		return models.LegMarketData{}
	}
	return models.LegMarketData{Theo: res.Price, Greeks: res.Greeks}
}
