package models

// Greeks represents Black-Scholes sensitivities for one leg.
// Theta is value decay per calendar day; Vega and Rho are per
// one-percentage-point moves.
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}

// LegMarketData is the screen quote for a single option leg. It is
// produced by the market-data source and read-only to the core. Theo
// carries a Black-Scholes value when only volatility was available
// and no screen quote exists.
type LegMarketData struct {
	Bid     float64
	Ask     float64
	BidSize int
	AskSize int
	Theo    float64
	Greeks  Greeks
}

// HasScreen reports whether the leg has a two-sided screen quote.
func (d LegMarketData) HasScreen() bool {
	return d.Bid > 0 && d.Ask > 0
}

// Mid returns the screen mid, falling back to the theoretical value
// or the one-sided quote when the screen is incomplete.
func (d LegMarketData) Mid() float64 {
	if d.HasScreen() {
		return (d.Bid + d.Ask) / 2
	}
	if d.Theo > 0 {
		return d.Theo
	}
	if d.Bid > 0 {
		return d.Bid
	}
	return d.Ask
}

// HasMid reports whether the leg contributes a usable mid.
func (d LegMarketData) HasMid() bool {
	return d.HasScreen() || d.Theo > 0 || d.Bid > 0 || d.Ask > 0
}

// StructureMarketData is the implied structure-level market derived
// from per-leg quotes. It is recomputed whenever any leg changes and
// is never a persisted source of truth.
//
// ImpliedBid is the worst-fill price: bought legs charged at the ask,
// sold legs credited at the bid. ImpliedOffer is the best-fill
// inverse. Incomplete is set when any leg lacks a screen quote, in
// which case bid/offer and sizes are not meaningful but the mid is
// still reported over the legs that have one.
type StructureMarketData struct {
	ImpliedBid   float64
	ImpliedOffer float64
	ImpliedMid   float64
	BidSize      int
	OfferSize    int
	Incomplete   bool
	Spot         float64
	Legs         []LegMarketData
}
