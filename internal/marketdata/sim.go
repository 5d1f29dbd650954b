package marketdata

import (
	"context"
	"math"
	"sync"
	"time"

	apperrors "idb-pricer/internal/errors"
	"idb-pricer/internal/models"
	"idb-pricer/internal/pricing"
)

// Built-in universe for the simulator. Spots and base vols are
// per-underlying; the skew surface is applied per strike.
var (
	simSpots = map[string]float64{
		"AAPL": 250.30, "MSFT": 415.20, "GOOGL": 175.80, "AMZN": 195.60,
		"TSLA": 245.30, "SPY": 520.40, "QQQ": 445.10, "META": 560.75,
		"NVDA": 880.50, "IWM": 262.60, "UBER": 69.90, "QCOM": 141.20,
		"VST": 171.10, "SPX": 5204.00, "NFLX": 950.00,
	}
	simVols = map[string]float64{
		"AAPL": 0.22, "MSFT": 0.20, "GOOGL": 0.25, "AMZN": 0.28,
		"TSLA": 0.45, "SPY": 0.14, "QQQ": 0.18, "META": 0.32,
		"NVDA": 0.42, "IWM": 0.18, "UBER": 0.35, "QCOM": 0.30,
		"VST": 0.38, "SPX": 0.14, "NFLX": 0.34,
	}
)

// SimSource generates deterministic screen quotes: theoretical value
// from Black-Scholes under a skewed vol surface, plus a moneyness-
// dependent bid-ask spread and arithmetic screen sizes. Identical
// inputs always produce identical quotes, which keeps tests and
// recorded sessions reproducible.
type SimSource struct {
	mu    sync.RWMutex
	spots map[string]float64
	vols  map[string]float64
	rate  float64
	yield float64
}

// NewSimSource creates a simulator over the built-in universe.
func NewSimSource(rate, yield float64) *SimSource {
	spots := make(map[string]float64, len(simSpots))
	for k, v := range simSpots {
		spots[k] = v
	}
	vols := make(map[string]float64, len(simVols))
	for k, v := range simVols {
		vols[k] = v
	}
	return &SimSource{spots: spots, vols: vols, rate: rate, yield: yield}
}

// SetSpot overrides or adds an underlying. A ticker without a base vol
// gets 0.25.
func (s *SimSource) SetSpot(underlying string, spot float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spots[underlying] = spot
	if _, ok := s.vols[underlying]; !ok {
		s.vols[underlying] = 0.25
	}
}

// SetVol overrides the base vol for an underlying.
func (s *SimSource) SetVol(underlying string, vol float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vols[underlying] = vol
}

func (s *SimSource) Spot(ctx context.Context, underlying string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	spot, ok := s.spots[underlying]
	if !ok {
		return 0, apperrors.NewDataUnavailableError(underlying, 0, "", nil)
	}
	return spot, nil
}

// Vol returns the skewed implied vol for a strike. Downside strikes
// trade over upside: 5 vol points per unit of moneyness below spot.
func (s *SimSource) Vol(underlying string, strike float64) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	spot, ok := s.spots[underlying]
	base, okVol := s.vols[underlying]
	if !ok || !okVol {
		return 0, apperrors.NewDataUnavailableError(underlying, strike, "", nil)
	}
	moneyness := strike / spot
	if moneyness < 1 {
		base += 0.05 * (1 - moneyness)
	}
	return base, nil
}

func (s *SimSource) Fetch(ctx context.Context, leg models.OptionLeg, ref time.Time) (models.LegMarketData, error) {
	spot, err := s.Spot(ctx, leg.Underlying)
	if err != nil {
		return models.LegMarketData{}, apperrors.NewDataUnavailableError(leg.Underlying, leg.Strike, string(leg.Type), err)
	}
	vol, err := s.Vol(leg.Underlying, leg.Strike)
	if err != nil {
		return models.LegMarketData{}, apperrors.NewDataUnavailableError(leg.Underlying, leg.Strike, string(leg.Type), err)
	}

	t := leg.Expiry.Sub(ref).Hours() / 24 / 365
	if t < 0.001 {
		t = 0.001
	}

	res, err := pricing.Price(pricing.Input{
		Spot:         spot,
		Strike:       leg.Strike,
		TimeToExpiry: t,
		Vol:          vol,
		Rate:         s.rate,
		Yield:        s.yield,
		Type:         leg.Type,
	})
	if err != nil {
		return models.LegMarketData{}, apperrors.NewDataUnavailableError(leg.Underlying, leg.Strike, string(leg.Type), err)
	}

	// Spread widens with distance from spot: 2% at the money, up to 5%.
	moneyness := math.Abs(spot-leg.Strike) / spot
	half := res.Price * (0.02 + 0.03*moneyness)
	if half < 0.05 {
		half = 0.05
	}

	bid := res.Price - half
	if bid < 0.01 {
		bid = 0.01
	}

	return models.LegMarketData{
		Bid:     round2(bid),
		Ask:     round2(res.Price + half),
		BidSize: 100 + int(leg.Strike*100+spot*10)%901,
		AskSize: 100 + int(leg.Strike*77+spot*10)%701,
		Theo:    res.Price,
		Greeks:  res.Greeks,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
