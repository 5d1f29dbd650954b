package marketdata

import (
	"context"
	"testing"
	"time"

	apperrors "idb-pricer/internal/errors"
	"idb-pricer/internal/models"
)

var simRef = time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

func simLeg(strike float64, typ models.OptionType) models.OptionLeg {
	return models.OptionLeg{
		Underlying: "AAPL",
		Expiry:     time.Date(2026, time.June, 19, 0, 0, 0, 0, time.UTC),
		Strike:     strike,
		Type:       typ,
		Side:       models.SideBuy,
		Weight:     1,
	}
}

func TestSimSourceSpot(t *testing.T) {
	src := NewSimSource(0.04, 0.0)
	ctx := context.Background()

	spot, err := src.Spot(ctx, "AAPL")
	if err != nil {
		t.Fatalf("Spot error: %v", err)
	}
	if spot != 250.30 {
		t.Errorf("spot = %g, want 250.30", spot)
	}

	_, err = src.Spot(ctx, "ZZZZ")
	if !apperrors.Is(err, apperrors.ErrDataUnavailable) {
		t.Errorf("unknown ticker error = %v, want ErrDataUnavailable", err)
	}
}

func TestSimSourceFetchDeterministic(t *testing.T) {
	src := NewSimSource(0.04, 0.0)
	ctx := context.Background()
	leg := simLeg(250, models.Call)

	first, err := src.Fetch(ctx, leg, simRef)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	second, err := src.Fetch(ctx, leg, simRef)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if first != second {
		t.Errorf("repeated fetch differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestSimSourceQuoteShape(t *testing.T) {
	src := NewSimSource(0.04, 0.0)
	ctx := context.Background()

	data, err := src.Fetch(ctx, simLeg(250, models.Call), simRef)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if !data.HasScreen() {
		t.Fatalf("simulator quote has no screen: %+v", data)
	}
	if data.Bid >= data.Ask {
		t.Errorf("bid %g >= ask %g", data.Bid, data.Ask)
	}
	if data.Theo < data.Bid || data.Theo > data.Ask {
		t.Errorf("theo %g outside [%g, %g]", data.Theo, data.Bid, data.Ask)
	}
	if data.BidSize < 100 || data.AskSize < 100 {
		t.Errorf("sizes below floor: bid %d ask %d", data.BidSize, data.AskSize)
	}
	if data.Greeks.Delta <= 0 || data.Greeks.Delta >= 1 {
		t.Errorf("call delta = %g, want in (0, 1)", data.Greeks.Delta)
	}
}

func TestSimSourceSkew(t *testing.T) {
	src := NewSimSource(0.04, 0.0)

	low, err := src.Vol("AAPL", 200)
	if err != nil {
		t.Fatalf("Vol error: %v", err)
	}
	atm, err := src.Vol("AAPL", 250.30)
	if err != nil {
		t.Fatalf("Vol error: %v", err)
	}
	high, err := src.Vol("AAPL", 300)
	if err != nil {
		t.Fatalf("Vol error: %v", err)
	}

	if low <= atm {
		t.Errorf("downside vol %g not above base %g", low, atm)
	}
	if high != atm {
		t.Errorf("upside vol %g differs from base %g", high, atm)
	}
}

func TestSimSourceOverrides(t *testing.T) {
	src := NewSimSource(0.04, 0.0)
	ctx := context.Background()

	src.SetSpot("TEST", 50)
	spot, err := src.Spot(ctx, "TEST")
	if err != nil {
		t.Fatalf("Spot error after SetSpot: %v", err)
	}
	if spot != 50 {
		t.Errorf("spot = %g, want 50", spot)
	}

	vol, err := src.Vol("TEST", 50)
	if err != nil {
		t.Fatalf("Vol error after SetSpot: %v", err)
	}
	if vol != 0.25 {
		t.Errorf("default vol = %g, want 0.25", vol)
	}

	src.SetVol("TEST", 0.40)
	vol, err = src.Vol("TEST", 50)
	if err != nil {
		t.Fatalf("Vol error after SetVol: %v", err)
	}
	if vol != 0.40 {
		t.Errorf("vol = %g, want 0.40", vol)
	}
}

func TestSimSourceUnknownUnderlyingFetch(t *testing.T) {
	src := NewSimSource(0.04, 0.0)
	leg := simLeg(250, models.Put)
	leg.Underlying = "ZZZZ"

	_, err := src.Fetch(context.Background(), leg, simRef)
	if !apperrors.Is(err, apperrors.ErrDataUnavailable) {
		t.Errorf("Fetch error = %v, want ErrDataUnavailable", err)
	}
}
