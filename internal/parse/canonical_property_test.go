package parse

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"idb-pricer/internal/models"
)

// Canonical is a fixed point of the parser: parsing the canonical
// rendering of any parseable order reproduces the order exactly.
func TestCanonicalRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	tickers := gen.OneConstOf("AAPL", "IWM", "SPY", "TSLA", "NVDA")
	months := gen.OneConstOf("jan", "feb", "mar", "jun", "sep", "dec")
	years := gen.OneConstOf("26", "27")

	properties.Property("parse(Canonical(parse(s))) == parse(s)", prop.ForAll(
		func(ticker, month, year string, shape, k1, spread, qty, tie int) bool {
			text := buildShorthand(ticker, month, year, shape, k1, spread, qty, tie)

			first, err := Parse(text, refDate)
			if err != nil {
				t.Logf("Parse(%q) failed: %v", text, err)
				return false
			}

			canonical := Canonical(first)
			second, err := Parse(canonical, refDate)
			if err != nil {
				t.Logf("Parse(Canonical) failed for %q -> %q: %v", text, canonical, err)
				return false
			}

			if second.Ticker != first.Ticker {
				t.Logf("ticker drift: %q -> %q", first.Ticker, second.Ticker)
				return false
			}
			if !reflect.DeepEqual(second.Structure, first.Structure) {
				t.Logf("structure drift for %q\ncanonical: %q\nfirst:  %+v\nsecond: %+v",
					text, canonical, first.Structure, second.Structure)
				return false
			}
			return true
		},
		tickers, months, years,
		gen.IntRange(0, 6),
		gen.IntRange(50, 300),
		gen.IntRange(5, 100),
		gen.OneConstOf(0, 500, 2000),
		gen.OneConstOf(0, 150, 250),
	))

	properties.TestingRun(t)
}

// buildShorthand assembles a parseable order string from generated
// components. k1 is the low strike; spread is the distance to the
// second strike where the shape has one.
func buildShorthand(ticker, month, year string, shape, k1, spread, qty, tie int) string {
	k2 := k1 + spread
	expiry := month + year

	var body string
	switch shape {
	case 0:
		body = fmt.Sprintf("%dC", k1)
	case 1:
		body = fmt.Sprintf("%dP", k1)
	case 2:
		body = fmt.Sprintf("%d/%d cs", k1, k2)
	case 3:
		body = fmt.Sprintf("%d/%d ps", k2, k1)
	case 4:
		body = fmt.Sprintf("%d strad", k1)
	case 5:
		body = fmt.Sprintf("%dP/%dC strangle", k1, k2)
	default:
		body = fmt.Sprintf("%d/%d rr", k1, k2)
	}

	text := fmt.Sprintf("%s %s %s", ticker, expiry, body)
	if tie > 0 {
		text = fmt.Sprintf("%s vs %d", text, tie)
	}
	if qty > 0 {
		text = fmt.Sprintf("%s %dx", text, qty)
	}
	return text
}

// The canonical form of a ratio spread always carries the over
// modifier, so direction survives the round trip.
func TestCanonicalRatioKeepsDirections(t *testing.T) {
	order, err := Parse("AAPL jun26 240/220 ps 1X2 1X over", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	canonical := Canonical(order)
	again, err := Parse(canonical, refDate)
	if err != nil {
		t.Fatalf("Parse(Canonical) error for %q: %v", canonical, err)
	}

	if !reflect.DeepEqual(again.Structure, order.Structure) {
		t.Errorf("ratio round trip drift:\ncanonical: %q\nfirst:  %+v\nsecond: %+v",
			canonical, order.Structure, again.Structure)
	}
	for _, leg := range again.Structure.Legs {
		if leg.Weight == 1 && leg.Side != models.SideBuy {
			t.Errorf("1x leg should be bought after round trip, got %s", leg.Side)
		}
		if leg.Weight == 2 && leg.Side != models.SideSell {
			t.Errorf("2x leg should be sold after round trip, got %s", leg.Side)
		}
	}
}

func TestCanonicalMixedExpiries(t *testing.T) {
	order, err := Parse("IWM feb 257 apr 280 rr", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	canonical := Canonical(order)
	again, err := Parse(canonical, refDate)
	if err != nil {
		t.Fatalf("Parse(Canonical) error for %q: %v", canonical, err)
	}
	if !reflect.DeepEqual(again.Structure, order.Structure) {
		t.Errorf("mixed expiry round trip drift:\ncanonical: %q\nfirst:  %+v\nsecond: %+v",
			canonical, order.Structure, again.Structure)
	}
}
