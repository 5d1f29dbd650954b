package parse

import (
	"testing"
	"time"

	apperrors "idb-pricer/internal/errors"
	"idb-pricer/internal/models"
)

var refDate = time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

type wantLeg struct {
	expiry time.Time
	strike float64
	typ    models.OptionType
	side   models.Side
	weight int
}

func checkLegs(t *testing.T, got []models.OptionLeg, want []wantLeg) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d legs, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		g := got[i]
		if !g.Expiry.Equal(w.expiry) {
			t.Errorf("leg %d expiry = %v, want %v", i, g.Expiry, w.expiry)
		}
		if g.Strike != w.strike {
			t.Errorf("leg %d strike = %g, want %g", i, g.Strike, w.strike)
		}
		if g.Type != w.typ {
			t.Errorf("leg %d type = %s, want %s", i, g.Type, w.typ)
		}
		if g.Side != w.side {
			t.Errorf("leg %d side = %s, want %s", i, g.Side, w.side)
		}
		if g.Weight != w.weight {
			t.Errorf("leg %d weight = %d, want %d", i, g.Weight, w.weight)
		}
	}
}

func TestParseSingleLeg(t *testing.T) {
	order, err := Parse("AAPL jun26 300 calls vs 251.30 30d 500x 5.90 bid", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if order.Ticker != "AAPL" {
		t.Errorf("ticker = %s, want AAPL", order.Ticker)
	}
	s := order.Structure
	if s.Type != models.StructureSingle {
		t.Errorf("type = %s, want SINGLE", s.Type)
	}
	checkLegs(t, s.Legs, []wantLeg{
		{date(2026, time.June, 19), 300, models.Call, models.SideBuy, 1},
	})
	if s.TiePrice != 251.30 {
		t.Errorf("tie = %g, want 251.30", s.TiePrice)
	}
	if s.TieDelta != 30 {
		t.Errorf("delta = %g, want 30", s.TieDelta)
	}
	if s.Quantity != 500 {
		t.Errorf("quantity = %d, want 500", s.Quantity)
	}
	if s.QuotedPrice != 5.90 || s.QuotedSide != models.QuoteBid {
		t.Errorf("quote = %g %s, want 5.90 BID", s.QuotedPrice, s.QuotedSide)
	}
}

func TestParseStrikeTypeSuffix(t *testing.T) {
	order, err := Parse("UBER Dec 45P tt 69.90", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	checkLegs(t, order.Structure.Legs, []wantLeg{
		{date(2026, time.December, 18), 45, models.Put, models.SideBuy, 1},
	})
	if order.Structure.TiePrice != 69.90 {
		t.Errorf("tie = %g, want 69.90", order.Structure.TiePrice)
	}
}

func TestParseTrailingMonth(t *testing.T) {
	// The expiry may trail the strike token.
	order, err := Parse("QCOM 85P Jan27 like to buy 500x", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	checkLegs(t, order.Structure.Legs, []wantLeg{
		{date(2027, time.January, 15), 85, models.Put, models.SideBuy, 1},
	})
	if order.Structure.Quantity != 500 {
		t.Errorf("quantity = %d, want 500", order.Structure.Quantity)
	}
}

func TestParseAtPrice(t *testing.T) {
	order, err := Parse("VST Apr 130p 500 @ 2.55", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	s := order.Structure
	checkLegs(t, s.Legs, []wantLeg{
		{date(2026, time.April, 17), 130, models.Put, models.SideBuy, 1},
	})
	if s.QuotedPrice != 2.55 || s.QuotedSide != models.QuoteOffer {
		t.Errorf("quote = %g %s, want 2.55 OFFER", s.QuotedPrice, s.QuotedSide)
	}
}

func TestParseRiskReversalMixedExpiries(t *testing.T) {
	order, err := Parse("IWM feb 257 apr 280 Risky", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	s := order.Structure
	if s.Type != models.StructureRiskReversal {
		t.Fatalf("type = %s, want RISK_REVERSAL", s.Type)
	}
	// Lower strike is the put; default is sell put, buy call.
	checkLegs(t, s.Legs, []wantLeg{
		{date(2026, time.February, 20), 257, models.Put, models.SideSell, 1},
		{date(2026, time.April, 17), 280, models.Call, models.SideBuy, 1},
	})
}

func TestParseRatioPutSpreadWithOver(t *testing.T) {
	// The over modifier names the bought weight: "1X over" buys the 1x
	// leg and flips the extra ratio units to the sell side.
	order, err := Parse("AAPL jun 240/220 PS 1X2 500x 1X over", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	s := order.Structure
	if s.Type != models.StructurePutSpread {
		t.Fatalf("type = %s, want PUT_SPREAD", s.Type)
	}
	jun := date(2026, time.June, 19)
	checkLegs(t, s.Legs, []wantLeg{
		{jun, 240, models.Put, models.SideBuy, 1},
		{jun, 220, models.Put, models.SideSell, 2},
	})
	if s.Quantity != 500 {
		t.Errorf("quantity = %d, want 500", s.Quantity)
	}
}

func TestParseRatioSpreadAllFields(t *testing.T) {
	// Every field form at once: glued tie, ratio, over modifier,
	// at-symbol price.
	order, err := Parse("AAPL Jun26 240/220 PS 1X2 vs250 15d 500x @ 3.50 1X over", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	s := order.Structure
	if s.Type != models.StructurePutSpread {
		t.Fatalf("type = %s, want PUT_SPREAD", s.Type)
	}
	jun := date(2026, time.June, 19)
	checkLegs(t, s.Legs, []wantLeg{
		{jun, 240, models.Put, models.SideBuy, 1},
		{jun, 220, models.Put, models.SideSell, 2},
	})
	if s.TiePrice != 250 {
		t.Errorf("tie = %g, want 250", s.TiePrice)
	}
	if s.TieDelta != 15 {
		t.Errorf("delta = %g, want 15", s.TieDelta)
	}
	if s.Quantity != 500 {
		t.Errorf("quantity = %d, want 500", s.Quantity)
	}
	if s.QuotedPrice != 3.50 || s.QuotedSide != models.QuoteOffer {
		t.Errorf("quote = %g %s, want 3.50 OFFER", s.QuotedPrice, s.QuotedSide)
	}
	if len(order.Unmatched) != 0 {
		t.Errorf("unmatched tokens: %v", order.Unmatched)
	}
}

func TestParseSingleGluedTieSuffixQuote(t *testing.T) {
	// Glued "tt141.17" tie and the single-letter "2.4b" quote form.
	order, err := Parse("QCOM 85P Jan27 tt141.17 7d 2.4b 600x", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if order.Ticker != "QCOM" {
		t.Errorf("ticker = %s, want QCOM", order.Ticker)
	}
	s := order.Structure
	if s.Type != models.StructureSingle {
		t.Fatalf("type = %s, want SINGLE", s.Type)
	}
	checkLegs(t, s.Legs, []wantLeg{
		{date(2027, time.January, 15), 85, models.Put, models.SideBuy, 1},
	})
	if s.TiePrice != 141.17 {
		t.Errorf("tie = %g, want 141.17", s.TiePrice)
	}
	if s.TieDelta != 7 {
		t.Errorf("delta = %g, want 7", s.TieDelta)
	}
	if s.QuotedPrice != 2.4 || s.QuotedSide != models.QuoteBid {
		t.Errorf("quote = %g %s, want 2.4 BID", s.QuotedPrice, s.QuotedSide)
	}
	if s.Quantity != 600 {
		t.Errorf("quantity = %d, want 600", s.Quantity)
	}
	if len(order.Unmatched) != 0 {
		t.Errorf("unmatched tokens: %v", order.Unmatched)
	}
}

func TestParseQuoteForms(t *testing.T) {
	testCases := []struct {
		name      string
		text      string
		wantPrice float64
		wantSide  models.QuoteSide
	}{
		{"bid word", "AAPL jun 300C 5.90 bid", 5.90, models.QuoteBid},
		{"b suffix", "AAPL jun 300C 5.9b", 5.9, models.QuoteBid},
		{"offer word", "AAPL jun 300C 5.90 offer", 5.90, models.QuoteOffer},
		{"ask word", "AAPL jun 300C 5.90 ask", 5.90, models.QuoteOffer},
		{"o suffix", "AAPL jun 300C 3.5o", 3.5, models.QuoteOffer},
		{"at symbol", "AAPL jun 300C @ 2.55", 2.55, models.QuoteOffer},
		{"at word", "AAPL jun 300C at 2.55", 2.55, models.QuoteOffer},
		{"no quote is two-sided", "AAPL jun 300C", 0, models.QuoteTwoSided},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			order, err := Parse(tc.text, refDate)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tc.text, err)
			}
			s := order.Structure
			if s.QuotedPrice != tc.wantPrice || s.QuotedSide != tc.wantSide {
				t.Errorf("Parse(%q) quote = %g %s, want %g %s",
					tc.text, s.QuotedPrice, s.QuotedSide, tc.wantPrice, tc.wantSide)
			}
		})
	}
}

func TestParseRatioPutSpreadDefaultDirections(t *testing.T) {
	// Without a modifier a put spread sells the high strike.
	order, err := Parse("AAPL jun 240/220 PS 1X2", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	jun := date(2026, time.June, 19)
	checkLegs(t, order.Structure.Legs, []wantLeg{
		{jun, 240, models.Put, models.SideSell, 1},
		{jun, 220, models.Put, models.SideBuy, 2},
	})
}

func TestParseSpaceSeparatedSpread(t *testing.T) {
	order, err := Parse("goog jun 100 90 ps vs 150 2k", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	s := order.Structure
	if order.Ticker != "GOOG" {
		t.Errorf("ticker = %s, want GOOG", order.Ticker)
	}
	jun := date(2026, time.June, 19)
	checkLegs(t, s.Legs, []wantLeg{
		{jun, 100, models.Put, models.SideSell, 1},
		{jun, 90, models.Put, models.SideBuy, 1},
	})
	if s.Quantity != 2000 {
		t.Errorf("quantity = %d, want 2000", s.Quantity)
	}
	if s.TiePrice != 150 {
		t.Errorf("tie = %g, want 150", s.TiePrice)
	}
}

func TestParseStraddle(t *testing.T) {
	order, err := Parse("TSLA mar 250 strad vs 245 10d", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	s := order.Structure
	if s.Type != models.StructureStraddle {
		t.Fatalf("type = %s, want STRADDLE", s.Type)
	}
	mar := date(2026, time.March, 20)
	checkLegs(t, s.Legs, []wantLeg{
		{mar, 250, models.Call, models.SideBuy, 1},
		{mar, 250, models.Put, models.SideBuy, 1},
	})
}

func TestParseStrangleInferred(t *testing.T) {
	// Two typed legs, differing strikes, no keyword.
	order, err := Parse("SPY jun 500P 540C", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	s := order.Structure
	if s.Type != models.StructureStrangle {
		t.Fatalf("type = %s, want STRANGLE", s.Type)
	}
	jun := date(2026, time.June, 19)
	checkLegs(t, s.Legs, []wantLeg{
		{jun, 500, models.Put, models.SideBuy, 1},
		{jun, 540, models.Call, models.SideBuy, 1},
	})
}

func TestParseButterfly(t *testing.T) {
	order, err := Parse("NVDA sep 800/850/900 fly", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	s := order.Structure
	if s.Type != models.StructureButterfly {
		t.Fatalf("type = %s, want BUTTERFLY", s.Type)
	}
	sep := date(2026, time.September, 18)
	checkLegs(t, s.Legs, []wantLeg{
		{sep, 800, models.Call, models.SideBuy, 1},
		{sep, 850, models.Call, models.SideSell, 2},
		{sep, 900, models.Call, models.SideBuy, 1},
	})
}

func TestParseCollarPutover(t *testing.T) {
	order, err := Parse("AAPL dec 230P/270C collar putover", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	s := order.Structure
	if s.Type != models.StructureCollar {
		t.Fatalf("type = %s, want COLLAR", s.Type)
	}
	dec := date(2026, time.December, 18)
	checkLegs(t, s.Legs, []wantLeg{
		{dec, 230, models.Put, models.SideBuy, 1},
		{dec, 270, models.Call, models.SideSell, 1},
	})
}

func TestParseRiskReversalOverOption(t *testing.T) {
	p := NewParser(Options{RiskReversalOver: models.Put})
	order, err := p.Parse("IWM feb 257/280 rr", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	feb := date(2026, time.February, 20)
	checkLegs(t, order.Structure.Legs, []wantLeg{
		{feb, 257, models.Put, models.SideBuy, 1},
		{feb, 280, models.Call, models.SideSell, 1},
	})
}

func TestParseLiveDiscardsTie(t *testing.T) {
	order, err := Parse("AAPL jun 300C 500x LIVE vs 250 30d", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	s := order.Structure
	if s.TiePrice != 0 || s.TieDelta != 0 {
		t.Errorf("live order kept tie %g / delta %g, want both zero", s.TiePrice, s.TieDelta)
	}
	if s.Quantity != 500 {
		t.Errorf("quantity = %d, want 500", s.Quantity)
	}
}

func TestParseUnmatchedTokens(t *testing.T) {
	order, err := Parse("QCOM 85P Jan27 like to buy 500x", refDate)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	found := false
	for _, tok := range order.Unmatched {
		if tok == "buy" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected 'buy' in unmatched tokens, got %v", order.Unmatched)
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want error
	}{
		{"empty input", "", apperrors.ErrMissingField},
		{"no strike", "AAPL jun vs 250", apperrors.ErrMissingField},
		{"no option type", "AAPL jun 300", apperrors.ErrMissingField},
		{"no expiry", "AAPL 300C vs 250", apperrors.ErrMissingField},
		{"put spread with call leg", "AAPL jun 240C/220 ps", apperrors.ErrAmbiguousStructure},
		{"spread with three strikes", "AAPL jun 100/110/120 ps", apperrors.ErrAmbiguousStructure},
		{"strangle with equal strikes", "AAPL jun 250/250 strangle", apperrors.ErrAmbiguousStructure},
		{"straddle with two strikes", "AAPL jun 240/250 strad", apperrors.ErrAmbiguousStructure},
		{"risk reversal same types", "AAPL jun 240P/220P rr", apperrors.ErrAmbiguousStructure},
		{"butterfly with two strikes", "AAPL jun 240/220 fly", apperrors.ErrMissingField},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.text, refDate)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tc.text)
			}
			if !apperrors.Is(err, tc.want) {
				t.Errorf("Parse(%q) error = %v, want %v", tc.text, err, tc.want)
			}
		})
	}
}
