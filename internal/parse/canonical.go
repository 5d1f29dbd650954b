package parse

import (
	"fmt"
	"strconv"
	"strings"

	"idb-pricer/internal/models"
)

// canonicalKeywords is the spelling Canonical emits for each
// structure type; every entry re-parses to the same type.
var canonicalKeywords = map[models.StructureType]string{
	models.StructureCallSpread:   "cs",
	models.StructurePutSpread:    "ps",
	models.StructureStraddle:     "strad",
	models.StructureStrangle:     "strangle",
	models.StructureButterfly:    "fly",
	models.StructureRiskReversal: "rr",
	models.StructureCollar:       "collar",
}

// Canonical renders a parsed order back into shorthand. The output is
// normalized: one spelling per field, explicit type suffixes, and an
// explicit over modifier for every ratio spread and risk reversal, so
// that parsing the canonical form reproduces the order exactly.
func Canonical(order *models.ParsedOrder) string {
	s := &order.Structure
	parts := []string{order.Ticker}
	parts = append(parts, legTokens(s)...)

	if kw, ok := canonicalKeywords[s.Type]; ok {
		parts = append(parts, kw)
	}

	if s.IsRatio() && len(s.Legs) == 2 {
		parts = append(parts, fmt.Sprintf("%dX%d", s.Legs[0].Weight, s.Legs[1].Weight))
	}

	if s.TiePrice > 0 {
		parts = append(parts, "vs", formatNum(s.TiePrice))
	}
	if s.TieDelta > 0 {
		parts = append(parts, fmt.Sprintf("%dd", int(s.TieDelta)))
	}

	if s.Quantity > 0 {
		if s.Quantity%1000 == 0 {
			parts = append(parts, fmt.Sprintf("%dk", s.Quantity/1000))
		} else {
			parts = append(parts, fmt.Sprintf("%dx", s.Quantity))
		}
	}

	switch s.QuotedSide {
	case models.QuoteBid:
		parts = append(parts, formatNum(s.QuotedPrice), "bid")
	case models.QuoteOffer:
		parts = append(parts, formatNum(s.QuotedPrice), "offer")
	}

	if mod := modifierToken(s); mod != "" {
		parts = append(parts, mod)
	}

	return strings.Join(parts, " ")
}

// legTokens renders expiry and strike tokens. Legs sharing one expiry
// collapse to a single month token followed by slash-joined strikes;
// mixed expiries emit a month token per leg.
func legTokens(s *models.OptionStructure) []string {
	sameExpiry := true
	for _, leg := range s.Legs[1:] {
		if !leg.Expiry.Equal(s.Legs[0].Expiry) {
			sameExpiry = false
			break
		}
	}

	if !sameExpiry {
		var out []string
		for _, leg := range s.Legs {
			out = append(out, monthToken(leg), strikeToken(leg, true))
		}
		return out
	}

	month := monthToken(s.Legs[0])
	if s.Type == models.StructureStraddle {
		return []string{month, formatNum(s.Legs[0].Strike)}
	}
	if len(s.Legs) == 1 {
		return []string{month, strikeToken(s.Legs[0], true)}
	}

	strikes := make([]string, len(s.Legs))
	for i, leg := range s.Legs {
		strikes[i] = strikeToken(leg, true)
	}
	return []string{month, strings.Join(strikes, "/")}
}

// modifierToken emits the direction modifier that makes the canonical
// form unambiguous: the bought weight for ratio spreads, putover or
// callover for risk reversals and collars.
func modifierToken(s *models.OptionStructure) string {
	switch s.Type {
	case models.StructureCallSpread, models.StructurePutSpread:
		if !s.IsRatio() {
			return ""
		}
		for _, leg := range s.Legs {
			if leg.Side == models.SideBuy {
				return fmt.Sprintf("%dX over", leg.Weight)
			}
		}
	case models.StructureRiskReversal, models.StructureCollar:
		for _, leg := range s.Legs {
			if leg.Side == models.SideBuy {
				if leg.Type == models.Put {
					return "putover"
				}
				return "callover"
			}
		}
	}
	return ""
}

func monthToken(leg models.OptionLeg) string {
	return fmt.Sprintf("%s%02d", leg.Expiry.Month().String()[:3], leg.Expiry.Year()%100)
}

func strikeToken(leg models.OptionLeg, withType bool) string {
	s := formatNum(leg.Strike)
	if !withType {
		return s
	}
	if leg.Type == models.Call {
		return s + "C"
	}
	return s + "P"
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
