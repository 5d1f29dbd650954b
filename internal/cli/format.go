// Package cli provides the command-line interface for the pricer.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"idb-pricer/internal/models"
)

// FormatPrice formats an option price with appropriate decimal places.
func FormatPrice(price float64) string {
	if price >= 10 {
		return fmt.Sprintf("%.2f", price)
	}
	return fmt.Sprintf("%.4f", price)
}

// FormatStrike trims trailing zeros from a strike.
func FormatStrike(strike float64) string {
	return strconv.FormatFloat(strike, 'f', -1, 64)
}

// FormatExpiry formats an expiration date.
func FormatExpiry(t time.Time) string {
	return t.Format("02-Jan-2006")
}

// FormatExpiryShort formats an expiration in shorthand month form.
func FormatExpiryShort(t time.Time) string {
	return fmt.Sprintf("%s%02d", t.Month().String()[:3], t.Year()%100)
}

// FormatLeg renders one leg in display form: "SELL 2x AAPL Jun26 220P".
func FormatLeg(leg models.OptionLeg) string {
	typ := "P"
	if leg.Type == models.Call {
		typ = "C"
	}
	return fmt.Sprintf("%s %dx %s %s %s%s",
		leg.Side, leg.Weight, leg.Underlying,
		FormatExpiryShort(leg.Expiry), FormatStrike(leg.Strike), typ)
}

var structureNames = map[models.StructureType]string{
	models.StructureSingle:       "Single",
	models.StructureCallSpread:   "Call Spread",
	models.StructurePutSpread:    "Put Spread",
	models.StructureStraddle:     "Straddle",
	models.StructureStrangle:     "Strangle",
	models.StructureButterfly:    "Butterfly",
	models.StructureRiskReversal: "Risk Reversal",
	models.StructureCollar:       "Collar",
}

// FormatStructureType renders a structure type for display.
func FormatStructureType(st models.StructureType) string {
	if name, ok := structureNames[st]; ok {
		return name
	}
	return string(st)
}

// FormatGreeks formats option Greeks.
func FormatGreeks(g models.Greeks) string {
	return fmt.Sprintf("Δ: %.4f  Γ: %.4f  Θ: %.4f  ν: %.4f  ρ: %.4f",
		g.Delta, g.Gamma, g.Theta, g.Vega, g.Rho)
}

// FormatSize formats a screen size.
func FormatSize(size int) string {
	if size >= 1000 {
		return fmt.Sprintf("%.1fk", float64(size)/1000)
	}
	return fmt.Sprintf("%d", size)
}

// FormatQuantity formats an order quantity; zero means unspecified.
func FormatQuantity(qty int) string {
	if qty == 0 {
		return "-"
	}
	if qty >= 1000 && qty%1000 == 0 {
		return fmt.Sprintf("%dk", qty/1000)
	}
	return fmt.Sprintf("%d", qty)
}

// FormatQuoteSide renders the quoted side for display.
func FormatQuoteSide(side models.QuoteSide) string {
	switch side {
	case models.QuoteBid:
		return "bid"
	case models.QuoteOffer:
		return "offer"
	default:
		return "two-sided"
	}
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// PadLeft pads a string to the left.
func PadLeft(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return strings.Repeat(" ", length-len(s)) + s
}
