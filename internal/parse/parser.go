// Package parse converts interdealer broker shorthand into structured
// option orders. Extraction rules are order-independent: each field is
// pulled from the raw text by its own pattern, then the strike/expiry
// scan and the structure classifier assemble the legs.
package parse

import (
	"strings"
	"time"

	apperrors "idb-pricer/internal/errors"
	"idb-pricer/internal/models"
)

// Parser turns raw broker shorthand into parsed orders. The zero-cost
// way to obtain one with the documented defaults is New.
type Parser struct {
	opts Options
}

// New creates a Parser with default options.
func New() *Parser {
	return NewParser(DefaultOptions())
}

// NewParser creates a Parser with explicit options.
func NewParser(opts Options) *Parser {
	return &Parser{opts: opts}
}

// Parse parses one shorthand message against the given reference date.
// The reference date anchors year-less expiry months; passing the
// current date gives live behavior, a fixed date gives reproducible
// parses. Unrecognized tokens never fail the parse; they are retained
// on the order for diagnostics.
func (p *Parser) Parse(text string, ref time.Time) (*models.ParsedOrder, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, apperrors.NewMissingFieldError("ticker", text)
	}

	f := extract(trimmed, ref)
	if f.ticker == "" {
		return nil, apperrors.NewMissingFieldError("ticker", trimmed)
	}

	st, legs, err := classify(f, p.opts)
	if err != nil {
		return nil, err
	}

	for _, leg := range legs {
		if !leg.Expiry.IsZero() {
			continue
		}
		return nil, apperrors.NewMissingFieldError("expiry", trimmed)
	}

	order := &models.ParsedOrder{
		Ticker: f.ticker,
		Structure: models.OptionStructure{
			Type:     st,
			Legs:     legs,
			Quantity: f.quantity,
		},
		RawText:   trimmed,
		Unmatched: f.unmatched,
	}

	// LIVE orders trade outright: any stray tie or delta is discarded.
	if !f.live {
		order.Structure.TiePrice = f.tie
		order.Structure.TieDelta = f.delta
	}

	if f.hasPrice {
		order.Structure.QuotedPrice = f.price
		order.Structure.QuotedSide = f.side
	} else {
		order.Structure.QuotedSide = models.QuoteTwoSided
	}

	return order, nil
}

// Parse parses with default options.
func Parse(text string, ref time.Time) (*models.ParsedOrder, error) {
	return New().Parse(text, ref)
}
