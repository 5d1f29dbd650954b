// Package models provides domain models for option structures and orders.
package models

import (
	"time"
)

// OptionType represents the type of an option contract.
type OptionType string

const (
	Call OptionType = "CALL"
	Put  OptionType = "PUT"
)

// Side represents the direction of a leg.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// QuoteSide represents the side of a broker-quoted price.
// QuoteTwoSided means no side was given and the quote is a mid.
type QuoteSide string

const (
	QuoteBid      QuoteSide = "BID"
	QuoteOffer    QuoteSide = "OFFER"
	QuoteTwoSided QuoteSide = "TWO_SIDED"
)

// StructureType represents the shape of a multi-leg structure.
type StructureType string

const (
	StructureSingle       StructureType = "SINGLE"
	StructureCallSpread   StructureType = "CALL_SPREAD"
	StructurePutSpread    StructureType = "PUT_SPREAD"
	StructureStraddle     StructureType = "STRADDLE"
	StructureStrangle     StructureType = "STRANGLE"
	StructureButterfly    StructureType = "BUTTERFLY"
	StructureRiskReversal StructureType = "RISK_REVERSAL"
	StructureCollar       StructureType = "COLLAR"
)

// OptionLeg represents a single option position within a structure.
// Weight is the ratio weight of the leg (1 for a vanilla spread leg,
// 2 for the heavy leg of a 1x2). Vol is the implied volatility when
// known from the quote; zero means unknown.
type OptionLeg struct {
	Underlying string
	Expiry     time.Time
	Strike     float64
	Type       OptionType
	Side       Side
	Weight     int
	Vol        float64
}

// Direction returns +1 for a bought leg and -1 for a sold leg.
func (l OptionLeg) Direction() float64 {
	if l.Side == SideSell {
		return -1
	}
	return 1
}

// Payoff returns the leg payoff at expiration for a given spot price,
// scaled by ratio weight and signed by direction.
func (l OptionLeg) Payoff(spot float64) float64 {
	var intrinsic float64
	if l.Type == Call {
		intrinsic = spot - l.Strike
	} else {
		intrinsic = l.Strike - spot
	}
	if intrinsic < 0 {
		intrinsic = 0
	}
	return l.Direction() * float64(l.Weight) * intrinsic
}

// OptionStructure represents a multi-leg option structure. Leg order
// affects display only, never pricing.
type OptionStructure struct {
	Type        StructureType
	Legs        []OptionLeg
	TiePrice    float64
	TieDelta    float64 // unsigned magnitude
	Quantity    int
	QuotedPrice float64
	QuotedSide  QuoteSide
}

// Payoff returns the total structure payoff at a given spot price.
func (s *OptionStructure) Payoff(spot float64) float64 {
	total := 0.0
	for _, leg := range s.Legs {
		total += leg.Payoff(spot)
	}
	return total
}

// PayoffRange samples the structure payoff across a spot range.
func (s *OptionStructure) PayoffRange(low, high float64, steps int) []PayoffPoint {
	if steps < 1 {
		steps = 1
	}
	step := (high - low) / float64(steps)
	points := make([]PayoffPoint, 0, steps+1)
	for i := 0; i <= steps; i++ {
		spot := low + float64(i)*step
		points = append(points, PayoffPoint{Spot: spot, Value: s.Payoff(spot)})
	}
	return points
}

// PayoffPoint is one sample of a payoff curve.
type PayoffPoint struct {
	Spot  float64
	Value float64
}

// IsRatio reports whether the structure carries unequal leg weights.
func (s *OptionStructure) IsRatio() bool {
	if len(s.Legs) == 0 {
		return false
	}
	first := s.Legs[0].Weight
	for _, leg := range s.Legs[1:] {
		if leg.Weight != first {
			return true
		}
	}
	return false
}

// ParsedOrder is the result of parsing one broker shorthand string.
// It is immutable after parsing.
type ParsedOrder struct {
	Ticker    string
	Structure OptionStructure
	RawText   string
	Unmatched []string // tokens retained for diagnostics
}
