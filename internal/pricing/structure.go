package pricing

import (
	"math"

	"idb-pricer/internal/models"
)

// Aggregate derives the implied structure-level market from per-leg
// quotes. The implied bid is the worst immediate fill for the buyer of
// the structure: bought legs lift the ask, sold legs hit the bid. The
// implied offer is the inverse. The mid is the direction-signed sum of
// leg mids and is reported even when screens are partial.
//
// Sizes are the largest number of structures fillable on screen: each
// leg contributes floor(availableSize/weight) and the minimum across
// legs wins. When any leg lacks a two-sided screen the result is
// marked Incomplete and bid, offer and sizes are not meaningful.
func Aggregate(legs []models.OptionLeg, data []models.LegMarketData, spot float64) models.StructureMarketData {
	out := models.StructureMarketData{
		Spot: spot,
		Legs: data,
	}

	bidSize, offerSize := math.MaxInt, math.MaxInt

	for i, leg := range legs {
		d := data[i]
		w := float64(leg.Weight)

		if d.HasMid() {
			out.ImpliedMid += leg.Direction() * w * d.Mid()
		} else {
			out.Incomplete = true
		}

		if !d.HasScreen() {
			out.Incomplete = true
			continue
		}

		if leg.Side == models.SideBuy {
			out.ImpliedBid += w * d.Ask
			out.ImpliedOffer += w * d.Bid
			bidSize = minSize(bidSize, d.AskSize, leg.Weight)
			offerSize = minSize(offerSize, d.BidSize, leg.Weight)
		} else {
			out.ImpliedBid -= w * d.Bid
			out.ImpliedOffer -= w * d.Ask
			bidSize = minSize(bidSize, d.BidSize, leg.Weight)
			offerSize = minSize(offerSize, d.AskSize, leg.Weight)
		}
	}

	if !out.Incomplete {
		out.BidSize = bidSize
		out.OfferSize = offerSize
	}

	return out
}

// NetGreeks sums per-leg Greeks into the structure position:
// direction-signed and ratio-weighted.
func NetGreeks(legs []models.OptionLeg, data []models.LegMarketData) models.Greeks {
	var net models.Greeks
	for i, leg := range legs {
		s := leg.Direction() * float64(leg.Weight)
		g := data[i].Greeks
		net.Delta += s * g.Delta
		net.Gamma += s * g.Gamma
		net.Theta += s * g.Theta
		net.Vega += s * g.Vega
		net.Rho += s * g.Rho
	}
	return net
}

func minSize(cur, avail, weight int) int {
	if weight < 1 {
		weight = 1
	}
	if n := avail / weight; n < cur {
		return n
	}
	return cur
}
