// Package pricing implements Black-Scholes valuation for single legs
// and implied market aggregation for multi-leg structures.
package pricing

import (
	"math"

	apperrors "idb-pricer/internal/errors"
	"idb-pricer/internal/models"
)

// Input is one Black-Scholes evaluation. Rate and Yield are continuous
// annual rates; TimeToExpiry is in years.
type Input struct {
	Spot         float64
	Strike       float64
	TimeToExpiry float64
	Vol          float64
	Rate         float64
	Yield        float64
	Type         models.OptionType
}

// Result carries the option value and its sensitivities. Theta is per
// calendar day; Vega and Rho are per one-percentage-point move.
type Result struct {
	Price  float64
	Greeks models.Greeks
}

// Price evaluates the Black-Scholes model with continuous dividend
// yield. At or past expiry the result degenerates to intrinsic value
// with an indicator delta and zero second-order Greeks.
func Price(in Input) (Result, error) {
	if in.Spot <= 0 {
		return Result{}, apperrors.NewInvalidInputError("spot", in.Spot, "must be positive")
	}
	if in.Strike <= 0 {
		return Result{}, apperrors.NewInvalidInputError("strike", in.Strike, "must be positive")
	}

	if in.TimeToExpiry <= 0 {
		return expired(in), nil
	}

	if in.Vol <= 0 {
		return Result{}, apperrors.NewInvalidInputError("vol", in.Vol, "must be positive")
	}

	sqrtT := math.Sqrt(in.TimeToExpiry)
	d1 := (math.Log(in.Spot/in.Strike) + (in.Rate-in.Yield+in.Vol*in.Vol/2)*in.TimeToExpiry) / (in.Vol * sqrtT)
	d2 := d1 - in.Vol*sqrtT

	discS := in.Spot * math.Exp(-in.Yield*in.TimeToExpiry)
	discK := in.Strike * math.Exp(-in.Rate*in.TimeToExpiry)
	pdf := normPDF(d1)

	var r Result
	if in.Type == models.Call {
		r.Price = discS*normCDF(d1) - discK*normCDF(d2)
		r.Greeks.Delta = math.Exp(-in.Yield*in.TimeToExpiry) * normCDF(d1)
		r.Greeks.Theta = (-discS*pdf*in.Vol/(2*sqrtT) -
			in.Rate*discK*normCDF(d2) +
			in.Yield*discS*normCDF(d1)) / 365
		r.Greeks.Rho = discK * in.TimeToExpiry * normCDF(d2) * 0.01
	} else {
		r.Price = discK*normCDF(-d2) - discS*normCDF(-d1)
		r.Greeks.Delta = math.Exp(-in.Yield*in.TimeToExpiry) * (normCDF(d1) - 1)
		r.Greeks.Theta = (-discS*pdf*in.Vol/(2*sqrtT) +
			in.Rate*discK*normCDF(-d2) -
			in.Yield*discS*normCDF(-d1)) / 365
		r.Greeks.Rho = -discK * in.TimeToExpiry * normCDF(-d2) * 0.01
	}

	r.Greeks.Gamma = math.Exp(-in.Yield*in.TimeToExpiry) * pdf / (in.Spot * in.Vol * sqrtT)
	r.Greeks.Vega = discS * pdf * sqrtT * 0.01

	return r, nil
}

// expired returns the degenerate valuation at or past expiration.
func expired(in Input) Result {
	var r Result
	if in.Type == models.Call {
		r.Price = math.Max(in.Spot-in.Strike, 0)
		if in.Spot > in.Strike {
			r.Greeks.Delta = 1
		}
	} else {
		r.Price = math.Max(in.Strike-in.Spot, 0)
		if in.Spot < in.Strike {
			r.Greeks.Delta = -1
		}
	}
	return r
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
