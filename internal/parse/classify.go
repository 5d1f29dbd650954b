package parse

import (
	"fmt"

	apperrors "idb-pricer/internal/errors"
	"idb-pricer/internal/models"
)

// Options configures classification defaults the shorthand leaves open.
type Options struct {
	// RiskReversalOver is the leg type the structure buyer owns when a
	// risk reversal or collar carries no putover/callover modifier.
	RiskReversalOver models.OptionType
}

// DefaultOptions returns the documented classification defaults:
// an unmodified risk reversal is sell put / buy call.
func DefaultOptions() Options {
	return Options{RiskReversalOver: models.Call}
}

// classify builds the leg list and structure type from the extracted
// field map. The decision table is keyed on leg count, strike
// relationship, type combination and keyword presence; a keyword that
// conflicts with the strike/type shape is an AmbiguousStructureError.
func classify(f *fields, opts Options) (models.StructureType, []models.OptionLeg, error) {
	if len(f.legs) == 0 {
		return "", nil, apperrors.NewMissingFieldError("strike", f.ticker)
	}

	st, err := inferType(f)
	if err != nil {
		return "", nil, err
	}

	if err := checkShape(st, f); err != nil {
		return "", nil, err
	}

	var legs []models.OptionLeg
	switch st {
	case models.StructureSingle:
		legs, err = buildSingle(f)
	case models.StructurePutSpread, models.StructureCallSpread:
		legs, err = buildVertical(st, f)
	case models.StructureStraddle:
		legs, err = buildStraddle(f)
	case models.StructureStrangle:
		legs, err = buildStrangle(f)
	case models.StructureButterfly:
		legs, err = buildButterfly(f)
	case models.StructureRiskReversal, models.StructureCollar:
		legs, err = buildRiskReversal(f, opts)
	default:
		err = apperrors.NewMissingFieldError("structure", f.ticker)
	}
	if err != nil {
		return "", nil, err
	}

	return st, legs, nil
}

// inferType resolves the structure type from the keyword, or from the
// leg shape when no keyword is present.
func inferType(f *fields) (models.StructureType, error) {
	if f.hasKeyword {
		return f.keyword, nil
	}

	switch len(f.legs) {
	case 1:
		return models.StructureSingle, nil
	case 2:
		t1 := resolvedType(f.legs[0], f)
		t2 := resolvedType(f.legs[1], f)
		switch {
		case t1 == "" || t2 == "":
			return "", apperrors.NewMissingFieldError("option type", f.ticker)
		case t1 != t2:
			if f.legs[0].strike == f.legs[1].strike && f.legs[0].expiry.Equal(f.legs[1].expiry) {
				return models.StructureStraddle, nil
			}
			return models.StructureStrangle, nil
		case t1 == models.Put:
			return models.StructurePutSpread, nil
		default:
			return models.StructureCallSpread, nil
		}
	}
	return "", apperrors.NewMissingFieldError("structure", f.ticker)
}

// checkShape validates keyword against strike/type shape.
func checkShape(st models.StructureType, f *fields) error {
	n := len(f.legs)
	switch st {
	case models.StructureSingle:
		if n != 1 {
			return apperrors.NewAmbiguousStructureError(f.keywordText, fmt.Sprintf("%d strikes for a single-leg order", n))
		}
	case models.StructurePutSpread, models.StructureCallSpread:
		if n != 2 {
			return wrongLegCount(f, n, 2)
		}
		want := models.Put
		if st == models.StructureCallSpread {
			want = models.Call
		}
		for _, spec := range f.legs {
			if spec.typ != "" && spec.typ != want {
				return apperrors.NewAmbiguousStructureError(f.keywordText,
					fmt.Sprintf("a %s leg in a %s", spec.typ, st))
			}
		}
	case models.StructureStraddle:
		if n > 2 {
			return wrongLegCount(f, n, 2)
		}
		if n == 2 && f.legs[0].strike != f.legs[1].strike {
			return apperrors.NewAmbiguousStructureError(f.keywordText, "differing strikes for a straddle")
		}
	case models.StructureStrangle:
		if n != 2 {
			return wrongLegCount(f, n, 2)
		}
		if f.legs[0].strike == f.legs[1].strike {
			return apperrors.NewAmbiguousStructureError(f.keywordText, "identical strikes for a strangle")
		}
	case models.StructureRiskReversal, models.StructureCollar:
		if n != 2 {
			return wrongLegCount(f, n, 2)
		}
		t1, t2 := f.legs[0].typ, f.legs[1].typ
		if t1 != "" && t2 != "" && t1 == t2 {
			return apperrors.NewAmbiguousStructureError(f.keywordText,
				fmt.Sprintf("two %s legs for a %s", t1, st))
		}
	case models.StructureButterfly:
		if n != 3 {
			return wrongLegCount(f, n, 3)
		}
	}
	return nil
}

func wrongLegCount(f *fields, got, want int) error {
	if got < want {
		return apperrors.NewMissingFieldError("strike", f.ticker)
	}
	return apperrors.NewAmbiguousStructureError(f.keywordText,
		fmt.Sprintf("%d strikes where %d expected", got, want))
}

// resolvedType returns the leg's explicit type, the keyword-implied
// type, or the word-form default, in that order.
func resolvedType(spec legSpec, f *fields) models.OptionType {
	if spec.typ != "" {
		return spec.typ
	}
	if f.hasKeyword {
		switch f.keyword {
		case models.StructurePutSpread:
			return models.Put
		case models.StructureCallSpread:
			return models.Call
		}
	}
	return f.defaultType
}

// weights maps the ratio token positionally: the first-listed strike
// carries r1, the second r2. Without a ratio token all legs weigh 1.
func weights(f *fields, n int) []int {
	w := make([]int, n)
	for i := range w {
		w[i] = 1
	}
	if f.hasRatio && n == 2 {
		w[0], w[1] = f.ratio[0], f.ratio[1]
	}
	return w
}

func buildSingle(f *fields) ([]models.OptionLeg, error) {
	spec := f.legs[0]
	typ := resolvedType(spec, f)
	if typ == "" {
		return nil, apperrors.NewMissingFieldError("option type", f.ticker)
	}
	return []models.OptionLeg{{
		Underlying: f.ticker,
		Expiry:     spec.expiry,
		Strike:     spec.strike,
		Type:       typ,
		Side:       models.SideBuy,
		Weight:     1,
	}}, nil
}

// buildVertical builds a two-leg spread. Default direction assignment:
// a put spread sells the higher strike and buys the lower; a call
// spread buys the lower strike and sells the higher. An "NX over"
// modifier overrides the default: legs whose ratio weight equals N are
// the bought legs and the rest are sold, which places the extra ratio
// units on the sell side when N names the 1x leg.
func buildVertical(st models.StructureType, f *fields) ([]models.OptionLeg, error) {
	typ := models.Put
	if st == models.StructureCallSpread {
		typ = models.Call
	}

	w := weights(f, 2)
	legs := make([]models.OptionLeg, 2)
	for i, spec := range f.legs {
		legs[i] = models.OptionLeg{
			Underlying: f.ticker,
			Expiry:     spec.expiry,
			Strike:     spec.strike,
			Type:       typ,
			Weight:     w[i],
		}
	}

	hi, lo := 0, 1
	if legs[1].Strike > legs[0].Strike {
		hi, lo = 1, 0
	}
	if st == models.StructurePutSpread {
		legs[hi].Side = models.SideSell
		legs[lo].Side = models.SideBuy
	} else {
		legs[lo].Side = models.SideBuy
		legs[hi].Side = models.SideSell
	}

	if f.modifier != nil && f.modifier.kind == "ratio" && f.hasRatio {
		for i := range legs {
			if legs[i].Weight == f.modifier.ratio {
				legs[i].Side = models.SideBuy
			} else {
				legs[i].Side = models.SideSell
			}
		}
	}

	return legs, nil
}

// buildRiskReversal builds a risk reversal or collar: one put, one
// call, opposite directions. The over modifier (or the configured
// default) names the leg the structure buyer owns.
func buildRiskReversal(f *fields, opts Options) ([]models.OptionLeg, error) {
	s1, s2 := f.legs[0], f.legs[1]

	var putSpec, callSpec legSpec
	if s1.typ != "" && s2.typ != "" {
		if s1.typ == models.Put {
			putSpec, callSpec = s1, s2
		} else {
			putSpec, callSpec = s2, s1
		}
	} else if s1.strike <= s2.strike {
		// Convention: lower strike is the put, higher the call.
		putSpec, callSpec = s1, s2
	} else {
		putSpec, callSpec = s2, s1
	}

	over := opts.RiskReversalOver
	if over == "" {
		over = models.Call
	}
	if f.modifier != nil {
		switch f.modifier.kind {
		case "put":
			over = models.Put
		case "call":
			over = models.Call
		}
	}

	putSide, callSide := models.SideSell, models.SideBuy
	if over == models.Put {
		putSide, callSide = models.SideBuy, models.SideSell
	}

	return []models.OptionLeg{
		{Underlying: f.ticker, Expiry: putSpec.expiry, Strike: putSpec.strike, Type: models.Put, Side: putSide, Weight: 1},
		{Underlying: f.ticker, Expiry: callSpec.expiry, Strike: callSpec.strike, Type: models.Call, Side: callSide, Weight: 1},
	}, nil
}

func buildStraddle(f *fields) ([]models.OptionLeg, error) {
	spec := f.legs[0]
	return []models.OptionLeg{
		{Underlying: f.ticker, Expiry: spec.expiry, Strike: spec.strike, Type: models.Call, Side: models.SideBuy, Weight: 1},
		{Underlying: f.ticker, Expiry: spec.expiry, Strike: spec.strike, Type: models.Put, Side: models.SideBuy, Weight: 1},
	}, nil
}

func buildStrangle(f *fields) ([]models.OptionLeg, error) {
	lo, hi := f.legs[0], f.legs[1]
	if lo.strike > hi.strike {
		lo, hi = hi, lo
	}
	loType, hiType := models.Put, models.Call
	if lo.typ != "" && hi.typ != "" {
		loType, hiType = lo.typ, hi.typ
	}
	return []models.OptionLeg{
		{Underlying: f.ticker, Expiry: lo.expiry, Strike: lo.strike, Type: loType, Side: models.SideBuy, Weight: 1},
		{Underlying: f.ticker, Expiry: hi.expiry, Strike: hi.strike, Type: hiType, Side: models.SideBuy, Weight: 1},
	}, nil
}

// buildButterfly builds the fixed 1-2-1 shape: outer strikes bought,
// the middle strike sold at double weight.
func buildButterfly(f *fields) ([]models.OptionLeg, error) {
	specs := make([]legSpec, len(f.legs))
	copy(specs, f.legs)
	for i := 0; i < len(specs); i++ {
		for j := i + 1; j < len(specs); j++ {
			if specs[j].strike < specs[i].strike {
				specs[i], specs[j] = specs[j], specs[i]
			}
		}
	}

	typ := f.defaultType
	for _, spec := range specs {
		if spec.typ != "" {
			typ = spec.typ
			break
		}
	}
	if typ == "" {
		typ = models.Call
	}

	return []models.OptionLeg{
		{Underlying: f.ticker, Expiry: specs[0].expiry, Strike: specs[0].strike, Type: typ, Side: models.SideBuy, Weight: 1},
		{Underlying: f.ticker, Expiry: specs[1].expiry, Strike: specs[1].strike, Type: typ, Side: models.SideSell, Weight: 2},
		{Underlying: f.ticker, Expiry: specs[2].expiry, Strike: specs[2].strike, Type: typ, Side: models.SideBuy, Weight: 1},
	}, nil
}
