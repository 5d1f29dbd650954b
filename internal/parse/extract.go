package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"idb-pricer/internal/models"
)

// fields is the merged result of the independent extraction rules.
// Every rule scans the full text on its own; token order never matters.
type fields struct {
	ticker      string
	tie         float64
	hasTie      bool
	delta       float64
	hasDelta    bool
	quantity    int
	price       float64
	hasPrice    bool
	side        models.QuoteSide
	ratio       [2]int
	hasRatio    bool
	modifier    *overModifier
	keyword     models.StructureType
	hasKeyword  bool
	keywordText string
	live        bool
	legs        []legSpec
	defaultType models.OptionType
	unmatched   []string
}

// legSpec is a strike/expiry pair collected before classification.
type legSpec struct {
	expiry    time.Time
	hasExpiry bool
	strike    float64
	typ       models.OptionType // empty when not yet resolved
}

// overModifier names the leg the structure buyer owns: a put/call leg
// for risk reversals, or the leg carrying a given ratio weight.
type overModifier struct {
	kind  string // "put", "call" or "ratio"
	ratio int
}

var (
	reTieVS = regexp.MustCompile(`(?i)\bvs\.?\s*(\d+\.?\d*)`)
	reTieTT = regexp.MustCompile(`(?i)\btt\s*(\d+\.?\d*)`)
	reTieT  = regexp.MustCompile(`(?i)\bt\s+(\d+\.?\d*)`)

	reDelta = regexp.MustCompile(`(?i)(?:on\s+a\s+)?([+-]?\d+)\s*d\b`)

	reQty = regexp.MustCompile(`(?i)\b(\d+)\s*([xk])\b`)

	reBidWord   = regexp.MustCompile(`(?i)\b(\d+\.?\d*)\s+bid\b`)
	reOfferWord = regexp.MustCompile(`(?i)\b(\d+\.?\d*)\s+(?:offer|ask)\b`)
	reBidSuf    = regexp.MustCompile(`(?i)\b(\d+\.?\d*)b\b`)
	reOfferSuf  = regexp.MustCompile(`(?i)\b(\d+\.?\d*)o\b`)
	reAtSym     = regexp.MustCompile(`@\s*(\d+\.?\d*)`)
	reAtWord    = regexp.MustCompile(`(?i)\bat\s+(\d+\.?\d*)\b`)

	reRatio = regexp.MustCompile(`\b(\d+)\s*[Xx]\s*(\d+)\b`)

	reRatioOver = regexp.MustCompile(`(?i)\b(\d+)[Xx]\s+over\b`)
	rePutOver   = regexp.MustCompile(`(?i)\bput\s*over\b`)
	reCallOver  = regexp.MustCompile(`(?i)\bcall\s*over\b`)

	reLive = regexp.MustCompile(`(?i)\bLIVE\b`)

	reMonthTok      = regexp.MustCompile(`(?i)^(` + monthPattern + `)(\d{2})?$`)
	reStrikeTok     = regexp.MustCompile(`^(\d+\.?\d*)([PCpc])?$`)
	reStrikeTypeTok = regexp.MustCompile(`^(\d+\.?\d*)([PCpc])$`)
	reSlashTok      = regexp.MustCompile(`^(\d+\.?\d*)([PCpc])?/(\d+\.?\d*)([PCpc])?$`)
	reSlash3Tok     = regexp.MustCompile(`^(\d+\.?\d*)([PCpc])?/(\d+\.?\d*)([PCpc])?/(\d+\.?\d*)([PCpc])?$`)
	reTickerTok     = regexp.MustCompile(`^[A-Za-z]+$`)
)

// keywordAliases maps shorthand structure vocabulary to canonical
// types, matched whole-word and longest-alias-first.
var keywordAliases = []struct {
	alias string
	typ   models.StructureType
}{
	{"risk reversal", models.StructureRiskReversal},
	{"call spread", models.StructureCallSpread},
	{"put spread", models.StructurePutSpread},
	{"butterfly", models.StructureButterfly},
	{"straddle", models.StructureStraddle},
	{"strangle", models.StructureStrangle},
	{"collar", models.StructureCollar},
	{"risky", models.StructureRiskReversal},
	{"strad", models.StructureStraddle},
	{"fly", models.StructureButterfly},
	{"rr", models.StructureRiskReversal},
	{"ps", models.StructurePutSpread},
	{"cs", models.StructureCallSpread},
}

var keywordRes = buildKeywordRes()

func buildKeywordRes() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(keywordAliases))
	for i, ka := range keywordAliases {
		res[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(ka.alias) + `\b`)
	}
	return res
}

// singleWordAliases is used by the core scan to skip structure
// keywords it has already accounted for.
var singleWordAliases = map[string]bool{
	"ps": true, "cs": true, "rr": true, "risky": true, "strad": true,
	"straddle": true, "strangle": true, "fly": true, "butterfly": true,
	"collar": true,
}

func extractTie(text string) (float64, bool) {
	for _, re := range []*regexp.Regexp{reTieVS, reTieTT, reTieT} {
		if m := re.FindStringSubmatch(text); m != nil {
			v, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

func extractDelta(text string) (float64, bool) {
	if m := reDelta.FindStringSubmatch(text); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			// tie delta is an unsigned magnitude
			if v < 0 {
				v = -v
			}
			return v, true
		}
	}
	return 0, false
}

// extractQuantity finds Nx or Nk contract quantities, skipping ratio
// tokens (1X2) and ratio-over modifiers (1X over).
func extractQuantity(text string) (int, bool) {
	for _, loc := range reQty.FindAllStringSubmatchIndex(text, -1) {
		rest := text[loc[1]:]
		if reOverAhead.MatchString(rest) {
			continue
		}
		num := text[loc[2]:loc[3]]
		suffix := strings.ToLower(text[loc[4]:loc[5]])
		v, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		if suffix == "k" {
			v *= 1000
		}
		return v, true
	}
	return 0, false
}

var reOverAhead = regexp.MustCompile(`(?i)^\s*over\b`)

func extractPriceAndSide(text string) (float64, models.QuoteSide, bool) {
	checks := []struct {
		re   *regexp.Regexp
		side models.QuoteSide
	}{
		{reBidWord, models.QuoteBid},
		{reOfferWord, models.QuoteOffer},
		{reBidSuf, models.QuoteBid},
		{reOfferSuf, models.QuoteOffer},
		{reAtSym, models.QuoteOffer},
		{reAtWord, models.QuoteOffer},
	}
	for _, c := range checks {
		if m := c.re.FindStringSubmatch(text); m != nil {
			v, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				return v, c.side, true
			}
		}
	}
	return 0, "", false
}

// extractRatio finds NxM ratio tokens, distinguished from quantities
// by requiring two weights with the second strictly larger.
func extractRatio(text string) ([2]int, bool) {
	if m := reRatio.FindStringSubmatch(text); m != nil {
		a, err1 := strconv.Atoi(m[1])
		b, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil && b > 1 && a < b {
			return [2]int{a, b}, true
		}
	}
	return [2]int{}, false
}

func extractModifier(text string) *overModifier {
	if m := reRatioOver.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return &overModifier{kind: "ratio", ratio: n}
		}
	}
	if rePutOver.MatchString(text) {
		return &overModifier{kind: "put"}
	}
	if reCallOver.MatchString(text) {
		return &overModifier{kind: "call"}
	}
	return nil
}

func extractKeyword(text string) (models.StructureType, string, bool) {
	for i, re := range keywordRes {
		if re.MatchString(text) {
			return keywordAliases[i].typ, keywordAliases[i].alias, true
		}
	}
	return "", "", false
}

// skipTokenRes matches tokens the core scan ignores because an
// independent extraction rule already consumed them.
var skipTokenRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:vs\.?|tt|t)(?:\d+\.?\d*)?$`),
	regexp.MustCompile(`^\d+\.?\d*$`),
	regexp.MustCompile(`(?i)^\d+\.?\d*[bo]$`),
	regexp.MustCompile(`(?i)^\d+[xk]$`),
	regexp.MustCompile(`(?i)^\d+x\d+$`),
	regexp.MustCompile(`(?i)^[+-]?\d+d$`),
	regexp.MustCompile(`(?i)^(?:bid|offer|ask|at)$`),
	regexp.MustCompile(`(?i)^(?:on|a|the|like|to)$`),
	regexp.MustCompile(`(?i)^(?:delta|live|over|putover|callover)$`),
	regexp.MustCompile(`^@`),
}

func isSkipToken(tok string) bool {
	if singleWordAliases[strings.ToLower(tok)] {
		return true
	}
	for _, re := range skipTokenRes {
		if re.MatchString(tok) {
			return true
		}
	}
	return false
}

// scanLegs walks the token stream collecting strike/expiry pairs and
// the default option type. Tokens no rule recognizes are retained for
// diagnostics.
func scanLegs(text string, keyword models.StructureType, hasKeyword bool, ref time.Time) (string, []legSpec, models.OptionType, []string) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return "", nil, "", nil
	}

	ticker := ""
	if reTickerTok.MatchString(tokens[0]) {
		ticker = strings.ToUpper(tokens[0])
	}

	var (
		legs        []legSpec
		defaultType models.OptionType
		unmatched   []string
		expiry      time.Time
		hasExpiry   bool
	)

	multiLeg := hasKeyword && keyword != models.StructureSingle && keyword != models.StructureStraddle

	i := 1
	for i < len(tokens) {
		raw := tokens[i]
		tok := strings.TrimRight(raw, ".,;")
		lower := strings.ToLower(tok)

		// Month token, optionally followed by strikes.
		if m := reMonthTok.FindStringSubmatch(tok); m != nil {
			exp, err := ResolveExpiry(m[1], m[2], ref)
			if err == nil {
				expiry, hasExpiry = exp, true
			}
			i++

			if i < len(tokens) {
				next := strings.TrimRight(tokens[i], ".,;")
				if sm := reSlash3Tok.FindStringSubmatch(next); sm != nil {
					legs = append(legs, slash3Legs(sm, expiry, hasExpiry)...)
					i++
					continue
				}
				if sm := reSlashTok.FindStringSubmatch(next); sm != nil {
					legs = append(legs, slashLegs(sm, expiry, hasExpiry)...)
					i++
					continue
				}
				if sm := reStrikeTok.FindStringSubmatch(next); sm != nil && !isSkipStrike(next, tokens, i) {
					legs = append(legs, strikeLeg(sm, expiry, hasExpiry))
					i++
					// Additional space-separated strikes belong to
					// multi-leg structures ("jun 100 90 ps").
					for i < len(tokens) {
						tok2 := strings.TrimRight(tokens[i], ".,;")
						sm2 := reStrikeTok.FindStringSubmatch(tok2)
						if sm2 == nil {
							break
						}
						nextIsKeyword := i+1 < len(tokens) && singleWordAliases[strings.ToLower(tokens[i+1])]
						if !multiLeg && !nextIsKeyword {
							break
						}
						legs = append(legs, strikeLeg(sm2, expiry, hasExpiry))
						i++
					}
					continue
				}
			}
			continue
		}

		// Strike with explicit type suffix: "45P", "300C".
		if sm := reStrikeTypeTok.FindStringSubmatch(tok); sm != nil {
			strike, _ := strconv.ParseFloat(sm[1], 64)
			typ := typeFromChar(sm[2])
			// "85P Jan27": the month may trail the strike.
			if i+1 < len(tokens) {
				nextTok := strings.TrimRight(tokens[i+1], ".,;")
				if mm := reMonthTok.FindStringSubmatch(nextTok); mm != nil {
					exp, err := ResolveExpiry(mm[1], mm[2], ref)
					if err == nil {
						legs = append(legs, legSpec{expiry: exp, hasExpiry: true, strike: strike, typ: typ})
						i += 2
						continue
					}
				}
			}
			legs = append(legs, legSpec{expiry: expiry, hasExpiry: hasExpiry, strike: strike, typ: typ})
			i++
			continue
		}

		// Slash strikes without a preceding month: "240/220".
		if sm := reSlash3Tok.FindStringSubmatch(tok); sm != nil {
			legs = append(legs, slash3Legs(sm, expiry, hasExpiry)...)
			i++
			continue
		}
		if sm := reSlashTok.FindStringSubmatch(tok); sm != nil {
			legs = append(legs, slashLegs(sm, expiry, hasExpiry)...)
			i++
			continue
		}

		// Word-form option type: "calls", "puts". Guard against the
		// "put over" modifier and "delta to put" qualifiers.
		prev := ""
		if i > 0 {
			prev = strings.ToLower(tokens[i-1])
		}
		next := ""
		if i+1 < len(tokens) {
			next = strings.ToLower(tokens[i+1])
		}
		isDeltaPhrase := prev == "to" || prev == "like"
		isOverPhrase := next == "over"
		if (lower == "call" || lower == "calls") && !isDeltaPhrase && !isOverPhrase {
			defaultType = models.Call
			i++
			continue
		}
		if (lower == "put" || lower == "puts") && !isDeltaPhrase && !isOverPhrase {
			defaultType = models.Put
			i++
			continue
		}

		// Bare strike followed by "calls"/"puts".
		if reStrikeTok.MatchString(tok) && sm2ndWordType(next) && !followedByOver(tokens, i+1) {
			strike, _ := strconv.ParseFloat(tok, 64)
			typ := models.Put
			if strings.HasPrefix(next, "call") {
				typ = models.Call
			}
			defaultType = typ
			legs = append(legs, legSpec{expiry: expiry, hasExpiry: hasExpiry, strike: strike, typ: typ})
			i += 2
			continue
		}

		if !isSkipToken(tok) && i > 0 {
			unmatched = append(unmatched, raw)
		}
		i++
	}

	return ticker, legs, defaultType, unmatched
}

func sm2ndWordType(next string) bool {
	return next == "call" || next == "calls" || next == "put" || next == "puts"
}

func followedByOver(tokens []string, i int) bool {
	return i+1 < len(tokens) && strings.EqualFold(tokens[i+1], "over")
}

// isSkipStrike rejects bare numbers that the quantity or price rules
// own, such as "500" in "500 @ 2.55".
func isSkipStrike(tok string, tokens []string, i int) bool {
	if strings.ContainsAny(tok, "PCpc") {
		return false
	}
	if i+1 < len(tokens) {
		next := strings.ToLower(tokens[i+1])
		if next == "@" || strings.HasPrefix(next, "@") || next == "bid" || next == "offer" || next == "ask" {
			return true
		}
	}
	return false
}

func strikeLeg(sm []string, expiry time.Time, hasExpiry bool) legSpec {
	strike, _ := strconv.ParseFloat(sm[1], 64)
	return legSpec{expiry: expiry, hasExpiry: hasExpiry, strike: strike, typ: typeFromChar(sm[2])}
}

func slashLegs(sm []string, expiry time.Time, hasExpiry bool) []legSpec {
	s1, _ := strconv.ParseFloat(sm[1], 64)
	s2, _ := strconv.ParseFloat(sm[3], 64)
	return []legSpec{
		{expiry: expiry, hasExpiry: hasExpiry, strike: s1, typ: typeFromChar(sm[2])},
		{expiry: expiry, hasExpiry: hasExpiry, strike: s2, typ: typeFromChar(sm[4])},
	}
}

func slash3Legs(sm []string, expiry time.Time, hasExpiry bool) []legSpec {
	s1, _ := strconv.ParseFloat(sm[1], 64)
	s2, _ := strconv.ParseFloat(sm[3], 64)
	s3, _ := strconv.ParseFloat(sm[5], 64)
	return []legSpec{
		{expiry: expiry, hasExpiry: hasExpiry, strike: s1, typ: typeFromChar(sm[2])},
		{expiry: expiry, hasExpiry: hasExpiry, strike: s2, typ: typeFromChar(sm[4])},
		{expiry: expiry, hasExpiry: hasExpiry, strike: s3, typ: typeFromChar(sm[6])},
	}
}

func typeFromChar(c string) models.OptionType {
	switch strings.ToUpper(c) {
	case "C":
		return models.Call
	case "P":
		return models.Put
	}
	return ""
}

// extract runs every extraction rule over the raw text and merges the
// results into a single field map.
func extract(text string, ref time.Time) *fields {
	f := &fields{}
	f.tie, f.hasTie = extractTie(text)
	f.delta, f.hasDelta = extractDelta(text)
	f.quantity, _ = extractQuantity(text)
	f.price, f.side, f.hasPrice = extractPriceAndSide(text)
	f.ratio, f.hasRatio = extractRatio(text)
	f.modifier = extractModifier(text)
	f.keyword, f.keywordText, f.hasKeyword = extractKeyword(text)
	f.live = reLive.MatchString(text)
	f.ticker, f.legs, f.defaultType, f.unmatched = scanLegs(text, f.keyword, f.hasKeyword, ref)
	return f
}
