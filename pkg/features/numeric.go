package features

import (
	"regexp"
	"strconv"

	"github.com/synaptica-ai/admission-review/pkg/normalizer"
)

// Plausibility ranges, inclusive.
const (
	MinO2Sat      = 50
	MaxO2Sat      = 100
	MinCreatinine = 0.1
	MaxCreatinine = 20.0
	MinTroponin   = 0.0
	MaxTroponin   = 100.0
	MinSBP        = 60
	MaxSBP        = 250
)

var (
	ageYearOld = regexp.MustCompile(`(?i)(\d{2,3})[- ]?year[- ]?old`)
	ageLabel   = regexp.MustCompile(`(?i)Age[:\s]+(\d{1,3})`)

	spacedSpO2   = regexp.MustCompile(`(?i)S\s*P\s*O\s*2`)
	o2SatLabel   = regexp.MustCompile(`(?i)(?:SpO2|O2 sat|oxygen saturation)[^0-9]{0,5}([0-9]{2,3})`)
	o2SatPercent = regexp.MustCompile(`([0-9]{2,3})\s*%`)

	creatininePeriod = regexp.MustCompile(`(?i)CREATININE\.`)
	creatinineValue  = regexp.MustCompile(`(?i)\bcreatinine\b[^0-9]{0,15}([0-9]+(?:\.[0-9]+)?)`)

	troponinValue = regexp.MustCompile(`(?i)\btroponin\b[^0-9]{0,10}([0-9]+(?:\.[0-9]+)?)`)

	bpPair       = regexp.MustCompile(`\b(\d{2,3})\s*/\s*(\d{2,3})\b`)
	bpBrokenPair = regexp.MustCompile(`(\d{2})\s*(\d)\s*/\s*(\d{2})`)
	sbpLabel     = regexp.MustCompile(`(?i)\bSBP[:\s]*?(\d{2,3})\b`)
)

// ExtractAge reads "<N>-year-old" and falls back to an "Age: <N>" label.
// No plausibility range applies.
func ExtractAge(text normalizer.Text) *int {
	s := text.String()
	for _, re := range []*regexp.Regexp{ageYearOld, ageLabel} {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		// The first matching form decides, even if its number does not parse.
		v, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		return &v
	}
	return nil
}

// ExtractO2Sat reads a labelled saturation value and falls back to the first
// bare percentage when the label is absent or implausible.
func ExtractO2Sat(text normalizer.Text) *int {
	s := spacedSpO2.ReplaceAllString(text.String(), "SpO2")
	return firstPlausibleInt(s, MinO2Sat, MaxO2Sat, o2SatLabel, o2SatPercent)
}

// ExtractCreatinine reads the value following a creatinine label.
func ExtractCreatinine(text normalizer.Text) *float64 {
	s := creatininePeriod.ReplaceAllString(text.String(), "CREATININE")
	return plausibleFloat(creatinineValue.FindStringSubmatch(s), MinCreatinine, MaxCreatinine)
}

// ExtractTroponin reads the value following a troponin label.
func ExtractTroponin(text normalizer.Text) *float64 {
	return plausibleFloat(troponinValue.FindStringSubmatch(text.String()), MinTroponin, MaxTroponin)
}

// ExtractSBP tries, in order, the first "N/N" pair, a pair broken by table
// spacing ("15 2/ 68" reads as 152/68), and an explicit "SBP: N" label. The
// first plausible value wins. Only the first match of each stage is
// considered; a later plausible pair of the same form is not retried.
func ExtractSBP(text normalizer.Text) *int {
	s := text.String()

	if m := bpPair.FindStringSubmatch(s); m != nil {
		if v, ok := parseIntInRange(m[1], MinSBP, MaxSBP); ok {
			return &v
		}
	}

	if m := bpBrokenPair.FindStringSubmatch(s); m != nil {
		if v, ok := parseIntInRange(m[1]+m[2], MinSBP, MaxSBP); ok {
			return &v
		}
	}

	if m := sbpLabel.FindStringSubmatch(s); m != nil {
		if v, ok := parseIntInRange(m[1], MinSBP, MaxSBP); ok {
			return &v
		}
	}

	return nil
}

func firstPlausibleInt(s string, min, max int, patterns ...*regexp.Regexp) *int {
	for _, re := range patterns {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		if v, ok := parseIntInRange(m[1], min, max); ok {
			return &v
		}
	}
	return nil
}

func parseIntInRange(raw string, min, max int) (int, bool) {
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return 0, false
	}
	return v, true
}

func plausibleFloat(m []string, min, max float64) *float64 {
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < min || v > max {
		return nil
	}
	return &v
}
