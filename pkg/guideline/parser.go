package guideline

import (
	"regexp"
	"strconv"

	"github.com/synaptica-ai/admission-review/pkg/normalizer"
	"github.com/synaptica-ai/admission-review/pkg/rules"
)

var o2SatCutoff = regexp.MustCompile(`(?i)(?:o2|saturation)[^\d]{0,20}(\d{2})`)

// ParseThresholds derives rule thresholds from guideline text, seeded from
// the built-in defaults.
func ParseThresholds(text normalizer.Text) rules.Thresholds {
	return ParseThresholdsFrom(text, rules.DefaultThresholds())
}

// ParseThresholdsFrom overrides base with the cutoffs found in text. Only the
// oxygen saturation cutoff is read from guidelines today; every other
// threshold keeps its base value.
func ParseThresholdsFrom(text normalizer.Text, base rules.Thresholds) rules.Thresholds {
	if m := o2SatCutoff.FindStringSubmatch(text.String()); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			base.O2Sat = v
		}
	}
	return base
}
