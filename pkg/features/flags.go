package features

import (
	"regexp"
	"strings"

	"github.com/synaptica-ai/admission-review/pkg/normalizer"
)

var pneumoniaPatterns = compileAll(
	`\bpneumonia\b`,
	`\binfiltrate(s)?\b`,
	`\bconsolidation\b`,
	`\bopacity\b`,
	`\blobar pneumonia\b`,
	`\bconsistent with pneumonia\b`,
	`\brll pneumonia\b`,
	`\bright lower lobe\b.*\bpneumonia\b`,
)

var ivAntibioticPatterns = compileAll(
	`\biv\b.*\bantibiotic`,
	`\bintravenous\b.*\bantibiotic`,
	`\bceftriaxone\b`,
	`\bvancomycin\b`,
	`\bzosyn\b`,
	`\bcefepime\b`,
	`\bpiperacillin\b`,
	`\bmeropenem\b`,
)

var hemodynamicPatterns = compileAll(
	`\bhypotension\b`,
	`\bhypotensive\b`,
	`\bhemodynamic instability\b`,
	`\bshock\b`,
	`\bunstable\b`,
	`\bsbp\s*<\s*90\b`,
	`\bsystolic\s*<\s*90\b`,
	`\bmap\s*<\s*65\b`,
	`\bpressors?\b`,
	`\bnorepinephrine\b`,
	`\bvasopressor\b`,
)

// DetectPneumonia reports imaging or diagnosis language for pneumonia.
func DetectPneumonia(text normalizer.Text) bool {
	return anyMatch(text, pneumoniaPatterns)
}

// DetectIVAntibiotics reports intravenous antibiotic therapy, either as a
// phrase or as a named parenteral agent.
func DetectIVAntibiotics(text normalizer.Text) bool {
	return anyMatch(text, ivAntibioticPatterns)
}

// DetectHemodynamicInstability reports language describing hypotension,
// shock or vasopressor support.
func DetectHemodynamicInstability(text normalizer.Text) bool {
	return anyMatch(text, hemodynamicPatterns)
}

func anyMatch(text normalizer.Text, patterns []*regexp.Regexp) bool {
	lower := strings.ToLower(text.String())
	for _, re := range patterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}
