package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/synaptica-ai/admission-review/pkg/features"
)

type Status string

const (
	StatusMet     Status = "Met"
	StatusPartial Status = "Partial"
	StatusMissing Status = "Missing"
)

const noActionNeeded = "No additional action needed."

// Outcome is what a criterion concludes about one feature set.
type Outcome struct {
	Status        Status
	Points        int
	Justification string
	Evidence      string
	Confidence    float64
}

// Criterion is one admission-necessity indicator. Action is the remediation
// prompt shown whenever the criterion is not Met.
type Criterion struct {
	Name      string
	Action    string
	Guideline func(th Thresholds) string
	Assess    func(fs features.FeatureSet, th Thresholds) Outcome
}

// DefaultCriteria returns the criteria in evaluation order. Justifications
// and the checklist follow this order.
func DefaultCriteria() []Criterion {
	return []Criterion{
		oxygenSaturation,
		pneumonia,
		creatinine,
		troponin,
		bloodPressure,
		ivAntibiotics,
	}
}

var oxygenSaturation = Criterion{
	Name:   "Oxygen saturation",
	Action: "Document oxygen saturation and need for supplemental oxygen.",
	Guideline: func(th Thresholds) string {
		return fmt.Sprintf("MCG suggests admission if SpO2 < %d%%.", th.O2Sat)
	},
	Assess: func(fs features.FeatureSet, th Thresholds) Outcome {
		if fs.O2Sat == nil {
			return Outcome{Status: StatusMissing, Evidence: "No oxygen saturation documented.", Confidence: 0.9}
		}
		out := Outcome{Evidence: fmt.Sprintf("SpO2: %d", *fs.O2Sat)}
		if *fs.O2Sat < th.O2Sat {
			out.Status = StatusMet
			out.Points = 3
			out.Justification = fmt.Sprintf("Hypoxia documented (SpO2 %d%%).", *fs.O2Sat)
			out.Confidence = 0.95
			return out
		}
		out.Status = StatusPartial
		out.Confidence = 0.75
		return out
	},
}

var pneumonia = Criterion{
	Name:      "Radiographic evidence of pneumonia",
	Action:    "Document imaging findings clearly.",
	Guideline: static("MCG requires objective imaging confirmation."),
	Assess: func(fs features.FeatureSet, _ Thresholds) Outcome {
		if !fs.Pneumonia {
			return Outcome{Status: StatusMissing, Evidence: "No imaging documentation found.", Confidence: 0.85}
		}
		return Outcome{
			Status:        StatusMet,
			Points:        2,
			Justification: "Radiographic evidence of pneumonia documented.",
			Evidence:      "Imaging suggests pneumonia.",
			Confidence:    0.9,
		}
	},
}

var creatinine = Criterion{
	Name:      "Creatinine",
	Action:    "Document renal function.",
	Guideline: static("Renal dysfunction increases severity and may support admission."),
	Assess: func(fs features.FeatureSet, _ Thresholds) Outcome {
		if fs.Creatinine == nil {
			return Outcome{Status: StatusMissing, Evidence: "No creatinine value documented.", Confidence: 0.8}
		}
		return Outcome{Status: StatusMet, Evidence: "Creatinine: " + formatFloat(*fs.Creatinine), Confidence: 0.8}
	},
}

var troponin = Criterion{
	Name:      "Troponin documentation",
	Action:    "Document troponin if clinically indicated.",
	Guideline: static("Cardiac involvement should be ruled out in elderly patients."),
	Assess: func(fs features.FeatureSet, _ Thresholds) Outcome {
		if fs.Troponin == nil {
			return Outcome{Status: StatusMissing, Evidence: "No troponin result documented.", Confidence: 0.75}
		}
		return Outcome{Status: StatusMet, Evidence: "Troponin: " + formatFloat(*fs.Troponin), Confidence: 0.8}
	},
}

var bloodPressure = Criterion{
	Name:      "Blood pressure",
	Action:    "Document blood pressure and hemodynamic status.",
	Guideline: static("Hemodynamic instability is an admission criterion."),
	Assess: func(fs features.FeatureSet, _ Thresholds) Outcome {
		if fs.SBP == nil {
			return Outcome{Status: StatusMissing, Evidence: "No systolic blood pressure documented.", Confidence: 0.85}
		}
		return Outcome{Status: StatusMet, Evidence: fmt.Sprintf("SBP: %d", *fs.SBP), Confidence: 0.85}
	},
}

// IV antibiotics support the narrative but carry no points.
var ivAntibiotics = Criterion{
	Name:      "IV antibiotics",
	Action:    "Document IV antibiotic administration.",
	Guideline: static("MCG supports inpatient care when IV antibiotics are required."),
	Assess: func(fs features.FeatureSet, _ Thresholds) Outcome {
		if !fs.IVAntibiotics {
			return Outcome{Status: StatusMissing, Evidence: "No intravenous antibiotic therapy documented.", Confidence: 0.9}
		}
		return Outcome{
			Status:        StatusMet,
			Justification: "IV antibiotics documented.",
			Evidence:      "IV antibiotics documented.",
			Confidence:    0.9,
		}
	},
}

func static(text string) func(Thresholds) string {
	return func(Thresholds) string { return text }
}

// formatFloat renders lab values the way they are usually charted: whole
// numbers keep one decimal place.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
