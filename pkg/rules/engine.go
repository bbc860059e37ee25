// Package rules scores extracted clinical features against admission
// criteria and derives an admission level.
package rules

import "github.com/synaptica-ai/admission-review/pkg/features"

type Level string

const (
	LevelStronglySupported Level = "Inpatient - strongly supported"
	LevelPossible          Level = "Inpatient - possible"
	LevelObservation       Level = "Observation / outpatient"
)

// Score cutoffs for each level, inclusive.
const (
	StronglySupportedScore = 6
	PossibleScore          = 3
)

// CriterionResult is one checklist entry.
type CriterionResult struct {
	Criteria   string  `json:"criteria"`
	Status     Status  `json:"status"`
	Evidence   string  `json:"evidence"`
	Guideline  string  `json:"guideline"`
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
}

// Evaluation is the engine's verdict. Justifications cover the criteria that
// scored points; Findings holds every affirmative statement, scored or not,
// and is what the narrative rewriter is given. MissingCriteria holds the full
// checklist in criterion order, whatever each entry's status.
type Evaluation struct {
	Score           int               `json:"score"`
	Level           Level             `json:"level"`
	Justifications  []string          `json:"justifications"`
	Findings        []string          `json:"findings"`
	MissingCriteria []CriterionResult `json:"missingCriteria"`
}

type Engine struct {
	criteria []Criterion
}

// NewEngine builds an engine over criteria, or DefaultCriteria when none are
// given.
func NewEngine(criteria ...Criterion) *Engine {
	if len(criteria) == 0 {
		criteria = DefaultCriteria()
	}
	return &Engine{criteria: criteria}
}

// Evaluate assesses every criterion in order.
func (e *Engine) Evaluate(fs features.FeatureSet, th Thresholds) Evaluation {
	result := Evaluation{
		Justifications:  []string{},
		Findings:        []string{},
		MissingCriteria: make([]CriterionResult, 0, len(e.criteria)),
	}

	for _, c := range e.criteria {
		out := c.Assess(fs, th)
		result.Score += out.Points
		if out.Justification != "" {
			result.Findings = append(result.Findings, out.Justification)
			if out.Points > 0 {
				result.Justifications = append(result.Justifications, out.Justification)
			}
		}

		action := c.Action
		if out.Status == StatusMet {
			action = noActionNeeded
		}
		result.MissingCriteria = append(result.MissingCriteria, CriterionResult{
			Criteria:   c.Name,
			Status:     out.Status,
			Evidence:   out.Evidence,
			Guideline:  c.Guideline(th),
			Action:     action,
			Confidence: out.Confidence,
		})
	}

	result.Level = LevelForScore(result.Score)
	return result
}

func LevelForScore(score int) Level {
	switch {
	case score >= StronglySupportedScore:
		return LevelStronglySupported
	case score >= PossibleScore:
		return LevelPossible
	default:
		return LevelObservation
	}
}
