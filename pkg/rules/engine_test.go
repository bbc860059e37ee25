package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/synaptica-ai/admission-review/pkg/features"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestEvaluateHypoxicPneumonia(t *testing.T) {
	fs := features.FeatureSet{
		O2Sat:         intPtr(85),
		Pneumonia:     true,
		IVAntibiotics: true,
	}

	got := NewEngine().Evaluate(fs, DefaultThresholds())

	if got.Score != 5 {
		t.Fatalf("expected score 5, got %d", got.Score)
	}
	if got.Level != LevelPossible {
		t.Fatalf("expected %q, got %q", LevelPossible, got.Level)
	}
	want := []string{
		"Hypoxia documented (SpO2 85%).",
		"Radiographic evidence of pneumonia documented.",
	}
	if len(got.Justifications) != len(want) {
		t.Fatalf("expected %d justifications, got %v", len(want), got.Justifications)
	}
	for i := range want {
		if got.Justifications[i] != want[i] {
			t.Errorf("justification %d = %q, want %q", i, got.Justifications[i], want[i])
		}
	}

	// IV antibiotics reach the narrative without scoring points.
	wantFindings := append(want, "IV antibiotics documented.")
	if len(got.Findings) != len(wantFindings) {
		t.Fatalf("expected %d findings, got %v", len(wantFindings), got.Findings)
	}
	for i := range wantFindings {
		if got.Findings[i] != wantFindings[i] {
			t.Errorf("finding %d = %q, want %q", i, got.Findings[i], wantFindings[i])
		}
	}

	statuses := []Status{StatusMet, StatusMet, StatusMissing, StatusMissing, StatusMissing, StatusMet}
	for i, s := range statuses {
		if got.MissingCriteria[i].Status != s {
			t.Errorf("criterion %d (%s) status = %s, want %s", i, got.MissingCriteria[i].Criteria, got.MissingCriteria[i].Status, s)
		}
	}
}

func TestEvaluateNothingDocumented(t *testing.T) {
	got := NewEngine().Evaluate(features.FeatureSet{}, DefaultThresholds())

	if got.Score != 0 {
		t.Fatalf("expected score 0, got %d", got.Score)
	}
	if got.Level != LevelObservation {
		t.Fatalf("expected %q, got %q", LevelObservation, got.Level)
	}
	if len(got.Justifications) != 0 || len(got.Findings) != 0 {
		t.Fatalf("expected no justifications, got %v / %v", got.Justifications, got.Findings)
	}
	if len(got.MissingCriteria) != 6 {
		t.Fatalf("expected 6 checklist entries, got %d", len(got.MissingCriteria))
	}
	for _, c := range got.MissingCriteria {
		if c.Status != StatusMissing {
			t.Errorf("%s: expected Missing, got %s", c.Criteria, c.Status)
		}
		if c.Action == noActionNeeded {
			t.Errorf("%s: expected a remediation action", c.Criteria)
		}
	}
}

func TestEvaluateChecklistOrderAndText(t *testing.T) {
	fs := features.FeatureSet{
		O2Sat:      intPtr(95),
		Creatinine: floatPtr(2),
		Troponin:   floatPtr(0.03),
		SBP:        intPtr(152),
	}
	th := DefaultThresholds()
	th.O2Sat = 92

	got := NewEngine().Evaluate(fs, th)

	want := []CriterionResult{
		{
			Criteria:   "Oxygen saturation",
			Status:     StatusPartial,
			Evidence:   "SpO2: 95",
			Guideline:  "MCG suggests admission if SpO2 < 92%.",
			Action:     "Document oxygen saturation and need for supplemental oxygen.",
			Confidence: 0.75,
		},
		{
			Criteria:   "Radiographic evidence of pneumonia",
			Status:     StatusMissing,
			Evidence:   "No imaging documentation found.",
			Guideline:  "MCG requires objective imaging confirmation.",
			Action:     "Document imaging findings clearly.",
			Confidence: 0.85,
		},
		{
			Criteria:   "Creatinine",
			Status:     StatusMet,
			Evidence:   "Creatinine: 2.0",
			Guideline:  "Renal dysfunction increases severity and may support admission.",
			Action:     "No additional action needed.",
			Confidence: 0.8,
		},
		{
			Criteria:   "Troponin documentation",
			Status:     StatusMet,
			Evidence:   "Troponin: 0.03",
			Guideline:  "Cardiac involvement should be ruled out in elderly patients.",
			Action:     "No additional action needed.",
			Confidence: 0.8,
		},
		{
			Criteria:   "Blood pressure",
			Status:     StatusMet,
			Evidence:   "SBP: 152",
			Guideline:  "Hemodynamic instability is an admission criterion.",
			Action:     "No additional action needed.",
			Confidence: 0.85,
		},
		{
			Criteria:   "IV antibiotics",
			Status:     StatusMissing,
			Evidence:   "No intravenous antibiotic therapy documented.",
			Guideline:  "MCG supports inpatient care when IV antibiotics are required.",
			Action:     "Document IV antibiotic administration.",
			Confidence: 0.9,
		},
	}

	if len(got.MissingCriteria) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got.MissingCriteria))
	}
	for i := range want {
		if got.MissingCriteria[i] != want[i] {
			t.Errorf("entry %d:\n got  %+v\n want %+v", i, got.MissingCriteria[i], want[i])
		}
	}
	if got.Score != 0 || got.Level != LevelObservation {
		t.Fatalf("expected score 0 / observation, got %d / %s", got.Score, got.Level)
	}
}

func TestOxygenThresholdIsStrict(t *testing.T) {
	got := NewEngine().Evaluate(features.FeatureSet{O2Sat: intPtr(90)}, DefaultThresholds())
	if got.MissingCriteria[0].Status != StatusPartial {
		t.Fatalf("SpO2 at threshold should be Partial, got %s", got.MissingCriteria[0].Status)
	}
	if got.Score != 0 {
		t.Fatalf("expected no points, got %d", got.Score)
	}
}

func TestTroponinZeroIsQuoted(t *testing.T) {
	got := NewEngine().Evaluate(features.FeatureSet{Troponin: floatPtr(0)}, DefaultThresholds())
	if got.MissingCriteria[3].Evidence != "Troponin: 0.0" {
		t.Fatalf("unexpected evidence %q", got.MissingCriteria[3].Evidence)
	}
}

func TestLevelForScore(t *testing.T) {
	cases := map[int]Level{
		0: LevelObservation,
		2: LevelObservation,
		3: LevelPossible,
		5: LevelPossible,
		6: LevelStronglySupported,
		9: LevelStronglySupported,
	}
	for score, want := range cases {
		if got := LevelForScore(score); got != want {
			t.Errorf("LevelForScore(%d) = %q, want %q", score, got, want)
		}
	}
}

func TestNewEngineCustomCriteria(t *testing.T) {
	always := Criterion{
		Name:      "Always",
		Action:    "n/a",
		Guideline: static("always"),
		Assess: func(features.FeatureSet, Thresholds) Outcome {
			return Outcome{Status: StatusMet, Points: 7, Justification: "always", Confidence: 1}
		},
	}
	got := NewEngine(always).Evaluate(features.FeatureSet{}, DefaultThresholds())
	if got.Level != LevelStronglySupported || len(got.MissingCriteria) != 1 {
		t.Fatalf("unexpected evaluation %+v", got)
	}
}

func TestLoadThresholds(t *testing.T) {
	th, err := LoadThresholds("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if th != DefaultThresholds() {
		t.Fatalf("expected defaults, got %+v", th)
	}

	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "thresholds:\n  o2_sat_threshold: 92\n  creatinine_threshold: 2.0\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	th, err = LoadThresholds(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Thresholds{O2Sat: 92, Troponin: 0.04, Creatinine: 2.0, SBP: 90}
	if th != want {
		t.Fatalf("expected %+v, got %+v", want, th)
	}

	if _, err := LoadThresholds(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
