package features

import (
	"testing"

	"github.com/synaptica-ai/admission-review/pkg/normalizer"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func show[T any](v *T) interface{} {
	if v == nil {
		return "<nil>"
	}
	return *v
}

func TestExtractAge(t *testing.T) {
	cases := []struct {
		in   string
		want *int
	}{
		{"78-year-old male with cough", intPtr(78)},
		{"78 year old male", intPtr(78)},
		{"a 102-year old woman", intPtr(102)},
		{"Age: 64, female", intPtr(64)},
		{"age 7", intPtr(7)},
		{"no demographics", nil},
	}
	for _, tc := range cases {
		if got := ExtractAge(normalizer.Text(tc.in)); !equalInt(got, tc.want) {
			t.Errorf("ExtractAge(%q) = %v, want %v", tc.in, show(got), show(tc.want))
		}
	}
}

func TestExtractO2Sat(t *testing.T) {
	cases := []struct {
		in   string
		want *int
	}{
		{"SpO2 88%", intPtr(88)},
		{"SpO2 150%", nil},
		{"S P O 2: 91 on room air", intPtr(91)},
		{"oxygen saturation of 86", intPtr(86)},
		{"O2 sat 150, repeat 92% on 2L", intPtr(92)},
		{"sats 89 % on RA", intPtr(89)},
		{"SpO2 45%", nil},
		{"afebrile", nil},
	}
	for _, tc := range cases {
		if got := ExtractO2Sat(normalizer.Text(tc.in)); !equalInt(got, tc.want) {
			t.Errorf("ExtractO2Sat(%q) = %v, want %v", tc.in, show(got), show(tc.want))
		}
	}
}

func TestExtractCreatinine(t *testing.T) {
	cases := []struct {
		in   string
		want *float64
	}{
		{"CREATININE. 1.8", floatPtr(1.8)},
		{"Creatinine: 2 mg/dL", floatPtr(2)},
		{"creatinine elevated 3.4", floatPtr(3.4)},
		{"creatinine was elevated at 3.4", nil},
		{"Creatinine 25", nil},
		{"Creatinine 0.05", nil},
		{"creatinine pending", nil},
	}
	for _, tc := range cases {
		if got := ExtractCreatinine(normalizer.Text(tc.in)); !equalFloat(got, tc.want) {
			t.Errorf("ExtractCreatinine(%q) = %v, want %v", tc.in, show(got), show(tc.want))
		}
	}
}

func TestExtractTroponin(t *testing.T) {
	cases := []struct {
		in   string
		want *float64
	}{
		{"Troponin <0.01", floatPtr(0.01)},
		{"troponin 0.04 ng/mL", floatPtr(0.04)},
		{"Troponin 150", nil},
		{"troponin neg x2", floatPtr(2)},
		{"troponin negative x2", nil},
		{"no cardiac markers", nil},
	}
	for _, tc := range cases {
		if got := ExtractTroponin(normalizer.Text(tc.in)); !equalFloat(got, tc.want) {
			t.Errorf("ExtractTroponin(%q) = %v, want %v", tc.in, show(got), show(tc.want))
		}
	}
}

func TestExtractSBP(t *testing.T) {
	cases := []struct {
		in   string
		want *int
	}{
		{"SBP: 142", intPtr(142)},
		{"152/68", intPtr(152)},
		{"15 2/ 68", intPtr(152)},
		{"BP 98 / 60 HR 110", intPtr(98)},
		{"Seen 12/25. SBP: 142", intPtr(142)},
		{"BP 300/80", nil},
		{"no vitals", nil},
	}
	for _, tc := range cases {
		if got := ExtractSBP(normalizer.Text(tc.in)); !equalInt(got, tc.want) {
			t.Errorf("ExtractSBP(%q) = %v, want %v", tc.in, show(got), show(tc.want))
		}
	}
}

func TestExtractSBPDoesNotRetryLaterPairs(t *testing.T) {
	// The first pair is implausible; the later plausible pair of the same
	// form is not considered, and no other stage matches.
	got := ExtractSBP(normalizer.Text("10/12 then 98/60"))
	if got != nil {
		t.Fatalf("expected nil, got %d", *got)
	}
}

func TestNumericExtractorsStayInRange(t *testing.T) {
	inputs := []string{
		"SpO2 999% 12% 49% 101%",
		"Creatinine 0.0 creatinine 99.9 CREATININE. 20.5",
		"troponin 1000 troponin 100.5",
		"BP 999/999 59/40 SBP: 251",
		"SpO2 100% Creatinine 20 troponin 100 SBP 250",
		"SpO2 50% Creatinine 0.1 troponin 0 BP 60/40",
		"5 0 . 0 % / / 1 2 3 / 4 5",
		"",
	}
	for _, in := range inputs {
		text := normalizer.Normalize(in)
		if v := ExtractO2Sat(text); v != nil && (*v < MinO2Sat || *v > MaxO2Sat) {
			t.Errorf("o2_sat %d out of range for %q", *v, in)
		}
		if v := ExtractCreatinine(text); v != nil && (*v < MinCreatinine || *v > MaxCreatinine) {
			t.Errorf("creatinine %v out of range for %q", *v, in)
		}
		if v := ExtractTroponin(text); v != nil && (*v < MinTroponin || *v > MaxTroponin) {
			t.Errorf("troponin %v out of range for %q", *v, in)
		}
		if v := ExtractSBP(text); v != nil && (*v < MinSBP || *v > MaxSBP) {
			t.Errorf("sbp %d out of range for %q", *v, in)
		}
	}
}

func TestDetectors(t *testing.T) {
	cases := []struct {
		name   string
		detect func(normalizer.Text) bool
		in     string
		want   bool
	}{
		{"pneumonia keyword", DetectPneumonia, "CXR: RLL consolidation", true},
		{"pneumonia lobe phrase", DetectPneumonia, "Right lower lobe findings c/w pneumonia", true},
		{"pneumonia infiltrates", DetectPneumonia, "bilateral infiltrates", true},
		{"pneumonia absent", DetectPneumonia, "clear lungs", false},
		{"iv phrase", DetectIVAntibiotics, "started IV broad-spectrum antibiotics", true},
		{"intravenous phrase", DetectIVAntibiotics, "intravenous antibiotic therapy", true},
		{"named agent", DetectIVAntibiotics, "given Ceftriaxone 1g", true},
		{"oral only", DetectIVAntibiotics, "oral amoxicillin", false},
		{"hypotensive", DetectHemodynamicInstability, "patient hypotensive", true},
		{"map threshold", DetectHemodynamicInstability, "MAP < 65 despite fluids", true},
		{"pressors", DetectHemodynamicInstability, "on pressors", true},
		{"stable", DetectHemodynamicInstability, "hemodynamically stable", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.detect(normalizer.Text(tc.in)); got != tc.want {
				t.Fatalf("detect(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	note := normalizer.Normalize(`78-year-old male with productive cough.
Vitals: BP 15 2/ 68, SpO 2 86 % on RA.
CREATININE. 1 . 8  Troponin 0.02
CXR: RLL consolidation. Started ceftriaxone.`)

	fs := Extract(note)

	if !equalInt(fs.Age, intPtr(78)) {
		t.Errorf("age = %v", show(fs.Age))
	}
	if !equalInt(fs.O2Sat, intPtr(86)) {
		t.Errorf("o2_sat = %v", show(fs.O2Sat))
	}
	if !equalFloat(fs.Creatinine, floatPtr(1.8)) {
		t.Errorf("creatinine = %v", show(fs.Creatinine))
	}
	if !equalFloat(fs.Troponin, floatPtr(0.02)) {
		t.Errorf("troponin = %v", show(fs.Troponin))
	}
	if !equalInt(fs.SBP, intPtr(152)) {
		t.Errorf("sbp = %v", show(fs.SBP))
	}
	if !fs.Pneumonia || !fs.IVAntibiotics {
		t.Errorf("expected pneumonia and iv antibiotics flags, got %+v", fs)
	}
	if fs.HemodynamicPhrase {
		t.Errorf("did not expect hemodynamic phrase")
	}
}

func TestRegistry(t *testing.T) {
	want := []string{
		NameAge, NameO2Sat, NameCreatinine, NameTroponin,
		NameSBP, NamePneumonia, NameIVAntibiotics, NameHemodynamicPhrase,
	}
	if len(Registry) != len(want) {
		t.Fatalf("expected %d extractors, got %d", len(want), len(Registry))
	}
	for i, name := range want {
		if Registry[i].Name != name {
			t.Errorf("extractor %d = %q, want %q", i, Registry[i].Name, name)
		}
	}

	var fs FeatureSet
	Registry[4].Apply(normalizer.Text("SBP: 120"), &fs)
	if !equalInt(fs.SBP, intPtr(120)) {
		t.Fatalf("expected 120, got %v", show(fs.SBP))
	}
}
