// Package features recovers clinical signals from normalized note text.
//
// Each extractor is a pure function over normalizer.Text. Numeric extractors
// return nil when nothing plausible was found; nil never means zero.
package features

import "github.com/synaptica-ai/admission-review/pkg/normalizer"

const (
	NameAge               = "age"
	NameO2Sat             = "o2_sat"
	NameCreatinine        = "creatinine"
	NameTroponin          = "troponin"
	NameSBP               = "sbp"
	NamePneumonia         = "pneumonia"
	NameIVAntibiotics     = "iv_antibiotics"
	NameHemodynamicPhrase = "hemodynamic_phrase"
)

// FeatureSet holds every signal the extractors recover from a single note.
type FeatureSet struct {
	Age               *int     `json:"age"`
	O2Sat             *int     `json:"o2_sat"`
	Creatinine        *float64 `json:"creatinine"`
	Troponin          *float64 `json:"troponin"`
	SBP               *int     `json:"sbp"`
	Pneumonia         bool     `json:"pneumonia"`
	IVAntibiotics     bool     `json:"iv_antibiotics"`
	HemodynamicPhrase bool     `json:"hemodynamic_phrase"`
}

// Extractor binds a named extraction function to its FeatureSet field.
type Extractor struct {
	Name  string
	Apply func(text normalizer.Text, fs *FeatureSet)
}

// Registry lists every extractor. Extractors are independent of each other,
// so order only affects iteration, never results.
var Registry = []Extractor{
	{Name: NameAge, Apply: func(t normalizer.Text, fs *FeatureSet) { fs.Age = ExtractAge(t) }},
	{Name: NameO2Sat, Apply: func(t normalizer.Text, fs *FeatureSet) { fs.O2Sat = ExtractO2Sat(t) }},
	{Name: NameCreatinine, Apply: func(t normalizer.Text, fs *FeatureSet) { fs.Creatinine = ExtractCreatinine(t) }},
	{Name: NameTroponin, Apply: func(t normalizer.Text, fs *FeatureSet) { fs.Troponin = ExtractTroponin(t) }},
	{Name: NameSBP, Apply: func(t normalizer.Text, fs *FeatureSet) { fs.SBP = ExtractSBP(t) }},
	{Name: NamePneumonia, Apply: func(t normalizer.Text, fs *FeatureSet) { fs.Pneumonia = DetectPneumonia(t) }},
	{Name: NameIVAntibiotics, Apply: func(t normalizer.Text, fs *FeatureSet) { fs.IVAntibiotics = DetectIVAntibiotics(t) }},
	{Name: NameHemodynamicPhrase, Apply: func(t normalizer.Text, fs *FeatureSet) { fs.HemodynamicPhrase = DetectHemodynamicInstability(t) }},
}

// Extract runs every registered extractor against text.
func Extract(text normalizer.Text) FeatureSet {
	var fs FeatureSet
	for _, ex := range Registry {
		ex.Apply(text, &fs)
	}
	return fs
}
