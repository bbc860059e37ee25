package rules

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Thresholds are the cutoffs the criteria compare features against.
type Thresholds struct {
	O2Sat      int     `json:"o2_sat_threshold" yaml:"o2_sat_threshold"`
	Troponin   float64 `json:"troponin_threshold" yaml:"troponin_threshold"`
	Creatinine float64 `json:"creatinine_threshold" yaml:"creatinine_threshold"`
	SBP        int     `json:"sbp_threshold" yaml:"sbp_threshold"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		O2Sat:      90,
		Troponin:   0.04,
		Creatinine: 1.5,
		SBP:        90,
	}
}

// ThresholdOverrides is a partial Thresholds; nil fields keep the base value.
type ThresholdOverrides struct {
	O2Sat      *int     `json:"o2_sat_threshold,omitempty" yaml:"o2_sat_threshold"`
	Troponin   *float64 `json:"troponin_threshold,omitempty" yaml:"troponin_threshold"`
	Creatinine *float64 `json:"creatinine_threshold,omitempty" yaml:"creatinine_threshold"`
	SBP        *int     `json:"sbp_threshold,omitempty" yaml:"sbp_threshold"`
}

// Apply returns base with every non-nil override substituted.
func (o ThresholdOverrides) Apply(base Thresholds) Thresholds {
	if o.O2Sat != nil {
		base.O2Sat = *o.O2Sat
	}
	if o.Troponin != nil {
		base.Troponin = *o.Troponin
	}
	if o.Creatinine != nil {
		base.Creatinine = *o.Creatinine
	}
	if o.SBP != nil {
		base.SBP = *o.SBP
	}
	return base
}

type Config struct {
	Thresholds ThresholdOverrides `yaml:"thresholds"`
}

// LoadThresholds reads default threshold overrides from a YAML file. An empty
// path yields the built-in defaults.
//
//	thresholds:
//	  o2_sat_threshold: 92
func LoadThresholds(path string) (Thresholds, error) {
	if path == "" {
		return DefaultThresholds(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultThresholds(), fmt.Errorf("read rules config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return DefaultThresholds(), fmt.Errorf("parse rules config: %w", err)
	}
	return cfg.Thresholds.Apply(DefaultThresholds()), nil
}
