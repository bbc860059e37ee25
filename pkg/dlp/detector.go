// Package dlp masks direct patient identifiers in note text before it is
// sent to an external collaborator.
package dlp

import (
	"fmt"
	"regexp"
)

type compiledRule struct {
	rule Rule
	re   *regexp.Regexp
}

type Detector struct {
	rules []compiledRule
}

// Finding locates one identifier in the scanned text.
type Finding struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Type  string `json:"type"`
}

func NewDetector(cfg RulesConfig) (*Detector, error) {
	var compiled []compiledRule
	for _, rule := range cfg.Rules {
		if !rule.Enabled {
			continue
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile dlp rule %s: %w", rule.Name, err)
		}
		compiled = append(compiled, compiledRule{rule: rule, re: re})
	}
	return &Detector{rules: compiled}, nil
}

// Detect reports every rule match in text, grouped by rule order.
func (d *Detector) Detect(text string) []Finding {
	if d == nil {
		return nil
	}
	var findings []Finding
	for _, rule := range d.rules {
		for _, match := range rule.re.FindAllStringIndex(text, -1) {
			findings = append(findings, Finding{Start: match[0], End: match[1], Type: rule.rule.Type})
		}
	}
	return findings
}

// Redact replaces every match with its rule's mask and reports how many
// identifiers were masked.
func (d *Detector) Redact(text string) (string, int) {
	if d == nil {
		return text, 0
	}
	count := len(d.Detect(text))
	for _, rule := range d.rules {
		text = rule.re.ReplaceAllLiteralString(text, rule.rule.Mask)
	}
	return text, count
}
