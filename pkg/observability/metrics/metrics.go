package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	analysesTotal          atomic.Int64
	guidelineAnalyses      atomic.Int64
	levelStronglySupported atomic.Int64
	levelPossible          atomic.Int64
	levelObservation       atomic.Int64
	rewriterFailures       atomic.Int64
	guidelineDocuments     atomic.Int64
	phiRedactions          atomic.Int64
	eventsPublishFailed    atomic.Int64
)

// ObserveAnalysis records one completed analysis and its level.
func ObserveAnalysis(level string, withGuideline bool) {
	analysesTotal.Add(1)
	if withGuideline {
		guidelineAnalyses.Add(1)
	}
	switch level {
	case "Inpatient - strongly supported":
		levelStronglySupported.Add(1)
	case "Inpatient - possible":
		levelPossible.Add(1)
	default:
		levelObservation.Add(1)
	}
}

func ObserveRewriterFailure() {
	rewriterFailures.Add(1)
}

func ObserveGuidelineDocument() {
	guidelineDocuments.Add(1)
}

func ObserveRedactions(n int) {
	phiRedactions.Add(int64(n))
}

func ObservePublishFailure() {
	eventsPublishFailed.Add(1)
}

type Snapshot struct {
	Analyses           int64
	GuidelineAnalyses  int64
	StronglySupported  int64
	Possible           int64
	Observation        int64
	RewriterFailures   int64
	GuidelineDocuments int64
	PHIRedactions      int64
	PublishFailures    int64
}

func Current() Snapshot {
	return Snapshot{
		Analyses:           analysesTotal.Load(),
		GuidelineAnalyses:  guidelineAnalyses.Load(),
		StronglySupported:  levelStronglySupported.Load(),
		Possible:           levelPossible.Load(),
		Observation:        levelObservation.Load(),
		RewriterFailures:   rewriterFailures.Load(),
		GuidelineDocuments: guidelineDocuments.Load(),
		PHIRedactions:      phiRedactions.Load(),
		PublishFailures:    eventsPublishFailed.Load(),
	}
}

func WritePrometheus(w http.ResponseWriter) {
	s := Current()
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	fmt.Fprintf(w, "# HELP admission_review_analyses_total Number of notes analyzed.\n")
	fmt.Fprintf(w, "# TYPE admission_review_analyses_total counter\n")
	fmt.Fprintf(w, "admission_review_analyses_total %d\n", s.Analyses)

	fmt.Fprintf(w, "# HELP admission_review_guideline_analyses_total Number of analyses that used guideline-derived thresholds.\n")
	fmt.Fprintf(w, "# TYPE admission_review_guideline_analyses_total counter\n")
	fmt.Fprintf(w, "admission_review_guideline_analyses_total %d\n", s.GuidelineAnalyses)

	fmt.Fprintf(w, "# HELP admission_review_level_total Analyses by admission level.\n")
	fmt.Fprintf(w, "# TYPE admission_review_level_total counter\n")
	fmt.Fprintf(w, "admission_review_level_total{level=\"strongly_supported\"} %d\n", s.StronglySupported)
	fmt.Fprintf(w, "admission_review_level_total{level=\"possible\"} %d\n", s.Possible)
	fmt.Fprintf(w, "admission_review_level_total{level=\"observation\"} %d\n", s.Observation)

	fmt.Fprintf(w, "# HELP admission_review_rewriter_failures_total Narrative rewrites that degraded to the original note.\n")
	fmt.Fprintf(w, "# TYPE admission_review_rewriter_failures_total counter\n")
	fmt.Fprintf(w, "admission_review_rewriter_failures_total %d\n", s.RewriterFailures)

	fmt.Fprintf(w, "# HELP admission_review_guideline_documents_total Guideline documents processed.\n")
	fmt.Fprintf(w, "# TYPE admission_review_guideline_documents_total counter\n")
	fmt.Fprintf(w, "admission_review_guideline_documents_total %d\n", s.GuidelineDocuments)

	fmt.Fprintf(w, "# HELP admission_review_phi_redactions_total Identifiers masked before rewriting.\n")
	fmt.Fprintf(w, "# TYPE admission_review_phi_redactions_total counter\n")
	fmt.Fprintf(w, "admission_review_phi_redactions_total %d\n", s.PHIRedactions)

	fmt.Fprintf(w, "# HELP admission_review_event_publish_failures_total Review events that could not be published.\n")
	fmt.Fprintf(w, "# TYPE admission_review_event_publish_failures_total counter\n")
	fmt.Fprintf(w, "admission_review_event_publish_failures_total %d\n", s.PublishFailures)
}
