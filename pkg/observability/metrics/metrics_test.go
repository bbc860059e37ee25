package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestObserveAnalysisByLevel(t *testing.T) {
	before := Current()

	ObserveAnalysis("Inpatient - possible", true)
	ObserveAnalysis("Observation / outpatient", false)

	after := Current()
	if after.Analyses != before.Analyses+2 {
		t.Fatalf("expected two analyses, got %d", after.Analyses-before.Analyses)
	}
	if after.GuidelineAnalyses != before.GuidelineAnalyses+1 {
		t.Fatalf("expected one guideline analysis, got %d", after.GuidelineAnalyses-before.GuidelineAnalyses)
	}
	if after.Possible != before.Possible+1 || after.Observation != before.Observation+1 {
		t.Fatalf("unexpected level counts %+v", after)
	}
}

func TestWritePrometheus(t *testing.T) {
	ObserveRedactions(2)

	rec := httptest.NewRecorder()
	WritePrometheus(rec)

	body := rec.Body.String()
	for _, name := range []string{
		"admission_review_analyses_total",
		"admission_review_level_total{level=\"possible\"}",
		"admission_review_phi_redactions_total",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("expected %s in exposition", name)
		}
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
}
