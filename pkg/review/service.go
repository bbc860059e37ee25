// Package review runs the admission-review pipeline: normalize the note,
// extract features, evaluate the admission criteria and have the narrative
// rewritten.
package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/synaptica-ai/admission-review/pkg/common/logger"
	"github.com/synaptica-ai/admission-review/pkg/dlp"
	"github.com/synaptica-ai/admission-review/pkg/features"
	"github.com/synaptica-ai/admission-review/pkg/guideline"
	"github.com/synaptica-ai/admission-review/pkg/normalizer"
	"github.com/synaptica-ai/admission-review/pkg/observability/metrics"
	"github.com/synaptica-ai/admission-review/pkg/rewrite"
	"github.com/synaptica-ai/admission-review/pkg/rules"
)

const (
	kindText      = "text"
	kindGuideline = "guideline"
	kindProfile   = "profile"
)

// Bundle is the response for every analyze operation.
type Bundle struct {
	AnalysisID      string                  `json:"analysisId"`
	RevisedNote     string                  `json:"revisedNote"`
	MissingCriteria []rules.CriterionResult `json:"missingCriteria"`
	Score           int                     `json:"score"`
	Level           rules.Level             `json:"level"`
	Justifications  []string                `json:"justifications"`
	Features        features.FeatureSet     `json:"features"`
	Thresholds      rules.Thresholds        `json:"thresholds"`
	RewriteError    string                  `json:"rewriteError,omitempty"`
}

type Service struct {
	engine     *rules.Engine
	guidelines *guideline.Service
	rewriter   rewrite.Rewriter
	redactor   *dlp.Detector
	events     *EventPublisher
}

// NewService wires the pipeline. rewriter, redactor and events may be nil:
// without a rewriter the normalized note is returned as the narrative,
// without a redactor the note is sent to the rewriter as is, and without
// events nothing is published.
func NewService(engine *rules.Engine, guidelines *guideline.Service, rewriter rewrite.Rewriter, redactor *dlp.Detector, events *EventPublisher) *Service {
	return &Service{
		engine:     engine,
		guidelines: guidelines,
		rewriter:   rewriter,
		redactor:   redactor,
		events:     events,
	}
}

type request struct {
	kind          string
	correlationID string
	note          normalizer.Text
	thresholds    rules.Thresholds
	context       func(rules.Evaluation) string
}

// Analyze reviews a note against the base thresholds.
func (s *Service) Analyze(ctx context.Context, note string) Bundle {
	return s.analyzeText(ctx, note, "")
}

func (s *Service) analyzeText(ctx context.Context, note, correlationID string) Bundle {
	return s.run(ctx, request{
		kind:          kindText,
		correlationID: correlationID,
		note:          normalizer.Normalize(note),
		thresholds:    s.guidelines.Base(),
		context: func(ev rules.Evaluation) string {
			return strings.Join(ev.Findings, "\n")
		},
	})
}

// AnalyzeWithGuideline reviews a note against thresholds derived from a
// guideline document. An unreadable document leaves the base thresholds in
// place.
func (s *Service) AnalyzeWithGuideline(ctx context.Context, note string, document []byte) Bundle {
	doc := s.guidelines.Load(ctx, document)
	metrics.ObserveGuidelineDocument()

	return s.run(ctx, request{
		kind:       kindGuideline,
		note:       normalizer.Normalize(note),
		thresholds: doc.Thresholds,
		context:    guidelineContext(doc.Summary()),
	})
}

// AnalyzeWithProfile reviews a note against a stored guideline profile.
func (s *Service) AnalyzeWithProfile(ctx context.Context, note, profileName string) (Bundle, error) {
	profile, err := s.guidelines.Profile(ctx, profileName)
	if err != nil {
		return Bundle{}, err
	}

	return s.run(ctx, request{
		kind:       kindProfile,
		note:       normalizer.Normalize(note),
		thresholds: profile.Thresholds,
		context:    guidelineContext(profile.Summary),
	}), nil
}

func guidelineContext(summary string) func(rules.Evaluation) string {
	return func(ev rules.Evaluation) string {
		return fmt.Sprintf("\nGuideline Summary:\n%s\n\nExtracted Rule Justifications:\n%s\n",
			summary, strings.Join(ev.Findings, "; "))
	}
}

func (s *Service) run(ctx context.Context, req request) Bundle {
	start := time.Now()
	analysisID := uuid.New().String()

	fs := features.Extract(req.note)
	ev := s.engine.Evaluate(fs, req.thresholds)

	bundle := Bundle{
		AnalysisID:      analysisID,
		MissingCriteria: ev.MissingCriteria,
		Score:           ev.Score,
		Level:           ev.Level,
		Justifications:  ev.Justifications,
		Features:        fs,
		Thresholds:      req.thresholds,
	}
	bundle.RevisedNote, bundle.RewriteError = s.rewrite(ctx, analysisID, req.note, req.context(ev))

	metrics.ObserveAnalysis(string(ev.Level), req.kind != kindText)
	logger.WithFields(map[string]interface{}{
		"analysis_id": analysisID,
		"kind":        req.kind,
		"score":       ev.Score,
		"level":       ev.Level,
		"degraded":    bundle.RewriteError != "",
		"duration":    time.Since(start).Milliseconds(),
	}).Info("admission review completed")

	s.events.publish(ctx, req, bundle)
	return bundle
}

// rewrite never fails: a rewriter error yields the normalized note with the
// error appended, and the error text is also returned on its own.
func (s *Service) rewrite(ctx context.Context, analysisID string, note normalizer.Text, supporting string) (string, string) {
	if s.rewriter == nil {
		return note.String(), ""
	}

	outbound := note.String()
	if s.redactor != nil {
		var masked int
		outbound, masked = s.redactor.Redact(outbound)
		metrics.ObserveRedactions(masked)
	}

	revised, err := s.rewriter.Rewrite(ctx, outbound, supporting)
	if err == nil {
		return revised, ""
	}

	rerr := rewrite.AsRewriteError(err)
	metrics.ObserveRewriterFailure()
	logger.Log.WithError(rerr).WithFields(map[string]interface{}{
		"analysis_id": analysisID,
		"kind":        rerr.Kind,
	}).Warn("narrative rewrite failed, returning original note")

	return note.String() + "\n\nLLM error: " + rerr.Error(), rerr.Error()
}
