package review

import (
	"context"

	"github.com/synaptica-ai/admission-review/pkg/common/logger"
	"github.com/synaptica-ai/admission-review/pkg/common/models"
	"github.com/synaptica-ai/admission-review/pkg/observability/metrics"
)

const (
	EventTypeClinicalNote    = "clinical-note"
	EventTypeAdmissionReview = "admission-review"

	eventSource = "admission-review-service"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	PublishEvent(ctx context.Context, eventType, source, key string, data map[string]interface{}) error
}

// EventPublisher emits a summary of each analysis. Summaries carry the
// verdict and checklist statuses only, never note text.
type EventPublisher struct {
	publisher Publisher
}

func NewEventPublisher(p Publisher) *EventPublisher {
	return &EventPublisher{publisher: p}
}

func (e *EventPublisher) publish(ctx context.Context, req request, b Bundle) {
	if e == nil || e.publisher == nil {
		return
	}

	criteria := make([]map[string]interface{}, 0, len(b.MissingCriteria))
	for _, c := range b.MissingCriteria {
		criteria = append(criteria, map[string]interface{}{
			"criteria":   c.Criteria,
			"status":     c.Status,
			"confidence": c.Confidence,
		})
	}

	data := map[string]interface{}{
		"analysis_id": b.AnalysisID,
		"kind":        req.kind,
		"score":       b.Score,
		"level":       b.Level,
		"thresholds":  b.Thresholds,
		"criteria":    criteria,
		"degraded":    b.RewriteError != "",
	}
	key := b.AnalysisID
	if req.correlationID != "" {
		data["correlation_id"] = req.correlationID
		key = req.correlationID
	}

	if err := e.publisher.PublishEvent(ctx, EventTypeAdmissionReview, eventSource, key, data); err != nil {
		metrics.ObservePublishFailure()
		logger.Log.WithError(err).WithField("analysis_id", b.AnalysisID).Error("failed to publish admission review event")
	}
}

// HandleNoteEvent analyzes a note delivered on the event bus. Events without
// a note are logged and acknowledged so they are not redelivered.
func (s *Service) HandleNoteEvent(ctx context.Context, event models.Event) error {
	note, ok := event.Data["note"].(string)
	if !ok {
		logger.WithFields(map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.Type,
		}).Warn("clinical note event without note text, skipping")
		return nil
	}

	s.analyzeText(ctx, note, event.ID)
	return nil
}
