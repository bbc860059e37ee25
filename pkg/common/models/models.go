package models

import "time"

// Event is the envelope exchanged on the event bus.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // clinical-note, admission-review
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}
