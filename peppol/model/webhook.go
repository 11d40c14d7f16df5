package model

import "time"

// StatusEvent is the normalized shape of a provider webhook callback.
// Provider integrations map their own field names onto it before ingestion.
type StatusEvent struct {
	Provider   string    `json:"provider"`
	DocumentID string    `json:"document_id"`
	EventType  string    `json:"event"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at,omitempty"`
}
