// Package stream carries scheduling progress to the caller as an ordered
// sequence of envelopes over a single outbound channel per request.
package stream

import (
	"time"

	"github.com/getahuddle/huddle/pkg/models"
)

// Type tags an envelope.
type Type string

const (
	// TypeAcknowledgment is the immediate "typing" acknowledgment.
	TypeAcknowledgment Type = "acknowledgment"
	// TypeProgress is an advisory progress update. Callers must not
	// depend on its exact wording.
	TypeProgress Type = "progress"
	// TypeContent is the assistant's message for this turn.
	TypeContent Type = "content"
	// TypeEvent carries the finalized calendar event.
	TypeEvent Type = "event"
	// TypeEnhancementPending signals a background search that will finish
	// after this stream closes; its result lands in the cache.
	TypeEnhancementPending Type = "enhancement_pending"
	// TypeError is the single terminal error envelope.
	TypeError Type = "error"
)

// Envelope is one element of the outbound stream.
type Envelope struct {
	// Type tags the payload.
	Type Type `json:"type"`
	// Message is the human-readable payload for text-bearing envelopes.
	Message string `json:"message,omitempty"`
	// Event is set on TypeEvent envelopes.
	Event *models.FinalEvent `json:"event,omitempty"`
	// EnrichmentID identifies the pending background search result.
	EnrichmentID string `json:"enrichment_id,omitempty"`
	// Timestamp is when the envelope was emitted.
	Timestamp time.Time `json:"timestamp"`
}
