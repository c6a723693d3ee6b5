package models

// CacheEntry is the per-participant-pair scheduling context kept between
// conversation turns. It lets a later edit reuse the prior search results
// instead of redoing them. Entries expire after a short TTL.
type CacheEntry struct {
	// Places are the venues found for the pair's last search.
	Places []Place `json:"places,omitempty"`
	// Template is the event template as of the last turn.
	Template *EventTemplate `json:"template,omitempty"`
	// PreviousResult is the last finalized event, if one was produced.
	PreviousResult *FinalEvent `json:"previous_result,omitempty"`
}
