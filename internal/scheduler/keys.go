package scheduler

import (
	"strings"
	"time"
)

// cacheTTL is how long cross-turn scheduling context stays valid.
const cacheTTL = 30 * time.Minute

// PairKey derives the cache key for a participant pair. The key is
// order-insensitive so either party's turn reaches the same entry.
func PairKey(participantA, participantB string) string {
	a, b := participantA, participantB
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return "pair:" + a + ":" + b
}

// EnrichmentKey derives the cache key a background search result is
// stored under.
func EnrichmentKey(id string) string {
	return "enrichment:" + id
}
