// Package venues finds candidate meeting places near the midpoint between
// two participants.
package venues

import (
	"context"
	"sort"

	"github.com/getahuddle/huddle/pkg/models"
)

// DefaultMaxResults bounds how many candidates a search returns.
const DefaultMaxResults = 5

// DefaultRadiusMeters is the search bias radius around the midpoint.
const DefaultRadiusMeters = 5000

// SearchRequest describes a venue lookup.
type SearchRequest struct {
	// Query is the free-text venue query, e.g. "cozy wine bar".
	Query string
	// Midpoint biases the search toward a location when set.
	Midpoint *models.Coordinates
	// RadiusMeters bounds the bias circle; DefaultRadiusMeters when zero.
	RadiusMeters float64
	// MaxResults caps the result count; DefaultMaxResults when zero.
	MaxResults int
}

// Searcher finds venues for a request. Implementations must return
// results sorted by distance from the midpoint when one was given.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]models.Place, error)
}

// RankByMidpoint fills DistanceFromMidpointKm for every place and sorts
// nearest-first. Without a midpoint it leaves the provider order intact.
func RankByMidpoint(places []models.Place, midpoint *models.Coordinates) {
	if midpoint == nil {
		return
	}
	for i := range places {
		places[i].DistanceFromMidpointKm = HaversineKm(*midpoint, places[i].Location)
	}
	sort.SliceStable(places, func(i, j int) bool {
		return places[i].DistanceFromMidpointKm < places[j].DistanceFromMidpointKm
	})
}
