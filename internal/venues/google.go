package venues

import (
	"context"
	"fmt"

	places "google.golang.org/api/places/v1"
	"google.golang.org/api/option"

	"github.com/getahuddle/huddle/pkg/models"
)

// searchFieldMask lists the place fields we pay for; Places API v1
// rejects requests without an explicit mask.
const searchFieldMask = "places.displayName,places.formattedAddress,places.location," +
	"places.rating,places.priceLevel,places.regularOpeningHours.weekdayDescriptions," +
	"places.googleMapsUri"

// GoogleSearcher queries the Google Places API (v1 text search).
type GoogleSearcher struct {
	service *places.Service
}

// NewGoogleSearcher builds a searcher authenticated with an API key.
func NewGoogleSearcher(ctx context.Context, apiKey string) (*GoogleSearcher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google places api key is required")
	}
	service, err := places.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create places service: %w", err)
	}
	return &GoogleSearcher{service: service}, nil
}

// Search runs a text search biased toward the midpoint and returns
// candidates sorted nearest-first.
func (g *GoogleSearcher) Search(ctx context.Context, req SearchRequest) ([]models.Place, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("venue query is empty")
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	textReq := &places.GoogleMapsPlacesV1SearchTextRequest{
		TextQuery:      req.Query,
		MaxResultCount: int64(maxResults),
	}
	if req.Midpoint != nil {
		radius := req.RadiusMeters
		if radius <= 0 {
			radius = DefaultRadiusMeters
		}
		textReq.LocationBias = &places.GoogleMapsPlacesV1SearchTextRequestLocationBias{
			Circle: &places.GoogleMapsPlacesV1Circle{
				Center: &places.GoogleTypeLatLng{
					Latitude:  req.Midpoint.Latitude,
					Longitude: req.Midpoint.Longitude,
				},
				Radius: radius,
			},
		}
	}

	call := g.service.Places.SearchText(textReq).Context(ctx)
	call.Header().Set("X-Goog-FieldMask", searchFieldMask)
	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("places text search: %w", err)
	}

	results := make([]models.Place, 0, len(resp.Places))
	for _, p := range resp.Places {
		place := models.Place{
			Address:    p.FormattedAddress,
			Rating:     p.Rating,
			PriceLevel: priceLevelValue(p.PriceLevel),
			URL:        p.GoogleMapsUri,
		}
		if p.DisplayName != nil {
			place.Name = p.DisplayName.Text
		}
		if p.Location != nil {
			place.Location = models.Coordinates{
				Latitude:  p.Location.Latitude,
				Longitude: p.Location.Longitude,
			}
		}
		if p.RegularOpeningHours != nil {
			place.OpeningHours = p.RegularOpeningHours.WeekdayDescriptions
		}
		results = append(results, place)
	}

	RankByMidpoint(results, req.Midpoint)
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

func priceLevelValue(level string) int {
	switch level {
	case "PRICE_LEVEL_FREE", "PRICE_LEVEL_INEXPENSIVE":
		return 1
	case "PRICE_LEVEL_MODERATE":
		return 2
	case "PRICE_LEVEL_EXPENSIVE":
		return 3
	case "PRICE_LEVEL_VERY_EXPENSIVE":
		return 4
	default:
		return 0
	}
}
