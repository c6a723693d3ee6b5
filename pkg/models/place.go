package models

// Coordinates is a geographic point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is a candidate venue returned by the place-search collaborator.
// Places are immutable once fetched and cached per participant pair.
type Place struct {
	// Name is the venue's display name.
	Name string `json:"name"`
	// Address is the formatted street address.
	Address string `json:"address"`
	// Location is the venue's coordinates.
	Location Coordinates `json:"location"`
	// Rating is the aggregate user rating, 0 when unknown.
	Rating float64 `json:"rating,omitempty"`
	// PriceLevel ranges 0 (unknown) to 4 (most expensive).
	PriceLevel int `json:"price_level,omitempty"`
	// OpeningHours holds human-readable weekday descriptions.
	OpeningHours []string `json:"opening_hours,omitempty"`
	// DistanceFromMidpointKm is the distance from the midpoint between
	// the two participants' locations.
	DistanceFromMidpointKm float64 `json:"distance_from_midpoint_km,omitempty"`
	// URL links to the venue's listing.
	URL string `json:"url,omitempty"`
}
