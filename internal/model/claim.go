package model

// GeoCoordinates is a WGS84 point attached to a claim.
type GeoCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IsNullIsland reports whether the coordinate is exactly (0,0). Upstream
// extractors emit (0,0) when a location is mentioned but cannot be resolved,
// so the router may treat it as absent.
func (g GeoCoordinates) IsNullIsland() bool {
	return g.Latitude == 0 && g.Longitude == 0
}

// EnvironmentalClaim is a single assertion extracted from a sustainability
// report, e.g. "Planted 5000 trees in the Amazon Rainforest". Claims are
// immutable once extracted.
type EnvironmentalClaim struct {
	Description  string          `json:"description"`
	Location     *GeoCoordinates `json:"location,omitempty"`
	DateClaimed  string          `json:"date_claimed,omitempty"`
	MeasureValue *float64        `json:"measure_value,omitempty"`
	MeasureUnit  string          `json:"measure_unit,omitempty"`
}
