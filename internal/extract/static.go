package extract

import (
	"context"

	"github.com/greenaudit/greenaudit/internal/model"
)

// StaticExtractor returns a fixed claim set. Used in simulated mode when no
// LLM credentials are configured, so the full workflow stays demoable.
type StaticExtractor struct{}

// NewStaticExtractor creates the demo extractor.
func NewStaticExtractor() *StaticExtractor {
	return &StaticExtractor{}
}

// ExtractClaims ignores the text and returns two representative claims.
func (e *StaticExtractor) ExtractClaims(_ context.Context, _ string) ([]model.EnvironmentalClaim, error) {
	trees := 5000.0
	hectares := 50.0
	return []model.EnvironmentalClaim{
		{
			Description:  "Planted 5000 trees in the Amazon Rainforest",
			Location:     &model.GeoCoordinates{Latitude: -3.4653, Longitude: -62.2159},
			DateClaimed:  "2025-06-15",
			MeasureValue: &trees,
			MeasureUnit:  "trees",
		},
		{
			Description:  "Restored 50 hectares of coastal mangroves",
			Location:     &model.GeoCoordinates{Latitude: 9.9281, Longitude: -84.0907},
			DateClaimed:  "2025-08-20",
			MeasureValue: &hectares,
			MeasureUnit:  "hectares",
		},
	}, nil
}
