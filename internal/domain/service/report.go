package service

import (
	"context"
	"image"

	"RateBot/internal/domain/models"
)

// IconResolver returns a square icon for an instrument. It never fails;
// unreachable or undecodable icons come back as a placeholder.
type IconResolver interface {
	Resolve(ctx context.Context, name, url string) image.Image
}

// ReportRenderer composes quotes and icons into an artifact.
// icons[i] belongs to quotes[i].
type ReportRenderer interface {
	Render(ctx context.Context, quotes []models.RateQuote, icons []image.Image) (*models.ReportArtifact, error)
}

// RateAggregator produces one quote per instrument in declared order.
type RateAggregator interface {
	Aggregate(ctx context.Context) []models.RateQuote
}

// ReportBuilder runs aggregation, icon resolution and rendering.
type ReportBuilder interface {
	Build(ctx context.Context) (*models.ReportArtifact, error)
}
