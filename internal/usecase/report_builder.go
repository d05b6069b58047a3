package usecase

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"RateBot/internal/domain/models"
	drepo "RateBot/internal/domain/repository"
	dsvc "RateBot/internal/domain/service"
	"RateBot/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// ReportBuilder produces a report artifact: quotes, then icons, then rendering.
type ReportBuilder struct {
	aggregator dsvc.RateAggregator
	icons      dsvc.IconResolver
	renderer   dsvc.ReportRenderer
	metrics    drepo.Metrics
	log        *logger.Logger
}

func NewReportBuilder(
	aggregator dsvc.RateAggregator,
	icons dsvc.IconResolver,
	renderer dsvc.ReportRenderer,
	metrics drepo.Metrics,
	log *logger.Logger,
) *ReportBuilder {
	return &ReportBuilder{
		aggregator: aggregator,
		icons:      icons,
		renderer:   renderer,
		metrics:    metrics,
		log:        log,
	}
}

// Build only fails when rendering fails; missing quotes and icons degrade to N/A and placeholders.
func (b *ReportBuilder) Build(ctx context.Context) (*models.ReportArtifact, error) {
	quotes := b.aggregator.Aggregate(ctx)

	start := time.Now()
	icons := make([]image.Image, len(quotes))
	var g errgroup.Group
	for i, q := range quotes {
		i, q := i, q
		g.Go(func() error {
			icons[i] = b.icons.Resolve(ctx, q.Instrument.DisplayName, q.Instrument.IconURL)
			return nil
		})
	}
	_ = g.Wait()
	b.metrics.RecordLatency("icons", time.Since(start))

	start = time.Now()
	artifact, err := b.renderer.Render(ctx, quotes, icons)
	if err != nil {
		b.metrics.RecordError("render")
		if !errors.Is(err, models.ErrRenderFailed) {
			err = fmt.Errorf("%w: %v", models.ErrRenderFailed, err)
		}
		return nil, fmt.Errorf("build report: %w", err)
	}
	b.metrics.RecordLatency("render", time.Since(start))

	available := 0
	for _, q := range quotes {
		if q.Available() {
			available++
		}
	}
	b.log.Info("report built",
		logger.Int("rows", len(quotes)),
		logger.Int("available", available),
		logger.String("hash", artifact.HashHex()))

	return artifact, nil
}
