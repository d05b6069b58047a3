package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"RateBot/internal/domain/models"
	drepo "RateBot/internal/domain/repository"
	"RateBot/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// RateAggregator fetches one quote per instrument. A failing source only
// blanks its own row; the result always has one row per instrument in
// declared order.
type RateAggregator struct {
	source      drepo.QuoteSource
	instruments []models.Instrument
	concurrency int
	metrics     drepo.Metrics
	log         *logger.Logger
}

// NewRateAggregator creates a RateAggregator. concurrency 1 fetches sequentially.
func NewRateAggregator(
	source drepo.QuoteSource,
	instruments []models.Instrument,
	concurrency int,
	metrics drepo.Metrics,
	log *logger.Logger,
) *RateAggregator {
	if concurrency <= 0 {
		concurrency = 1
	}
	insts := make([]models.Instrument, len(instruments))
	copy(insts, instruments)
	return &RateAggregator{
		source:      source,
		instruments: insts,
		concurrency: concurrency,
		metrics:     metrics,
		log:         log,
	}
}

// Aggregate never fails.
func (a *RateAggregator) Aggregate(ctx context.Context) []models.RateQuote {
	start := time.Now()
	quotes := make([]models.RateQuote, len(a.instruments))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, inst := range a.instruments {
		i, inst := i, inst
		g.Go(func() error {
			quotes[i] = a.fetch(ctx, inst)
			return nil
		})
	}
	_ = g.Wait()

	a.metrics.RecordLatency("aggregate", time.Since(start))
	return quotes
}

func (a *RateAggregator) fetch(ctx context.Context, inst models.Instrument) models.RateQuote {
	daily, err := a.source.FetchLatest(ctx, inst)
	if err != nil {
		if !errors.Is(err, models.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
		}
		a.log.Warn("quote unavailable",
			logger.String("instrument", inst.ID),
			logger.Error(err))
		a.metrics.RecordError("quote_source")
		return models.UnavailableQuote(inst)
	}

	pct, _ := daily.Float64()
	a.metrics.RecordDailyRate(inst.ID, pct)
	return models.NewRateQuote(inst, daily)
}
