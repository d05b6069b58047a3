package repository

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

import (
	"context"
	"time"

	"RateBot/internal/domain/models"

	"github.com/shopspring/decimal"
)

// QuoteSource returns the latest daily funding rate, in percent, for an instrument.
// Every failure is reported as models.ErrSourceUnavailable.
type QuoteSource interface {
	FetchLatest(ctx context.Context, inst models.Instrument) (decimal.Decimal, error)
}

// ArtifactPublisher makes a rendered report publicly reachable.
type ArtifactPublisher interface {
	Publish(ctx context.Context, artifact *models.ReportArtifact) (models.PublishedArtifactRef, error)
}

// Messenger talks to the chat platform.
type Messenger interface {
	ReplyText(ctx context.Context, replyToken, text string) error
	PushText(ctx context.Context, to, text string) error
	PushImage(ctx context.Context, to, imageURL string) error
}

// ArtifactStore keeps a local copy of the latest artifact.
type ArtifactStore interface {
	Save(ctx context.Context, artifact *models.ReportArtifact) (string, error)
}

// RunEventSink receives terminal run events. Implementations must not block a run for long.
type RunEventSink interface {
	Emit(ctx context.Context, ev models.RunEvent) error
}

type Metrics interface {
	RecordMessageSent(kind string)
	RecordRun(state string)
	RecordError(kind string)
	RecordDailyRate(instrument string, percent float64)
	RecordLatency(stage string, d time.Duration)
}
