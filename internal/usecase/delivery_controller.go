package usecase

import (
	"context"
	"time"

	"RateBot/internal/domain/models"
	drepo "RateBot/internal/domain/repository"
	dsvc "RateBot/internal/domain/service"
	"RateBot/pkg/logger"

	"github.com/google/uuid"
)

// JobTypeReport is the queue message type of a report run.
const JobTypeReport = "report.generate"

// notifyTimeout bounds the failure notice, which is sent even when the run context is gone.
const notifyTimeout = 10 * time.Second

// RunState is the lifecycle of one report request.
type RunState int

const (
	StateIdle RunState = iota
	StateAcknowledged
	StateProcessing
	StateDelivered
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcknowledged:
		return "acknowledged"
	case StateProcessing:
		return "processing"
	case StateDelivered:
		return "delivered"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s RunState) Terminal() bool {
	return s == StateDelivered || s == StateFailed
}

// Enqueuer hands jobs to background workers.
type Enqueuer interface {
	Enqueue(ctx context.Context, msgType string, payload interface{}) error
}

// DeliveryConfig holds the user-facing texts.
type DeliveryConfig struct {
	AckText       string
	FailurePrefix string
}

// DeliveryController acknowledges a request right away and delivers the
// report later from a queue worker, or a failure notice when it cannot.
type DeliveryController struct {
	cfg       DeliveryConfig
	messenger drepo.Messenger
	builder   dsvc.ReportBuilder
	publisher drepo.ArtifactPublisher
	queue     Enqueuer
	store     drepo.ArtifactStore
	events    drepo.RunEventSink
	metrics   drepo.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// DeliveryOption configures optional collaborators.
type DeliveryOption func(*DeliveryController)

// WithArtifactStore keeps a local copy of every rendered artifact.
func WithArtifactStore(s drepo.ArtifactStore) DeliveryOption {
	return func(c *DeliveryController) {
		c.store = s
	}
}

// WithRunEvents emits one event per finished run.
func WithRunEvents(s drepo.RunEventSink) DeliveryOption {
	return func(c *DeliveryController) {
		c.events = s
	}
}

func NewDeliveryController(
	cfg DeliveryConfig,
	messenger drepo.Messenger,
	builder dsvc.ReportBuilder,
	publisher drepo.ArtifactPublisher,
	queue Enqueuer,
	metrics drepo.Metrics,
	log *logger.Logger,
	opts ...DeliveryOption,
) *DeliveryController {
	c := &DeliveryController{
		cfg:       cfg,
		messenger: messenger,
		builder:   builder,
		publisher: publisher,
		queue:     queue,
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Accept replies with the acknowledgement and then queues the report job.
// A failed reply is logged and the job is queued anyway; a failed enqueue
// ends the run with a failure notice.
func (c *DeliveryController) Accept(ctx context.Context, cmd models.InboundCommand) RunState {
	job := models.ReportJob{
		RunID:       uuid.NewString(),
		SenderID:    cmd.SenderID,
		RequestedAt: c.now(),
	}
	log := c.log.With(logger.String("run_id", job.RunID), logger.String("sender", job.SenderID))

	if err := c.messenger.ReplyText(ctx, cmd.ReplyToken, c.cfg.AckText); err != nil {
		log.Warn("ack reply failed", logger.Error(err))
		c.metrics.RecordError("ack_reply")
	} else {
		c.metrics.RecordMessageSent("reply")
	}

	if err := c.queue.Enqueue(ctx, JobTypeReport, job); err != nil {
		log.Error("enqueue report job failed", logger.Error(err))
		c.metrics.RecordError("enqueue")
		return c.fail(ctx, job, err)
	}

	log.Info("report job queued")
	return StateAcknowledged
}

// Run executes a queued job to a terminal state. It never retries.
func (c *DeliveryController) Run(ctx context.Context, job models.ReportJob) RunState {
	log := c.log.With(logger.String("run_id", job.RunID), logger.String("sender", job.SenderID))
	log.Debug("report run processing")

	artifact, err := c.builder.Build(ctx)
	if err != nil {
		return c.fail(ctx, job, err)
	}

	if c.store != nil {
		if path, err := c.store.Save(ctx, artifact); err != nil {
			log.Warn("keep local artifact failed", logger.Error(err))
		} else {
			log.Debug("artifact saved", logger.String("path", path))
		}
	}

	start := time.Now()
	ref, err := c.publisher.Publish(ctx, artifact)
	if err != nil {
		c.metrics.RecordError("publish")
		return c.fail(ctx, job, err)
	}
	c.metrics.RecordLatency("publish", time.Since(start))

	if err := c.messenger.PushImage(ctx, job.SenderID, ref.URL); err != nil {
		c.metrics.RecordError("push_image")
		return c.fail(ctx, job, err)
	}
	c.metrics.RecordMessageSent("push_image")

	log.Info("report delivered", logger.String("url", ref.URL))
	c.finish(ctx, job, StateDelivered, ref.URL, nil)
	return StateDelivered
}

// fail pushes a single failure notice to the requester.
func (c *DeliveryController) fail(ctx context.Context, job models.ReportJob, cause error) RunState {
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := c.messenger.PushText(nctx, job.SenderID, c.cfg.FailurePrefix+cause.Error()); err != nil {
		c.log.Error("failure notice not delivered",
			logger.String("run_id", job.RunID),
			logger.Error(err))
		c.metrics.RecordError("push_text")
	} else {
		c.metrics.RecordMessageSent("push_text")
	}

	c.log.Warn("report run failed",
		logger.String("run_id", job.RunID),
		logger.Error(cause))
	c.finish(nctx, job, StateFailed, "", cause)
	return StateFailed
}

func (c *DeliveryController) finish(ctx context.Context, job models.ReportJob, state RunState, url string, cause error) {
	c.metrics.RecordRun(state.String())
	if c.events == nil {
		return
	}

	ev := models.RunEvent{
		RunID:      job.RunID,
		SenderID:   job.SenderID,
		State:      state.String(),
		URL:        url,
		FinishedAt: c.now(),
	}
	if !job.RequestedAt.IsZero() {
		ev.DurationMs = ev.FinishedAt.Sub(job.RequestedAt).Milliseconds()
	}
	if cause != nil {
		ev.Error = cause.Error()
	}
	if err := c.events.Emit(ctx, ev); err != nil {
		c.log.Debug("run event dropped", logger.String("run_id", job.RunID), logger.Error(err))
	}
}
