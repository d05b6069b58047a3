package di

import (
	"context"
	"errors"
	"fmt"

	"RateBot/internal/domain/models"
	drepo "RateBot/internal/domain/repository"
	dsvc "RateBot/internal/domain/service"
	"RateBot/internal/handler/api"
	internalrepo "RateBot/internal/repository"
	"RateBot/internal/service/bitfinex"
	"RateBot/internal/service/cloudinary"
	"RateBot/internal/service/icon"
	"RateBot/internal/service/line"
	"RateBot/internal/services/render"
	"RateBot/internal/usecase"
	"RateBot/pkg/cache"
	"RateBot/pkg/config"
	xhttp "RateBot/pkg/http"
	pkgkafka "RateBot/pkg/kafka"
	"RateBot/pkg/logger"
	"RateBot/pkg/metrics"
	"RateBot/pkg/queue"
	"RateBot/pkg/server"

	"github.com/redis/go-redis/v9"
)

// RenderJob is what the one-shot render command needs. Call Close when done.
type RenderJob struct {
	Builder  dsvc.ReportBuilder
	Store    *internalrepo.FileStore
	Log      *logger.Logger
	Producer *pkgkafka.Producer
	Redis    *redis.Client
	Icons    cache.BytesCache
}

// Close flushes the log collector before releasing the clients it writes through.
func (j *RenderJob) Close() error {
	if j.Log != nil {
		j.Log.RemoveCollector()
	}

	var errs []error
	if j.Icons != nil {
		if err := j.Icons.Close(); err != nil {
			errs = append(errs, fmt.Errorf("icon cache: %w", err))
		}
	}
	if j.Producer != nil {
		if err := j.Producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kafka: %w", err))
		}
	}
	if j.Redis != nil {
		if err := j.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithBatchTimeout(cfg.Kafka.BatchTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger creates the application logger. Error logs are also
// aggregated to Kafka when the collector is enabled.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Logging.Collector.Enabled && producer != nil {
		l.AddCollector(&logger.CollectionConfig{
			TimeInterval:   cfg.Logging.Collector.Interval,
			CountThreshold: cfg.Logging.Collector.Threshold,
			Topic:          cfg.Logging.Collector.Topic,
			Publisher:      producer,
		})
	}
	return l.With(logger.String("service", "ratebot")), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() drepo.Metrics {
	return metrics.New(nil)
}

// ProvideRedisClient connects to Redis only when a component is configured to use it.
func ProvideRedisClient(cfg *config.Config) (*redis.Client, error) {
	if cfg.Queue.Backend != "redis" && cfg.Icons.Cache.Backend != "redis" {
		return nil, nil
	}
	client, err := cache.NewRedisClient(context.Background(),
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdleConns, cfg.Redis.PoolTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("redis client: %w", err)
	}
	return client, nil
}

// ProvideIconCache selects the icon byte cache; nil disables caching.
func ProvideIconCache(cfg *config.Config, rdb *redis.Client) cache.BytesCache {
	memOpts := []cache.MemoryOption{
		cache.WithMemoryMaxSize(cfg.Icons.Cache.MaxEntries),
		cache.WithMemoryCleanup(cfg.Icons.Cache.CleanupInterval),
	}
	switch cfg.Icons.Cache.Backend {
	case "memory":
		return cache.NewMemoryCache(memOpts...)
	case "redis":
		return cache.NewLayeredCache(cache.NewRedisCache(rdb, cfg.Redis.Prefix), cfg.Icons.Cache.TTL, memOpts...)
	default:
		return nil
	}
}

// ProvideQuoteSource creates the Bitfinex client.
func ProvideQuoteSource(cfg *config.Config) drepo.QuoteSource {
	return bitfinex.New(
		bitfinex.WithBaseURL(cfg.Market.BaseURL),
		bitfinex.WithTimeout(cfg.Market.Timeout),
	)
}

// ProvideIconResolver creates the icon downloader.
func ProvideIconResolver(cfg *config.Config, c cache.BytesCache, l *logger.Logger, m drepo.Metrics) dsvc.IconResolver {
	opts := []icon.Option{
		icon.WithSize(cfg.Icons.Size),
		icon.WithTimeout(cfg.Icons.Timeout),
		icon.WithUserAgent(cfg.Icons.UserAgent),
		icon.WithLogger(l),
		icon.WithMetrics(m),
	}
	if c != nil {
		opts = append(opts, icon.WithCache(c, cfg.Icons.Cache.TTL))
	}
	return icon.NewResolver(opts...)
}

// ProvideRenderer creates the table renderer.
func ProvideRenderer(l *logger.Logger) (dsvc.ReportRenderer, error) {
	r, err := render.NewRenderer(render.WithLogger(l))
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	return r, nil
}

// ProvideRateAggregator fans out over the fixed instrument list.
func ProvideRateAggregator(cfg *config.Config, source drepo.QuoteSource, m drepo.Metrics, l *logger.Logger) dsvc.RateAggregator {
	return usecase.NewRateAggregator(source, models.DefaultInstruments(), cfg.Market.Concurrency, m, l)
}

// ProvideReportBuilder creates the report pipeline.
func ProvideReportBuilder(
	agg dsvc.RateAggregator,
	icons dsvc.IconResolver,
	renderer dsvc.ReportRenderer,
	m drepo.Metrics,
	l *logger.Logger,
) dsvc.ReportBuilder {
	return usecase.NewReportBuilder(agg, icons, renderer, m, l)
}

// ProvideFileStore keeps the latest artifact at report.output_path.
func ProvideFileStore(cfg *config.Config, l *logger.Logger) *internalrepo.FileStore {
	return internalrepo.NewFileStore(cfg.Report.OutputPath, l)
}

// ProvideMessenger creates the LINE Messaging API client.
func ProvideMessenger(cfg *config.Config) (drepo.Messenger, error) {
	opts := []line.Option{line.WithTimeout(cfg.Line.Timeout)}
	if cfg.Line.Endpoint != "" {
		opts = append(opts, line.WithEndpoint(cfg.Line.Endpoint))
	}
	m, err := line.NewMessenger(cfg.Line.ChannelAccessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("line messenger: %w", err)
	}
	return m, nil
}

// ProvidePublisher creates the Cloudinary uploader.
func ProvidePublisher(cfg *config.Config, l *logger.Logger) (drepo.ArtifactPublisher, error) {
	p, err := cloudinary.NewPublisher(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.APIKey,
		cfg.Cloudinary.APISecret,
		cloudinary.WithFolder(cfg.Cloudinary.Folder),
		cloudinary.WithTimeout(cfg.Cloudinary.Timeout),
		cloudinary.WithLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("cloudinary publisher: %w", err)
	}
	return p, nil
}

// ProvideQueue creates the job queue. Report runs are never retried.
func ProvideQueue(cfg *config.Config, l *logger.Logger, rdb *redis.Client) queue.Queue {
	qcfg := &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		QueueSize:  cfg.Queue.Size,
		JobTimeout: cfg.Queue.JobTimeout,
	}
	if cfg.Queue.Backend == "redis" {
		return queue.NewRedisQueue(l, qcfg, rdb, queue.WithKeyPrefix(cfg.Queue.KeyPrefix))
	}
	return queue.NewMemoryQueue(l, qcfg)
}

// ProvideDeliveryController creates the ack/run state machine.
func ProvideDeliveryController(
	cfg *config.Config,
	messenger drepo.Messenger,
	builder dsvc.ReportBuilder,
	publisher drepo.ArtifactPublisher,
	q queue.Queue,
	store *internalrepo.FileStore,
	producer *pkgkafka.Producer,
	m drepo.Metrics,
	l *logger.Logger,
) *usecase.DeliveryController {
	var opts []usecase.DeliveryOption
	if cfg.Report.KeepLocal {
		opts = append(opts, usecase.WithArtifactStore(store))
	}
	if producer != nil {
		opts = append(opts, usecase.WithRunEvents(internalrepo.NewKafkaRunEventSink(producer, cfg.Kafka.EventsTopic)))
	}
	return usecase.NewDeliveryController(
		usecase.DeliveryConfig{
			AckText:       cfg.Report.AckText,
			FailurePrefix: cfg.Report.FailurePrefix,
		},
		messenger, builder, publisher, q, m, l, opts...,
	)
}

// ProvideReportQueueJob adapts the controller to the queue.
func ProvideReportQueueJob(c *usecase.DeliveryController) *usecase.ReportQueueJob {
	return usecase.NewReportQueueJob(c)
}

// ProvideDispatcher creates the trigger matcher.
func ProvideDispatcher(cfg *config.Config, c *usecase.DeliveryController, l *logger.Logger) *usecase.CommandDispatcher {
	return usecase.NewCommandDispatcher(cfg.Report.Trigger, c, l)
}

// ProvideWebhookHandler creates the LINE webhook handler.
func ProvideWebhookHandler(cfg *config.Config, l *logger.Logger, d *usecase.CommandDispatcher, q queue.Queue) *api.WebhookEchoHandler {
	return api.NewWebhookEchoHandler(l, cfg.Line.ChannelSecret, d, q)
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, l *logger.Logger, h *api.WebhookEchoHandler) *xhttp.Server {
	metricsPath := cfg.Metrics.Path
	if cfg.Metrics.Disabled {
		metricsPath = ""
	}
	return xhttp.NewServer([]xhttp.Handler{h},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l),
	)
}

// ProvideApp assembles the application and the resources it closes on shutdown.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	srv *xhttp.Server,
	q queue.Queue,
	job *usecase.ReportQueueJob,
	producer *pkgkafka.Producer,
	rdb *redis.Client,
	iconCache cache.BytesCache,
) *server.App {
	opts := []server.Option{server.WithJobs(job)}
	if producer != nil {
		opts = append(opts, server.WithCloser("kafka", producer))
	}
	if iconCache != nil {
		opts = append(opts, server.WithCloser("icon_cache", iconCache))
	}
	if rdb != nil {
		opts = append(opts, server.WithCloser("redis", rdb))
	}
	return server.New(cfg, l, srv, q, opts...)
}
