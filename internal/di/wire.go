//go:build wireinject
// +build wireinject

package di

import (
	"RateBot/pkg/config"
	"RateBot/pkg/server"

	"github.com/google/wire"
)

var reportSet = wire.NewSet(
	// Infrastructure clients
	ProvideKafkaProducer,
	ProvideLogger,
	ProvideMetrics,
	ProvideRedisClient,
	ProvideIconCache,

	// Report pipeline
	ProvideQuoteSource,
	ProvideIconResolver,
	ProvideRenderer,
	ProvideRateAggregator,
	ProvideReportBuilder,
	ProvideFileStore,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		reportSet,

		// Outbound messaging and publishing
		ProvideMessenger,
		ProvidePublisher,

		// Use cases
		ProvideQueue,
		ProvideDeliveryController,
		ProvideReportQueueJob,
		ProvideDispatcher,

		// Application server
		ProvideWebhookHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeRenderJob wires the report pipeline without LINE or Cloudinary.
func InitializeRenderJob(cfg *config.Config) (*RenderJob, error) {
	wire.Build(
		reportSet,
		wire.Struct(new(RenderJob), "*"),
	)
	return &RenderJob{}, nil
}
