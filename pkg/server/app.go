package server

import (
	"context"
	"fmt"
	"io"

	"RateBot/pkg/config"
	xhttp "RateBot/pkg/http"
	applogger "RateBot/pkg/logger"
	"RateBot/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	queue      queue.Queue
	jobs       []queue.Job
	closers    []namedCloser
}

type namedCloser struct {
	name string
	c    io.Closer
}

// Option configures App.
type Option func(*App)

// WithJobs registers queue jobs before the workers start.
func WithJobs(jobs ...queue.Job) Option {
	return func(a *App) {
		a.jobs = append(a.jobs, jobs...)
	}
}

// WithCloser closes c on shutdown, after the queue has drained. Closers run in
// registration order.
func WithCloser(name string, c io.Closer) Option {
	return func(a *App) {
		if c != nil {
			a.closers = append(a.closers, namedCloser{name: name, c: c})
		}
	}
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, log *applogger.Logger, httpServer *xhttp.Server, q queue.Queue, opts ...Option) *App {
	a := &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		queue:      q,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts the queue workers and the HTTP server and blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	for _, job := range a.jobs {
		a.queue.RegisterJob(job)
	}
	if err := a.queue.Start(); err != nil {
		return fmt.Errorf("start %s queue: %w", a.queue.Backend(), err)
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		_ = a.queue.Stop(context.Background())
		return err
	}

	a.log.Info("ratebot started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("queue", a.queue.Backend()))

	<-ctx.Done()

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops intake first, then lets running reports finish, then closes
// the clients they used.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}

	if err := a.queue.Stop(ctx); err != nil {
		a.log.Warn("queue stop error", applogger.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}

	// flush aggregated error logs while the producer is still open
	a.log.RemoveCollector()

	for _, nc := range a.closers {
		if err := nc.c.Close(); err != nil {
			a.log.Warn("close error", applogger.String("resource", nc.name), applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return firstErr
}
