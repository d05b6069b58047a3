package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"RateBot/pkg/logger"

	"github.com/google/uuid"
)

// MemoryQueue is an in-process queue: a buffered channel drained by a fixed
// worker pool. Messages are lost on restart.
type MemoryQueue struct {
	logger    *logger.Logger
	config    *QueueConfig
	jobs      map[string]Job
	msgCh     chan Message
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewMemoryQueue creates a new in-memory queue.
func NewMemoryQueue(lgr *logger.Logger, config *QueueConfig) *MemoryQueue {
	if config == nil {
		config = &QueueConfig{}
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 64
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &MemoryQueue{
		logger: lgr,
		config: config,
		jobs:   make(map[string]Job),
		msgCh:  make(chan Message, config.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// RegisterJob registers a single job.
func (m *MemoryQueue) RegisterJob(job Job) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[job.Type()]; exists {
		m.logger.Warn("job already registered", logger.String("job", job.Name()))
		return
	}

	m.jobs[job.Type()] = job
	m.logger.Info("job registered",
		logger.String("job", job.Name()),
		logger.String("type", job.Type()))
}

// Start launches the worker pool.
func (m *MemoryQueue) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRunning {
		return fmt.Errorf("queue already running")
	}
	m.isRunning = true

	for i := 0; i < m.config.Workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}

	m.logger.Info("memory queue started",
		logger.Int("workers", m.config.Workers),
		logger.Int("size", m.config.QueueSize))
	return nil
}

// Stop stops accepting messages, lets workers finish the buffered ones and
// waits for them until ctx expires.
func (m *MemoryQueue) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return nil
	}
	m.isRunning = false
	close(m.msgCh)
	m.mu.Unlock()

	m.logger.Info("stopping memory queue...")

	doneCh := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(doneCh)
	}()

	select {
	case <-ctx.Done():
		m.cancel()
		m.logger.Warn("timeout waiting for queue workers", logger.Error(ctx.Err()))
		return fmt.Errorf("timeout: %w", ctx.Err())
	case <-doneCh:
		m.cancel()
		m.logger.Info("memory queue stopped gracefully")
		return nil
	}
}

// Enqueue adds a message without blocking; a full buffer returns ErrQueueFull.
func (m *MemoryQueue) Enqueue(ctx context.Context, msgType string, payload interface{}) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.isRunning {
		return ErrNotRunning
	}
	if _, exists := m.jobs[msgType]; !exists {
		return fmt.Errorf("no job registered for type: %s", msgType)
	}

	msg := Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	select {
	case m.msgCh <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Backend reports the backend name.
func (m *MemoryQueue) Backend() string { return "memory" }

// Running reports whether the queue accepts messages.
func (m *MemoryQueue) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isRunning
}

func (m *MemoryQueue) worker(id int) {
	defer m.wg.Done()
	m.logger.Debug("queue worker started", logger.Int("worker_id", id))

	for msg := range m.msgCh {
		m.processMessage(msg)
	}

	m.logger.Debug("queue worker stopping", logger.Int("worker_id", id))
}

func (m *MemoryQueue) processMessage(msg Message) {
	m.mu.RLock()
	job, exists := m.jobs[msg.Type]
	m.mu.RUnlock()
	if !exists {
		m.logger.Error("no job found",
			logger.String("type", msg.Type),
			logger.String("id", msg.ID))
		return
	}

	ctx, cancel := jobContext(m.ctx, m.config.JobTimeout)
	defer cancel()

	start := time.Now()
	err := job.Handle(ctx, msg.Payload)
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		m.logger.Warn("message cancelled",
			logger.String("id", msg.ID),
			logger.String("job", job.Name()),
			logger.Duration("elapsed_ms", time.Since(start)))
		return
	}
	m.logger.Error("message processing error",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Error(err))
}
