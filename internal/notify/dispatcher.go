package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/tasks-api/internal/platform/logger"
)

// Common errors returned by the Dispatcher
var (
	ErrDispatcherClosed = errors.New("mail dispatcher is closed")
	ErrQueueFull        = errors.New("mail queue is full")
)

// sendTimeout bounds a single Mailer.Send call.
const sendTimeout = 10 * time.Second

// Recorder receives one call per processed job with "sent" or "failed".
type Recorder interface {
	MailJob(result string)
}

// DispatcherConfig holds configuration options for the dispatcher.
type DispatcherConfig struct {
	// WorkerCount is the number of concurrent senders. Defaults to 1.
	WorkerCount int

	// QueueSize is the number of jobs buffered before Enqueue fails. Defaults to 1.
	QueueSize int
}

// DefaultDispatcherConfig returns a DispatcherConfig with reasonable defaults
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

type job struct {
	ctx context.Context
	msg Message
}

// Dispatcher runs mail jobs on a fixed pool of worker goroutines.
type Dispatcher struct {
	mailer      Mailer
	jobs        chan job
	workerCount int
	logger      *slog.Logger
	recorder    Recorder

	mu      sync.RWMutex
	started bool
	closed  bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Call Start before enqueuing.
func NewDispatcher(mailer Mailer, cfg DispatcherConfig, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "mail_dispatcher"))

	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		log.Warn("invalid worker count specified, using default",
			"specified_count", cfg.WorkerCount,
			"default_count", 1)
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1
	}

	return &Dispatcher{
		mailer:      mailer,
		jobs:        make(chan job, queueSize),
		workerCount: workerCount,
		logger:      log,
	}
}

// SetRecorder installs a metrics recorder. It must be called before Start.
func (d *Dispatcher) SetRecorder(r Recorder) {
	d.recorder = r
}

// Start launches the workers. Subsequent calls are no-ops.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.logger.Info("mail dispatcher started", "worker_count", d.workerCount, "queue_cap", cap(d.jobs))
}

// Enqueue schedules msg for delivery. The job keeps ctx's values but is not
// canceled with it.
func (d *Dispatcher) Enqueue(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.jobs <- job{ctx: context.WithoutCancel(ctx), msg: msg}:
		logger.FromContextOrDefault(ctx, d.logger).Debug("mail job enqueued",
			"queue_len", len(d.jobs),
			"queue_cap", cap(d.jobs))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(d.jobs))
	}
}

// Stop rejects new jobs and waits for queued jobs to finish or ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	started := d.started
	d.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("mail dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.logger.Warn("mail dispatcher stop timed out", "pending", len(d.jobs))
		return fmt.Errorf("waiting for mail workers: %w", ctx.Err())
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	d.logger.Debug("starting worker", "worker_id", id)

	for j := range d.jobs {
		d.process(j, id)
	}
	d.logger.Debug("job channel closed, stopping worker", "worker_id", id)
}

func (d *Dispatcher) process(j job, workerID int) {
	log := logger.FromContextOrDefault(j.ctx, d.logger).With("worker_id", workerID)
	ctx, cancel := context.WithTimeout(logger.NewContext(j.ctx, log), sendTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			log.Error("mail job panicked", "panic", fmt.Sprint(r))
			d.record("failed")
		}
	}()

	if err := d.mailer.Send(ctx, j.msg); err != nil {
		log.Error("mail delivery failed", "error", err)
		d.record("failed")
		return
	}
	d.record("sent")
}

func (d *Dispatcher) record(result string) {
	if d.recorder != nil {
		d.recorder.MailJob(result)
	}
}
