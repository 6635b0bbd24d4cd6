// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/driftline/driftline/pkg/errutil"
)

// Dispatcher defaults.
const (
	DefaultQueueSize   = 64
	DefaultSendTimeout = 10 * time.Second
	DefaultMaxRetries  = 3
	DefaultBackoff     = 500 * time.Millisecond
)

// DispatcherConfig tunes the asynchronous dispatcher.
type DispatcherConfig struct {
	// QueueSize bounds the number of undelivered messages held in memory.
	QueueSize int `koanf:"queue_size"`

	// SendTimeout bounds one delivery attempt cycle, retries included.
	SendTimeout time.Duration `koanf:"send_timeout"`

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64 `koanf:"max_retries"`

	// Backoff is the initial exponential backoff step between attempts.
	Backoff time.Duration `koanf:"backoff"`
}

func (c DispatcherConfig) withDefaults() DispatcherConfig {
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = DefaultSendTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.Backoff <= 0 {
		c.Backoff = DefaultBackoff
	}
	return c
}

type dispatchJob struct {
	id      string
	address string
	message string
}

// Dispatcher wraps a Notifier with a bounded queue and a delivery worker.
// Send enqueues and returns immediately; the worker retries with
// exponential backoff and absorbs terminal failures after logging them.
// This keeps the slow network path out of the caller's critical section and
// preserves the reset flow's no-signal contract.
type Dispatcher struct {
	inner  Notifier
	logger *slog.Logger
	cfg    DispatcherConfig

	jobs chan dispatchJob
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewDispatcher creates a Dispatcher and starts its worker.
// Returns an error if the inner notifier or logger is nil.
func NewDispatcher(inner Notifier, cfg DispatcherConfig, logger *slog.Logger) (*Dispatcher, error) {
	if inner == nil {
		return nil, oops.Errorf("notifier is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}

	d := &Dispatcher{
		inner:  inner,
		logger: logger,
		cfg:    cfg.withDefaults(),
	}
	d.jobs = make(chan dispatchJob, d.cfg.QueueSize)

	d.wg.Add(1)
	go d.worker()

	return d, nil
}

// Send enqueues a delivery. It never returns an error: when the queue is
// full or the dispatcher is closed the message is dropped and the drop is
// logged.
func (d *Dispatcher) Send(_ context.Context, address, message string) error {
	job := dispatchJob{
		id:      ulid.Make().String(),
		address: address,
		message: message,
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.logger.Warn("notification dropped, dispatcher closed", "dispatch_id", job.id)
		return nil
	}

	select {
	case d.jobs <- job:
		d.logger.Debug("notification queued", "dispatch_id", job.id)
	default:
		d.logger.Warn("notification dropped, queue full", "dispatch_id", job.id)
	}
	return nil
}

// Close stops accepting messages, drains the queue, and waits for the
// worker to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for job := range d.jobs {
		d.deliver(job)
	}
}

func (d *Dispatcher) deliver(job dispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(d.cfg.MaxRetries, retry.NewExponential(d.cfg.Backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if sendErr := d.inner.Send(ctx, job.address, job.message); sendErr != nil {
			return retry.RetryableError(sendErr)
		}
		return nil
	})
	if err != nil {
		errutil.LogError(d.logger.With("dispatch_id", job.id), "notification delivery failed", err)
		return
	}
	d.logger.Debug("notification delivered", "dispatch_id", job.id)
}
