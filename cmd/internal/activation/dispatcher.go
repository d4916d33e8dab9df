// Package activation runs the deferred activation code step: generate a code,
// mail it, persist it. Registration enqueues the email and returns; a small
// worker pool drains the queue.
package activation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"accounts/cmd/account"
	"accounts/cmd/internal/ids"
	"accounts/cmd/internal/mail"
	"accounts/cmd/internal/telemetry"
)

// Subject of activation mails.
const Subject = "Activate your account"

// Issuer is the slice of account.Service the dispatcher drives.
type Issuer interface {
	IssueActivationCode(ctx context.Context, email string, deliver account.Deliverer) error
}

// Config sizes the queue and worker pool.
type Config struct {
	QueueSize   int
	Workers     int
	TaskTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = 30 * time.Second
	}
	return c
}

// Task is one queued activation mail. The email is the whole contract.
type Task struct {
	ID         string
	Email      string
	EnqueuedAt time.Time
}

// Dispatcher owns the task queue and its workers.
type Dispatcher struct {
	log       *slog.Logger
	cfg       Config
	issuer    Issuer
	transport mail.Transport
	metrics   *telemetry.Metrics

	tasks chan Task

	mu      sync.RWMutex
	closed  bool
	started bool

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures optional Dispatcher dependencies.
type Option func(*Dispatcher)

// WithMetrics records delivery results and queue depth.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// NewDispatcher wires a Dispatcher. Call Start to launch workers.
func NewDispatcher(log *slog.Logger, issuer Issuer, transport mail.Transport, cfg Config, opts ...Option) (*Dispatcher, error) {
	if issuer == nil {
		return nil, errors.New("activation: nil issuer")
	}
	if transport == nil {
		return nil, errors.New("activation: nil mail transport")
	}
	if log == nil {
		log = slog.Default()
	}

	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	d := &Dispatcher{
		log:       log,
		cfg:       cfg,
		issuer:    issuer,
		transport: transport,
		tasks:     make(chan Task, cfg.QueueSize),
		baseCtx:   ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// Start launches the workers. Calling it more than once has no effect.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.log.Info("activation.dispatcher.start", "workers", d.cfg.Workers, "queue_size", d.cfg.QueueSize)
}

// Enqueue schedules the activation mail for email without blocking.
// It returns false when the queue is full or the dispatcher is closed; the task is
// then dropped and logged.
func (d *Dispatcher) Enqueue(email string) bool {
	id, err := ids.NewULID(time.Now().UTC())
	if err != nil {
		d.log.Error("activation.enqueue.id.fail", "err", err)
		return false
	}
	task := Task{ID: id, Email: email, EnqueuedAt: time.Now().UTC()}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("activation.enqueue.closed", "task_id", task.ID)
		d.metrics.ActivationMail("dropped")
		return false
	}

	select {
	case d.tasks <- task:
		d.metrics.QueueDepth(len(d.tasks))
		return true
	default:
		d.log.Warn("activation.enqueue.queue_full", "task_id", task.ID, "queue_size", d.cfg.QueueSize)
		d.metrics.ActivationMail("dropped")
		return false
	}
}

// Pending returns the number of queued tasks not yet picked up.
func (d *Dispatcher) Pending() int { return len(d.tasks) }

// Close stops accepting tasks and waits for queued ones to finish.
// If ctx ends first, in-flight tasks are canceled and ctx.Err() is returned.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	started := d.started
	close(d.tasks)
	d.mu.Unlock()

	if !started {
		d.cancel()
		if n := len(d.tasks); n > 0 {
			d.log.Warn("activation.dispatcher.discarded", "pending", n)
		}
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		d.log.Info("activation.dispatcher.stopped")
		return nil
	case <-ctx.Done():
		pending := len(d.tasks)
		d.cancel()
		<-done
		d.log.Warn("activation.dispatcher.drain.timeout", "pending", pending)
		return ctx.Err()
	}
}

func (d *Dispatcher) worker(n int) {
	defer d.wg.Done()
	for task := range d.tasks {
		d.metrics.QueueDepth(len(d.tasks))
		d.run(task)
	}
	d.log.Debug("activation.worker.exit", "worker", n)
}

func (d *Dispatcher) run(task Task) {
	ctx, cancel := context.WithTimeout(d.baseCtx, d.cfg.TaskTimeout)
	defer cancel()

	var sendErr error
	deliver := func(ctx context.Context, email, code string) error {
		sendErr = d.transport.Send(ctx, mail.Message{
			To:      email,
			Subject: Subject,
			Body:    Body(code),
		})
		return sendErr
	}

	err := d.issuer.IssueActivationCode(ctx, task.Email, deliver)
	switch {
	case err == nil:
		d.metrics.ActivationMail("sent")
		d.log.Info("activation.mail.sent", "task_id", task.ID, "queued_ms", time.Since(task.EnqueuedAt).Milliseconds())
	case sendErr != nil:
		d.metrics.ActivationMail("send_failed")
		d.log.Error("activation.mail.send.fail", "task_id", task.ID, "err", sendErr)
	default:
		d.metrics.ActivationMail("failed")
		d.log.Error("activation.code.issue.fail", "task_id", task.ID, "err", err)
	}
}

// Body renders the activation mail text for code.
func Body(code string) string {
	return fmt.Sprintf("Your activation code is %s", code)
}
