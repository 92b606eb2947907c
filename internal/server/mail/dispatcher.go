package mail

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/server/metrics"
	"github.com/google/uuid"
)

const deliveryTimeout = 30 * time.Second

// Dispatcher delivers messages in the background through a bounded queue
// drained by a fixed set of workers.
type Dispatcher struct {
	sender  Sender
	logger  logging.Logger
	metrics *metrics.Metrics
	workers int

	mu     sync.RWMutex
	closed bool
	queue  chan Message
	wg     sync.WaitGroup
}

// NewDispatcher returns a dispatcher with room for queueSize pending messages.
// Workers start with Run.
func NewDispatcher(sender Sender, queueSize, workers int, logger logging.Logger, m *metrics.Metrics) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		sender:  sender,
		logger:  logger,
		metrics: m,
		workers: workers,
		queue:   make(chan Message, queueSize),
	}
}

// Dispatch enqueues msg without blocking and stamps it with an ID. It reports
// false when the message was dropped because the queue is full or closed.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) bool {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(ctx, msg, "dispatcher stopped")
		return false
	}

	select {
	case d.queue <- msg:
		d.logger.Debug(ctx, "mail queued", "id", msg.ID, "template", msg.Template)
		return true
	default:
		d.drop(ctx, msg, "queue full")
		return false
	}
}

// Run starts the workers and blocks until ctx is cancelled and every queued
// message has been attempted.
func (d *Dispatcher) Run(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work(ctx)
	}

	<-ctx.Done()

	d.mu.Lock()
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info(context.Background(), "mail dispatcher stopped")
}

func (d *Dispatcher) work(ctx context.Context) {
	defer d.wg.Done()

	base := context.WithoutCancel(ctx)
	for msg := range d.queue {
		d.deliver(base, msg)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, msg); err != nil {
		d.metrics.RecordMail(msg.Template, metrics.ResultFailure)
		d.logger.Error(ctx, "mail delivery failed", "id", msg.ID, "template", msg.Template, "error", err)
		return
	}

	d.metrics.RecordMail(msg.Template, metrics.ResultSuccess)
	d.logger.Info(ctx, "mail delivered", "id", msg.ID, "template", msg.Template)
}

func (d *Dispatcher) drop(ctx context.Context, msg Message, reason string) {
	d.metrics.RecordMail(msg.Template, metrics.ResultDropped)
	d.logger.Warn(ctx, "mail dropped", "id", msg.ID, "template", msg.Template, "reason", reason)
}
