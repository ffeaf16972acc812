// Package worker drains the audit queue into the vote log.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/versuslab/versus/internal/domain/model"
	"github.com/versuslab/versus/pkg/logger"
	"github.com/versuslab/versus/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2
	poolShutdownTimeout     = 30 * time.Second
)

// Event is what workers read off the queue.
type Event = model.VoteEvent

// Appender persists one audit event and returns its assigned id.
type Appender interface {
	AppendVoteEvent(ctx context.Context, ev model.VoteEvent) (string, error)
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes audit events until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker, waiting for the in-flight event.
	Shutdown(ctx context.Context) error
}

// AuditWorker implements Worker for appending vote events.
type AuditWorker struct {
	queue    Queue
	appender Appender
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewAuditWorker creates a worker with configuration options.
func NewAuditWorker(queue Queue, appender Appender, opts ...Option) *AuditWorker {
	w := &AuditWorker{
		queue:    queue,
		appender: appender,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("audit"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *AuditWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			w.process(ctx, ev)
		}
	}
}

// process appends one event. Failures are logged and the event is
// dropped; the rating state was already persisted on the vote path.
func (w *AuditWorker) process(ctx context.Context, ev Event) {
	id, err := w.appender.AppendVoteEvent(ctx, ev)
	if err != nil {
		metrics.RecordAuditDrop()
		metrics.RecordStoreError("append_vote_event")
		w.logger.Error(ctx, "append vote event failed",
			logger.String("actor_id", ev.ActorID),
			logger.String("winner_id", ev.WinnerID),
			logger.Error(err),
		)
		return
	}
	metrics.RecordAuditAppend()
	w.logger.Debug(ctx, "vote event appended", logger.String("event_id", id))
}

// Shutdown stops the worker.
func (w *AuditWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool manages multiple audit workers sharing one queue.
type Pool struct {
	workers  []*AuditWorker
	queue    Queue
	appender Appender

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. A non-positive count
// defaults to a small multiple of the CPU count.
func NewPool(workerCount int, queue Queue, appender Appender) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers:  make([]*AuditWorker, workerCount),
		queue:    queue,
		appender: appender,
		logger:   logger.Get().Named("audit-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewAuditWorker(queue, appender,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
