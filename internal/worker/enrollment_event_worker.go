package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/repository"
)

const (
	BatchSize     = 50
	BatchTimeout  = 2 * time.Second
	PollTimeout   = 1 * time.Second
	drainLimit    = 10 * BatchSize
	shutdownGrace = 5 * time.Second
)

// EventSink persists enrollment events.
type EventSink interface {
	InsertBatch(ctx context.Context, events []model.EnrollmentEvent) error
	Insert(ctx context.Context, e model.EnrollmentEvent) error
}

// EnrollmentEventWorker moves published enrollment events from the queue into
// the enrollment_events audit table in batches.
type EnrollmentEventWorker struct {
	queue Queue
	sink  EventSink
	log   zerolog.Logger

	batchSize    int
	batchTimeout time.Duration
	pollTimeout  time.Duration
	errBackoff   time.Duration
	requeueDelay time.Duration
}

// NewEnrollmentEventWorker creates a new EnrollmentEventWorker.
func NewEnrollmentEventWorker(queue Queue, sink EventSink, log zerolog.Logger) *EnrollmentEventWorker {
	return &EnrollmentEventWorker{
		queue:        queue,
		sink:         sink,
		log:          log.With().Str("component", "enrollment_event_worker").Logger(),
		batchSize:    BatchSize,
		batchTimeout: BatchTimeout,
		pollTimeout:  PollTimeout,
		errBackoff:   3 * time.Second,
		requeueDelay: 2 * time.Second,
	}
}

// queued keeps the raw payload so a failed insert can be requeued verbatim.
type queued struct {
	raw   string
	event model.EnrollmentEvent
}

// Start runs until ctx is cancelled, then flushes and drains. Call in a goroutine.
func (w *EnrollmentEventWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	buffer := make([]queued, 0, w.batchSize)
	lastFlush := time.Now()

	for {
		// 1. Flush on size or age.
		// The flush outlives ctx so a batch in flight is not lost to shutdown.
		if len(buffer) > 0 && (len(buffer) >= w.batchSize || time.Since(lastFlush) >= w.batchTimeout) {
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
			requeued := w.flush(flushCtx, buffer)
			cancel()
			buffer = buffer[:0]
			lastFlush = time.Now()
			if requeued {
				// Avoid thrashing while the database is down.
				sleep(ctx, w.requeueDelay)
			}
		}

		// 2. Graceful shutdown.
		if ctx.Err() != nil {
			w.shutdown(buffer)
			return
		}

		// 3. Fetch.
		raw, err := w.queue.Pop(ctx, w.pollTimeout)
		if err != nil {
			if errors.Is(err, ErrQueueEmpty) || ctx.Err() != nil {
				continue
			}
			w.log.Error().Err(err).Dur("backoff", w.errBackoff).Msg("Queue error, backing off")
			sleep(ctx, w.errBackoff)
			continue
		}

		// 4. Decode. A malformed payload can never succeed, so it is dropped.
		if q, ok := w.decode(raw); ok {
			buffer = append(buffer, q)
		}
	}
}

func (w *EnrollmentEventWorker) decode(raw string) (queued, bool) {
	var ev model.EnrollmentEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		w.log.Error().Err(err).Str("data", raw).Msg("Discarding malformed event")
		return queued{}, false
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	return queued{raw: raw, event: ev}, true
}

// flush tries a bulk insert, then row by row, then requeues what still failed.
// It reports whether anything was requeued.
func (w *EnrollmentEventWorker) flush(ctx context.Context, batch []queued) bool {
	events := make([]model.EnrollmentEvent, len(batch))
	for i, q := range batch {
		events[i] = q.event
	}
	err := w.sink.InsertBatch(ctx, events)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Events persisted")
		return false
	}
	w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")

	var requeue []string
	for _, q := range batch {
		err := w.sink.Insert(ctx, q.event)
		switch {
		case err == nil:
		case errors.Is(err, repository.ErrReferenced), errors.Is(err, repository.ErrCheck):
			// The student or offering is gone; retrying cannot help.
			w.log.Error().Err(err).
				Str("student_id", q.event.StudentID.String()).
				Str("offering_id", q.event.OfferingID.String()).
				Msg("Dropping event that violates a constraint")
		default:
			requeue = append(requeue, q.raw)
		}
	}

	if len(requeue) == 0 {
		return false
	}
	if err := w.queue.Requeue(ctx, requeue); err != nil {
		w.log.Error().Err(err).Int("count", len(requeue)).Msg("CRITICAL: Failed to requeue events. Audit entries lost.")
		return false
	}
	w.log.Info().Int("count", len(requeue)).Msg("Requeued failed events")
	return true
}

// shutdown flushes the buffer and drains what is left in the queue.
func (w *EnrollmentEventWorker) shutdown(buffer []queued) {
	w.log.Info().Msg("Worker stopping, flushing remaining events...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	drained := 0
	for drained < drainLimit {
		raw, err := w.queue.Pop(ctx, 0)
		if err != nil {
			if !errors.Is(err, ErrQueueEmpty) {
				w.log.Error().Err(err).Msg("Drain stopped on queue error")
			}
			break
		}
		drained++
		if q, ok := w.decode(raw); ok {
			buffer = append(buffer, q)
		}
	}

	for len(buffer) > 0 && ctx.Err() == nil {
		n := min(len(buffer), w.batchSize)
		w.flush(ctx, buffer[:n])
		buffer = buffer[n:]
	}
	w.log.Info().Int("drained", drained).Msg("Worker stopped")
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
