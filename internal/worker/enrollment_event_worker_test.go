package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memQueue struct {
	items chan string

	mu        sync.Mutex
	requeued  []string
	popErr    error
	popErrors int
}

func newMemQueue() *memQueue {
	return &memQueue{items: make(chan string, 1024)}
}

func (q *memQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	q.mu.Lock()
	if q.popErrors > 0 {
		q.popErrors--
		q.mu.Unlock()
		return "", q.popErr
	}
	q.mu.Unlock()

	if timeout <= 0 {
		select {
		case v := <-q.items:
			return v, nil
		default:
			return "", ErrQueueEmpty
		}
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case v := <-q.items:
		return v, nil
	case <-t.C:
		return "", ErrQueueEmpty
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (q *memQueue) Requeue(_ context.Context, payloads []string) error {
	q.mu.Lock()
	q.requeued = append(q.requeued, payloads...)
	q.mu.Unlock()
	for _, p := range payloads {
		q.items <- p
	}
	return nil
}

type memSink struct {
	mu      sync.Mutex
	events  []model.EnrollmentEvent
	batches int
	bulkErr error
	rowErr  func(model.EnrollmentEvent) error
}

func (s *memSink) InsertBatch(_ context.Context, events []model.EnrollmentEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bulkErr != nil {
		return s.bulkErr
	}
	s.batches++
	s.events = append(s.events, events...)
	return nil
}

func (s *memSink) Insert(_ context.Context, e model.EnrollmentEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rowErr != nil {
		if err := s.rowErr(e); err != nil {
			return err
		}
	}
	s.events = append(s.events, e)
	return nil
}

func (s *memSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func fastWorker(q Queue, s EventSink) *EnrollmentEventWorker {
	w := NewEnrollmentEventWorker(q, s, zerolog.Nop())
	w.batchSize = 3
	w.batchTimeout = 20 * time.Millisecond
	w.pollTimeout = 5 * time.Millisecond
	w.errBackoff = time.Millisecond
	w.requeueDelay = time.Millisecond
	return w
}

func payload(t *testing.T, detail string) string {
	t.Helper()
	b, err := json.Marshal(model.EnrollmentEvent{
		StudentID:  uuid.New(),
		OfferingID: uuid.New(),
		Action:     model.ActionRegistered,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return string(b)
}

func run(w *EnrollmentEventWorker) (context.CancelFunc, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx)
	}()
	return cancel, done
}

func TestWorkerPersistsInBatches(t *testing.T) {
	q, sink := newMemQueue(), &memSink{}
	for i := range 7 {
		q.items <- payload(t, fmt.Sprintf("CS%d", i))
	}
	q.items <- "{not json"

	cancel, done := run(fastWorker(q, sink))
	require.Eventually(t, func() bool { return sink.count() == 7 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.GreaterOrEqual(t, sink.batches, 3, "7 events at batch size 3")
	assert.Equal(t, "CS0", sink.events[0].Detail)
}

func TestWorkerFallsBackRowByRow(t *testing.T) {
	q := newMemQueue()
	transient := errors.New("connection refused")
	failedOnce := false
	sink := &memSink{
		bulkErr: errors.New("bulk failed"),
		rowErr: func(e model.EnrollmentEvent) error {
			switch e.Detail {
			case "orphan":
				return fmt.Errorf("%w: enrollment_events_offering_id_fkey", repository.ErrReferenced)
			case "flaky":
				if !failedOnce {
					failedOnce = true
					return transient
				}
			}
			return nil
		},
	}
	q.items <- payload(t, "ok")
	q.items <- payload(t, "orphan")
	q.items <- payload(t, "flaky")

	cancel, done := run(fastWorker(q, sink))
	require.Eventually(t, func() bool { return sink.count() == 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	q.mu.Lock()
	defer q.mu.Unlock()
	require.Len(t, q.requeued, 1, "only the transient failure is retried")
	assert.Contains(t, q.requeued[0], "flaky")
	details := []string{sink.events[0].Detail, sink.events[1].Detail}
	assert.ElementsMatch(t, []string{"ok", "flaky"}, details)
}

func TestWorkerBacksOffOnQueueErrors(t *testing.T) {
	q, sink := newMemQueue(), &memSink{}
	q.popErr, q.popErrors = errors.New("redis down"), 3
	q.items <- payload(t, "after outage")

	cancel, done := run(fastWorker(q, sink))
	require.Eventually(t, func() bool { return sink.count() == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestWorkerDrainsOnShutdown(t *testing.T) {
	q, sink := newMemQueue(), &memSink{}
	w := fastWorker(q, sink)
	w.batchTimeout = time.Hour
	w.batchSize = 100

	cancel, done := run(w)
	q.items <- payload(t, "buffered")
	require.Eventually(t, func() bool { return len(q.items) == 0 }, time.Second, time.Millisecond)
	assert.Zero(t, sink.count(), "nothing flushes before the batch is due")

	cancel()
	for range 4 {
		q.items <- payload(t, "queued")
	}
	<-done

	assert.GreaterOrEqual(t, sink.count(), 1)
	assert.Equal(t, 5, sink.count()+len(q.items))
}

// cancellingSink cancels the worker's context on the first bulk insert and
// fails any write whose own context is already done.
type cancellingSink struct {
	memSink
	cancel context.CancelFunc
	once   sync.Once
}

func (s *cancellingSink) InsertBatch(ctx context.Context, events []model.EnrollmentEvent) error {
	s.once.Do(s.cancel)
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.memSink.InsertBatch(ctx, events)
}

func (s *cancellingSink) Insert(ctx context.Context, e model.EnrollmentEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.memSink.Insert(ctx, e)
}

func TestWorkerFlushSurvivesCancellation(t *testing.T) {
	q := newMemQueue()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := &cancellingSink{cancel: cancel}
	for i := range 3 {
		q.items <- payload(t, fmt.Sprintf("CS%d", i))
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		fastWorker(q, sink).Start(ctx)
	}()
	<-done

	assert.Equal(t, 3, sink.count())
	q.mu.Lock()
	defer q.mu.Unlock()
	assert.Empty(t, q.requeued, "the in-flight batch is written, not requeued")
}
