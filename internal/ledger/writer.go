package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/sharevest-expense-ledger/internal/config"
	"github.com/sharevest-expense-ledger/internal/domain/allocation"
	"github.com/sharevest-expense-ledger/internal/platform/messaging/producers"
)

const (
	saveTimeout    = 30 * time.Second
	publishTimeout = 2 * time.Second
)

// SnapshotWriter is the asynchronous persistence pipeline. Every committed
// snapshot is enqueued on a per-owner FIFO queue; a queue is drained by a
// single goroutine that waits for each save to finish before starting the
// next, so durable writes for one owner can never race or reorder. The actual
// storage calls run on a shared bounded worker pool, capping concurrent
// writes across owners.
//
// Enqueue never blocks the caller. When an owner's queue is full the newest
// snapshot replaces the most recent pending one; since every snapshot carries
// the complete record set, dropping an intermediate state loses nothing.
type SnapshotWriter struct {
	logger     *slog.Logger
	repo       allocation.SnapshotRepository
	events     producers.MessagePublisher // nil when the event stream is disabled
	pool       *ants.Pool
	queueDepth int

	mu     sync.Mutex
	queues map[uuid.UUID]*ownerQueue
	wg     sync.WaitGroup
}

type ownerQueue struct {
	pending  [][]allocation.Record
	draining bool
}

// NewSnapshotWriter creates the write pipeline with a shared worker pool of
// the configured size.
func NewSnapshotWriter(
	logger *slog.Logger,
	repo allocation.SnapshotRepository,
	events producers.MessagePublisher,
	cfg *config.WriterConfig,
) (*SnapshotWriter, error) {
	pool, err := ants.NewPool(cfg.PoolSize)
	if err != nil {
		return nil, err
	}

	return &SnapshotWriter{
		logger:     logger,
		repo:       repo,
		events:     events,
		pool:       pool,
		queueDepth: cfg.QueueDepth,
		queues:     make(map[uuid.UUID]*ownerQueue),
	}, nil
}

// Enqueue schedules a snapshot for durable persistence and returns
// immediately. The snapshot must be the caller's own copy; the writer keeps a
// reference until the save completes.
func (w *SnapshotWriter) Enqueue(ownerID uuid.UUID, records []allocation.Record) {
	w.mu.Lock()
	q := w.queues[ownerID]
	if q == nil {
		q = &ownerQueue{}
		w.queues[ownerID] = q
	}

	if len(q.pending) >= w.queueDepth {
		q.pending[len(q.pending)-1] = records
		w.logger.Warn("Snapshot queue full, coalescing to newest snapshot",
			"owner_id", ownerID.String(),
			"queue_depth", w.queueDepth,
		)
	} else {
		q.pending = append(q.pending, records)
	}

	if !q.draining {
		q.draining = true
		w.wg.Add(1)
		go w.drain(ownerID, q)
	}
	w.mu.Unlock()
}

// drain pops snapshots in FIFO order and persists them one at a time.
func (w *SnapshotWriter) drain(ownerID uuid.UUID, q *ownerQueue) {
	defer w.wg.Done()
	for {
		w.mu.Lock()
		if len(q.pending) == 0 {
			q.draining = false
			w.mu.Unlock()
			return
		}
		records := q.pending[0]
		q.pending = q.pending[1:]
		w.mu.Unlock()

		w.save(ownerID, records)
	}
}

// save runs a single durable write on the shared pool and waits for it. A
// failed write is reported and the queue moves on; the in-memory state stays
// committed and a later snapshot will bring storage back in line.
func (w *SnapshotWriter) save(ownerID uuid.UUID, records []allocation.Record) {
	done := make(chan error, 1)
	submitErr := w.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		done <- w.repo.Save(ctx, ownerID, records)
	})

	var err error
	if submitErr != nil {
		err = submitErr
	} else {
		err = <-done
	}

	if err != nil {
		w.logger.Warn("Snapshot persistence failed, in-memory state is ahead of durable storage",
			"owner_id", ownerID.String(),
			"record_count", len(records),
			"error", err,
		)
		w.publish(&producers.LedgerEvent{
			Event:       producers.EventPersistenceFailed,
			OwnerID:     ownerID.String(),
			RecordCount: len(records),
			Error:       err.Error(),
			OccurredAt:  time.Now().UTC(),
		})
		return
	}

	w.logger.Debug("Snapshot persisted",
		"owner_id", ownerID.String(),
		"record_count", len(records),
	)
	w.publish(&producers.LedgerEvent{
		Event:       producers.EventSnapshotPersisted,
		OwnerID:     ownerID.String(),
		RecordCount: len(records),
		OccurredAt:  time.Now().UTC(),
	})
}

func (w *SnapshotWriter) publish(event *producers.LedgerEvent) {
	if w.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := w.events.Publish(ctx, event.OwnerID, event); err != nil {
		w.logger.Warn("Failed to publish ledger event", "event", event.Event, "error", err)
	}
}

// Close waits for all pending snapshots to drain and releases the pool.
func (w *SnapshotWriter) Close() {
	w.wg.Wait()
	w.logger.Info("Shutting down snapshot writer", "running_workers", w.pool.Running())
	w.pool.Release()
}
