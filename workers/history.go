package workers

import (
	"context"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"

	"msgvis/db"
)

const fallbackTimeout = 5 * time.Second

// HistoryWorker batches server-side action records and writes each batch with
// one multi-row insert.
type HistoryWorker struct {
	db            *db.DB
	q             *db.Queries
	log           *zap.Logger
	in            chan db.Action
	batchSize     int
	flushInterval time.Duration
	closed        chan struct{}
	onWrite       func(n int)

	mu      sync.RWMutex
	stopped bool
}

// NewHistoryWorker creates the worker. onWrite, when non-nil, is told how
// many records each successful write stored.
func NewHistoryWorker(d *db.DB, q *db.Queries, log *zap.Logger, batchSize int, flushInterval time.Duration, buffer int, onWrite func(n int)) *HistoryWorker {
	return &HistoryWorker{
		db:            d,
		q:             q,
		log:           log,
		in:            make(chan db.Action, buffer),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		closed:        make(chan struct{}),
		onWrite:       onWrite,
	}
}

func (w *HistoryWorker) Start() { go w.loop() }

// Stop drains pending records, flushes them and waits for the loop to end.
// Enqueue calls made afterwards are dropped.
func (w *HistoryWorker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.in)
	w.mu.Unlock()
	<-w.closed
}

// Enqueue hands a record to the worker without blocking. It returns false
// when the buffer is full or the worker is stopped.
func (w *HistoryWorker) Enqueue(a db.Action) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return false
	}
	select {
	case w.in <- a:
		return true
	default:
		return false
	}
}

func (w *HistoryWorker) loop() {
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()
	defer close(w.closed)

	batch := make([]db.Action, 0, w.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		toFlush := batch
		batch = make([]db.Action, 0, w.batchSize)

		ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
		defer cancel()

		err := retry.Do(
			func() error {
				tx, err := w.db.BeginTx(ctx, nil)
				if err != nil {
					return err
				}
				if err := w.q.WithTx(tx).InsertActions(ctx, toFlush); err != nil {
					_ = tx.Rollback()
					return err
				}
				return tx.Commit()
			},
			retry.Context(ctx),
			retry.Attempts(3),
			retry.Delay(125*time.Millisecond),
			retry.DelayType(retry.BackOffDelay),
			retry.OnRetry(func(n uint, err error) {
				w.log.Warn("retrying action batch", zap.Uint("attempt", n+1), zap.Error(err))
			}),
		)
		if err != nil {
			w.log.Error("action batch failed; writing one by one", zap.Int("records", len(toFlush)), zap.Error(err))
			w.perRecordFallback(toFlush)
			return
		}
		w.written(len(toFlush))
		w.log.Debug("action batch flushed", zap.Int("records", len(toFlush)))
	}

	for {
		select {
		case a, ok := <-w.in:
			if !ok {
				flush()
				return
			}
			batch = append(batch, a)
			if len(batch) >= w.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// perRecordFallback writes records individually so one bad record does not
// lose the whole batch.
func (w *HistoryWorker) perRecordFallback(actions []db.Action) {
	ctx, cancel := context.WithTimeout(context.Background(), fallbackTimeout)
	defer cancel()

	for _, a := range actions {
		if err := w.q.InsertActions(ctx, []db.Action{a}); err != nil {
			w.log.Error("fallback action insert failed", zap.String("id", a.ID), zap.String("type", a.Type), zap.Error(err))
			continue
		}
		w.written(1)
	}
}

func (w *HistoryWorker) written(n int) {
	if w.onWrite != nil {
		w.onWrite(n)
	}
}
