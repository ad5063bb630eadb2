package workers

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"msgvis/config"
	"msgvis/db"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	u, err := config.ParseDatabaseURL("sqlite:///" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	d, err := db.Open(context.Background(), u, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	require.NoError(t, d.Migrate(context.Background()))
	return d
}

func TestHistoryWorker_StopFlushes(t *testing.T) {
	d := openTestDB(t)
	q := db.New(d, d.Dialect)

	var written atomic.Int64
	w := NewHistoryWorker(d, q, zaptest.NewLogger(t), 100, time.Hour, 16, func(n int) { written.Add(int64(n)) })
	w.Start()

	for _, id := range []string{"a", "b", "c"} {
		require.True(t, w.Enqueue(db.Action{ID: id, Type: "t", CreatedAt: time.Now()}))
	}
	w.Stop()

	got, err := q.ListActions(context.Background(), db.ListActionsParams{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, int64(3), written.Load())
}

func TestHistoryWorker_FlushesOnBatchSize(t *testing.T) {
	d := openTestDB(t)
	q := db.New(d, d.Dialect)

	var written atomic.Int64
	w := NewHistoryWorker(d, q, zaptest.NewLogger(t), 2, time.Hour, 16, func(n int) { written.Add(int64(n)) })
	w.Start()
	defer w.Stop()

	w.Enqueue(db.Action{ID: "a", Type: "t", CreatedAt: time.Now()})
	w.Enqueue(db.Action{ID: "b", Type: "t", CreatedAt: time.Now()})

	assert.Eventually(t, func() bool { return written.Load() == 2 }, 5*time.Second, 10*time.Millisecond)
}

func TestHistoryWorker_FallbackKeepsGoodRecords(t *testing.T) {
	d := openTestDB(t)
	q := db.New(d, d.Dialect)
	require.NoError(t, q.InsertActions(context.Background(), []db.Action{{ID: "dup", Type: "t", CreatedAt: time.Now()}}))

	w := NewHistoryWorker(d, q, zaptest.NewLogger(t), 100, time.Hour, 16, nil)
	w.Start()
	w.Enqueue(db.Action{ID: "dup", Type: "t", CreatedAt: time.Now()})
	w.Enqueue(db.Action{ID: "fresh", Type: "t", CreatedAt: time.Now()})
	w.Stop()

	_, err := q.GetAction(context.Background(), "fresh")
	assert.NoError(t, err)
}

func TestHistoryWorker_EnqueueFull(t *testing.T) {
	w := NewHistoryWorker(nil, nil, zaptest.NewLogger(t), 1, time.Hour, 1, nil)
	assert.True(t, w.Enqueue(db.Action{ID: "a"}))
	assert.False(t, w.Enqueue(db.Action{ID: "b"}))
}

func TestHistoryWorker_EnqueueAfterStop(t *testing.T) {
	d := openTestDB(t)
	w := NewHistoryWorker(d, db.New(d, d.Dialect), zaptest.NewLogger(t), 10, time.Hour, 4, nil)
	w.Start()
	w.Stop()

	assert.NotPanics(t, func() {
		assert.False(t, w.Enqueue(db.Action{ID: "late", Type: "t", CreatedAt: time.Now()}))
	})
	assert.NotPanics(t, w.Stop)
}

// The fallback runs after the batch retries may have used up their deadline,
// so it must not depend on the batch context.
func TestHistoryWorker_FallbackUsesOwnDeadline(t *testing.T) {
	d := openTestDB(t)
	q := db.New(d, d.Dialect)
	var written atomic.Int64
	w := NewHistoryWorker(d, q, zaptest.NewLogger(t), 10, time.Hour, 4, func(n int) { written.Add(int64(n)) })

	w.perRecordFallback([]db.Action{{ID: "solo", Type: "t", CreatedAt: time.Now()}})

	_, err := q.GetAction(context.Background(), "solo")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), written.Load())
}
