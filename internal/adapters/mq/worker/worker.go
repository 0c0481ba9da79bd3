// Package worker runs the single writer that appends races to the history.
//
// Exactly one Writer goroutine appends and persists rows, so the table and
// the game session change in one serialized critical section.
// Readers observe the table through an atomic snapshot and never see a
// partially appended row.
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/racebet/internal/adapters/mq/queue"
	"github.com/okian/racebet/internal/domain/model"
	"github.com/okian/racebet/internal/domain/session"
	"github.com/okian/racebet/pkg/logger"
	"github.com/okian/racebet/pkg/metrics"
)

// Persister makes a table version durable.
type Persister interface {
	Persist(ctx context.Context, t model.Table) error
}

// Queue defines how the writer receives jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Writer serializes appends to the race history.
type Writer struct {
	queue    Queue
	store    Persister
	registry model.Registry
	initial  model.Table
	name     string

	// mu guards sess and orders session commands with appends.
	mu       sync.Mutex
	sess     session.Session
	snapshot atomic.Pointer[model.Table]

	started atomic.Bool
	done    chan struct{}

	logger logger.Logger
}

// NewWriter creates a writer reading jobs from q and persisting to store.
func NewWriter(q Queue, store Persister, opts ...Option) *Writer {
	w := &Writer{
		queue:    q,
		store:    store,
		registry: model.DefaultRegistry(),
		name:     "writer",
		sess:     session.Idle(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named("writer")
	}
	if w.name != "writer" {
		w.logger = w.logger.Named(w.name)
	}

	t := w.initial
	w.snapshot.Store(&t)
	metrics.UpdateHistoryRows(t.Len())
	metrics.UpdateActiveGame(int(w.sess.Game))

	return w
}

// Run processes jobs until the queue is closed and drained or ctx ends.
func (w *Writer) Run(ctx context.Context) {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, j)
		}
	}
}

// Done is closed once Run has returned.
func (w *Writer) Done() <-chan struct{} { return w.done }

// Shutdown waits for Run to return. Close the queue first so Run can drain it.
func (w *Writer) Shutdown(ctx context.Context) error {
	if !w.started.Load() {
		return nil
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Snapshot returns the latest published table.
func (w *Writer) Snapshot() model.Table { return *w.snapshot.Load() }

// Session returns the current game session.
func (w *Writer) Session() session.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sess
}

// StartGame opens the next game after those in the current snapshot.
func (w *Writer) StartGame(ctx context.Context) session.Session {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.sess = session.StartGame(w.Snapshot())
	metrics.UpdateActiveGame(int(w.sess.Game))
	w.logger.Info(ctx, "game started", logger.Int("game", int(w.sess.Game)), logger.String("session", w.sess.ID))
	return w.sess
}

// FinishGame ends the current game.
func (w *Writer) FinishGame(ctx context.Context) session.Session {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.sess.Active() {
		w.logger.Info(ctx, "game finished",
			logger.Int("game", int(w.sess.Game)),
			logger.Int("rounds", w.sess.Round-1),
		)
	}
	w.sess = w.sess.Finish()
	metrics.UpdateActiveGame(int(w.sess.Game))
	return w.sess
}

// process appends one race. The reply channel must have room for one value.
func (w *Writer) process(ctx context.Context, j queue.Job) {
	start := time.Now()
	defer func() { metrics.RecordWriterLatency(float64(time.Since(start).Microseconds()) / 1000) }()

	outcome := w.apply(ctx, j)
	if outcome.Err != nil {
		metrics.RecordWriterError()
		metrics.RecordErrorByComponent("writer", "append")
		w.logger.Warn(ctx, "append rejected",
			logger.String("submission", j.SubmissionID),
			logger.Error(outcome.Err),
		)
	}
	if j.Reply != nil {
		j.Reply <- outcome
	}
}

func (w *Writer) apply(ctx context.Context, j queue.Job) model.AppendOutcome {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(j.Rows) > 0 {
		return w.importRows(ctx, j.Rows)
	}

	row, err := w.sess.Row(j.Positions, w.registry)
	if err != nil {
		return model.AppendOutcome{Err: err}
	}

	next := w.Snapshot().Append(row)
	if err := w.store.Persist(ctx, next); err != nil {
		metrics.RecordErrorByType("persist", "high")
		return model.AppendOutcome{Err: fmt.Errorf("persist race: %w", err)}
	}

	w.snapshot.Store(&next)
	w.sess = w.sess.Advance()

	metrics.RecordRaceRecorded()
	metrics.UpdateHistoryRows(next.Len())
	w.logger.Debug(ctx, "race recorded",
		logger.Int("game", int(row.Game)),
		logger.Int("round", row.Round),
		logger.Int("first", int(row.First())),
	)
	return model.AppendOutcome{Row: row, Table: next}
}

// importRows appends fully specified rows in one persist. Callers hold w.mu.
func (w *Writer) importRows(ctx context.Context, rows []model.RaceResult) model.AppendOutcome {
	for i, r := range rows {
		if err := model.ValidatePositions(r.Ranks[:], w.registry); err != nil {
			return model.AppendOutcome{Err: fmt.Errorf("row %d: %w", i, err)}
		}
	}

	next := model.NewTable(append(w.Snapshot().Rows(), rows...)...)
	if err := w.store.Persist(ctx, next); err != nil {
		metrics.RecordErrorByType("persist", "high")
		return model.AppendOutcome{Err: fmt.Errorf("persist races: %w", err)}
	}
	w.snapshot.Store(&next)

	for range rows {
		metrics.RecordRaceRecorded()
	}
	metrics.UpdateHistoryRows(next.Len())
	w.logger.Debug(ctx, "races imported", logger.Int("rows", len(rows)))
	return model.AppendOutcome{Row: rows[len(rows)-1], Table: next}
}
