// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	appendqueue "github.com/okian/racebet/internal/adapters/mq/queue"
	"github.com/okian/racebet/internal/adapters/mq/worker"
	"github.com/okian/racebet/internal/adapters/repository"
	"github.com/okian/racebet/internal/domain/analysis"
	"github.com/okian/racebet/internal/domain/dedupe"
	"github.com/okian/racebet/internal/domain/model"
	"github.com/okian/racebet/internal/domain/session"
	"github.com/okian/racebet/pkg/logger"
	"github.com/okian/racebet/pkg/metrics"
)

const (
	defaultQueueSize  = 1024
	defaultDedupeSize = 10_000
	defaultStorePath  = "race_results.csv"
	stopTimeout       = 5 * time.Second
)

// Recommendation is the bet suggested for the next race.
type Recommendation struct {
	CompetitorID model.CompetitorID `json:"competitor_id"`
	Name         string             `json:"name"`
	Label        string             `json:"label"`
	Source       analysis.Source    `json:"source"`
}

// SubmitResult reports a recorded race and the recommendation that follows it.
type SubmitResult struct {
	Row            model.RaceResult `json:"row"`
	Duplicate      bool             `json:"duplicate"`
	Recommendation Recommendation   `json:"recommendation"`
}

// Service owns the race history and serves analytics over it.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	registry model.Registry
	deduper  dedupe.Deduper
	queue    *appendqueue.InMemoryQueue
	writer   *worker.Writer

	// Configuration
	queueSize  int
	dedupeSize int

	// State
	started   bool
	runCancel context.CancelFunc

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the history backend. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRegistry sets the competitor registry.
func WithRegistry(reg model.Registry) Option {
	return func(s *Service) {
		if reg.Len() > 0 {
			s.registry = reg
		}
	}
}

// WithQueueSize sets the maximum number of pending submissions.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many submission ids are remembered.
// Zero or less keeps every id.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		registry:   model.DefaultRegistry(),
		queueSize:  defaultQueueSize,
		dedupeSize: defaultDedupeSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the history and starts the single writer.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewCSVStore(defaultStorePath)
	}

	s.logger.Info(ctx, "starting race service...")

	table, err := s.store.Load(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("service", "load")
		return fmt.Errorf("load history: %w", err)
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = appendqueue.NewInMemoryQueue(appendqueue.WithCapacity(s.queueSize))
	s.writer = worker.NewWriter(s.queue, s.store,
		worker.WithRegistry(s.registry),
		worker.WithInitialTable(table),
		worker.WithLogger(s.logger.Named("writer")),
	)

	// The writer outlives the caller's context so Stop can drain it.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.runCancel = cancel
	go s.writer.Run(runCtx)

	s.started = true
	s.logger.Info(ctx, "race service started",
		logger.Int("races", table.Len()),
		logger.Int("nextGame", int(session.NextGame(table))),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains pending submissions and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping race service...")

	_ = s.queue.Close()
	shutdownCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	if err := s.writer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "writer did not drain", logger.Error(err))
	}
	cancel()
	s.runCancel()

	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "closing store failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "race service stopped")
}

// Registry returns the competitor registry.
func (s *Service) Registry() model.Registry { return s.registry }

// Snapshot returns the current history. Before Start it is empty.
func (s *Service) Snapshot(_ context.Context) model.Table {
	w := s.currentWriter()
	if w == nil {
		return model.Table{}
	}
	return w.Snapshot()
}

// Session returns the current game session.
func (s *Service) Session(_ context.Context) session.Session {
	w := s.currentWriter()
	if w == nil {
		return session.Idle()
	}
	return w.Session()
}

// StartGame opens the next game.
func (s *Service) StartGame(ctx context.Context) (session.Session, error) {
	w := s.currentWriter()
	if w == nil {
		return session.Session{}, ErrNotStarted
	}
	return w.StartGame(ctx), nil
}

// FinishGame ends the current game, if any.
func (s *Service) FinishGame(ctx context.Context) session.Session {
	w := s.currentWriter()
	if w == nil {
		return session.Idle()
	}
	return w.FinishGame(ctx)
}

// Submit records one race for the active game. A non-empty submissionID
// makes the call idempotent: repeating it returns the row recorded first.
func (s *Service) Submit(ctx context.Context, submissionID string, positions []model.CompetitorID) (SubmitResult, error) {
	s.mu.RLock()
	started, q, w := s.started, s.queue, s.writer
	s.mu.RUnlock()
	if !started {
		return SubmitResult{}, ErrNotStarted
	}

	if submissionID != "" && s.deduper.SeenAndRecord(ctx, submissionID) {
		row, ok := s.deduper.Lookup(ctx, submissionID)
		if !ok {
			return SubmitResult{}, ErrSubmissionInProgress
		}
		metrics.RecordSubmissionDuplicate()
		s.logger.Debug(ctx, "duplicate submission", logger.String("submission", submissionID))
		return SubmitResult{Row: row, Duplicate: true, Recommendation: s.recommend(w.Snapshot())}, nil
	}

	reply := make(chan model.AppendOutcome, 1)
	job := model.AppendJob{SubmissionID: submissionID, Positions: positions, Reply: reply}
	if err := q.Enqueue(ctx, job); err != nil {
		s.release(ctx, submissionID)
		metrics.RecordSubmissionRejected("backpressure")
		return SubmitResult{}, err
	}

	select {
	case out := <-reply:
		if out.Err != nil {
			s.release(ctx, submissionID)
			metrics.RecordSubmissionRejected(rejectReason(out.Err))
			return SubmitResult{}, out.Err
		}
		if submissionID != "" {
			s.deduper.Complete(ctx, submissionID, out.Row)
		}
		return SubmitResult{Row: out.Row, Recommendation: s.recommend(out.Table)}, nil
	case <-ctx.Done():
		// The job is queued and will still be applied; settle the id then.
		go s.settle(context.WithoutCancel(ctx), submissionID, reply, w.Done())
		return SubmitResult{}, ctx.Err()
	case <-w.Done():
		s.release(ctx, submissionID)
		return SubmitResult{}, ErrNotStarted
	}
}

// Import appends fully specified rows through the writer in one persist.
// The game session is not consulted or advanced.
func (s *Service) Import(ctx context.Context, rows []model.RaceResult) (model.Table, error) {
	s.mu.RLock()
	started, q, w := s.started, s.queue, s.writer
	s.mu.RUnlock()
	if !started {
		return model.Table{}, ErrNotStarted
	}
	if len(rows) == 0 {
		return w.Snapshot(), nil
	}

	reply := make(chan model.AppendOutcome, 1)
	if err := q.Enqueue(ctx, model.AppendJob{Rows: rows, Reply: reply}); err != nil {
		metrics.RecordSubmissionRejected("backpressure")
		return model.Table{}, err
	}

	select {
	case out := <-reply:
		if out.Err != nil {
			metrics.RecordSubmissionRejected(rejectReason(out.Err))
			return model.Table{}, out.Err
		}
		s.logger.Info(ctx, "races imported", logger.Int("rows", len(rows)), logger.Int("races", out.Table.Len()))
		return out.Table, nil
	case <-ctx.Done():
		return model.Table{}, ctx.Err()
	case <-w.Done():
		return model.Table{}, ErrNotStarted
	}
}

// Recommend returns the bet for the next race.
func (s *Service) Recommend(_ context.Context) Recommendation {
	return s.recommend(s.Snapshot(context.Background()))
}

// Patterns returns the repeated (game, order) pairs in the history.
func (s *Service) Patterns(_ context.Context) []analysis.PatternEntry {
	start := time.Now()
	entries := analysis.DetectPatterns(s.Snapshot(context.Background()))
	metrics.RecordAnalysisLatency("patterns", msSince(start))
	metrics.UpdatePatternsFound(len(entries))
	return entries
}

// Heatmap returns first-place counts per game and competitor.
func (s *Service) Heatmap(_ context.Context) analysis.Heatmap {
	start := time.Now()
	h := analysis.FirstPlaceHeatmap(s.Snapshot(context.Background()), s.registry)
	metrics.RecordAnalysisLatency("heatmap", msSince(start))
	return h
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":    s.started,
		"queueSize":  s.queueSize,
		"dedupeSize": s.dedupeSize,
	}

	if s.started {
		table := s.writer.Snapshot()
		sess := s.writer.Session()
		queueLen := s.queue.Len(ctx)

		stats["queueLength"] = queueLen
		stats["races"] = table.Len()
		stats["nextGame"] = int(session.NextGame(table))
		stats["game"] = int(sess.Game)
		stats["round"] = sess.Round
		stats["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateHistoryRows(table.Len())
	}

	return stats
}

func (s *Service) currentWriter() *worker.Writer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writer
}

func (s *Service) recommend(t model.Table) Recommendation {
	start := time.Now()
	rec := analysis.Recommend(t, s.registry)
	metrics.RecordAnalysisLatency("recommend", msSince(start))
	_ = metrics.RecordRecommendation(string(rec.Source))
	return Recommendation{
		CompetitorID: rec.Competitor,
		Name:         s.registry.Name(rec.Competitor),
		Label:        analysis.LabelFor(rec.Competitor, s.registry),
		Source:       rec.Source,
	}
}

func (s *Service) release(ctx context.Context, submissionID string) {
	if submissionID != "" {
		s.deduper.Unrecord(ctx, submissionID)
	}
}

func (s *Service) settle(ctx context.Context, submissionID string, reply <-chan model.AppendOutcome, done <-chan struct{}) {
	select {
	case out := <-reply:
		if out.Err != nil {
			s.release(ctx, submissionID)
			return
		}
		if submissionID != "" {
			s.deduper.Complete(ctx, submissionID, out.Row)
		}
	case <-done:
		s.release(ctx, submissionID)
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidPositions):
		return "invalid_positions"
	case errors.Is(err, session.ErrNoActiveGame):
		return "no_active_game"
	default:
		return "persist"
	}
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
