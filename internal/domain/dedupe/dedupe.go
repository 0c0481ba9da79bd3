// Package dedupe tracks race submission ids so a retried submission is
// recorded at most once.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/racebet/internal/domain/model"
)

const defaultMaxSize = 10_000

// Deduper records seen submission ids and the row each one produced.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and reserves it if not.
	// Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Complete attaches the recorded row to a reserved id.
	Complete(ctx context.Context, id string, row model.RaceResult)

	// Lookup returns the row recorded for id, if the submission completed.
	Lookup(ctx context.Context, id string) (model.RaceResult, bool)

	// Unrecord releases a reserved id whose submission failed, so it can be retried.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

type entry struct {
	id       string
	row      model.RaceResult
	complete bool
}

// inMemoryDeduper keeps ids in insertion order and evicts the oldest once
// maxSize is reached. maxSize <= 0 disables eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	byID    map[string]*list.Element
	order   *list.List
	maxSize int
	size    atomic.Int64
}

// Option configures the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds how many submission ids are remembered. Once full, the
// oldest id is forgotten and a retry of it would be recorded again.
// maxSize <= 0 keeps every id.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}

// NewInMemoryDeduper creates a deduper holding up to 10,000 ids by default.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.byID = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byID[id]; ok {
		return true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		d.evictOldest()
	}
	d.byID[id] = d.order.PushBack(&entry{id: id})
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Complete(_ context.Context, id string, row model.RaceResult) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.byID[id]; ok {
		e := el.Value.(*entry)
		e.row = row
		e.complete = true
	}
}

func (d *inMemoryDeduper) Lookup(_ context.Context, id string) (model.RaceResult, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.byID[id]
	if !ok {
		return model.RaceResult{}, false
	}
	e := el.Value.(*entry)
	return e.row, e.complete
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.byID[id]; ok {
		d.order.Remove(el)
		delete(d.byID, id)
		d.size.Add(-1)
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	el := d.order.Front()
	if el == nil {
		return
	}
	d.order.Remove(el)
	delete(d.byID, el.Value.(*entry).id)
	d.size.Add(-1)
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
