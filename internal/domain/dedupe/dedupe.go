// Package dedupe tracks which input recordings a batch run has already
// accepted, so the same file path is never queued twice.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen input keys for at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was seen and records it
	// if not. Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord removes a key so the input can be retried, e.g. after the
	// queue refused the job.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// inMemoryDeduper keeps seen keys in a map. When maxSize > 0 the newest
// keys are evicted first once the bound is hit, which protects long runs
// from retry storms re-growing the set; maxSize <= 0 means unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // insertion order, only maintained in bounded mode
	maxSize int
	size    atomic.Int64
}

// NewInMemory creates a deduper with configuration options.
func NewInMemory(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}

	if d.maxSize > 0 {
		if len(d.seen) >= d.maxSize {
			d.evictNewest()
		}
		d.order = append(d.order, key)
	}
	d.seen[key] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; !ok {
		return
	}
	delete(d.seen, key)
	d.size.Add(-1)
	if d.maxSize > 0 {
		for i := len(d.order) - 1; i >= 0; i-- {
			if d.order[i] == key {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
}

// evictNewest drops the most recently recorded key. Must be called with
// d.mu held.
func (d *inMemoryDeduper) evictNewest() {
	if len(d.order) == 0 {
		return
	}
	last := d.order[len(d.order)-1]
	d.order = d.order[:len(d.order)-1]
	delete(d.seen, last)
	d.size.Add(-1)
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
