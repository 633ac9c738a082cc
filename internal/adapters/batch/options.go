package batch

import "github.com/okian/autocal/pkg/logger"

// QueueOption configures the in-memory queue.
type QueueOption func(*InMemoryQueue)

// WithCapacity sets how many jobs the queue buffers before Enqueue
// starts refusing.
func WithCapacity(n int) QueueOption {
	return func(q *InMemoryQueue) {
		if n > 0 {
			q.capacity = n
		}
	}
}

// PoolOption configures the worker pool.
type PoolOption func(*Pool)

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.size = n
		}
	}
}

// WithPoolLogger sets a custom logger for the pool.
func WithPoolLogger(l logger.Logger) PoolOption {
	return func(p *Pool) {
		if l != nil {
			p.log = l
		}
	}
}
