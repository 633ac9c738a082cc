package batch

import (
	"context"
	"runtime"
	"strconv"
	"sync"

	"github.com/okian/autocal/pkg/logger"
	"github.com/okian/autocal/pkg/metrics"
)

// Runner processes a single job; implementations own all per-job work
// (read, calibrate, persist, record).
type Runner interface {
	Process(ctx context.Context, j Job) error
}

// Pool drains a queue with a fixed set of workers.
type Pool struct {
	queue  Queue
	runner Runner
	size   int
	log    logger.Logger

	wg sync.WaitGroup
}

// NewPool creates a pool with configuration options. The default worker
// count scales with the machine.
func NewPool(q Queue, r Runner, opts ...PoolOption) *Pool {
	p := &Pool{
		queue:  q,
		runner: r,
		size:   runtime.NumCPU(),
		log:    logger.Get().Named("pool"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the workers. Each worker exits when the queue's dequeue
// channel closes or the context is canceled.
func (p *Pool) Start(ctx context.Context) {
	metrics.UpdateWorkerCount(p.size)
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run(ctx, p.log.Named("worker-"+strconv.Itoa(i)))
	}
}

// Wait blocks until all workers have exited.
func (p *Pool) Wait() {
	p.wg.Wait()
	metrics.UpdateWorkerCount(0)
}

func (p *Pool) run(ctx context.Context, log logger.Logger) {
	defer p.wg.Done()

	jobs := p.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := p.runner.Process(ctx, j); err != nil {
				metrics.RecordRecordingFailed()
				log.Error(ctx, "job failed",
					logger.String("jobID", j.ID),
					logger.String("path", j.Path),
					logger.Error(err),
				)
			}
		}
	}
}
