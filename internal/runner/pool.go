// Package runner executes checks through a rate-limited worker pool and
// aggregates the outcomes.
package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bankprobe/internal/checks"
	"github.com/bankprobe/internal/config"
	"github.com/bankprobe/internal/probe"
)

// Job pairs one check with the suite environment it runs in.
type Job struct {
	Suite string
	Check checks.Check
	Env   *checks.Env
}

// Pool manages a pool of worker goroutines executing checks.
type Pool struct {
	cfg     config.Runner
	metrics *probe.Metrics
	logger  *zap.Logger
	limiter *rate.Limiter
	jobs    chan Job
	results chan Result
	wg      sync.WaitGroup
	active  int64
}

// NewPool creates a new worker pool.
func NewPool(cfg config.Runner, metrics *probe.Metrics, logger *zap.Logger) *Pool {
	return &Pool{
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(cfg.MaxRPS), 1),
		jobs:    make(chan Job, cfg.QueueSize),
		results: make(chan Result, cfg.QueueSize),
	}
}

// Start launches the workers.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.cfg.PoolSize; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	p.logger.Info("worker pool started",
		zap.Int("workers", p.cfg.PoolSize),
		zap.Int("queue", p.cfg.QueueSize))
}

// Submit queues a job, blocking while the queue is full.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Results exposes the outcome stream. It is closed by Stop after the last
// worker exits.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Active returns the number of checks currently executing.
func (p *Pool) Active() int {
	return int(atomic.LoadInt64(&p.active))
}

// Stop closes the queue, waits for in-flight checks, then closes the
// result stream.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
	p.logger.Info("worker pool stopped")
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.process(ctx, job)
		}
	}
}

func (p *Pool) process(ctx context.Context, job Job) {
	if err := p.limiter.Wait(ctx); err != nil {
		return // context cancelled
	}

	atomic.AddInt64(&p.active, 1)
	if p.metrics != nil {
		p.metrics.ChecksInFlight.Inc()
	}
	defer func() {
		atomic.AddInt64(&p.active, -1)
		if p.metrics != nil {
			p.metrics.ChecksInFlight.Dec()
		}
	}()

	start := time.Now()
	err := job.Check.Run(ctx, job.Env)
	duration := time.Since(start)

	if p.metrics != nil {
		p.metrics.RecordCheck(job.Check.Group, err == nil, duration.Seconds())
	}

	if err != nil {
		p.logger.Warn("check failed",
			zap.String("suite", job.Suite),
			zap.String("group", job.Check.Group),
			zap.String("check", job.Check.Name),
			zap.Duration("duration", duration),
			zap.Error(err))
	} else {
		p.logger.Debug("check passed",
			zap.String("suite", job.Suite),
			zap.String("group", job.Check.Group),
			zap.String("check", job.Check.Name),
			zap.Duration("duration", duration))
	}

	select {
	case p.results <- Result{
		Suite:    job.Suite,
		Group:    job.Check.Group,
		Name:     job.Check.Name,
		Err:      err,
		Duration: duration,
	}:
	case <-ctx.Done():
	}
}
