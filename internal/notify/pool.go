// Package notify delivers dashboard events to a chat channel without
// blocking the request that caused them.
package notify

import (
	"context"
	"sync"
	"time"

	"aduan/internal/observability"

	"go.uber.org/zap"
)

// Sender delivers one formatted message and returns the remote message id.
type Sender interface {
	SendMessage(ctx context.Context, text string) (string, error)
}

// Job is one message waiting to be delivered.
type Job struct {
	Kind string // submit, status, delete, discrepancy
	Ref  string // report id or correlation token, for logs
	Text string
}

// Result is the outcome of delivering a Job.
type Result struct {
	Job       Job
	MessageID string
	Err       error
}

// Pool manages a fixed set of workers draining a buffered job queue.
//
// Lifecycle:
//  1. NewPool starts the workers
//  2. Submit enqueues without blocking; a full queue drops the job
//  3. Close stops intake and waits for queued jobs to finish
type Pool struct {
	sender  Sender
	jobs    chan Job
	results chan Result
	timeout time.Duration
	logger  *zap.Logger

	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	interval time.Duration
}

// Queue sizes for jobs and results.
const (
	jobBuffer    = 100
	resultBuffer = 100
)

// sendInterval spaces messages from one worker to stay well under the Bot
// API limit of 30 messages per second.
const sendInterval = 100 * time.Millisecond

// NewPool creates and starts a pool with workerCount workers. Each delivery
// gets its own timeout.
func NewPool(sender Sender, workerCount int, timeout time.Duration, logger *zap.Logger) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}

	p := &Pool{
		sender:   sender,
		jobs:     make(chan Job, jobBuffer),
		results:  make(chan Result, resultBuffer),
		timeout:  timeout,
		logger:   logger,
		interval: sendInterval,
	}

	for i := 0; i < workerCount; i++ {
		p.wg.Add(1)
		go p.work(i + 1)
	}

	logger.Info("✓ Notification pool started", zap.Int("workers", workerCount))
	return p
}

// Submit queues a job. It reports false when the pool is closed or full.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case p.jobs <- job:
		return true
	default:
		p.logger.Warn("⚠️  Notification queue full, dropping message",
			zap.String("kind", job.Kind), zap.String("ref", job.Ref))
		return false
	}
}

// Results returns delivery outcomes. Outcomes are dropped when nobody reads
// and the buffer is full.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Observe counts every delivery outcome until the pool is closed. Run it in
// its own goroutine; it is the single reader of Results.
func (p *Pool) Observe(metrics observability.Metrics) {
	for res := range p.results {
		outcome := "sent"
		if res.Err != nil {
			outcome = "failed"
		}
		metrics.IncrementNotification(res.Job.Kind, outcome)
	}
}

// Close stops accepting jobs, waits for queued ones and closes Results.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	close(p.results)
}

func (p *Pool) work(id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		res := p.deliver(job)
		if res.Err != nil {
			p.logger.Warn("✗ Notification failed",
				zap.Int("worker", id), zap.String("kind", job.Kind),
				zap.String("ref", job.Ref), zap.Error(res.Err))
		} else {
			p.logger.Debug("✓ Notification sent",
				zap.Int("worker", id), zap.String("kind", job.Kind),
				zap.String("ref", job.Ref), zap.String("message_id", res.MessageID))
		}

		select {
		case p.results <- res:
		default:
		}

		time.Sleep(p.interval)
	}
}

func (p *Pool) deliver(job Job) Result {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	id, err := p.sender.SendMessage(ctx, job.Text)
	return Result{Job: job, MessageID: id, Err: err}
}
