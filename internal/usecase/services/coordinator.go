package services

import (
	"context"
	"sync"
	"time"

	"github.com/api-sage/ledger-settlement/internal/domain"
	"github.com/api-sage/ledger-settlement/internal/logger"
	"github.com/api-sage/ledger-settlement/internal/usecase/service_interfaces"
)

// Coordinator owns the poll timer and the worker pool. On every tick it
// lists RECEIVED requests and hands each to a worker; the poll and the
// settlement are deliberately not transactional with each other, so a
// request may be dispatched after another cycle already settled it. The
// transactor resolves that harmlessly as INVALID_STATE.
type Coordinator struct {
	workers       int
	initialDelay  time.Duration
	period        time.Duration
	shutdownGrace time.Duration
	requests      service_interfaces.RequestService
	transactor    service_interfaces.Transactor

	mu      sync.Mutex
	started bool
	quit    chan struct{}
	jobs    chan domain.TransferRequest
	wg      *sync.WaitGroup
}

func NewCoordinator(
	workers int,
	initialDelay time.Duration,
	period time.Duration,
	shutdownGrace time.Duration,
	requests service_interfaces.RequestService,
	transactor service_interfaces.Transactor,
) *Coordinator {
	return &Coordinator{
		workers:       workers,
		initialDelay:  initialDelay,
		period:        period,
		shutdownGrace: shutdownGrace,
		requests:      requests,
		transactor:    transactor,
	}
}

func (c *Coordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true
	c.quit = make(chan struct{})
	c.jobs = make(chan domain.TransferRequest, c.workers*8)
	c.wg = &sync.WaitGroup{}

	logger.Info("coordinator starting", logger.Fields{
		"workers":      c.workers,
		"initialDelay": c.initialDelay.String(),
		"period":       c.period.String(),
	})

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(c.quit, c.jobs, c.wg)
	}

	c.wg.Add(1)
	go c.poll(c.quit, c.jobs, c.wg)
}

// Stop stops accepting new ticks and gives in-flight settlements a bounded
// grace period. Timing out is logged, never escalated: requests that were
// not settled stay RECEIVED and are picked up on the next start.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	quit, wg := c.quit, c.wg
	c.mu.Unlock()

	logger.Info("coordinator stopping", nil)
	close(quit)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("coordinator stopped", nil)
	case <-time.After(c.shutdownGrace):
		logger.Warn("coordinator shutdown timed out, abandoning in-flight work", logger.Fields{
			"grace": c.shutdownGrace.String(),
		})
	}
}

func (c *Coordinator) poll(quit chan struct{}, jobs chan domain.TransferRequest, wg *sync.WaitGroup) {
	defer wg.Done()

	delay := time.NewTimer(c.initialDelay)
	defer delay.Stop()
	select {
	case <-delay.C:
	case <-quit:
		return
	}

	ticker := time.NewTicker(c.period)
	defer ticker.Stop()

	c.pollOnce(quit, jobs)
	for {
		select {
		case <-ticker.C:
			c.pollOnce(quit, jobs)
		case <-quit:
			return
		}
	}
}

func (c *Coordinator) pollOnce(quit chan struct{}, jobs chan domain.TransferRequest) {
	list, err := c.requests.ListRequestsToProcess(context.Background())
	if err != nil {
		logger.Error("coordinator poll failed", err, nil)
		return
	}

	logger.Info("coordinator found requests to process", logger.Fields{
		"count": len(list),
	})

	for _, request := range list {
		select {
		case jobs <- request:
		case <-quit:
			return
		}
	}
}

func (c *Coordinator) worker(quit chan struct{}, jobs chan domain.TransferRequest, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case request := <-jobs:
			// Failures are logged by the transactor; the next poll cycle is
			// the retry mechanism.
			_, _ = c.transactor.Process(context.Background(), request)
		case <-quit:
			return
		}
	}
}
