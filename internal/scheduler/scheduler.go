package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is a unit of background work driven on an interval.
type Job func(ctx context.Context)

// Poller runs a named job on a fixed interval until stopped. It mirrors the
// server-side cron the exchange flows expect: sending ready gate reports and
// polling for relocation permit decisions.
type Poller struct {
	name     string
	interval time.Duration
	job      Job

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

func NewPoller(name string, interval time.Duration, job Job) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		job:      job,
	}
}

// Start launches the poll loop. Starting a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return
	}
	p.isRunning = true
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.runLoop(ctx)

	slog.Info("Poller started", "name", p.name, "interval", p.interval)
}

// Stop cancels the loop and waits for the in-flight run, honoring the
// deadline of the passed context.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = false
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Poller stopped", "name", p.name)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Poller) runLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.job(ctx)
		}
	}
}
