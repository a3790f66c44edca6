package run

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically discards terminated runs past their retention window.
// Runs and their event logs live only in process memory, so sweeping is what
// bounds memory growth over time.
type Sweeper struct {
	registry  *Registry
	retention time.Duration
	interval  time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper creates a sweeper over the registry.
func NewSweeper(registry *Registry, retention, interval time.Duration) *Sweeper {
	return &Sweeper{
		registry:  registry,
		retention: retention,
		interval:  interval,
	}
}

// Start launches the background sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("Run sweeper started",
		"retention", s.retention,
		"interval", s.interval)
}

// Stop signals the sweep loop to exit and waits for it to finish.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("Run sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

func (s *Sweeper) sweepOnce() {
	removed := s.registry.sweep(time.Now().UTC().Add(-s.retention))
	if removed > 0 {
		slog.Info("Retention: discarded terminated runs", "count", removed)
	}
}
