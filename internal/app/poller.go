package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/state"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 30 * time.Second
)

// Poller asks the UI to refresh the watched scope at a fixed cadence, backing
// off while loads of that scope keep failing. It never touches views itself:
// the UI decides on its own goroutine whether a refresh may replace the table.
type Poller struct {
	store    *state.Store
	interval time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	scope    api.Scope
	watching bool
}

// NewPoller returns a poller reading load health from store.
func NewPoller(store *state.Store, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{store: store, interval: interval, logger: logger}
}

// Watch switches the poller to scope.
func (p *Poller) Watch(scope api.Scope) {
	p.mu.Lock()
	p.scope = scope
	p.watching = true
	p.mu.Unlock()
}

// Start launches the polling goroutine and returns immediately. notify is
// called once per due refresh until ctx is cancelled.
func (p *Poller) Start(ctx context.Context, notify func()) {
	go func() {
		timer := time.NewTimer(p.nextDelay())
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			if p.due() {
				notify()
			}
			timer.Reset(p.nextDelay())
		}
	}()
}

func (p *Poller) due() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.watching
}

func (p *Poller) nextDelay() time.Duration {
	p.mu.Lock()
	scope, watching := p.scope, p.watching
	p.mu.Unlock()
	if !watching || p.store == nil {
		return p.interval
	}
	m, ok := p.store.Get(scope)
	if !ok {
		return p.interval
	}
	delay := calculateBackoff(m.ConsecutiveFailures, p.interval)
	if m.ConsecutiveFailures > 0 {
		p.logger.Debug("poll backing off", "scope", scope.Key(), "failures", m.ConsecutiveFailures, "delay", delay)
	}
	return delay
}

// calculateBackoff doubles base per consecutive failure, capped at maxBackoff.
// A base already above the cap is returned unchanged.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 || base >= maxBackoff {
		return base
	}
	delay := base
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
