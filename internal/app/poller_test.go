package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/grid"
	"github.com/five82/tally/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

func TestCalculateBackoff_LongBaseUnchanged(t *testing.T) {
	if got := calculateBackoff(3, time.Minute); got != time.Minute {
		t.Fatalf("calculateBackoff(3, 1m) = %v, want 1m", got)
	}
}

func TestPoller_NextDelayFollowsFailures(t *testing.T) {
	store := &state.Store{}
	scope := api.BudgetScope()
	p := NewPoller(store, time.Second, nil)

	if got := p.nextDelay(); got != time.Second {
		t.Fatalf("unwatched delay = %v, want 1s", got)
	}
	p.Watch(scope)
	store.Mount(scope, grid.Failed(errors.New("down"), grid.BudgetPolicy(grid.RoleChild)), nil)
	store.Mount(scope, grid.Failed(errors.New("down"), grid.BudgetPolicy(grid.RoleChild)), nil)
	if got := p.nextDelay(); got != 4*time.Second {
		t.Fatalf("delay after 2 failures = %v, want 4s", got)
	}
}

func TestPoller_NotifiesOnlyWhileWatching(t *testing.T) {
	p := NewPoller(&state.Store{}, 10*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	p.Start(ctx, func() { calls.Add(1) })

	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatalf("notified %d times before Watch", calls.Load())
	}

	p.Watch(api.BudgetScope())
	deadline := time.Now().Add(time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if calls.Load() == 0 {
		t.Fatalf("poller never notified")
	}

	cancel()
	time.Sleep(30 * time.Millisecond)
	after := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != after {
		t.Fatalf("poller kept notifying after cancel")
	}
}
