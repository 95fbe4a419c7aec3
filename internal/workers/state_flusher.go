package workers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"marathon-readiness/toolkit/internal/db/repositories"
	"marathon-readiness/toolkit/internal/logging"
	"marathon-readiness/toolkit/internal/metrics"
	"marathon-readiness/toolkit/internal/models/entities"
	"marathon-readiness/toolkit/internal/trend"
)

// StateFlusher mirrors locally mutated trendline state to the remote store
// after a quiet period. Rapid successive writes for the same user collapse
// into a single remote write; each new write resets the user's timer.
//
// Remote failures are logged and counted but never surfaced to the caller.
// The local copy stays authoritative and the next mutation retries.
type StateFlusher struct {
	repo    *repositories.StateRepository
	metrics *metrics.MetricsRegistry
	quiet   time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]trend.Payload
	closed  bool
}

func NewStateFlusher(repo *repositories.StateRepository, reg *metrics.MetricsRegistry, quiet time.Duration) *StateFlusher {
	return &StateFlusher{
		repo:    repo,
		metrics: reg,
		quiet:   quiet,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]trend.Payload),
	}
}

// Schedule queues a debounced flush of the given payload. A pending flush
// for the same user is cancelled and its quiet period restarts.
func (f *StateFlusher) Schedule(userID string, payload trend.Payload) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	if t, ok := f.timers[userID]; ok {
		t.Stop()
	} else {
		f.metrics.StateFlushPending.Inc()
	}

	f.pending[userID] = payload
	f.timers[userID] = time.AfterFunc(f.quiet, func() {
		f.fire(userID)
	})
}

// FlushNow writes the payload to the remote store immediately, cancelling
// any pending debounced flush for the user. Used when the remote copy is
// known to be missing or stale.
func (f *StateFlusher) FlushNow(ctx context.Context, userID string, payload trend.Payload) error {
	f.cancel(userID)

	if err := f.write(ctx, userID, payload); err != nil {
		f.metrics.StateFlushFailures.Inc()
		return err
	}
	f.metrics.StateFlushesTotal.WithLabelValues("immediate").Inc()
	return nil
}

// Cancel drops any pending flush for the user without writing. Used when
// the state has been wiped and the remote row deleted directly.
func (f *StateFlusher) Cancel(userID string) {
	f.cancel(userID)
}

// Stop cancels all timers and flushes every pending payload before
// returning. Called during server shutdown.
func (f *StateFlusher) Stop(ctx context.Context) {
	f.mu.Lock()
	f.closed = true
	remaining := make(map[string]trend.Payload, len(f.pending))
	for userID, payload := range f.pending {
		if t, ok := f.timers[userID]; ok {
			t.Stop()
		}
		remaining[userID] = payload
		f.metrics.StateFlushPending.Dec()
	}
	f.timers = make(map[string]*time.Timer)
	f.pending = make(map[string]trend.Payload)
	f.mu.Unlock()

	for userID, payload := range remaining {
		if err := f.write(ctx, userID, payload); err != nil {
			f.metrics.StateFlushFailures.Inc()
			logging.Warn("shutdown flush failed", "user_id", userID, "error", err.Error())
			continue
		}
		f.metrics.StateFlushesTotal.WithLabelValues("shutdown").Inc()
	}
}

func (f *StateFlusher) cancel(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if t, ok := f.timers[userID]; ok {
		t.Stop()
		delete(f.timers, userID)
		delete(f.pending, userID)
		f.metrics.StateFlushPending.Dec()
	}
}

func (f *StateFlusher) fire(userID string) {
	f.mu.Lock()
	payload, ok := f.pending[userID]
	if ok {
		delete(f.timers, userID)
		delete(f.pending, userID)
		f.metrics.StateFlushPending.Dec()
	}
	f.mu.Unlock()

	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := f.write(ctx, userID, payload); err != nil {
		f.metrics.StateFlushFailures.Inc()
		logging.Warn("debounced flush failed", "user_id", userID, "error", err.Error())
		return
	}
	f.metrics.StateFlushesTotal.WithLabelValues("debounce").Inc()
}

func (f *StateFlusher) write(ctx context.Context, userID string, payload trend.Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return f.repo.Save(ctx, &entities.TrendState{
		UserID:    userID,
		Payload:   string(raw),
		Version:   payload.Version,
		UpdatedAt: payload.UpdatedAt,
	})
}
