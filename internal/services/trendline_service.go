package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"marathon-readiness/toolkit/internal/chart"
	"marathon-readiness/toolkit/internal/db/repositories"
	"marathon-readiness/toolkit/internal/logging"
	"marathon-readiness/toolkit/internal/metrics"
	"marathon-readiness/toolkit/internal/pace"
	"marathon-readiness/toolkit/internal/trend"
	"marathon-readiness/toolkit/internal/workers"
)

// TrendlineService coordinates the two copies of each user's trendline state.
// The local cache is authoritative for reads; every mutation lands there
// first and is mirrored to the remote store by the debounced flusher.
// Reconciliation on load is last-writer-wins on the UpdatedAt marker.
type TrendlineService struct {
	local   *LocalStateStore
	repo    *repositories.StateRepository
	flusher *workers.StateFlusher
	metrics *metrics.MetricsRegistry

	// Serializes read-modify-write cycles. Coarse, but state blobs are
	// small and mutations are rare per user.
	mu sync.Mutex
}

func NewTrendlineService(local *LocalStateStore, repo *repositories.StateRepository, flusher *workers.StateFlusher, reg *metrics.MetricsRegistry) *TrendlineService {
	return &TrendlineService{
		local:   local,
		repo:    repo,
		flusher: flusher,
		metrics: reg,
	}
}

func emptyPayload() trend.Payload {
	return trend.Payload{Version: trend.PayloadVersion}
}

// fetchRemote reads and decodes the remote blob. A missing row and a corrupt
// payload both come back nil; a transport failure is logged and also comes
// back nil so the caller degrades to the local copy.
func (s *TrendlineService) fetchRemote(ctx context.Context, userID string) *trend.Payload {
	row, err := s.repo.Get(ctx, userID)
	if err != nil {
		logging.Warn("remote state fetch failed, using local copy", "user_id", userID, "error", err.Error())
		return nil
	}
	if row == nil {
		return nil
	}

	var p trend.Payload
	if err := json.Unmarshal([]byte(row.Payload), &p); err != nil {
		logging.Warn("corrupt remote state ignored", "user_id", userID, "error", err.Error())
		return nil
	}
	return &p
}

// LoadState returns the reconciled blob for a user.
//
// Reconciliation rules: with only a remote copy, adopt it locally. With only
// a local copy, push it to the remote store immediately (no debounce, the
// remote side is known to be missing it). With both, the greater UpdatedAt
// wins and the loser is overwritten.
func (s *TrendlineService) LoadState(ctx context.Context, userID string) trend.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx, userID)
}

func (s *TrendlineService) loadLocked(ctx context.Context, userID string) trend.Payload {
	local, hasLocal := s.local.Get(userID)
	remote := s.fetchRemote(ctx, userID)

	switch {
	case !hasLocal && remote == nil:
		return emptyPayload()

	case !hasLocal:
		s.local.Set(userID, *remote)
		return *remote

	case remote == nil:
		if err := s.flusher.FlushNow(ctx, userID, local); err != nil {
			logging.Warn("immediate push of local state failed", "user_id", userID, "error", err.Error())
		}
		return local

	default:
		if remote.UpdatedAt > local.UpdatedAt {
			s.local.Set(userID, *remote)
			return *remote
		}
		if local.UpdatedAt > remote.UpdatedAt {
			if err := s.flusher.FlushNow(ctx, userID, local); err != nil {
				logging.Warn("immediate push of local state failed", "user_id", userID, "error", err.Error())
			}
		}
		return local
	}
}

// SaveState applies a full blob handed in by a client. The incoming copy only
// wins when its UpdatedAt is at least as new as the reconciled one; either
// way the winning blob is returned.
func (s *TrendlineService) SaveState(ctx context.Context, userID string, incoming trend.Payload) (trend.Payload, error) {
	if incoming.Version != trend.PayloadVersion {
		return trend.Payload{}, fmt.Errorf("unsupported payload version %d", incoming.Version)
	}
	if len(incoming.State.Checkins) > trend.MaxCheckIns {
		return trend.Payload{}, fmt.Errorf("payload exceeds check-in limit of %d", trend.MaxCheckIns)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.loadLocked(ctx, userID)
	if incoming.UpdatedAt < current.UpdatedAt {
		return current, nil
	}

	s.local.Set(userID, incoming)
	s.flusher.Schedule(userID, incoming)
	s.metrics.StateSavesTotal.WithLabelValues("sync").Inc()
	return incoming, nil
}

func (s *TrendlineService) persist(userID string, t *trend.Tracker, origin string) trend.Payload {
	p := t.Payload()
	s.local.Set(userID, p)
	s.flusher.Schedule(userID, p)
	s.metrics.StateSavesTotal.WithLabelValues(origin).Inc()
	return p
}

// StartTracking creates or replaces the race configuration.
func (s *TrendlineService) StartTracking(ctx context.Context, userID, raceDate string, goalPaceSec *int, level pace.Level) (trend.Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := trend.FromPayload(s.loadLocked(ctx, userID))
	if err := t.StartTracking(raceDate, goalPaceSec, level); err != nil {
		return trend.Payload{}, err
	}
	return s.persist(userID, t, "config"), nil
}

// UpdateSettings edits an existing race configuration.
func (s *TrendlineService) UpdateSettings(ctx context.Context, userID, raceDate string, goalPaceSec *int, level pace.Level) (trend.Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := trend.FromPayload(s.loadLocked(ctx, userID))
	if err := t.UpdateSettings(raceDate, goalPaceSec, level); err != nil {
		return trend.Payload{}, err
	}
	return s.persist(userID, t, "config"), nil
}

// AddCheckIn records a dated pace observation.
func (s *TrendlineService) AddCheckIn(ctx context.Context, userID, date string, paceSecPerKm int, source string) (trend.CheckIn, trend.Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := trend.FromPayload(s.loadLocked(ctx, userID))
	c, err := t.AddCheckIn(date, paceSecPerKm, source)
	if err != nil {
		return trend.CheckIn{}, trend.Payload{}, err
	}
	s.metrics.CheckInsRecordedTotal.Inc()
	return c, s.persist(userID, t, "checkin"), nil
}

// DeleteCheckIn removes a check-in by id. Unknown ids are a no-op and do not
// trigger a flush.
func (s *TrendlineService) DeleteCheckIn(ctx context.Context, userID, id string) trend.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := trend.FromPayload(s.loadLocked(ctx, userID))
	before := t.UpdatedAt()
	t.DeleteCheckIn(id)
	if t.UpdatedAt() == before {
		return t.Payload()
	}
	return s.persist(userID, t, "checkin")
}

// Wipe discards both copies of the user's state. The remote delete is
// immediate; a pending debounced flush would otherwise resurrect the data.
func (s *TrendlineService) Wipe(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flusher.Cancel(userID)
	s.local.Delete(userID)
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.metrics.StateSavesTotal.WithLabelValues("wipe").Inc()
	return nil
}

// Projections computes the per-check-in race-day projection table. Nil when
// no race configuration exists yet.
func (s *TrendlineService) Projections(ctx context.Context, userID string) ([]trend.ProjectionResult, error) {
	p := s.LoadState(ctx, userID)
	t := trend.FromPayload(p)

	results, err := t.Projections()
	if err != nil {
		return nil, err
	}
	if results != nil {
		s.metrics.ProjectionsComputedTotal.Inc()
	}
	return results, nil
}

// ChartData builds the render-ready chart geometry for the user's state.
func (s *TrendlineService) ChartData(ctx context.Context, userID string, width, height int) *chart.Data {
	p := s.LoadState(ctx, userID)
	return chart.Build(p.State, width, height)
}
