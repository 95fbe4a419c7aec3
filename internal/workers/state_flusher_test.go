package workers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"marathon-readiness/toolkit/internal/db/repositories"
	"marathon-readiness/toolkit/internal/metrics"
	"marathon-readiness/toolkit/internal/models/entities"
	"marathon-readiness/toolkit/internal/trend"
)

var testMetrics = metrics.NewMetricsRegistry()

func setupTestRepo(t *testing.T) *repositories.StateRepository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&entities.TrendState{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return repositories.NewStateRepository(db)
}

func payloadAt(updatedAt int64) trend.Payload {
	return trend.Payload{Version: trend.PayloadVersion, UpdatedAt: updatedAt}
}

func fetch(t *testing.T, repo *repositories.StateRepository, userID string) *trend.Payload {
	t.Helper()
	row, err := repo.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if row == nil {
		return nil
	}
	var p trend.Payload
	if err := json.Unmarshal([]byte(row.Payload), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return &p
}

func TestSchedule_CollapsesRapidWrites(t *testing.T) {
	repo := setupTestRepo(t)
	f := NewStateFlusher(repo, testMetrics, 30*time.Millisecond)

	f.Schedule("u1", payloadAt(1))
	f.Schedule("u1", payloadAt(2))
	f.Schedule("u1", payloadAt(3))

	if fetch(t, repo, "u1") != nil {
		t.Fatal("nothing should be written inside the quiet period")
	}

	time.Sleep(120 * time.Millisecond)

	p := fetch(t, repo, "u1")
	if p == nil {
		t.Fatal("expected a flush after the quiet period")
	}
	if p.UpdatedAt != 3 {
		t.Errorf("expected only the final payload to land, got updatedAt=%d", p.UpdatedAt)
	}
}

func TestSchedule_ResetOnWrite(t *testing.T) {
	repo := setupTestRepo(t)
	f := NewStateFlusher(repo, testMetrics, 60*time.Millisecond)

	f.Schedule("u1", payloadAt(1))
	time.Sleep(40 * time.Millisecond)
	f.Schedule("u1", payloadAt(2))
	time.Sleep(40 * time.Millisecond)

	// 80ms since the first write, but only 40ms since the second; the
	// timer restarted so nothing has flushed yet.
	if fetch(t, repo, "u1") != nil {
		t.Fatal("flush fired before the restarted quiet period elapsed")
	}

	time.Sleep(60 * time.Millisecond)
	if p := fetch(t, repo, "u1"); p == nil || p.UpdatedAt != 2 {
		t.Fatalf("expected payload 2 after restarted quiet period, got %+v", p)
	}
}

func TestCancel_DropsPendingWrite(t *testing.T) {
	repo := setupTestRepo(t)
	f := NewStateFlusher(repo, testMetrics, 30*time.Millisecond)

	f.Schedule("u1", payloadAt(1))
	f.Cancel("u1")

	time.Sleep(100 * time.Millisecond)
	if fetch(t, repo, "u1") != nil {
		t.Error("cancelled flush must not write")
	}
}

func TestFlushNow_BypassesDebounce(t *testing.T) {
	repo := setupTestRepo(t)
	f := NewStateFlusher(repo, testMetrics, time.Hour)

	f.Schedule("u1", payloadAt(1))
	if err := f.FlushNow(context.Background(), "u1", payloadAt(5)); err != nil {
		t.Fatalf("flush now: %v", err)
	}

	if p := fetch(t, repo, "u1"); p == nil || p.UpdatedAt != 5 {
		t.Fatalf("expected immediate write of payload 5, got %+v", p)
	}
}

func TestStop_FlushesAllPending(t *testing.T) {
	repo := setupTestRepo(t)
	f := NewStateFlusher(repo, testMetrics, time.Hour)

	f.Schedule("u1", payloadAt(1))
	f.Schedule("u2", payloadAt(2))

	f.Stop(context.Background())

	if p := fetch(t, repo, "u1"); p == nil || p.UpdatedAt != 1 {
		t.Errorf("u1 not flushed on stop: %+v", p)
	}
	if p := fetch(t, repo, "u2"); p == nil || p.UpdatedAt != 2 {
		t.Errorf("u2 not flushed on stop: %+v", p)
	}

	// Post-stop schedules are ignored
	f.Schedule("u3", payloadAt(3))
	time.Sleep(20 * time.Millisecond)
	if fetch(t, repo, "u3") != nil {
		t.Error("schedule after stop must be a no-op")
	}
}
