package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"marathon-readiness/toolkit/internal/common"
	appctx "marathon-readiness/toolkit/internal/context"
	"marathon-readiness/toolkit/internal/db/repositories"
	"marathon-readiness/toolkit/internal/metrics"
	"marathon-readiness/toolkit/internal/models/dtos/responses"
	"marathon-readiness/toolkit/internal/models/entities"
	"marathon-readiness/toolkit/internal/services"
	"marathon-readiness/toolkit/internal/trend"
	"marathon-readiness/toolkit/internal/workers"
)

var testMetrics = metrics.NewMetricsRegistry()

func newTestRouter(t *testing.T) chi.Router {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&entities.TrendState{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	repo := repositories.NewStateRepository(db)
	local := services.NewLocalStateStore(common.NewCacheService(-1, time.Minute))
	flusher := workers.NewStateFlusher(repo, testMetrics, 10*time.Millisecond)
	svc := services.NewTrendlineService(local, repo, flusher, testMetrics)

	r := chi.NewRouter()

	// Stand-in for the auth middleware: a fixed authenticated user
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(appctx.SetUserID(req.Context(), "runner-1")))
		})
	})

	r.Get("/trendline", GetStateHandler(svc))
	r.Post("/trendline", SaveStateHandler(svc))
	r.Delete("/trendline", WipeHandler(svc))
	r.Post("/trendline/config", SetConfigHandler(svc))
	r.Post("/trendline/checkins", AddCheckInHandler(svc))
	r.Delete("/trendline/checkins/{id}", DeleteCheckInHandler(svc))
	r.Get("/trendline/projections", ProjectionsHandler(svc))
	r.Get("/trendline/chart", ChartDataHandler(svc))
	r.Get("/trendline/chart.html", ChartHTMLHandler(svc))

	return r
}

func do(t *testing.T, r chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestTrendline_GetEmptyState(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/trendline", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData[responses.TrendStateResponse](t, rec)
	if data.Mode != trend.ModeSetup {
		t.Errorf("expected setup mode, got %s", data.Mode)
	}
	if data.UpdatedAt != 0 {
		t.Errorf("expected zero updatedAt for fresh state, got %d", data.UpdatedAt)
	}
}

func TestTrendline_ConfigThenCheckInFlow(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/trendline/config",
		`{"raceDate":"2026-12-06","goalPace":"5:00","level":"beginner"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("config: status %d: %s", rec.Code, rec.Body.String())
	}
	state := decodeData[responses.TrendStateResponse](t, rec)
	if state.Mode != trend.ModeActive {
		t.Fatalf("expected active mode after config, got %s", state.Mode)
	}
	if state.State.Config == nil || *state.State.Config.GoalPaceSec != 300 {
		t.Fatalf("config not stored: %+v", state.State.Config)
	}

	rec = do(t, r, http.MethodPost, "/trendline/checkins",
		`{"date":"2026-09-01","pace":"5:30"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkin: status %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeData[responses.CheckInResponse](t, rec)
	if created.CheckIn.PaceSecPerKm != 330 || created.CheckIn.Source != "pace" {
		t.Errorf("unexpected check-in %+v", created.CheckIn)
	}

	// Duplicate date is rejected, state untouched
	rec = do(t, r, http.MethodPost, "/trendline/checkins",
		`{"date":"2026-09-01","pace":"5:25"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate date: expected 400, got %d", rec.Code)
	}

	rec = do(t, r, http.MethodGet, "/trendline/projections", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("projections: status %d", rec.Code)
	}
	projections := decodeData[[]trend.ProjectionResult](t, rec)
	if len(*projections) != 1 {
		t.Fatalf("expected 1 projection, got %d", len(*projections))
	}

	rec = do(t, r, http.MethodDelete, "/trendline/checkins/"+created.CheckIn.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d", rec.Code)
	}
	after := decodeData[responses.TrendStateResponse](t, rec)
	if len(after.State.Checkins) != 0 {
		t.Errorf("expected no check-ins after delete, got %d", len(after.State.Checkins))
	}
}

func TestTrendline_CheckInFromRun(t *testing.T) {
	r := newTestRouter(t)

	do(t, r, http.MethodPost, "/trendline/config", `{"raceDate":"2026-12-06"}`)

	rec := do(t, r, http.MethodPost, "/trendline/checkins",
		`{"date":"2026-09-01","run":{"distanceKm":10,"time":{"minutes":55}}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeData[responses.CheckInResponse](t, rec)
	if created.CheckIn.PaceSecPerKm != 330 {
		t.Errorf("expected 330 sec/km from 10k in 55min, got %d", created.CheckIn.PaceSecPerKm)
	}
	if created.CheckIn.Source != "run" {
		t.Errorf("expected run source, got %s", created.CheckIn.Source)
	}
}

func TestTrendline_CheckInRequiresConfig(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/trendline/checkins",
		`{"date":"2026-09-01","pace":"5:30"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without config, got %d", rec.Code)
	}
}

func TestTrendline_SaveBlobLWW(t *testing.T) {
	r := newTestRouter(t)

	blob := trend.Payload{
		Version: trend.PayloadVersion,
		State: trend.State{
			Config: &trend.RaceConfig{RaceDate: "2026-12-06", Level: "beginner"},
		},
		UpdatedAt: time.Now().UnixMilli(),
	}
	raw, _ := json.Marshal(blob)

	rec := do(t, r, http.MethodPost, "/trendline", string(raw))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	// A stale copy must lose to what is now stored
	stale := blob
	stale.State = trend.State{}
	stale.UpdatedAt = 1
	raw, _ = json.Marshal(stale)

	rec = do(t, r, http.MethodPost, "/trendline", string(raw))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	winner := decodeData[responses.TrendStateResponse](t, rec)
	if winner.State.Config == nil {
		t.Error("stale blob must not overwrite newer state")
	}
}

func TestTrendline_SaveBlobOverCapRejected(t *testing.T) {
	r := newTestRouter(t)

	blob := trend.Payload{Version: trend.PayloadVersion, UpdatedAt: 10}
	blob.State.Checkins = make([]trend.CheckIn, trend.MaxCheckIns+1)
	raw, _ := json.Marshal(blob)

	rec := do(t, r, http.MethodPost, "/trendline", string(raw))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
}

func TestTrendline_WipeReturnsToSetup(t *testing.T) {
	r := newTestRouter(t)

	do(t, r, http.MethodPost, "/trendline/config", `{"raceDate":"2026-12-06"}`)

	rec := do(t, r, http.MethodDelete, "/trendline", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("wipe: status %d", rec.Code)
	}

	rec = do(t, r, http.MethodGet, "/trendline", "")
	data := decodeData[responses.TrendStateResponse](t, rec)
	if data.Mode != trend.ModeSetup {
		t.Errorf("expected setup mode after wipe, got %s", data.Mode)
	}
}

func TestTrendline_ChartEndpoints(t *testing.T) {
	r := newTestRouter(t)

	do(t, r, http.MethodPost, "/trendline/config",
		`{"raceDate":"2026-12-06","goalPace":"5:00","level":"beginner"}`)
	do(t, r, http.MethodPost, "/trendline/checkins", `{"date":"2026-09-01","pace":"5:30"}`)

	rec := do(t, r, http.MethodGet, "/trendline/chart?width=800&height=400", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("chart json: status %d", rec.Code)
	}
	var resp struct {
		Data struct {
			NoData bool `json:"noData"`
			Width  int  `json:"width"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode chart: %v", err)
	}
	if resp.Data.NoData {
		t.Error("expected drawable chart data")
	}
	if resp.Data.Width != 800 {
		t.Errorf("expected width override 800, got %d", resp.Data.Width)
	}

	rec = do(t, r, http.MethodGet, "/trendline/chart.html", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("chart html: status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("unexpected content type %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected rendered HTML body")
	}
}
