package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"marathon-readiness/toolkit/internal/chart"
	appctx "marathon-readiness/toolkit/internal/context"
	"marathon-readiness/toolkit/internal/logging"
	"marathon-readiness/toolkit/internal/models/dtos"
	"marathon-readiness/toolkit/internal/models/dtos/responses"
	"marathon-readiness/toolkit/internal/pace"
	"marathon-readiness/toolkit/internal/services"
	"marathon-readiness/toolkit/internal/trend"
)

func stateResponse(p trend.Payload) *responses.TrendStateResponse {
	mode := trend.ModeSetup
	if p.State.Config != nil {
		mode = trend.ModeActive
	}
	return &responses.TrendStateResponse{
		Version:   p.Version,
		State:     p.State,
		UpdatedAt: p.UpdatedAt,
		Mode:      mode,
	}
}

func respondTrendErr(w http.ResponseWriter, err error) {
	var verr *trend.ValidationError
	if errors.As(err, &verr) {
		respondWithError(w, http.StatusBadRequest, verr.Error())
		return
	}
	respondWithError(w, http.StatusInternalServerError, err.Error())
}

// GetStateHandler handles GET /api/v1/trendline
func GetStateHandler(svc *services.TrendlineService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := appctx.GetUserID(r.Context())
		p := svc.LoadState(r.Context(), userID)
		respondWithSuccess(w, http.StatusOK, stateResponse(p))
	}
}

// SaveStateHandler handles POST /api/v1/trendline. The body is the full
// persistence blob; the reconciled winner comes back.
func SaveStateHandler(svc *services.TrendlineService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := appctx.GetUserID(r.Context())

		var incoming trend.Payload
		if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		winner, err := svc.SaveState(r.Context(), userID, incoming)
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondWithSuccess(w, http.StatusOK, stateResponse(winner))
	}
}

// SetConfigHandler handles POST /api/v1/trendline/config. Creates the race
// configuration on first call, edits it afterwards.
func SetConfigHandler(svc *services.TrendlineService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := appctx.GetUserID(r.Context())

		var req dtos.ConfigRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		level, err := pace.ParseLevel(req.Level)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		var goalPtr *int
		if req.GoalPace != "" {
			goal, err := pace.Parse(req.GoalPace)
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "goalPace: "+err.Error())
				return
			}
			goalPtr = &goal
		}

		current := svc.LoadState(r.Context(), userID)
		var p trend.Payload
		if current.State.Config == nil {
			p, err = svc.StartTracking(r.Context(), userID, req.RaceDate, goalPtr, level)
		} else {
			p, err = svc.UpdateSettings(r.Context(), userID, req.RaceDate, goalPtr, level)
		}
		if err != nil {
			respondTrendErr(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, stateResponse(p))
	}
}

// AddCheckInHandler handles POST /api/v1/trendline/checkins. The pace comes
// either directly or derived from a logged run.
func AddCheckInHandler(svc *services.TrendlineService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := appctx.GetUserID(r.Context())

		var req dtos.CheckInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var (
			paceSec int
			source  string
			err     error
		)
		switch {
		case req.Pace != "" && req.Run == nil:
			paceSec, err = pace.Parse(req.Pace)
			source = "pace"
		case req.Pace == "" && req.Run != nil:
			paceSec, err = pace.FromRun(req.Run.DistanceKm,
				req.Run.Time.Hours, req.Run.Time.Minutes, req.Run.Time.Seconds)
			source = "run"
		default:
			respondWithError(w, http.StatusBadRequest, "provide exactly one of pace or run")
			return
		}
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		c, p, err := svc.AddCheckIn(r.Context(), userID, req.Date, paceSec, source)
		if err != nil {
			respondTrendErr(w, err)
			return
		}
		respondWithSuccess(w, http.StatusCreated, &responses.CheckInResponse{
			CheckIn:   c,
			UpdatedAt: p.UpdatedAt,
		})
	}
}

// DeleteCheckInHandler handles DELETE /api/v1/trendline/checkins/{id}.
// Unknown ids succeed; the delete is idempotent.
func DeleteCheckInHandler(svc *services.TrendlineService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := appctx.GetUserID(r.Context())
		id := chi.URLParam(r, "id")

		p := svc.DeleteCheckIn(r.Context(), userID, id)
		respondWithSuccess(w, http.StatusOK, stateResponse(p))
	}
}

// WipeHandler handles DELETE /api/v1/trendline
func WipeHandler(svc *services.TrendlineService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := appctx.GetUserID(r.Context())

		if err := svc.Wipe(r.Context(), userID); err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		msg := "trendline data wiped"
		respondWithSuccess(w, http.StatusOK, &msg)
	}
}

// ProjectionsHandler handles GET /api/v1/trendline/projections
func ProjectionsHandler(svc *services.TrendlineService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := appctx.GetUserID(r.Context())

		results, err := svc.Projections(r.Context(), userID)
		if err != nil {
			respondTrendErr(w, err)
			return
		}
		if results == nil {
			results = []trend.ProjectionResult{}
		}
		respondWithSuccess(w, http.StatusOK, &results)
	}
}

// ChartDataHandler handles GET /api/v1/trendline/chart. Optional width and
// height query parameters override the render size.
func ChartDataHandler(svc *services.TrendlineService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := appctx.GetUserID(r.Context())

		width := chart.DefaultWidth
		height := chart.DefaultHeight
		if v, err := strconv.Atoi(r.URL.Query().Get("width")); err == nil && v > 0 {
			width = v
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("height")); err == nil && v > 0 {
			height = v
		}

		data := svc.ChartData(r.Context(), userID, width, height)
		respondWithSuccess(w, http.StatusOK, data)
	}
}

// ChartHTMLHandler handles GET /trendline/chart.html with a server-rendered
// line chart.
func ChartHTMLHandler(svc *services.TrendlineService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := appctx.GetUserID(r.Context())
		p := svc.LoadState(r.Context(), userID)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := chart.RenderHTML(w, p.State); err != nil {
			logging.Error("chart render failed", "user_id", userID, "error", err.Error())
			http.Error(w, "failed to render chart", http.StatusInternalServerError)
		}
	}
}
