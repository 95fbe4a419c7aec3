package api

import (
	"encoding/json"
	"net/http"

	"marathon-readiness/toolkit/internal/calc"
	"marathon-readiness/toolkit/internal/models/dtos"
	"marathon-readiness/toolkit/internal/models/dtos/responses"
	"marathon-readiness/toolkit/internal/pace"
)

// RaceTimeHandler handles POST /api/v1/estimator/race-time
func RaceTimeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.RaceTimeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		tenK := req.TenKTime.TotalSeconds()
		est, err := calc.EstimateMarathonTime(tenK)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		respondWithSuccess(w, http.StatusOK, &responses.RaceTimeResponse{
			TenKSeconds:     tenK,
			MarathonSeconds: est,
			MarathonTime:    calc.FormatDuration(est),
		})
	}
}

// PaceConvertHandler handles POST /api/v1/converter/pace. The direction is
// picked by which field is set: a pace yields a finish time, a finish time
// yields a pace.
func PaceConvertHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.PaceConvertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		km, err := calc.RaceDistanceKm(req.Distance)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		var paceSec, finishSec int

		switch {
		case req.Pace != "" && req.FinishTime == nil:
			paceSec, err = pace.Parse(req.Pace)
			if err == nil {
				finishSec, err = calc.FinishForPace(req.Distance, paceSec)
			}

		case req.Pace == "" && req.FinishTime != nil:
			finishSec = req.FinishTime.TotalSeconds()
			paceSec, err = calc.PaceForFinish(req.Distance, finishSec)

		default:
			respondWithError(w, http.StatusBadRequest, "provide exactly one of pace or finishTime")
			return
		}
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		respondWithSuccess(w, http.StatusOK, &responses.PaceConvertResponse{
			Distance:      req.Distance,
			DistanceKm:    km,
			PaceSecPerKm:  paceSec,
			Pace:          pace.Format(float64(paceSec)),
			FinishSeconds: finishSec,
			FinishTime:    calc.FormatDuration(finishSec),
		})
	}
}

// TimelineCheckHandler handles POST /api/v1/timeline/check
func TimelineCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.TimelineCheckRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		current, err := pace.Parse(req.CurrentPace)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "currentPace: "+err.Error())
			return
		}
		goal, err := pace.Parse(req.GoalPace)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "goalPace: "+err.Error())
			return
		}
		level, err := pace.ParseLevel(req.Level)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		report, err := calc.TimelineCheck(current, goal, req.WeeksAvailable, level)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		respondWithSuccess(w, http.StatusOK, report)
	}
}
