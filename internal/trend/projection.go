package trend

import (
	"iter"
	"math"
	"time"

	"marathon-readiness/toolkit/internal/growth"
	"marathon-readiness/toolkit/internal/pace"
)

// ProjectionResult is a derived, never-persisted view of one check-in carried
// forward to race day under both scenario rates.
//
// BandMin/BandMax are explicit min/max of the two projections: the
// conservative scenario is not always the numerically larger pace, so callers
// must not assume an ordering between Conservative and Optimistic.
type ProjectionResult struct {
	CheckInID      string  `json:"checkInId"`
	Date           string  `json:"date"`
	PaceSecPerKm   int     `json:"paceSecPerKm"`
	WeeksRemaining float64 `json:"weeksRemaining"`
	Conservative   float64 `json:"conservative"`
	Optimistic     float64 `json:"optimistic"`
	BandMin        float64 `json:"bandMin"`
	BandMax        float64 `json:"bandMax"`
	PctLow         int     `json:"pctLow"`
	PctHigh        int     `json:"pctHigh"`
}

// SeriesPoint is one sample of a projection polyline.
type SeriesPoint struct {
	Date time.Time `json:"date"`
	Pace float64   `json:"pace"`
}

// ProjectToRace carries a check-in to race day under the config's level
// parameters, evaluating the growth model at both band endpoints.
func ProjectToRace(c CheckIn, cfg RaceConfig) (*ProjectionResult, error) {
	raceDay, err := pace.ParseDate(cfg.RaceDate)
	if err != nil {
		return nil, invalid("raceDate", "%v", err)
	}
	day, err := pace.ParseDate(c.Date)
	if err != nil {
		return nil, invalid("date", "%v", err)
	}

	weeks := pace.WeeksBetween(day, raceDay)
	rates := growth.RatesForLevel(cfg.Level)
	params := growth.ParamsForLevel(cfg.Level)

	conservative, err := growth.ProjectPace(float64(c.PaceSecPerKm), rates.Conservative, weeks, params.Decay, params.MaxImprovement)
	if err != nil {
		return nil, err
	}
	optimistic, err := growth.ProjectPace(float64(c.PaceSecPerKm), rates.Optimistic, weeks, params.Decay, params.MaxImprovement)
	if err != nil {
		return nil, err
	}

	return &ProjectionResult{
		CheckInID:      c.ID,
		Date:           c.Date,
		PaceSecPerKm:   c.PaceSecPerKm,
		WeeksRemaining: weeks,
		Conservative:   conservative,
		Optimistic:     optimistic,
		BandMin:        math.Min(conservative, optimistic),
		BandMax:        math.Max(conservative, optimistic),
		PctLow:         rates.PctLow,
		PctHigh:        rates.PctHigh,
	}, nil
}

// ProjectionSeries samples the growth model from a check-in's date to race
// day every stepWeeks weeks (default 1), yielding the curved diminishing-
// returns line rather than a straight interpolation. The returned sequence is
// finite, lazy and restartable; the final sample always lands exactly on race
// day with the exact elapsed-weeks value, so integer stepping cannot drift at
// the boundary. An empty sequence is returned when the span or inputs are
// unusable.
func ProjectionSeries(c CheckIn, cfg RaceConfig, rate float64, stepWeeks float64) iter.Seq[SeriesPoint] {
	if stepWeeks <= 0 {
		stepWeeks = 1
	}

	return func(yield func(SeriesPoint) bool) {
		raceDay, err := pace.ParseDate(cfg.RaceDate)
		if err != nil {
			return
		}
		start, err := pace.ParseDate(c.Date)
		if err != nil {
			return
		}

		totalWeeks := pace.WeeksBetween(start, raceDay)
		if totalWeeks <= 0 {
			return
		}

		params := growth.ParamsForLevel(cfg.Level)
		steps := int(math.Ceil(totalWeeks / stepWeeks))
		if steps < 1 {
			steps = 1
		}

		for i := 0; i <= steps; i++ {
			w := math.Min(totalWeeks, float64(i)*stepWeeks)
			when := pace.AddWeeks(start, w)
			if i == steps {
				// Exact boundary sample.
				w = totalWeeks
				when = raceDay
			}

			p, err := growth.ProjectPace(float64(c.PaceSecPerKm), rate, w, params.Decay, params.MaxImprovement)
			if err != nil {
				return
			}
			if !yield(SeriesPoint{Date: when, Pace: p}) {
				return
			}
		}
	}
}

// Projections maps every check-in (date ascending) through ProjectToRace.
// Without a config there is nothing to project against and the result is nil.
func (t *Tracker) Projections() ([]ProjectionResult, error) {
	if t.state.Config == nil {
		return nil, nil
	}

	items := t.SortedCheckIns()
	out := make([]ProjectionResult, 0, len(items))
	for _, c := range items {
		p, err := ProjectToRace(c, *t.state.Config)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}
