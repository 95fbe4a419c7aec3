// Package growth implements the diminishing-returns pace projection model.
//
// Improvement is modeled in 8-week training blocks. Each runner level has an
// improvement band (low/high) per block, and the per-block rate tapers by a
// level-specific decay factor, so early gains are bigger and later gains
// smaller. The accumulated raw improvement is then pushed through a smooth
// asymptotic cap instead of a hard plateau: the capped total approaches, but
// never reaches, the level's maximum, which keeps conservative and optimistic
// projections visibly distinct on long horizons.
package growth

import (
	"errors"
	"math"

	"marathon-readiness/toolkit/internal/pace"
)

// BlockWeeks is the model's fundamental unit of improvement: one training block.
const BlockWeeks = 8

// DefaultWeeksCap bounds the weeks-to-goal inversion at four years.
const DefaultWeeksCap = 208

var (
	// ErrInvalidPace is returned when the current pace is not positive.
	ErrInvalidPace = errors.New("growth: current pace must be positive")
	// ErrInvalidRate is returned when the improvement rate is outside (0,1).
	ErrInvalidRate = errors.New("growth: rate must be in (0,1)")
	// ErrUnreachable marks a goal that the capped model cannot reach within
	// the weeks horizon. It is a legitimate answer, not a failure.
	ErrUnreachable = errors.New("growth: goal unreachable within horizon")
)

// Band is the improvement range per 8-week block for a runner level.
type Band struct {
	Low  float64
	High float64
}

// Params bundles the per-level model inputs.
type Params struct {
	Band           Band
	Decay          float64
	MaxImprovement float64
}

// ParamsForLevel returns the fixed parameter table entry for a runner level.
func ParamsForLevel(level pace.Level) Params {
	switch level {
	case pace.LevelAdvanced:
		return Params{Band: Band{Low: 0.02, High: 0.02}, Decay: 0.97, MaxImprovement: 0.06}
	case pace.LevelIntermediate:
		return Params{Band: Band{Low: 0.03, High: 0.04}, Decay: 0.95, MaxImprovement: 0.10}
	default:
		return Params{Band: Band{Low: 0.04, High: 0.06}, Decay: 0.94, MaxImprovement: 0.14}
	}
}

// ScenarioRates exposes the two projection endpoints of a level's band plus
// the midpoint, with the rounded percent labels the UI layer shows.
type ScenarioRates struct {
	Conservative float64
	Typical      float64
	Optimistic   float64
	PctLow       int
	PctHigh      int
}

// RatesForLevel derives scenario rates from the level's band.
func RatesForLevel(level pace.Level) ScenarioRates {
	band := ParamsForLevel(level).Band
	return ScenarioRates{
		Conservative: band.Low,
		Typical:      (band.Low + band.High) / 2,
		Optimistic:   band.High,
		PctLow:       int(math.Round(band.Low * 100)),
		PctHigh:      int(math.Round(band.High * 100)),
	}
}

// ProjectPace projects a pace forward by weeksElapsed weeks.
//
// The raw improvement is a decaying sum over full blocks plus a proportional
// fractional remainder; summed to infinity it would converge to
// rate/(1-decay), which may exceed the cap. The smooth cap
// cap*(1-e^(-raw/cap)) then bounds the total in [0, cap) while staying
// monotonically increasing in raw. weeksElapsed <= 0 returns the pace
// unchanged. Degenerate inputs return an error; callers must treat that as
// "cannot project", not as zero.
func ProjectPace(currentPaceSec, rate, weeksElapsed, decay, maxTotalImprovement float64) (float64, error) {
	if !(currentPaceSec > 0) {
		return 0, ErrInvalidPace
	}
	if !(rate > 0 && rate < 1) {
		return 0, ErrInvalidRate
	}
	if weeksElapsed <= 0 {
		return currentPaceSec, nil
	}

	// Out-of-range caps are clamped, not errored.
	if maxTotalImprovement < 0 {
		maxTotalImprovement = 0
	} else if maxTotalImprovement > 0.5 {
		maxTotalImprovement = 0.5
	}

	blocks := weeksElapsed / BlockWeeks
	fullBlocks := math.Floor(blocks)
	frac := blocks - fullBlocks

	raw := 0.0
	for i := 0; i < int(fullBlocks); i++ {
		raw += rate * math.Pow(decay, float64(i))
	}
	if frac > 0 {
		raw += frac * rate * math.Pow(decay, fullBlocks)
	}

	capped := 0.0
	if maxTotalImprovement > 0 {
		capped = maxTotalImprovement * (1 - math.Exp(-raw/maxTotalImprovement))
	}

	return currentPaceSec * (1 - capped), nil
}

// WeeksToReachGoal inverts ProjectPace with respect to weeks: the smallest
// integer number of weeks after which the projected pace is at or below the
// goal. Returns 0 when the goal is already met and ErrUnreachable when even
// weeksCap weeks (DefaultWeeksCap if <= 0) leave the projection slower than
// the goal. The forward function has no closed-form inverse because of the
// capped-improvement step, so this binary searches the integer week range.
func WeeksToReachGoal(currentPaceSec, goalPaceSec, rate, decay, maxTotalImprovement float64, weeksCap int) (int, error) {
	if !(currentPaceSec > 0) || !(goalPaceSec > 0) {
		return 0, ErrInvalidPace
	}
	if currentPaceSec <= goalPaceSec {
		return 0, nil
	}
	if !(rate > 0 && rate < 1) {
		return 0, ErrInvalidRate
	}
	if weeksCap <= 0 {
		weeksCap = DefaultWeeksCap
	}

	atCap, err := ProjectPace(currentPaceSec, rate, float64(weeksCap), decay, maxTotalImprovement)
	if err != nil {
		return 0, err
	}
	if atCap > goalPaceSec {
		return 0, ErrUnreachable
	}

	// Projected pace is non-increasing in weeks, so the predicate
	// project(w) <= goal is monotone and the search lands on the minimal
	// satisfying integer (round up, never down).
	lo, hi := 0, weeksCap
	for lo < hi {
		mid := (lo + hi) / 2
		p, err := ProjectPace(currentPaceSec, rate, float64(mid), decay, maxTotalImprovement)
		if err != nil {
			return 0, err
		}
		if p <= goalPaceSec {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo, nil
}
