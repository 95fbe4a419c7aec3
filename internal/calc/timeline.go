package calc

import (
	"errors"
	"fmt"

	"marathon-readiness/toolkit/internal/growth"
	"marathon-readiness/toolkit/internal/pace"
)

// WeeksNeeded is one bound's answer to "how long until the goal". Exactly one
// of the fields is meaningful: AlreadyMet, Unreachable, or Weeks.
type WeeksNeeded struct {
	Weeks       int  `json:"weeks"`
	Blocks      int  `json:"blocks"`
	AlreadyMet  bool `json:"alreadyMet"`
	Unreachable bool `json:"unreachable"`
	FitsWindow  bool `json:"fitsWindow"`
}

// TimelineReport is the full feasibility picture for a current pace, a goal
// pace and an available window of weeks.
type TimelineReport struct {
	Level      pace.Level `json:"level"`
	WeeksAvail int        `json:"weeksAvailable"`
	PctLow     int        `json:"pctLow"`
	PctHigh    int        `json:"pctHigh"`

	GapNowSec int `json:"gapNowSec"`

	// Projected paces after the window, one per band endpoint, and their
	// remaining gap to the goal (positive means still slower than goal).
	PaceLow   int `json:"paceLowSec"`
	PaceHigh  int `json:"paceHighSec"`
	SpreadSec int `json:"spreadSec"`
	RemainLow int `json:"remainLowSec"`
	RemainHigh int `json:"remainHighSec"`

	NeedLow  WeeksNeeded `json:"needLow"`
	NeedHigh WeeksNeeded `json:"needHigh"`
}

func weeksNeeded(currentSec, goalSec float64, rate float64, params growth.Params, window int) (WeeksNeeded, error) {
	w, err := growth.WeeksToReachGoal(currentSec, goalSec, rate, params.Decay, params.MaxImprovement, growth.DefaultWeeksCap)
	switch {
	case errors.Is(err, growth.ErrUnreachable):
		return WeeksNeeded{Unreachable: true}, nil
	case err != nil:
		return WeeksNeeded{}, err
	case w == 0:
		return WeeksNeeded{AlreadyMet: true, FitsWindow: true}, nil
	}

	blocks := (w + growth.BlockWeeks - 1) / growth.BlockWeeks
	return WeeksNeeded{
		Weeks:      w,
		Blocks:     blocks,
		FitsWindow: window > 0 && w <= window,
	}, nil
}

// TimelineCheck answers whether a goal pace is realistic within the available
// weeks, using the canonical diminishing-returns model at both band
// endpoints. The goal must be faster than the current pace; "already met" is
// not a feasibility question.
func TimelineCheck(currentSec, goalSec, weeksAvailable int, level pace.Level) (*TimelineReport, error) {
	if currentSec <= 0 || goalSec <= 0 {
		return nil, fmt.Errorf("paces must be positive")
	}
	if goalSec >= currentSec {
		return nil, fmt.Errorf("goal pace must be faster than current pace")
	}
	if weeksAvailable <= 0 {
		return nil, fmt.Errorf("weeks available must be a positive integer")
	}

	params := growth.ParamsForLevel(level)
	rates := growth.RatesForLevel(level)
	window := float64(weeksAvailable)

	low, err := growth.ProjectPace(float64(currentSec), rates.Conservative, window, params.Decay, params.MaxImprovement)
	if err != nil {
		return nil, err
	}
	high, err := growth.ProjectPace(float64(currentSec), rates.Optimistic, window, params.Decay, params.MaxImprovement)
	if err != nil {
		return nil, err
	}

	needLow, err := weeksNeeded(float64(currentSec), float64(goalSec), rates.Conservative, params, weeksAvailable)
	if err != nil {
		return nil, err
	}
	needHigh, err := weeksNeeded(float64(currentSec), float64(goalSec), rates.Optimistic, params, weeksAvailable)
	if err != nil {
		return nil, err
	}

	paceLow := roundSec(low)
	paceHigh := roundSec(high)
	spread := paceLow - paceHigh
	if spread < 0 {
		spread = -spread
	}

	return &TimelineReport{
		Level:      level,
		WeeksAvail: weeksAvailable,
		PctLow:     rates.PctLow,
		PctHigh:    rates.PctHigh,
		GapNowSec:  currentSec - goalSec,
		PaceLow:    paceLow,
		PaceHigh:   paceHigh,
		SpreadSec:  spread,
		RemainLow:  paceLow - goalSec,
		RemainHigh: paceHigh - goalSec,
		NeedLow:    needLow,
		NeedHigh:   needHigh,
	}, nil
}

func roundSec(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}
