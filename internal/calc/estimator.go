// Package calc implements the toolkit's closed-form calculators: race-time
// estimation, goal-pace conversion and the timeline feasibility check. All
// functions are pure; handlers do the transport work.
package calc

import "fmt"

// EstimateMarathonTime applies the "5 x 10K minus 10 minutes" method: take a
// recent 10K race effort, multiply by five, subtract ten minutes. An
// orientation figure, not a race-day prediction.
func EstimateMarathonTime(tenKSeconds int) (int, error) {
	if tenKSeconds <= 0 {
		return 0, fmt.Errorf("10K time must be positive")
	}
	est := tenKSeconds*5 - 600
	if est <= 0 {
		return 0, fmt.Errorf("10K time %ds too small to estimate from", tenKSeconds)
	}
	return est, nil
}

// FormatDuration renders a total-seconds duration as H:MM:SS.
func FormatDuration(totalSeconds int) string {
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
