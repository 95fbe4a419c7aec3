// Package pace holds the shared units of the toolkit: paces in seconds per
// kilometer, runner levels, and the calendar-date helpers every module relies
// on. Everything here is pure and has no dependency on storage or transport.
package pace

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Level selects the improvement-band and decay parameters of the growth model.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// ParseLevel validates a runner level string. An empty string falls back to
// beginner, matching the original toolkit's default.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return LevelBeginner, nil
	case LevelBeginner:
		return LevelBeginner, nil
	case LevelIntermediate:
		return LevelIntermediate, nil
	case LevelAdvanced:
		return LevelAdvanced, nil
	}
	return "", fmt.Errorf("unknown runner level %q", s)
}

var (
	bareMinutesRe = regexp.MustCompile(`^\d{1,2}$`)
	minSecRe      = regexp.MustCompile(`^(\d{1,2})\s*:\s*(\d{1,2})$`)
)

// Parse accepts "M" (bare minutes, implies :00), "M:SS" or "MM:SS" and returns
// the pace in seconds per kilometer. The seconds component must be in [0,59].
func Parse(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty pace")
	}

	if bareMinutesRe.MatchString(s) {
		min, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid pace %q", s)
		}
		return min * 60, nil
	}

	m := minSecRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid pace %q: want m:ss", s)
	}

	min, _ := strconv.Atoi(m[1])
	sec, _ := strconv.Atoi(m[2])
	if sec > 59 {
		return 0, fmt.Errorf("invalid pace %q: seconds must be 0-59", s)
	}

	return min*60 + sec, nil
}

// Format renders a pace as the canonical "M:SS" (minutes unpadded, seconds
// zero-padded). Non-integer paces are rounded to the nearest second first.
func Format(secPerKm float64) string {
	total := int(math.Round(secPerKm))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FromRun derives a rounded sec/km pace from a run's distance and duration.
func FromRun(distKm float64, hours, minutes, seconds int) (int, error) {
	if !(distKm > 0) {
		return 0, fmt.Errorf("distance must be positive")
	}
	total := hours*3600 + minutes*60 + seconds
	if total <= 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return int(math.Round(float64(total) / distKm)), nil
}
