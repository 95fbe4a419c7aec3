// Package dtos holds the request bodies of the calculator and trendline
// endpoints. Paces travel as display strings ("M:SS"); durations as
// hours/minutes/seconds parts.
package dtos

// TimeParts is an hours/minutes/seconds duration as entered by a user.
type TimeParts struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// TotalSeconds flattens the parts. Parts are not range-checked individually;
// 90 minutes is a valid entry.
func (t TimeParts) TotalSeconds() int {
	return t.Hours*3600 + t.Minutes*60 + t.Seconds
}

// RaceTimeRequest carries a recent 10K effort for the marathon estimate.
type RaceTimeRequest struct {
	TenKTime TimeParts `json:"tenKTime"`
}

// PaceConvertRequest converts in exactly one direction over a race distance:
// with Pace set it returns the projected finish time, with FinishTime set it
// returns the required pace.
type PaceConvertRequest struct {
	Distance   string     `json:"distance"`
	Pace       string     `json:"pace,omitempty"`
	FinishTime *TimeParts `json:"finishTime,omitempty"`
}

// TimelineCheckRequest asks whether a goal pace is realistic within the
// available training window.
type TimelineCheckRequest struct {
	CurrentPace    string `json:"currentPace"`
	GoalPace       string `json:"goalPace"`
	WeeksAvailable int    `json:"weeksAvailable"`
	Level          string `json:"level"`
}

// RunInput derives a pace from a logged run instead of a direct pace entry.
type RunInput struct {
	DistanceKm float64 `json:"distanceKm"`
	Time       TimeParts `json:"time"`
}

// CheckInRequest records a dated pace observation. Exactly one of Pace or
// Run must be set.
type CheckInRequest struct {
	Date string    `json:"date"`
	Pace string    `json:"pace,omitempty"`
	Run  *RunInput `json:"run,omitempty"`
}

// ConfigRequest creates or updates the race configuration. GoalPace is
// optional; an empty string means no goal line.
type ConfigRequest struct {
	RaceDate string `json:"raceDate"`
	GoalPace string `json:"goalPace,omitempty"`
	Level    string `json:"level,omitempty"`
}
