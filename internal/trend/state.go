// Package trend owns the progress-trendline tracker: a race configuration, a
// collection of dated pace check-ins, and the projections derived from them
// via the growth model. The package is pure orchestration over explicit state
// objects and has no UI, storage or transport dependency.
package trend

import "marathon-readiness/toolkit/internal/pace"

// PayloadVersion is the persistence blob schema version.
const PayloadVersion = 1

// MaxCheckIns is the hard ceiling on collection growth. The remote store
// rejects saves above it; local mutation enforces it as well.
const MaxCheckIns = 400

// RaceConfig is the fixed horizon all projections target. Dates are ISO
// calendar dates (YYYY-MM-DD) to match the wire format exactly.
type RaceConfig struct {
	RaceDate    string     `json:"raceDate"`
	GoalPaceSec *int       `json:"goalPaceSec"`
	Level       pace.Level `json:"level"`
}

// CheckIn is a single dated pace observation. ID is assigned at creation and
// is the join key for deletion; Date is unique within a tracker.
type CheckIn struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	PaceSecPerKm int    `json:"paceSecPerKm"`
	Source       string `json:"source"`
}

// State is the tracked data itself: one optional config plus the check-in
// collection. Check-ins without a config are representable but not actionable.
type State struct {
	Config   *RaceConfig `json:"config"`
	Checkins []CheckIn   `json:"checkins"`
}

// Empty reports whether the state carries no data at all.
func (s State) Empty() bool {
	return s.Config == nil && len(s.Checkins) == 0
}

// Clone returns a deep copy so callers can hand state across goroutines
// without sharing the check-in slice.
func (s State) Clone() State {
	out := State{Checkins: make([]CheckIn, len(s.Checkins))}
	copy(out.Checkins, s.Checkins)
	if s.Config != nil {
		cfg := *s.Config
		if s.Config.GoalPaceSec != nil {
			goal := *s.Config.GoalPaceSec
			cfg.GoalPaceSec = &goal
		}
		out.Config = &cfg
	}
	return out
}

// Payload is the persistence blob, identical in shape for the local cache and
// the remote mirror. UpdatedAt (epoch milliseconds) is the last-writer-wins
// conflict marker.
type Payload struct {
	Version   int   `json:"version"`
	State     State `json:"state"`
	UpdatedAt int64 `json:"updatedAt"`
}

// Mode is the UI-facing state machine: Setup until a config exists, Active
// afterwards. The only way back to Setup is a full data wipe.
type Mode string

const (
	ModeSetup  Mode = "setup"
	ModeActive Mode = "active"
)
