package trend

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"marathon-readiness/toolkit/internal/pace"
)

// Tracker mediates all mutation of a single user's trendline state. It is not
// safe for concurrent use; the service layer serializes access per user.
type Tracker struct {
	state State

	updatedAt int64

	now   func() time.Time
	newID func() string
}

// NewTracker returns an empty tracker in Setup mode.
func NewTracker() *Tracker {
	return &Tracker{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// FromPayload rebuilds a tracker from a persisted blob.
func FromPayload(p Payload) *Tracker {
	t := NewTracker()
	t.state = p.State.Clone()
	t.updatedAt = p.UpdatedAt
	return t
}

// Payload snapshots the tracker into the persistence blob shape.
func (t *Tracker) Payload() Payload {
	return Payload{
		Version:   PayloadVersion,
		State:     t.state.Clone(),
		UpdatedAt: t.updatedAt,
	}
}

// State returns a copy of the tracked data.
func (t *Tracker) State() State { return t.state.Clone() }

// UpdatedAt returns the last-mutation timestamp in epoch milliseconds.
func (t *Tracker) UpdatedAt() int64 { return t.updatedAt }

// Mode reports the UI state machine position.
func (t *Tracker) Mode() Mode {
	if t.state.Config == nil {
		return ModeSetup
	}
	return ModeActive
}

func (t *Tracker) touch() {
	t.updatedAt = t.now().UnixMilli()
}

func validateConfig(raceDate string, goalPaceSec *int, level pace.Level) (*RaceConfig, error) {
	parsed, err := pace.ParseDate(raceDate)
	if err != nil {
		return nil, invalid("raceDate", "%v", err)
	}
	if goalPaceSec != nil && *goalPaceSec <= 0 {
		return nil, invalid("goalPaceSec", "goal pace must be a positive number of seconds")
	}
	if _, err := pace.ParseLevel(string(level)); err != nil {
		return nil, invalid("level", "%v", err)
	}

	return &RaceConfig{
		RaceDate:    pace.FormatDate(parsed),
		GoalPaceSec: goalPaceSec,
		Level:       level,
	}, nil
}

// StartTracking creates or fully resets the race configuration. This is a
// replace, not a merge; existing check-ins are kept.
func (t *Tracker) StartTracking(raceDate string, goalPaceSec *int, level pace.Level) error {
	cfg, err := validateConfig(raceDate, goalPaceSec, level)
	if err != nil {
		return err
	}
	t.state.Config = cfg
	t.touch()
	return nil
}

// UpdateSettings mutates the existing config's fields in place. Fails without
// mutation when no config exists yet.
func (t *Tracker) UpdateSettings(raceDate string, goalPaceSec *int, level pace.Level) error {
	if t.state.Config == nil {
		return invalid("config", "no race configuration to update; start tracking first")
	}
	cfg, err := validateConfig(raceDate, goalPaceSec, level)
	if err != nil {
		return err
	}
	*t.state.Config = *cfg
	t.touch()
	return nil
}

// AddCheckIn appends a new dated pace observation. Every error condition is
// distinct and user-reportable; a rejected call leaves the collection
// unchanged.
func (t *Tracker) AddCheckIn(date string, paceSecPerKm int, source string) (CheckIn, error) {
	if t.state.Config == nil {
		return CheckIn{}, invalid("config", "set a race date and start the trendline first")
	}

	day, err := pace.ParseDate(date)
	if err != nil {
		return CheckIn{}, invalid("date", "%v", err)
	}

	raceDay, err := pace.ParseDate(t.state.Config.RaceDate)
	if err != nil {
		return CheckIn{}, invalid("raceDate", "%v", err)
	}
	if day.After(raceDay) {
		return CheckIn{}, invalid("date", "check-in date must be on or before race day")
	}

	canonical := pace.FormatDate(day)
	for _, c := range t.state.Checkins {
		if c.Date == canonical {
			return CheckIn{}, invalid("date", "a check-in already exists for %s", canonical)
		}
	}

	if paceSecPerKm <= 0 {
		return CheckIn{}, invalid("paceSecPerKm", "pace must be a positive number of seconds per km")
	}

	if len(t.state.Checkins) >= MaxCheckIns {
		return CheckIn{}, invalid("checkins", "check-in limit of %d reached", MaxCheckIns)
	}

	if source == "" {
		source = "pace"
	}
	c := CheckIn{
		ID:           t.newID(),
		Date:         canonical,
		PaceSecPerKm: paceSecPerKm,
		Source:       source,
	}
	t.state.Checkins = append(t.state.Checkins, c)
	t.touch()
	return c, nil
}

// DeleteCheckIn removes the matching record if present. Deleting an unknown
// id is a no-op, not an error.
func (t *Tracker) DeleteCheckIn(id string) {
	for i, c := range t.state.Checkins {
		if c.ID == id {
			t.state.Checkins = append(t.state.Checkins[:i], t.state.Checkins[i+1:]...)
			t.touch()
			return
		}
	}
}

// Wipe discards everything, returning the tracker to Setup mode.
func (t *Tracker) Wipe() {
	t.state = State{}
	t.touch()
}

// SortedCheckIns returns the collection ordered by date ascending, the order
// every rendering consumes.
func (t *Tracker) SortedCheckIns() []CheckIn {
	out := make([]CheckIn, len(t.state.Checkins))
	copy(out, t.state.Checkins)
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// LatestCheckIn returns the most recent check-in by date, or false when the
// collection is empty.
func (t *Tracker) LatestCheckIn() (CheckIn, bool) {
	items := t.SortedCheckIns()
	if len(items) == 0 {
		return CheckIn{}, false
	}
	return items[len(items)-1], true
}
