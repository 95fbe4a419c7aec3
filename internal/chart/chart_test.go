package chart

import (
	"testing"

	"marathon-readiness/toolkit/internal/pace"
	"marathon-readiness/toolkit/internal/trend"
)

func intPtr(v int) *int { return &v }

func trackedState() trend.State {
	return trend.State{
		Config: &trend.RaceConfig{
			RaceDate:    "2026-10-18",
			GoalPaceSec: intPtr(290),
			Level:       pace.LevelBeginner,
		},
		Checkins: []trend.CheckIn{
			{ID: "b", Date: "2026-07-01", PaceSecPerKm: 305},
			{ID: "a", Date: "2026-06-01", PaceSecPerKm: 310},
			{ID: "c", Date: "2026-08-01", PaceSecPerKm: 300},
		},
	}
}

func TestBuild_NoData(t *testing.T) {
	d := Build(trend.State{}, 0, 0)
	if !d.NoData || d.Reason == "" {
		t.Fatalf("empty state should be an explicit no-data result: %+v", d)
	}
	if d.Width != DefaultWidth || d.Height != DefaultHeight {
		t.Errorf("default surface = %dx%d", d.Width, d.Height)
	}

	onlyCfg := trend.State{Config: &trend.RaceConfig{RaceDate: "2026-10-18", Level: pace.LevelBeginner}}
	d = Build(onlyCfg, 720, 320)
	if !d.NoData {
		t.Error("config without check-ins should be no-data, not an error")
	}
}

func TestBuild_Polylines(t *testing.T) {
	d := Build(trackedState(), 720, 320)
	if d.NoData {
		t.Fatalf("unexpected no-data: %s", d.Reason)
	}

	if len(d.History) != 3 {
		t.Fatalf("history has %d points, want 3", len(d.History))
	}
	// History must come out date-ascending regardless of input order.
	for i := 1; i < len(d.History); i++ {
		if d.History[i].X < d.History[i-1].X {
			t.Fatal("history x positions not ascending")
		}
	}

	if len(d.Conservative) == 0 || len(d.Optimistic) == 0 {
		t.Fatal("projection polylines missing")
	}

	// Both projections start at the latest check-in and end on race day.
	lastHist := d.History[len(d.History)-1]
	if d.Conservative[0].X != lastHist.X || d.Optimistic[0].X != lastHist.X {
		t.Error("projections must start at the latest check-in")
	}
	conEnd := d.Conservative[len(d.Conservative)-1]
	optEnd := d.Optimistic[len(d.Optimistic)-1]
	if conEnd.X != d.RaceDayX || optEnd.X != d.RaceDayX {
		t.Error("projections must end exactly on the race-day line")
	}

	// Improvement means smaller pace, which maps to a larger y (pace axis
	// grows downward in value terms): the optimistic line ends below the
	// conservative line in pace, i.e. at a greater pixel y.
	if !(optEnd.Y > conEnd.Y) {
		t.Errorf("optimistic end y %v not beyond conservative %v", optEnd.Y, conEnd.Y)
	}
}

func TestBuild_TicksAndMarkers(t *testing.T) {
	d := Build(trackedState(), 720, 320)

	if d.GoalY == nil {
		t.Fatal("goal line missing despite configured goal pace")
	}
	if len(d.PaceTicks) == 0 {
		t.Fatal("no pace ticks")
	}
	for _, tick := range d.PaceTicks {
		if tick.Label == "" {
			t.Fatal("pace tick without label")
		}
	}
	if len(d.MonthTicks) == 0 {
		t.Fatal("no month ticks for a multi-month span")
	}
	if d.MonthTicks[0].Label != "2026-06" {
		t.Errorf("first month tick = %q, want 2026-06", d.MonthTicks[0].Label)
	}
}

func TestNiceStepSeconds(t *testing.T) {
	cases := map[float64]float64{
		20:  5,
		45:  10,
		100: 15,
		200: 30,
		400: 60,
		900: 120,
	}
	for in, want := range cases {
		if got := niceStepSeconds(in); got != want {
			t.Errorf("niceStepSeconds(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestBuild_NoGoal(t *testing.T) {
	s := trackedState()
	s.Config.GoalPaceSec = nil
	d := Build(s, 720, 320)
	if d.GoalY != nil {
		t.Error("goal line present without a goal pace")
	}
}
