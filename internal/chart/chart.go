// Package chart builds render-ready trendline chart data: the history line,
// the two projection polylines, goal/race-day markers and axis ticks, all
// mapped into pixel space. It stops at the data-to-pixel mapping; drawing is
// the consumer's job.
package chart

import (
	"math"
	"time"

	"marathon-readiness/toolkit/internal/growth"
	"marathon-readiness/toolkit/internal/pace"
	"marathon-readiness/toolkit/internal/trend"
)

// Defaults for the drawing surface when the caller does not specify one.
const (
	DefaultWidth  = 720
	DefaultHeight = 320
)

// Layout margins, in pixels.
const (
	frame      = 10
	sidePad    = 10
	yGutter    = 34
	monthZone  = 28
	legendZone = 34
	bottomPad  = 10
	topPad     = 12
)

// Point is one pixel-space vertex of a polyline.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Tick is an axis tick position with its display label.
type Tick struct {
	Pos   float64 `json:"pos"`
	Label string  `json:"label"`
}

// Data is everything a renderer needs to draw the trendline chart.
type Data struct {
	NoData bool   `json:"noData"`
	Reason string `json:"reason,omitempty"`

	Width  int `json:"width"`
	Height int `json:"height"`

	History      []Point `json:"history"`
	Conservative []Point `json:"conservative"`
	Optimistic   []Point `json:"optimistic"`

	GoalY    *float64 `json:"goalY,omitempty"`
	RaceDayX float64  `json:"raceDayX"`

	PaceTicks  []Tick `json:"paceTicks"`
	MonthTicks []Tick `json:"monthTicks"`
}

// niceStepSeconds picks a readable pace-axis step for a given value range.
func niceStepSeconds(rangeSec float64) float64 {
	switch {
	case rangeSec <= 30:
		return 5
	case rangeSec <= 60:
		return 10
	case rangeSec <= 120:
		return 15
	case rangeSec <= 240:
		return 30
	case rangeSec <= 480:
		return 60
	default:
		return 120
	}
}

// monthStarts yields the first-of-month dates covering [min, max].
func monthStarts(min, max time.Time) []time.Time {
	var out []time.Time
	d := time.Date(min.Year(), min.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !d.After(max) {
		if !d.Before(min) {
			out = append(out, d)
		}
		d = d.AddDate(0, 1, 0)
	}
	return out
}

// Build maps a tracker state onto a width x height surface. An absent config
// or an empty check-in collection is a legitimate no-data state, never an
// error.
func Build(state trend.State, width, height int) *Data {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	d := &Data{Width: width, Height: height}

	if state.Config == nil {
		d.NoData = true
		d.Reason = "no race configuration"
		return d
	}
	raceDay, err := pace.ParseDate(state.Config.RaceDate)
	if err != nil {
		d.NoData = true
		d.Reason = "invalid race date"
		return d
	}

	type sample struct {
		when time.Time
		pace float64
	}
	var pts []sample
	for _, c := range state.Checkins {
		day, err := pace.ParseDate(c.Date)
		if err != nil || c.PaceSecPerKm <= 0 {
			continue
		}
		pts = append(pts, sample{when: day, pace: float64(c.PaceSecPerKm)})
	}
	if len(pts) == 0 {
		d.NoData = true
		d.Reason = "no check-ins yet"
		return d
	}
	// Check-ins arrive unordered; the x axis needs them ascending.
	for i := 1; i < len(pts); i++ {
		for j := i; j > 0 && pts[j].when.Before(pts[j-1].when); j-- {
			pts[j], pts[j-1] = pts[j-1], pts[j]
		}
	}

	// X domain: first check-in to race day, widened so the race-day line
	// never collapses onto the left edge.
	minX := pts[0].when
	if wall := raceDay.AddDate(0, 0, -7); wall.Before(minX) {
		minX = wall
	}
	maxX := raceDay

	cfg := *state.Config
	last := pts[len(pts)-1]
	lastCheckIn := trend.CheckIn{Date: pace.FormatDate(last.when), PaceSecPerKm: int(last.pace)}
	rates := growth.RatesForLevel(cfg.Level)

	var conSeries, optSeries []trend.SeriesPoint
	for p := range trend.ProjectionSeries(lastCheckIn, cfg, rates.Conservative, 1) {
		conSeries = append(conSeries, p)
	}
	for p := range trend.ProjectionSeries(lastCheckIn, cfg, rates.Optimistic, 1) {
		optSeries = append(optSeries, p)
	}

	// Y domain: every observed and projected pace plus the goal line, with
	// 10% (min 8s) padding.
	minY, maxY := math.Inf(1), math.Inf(-1)
	grow := func(v float64) {
		minY = math.Min(minY, v)
		maxY = math.Max(maxY, v)
	}
	for _, p := range pts {
		grow(p.pace)
	}
	for _, p := range conSeries {
		grow(p.Pace)
	}
	for _, p := range optSeries {
		grow(p.Pace)
	}
	if cfg.GoalPaceSec != nil {
		grow(float64(*cfg.GoalPaceSec))
	}
	yPad := math.Max(8, math.Round((maxY-minY)*0.1))
	minY -= yPad
	maxY += yPad

	left := float64(frame + sidePad + yGutter)
	right := float64(width - frame - sidePad)
	top := float64(frame + topPad)
	bottom := float64(height - frame - (monthZone + legendZone + bottomPad))

	xSpan := maxX.Sub(minX)
	xScale := func(t time.Time) float64 {
		if xSpan <= 0 {
			return left
		}
		return left + float64(t.Sub(minX))/float64(xSpan)*(right-left)
	}
	yScale := func(sec float64) float64 {
		return bottom - (sec-minY)/(maxY-minY)*(bottom-top)
	}

	for _, p := range pts {
		d.History = append(d.History, Point{X: xScale(p.when), Y: yScale(p.pace)})
	}
	for _, p := range conSeries {
		d.Conservative = append(d.Conservative, Point{X: xScale(p.Date), Y: yScale(p.Pace)})
	}
	for _, p := range optSeries {
		d.Optimistic = append(d.Optimistic, Point{X: xScale(p.Date), Y: yScale(p.Pace)})
	}

	d.RaceDayX = xScale(raceDay)
	if cfg.GoalPaceSec != nil {
		y := yScale(float64(*cfg.GoalPaceSec))
		d.GoalY = &y
	}

	step := niceStepSeconds(maxY - minY)
	for v := math.Ceil(minY/step) * step; v <= maxY+1e-9; v += step {
		d.PaceTicks = append(d.PaceTicks, Tick{Pos: yScale(v), Label: pace.Format(v)})
	}
	for _, m := range monthStarts(minX, maxX) {
		d.MonthTicks = append(d.MonthTicks, Tick{Pos: xScale(m), Label: m.Format("2006-01")})
	}

	return d
}
