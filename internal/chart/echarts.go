package chart

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"marathon-readiness/toolkit/internal/growth"
	"marathon-readiness/toolkit/internal/pace"
	"marathon-readiness/toolkit/internal/trend"
)

// RenderHTML writes a self-contained HTML line chart for the tracker state:
// the check-in history plus the conservative and optimistic projection
// curves, sampled weekly out to race day. The no-data case renders an empty
// chart with an explanatory title rather than failing.
func RenderHTML(w io.Writer, state trend.State) error {
	line := charts.NewLine()

	cfg := state.Config
	sorted := trend.FromPayload(trend.Payload{State: state}).SortedCheckIns()

	if cfg == nil || len(sorted) == 0 {
		line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{
			Title:    "Progress Trendline",
			Subtitle: "No data yet: set a race date and add a check-in.",
		}))
		return line.Render(w)
	}

	rates := growth.RatesForLevel(cfg.Level)
	last := sorted[len(sorted)-1]

	var conSeries, optSeries []trend.SeriesPoint
	for p := range trend.ProjectionSeries(last, *cfg, rates.Conservative, 1) {
		conSeries = append(conSeries, p)
	}
	for p := range trend.ProjectionSeries(last, *cfg, rates.Optimistic, 1) {
		optSeries = append(optSeries, p)
	}

	// One shared x axis: history dates followed by the projection samples
	// (which begin at the last check-in, so its date is skipped once).
	var axis []string
	var hist, con, opt []opts.LineData
	for _, c := range sorted {
		axis = append(axis, c.Date)
		hist = append(hist, opts.LineData{Value: c.PaceSecPerKm})
		con = append(con, opts.LineData{Value: nil})
		opt = append(opt, opts.LineData{Value: nil})
	}
	con[len(con)-1] = opts.LineData{Value: float64(last.PaceSecPerKm)}
	opt[len(opt)-1] = opts.LineData{Value: float64(last.PaceSecPerKm)}
	for i := 1; i < len(conSeries); i++ {
		axis = append(axis, pace.FormatDate(conSeries[i].Date))
		hist = append(hist, opts.LineData{Value: nil})
		con = append(con, opts.LineData{Value: conSeries[i].Pace})
		opt = append(opt, opts.LineData{Value: optSeries[i].Pace})
	}

	subtitle := "Race day " + cfg.RaceDate
	if cfg.GoalPaceSec != nil {
		subtitle += ", goal " + pace.Format(float64(*cfg.GoalPaceSec)) + "/km"
	}

	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Progress Trendline",
			Subtitle: subtitle,
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "sec/km"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	line.SetXAxis(axis).
		AddSeries("History", hist).
		AddSeries("Conservative", con).
		AddSeries("Optimistic", opt)

	return line.Render(w)
}
