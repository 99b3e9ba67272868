package diag

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/swdee/go-kftrack/tracker"
)

// seriesColors are the chart colors per track category, matching the frame
// renderer
var seriesColors = map[tracker.Category]string{
	tracker.Truth:    "#FF0000",
	tracker.Measured: "#FFFF00",
	tracker.Filtered: "#009BFF",
}

// TrailChart builds a scatter chart of the three tracks.  The y axis is
// flipped so the chart matches screen orientation
func TrailChart(trail *tracker.Trail, width, height int) *charts.Scatter {

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Tracks", Theme: "dark", Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: "Tracks", Subtitle: fmt.Sprintf("last %d points per track", trail.Size())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: width, Name: "x (px)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: height, Name: "y (px)", NameLocation: "middle", NameGap: 30}),
	)

	for _, cat := range tracker.Categories {
		pts := trail.GetPoints(cat)
		data := make([]opts.ScatterData, 0, len(pts))

		for _, p := range pts {
			data = append(data, opts.ScatterData{Value: []interface{}{p.X, float64(height) - p.Y}})
		}

		scatter.AddSeries(cat.String(), data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: seriesColors[cat]}),
		)
	}

	return scatter
}

// TraceChart builds a line chart of the recorded covariance trace
func (r *Recorder) TraceChart() *charts.Line {

	trace, _ := r.Series()

	ticks := make([]int, len(trace))
	data := make([]opts.LineData, len(trace))

	for i, p := range trace {
		ticks[i] = int(p.X)
		data[i] = opts.LineData{Value: p.Y}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Error covariance trace"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	line.SetXAxis(ticks).
		AddSeries("trace(P)", data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: seriesColors[tracker.Filtered]}),
		)

	return line
}

// RenderPage writes an HTML page with the track chart and, when a recorder
// is given, the covariance trace chart
func RenderPage(w io.Writer, trail *tracker.Trail, rec *Recorder, width, height int) error {

	page := components.NewPage()
	page.PageTitle = "go-kftrack"
	page.AddCharts(TrailChart(trail, width, height))

	if rec != nil {
		page.AddCharts(rec.TraceChart())
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart page: %w", err)
	}

	return nil
}
