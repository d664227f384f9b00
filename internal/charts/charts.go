package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Renderer is a chart or page that can write itself as an HTML document.
type Renderer interface {
	Render(w io.Writer) error
}

// Chart is a single chart: renderable on its own or as part of a page.
type Chart interface {
	Renderer
	components.Charter
}

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string   // Chart title
	Subtitle   string   // Chart subtitle
	YAxisLabel string   // Y-axis label
	XAxisLabel string   // X-axis label
	Width      string   // Chart width (e.g., "900px")
	Height     string   // Chart height (e.g., "500px")
	Theme      string   // Chart theme
	ShowLegend bool     // Show legend
	Smooth     bool     // Smooth line (for line charts)
	Colors     []string // Custom colors
}

// Set3 is the qualitative palette used for class bars.
var Set3 = []string{
	"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3", "#fdb462",
	"#b3de69", "#fccde5", "#d9d9d9", "#bc80bd", "#ccebc5", "#ffed6f",
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:      "",
		Subtitle:   "",
		YAxisLabel: "",
		XAxisLabel: "",
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Smooth:     true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

func (c ChartConfig) color(i int) string {
	if len(c.Colors) == 0 {
		return ""
	}
	return c.Colors[i%len(c.Colors)]
}

// DataPoint represents a single categorical data point in a chart.
type DataPoint struct {
	Label string
	Value float64
}

// TimePoint is one value on a time axis. Points with Valid false are gaps.
type TimePoint struct {
	Date  time.Time
	Value float64
	Valid bool
}

// SeriesData represents a data series for multi-series charts.
type SeriesData struct {
	Name   string
	Points []TimePoint
}

// Marker is a labelled vertical line at a date.
type Marker struct {
	Label string
	Date  time.Time
	Color string
}

const axisDateLayout = "2006-01-02"

func globalOptions(config ChartConfig) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
		charts.WithColorsOpts(opts.Colors(config.Colors)),
		charts.WithYAxisOpts(opts.YAxis{
			Name: config.YAxisLabel,
		}),
	}
}

func timeAxisOptions(config ChartConfig) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithXAxisOpts(opts.XAxis{
			Name: config.XAxisLabel,
			Type: "time",
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:  "slider",
			Start: 0,
			End:   100,
		}),
	}
}

// NewBarChart creates a bar chart with one bar per point. A non-empty
// palette colors each bar individually.
func NewBarChart(data []DataPoint, seriesName string, palette []string, config ChartConfig) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(config)...)
	bar.SetGlobalOptions(charts.WithXAxisOpts(opts.XAxis{
		Name: config.XAxisLabel,
	}))

	// Prepare X-axis labels
	xLabels := make([]string, len(data))
	for i, point := range data {
		xLabels[i] = point.Label
	}

	// Prepare Y-axis data
	yData := make([]opts.BarData, len(data))
	for i, point := range data {
		yData[i] = opts.BarData{Value: point.Value}
		if len(palette) > 0 {
			yData[i].ItemStyle = &opts.ItemStyle{
				Color:       palette[i%len(palette)],
				BorderColor: "black",
			}
		}
	}

	bar.SetXAxis(xLabels).
		AddSeries(seriesName, yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	return bar
}

// NewScatterChart plots time points as dots, with optional vertical markers.
func NewScatterChart(series SeriesData, markers []Marker, config ChartConfig) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(globalOptions(config)...)
	scatter.SetGlobalOptions(timeAxisOptions(config)...)

	data := make([]opts.ScatterData, 0, len(series.Points))
	for _, p := range series.Points {
		if !p.Valid {
			continue
		}
		data = append(data, opts.ScatterData{
			Value:      []interface{}{p.Date.Format(axisDateLayout), p.Value},
			SymbolSize: 5,
		})
	}

	scatter.AddSeries(series.Name, data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: config.color(0)}),
	)
	for _, group := range groupMarkers(markers) {
		scatter.AddSeries(group.name, []opts.ScatterData{}, group.seriesOptions()...)
	}

	return scatter
}

// NewLineChart creates a multi-series line chart over a time axis. Undefined
// points are left out, which leaves a gap in the line.
func NewLineChart(series []SeriesData, markers []Marker, config ChartConfig) *charts.Line {
	return newTimeLine(series, markers, config, false)
}

// NewStackedAreaChart stacks the series as filled areas over a time axis.
func NewStackedAreaChart(series []SeriesData, markers []Marker, config ChartConfig) *charts.Line {
	return newTimeLine(series, markers, config, true)
}

func newTimeLine(series []SeriesData, markers []Marker, config ChartConfig, stacked bool) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions(config)...)
	line.SetGlobalOptions(timeAxisOptions(config)...)

	for i, s := range series {
		yData := make([]opts.LineData, 0, len(s.Points))
		for _, p := range s.Points {
			if !p.Valid {
				continue
			}
			yData = append(yData, opts.LineData{
				Value: []interface{}{p.Date.Format(axisDateLayout), p.Value},
			})
		}

		lineOpts := opts.LineChart{
			Smooth:     opts.Bool(config.Smooth),
			ShowSymbol: opts.Bool(false),
		}
		if stacked {
			lineOpts.Stack = "total"
		}

		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(lineOpts),
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
			charts.WithItemStyleOpts(opts.ItemStyle{
				Color: config.color(i),
			}),
		}
		if stacked {
			seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{
				Opacity: opts.Float(0.7),
			}))
		}
		line.AddSeries(s.Name, yData, seriesOpts...)
	}

	for _, group := range groupMarkers(markers) {
		line.AddSeries(group.name, []opts.LineData{}, group.seriesOptions()...)
	}

	return line
}

// markerGroup holds the markers drawn with one color. Each group is carried
// by an empty helper series because mark line style is per series.
type markerGroup struct {
	name    string
	color   string
	markers []Marker
}

func groupMarkers(markers []Marker) []markerGroup {
	var groups []markerGroup
	index := make(map[string]int)
	for _, m := range markers {
		i, ok := index[m.Color]
		if !ok {
			i = len(groups)
			index[m.Color] = i
			groups = append(groups, markerGroup{name: fmt.Sprintf("Events %d", i+1), color: m.Color})
		}
		groups[i].markers = append(groups[i].markers, m)
	}
	return groups
}

func (g markerGroup) seriesOptions() []charts.SeriesOpts {
	items := make([]opts.MarkLineNameXAxisItem, len(g.markers))
	for i, m := range g.markers {
		items[i] = opts.MarkLineNameXAxisItem{
			Name:  m.Label,
			XAxis: m.Date.Format(axisDateLayout),
		}
	}
	return []charts.SeriesOpts{
		charts.WithMarkLineNameXAxisItemOpts(items...),
		charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Symbol: []string{"none", "none"},
			LineStyle: &opts.LineStyle{
				Color: g.color,
			},
			Label: &opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}",
			},
		}),
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color: g.color,
		}),
	}
}

// NewPage lays several charts out on one HTML page.
func NewPage(title string, items ...Chart) *components.Page {
	page := components.NewPage()
	page.PageTitle = title
	page.SetLayout(components.PageFlexLayout)
	for _, item := range items {
		page.AddCharts(item)
	}
	return page
}

// RenderToFile writes a chart or page to an HTML file.
func RenderToFile(r Renderer, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	// Create output file
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := r.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return nil
}

// OpenInBrowser opens the given file path or URL in the default web browser.
func OpenInBrowser(target string) error {
	if _, err := os.Stat(target); err == nil {
		absPath, err := filepath.Abs(target)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		target = absPath
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	case "linux":
		cmd = exec.Command("xdg-open", target)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
