package charts

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func render(t *testing.T, r Renderer) string {
	t.Helper()
	var buf bytes.Buffer
	if err := r.Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func date(d int) time.Time {
	return time.Date(2015, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestNewBarChart(t *testing.T) {
	cfg := DefaultChartConfig()
	cfg.Title = "Class popularity"

	bar := NewBarChart([]DataPoint{
		{Label: "Mage", Value: 12},
		{Label: "Warrior", Value: 7},
	}, "Decks", Set3, cfg)

	html := render(t, bar)
	for _, want := range []string{"Class popularity", "Mage", "Warrior", "Decks", Set3[0], Set3[1]} {
		if !strings.Contains(html, want) {
			t.Errorf("bar chart HTML missing %q", want)
		}
	}
}

func TestNewBarChart_Empty(t *testing.T) {
	html := render(t, NewBarChart(nil, "Decks", nil, DefaultChartConfig()))
	if html == "" {
		t.Error("empty bar chart rendered nothing")
	}
}

func TestNewScatterChart_Markers(t *testing.T) {
	series := SeriesData{
		Name: "Decks per day",
		Points: []TimePoint{
			{Date: date(1), Value: 3, Valid: true},
			{Date: date(2), Value: 5, Valid: true},
		},
	}
	markers := []Marker{
		{Label: "Naxxramas", Date: date(2), Color: "rgba(0, 0, 255, 0.5)"},
		{Label: "Gnomes", Date: date(3), Color: "rgba(255, 0, 0, 0.5)"},
		{Label: "Blackrock", Date: date(4), Color: "rgba(0, 0, 255, 0.5)"},
	}

	html := render(t, NewScatterChart(series, markers, DefaultChartConfig()))
	for _, want := range []string{"2015-01-01", "Naxxramas", "Gnomes", "Blackrock", "markLine"} {
		if !strings.Contains(html, want) {
			t.Errorf("scatter chart HTML missing %q", want)
		}
	}
}

func TestGroupMarkers(t *testing.T) {
	groups := groupMarkers([]Marker{
		{Label: "a", Color: "blue"},
		{Label: "b", Color: "red"},
		{Label: "c", Color: "blue"},
	})

	if len(groups) != 2 {
		t.Fatalf("groupMarkers() = %d groups, want 2", len(groups))
	}
	if groups[0].color != "blue" || len(groups[0].markers) != 2 {
		t.Errorf("first group = %+v, want two blue markers", groups[0])
	}
	if groups[1].color != "red" || len(groups[1].markers) != 1 {
		t.Errorf("second group = %+v, want one red marker", groups[1])
	}
	if len(groupMarkers(nil)) != 0 {
		t.Error("groupMarkers(nil) should be empty")
	}
}

func TestNewStackedAreaChart(t *testing.T) {
	series := []SeriesData{
		{Name: "common", Points: []TimePoint{{Date: date(1), Value: 20, Valid: true}}},
		{Name: "rare", Points: []TimePoint{{Date: date(1), Value: 10, Valid: true}, {Date: date(2)}}},
	}

	html := render(t, NewStackedAreaChart(series, nil, DefaultChartConfig()))
	for _, want := range []string{"common", "rare", "areaStyle", "total"} {
		if !strings.Contains(html, want) {
			t.Errorf("area chart HTML missing %q", want)
		}
	}
	if strings.Contains(html, "2015-01-02") {
		t.Error("undefined point should not be plotted")
	}
}

func TestNewLineChart_Empty(t *testing.T) {
	html := render(t, NewLineChart([]SeriesData{{Name: "Leeroy Jenkins"}}, nil, DefaultChartConfig()))
	if !strings.Contains(html, "Leeroy Jenkins") {
		t.Error("empty line chart should still name its series")
	}
}

func TestRenderToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bar.html")

	cfg := DefaultChartConfig()
	if err := RenderToFile(NewBarChart([]DataPoint{{Label: "Mage", Value: 1}}, "Decks", nil, cfg), path); err != nil {
		t.Fatalf("RenderToFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !strings.Contains(string(data), "Mage") {
		t.Error("chart file missing data")
	}
}

func TestNewPage(t *testing.T) {
	page := NewPage("Deck dashboard",
		NewBarChart([]DataPoint{{Label: "Mage", Value: 1}}, "Classes", nil, DefaultChartConfig()),
		NewLineChart([]SeriesData{{Name: "Popularity"}}, nil, DefaultChartConfig()),
	)

	html := render(t, page)
	for _, want := range []string{"Deck dashboard", "Classes", "Popularity"} {
		if !strings.Contains(html, want) {
			t.Errorf("page HTML missing %q", want)
		}
	}
}
