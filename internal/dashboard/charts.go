package dashboard

import (
	"errors"
	"fmt"

	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/charts"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/events"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/stats"
)

// Chart names accepted by Chart.
const (
	ChartClassFrequency   = "class-frequency"
	ChartCostDistribution = "cost-distribution"
	ChartDecksPerDay      = "decks-per-day"
	ChartRarityStructure  = "rarity-structure"
	ChartCardPopularity   = "card-popularity"
	ChartMechanicProfile  = "mechanic-profile"
)

// ChartNames lists every chart in page order.
var ChartNames = []string{
	ChartClassFrequency,
	ChartCostDistribution,
	ChartDecksPerDay,
	ChartRarityStructure,
	ChartCardPopularity,
	ChartMechanicProfile,
}

// ErrUnknownChart is returned by Chart for a name outside ChartNames.
var ErrUnknownChart = errors.New("unknown chart")

// Query carries the UI selections shared by the charts.
type Query struct {
	Class      string // class selector value; "" or AllClasses for every deck
	Window     int    // rolling window in observed days; 0 uses the configured default
	ShowEvents bool
	Card       string          // card for the popularity chart
	Range      stats.TimeRange // displayed period of the time series charts
}

// Chart builds the named chart for the query.
func (s *Service) Chart(name string, q Query) (charts.Chart, error) {
	switch name {
	case ChartClassFrequency:
		return s.ClassFrequencyChart()
	case ChartCostDistribution:
		return s.CostDistributionChart()
	case ChartDecksPerDay:
		return s.DecksPerDayChart(q.ShowEvents, q.Range)
	case ChartRarityStructure:
		return s.RarityStructureChart(q.Class, s.window(q), q.ShowEvents, q.Range)
	case ChartCardPopularity:
		return s.CardPopularityChart(q.Card, q.Range)
	case ChartMechanicProfile:
		return s.MechanicProfileChart(q.Class)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
}

func (s *Service) window(q Query) int {
	if q.Window == 0 {
		return s.cfg.Analysis.RarityWindow
	}
	return q.Window
}

func chartConfig(title, xLabel, yLabel string) charts.ChartConfig {
	config := charts.DefaultChartConfig()
	config.Title = title
	config.XAxisLabel = xLabel
	config.YAxisLabel = yLabel
	return config
}

func toMarkers(evs []events.Event) []charts.Marker {
	markers := make([]charts.Marker, len(evs))
	for i, e := range evs {
		markers[i] = charts.Marker{Label: e.Label, Date: e.Date, Color: e.Kind.Color()}
	}
	return markers
}

func periodSubtitle(view *TimeSeriesView, rng stats.TimeRange) string {
	switch {
	case view.Empty():
		return "No decks in range"
	case !rng.IsZero():
		return rng.FormatPeriod()
	default:
		return ""
	}
}

func toSeries(series []stats.Series) []charts.SeriesData {
	result := make([]charts.SeriesData, len(series))
	for i, s := range series {
		points := make([]charts.TimePoint, len(s.Points))
		for j, p := range s.Points {
			points[j] = charts.TimePoint{Date: p.Date, Value: p.Value, Valid: p.Valid}
		}
		result[i] = charts.SeriesData{Name: s.Name, Points: points}
	}
	return result
}

// ClassFrequencyChart draws decks per class as colored bars.
func (s *Service) ClassFrequencyChart() (charts.Chart, error) {
	view, err := s.ClassFrequency()
	if err != nil {
		return nil, err
	}

	data := make([]charts.DataPoint, len(view.Counts))
	for i, c := range view.Counts {
		data[i] = charts.DataPoint{Label: c.Label, Value: float64(c.Count)}
	}

	config := chartConfig("Decks per class", "Class", "Number of Decks")
	config.ShowLegend = false
	return charts.NewBarChart(data, "Decks", charts.Set3, config), nil
}

// CostDistributionChart draws the craft cost histogram.
func (s *Service) CostDistributionChart() (charts.Chart, error) {
	view, err := s.CostDistribution()
	if err != nil {
		return nil, err
	}

	data := make([]charts.DataPoint, len(view.Bins))
	for i, b := range view.Bins {
		data[i] = charts.DataPoint{Label: fmt.Sprintf("%.0f", b.Lo), Value: float64(b.Count)}
	}

	config := chartConfig("Deck craft cost", "Craft Cost", "Number of Decks")
	config.ShowLegend = false
	return charts.NewBarChart(data, "Decks", nil, config), nil
}

// DecksPerDayChart draws the daily submission counts within rng as dots.
func (s *Service) DecksPerDayChart(showEvents bool, rng stats.TimeRange) (charts.Chart, error) {
	view, err := s.DecksPerDay(showEvents)
	if err != nil {
		return nil, err
	}
	view = view.Within(rng)

	points := make([]charts.TimePoint, len(view.Days))
	for i, d := range view.Days {
		points[i] = charts.TimePoint{Date: d.Date, Value: float64(d.Count), Valid: true}
	}

	config := chartConfig("Decks created per day", "Date", "Decks created that day")
	if !rng.IsZero() {
		config.Subtitle = rng.FormatPeriod()
	}
	return charts.NewScatterChart(
		charts.SeriesData{Name: "Decks", Points: points},
		toMarkers(view.Events),
		config,
	), nil
}

// RarityStructureChart draws the rolling rarity composition as stacked areas.
func (s *Service) RarityStructureChart(class string, window int, showEvents bool, rng stats.TimeRange) (charts.Chart, error) {
	view, err := s.RarityStructure(class, window, showEvents)
	if err != nil {
		return nil, err
	}
	view = view.Within(rng)

	config := chartConfig(view.Title, "Creation date", "Rarity structure")
	config.Subtitle = periodSubtitle(view, rng)
	return charts.NewStackedAreaChart(toSeries(view.Series), toMarkers(view.Events), config), nil
}

// CardPopularityChart draws the rolling mean inclusion count of a card.
func (s *Service) CardPopularityChart(card string, rng stats.TimeRange) (charts.Chart, error) {
	view, err := s.CardPopularity(card)
	if err != nil {
		return nil, err
	}
	view = view.Within(rng)

	config := chartConfig(view.Title, "Date", "Average number in decks")
	config.Subtitle = periodSubtitle(view, rng)
	config.Smooth = false
	return charts.NewLineChart(toSeries(view.Series), toMarkers(view.Events), config), nil
}

// MechanicProfileChart draws the average mechanic group sizes of a class.
func (s *Service) MechanicProfileChart(class string) (charts.Chart, error) {
	view, err := s.MechanicProfile(class)
	if err != nil {
		return nil, err
	}

	data := make([]charts.DataPoint, len(view.Groups))
	for i, g := range view.Groups {
		data[i] = charts.DataPoint{Label: g.Label, Value: g.Mean}
	}

	config := chartConfig(view.Title, "Mechanic", "Average cards per deck")
	config.ShowLegend = false
	return charts.NewBarChart(data, "Cards", nil, config), nil
}
