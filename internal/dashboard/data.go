package dashboard

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/export"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/stats"
)

// SeriesRow is one defined point of a time series chart.
type SeriesRow struct {
	Series string    `json:"series" csv:"series"`
	Date   time.Time `json:"date" csv:"date"`
	Value  float64   `json:"value" csv:"value"`
}

func seriesRows(series []stats.Series) []SeriesRow {
	rows := []SeriesRow{}
	for _, s := range series {
		for _, p := range stats.ValidPoints(s.Points) {
			rows = append(rows, SeriesRow{Series: s.Name, Date: p.Date, Value: p.Value})
		}
	}
	return rows
}

// Data returns the rows plotted by the named chart as a slice of structs
// suitable for export. Time series rows are limited to q.Range.
func (s *Service) Data(name string, q Query) (any, error) {
	switch name {
	case ChartClassFrequency:
		view, err := s.ClassFrequency()
		if err != nil {
			return nil, err
		}
		return view.Counts, nil
	case ChartCostDistribution:
		view, err := s.CostDistribution()
		if err != nil {
			return nil, err
		}
		return view.Bins, nil
	case ChartDecksPerDay:
		view, err := s.DecksPerDay(false)
		if err != nil {
			return nil, err
		}
		return view.Within(q.Range).Days, nil
	case ChartRarityStructure:
		view, err := s.RarityStructure(q.Class, s.window(q), false)
		if err != nil {
			return nil, err
		}
		return seriesRows(view.Within(q.Range).Series), nil
	case ChartCardPopularity:
		view, err := s.CardPopularity(q.Card)
		if err != nil {
			return nil, err
		}
		return seriesRows(view.Within(q.Range).Series), nil
	case ChartMechanicProfile:
		view, err := s.MechanicProfile(q.Class)
		if err != nil {
			return nil, err
		}
		return view.Groups, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
}

// ExportAll writes the data of every chart for the query into dir, one
// popularity file per card. Existing files are replaced.
func (s *Service) ExportAll(dir string, format export.Format, q Query, cards []string) ([]string, error) {
	type item struct {
		name string
		q    Query
	}
	var items []item
	for _, name := range ChartNames {
		if name != ChartCardPopularity {
			items = append(items, item{name: name, q: q})
		}
	}
	for _, card := range cards {
		cq := q
		cq.Card = card
		items = append(items, item{name: ChartCardPopularity, q: cq})
	}

	var written []string
	names := chartNames{}
	for _, it := range items {
		rows, err := s.Data(it.name, it.q)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, names.base(it.name, it.q.Card)+"."+string(format))
		exporter := export.NewExporter(export.Options{
			Format:     format,
			FilePath:   path,
			PrettyJSON: true,
			Overwrite:  true,
		})
		if err := exporter.Export(rows); err != nil {
			return written, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		written = append(written, path)
	}

	s.logger.Info("chart data exported",
		zap.String("dir", dir),
		zap.String("format", string(format)),
		zap.Int("files", len(written)))
	return written, nil
}
