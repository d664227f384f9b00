package dashboard

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/charts"
)

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]+`)

// cardSlug lowers a card name to a file-safe slug. Names without any
// ASCII letter or digit fall back to "card".
func cardSlug(card string) string {
	slug := strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(card), "-"), "-")
	if slug == "" {
		return "card"
	}
	return slug
}

// chartNames hands out chart file names without extension for one render
// or export run. Popularity charts are suffixed with the card slug, and a
// slug already taken in the run gets an index suffix.
type chartNames map[string]int

func (n chartNames) base(name, card string) string {
	if card == "" {
		return name
	}
	base := name + "-" + cardSlug(card)
	n[base]++
	k := n[base]
	if k == 1 {
		return base
	}
	// "x-2" may itself be the slug of another card.
	for n[fmt.Sprintf("%s-%d", base, k)] > 0 {
		k++
	}
	base = fmt.Sprintf("%s-%d", base, k)
	n[base]++
	return base
}

type chartBuild struct {
	file  string
	build func() (charts.Chart, error)
}

func (s *Service) builds(q Query, cards []string) []chartBuild {
	var builds []chartBuild
	names := chartNames{}
	for _, name := range ChartNames {
		if name == ChartCardPopularity {
			continue
		}
		builds = append(builds, chartBuild{
			file:  names.base(name, "") + ".html",
			build: func() (charts.Chart, error) { return s.Chart(name, q) },
		})
	}
	for _, card := range cards {
		builds = append(builds, chartBuild{
			file:  names.base(ChartCardPopularity, card) + ".html",
			build: func() (charts.Chart, error) { return s.CardPopularityChart(card, q.Range) },
		})
	}
	return builds
}

// RenderAll writes every chart for the query into dir, one popularity chart
// per card, plus an index.html page holding all of them. It returns the
// written file paths, index last.
func (s *Service) RenderAll(dir string, q Query, cards []string) ([]string, error) {
	builds := s.builds(q, cards)
	written := make([]string, 0, len(builds)+1)
	page := make([]charts.Chart, 0, len(builds))

	for _, b := range builds {
		chart, err := b.build()
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, b.file)
		if err := charts.RenderToFile(chart, path); err != nil {
			return written, fmt.Errorf("%s: %w", b.file, err)
		}
		written = append(written, path)

		// A rendered chart is not reused on the page.
		if chart, err = b.build(); err != nil {
			return written, err
		}
		page = append(page, chart)
	}

	index := filepath.Join(dir, "index.html")
	if err := charts.RenderToFile(charts.NewPage("Hearthstone deck analysis", page...), index); err != nil {
		return written, fmt.Errorf("index.html: %w", err)
	}
	written = append(written, index)

	s.logger.Info("charts rendered", zap.String("dir", dir), zap.Int("files", len(written)))
	return written, nil
}
