// Package dashboard answers chart queries over the prepared deck dataset.
package dashboard

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/cache"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/catalog"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/config"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/decks"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/events"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/features"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/stats"
)

var (
	// ErrUnknownClass is returned for a class outside the selector values.
	ErrUnknownClass = errors.New("unknown class")

	// ErrUnknownCard is returned for a name that is not a deck-eligible card.
	ErrUnknownCard = errors.New("unknown card")

	// ErrInvalidWindow is returned for a non-positive rolling window.
	ErrInvalidWindow = errors.New("rolling window must be positive")
)

// AllClasses is the selector value that covers every deck.
const AllClasses = "All"

// PlayableClasses are the hero classes decks are built for, in selector order.
var PlayableClasses = []string{
	"Mage", "Priest", "Warlock", "Druid", "Paladin", "Hunter", "Warrior", "Rogue", "Shaman",
}

// Service is the session facade: it owns the dataset cache and the event
// calendar and exposes one method per chart.
type Service struct {
	cfg      *config.Config
	cache    *cache.Cache[*Dataset]
	calendar events.Calendar
	logger   *zap.Logger
}

// NewService creates a service over the configured input files. Nothing is
// loaded until the first query.
func NewService(cfg *config.Config, calendar events.Calendar, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calendar == nil {
		calendar = events.DefaultCalendar()
	}

	s := &Service{
		cfg:      cfg,
		calendar: calendar,
		logger:   logger,
	}
	s.cache = cache.New(
		[]string{cfg.Data.CatalogPath, cfg.Data.DeckTablePath},
		func() (*Dataset, error) { return Prepare(cfg, logger) },
		cache.Options{Enabled: cfg.Cache.Enabled, Logger: logger.Named("cache")},
	)
	return s
}

// Watch starts invalidating the dataset when an input file changes.
func (s *Service) Watch() error {
	return s.cache.Watch()
}

// Close stops the file watcher.
func (s *Service) Close() error {
	return s.cache.Close()
}

// CacheStats returns dataset cache statistics.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Dataset returns the prepared dataset, loading it if the inputs changed.
func (s *Service) Dataset() (*Dataset, error) {
	ds, _, err := s.cache.Get()
	return ds, err
}

func (s *Service) dataset() (*Dataset, *cache.Memo, error) {
	ds, memo, err := s.cache.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to prepare dataset: %w", err)
	}
	return ds, memo, nil
}

// Classes returns the class selector values.
func (s *Service) Classes() []string {
	return append(slices.Clone(PlayableClasses), AllClasses)
}

// CardNames returns the deck-eligible card names for the card selector.
func (s *Service) CardNames() ([]string, error) {
	ds, _, err := s.dataset()
	if err != nil {
		return nil, err
	}
	return ds.Catalog.EligibleNames(), nil
}

// resolveClass maps a selector value to a table class filter; "" selects
// every deck. Matching ignores case.
func resolveClass(class string) (string, error) {
	if class == "" || strings.EqualFold(class, AllClasses) {
		return "", nil
	}
	for _, c := range PlayableClasses {
		if strings.EqualFold(class, c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownClass, class)
}

func (s *Service) markers(table *decks.Table, show bool) []events.Event {
	if !show {
		return nil
	}
	return s.calendar.Before(table.LastDate())
}

// ClassFrequencyView is the number of decks per class, most frequent first.
type ClassFrequencyView struct {
	Counts []stats.Count `json:"counts"`
}

// ClassFrequency counts decks per class.
func (s *Service) ClassFrequency() (*ClassFrequencyView, error) {
	ds, memo, err := s.dataset()
	if err != nil {
		return nil, err
	}

	return cache.Remember(memo, "class-frequency", func() (*ClassFrequencyView, error) {
		classes := make([]string, ds.Table.Len())
		for i, d := range ds.Table.Decks() {
			classes[i] = d.Class
		}
		return &ClassFrequencyView{Counts: stats.ValueCounts(classes)}, nil
	})
}

// CostDistributionView is the histogram of deck craft costs.
type CostDistributionView struct {
	Bins []stats.Bin `json:"bins"`
}

// CostDistribution buckets craft costs into the configured bins.
func (s *Service) CostDistribution() (*CostDistributionView, error) {
	ds, memo, err := s.dataset()
	if err != nil {
		return nil, err
	}

	return cache.Remember(memo, "cost-distribution", func() (*CostDistributionView, error) {
		costs := make([]float64, ds.Table.Len())
		for i, d := range ds.Table.Decks() {
			costs[i] = float64(d.CraftCost)
		}
		bins := stats.Histogram(costs, s.cfg.Analysis.HistogramBins, 0, float64(s.cfg.Analysis.HistogramMaxCost))
		return &CostDistributionView{Bins: bins}, nil
	})
}

// DecksPerDayView is the number of decks created on each day.
type DecksPerDayView struct {
	Days   []stats.DayCount `json:"days"`
	Events []events.Event   `json:"events,omitempty"`
}

// DecksPerDay counts submissions per creation date, optionally with the
// events that happened before the last observed date.
func (s *Service) DecksPerDay(showEvents bool) (*DecksPerDayView, error) {
	ds, memo, err := s.dataset()
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("decks-per-day|%t", showEvents)
	return cache.Remember(memo, key, func() (*DecksPerDayView, error) {
		dates := make([]time.Time, ds.Table.Len())
		for i, d := range ds.Table.Decks() {
			dates[i] = d.CreationDate
		}
		return &DecksPerDayView{
			Days:   stats.CountByDay(dates),
			Events: s.markers(ds.Table, showEvents),
		}, nil
	})
}

// Within returns a copy of the view limited to rng.
func (v *DecksPerDayView) Within(rng stats.TimeRange) *DecksPerDayView {
	if rng.IsZero() {
		return v
	}
	clipped := &DecksPerDayView{Days: []stats.DayCount{}, Events: eventsWithin(v.Events, rng)}
	for _, d := range v.Days {
		if rng.Contains(d.Date) {
			clipped.Days = append(clipped.Days, d)
		}
	}
	return clipped
}

// TimeSeriesView is a titled set of daily series with optional event markers.
type TimeSeriesView struct {
	Title  string         `json:"title"`
	Class  string         `json:"class,omitempty"`
	Window int            `json:"window"`
	Series []stats.Series `json:"series"`
	Events []events.Event `json:"events,omitempty"`
}

// Empty reports whether no series has a defined point.
func (v *TimeSeriesView) Empty() bool {
	for _, s := range v.Series {
		for _, p := range s.Points {
			if p.Valid {
				return false
			}
		}
	}
	return true
}

// Within returns a copy of the view limited to rng. Events outside it are dropped.
func (v *TimeSeriesView) Within(rng stats.TimeRange) *TimeSeriesView {
	if rng.IsZero() {
		return v
	}
	clipped := *v
	clipped.Series = make([]stats.Series, len(v.Series))
	for i, s := range v.Series {
		clipped.Series[i] = stats.Series{Name: s.Name, Points: rng.Clip(s.Points)}
	}
	clipped.Events = eventsWithin(v.Events, rng)
	return &clipped
}

func eventsWithin(evs []events.Event, rng stats.TimeRange) []events.Event {
	var result []events.Event
	for _, e := range evs {
		if rng.Contains(e.Date) {
			result = append(result, e)
		}
	}
	return result
}

var seriesNames = map[string]string{
	features.ColCommon:      "Common and class cards",
	features.ColRare:        "Rare cards",
	features.ColEpic:        "Epic cards",
	features.ColLegendary:   "Legendary cards",
	features.ColBattlecry:   "Battlecry",
	features.ColDeathrattle: "Deathrattle",
	features.ColStealth:     "Stealth",
	features.ColCharge:      "Charge",
	features.ColDiscover:    "Discover",
	features.ColRush:        "Rush",
	features.ColTaunt:       "Taunt",
}

// dailyMeans averages one column per creation date over the given rows.
func dailyMeans(table *decks.Table, rows []int, column func(i int) int) []stats.Point {
	dates := make([]time.Time, len(rows))
	values := make([]float64, len(rows))
	for j, i := range rows {
		dates[j] = table.Deck(i).CreationDate
		values[j] = float64(column(i))
	}
	return stats.MeanByDay(dates, values)
}

// RarityStructure computes the rolling mean of the rarity composition over
// consecutive observed days. The first window days are dropped. A class
// without decks yields empty series.
func (s *Service) RarityStructure(class string, window int, showEvents bool) (*TimeSeriesView, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, window)
	}
	filter, err := resolveClass(class)
	if err != nil {
		return nil, err
	}

	ds, memo, err := s.dataset()
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("rarity-structure|%s|%d|%t", filter, window, showEvents)
	return cache.Remember(memo, key, func() (*TimeSeriesView, error) {
		view := &TimeSeriesView{
			Title:  "Averaged rarity structure of all decks",
			Window: window,
			Events: s.markers(ds.Table, showEvents),
		}
		if filter != "" {
			view.Title = fmt.Sprintf("Rarity structure of %s decks", filter)
			view.Class = filter
		}

		rows := ds.Table.ClassIndices(filter)
		for _, col := range features.RarityColumns {
			means := dailyMeans(ds.Table, rows, func(i int) int { return ds.Table.Value(i, col) })
			view.Series = append(view.Series, stats.Series{
				Name:   seriesNames[col],
				Points: stats.Trim(stats.Rolling(means, window), window),
			})
		}

		s.logger.Debug("rarity structure computed",
			zap.String("class", view.Class),
			zap.Int("window", window),
			zap.Int("decks", len(rows)),
		)
		return view, nil
	})
}

// CardPopularity computes the rolling mean inclusion count of one card. Decks
// of the card's owning class are used when that class is playable, every
// deck otherwise. Events are always included.
func (s *Service) CardPopularity(card string) (*TimeSeriesView, error) {
	ds, memo, err := s.dataset()
	if err != nil {
		return nil, err
	}
	if !ds.Catalog.IsEligible(card) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCard, card)
	}

	window := s.cfg.Analysis.PopularityWindow
	key := fmt.Sprintf("card-popularity|%s|%d", card, window)
	return cache.Remember(memo, key, func() (*TimeSeriesView, error) {
		class := ds.Catalog.OwningClass(card)
		if !slices.Contains(PlayableClasses, class) {
			class = ""
		}

		view := &TimeSeriesView{
			Title:  fmt.Sprintf("%s popularity over time across all decks", card),
			Class:  class,
			Window: window,
			Events: s.markers(ds.Table, true),
		}
		if class != "" {
			view.Title = fmt.Sprintf("%s popularity over time in %s decks", card, class)
		}

		rows := ds.Table.ClassIndices(class)
		counts := ds.Table.CardValues(card)
		means := dailyMeans(ds.Table, rows, func(i int) int { return counts[i] })
		view.Series = []stats.Series{{
			Name:   card,
			Points: stats.Rolling(means, window),
		}}
		return view, nil
	})
}

// MechanicMean is the average number of cards of one mechanic group per deck.
type MechanicMean struct {
	Label string  `json:"label" csv:"group"`
	Mean  float64 `json:"mean" csv:"mean"`
}

// MechanicProfileView is the mechanic profile of the decks of one class.
type MechanicProfileView struct {
	Title  string         `json:"title"`
	Class  string         `json:"class,omitempty"`
	Decks  int            `json:"decks"`
	Groups []MechanicMean `json:"groups"`
}

// MechanicProfile averages every mechanic group column over the decks of
// a class. A class without decks yields zero means.
func (s *Service) MechanicProfile(class string) (*MechanicProfileView, error) {
	filter, err := resolveClass(class)
	if err != nil {
		return nil, err
	}

	ds, memo, err := s.dataset()
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("mechanic-profile|%s", filter)
	return cache.Remember(memo, key, func() (*MechanicProfileView, error) {
		rows := ds.Table.ClassIndices(filter)
		view := &MechanicProfileView{
			Title: "Mechanic profile of all decks",
			Class: filter,
			Decks: len(rows),
		}
		if filter != "" {
			view.Title = fmt.Sprintf("Mechanic profile of %s decks", filter)
		}

		for _, col := range features.MechanicColumns {
			var sum int
			for _, i := range rows {
				sum += ds.Table.Value(i, col)
			}
			mean := 0.0
			if len(rows) > 0 {
				mean = float64(sum) / float64(len(rows))
			}
			view.Groups = append(view.Groups, MechanicMean{Label: seriesNames[col], Mean: mean})
		}
		return view, nil
	})
}

// Summary describes the loaded dataset.
type Summary struct {
	Decks            int             `json:"decks"`
	FirstDate        time.Time       `json:"first_date"`
	LastDate         time.Time       `json:"last_date"`
	Classes          []string        `json:"classes"`
	CatalogCards     int             `json:"catalog_cards"`
	EligibleCards    int             `json:"eligible_cards"`
	CollapsedEntries int             `json:"collapsed_entries"`
	UnnamedEntries   int             `json:"unnamed_entries"`
	Load             decks.LoadStats `json:"load"`
	Groups           map[string]int  `json:"group_sizes"`
	Cache            cache.Stats     `json:"cache"`
	Events           []events.Event  `json:"events"`
	Rarities         map[string]int  `json:"rarities"`
}

// Summary reports dataset size, load statistics and group sizes.
func (s *Service) Summary() (*Summary, error) {
	ds, _, err := s.dataset()
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Decks:            ds.Table.Len(),
		FirstDate:        ds.Table.FirstDate(),
		LastDate:         ds.Table.LastDate(),
		Classes:          ds.Table.Classes(),
		CatalogCards:     ds.Catalog.Len(),
		EligibleCards:    len(ds.Catalog.EligibleNames()),
		CollapsedEntries: ds.Catalog.Duplicates(),
		UnnamedEntries:   ds.Catalog.Unnamed(),
		Load:             ds.LoadStats,
		Groups:           make(map[string]int, len(ds.Groups)),
		Cache:            s.cache.Stats(),
		Events:           s.calendar,
		Rarities:         make(map[string]int),
	}
	for _, g := range ds.Groups {
		summary.Groups[g.Column] = len(g.Members)
	}
	for _, name := range ds.Catalog.EligibleNames() {
		if card, ok := ds.Catalog.Lookup(name); ok {
			summary.Rarities[rarityLabel(card.Rarity)]++
		}
	}
	return summary, nil
}

func rarityLabel(r catalog.Rarity) string {
	if r == "" {
		return "UNKNOWN"
	}
	return string(r)
}

// RarityWindow returns the configured default window of the rarity chart.
func (s *Service) RarityWindow() int {
	return s.cfg.Analysis.RarityWindow
}
