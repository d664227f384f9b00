package dashboard

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/config"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/stats"
)

const testCatalog = `[
  {"name": "Fireball", "rarity": "COMMON", "cardClass": "MAGE"},
  {"name": "Frostbolt", "rarity": "COMMON", "mechanics": null, "cardClass": "MAGE"},
  {"name": "Leeroy Jenkins", "rarity": "LEGENDARY", "mechanics": ["BATTLECRY", "CHARGE"], "cardClass": "NEUTRAL"},
  {"name": "Sludge Belcher", "rarity": "RARE", "mechanics": ["DEATHRATTLE", "TAUNT"], "cardClass": "NEUTRAL"},
  {"name": "Ice Block", "rarity": "EPIC", "cardClass": "MAGE"},
  {"name": "Shield Slam", "rarity": "EPIC", "cardClass": "WARRIOR"},
  {"name": "Execute", "rarity": "FREE", "cardClass": "WARRIOR"},
  {"name": "Frostbolt Rank 2", "rarity": "COMMON", "cardClass": "MAGE"}
]`

const testDeckTable = `regim,rating,Class,creation_date,deck_type,deck_archetype,code,minion_count,spell_count,weapon_count,craft_cost,Fireball,Frostbolt,Leeroy Jenkins,Sludge Belcher,Ice Block,Shield Slam,Execute
Ranked,5,Mage,01/01/2015,Ranked Deck,Freeze,A1,10,20,0,2000,2,2,1,0,2,0,0
Ranked,6,Mage,01/01/2015,Ranked Deck,Tempo,A2,12,18,0,3000,2,2,0,2,1,0,0
Ranked,7,Warrior,01/02/2015,Ranked Deck,Control,A3,14,10,6,5000,0,0,1,2,0,2,2
Ranked,8,Mage,01/03/2015,Ranked Deck,Tempo,A4,10,20,0,0,2,2,0,0,0,0,0
Ranked,9,Mage,01/03/2015,Arena,Tempo,A5,10,20,0,1000,2,2,0,0,0,0,0
Ranked,4,Warrior,01/03/2015,Ranked Deck,Patron,A6,16,10,4,15000,0,0,1,0,0,1,2
Ranked,3,Mage,01/04/2015,Ranked Deck,Tempo,A7,9,21,0,2500,2,2,1,0,0,0,0
`

func writeInputs(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Data.CatalogPath = filepath.Join(dir, "allcards.json")
	cfg.Data.DeckTablePath = filepath.Join(dir, "DataTable.csv")
	cfg.Analysis.PopularityWindow = 2

	require.NoError(t, os.WriteFile(cfg.Data.CatalogPath, []byte(testCatalog), 0o644))
	require.NoError(t, os.WriteFile(cfg.Data.DeckTablePath, []byte(testDeckTable), 0o644))
	return cfg
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(writeInputs(t), nil, nil)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func day(d int) time.Time {
	return time.Date(2015, time.January, d, 0, 0, 0, 0, time.UTC)
}

func values(points []stats.Point) []float64 {
	var out []float64
	for _, p := range points {
		if p.Valid {
			out = append(out, p.Value)
		}
	}
	return out
}

func TestPrepare_RarityColumnsSumToDeckSize(t *testing.T) {
	cfg := writeInputs(t)

	ds, err := Prepare(cfg, nil)
	require.NoError(t, err)
	require.Equal(t, 5, ds.Table.Len())

	for i := 0; i < ds.Table.Len(); i++ {
		sum := 0
		for _, col := range []string{"common_and_class_cards", "rare_cards", "epic_cards", "legendary_cards"} {
			sum += ds.Table.Value(i, col)
		}
		assert.Equal(t, 30, sum, "row %d", i)
	}
}

func TestPrepare_MissingCatalog(t *testing.T) {
	cfg := writeInputs(t)
	cfg.Data.CatalogPath = filepath.Join(t.TempDir(), "missing.json")

	_, err := Prepare(cfg, nil)
	assert.Error(t, err)
}

func TestService_Classes(t *testing.T) {
	svc := newTestService(t)

	classes := svc.Classes()
	assert.Len(t, classes, 10)
	assert.Equal(t, AllClasses, classes[len(classes)-1])
	assert.Contains(t, classes, "Rogue")
}

func TestService_CardNames(t *testing.T) {
	svc := newTestService(t)

	names, err := svc.CardNames()
	require.NoError(t, err)
	assert.Len(t, names, 7)
	assert.NotContains(t, names, "Frostbolt Rank 2")
}

func TestService_ClassFrequency(t *testing.T) {
	svc := newTestService(t)

	view, err := svc.ClassFrequency()
	require.NoError(t, err)
	assert.Equal(t, []stats.Count{{Label: "Mage", Count: 3}, {Label: "Warrior", Count: 2}}, view.Counts)
}

func TestService_CostDistribution(t *testing.T) {
	svc := newTestService(t)

	view, err := svc.CostDistribution()
	require.NoError(t, err)
	require.Len(t, view.Bins, 100)

	total := 0
	for _, b := range view.Bins {
		total += b.Count
	}
	assert.Equal(t, 5, total)
	assert.Equal(t, 1, view.Bins[99].Count, "upper edge is inclusive")
	assert.Equal(t, 1, view.Bins[13].Count)
}

func TestService_DecksPerDay(t *testing.T) {
	svc := newTestService(t)

	view, err := svc.DecksPerDay(false)
	require.NoError(t, err)
	assert.Equal(t, []stats.DayCount{
		{Date: day(1), Count: 2},
		{Date: day(2), Count: 1},
		{Date: day(3), Count: 1},
		{Date: day(4), Count: 1},
	}, view.Days)
	assert.Empty(t, view.Events)

	view, err = svc.DecksPerDay(true)
	require.NoError(t, err)
	require.Len(t, view.Events, 2, "only events before the last observed date")
	for _, e := range view.Events {
		assert.True(t, e.Date.Before(day(4)))
	}
}

func TestService_RarityStructure(t *testing.T) {
	tests := []struct {
		name      string
		class     string
		window    int
		wantTitle string
		want      []float64 // common_and_class_cards
	}{
		{
			name:      "all decks window 1",
			class:     AllClasses,
			window:    1,
			wantTitle: "Averaged rarity structure of all decks",
			want:      []float64{25, 28, 29},
		},
		{
			name:      "all decks window 2",
			class:     "",
			window:    2,
			wantTitle: "Averaged rarity structure of all decks",
			want:      []float64{26.5, 28.5},
		},
		{
			name:      "mage decks",
			class:     "Mage",
			window:    1,
			wantTitle: "Rarity structure of Mage decks",
			want:      []float64{29},
		},
		{
			name:      "case insensitive class",
			class:     "mage",
			window:    1,
			wantTitle: "Rarity structure of Mage decks",
			want:      []float64{29},
		},
	}

	svc := newTestService(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := svc.RarityStructure(tt.class, tt.window, false)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, view.Title)
			require.Len(t, view.Series, 4)
			assert.Equal(t, "Common and class cards", view.Series[0].Name)
			assert.Equal(t, tt.want, values(view.Series[0].Points))

			// Each day's composition still adds up to a full deck.
			for i := range view.Series[0].Points {
				total := 0.0
				for _, s := range view.Series {
					total += s.Points[i].Value
				}
				assert.InDelta(t, 30, total, 1e-9)
			}
		})
	}
}

func TestService_RarityStructure_EmptyClass(t *testing.T) {
	svc := newTestService(t)

	view, err := svc.RarityStructure("Priest", 30, true)
	require.NoError(t, err)
	assert.Equal(t, "Rarity structure of Priest decks", view.Title)
	assert.True(t, view.Empty())
	assert.Len(t, view.Events, 2)
}

func TestService_RarityStructure_Errors(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.RarityStructure("Murloc", 30, false)
	assert.ErrorIs(t, err, ErrUnknownClass)

	_, err = svc.RarityStructure("Mage", 0, false)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestService_CardPopularity(t *testing.T) {
	svc := newTestService(t)

	view, err := svc.CardPopularity("Fireball")
	require.NoError(t, err)
	assert.Equal(t, "Fireball popularity over time in Mage decks", view.Title)
	assert.Equal(t, "Mage", view.Class)
	assert.Equal(t, []float64{2}, values(view.Series[0].Points))
	assert.Len(t, view.Events, 2, "popularity charts always carry events")

	view, err = svc.CardPopularity("Leeroy Jenkins")
	require.NoError(t, err)
	assert.Equal(t, "Leeroy Jenkins popularity over time across all decks", view.Title)
	assert.Empty(t, view.Class)
	assert.Equal(t, []float64{0.75, 1, 1}, values(view.Series[0].Points))
}

func TestService_CardPopularity_UnknownCard(t *testing.T) {
	svc := newTestService(t)

	for _, card := range []string{"Frostbolt Rank 2", "Not A Card", ""} {
		_, err := svc.CardPopularity(card)
		assert.ErrorIs(t, err, ErrUnknownCard, card)
	}
}

func TestService_MechanicProfile(t *testing.T) {
	svc := newTestService(t)

	view, err := svc.MechanicProfile("Warrior")
	require.NoError(t, err)
	assert.Equal(t, "Mechanic profile of Warrior decks", view.Title)
	assert.Equal(t, 2, view.Decks)
	assert.Equal(t, []MechanicMean{
		{Label: "Battlecry", Mean: 1},
		{Label: "Deathrattle", Mean: 1},
		{Label: "Stealth", Mean: 0},
		{Label: "Charge", Mean: 1},
		{Label: "Discover", Mean: 0},
		{Label: "Rush", Mean: 0},
		{Label: "Taunt", Mean: 1},
	}, view.Groups)

	view, err = svc.MechanicProfile("Shaman")
	require.NoError(t, err)
	assert.Zero(t, view.Decks)
	for _, g := range view.Groups {
		assert.Zero(t, g.Mean)
	}
}

func TestService_Summary(t *testing.T) {
	svc := newTestService(t)

	summary, err := svc.Summary()
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Decks)
	assert.Equal(t, day(1), summary.FirstDate)
	assert.Equal(t, day(4), summary.LastDate)
	assert.Equal(t, []string{"Mage", "Warrior"}, summary.Classes)
	assert.Equal(t, 8, summary.CatalogCards)
	assert.Equal(t, 7, summary.EligibleCards)
	assert.Equal(t, 7, summary.Load.RowsRead)
	assert.Equal(t, 1, summary.Load.DroppedZeroCost)
	assert.Equal(t, 1, summary.Load.DroppedDeckType)
	assert.Equal(t, 1, summary.Groups["charge_cards"])
	assert.Equal(t, 2, summary.Rarities["EPIC"])
}

func TestService_MemoizesUntilInputsChange(t *testing.T) {
	cfg := writeInputs(t)
	svc := NewService(cfg, nil, nil)
	defer svc.Close()

	first, err := svc.RarityStructure("Mage", 1, false)
	require.NoError(t, err)
	second, err := svc.RarityStructure("Mage", 1, false)
	require.NoError(t, err)
	assert.Same(t, first, second)

	extra := "Ranked,2,Mage,01/05/2015,Ranked Deck,Tempo,A8,9,21,0,2500,2,2,0,0,0,0,0\n"
	require.NoError(t, os.WriteFile(cfg.Data.DeckTablePath, []byte(testDeckTable+extra), 0o644))

	third, err := svc.RarityStructure("Mage", 1, false)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, []float64{29, 30}, values(third.Series[0].Points))
	assert.Equal(t, int64(2), svc.CacheStats().Loads)
}

func TestService_LoadErrorSurfaces(t *testing.T) {
	cfg := writeInputs(t)
	require.NoError(t, os.WriteFile(cfg.Data.DeckTablePath, []byte("regim,rating\nRanked,1\n"), 0o644))

	svc := NewService(cfg, nil, nil)
	_, err := svc.ClassFrequency()
	assert.Error(t, err)
}

func TestService_Chart(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{name: ChartClassFrequency, want: "Decks per class"},
		{name: ChartCostDistribution, want: "Deck craft cost"},
		{name: ChartDecksPerDay, query: Query{ShowEvents: true}, want: "Goblins vs Gnomes"},
		{name: ChartRarityStructure, query: Query{Class: "Warrior", Window: 1}, want: "Rarity structure of Warrior decks"},
		{name: ChartCardPopularity, query: Query{Card: "Fireball"}, want: "Fireball popularity over time in Mage decks"},
		{name: ChartMechanicProfile, query: Query{Class: AllClasses}, want: "Mechanic profile of all decks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chart, err := svc.Chart(tt.name, tt.query)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, chart.Render(&buf))
			assert.Contains(t, buf.String(), tt.want)
		})
	}

	_, err := svc.Chart("pie", Query{})
	assert.ErrorIs(t, err, ErrUnknownChart)

	_, err = svc.Chart(ChartCardPopularity, Query{Card: "Nope"})
	assert.ErrorIs(t, err, ErrUnknownCard)
}

func TestService_RenderAll(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()

	files, err := svc.RenderAll(dir, Query{Class: "Mage", ShowEvents: true}, []string{"Leeroy Jenkins"})
	require.NoError(t, err)
	require.Len(t, files, 7)
	assert.Equal(t, filepath.Join(dir, "index.html"), files[len(files)-1])
	assert.Contains(t, files, filepath.Join(dir, "card-popularity-leeroy-jenkins.html"))

	for _, f := range files {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.NotZero(t, info.Size(), f)
	}

	index, err := os.ReadFile(files[len(files)-1])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(index), "Leeroy Jenkins popularity over time across all decks"))
}

func TestChartNames(t *testing.T) {
	names := chartNames{}
	assert.Equal(t, "decks-per-day", names.base(ChartDecksPerDay, ""))
	assert.Equal(t, "card-popularity-sen-jin-shieldmasta", names.base(ChartCardPopularity, "Sen'jin Shieldmasta"))

	// Distinct cards sharing a slug get distinct files.
	assert.Equal(t, "card-popularity-ice-block", names.base(ChartCardPopularity, "Ice Block"))
	assert.Equal(t, "card-popularity-ice-block-2", names.base(ChartCardPopularity, "Ice-Block"))
	assert.Equal(t, "card-popularity-ice-block-3", names.base(ChartCardPopularity, "ICE BLOCK"))

	// Ice Block 2 slugs to a name already handed out above.
	assert.Equal(t, "card-popularity-ice-block-2-2", names.base(ChartCardPopularity, "Ice Block 2"))

	assert.Equal(t, "card-popularity-card", names.base(ChartCardPopularity, "Лирой"))
	assert.Equal(t, "card-popularity-card-2", names.base(ChartCardPopularity, "火球术"))
}
