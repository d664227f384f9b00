package decks

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "regim,rating,Class,creation_date,deck_type,deck_archetype,code,minion_count,spell_count,weapon_count,craft_cost,Fireball,Leeroy Jenkins,Unlisted Card\n"

func testOptions() Options {
	return Options{
		CardNames: []string{"Fireball", "Leeroy Jenkins", "Frostbolt"},
		DeckSize:  30,
	}
}

func parse(t *testing.T, body string, opts Options) (*Table, LoadStats) {
	t.Helper()
	table, stats, err := NewLoader(opts, nil).Parse(strings.NewReader(header + body))
	require.NoError(t, err)
	return table, stats
}

func TestParse_Normalization(t *testing.T) {
	body := strings.Join([]string{
		"Ranked,10,Mage,02/15/2015,Ranked Deck,Tempo,A1,10,18,2,2400,2,1,5",
		"Ranked,3,Mage,01/10/2015,Ranked Deck,Freeze,A2,5,25,0,0,2,0,0",
		"Ranked,7,Warrior,01/10/2015,Arena,Control,A3,20,5,5,1200,0,0,0",
		"Ranked,1,Hunter,01/10/2015,PvE Adventure,Face,A4,20,10,0,900,0,0,0",
		"Ranked,8,Warrior,1/5/2015,Tavern Brawl,Patron,A5,18,10,2,5600,0,1,0",
		"Ranked,9,Mage,02/15/2015,Ranked Deck,Tempo,A6,11,17,2,3100,1,0,0",
	}, "\n") + "\n"

	table, stats := parse(t, body, testOptions())

	assert.Equal(t, 6, stats.RowsRead)
	assert.Equal(t, 1, stats.DroppedZeroCost)
	assert.Equal(t, 2, stats.DroppedDeckType)
	assert.Equal(t, 3, stats.Kept)
	assert.Equal(t, 2, stats.CardColumns)
	assert.Equal(t, 1, stats.MissingCardColumns)

	require.Equal(t, 3, table.Len())
	for _, d := range table.Decks() {
		assert.NotZero(t, d.CraftCost, "row %d kept with zero craft cost", d.Line)
		assert.NotContains(t, DefaultExcludedDeckTypes, d.DeckType)
	}

	// Date order with duplicates kept in input order.
	assert.Equal(t, "A5", table.Deck(0).Code)
	assert.Equal(t, "A1", table.Deck(1).Code)
	assert.Equal(t, "A6", table.Deck(2).Code)
	assert.Equal(t, time.Date(2015, 1, 5, 0, 0, 0, 0, time.UTC), table.FirstDate())
	assert.Equal(t, time.Date(2015, 2, 15, 0, 0, 0, 0, time.UTC), table.LastDate())

	assert.Equal(t, 2, table.CardCount(1, "Fireball"))
	assert.Equal(t, 1, table.CardCount(1, "Leeroy Jenkins"))
	assert.Equal(t, 0, table.CardCount(1, "Frostbolt"), "missing column reads as zero")
	assert.Equal(t, 0, table.CardCount(1, "Unlisted Card"), "non-eligible column is not read")
	assert.False(t, table.HasCard("Unlisted Card"))

	assert.Equal(t, []int{0, 2, 1}, table.CardValues("Fireball"))
	assert.Equal(t, []int{0, 0, 0}, table.CardValues("Frostbolt"))
	assert.Equal(t, []int{1, 3, 1}, table.SumCards([]string{"Fireball", "Leeroy Jenkins", "Frostbolt"}))
	assert.Equal(t, []string{"Mage", "Warrior"}, table.Classes())
}

func TestParse_CustomExcludedDeckTypes(t *testing.T) {
	body := "Ranked,7,Warrior,01/10/2015,Arena,Control,A3,20,5,5,1200,0,0,0\n" +
		"Ranked,8,Warrior,01/11/2015,Tavern Brawl,Patron,A5,18,10,2,5600,0,1,0\n"

	opts := testOptions()
	opts.ExcludedDeckTypes = []string{"Tavern Brawl"}
	table, stats := parse(t, body, opts)

	assert.Equal(t, 1, stats.DroppedDeckType)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "Arena", table.Deck(0).DeckType)
}

func TestParse_ValidateDeckSize(t *testing.T) {
	body := "Ranked,10,Mage,02/15/2015,Ranked Deck,Tempo,A1,10,18,2,2400,2,1,0\n" +
		"Ranked,10,Mage,02/16/2015,Ranked Deck,Tempo,A2,10,18,2,2400,-1,1,0\n"

	opts := testOptions()
	opts.DeckSize = 3
	opts.ValidateDeckSize = true
	table, stats := parse(t, body, opts)

	assert.Equal(t, 1, stats.DroppedInvalid)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "A1", table.Deck(0).Code)

	opts.ValidateDeckSize = false
	table, stats = parse(t, body, opts)
	assert.Equal(t, 0, stats.DroppedInvalid)
	assert.Equal(t, 2, table.Len())
}

func TestParse_BooleanCells(t *testing.T) {
	body := "Ranked,10,Mage,02/15/2015,Ranked Deck,Tempo,A1,10,18,2,2400,True,False,0\n"
	table, _ := parse(t, body, testOptions())

	assert.Equal(t, 1, table.CardCount(0, "Fireball"))
	assert.Equal(t, 0, table.CardCount(0, "Leeroy Jenkins"))
	assert.Equal(t, 1, table.TotalCards(0))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "missing metadata column",
			input:   "regim,rating,Class\nRanked,1,Mage\n",
			wantErr: ErrMissingColumn,
		},
		{
			name:  "bad date",
			input: header + "Ranked,10,Mage,2015-02-15,Ranked Deck,Tempo,A1,10,18,2,2400,2,1,0\n",
		},
		{
			name:  "bad craft cost",
			input: header + "Ranked,10,Mage,02/15/2015,Ranked Deck,Tempo,A1,10,18,2,lots,2,1,0\n",
		},
		{
			name:  "card count overflow",
			input: header + "Ranked,10,Mage,02/15/2015,Ranked Deck,Tempo,A1,10,18,2,2400,4294967297,1,0\n",
		},
		{
			name:  "bad card count",
			input: header + "Ranked,10,Mage,02/15/2015,Ranked Deck,Tempo,A1,10,18,2,2400,two,1,0\n",
		},
		{
			name:  "wrong field count",
			input: header + "Ranked,10,Mage\n",
		},
		{
			name:  "empty input",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewLoader(testOptions(), nil).Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParse_DropRulesBeforeCellParsing(t *testing.T) {
	body := "Ranked,3,Mage,,Ranked Deck,Empty,A2,0,0,0,0,x,y,z\n" +
		"Ranked,7,Warrior,not a date,Arena,Control,A3,20,5,5,1200,0,0,0\n" +
		"Ranked,10,Mage,02/15/2015,Ranked Deck,Tempo,A1,10,18,2,2400,2,1,0\n"

	table, stats := parse(t, body, testOptions())

	assert.Equal(t, 1, stats.DroppedZeroCost)
	assert.Equal(t, 1, stats.DroppedDeckType)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, 2400, table.Deck(0).CraftCost)
}

func TestParse_ErrorsReportPhysicalLine(t *testing.T) {
	multiline := "Ranked,10,Mage,02/15/2015,Ranked Deck,\"Tempo\nwith notes\",A1,10,18,2,2400,2,1,0\n"

	_, _, err := NewLoader(testOptions(), nil).Parse(strings.NewReader(header + multiline +
		"Ranked,10,Mage,bad,Ranked Deck,Tempo,A2,10,18,2,2400,2,1,0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 4:")

	table, _ := parse(t, multiline+"Ranked,10,Mage,02/16/2015,Ranked Deck,Tempo,A2,10,18,2,2400,2,1,0\n", testOptions())
	require.Equal(t, 2, table.Len())
	assert.Equal(t, 2, table.Deck(0).Line)
	assert.Equal(t, 4, table.Deck(1).Line)
}

func TestParseCount_Range(t *testing.T) {
	v, err := parseCount("2147483647")
	require.NoError(t, err)
	assert.Equal(t, 2147483647, v)

	for _, s := range []string{"2147483648", "-2147483649", "99999999999"} {
		_, err := parseCount(s)
		assert.ErrorContains(t, err, "out of range", s)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "DataTable.csv")
	body := header + "Ranked,10,Mage,02/15/2015,Ranked Deck,Tempo,A1,10,18,2,2400,2,1,0\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	table, stats, err := NewLoader(testOptions(), nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Kept)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, 2, table.Deck(0).Line)

	_, _, err = NewLoader(testOptions(), nil).Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
