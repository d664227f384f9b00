package decks

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrMissingColumn is returned when a required metadata column is absent from the header.
var ErrMissingColumn = errors.New("missing required column")

// Options control how the deck table is read and normalized.
type Options struct {
	// CardNames are the deck-eligible card columns to read. Other columns are ignored.
	CardNames []string

	// ExcludedDeckTypes are dropped during normalization (DefaultExcludedDeckTypes if nil).
	ExcludedDeckTypes []string

	// DeckSize is the fixed number of cards in a deck.
	DeckSize int

	// ValidateDeckSize drops rows with negative counts or whose counts
	// don't sum to DeckSize. When false the input is trusted.
	ValidateDeckSize bool
}

// LoadStats summarizes a load.
type LoadStats struct {
	RowsRead           int `json:"rows_read"`
	DroppedZeroCost    int `json:"dropped_zero_cost"`
	DroppedDeckType    int `json:"dropped_deck_type"`
	DroppedInvalid     int `json:"dropped_invalid"`
	Kept               int `json:"kept"`
	CardColumns        int `json:"card_columns"`
	MissingCardColumns int `json:"missing_card_columns"`
}

// cardColumn maps a csv column to a table card index.
type cardColumn struct {
	col  int
	card int32
}

// Loader parses deck tables.
type Loader struct {
	opts   Options
	logger *zap.Logger

	// Column indices (populated during header parsing)
	colMeta map[string]int
	colCard []cardColumn
}

// NewLoader creates a loader. A nil logger disables logging.
func NewLoader(opts Options, logger *zap.Logger) *Loader {
	if opts.ExcludedDeckTypes == nil {
		opts.ExcludedDeckTypes = DefaultExcludedDeckTypes
	}
	if opts.DeckSize <= 0 {
		opts.DeckSize = 30
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		opts:   opts,
		logger: logger,
	}
}

// Load reads and normalizes the deck table at path.
func (l *Loader) Load(path string) (*Table, LoadStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("failed to open deck table: %w", err)
	}
	defer func() { _ = file.Close() }()

	table, stats, err := l.Parse(file)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to parse deck table %s: %w", path, err)
	}
	return table, stats, nil
}

// Parse reads a deck table from r. Any malformed row fails the whole load.
func (l *Loader) Parse(r io.Reader) (*Table, LoadStats, error) {
	var stats LoadStats

	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read header: %w", err)
	}

	cards, err := l.parseHeader(header)
	if err != nil {
		return nil, stats, err
	}
	stats.CardColumns = len(cards)
	stats.MissingCardColumns = len(l.opts.CardNames) - len(cards)

	l.logger.Debug("parsing deck table",
		zap.Int("card_columns", len(cards)),
		zap.Int("missing_card_columns", stats.MissingCardColumns))

	excluded := make(map[string]struct{}, len(l.opts.ExcludedDeckTypes))
	for _, dt := range l.opts.ExcludedDeckTypes {
		excluded[dt] = struct{}{}
	}

	table := newTable(cards)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, err
		}
		line, _ := reader.FieldPos(0)
		stats.RowsRead++

		// Drop rules run before the remaining cells are parsed, so a
		// dropped row may carry otherwise malformed values.
		cost, err := parseCount(l.field(row, ColCraftCost))
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: invalid %s: %w", line, ColCraftCost, err)
		}
		if cost <= 0 {
			stats.DroppedZeroCost++
			continue
		}
		if _, drop := excluded[l.field(row, ColDeckType)]; drop {
			stats.DroppedDeckType++
			continue
		}

		deck, counts, err := l.parseRow(row, line)
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: %w", line, err)
		}
		deck.CraftCost = cost

		if l.opts.ValidateDeckSize && !l.validCounts(counts) {
			stats.DroppedInvalid++
			continue
		}

		table.decks = append(table.decks, deck)
		table.counts = append(table.counts, counts)
	}

	table.sortByDate()
	stats.Kept = table.Len()

	l.logger.Info("deck table loaded",
		zap.Int("rows", stats.RowsRead),
		zap.Int("kept", stats.Kept),
		zap.Int("dropped_zero_cost", stats.DroppedZeroCost),
		zap.Int("dropped_deck_type", stats.DroppedDeckType),
		zap.Int("dropped_invalid", stats.DroppedInvalid))

	return table, stats, nil
}

// parseHeader finds metadata and card column indices and returns the
// card columns present, in header order.
func (l *Loader) parseHeader(header []string) ([]string, error) {
	l.colMeta = make(map[string]int, len(MetadataColumns))
	l.colCard = l.colCard[:0]

	wanted := make(map[string]struct{}, len(l.opts.CardNames))
	for _, name := range l.opts.CardNames {
		wanted[name] = struct{}{}
	}

	meta := make(map[string]struct{}, len(MetadataColumns))
	for _, col := range MetadataColumns {
		meta[col] = struct{}{}
	}

	var cards []string
	seen := make(map[string]struct{})
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if _, ok := meta[col]; ok {
			l.colMeta[col] = i
			continue
		}
		if _, ok := wanted[col]; !ok {
			continue
		}
		if _, dup := seen[col]; dup {
			continue
		}
		seen[col] = struct{}{}
		l.colCard = append(l.colCard, cardColumn{col: i, card: int32(len(cards))})
		cards = append(cards, col)
	}

	for _, col := range MetadataColumns {
		if _, ok := l.colMeta[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	return cards, nil
}

func (l *Loader) field(row []string, col string) string {
	idx := l.colMeta[col]
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow parses every cell except craft_cost.
func (l *Loader) parseRow(row []string, line int) (Deck, []cardCount, error) {
	field := func(col string) string { return l.field(row, col) }

	deck := Deck{
		Regim:     field(ColRegim),
		Rating:    field(ColRating),
		Class:     field(ColClass),
		DeckType:  field(ColDeckType),
		Archetype: field(ColDeckArchetype),
		Code:      field(ColCode),
		Line:      line,
	}

	date, err := time.Parse(DateLayout, field(ColCreationDate))
	if err != nil {
		return Deck{}, nil, fmt.Errorf("invalid %s %q: %w", ColCreationDate, field(ColCreationDate), err)
	}
	deck.CreationDate = date

	ints := []struct {
		col string
		dst *int
	}{
		{ColMinionCount, &deck.MinionCount},
		{ColSpellCount, &deck.SpellCount},
		{ColWeaponCount, &deck.WeaponCount},
	}
	for _, f := range ints {
		v, err := parseCount(field(f.col))
		if err != nil {
			return Deck{}, nil, fmt.Errorf("invalid %s: %w", f.col, err)
		}
		*f.dst = v
	}

	var counts []cardCount
	for _, cc := range l.colCard {
		if cc.col >= len(row) {
			continue
		}
		v, err := parseCount(row[cc.col])
		if err != nil {
			return Deck{}, nil, fmt.Errorf("invalid count in column %d: %w", cc.col+1, err)
		}
		if v != 0 {
			counts = append(counts, cardCount{card: cc.card, count: int32(v)})
		}
	}

	return deck, counts, nil
}

func (l *Loader) validCounts(counts []cardCount) bool {
	total := 0
	for _, cc := range counts {
		if cc.count < 0 {
			return false
		}
		total += int(cc.count)
	}
	return total == l.opts.DeckSize
}

// parseCount parses an integer cell within the int32 range. Boolean
// spellings map to 1 and 0.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "True", "true":
		return 1, nil
	case "False", "false":
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("out of range: %q", s)
	}
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(v), nil
}
