package decks

import (
	"fmt"
	"slices"
	"sort"
	"time"
)

// Table is the normalized deck table: rows ordered by creation date
// (stable, duplicates kept), sparse card inclusion counts and derived
// aggregate columns. A Table is read-only once preparation finishes.
type Table struct {
	decks   []Deck
	counts  [][]cardCount // per row, non-zero entries only
	cards   []string      // card columns present in the source
	cardIdx map[string]int32
	derived map[string][]int
	order   []string // derived column names in insertion order
}

func newTable(cards []string) *Table {
	t := &Table{
		cards:   cards,
		cardIdx: make(map[string]int32, len(cards)),
		derived: make(map[string][]int),
	}
	for i, name := range cards {
		t.cardIdx[name] = int32(i)
	}
	return t
}

// Len returns the number of decks.
func (t *Table) Len() int {
	return len(t.decks)
}

// Deck returns the metadata of row i.
func (t *Table) Deck(i int) Deck {
	return t.decks[i]
}

// Decks returns the rows in date order. Callers must not modify the slice.
func (t *Table) Decks() []Deck {
	return t.decks
}

// CardColumns returns the card columns read from the source.
func (t *Table) CardColumns() []string {
	return slices.Clone(t.cards)
}

// HasCard reports whether the source had a column for the card.
func (t *Table) HasCard(name string) bool {
	_, ok := t.cardIdx[name]
	return ok
}

// CardCount returns how many copies of the card row i includes.
// Cards without a column count as zero.
func (t *Table) CardCount(i int, name string) int {
	idx, ok := t.cardIdx[name]
	if !ok {
		return 0
	}
	for _, cc := range t.counts[i] {
		if cc.card == idx {
			return int(cc.count)
		}
	}
	return 0
}

// CardValues returns the inclusion count of the card for every row.
func (t *Table) CardValues(name string) []int {
	values := make([]int, len(t.decks))
	idx, ok := t.cardIdx[name]
	if !ok {
		return values
	}
	for i, row := range t.counts {
		for _, cc := range row {
			if cc.card == idx {
				values[i] = int(cc.count)
				break
			}
		}
	}
	return values
}

// SumCards returns, for each row, the total count of the given cards.
// Names without a column contribute zero.
func (t *Table) SumCards(names []string) []int {
	members := make(map[int32]struct{}, len(names))
	for _, name := range names {
		if idx, ok := t.cardIdx[name]; ok {
			members[idx] = struct{}{}
		}
	}

	sums := make([]int, len(t.decks))
	if len(members) == 0 {
		return sums
	}
	for i, row := range t.counts {
		for _, cc := range row {
			if _, ok := members[cc.card]; ok {
				sums[i] += int(cc.count)
			}
		}
	}
	return sums
}

// TotalCards returns the sum of all card columns of row i.
func (t *Table) TotalCards(i int) int {
	total := 0
	for _, cc := range t.counts[i] {
		total += int(cc.count)
	}
	return total
}

// SetColumn attaches a derived integer column.
func (t *Table) SetColumn(name string, values []int) error {
	if len(values) != len(t.decks) {
		return fmt.Errorf("column %s has %d values, table has %d rows", name, len(values), len(t.decks))
	}
	if _, exists := t.derived[name]; !exists {
		t.order = append(t.order, name)
	}
	t.derived[name] = values
	return nil
}

// Column returns a derived column.
func (t *Table) Column(name string) ([]int, bool) {
	values, ok := t.derived[name]
	return values, ok
}

// Value returns the derived column value of row i, or 0 when the column is missing.
func (t *Table) Value(i int, name string) int {
	values, ok := t.derived[name]
	if !ok {
		return 0
	}
	return values[i]
}

// Columns returns the derived column names in the order they were attached.
func (t *Table) Columns() []string {
	return slices.Clone(t.order)
}

// Indices returns the rows matching keep, in date order.
func (t *Table) Indices(keep func(Deck) bool) []int {
	var rows []int
	for i, d := range t.decks {
		if keep == nil || keep(d) {
			rows = append(rows, i)
		}
	}
	return rows
}

// ClassIndices returns the rows of one class; an empty class selects every row.
func (t *Table) ClassIndices(class string) []int {
	if class == "" {
		return t.Indices(nil)
	}
	return t.Indices(func(d Deck) bool { return d.Class == class })
}

// FirstDate returns the earliest creation date; zero when the table is empty.
func (t *Table) FirstDate() time.Time {
	if len(t.decks) == 0 {
		return time.Time{}
	}
	return t.decks[0].CreationDate
}

// LastDate returns the latest creation date; zero when the table is empty.
func (t *Table) LastDate() time.Time {
	if len(t.decks) == 0 {
		return time.Time{}
	}
	return t.decks[len(t.decks)-1].CreationDate
}

// Classes returns the distinct class values in sorted order.
func (t *Table) Classes() []string {
	seen := make(map[string]struct{})
	for _, d := range t.decks {
		seen[d.Class] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	slices.Sort(classes)
	return classes
}

// sortByDate orders rows by creation date, keeping input order for equal dates.
func (t *Table) sortByDate() {
	perm := make([]int, len(t.decks))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return t.decks[perm[a]].CreationDate.Before(t.decks[perm[b]].CreationDate)
	})

	decks := make([]Deck, len(perm))
	counts := make([][]cardCount, len(perm))
	for i, p := range perm {
		decks[i] = t.decks[p]
		counts[i] = t.counts[p]
	}
	t.decks = decks
	t.counts = counts
}
