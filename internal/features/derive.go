package features

import (
	"fmt"

	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/decks"
)

// Derive attaches one column per group to the table, plus the common column
// computed as deckSize minus rare, epic and legendary counts.
func Derive(table *decks.Table, groups []Group, deckSize int) error {
	for _, g := range groups {
		if err := table.SetColumn(g.Column, table.SumCards(g.Members)); err != nil {
			return fmt.Errorf("derive %s: %w", g.Column, err)
		}
	}

	common := make([]int, table.Len())
	for i := range common {
		common[i] = deckSize -
			table.Value(i, ColRare) -
			table.Value(i, ColEpic) -
			table.Value(i, ColLegendary)
	}
	if err := table.SetColumn(ColCommon, common); err != nil {
		return fmt.Errorf("derive %s: %w", ColCommon, err)
	}

	return nil
}
