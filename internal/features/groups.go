// Package features derives per-deck aggregate columns from card inclusion counts.
package features

import "github.com/Sovbaka/Hearthstone-deck-analysis/internal/catalog"

// Derived column names.
const (
	ColCommon    = "common_and_class_cards"
	ColRare      = "rare_cards"
	ColEpic      = "epic_cards"
	ColLegendary = "legendary_cards"

	ColBattlecry   = "battlecry_cards"
	ColDeathrattle = "deathrattle_cards"
	ColStealth     = "stealth_cards"
	ColCharge      = "charge_cards"
	ColDiscover    = "discover_cards"
	ColRush        = "rush_cards"
	ColTaunt       = "taunt_cards"
)

// RarityColumns are the rarity composition columns in stacking order.
var RarityColumns = []string{ColCommon, ColRare, ColEpic, ColLegendary}

// MechanicColumns are the mechanic group columns.
var MechanicColumns = []string{
	ColBattlecry, ColDeathrattle, ColStealth, ColCharge, ColDiscover, ColRush, ColTaunt,
}

// GroupKind distinguishes rarity groups from mechanic groups.
type GroupKind string

const (
	KindRarity   GroupKind = "rarity"
	KindMechanic GroupKind = "mechanic"
)

// Group is a named set of cards whose inclusion counts are summed per deck.
type Group struct {
	Column  string
	Kind    GroupKind
	Members []string // sorted card names
}

// Definition selects the members of a group from the catalog.
type Definition struct {
	Column string
	Kind   GroupKind
	Match  func(catalog.Card) bool
}

func hasRarity(r catalog.Rarity) func(catalog.Card) bool {
	return func(c catalog.Card) bool { return c.Rarity == r }
}

func hasMechanic(tag string) func(catalog.Card) bool {
	return func(c catalog.Card) bool { return c.HasMechanic(tag) }
}

// DefaultDefinitions are the fixed groups of the dashboard. Common cards are
// not a group: their column is the deck size minus the other rarities.
var DefaultDefinitions = []Definition{
	{Column: ColRare, Kind: KindRarity, Match: hasRarity(catalog.RarityRare)},
	{Column: ColEpic, Kind: KindRarity, Match: hasRarity(catalog.RarityEpic)},
	{Column: ColLegendary, Kind: KindRarity, Match: hasRarity(catalog.RarityLegendary)},

	{Column: ColBattlecry, Kind: KindMechanic, Match: hasMechanic(catalog.MechanicBattlecry)},
	{Column: ColDeathrattle, Kind: KindMechanic, Match: hasMechanic(catalog.MechanicDeathrattle)},
	{Column: ColStealth, Kind: KindMechanic, Match: hasMechanic(catalog.MechanicStealth)},
	// Charge also covers cards that grant it, e.g. Warsong Commander.
	{Column: ColCharge, Kind: KindMechanic, Match: func(c catalog.Card) bool {
		return c.HasMechanic(catalog.MechanicCharge) || c.References(catalog.MechanicCharge)
	}},
	{Column: ColDiscover, Kind: KindMechanic, Match: hasMechanic(catalog.MechanicDiscover)},
	{Column: ColRush, Kind: KindMechanic, Match: hasMechanic(catalog.MechanicRush)},
	{Column: ColTaunt, Kind: KindMechanic, Match: hasMechanic(catalog.MechanicTaunt)},
}

// BuildGroups resolves group members among the catalog's eligible names.
// Members keep the sorted order of EligibleNames; a card can belong to several groups.
func BuildGroups(cat *catalog.Catalog, defs []Definition) []Group {
	if defs == nil {
		defs = DefaultDefinitions
	}

	groups := make([]Group, len(defs))
	for i, def := range defs {
		groups[i] = Group{Column: def.Column, Kind: def.Kind}
	}

	for _, name := range cat.EligibleNames() {
		card, ok := cat.Lookup(name)
		if !ok {
			continue
		}
		for i, def := range defs {
			if def.Match(card) {
				groups[i].Members = append(groups[i].Members, name)
			}
		}
	}
	return groups
}

// Find returns the group for a column.
func Find(groups []Group, column string) (Group, bool) {
	for _, g := range groups {
		if g.Column == column {
			return g, true
		}
	}
	return Group{}, false
}
