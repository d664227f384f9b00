package decks

import "time"

// DateLayout is the creation_date format of the deck table (MM/DD/YYYY, zero padding optional).
const DateLayout = "1/2/2006"

// Metadata column names of the deck table.
const (
	ColRegim         = "regim"
	ColRating        = "rating"
	ColClass         = "Class"
	ColCreationDate  = "creation_date"
	ColDeckType      = "deck_type"
	ColDeckArchetype = "deck_archetype"
	ColCode          = "code"
	ColMinionCount   = "minion_count"
	ColSpellCount    = "spell_count"
	ColWeaponCount   = "weapon_count"
	ColCraftCost     = "craft_cost"
)

// MetadataColumns lists every fixed column in header order.
var MetadataColumns = []string{
	ColRegim, ColRating, ColClass, ColCreationDate, ColDeckType, ColDeckArchetype,
	ColCode, ColMinionCount, ColSpellCount, ColWeaponCount, ColCraftCost,
}

// DefaultExcludedDeckTypes are non-competitive modes dropped during normalization.
var DefaultExcludedDeckTypes = []string{"Arena", "PvE Adventure"}

// Deck is the metadata of one submitted deck.
type Deck struct {
	Regim        string    `json:"regim"`
	Rating       string    `json:"rating"`
	Class        string    `json:"class"`
	CreationDate time.Time `json:"creation_date"`
	DeckType     string    `json:"deck_type"`
	Archetype    string    `json:"deck_archetype"`
	Code         string    `json:"code"`
	MinionCount  int       `json:"minion_count"`
	SpellCount   int       `json:"spell_count"`
	WeaponCount  int       `json:"weapon_count"`
	CraftCost    int       `json:"craft_cost"`

	// Line is the 1-based line of the row in the source file.
	Line int `json:"line"`
}

// cardCount is one non-zero card inclusion of a deck.
type cardCount struct {
	card  int32 // index into Table.cards
	count int32
}
