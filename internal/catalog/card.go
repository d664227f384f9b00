package catalog

import (
	"slices"
	"strings"
)

// Rarity is the rarity tier of a card.
type Rarity string

const (
	RarityFree      Rarity = "FREE"
	RarityCommon    Rarity = "COMMON"
	RarityRare      Rarity = "RARE"
	RarityEpic      Rarity = "EPIC"
	RarityLegendary Rarity = "LEGENDARY"
)

// Well-known mechanic tags.
const (
	MechanicBattlecry   = "BATTLECRY"
	MechanicDeathrattle = "DEATHRATTLE"
	MechanicCharge      = "CHARGE"
	MechanicDiscover    = "DISCOVER"
	MechanicRush        = "RUSH"
	MechanicTaunt       = "TAUNT"
	MechanicStealth     = "STEALTH"
)

// Card is one catalog entry. Cards are immutable once loaded.
type Card struct {
	Name           string   `json:"name"`
	Rarity         Rarity   `json:"rarity"`
	Mechanics      []string `json:"mechanics"`      // nil when the card has none
	ReferencedTags []string `json:"referencedTags"` // nil when the card has none
	CardClass      string   `json:"cardClass"`      // e.g. "MAGE", "NEUTRAL"
}

// HasMechanic reports whether the card carries the given mechanic tag.
func (c Card) HasMechanic(tag string) bool {
	return slices.Contains(c.Mechanics, tag)
}

// References reports whether the card text references the given tag.
func (c Card) References(tag string) bool {
	return slices.Contains(c.ReferencedTags, tag)
}

// Class returns the owning class in display case ("MAGE" -> "Mage").
func (c Card) Class() string {
	return DisplayClass(c.CardClass)
}

// DisplayClass capitalizes the first letter and lowercases the rest.
func DisplayClass(class string) string {
	if class == "" {
		return ""
	}
	lower := strings.ToLower(class)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
