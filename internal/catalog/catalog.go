package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// DefaultReservedNameParts mark card variants that cannot be put into a deck.
var DefaultReservedNameParts = []string{"Rank 2", "Rank 3"}

// Catalog is an indexed, read-only view of the card catalog.
type Catalog struct {
	cards    map[string]Card
	names    []string // sorted, unique
	eligible []string // sorted, unique, reserved variants removed
	dups     int      // entries collapsed into an earlier one of the same name
	unnamed  int      // entries skipped for having no name
}

// Load reads a catalog JSON file.
func Load(path string, reserved []string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = file.Close() }()

	c, err := Parse(file, reserved)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a JSON array of card objects.
// Duplicate names collapse to the first occurrence in the input.
func Parse(r io.Reader, reserved []string) (*Catalog, error) {
	var entries []Card
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode cards: %w", err)
	}
	return New(entries, reserved), nil
}

// New indexes cards by name. Entries without a name are ignored.
func New(entries []Card, reserved []string) *Catalog {
	if reserved == nil {
		reserved = DefaultReservedNameParts
	}

	c := &Catalog{
		cards: make(map[string]Card, len(entries)),
	}
	for _, card := range entries {
		if card.Name == "" {
			c.unnamed++
			continue
		}
		if _, exists := c.cards[card.Name]; exists {
			c.dups++
			continue
		}
		c.cards[card.Name] = card
		c.names = append(c.names, card.Name)
	}
	slices.Sort(c.names)

	c.eligible = make([]string, 0, len(c.names))
	for _, name := range c.names {
		if !isReserved(name, reserved) {
			c.eligible = append(c.eligible, name)
		}
	}

	return c
}

func isReserved(name string, reserved []string) bool {
	for _, part := range reserved {
		if part != "" && strings.Contains(name, part) {
			return true
		}
	}
	return false
}

// Lookup returns the card with the given name.
func (c *Catalog) Lookup(name string) (Card, bool) {
	card, ok := c.cards[name]
	return card, ok
}

// IsEligible reports whether name is a deck-eligible card.
func (c *Catalog) IsEligible(name string) bool {
	_, found := slices.BinarySearch(c.eligible, name)
	return found
}

// EligibleNames returns the sorted deck-eligible card names.
func (c *Catalog) EligibleNames() []string {
	return slices.Clone(c.eligible)
}

// Names returns every unique card name, reserved variants included.
func (c *Catalog) Names() []string {
	return slices.Clone(c.names)
}

// OwningClass returns the display-cased class of the named card, or "" if unknown.
func (c *Catalog) OwningClass(name string) string {
	card, ok := c.cards[name]
	if !ok {
		return ""
	}
	return card.Class()
}

// Len returns the number of unique cards.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// Duplicates returns how many source entries repeated an earlier name.
func (c *Catalog) Duplicates() int {
	return c.dups
}

// Unnamed returns how many source entries had no name.
func (c *Catalog) Unnamed() int {
	return c.unnamed
}
