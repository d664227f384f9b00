// Package events holds the calendar of in-game releases drawn as chart markers.
package events

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind classifies an in-game event.
type Kind string

const (
	KindAdventure Kind = "adventure"
	KindExpansion Kind = "expansion"
)

// Color returns the marker color of the kind.
func (k Kind) Color() string {
	switch k {
	case KindAdventure:
		return "rgba(0, 0, 255, 0.5)"
	case KindExpansion:
		return "rgba(255, 0, 0, 0.5)"
	default:
		return "rgba(128, 128, 128, 0.5)"
	}
}

// Event is a release that shifted the card pool.
type Event struct {
	Label string    `json:"label"`
	Date  time.Time `json:"date"`
	Kind  Kind      `json:"kind"`
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultCalendar lists the adventures and expansions of the dataset's period.
func DefaultCalendar() Calendar {
	return Calendar{
		{Label: "Curse of Naxxramas", Date: date(2014, time.July, 22), Kind: KindAdventure},
		{Label: "Goblins vs Gnomes", Date: date(2014, time.December, 8), Kind: KindExpansion},
		{Label: "Blackrock Mountain", Date: date(2015, time.April, 2), Kind: KindAdventure},
		{Label: "The Grand Tournament", Date: date(2015, time.August, 24), Kind: KindExpansion},
		{Label: "The League of Explorers", Date: date(2015, time.November, 12), Kind: KindAdventure},
		{Label: "Whispers of the Old Gods", Date: date(2016, time.May, 26), Kind: KindExpansion},
	}
}

// Calendar is a date-ordered list of events.
type Calendar []Event

// Before returns the events strictly before last. A zero last keeps nothing.
func (c Calendar) Before(last time.Time) Calendar {
	var kept Calendar
	for _, e := range c {
		if e.Date.Before(last) {
			kept = append(kept, e)
		}
	}
	return kept
}

// OfKind returns the events of one kind.
func (c Calendar) OfKind(kind Kind) Calendar {
	var kept Calendar
	for _, e := range c {
		if e.Kind == kind {
			kept = append(kept, e)
		}
	}
	return kept
}

// calendarFile is the YAML layout of a calendar file:
//
//	adventures:
//	  - name: Curse of Naxxramas
//	    date: 22/07/2014
//	expansions:
//	  - name: Goblins vs Gnomes
//	    date: 08/12/2014
type calendarFile struct {
	Adventures []eventEntry `yaml:"adventures"`
	Expansions []eventEntry `yaml:"expansions"`
}

type eventEntry struct {
	Name string `yaml:"name"`
	Date string `yaml:"date"`
}

// FileDateLayout is the DD/MM/YYYY layout used in calendar files.
const FileDateLayout = "02/01/2006"

// LoadCalendar reads a YAML calendar. An empty path returns the defaults.
func LoadCalendar(path string) (Calendar, error) {
	if path == "" {
		return DefaultCalendar(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event calendar: %w", err)
	}
	return ParseCalendar(data)
}

// ParseCalendar decodes a YAML calendar.
func ParseCalendar(data []byte) (Calendar, error) {
	var file calendarFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse event calendar: %w", err)
	}

	var cal Calendar
	add := func(entries []eventEntry, kind Kind) error {
		for _, e := range entries {
			if e.Name == "" {
				return fmt.Errorf("%s without a name", kind)
			}
			d, err := time.Parse(FileDateLayout, e.Date)
			if err != nil {
				return fmt.Errorf("%s %q: invalid date %q: %w", kind, e.Name, e.Date, err)
			}
			cal = append(cal, Event{Label: e.Name, Date: d, Kind: kind})
		}
		return nil
	}
	if err := add(file.Adventures, KindAdventure); err != nil {
		return nil, err
	}
	if err := add(file.Expansions, KindExpansion); err != nil {
		return nil, err
	}

	sort.SliceStable(cal, func(i, j int) bool { return cal[i].Date.Before(cal[j].Date) })
	return cal, nil
}
