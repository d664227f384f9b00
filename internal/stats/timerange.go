package stats

import (
	"fmt"
	"time"
)

// DateLayout is the layout of range bounds in query strings.
const DateLayout = "2006-01-02"

// TimeRange represents a start and end time period. End is exclusive;
// a zero bound leaves that side open.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// ParseRange parses optional YYYY-MM-DD bounds. The end date is inclusive
// in the input and stored as the following midnight.
func ParseRange(from, to string) (TimeRange, error) {
	var tr TimeRange
	if from != "" {
		start, err := time.Parse(DateLayout, from)
		if err != nil {
			return TimeRange{}, fmt.Errorf("invalid start date %q: %w", from, err)
		}
		tr.Start = start
	}
	if to != "" {
		end, err := time.Parse(DateLayout, to)
		if err != nil {
			return TimeRange{}, fmt.Errorf("invalid end date %q: %w", to, err)
		}
		tr.End = end.AddDate(0, 0, 1)
	}
	if !tr.Start.IsZero() && !tr.End.IsZero() && !tr.Start.Before(tr.End) {
		return TimeRange{}, fmt.Errorf("start date %s is after end date %s", from, to)
	}
	return tr, nil
}

// IsZero reports whether both bounds are open.
func (tr TimeRange) IsZero() bool {
	return tr.Start.IsZero() && tr.End.IsZero()
}

// Contains reports whether t falls inside the range.
func (tr TimeRange) Contains(t time.Time) bool {
	if !tr.Start.IsZero() && t.Before(tr.Start) {
		return false
	}
	if !tr.End.IsZero() && !t.Before(tr.End) {
		return false
	}
	return true
}

// Clip keeps the points inside the range.
func (tr TimeRange) Clip(points []Point) []Point {
	if tr.IsZero() {
		return points
	}
	result := make([]Point, 0, len(points))
	for _, p := range points {
		if tr.Contains(p.Date) {
			result = append(result, p)
		}
	}
	return result
}

// FormatPeriod returns a human-readable description of the time period.
func (tr TimeRange) FormatPeriod() string {
	start := "start"
	if !tr.Start.IsZero() {
		start = tr.Start.Format(DateLayout)
	}
	end := "end"
	if !tr.End.IsZero() {
		end = tr.End.AddDate(0, 0, -1).Format(DateLayout) // End is exclusive, so subtract 1 day for display
	}
	return fmt.Sprintf("%s to %s", start, end)
}
