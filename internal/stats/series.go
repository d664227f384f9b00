package stats

import (
	"slices"
	"sort"
	"time"
)

// Point is one value of a daily series. Valid is false where the value
// is undefined, e.g. the first points of a rolling mean.
type Point struct {
	Date  time.Time `json:"date" csv:"date"`
	Value float64   `json:"value" csv:"value"`
	Valid bool      `json:"valid" csv:"valid"`
}

// Series is a named daily series.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Count is the frequency of one categorical value.
type Count struct {
	Label string `json:"label" csv:"label"`
	Count int    `json:"count" csv:"count"`
}

// Bin is one histogram bucket covering [Lo, Hi).
type Bin struct {
	Lo    float64 `json:"lo" csv:"lo"`
	Hi    float64 `json:"hi" csv:"hi"`
	Count int     `json:"count" csv:"count"`
}

// DayCount is the number of observations on one date.
type DayCount struct {
	Date  time.Time `json:"date" csv:"date"`
	Count int       `json:"count" csv:"count"`
}

// ValueCounts counts occurrences of each value, most frequent first.
// Ties are ordered by label.
func ValueCounts(values []string) []Count {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}

	result := make([]Count, 0, len(counts))
	for label, n := range counts {
		result = append(result, Count{Label: label, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Label < result[j].Label
	})
	return result
}

// Histogram buckets values into bins equal-width bins over [lo, hi].
// The last bin includes hi; values outside the range are ignored.
func Histogram(values []float64, bins int, lo, hi float64) []Bin {
	if bins <= 0 || hi <= lo {
		return nil
	}

	width := (hi - lo) / float64(bins)
	result := make([]Bin, bins)
	for i := range result {
		result[i].Lo = lo + float64(i)*width
		result[i].Hi = lo + float64(i+1)*width
	}
	result[bins-1].Hi = hi

	for _, v := range values {
		if v < lo || v > hi {
			continue
		}
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		result[idx].Count++
	}
	return result
}

// CountByDay counts observations per date, oldest first.
func CountByDay(dates []time.Time) []DayCount {
	counts := make(map[time.Time]int)
	for _, d := range dates {
		counts[d]++
	}

	result := make([]DayCount, 0, len(counts))
	for date, n := range counts {
		result = append(result, DayCount{Date: date, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result
}

// MeanByDay averages values per date, oldest first. dates and values are
// parallel slices; extra values are ignored.
func MeanByDay(dates []time.Time, values []float64) []Point {
	type acc struct {
		sum float64
		n   int
	}
	sums := make(map[time.Time]*acc)
	for i, d := range dates {
		if i >= len(values) {
			break
		}
		a, ok := sums[d]
		if !ok {
			a = &acc{}
			sums[d] = a
		}
		a.sum += values[i]
		a.n++
	}

	result := make([]Point, 0, len(sums))
	for date, a := range sums {
		result = append(result, Point{Date: date, Value: a.sum / float64(a.n), Valid: true})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result
}

// Rolling computes the mean over the last window points. A point is valid
// only when all window points are valid, so the first window-1 points are not.
func Rolling(points []Point, window int) []Point {
	if window <= 0 {
		return nil
	}

	result := make([]Point, len(points))
	var sum float64
	invalid := 0
	for i, p := range points {
		if p.Valid {
			sum += p.Value
		} else {
			invalid++
		}
		if i >= window {
			old := points[i-window]
			if old.Valid {
				sum -= old.Value
			} else {
				invalid--
			}
		}

		result[i] = Point{Date: p.Date}
		if i >= window-1 && invalid == 0 {
			result[i].Value = sum / float64(window)
			result[i].Valid = true
		}
	}
	return result
}

// Trim drops the first n points.
func Trim(points []Point, n int) []Point {
	if n <= 0 {
		return points
	}
	if n >= len(points) {
		return []Point{}
	}
	return slices.Clone(points[n:])
}

// ValidPoints returns only the defined points.
func ValidPoints(points []Point) []Point {
	result := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Valid {
			result = append(result, p)
		}
	}
	return result
}
