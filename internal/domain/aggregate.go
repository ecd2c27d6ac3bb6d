package domain

import (
	"sort"
	"strings"
	"unicode"
)

// StateCounts maps a state code to its number of sightings.
type StateCounts map[string]int

// StateCount is one entry of a sorted StateCounts.
type StateCount struct {
	State string `json:"state"`
	Count int    `json:"count"`
}

// Sorted returns the entries by count descending, then state ascending.
func (c StateCounts) Sorted() []StateCount {
	out := make([]StateCount, 0, len(c))
	for state, n := range c {
		out = append(out, StateCount{State: state, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].State < out[j].State
	})
	return out
}

// StateYear keys StateYearCounts.
type StateYear struct {
	State string `json:"state"`
	Year  int    `json:"year"`
}

// StateYearCounts maps (state, year) to a number of sightings.
type StateYearCounts map[StateYear]int

// StateYearCount is one entry of a sorted StateYearCounts.
type StateYearCount struct {
	StateYear
	Count int `json:"count"`
}

// Sorted returns the entries by year ascending, then state ascending, the
// frame order of an animated map.
func (c StateYearCounts) Sorted() []StateYearCount {
	out := make([]StateYearCount, 0, len(c))
	for k, n := range c {
		out = append(out, StateYearCount{StateYear: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].State < out[j].State
	})
	return out
}

// AggregateByState counts sightings per state. Sightings without a date count.
func AggregateByState(sightings []Sighting) StateCounts {
	out := make(StateCounts)
	for _, s := range sightings {
		out[s.State]++
	}
	return out
}

// AggregateByStateYear counts dated sightings per (state, year).
func AggregateByStateYear(sightings []Sighting) StateYearCounts {
	out := make(StateYearCounts)
	for _, s := range sightings {
		year, ok := s.Year()
		if !ok {
			continue
		}
		out[StateYear{State: s.State, Year: year}]++
	}
	return out
}

// Count is a value with its number of occurrences.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Counts is a frequency table keyed by value.
type Counts map[string]int

// Top returns the n most frequent values, ties in alphabetical order. n <= 0
// returns all of them.
func (c Counts) Top(n int) []Count {
	out := make([]Count, 0, len(c))
	for v, k := range c {
		out = append(out, Count{Value: v, Count: k})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// CountBy counts sightings by the value key returns.
func CountBy(sightings []Sighting, key func(Sighting) string) Counts {
	out := make(Counts)
	for _, s := range sightings {
		out[key(s)]++
	}
	return out
}

// AggregateByCity counts sightings per "City, ST".
func AggregateByCity(sightings []Sighting) Counts {
	return CountBy(sightings, func(s Sighting) string {
		return s.City + ", " + s.State
	})
}

// AggregateByShape counts sightings per shape.
func AggregateByShape(sightings []Sighting) Counts {
	return CountBy(sightings, func(s Sighting) string { return s.Shape })
}

// minTermLength drops short tokens such as "a" and "of" before the stop list.
const minTermLength = 3

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true, "this": true,
	"was": true, "were": true, "are": true, "but": true, "not": true, "from": true,
	"have": true, "had": true, "has": true, "then": true, "than": true, "there": true,
	"they": true, "them": true, "their": true, "what": true, "when": true, "which": true,
	"who": true, "into": true, "out": true, "our": true, "over": true, "very": true,
	"just": true, "like": true, "about": true, "after": true, "before": true, "while": true,
	"all": true, "any": true, "some": true, "one": true, "two": true, "saw": true,
	"seen": true, "see": true, "you": true, "your": true, "his": true, "her": true,
	"she": true, "him": true, "its": true, "also": true, "could": true, "would": true,
	"been": true, "being": true, "did": true, "does": true, "other": true, "only": true,
}

// SummaryTerms counts the words of every summary, lower-cased, keeping
// alphabetic tokens of at least three letters that are not stop words.
func SummaryTerms(sightings []Sighting) Counts {
	out := make(Counts)
	for _, s := range sightings {
		words := strings.FieldsFunc(strings.ToLower(s.Summary), func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		for _, w := range words {
			if len([]rune(w)) < minTermLength || stopWords[w] {
				continue
			}
			out[w]++
		}
	}
	return out
}
