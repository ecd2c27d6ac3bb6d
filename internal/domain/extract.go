package domain

import (
	"regexp"
	"strings"
	"time"
)

// occurredRe matches the occurrence fragment at the start of a stats block,
// e.g. "Occurred : 7/4/2015 21:00 ..." -> "7/4/2015".
var occurredRe = regexp.MustCompile(`^Occurred : ([0-9]{1,2}/[0-9]{1,2}/[0-9]{4})`)

// occurredLayout parses the extracted fragment; Go's "1" and "2" accept one or
// two digits.
const occurredLayout = "1/2/2006"

// extractOccurred returns the M/D/YYYY fragment of a stats block.
func extractOccurred(stats string) (string, bool) {
	m := occurredRe.FindStringSubmatch(stats)
	if len(m) != 2 {
		return "", false
	}
	return m[1], true
}

// parseOccurred parses an extracted fragment or an already-cleaned ISO date.
// Impossible dates such as 2/30/2015 fail.
func parseOccurred(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{occurredLayout, DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseStatsDate extracts and parses the occurrence date of a stats block.
func ParseStatsDate(stats string) (time.Time, bool) {
	frag, ok := extractOccurred(stats)
	if !ok {
		return time.Time{}, false
	}
	return parseOccurred(frag)
}
