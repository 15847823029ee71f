package seeder

import (
	"regexp"
	"strconv"
)

var iso8601Duration = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISO8601Duration converts a compact ISO 8601 duration ("PT1H2M3S")
// into seconds. Missing components count as zero and malformed input
// yields zero, never an error.
func ParseISO8601Duration(iso string) int {
	m := iso8601Duration.FindStringSubmatch(iso)
	if m == nil {
		return 0
	}

	return number(m[1])*3600 + number(m[2])*60 + number(m[3])
}

func number(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}

	return n
}
