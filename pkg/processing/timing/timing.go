package timing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The provider serializes durations as day-qualified clock values,
// e.g. "0 days 01:54:21.964000" or "0 days 00:00:10.933000".
var durationPattern = regexp.MustCompile(
	`^(-?)(\d+) days? (\d+):(\d{2}):(\d{2})(?:\.(\d{1,9}))?$`)

// Seconds converts a day-qualified clock duration into elapsed seconds.
// Malformed input is a parse failure; the caller owns fallback behavior.
func Seconds(raw string) (float64, error) {
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, fmt.Errorf("malformed duration %q", raw)
	}
	days, _ := strconv.Atoi(m[2])
	hours, _ := strconv.Atoi(m[3])
	minutes, _ := strconv.Atoi(m[4])
	secs, _ := strconv.Atoi(m[5])
	if minutes > 59 || secs > 59 {
		return 0, fmt.Errorf("malformed duration %q", raw)
	}
	total := float64(days*86400 + hours*3600 + minutes*60 + secs)
	if m[6] != "" {
		// pad to nanoseconds for exact sub-second conversion
		frac, _ := strconv.Atoi(m[6] + strings.Repeat("0", 9-len(m[6])))
		total += float64(frac) / 1e9
	}
	if m[1] == "-" {
		total = -total
	}
	return total, nil
}

// SecondsOr converts like Seconds but replaces a missing (empty) value with
// the supplied fill. The same policy serves two semantics: 0 for "did not
// occur" (lap/sector/pit times) and a large sentinel for "did not finish"
// (race gap).
func SecondsOr(raw string, fill float64) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return fill, nil
	}
	return Seconds(raw)
}

// SecondsOpt converts like Seconds but lets a missing value pass through as
// nil. Used for absolute session-clock columns where no fill applies.
func SecondsOpt(raw string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := Seconds(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
