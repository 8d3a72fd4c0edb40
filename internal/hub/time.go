package hub

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// QUERY TIME HANDLING
// Providers expect full UTC timestamps; users hand us anything from compact
// dates to relative expressions. Everything funnels through here.
// =============================================================================

// QueryTimeFormat is the timestamp form the provider APIs accept.
const QueryTimeFormat = "2006-01-02T15:04:05Z"

// queryTimeLayouts are tried in order when normalizing user input.
var queryTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"20060102",
}

var nowExprPattern = regexp.MustCompile(`^NOW(?:-(\d+)(MINUTE|HOUR|DAY|MONTH)S?)?$`)

// FormatTime renders t in the form provider query parameters accept.
func FormatTime(t time.Time) string {
	return t.UTC().Format(QueryTimeFormat)
}

// NormalizeQueryTime converts user-supplied time input into a form the
// provider APIs accept. Relative expressions ("NOW", "NOW-30DAYS") pass
// through untouched since the server interprets them.
func NormalizeQueryTime(value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("empty query time")
	}
	if nowExprPattern.MatchString(v) {
		return v, nil
	}
	for _, layout := range queryTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return FormatTime(t), nil
		}
	}
	return "", fmt.Errorf("unrecognized query time %q", value)
}

// ResolveQueryTime converts user-supplied time input into a concrete instant,
// evaluating relative expressions against now. Used where filtering happens
// locally instead of on the provider.
func ResolveQueryTime(value string, now time.Time) (time.Time, error) {
	v := strings.TrimSpace(value)
	if m := nowExprPattern.FindStringSubmatch(v); m != nil {
		if m[1] == "" {
			return now.UTC(), nil
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("parse relative time %q: %w", value, err)
		}
		switch m[2] {
		case "MINUTE":
			return now.UTC().Add(-time.Duration(n) * time.Minute), nil
		case "HOUR":
			return now.UTC().Add(-time.Duration(n) * time.Hour), nil
		case "DAY":
			return now.UTC().AddDate(0, 0, -n), nil
		case "MONTH":
			return now.UTC().AddDate(0, -n, 0), nil
		}
	}
	for _, layout := range queryTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized query time %q", value)
}
