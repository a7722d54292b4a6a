package normalize

import (
	"regexp"
	"strings"
	"time"
)

var (
	dateOnlyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockPattern    = regexp.MustCompile(`^\d{2}:\d{2}`)
)

// timestamp layouts accepted from the backend, most specific first
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	time.RFC1123,
	time.RFC1123Z,
}

// LocalDate formats t as YYYY-MM-DD in its own location
func LocalDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Today returns the local calendar date, not the UTC one
func Today(now time.Time) string {
	return LocalDate(now.Local())
}

// ParseTimestamp parses the timestamp shapes the backend is known to emit
func ParseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DisplayDate renders a date cell. YYYY-MM-DD passes through, timestamps become the
// calendar date in loc, anything else is cut to its first 10 characters.
func DisplayDate(raw string, loc *time.Location) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Placeholder
	}
	if dateOnlyPattern.MatchString(s) {
		return s
	}
	if t, ok := ParseTimestamp(s); ok {
		if loc == nil {
			loc = time.Local
		}
		return LocalDate(t.In(loc))
	}
	return truncate(s, 10)
}

// DisplayDateTime renders a timestamp as "YYYY-MM-DD HH:MM" in loc, or the raw value
func DisplayDateTime(raw string, loc *time.Location) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Placeholder
	}
	t, ok := ParseTimestamp(s)
	if !ok {
		return s
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02 15:04")
}

// ClockHM truncates a clock value such as "09:00:00" to "09:00"
func ClockHM(raw string) string {
	s := strings.TrimSpace(raw)
	if clockPattern.MatchString(s) {
		return s[:5]
	}
	return truncate(s, 5)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
