// Package dates holds the date layout used for every date written into
// frontmatter, plus parsing helpers for CLI date arguments.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the YYYY-MM-DD layout of stamped dates.
const DateLayout = "2006-01-02"

var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// FormatDate formats t as a YYYY-MM-DD date in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// IsValidDate checks if a string is a valid YYYY-MM-DD date.
func IsValidDate(s string) bool {
	if !dateRegex.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !IsValidDate(s) {
		return time.Time{}, fmt.Errorf("invalid date: %q", s)
	}
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// ParseDateArg parses a CLI date argument which can be:
// - "today" or "yesterday"
// - "YYYY-MM-DD" format (absolute date)
// - Empty string defaults to now
func ParseDateArg(arg string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(arg) == "" {
		return now, nil
	}

	dateArg := strings.ToLower(strings.TrimSpace(arg))
	switch dateArg {
	case "today":
		return now, nil
	case "yesterday":
		return now.AddDate(0, 0, -1), nil
	default:
		parsed, err := ParseDate(dateArg)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date format '%s', use YYYY-MM-DD, today or yesterday", dateArg)
		}
		return parsed, nil
	}
}
