package internal

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/dustin/go-humanize"
)

// ParseServerTime parses a server timestamp. SQLite's CURRENT_TIMESTAMP
// ("2006-01-02 15:04:05") carries no zone and is read as UTC.
// Unparseable input yields the zero time.
func ParseServerTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		LogDebug("Unparseable server timestamp %q: %v", s, err)
		return time.Time{}
	}
	return t
}

// FormatRelative renders t for a session list: "Just now", "5 minutes ago",
// "3 hours ago" within the last day, then a calendar form.
func FormatRelative(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < 24*time.Hour:
		return humanize.RelTime(t, now, "ago", "from now")
	case diff < 7*24*time.Hour:
		return t.Local().Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Local().Format("Jan 02 15:04")
	default:
		return t.Local().Format("2006-01-02")
	}
}
