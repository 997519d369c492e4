package util //nolint:revive // package name util hosts shared formatting helpers used across CLI output

import "time"

// FormatDuration formats an evaluation duration for display, truncating to
// milliseconds for readability. Sub-millisecond values keep full precision.
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d < time.Millisecond:
		return d.String()
	default:
		return d.Truncate(time.Millisecond).String()
	}
}

// FormatUntil renders the distance from now to due, rounded to the nearest
// second, e.g. "in 2h30m0s" or "overdue by 5s".
func FormatUntil(now, due time.Time) string {
	diff := due.Sub(now).Round(time.Second)
	if diff < 0 {
		return "overdue by " + (-diff).String()
	}
	return "in " + diff.String()
}
