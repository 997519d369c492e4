package pattern

import (
	"fmt"
	"strings"
	"time"
)

// Monthday fires at a fixed UTC wall-clock time when both the month and the
// day of month are in their allowed sets. Empty sets mean any month or any
// day. Days that never occur in a month, such as the 31st in April, simply do
// not match in that month.
type Monthday struct {
	months []int
	days   []int
	hour   int
	minute int
	second int
}

func parseMonthday(segments []string) (Pattern, error) {
	months, err := parseSet(segments[0], "month", 1, 12)
	if err != nil {
		return nil, err
	}
	days, err := parseSet(segments[1], "day of month", 1, 31)
	if err != nil {
		return nil, err
	}
	hour, minute, second, err := parseClock(segments[2:])
	if err != nil {
		return nil, err
	}

	p := Monthday{months: months, days: days, hour: hour, minute: minute, second: second}
	if !p.satisfiable() {
		return nil, fmt.Errorf("days %s never occur in months %s", segments[1], segments[0])
	}
	return p, nil
}

// parseSet parses a `|`-separated list of bounded integers, or the wildcard,
// which yields a nil (match-anything) set. Input order is kept, duplicates
// are removed.
func parseSet(segment, label string, minVal, maxVal int) ([]int, error) {
	if segment == Wildcard {
		return nil, nil
	}
	var values []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(segment, "|") {
		n, err := parseBounded(strings.TrimSpace(part), label, minVal, maxVal)
		if err != nil {
			return nil, err
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		values = append(values, n)
	}
	return values, nil
}

// satisfiable reports whether at least one allowed day can ever occur in at
// least one allowed month, counting leap years for February.
func (p Monthday) satisfiable() bool {
	if len(p.days) == 0 {
		return true
	}
	for m := 1; m <= 12; m++ {
		if !p.allowsMonth(time.Month(m)) {
			continue
		}
		for _, d := range p.days {
			if d <= maxDaysEver(time.Month(m)) {
				return true
			}
		}
	}
	return false
}

// maxDaysEver returns the largest day of month the given month can have in
// any year, so February counts 29.
func maxDaysEver(month time.Month) int {
	switch month {
	case time.February:
		return 29
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// A satisfiable month/day pattern recurs within eight years; February 29th is
// the rarest match around non-leap century years.
const monthdayWalkLimit = 9 * 366

// Next walks forward one day at a time from now's UTC date at the pattern's
// clock time until the instant is in the future, its month is allowed and its
// day of month is allowed. Returns the zero time if the walk limit is hit.
func (p Monthday) Next(now time.Time) time.Time {
	now = now.UTC()
	candidate := atClock(now, p.hour, p.minute, p.second)
	for steps := 0; steps < monthdayWalkLimit; steps++ {
		if candidate.After(now) && p.allowsMonth(candidate.Month()) && p.allowsDay(candidate.Day()) {
			return candidate
		}
		candidate = candidate.AddDate(0, 0, 1)
	}
	return time.Time{}
}

func (p Monthday) allowsMonth(month time.Month) bool {
	if len(p.months) == 0 {
		return true
	}
	for _, m := range p.months {
		if time.Month(m) == month {
			return true
		}
	}
	return false
}

func (p Monthday) allowsDay(day int) bool {
	if len(p.days) == 0 {
		return true
	}
	for _, d := range p.days {
		if d == day {
			return true
		}
	}
	return false
}

func (p Monthday) Value() string {
	return formatSet(p.months) + "." + formatSet(p.days) + "." + formatClock(p.hour, p.minute, p.second)
}

func formatSet(values []int) string {
	if len(values) == 0 {
		return Wildcard
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, "|")
}
