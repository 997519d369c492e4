package pattern

import (
	"fmt"
	"strings"
	"time"
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Weekday fires at a fixed UTC wall-clock time on an allowed set of weekdays.
// An empty day set means every day.
type Weekday struct {
	days   []time.Weekday
	hour   int
	minute int
	second int
}

func parseWeekday(segments []string) (Pattern, error) {
	hour, minute, second, err := parseClock(segments[1:])
	if err != nil {
		return nil, err
	}

	p := Weekday{hour: hour, minute: minute, second: second}
	if segments[0] == Wildcard {
		return p, nil
	}

	// Day names are matched case-insensitively; the parsed pattern keeps the
	// input order with duplicates removed.
	seen := make(map[time.Weekday]bool)
	for _, name := range strings.Split(segments[0], "|") {
		day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		if seen[day] {
			continue
		}
		seen[day] = true
		p.days = append(p.days, day)
	}
	return p, nil
}

// Next walks forward one day at a time from now's UTC date at the pattern's
// clock time until the instant is in the future and falls on an allowed day.
func (p Weekday) Next(now time.Time) time.Time {
	now = now.UTC()
	candidate := atClock(now, p.hour, p.minute, p.second)
	for !candidate.After(now) || !p.allows(candidate.Weekday()) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

func (p Weekday) allows(day time.Weekday) bool {
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

func (p Weekday) Value() string {
	days := Wildcard
	if len(p.days) > 0 {
		names := make([]string, len(p.days))
		for i, d := range p.days {
			names[i] = d.String()
		}
		days = strings.Join(names, "|")
	}
	return days + "." + formatClock(p.hour, p.minute, p.second)
}
