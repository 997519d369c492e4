package pattern

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// fixedUnits maps interval units with a constant duration. Months are handled
// separately because their length depends on the calendar.
var fixedUnits = map[string]time.Duration{
	"seconds": time.Second,
	"minutes": time.Minute,
	"hours":   time.Hour,
	"days":    24 * time.Hour,
	"weeks":   7 * 24 * time.Hour,
}

const unitMonths = "months"

// Interval repeats every N units, counted from the reference instant.
type Interval struct {
	count int
	unit  string
}

func parseInterval(segments []string) (Pattern, error) {
	count, err := strconv.Atoi(segments[0])
	if err != nil || count <= 0 {
		return nil, fmt.Errorf("interval count %q must be a positive integer", segments[0])
	}

	unit := strings.ToLower(segments[1])
	if _, ok := fixedUnits[unit]; !ok && unit != unitMonths {
		return nil, fmt.Errorf("unknown interval unit %q", segments[1])
	}

	return Interval{count: count, unit: unit}, nil
}

// Next returns now advanced by the interval. Month intervals use calendar
// arithmetic, clamping the day of month when the target month is shorter.
func (p Interval) Next(now time.Time) time.Time {
	now = now.UTC()
	if p.unit == unitMonths {
		return addMonths(now, p.count)
	}
	return now.Add(time.Duration(p.count) * fixedUnits[p.unit])
}

func (p Interval) Value() string {
	return fmt.Sprintf("%d.%s", p.count, p.unit)
}

// addMonths advances t by whole calendar months. Unlike time.AddDate, a day
// of month past the end of the target month clamps to the month's last day,
// so one month after Jan 31 is Feb 28 (or 29), not Mar 2.
func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	if last := daysIn(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
