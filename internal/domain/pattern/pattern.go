// Package pattern implements the repetition-pattern algebra for task
// schedules. A pattern is an immutable value parsed from text; its Next method
// computes the next UTC instant strictly after a reference instant, and its
// Value method returns the canonical text form that round-trips through Parse.
//
// Three shapes are recognized, distinguished by the number of '.'-separated
// segments:
//
//	N.UNIT            interval, e.g. "5.seconds", "3.months"
//	WW.HH.MM.SS       weekday,  e.g. "monday|friday.22.00.00", "**.06.30.00"
//	MM.DD.HH.mm.ss    monthday, e.g. "1|7.15.12.00.00", "**.31.00.00.00"
package pattern

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Pattern produces the next UTC instant after a given reference instant.
// Implementations are immutable and Next is pure: calling it twice with the
// same reference yields the same instant.
type Pattern interface {
	// Next returns the next fire instant strictly after now, in UTC.
	Next(now time.Time) time.Time

	// Value returns the canonical textual form of the pattern.
	Value() string
}

// Wildcard matches any value in a weekday or monthday segment.
const Wildcard = "**"

// Parse parses a textual repetition pattern into its canonical form.
// The shape is chosen by segment count; three segments are ambiguous between
// the weekday and monthday forms and are rejected.
func Parse(value string) (Pattern, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, fmt.Errorf("pattern cannot be empty")
	}

	segments := strings.Split(trimmed, ".")
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}

	switch len(segments) {
	case 2:
		return parseInterval(segments)
	case 4:
		return parseWeekday(segments)
	case 5:
		return parseMonthday(segments)
	default:
		return nil, fmt.Errorf("pattern %q must have 2, 4 or 5 segments, got %d", value, len(segments))
	}
}

// parseBounded parses a required numeric segment and enforces inclusive bounds.
// Wildcards are not valid here; they only appear in list segments.
func parseBounded(segment, label string, minVal, maxVal int) (int, error) {
	n, err := strconv.Atoi(segment)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", label, segment)
	}
	if n < minVal || n > maxVal {
		return 0, fmt.Errorf("%s %d out of range [%d,%d]", label, n, minVal, maxVal)
	}
	return n, nil
}

// parseClock parses the trailing HH, MM, SS segments shared by the weekday and
// monthday forms.
func parseClock(segments []string) (hour, minute, second int, err error) {
	if hour, err = parseBounded(segments[0], "hours", 0, 23); err != nil {
		return 0, 0, 0, err
	}
	if minute, err = parseBounded(segments[1], "minutes", 0, 59); err != nil {
		return 0, 0, 0, err
	}
	if second, err = parseBounded(segments[2], "seconds", 0, 59); err != nil {
		return 0, 0, 0, err
	}
	return hour, minute, second, nil
}

// formatClock renders HH.MM.SS with zero padding, the canonical time form.
func formatClock(hour, minute, second int) string {
	return fmt.Sprintf("%02d.%02d.%02d", hour, minute, second)
}

// atClock returns the instant on now's UTC date at the given wall-clock time.
func atClock(now time.Time, hour, minute, second int) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, second, 0, time.UTC)
}
