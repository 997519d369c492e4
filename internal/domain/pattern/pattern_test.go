package pattern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRejectsMalformedPatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
	}{
		{name: "empty", value: ""},
		{name: "blank", value: "   "},
		{name: "one segment", value: "seconds"},
		{name: "three segments are ambiguous", value: "22.00.00"},
		{name: "six segments", value: "1.2.3.4.5.6"},
		{name: "wildcard interval count", value: "**.seconds"},
		{name: "zero interval count", value: "0.seconds"},
		{name: "negative interval count", value: "-5.minutes"},
		{name: "fractional interval count", value: "1.5.hours"},
		{name: "unknown interval unit", value: "5.fortnights"},
		{name: "unknown weekday", value: "someday.22.00.00"},
		{name: "numeric weekday", value: "1.22.00.00"},
		{name: "empty weekday list", value: ".22.00.00"},
		{name: "weekday hour out of range", value: "monday.24.00.00"},
		{name: "weekday minute out of range", value: "monday.22.60.00"},
		{name: "weekday second out of range", value: "monday.22.00.60"},
		{name: "wildcard hour", value: "monday.**.00.00"},
		{name: "month out of range", value: "13.01.00.00.00"},
		{name: "month zero", value: "0.01.00.00.00"},
		{name: "day out of range", value: "1.32.00.00.00"},
		{name: "day zero", value: "1.0.00.00.00"},
		{name: "empty day list", value: "**..00.00.00"},
		{name: "weekday name in month position", value: "saturday.01.00.00.00"},
		{name: "weekday name in day position", value: "1.saturday.00.00.00"},
		{name: "day never occurs in month", value: "2.30.00.00.00"},
		{name: "days never occur in months", value: "2|4.31.00.00.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(tt.value)
			require.Error(t, err)
		})
	}
}

func TestParseCanonicalValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "interval unchanged", value: "5.seconds", want: "5.seconds"},
		{name: "interval unit lowercased", value: "3.MONTHS", want: "3.months"},
		{name: "interval surrounding space", value: " 90 . minutes ", want: "90.minutes"},
		{name: "weekday names title cased", value: "saturday|SUNDAY.22.00.00", want: "Saturday|Sunday.22.00.00"},
		{name: "weekday input order kept", value: "friday|monday.05.00.00", want: "Friday|Monday.05.00.00"},
		{name: "weekday duplicates removed", value: "monday|monday.5.0.0", want: "Monday.05.00.00"},
		{name: "weekday wildcard with padded clock", value: "**.6.3.0", want: "**.06.03.00"},
		{name: "monthday wildcards kept", value: "**.**.23.59.59", want: "**.**.23.59.59"},
		{name: "monthday sets kept", value: "1|7.15.12.00.00", want: "1|7.15.12.00.00"},
		{name: "monthday leading zeros dropped", value: "01|07.15.12.0.0", want: "1|7.15.12.00.00"},
		{name: "monthday duplicates removed", value: "1|1.15|15.12.00.00", want: "1.15.12.00.00"},
		{name: "leap day", value: "2.29.00.00.00", want: "2.29.00.00.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := Parse(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Value())

			// Canonical values parse back to themselves.
			again, err := Parse(p.Value())
			require.NoError(t, err)
			assert.Equal(t, p.Value(), again.Value())
		})
	}
}

func TestIntervalNext(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		now   time.Time
		want  time.Time
	}{
		{
			name:  "seconds",
			value: "5.seconds",
			now:   now,
			want:  time.Date(2026, time.January, 15, 10, 0, 5, 0, time.UTC),
		},
		{
			name:  "minutes",
			value: "90.minutes",
			now:   now,
			want:  time.Date(2026, time.January, 15, 11, 30, 0, 0, time.UTC),
		},
		{
			name:  "hours",
			value: "36.hours",
			now:   now,
			want:  time.Date(2026, time.January, 16, 22, 0, 0, 0, time.UTC),
		},
		{
			name:  "days",
			value: "10.days",
			now:   now,
			want:  time.Date(2026, time.January, 25, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "weeks are seven days",
			value: "2.weeks",
			now:   now,
			want:  time.Date(2026, time.January, 29, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "months keep the day",
			value: "3.months",
			now:   now,
			want:  time.Date(2026, time.April, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "months clamp to shorter month",
			value: "1.months",
			now:   time.Date(2026, time.January, 31, 10, 0, 0, 0, time.UTC),
			want:  time.Date(2026, time.February, 28, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "months clamp to leap day",
			value: "1.months",
			now:   time.Date(2024, time.January, 31, 10, 0, 0, 0, time.UTC),
			want:  time.Date(2024, time.February, 29, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "months across year end",
			value: "2.months",
			now:   time.Date(2026, time.December, 31, 8, 30, 0, 0, time.UTC),
			want:  time.Date(2027, time.February, 28, 8, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := Parse(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Next(tt.now))
		})
	}
}

func TestIntervalNextIsPure(t *testing.T) {
	t.Parallel()

	p, err := Parse("5.seconds")
	require.NoError(t, err)

	now := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)
	first := p.Next(now)
	second := p.Next(now)
	assert.Equal(t, first, second)
	assert.Equal(t, now.Add(5*time.Second), first)
}

func TestWeekdayNext(t *testing.T) {
	t.Parallel()

	// 2026-01-15 is a Thursday.
	thursdayMorning := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		now   time.Time
		want  time.Time
	}{
		{
			name:  "later today when clock still ahead",
			value: "thursday.22.00.00",
			now:   thursdayMorning,
			want:  time.Date(2026, time.January, 15, 22, 0, 0, 0, time.UTC),
		},
		{
			name:  "next week when clock already passed",
			value: "thursday.09.00.00",
			now:   thursdayMorning,
			want:  time.Date(2026, time.January, 22, 9, 0, 0, 0, time.UTC),
		},
		{
			name:  "skips to first allowed day",
			value: "monday.22.00.00",
			now:   thursdayMorning,
			want:  time.Date(2026, time.January, 19, 22, 0, 0, 0, time.UTC),
		},
		{
			name:  "earliest of several allowed days",
			value: "sunday|saturday.22.00.00",
			now:   thursdayMorning,
			want:  time.Date(2026, time.January, 17, 22, 0, 0, 0, time.UTC),
		},
		{
			name:  "wildcard fires every day",
			value: "**.06.30.00",
			now:   thursdayMorning,
			want:  time.Date(2026, time.January, 16, 6, 30, 0, 0, time.UTC),
		},
		{
			name:  "exact match rolls to the next day",
			value: "**.10.00.00",
			now:   thursdayMorning,
			want:  time.Date(2026, time.January, 16, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "crosses month end",
			value: "sunday.01.00.00",
			now:   time.Date(2026, time.January, 31, 12, 0, 0, 0, time.UTC),
			want:  time.Date(2026, time.February, 1, 1, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := Parse(tt.value)
			require.NoError(t, err)

			got := p.Next(tt.now)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.After(tt.now))
		})
	}
}

func TestMonthdayNext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		now   time.Time
		want  time.Time
	}{
		{
			name:  "same day when clock ahead",
			value: "1|7.15.12.00.00",
			now:   time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC),
			want:  time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC),
		},
		{
			name:  "jumps to next allowed month",
			value: "1|7.15.12.00.00",
			now:   time.Date(2026, time.January, 16, 10, 0, 0, 0, time.UTC),
			want:  time.Date(2026, time.July, 15, 12, 0, 0, 0, time.UTC),
		},
		{
			name:  "thirtyfirst skips short months",
			value: "**.31.00.00.00",
			now:   time.Date(2026, time.April, 10, 10, 0, 0, 0, time.UTC),
			want:  time.Date(2026, time.May, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "thirtyfirst skips february",
			value: "**.31.00.00.00",
			now:   time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "leap day waits for a leap year",
			value: "2.29.00.00.00",
			now:   time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2028, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "wildcard day fires daily",
			value: "**.**.23.59.59",
			now:   time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC),
			want:  time.Date(2026, time.January, 15, 23, 59, 59, 0, time.UTC),
		},
		{
			name:  "first of month across year end",
			value: "**.1.00.00.00",
			now:   time.Date(2026, time.December, 15, 10, 0, 0, 0, time.UTC),
			want:  time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := Parse(tt.value)
			require.NoError(t, err)

			got := p.Next(tt.now)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.After(tt.now))
		})
	}
}

func TestMonthdayDailyWildcardStaysWithinADay(t *testing.T) {
	t.Parallel()

	p, err := Parse("**.**.23.59.59")
	require.NoError(t, err)

	now := time.Date(2026, time.June, 3, 23, 59, 59, 0, time.UTC)
	got := p.Next(now)
	assert.True(t, got.After(now))
	assert.LessOrEqual(t, got.Sub(now), 24*time.Hour)
}
