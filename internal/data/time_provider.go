package data

import "time"

// TimeProvider is the clock the repo and scheduler read. Injecting it keeps
// due calculations and recorded timestamps deterministic in tests.
type TimeProvider interface {
	Now() time.Time
}

// SystemTimeProvider reads the system clock.
type SystemTimeProvider struct{}

func (SystemTimeProvider) Now() time.Time {
	return time.Now()
}

// FixedTimeProvider always reports the same instant.
type FixedTimeProvider struct {
	at time.Time
}

// NewFixedTimeProvider pins the clock to t.
func NewFixedTimeProvider(t time.Time) *FixedTimeProvider {
	return &FixedTimeProvider{at: t}
}

func (f *FixedTimeProvider) Now() time.Time {
	return f.at
}
