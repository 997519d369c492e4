package config

import "time"

// SchedulerConfig contains scheduler engine configuration.
type SchedulerConfig struct {
	// AutoStart controls whether the engine begins firing as soon as the daemon boots.
	// When false the engine stays stopped until an operator starts it.
	AutoStart bool `env:"AUTO_START" envDefault:"true"`

	// MinFireDelay is the lower bound on any armed timer. Slightly overdue rows
	// wake up after this delay instead of busy-looping, and a row only fires once
	// it is at least this far past its due time.
	MinFireDelay time.Duration `env:"MIN_FIRE_DELAY" envDefault:"250ms"`

	// MaxTimerSleep is the upper bound on any armed timer. Due dates farther away
	// sleep in increments of this duration and re-verify on wake.
	MaxTimerSleep time.Duration `env:"MAX_TIMER_SLEEP" envDefault:"1080h"` // 45 days

	// RetryInterval is how long the engine waits before re-arming after a storage
	// failure during a fire cycle.
	RetryInterval time.Duration `env:"RETRY_INTERVAL" envDefault:"5s"`

	// DefaultListLimit is the page size used when task listings do not specify one.
	DefaultListLimit int `env:"DEFAULT_LIST_LIMIT" envDefault:"10"`

	// MaxListLimit caps the page size of task listings.
	MaxListLimit int `env:"MAX_LIST_LIMIT" envDefault:"100"`
}

// DefaultSchedulerConfig returns a SchedulerConfig with sensible defaults.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		AutoStart:        true,
		MinFireDelay:     250 * time.Millisecond,
		MaxTimerSleep:    1080 * time.Hour,
		RetryInterval:    5 * time.Second,
		DefaultListLimit: 10,
		MaxListLimit:     100,
	}
}

// Sanitize applies guardrails to scheduler configuration values.
func (s *SchedulerConfig) Sanitize() {
	if s.MinFireDelay < 50*time.Millisecond {
		s.MinFireDelay = 50 * time.Millisecond
	}
	if s.MaxTimerSleep < time.Hour {
		s.MaxTimerSleep = time.Hour
	}
	if s.MaxTimerSleep <= s.MinFireDelay {
		s.MaxTimerSleep = s.MinFireDelay + time.Hour
	}
	if s.RetryInterval < time.Second {
		s.RetryInterval = time.Second
	}
	if s.DefaultListLimit < 1 {
		s.DefaultListLimit = 10
	}
	if s.MaxListLimit < s.DefaultListLimit {
		s.MaxListLimit = s.DefaultListLimit
	}
}
