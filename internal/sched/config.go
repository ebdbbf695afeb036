package sched

import (
	"time"

	"github.com/xstreamrt/xstreamrt/internal/pool"
)

// Defaults mirror ABTI_global_get_sched_event_freq /
// ABTI_global_get_sched_sleep_nsec: a scheduler with no explicit
// config runs housekeeping every 50 dispatch attempts and, when it has
// nothing to do, backs off for 100 microseconds.
const (
	DefaultEventFreq        uint32        = 50
	DefaultSleepTime        time.Duration = 100 * time.Microsecond
	DefaultSleepTimeEnabled               = true
)

// Config is the priority scheduler's private data (spec §3.3's `data`
// field): event_freq plus the optional back-off sleep_time. spec §6.4
// recognizes exactly one config key, event_freq; everything else is
// ignored rather than rejected, matching ABTI_sched_config_read's
// permissive behavior.
type Config struct {
	EventFreq uint32
	SleepTime time.Duration
	// SleepEnabled stands in for the original's
	// ABT_CONFIG_USE_SCHED_SLEEP compile-time switch, since Go has no
	// portable #ifdef (spec §12 supplement).
	SleepEnabled bool
}

// DefaultConfig returns the scheduler's defaults before any override
// is applied.
func DefaultConfig() Config {
	return Config{
		EventFreq:    DefaultEventFreq,
		SleepTime:    DefaultSleepTime,
		SleepEnabled: DefaultSleepTimeEnabled,
	}
}

// Option customizes a Scheduler at construction time.
type Option func(*Scheduler)

// WithEventFreq overrides the one config key spec §6.4 recognizes.
func WithEventFreq(freq uint32) Option {
	return func(s *Scheduler) { s.cfg.EventFreq = freq }
}

// WithSleepTime overrides the back-off duration used when a
// housekeeping pass finds no work.
func WithSleepTime(d time.Duration) Option {
	return func(s *Scheduler) { s.cfg.SleepTime = d }
}

// WithSleepDisabled turns off the back-off sleep entirely, the
// equivalent of building without ABT_CONFIG_USE_SCHED_SLEEP.
func WithSleepDisabled() Option {
	return func(s *Scheduler) { s.cfg.SleepEnabled = false }
}

// WithULT marks the scheduler to embed as a yielding thread when
// stacked via pool.AddSched, instead of the default task embedding.
func WithULT() Option {
	return func(s *Scheduler) { s.typ = pool.TypeULT }
}

// WithHasToStop installs the stop-check hook consulted at every
// housekeeping gate (spec §4.6 step 2). Without one, the loop never
// terminates on its own.
func WithHasToStop(f HasToStopFunc) Option {
	return func(s *Scheduler) { s.hasToStop = f }
}

// WithCheckEvents installs the periodic event-polling hook.
func WithCheckEvents(f CheckEventsFunc) Option {
	return func(s *Scheduler) { s.checkEvents = f }
}
