package scheduler

import "time"

// Config controls scheduler intervals and sync windows.
type Config struct {
	RunInterval  time.Duration
	SyncTimeout  time.Duration
	SyncDaysBack int
	EnabledJobs  []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval:  time.Hour,
		SyncTimeout:  10 * time.Minute,
		SyncDaysBack: 7,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.SyncTimeout <= 0 {
		c.SyncTimeout = defaults.SyncTimeout
	}
	if c.SyncDaysBack <= 0 {
		c.SyncDaysBack = defaults.SyncDaysBack
	}
	return c
}
