package etl

import (
	"os"
	"strings"
	"time"
)

// Config controls which scheduler jobs run and how long the cross-process
// job lock is held. Interval, timeout, and batch sizes come from the
// pipeline config file.
type Config struct {
	EnabledJobs []string
	LockTTL     time.Duration
}

func DefaultConfig() Config {
	return Config{
		LockTTL: 5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	return c
}

// ProvideConfig reads the job allowlist from ETL_JOBS (comma separated).
// Empty means every job runs, which is what a single-binary install wants.
func ProvideConfig() Config {
	cfg := DefaultConfig()
	if raw := strings.TrimSpace(os.Getenv("ETL_JOBS")); raw != "" {
		for _, job := range strings.Split(raw, ",") {
			if job = strings.TrimSpace(job); job != "" {
				cfg.EnabledJobs = append(cfg.EnabledJobs, job)
			}
		}
	}
	if raw := strings.TrimSpace(os.Getenv("ETL_LOCK_TTL")); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.LockTTL = d
		}
	}
	return cfg
}
