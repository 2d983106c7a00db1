package config

import (
	"os"
	"strconv"
	"time"
)

const (
	retentionHoursEnv       = "NOTIFICATION_RETENTION_HOURS"
	storageMaxAttemptsEnv   = "STORAGE_MAX_ATTEMPTS"
	storageBackoffBaseEnv   = "STORAGE_BACKOFF_BASE_MS"
	defaultSnoozeHoursEnv   = "DEFAULT_SNOOZE_HOURS"
	issueSourceRatePerSec   = "ISSUE_SOURCE_RATE_PER_SEC"
	issueSourceRateBurstEnv = "ISSUE_SOURCE_RATE_BURST"

	defaultRetentionHours     = 72
	defaultStorageMaxAttempts = 3
	defaultStorageBackoffBase = 100 * time.Millisecond
	defaultSnoozeHours        = 4
	defaultIssueSourceRate    = 10
	defaultIssueSourceBurst   = 20
)

type EngineConfig struct {
	// Retention is how long a non-terminal record may linger before the
	// expiry sweep moves it to Expired.
	Retention time.Duration
	// StorageMaxAttempts bounds persistence retries before surfacing a
	// storage error.
	StorageMaxAttempts int
	StorageBackoffBase time.Duration
	// DefaultSnooze is the re-schedule offset when a user snoozes.
	DefaultSnooze time.Duration

	IssueSourceRatePerSec int
	IssueSourceBurst      int
}

func LoadEngineConfig() *EngineConfig {
	cfg := &EngineConfig{
		Retention:             defaultRetentionHours * time.Hour,
		StorageMaxAttempts:    defaultStorageMaxAttempts,
		StorageBackoffBase:    defaultStorageBackoffBase,
		DefaultSnooze:         defaultSnoozeHours * time.Hour,
		IssueSourceRatePerSec: defaultIssueSourceRate,
		IssueSourceBurst:      defaultIssueSourceBurst,
	}

	if v := os.Getenv(retentionHoursEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.Retention = time.Duration(parsed) * time.Hour
		}
	}
	if v := os.Getenv(storageMaxAttemptsEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.StorageMaxAttempts = parsed
		}
	}
	if v := os.Getenv(storageBackoffBaseEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.StorageBackoffBase = time.Duration(parsed) * time.Millisecond
		}
	}
	if v := os.Getenv(defaultSnoozeHoursEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.DefaultSnooze = time.Duration(parsed) * time.Hour
		}
	}
	if v := os.Getenv(issueSourceRatePerSec); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.IssueSourceRatePerSec = parsed
		}
	}
	if v := os.Getenv(issueSourceRateBurstEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.IssueSourceBurst = parsed
		}
	}

	return cfg
}
