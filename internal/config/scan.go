package config

import (
	"os"
	"strconv"
)

const (
	scanStaleCronEnv    = "SCAN_STALE_CRON"
	scanDeadlineCronEnv = "SCAN_DEADLINE_CRON"
	scanExpiryCronEnv   = "SCAN_EXPIRY_CRON"
	scanParallelismEnv  = "SCAN_PARALLELISM"
	scanDisabledEnv     = "SCAN_DISABLED"

	defaultStaleCron    = "0 * * * *"    // hourly
	defaultDeadlineCron = "*/30 * * * *" // every 30 minutes
	defaultExpiryCron   = "15 * * * *"   // hourly, offset from the stale scan
	defaultParallelism  = 4
)

type ScanConfig struct {
	StaleCron    string
	DeadlineCron string
	ExpiryCron   string
	// Parallelism bounds how many users are scanned concurrently, so a
	// scan burst cannot overload the issue source or Redis.
	Parallelism int
	Disabled    bool
}

func LoadScanConfig() *ScanConfig {
	cfg := &ScanConfig{
		StaleCron:    defaultStaleCron,
		DeadlineCron: defaultDeadlineCron,
		ExpiryCron:   defaultExpiryCron,
		Parallelism:  defaultParallelism,
		Disabled:     os.Getenv(scanDisabledEnv) == "true",
	}

	if v := os.Getenv(scanStaleCronEnv); v != "" {
		cfg.StaleCron = v
	}
	if v := os.Getenv(scanDeadlineCronEnv); v != "" {
		cfg.DeadlineCron = v
	}
	if v := os.Getenv(scanExpiryCronEnv); v != "" {
		cfg.ExpiryCron = v
	}
	if v := os.Getenv(scanParallelismEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.Parallelism = parsed
		}
	}

	return cfg
}
