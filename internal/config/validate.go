package config

import (
	"errors"
	"fmt"
)

var (
	ErrConfigMissing          = errors.New("configuration is nil")
	ErrScanParallelismInvalid = errors.New("scan parallelism must be positive")
)

// ValidateForRun checks everything the server needs before binding the
// listener.
func ValidateForRun(cfg *Config) error {
	if cfg == nil {
		return ErrConfigMissing
	}
	if err := cfg.Redis.Validate(); err != nil {
		return err
	}
	if cfg.Scan != nil && cfg.Scan.Parallelism <= 0 {
		return ErrScanParallelismInvalid
	}
	return nil
}

// Validate checks dispatch settings for internal consistency. A fully
// unset dispatch config is valid: dispatch is then disabled and records
// stay Scheduled until an external trigger confirms delivery.
func (c DispatchConfig) Validate() error {
	gcloudSet := c.GCloudProjectID != "" || c.GCloudLocationID != "" || c.GCloudQueueID != ""
	gcloudComplete := c.GCloudProjectID != "" && c.GCloudLocationID != "" && c.GCloudQueueID != ""
	if gcloudSet && !gcloudComplete {
		return fmt.Errorf("incomplete gcloud dispatch config: project=%q location=%q queue=%q",
			c.GCloudProjectID, c.GCloudLocationID, c.GCloudQueueID)
	}
	if gcloudComplete && c.DeliveryHookURL == "" {
		return errors.New("DELIVERY_HOOK_URL is required when gcloud dispatch is configured")
	}
	return nil
}
