package config

import (
	"os"
	"strconv"
)

type Config struct {
	IssueTrackerURL string
	Port            string
	Dispatch        DispatchConfig
	Redis           *RedisConfig
	Engine          *EngineConfig
	Scan            *ScanConfig
}

type DispatchConfig struct {
	PrimindTasksURL string
	QueueName       string
	DeliveryHookURL string

	GCloudProjectID  string
	GCloudLocationID string
	GCloudQueueID    string

	MaxRetries int
}

func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	queueName := os.Getenv("DISPATCH_QUEUE_NAME")
	if queueName == "" {
		queueName = "default"
	}

	maxRetries := 3
	if v := os.Getenv("DISPATCH_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			maxRetries = parsed
		}
	}

	redisConfig, err := LoadRedisConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		IssueTrackerURL: os.Getenv("ISSUE_TRACKER_URL"),
		Port:            port,
		Dispatch: DispatchConfig{
			PrimindTasksURL: os.Getenv("PRIMIND_TASKS_URL"),
			QueueName:       queueName,
			DeliveryHookURL: os.Getenv("DELIVERY_HOOK_URL"),

			GCloudProjectID:  os.Getenv("GCLOUD_PROJECT_ID"),
			GCloudLocationID: os.Getenv("GCLOUD_LOCATION_ID"),
			GCloudQueueID:    os.Getenv("GCLOUD_QUEUE_ID"),

			MaxRetries: maxRetries,
		},
		Redis:  redisConfig,
		Engine: LoadEngineConfig(),
		Scan:   LoadScanConfig(),
	}, nil
}
