//go:build gcloud

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/KasumiMercury/primind-nudge-engine/internal/config"
	"github.com/KasumiMercury/primind-nudge-engine/internal/infra/dispatch"
	"github.com/KasumiMercury/primind-nudge-engine/internal/observability"
	"github.com/KasumiMercury/primind-nudge-engine/internal/observability/logging"
)

func initDispatchQueue(ctx context.Context, cfg *config.Config) (dispatch.Queue, func() error, error) {
	cloudTasksClient, err := dispatch.NewCloudTasksClient(ctx, dispatch.CloudTasksConfig{
		ProjectID:  cfg.Dispatch.GCloudProjectID,
		LocationID: cfg.Dispatch.GCloudLocationID,
		QueueID:    cfg.Dispatch.GCloudQueueID,
		TargetURL:  cfg.Dispatch.DeliveryHookURL,
		MaxRetries: cfg.Dispatch.MaxRetries,
	})
	if err != nil {
		return nil, nil, err
	}

	slog.Info("dispatch queue initialized",
		slog.String("type", "cloud_tasks"),
		slog.String("project", cfg.Dispatch.GCloudProjectID),
		slog.String("location", cfg.Dispatch.GCloudLocationID),
		slog.String("queue", cfg.Dispatch.GCloudQueueID),
	)

	cleanup := func() error {
		if err := cloudTasksClient.Close(); err != nil {
			slog.Warn("failed to close cloud tasks client", slog.String("error", err.Error()))

			return err
		}

		return nil
	}

	return cloudTasksClient, cleanup, nil
}

func initObservability(ctx context.Context) (*observability.Resources, error) {
	serviceName := os.Getenv("K_SERVICE")
	if serviceName == "" {
		serviceName = "nudge-engine"
	}

	env := logging.EnvProd
	if e := os.Getenv("ENV"); e != "" {
		env = logging.Environment(e)
	}

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		projectID = os.Getenv("GCLOUD_PROJECT_ID")
	}

	obs, err := observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:     serviceName,
			Version:  Version,
			Revision: os.Getenv("K_REVISION"),
		},
		Environment:   env,
		GCPProjectID:  projectID,
		SamplingRate:  1.0,
		DefaultModule: logging.Module("nudge-engine"),
	})
	if err != nil {
		return nil, err
	}

	return obs, nil
}
