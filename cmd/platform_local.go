//go:build !gcloud

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

func initDispatchQueue(_ context.Context, cfg *config.Config) (dispatch.Queue, func() error, error) {
	if cfg.Dispatch.PrimindTasksURL == "" {
		slog.Warn("PRIMIND_TASKS_URL not set, delivery dispatch disabled")

		return nil, nil, nil
	}

	queue := dispatch.NewPrimindTasksClient(
		cfg.Dispatch.PrimindTasksURL,
		cfg.Dispatch.QueueName,
		cfg.Dispatch.DeliveryHookURL,
		cfg.Dispatch.MaxRetries,
	)

	slog.Info("dispatch queue initialized",
		slog.String("type", "primind_tasks"),
		slog.String("url", cfg.Dispatch.PrimindTasksURL),
		slog.String("queue", cfg.Dispatch.QueueName),
	)

	return queue, nil, nil
}

func initObservability(ctx context.Context) (*observability.Resources, error) {
	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "nudge-engine"
	}

	env := logging.EnvDev
	if e := os.Getenv("ENV"); e != "" {
		env = logging.Environment(e)
	}

	obs, err := observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:     serviceName,
			Version:  Version,
			Revision: "",
		},
		Environment:   env,
		GCPProjectID:  "",
		SamplingRate:  1.0,
		DefaultModule: logging.Module("nudge-engine"),
	})
	if err != nil {
		return nil, err
	}

	return obs, nil
}
