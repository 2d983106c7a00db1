package dispatch

import "context"

//go:generate mockgen -source=queue.go -destination=mock.go -package=dispatch

// Queue schedules the actual delivery of a persisted notification at
// its scheduledFor time. The delivery target calls back into the
// engine's delivered webhook.
type Queue interface {
	RegisterDelivery(ctx context.Context, task *DeliveryTask) (*TaskResponse, error)
	DeleteTask(ctx context.Context, recordID string) error
}
