package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-nudge-engine/internal/service/delivery"
)

// DeliveredHandler is the dispatch webhook: the task queue calls it
// when a notification's scheduled time arrives.
type DeliveredHandler struct {
	delivery *delivery.Manager
}

func NewDeliveredHandler(deliveryManager *delivery.Manager) *DeliveredHandler {
	return &DeliveredHandler{delivery: deliveryManager}
}

// HandleDelivered confirms delivery of a scheduled notification.
// POST /api/v1/notifications/:id/delivered
func (h *DeliveredHandler) HandleDelivered(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.delivery.MarkDelivered(ctx, c.Param("id"), time.Now().UTC()); err != nil {
		respondDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
